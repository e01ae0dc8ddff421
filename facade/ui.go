package facade

import (
	"github.com/wippyai/script-bridge/calltable"
)

// UI issues immediate-mode UI commands for the current frame.
type UI struct {
	calls *calltable.Table
}

func NewUI(calls *calltable.Table) UI {
	return UI{calls: calls}
}

func (u UI) Text(s string) error {
	return u.calls.UIText(s)
}

// Button reports whether the button was pressed this frame.
func (u UI) Button(label string) (bool, error) {
	return u.calls.UIButton(label)
}

func (u UI) Checkbox(label string, value *bool) (bool, error) {
	return u.calls.UICheckbox(label, value)
}

func (u UI) SliderFloat(label string, value *float32, lo, hi float32) (bool, error) {
	return u.calls.UISliderFloat(label, value, lo, hi)
}

func (u UI) Begin(name string) error { return u.calls.UIBegin(name) }
func (u UI) End() error              { return u.calls.UIEnd() }
func (u UI) SameLine() error         { return u.calls.UISameLine() }
func (u UI) Separator() error        { return u.calls.UISeparator() }

// Window wraps fn in Begin/End. End runs even when fn fails.
func (u UI) Window(name string, fn func() error) error {
	if err := u.Begin(name); err != nil {
		return err
	}
	ferr := fn()
	if err := u.End(); err != nil && ferr == nil {
		return err
	}
	return ferr
}
