package facade

import (
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
)

// Transform accesses an entity's world position.
type Transform struct {
	calls *calltable.Table
	id    scriptbridge.EntityID
}

func (t *Transform) Position() (scriptbridge.Vector3, error) {
	return t.calls.TransformPosition(t.id)
}

func (t *Transform) SetPosition(v scriptbridge.Vector3) error {
	return t.calls.SetTransformPosition(t.id, v)
}

// Translate moves the entity by delta. It costs a get and a set.
func (t *Transform) Translate(delta scriptbridge.Vector3) error {
	p, err := t.Position()
	if err != nil {
		return err
	}
	return t.SetPosition(scriptbridge.Vector3{X: p.X + delta.X, Y: p.Y + delta.Y, Z: p.Z + delta.Z})
}

// RectTransform accesses a UI element's screen-space placement.
type RectTransform struct {
	calls *calltable.Table
	id    scriptbridge.EntityID
}

func (r *RectTransform) Position() (scriptbridge.Vector2, error) {
	return r.calls.RectPosition(r.id)
}

func (r *RectTransform) SetPosition(v scriptbridge.Vector2) error {
	return r.calls.SetRectPosition(r.id, v)
}

func (r *RectTransform) Size() (scriptbridge.Vector2, error) {
	return r.calls.RectSize(r.id)
}

func (r *RectTransform) SetSize(v scriptbridge.Vector2) error {
	return r.calls.SetRectSize(r.id, v)
}

func (r *RectTransform) Anchor() (scriptbridge.Anchor, error) {
	return r.calls.RectAnchor(r.id)
}

// SetAnchor rejects values outside the nine defined anchors.
func (r *RectTransform) SetAnchor(a scriptbridge.Anchor) error {
	return r.calls.SetRectAnchor(r.id, a)
}

func (r *RectTransform) Active() (bool, error) {
	return r.calls.RectActive(r.id)
}

func (r *RectTransform) SetActive(active bool) error {
	return r.calls.SetRectActive(r.id, active)
}

// Button accesses a UI button widget.
type Button struct {
	calls *calltable.Table
	id    scriptbridge.EntityID
}

func (b *Button) Text() (string, error) {
	return b.calls.ButtonText(b.id)
}

func (b *Button) SetText(s string) error {
	return b.calls.SetButtonText(b.id, s)
}

// Clicked reports whether the button was clicked this frame.
func (b *Button) Clicked() (bool, error) {
	return b.calls.ButtonClicked(b.id)
}

// Text accesses a UI text widget.
type Text struct {
	calls *calltable.Table
	id    scriptbridge.EntityID
}

func (t *Text) Text() (string, error) {
	return t.calls.TextContent(t.id)
}

func (t *Text) SetText(s string) error {
	return t.calls.SetTextContent(t.id, s)
}

func (t *Text) FontSize() (float32, error) {
	return t.calls.TextFontSize(t.id)
}

func (t *Text) SetFontSize(size float32) error {
	return t.calls.SetTextFontSize(t.id, size)
}
