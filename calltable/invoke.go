package calltable

import (
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/marshal"
)

func (t *Table) log(op Op, msg string) error {
	fn, err := slot[LogFn](t, op)
	if err != nil {
		return err
	}
	fn(marshal.EncodeString(msg))
	return nil
}

func (t *Table) LogInfo(msg string) error    { return t.log(OpLogInfo, msg) }
func (t *Table) LogWarning(msg string) error { return t.log(OpLogWarning, msg) }
func (t *Table) LogError(msg string) error   { return t.log(OpLogError, msg) }

// Transform

func (t *Table) TransformPosition(id scriptbridge.EntityID) (scriptbridge.Vector3, error) {
	fn, err := slot[Vector3Fn](t, OpTransformGetPosition)
	if err != nil {
		return scriptbridge.Vector3{}, err
	}
	var v scriptbridge.Vector3
	fn(id, &v)
	return v, nil
}

func (t *Table) SetTransformPosition(id scriptbridge.EntityID, v scriptbridge.Vector3) error {
	fn, err := slot[Vector3Fn](t, OpTransformSetPosition)
	if err != nil {
		return err
	}
	fn(id, &v)
	return nil
}

// Rect transform

func (t *Table) getVector2(op Op, id scriptbridge.EntityID) (scriptbridge.Vector2, error) {
	fn, err := slot[Vector2Fn](t, op)
	if err != nil {
		return scriptbridge.Vector2{}, err
	}
	var v scriptbridge.Vector2
	fn(id, &v)
	return v, nil
}

func (t *Table) setVector2(op Op, id scriptbridge.EntityID, v scriptbridge.Vector2) error {
	fn, err := slot[Vector2Fn](t, op)
	if err != nil {
		return err
	}
	fn(id, &v)
	return nil
}

func (t *Table) RectPosition(id scriptbridge.EntityID) (scriptbridge.Vector2, error) {
	return t.getVector2(OpRectGetPosition, id)
}

func (t *Table) SetRectPosition(id scriptbridge.EntityID, v scriptbridge.Vector2) error {
	return t.setVector2(OpRectSetPosition, id, v)
}

func (t *Table) RectSize(id scriptbridge.EntityID) (scriptbridge.Vector2, error) {
	return t.getVector2(OpRectGetSize, id)
}

func (t *Table) SetRectSize(id scriptbridge.EntityID, v scriptbridge.Vector2) error {
	return t.setVector2(OpRectSetSize, id, v)
}

// RectAnchor returns the anchor byte reported by the engine. A value outside
// the nine defined anchors is an error.
func (t *Table) RectAnchor(id scriptbridge.EntityID) (scriptbridge.Anchor, error) {
	fn, err := slot[AnchorGetFn](t, OpRectGetAnchor)
	if err != nil {
		return 0, err
	}
	a := scriptbridge.Anchor(fn(id))
	if !a.Valid() {
		return 0, errors.InvalidEnum(errors.PhaseInvoke, uint8(a), "anchor")
	}
	return a, nil
}

// SetRectAnchor rejects undefined anchors without calling the engine.
func (t *Table) SetRectAnchor(id scriptbridge.EntityID, a scriptbridge.Anchor) error {
	if !a.Valid() {
		return errors.InvalidEnum(errors.PhaseInvoke, uint8(a), "anchor")
	}
	fn, err := slot[AnchorSetFn](t, OpRectSetAnchor)
	if err != nil {
		return err
	}
	fn(id, uint8(a))
	return nil
}

func (t *Table) RectActive(id scriptbridge.EntityID) (bool, error) {
	fn, err := slot[BoolGetFn](t, OpRectIsActive)
	if err != nil {
		return false, err
	}
	return fn(id), nil
}

func (t *Table) SetRectActive(id scriptbridge.EntityID, active bool) error {
	fn, err := slot[BoolSetFn](t, OpRectSetActive)
	if err != nil {
		return err
	}
	fn(id, active)
	return nil
}

// Widgets

func (t *Table) getString(op Op, id scriptbridge.EntityID) (string, error) {
	fn, err := slot[StringGetFn](t, op)
	if err != nil {
		return "", err
	}
	return marshal.DecodeString(fn(id)), nil
}

func (t *Table) setString(op Op, id scriptbridge.EntityID, s string) error {
	fn, err := slot[StringSetFn](t, op)
	if err != nil {
		return err
	}
	fn(id, marshal.EncodeString(s))
	return nil
}

func (t *Table) ButtonText(id scriptbridge.EntityID) (string, error) {
	return t.getString(OpButtonGetText, id)
}

func (t *Table) SetButtonText(id scriptbridge.EntityID, s string) error {
	return t.setString(OpButtonSetText, id, s)
}

func (t *Table) ButtonClicked(id scriptbridge.EntityID) (bool, error) {
	fn, err := slot[BoolGetFn](t, OpButtonIsClicked)
	if err != nil {
		return false, err
	}
	return fn(id), nil
}

func (t *Table) TextContent(id scriptbridge.EntityID) (string, error) {
	return t.getString(OpTextGetText, id)
}

func (t *Table) SetTextContent(id scriptbridge.EntityID, s string) error {
	return t.setString(OpTextSetText, id, s)
}

func (t *Table) TextFontSize(id scriptbridge.EntityID) (float32, error) {
	fn, err := slot[FloatGetFn](t, OpTextGetFontSize)
	if err != nil {
		return 0, err
	}
	return fn(id), nil
}

func (t *Table) SetTextFontSize(id scriptbridge.EntityID, size float32) error {
	fn, err := slot[FloatSetFn](t, OpTextSetFontSize)
	if err != nil {
		return err
	}
	fn(id, size)
	return nil
}

// HasComponent asks the engine whether entity id carries the named component.
func (t *Table) HasComponent(id scriptbridge.EntityID, name string) (bool, error) {
	fn, err := slot[HasComponentFn](t, OpHasComponent)
	if err != nil {
		return false, err
	}
	return fn(id, marshal.EncodeString(name)), nil
}

// Immediate-mode UI

func (t *Table) UIText(text string) error {
	fn, err := slot[LabelFn](t, OpUIText)
	if err != nil {
		return err
	}
	fn(marshal.EncodeString(text))
	return nil
}

func (t *Table) UIButton(label string) (bool, error) {
	fn, err := slot[LabelBoolFn](t, OpUIButton)
	if err != nil {
		return false, err
	}
	return fn(marshal.EncodeString(label)), nil
}

// UICheckbox shows a checkbox bound to *value and reports whether it changed.
func (t *Table) UICheckbox(label string, value *bool) (bool, error) {
	if value == nil {
		return false, errors.InvalidInput(errors.PhaseInvoke, "checkbox value is nil")
	}
	fn, err := slot[CheckboxFn](t, OpUICheckbox)
	if err != nil {
		return false, err
	}
	return fn(marshal.EncodeString(label), value), nil
}

// UISliderFloat shows a slider bound to *value and reports whether it changed.
func (t *Table) UISliderFloat(label string, value *float32, lo, hi float32) (bool, error) {
	if value == nil {
		return false, errors.InvalidInput(errors.PhaseInvoke, "slider value is nil")
	}
	fn, err := slot[SliderFloatFn](t, OpUISliderFloat)
	if err != nil {
		return false, err
	}
	return fn(marshal.EncodeString(label), value, lo, hi), nil
}

func (t *Table) UIBegin(name string) error {
	fn, err := slot[LabelFn](t, OpUIBegin)
	if err != nil {
		return err
	}
	fn(marshal.EncodeString(name))
	return nil
}

func (t *Table) void(op Op) error {
	fn, err := slot[VoidFn](t, op)
	if err != nil {
		return err
	}
	fn()
	return nil
}

func (t *Table) UIEnd() error       { return t.void(OpUIEnd) }
func (t *Table) UISameLine() error  { return t.void(OpUISameLine) }
func (t *Table) UISeparator() error { return t.void(OpUISeparator) }
