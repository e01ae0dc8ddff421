package calltable

import (
	"reflect"
	"strings"

	scriptbridge "github.com/wippyai/script-bridge"
)

// Op identifies one native operation in the call table.
type Op uint8

const (
	OpLogInfo Op = iota
	OpLogWarning
	OpLogError

	OpTransformGetPosition
	OpTransformSetPosition

	OpRectGetPosition
	OpRectSetPosition
	OpRectGetSize
	OpRectSetSize
	OpRectGetAnchor
	OpRectSetAnchor
	OpRectIsActive
	OpRectSetActive

	OpButtonGetText
	OpButtonSetText
	OpButtonIsClicked

	OpTextGetText
	OpTextSetText
	OpTextGetFontSize
	OpTextSetFontSize

	OpHasComponent

	OpUIText
	OpUIButton
	OpUICheckbox
	OpUISliderFloat
	OpUIBegin
	OpUIEnd
	OpUISameLine
	OpUISeparator

	OpCount
)

// Native signatures. Strings are UTF-16 code units; out-parameters are
// pointers the native side fills in.
type (
	LogFn          func(msg []uint16)
	Vector3Fn      func(id scriptbridge.EntityID, v *scriptbridge.Vector3)
	Vector2Fn      func(id scriptbridge.EntityID, v *scriptbridge.Vector2)
	AnchorGetFn    func(id scriptbridge.EntityID) uint8
	AnchorSetFn    func(id scriptbridge.EntityID, anchor uint8)
	BoolGetFn      func(id scriptbridge.EntityID) bool
	BoolSetFn      func(id scriptbridge.EntityID, value bool)
	StringGetFn    func(id scriptbridge.EntityID) []uint16
	StringSetFn    func(id scriptbridge.EntityID, text []uint16)
	FloatGetFn     func(id scriptbridge.EntityID) float32
	FloatSetFn     func(id scriptbridge.EntityID, value float32)
	HasComponentFn func(id scriptbridge.EntityID, name []uint16) bool
	LabelFn        func(label []uint16)
	LabelBoolFn    func(label []uint16) bool
	CheckboxFn     func(label []uint16, value *bool) bool
	SliderFloatFn  func(label []uint16, value *float32, lo, hi float32) bool
	VoidFn         func()
)

type opInfo struct {
	name string
	sig  reflect.Type
}

var ops = [OpCount]opInfo{
	OpLogInfo:    {"log.info", reflect.TypeFor[LogFn]()},
	OpLogWarning: {"log.warning", reflect.TypeFor[LogFn]()},
	OpLogError:   {"log.error", reflect.TypeFor[LogFn]()},

	OpTransformGetPosition: {"transform.get_position", reflect.TypeFor[Vector3Fn]()},
	OpTransformSetPosition: {"transform.set_position", reflect.TypeFor[Vector3Fn]()},

	OpRectGetPosition: {"rect_transform.get_position", reflect.TypeFor[Vector2Fn]()},
	OpRectSetPosition: {"rect_transform.set_position", reflect.TypeFor[Vector2Fn]()},
	OpRectGetSize:     {"rect_transform.get_size", reflect.TypeFor[Vector2Fn]()},
	OpRectSetSize:     {"rect_transform.set_size", reflect.TypeFor[Vector2Fn]()},
	OpRectGetAnchor:   {"rect_transform.get_anchor", reflect.TypeFor[AnchorGetFn]()},
	OpRectSetAnchor:   {"rect_transform.set_anchor", reflect.TypeFor[AnchorSetFn]()},
	OpRectIsActive:    {"rect_transform.is_active", reflect.TypeFor[BoolGetFn]()},
	OpRectSetActive:   {"rect_transform.set_active", reflect.TypeFor[BoolSetFn]()},

	OpButtonGetText:   {"ui_button.get_text", reflect.TypeFor[StringGetFn]()},
	OpButtonSetText:   {"ui_button.set_text", reflect.TypeFor[StringSetFn]()},
	OpButtonIsClicked: {"ui_button.is_clicked", reflect.TypeFor[BoolGetFn]()},

	OpTextGetText:     {"ui_text.get_text", reflect.TypeFor[StringGetFn]()},
	OpTextSetText:     {"ui_text.set_text", reflect.TypeFor[StringSetFn]()},
	OpTextGetFontSize: {"ui_text.get_font_size", reflect.TypeFor[FloatGetFn]()},
	OpTextSetFontSize: {"ui_text.set_font_size", reflect.TypeFor[FloatSetFn]()},

	OpHasComponent: {"entity.has_component", reflect.TypeFor[HasComponentFn]()},

	OpUIText:        {"imgui.text", reflect.TypeFor[LabelFn]()},
	OpUIButton:      {"imgui.button", reflect.TypeFor[LabelBoolFn]()},
	OpUICheckbox:    {"imgui.checkbox", reflect.TypeFor[CheckboxFn]()},
	OpUISliderFloat: {"imgui.slider_float", reflect.TypeFor[SliderFloatFn]()},
	OpUIBegin:       {"imgui.begin", reflect.TypeFor[LabelFn]()},
	OpUIEnd:         {"imgui.end", reflect.TypeFor[VoidFn]()},
	OpUISameLine:    {"imgui.same_line", reflect.TypeFor[VoidFn]()},
	OpUISeparator:   {"imgui.separator", reflect.TypeFor[VoidFn]()},
}

var byName = func() map[string]Op {
	m := make(map[string]Op, OpCount)
	for i := Op(0); i < OpCount; i++ {
		m[ops[i].name] = i
	}
	return m
}()

// Valid reports whether op names a defined operation.
func (op Op) Valid() bool {
	return op < OpCount
}

// String returns the logical name, e.g. "transform.get_position".
func (op Op) String() string {
	if !op.Valid() {
		return "invalid"
	}
	return ops[op].name
}

// ImportName returns the flat name used for wasm imports,
// e.g. "transform_get_position".
func (op Op) ImportName() string {
	return strings.ReplaceAll(op.String(), ".", "_")
}

// Signature returns the native function type the slot accepts.
func (op Op) Signature() reflect.Type {
	if !op.Valid() {
		return nil
	}
	return ops[op].sig
}

// Lookup resolves a logical operation name.
func Lookup(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}

// All returns every defined operation in table order.
func All() []Op {
	out := make([]Op, OpCount)
	for i := range out {
		out[i] = Op(i)
	}
	return out
}
