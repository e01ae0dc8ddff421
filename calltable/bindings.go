package calltable

// Bindings is the set of native functions the engine hands over during the
// handshake. Nil fields are left unbound.
type Bindings struct {
	LogInfo    LogFn
	LogWarning LogFn
	LogError   LogFn

	TransformGetPosition Vector3Fn
	TransformSetPosition Vector3Fn

	RectGetPosition Vector2Fn
	RectSetPosition Vector2Fn
	RectGetSize     Vector2Fn
	RectSetSize     Vector2Fn
	RectGetAnchor   AnchorGetFn
	RectSetAnchor   AnchorSetFn
	RectIsActive    BoolGetFn
	RectSetActive   BoolSetFn

	ButtonGetText   StringGetFn
	ButtonSetText   StringSetFn
	ButtonIsClicked BoolGetFn

	TextGetText     StringGetFn
	TextSetText     StringSetFn
	TextGetFontSize FloatGetFn
	TextSetFontSize FloatSetFn

	HasComponent HasComponentFn

	UIText        LabelFn
	UIButton      LabelBoolFn
	UICheckbox    CheckboxFn
	UISliderFloat SliderFloatFn
	UIBegin       LabelFn
	UIEnd         VoidFn
	UISameLine    VoidFn
	UISeparator   VoidFn
}

type entry struct {
	fn any
	op Op
}

func (b *Bindings) entries() []entry {
	out := make([]entry, 0, OpCount)
	add := func(op Op, set bool, fn any) {
		if set {
			out = append(out, entry{op: op, fn: fn})
		}
	}

	add(OpLogInfo, b.LogInfo != nil, b.LogInfo)
	add(OpLogWarning, b.LogWarning != nil, b.LogWarning)
	add(OpLogError, b.LogError != nil, b.LogError)

	add(OpTransformGetPosition, b.TransformGetPosition != nil, b.TransformGetPosition)
	add(OpTransformSetPosition, b.TransformSetPosition != nil, b.TransformSetPosition)

	add(OpRectGetPosition, b.RectGetPosition != nil, b.RectGetPosition)
	add(OpRectSetPosition, b.RectSetPosition != nil, b.RectSetPosition)
	add(OpRectGetSize, b.RectGetSize != nil, b.RectGetSize)
	add(OpRectSetSize, b.RectSetSize != nil, b.RectSetSize)
	add(OpRectGetAnchor, b.RectGetAnchor != nil, b.RectGetAnchor)
	add(OpRectSetAnchor, b.RectSetAnchor != nil, b.RectSetAnchor)
	add(OpRectIsActive, b.RectIsActive != nil, b.RectIsActive)
	add(OpRectSetActive, b.RectSetActive != nil, b.RectSetActive)

	add(OpButtonGetText, b.ButtonGetText != nil, b.ButtonGetText)
	add(OpButtonSetText, b.ButtonSetText != nil, b.ButtonSetText)
	add(OpButtonIsClicked, b.ButtonIsClicked != nil, b.ButtonIsClicked)

	add(OpTextGetText, b.TextGetText != nil, b.TextGetText)
	add(OpTextSetText, b.TextSetText != nil, b.TextSetText)
	add(OpTextGetFontSize, b.TextGetFontSize != nil, b.TextGetFontSize)
	add(OpTextSetFontSize, b.TextSetFontSize != nil, b.TextSetFontSize)

	add(OpHasComponent, b.HasComponent != nil, b.HasComponent)

	add(OpUIText, b.UIText != nil, b.UIText)
	add(OpUIButton, b.UIButton != nil, b.UIButton)
	add(OpUICheckbox, b.UICheckbox != nil, b.UICheckbox)
	add(OpUISliderFloat, b.UISliderFloat != nil, b.UISliderFloat)
	add(OpUIBegin, b.UIBegin != nil, b.UIBegin)
	add(OpUIEnd, b.UIEnd != nil, b.UIEnd)
	add(OpUISameLine, b.UISameLine != nil, b.UISameLine)
	add(OpUISeparator, b.UISeparator != nil, b.UISeparator)

	return out
}
