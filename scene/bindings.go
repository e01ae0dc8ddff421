package scene

import (
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/marshal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Bindings returns native implementations of every call table operation
// backed by this scene. Getters on an entity without the component return the
// zero value and setters do nothing.
func (s *Scene) Bindings() calltable.Bindings {
	return calltable.Bindings{
		LogInfo:    s.logFn(zapcore.InfoLevel),
		LogWarning: s.logFn(zapcore.WarnLevel),
		LogError:   s.logFn(zapcore.ErrorLevel),

		TransformGetPosition: func(id scriptbridge.EntityID, v *scriptbridge.Vector3) {
			*v = scriptbridge.Vector3{}
			s.read(id, func(e *Entity) {
				if e.Transform != nil {
					*v = e.Transform.Position
				}
			})
		},
		TransformSetPosition: func(id scriptbridge.EntityID, v *scriptbridge.Vector3) {
			s.with(id, func(e *Entity) {
				if e.Transform != nil {
					e.Transform.Position = *v
				}
			})
		},

		RectGetPosition: s.rectGet(func(r *RectTransform) scriptbridge.Vector2 { return r.Position }),
		RectSetPosition: s.rectSet(func(r *RectTransform, v scriptbridge.Vector2) { r.Position = v }),
		RectGetSize:     s.rectGet(func(r *RectTransform) scriptbridge.Vector2 { return r.Size }),
		RectSetSize:     s.rectSet(func(r *RectTransform, v scriptbridge.Vector2) { r.Size = v }),
		RectGetAnchor: func(id scriptbridge.EntityID) (a uint8) {
			s.read(id, func(e *Entity) {
				if e.RectTransform != nil {
					a = uint8(e.RectTransform.Anchor)
				}
			})
			return a
		},
		RectSetAnchor: func(id scriptbridge.EntityID, a uint8) {
			s.with(id, func(e *Entity) {
				if e.RectTransform != nil {
					e.RectTransform.Anchor = scriptbridge.Anchor(a)
				}
			})
		},
		RectIsActive: func(id scriptbridge.EntityID) (active bool) {
			s.read(id, func(e *Entity) {
				active = e.RectTransform != nil && e.RectTransform.Active
			})
			return active
		},
		RectSetActive: func(id scriptbridge.EntityID, active bool) {
			s.with(id, func(e *Entity) {
				if e.RectTransform != nil {
					e.RectTransform.Active = active
				}
			})
		},

		ButtonGetText: func(id scriptbridge.EntityID) (text []uint16) {
			s.read(id, func(e *Entity) {
				if e.Button != nil {
					text = marshal.EncodeString(e.Button.Text)
				}
			})
			return text
		},
		ButtonSetText: func(id scriptbridge.EntityID, text []uint16) {
			s.with(id, func(e *Entity) {
				if e.Button != nil {
					e.Button.Text = marshal.DecodeString(text)
				}
			})
		},
		ButtonIsClicked: func(id scriptbridge.EntityID) (clicked bool) {
			s.read(id, func(e *Entity) {
				clicked = e.Button != nil && e.Button.Clicked
			})
			return clicked
		},

		TextGetText: func(id scriptbridge.EntityID) (text []uint16) {
			s.read(id, func(e *Entity) {
				if e.Text != nil {
					text = marshal.EncodeString(e.Text.Text)
				}
			})
			return text
		},
		TextSetText: func(id scriptbridge.EntityID, text []uint16) {
			s.with(id, func(e *Entity) {
				if e.Text != nil {
					e.Text.Text = marshal.DecodeString(text)
				}
			})
		},
		TextGetFontSize: func(id scriptbridge.EntityID) (size float32) {
			s.read(id, func(e *Entity) {
				if e.Text != nil {
					size = e.Text.FontSize
				}
			})
			return size
		},
		TextSetFontSize: func(id scriptbridge.EntityID, size float32) {
			s.with(id, func(e *Entity) {
				if e.Text != nil {
					e.Text.FontSize = size
				}
			})
		},

		HasComponent: func(id scriptbridge.EntityID, name []uint16) (ok bool) {
			component := marshal.DecodeString(name)
			s.read(id, func(e *Entity) {
				ok = e.has(component)
			})
			return ok
		},

		UIText: func(label []uint16) { s.ui.Text(marshal.DecodeString(label)) },
		UIButton: func(label []uint16) bool {
			return s.ui.Button(marshal.DecodeString(label))
		},
		UICheckbox: func(label []uint16, value *bool) bool {
			return s.ui.Checkbox(marshal.DecodeString(label), value)
		},
		UISliderFloat: func(label []uint16, value *float32, lo, hi float32) bool {
			return s.ui.SliderFloat(marshal.DecodeString(label), value, lo, hi)
		},
		UIBegin:     func(name []uint16) { s.ui.Begin(marshal.DecodeString(name)) },
		UIEnd:       s.ui.End,
		UISameLine:  s.ui.SameLine,
		UISeparator: s.ui.Separator,
	}
}

func (s *Scene) logFn(level zapcore.Level) calltable.LogFn {
	return func(msg []uint16) {
		text := marshal.DecodeString(msg)
		s.console.Append(level, text)
		if ce := s.log.Check(level, text); ce != nil {
			ce.Write(zap.String("source", "script"))
		}
	}
}

func (s *Scene) rectGet(get func(*RectTransform) scriptbridge.Vector2) calltable.Vector2Fn {
	return func(id scriptbridge.EntityID, v *scriptbridge.Vector2) {
		*v = scriptbridge.Vector2{}
		s.read(id, func(e *Entity) {
			if e.RectTransform != nil {
				*v = get(e.RectTransform)
			}
		})
	}
}

func (s *Scene) rectSet(set func(*RectTransform, scriptbridge.Vector2)) calltable.Vector2Fn {
	return func(id scriptbridge.EntityID, v *scriptbridge.Vector2) {
		s.with(id, func(e *Entity) {
			if e.RectTransform != nil {
				set(e.RectTransform, *v)
			}
		})
	}
}
