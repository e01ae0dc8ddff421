package guest

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/marshal"
	"go.uber.org/zap"
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f32 = api.ValueTypeF32
)

type hostImport struct {
	fn      api.GoModuleFunc
	params  []api.ValueType
	results []api.ValueType
	op      calltable.Op
}

// call is the per-invocation view of the calling guest.
type call struct {
	ctx context.Context
	mod api.Module
	op  calltable.Op
}

func (c call) memory() memory {
	mem := c.mod.Memory()
	if mem == nil {
		c.abort(errors.New(errors.PhaseGuest, errors.KindInvalidData).Detail("guest has no memory").Build())
	}
	return memory{mem: mem}
}

func (c call) allocator() allocator {
	return allocator{ctx: c.ctx, fn: c.mod.ExportedFunction(ExportAlloc)}
}

// abort logs err and unwinds the guest call. wazero turns the panic into an
// error returned from the guest export that made the import call.
func (c call) abort(err error) {
	Logger().Error("host import failed",
		zap.String("import", c.op.ImportName()),
		zap.String("module", c.mod.Name()),
		zap.Error(err))
	panic(err)
}

func (c call) check(err error) {
	if err != nil {
		c.abort(err)
	}
}

func (c call) readString(ptr, units uint32) string {
	s, err := marshal.ReadString(c.memory(), ptr, units)
	c.check(err)
	return s
}

// returnString writes s into guest-allocated memory and packs (ptr, len).
func (c call) returnString(s string) uint64 {
	ptr, units, err := marshal.WriteString(c.memory(), c.allocator(), s)
	c.check(err)
	return marshal.PackString(ptr, units)
}

func entity(v uint64) scriptbridge.EntityID {
	return scriptbridge.EntityID(api.DecodeU32(v))
}

func boolResult(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (h *Host) imports() []hostImport {
	t := h.calls

	wrap := func(op calltable.Op, params, results []api.ValueType, fn func(c call, stack []uint64)) hostImport {
		return hostImport{
			op:      op,
			params:  params,
			results: results,
			fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				fn(call{ctx: ctx, mod: mod, op: op}, stack)
			},
		}
	}

	logImport := func(op calltable.Op, log func(string) error) hostImport {
		return wrap(op, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			c.check(log(c.readString(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))))
		})
	}

	vec3 := func(op calltable.Op, set bool) hostImport {
		return wrap(op, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			id, ptr := entity(stack[0]), api.DecodeU32(stack[1])
			mem := c.memory()
			if set {
				v, err := marshal.ReadVector3(mem, ptr)
				c.check(err)
				c.check(t.SetTransformPosition(id, v))
				return
			}
			v, err := t.TransformPosition(id)
			c.check(err)
			c.check(marshal.WriteVector3(mem, ptr, v))
		})
	}

	vec2 := func(op calltable.Op, get func(scriptbridge.EntityID) (scriptbridge.Vector2, error), set func(scriptbridge.EntityID, scriptbridge.Vector2) error) hostImport {
		return wrap(op, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			id, ptr := entity(stack[0]), api.DecodeU32(stack[1])
			mem := c.memory()
			if set != nil {
				v, err := marshal.ReadVector2(mem, ptr)
				c.check(err)
				c.check(set(id, v))
				return
			}
			v, err := get(id)
			c.check(err)
			c.check(marshal.WriteVector2(mem, ptr, v))
		})
	}

	getText := func(op calltable.Op, get func(scriptbridge.EntityID) (string, error)) hostImport {
		return wrap(op, []api.ValueType{i32}, []api.ValueType{i64}, func(c call, stack []uint64) {
			s, err := get(entity(stack[0]))
			c.check(err)
			stack[0] = c.returnString(s)
		})
	}

	setText := func(op calltable.Op, set func(scriptbridge.EntityID, string) error) hostImport {
		return wrap(op, []api.ValueType{i32, i32, i32}, nil, func(c call, stack []uint64) {
			s := c.readString(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
			c.check(set(entity(stack[0]), s))
		})
	}

	getBool := func(op calltable.Op, get func(scriptbridge.EntityID) (bool, error)) hostImport {
		return wrap(op, []api.ValueType{i32}, []api.ValueType{i32}, func(c call, stack []uint64) {
			b, err := get(entity(stack[0]))
			c.check(err)
			stack[0] = boolResult(b)
		})
	}

	void := func(op calltable.Op, fn func() error) hostImport {
		return wrap(op, nil, nil, func(c call, _ []uint64) {
			c.check(fn())
		})
	}

	return []hostImport{
		logImport(calltable.OpLogInfo, t.LogInfo),
		logImport(calltable.OpLogWarning, t.LogWarning),
		logImport(calltable.OpLogError, t.LogError),

		vec3(calltable.OpTransformGetPosition, false),
		vec3(calltable.OpTransformSetPosition, true),

		vec2(calltable.OpRectGetPosition, t.RectPosition, nil),
		vec2(calltable.OpRectSetPosition, nil, t.SetRectPosition),
		vec2(calltable.OpRectGetSize, t.RectSize, nil),
		vec2(calltable.OpRectSetSize, nil, t.SetRectSize),

		wrap(calltable.OpRectGetAnchor, []api.ValueType{i32}, []api.ValueType{i32}, func(c call, stack []uint64) {
			a, err := t.RectAnchor(entity(stack[0]))
			c.check(err)
			stack[0] = api.EncodeU32(uint32(a))
		}),
		wrap(calltable.OpRectSetAnchor, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			v := api.DecodeU32(stack[1])
			if v > 0xff {
				c.abort(errors.InvalidEnum(errors.PhaseGuest, v, "anchor"))
			}
			c.check(t.SetRectAnchor(entity(stack[0]), scriptbridge.Anchor(v)))
		}),
		getBool(calltable.OpRectIsActive, t.RectActive),
		wrap(calltable.OpRectSetActive, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			c.check(t.SetRectActive(entity(stack[0]), api.DecodeU32(stack[1]) != 0))
		}),

		getText(calltable.OpButtonGetText, t.ButtonText),
		setText(calltable.OpButtonSetText, t.SetButtonText),
		getBool(calltable.OpButtonIsClicked, t.ButtonClicked),

		getText(calltable.OpTextGetText, t.TextContent),
		setText(calltable.OpTextSetText, t.SetTextContent),
		wrap(calltable.OpTextGetFontSize, []api.ValueType{i32}, []api.ValueType{f32}, func(c call, stack []uint64) {
			size, err := t.TextFontSize(entity(stack[0]))
			c.check(err)
			stack[0] = api.EncodeF32(size)
		}),
		wrap(calltable.OpTextSetFontSize, []api.ValueType{i32, f32}, nil, func(c call, stack []uint64) {
			c.check(t.SetTextFontSize(entity(stack[0]), api.DecodeF32(stack[1])))
		}),

		wrap(calltable.OpHasComponent, []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, func(c call, stack []uint64) {
			name := c.readString(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
			ok, err := t.HasComponent(entity(stack[0]), name)
			c.check(err)
			stack[0] = boolResult(ok)
		}),

		wrap(calltable.OpUIText, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			c.check(t.UIText(c.readString(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))))
		}),
		wrap(calltable.OpUIButton, []api.ValueType{i32, i32}, []api.ValueType{i32}, func(c call, stack []uint64) {
			pressed, err := t.UIButton(c.readString(api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
			c.check(err)
			stack[0] = boolResult(pressed)
		}),
		// The checkbox value lives in guest memory as one byte.
		wrap(calltable.OpUICheckbox, []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, func(c call, stack []uint64) {
			label := c.readString(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
			ptr := api.DecodeU32(stack[2])
			mem := c.memory()
			b, err := mem.Read(ptr, 1)
			c.check(err)
			value := b[0] != 0
			changed, err := t.UICheckbox(label, &value)
			c.check(err)
			c.check(mem.Write(ptr, []byte{byte(boolResult(value))}))
			stack[0] = boolResult(changed)
		}),
		wrap(calltable.OpUISliderFloat, []api.ValueType{i32, i32, i32, f32, f32}, []api.ValueType{i32}, func(c call, stack []uint64) {
			label := c.readString(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
			ptr := api.DecodeU32(stack[2])
			mem := c.memory()
			value, err := mem.ReadF32(ptr)
			c.check(err)
			changed, err := t.UISliderFloat(label, &value, api.DecodeF32(stack[3]), api.DecodeF32(stack[4]))
			c.check(err)
			c.check(mem.WriteF32(ptr, value))
			stack[0] = boolResult(changed)
		}),
		wrap(calltable.OpUIBegin, []api.ValueType{i32, i32}, nil, func(c call, stack []uint64) {
			c.check(t.UIBegin(c.readString(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))))
		}),
		void(calltable.OpUIEnd, t.UIEnd),
		void(calltable.OpUISameLine, t.UISameLine),
		void(calltable.OpUISeparator, t.UISeparator),
	}
}
