package runtime

import (
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/marshal"
	"github.com/wippyai/script-bridge/registry"
	"go.uber.org/zap"
)

// The methods below are the entry points the engine calls. They never return
// errors across the boundary: failures are logged and reported through a
// sentinel result (handle 0 or false).

// CreateInstance creates a behaviour of the class named by className (UTF-16)
// for entity. Returns 0 if the class is unknown or construction fails.
func (r *Runtime) CreateInstance(entity scriptbridge.EntityID, className []uint16) registry.Handle {
	class := marshal.DecodeString(className)
	h, err := r.instances.Create(r.ctx, entity, class)
	if err != nil {
		r.log.Error("create instance failed",
			zap.Uint32("entity", uint32(entity)),
			zap.String("class", class),
			zap.Error(err))
		return 0
	}
	r.log.Debug("instance created",
		zap.Uint32("entity", uint32(entity)),
		zap.String("class", class),
		zap.Stringer("handle", h))
	return h
}

// CallOnCreate delivers OnCreate. Reports false on an invalid handle, a
// repeated call, or a behaviour failure.
func (r *Runtime) CallOnCreate(h registry.Handle) bool {
	if err := r.instances.Dispatch(r.ctx, h, registry.CallCreate, 0); err != nil {
		r.logDispatch("on_create failed", h, err)
		return false
	}
	return true
}

// CallOnUpdate delivers OnUpdate with the frame delta in seconds.
func (r *Runtime) CallOnUpdate(h registry.Handle, dt float32) bool {
	if err := r.instances.Dispatch(r.ctx, h, registry.CallUpdate, dt); err != nil {
		r.logDispatch("on_update failed", h, err)
		return false
	}
	return true
}

// DestroyInstance releases h. Reports false if h was not live.
func (r *Runtime) DestroyInstance(h registry.Handle) bool {
	if err := r.instances.Destroy(r.ctx, h); err != nil {
		r.logDispatch("destroy instance failed", h, err)
		return errors.KindOf(err) != errors.KindInvalidHandle
	}
	r.log.Debug("instance destroyed", zap.Stringer("handle", h))
	return true
}

// InitializeCallTable performs the one-time handshake. Operations left
// unbound are logged; invoking them later fails without a native call.
func (r *Runtime) InitializeCallTable(b calltable.Bindings) bool {
	if err := r.calls.Initialize(b); err != nil {
		r.log.Error("call table handshake failed", zap.Error(err))
		return false
	}
	if missing := r.calls.Missing(); missing != nil {
		r.log.Warn("call table partially bound",
			zap.Int("unbound", len(r.calls.Unbound())),
			zap.Error(missing))
	} else {
		r.log.Debug("call table bound", zap.Int("operations", int(calltable.OpCount)))
	}
	return true
}

func (r *Runtime) logDispatch(msg string, h registry.Handle, err error) {
	fields := []zap.Field{zap.Stringer("handle", h), zap.Error(err)}
	if info, ok := r.instances.Lookup(h); ok {
		fields = append(fields,
			zap.Uint32("entity", uint32(info.Entity)),
			zap.String("class", info.Class))
	}
	r.log.Error(msg, fields...)
}
