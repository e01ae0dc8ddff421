package guest

import (
	"context"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/facade"
	"github.com/wippyai/script-bridge/registry"
	"github.com/wippyai/script-bridge/runtime"
	"go.uber.org/zap"
)

// Class is a compiled guest module. Each behaviour instance is a separate
// module instance with its own memory.
type Class struct {
	host      *Host
	compiled  wazero.CompiledModule
	name      string
	instances atomic.Int64
	hasAlloc  bool
}

func (c *Class) Name() string {
	return c.name
}

// HasAlloc reports whether the guest exports alloc, which the host needs to
// return strings to it.
func (c *Class) HasAlloc() bool {
	return c.hasAlloc
}

// Live returns the number of open instances.
func (c *Class) Live() int {
	return int(c.instances.Load())
}

// Factory adapts the class for runtime.RegisterClass.
func (c *Class) Factory() runtime.Factory {
	return func(ctx context.Context, e *facade.Entity) (registry.Behavior, error) {
		inst, err := c.Instantiate(ctx, e.ID())
		if err != nil {
			return nil, err
		}
		return inst, nil
	}
}

// Instantiate creates a fresh module instance bound to entity.
func (c *Class) Instantiate(ctx context.Context, entity scriptbridge.EntityID) (*Instance, error) {
	// Anonymous so any number of instances can coexist.
	cfg := wazero.NewModuleConfig().WithName("")
	mod, err := c.host.runtime.InstantiateModule(ctx, c.compiled, cfg)
	if err != nil {
		e := errors.Load("instantiate guest", err)
		e.Class = c.name
		return nil, e
	}

	c.instances.Add(1)
	Logger().Debug("guest instance created",
		zap.String("class", c.name),
		zap.Uint32("entity", uint32(entity)))

	return &Instance{
		class:    c,
		mod:      mod,
		onCreate: mod.ExportedFunction(ExportOnCreate),
		onUpdate: mod.ExportedFunction(ExportOnUpdate),
		entity:   entity,
	}, nil
}

// Instance is one guest behaviour. It implements registry.Behavior and
// registry.Closer.
type Instance struct {
	class    *Class
	mod      api.Module
	onCreate api.Function
	onUpdate api.Function
	entity   scriptbridge.EntityID
	closed   atomic.Bool
}

func (i *Instance) Entity() scriptbridge.EntityID {
	return i.entity
}

// Memory exposes the instance's linear memory.
func (i *Instance) Memory() scriptbridge.Memory {
	return memory{mem: i.mod.Memory()}
}

func (i *Instance) OnCreate(ctx context.Context) error {
	if _, err := i.onCreate.Call(ctx, api.EncodeU32(uint32(i.entity))); err != nil {
		return i.trap(ExportOnCreate, err)
	}
	return nil
}

func (i *Instance) OnUpdate(ctx context.Context, dt float32) error {
	if _, err := i.onUpdate.Call(ctx, api.EncodeU32(uint32(i.entity)), api.EncodeF32(dt)); err != nil {
		return i.trap(ExportOnUpdate, err)
	}
	return nil
}

// Close releases the module instance. Closing twice is a no-op.
func (i *Instance) Close(ctx context.Context) error {
	if !i.closed.CompareAndSwap(false, true) {
		return nil
	}
	i.class.instances.Add(-1)
	return i.mod.Close(ctx)
}

func (i *Instance) trap(export string, err error) error {
	return errors.New(errors.PhaseGuest, errors.KindBehavior).
		Class(i.class.name).
		Op(export).
		Cause(err).
		Detail("guest call failed").
		Build()
}
