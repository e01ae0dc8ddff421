package runtime

import (
	"context"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/facade"
	"github.com/wippyai/script-bridge/marshal"
	"github.com/wippyai/script-bridge/registry"
	"go.uber.org/zap"
)

// Factory builds a behaviour for one entity. The entity facade gives the
// behaviour access to its components through the runtime's call table.
type Factory func(ctx context.Context, entity *facade.Entity) (registry.Behavior, error)

type Runtime struct {
	ctx       context.Context
	calls     *calltable.Table
	classes   *registry.Classes
	instances *registry.Registry
	log       *zap.Logger
}

type config struct {
	ctx     context.Context
	calls   *calltable.Table
	classes *registry.Classes
	log     *zap.Logger
}

// Option configures a Runtime.
type Option func(*config)

// WithLogger sets the logger failures are reported to. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClasses shares an existing class table.
func WithClasses(classes *registry.Classes) Option {
	return func(c *config) {
		if classes != nil {
			c.classes = classes
		}
	}
}

// WithCallTable shares an existing call table.
func WithCallTable(t *calltable.Table) Option {
	return func(c *config) {
		if t != nil {
			c.calls = t
		}
	}
}

// WithContext sets the context used by the engine-facing entry points,
// which take none of their own.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// New creates a runtime. It fails if the boundary value types do not match
// their marshalling layout.
func New(opts ...Option) (*Runtime, error) {
	cfg := config{
		ctx: context.Background(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.calls == nil {
		cfg.calls = calltable.New()
	}
	if cfg.classes == nil {
		cfg.classes = registry.NewClasses()
	}

	if err := marshal.Verify(); err != nil {
		return nil, err
	}

	return &Runtime{
		ctx:       cfg.ctx,
		calls:     cfg.calls,
		classes:   cfg.classes,
		instances: registry.New(cfg.classes),
		log:       cfg.log,
	}, nil
}

// RegisterClass adds a behaviour class. Every instance gets its own entity
// facade bound to this runtime's call table.
func (r *Runtime) RegisterClass(name string, f Factory) error {
	if f == nil {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Class(name).
			Detail("factory cannot be nil").
			Build()
	}
	return r.classes.Register(name, func(ctx context.Context, id scriptbridge.EntityID) (registry.Behavior, error) {
		return f(ctx, facade.NewEntity(id, r.calls))
	})
}

// Initialize performs the call table handshake.
func (r *Runtime) Initialize(b calltable.Bindings) error {
	return r.calls.Initialize(b)
}

// Instantiate creates a behaviour of the named class for entity.
func (r *Runtime) Instantiate(ctx context.Context, entity scriptbridge.EntityID, class string) (registry.Handle, error) {
	return r.instances.Create(ctx, entity, class)
}

// Create delivers OnCreate to h.
func (r *Runtime) Create(ctx context.Context, h registry.Handle) error {
	return r.instances.Dispatch(ctx, h, registry.CallCreate, 0)
}

// Update delivers OnUpdate to h.
func (r *Runtime) Update(ctx context.Context, h registry.Handle, dt float32) error {
	return r.instances.Dispatch(ctx, h, registry.CallUpdate, dt)
}

// Destroy releases h.
func (r *Runtime) Destroy(ctx context.Context, h registry.Handle) error {
	return r.instances.Destroy(ctx, h)
}

func (r *Runtime) Calls() *calltable.Table {
	return r.calls
}

func (r *Runtime) Classes() *registry.Classes {
	return r.classes
}

func (r *Runtime) Instances() *registry.Registry {
	return r.instances
}

func (r *Runtime) Logger() *zap.Logger {
	return r.log
}

// Close destroys every live instance.
func (r *Runtime) Close(ctx context.Context) error {
	return r.instances.Close(ctx)
}
