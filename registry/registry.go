package registry

import (
	"context"
	"math"
	"sync"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
	"go.uber.org/multierr"
)

// Registry owns every live behaviour instance and enforces its lifecycle.
// Behaviour methods are called without the registry lock held, so a
// behaviour may create or destroy instances (itself included) while running.
type Registry struct {
	classes   *Classes
	slots     slotTable
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

func New(classes *Classes) *Registry {
	if classes == nil {
		classes = NewClasses()
	}
	return &Registry{
		classes: classes,
		slots:   newSlotTable(),
	}
}

// Classes returns the class table instances are created from.
func (r *Registry) Classes() *Classes {
	return r.classes
}

// Create constructs a behaviour of the named class bound to entity and
// returns its handle. Nothing is stored if construction fails.
func (r *Registry) Create(ctx context.Context, entity scriptbridge.EntityID, class string) (Handle, error) {
	ctor, ok := r.classes.Lookup(class)
	if !ok {
		return 0, errors.UnknownClass(class)
	}

	b, err := construct(ctx, ctor, entity)
	if err != nil {
		return 0, errors.Construction(class, err)
	}
	if b == nil {
		return 0, errors.Construction(class, errors.InvalidInput(errors.PhaseResolve, "constructor returned nil behaviour"))
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		release(ctx, b)
		return 0, errors.New(errors.PhaseResolve, errors.KindClosed).Class(class).Detail("registry closed").Build()
	}
	h := r.slots.insert(slot{
		behavior: b,
		class:    class,
		entity:   entity,
		state:    StateCreated,
	})
	r.mu.Unlock()

	r.notify(Event{Type: EventCreated, Handle: h, Entity: entity, Class: class})
	return h, nil
}

// Dispatch delivers one lifecycle call. CallCreate is legal exactly once, in
// state Created. CallUpdate is legal only after CallCreate; dt must be a
// finite, non-negative number of seconds and is ignored for CallCreate.
func (r *Registry) Dispatch(ctx context.Context, h Handle, call Call, dt float32) error {
	if call == CallUpdate && !validDelta(dt) {
		return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Handle(uint64(h)).
			Value(dt).
			Detail("delta time must be finite and non-negative").
			Build()
	}

	r.mu.Lock()
	s, ok := r.slots.get(h)
	if !ok {
		r.mu.Unlock()
		return errors.InvalidHandle(errors.PhaseDispatch, uint64(h))
	}

	if s.run.busy {
		state := s.state
		r.mu.Unlock()
		return errors.New(errors.PhaseDispatch, errors.KindOutOfOrder).
			Handle(uint64(h)).
			Op(call.String()).
			Detail("instance is busy in %s (state %s)", busyCall(s.run), state).
			Build()
	}

	switch call {
	case CallCreate:
		if s.state != StateCreated {
			state := s.state
			r.mu.Unlock()
			return errors.OutOfOrder(uint64(h), call.String(), state.String())
		}
		s.state = StatePostCreateCalled
		s.run.creating = true
	case CallUpdate:
		if s.state == StateCreated {
			r.mu.Unlock()
			return errors.OutOfOrder(uint64(h), call.String(), StateCreated.String())
		}
		s.state = StateUpdating
	default:
		r.mu.Unlock()
		return errors.InvalidInput(errors.PhaseDispatch, "unknown lifecycle call")
	}
	s.run.busy = true
	b, entity, class, run := s.behavior, s.entity, s.class, s.run
	r.mu.Unlock()

	var err error
	if call == CallCreate {
		err = invoke(h, class, call, func() error { return b.OnCreate(ctx) })
	} else {
		err = invoke(h, class, call, func() error { return b.OnUpdate(ctx, dt) })
	}

	r.mu.Lock()
	run.busy, run.creating = false, false
	orphaned := run.released
	r.mu.Unlock()

	if call == CallCreate && !orphaned {
		r.notify(Event{Type: EventCreateCalled, Handle: h, Entity: entity, Class: class})
	}
	if orphaned {
		// Destroyed while this call ran; the release was left to us.
		if rerr := release(ctx, b); rerr != nil {
			err = multierr.Append(err, destroyError(h, class, rerr))
		}
	}
	return err
}

func busyCall(a *activity) Call {
	if a.creating {
		return CallCreate
	}
	return CallUpdate
}

// OnCreate is Dispatch(ctx, h, CallCreate, 0).
func (r *Registry) OnCreate(ctx context.Context, h Handle) error {
	return r.Dispatch(ctx, h, CallCreate, 0)
}

// OnUpdate is Dispatch(ctx, h, CallUpdate, dt).
func (r *Registry) OnUpdate(ctx context.Context, h Handle, dt float32) error {
	return r.Dispatch(ctx, h, CallUpdate, dt)
}

// Destroy releases h's behaviour. Legal from any live state; the handle is
// invalid afterwards even if its slot is reused. When a dispatch on h is
// still running, the behaviour is released by that dispatch as it returns.
func (r *Registry) Destroy(ctx context.Context, h Handle) error {
	r.mu.Lock()
	s, ok := r.slots.remove(h)
	var deferred bool
	if ok {
		s.run.released = true
		deferred = s.run.busy
	}
	r.mu.Unlock()
	if !ok {
		return errors.InvalidHandle(errors.PhaseDestroy, uint64(h))
	}

	r.notify(Event{Type: EventDestroyed, Handle: h, Entity: s.entity, Class: s.class})
	if deferred {
		return nil
	}
	if err := release(ctx, s.behavior); err != nil {
		return destroyError(h, s.class, err)
	}
	return nil
}

func destroyError(h Handle, class string, cause error) error {
	e := errors.Wrap(errors.PhaseDestroy, errors.KindBehavior, cause, "close behaviour")
	e.Handle = uint64(h)
	e.Class = class
	return e
}

// Lookup describes a live instance.
func (r *Registry) Lookup(h Handle) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots.get(h)
	if !ok {
		return Info{}, false
	}
	return Info{Handle: h, Entity: s.entity, Class: s.class, State: s.state}, true
}

// Get returns the behaviour behind a live handle.
func (r *Registry) Get(h Handle) (Behavior, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots.get(h)
	if !ok {
		return nil, false
	}
	return s.behavior, true
}

// State returns the lifecycle state of h. Unknown and destroyed handles
// report StateDestroyed along with an invalid-handle error.
func (r *Registry) State(h Handle) (State, error) {
	info, ok := r.Lookup(h)
	if !ok {
		return StateDestroyed, errors.InvalidHandle(errors.PhaseDispatch, uint64(h))
	}
	return info.State, nil
}

// Entity returns the entity h is bound to.
func (r *Registry) Entity(h Handle) (scriptbridge.EntityID, error) {
	info, ok := r.Lookup(h)
	if !ok {
		return 0, errors.InvalidHandle(errors.PhaseDispatch, uint64(h))
	}
	return info.Entity, nil
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots.live
}

// Each calls fn for a snapshot of live instances, in slot order, until fn
// returns false.
func (r *Registry) Each(fn func(Info) bool) {
	r.mu.Lock()
	infos := make([]Info, 0, r.slots.live)
	r.slots.each(func(h Handle, s *slot) {
		infos = append(infos, Info{Handle: h, Entity: s.entity, Class: s.class, State: s.state})
	})
	r.mu.Unlock()

	for _, info := range infos {
		if !fn(info) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close destroys every live instance and stops accepting new ones.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	var handles []Handle
	r.slots.each(func(h Handle, _ *slot) {
		handles = append(handles, h)
	})
	r.mu.Unlock()

	var err error
	for _, h := range handles {
		if derr := r.Destroy(ctx, h); derr != nil && !errors.Is(derr, errors.ErrInvalidHandle) {
			err = multierr.Append(err, derr)
		}
	}
	return err
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnInstanceEvent(e)
	}
}

func validDelta(dt float32) bool {
	f := float64(dt)
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func construct(ctx context.Context, ctor Constructor, entity scriptbridge.EntityID) (b Behavior, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			b, err = nil, errors.Panic(errors.PhaseResolve, rec)
		}
	}()
	return ctor(ctx, entity)
}

func invoke(h Handle, class string, call Call, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e := errors.Panic(errors.PhaseDispatch, rec)
			e.Handle = uint64(h)
			e.Class = class
			e.Op = call.String()
			err = e
		}
	}()
	if cerr := fn(); cerr != nil {
		e := errors.Behavior(uint64(h), call.String(), cerr)
		e.Class = class
		return e
	}
	return nil
}

func release(ctx context.Context, b Behavior) (err error) {
	c, ok := b.(Closer)
	if !ok {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Panic(errors.PhaseDestroy, rec)
		}
	}()
	return c.Close(ctx)
}
