package registry

import (
	"context"
	stderrors "errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
)

type testBehavior struct {
	entity  scriptbridge.EntityID
	created int
	updates []float32
	closed  int
	failOn  string
}

func (b *testBehavior) OnCreate(ctx context.Context) error {
	b.created++
	if b.failOn == "create" {
		return stderrors.New("create failed")
	}
	if b.failOn == "panic" {
		panic("boom")
	}
	return nil
}

func (b *testBehavior) OnUpdate(ctx context.Context, dt float32) error {
	b.updates = append(b.updates, dt)
	if b.failOn == "update" {
		return stderrors.New("update failed")
	}
	return nil
}

func (b *testBehavior) Close(ctx context.Context) error {
	b.closed++
	return nil
}

type testObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *testObserver) OnInstanceEvent(e Event) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

func newTestRegistry(t *testing.T) (*Registry, map[scriptbridge.EntityID]*testBehavior) {
	t.Helper()
	made := make(map[scriptbridge.EntityID]*testBehavior)
	classes := NewClasses()
	err := classes.Register("TestScript", func(ctx context.Context, e scriptbridge.EntityID) (Behavior, error) {
		b := &testBehavior{entity: e}
		made[e] = b
		return b, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return New(classes), made
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	r, made := newTestRegistry(t)

	h, err := r.Create(ctx, 42, "TestScript")
	if err != nil {
		t.Fatal(err)
	}
	if h == 0 {
		t.Fatal("expected non-zero handle")
	}
	if st, _ := r.State(h); st != StateCreated {
		t.Errorf("state = %v, want created", st)
	}
	if e, _ := r.Entity(h); e != 42 {
		t.Errorf("entity = %d, want 42", e)
	}

	if err := r.OnCreate(ctx, h); err != nil {
		t.Fatal(err)
	}
	if err := r.OnUpdate(ctx, h, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := r.OnUpdate(ctx, h, 0); err != nil {
		t.Fatalf("zero dt rejected: %v", err)
	}
	if st, _ := r.State(h); st != StateUpdating {
		t.Errorf("state = %v, want updating", st)
	}

	b := made[42]
	if b.created != 1 || len(b.updates) != 2 || b.updates[0] != 0.5 {
		t.Errorf("behaviour saw created=%d updates=%v", b.created, b.updates)
	}

	if err := r.Destroy(ctx, h); err != nil {
		t.Fatal(err)
	}
	if b.closed != 1 {
		t.Errorf("Close called %d times, want 1", b.closed)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}

	if err := r.Destroy(ctx, h); !errors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("second destroy: got %v, want invalid handle", err)
	}
	if err := r.OnUpdate(ctx, h, 0.1); !errors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("update after destroy: got %v, want invalid handle", err)
	}
	if st, err := r.State(h); st != StateDestroyed || err == nil {
		t.Errorf("State after destroy = %v, %v", st, err)
	}
}

func TestUnknownClass(t *testing.T) {
	r, _ := newTestRegistry(t)

	h, err := r.Create(context.Background(), 1, "Missing")
	if h != 0 {
		t.Errorf("handle = %v, want 0", h)
	}
	if !errors.Is(err, errors.ErrUnknownClass) {
		t.Errorf("got %v, want unknown class", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestConstructionFailure(t *testing.T) {
	classes := NewClasses()
	_ = classes.Register("Err", func(context.Context, scriptbridge.EntityID) (Behavior, error) {
		return nil, stderrors.New("no")
	})
	_ = classes.Register("Nil", func(context.Context, scriptbridge.EntityID) (Behavior, error) {
		return nil, nil
	})
	_ = classes.Register("Panic", func(context.Context, scriptbridge.EntityID) (Behavior, error) {
		panic("ctor")
	})
	r := New(classes)

	for _, name := range classes.Names() {
		t.Run(name, func(t *testing.T) {
			h, err := r.Create(context.Background(), 1, name)
			if h != 0 || !errors.Is(err, errors.ErrConstruction) {
				t.Errorf("got (%v, %v), want construction error", h, err)
			}
			if r.Len() != 0 {
				t.Error("failed construction left an instance behind")
			}
		})
	}
}

func TestOrdering(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	h, _ := r.Create(ctx, 1, "TestScript")

	if err := r.OnUpdate(ctx, h, 0.1); !errors.Is(err, errors.ErrOutOfOrder) {
		t.Errorf("update before create: got %v, want out of order", err)
	}
	if err := r.OnCreate(ctx, h); err != nil {
		t.Fatal(err)
	}
	if err := r.OnCreate(ctx, h); !errors.Is(err, errors.ErrOutOfOrder) {
		t.Errorf("second create: got %v, want out of order", err)
	}
}

func TestDestroyFromCreated(t *testing.T) {
	ctx := context.Background()
	r, made := newTestRegistry(t)
	h, _ := r.Create(ctx, 9, "TestScript")

	if err := r.Destroy(ctx, h); err != nil {
		t.Fatalf("destroy before on_create: %v", err)
	}
	if made[9].created != 0 {
		t.Error("destroy should not deliver on_create")
	}
}

func TestInvalidDelta(t *testing.T) {
	ctx := context.Background()
	r, made := newTestRegistry(t)
	h, _ := r.Create(ctx, 1, "TestScript")
	_ = r.OnCreate(ctx, h)

	for _, dt := range []float32{-0.1, float32(math.NaN()), float32(math.Inf(1))} {
		if err := r.OnUpdate(ctx, h, dt); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("dt=%v: got %v, want invalid input", dt, err)
		}
	}
	if len(made[1].updates) != 0 {
		t.Error("invalid dt reached the behaviour")
	}
}

func TestBehaviorErrorsKeepHandle(t *testing.T) {
	ctx := context.Background()
	classes := NewClasses()
	var last *testBehavior
	_ = classes.Register("Flaky", func(ctx context.Context, e scriptbridge.EntityID) (Behavior, error) {
		last = &testBehavior{failOn: "panic"}
		return last, nil
	})
	r := New(classes)

	h, _ := r.Create(ctx, 1, "Flaky")
	err := r.OnCreate(ctx, h)
	if !errors.Is(err, errors.ErrPanic) {
		t.Fatalf("got %v, want panic error", err)
	}
	if _, ok := r.Lookup(h); !ok {
		t.Fatal("panic should not invalidate the handle")
	}

	last.failOn = "update"
	err = r.OnUpdate(ctx, h, 0.1)
	if !errors.Is(err, errors.ErrBehavior) {
		t.Fatalf("got %v, want behaviour error", err)
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Handle != uint64(h) || e.Class != "Flaky" {
		t.Errorf("error lacks context: %+v", e)
	}
}

func TestHandleGenerations(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	h1, _ := r.Create(ctx, 1, "TestScript")
	_ = r.Destroy(ctx, h1)
	h2, _ := r.Create(ctx, 2, "TestScript")

	if h1 == h2 {
		t.Fatal("reused slot produced the same handle")
	}
	if uint32(h1) != uint32(h2) {
		t.Errorf("expected slot reuse: %v vs %v", h1, h2)
	}
	if _, ok := r.Lookup(h1); ok {
		t.Error("stale handle resolved after slot reuse")
	}
	if e, err := r.Entity(h2); err != nil || e != 2 {
		t.Errorf("Entity(h2) = %d, %v", e, err)
	}
	if _, ok := r.Lookup(0); ok {
		t.Error("handle 0 resolved")
	}
}

func TestObserverAndEach(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	obs := &testObserver{}
	r.Subscribe(obs)

	h1, _ := r.Create(ctx, 1, "TestScript")
	h2, _ := r.Create(ctx, 2, "TestScript")
	_ = r.OnCreate(ctx, h1)
	_ = r.Destroy(ctx, h2)

	want := []EventType{EventCreated, EventCreated, EventCreateCalled, EventDestroyed}
	if len(obs.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(obs.events), len(want))
	}
	for i, e := range obs.events {
		if e.Type != want[i] {
			t.Errorf("event %d = %v, want %v", i, e.Type, want[i])
		}
	}

	var seen []Info
	r.Each(func(info Info) bool {
		seen = append(seen, info)
		return true
	})
	if len(seen) != 1 || seen[0].Handle != h1 || seen[0].State != StatePostCreateCalled {
		t.Errorf("Each = %+v", seen)
	}

	r.Unsubscribe(obs)
	_, _ = r.Create(ctx, 3, "TestScript")
	if len(obs.events) != len(want) {
		t.Error("unsubscribed observer still notified")
	}
}

type selfDestroyer struct {
	r *Registry
	h Handle
}

func (s *selfDestroyer) OnCreate(ctx context.Context) error { return nil }

func (s *selfDestroyer) OnUpdate(ctx context.Context, dt float32) error {
	return s.r.Destroy(ctx, s.h)
}

func TestReentrantDestroy(t *testing.T) {
	ctx := context.Background()
	classes := NewClasses()
	var sd *selfDestroyer
	_ = classes.Register("SelfDestroy", func(ctx context.Context, e scriptbridge.EntityID) (Behavior, error) {
		sd = &selfDestroyer{}
		return sd, nil
	})
	r := New(classes)

	h, _ := r.Create(ctx, 1, "SelfDestroy")
	sd.r, sd.h = r, h
	_ = r.OnCreate(ctx, h)

	if err := r.OnUpdate(ctx, h, 0.1); err != nil {
		t.Fatalf("self destroy from on_update: %v", err)
	}
	if r.Len() != 0 {
		t.Error("instance still live")
	}
}

type eagerUpdater struct {
	r         *Registry
	h         Handle
	updateErr error
	updates   int
}

func (e *eagerUpdater) OnCreate(ctx context.Context) error {
	e.updateErr = e.r.OnUpdate(ctx, e.h, 0)
	return nil
}

func (e *eagerUpdater) OnUpdate(ctx context.Context, dt float32) error {
	e.updates++
	return nil
}

func TestUpdateRejectedDuringCreate(t *testing.T) {
	ctx := context.Background()
	classes := NewClasses()
	var eu *eagerUpdater
	_ = classes.Register("Eager", func(ctx context.Context, e scriptbridge.EntityID) (Behavior, error) {
		eu = &eagerUpdater{}
		return eu, nil
	})
	r := New(classes)

	h, _ := r.Create(ctx, 1, "Eager")
	eu.r, eu.h = r, h
	if err := r.OnCreate(ctx, h); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(eu.updateErr, errors.ErrOutOfOrder) {
		t.Errorf("on_update inside on_create: got %v, want out of order", eu.updateErr)
	}
	if eu.updates != 0 {
		t.Fatal("on_update ran before on_create returned")
	}

	if err := r.OnUpdate(ctx, h, 0.1); err != nil {
		t.Fatal(err)
	}
	if eu.updates != 1 {
		t.Errorf("updates = %d, want 1", eu.updates)
	}
}

type blockingBehavior struct {
	entered chan struct{}
	proceed chan struct{}
	closed  atomic.Int32
	midCall atomic.Bool
	inCall  atomic.Bool
}

func (b *blockingBehavior) OnCreate(ctx context.Context) error { return nil }

func (b *blockingBehavior) OnUpdate(ctx context.Context, dt float32) error {
	b.inCall.Store(true)
	b.entered <- struct{}{}
	<-b.proceed
	b.inCall.Store(false)
	return nil
}

func (b *blockingBehavior) Close(ctx context.Context) error {
	if b.inCall.Load() {
		b.midCall.Store(true)
	}
	b.closed.Add(1)
	return nil
}

func TestDestroyDuringUpdateDefersRelease(t *testing.T) {
	ctx := context.Background()
	classes := NewClasses()
	bb := &blockingBehavior{entered: make(chan struct{}), proceed: make(chan struct{})}
	_ = classes.Register("Blocking", func(ctx context.Context, e scriptbridge.EntityID) (Behavior, error) {
		return bb, nil
	})
	r := New(classes)

	h, _ := r.Create(ctx, 1, "Blocking")
	if err := r.OnCreate(ctx, h); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- r.OnUpdate(ctx, h, 0.1) }()
	<-bb.entered

	if err := r.OnUpdate(ctx, h, 0.1); !errors.Is(err, errors.ErrOutOfOrder) {
		t.Errorf("concurrent on_update: got %v, want out of order", err)
	}

	if err := r.Destroy(ctx, h); err != nil {
		t.Fatalf("destroy during on_update: %v", err)
	}
	if _, ok := r.Lookup(h); ok {
		t.Error("handle still valid after destroy")
	}
	if n := bb.closed.Load(); n != 0 {
		t.Errorf("behaviour closed %d times while on_update was running", n)
	}
	if err := r.Destroy(ctx, h); !errors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("second destroy: %v", err)
	}

	close(bb.proceed)
	if err := <-done; err != nil {
		t.Fatalf("in-flight on_update: %v", err)
	}
	if n := bb.closed.Load(); n != 1 {
		t.Errorf("behaviour closed %d times, want 1", n)
	}
	if bb.midCall.Load() {
		t.Error("Close ran while on_update was executing")
	}
}

func TestExhaustedSlotIsRetired(t *testing.T) {
	tbl := newSlotTable()
	tbl.insert(slot{class: "A"})
	tbl.entries[0].gen = math.MaxUint32
	h := newHandle(0, math.MaxUint32)

	if _, ok := tbl.remove(h); !ok {
		t.Fatal("remove failed")
	}
	if len(tbl.freeList) != 0 {
		t.Fatal("exhausted slot returned to the free list")
	}
	next := tbl.insert(slot{class: "B"})
	if idx, _ := next.index(); idx != 1 {
		t.Errorf("insert reused index %d, want a fresh slot", idx)
	}
	if _, ok := tbl.get(h); ok {
		t.Error("handle to a retired slot still resolves")
	}
	if _, ok := tbl.get(newHandle(0, 0)); ok {
		t.Error("wrapped generation resolves against a retired slot")
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	r, made := newTestRegistry(t)
	_, _ = r.Create(ctx, 1, "TestScript")
	_, _ = r.Create(ctx, 2, "TestScript")

	if err := r.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if made[1].closed != 1 || made[2].closed != 1 {
		t.Error("Close did not release every behaviour")
	}
	if _, err := r.Create(ctx, 3, "TestScript"); errors.KindOf(err) != errors.KindClosed {
		t.Errorf("create after close: got %v", err)
	}
}

func TestClassesRegister(t *testing.T) {
	c := NewClasses()
	ctor := func(context.Context, scriptbridge.EntityID) (Behavior, error) { return &testBehavior{}, nil }

	if err := c.Register("", ctor); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("empty name: %v", err)
	}
	if err := c.Register("A", nil); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("nil ctor: %v", err)
	}
	if err := c.Register("A", ctor); err != nil {
		t.Fatal(err)
	}
	if err := c.Register("A", ctor); errors.KindOf(err) != errors.KindDuplicate {
		t.Errorf("duplicate: %v", err)
	}
	if _, ok := c.Lookup("a"); ok {
		t.Error("lookup should be case-sensitive")
	}
}
