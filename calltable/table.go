package calltable

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/wippyai/script-bridge/errors"
)

type slots [OpCount]any

// Table holds one native function per operation. Slots are written during
// the startup handshake and read on every facade call. After Seal the table
// is immutable and reads take no lock.
type Table struct {
	current atomic.Pointer[slots]
	counts  [OpCount]atomic.Uint64
	mu      sync.Mutex
	sealed  atomic.Bool
}

func New() *Table {
	t := &Table{}
	t.current.Store(&slots{})
	return t
}

// Bind installs fn in op's slot. fn must have the slot's native signature,
// either as the named type or as an identical func literal. Rebinding before
// the table is sealed replaces the previous function.
func (t *Table) Bind(op Op, fn any) error {
	if !op.Valid() {
		return errors.InvalidInput(errors.PhaseBind, "operation out of range")
	}
	if fn == nil {
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Op(op.String()).
			Detail("native function is nil").
			Build()
	}

	want := op.Signature()
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || !rv.Type().ConvertibleTo(want) {
		return errors.TypeMismatch(op.String(), rv.Type().String(), want.String())
	}
	if rv.IsNil() {
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Op(op.String()).
			Detail("native function is nil").
			Build()
	}
	typed := rv.Convert(want).Interface()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed.Load() {
		return errors.Sealed(op.String())
	}

	next := *t.current.Load()
	next[op] = typed
	t.current.Store(&next)
	return nil
}

// BindName is Bind addressed by logical operation name.
func (t *Table) BindName(name string, fn any) error {
	op, ok := Lookup(name)
	if !ok {
		return errors.NotFound(errors.PhaseBind, "operation", name)
	}
	return t.Bind(op, fn)
}

// Initialize performs the one-time handshake: every non-nil function in b is
// bound and the table is sealed. Operations left nil stay unbound.
func (t *Table) Initialize(b Bindings) error {
	if t.sealed.Load() {
		return errors.Sealed("initialize")
	}
	for _, e := range b.entries() {
		if err := t.Bind(e.op, e.fn); err != nil {
			return err
		}
	}
	t.Seal()
	return nil
}

// Seal makes the table immutable. Sealing twice is a no-op.
func (t *Table) Seal() {
	t.mu.Lock()
	t.sealed.Store(true)
	t.mu.Unlock()
}

func (t *Table) Sealed() bool {
	return t.sealed.Load()
}

// Bound reports whether op has a native function.
func (t *Table) Bound(op Op) bool {
	return op.Valid() && t.current.Load()[op] != nil
}

// Unbound lists operations with no native function.
func (t *Table) Unbound() []Op {
	s := t.current.Load()
	var out []Op
	for i := Op(0); i < OpCount; i++ {
		if s[i] == nil {
			out = append(out, i)
		}
	}
	return out
}

// Missing returns an error naming every unbound operation, or nil.
func (t *Table) Missing() error {
	unbound := t.Unbound()
	if len(unbound) == 0 {
		return nil
	}
	names := make([]string, len(unbound))
	for i, op := range unbound {
		names[i] = op.String()
	}
	return errors.NewMissingBindingsError(names)
}

// Invocations returns how many native calls have gone through op's slot.
func (t *Table) Invocations(op Op) uint64 {
	if !op.Valid() {
		return 0
	}
	return t.counts[op].Load()
}

// slot returns op's function as F, counting the call. A missing binding is
// reported as ErrUnbound and nothing is called.
func slot[F any](t *Table, op Op) (F, error) {
	fn, ok := t.current.Load()[op].(F)
	if !ok {
		var zero F
		return zero, errors.Unbound(op.String())
	}
	t.counts[op].Add(1)
	return fn, nil
}
