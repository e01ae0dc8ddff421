package registry

import (
	"math"

	scriptbridge "github.com/wippyai/script-bridge"
)

type slot struct {
	behavior Behavior
	class    string
	entity   scriptbridge.EntityID
	gen      uint32
	state    State
	valid    bool
	run      *activity
}

// activity tracks a dispatch in flight. It outlives the slot so a destroy
// that lands mid-call can hand the release over to the dispatcher.
type activity struct {
	busy     bool
	creating bool
	released bool
}

// slotTable is the handle store. A freed slot bumps its generation so stale
// handles never resolve again. Callers hold the registry lock.
type slotTable struct {
	entries  []slot
	freeList []uint32
	live     int
}

func newSlotTable() slotTable {
	return slotTable{
		entries:  make([]slot, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func (t *slotTable) insert(s slot) Handle {
	s.valid = true
	s.run = &activity{}
	t.live++

	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		s.gen = t.entries[idx].gen
		t.entries[idx] = s
		return newHandle(idx, s.gen)
	}

	t.entries = append(t.entries, s)
	return newHandle(uint32(len(t.entries)-1), 0)
}

func (t *slotTable) get(h Handle) (*slot, bool) {
	idx, ok := h.index()
	if !ok || int(idx) >= len(t.entries) {
		return nil, false
	}
	s := &t.entries[idx]
	if !s.valid || s.gen != h.generation() {
		return nil, false
	}
	return s, true
}

// remove frees h's slot and returns what it held. A slot whose generation
// is exhausted is retired instead of reused.
func (t *slotTable) remove(h Handle) (slot, bool) {
	s, ok := t.get(h)
	if !ok {
		return slot{}, false
	}
	old := *s
	idx, _ := h.index()
	t.live--
	if old.gen == math.MaxUint32 {
		*s = slot{gen: old.gen}
		return old, true
	}
	*s = slot{gen: old.gen + 1}
	t.freeList = append(t.freeList, idx)
	return old, true
}

func (t *slotTable) each(fn func(Handle, *slot)) {
	for i := range t.entries {
		s := &t.entries[i]
		if s.valid {
			fn(newHandle(uint32(i), s.gen), s)
		}
	}
}
