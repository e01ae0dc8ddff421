package registry

import (
	"context"
	"fmt"

	scriptbridge "github.com/wippyai/script-bridge"
)

// Handle is an opaque reference to one live behaviour instance.
// The low 32 bits hold slot index + 1, the high 32 bits the slot generation.
// Handle 0 is reserved and always invalid.
type Handle uint64

func newHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) index() (uint32, bool) {
	low := uint32(h)
	if low == 0 {
		return 0, false
	}
	return low - 1, true
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

func (h Handle) String() string {
	return fmt.Sprintf("%#x", uint64(h))
}

// State is the lifecycle position of a handle.
type State uint8

const (
	StateCreated State = iota
	StatePostCreateCalled
	StateUpdating
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePostCreateCalled:
		return "post-create-called"
	case StateUpdating:
		return "updating"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Call selects the lifecycle method Dispatch delivers.
type Call uint8

const (
	CallCreate Call = iota
	CallUpdate
)

func (c Call) String() string {
	if c == CallCreate {
		return "on_create"
	}
	return "on_update"
}

// Behavior is one per-entity script object.
type Behavior interface {
	OnCreate(ctx context.Context) error
	OnUpdate(ctx context.Context, deltaTime float32) error
}

// Closer is implemented by behaviours holding resources released on destroy.
type Closer interface {
	Close(ctx context.Context) error
}

// Constructor builds a fresh behaviour bound to an entity.
type Constructor func(ctx context.Context, entity scriptbridge.EntityID) (Behavior, error)

// EventType identifies an instance lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventCreateCalled
	EventDestroyed
)

// Event represents an instance lifecycle event.
type Event struct {
	Class  string
	Handle Handle
	Entity scriptbridge.EntityID
	Type   EventType
}

// Observer receives notifications about instance lifecycle events.
// Callbacks run on the goroutine that caused the event, outside any lock.
type Observer interface {
	OnInstanceEvent(Event)
}

// Info describes a live instance.
type Info struct {
	Class  string
	Handle Handle
	Entity scriptbridge.EntityID
	State  State
}
