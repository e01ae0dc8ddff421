package registry

import (
	"sort"
	"sync"

	"github.com/wippyai/script-bridge/errors"
)

// Classes is the closed table of behaviour classes, keyed by name.
// It is populated at startup; lookups are safe for concurrent use.
type Classes struct {
	ctors map[string]Constructor
	mu    sync.RWMutex
}

func NewClasses() *Classes {
	return &Classes{
		ctors: make(map[string]Constructor),
	}
}

// Register adds a class. Names are unique and case-sensitive.
func (c *Classes) Register(name string, ctor Constructor) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseResolve, "class name cannot be empty")
	}
	if ctor == nil {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Class(name).
			Detail("constructor cannot be nil").
			Build()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.ctors[name]; exists {
		return errors.Duplicate(errors.PhaseResolve, "class", name)
	}
	c.ctors[name] = ctor
	return nil
}

func (c *Classes) Lookup(name string) (Constructor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctor, ok := c.ctors[name]
	return ctor, ok
}

// Names returns the registered class names in sorted order.
func (c *Classes) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.ctors))
	for name := range c.ctors {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (c *Classes) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ctors)
}
