package facade

import (
	"sync"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
)

// Component names as the engine knows them.
const (
	ComponentTransform     = "Transform"
	ComponentRectTransform = "RectTransform"
	ComponentButton        = "UIButton"
	ComponentText          = "UIText"
)

// Entity is a behaviour's view of the entity it is attached to. Component
// facades are resolved on first access and cached; a missing component is
// asked about again next time since the engine may add it later.
type Entity struct {
	calls     *calltable.Table
	transform *Transform
	rect      *RectTransform
	button    *Button
	text      *Text
	id        scriptbridge.EntityID
	mu        sync.Mutex
}

func NewEntity(id scriptbridge.EntityID, calls *calltable.Table) *Entity {
	return &Entity{id: id, calls: calls}
}

func (e *Entity) ID() scriptbridge.EntityID {
	return e.id
}

// Calls returns the call table the facades invoke through.
func (e *Entity) Calls() *calltable.Table {
	return e.calls
}

// HasComponent asks the engine directly, bypassing the facade cache.
func (e *Entity) HasComponent(name string) (bool, error) {
	return e.calls.HasComponent(e.id, name)
}

// Transform returns the entity's Transform facade, or nil if the entity has
// no Transform component.
func (e *Entity) Transform() (*Transform, error) {
	return resolve(e, &e.transform, ComponentTransform, func() *Transform {
		return &Transform{id: e.id, calls: e.calls}
	})
}

func (e *Entity) RectTransform() (*RectTransform, error) {
	return resolve(e, &e.rect, ComponentRectTransform, func() *RectTransform {
		return &RectTransform{id: e.id, calls: e.calls}
	})
}

func (e *Entity) Button() (*Button, error) {
	return resolve(e, &e.button, ComponentButton, func() *Button {
		return &Button{id: e.id, calls: e.calls}
	})
}

func (e *Entity) Text() (*Text, error) {
	return resolve(e, &e.text, ComponentText, func() *Text {
		return &Text{id: e.id, calls: e.calls}
	})
}

// Log returns the logging facade.
func (e *Entity) Log() Log {
	return Log{calls: e.calls}
}

// UI returns the immediate-mode UI facade.
func (e *Entity) UI() UI {
	return UI{calls: e.calls}
}

func resolve[F any](e *Entity, cached **F, component string, build func() *F) (*F, error) {
	e.mu.Lock()
	if f := *cached; f != nil {
		e.mu.Unlock()
		return f, nil
	}
	e.mu.Unlock()

	ok, err := e.calls.HasComponent(e.id, component)
	if err != nil || !ok {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if *cached == nil {
		*cached = build()
	}
	return *cached, nil
}
