package scene

import (
	"sort"
	"strconv"
	"sync"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/registry"
	"github.com/wippyai/script-bridge/scene/imui"
	"go.uber.org/zap"
)

// Default screen size used for anchor math.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Transform is a world-space transform.
type Transform struct {
	Position scriptbridge.Vector3
	Rotation scriptbridge.Vector3
	Scale    scriptbridge.Vector3
}

// RectTransform places a UI element relative to a screen anchor.
type RectTransform struct {
	Position scriptbridge.Vector2
	Size     scriptbridge.Vector2
	// Pivot is the element's origin as a fraction of its size.
	Pivot  scriptbridge.Vector2
	Anchor scriptbridge.Anchor
	Active bool
}

// Button is a clickable UI element. Clicked holds for the frame it happened in.
type Button struct {
	Text    string
	Clicked bool
}

// Text is a UI label.
type Text struct {
	Text     string
	FontSize float32
}

// Script attaches a behaviour class to an entity.
type Script struct {
	Class       string
	Handle      registry.Handle
	Initialized bool
}

// Entity is a scene object with optional components.
type Entity struct {
	Transform     *Transform
	RectTransform *RectTransform
	Button        *Button
	Text          *Text
	Script        *Script
	Name          string
	ID            scriptbridge.EntityID
}

// Components returns the names of the components e carries, using the names
// scripts query with has_component.
func (e *Entity) Components() []string {
	var out []string
	if e.Transform != nil {
		out = append(out, ComponentTransform)
	}
	if e.RectTransform != nil {
		out = append(out, ComponentRectTransform)
	}
	if e.Button != nil {
		out = append(out, ComponentButton)
	}
	if e.Text != nil {
		out = append(out, ComponentText)
	}
	if e.Script != nil {
		out = append(out, ComponentScript)
	}
	return out
}

func (e *Entity) has(name string) bool {
	switch name {
	case ComponentTransform:
		return e.Transform != nil
	case ComponentRectTransform:
		return e.RectTransform != nil
	case ComponentButton:
		return e.Button != nil
	case ComponentText:
		return e.Text != nil
	case ComponentScript:
		return e.Script != nil
	default:
		return false
	}
}

// Component names reported to scripts.
const (
	ComponentTransform     = "Transform"
	ComponentRectTransform = "RectTransform"
	ComponentButton        = "UIButton"
	ComponentText          = "UIText"
	ComponentScript        = "Script"
)

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger script log calls are written to.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConsoleSize bounds the in-memory console.
func WithConsoleSize(n int) Option {
	return func(s *Scene) {
		s.console = NewConsole(n)
	}
}

// WithScreen sets the screen size used to resolve anchors.
func WithScreen(width, height int) Option {
	return func(s *Scene) {
		s.width, s.height = width, height
	}
}

// Scene is an in-memory engine world. All methods are safe for concurrent use.
type Scene struct {
	entities map[scriptbridge.EntityID]*Entity
	console  *Console
	ui       *imui.Context
	log      *zap.Logger
	mu       sync.RWMutex
	next     scriptbridge.EntityID
	width    int
	height   int
}

func New(opts ...Option) *Scene {
	s := &Scene{
		entities: make(map[scriptbridge.EntityID]*Entity),
		console:  NewConsole(DefaultConsoleSize),
		ui:       imui.New(),
		log:      zap.NewNop(),
		next:     1,
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn creates an entity with the next free id.
func (s *Scene) Spawn(name string) *Entity {
	e := &Entity{Name: name}
	s.spawn(e)
	return e
}

// spawn inserts e under the next free id.
func (s *Scene) spawn(e *Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.entities[s.next] != nil {
		s.next++
	}
	e.ID = s.next
	s.entities[e.ID] = e
	s.next++
}

// Add inserts an entity with a caller-chosen id.
func (s *Scene) Add(e *Entity) error {
	if e == nil {
		return errors.InvalidInput(errors.PhaseConfig, "entity cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[e.ID]; exists {
		return errors.Duplicate(errors.PhaseConfig, "entity", strconv.FormatUint(uint64(e.ID), 10))
	}
	s.entities[e.ID] = e
	if e.ID >= s.next {
		s.next = e.ID + 1
	}
	return nil
}

// Entity returns the entity with the given id.
func (s *Scene) Entity(id scriptbridge.EntityID) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// Remove deletes an entity. Any script instance must be destroyed by the
// caller; ScriptSystem.Remove does both.
func (s *Scene) Remove(id scriptbridge.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return false
	}
	delete(s.entities, id)
	return true
}

// Entities returns every entity ordered by id.
func (s *Scene) Entities() []*Entity {
	s.mu.RLock()
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Click marks an entity's button as clicked for the current frame.
func (s *Scene) Click(id scriptbridge.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok || e.Button == nil {
		return false
	}
	e.Button.Clicked = true
	return true
}

// ClearClicks resets every button's clicked flag.
func (s *Scene) ClearClicks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entities {
		if e.Button != nil {
			e.Button.Clicked = false
		}
	}
}

// Screen returns the screen size used for anchors.
func (s *Scene) Screen() (width, height int) {
	return s.width, s.height
}

func (s *Scene) Console() *Console {
	return s.console
}

// UI returns the immediate-mode UI context scripts draw into.
func (s *Scene) UI() *imui.Context {
	return s.ui
}

func (s *Scene) Logger() *zap.Logger {
	return s.log
}

// with runs fn on the entity under the write lock. Missing entities are
// ignored.
func (s *Scene) with(id scriptbridge.EntityID, fn func(*Entity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[id]; ok {
		fn(e)
	}
}

// read runs fn on the entity under the read lock. Missing entities are
// ignored.
func (s *Scene) read(id scriptbridge.EntityID, fn func(*Entity)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entities[id]; ok {
		fn(e)
	}
}
