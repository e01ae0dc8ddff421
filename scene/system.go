package scene

import (
	"context"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/marshal"
	"github.com/wippyai/script-bridge/registry"
	"github.com/wippyai/script-bridge/runtime"
	"go.uber.org/zap"
)

// ScriptSystem drives the script components of a scene through the bridge's
// engine-facing entry points.
type ScriptSystem struct {
	scene *Scene
	rt    *runtime.Runtime
	log   *zap.Logger
	ticks uint64
	bound bool
}

// NewScriptSystem creates a system for scene using rt.
func NewScriptSystem(scene *Scene, rt *runtime.Runtime) *ScriptSystem {
	return &ScriptSystem{
		scene: scene,
		rt:    rt,
		log:   scene.Logger().Named("scripts"),
	}
}

// Start hands the scene's bindings to the runtime on first use, then creates
// and initialises every script that is not running yet. A script whose class
// cannot be instantiated is logged and skipped; its entity stays in the scene.
// Start may be called again after new scripted entities are added.
func (s *ScriptSystem) Start(ctx context.Context) {
	if !s.bound {
		s.rt.InitializeCallTable(s.scene.Bindings())
		s.bound = true
	}

	for _, e := range s.scene.Entities() {
		script := s.script(e)
		if script == nil || script.Initialized || script.Class == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		h := s.rt.CreateInstance(e.ID, marshal.EncodeString(script.Class))
		if h == 0 {
			s.log.Error("failed to instantiate script class",
				zap.String("class", script.Class),
				zap.Uint32("entity", uint32(e.ID)))
			continue
		}
		s.rt.CallOnCreate(h)

		s.scene.with(e.ID, func(e *Entity) {
			e.Script.Handle = h
			e.Script.Initialized = true
		})
		s.log.Info("script initialized",
			zap.String("class", script.Class),
			zap.Uint32("entity", uint32(e.ID)))
	}
}

// Tick runs one frame: every initialised script gets OnUpdate(dt) inside a UI
// frame, then per-frame button clicks are cleared.
func (s *ScriptSystem) Tick(ctx context.Context, dt float32) {
	ui := s.scene.UI()
	ui.NewFrame()
	for _, e := range s.scene.Entities() {
		if ctx.Err() != nil {
			break
		}
		script := s.script(e)
		if script == nil || !script.Initialized || script.Handle == 0 {
			continue
		}
		s.rt.CallOnUpdate(script.Handle, dt)
	}
	ui.EndFrame()
	s.scene.ClearClicks()
	s.ticks++
}

// Ticks returns the number of frames run.
func (s *ScriptSystem) Ticks() uint64 {
	return s.ticks
}

// Handle returns the instance handle for an entity's script.
func (s *ScriptSystem) Handle(id scriptbridge.EntityID) (registry.Handle, bool) {
	e, ok := s.scene.Entity(id)
	if !ok {
		return 0, false
	}
	script := s.script(e)
	if script == nil || script.Handle == 0 {
		return 0, false
	}
	return script.Handle, true
}

// Remove destroys an entity's script instance and removes the entity.
func (s *ScriptSystem) Remove(id scriptbridge.EntityID) bool {
	if h, ok := s.Handle(id); ok {
		s.rt.DestroyInstance(h)
	}
	return s.scene.Remove(id)
}

// Stop destroys every script instance. Scripts can be started again.
func (s *ScriptSystem) Stop() {
	for _, e := range s.scene.Entities() {
		script := s.script(e)
		if script == nil || script.Handle == 0 {
			continue
		}
		s.rt.DestroyInstance(script.Handle)
		s.scene.with(e.ID, func(e *Entity) {
			e.Script.Handle = 0
			e.Script.Initialized = false
		})
	}
}

// script returns a copy of e's script component.
func (s *ScriptSystem) script(e *Entity) *Script {
	var out *Script
	s.scene.read(e.ID, func(e *Entity) {
		if e.Script != nil {
			c := *e.Script
			out = &c
		}
	})
	return out
}
