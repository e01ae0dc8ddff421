package scripts

import (
	"context"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/facade"
)

// TestScript lifts its entity to (0, 10, 0) on create and logs the entity's
// position once per second of updates.
type TestScript struct {
	entity *facade.Entity
	timer  float32
}

func NewTestScript(e *facade.Entity) *TestScript {
	return &TestScript{entity: e}
}

func (s *TestScript) OnCreate(context.Context) error {
	t, err := s.entity.Transform()
	if err != nil || t == nil {
		return err
	}
	return t.SetPosition(scriptbridge.Vector3{X: 0, Y: 10, Z: 0})
}

func (s *TestScript) OnUpdate(_ context.Context, dt float32) error {
	s.timer += dt
	if s.timer < 1 {
		return nil
	}
	s.timer = 0

	t, err := s.entity.Transform()
	if err != nil || t == nil {
		return err
	}
	pos, err := t.Position()
	if err != nil {
		return err
	}
	return s.entity.Log().Infof("Position: %v", pos)
}
