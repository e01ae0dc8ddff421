package scripts

import (
	"context"
	"math"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/facade"
)

// Spinner orbits its entity around the position it started at.
type Spinner struct {
	entity *facade.Entity
	center scriptbridge.Vector3
	angle  float64
	// Radius is the orbit radius in world units.
	Radius float32
	// Speed is the angular speed in radians per second.
	Speed float32
}

func NewSpinner(e *facade.Entity) *Spinner {
	return &Spinner{entity: e, Radius: 2, Speed: math.Pi}
}

func (s *Spinner) OnCreate(context.Context) error {
	t, err := s.entity.Transform()
	if err != nil {
		return err
	}
	if t == nil {
		return s.entity.Log().Warningf("Spinner on entity %d has no Transform", s.entity.ID())
	}
	s.center, err = t.Position()
	return err
}

func (s *Spinner) OnUpdate(_ context.Context, dt float32) error {
	t, err := s.entity.Transform()
	if err != nil || t == nil {
		return err
	}
	s.angle = math.Mod(s.angle+float64(s.Speed*dt), 2*math.Pi)
	sin, cos := math.Sincos(s.angle)
	return t.SetPosition(scriptbridge.Vector3{
		X: s.center.X + s.Radius*float32(cos),
		Y: s.center.Y,
		Z: s.center.Z + s.Radius*float32(sin),
	})
}
