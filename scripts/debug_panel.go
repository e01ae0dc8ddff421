package scripts

import (
	"context"
	"fmt"

	"github.com/wippyai/script-bridge/facade"
)

// DebugPanel draws an immediate-mode window with frame stats and a few
// controls for its entity.
type DebugPanel struct {
	entity  *facade.Entity
	elapsed float32
	frames  int
	scale   float32
	paused  bool
}

func NewDebugPanel(e *facade.Entity) *DebugPanel {
	return &DebugPanel{entity: e, scale: 1}
}

// Paused reports the state of the panel's pause checkbox.
func (p *DebugPanel) Paused() bool {
	return p.paused
}

// Scale returns the panel's time scale slider value.
func (p *DebugPanel) Scale() float32 {
	return p.scale
}

func (p *DebugPanel) OnCreate(context.Context) error {
	return p.entity.Log().Infof("DebugPanel attached to entity %d", p.entity.ID())
}

func (p *DebugPanel) OnUpdate(_ context.Context, dt float32) error {
	if !p.paused {
		p.elapsed += dt * p.scale
		p.frames++
	}

	ui := p.entity.UI()
	return ui.Window(fmt.Sprintf("Entity %d", p.entity.ID()), func() error {
		if err := ui.Text(fmt.Sprintf("frames: %d", p.frames)); err != nil {
			return err
		}
		if err := ui.SameLine(); err != nil {
			return err
		}
		if err := ui.Text(fmt.Sprintf("time: %.2fs", p.elapsed)); err != nil {
			return err
		}
		if err := ui.Separator(); err != nil {
			return err
		}
		if _, err := ui.Checkbox("paused", &p.paused); err != nil {
			return err
		}
		if _, err := ui.SliderFloat("time scale", &p.scale, 0, 4); err != nil {
			return err
		}
		reset, err := ui.Button("reset")
		if err != nil || !reset {
			return err
		}
		p.elapsed, p.frames = 0, 0
		return p.entity.Log().Info("DebugPanel reset")
	})
}
