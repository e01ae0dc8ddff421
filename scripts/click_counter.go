package scripts

import (
	"context"
	"fmt"

	"github.com/wippyai/script-bridge/facade"
)

// ClickCounter counts clicks on its entity's button and shows the count in
// the entity's text widget, if it has one.
type ClickCounter struct {
	entity *facade.Entity
	clicks int
}

func NewClickCounter(e *facade.Entity) *ClickCounter {
	return &ClickCounter{entity: e}
}

func (c *ClickCounter) Clicks() int {
	return c.clicks
}

func (c *ClickCounter) OnCreate(context.Context) error {
	b, err := c.entity.Button()
	if err != nil {
		return err
	}
	if b == nil {
		return c.entity.Log().Warningf("ClickCounter on entity %d has no UIButton", c.entity.ID())
	}
	return c.show()
}

func (c *ClickCounter) OnUpdate(context.Context, float32) error {
	b, err := c.entity.Button()
	if err != nil || b == nil {
		return err
	}
	clicked, err := b.Clicked()
	if err != nil || !clicked {
		return err
	}
	c.clicks++
	if err := c.entity.Log().Infof("Button %d clicked %d times", c.entity.ID(), c.clicks); err != nil {
		return err
	}
	return c.show()
}

func (c *ClickCounter) show() error {
	t, err := c.entity.Text()
	if err != nil || t == nil {
		return err
	}
	return t.SetText(fmt.Sprintf("Clicks: %d", c.clicks))
}
