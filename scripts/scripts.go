// Package scripts holds the built-in behaviour classes.
package scripts

import (
	"context"

	"github.com/wippyai/script-bridge/facade"
	"github.com/wippyai/script-bridge/registry"
	"github.com/wippyai/script-bridge/runtime"
)

// Class names.
const (
	ClassTestScript   = "TestScript"
	ClassSpinner      = "Spinner"
	ClassClickCounter = "ClickCounter"
	ClassDebugPanel   = "DebugPanel"
)

// Classes maps every built-in class name to its factory.
var Classes = map[string]runtime.Factory{
	ClassTestScript: func(_ context.Context, e *facade.Entity) (registry.Behavior, error) {
		return NewTestScript(e), nil
	},
	ClassSpinner: func(_ context.Context, e *facade.Entity) (registry.Behavior, error) {
		return NewSpinner(e), nil
	},
	ClassClickCounter: func(_ context.Context, e *facade.Entity) (registry.Behavior, error) {
		return NewClickCounter(e), nil
	},
	ClassDebugPanel: func(_ context.Context, e *facade.Entity) (registry.Behavior, error) {
		return NewDebugPanel(e), nil
	},
}

var (
	_ registry.Behavior = (*TestScript)(nil)
	_ registry.Behavior = (*Spinner)(nil)
	_ registry.Behavior = (*ClickCounter)(nil)
	_ registry.Behavior = (*DebugPanel)(nil)
)

// Register adds every built-in class to rt.
func Register(rt *runtime.Runtime) error {
	for _, name := range []string{ClassTestScript, ClassSpinner, ClassClickCounter, ClassDebugPanel} {
		if err := rt.RegisterClass(name, Classes[name]); err != nil {
			return err
		}
	}
	return nil
}
