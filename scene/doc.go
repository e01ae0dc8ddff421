// Package scene is an in-memory engine world that drives scripts through the
// bridge.
//
// A Scene holds entities with optional Transform, RectTransform, UIButton,
// UIText and Script components. Scene.Bindings implements every call table
// operation against that state, so a runtime initialised with it behaves like
// one embedded in a real engine: script log calls land in a bounded Console
// and the configured zap logger, and immediate-mode UI calls are recorded by
// the imui subpackage.
//
// ScriptSystem is the frame loop:
//
//	sys := scene.NewScriptSystem(sc, rt)
//	sys.Start(ctx)            // CreateInstance + CallOnCreate per scripted entity
//	for range frames {
//	    sys.Tick(ctx, dt)     // CallOnUpdate per running script
//	}
//	sys.Stop()                // DestroyInstance for all
//
// Scenes can be described in TOML and loaded with Load.
package scene
