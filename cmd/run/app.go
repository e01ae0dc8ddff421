package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/wippyai/script-bridge/guest"
	"github.com/wippyai/script-bridge/guest/wasmgen"
	"github.com/wippyai/script-bridge/runtime"
	"github.com/wippyai/script-bridge/scene"
	"github.com/wippyai/script-bridge/scripts"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// builtinPrefix selects a guest bundled with wasmgen instead of a file.
const builtinPrefix = "builtin:"

// app is a loaded scene with its runtime, guests and script system.
type app struct {
	file   *scene.File
	scene  *scene.Scene
	rt     *runtime.Runtime
	host   *guest.Host
	system *scene.ScriptSystem
	log    *zap.Logger
}

func newApp(ctx context.Context, path string, log *zap.Logger) (*app, error) {
	f, err := scene.Load(path)
	if err != nil {
		return nil, err
	}

	rt, err := runtime.New(runtime.WithLogger(log), runtime.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	a := &app{file: f, rt: rt, log: log}

	if err := scripts.Register(rt); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("register scripts: %w", err)
	}

	if len(f.Guests) > 0 {
		guest.SetLogger(log.Named("guest"))
		a.host, err = guest.New(ctx, rt.Calls(), &guest.Config{CloseOnContextDone: true})
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("create guest host: %w", err)
		}
		for _, g := range f.Guests {
			if err := a.loadGuest(ctx, g); err != nil {
				a.close(ctx)
				return nil, err
			}
		}
	}

	a.scene, err = f.Build(scene.WithLogger(log.Named("scene")))
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.system = scene.NewScriptSystem(a.scene, rt)
	return a, nil
}

func (a *app) loadGuest(ctx context.Context, g scene.GuestConfig) error {
	var (
		wasm []byte
		err  error
	)
	if name, ok := strings.CutPrefix(g.Path, builtinPrefix); ok {
		var found bool
		if wasm, found = wasmgen.Builtin(name); !found {
			return fmt.Errorf("guest %s: unknown builtin %q", g.Class, name)
		}
	} else if wasm, err = os.ReadFile(a.file.GuestPath(g)); err != nil {
		return fmt.Errorf("guest %s: %w", g.Class, err)
	}

	class, err := a.host.Compile(ctx, g.Class, wasm)
	if err != nil {
		return err
	}
	return a.rt.RegisterClass(class.Name(), class.Factory())
}

func (a *app) start(ctx context.Context) {
	a.system.Start(ctx)
}

func (a *app) close(ctx context.Context) error {
	var err error
	if a.system != nil {
		a.system.Stop()
	}
	err = multierr.Append(err, a.rt.Close(ctx))
	if a.host != nil {
		err = multierr.Append(err, a.host.Close(ctx))
	}
	return err
}
