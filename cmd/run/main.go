package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/profile"
	"github.com/wippyai/script-bridge/scene"
	"github.com/wippyai/script-bridge/scene/imui"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and drives the scene. Every exit path returns here so
// deferred profile and logger flushes always run.
func run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var (
		scenePath   = fs.String("scene", "", "Path to scene TOML file")
		ticks       = fs.Int("ticks", 60, "Number of frames to run")
		dt          = fs.Float64("dt", 1.0/60, "Frame delta in seconds")
		interactive = fs.Bool("i", false, "Interactive mode with TUI")
		verbose     = fs.Bool("v", false, "Debug logging")
		profileMode = fs.String("profile", "", "Write a profile: cpu, mem or trace")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -scene <scene.toml> [-ticks n] [-dt seconds] [-v]")
		fmt.Fprintln(os.Stderr, "       run -scene <scene.toml> -i  (interactive mode)")
		return fmt.Errorf("missing -scene")
	}

	stop, err := startProfile(*profileMode)
	if err != nil {
		return err
	}
	if stop != nil {
		defer stop()
	}

	log, err := newLogger(*verbose, *interactive)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(ctx, *scenePath, float32(*dt), log)
	}
	return runBatch(ctx, *scenePath, *ticks, float32(*dt), log)
}

func startProfile(mode string) (func(), error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	case "trace":
		opt = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q", mode)
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop, nil
}

// newLogger writes to stderr. The TUI owns the terminal, so interactive
// sessions only log warnings and above.
func newLogger(verbose, interactive bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if interactive {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func runBatch(ctx context.Context, path string, ticks int, dt float32, log *zap.Logger) error {
	a, err := newApp(ctx, path, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	fmt.Printf("Scene: %s\n", path)
	fmt.Printf("Entities: %d\n", a.scene.Len())
	fmt.Printf("Classes: %s\n", strings.Join(a.rt.Classes().Names(), ", "))

	a.start(ctx)
	for i := 0; i < ticks && ctx.Err() == nil; i++ {
		a.system.Tick(ctx, dt)
	}

	fmt.Printf("\nRan %d frames (%.2fs)\n", a.system.Ticks(), float32(a.system.Ticks())*dt)

	fmt.Printf("\n--- entities ---\n")
	for _, e := range a.scene.Entities() {
		fmt.Println(describe(e))
	}

	if entries := a.scene.Console().Entries(); len(entries) > 0 {
		fmt.Printf("\n--- console ---\n")
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.Level.CapitalString(), e.Message)
		}
	}

	if frame := a.scene.UI().Frame(); len(frame) > 0 {
		fmt.Printf("\n--- ui ---\n%s\n", imui.Render(frame))
	}

	missing := a.rt.Calls().Unbound()
	if len(missing) > 0 {
		log.Warn("operations left unbound", zap.Int("count", len(missing)))
	}
	return nil
}

func describe(e *scene.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", e.ID)
	if e.Name != "" {
		fmt.Fprintf(&b, " %s", e.Name)
	}
	if e.Script != nil {
		fmt.Fprintf(&b, " script=%s", e.Script.Class)
		if !e.Script.Initialized {
			b.WriteString(" (not running)")
		}
	}
	if e.Transform != nil {
		fmt.Fprintf(&b, " pos=%v", e.Transform.Position)
	}
	if e.RectTransform != nil {
		fmt.Fprintf(&b, " rect=%v@%v", e.RectTransform.Size, e.RectTransform.Anchor)
	}
	if e.Button != nil {
		fmt.Fprintf(&b, " button=%q", e.Button.Text)
	}
	if e.Text != nil {
		fmt.Fprintf(&b, " text=%q", e.Text.Text)
	}
	return b.String()
}
