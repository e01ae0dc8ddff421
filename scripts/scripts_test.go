package scripts

import (
	"context"
	"math"
	"testing"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/guest"
	"github.com/wippyai/script-bridge/guest/wasmgen"
	"github.com/wippyai/script-bridge/marshal"
	"github.com/wippyai/script-bridge/runtime"
	"github.com/wippyai/script-bridge/scene"
	"github.com/wippyai/script-bridge/scene/imui"
)

type world struct {
	scene *scene.Scene
	rt    *runtime.Runtime
}

func newWorld(t *testing.T) *world {
	t.Helper()
	rt, err := runtime.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = rt.Close(context.Background()) })
	if err := Register(rt); err != nil {
		t.Fatal(err)
	}
	s := scene.New()
	if !rt.InitializeCallTable(s.Bindings()) {
		t.Fatal("handshake failed")
	}
	return &world{scene: s, rt: rt}
}

func (w *world) lastLog(t *testing.T) string {
	t.Helper()
	entries := w.scene.Console().Entries()
	if len(entries) == 0 {
		t.Fatal("console is empty")
	}
	return entries[len(entries)-1].Message
}

// runEndToEnd drives the entity 42 scenario for the given class.
func runEndToEnd(t *testing.T, w *world, class, wantLog string) {
	t.Helper()
	if err := w.scene.Add(&scene.Entity{ID: 42, Transform: &scene.Transform{}}); err != nil {
		t.Fatal(err)
	}

	h := w.rt.CreateInstance(42, marshal.EncodeString(class))
	if h == 0 {
		t.Fatal("CreateInstance returned the invalid handle")
	}
	if !w.rt.CallOnCreate(h) {
		t.Fatal("CallOnCreate failed")
	}
	e, _ := w.scene.Entity(42)
	if e.Transform.Position != (scriptbridge.Vector3{Y: 10}) {
		t.Fatalf("position = %v, want (0, 10, 0)", e.Transform.Position)
	}

	if !w.rt.CallOnUpdate(h, 1.0) {
		t.Fatal("CallOnUpdate failed")
	}
	if got := w.lastLog(t); got != wantLog {
		t.Errorf("log = %q, want %q", got, wantLog)
	}

	if !w.rt.DestroyInstance(h) {
		t.Fatal("DestroyInstance failed")
	}
	if w.rt.CallOnUpdate(h, 1.0) {
		t.Error("update on destroyed handle succeeded")
	}
	if w.rt.DestroyInstance(h) {
		t.Error("second destroy succeeded")
	}
	if err := w.rt.Update(context.Background(), h, 1.0); !errors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("got %v, want invalid handle", err)
	}
}

func TestEndToEndTestScript(t *testing.T) {
	runEndToEnd(t, newWorld(t), ClassTestScript, "Position: (0, 10, 0)")
}

func TestEndToEndWasmGuest(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	host, err := guest.New(ctx, w.rt.Calls(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer host.Close(ctx)

	class, err := host.Compile(ctx, "Lifter", wasmgen.Lifter())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.rt.RegisterClass(class.Name(), class.Factory()); err != nil {
		t.Fatal(err)
	}
	runEndToEnd(t, w, "Lifter", "tick")
}

func TestUnknownClass(t *testing.T) {
	w := newWorld(t)
	before := w.rt.Instances().Len()
	if h := w.rt.CreateInstance(1, marshal.EncodeString("NoSuchScript")); h != 0 {
		t.Errorf("handle = %v, want 0", h)
	}
	if w.rt.Instances().Len() != before {
		t.Error("failed create changed the registry")
	}
}

func TestTestScriptWithoutTransform(t *testing.T) {
	w := newWorld(t)
	e := w.scene.Spawn("bare")
	h := w.rt.CreateInstance(e.ID, marshal.EncodeString(ClassTestScript))
	if !w.rt.CallOnCreate(h) || !w.rt.CallOnUpdate(h, 2) {
		t.Error("script should tolerate a missing transform")
	}
	if w.scene.Console().Len() != 0 {
		t.Errorf("unexpected logs: %+v", w.scene.Console().Entries())
	}
}

func TestSpinnerOrbits(t *testing.T) {
	w := newWorld(t)
	e := w.scene.Spawn("spinner")
	e.Transform = &scene.Transform{Position: scriptbridge.Vector3{X: 5, Y: 1}}

	ctx := context.Background()
	h, err := w.rt.Instantiate(ctx, e.ID, ClassSpinner)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.rt.Create(ctx, h); err != nil {
		t.Fatal(err)
	}

	// Half a turn at pi rad/s.
	if err := w.rt.Update(ctx, h, 1); err != nil {
		t.Fatal(err)
	}
	got := e.Transform.Position
	if math.Abs(float64(got.X-3)) > 1e-4 || got.Y != 1 || math.Abs(float64(got.Z)) > 1e-4 {
		t.Errorf("position after half a turn = %v, want (3, 1, 0)", got)
	}
}

func TestSpinnerWarnsWithoutTransform(t *testing.T) {
	w := newWorld(t)
	e := w.scene.Spawn("bare")
	h := w.rt.CreateInstance(e.ID, marshal.EncodeString(ClassSpinner))
	w.rt.CallOnCreate(h)
	if got := w.lastLog(t); got != "Spinner on entity 1 has no Transform" {
		t.Errorf("log = %q", got)
	}
}

func TestClickCounter(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	e := w.scene.Spawn("counter")
	e.Button = &scene.Button{Text: "Click"}
	e.Text = &scene.Text{}
	e.Script = &scene.Script{Class: ClassClickCounter}

	sys := scene.NewScriptSystem(w.scene, w.rt)
	sys.Start(ctx)
	if e.Text.Text != "Clicks: 0" {
		t.Errorf("text = %q", e.Text.Text)
	}

	w.scene.Click(e.ID)
	sys.Tick(ctx, 0.016)
	sys.Tick(ctx, 0.016)
	w.scene.Click(e.ID)
	sys.Tick(ctx, 0.016)

	if e.Text.Text != "Clicks: 2" {
		t.Errorf("text = %q, want Clicks: 2", e.Text.Text)
	}
	h, _ := sys.Handle(e.ID)
	b, _ := w.rt.Instances().Get(h)
	if b.(*ClickCounter).Clicks() != 2 {
		t.Errorf("Clicks = %d", b.(*ClickCounter).Clicks())
	}
}

func TestClickCounterWithoutButtonNeverQueriesIt(t *testing.T) {
	w := newWorld(t)
	e := w.scene.Spawn("plain")
	h := w.rt.CreateInstance(e.ID, marshal.EncodeString(ClassClickCounter))
	w.rt.CallOnCreate(h)
	for range 3 {
		w.rt.CallOnUpdate(h, 0.1)
	}
	calls := w.rt.Calls()
	for _, op := range []string{"ui_button.get_text", "ui_button.set_text", "ui_button.is_clicked"} {
		o, ok := calltable.Lookup(op)
		if !ok {
			t.Fatalf("unknown op %s", op)
		}
		if n := calls.Invocations(o); n != 0 {
			t.Errorf("%s invoked %d times", op, n)
		}
	}
}

func TestDebugPanel(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	e := w.scene.Spawn("debug")
	e.Script = &scene.Script{Class: ClassDebugPanel}

	sys := scene.NewScriptSystem(w.scene, w.rt)
	sys.Start(ctx)
	sys.Tick(ctx, 0.5)

	window := "Entity 1"
	frame := w.scene.UI().Frame()
	if len(frame) != 1 || frame[0].Name != window {
		t.Fatalf("frame = %+v", frame)
	}
	kinds := []imui.Kind{imui.KindText, imui.KindText, imui.KindSeparator, imui.KindCheckbox, imui.KindSlider, imui.KindButton}
	if len(frame[0].Widgets) != len(kinds) {
		t.Fatalf("widgets = %+v", frame[0].Widgets)
	}
	for i, k := range kinds {
		if frame[0].Widgets[i].Kind != k {
			t.Errorf("widget %d = %v, want %v", i, frame[0].Widgets[i].Kind, k)
		}
	}

	w.scene.UI().Toggle(window, "paused")
	w.scene.UI().Slide(window, "time scale", 2)
	sys.Tick(ctx, 0.5)

	h, _ := sys.Handle(e.ID)
	b, _ := w.rt.Instances().Get(h)
	panel := b.(*DebugPanel)
	if !panel.Paused() || panel.Scale() != 2 {
		t.Errorf("paused = %v, scale = %v", panel.Paused(), panel.Scale())
	}

	w.scene.UI().Press(window, "reset")
	sys.Tick(ctx, 0.5)
	if got := w.lastLog(t); got != "DebugPanel reset" {
		t.Errorf("log = %q", got)
	}
}

func TestRegisterTwice(t *testing.T) {
	w := newWorld(t)
	if err := Register(w.rt); errors.KindOf(err) != errors.KindDuplicate {
		t.Errorf("got %v, want duplicate", err)
	}
}

func TestClassesAreNamed(t *testing.T) {
	w := newWorld(t)
	names := w.rt.Classes().Names()
	if len(names) != len(Classes) {
		t.Errorf("registered %v", names)
	}
	for _, n := range names {
		if _, ok := Classes[n]; !ok {
			t.Errorf("unexpected class %q", n)
		}
	}
}
