package facade

import (
	"errors"
	"testing"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	bridgeerrors "github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/marshal"
)

// fakeEngine is a minimal native side with one entity's worth of state.
type fakeEngine struct {
	components map[string]bool
	position   scriptbridge.Vector3
	rectPos    scriptbridge.Vector2
	anchor     uint8
	buttonText []uint16
	logs       []string
	ui         []string
}

func newFakeEngine(components ...string) *fakeEngine {
	f := &fakeEngine{components: make(map[string]bool)}
	for _, c := range components {
		f.components[c] = true
	}
	return f
}

func (f *fakeEngine) table(t *testing.T) *calltable.Table {
	t.Helper()
	tbl := calltable.New()
	err := tbl.Initialize(calltable.Bindings{
		LogInfo: func(msg []uint16) { f.logs = append(f.logs, marshal.DecodeString(msg)) },
		HasComponent: func(id scriptbridge.EntityID, name []uint16) bool {
			return f.components[marshal.DecodeString(name)]
		},
		TransformGetPosition: func(id scriptbridge.EntityID, v *scriptbridge.Vector3) { *v = f.position },
		TransformSetPosition: func(id scriptbridge.EntityID, v *scriptbridge.Vector3) { f.position = *v },
		RectGetPosition:      func(id scriptbridge.EntityID, v *scriptbridge.Vector2) { *v = f.rectPos },
		RectSetPosition:      func(id scriptbridge.EntityID, v *scriptbridge.Vector2) { f.rectPos = *v },
		RectGetAnchor:        func(id scriptbridge.EntityID) uint8 { return f.anchor },
		RectSetAnchor:        func(id scriptbridge.EntityID, a uint8) { f.anchor = a },
		ButtonGetText:        func(id scriptbridge.EntityID) []uint16 { return f.buttonText },
		ButtonSetText:        func(id scriptbridge.EntityID, s []uint16) { f.buttonText = s },
		UIBegin:              func(name []uint16) { f.ui = append(f.ui, "begin:"+marshal.DecodeString(name)) },
		UIText:               func(s []uint16) { f.ui = append(f.ui, "text:"+marshal.DecodeString(s)) },
		UIEnd:                func() { f.ui = append(f.ui, "end") },
	})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestFacadeMemoisation(t *testing.T) {
	f := newFakeEngine(ComponentTransform)
	tbl := f.table(t)
	e := NewEntity(42, tbl)

	tr1, err := e.Transform()
	if err != nil || tr1 == nil {
		t.Fatalf("Transform() = %v, %v", tr1, err)
	}
	tr2, _ := e.Transform()
	if tr1 != tr2 {
		t.Error("second access returned a different facade")
	}
	if n := tbl.Invocations(calltable.OpHasComponent); n != 1 {
		t.Errorf("has_component called %d times, want 1", n)
	}
}

func TestAbsentComponent(t *testing.T) {
	f := newFakeEngine()
	tbl := f.table(t)
	e := NewEntity(7, tbl)

	b, err := e.Button()
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatal("expected nil Button facade")
	}
	for _, op := range []calltable.Op{calltable.OpButtonGetText, calltable.OpButtonSetText, calltable.OpButtonIsClicked} {
		if n := tbl.Invocations(op); n != 0 {
			t.Errorf("%s invoked %d times", op, n)
		}
	}

	// Absence is not cached: once the engine adds the component the facade appears.
	f.components[ComponentButton] = true
	b, err = e.Button()
	if err != nil || b == nil {
		t.Fatalf("Button() after add = %v, %v", b, err)
	}
	if n := tbl.Invocations(calltable.OpHasComponent); n != 2 {
		t.Errorf("has_component called %d times, want 2", n)
	}
}

func TestRoundTrips(t *testing.T) {
	f := newFakeEngine(ComponentTransform, ComponentRectTransform, ComponentButton)
	tbl := f.table(t)
	e := NewEntity(1, tbl)

	tr, _ := e.Transform()
	want := scriptbridge.Vector3{X: 0, Y: 10, Z: 0}
	if err := tr.SetPosition(want); err != nil {
		t.Fatal(err)
	}
	got, err := tr.Position()
	if err != nil || got != want {
		t.Errorf("Position() = %v, %v", got, err)
	}
	if tbl.Invocations(calltable.OpTransformGetPosition) != 1 || tbl.Invocations(calltable.OpTransformSetPosition) != 1 {
		t.Error("each accessor should be one round trip")
	}

	if err := tr.Translate(scriptbridge.Vector3{X: 1}); err != nil {
		t.Fatal(err)
	}
	if f.position != (scriptbridge.Vector3{X: 1, Y: 10}) {
		t.Errorf("after translate: %v", f.position)
	}

	rt, _ := e.RectTransform()
	if err := rt.SetAnchor(scriptbridge.AnchorBottomCenter); err != nil {
		t.Fatal(err)
	}
	if a, _ := rt.Anchor(); a != scriptbridge.AnchorBottomCenter {
		t.Errorf("Anchor() = %v", a)
	}
	if err := rt.SetAnchor(9); !bridgeerrors.Is(err, &bridgeerrors.Error{Kind: bridgeerrors.KindInvalidEnum}) {
		t.Errorf("SetAnchor(9) = %v", err)
	}

	btn, _ := e.Button()
	if err := btn.SetText("Play"); err != nil {
		t.Fatal(err)
	}
	if s, _ := btn.Text(); s != "Play" {
		t.Errorf("Text() = %q", s)
	}
}

func TestUnboundAccessor(t *testing.T) {
	f := newFakeEngine(ComponentText)
	e := NewEntity(1, f.table(t))

	txt, err := e.Text()
	if err != nil || txt == nil {
		t.Fatalf("Text() = %v, %v", txt, err)
	}
	if _, err := txt.FontSize(); !bridgeerrors.Is(err, bridgeerrors.ErrUnbound) {
		t.Errorf("FontSize on unbound slot = %v, want unbound", err)
	}
}

func TestLogAndWindow(t *testing.T) {
	f := newFakeEngine()
	e := NewEntity(1, f.table(t))

	if err := e.Log().Infof("Position: %v", scriptbridge.Vector3{Y: 10}); err != nil {
		t.Fatal(err)
	}
	if len(f.logs) != 1 || f.logs[0] != "Position: (0, 10, 0)" {
		t.Errorf("logs = %q", f.logs)
	}
	if err := e.Log().Warning("x"); !bridgeerrors.Is(err, bridgeerrors.ErrUnbound) {
		t.Errorf("unbound warning = %v", err)
	}

	boom := errors.New("boom")
	err := e.UI().Window("Debug", func() error {
		if err := e.UI().Text("hello"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Window error = %v", err)
	}
	want := []string{"begin:Debug", "text:hello", "end"}
	if len(f.ui) != len(want) {
		t.Fatalf("ui = %q", f.ui)
	}
	for i := range want {
		if f.ui[i] != want[i] {
			t.Errorf("ui[%d] = %q, want %q", i, f.ui[i], want[i])
		}
	}
}
