package guest

import (
	"context"
	"testing"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/guest/wasmgen"
	"github.com/wippyai/script-bridge/marshal"
	"github.com/wippyai/script-bridge/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWorld struct {
	positions  map[scriptbridge.EntityID]scriptbridge.Vector3
	buttonText map[scriptbridge.EntityID]string
	text       map[scriptbridge.EntityID]string
	logs       []string
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		positions:  make(map[scriptbridge.EntityID]scriptbridge.Vector3),
		buttonText: make(map[scriptbridge.EntityID]string),
		text:       make(map[scriptbridge.EntityID]string),
	}
}

func (w *fakeWorld) bindings(withLog bool) calltable.Bindings {
	b := calltable.Bindings{
		TransformGetPosition: func(id scriptbridge.EntityID, v *scriptbridge.Vector3) { *v = w.positions[id] },
		TransformSetPosition: func(id scriptbridge.EntityID, v *scriptbridge.Vector3) { w.positions[id] = *v },
		ButtonGetText: func(id scriptbridge.EntityID) []uint16 {
			return marshal.EncodeString(w.buttonText[id])
		},
		TextSetText: func(id scriptbridge.EntityID, s []uint16) { w.text[id] = marshal.DecodeString(s) },
	}
	if withLog {
		b.LogInfo = func(msg []uint16) { w.logs = append(w.logs, marshal.DecodeString(msg)) }
	}
	return b
}

func setup(t *testing.T, b calltable.Bindings) (*runtime.Runtime, *Host) {
	t.Helper()
	ctx := context.Background()
	rt, err := runtime.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Initialize(b); err != nil {
		t.Fatal(err)
	}
	host, err := New(ctx, rt.Calls(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = rt.Close(ctx)
		_ = host.Close(ctx)
	})
	return rt, host
}

func TestLifterGuestEndToEnd(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	rt, host := setup(t, w.bindings(true))

	class, err := host.Compile(ctx, "LifterWasm", wasmgen.Lifter())
	if err != nil {
		t.Fatal(err)
	}
	if class.HasAlloc() {
		t.Error("lifter does not export alloc")
	}
	if err := rt.RegisterClass(class.Name(), class.Factory()); err != nil {
		t.Fatal(err)
	}

	h := rt.CreateInstance(42, marshal.EncodeString("LifterWasm"))
	if h == 0 {
		t.Fatal("CreateInstance failed")
	}
	if class.Live() != 1 {
		t.Errorf("Live = %d, want 1", class.Live())
	}
	if !rt.CallOnCreate(h) {
		t.Fatal("CallOnCreate failed")
	}
	if got := w.positions[42]; got != (scriptbridge.Vector3{Y: 10}) {
		t.Errorf("position = %v, want (0, 10, 0)", got)
	}

	if !rt.CallOnUpdate(h, 0.5) {
		t.Fatal("CallOnUpdate failed")
	}
	if len(w.logs) != 0 {
		t.Errorf("logged before a second elapsed: %q", w.logs)
	}
	if !rt.CallOnUpdate(h, 0.5) {
		t.Fatal("CallOnUpdate failed")
	}
	if len(w.logs) != 1 || w.logs[0] != "tick" {
		t.Errorf("logs = %q", w.logs)
	}

	b, ok := rt.Instances().Get(h)
	if !ok {
		t.Fatal("instance not found")
	}
	inst := b.(*Instance)
	if inst.Entity() != 42 {
		t.Errorf("Entity = %d", inst.Entity())
	}
	v, err := marshal.ReadVector3(inst.Memory(), 32)
	if err != nil || v != (scriptbridge.Vector3{Y: 10}) {
		t.Errorf("position read back by guest = %v, %v", v, err)
	}

	if !rt.DestroyInstance(h) {
		t.Fatal("DestroyInstance failed")
	}
	if class.Live() != 0 {
		t.Errorf("Live = %d after destroy", class.Live())
	}
	if rt.CallOnUpdate(h, 1) {
		t.Error("update after destroy succeeded")
	}
}

func TestInstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	rt, host := setup(t, w.bindings(true))

	class, err := host.Compile(ctx, "LifterWasm", wasmgen.Lifter())
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.RegisterClass(class.Name(), class.Factory())

	a, err := rt.Instantiate(ctx, 1, "LifterWasm")
	if err != nil {
		t.Fatal(err)
	}
	b, err := rt.Instantiate(ctx, 2, "LifterWasm")
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Create(ctx, a)
	_ = rt.Create(ctx, b)

	// Only a accumulates a full second; b's timer is its own.
	_ = rt.Update(ctx, a, 0.75)
	_ = rt.Update(ctx, a, 0.75)
	_ = rt.Update(ctx, b, 0.75)

	if len(w.logs) != 1 {
		t.Errorf("got %d logs, want 1", len(w.logs))
	}
}

func TestEchoGuestStrings(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.buttonText[7] = "Play ▶ now"
	rt, host := setup(t, w.bindings(false))

	class, err := host.Compile(ctx, "Echo", wasmgen.Echo())
	if err != nil {
		t.Fatal(err)
	}
	if !class.HasAlloc() {
		t.Fatal("echo exports alloc")
	}
	_ = rt.RegisterClass("Echo", class.Factory())

	h, err := rt.Instantiate(ctx, 7, "Echo")
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Create(ctx, h); err != nil {
		t.Fatal(err)
	}
	if err := rt.Update(ctx, h, 0.016); err != nil {
		t.Fatal(err)
	}
	if w.text[7] != "Play ▶ now" {
		t.Errorf("text = %q", w.text[7])
	}

	// Empty strings come back as (0, 0) without allocating.
	w.buttonText[7] = ""
	if err := rt.Update(ctx, h, 0.016); err != nil {
		t.Fatal(err)
	}
	if w.text[7] != "" {
		t.Errorf("text = %q, want empty", w.text[7])
	}
}

func TestImportFailureAbortsGuestCall(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	ctx := context.Background()
	w := newFakeWorld()
	rt, host := setup(t, w.bindings(false))

	class, err := host.Compile(ctx, "LifterWasm", wasmgen.Lifter())
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.RegisterClass(class.Name(), class.Factory())

	h, _ := rt.Instantiate(ctx, 3, "LifterWasm")
	if err := rt.Create(ctx, h); err != nil {
		t.Fatal(err)
	}

	err = rt.Update(ctx, h, 1)
	if err == nil {
		t.Fatal("expected unbound log_info to fail the update")
	}
	if !errors.Is(err, errors.ErrBehavior) {
		t.Errorf("got %v, want behaviour error", err)
	}
	if logs.FilterMessage("host import failed").Len() != 1 {
		t.Error("import failure was not logged")
	}
	if _, ok := rt.Instances().Lookup(h); !ok {
		t.Error("failed update should not invalidate the handle")
	}
}

func TestTrapIsBehaviorError(t *testing.T) {
	m := wasmgen.New()
	m.Func(ExportOnCreate, []byte{wasmgen.I32}, nil, nil)
	m.Func(ExportOnUpdate, []byte{wasmgen.I32, wasmgen.F32}, nil, nil, wasmgen.Unreachable)

	ctx := context.Background()
	_, host := setup(t, calltable.Bindings{})
	class, err := host.Compile(ctx, "Trap", m.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	inst, err := class.Instantiate(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Close(ctx)

	if err := inst.OnCreate(ctx); err != nil {
		t.Fatal(err)
	}
	err = inst.OnUpdate(ctx, 0.1)
	if errors.KindOf(err) != errors.KindBehavior {
		t.Errorf("got %v, want behaviour error", err)
	}
}

func TestCompileValidation(t *testing.T) {
	ctx := context.Background()
	_, host := setup(t, calltable.Bindings{})

	noUpdate := wasmgen.New()
	noUpdate.Func(ExportOnCreate, []byte{wasmgen.I32}, nil, nil)

	badSig := wasmgen.New()
	badSig.Func(ExportOnCreate, []byte{wasmgen.I32}, nil, nil)
	badSig.Func(ExportOnUpdate, []byte{wasmgen.I32}, nil, nil)

	noMemory := wasmgen.New()
	noMemory.NoMemory = true
	noMemory.Func(ExportOnCreate, []byte{wasmgen.I32}, nil, nil)
	noMemory.Func(ExportOnUpdate, []byte{wasmgen.I32, wasmgen.F32}, nil, nil)

	unknownImport := wasmgen.New()
	unknownImport.Import("teleport", []byte{wasmgen.I32}, nil)
	unknownImport.Func(ExportOnCreate, []byte{wasmgen.I32}, nil, nil)
	unknownImport.Func(ExportOnUpdate, []byte{wasmgen.I32, wasmgen.F32}, nil, nil)

	badAlloc := wasmgen.New()
	badAlloc.Func(ExportAlloc, []byte{wasmgen.I32}, nil, nil)
	badAlloc.Func(ExportOnCreate, []byte{wasmgen.I32}, nil, nil)
	badAlloc.Func(ExportOnUpdate, []byte{wasmgen.I32, wasmgen.F32}, nil, nil)

	tests := []struct {
		name string
		wasm []byte
	}{
		{"missing on_update", noUpdate.Bytes()},
		{"wrong on_update signature", badSig.Bytes()},
		{"missing memory", noMemory.Bytes()},
		{"unknown engine import", unknownImport.Bytes()},
		{"wrong alloc signature", badAlloc.Bytes()},
		{"not wasm", []byte("definitely not wasm")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := host.Compile(ctx, tc.name, tc.wasm); err == nil {
				t.Fatal("expected compile error")
			}
			if _, ok := host.Class(tc.name); ok {
				t.Error("rejected class was registered")
			}
		})
	}

	if _, err := host.Compile(ctx, "Lifter", wasmgen.Lifter()); err != nil {
		t.Fatal(err)
	}
	if _, err := host.Compile(ctx, "Lifter", wasmgen.Lifter()); errors.KindOf(err) != errors.KindDuplicate {
		t.Errorf("duplicate class: %v", err)
	}
	if names := host.Classes(); len(names) != 1 || names[0] != "Lifter" {
		t.Errorf("Classes = %v", names)
	}
}

func TestNewRequiresCallTable(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("got %v", err)
	}
}

func TestGeneratorMatchesHostNames(t *testing.T) {
	if wasmgen.EngineModule != ModuleName {
		t.Errorf("wasmgen imports from %q, host exports %q", wasmgen.EngineModule, ModuleName)
	}
	if wasmgen.ExportOnCreate != ExportOnCreate || wasmgen.ExportOnUpdate != ExportOnUpdate || wasmgen.ExportAlloc != ExportAlloc {
		t.Error("wasmgen export names drifted from the host")
	}
	for _, name := range []string{"lifter", "echo"} {
		if _, ok := wasmgen.Builtin(name); !ok {
			t.Errorf("Builtin(%q) missing", name)
		}
	}
}
