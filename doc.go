// Package scriptbridge connects a native engine to per-entity scripted
// behaviour objects that live in a separate runtime.
//
// The engine never holds a pointer into the script side and scripts never hold
// a pointer into the engine. The only data crossing the boundary are entity
// identifiers, opaque instance handles, fixed-layout value types and UTF-16
// strings.
//
// # Architecture Overview
//
//	scriptbridge/        Root package with boundary value types and Memory interfaces
//	├── calltable/       Native operations bound once into typed, sealed slots
//	├── marshal/         Layout contract for values, UTF-16 strings, linear memory transfer
//	├── registry/        Class table and instance handle table with lifecycle checks
//	├── facade/          Per-entity component facades over the call table
//	├── runtime/         Engine-facing entry points (create, dispatch, destroy, handshake)
//	├── guest/           WebAssembly behaviour classes hosted by wazero
//	│   └── wasmgen/     Assembler for small guest modules
//	├── scene/           In-memory engine implementing every native operation
//	│   └── imui/        Immediate-mode UI recorder and renderer
//	├── scripts/         Built-in Go behaviour classes
//	├── errors/          Structured error types for debugging
//	└── cmd/run/         Scene runner CLI with an interactive TUI
//
// # Quick Start
//
//	rt, err := runtime.New(runtime.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	scripts.Register(rt)
//	rt.InitializeCallTable(world.Bindings())
//
//	h := rt.CreateInstance(42, marshal.EncodeString("TestScript"))
//	rt.CallOnCreate(h)
//	rt.CallOnUpdate(h, 1.0/60)
//	rt.DestroyInstance(h)
//
// # Lifecycle
//
// Every handle moves through Created -> PostCreateCalled -> Updating and ends
// at Destroyed. Calls out of that order are rejected and reported, never
// assumed correct.
//
// # Thread Safety
//
// The call table is written during the startup handshake and read-only after
// it is sealed. The instance registry is safe for concurrent use, but behaviour
// objects are not: an instance must be driven by one goroutine at a time.
package scriptbridge
