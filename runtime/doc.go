// Package runtime is the engine-facing surface of the script bridge.
//
// # Quick Start
//
//	rt, err := runtime.New(runtime.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Register behaviour classes
//	rt.RegisterClass("Mover", func(ctx context.Context, e *facade.Entity) (registry.Behavior, error) {
//	    return &Mover{entity: e}, nil
//	})
//
//	// Hand over the native operations once
//	rt.InitializeCallTable(bindings)
//
//	// Drive an instance
//	h := rt.CreateInstance(42, marshal.EncodeString("Mover"))
//	rt.CallOnCreate(h)
//	rt.CallOnUpdate(h, 1.0/60)
//	rt.DestroyInstance(h)
//
// # Error Reporting
//
// CreateInstance, CallOnCreate, CallOnUpdate, DestroyInstance and
// InitializeCallTable never return errors to the engine. Failures are logged
// through zap and reported as handle 0 or false. Go callers wanting the error
// use Instantiate, Create, Update, Destroy and Initialize instead.
package runtime
