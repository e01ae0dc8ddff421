package guest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/script-bridge/calltable"
	"github.com/wippyai/script-bridge/errors"
	"go.uber.org/zap"
)

// ModuleName is the import module guests use for engine operations.
const ModuleName = "engine"

// Guest exports.
const (
	ExportMemory   = "memory"
	ExportOnCreate = "on_create"
	ExportOnUpdate = "on_update"
	ExportAlloc    = "alloc"
)

// Config holds wazero runtime settings for guests.
type Config struct {
	// MemoryLimitPages caps each guest memory (64 KiB pages). Zero keeps the
	// wazero default.
	MemoryLimitPages uint32
	// CloseOnContextDone aborts running guest code when its context ends.
	CloseOnContextDone bool
}

// Host runs wasm behaviour classes. Every call-table operation is exposed to
// guests as an import from the "engine" module.
type Host struct {
	runtime wazero.Runtime
	calls   *calltable.Table
	classes map[string]*Class
	mu      sync.Mutex
}

// New creates a host whose imports invoke through calls.
func New(ctx context.Context, calls *calltable.Table, cfg *Config) (*Host, error) {
	if calls == nil {
		return nil, errors.InvalidInput(errors.PhaseGuest, "call table cannot be nil")
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
	}

	h := &Host{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		calls:   calls,
		classes: make(map[string]*Class),
	}

	builder := h.runtime.NewHostModuleBuilder(ModuleName)
	for _, imp := range h.imports() {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(imp.fn, imp.params, imp.results).
			Export(imp.op.ImportName())
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		_ = h.runtime.Close(ctx)
		return nil, errors.Load("instantiate engine imports", err)
	}

	return h, nil
}

// Compile validates and compiles a guest module as a behaviour class.
func (h *Host) Compile(ctx context.Context, name string, wasm []byte) (*Class, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseGuest, "class name cannot be empty")
	}

	compiled, err := h.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("compile %s", name), err)
	}
	if err := validate(compiled); err != nil {
		_ = compiled.Close(ctx)
		e := errors.Load(fmt.Sprintf("validate %s", name), err)
		e.Class = name
		return nil, e
	}

	c := &Class{
		host:     h,
		name:     name,
		compiled: compiled,
		hasAlloc: compiled.ExportedFunctions()[ExportAlloc] != nil,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.classes[name]; exists {
		_ = compiled.Close(ctx)
		return nil, errors.Duplicate(errors.PhaseGuest, "guest class", name)
	}
	h.classes[name] = c

	Logger().Debug("guest class compiled",
		zap.String("class", name),
		zap.Bool("alloc", c.hasAlloc),
		zap.Int("imports", len(compiled.ImportedFunctions())))
	return c, nil
}

// Class returns a compiled class by name.
func (h *Host) Class(name string) (*Class, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.classes[name]
	return c, ok
}

// Classes returns the compiled class names in sorted order.
func (h *Host) Classes() []string {
	h.mu.Lock()
	names := make([]string, 0, len(h.classes))
	for name := range h.classes {
		names = append(names, name)
	}
	h.mu.Unlock()
	sort.Strings(names)
	return names
}

// Close closes every guest instance and compiled class.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

var (
	onCreateSig = signature{params: []api.ValueType{api.ValueTypeI32}}
	onUpdateSig = signature{params: []api.ValueType{api.ValueTypeI32, api.ValueTypeF32}}
	allocSig    = signature{params: []api.ValueType{api.ValueTypeI32}, results: []api.ValueType{api.ValueTypeI32}}
)

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

func (s signature) matches(def api.FunctionDefinition) bool {
	return equalTypes(def.ParamTypes(), s.params) && equalTypes(def.ResultTypes(), s.results)
}

func (s signature) String() string {
	return fmt.Sprintf("%v -> %v", typeNames(s.params), typeNames(s.results))
}

func validate(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		return fmt.Errorf("missing export %q", ExportMemory)
	}

	exports := compiled.ExportedFunctions()
	required := []struct {
		name string
		sig  signature
	}{
		{ExportOnCreate, onCreateSig},
		{ExportOnUpdate, onUpdateSig},
	}
	for _, r := range required {
		def, ok := exports[r.name]
		if !ok {
			return fmt.Errorf("missing export %q", r.name)
		}
		if !r.sig.matches(def) {
			return fmt.Errorf("export %q has signature %v -> %v, want %s",
				r.name, typeNames(def.ParamTypes()), typeNames(def.ResultTypes()), r.sig)
		}
	}
	if def, ok := exports[ExportAlloc]; ok && !allocSig.matches(def) {
		return fmt.Errorf("export %q has signature %v -> %v, want %s",
			ExportAlloc, typeNames(def.ParamTypes()), typeNames(def.ResultTypes()), allocSig)
	}

	var unknown []string
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module != ModuleName {
			continue
		}
		if _, ok := importOps[name]; !ok {
			unknown = append(unknown, ModuleName+"."+name)
		}
	}
	if len(unknown) > 0 {
		return errors.NewMissingBindingsError(unknown)
	}
	return nil
}

var importOps = func() map[string]calltable.Op {
	m := make(map[string]calltable.Op, calltable.OpCount)
	for _, op := range calltable.All() {
		m[op.ImportName()] = op
	}
	return m
}()

func equalTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func typeNames(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}
