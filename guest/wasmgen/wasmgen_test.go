package wasmgen

import (
	"testing"

	wabin "github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/wasm"
)

func TestBuiltinsDecode(t *testing.T) {
	tests := []struct {
		name    string
		imports []string
		exports []string
	}{
		{"lifter", []string{"transform_set_position", "transform_get_position", "log_info"}, []string{ExportOnCreate, ExportOnUpdate, "memory"}},
		{"echo", []string{"ui_button_get_text", "ui_text_set_text"}, []string{ExportAlloc, ExportOnCreate, ExportOnUpdate, "memory"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := Builtin(tc.name)
			if !ok {
				t.Fatalf("no builtin %q", tc.name)
			}
			m, err := wabin.DecodeModule(b, wasm.CoreFeaturesV2)
			if err != nil {
				t.Fatal(err)
			}

			if len(m.ImportSection) != len(tc.imports) {
				t.Fatalf("got %d imports, want %d", len(m.ImportSection), len(tc.imports))
			}
			for i, imp := range m.ImportSection {
				if imp.Module != EngineModule || imp.Name != tc.imports[i] {
					t.Errorf("import %d = %s.%s", i, imp.Module, imp.Name)
				}
			}

			if len(m.ExportSection) != len(tc.exports) {
				t.Fatalf("got %d exports, want %d", len(m.ExportSection), len(tc.exports))
			}
			for i, exp := range m.ExportSection {
				if exp.Name != tc.exports[i] {
					t.Errorf("export %d = %q, want %q", i, exp.Name, tc.exports[i])
				}
			}
			if m.MemorySection == nil || m.MemorySection.Min != 1 {
				t.Errorf("memory = %+v", m.MemorySection)
			}
		})
	}
}

func TestNoMemory(t *testing.T) {
	m := New()
	m.NoMemory = true
	m.Func(ExportOnCreate, []wasm.ValueType{I32}, nil, nil)

	got, err := wabin.DecodeModule(m.Bytes(), wasm.CoreFeaturesV2)
	if err != nil {
		t.Fatal(err)
	}
	if got.MemorySection != nil {
		t.Error("memory emitted")
	}
	if len(got.ExportSection) != 1 || got.ExportSection[0].Type != wasm.ExternTypeFunc {
		t.Errorf("exports = %+v", got.ExportSection)
	}
}

func TestTypesAreShared(t *testing.T) {
	m := New()
	m.Import("a", []wasm.ValueType{I32, I32}, nil)
	m.Import("b", []wasm.ValueType{I32, I32}, nil)
	m.Func("f", []wasm.ValueType{I32, I32}, nil, nil)

	got, err := wabin.DecodeModule(m.Bytes(), wasm.CoreFeaturesV2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.TypeSection) != 1 {
		t.Errorf("got %d types, want 1", len(got.TypeSection))
	}
}
