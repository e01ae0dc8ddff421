// Package wasmgen assembles small core wasm modules for script guests
// without a toolchain. Modules are built as wabin module values and encoded
// with its binary encoder; the instruction helpers cover what the bundled
// guests use: locals, globals, calls, constants, f32 stores and simple
// arithmetic.
package wasmgen

import (
	"encoding/binary"
	"math"

	wabin "github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/leb128"
	"github.com/tetratelabs/wabin/wasm"
	"github.com/wippyai/script-bridge/marshal"
)

// EngineModule is the import module engine operations are resolved from.
const EngineModule = "engine"

// Value types.
const (
	I32 = wasm.ValueTypeI32
	I64 = wasm.ValueTypeI64
	F32 = wasm.ValueTypeF32
)

type function struct {
	export string
	typ    wasm.Index
	code   *wasm.Code
}

// Module is a core wasm module under construction.
type Module struct {
	mod   wasm.Module
	funcs []function

	// MemoryPages is the initial size of the module's memory.
	MemoryPages uint32
	// MemoryExport names the exported memory. Empty leaves it unexported.
	MemoryExport string
	// NoMemory omits the memory entirely.
	NoMemory bool
}

func New() *Module {
	return &Module{MemoryPages: 1, MemoryExport: "memory"}
}

func (m *Module) typeIdx(params, results []wasm.ValueType) wasm.Index {
	for i, t := range m.mod.TypeSection {
		if t.EqualsSignature(params, results) {
			return wasm.Index(i)
		}
	}
	m.mod.TypeSection = append(m.mod.TypeSection, &wasm.FunctionType{Params: params, Results: results})
	return wasm.Index(len(m.mod.TypeSection) - 1)
}

// Import adds an engine import and returns its function index. All imports
// must be added before any function.
func (m *Module) Import(name string, params, results []wasm.ValueType) wasm.Index {
	m.mod.ImportSection = append(m.mod.ImportSection, &wasm.Import{
		Type:     wasm.ExternTypeFunc,
		Module:   EngineModule,
		Name:     name,
		DescFunc: m.typeIdx(params, results),
	})
	return wasm.Index(len(m.mod.ImportSection) - 1)
}

// Func adds a function and returns its index. An empty export keeps it
// internal. Locals follow the parameters in index order.
func (m *Module) Func(export string, params, results, locals []wasm.ValueType, body ...[]byte) wasm.Index {
	var b []byte
	for _, part := range body {
		b = append(b, part...)
	}
	b = append(b, wasm.OpcodeEnd)
	m.funcs = append(m.funcs, function{
		export: export,
		typ:    m.typeIdx(params, results),
		code:   &wasm.Code{LocalTypes: locals, Body: b},
	})
	return wasm.Index(len(m.mod.ImportSection) + len(m.funcs) - 1)
}

// Global adds a mutable global initialised by init, a single const
// instruction.
func (m *Module) Global(typ wasm.ValueType, init []byte) wasm.Index {
	m.mod.GlobalSection = append(m.mod.GlobalSection, &wasm.Global{
		Type: &wasm.GlobalType{ValType: typ, Mutable: true},
		Init: constExpr(init),
	})
	return wasm.Index(len(m.mod.GlobalSection) - 1)
}

// Data places b in memory at offset when the module is instantiated.
func (m *Module) Data(offset uint32, b []byte) {
	m.mod.DataSection = append(m.mod.DataSection, &wasm.DataSegment{
		OffsetExpression: constExpr(I32Const(int32(offset))),
		Init:             b,
	})
}

// Bytes encodes the module.
func (m *Module) Bytes() []byte {
	out := m.mod
	imported := wasm.Index(len(m.mod.ImportSection))
	for i, f := range m.funcs {
		out.FunctionSection = append(out.FunctionSection, f.typ)
		out.CodeSection = append(out.CodeSection, f.code)
		if f.export != "" {
			out.ExportSection = append(out.ExportSection, &wasm.Export{
				Type:  wasm.ExternTypeFunc,
				Name:  f.export,
				Index: imported + wasm.Index(i),
			})
		}
	}
	if !m.NoMemory {
		out.MemorySection = &wasm.Memory{Min: m.MemoryPages}
		if m.MemoryExport != "" {
			out.ExportSection = append(out.ExportSection, &wasm.Export{
				Type: wasm.ExternTypeMemory,
				Name: m.MemoryExport,
			})
		}
	}
	return wabin.EncodeModule(&out)
}

// constExpr splits a single const instruction into opcode and immediate.
func constExpr(instr []byte) *wasm.ConstantExpression {
	return &wasm.ConstantExpression{Opcode: instr[0], Data: instr[1:]}
}

func op(code wasm.Opcode, imm []byte) []byte {
	return append([]byte{code}, imm...)
}

// Instructions

func LocalGet(i uint32) []byte  { return op(wasm.OpcodeLocalGet, leb128.EncodeUint32(i)) }
func LocalSet(i uint32) []byte  { return op(wasm.OpcodeLocalSet, leb128.EncodeUint32(i)) }
func GlobalGet(i uint32) []byte { return op(wasm.OpcodeGlobalGet, leb128.EncodeUint32(i)) }
func GlobalSet(i uint32) []byte { return op(wasm.OpcodeGlobalSet, leb128.EncodeUint32(i)) }
func Call(i uint32) []byte      { return op(wasm.OpcodeCall, leb128.EncodeUint32(i)) }
func I32Const(v int32) []byte   { return op(wasm.OpcodeI32Const, leb128.EncodeInt32(v)) }
func I64Const(v int64) []byte   { return op(wasm.OpcodeI64Const, leb128.EncodeInt64(v)) }

func F32Const(v float32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{wasm.OpcodeF32Const}, math.Float32bits(v))
}

// F32Store stores with natural alignment at a static offset.
func F32Store(offset uint32) []byte {
	return op(wasm.OpcodeF32Store, append(leb128.EncodeUint32(2), leb128.EncodeUint32(offset)...))
}

var (
	I32Add      = []byte{wasm.OpcodeI32Add}
	F32Add      = []byte{wasm.OpcodeF32Add}
	F32Ge       = []byte{wasm.OpcodeF32Ge}
	I64ShrU     = []byte{wasm.OpcodeI64ShrU}
	I32WrapI64  = []byte{wasm.OpcodeI32WrapI64}
	If          = []byte{wasm.OpcodeIf, 0x40}
	End         = []byte{wasm.OpcodeEnd}
	Unreachable = []byte{wasm.OpcodeUnreachable}
)

// UTF16 encodes s for a data segment.
func UTF16(s string) []byte {
	b, err := marshal.EncodeBytes(s)
	if err != nil {
		panic(err)
	}
	return b
}
