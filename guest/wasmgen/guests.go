package wasmgen

// Guest lifecycle exports.
const (
	ExportOnCreate = "on_create"
	ExportOnUpdate = "on_update"
	ExportAlloc    = "alloc"
)

// Lifter builds a guest that moves its entity to (0, 10, 0) on create and,
// each time a second of updates has accumulated, reads the position back
// into memory at offset 32 and logs "tick".
func Lifter() []byte {
	m := New()
	setPos := m.Import("transform_set_position", []byte{I32, I32}, nil)
	getPos := m.Import("transform_get_position", []byte{I32, I32}, nil)
	logInfo := m.Import("log_info", []byte{I32, I32}, nil)
	timer := m.Global(F32, F32Const(0))
	m.Data(256, UTF16("tick"))

	m.Func(ExportOnCreate, []byte{I32}, nil, nil,
		I32Const(16), F32Const(0), F32Store(0),
		I32Const(16), F32Const(10), F32Store(4),
		I32Const(16), F32Const(0), F32Store(8),
		LocalGet(0), I32Const(16), Call(setPos),
	)
	m.Func(ExportOnUpdate, []byte{I32, F32}, nil, nil,
		GlobalGet(timer), LocalGet(1), F32Add, GlobalSet(timer),
		GlobalGet(timer), F32Const(1), F32Ge, If,
		F32Const(0), GlobalSet(timer),
		LocalGet(0), I32Const(32), Call(getPos),
		I32Const(256), I32Const(4), Call(logInfo),
		End,
	)
	return m.Bytes()
}

// Echo builds a guest that copies its button's text into its text widget on
// every update. It exports a bump allocator starting at 1024 so the host can
// hand it strings.
func Echo() []byte {
	m := New()
	getText := m.Import("ui_button_get_text", []byte{I32}, []byte{I64})
	setText := m.Import("ui_text_set_text", []byte{I32, I32, I32}, nil)
	heap := m.Global(I32, I32Const(1024))

	m.Func(ExportAlloc, []byte{I32}, []byte{I32}, nil,
		GlobalGet(heap), GlobalGet(heap), LocalGet(0), I32Add, GlobalSet(heap),
	)
	m.Func(ExportOnCreate, []byte{I32}, nil, nil)
	m.Func(ExportOnUpdate, []byte{I32, F32}, nil, []byte{I64},
		LocalGet(0), Call(getText), LocalSet(2),
		LocalGet(0),
		LocalGet(2), I64Const(32), I64ShrU, I32WrapI64,
		LocalGet(2), I32WrapI64,
		Call(setText),
	)
	return m.Bytes()
}

// Builtin returns a bundled guest by name.
func Builtin(name string) ([]byte, bool) {
	switch name {
	case "lifter":
		return Lifter(), true
	case "echo":
		return Echo(), true
	default:
		return nil, false
	}
}
