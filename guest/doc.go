// Package guest hosts behaviour classes compiled to WebAssembly.
//
// A Host owns a wazero runtime with one host module, "engine", whose
// functions are the call-table operations under their flat names
// (log_info, transform_get_position, ui_text_get_text, ...). A guest module
// must export:
//
//	memory                       linear memory
//	on_create(entity i32)
//	on_update(entity i32, dt f32)
//	alloc(size i32) -> i32       optional; needed to receive strings
//
// Values cross through guest memory using the layouts from package marshal.
// Strings are UTF-16LE (ptr, len) pairs with len counted in code units;
// string results come back as one i64 packing ptr<<32 | len. Every buffer in
// guest memory belongs to the guest: strings passed in are copied during the
// call, and strings returned are written into memory obtained from alloc,
// which the guest frees.
//
// A failing import (unbound operation, bad pointer) is logged and aborts the
// guest call, which then returns an error to the registry.
package guest
