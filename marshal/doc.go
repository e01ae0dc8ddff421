// Package marshal defines the value marshalling contract between the engine
// and script runtimes.
//
// Boundary value types are described as WIT records and enums. Their canonical
// ABI layout is computed by a Calculator and checked against the Go structs in
// the root package by Verify, so a field reorder or a type change on either
// side is caught at startup instead of corrupting values at runtime.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (u8=1, f32=4)
//   - Records: fields laid out sequentially with padding for alignment
//   - Enums: smallest discriminant that fits the case count
//   - Strings: (pointer, length) pair, length counted in UTF-16 code units
//
// # Strings
//
// Strings cross the boundary as UTF-16LE code units. The producer allocates
// the buffer and ownership passes to the consumer; for linear memory the
// script runtime owns every buffer and frees it.
package marshal
