// Package registry maps opaque instance handles to behaviour objects.
//
// Classes is the closed name-to-constructor table. Registry stores each
// constructed behaviour in a slot and hands out a Handle combining the slot
// index with a generation counter, so a destroyed handle stays invalid after
// its slot is reused.
//
// # Lifecycle
//
// Each handle moves Created -> PostCreateCalled -> Updating -> Destroyed.
// OnCreate is delivered exactly once and before any OnUpdate; Destroy is
// legal from any live state. Violations return errors of kind out_of_order
// or invalid_handle and never reach the behaviour.
//
// Errors and panics raised by a behaviour are returned as errors of kind
// behavior or panic; the handle stays valid.
package registry
