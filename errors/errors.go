package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // class name lookup and construction
	PhaseDispatch Phase = "dispatch" // onCreate / onUpdate delivery
	PhaseDestroy  Phase = "destroy"  // instance release
	PhaseBind     Phase = "bind"     // call table handshake
	PhaseInvoke   Phase = "invoke"   // call table invocation
	PhaseMarshal  Phase = "marshal"  // value and string transfer
	PhaseLayout   Phase = "layout"   // boundary type layout verification
	PhaseGuest    Phase = "guest"    // wasm guest loading and calls
	PhaseConfig   Phase = "config"   // scene and option handling
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownClass     Kind = "unknown_class"
	KindConstruction     Kind = "construction"
	KindInvalidHandle    Kind = "invalid_handle"
	KindOutOfOrder       Kind = "out_of_order"
	KindUnboundOperation Kind = "unbound_operation"
	KindSealed           Kind = "sealed"
	KindTypeMismatch     Kind = "type_mismatch"
	KindLayoutMismatch   Kind = "layout_mismatch"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindInvalidEnum      Kind = "invalid_enum"
	KindInvalidInput     Kind = "invalid_input"
	KindInvalidData      Kind = "invalid_data"
	KindNotFound         Kind = "not_found"
	KindDuplicate        Kind = "duplicate"
	KindBehavior         Kind = "behavior"
	KindPanic            Kind = "panic"
	KindAllocation       Kind = "allocation"
	KindClosed           Kind = "closed"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Class  string
	Detail string
	Handle uint64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" op ")
		b.WriteString(e.Op)
	}
	if e.Class != "" {
		b.WriteString(" class ")
		b.WriteString(e.Class)
	}
	if e.Handle != 0 {
		fmt.Fprintf(&b, " handle %#x", e.Handle)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone, which is how the sentinels below are compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Sentinels for errors.Is checks by kind.
var (
	ErrUnknownClass  = &Error{Kind: KindUnknownClass}
	ErrConstruction  = &Error{Kind: KindConstruction}
	ErrInvalidHandle = &Error{Kind: KindInvalidHandle}
	ErrOutOfOrder    = &Error{Kind: KindOutOfOrder}
	ErrUnbound       = &Error{Kind: KindUnboundOperation}
	ErrSealed        = &Error{Kind: KindSealed}
	ErrTypeMismatch  = &Error{Kind: KindTypeMismatch}
	ErrLayout        = &Error{Kind: KindLayoutMismatch}
	ErrOutOfBounds   = &Error{Kind: KindOutOfBounds}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrBehavior      = &Error{Kind: KindBehavior}
	ErrPanic         = &Error{Kind: KindPanic}
	ErrClosed        = &Error{Kind: KindClosed}
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the call table operation name
func (b *Builder) Op(name string) *Builder {
	b.err.Op = name
	return b
}

// Class sets the behaviour class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Handle sets the instance handle
func (b *Builder) Handle(h uint64) *Builder {
	b.err.Handle = h
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnknownClass creates a resolution error for an unregistered class name
func UnknownClass(name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownClass,
		Class:  name,
		Detail: "no class registered under this name",
	}
}

// Construction creates an error for a constructor that failed
func Construction(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindConstruction,
		Class:  name,
		Detail: "construct behaviour",
		Cause:  cause,
	}
}

// InvalidHandle creates an error for an unknown or destroyed handle
func InvalidHandle(phase Phase, h uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Handle: h,
		Detail: "unknown or destroyed instance handle",
	}
}

// OutOfOrder creates an error for a lifecycle call made in the wrong state
func OutOfOrder(h uint64, call, state string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindOutOfOrder,
		Handle: h,
		Detail: fmt.Sprintf("%s not allowed in state %s", call, state),
	}
}

// Unbound creates an error for a call table slot invoked before binding
func Unbound(op string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindUnboundOperation,
		Op:     op,
		Detail: "operation not bound; call table handshake incomplete",
	}
}

// Sealed creates an error for binding into a sealed call table
func Sealed(op string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindSealed,
		Op:     op,
		Detail: "call table is sealed",
	}
}

// TypeMismatch creates an error for a binding whose signature does not match its slot
func TypeMismatch(op, got, want string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindTypeMismatch,
		Op:     op,
		Detail: fmt.Sprintf("got %s, want %s", got, want),
	}
}

// LayoutMismatch creates an error for a Go type that disagrees with the boundary layout
func LayoutMismatch(typeName, detail string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindLayoutMismatch,
		Detail: fmt.Sprintf("%s: %s", typeName, detail),
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("access of %d bytes at offset %d out of bounds", length, offset),
		Value:  offset,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Duplicate creates an error for a name registered twice
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s %q already registered", what, name),
	}
}

// Behavior wraps an error returned by a behaviour object
func Behavior(h uint64, call string, cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindBehavior,
		Handle: h,
		Detail: call,
		Cause:  cause,
	}
}

// Panic converts a recovered panic value into an error
func Panic(phase Phase, recovered any) *Error {
	if err, ok := recovered.(error); ok {
		return &Error{
			Phase:  phase,
			Kind:   KindPanic,
			Detail: "recovered panic",
			Cause:  err,
		}
	}
	return &Error{
		Phase:  phase,
		Kind:   KindPanic,
		Detail: fmt.Sprintf("recovered panic: %v", recovered),
		Value:  recovered,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a guest module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingBinding names one call table slot left unbound after a handshake
type MissingBinding struct {
	Group string // e.g., "transform"
	Op    string // e.g., "get_position"
}

// MissingBindingsError lists every slot a handshake left unbound
type MissingBindingsError struct {
	Bindings []MissingBinding
}

// NewMissingBindingsError creates an error from a list of "group.op" names
func NewMissingBindingsError(ops []string) *MissingBindingsError {
	result := &MissingBindingsError{
		Bindings: make([]MissingBinding, 0, len(ops)),
	}
	for _, op := range ops {
		group, name := parseOpName(op)
		result.Bindings = append(result.Bindings, MissingBinding{
			Group: group,
			Op:    name,
		})
	}
	return result
}

func parseOpName(name string) (group, op string) {
	g, o, found := strings.Cut(name, ".")
	if found {
		return g, o
	}
	return "", name
}

func (e *MissingBindingsError) Error() string {
	if len(e.Bindings) == 0 {
		return "[bind] unbound_operation: no operations specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d call table operation(s) unbound:\n", len(e.Bindings)))

	// Group for cleaner output
	byGroup := make(map[string][]string)
	var order []string
	for _, m := range e.Bindings {
		if _, exists := byGroup[m.Group]; !exists {
			order = append(order, m.Group)
		}
		byGroup[m.Group] = append(byGroup[m.Group], m.Op)
	}

	for _, g := range order {
		b.WriteString("\n  ")
		if g == "" {
			b.WriteString("(ungrouped)")
		} else {
			b.WriteString(g)
		}
		b.WriteString(":\n")
		for _, op := range byGroup[g] {
			b.WriteString("    - ")
			b.WriteString(op)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingBindingsError) Is(target error) bool {
	if _, ok := target.(*MissingBindingsError); ok {
		return true
	}
	return target == ErrUnbound
}
