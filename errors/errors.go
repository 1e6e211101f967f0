package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseHandle  Phase = "handle"  // handle table operations
	PhaseMarshal Phase = "marshal" // buffer marshalling
	PhaseAccess  Phase = "access"  // entity accessor calls
	PhaseMapping Phase = "mapping" // enum translation
	PhaseWorld   Phase = "world"   // world lifecycle (step, create, destroy)
	PhaseHost    Phase = "host"    // host function registration and calls
	PhaseScene   Phase = "scene"   // scene loading and building
)

// Kind categorizes the error
type Kind string

const (
	KindStaleHandle   Kind = "stale_handle"
	KindWrongKind     Kind = "wrong_kind"
	KindWrongOwner    Kind = "wrong_owner"
	KindDoubleDispose Kind = "double_dispose"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindAliasing      Kind = "aliasing"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidData   Kind = "invalid_data"
	KindUnsupported   Kind = "unsupported"
	KindLocked        Kind = "locked"
	KindClosed        Kind = "closed"
	KindRegistration  Kind = "registration"
	KindNotFound      Kind = "not_found"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Entity != "" || e.Op != "" {
		b.WriteString(" at ")
		switch {
		case e.Entity != "" && e.Op != "":
			b.WriteString(e.Entity)
			b.WriteByte('.')
			b.WriteString(e.Op)
		case e.Entity != "":
			b.WriteString(e.Entity)
		default:
			b.WriteString(e.Op)
		}
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

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
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

// Entity sets the entity kind name (e.g. "circle", "fixture")
func (b *Builder) Entity(name string) *Builder {
	b.err.Entity = name
	return b
}

// Op sets the operation name
func (b *Builder) Op(name string) *Builder {
	b.err.Op = name
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

// StaleHandle creates an error for a handle whose referent is gone
func StaleHandle(phase Phase, entity string, handle uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStaleHandle,
		Entity: entity,
		Detail: fmt.Sprintf("handle %#x is not live", handle),
		Value:  handle,
	}
}

// WrongKind creates an error for a handle passed to another kind's accessor
func WrongKind(phase Phase, want, got string, handle uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWrongKind,
		Entity: want,
		Detail: fmt.Sprintf("handle %#x refers to %s", handle, got),
		Value:  handle,
	}
}

// WrongOwner creates an error for disposing a handle the caller does not own
func WrongOwner(phase Phase, entity string, handle uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWrongOwner,
		Entity: entity,
		Detail: fmt.Sprintf("handle %#x is owned by the engine", handle),
		Value:  handle,
	}
}

// DoubleDispose creates an error for disposing an already released handle
func DoubleDispose(phase Phase, entity string, handle uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDoubleDispose,
		Entity: entity,
		Detail: fmt.Sprintf("handle %#x already disposed", handle),
		Value:  handle,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, op string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Op:     op,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Aliasing creates an error for a buffer range that overlaps an active lease
func Aliasing(phase Phase, ptr, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAliasing,
		Detail: fmt.Sprintf("buffer [%#x, %#x) overlaps an active lease", ptr, uint64(ptr)+uint64(size)),
		Value:  ptr,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, entity, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Entity: entity,
		Op:     op,
		Detail: "operation not provided by the engine",
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

// InvalidData creates an invalid data error
func InvalidData(phase Phase, op string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Op:     op,
		Detail: detail,
	}
}

// Locked creates an error for world mutations attempted during a step
func Locked(op string) *Error {
	return &Error{
		Phase:  PhaseWorld,
		Kind:   KindLocked,
		Op:     op,
		Detail: "world is stepping",
	}
}

// Closed creates an error for operations on a closed table or world
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " is closed",
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates a host function registration error
func Registration(phase Phase, namespace, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRegistration,
		Op:     namespace + "#" + name,
		Detail: "registration failed",
		Cause:  cause,
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
