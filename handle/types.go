package handle

import "fmt"

// Handle is an opaque reference to a native object in a Table.
// Handle 0 is reserved and always invalid.
//
// The low 32 bits hold the slot index plus one and the high 32 bits hold the
// slot generation. Callers must treat the value as opaque: the only legal uses
// are passing it back into accessors and comparing it for equality.
type Handle uint64

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot+1))
}

// slot returns the table index; ok is false for the zero handle.
func (h Handle) slot() (uint32, bool) {
	lo := uint32(h)
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

func (h Handle) String() string {
	return fmt.Sprintf("%#x", uint64(h))
}

// Kind identifies the entity family a handle was issued for.
type Kind uint8

const (
	KindShape Kind = iota + 1
	KindBody
	KindFixture
	KindContact
	KindImpulse
	KindManifold
	KindJoint
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindBody:
		return "body"
	case KindFixture:
		return "fixture"
	case KindContact:
		return "contact"
	case KindImpulse:
		return "contact-impulse"
	case KindManifold:
		return "manifold"
	case KindJoint:
		return "joint"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Owner records who is responsible for destroying the referent.
type Owner uint8

const (
	// OwnerCaller marks values the caller constructed and must dispose.
	OwnerCaller Owner = iota
	// OwnerEngine marks values owned by the engine's object graph.
	OwnerEngine
)

func (o Owner) String() string {
	if o == OwnerCaller {
		return "caller"
	}
	return "engine"
}

// Scope bounds how long a non-owning engine reference stays valid.
type Scope uint8

const (
	// ScopeWorld refs live until the engine destroys the referent.
	ScopeWorld Scope = iota
	// ScopeStep refs become stale at the next simulation step.
	ScopeStep
	// ScopeCallback refs become stale when the delivering callback returns.
	ScopeCallback

	scopeCount
)

func (s Scope) String() string {
	switch s {
	case ScopeWorld:
		return "world"
	case ScopeStep:
		return "step"
	case ScopeCallback:
		return "callback"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// EventType identifies a handle lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDisposed
	EventTransferred
	EventInvalidated
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventDisposed:
		return "disposed"
	case EventTransferred:
		return "transferred"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Owner  Owner
	Scope  Scope
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// Destroyer is optionally implemented by caller-owned values that need cleanup
// when they are disposed.
type Destroyer interface {
	Destroy()
}
