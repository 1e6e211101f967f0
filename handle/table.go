package handle

import (
	"reflect"

	"github.com/wippyai/box2d-bridge/errors"
)

// Table maps handles to native objects for one world.
//
// Caller-owned values (shapes before attachment) are registered with Own and
// released with Dispose or Transfer. Engine-owned values are registered with
// Ref, which never takes ownership: the same object always yields the same
// handle until the engine destroys it (Forget) or its scope ends (Invalidate).
//
// Every release bumps the slot generation, so a handle that outlives its
// referent is reported as stale instead of resolving to a recycled slot.
//
// Table is not safe for concurrent use. The owning world serializes access.
type Table struct {
	index     map[any]Handle
	entries   []entry
	freeList  []uint32
	scoped    [scopeCount][]Handle
	observers []Observer
	live      int
	closed    bool
}

type entry struct {
	value any
	gen   uint32
	kind  Kind
	owner Owner
	scope Scope
	valid bool
}

// NewTable creates an empty handle table.
func NewTable() *Table {
	return &Table{
		index:    make(map[any]Handle),
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Own registers a caller-owned value and returns its handle.
func (t *Table) Own(kind Kind, value any) (Handle, error) {
	h, err := t.insert(kind, OwnerCaller, ScopeWorld, value)
	if err != nil {
		return 0, err
	}
	t.notify(Event{Type: EventCreated, Handle: h, Kind: kind, Owner: OwnerCaller, Value: value})
	return h, nil
}

// Ref returns the non-owning handle for an engine-owned value, registering it
// on first sight. The value's dynamic type must be comparable (a pointer).
func (t *Table) Ref(kind Kind, scope Scope, value any) (Handle, error) {
	if h, ok := t.index[value]; ok {
		if e, _ := t.resolve(h); e != nil {
			if e.kind != kind {
				return 0, errors.WrongKind(errors.PhaseHandle, kind.String(), e.kind.String(), uint64(h))
			}
			return h, nil
		}
		delete(t.index, value)
	}

	h, err := t.insert(kind, OwnerEngine, scope, value)
	if err != nil {
		return 0, err
	}
	t.index[value] = h
	if scope != ScopeWorld {
		t.scoped[scope] = append(t.scoped[scope], h)
	}
	t.notify(Event{Type: EventCreated, Handle: h, Kind: kind, Owner: OwnerEngine, Scope: scope, Value: value})
	return h, nil
}

// Lookup resolves a handle issued for the given kind.
func (t *Table) Lookup(h Handle, kind Kind) (any, error) {
	e, _ := t.resolve(h)
	if e == nil {
		return nil, errors.StaleHandle(errors.PhaseHandle, kind.String(), uint64(h))
	}
	if e.kind != kind {
		return nil, errors.WrongKind(errors.PhaseHandle, kind.String(), e.kind.String(), uint64(h))
	}
	return e.value, nil
}

// Get resolves a handle and asserts the referent's Go type.
func Get[T any](t *Table, h Handle, kind Kind) (T, error) {
	var zero T
	v, err := t.Lookup(h, kind)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.WrongKind(errors.PhaseHandle,
			reflect.TypeFor[T]().String(), reflect.TypeOf(v).String(), uint64(h))
	}
	return typed, nil
}

// Owner reports who owns the referent of a live handle.
func (t *Table) Owner(h Handle) (Owner, bool) {
	e, _ := t.resolve(h)
	if e == nil {
		return 0, false
	}
	return e.owner, true
}

// Dispose releases a caller-owned value. Values implementing Destroyer are
// destroyed. Disposing twice reports KindDoubleDispose; disposing an
// engine-owned handle reports KindWrongOwner and leaves it live.
func (t *Table) Dispose(h Handle, kind Kind) (any, error) {
	slot, err := t.owned(h, kind)
	if err != nil {
		return nil, err
	}
	value := t.release(slot)
	if d, ok := value.(Destroyer); ok {
		d.Destroy()
	}
	t.notify(Event{Type: EventDisposed, Handle: h, Kind: kind, Owner: OwnerCaller, Value: value})
	return value, nil
}

// Transfer hands a caller-owned value to the engine. The handle becomes stale
// and the value is returned for attachment; it is not destroyed.
func (t *Table) Transfer(h Handle, kind Kind) (any, error) {
	slot, err := t.owned(h, kind)
	if err != nil {
		return nil, err
	}
	value := t.release(slot)
	t.notify(Event{Type: EventTransferred, Handle: h, Kind: kind, Owner: OwnerCaller, Value: value})
	return value, nil
}

// Forget marks an engine-owned value as destroyed. It reports whether the
// value had a live handle.
func (t *Table) Forget(value any) bool {
	h, ok := t.index[value]
	if !ok {
		return false
	}
	delete(t.index, value)

	e, slot := t.resolve(h)
	if e == nil {
		return false
	}
	kind, scope := e.kind, e.scope
	t.release(slot)
	t.notify(Event{Type: EventInvalidated, Handle: h, Kind: kind, Owner: OwnerEngine, Scope: scope, Value: value})
	return true
}

// Invalidate stales every engine reference registered under scope and
// returns how many were live.
func (t *Table) Invalidate(scope Scope) int {
	if scope == ScopeWorld {
		return t.invalidateWorld()
	}

	n := 0
	for _, h := range t.scoped[scope] {
		e, slot := t.resolve(h)
		if e == nil {
			continue
		}
		value, kind := e.value, e.kind
		delete(t.index, value)
		t.release(slot)
		t.notify(Event{Type: EventInvalidated, Handle: h, Kind: kind, Owner: OwnerEngine, Scope: scope, Value: value})
		n++
	}
	t.scoped[scope] = t.scoped[scope][:0]
	return n
}

func (t *Table) invalidateWorld() int {
	n := 0
	for i := range t.entries {
		e := &t.entries[i]
		if !e.valid || e.owner != OwnerEngine || e.scope != ScopeWorld {
			continue
		}
		h := makeHandle(uint32(i), e.gen)
		value, kind := e.value, e.kind
		delete(t.index, value)
		t.release(uint32(i))
		t.notify(Event{Type: EventInvalidated, Handle: h, Kind: kind, Owner: OwnerEngine, Scope: ScopeWorld, Value: value})
		n++
	}
	return n
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.live
}

// Each iterates over all live handles.
func (t *Table) Each(fn func(h Handle, kind Kind, owner Owner) bool) {
	for i, e := range t.entries {
		if e.valid {
			if !fn(makeHandle(uint32(i), e.gen), e.kind, e.owner) {
				break
			}
		}
	}
}

// Close releases every handle and stops accepting new ones. Caller-owned
// values implementing Destroyer are destroyed.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	for i := range t.entries {
		e := &t.entries[i]
		if !e.valid {
			continue
		}
		if e.owner == OwnerCaller {
			if d, ok := e.value.(Destroyer); ok {
				d.Destroy()
			}
		}
		e.valid = false
		e.value = nil
	}

	t.entries = nil
	t.freeList = nil
	t.index = nil
	for i := range t.scoped {
		t.scoped[i] = nil
	}
	t.live = 0
	return nil
}

func (t *Table) insert(kind Kind, owner Owner, scope Scope, value any) (Handle, error) {
	if t.closed {
		return 0, errors.Closed(errors.PhaseHandle, "handle table")
	}
	if value == nil {
		return 0, errors.InvalidInput(errors.PhaseHandle, "cannot register a nil "+kind.String())
	}

	var slot uint32
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		t.entries = append(t.entries, entry{gen: 1})
		slot = uint32(len(t.entries) - 1)
	}

	e := &t.entries[slot]
	e.value = value
	e.kind = kind
	e.owner = owner
	e.scope = scope
	e.valid = true
	t.live++
	return makeHandle(slot, e.gen), nil
}

func (t *Table) resolve(h Handle) (*entry, uint32) {
	slot, ok := h.slot()
	if !ok || int(slot) >= len(t.entries) {
		return nil, 0
	}
	e := &t.entries[slot]
	if !e.valid || e.gen != h.generation() {
		return nil, 0
	}
	return e, slot
}

// owned validates a handle for Dispose and Transfer.
func (t *Table) owned(h Handle, kind Kind) (uint32, error) {
	slot, ok := h.slot()
	if !ok || int(slot) >= len(t.entries) {
		return 0, errors.StaleHandle(errors.PhaseHandle, kind.String(), uint64(h))
	}
	e := &t.entries[slot]
	if !e.valid || e.gen != h.generation() {
		return 0, errors.DoubleDispose(errors.PhaseHandle, kind.String(), uint64(h))
	}
	if e.kind != kind {
		return 0, errors.WrongKind(errors.PhaseHandle, kind.String(), e.kind.String(), uint64(h))
	}
	if e.owner != OwnerCaller {
		return 0, errors.WrongOwner(errors.PhaseHandle, kind.String(), uint64(h))
	}
	return slot, nil
}

func (t *Table) release(slot uint32) any {
	e := &t.entries[slot]
	value := e.value
	e.value = nil
	e.valid = false
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	t.freeList = append(t.freeList, slot)
	t.live--
	return value
}

func (t *Table) notify(e Event) {
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
