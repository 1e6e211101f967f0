package bridge

import (
	"testing"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// touchingContact steps two overlapping circles once and returns their contact.
func touchingContact(t *testing.T, w *World) handle.Handle {
	t.Helper()
	addCircle(t, w, mapping.BodyStatic, 0, 0, 1)
	addCircle(t, w, mapping.BodyDynamic, 1.5, 0, 1)
	if err := w.Step(1.0/60, 8, 3); err != nil {
		t.Fatalf("Step: %v", err)
	}
	contacts, err := w.ContactList(nil)
	if err != nil {
		t.Fatalf("ContactList: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	return contacts[0]
}

func TestContacts_MaterialRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	c := touchingContact(t, w)

	tests := []struct {
		name  string
		set   func(handle.Handle, float32) error
		get   func(handle.Handle) (float32, error)
		reset func(handle.Handle) error
		v     float32
	}{
		{"friction", w.Contacts.SetFriction, w.Contacts.Friction, w.Contacts.ResetFriction, 0.75},
		{"restitution", w.Contacts.SetRestitution, w.Contacts.Restitution, w.Contacts.ResetRestitution, 0.5},
		{"tangent speed", w.Contacts.SetTangentSpeed, w.Contacts.TangentSpeed, nil, 1.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := tt.get(c)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if err := tt.set(c, tt.v); err != nil {
				t.Fatalf("set: %v", err)
			}
			if got, _ := tt.get(c); got != tt.v {
				t.Errorf("after set = %v, want %v", got, tt.v)
			}
			if tt.reset == nil {
				return
			}
			if err := tt.reset(c); err != nil {
				t.Fatalf("reset: %v", err)
			}
			if got, _ := tt.get(c); got != orig {
				t.Errorf("after reset = %v, want mixed value %v", got, orig)
			}
		})
	}
}

func TestContacts_SetEnabled(t *testing.T) {
	w := newTestWorld(t)
	c := touchingContact(t, w)

	for _, want := range []bool{false, true} {
		if err := w.Contacts.SetEnabled(c, want); err != nil {
			t.Fatalf("SetEnabled(%v): %v", want, err)
		}
		got, err := w.Contacts.IsEnabled(c)
		if err != nil {
			t.Fatalf("IsEnabled: %v", err)
		}
		if got != want {
			t.Errorf("IsEnabled = %v, want %v", got, want)
		}
	}

	if err := w.Step(1.0/60, 8, 3); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := w.Contacts.SetEnabled(c, false); !errors.IsKind(err, errors.KindStaleHandle) {
		t.Errorf("SetEnabled after step: got %v, want stale_handle", err)
	}
}

type impulseListener struct {
	w *World

	calls    int
	normalN  int32
	tangentN int32
	normal   marshal.Impulses
	tangent  marshal.Impulses
	err      error
}

func (l *impulseListener) BeginContact(contact handle.Handle) {}

func (l *impulseListener) EndContact(contact handle.Handle) {}

func (l *impulseListener) PreSolve(contact, oldManifold handle.Handle) {}

func (l *impulseListener) PostSolve(contact, impulse handle.Handle) {
	l.calls++
	if l.normalN, l.err = l.w.Impulses.NormalImpulses(impulse, &l.normal); l.err != nil {
		return
	}
	l.tangentN, l.err = l.w.Impulses.TangentImpulses(impulse, &l.tangent)
}

func TestImpulses_NormalAndTangent(t *testing.T) {
	w := newTestWorld(t)
	l := &impulseListener{w: w}
	w.SetContactListener(l)
	touchingContact(t, w)

	if l.calls == 0 {
		t.Fatal("PostSolve not called")
	}
	if l.err != nil {
		t.Fatalf("impulse accessors: %v", l.err)
	}
	if l.normalN != 1 || l.tangentN != 1 {
		t.Fatalf("point counts = %d/%d, want 1/1", l.normalN, l.tangentN)
	}
	if l.normal[0] <= 0 {
		t.Errorf("normal impulse = %v, want positive for overlapping circles", l.normal[0])
	}
	if l.normal[1] != 0 {
		t.Errorf("slot past the point count = %v, want untouched", l.normal[1])
	}
}
