package bridge

import (
	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// Bodies is the collaborator surface that owns fixtures. It is the only way
// a caller-owned shape becomes engine-owned.
type Bodies struct{ w *World }

func (b Bodies) body(h handle.Handle) (*box2d.B2Body, error) {
	return handle.Get[*box2d.B2Body](b.w.handles, h, handle.KindBody)
}

// New creates a body of the given type at (x, y) rotated by angle.
func (b Bodies) New(typ mapping.BodyType, x, y, angle float32) (handle.Handle, error) {
	if err := b.w.unlocked("create-body"); err != nil {
		return 0, err
	}
	engineType, ok := typ.Engine()
	if !ok {
		return 0, errors.New(errors.PhaseWorld, errors.KindInvalidInput).
			Entity("body").
			Op("create").
			Value(typ).
			Detail("unknown body type %d", int32(typ)).
			Build()
	}

	def := box2d.MakeB2BodyDef()
	def.Type = engineType
	def.Position = vec(x, y)
	def.Angle = float64(angle)

	var body *box2d.B2Body
	if err := guard(errors.PhaseWorld, "create-body", func() {
		body = b.w.engine.CreateBody(&def)
	}); err != nil {
		return 0, err
	}
	return b.w.refBody(body)
}

// Attach creates a fixture on body from a caller-owned shape. The engine
// takes the shape: the shape handle becomes stale and the fixture's own
// shape is reachable through Fixtures.Shape.
func (b Bodies) Attach(body, shape handle.Handle, density float32) (handle.Handle, error) {
	if err := b.w.unlocked("attach"); err != nil {
		return 0, err
	}
	eb, err := b.body(body)
	if err != nil {
		return 0, err
	}
	v, err := b.w.handles.Lookup(shape, handle.KindShape)
	if err != nil {
		return 0, err
	}
	if owner, _ := b.w.handles.Owner(shape); owner != handle.OwnerCaller {
		return 0, errors.WrongOwner(errors.PhaseAccess, "shape", uint64(shape))
	}
	es, ok := v.(box2d.B2ShapeInterface)
	if !ok {
		return 0, wrongEntity("shape", v, shape)
	}

	var fixture *box2d.B2Fixture
	if err := guard(errors.PhaseWorld, "attach", func() {
		fixture = eb.CreateFixture(es, float64(density))
	}); err != nil {
		return 0, err
	}
	if _, err := b.w.handles.Transfer(shape, handle.KindShape); err != nil {
		return 0, err
	}
	return b.w.refFixture(fixture)
}

func (b Bodies) Type(h handle.Handle) (mapping.BodyType, error) {
	eb, err := b.body(h)
	if err != nil {
		return mapping.BodyUnknown, err
	}
	return mapping.BodyTypeFromEngine(eb.GetType()), nil
}

func (b Bodies) Position(h handle.Handle, out *marshal.Vec2) error {
	eb, err := b.body(h)
	if err != nil {
		return err
	}
	putVec(out, eb.GetPosition())
	return nil
}

func (b Bodies) Angle(h handle.Handle) (float32, error) {
	eb, err := b.body(h)
	if err != nil {
		return 0, err
	}
	return float32(eb.GetAngle()), nil
}

func (b Bodies) LinearVelocity(h handle.Handle, out *marshal.Vec2) error {
	eb, err := b.body(h)
	if err != nil {
		return err
	}
	putVec(out, eb.GetLinearVelocity())
	return nil
}

func (b Bodies) SetLinearVelocity(h handle.Handle, x, y float32) error {
	eb, err := b.body(h)
	if err != nil {
		return err
	}
	eb.SetLinearVelocity(vec(x, y))
	return nil
}

// ApplyLinearImpulse applies impulse (ix, iy) at world point (px, py) and
// wakes the body.
func (b Bodies) ApplyLinearImpulse(h handle.Handle, ix, iy, px, py float32) error {
	eb, err := b.body(h)
	if err != nil {
		return err
	}
	eb.ApplyLinearImpulse(vec(ix, iy), vec(px, py), true)
	return nil
}

// Fixtures appends a handle for each of the body's fixtures to dst.
func (b Bodies) Fixtures(h handle.Handle, dst []handle.Handle) ([]handle.Handle, error) {
	eb, err := b.body(h)
	if err != nil {
		return dst, err
	}
	for f := eb.GetFixtureList(); f != nil; f = f.GetNext() {
		fh, err := b.w.refFixture(f)
		if err != nil {
			return dst, err
		}
		dst = append(dst, fh)
	}
	return dst, nil
}

// Destroy removes the body with its fixtures and joints. Their handles, and
// all contact handles, become stale.
func (b Bodies) Destroy(h handle.Handle) error {
	if err := b.w.unlocked("destroy-body"); err != nil {
		return err
	}
	eb, err := b.body(h)
	if err != nil {
		return err
	}
	for f := eb.GetFixtureList(); f != nil; f = f.GetNext() {
		b.w.forgetFixture(f)
	}
	err = guard(errors.PhaseWorld, "destroy-body", func() {
		b.w.engine.DestroyBody(eb)
	})
	b.w.handles.Forget(eb)
	b.w.handles.Invalidate(handle.ScopeStep)
	return err
}
