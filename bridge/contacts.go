package bridge

import (
	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// Contacts accesses step-scoped contacts. A contact handle is stale after
// the next Step.
type Contacts struct{ w *World }

func (c Contacts) contact(h handle.Handle) (box2d.B2ContactInterface, error) {
	return handle.Get[box2d.B2ContactInterface](c.w.handles, h, handle.KindContact)
}

// contactAs resolves a contact and asserts an optional engine capability.
func contactAs[T any](w *World, h handle.Handle, op string) (T, error) {
	var zero T
	v, err := w.handles.Lookup(h, handle.KindContact)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Unsupported(errors.PhaseAccess, "contact", op)
	}
	return t, nil
}

// WorldManifold writes the contact's world manifold into out and returns the
// number of populated points. The normal is always written; point and
// separation slots past the count are left untouched.
func (c Contacts) WorldManifold(h handle.Handle, out *marshal.WorldManifold) (int32, error) {
	ct, err := c.contact(h)
	if err != nil {
		return 0, err
	}
	fa, fb := ct.GetFixtureA(), ct.GetFixtureB()
	ra, _ := shapeRadius(fa.GetShape())
	rb, _ := shapeRadius(fb.GetShape())
	m := ct.GetManifold()

	var wm box2d.B2WorldManifold
	wm.Initialize(m, fa.GetBody().GetTransform(), ra, fb.GetBody().GetTransform(), rb)

	out[marshal.WorldManifoldNormal] = float32(wm.Normal.X)
	out[marshal.WorldManifoldNormal+1] = float32(wm.Normal.Y)
	for i := 0; i < m.PointCount; i++ {
		out[marshal.WorldManifoldPoints+2*i] = float32(wm.Points[i].X)
		out[marshal.WorldManifoldPoints+2*i+1] = float32(wm.Points[i].Y)
		out[marshal.WorldManifoldSeparations+i] = float32(wm.Separations[i])
	}
	return int32(m.PointCount), nil
}

// Manifold returns a handle to the contact's manifold, valid until the next step.
func (c Contacts) Manifold(h handle.Handle) (handle.Handle, error) {
	ct, err := c.contact(h)
	if err != nil {
		return 0, err
	}
	return c.w.handles.Ref(handle.KindManifold, handle.ScopeStep, ct.GetManifold())
}

func (c Contacts) IsTouching(h handle.Handle) (bool, error) {
	ct, err := c.contact(h)
	if err != nil {
		return false, err
	}
	return ct.IsTouching(), nil
}

type contactEnabler interface {
	SetEnabled(flag bool)
	IsEnabled() bool
}

// SetEnabled disables the contact for the current step only (use in PreSolve).
func (c Contacts) SetEnabled(h handle.Handle, enabled bool) error {
	ct, err := contactAs[contactEnabler](c.w, h, "set-enabled")
	if err != nil {
		return err
	}
	ct.SetEnabled(enabled)
	return nil
}

func (c Contacts) IsEnabled(h handle.Handle) (bool, error) {
	ct, err := contactAs[contactEnabler](c.w, h, "is-enabled")
	if err != nil {
		return false, err
	}
	return ct.IsEnabled(), nil
}

func (c Contacts) FixtureA(h handle.Handle) (handle.Handle, error) {
	ct, err := c.contact(h)
	if err != nil {
		return 0, err
	}
	return c.w.refFixture(ct.GetFixtureA())
}

func (c Contacts) FixtureB(h handle.Handle) (handle.Handle, error) {
	ct, err := c.contact(h)
	if err != nil {
		return 0, err
	}
	return c.w.refFixture(ct.GetFixtureB())
}

func (c Contacts) ChildIndexA(h handle.Handle) (int32, error) {
	ct, err := c.contact(h)
	if err != nil {
		return 0, err
	}
	return int32(ct.GetChildIndexA()), nil
}

func (c Contacts) ChildIndexB(h handle.Handle) (int32, error) {
	ct, err := c.contact(h)
	if err != nil {
		return 0, err
	}
	return int32(ct.GetChildIndexB()), nil
}

type contactFriction interface {
	GetFriction() float64
	SetFriction(friction float64)
	ResetFriction()
}

func (c Contacts) Friction(h handle.Handle) (float32, error) {
	ct, err := contactAs[contactFriction](c.w, h, "get-friction")
	if err != nil {
		return 0, err
	}
	return float32(ct.GetFriction()), nil
}

// SetFriction overrides the mixed friction until ResetFriction or the
// contact is destroyed.
func (c Contacts) SetFriction(h handle.Handle, friction float32) error {
	ct, err := contactAs[contactFriction](c.w, h, "set-friction")
	if err != nil {
		return err
	}
	ct.SetFriction(float64(friction))
	return nil
}

func (c Contacts) ResetFriction(h handle.Handle) error {
	ct, err := contactAs[contactFriction](c.w, h, "reset-friction")
	if err != nil {
		return err
	}
	ct.ResetFriction()
	return nil
}

type contactRestitution interface {
	GetRestitution() float64
	SetRestitution(restitution float64)
	ResetRestitution()
}

func (c Contacts) Restitution(h handle.Handle) (float32, error) {
	ct, err := contactAs[contactRestitution](c.w, h, "get-restitution")
	if err != nil {
		return 0, err
	}
	return float32(ct.GetRestitution()), nil
}

func (c Contacts) SetRestitution(h handle.Handle, restitution float32) error {
	ct, err := contactAs[contactRestitution](c.w, h, "set-restitution")
	if err != nil {
		return err
	}
	ct.SetRestitution(float64(restitution))
	return nil
}

func (c Contacts) ResetRestitution(h handle.Handle) error {
	ct, err := contactAs[contactRestitution](c.w, h, "reset-restitution")
	if err != nil {
		return err
	}
	ct.ResetRestitution()
	return nil
}

type contactTangentSpeed interface {
	GetTangentSpeed() float64
	SetTangentSpeed(speed float64)
}

var (
	_ contactEnabler      = (*box2d.B2Contact)(nil)
	_ contactFriction     = (*box2d.B2Contact)(nil)
	_ contactRestitution  = (*box2d.B2Contact)(nil)
	_ contactTangentSpeed = (*box2d.B2Contact)(nil)
)

func (c Contacts) TangentSpeed(h handle.Handle) (float32, error) {
	ct, err := contactAs[contactTangentSpeed](c.w, h, "get-tangent-speed")
	if err != nil {
		return 0, err
	}
	return float32(ct.GetTangentSpeed()), nil
}

func (c Contacts) SetTangentSpeed(h handle.Handle, speed float32) error {
	ct, err := contactAs[contactTangentSpeed](c.w, h, "set-tangent-speed")
	if err != nil {
		return err
	}
	ct.SetTangentSpeed(float64(speed))
	return nil
}

// Impulses accesses contact impulses. An impulse handle is only valid inside
// the PostSolve callback that delivered it.
type Impulses struct{ w *World }

func (im Impulses) impulse(h handle.Handle) (*box2d.B2ContactImpulse, error) {
	return handle.Get[*box2d.B2ContactImpulse](im.w.handles, h, handle.KindImpulse)
}

func (im Impulses) Count(h handle.Handle) (int32, error) {
	ci, err := im.impulse(h)
	if err != nil {
		return 0, err
	}
	return int32(ci.Count), nil
}

// NormalImpulses writes one impulse per point and returns the point count.
func (im Impulses) NormalImpulses(h handle.Handle, out *marshal.Impulses) (int32, error) {
	ci, err := im.impulse(h)
	if err != nil {
		return 0, err
	}
	n := min(ci.Count, len(out))
	for i := 0; i < n; i++ {
		out[i] = float32(ci.NormalImpulses[i])
	}
	return int32(n), nil
}

// TangentImpulses writes one impulse per point and returns the point count.
func (im Impulses) TangentImpulses(h handle.Handle, out *marshal.Impulses) (int32, error) {
	ci, err := im.impulse(h)
	if err != nil {
		return 0, err
	}
	n := min(ci.Count, len(out))
	for i := 0; i < n; i++ {
		out[i] = float32(ci.TangentImpulses[i])
	}
	return int32(n), nil
}

// Manifolds accesses contact manifolds. A manifold handle is stale after the
// next Step, or after its PreSolve callback returns.
type Manifolds struct{ w *World }

func (m Manifolds) manifold(h handle.Handle) (*box2d.B2Manifold, error) {
	return handle.Get[*box2d.B2Manifold](m.w.handles, h, handle.KindManifold)
}

// Type returns the manifold variant, or mapping.ManifoldUnknown.
func (m Manifolds) Type(h handle.Handle) (mapping.ManifoldType, error) {
	mf, err := m.manifold(h)
	if err != nil {
		return mapping.ManifoldUnknown, err
	}
	return mapping.ManifoldTypeFromEngine(mf.Type), nil
}

func (m Manifolds) PointCount(h handle.Handle) (int32, error) {
	mf, err := m.manifold(h)
	if err != nil {
		return 0, err
	}
	return int32(mf.PointCount), nil
}

func (m Manifolds) LocalNormal(h handle.Handle, out *marshal.Vec2) error {
	mf, err := m.manifold(h)
	if err != nil {
		return err
	}
	putVec(out, mf.LocalNormal)
	return nil
}

func (m Manifolds) LocalPoint(h handle.Handle, out *marshal.Vec2) error {
	mf, err := m.manifold(h)
	if err != nil {
		return err
	}
	putVec(out, mf.LocalPoint)
	return nil
}

// Point writes point i (local point, normal impulse, tangent impulse) into
// out and returns its contact feature key. i must be below PointCount.
func (m Manifolds) Point(h handle.Handle, i int32, out *marshal.ManifoldPoint) (uint32, error) {
	mf, err := m.manifold(h)
	if err != nil {
		return 0, err
	}
	if i < 0 || int(i) >= mf.PointCount {
		return 0, errors.OutOfBounds(errors.PhaseAccess, "manifold.point", int(i), mf.PointCount)
	}
	p := mf.Points[i]
	out[marshal.PointLocalX] = float32(p.LocalPoint.X)
	out[marshal.PointLocalY] = float32(p.LocalPoint.Y)
	out[marshal.PointNormalImpulse] = float32(p.NormalImpulse)
	out[marshal.PointTangentImpulse] = float32(p.TangentImpulse)
	return p.Id.Key(), nil
}
