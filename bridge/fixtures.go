package bridge

import (
	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// Fixtures accesses engine-owned fixtures.
type Fixtures struct{ w *World }

func (f Fixtures) fixture(h handle.Handle) (*box2d.B2Fixture, error) {
	return handle.Get[*box2d.B2Fixture](f.w.handles, h, handle.KindFixture)
}

// Type returns the variant of the fixture's shape.
func (f Fixtures) Type(h handle.Handle) (mapping.ShapeType, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return mapping.ShapeUnknown, err
	}
	return mapping.ShapeTypeFromEngine(fx.GetType()), nil
}

// Shape returns a non-owning handle to the fixture's shape.
func (f Fixtures) Shape(h handle.Handle) (handle.Handle, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return 0, err
	}
	return f.w.handles.Ref(handle.KindShape, handle.ScopeWorld, fx.GetShape())
}

func (f Fixtures) Body(h handle.Handle) (handle.Handle, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return 0, err
	}
	return f.w.refBody(fx.GetBody())
}

func (f Fixtures) SetSensor(h handle.Handle, sensor bool) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	fx.SetSensor(sensor)
	return nil
}

func (f Fixtures) IsSensor(h handle.Handle) (bool, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return false, err
	}
	return fx.IsSensor(), nil
}

// SetFilterData takes category, mask, group. FilterData writes them back in
// mask, category, group order.
func (f Fixtures) SetFilterData(h handle.Handle, category, mask uint16, group int16) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	filter := fx.GetFilterData()
	filter.CategoryBits = category
	filter.MaskBits = mask
	filter.GroupIndex = group
	fx.SetFilterData(filter)
	return nil
}

func (f Fixtures) FilterData(h handle.Handle, out *marshal.Filter) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	filter := fx.GetFilterData()
	out[marshal.FilterMask] = int16(filter.MaskBits)
	out[marshal.FilterCategory] = int16(filter.CategoryBits)
	out[marshal.FilterGroup] = filter.GroupIndex
	return nil
}

// Refilter flags the fixture's contacts for filtering on the next step.
func (f Fixtures) Refilter(h handle.Handle) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	fx.Refilter()
	return nil
}

// TestPoint reports whether the world point (x, y) is inside the fixture.
func (f Fixtures) TestPoint(h handle.Handle, x, y float32) (bool, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return false, err
	}
	return fx.TestPoint(vec(x, y)), nil
}

func (f Fixtures) Density(h handle.Handle) (float32, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return 0, err
	}
	return float32(fx.GetDensity()), nil
}

// SetDensity does not reset the body's mass.
func (f Fixtures) SetDensity(h handle.Handle, density float32) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	fx.SetDensity(float64(density))
	return nil
}

func (f Fixtures) Friction(h handle.Handle) (float32, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return 0, err
	}
	return float32(fx.GetFriction()), nil
}

func (f Fixtures) SetFriction(h handle.Handle, friction float32) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	fx.SetFriction(float64(friction))
	return nil
}

func (f Fixtures) Restitution(h handle.Handle) (float32, error) {
	fx, err := f.fixture(h)
	if err != nil {
		return 0, err
	}
	return float32(fx.GetRestitution()), nil
}

func (f Fixtures) SetRestitution(h handle.Handle, restitution float32) error {
	fx, err := f.fixture(h)
	if err != nil {
		return err
	}
	fx.SetRestitution(float64(restitution))
	return nil
}
