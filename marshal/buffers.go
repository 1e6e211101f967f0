package marshal

import (
	"github.com/wippyai/box2d-bridge/errors"
)

// Fixed-size result buffers. The element count each operation writes is the
// length of its buffer type, so an undersized buffer cannot be passed.
type (
	// Vec2 holds x, y.
	Vec2 [2]float32

	// ManifoldPoint holds localPoint.x, localPoint.y, normalImpulse, tangentImpulse.
	ManifoldPoint [4]float32

	// WorldManifold holds the normal, up to two world points and their
	// separations. Only the slots for populated points are written.
	WorldManifold [8]float32

	// Filter holds collision filter data in mask, category, group order.
	Filter [3]int16

	// Impulses holds one impulse per manifold point.
	Impulses [2]float32

	// JointParams is the guest-side joint definition: five points, the
	// target, then ratio, max length and max force.
	JointParams [15]float32
)

// Field offsets.
const (
	PointLocalX         = 0
	PointLocalY         = 1
	PointNormalImpulse  = 2
	PointTangentImpulse = 3

	WorldManifoldNormal      = 0
	WorldManifoldPoints      = 2
	WorldManifoldSeparations = 6

	// The getter order differs from the setter's (category, mask, group)
	// argument order. Existing callers index by these offsets.
	FilterMask     = 0
	FilterCategory = 1
	FilterGroup    = 2

	JointAnchorA   = 0
	JointAnchorB   = 2
	JointGroundA   = 4
	JointGroundB   = 6
	JointAxis      = 8
	JointTarget    = 10
	JointRatio     = 12
	JointMaxLength = 13
	JointMaxForce  = 14
)

// Element sizes in guest memory.
const (
	SizeF32 = 4
	SizeI16 = 2
	SizeU64 = 8
)

// Vec returns the pair starting at offset i.
func (p *JointParams) Vec(i int) Vec2 {
	return Vec2{p[i], p[i+1]}
}

// EachPair calls fn for each of the first n (x, y) pairs in src.
// The count is never inferred from len(src); src only has to hold 2n values.
func EachPair(src []float32, n int, fn func(i int, x, y float32)) error {
	if n < 0 {
		return errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Op("pairs").
			Value(n).
			Detail("negative vertex count %d", n).
			Build()
	}
	if len(src) < 2*n {
		return errors.OutOfBounds(errors.PhaseMarshal, "pairs", 2*n-1, len(src))
	}
	for i := 0; i < n; i++ {
		fn(i, src[2*i], src[2*i+1])
	}
	return nil
}
