package bridge

import (
	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// MaxPolygonVertices is the engine's polygon vertex limit.
const MaxPolygonVertices = box2d.B2_maxPolygonVertices

// shapeAs resolves a shape handle to one concrete variant.
func shapeAs[T any](w *World, h handle.Handle, entity string) (T, error) {
	var zero T
	v, err := w.handles.Lookup(h, handle.KindShape)
	if err != nil {
		return zero, err
	}
	s, ok := v.(T)
	if !ok {
		return zero, wrongEntity(entity, v, h)
	}
	return s, nil
}

func shapeRadius(v any) (float64, bool) {
	switch s := v.(type) {
	case *box2d.B2CircleShape:
		return s.M_radius, true
	case *box2d.B2EdgeShape:
		return s.M_radius, true
	case *box2d.B2ChainShape:
		return s.M_radius, true
	case *box2d.B2PolygonShape:
		return s.M_radius, true
	}
	return 0, false
}

// Shapes holds the accessors shared by every shape variant.
type Shapes struct{ w *World }

// Type returns the shape variant, or mapping.ShapeUnknown.
func (s Shapes) Type(h handle.Handle) (mapping.ShapeType, error) {
	v, err := s.w.handles.Lookup(h, handle.KindShape)
	if err != nil {
		return mapping.ShapeUnknown, err
	}
	shape, ok := v.(box2d.B2ShapeInterface)
	if !ok {
		return mapping.ShapeUnknown, nil
	}
	return mapping.ShapeTypeFromEngine(shape.GetType()), nil
}

func (s Shapes) Radius(h handle.Handle) (float32, error) {
	v, err := s.w.handles.Lookup(h, handle.KindShape)
	if err != nil {
		return 0, err
	}
	r, ok := shapeRadius(v)
	if !ok {
		return 0, wrongEntity("shape", v, h)
	}
	return float32(r), nil
}

func (s Shapes) SetRadius(h handle.Handle, r float32) error {
	v, err := s.w.handles.Lookup(h, handle.KindShape)
	if err != nil {
		return err
	}
	switch shape := v.(type) {
	case *box2d.B2CircleShape:
		shape.M_radius = float64(r)
	case *box2d.B2EdgeShape:
		shape.M_radius = float64(r)
	case *box2d.B2ChainShape:
		shape.M_radius = float64(r)
	case *box2d.B2PolygonShape:
		shape.M_radius = float64(r)
	default:
		return wrongEntity("shape", v, h)
	}
	return nil
}

// ChildCount returns the number of child primitives (edges of a chain).
func (s Shapes) ChildCount(h handle.Handle) (int32, error) {
	v, err := s.w.handles.Lookup(h, handle.KindShape)
	if err != nil {
		return 0, err
	}
	shape, ok := v.(box2d.B2ShapeInterface)
	if !ok {
		return 0, wrongEntity("shape", v, h)
	}
	return int32(shape.GetChildCount()), nil
}

// Dispose releases a shape that was never attached. Attached shapes belong
// to their fixture and report KindWrongOwner.
func (s Shapes) Dispose(h handle.Handle) error {
	_, err := s.w.handles.Dispose(h, handle.KindShape)
	return err
}

// Circles accesses circle shapes.
type Circles struct{ w *World }

// New constructs a caller-owned circle of radius 0 at the origin.
func (c Circles) New() (handle.Handle, error) {
	shape := box2d.MakeB2CircleShape()
	return c.w.handles.Own(handle.KindShape, &shape)
}

func (c Circles) Position(h handle.Handle, out *marshal.Vec2) error {
	shape, err := shapeAs[*box2d.B2CircleShape](c.w, h, "circle")
	if err != nil {
		return err
	}
	putVec(out, shape.M_p)
	return nil
}

func (c Circles) SetPosition(h handle.Handle, x, y float32) error {
	shape, err := shapeAs[*box2d.B2CircleShape](c.w, h, "circle")
	if err != nil {
		return err
	}
	shape.M_p = vec(x, y)
	return nil
}

// Edges accesses edge shapes.
type Edges struct{ w *World }

func (e Edges) New() (handle.Handle, error) {
	shape := box2d.MakeB2EdgeShape()
	return e.w.handles.Own(handle.KindShape, &shape)
}

// Set places the edge between (x1, y1) and (x2, y2). Adjacency is cleared.
func (e Edges) Set(h handle.Handle, x1, y1, x2, y2 float32) error {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return err
	}
	shape.Set(vec(x1, y1), vec(x2, y2))
	return nil
}

func (e Edges) Vertex0(h handle.Handle, out *marshal.Vec2) error {
	return e.vertex(h, out, func(s *box2d.B2EdgeShape) box2d.B2Vec2 { return s.M_vertex0 })
}

func (e Edges) Vertex1(h handle.Handle, out *marshal.Vec2) error {
	return e.vertex(h, out, func(s *box2d.B2EdgeShape) box2d.B2Vec2 { return s.M_vertex1 })
}

func (e Edges) Vertex2(h handle.Handle, out *marshal.Vec2) error {
	return e.vertex(h, out, func(s *box2d.B2EdgeShape) box2d.B2Vec2 { return s.M_vertex2 })
}

func (e Edges) Vertex3(h handle.Handle, out *marshal.Vec2) error {
	return e.vertex(h, out, func(s *box2d.B2EdgeShape) box2d.B2Vec2 { return s.M_vertex3 })
}

// SetVertex0 sets the ghost vertex before vertex1. It does not set HasVertex0.
func (e Edges) SetVertex0(h handle.Handle, x, y float32) error {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return err
	}
	shape.M_vertex0 = vec(x, y)
	return nil
}

// SetVertex3 sets the ghost vertex after vertex2. It does not set HasVertex3.
func (e Edges) SetVertex3(h handle.Handle, x, y float32) error {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return err
	}
	shape.M_vertex3 = vec(x, y)
	return nil
}

func (e Edges) HasVertex0(h handle.Handle) (bool, error) {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return false, err
	}
	return shape.M_hasVertex0, nil
}

func (e Edges) HasVertex3(h handle.Handle) (bool, error) {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return false, err
	}
	return shape.M_hasVertex3, nil
}

func (e Edges) SetHasVertex0(h handle.Handle, has bool) error {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return err
	}
	shape.M_hasVertex0 = has
	return nil
}

func (e Edges) SetHasVertex3(h handle.Handle, has bool) error {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return err
	}
	shape.M_hasVertex3 = has
	return nil
}

func (e Edges) vertex(h handle.Handle, out *marshal.Vec2, get func(*box2d.B2EdgeShape) box2d.B2Vec2) error {
	shape, err := shapeAs[*box2d.B2EdgeShape](e.w, h, "edge")
	if err != nil {
		return err
	}
	putVec(out, get(shape))
	return nil
}

// Chains accesses chain shapes.
type Chains struct{ w *World }

func (c Chains) New() (handle.Handle, error) {
	shape := box2d.MakeB2ChainShape()
	return c.w.handles.Own(handle.KindShape, &shape)
}

// CreateChain loads n (x, y) pairs from verts as an open chain (n >= 2).
func (c Chains) CreateChain(h handle.Handle, verts []float32, n int) error {
	return c.create(h, verts, n, 2, "create-chain", func(s *box2d.B2ChainShape, v []box2d.B2Vec2) {
		s.CreateChain(v, n)
	})
}

// CreateLoop loads n (x, y) pairs as a closed loop (n >= 3). The engine
// repeats the first vertex, so VertexCount reports n+1.
func (c Chains) CreateLoop(h handle.Handle, verts []float32, n int) error {
	return c.create(h, verts, n, 3, "create-loop", func(s *box2d.B2ChainShape, v []box2d.B2Vec2) {
		s.CreateLoop(v, n)
	})
}

func (c Chains) create(h handle.Handle, verts []float32, n, least int, op string, load func(*box2d.B2ChainShape, []box2d.B2Vec2)) error {
	shape, err := shapeAs[*box2d.B2ChainShape](c.w, h, "chain")
	if err != nil {
		return err
	}
	if shape.M_count != 0 {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Entity("chain").
			Op(op).
			Value(uint64(h)).
			Detail("chain already holds %d vertices", shape.M_count).
			Build()
	}
	if n < least {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Entity("chain").
			Op(op).
			Value(n).
			Detail("need at least %d vertices, got %d", least, n).
			Build()
	}

	points := make([]box2d.B2Vec2, n)
	if err := marshal.EachPair(verts, n, func(i int, x, y float32) {
		points[i] = vec(x, y)
	}); err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		if box2d.B2Vec2DistanceSquared(points[i-1], points[i]) <= box2d.B2_linearSlop*box2d.B2_linearSlop {
			return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
				Entity("chain").
				Op(op).
				Value(i).
				Detail("vertices %d and %d are closer than the linear slop", i-1, i).
				Build()
		}
	}

	return guard(errors.PhaseAccess, op, func() { load(shape, points) })
}

func (c Chains) VertexCount(h handle.Handle) (int32, error) {
	shape, err := shapeAs[*box2d.B2ChainShape](c.w, h, "chain")
	if err != nil {
		return 0, err
	}
	return int32(shape.M_count), nil
}

func (c Chains) Vertex(h handle.Handle, i int32, out *marshal.Vec2) error {
	shape, err := shapeAs[*box2d.B2ChainShape](c.w, h, "chain")
	if err != nil {
		return err
	}
	if i < 0 || int(i) >= shape.M_count {
		return errors.OutOfBounds(errors.PhaseAccess, "chain.vertex", int(i), shape.M_count)
	}
	putVec(out, shape.M_vertices[i])
	return nil
}

// SetPrevVertex sets the ghost vertex before the first chain vertex.
func (c Chains) SetPrevVertex(h handle.Handle, x, y float32) error {
	shape, err := shapeAs[*box2d.B2ChainShape](c.w, h, "chain")
	if err != nil {
		return err
	}
	shape.SetPrevVertex(vec(x, y))
	return nil
}

// SetNextVertex sets the ghost vertex after the last chain vertex.
func (c Chains) SetNextVertex(h handle.Handle, x, y float32) error {
	shape, err := shapeAs[*box2d.B2ChainShape](c.w, h, "chain")
	if err != nil {
		return err
	}
	shape.SetNextVertex(vec(x, y))
	return nil
}

// Polygons accesses convex polygon shapes.
type Polygons struct{ w *World }

func (p Polygons) New() (handle.Handle, error) {
	shape := box2d.MakeB2PolygonShape()
	return p.w.handles.Own(handle.KindShape, &shape)
}

// Set loads n (x, y) pairs and computes their convex hull (3 <= n <= 8).
func (p Polygons) Set(h handle.Handle, verts []float32, n int) error {
	shape, err := shapeAs[*box2d.B2PolygonShape](p.w, h, "polygon")
	if err != nil {
		return err
	}
	if n < 3 || n > MaxPolygonVertices {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Entity("polygon").
			Op("set").
			Value(n).
			Detail("vertex count must be in [3, %d], got %d", MaxPolygonVertices, n).
			Build()
	}

	points := make([]box2d.B2Vec2, n)
	if err := marshal.EachPair(verts, n, func(i int, x, y float32) {
		points[i] = vec(x, y)
	}); err != nil {
		return err
	}
	return guard(errors.PhaseAccess, "polygon.set", func() { shape.Set(points, n) })
}

// SetAsBox makes an axis-aligned box with half extents hx, hy.
func (p Polygons) SetAsBox(h handle.Handle, hx, hy float32) error {
	shape, err := shapeAs[*box2d.B2PolygonShape](p.w, h, "polygon")
	if err != nil {
		return err
	}
	if hx <= 0 || hy <= 0 {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Entity("polygon").
			Op("set-as-box").
			Detail("half extents must be positive, got %v x %v", hx, hy).
			Build()
	}
	shape.SetAsBox(float64(hx), float64(hy))
	return nil
}

// SetAsOrientedBox makes a box centred at (cx, cy) rotated by angle.
func (p Polygons) SetAsOrientedBox(h handle.Handle, hx, hy, cx, cy, angle float32) error {
	shape, err := shapeAs[*box2d.B2PolygonShape](p.w, h, "polygon")
	if err != nil {
		return err
	}
	if hx <= 0 || hy <= 0 {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Entity("polygon").
			Op("set-as-oriented-box").
			Detail("half extents must be positive, got %v x %v", hx, hy).
			Build()
	}
	shape.SetAsBoxFromCenterAndAngle(float64(hx), float64(hy), vec(cx, cy), float64(angle))
	return nil
}

func (p Polygons) VertexCount(h handle.Handle) (int32, error) {
	shape, err := shapeAs[*box2d.B2PolygonShape](p.w, h, "polygon")
	if err != nil {
		return 0, err
	}
	return int32(shape.M_count), nil
}

func (p Polygons) Vertex(h handle.Handle, i int32, out *marshal.Vec2) error {
	shape, err := shapeAs[*box2d.B2PolygonShape](p.w, h, "polygon")
	if err != nil {
		return err
	}
	if i < 0 || int(i) >= shape.M_count {
		return errors.OutOfBounds(errors.PhaseAccess, "polygon.vertex", int(i), shape.M_count)
	}
	putVec(out, shape.M_vertices[i])
	return nil
}
