package scene

import (
	"fmt"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// Built maps scene names to the handles created for them.
type Built struct {
	Bodies   map[string]handle.Handle
	Fixtures map[string][]handle.Handle
	Joints   map[string]handle.Handle
}

// NewWorld creates a world with the scene's gravity and builds it.
// The world is closed if building fails.
func (s *Scene) NewWorld(opts ...bridge.Option) (*bridge.World, *Built, error) {
	g, err := vec2(s.Gravity, "gravity", marshal.Vec2{0, -10})
	if err != nil {
		return nil, nil, err
	}
	w := bridge.NewWorld(g[0], g[1], opts...)
	built, err := s.Build(w)
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	return w, built, nil
}

// Build creates the scene's bodies, fixtures and joints in w. Bodies are
// created in order, then joints; a gear joint may only name joints that
// precede it.
func (s *Scene) Build(w *bridge.World) (*Built, error) {
	b := &Built{
		Bodies:   make(map[string]handle.Handle, len(s.Bodies)),
		Fixtures: make(map[string][]handle.Handle, len(s.Bodies)),
		Joints:   make(map[string]handle.Handle, len(s.Joints)),
	}
	for i := range s.Bodies {
		if err := b.body(w, &s.Bodies[i], i); err != nil {
			return nil, err
		}
	}
	for i := range s.Joints {
		if err := b.joint(w, &s.Joints[i], i); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Built) body(w *bridge.World, sb *Body, i int) error {
	name := sb.Name
	if name == "" {
		name = fmt.Sprintf("body%d", i)
	}
	if _, dup := b.Bodies[name]; dup {
		return invalid("body", name, "duplicate body name")
	}
	typ := mapping.BodyDynamic
	if sb.Type != "" {
		typ = mapping.ParseBodyType(sb.Type)
		if typ == mapping.BodyUnknown {
			return invalid("body", name, fmt.Sprintf("unknown body type %q", sb.Type))
		}
	}
	pos, err := vec2(sb.Position, name+".position", marshal.Vec2{})
	if err != nil {
		return err
	}
	h, err := w.Bodies.New(typ, pos[0], pos[1], sb.Angle)
	if err != nil {
		return err
	}
	b.Bodies[name] = h

	if sb.Velocity != nil {
		v, err := vec2(sb.Velocity, name+".velocity", marshal.Vec2{})
		if err != nil {
			return err
		}
		if err := w.Bodies.SetLinearVelocity(h, v[0], v[1]); err != nil {
			return err
		}
	}

	for j := range sb.Fixtures {
		f, err := fixture(w, h, &sb.Fixtures[j], fmt.Sprintf("%s.fixtures[%d]", name, j))
		if err != nil {
			return err
		}
		b.Fixtures[name] = append(b.Fixtures[name], f)
	}
	return nil
}

func fixture(w *bridge.World, body handle.Handle, sf *Fixture, where string) (handle.Handle, error) {
	shape, err := newShape(w, &sf.Shape, where)
	if err != nil {
		return 0, err
	}
	f, err := w.Bodies.Attach(body, shape, sf.Density)
	if err != nil {
		_ = w.Shapes.Dispose(shape)
		return 0, err
	}
	if err := w.Fixtures.SetFriction(f, sf.Friction); err != nil {
		return 0, err
	}
	if err := w.Fixtures.SetRestitution(f, sf.Restitution); err != nil {
		return 0, err
	}
	if sf.Sensor {
		if err := w.Fixtures.SetSensor(f, true); err != nil {
			return 0, err
		}
	}
	if sf.Filter != nil {
		if err := w.Fixtures.SetFilterData(f, sf.Filter.Category, sf.Filter.Mask, sf.Filter.Group); err != nil {
			return 0, err
		}
	}
	return f, nil
}

// newShape returns a caller-owned shape. It is disposed on failure.
func newShape(w *bridge.World, ss *Shape, where string) (handle.Handle, error) {
	var (
		h   handle.Handle
		err error
	)
	switch ss.Type {
	case "circle":
		h, err = w.Circles.New()
		if err == nil {
			err = circle(w, h, ss, where)
		}
	case "edge":
		h, err = w.Edges.New()
		if err == nil {
			err = edge(w, h, ss, where)
		}
	case "chain", "loop":
		h, err = w.Chains.New()
		if err == nil {
			err = chain(w, h, ss, where)
		}
	case "polygon":
		h, err = w.Polygons.New()
		if err == nil {
			err = polygon(w, h, ss, where)
		}
	case "box":
		h, err = w.Polygons.New()
		if err == nil {
			err = box(w, h, ss, where)
		}
	default:
		return 0, invalid("shape", where, fmt.Sprintf("unknown shape type %q", ss.Type))
	}
	if err != nil {
		if h != 0 {
			_ = w.Shapes.Dispose(h)
		}
		return 0, err
	}
	return h, nil
}

func circle(w *bridge.World, h handle.Handle, ss *Shape, where string) error {
	c, err := vec2(ss.Center, where+".center", marshal.Vec2{})
	if err != nil {
		return err
	}
	if err := w.Shapes.SetRadius(h, ss.Radius); err != nil {
		return err
	}
	return w.Circles.SetPosition(h, c[0], c[1])
}

func edge(w *bridge.World, h handle.Handle, ss *Shape, where string) error {
	verts, n, err := flatten(ss.Vertices, where)
	if err != nil {
		return err
	}
	if n != 2 {
		return invalid("shape", where, fmt.Sprintf("edge needs 2 vertices, got %d", n))
	}
	return w.Edges.Set(h, verts[0], verts[1], verts[2], verts[3])
}

func chain(w *bridge.World, h handle.Handle, ss *Shape, where string) error {
	verts, n, err := flatten(ss.Vertices, where)
	if err != nil {
		return err
	}
	if ss.Type == "loop" {
		return w.Chains.CreateLoop(h, verts, n)
	}
	return w.Chains.CreateChain(h, verts, n)
}

func polygon(w *bridge.World, h handle.Handle, ss *Shape, where string) error {
	verts, n, err := flatten(ss.Vertices, where)
	if err != nil {
		return err
	}
	return w.Polygons.Set(h, verts, n)
}

func box(w *bridge.World, h handle.Handle, ss *Shape, where string) error {
	half, err := vec2(ss.HalfSize, where+".half_size", marshal.Vec2{})
	if err != nil {
		return err
	}
	if ss.Center == nil && ss.Angle == 0 {
		return w.Polygons.SetAsBox(h, half[0], half[1])
	}
	c, err := vec2(ss.Center, where+".center", marshal.Vec2{})
	if err != nil {
		return err
	}
	return w.Polygons.SetAsOrientedBox(h, half[0], half[1], c[0], c[1], ss.Angle)
}

func (b *Built) joint(w *bridge.World, sj *Joint, i int) error {
	name := sj.Name
	if name == "" {
		name = fmt.Sprintf("joint%d", i)
	}
	if _, dup := b.Joints[name]; dup {
		return invalid("joint", name, "duplicate joint name")
	}
	typ := mapping.ParseJointType(sj.Type)
	if typ == mapping.JointUnknown {
		return invalid("joint", name, fmt.Sprintf("unknown joint type %q", sj.Type))
	}
	def := bridge.JointDef{
		Type:             typ,
		Ratio:            sj.Ratio,
		MaxLength:        sj.MaxLength,
		MaxForce:         sj.MaxForce,
		CollideConnected: sj.CollideConnected,
	}
	var err error
	if def.BodyA, err = b.lookup(b.Bodies, "body", sj.BodyA, name); err != nil {
		return err
	}
	if def.BodyB, err = b.lookup(b.Bodies, "body", sj.BodyB, name); err != nil {
		return err
	}
	if typ == mapping.JointGear {
		if def.Joint1, err = b.lookup(b.Joints, "joint", sj.Joint1, name); err != nil {
			return err
		}
		if def.Joint2, err = b.lookup(b.Joints, "joint", sj.Joint2, name); err != nil {
			return err
		}
	}
	points := []struct {
		dst *marshal.Vec2
		src []float32
		key string
	}{
		{&def.AnchorA, sj.AnchorA, "anchor_a"},
		{&def.AnchorB, sj.AnchorB, "anchor_b"},
		{&def.GroundA, sj.GroundA, "ground_a"},
		{&def.GroundB, sj.GroundB, "ground_b"},
		{&def.Axis, sj.Axis, "axis"},
		{&def.Target, sj.Target, "target"},
	}
	for _, p := range points {
		if *p.dst, err = vec2(p.src, name+"."+p.key, marshal.Vec2{}); err != nil {
			return err
		}
	}

	h, err := w.CreateJoint(def)
	if err != nil {
		return err
	}
	b.Joints[name] = h
	if err := limits(w, typ, h, sj, name); err != nil {
		return err
	}
	return motor(w, typ, h, sj.Motor)
}

type limitJoints interface {
	EnableLimit(h handle.Handle, flag bool) error
	SetLimits(h handle.Handle, lower, upper float32) error
}

type motorJoints interface {
	EnableMotor(h handle.Handle, flag bool) error
	SetMotorSpeed(h handle.Handle, speed float32) error
}

func limits(w *bridge.World, typ mapping.JointType, h handle.Handle, sj *Joint, name string) error {
	if sj.Limits == nil {
		return nil
	}
	if len(sj.Limits) != 2 {
		return invalid("joint", name, "limits needs [lower, upper]")
	}
	var lj limitJoints
	switch typ {
	case mapping.JointRevolute:
		lj = w.Revolute
	case mapping.JointPrismatic:
		lj = w.Prismatic
	default:
		return invalid("joint", name, typ.String()+" joints have no limits")
	}
	if err := lj.SetLimits(h, sj.Limits[0], sj.Limits[1]); err != nil {
		return err
	}
	return lj.EnableLimit(h, true)
}

func motor(w *bridge.World, typ mapping.JointType, h handle.Handle, m *Motor) error {
	if m == nil {
		return nil
	}
	var (
		mj  motorJoints
		err error
	)
	switch typ {
	case mapping.JointRevolute:
		mj = w.Revolute
		err = w.Revolute.SetMaxMotorTorque(h, m.MaxTorque)
	case mapping.JointPrismatic:
		mj = w.Prismatic
		err = w.Prismatic.SetMaxMotorForce(h, m.MaxForce)
	case mapping.JointWheel:
		mj = w.Wheel
		err = w.Wheel.SetMaxMotorTorque(h, m.MaxTorque)
	default:
		return invalid("joint", typ.String(), typ.String()+" joints have no motor")
	}
	if err != nil {
		return err
	}
	if err := mj.SetMotorSpeed(h, m.Speed); err != nil {
		return err
	}
	return mj.EnableMotor(h, true)
}

func (b *Built) lookup(names map[string]handle.Handle, entity, key, joint string) (handle.Handle, error) {
	h, ok := names[key]
	if !ok {
		return 0, errors.New(errors.PhaseScene, errors.KindNotFound).
			Entity(entity).
			Op("build").
			Value(key).
			Detail("joint %s references unknown %s %q", joint, entity, key).
			Build()
	}
	return h, nil
}

func vec2(v []float32, where string, def marshal.Vec2) (marshal.Vec2, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 2:
		return marshal.Vec2{v[0], v[1]}, nil
	}
	return marshal.Vec2{}, invalid("vector", where, fmt.Sprintf("want 2 components, got %d", len(v)))
}

func flatten(points [][]float32, where string) ([]float32, int, error) {
	out := make([]float32, 0, 2*len(points))
	for i, p := range points {
		if len(p) != 2 {
			return nil, 0, invalid("vertex", fmt.Sprintf("%s.vertices[%d]", where, i), fmt.Sprintf("want 2 components, got %d", len(p)))
		}
		out = append(out, p[0], p[1])
	}
	return out, len(points), nil
}

func invalid(entity, where, detail string) error {
	return errors.New(errors.PhaseScene, errors.KindInvalidInput).
		Entity(entity).
		Op("build").
		Value(where).
		Detail("%s: %s", where, detail).
		Build()
}
