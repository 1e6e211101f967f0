package bridge

import (
	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// JointDef describes a joint for World.CreateJoint.
//
// Anchors are world points, except for rope joints whose anchors are local
// to each body. Fields a family does not use are ignored. Family parameters
// not listed here (limits, motors, springs) are set after creation through
// the family accessors.
type JointDef struct {
	Type             mapping.JointType
	BodyA, BodyB     handle.Handle
	AnchorA, AnchorB marshal.Vec2
	GroundA, GroundB marshal.Vec2 // pulley
	Axis             marshal.Vec2 // prismatic, wheel
	Target           marshal.Vec2 // mouse
	Joint1, Joint2   handle.Handle
	Ratio            float32 // pulley, gear
	MaxLength        float32 // rope
	MaxForce         float32 // mouse
	CollideConnected bool
}

func v2(v marshal.Vec2) box2d.B2Vec2 {
	return vec(v[0], v[1])
}

// CreateJoint creates a joint between two bodies of this world.
func (w *World) CreateJoint(def JointDef) (handle.Handle, error) {
	if err := w.unlocked("create-joint"); err != nil {
		return 0, err
	}
	a, err := handle.Get[*box2d.B2Body](w.handles, def.BodyA, handle.KindBody)
	if err != nil {
		return 0, err
	}
	b, err := handle.Get[*box2d.B2Body](w.handles, def.BodyB, handle.KindBody)
	if err != nil {
		return 0, err
	}
	if a == b {
		return 0, errors.New(errors.PhaseWorld, errors.KindInvalidInput).
			Entity(def.Type.String() + " joint").
			Op("create").
			Detail("a joint needs two distinct bodies").
			Build()
	}

	var ed box2d.B2JointDefInterface
	switch def.Type {
	case mapping.JointRevolute:
		d := box2d.MakeB2RevoluteJointDef()
		d.Initialize(a, b, v2(def.AnchorA))
		ed = &d
	case mapping.JointPrismatic:
		d := box2d.MakeB2PrismaticJointDef()
		d.Initialize(a, b, v2(def.AnchorA), v2(def.Axis))
		ed = &d
	case mapping.JointDistance:
		d := box2d.MakeB2DistanceJointDef()
		d.Initialize(a, b, v2(def.AnchorA), v2(def.AnchorB))
		ed = &d
	case mapping.JointPulley:
		d := box2d.MakeB2PulleyJointDef()
		if err := guard(errors.PhaseWorld, "create-joint", func() {
			d.Initialize(a, b, v2(def.GroundA), v2(def.GroundB), v2(def.AnchorA), v2(def.AnchorB), float64(def.Ratio))
		}); err != nil {
			return 0, err
		}
		ed = &d
	case mapping.JointMouse:
		d := box2d.MakeB2MouseJointDef()
		d.Target = v2(def.Target)
		d.MaxForce = float64(def.MaxForce)
		ed = &d
	case mapping.JointGear:
		j1, err := handle.Get[box2d.B2JointInterface](w.handles, def.Joint1, handle.KindJoint)
		if err != nil {
			return 0, err
		}
		j2, err := handle.Get[box2d.B2JointInterface](w.handles, def.Joint2, handle.KindJoint)
		if err != nil {
			return 0, err
		}
		d := box2d.MakeB2GearJointDef()
		d.Joint1 = j1
		d.Joint2 = j2
		d.Ratio = float64(def.Ratio)
		ed = &d
	case mapping.JointWheel:
		d := box2d.MakeB2WheelJointDef()
		d.Initialize(a, b, v2(def.AnchorA), v2(def.Axis))
		ed = &d
	case mapping.JointWeld:
		d := box2d.MakeB2WeldJointDef()
		d.Initialize(a, b, v2(def.AnchorA))
		ed = &d
	case mapping.JointFriction:
		d := box2d.MakeB2FrictionJointDef()
		d.Initialize(a, b, v2(def.AnchorA))
		ed = &d
	case mapping.JointRope:
		d := box2d.MakeB2RopeJointDef()
		d.LocalAnchorA = v2(def.AnchorA)
		d.LocalAnchorB = v2(def.AnchorB)
		d.MaxLength = float64(def.MaxLength)
		ed = &d
	case mapping.JointMotor:
		d := box2d.MakeB2MotorJointDef()
		d.Initialize(a, b)
		ed = &d
	default:
		return 0, errors.New(errors.PhaseWorld, errors.KindInvalidInput).
			Entity("joint").
			Op("create").
			Value(def.Type).
			Detail("unknown joint type %d", int32(def.Type)).
			Build()
	}
	ed.SetBodyA(a)
	ed.SetBodyB(b)
	ed.SetCollideConnected(def.CollideConnected)

	var j box2d.B2JointInterface
	if err := guard(errors.PhaseWorld, "create-joint", func() {
		j = w.engine.CreateJoint(ed)
	}); err != nil {
		return 0, err
	}
	return w.refJoint(j)
}

// Joints holds the accessors shared by every joint family.
type Joints struct{ w *World }

func (jt Joints) joint(h handle.Handle) (box2d.B2JointInterface, error) {
	return handle.Get[box2d.B2JointInterface](jt.w.handles, h, handle.KindJoint)
}

// Type returns the joint family, or mapping.JointUnknown.
func (jt Joints) Type(h handle.Handle) (mapping.JointType, error) {
	j, err := jt.joint(h)
	if err != nil {
		return mapping.JointUnknown, err
	}
	return mapping.JointTypeFromEngine(j.GetType()), nil
}

func (jt Joints) BodyA(h handle.Handle) (handle.Handle, error) {
	j, err := jt.joint(h)
	if err != nil {
		return 0, err
	}
	return jt.w.refBody(j.GetBodyA())
}

func (jt Joints) BodyB(h handle.Handle) (handle.Handle, error) {
	j, err := jt.joint(h)
	if err != nil {
		return 0, err
	}
	return jt.w.refBody(j.GetBodyB())
}

// AnchorA writes the anchor on body A in world coordinates.
func (jt Joints) AnchorA(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(jt.w, h, mapping.JointUnknown, "anchor-a", out, anchorAGetter.GetAnchorA)
}

// AnchorB writes the anchor on body B in world coordinates.
func (jt Joints) AnchorB(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(jt.w, h, mapping.JointUnknown, "anchor-b", out, anchorBGetter.GetAnchorB)
}

// ReactionForce writes the reaction force on body B at the anchor.
func (jt Joints) ReactionForce(h handle.Handle, invDt float32, out *marshal.Vec2) error {
	j, err := jointAs[reactionForcer](jt.w, h, mapping.JointUnknown, "reaction-force")
	if err != nil {
		return err
	}
	putVec(out, j.GetReactionForce(float64(invDt)))
	return nil
}

// ReactionTorque returns the reaction torque on body B.
func (jt Joints) ReactionTorque(h handle.Handle, invDt float32) (float32, error) {
	return jointFloatAt(jt.w, h, mapping.JointUnknown, "reaction-torque", invDt, reactionTorquer.GetReactionTorque)
}

// IsActive reports whether both bodies are active.
func (jt Joints) IsActive(h handle.Handle) (bool, error) {
	j, err := jt.joint(h)
	if err != nil {
		return false, err
	}
	return j.IsActive(), nil
}

func (jt Joints) CollideConnected(h handle.Handle) (bool, error) {
	j, err := jt.joint(h)
	if err != nil {
		return false, err
	}
	return j.IsCollideConnected(), nil
}

// Destroy removes the joint from the world.
func (jt Joints) Destroy(h handle.Handle) error {
	if err := jt.w.unlocked("destroy-joint"); err != nil {
		return err
	}
	j, err := jt.joint(h)
	if err != nil {
		return err
	}
	err = guard(errors.PhaseWorld, "destroy-joint", func() {
		jt.w.engine.DestroyJoint(j)
	})
	jt.w.handles.Forget(j)
	return err
}

// jointAs resolves a joint handle, checks its family and asserts the engine
// capability T. JointUnknown skips the family check.
func jointAs[T any](w *World, h handle.Handle, family mapping.JointType, op string) (T, error) {
	var zero T
	j, err := handle.Get[box2d.B2JointInterface](w.handles, h, handle.KindJoint)
	if err != nil {
		return zero, err
	}
	entity := "joint"
	if family != mapping.JointUnknown {
		entity = family.String() + " joint"
		if got := mapping.JointTypeFromEngine(j.GetType()); got != family {
			return zero, errors.WrongKind(errors.PhaseAccess, entity, got.String()+" joint", uint64(h))
		}
	}
	t, ok := j.(T)
	if !ok {
		return zero, errors.Unsupported(errors.PhaseAccess, entity, op)
	}
	return t, nil
}

func jointFloat[T any](w *World, h handle.Handle, family mapping.JointType, op string, get func(T) float64) (float32, error) {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return 0, err
	}
	return float32(get(j)), nil
}

func jointFloatAt[T any](w *World, h handle.Handle, family mapping.JointType, op string, invDt float32, get func(T, float64) float64) (float32, error) {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return 0, err
	}
	return float32(get(j, float64(invDt))), nil
}

func setJointFloat[T any](w *World, h handle.Handle, family mapping.JointType, op string, v float32, set func(T, float64)) error {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return err
	}
	return guard(errors.PhaseAccess, op, func() { set(j, float64(v)) })
}

func jointVec[T any](w *World, h handle.Handle, family mapping.JointType, op string, out *marshal.Vec2, get func(T) box2d.B2Vec2) error {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return err
	}
	putVec(out, get(j))
	return nil
}

func setJointVec[T any](w *World, h handle.Handle, family mapping.JointType, op string, x, y float32, set func(T, box2d.B2Vec2)) error {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return err
	}
	return guard(errors.PhaseAccess, op, func() { set(j, vec(x, y)) })
}

func jointBool[T any](w *World, h handle.Handle, family mapping.JointType, op string, get func(T) bool) (bool, error) {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return false, err
	}
	return get(j), nil
}

func setJointBool[T any](w *World, h handle.Handle, family mapping.JointType, op string, v bool, set func(T, bool)) error {
	j, err := jointAs[T](w, h, family, op)
	if err != nil {
		return err
	}
	set(j, v)
	return nil
}
