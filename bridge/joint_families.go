package bridge

import (
	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// Engine joint capabilities. Each family implements the subset that
// applies to it; a missing method surfaces as KindUnsupported.
type (
	anchorAGetter      interface{ GetAnchorA() box2d.B2Vec2 }
	anchorBGetter      interface{ GetAnchorB() box2d.B2Vec2 }
	reactionForcer     interface{ GetReactionForce(invDt float64) box2d.B2Vec2 }
	reactionTorquer    interface{ GetReactionTorque(invDt float64) float64 }
	localAnchorAGetter interface{ GetLocalAnchorA() box2d.B2Vec2 }
	localAnchorBGetter interface{ GetLocalAnchorB() box2d.B2Vec2 }
	localAxisAGetter   interface{ GetLocalAxisA() box2d.B2Vec2 }
	referenceAngler    interface{ GetReferenceAngle() float64 }
	translationGetter  interface{ GetJointTranslation() float64 }
	angleGetter        interface{ GetJointAngle() float64 }
	speedGetter        interface{ GetJointSpeed() float64 }
	linearSpeedGetter  interface{ GetJointLinearSpeed() float64 }

	lengther interface {
		GetLength() float64
		SetLength(length float64)
	}
	frequencier interface {
		GetFrequency() float64
		SetFrequency(hz float64)
	}
	dampinger interface {
		GetDampingRatio() float64
		SetDampingRatio(ratio float64)
	}
	maxForcer interface {
		GetMaxForce() float64
		SetMaxForce(force float64)
	}
	maxTorquer interface {
		GetMaxTorque() float64
		SetMaxTorque(torque float64)
	}
	ratioGetter interface{ GetRatio() float64 }
	ratioSetter interface{ SetRatio(ratio float64) }
	gearJoints  interface {
		GetJoint1() box2d.B2JointInterface
		GetJoint2() box2d.B2JointInterface
	}
	linearOffseter interface {
		GetLinearOffset() box2d.B2Vec2
		SetLinearOffset(offset box2d.B2Vec2)
	}
	angularOffseter interface {
		GetAngularOffset() float64
		SetAngularOffset(offset float64)
	}
	correctionFactorer interface {
		GetCorrectionFactor() float64
		SetCorrectionFactor(factor float64)
	}
	targeter interface {
		GetTarget() box2d.B2Vec2
		SetTarget(target box2d.B2Vec2)
	}
	limiter interface {
		IsLimitEnabled() bool
		EnableLimit(flag bool)
		GetLowerLimit() float64
		GetUpperLimit() float64
		SetLimits(lower, upper float64)
	}
	motor interface {
		IsMotorEnabled() bool
		EnableMotor(flag bool)
		GetMotorSpeed() float64
		SetMotorSpeed(speed float64)
	}
	motorForcer interface {
		GetMaxMotorForce() float64
		SetMaxMotorForce(force float64)
		GetMotorForce(invDt float64) float64
	}
	motorTorquer interface {
		GetMaxMotorTorque() float64
		SetMaxMotorTorque(torque float64)
		GetMotorTorque(invDt float64) float64
	}
	groundAnchors interface {
		GetGroundAnchorA() box2d.B2Vec2
		GetGroundAnchorB() box2d.B2Vec2
	}
	pulleyLengths interface {
		GetLengthA() float64
		GetLengthB() float64
	}
	maxLengther interface {
		GetMaxLength() float64
		SetMaxLength(length float64)
	}
	limitStater    interface{ GetLimitState() uint8 }
	springFrequency interface {
		GetSpringFrequencyHz() float64
		SetSpringFrequencyHz(hz float64)
	}
	springDamping interface {
		GetSpringDampingRatio() float64
		SetSpringDampingRatio(ratio float64)
	}
)

// Every capability a family façade reaches through jointAs.
var (
	_ anchorAGetter   = (*box2d.B2DistanceJoint)(nil)
	_ anchorBGetter   = (*box2d.B2DistanceJoint)(nil)
	_ reactionForcer  = (*box2d.B2DistanceJoint)(nil)
	_ reactionTorquer = (*box2d.B2DistanceJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2DistanceJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2DistanceJoint)(nil)
	_ lengther           = (*box2d.B2DistanceJoint)(nil)
	_ frequencier        = (*box2d.B2DistanceJoint)(nil)
	_ dampinger          = (*box2d.B2DistanceJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2FrictionJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2FrictionJoint)(nil)
	_ maxForcer          = (*box2d.B2FrictionJoint)(nil)
	_ maxTorquer         = (*box2d.B2FrictionJoint)(nil)

	_ gearJoints  = (*box2d.B2GearJoint)(nil)
	_ ratioGetter = (*box2d.B2GearJoint)(nil)
	_ ratioSetter = (*box2d.B2GearJoint)(nil)

	_ linearOffseter     = (*box2d.B2MotorJoint)(nil)
	_ angularOffseter    = (*box2d.B2MotorJoint)(nil)
	_ maxForcer          = (*box2d.B2MotorJoint)(nil)
	_ maxTorquer         = (*box2d.B2MotorJoint)(nil)
	_ correctionFactorer = (*box2d.B2MotorJoint)(nil)

	_ targeter    = (*box2d.B2MouseJoint)(nil)
	_ maxForcer   = (*box2d.B2MouseJoint)(nil)
	_ frequencier = (*box2d.B2MouseJoint)(nil)
	_ dampinger   = (*box2d.B2MouseJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2PrismaticJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2PrismaticJoint)(nil)
	_ localAxisAGetter   = (*box2d.B2PrismaticJoint)(nil)
	_ referenceAngler    = (*box2d.B2PrismaticJoint)(nil)
	_ translationGetter  = (*box2d.B2PrismaticJoint)(nil)
	_ speedGetter        = (*box2d.B2PrismaticJoint)(nil)
	_ limiter            = (*box2d.B2PrismaticJoint)(nil)
	_ motor              = (*box2d.B2PrismaticJoint)(nil)
	_ motorForcer        = (*box2d.B2PrismaticJoint)(nil)

	_ groundAnchors = (*box2d.B2PulleyJoint)(nil)
	_ pulleyLengths = (*box2d.B2PulleyJoint)(nil)
	_ ratioGetter   = (*box2d.B2PulleyJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2RevoluteJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2RevoluteJoint)(nil)
	_ referenceAngler    = (*box2d.B2RevoluteJoint)(nil)
	_ angleGetter        = (*box2d.B2RevoluteJoint)(nil)
	_ speedGetter        = (*box2d.B2RevoluteJoint)(nil)
	_ limiter            = (*box2d.B2RevoluteJoint)(nil)
	_ motor              = (*box2d.B2RevoluteJoint)(nil)
	_ motorTorquer       = (*box2d.B2RevoluteJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2RopeJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2RopeJoint)(nil)
	_ maxLengther        = (*box2d.B2RopeJoint)(nil)
	_ limitStater        = (*box2d.B2RopeJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2WeldJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2WeldJoint)(nil)
	_ referenceAngler    = (*box2d.B2WeldJoint)(nil)
	_ frequencier        = (*box2d.B2WeldJoint)(nil)
	_ dampinger          = (*box2d.B2WeldJoint)(nil)

	_ localAnchorAGetter = (*box2d.B2WheelJoint)(nil)
	_ localAnchorBGetter = (*box2d.B2WheelJoint)(nil)
	_ localAxisAGetter   = (*box2d.B2WheelJoint)(nil)
	_ translationGetter  = (*box2d.B2WheelJoint)(nil)
	_ linearSpeedGetter  = (*box2d.B2WheelJoint)(nil)
	_ motor              = (*box2d.B2WheelJoint)(nil)
	_ motorTorquer       = (*box2d.B2WheelJoint)(nil)
	_ springFrequency    = (*box2d.B2WheelJoint)(nil)
	_ springDamping      = (*box2d.B2WheelJoint)(nil)
)

// jointFamily binds the accessors shared by several families to one family.
type jointFamily struct {
	w      *World
	family mapping.JointType
}

func (f jointFamily) LocalAnchorA(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(f.w, h, f.family, "local-anchor-a", out, localAnchorAGetter.GetLocalAnchorA)
}

func (f jointFamily) LocalAnchorB(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(f.w, h, f.family, "local-anchor-b", out, localAnchorBGetter.GetLocalAnchorB)
}

func (f jointFamily) localAxisA(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(f.w, h, f.family, "local-axis-a", out, localAxisAGetter.GetLocalAxisA)
}

func (f jointFamily) referenceAngle(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "reference-angle", referenceAngler.GetReferenceAngle)
}

func (f jointFamily) jointTranslation(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "joint-translation", translationGetter.GetJointTranslation)
}

func (f jointFamily) jointSpeed(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "joint-speed", speedGetter.GetJointSpeed)
}

func (f jointFamily) frequency(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "frequency", frequencier.GetFrequency)
}

func (f jointFamily) setFrequency(h handle.Handle, hz float32) error {
	return setJointFloat(f.w, h, f.family, "set-frequency", hz, frequencier.SetFrequency)
}

func (f jointFamily) dampingRatio(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "damping-ratio", dampinger.GetDampingRatio)
}

func (f jointFamily) setDampingRatio(h handle.Handle, ratio float32) error {
	return setJointFloat(f.w, h, f.family, "set-damping-ratio", ratio, dampinger.SetDampingRatio)
}

func (f jointFamily) maxForce(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "max-force", maxForcer.GetMaxForce)
}

func (f jointFamily) setMaxForce(h handle.Handle, force float32) error {
	return setJointFloat(f.w, h, f.family, "set-max-force", force, maxForcer.SetMaxForce)
}

func (f jointFamily) maxTorque(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "max-torque", maxTorquer.GetMaxTorque)
}

func (f jointFamily) setMaxTorque(h handle.Handle, torque float32) error {
	return setJointFloat(f.w, h, f.family, "set-max-torque", torque, maxTorquer.SetMaxTorque)
}

func (f jointFamily) IsLimitEnabled(h handle.Handle) (bool, error) {
	return jointBool(f.w, h, f.family, "is-limit-enabled", limiter.IsLimitEnabled)
}

func (f jointFamily) EnableLimit(h handle.Handle, flag bool) error {
	return setJointBool(f.w, h, f.family, "enable-limit", flag, limiter.EnableLimit)
}

func (f jointFamily) LowerLimit(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "lower-limit", limiter.GetLowerLimit)
}

func (f jointFamily) UpperLimit(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "upper-limit", limiter.GetUpperLimit)
}

// SetLimits sets the lower and upper limits; lower must not exceed upper.
func (f jointFamily) SetLimits(h handle.Handle, lower, upper float32) error {
	j, err := jointAs[limiter](f.w, h, f.family, "set-limits")
	if err != nil {
		return err
	}
	return guard(errors.PhaseAccess, "set-limits", func() { j.SetLimits(float64(lower), float64(upper)) })
}

func (f jointFamily) IsMotorEnabled(h handle.Handle) (bool, error) {
	return jointBool(f.w, h, f.family, "is-motor-enabled", motor.IsMotorEnabled)
}

func (f jointFamily) EnableMotor(h handle.Handle, flag bool) error {
	return setJointBool(f.w, h, f.family, "enable-motor", flag, motor.EnableMotor)
}

func (f jointFamily) MotorSpeed(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "motor-speed", motor.GetMotorSpeed)
}

func (f jointFamily) SetMotorSpeed(h handle.Handle, speed float32) error {
	return setJointFloat(f.w, h, f.family, "set-motor-speed", speed, motor.SetMotorSpeed)
}

func (f jointFamily) maxMotorForce(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "max-motor-force", motorForcer.GetMaxMotorForce)
}

func (f jointFamily) setMaxMotorForce(h handle.Handle, force float32) error {
	return setJointFloat(f.w, h, f.family, "set-max-motor-force", force, motorForcer.SetMaxMotorForce)
}

func (f jointFamily) motorForce(h handle.Handle, invDt float32) (float32, error) {
	return jointFloatAt(f.w, h, f.family, "motor-force", invDt, motorForcer.GetMotorForce)
}

func (f jointFamily) maxMotorTorque(h handle.Handle) (float32, error) {
	return jointFloat(f.w, h, f.family, "max-motor-torque", motorTorquer.GetMaxMotorTorque)
}

func (f jointFamily) setMaxMotorTorque(h handle.Handle, torque float32) error {
	return setJointFloat(f.w, h, f.family, "set-max-motor-torque", torque, motorTorquer.SetMaxMotorTorque)
}

func (f jointFamily) motorTorque(h handle.Handle, invDt float32) (float32, error) {
	return jointFloatAt(f.w, h, f.family, "motor-torque", invDt, motorTorquer.GetMotorTorque)
}

// DistanceJoints accesses distance joints.
type DistanceJoints struct{ w *World }

func (d DistanceJoints) f() jointFamily { return jointFamily{d.w, mapping.JointDistance} }

func (d DistanceJoints) LocalAnchorA(h handle.Handle, out *marshal.Vec2) error {
	return d.f().LocalAnchorA(h, out)
}

func (d DistanceJoints) LocalAnchorB(h handle.Handle, out *marshal.Vec2) error {
	return d.f().LocalAnchorB(h, out)
}

func (d DistanceJoints) Length(h handle.Handle) (float32, error) {
	return jointFloat(d.w, h, mapping.JointDistance, "length", lengther.GetLength)
}

func (d DistanceJoints) SetLength(h handle.Handle, length float32) error {
	return setJointFloat(d.w, h, mapping.JointDistance, "set-length", length, lengther.SetLength)
}

func (d DistanceJoints) Frequency(h handle.Handle) (float32, error) { return d.f().frequency(h) }

func (d DistanceJoints) SetFrequency(h handle.Handle, hz float32) error {
	return d.f().setFrequency(h, hz)
}

func (d DistanceJoints) DampingRatio(h handle.Handle) (float32, error) { return d.f().dampingRatio(h) }

func (d DistanceJoints) SetDampingRatio(h handle.Handle, ratio float32) error {
	return d.f().setDampingRatio(h, ratio)
}

// FrictionJoints accesses friction joints.
type FrictionJoints struct{ w *World }

func (fj FrictionJoints) f() jointFamily { return jointFamily{fj.w, mapping.JointFriction} }

func (fj FrictionJoints) LocalAnchorA(h handle.Handle, out *marshal.Vec2) error {
	return fj.f().LocalAnchorA(h, out)
}

func (fj FrictionJoints) LocalAnchorB(h handle.Handle, out *marshal.Vec2) error {
	return fj.f().LocalAnchorB(h, out)
}

func (fj FrictionJoints) MaxForce(h handle.Handle) (float32, error) { return fj.f().maxForce(h) }

func (fj FrictionJoints) SetMaxForce(h handle.Handle, force float32) error {
	return fj.f().setMaxForce(h, force)
}

func (fj FrictionJoints) MaxTorque(h handle.Handle) (float32, error) { return fj.f().maxTorque(h) }

func (fj FrictionJoints) SetMaxTorque(h handle.Handle, torque float32) error {
	return fj.f().setMaxTorque(h, torque)
}

// GearJoints accesses gear joints.
type GearJoints struct{ w *World }

// Joint1 returns the first geared joint.
func (g GearJoints) Joint1(h handle.Handle) (handle.Handle, error) {
	j, err := jointAs[gearJoints](g.w, h, mapping.JointGear, "joint1")
	if err != nil {
		return 0, err
	}
	return g.w.refJoint(j.GetJoint1())
}

// Joint2 returns the second geared joint.
func (g GearJoints) Joint2(h handle.Handle) (handle.Handle, error) {
	j, err := jointAs[gearJoints](g.w, h, mapping.JointGear, "joint2")
	if err != nil {
		return 0, err
	}
	return g.w.refJoint(j.GetJoint2())
}

func (g GearJoints) Ratio(h handle.Handle) (float32, error) {
	return jointFloat(g.w, h, mapping.JointGear, "ratio", ratioGetter.GetRatio)
}

func (g GearJoints) SetRatio(h handle.Handle, ratio float32) error {
	return setJointFloat(g.w, h, mapping.JointGear, "set-ratio", ratio, ratioSetter.SetRatio)
}

// MotorJoints accesses motor joints.
type MotorJoints struct{ w *World }

func (m MotorJoints) f() jointFamily { return jointFamily{m.w, mapping.JointMotor} }

func (m MotorJoints) LinearOffset(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(m.w, h, mapping.JointMotor, "linear-offset", out, linearOffseter.GetLinearOffset)
}

func (m MotorJoints) SetLinearOffset(h handle.Handle, x, y float32) error {
	return setJointVec(m.w, h, mapping.JointMotor, "set-linear-offset", x, y, linearOffseter.SetLinearOffset)
}

func (m MotorJoints) AngularOffset(h handle.Handle) (float32, error) {
	return jointFloat(m.w, h, mapping.JointMotor, "angular-offset", angularOffseter.GetAngularOffset)
}

func (m MotorJoints) SetAngularOffset(h handle.Handle, offset float32) error {
	return setJointFloat(m.w, h, mapping.JointMotor, "set-angular-offset", offset, angularOffseter.SetAngularOffset)
}

func (m MotorJoints) MaxForce(h handle.Handle) (float32, error) { return m.f().maxForce(h) }

func (m MotorJoints) SetMaxForce(h handle.Handle, force float32) error {
	return m.f().setMaxForce(h, force)
}

func (m MotorJoints) MaxTorque(h handle.Handle) (float32, error) { return m.f().maxTorque(h) }

func (m MotorJoints) SetMaxTorque(h handle.Handle, torque float32) error {
	return m.f().setMaxTorque(h, torque)
}

func (m MotorJoints) CorrectionFactor(h handle.Handle) (float32, error) {
	return jointFloat(m.w, h, mapping.JointMotor, "correction-factor", correctionFactorer.GetCorrectionFactor)
}

func (m MotorJoints) SetCorrectionFactor(h handle.Handle, factor float32) error {
	return setJointFloat(m.w, h, mapping.JointMotor, "set-correction-factor", factor, correctionFactorer.SetCorrectionFactor)
}

// MouseJoints accesses mouse joints.
type MouseJoints struct{ w *World }

func (m MouseJoints) f() jointFamily { return jointFamily{m.w, mapping.JointMouse} }

func (m MouseJoints) Target(h handle.Handle, out *marshal.Vec2) error {
	return jointVec(m.w, h, mapping.JointMouse, "target", out, targeter.GetTarget)
}

func (m MouseJoints) SetTarget(h handle.Handle, x, y float32) error {
	return setJointVec(m.w, h, mapping.JointMouse, "set-target", x, y, targeter.SetTarget)
}

func (m MouseJoints) MaxForce(h handle.Handle) (float32, error) { return m.f().maxForce(h) }

func (m MouseJoints) SetMaxForce(h handle.Handle, force float32) error {
	return m.f().setMaxForce(h, force)
}

func (m MouseJoints) Frequency(h handle.Handle) (float32, error) { return m.f().frequency(h) }

func (m MouseJoints) SetFrequency(h handle.Handle, hz float32) error {
	return m.f().setFrequency(h, hz)
}

func (m MouseJoints) DampingRatio(h handle.Handle) (float32, error) { return m.f().dampingRatio(h) }

func (m MouseJoints) SetDampingRatio(h handle.Handle, ratio float32) error {
	return m.f().setDampingRatio(h, ratio)
}

// PrismaticJoints accesses prismatic joints. Limit and motor accessors
// are promoted from the family binding.
type PrismaticJoints struct{ jointFamily }

func (p PrismaticJoints) LocalAxisA(h handle.Handle, out *marshal.Vec2) error {
	return p.localAxisA(h, out)
}

func (p PrismaticJoints) ReferenceAngle(h handle.Handle) (float32, error) {
	return p.referenceAngle(h)
}

func (p PrismaticJoints) JointTranslation(h handle.Handle) (float32, error) {
	return p.jointTranslation(h)
}

func (p PrismaticJoints) JointSpeed(h handle.Handle) (float32, error) { return p.jointSpeed(h) }

func (p PrismaticJoints) MaxMotorForce(h handle.Handle) (float32, error) {
	return p.maxMotorForce(h)
}

func (p PrismaticJoints) SetMaxMotorForce(h handle.Handle, force float32) error {
	return p.setMaxMotorForce(h, force)
}

// MotorForce returns the current motor force given the inverse time step.
func (p PrismaticJoints) MotorForce(h handle.Handle, invDt float32) (float32, error) {
	return p.motorForce(h, invDt)
}

// PulleyJoints accesses pulley joints.
type PulleyJoints struct{ w *World }

func (p PulleyJoints) GroundAnchorA(h handle.Handle, out *marshal.Vec2) error {
	j, err := jointAs[groundAnchors](p.w, h, mapping.JointPulley, "ground-anchor-a")
	if err != nil {
		return err
	}
	putVec(out, j.GetGroundAnchorA())
	return nil
}

func (p PulleyJoints) GroundAnchorB(h handle.Handle, out *marshal.Vec2) error {
	j, err := jointAs[groundAnchors](p.w, h, mapping.JointPulley, "ground-anchor-b")
	if err != nil {
		return err
	}
	putVec(out, j.GetGroundAnchorB())
	return nil
}

func (p PulleyJoints) LengthA(h handle.Handle) (float32, error) {
	return jointFloat(p.w, h, mapping.JointPulley, "length-a", pulleyLengths.GetLengthA)
}

func (p PulleyJoints) LengthB(h handle.Handle) (float32, error) {
	return jointFloat(p.w, h, mapping.JointPulley, "length-b", pulleyLengths.GetLengthB)
}

func (p PulleyJoints) Ratio(h handle.Handle) (float32, error) {
	return jointFloat(p.w, h, mapping.JointPulley, "ratio", ratioGetter.GetRatio)
}

// RevoluteJoints accesses revolute joints. Limit and motor accessors are
// promoted from the family binding.
type RevoluteJoints struct{ jointFamily }

func (r RevoluteJoints) ReferenceAngle(h handle.Handle) (float32, error) {
	return r.referenceAngle(h)
}

func (r RevoluteJoints) JointAngle(h handle.Handle) (float32, error) {
	return jointFloat(r.w, h, mapping.JointRevolute, "joint-angle", angleGetter.GetJointAngle)
}

func (r RevoluteJoints) JointSpeed(h handle.Handle) (float32, error) { return r.jointSpeed(h) }

func (r RevoluteJoints) MaxMotorTorque(h handle.Handle) (float32, error) {
	return r.maxMotorTorque(h)
}

func (r RevoluteJoints) SetMaxMotorTorque(h handle.Handle, torque float32) error {
	return r.setMaxMotorTorque(h, torque)
}

// MotorTorque returns the current motor torque given the inverse time step.
func (r RevoluteJoints) MotorTorque(h handle.Handle, invDt float32) (float32, error) {
	return r.motorTorque(h, invDt)
}

// RopeJoints accesses rope joints.
type RopeJoints struct{ w *World }

func (r RopeJoints) f() jointFamily { return jointFamily{r.w, mapping.JointRope} }

func (r RopeJoints) LocalAnchorA(h handle.Handle, out *marshal.Vec2) error {
	return r.f().LocalAnchorA(h, out)
}

func (r RopeJoints) LocalAnchorB(h handle.Handle, out *marshal.Vec2) error {
	return r.f().LocalAnchorB(h, out)
}

func (r RopeJoints) MaxLength(h handle.Handle) (float32, error) {
	return jointFloat(r.w, h, mapping.JointRope, "max-length", maxLengther.GetMaxLength)
}

func (r RopeJoints) SetMaxLength(h handle.Handle, length float32) error {
	return setJointFloat(r.w, h, mapping.JointRope, "set-max-length", length, maxLengther.SetMaxLength)
}

// LimitState returns the rope's limit state, or mapping.LimitUnknown.
func (r RopeJoints) LimitState(h handle.Handle) (mapping.LimitState, error) {
	j, err := jointAs[limitStater](r.w, h, mapping.JointRope, "limit-state")
	if err != nil {
		return mapping.LimitUnknown, err
	}
	return mapping.LimitStateFromEngine(j.GetLimitState()), nil
}

// WeldJoints accesses weld joints.
type WeldJoints struct{ w *World }

func (wj WeldJoints) f() jointFamily { return jointFamily{wj.w, mapping.JointWeld} }

func (wj WeldJoints) LocalAnchorA(h handle.Handle, out *marshal.Vec2) error {
	return wj.f().LocalAnchorA(h, out)
}

func (wj WeldJoints) LocalAnchorB(h handle.Handle, out *marshal.Vec2) error {
	return wj.f().LocalAnchorB(h, out)
}

func (wj WeldJoints) ReferenceAngle(h handle.Handle) (float32, error) {
	return wj.f().referenceAngle(h)
}

func (wj WeldJoints) Frequency(h handle.Handle) (float32, error) { return wj.f().frequency(h) }

func (wj WeldJoints) SetFrequency(h handle.Handle, hz float32) error {
	return wj.f().setFrequency(h, hz)
}

func (wj WeldJoints) DampingRatio(h handle.Handle) (float32, error) {
	return wj.f().dampingRatio(h)
}

func (wj WeldJoints) SetDampingRatio(h handle.Handle, ratio float32) error {
	return wj.f().setDampingRatio(h, ratio)
}

// WheelJoints accesses wheel joints. The wheel has a motor but no limit.
type WheelJoints struct{ w *World }

func (wh WheelJoints) f() jointFamily { return jointFamily{wh.w, mapping.JointWheel} }

func (wh WheelJoints) LocalAnchorA(h handle.Handle, out *marshal.Vec2) error {
	return wh.f().LocalAnchorA(h, out)
}

func (wh WheelJoints) LocalAnchorB(h handle.Handle, out *marshal.Vec2) error {
	return wh.f().LocalAnchorB(h, out)
}

func (wh WheelJoints) LocalAxisA(h handle.Handle, out *marshal.Vec2) error {
	return wh.f().localAxisA(h, out)
}

func (wh WheelJoints) JointTranslation(h handle.Handle) (float32, error) {
	return wh.f().jointTranslation(h)
}

// JointSpeed returns the linear speed along the wheel axis.
func (wh WheelJoints) JointSpeed(h handle.Handle) (float32, error) {
	return jointFloat(wh.w, h, mapping.JointWheel, "joint-speed", linearSpeedGetter.GetJointLinearSpeed)
}

func (wh WheelJoints) IsMotorEnabled(h handle.Handle) (bool, error) {
	return wh.f().IsMotorEnabled(h)
}

func (wh WheelJoints) EnableMotor(h handle.Handle, flag bool) error {
	return wh.f().EnableMotor(h, flag)
}

func (wh WheelJoints) MotorSpeed(h handle.Handle) (float32, error) { return wh.f().MotorSpeed(h) }

func (wh WheelJoints) SetMotorSpeed(h handle.Handle, speed float32) error {
	return wh.f().SetMotorSpeed(h, speed)
}

func (wh WheelJoints) MaxMotorTorque(h handle.Handle) (float32, error) {
	return wh.f().maxMotorTorque(h)
}

func (wh WheelJoints) SetMaxMotorTorque(h handle.Handle, torque float32) error {
	return wh.f().setMaxMotorTorque(h, torque)
}

func (wh WheelJoints) MotorTorque(h handle.Handle, invDt float32) (float32, error) {
	return wh.f().motorTorque(h, invDt)
}

func (wh WheelJoints) SpringFrequency(h handle.Handle) (float32, error) {
	return jointFloat(wh.w, h, mapping.JointWheel, "spring-frequency", springFrequency.GetSpringFrequencyHz)
}

func (wh WheelJoints) SetSpringFrequency(h handle.Handle, hz float32) error {
	return setJointFloat(wh.w, h, mapping.JointWheel, "set-spring-frequency", hz, springFrequency.SetSpringFrequencyHz)
}

func (wh WheelJoints) SpringDampingRatio(h handle.Handle) (float32, error) {
	return jointFloat(wh.w, h, mapping.JointWheel, "spring-damping-ratio", springDamping.GetSpringDampingRatio)
}

func (wh WheelJoints) SetSpringDampingRatio(h handle.Handle, ratio float32) error {
	return setJointFloat(wh.w, h, mapping.JointWheel, "set-spring-damping-ratio", ratio, springDamping.SetSpringDampingRatio)
}
