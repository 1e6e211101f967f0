package bridge

import (
	"testing"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

type floatField struct {
	name string
	set  func(handle.Handle, float32) error // nil for read-only fields
	get  func(handle.Handle) (float32, error)
	v    float32
}

type vecField struct {
	name string
	set  func(handle.Handle, float32, float32) error
	get  func(handle.Handle, *marshal.Vec2) error
	v    marshal.Vec2
}

type boolField struct {
	name string
	set  func(handle.Handle, bool) error
	get  func(handle.Handle) (bool, error)
}

type limitFamily interface {
	IsLimitEnabled(handle.Handle) (bool, error)
	EnableLimit(handle.Handle, bool) error
	LowerLimit(handle.Handle) (float32, error)
	UpperLimit(handle.Handle) (float32, error)
	SetLimits(handle.Handle, float32, float32) error
}

var (
	_ limitFamily = PrismaticJoints{}
	_ limitFamily = RevoluteJoints{}
)

func revolute(t *testing.T, w *World, a, b handle.Handle, x, y float32) handle.Handle {
	t.Helper()
	j, err := w.CreateJoint(JointDef{Type: mapping.JointRevolute, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{x, y}})
	if err != nil {
		t.Fatalf("CreateJoint(revolute): %v", err)
	}
	return j
}

func TestJointFamilies_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		def    func(t *testing.T, w *World, a, b handle.Handle) JointDef
		floats func(w *World) []floatField
		vecs   func(w *World) []vecField
		bools  func(w *World) []boolField
	}{
		{
			name: "distance",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointDistance, BodyA: a, BodyB: b, AnchorB: marshal.Vec2{2, 0}}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"length", w.Distance.SetLength, w.Distance.Length, 3.5},
					{"frequency", w.Distance.SetFrequency, w.Distance.Frequency, 4},
					{"damping ratio", w.Distance.SetDampingRatio, w.Distance.DampingRatio, 0.25},
				}
			},
		},
		{
			name: "friction",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointFriction, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{1, 0}}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"max force", w.Friction.SetMaxForce, w.Friction.MaxForce, 12},
					{"max torque", w.Friction.SetMaxTorque, w.Friction.MaxTorque, 6.5},
				}
			},
		},
		{
			name: "gear",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				c, _ := addCircle(t, w, mapping.BodyDynamic, -2, 0, 0.5)
				j1 := revolute(t, w, a, b, 2, 0)
				j2 := revolute(t, w, a, c, -2, 0)
				return JointDef{Type: mapping.JointGear, BodyA: b, BodyB: c, Joint1: j1, Joint2: j2, Ratio: 1}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"ratio", w.Gear.SetRatio, w.Gear.Ratio, 2.5},
				}
			},
		},
		{
			name: "motor",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointMotor, BodyA: a, BodyB: b}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"angular offset", w.Motor.SetAngularOffset, w.Motor.AngularOffset, 0.75},
					{"max force", w.Motor.SetMaxForce, w.Motor.MaxForce, 20},
					{"max torque", w.Motor.SetMaxTorque, w.Motor.MaxTorque, 10},
					{"correction factor", w.Motor.SetCorrectionFactor, w.Motor.CorrectionFactor, 0.5},
				}
			},
			vecs: func(w *World) []vecField {
				return []vecField{
					{"linear offset", w.Motor.SetLinearOffset, w.Motor.LinearOffset, marshal.Vec2{1.5, -0.5}},
				}
			},
		},
		{
			name: "mouse",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointMouse, BodyA: a, BodyB: b, Target: marshal.Vec2{2, 0}, MaxForce: 100}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"max force", w.Mouse.SetMaxForce, w.Mouse.MaxForce, 50},
					{"frequency", w.Mouse.SetFrequency, w.Mouse.Frequency, 3},
					{"damping ratio", w.Mouse.SetDampingRatio, w.Mouse.DampingRatio, 0.5},
				}
			},
			vecs: func(w *World) []vecField {
				return []vecField{
					{"target", w.Mouse.SetTarget, w.Mouse.Target, marshal.Vec2{2.5, 1}},
				}
			},
		},
		{
			name: "prismatic",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointPrismatic, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{2, 0}, Axis: marshal.Vec2{1, 0}}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"max motor force", w.Prismatic.SetMaxMotorForce, w.Prismatic.MaxMotorForce, 40},
					{"motor speed", w.Prismatic.SetMotorSpeed, w.Prismatic.MotorSpeed, 1.5},
				}
			},
			bools: func(w *World) []boolField {
				return []boolField{
					{"limit", w.Prismatic.EnableLimit, w.Prismatic.IsLimitEnabled},
					{"motor", w.Prismatic.EnableMotor, w.Prismatic.IsMotorEnabled},
				}
			},
		},
		{
			name: "pulley",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{
					Type: mapping.JointPulley, BodyA: a, BodyB: b,
					GroundA: marshal.Vec2{0, 5}, GroundB: marshal.Vec2{2, 5},
					AnchorA: marshal.Vec2{0, 0}, AnchorB: marshal.Vec2{2, 0},
					Ratio: 1.5,
				}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"ratio", nil, w.Pulley.Ratio, 1.5},
					{"length a", nil, w.Pulley.LengthA, 5},
					{"length b", nil, w.Pulley.LengthB, 5},
				}
			},
		},
		{
			name: "revolute",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointRevolute, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{1, 0}}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"max motor torque", w.Revolute.SetMaxMotorTorque, w.Revolute.MaxMotorTorque, 30},
					{"motor speed", w.Revolute.SetMotorSpeed, w.Revolute.MotorSpeed, -2},
				}
			},
			bools: func(w *World) []boolField {
				return []boolField{
					{"limit", w.Revolute.EnableLimit, w.Revolute.IsLimitEnabled},
					{"motor", w.Revolute.EnableMotor, w.Revolute.IsMotorEnabled},
				}
			},
		},
		{
			name: "rope",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointRope, BodyA: a, BodyB: b, MaxLength: 3}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"max length", w.Rope.SetMaxLength, w.Rope.MaxLength, 4},
				}
			},
		},
		{
			name: "weld",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointWeld, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{1, 0}}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"frequency", w.Weld.SetFrequency, w.Weld.Frequency, 5},
					{"damping ratio", w.Weld.SetDampingRatio, w.Weld.DampingRatio, 0.125},
				}
			},
		},
		{
			name: "wheel",
			def: func(t *testing.T, w *World, a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointWheel, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{2, 0}, Axis: marshal.Vec2{0, 1}}
			},
			floats: func(w *World) []floatField {
				return []floatField{
					{"max motor torque", w.Wheel.SetMaxMotorTorque, w.Wheel.MaxMotorTorque, 8},
					{"motor speed", w.Wheel.SetMotorSpeed, w.Wheel.MotorSpeed, 3},
					{"spring frequency", w.Wheel.SetSpringFrequency, w.Wheel.SpringFrequency, 6},
					{"spring damping ratio", w.Wheel.SetSpringDampingRatio, w.Wheel.SpringDampingRatio, 0.375},
				}
			},
			bools: func(w *World) []boolField {
				return []boolField{
					{"motor", w.Wheel.EnableMotor, w.Wheel.IsMotorEnabled},
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			a, b := jointPair(t, w)
			j, err := w.CreateJoint(tt.def(t, w, a, b))
			if err != nil {
				t.Fatalf("CreateJoint: %v", err)
			}

			if tt.floats != nil {
				for _, f := range tt.floats(w) {
					if f.set != nil {
						if err := f.set(j, f.v); err != nil {
							t.Errorf("set %s: %v", f.name, err)
							continue
						}
					}
					got, err := f.get(j)
					if err != nil {
						t.Errorf("get %s: %v", f.name, err)
						continue
					}
					if got != f.v {
						t.Errorf("%s = %v, want %v", f.name, got, f.v)
					}
				}
			}
			if tt.vecs != nil {
				for _, f := range tt.vecs(w) {
					if err := f.set(j, f.v[0], f.v[1]); err != nil {
						t.Errorf("set %s: %v", f.name, err)
						continue
					}
					var got marshal.Vec2
					if err := f.get(j, &got); err != nil {
						t.Errorf("get %s: %v", f.name, err)
						continue
					}
					if got != f.v {
						t.Errorf("%s = %v, want %v", f.name, got, f.v)
					}
				}
			}
			if tt.bools != nil {
				for _, f := range tt.bools(w) {
					for _, want := range []bool{true, false} {
						if err := f.set(j, want); err != nil {
							t.Errorf("enable %s(%v): %v", f.name, want, err)
							continue
						}
						got, err := f.get(j)
						if err != nil {
							t.Errorf("is %s enabled: %v", f.name, err)
							continue
						}
						if got != want {
							t.Errorf("%s enabled = %v, want %v", f.name, got, want)
						}
					}
				}
			}

			if err := w.Step(1.0/60, 8, 3); err != nil {
				t.Fatalf("Step: %v", err)
			}
		})
	}
}

func TestJointFamilies_Limits(t *testing.T) {
	tests := []struct {
		name   string
		def    func(a, b handle.Handle) JointDef
		family func(w *World) limitFamily
	}{
		{
			name: "revolute",
			def: func(a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointRevolute, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{1, 0}}
			},
			family: func(w *World) limitFamily { return w.Revolute },
		},
		{
			name: "prismatic",
			def: func(a, b handle.Handle) JointDef {
				return JointDef{Type: mapping.JointPrismatic, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{2, 0}, Axis: marshal.Vec2{1, 0}}
			},
			family: func(w *World) limitFamily { return w.Prismatic },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			a, b := jointPair(t, w)
			j, err := w.CreateJoint(tt.def(a, b))
			if err != nil {
				t.Fatalf("CreateJoint: %v", err)
			}
			f := tt.family(w)

			if err := f.SetLimits(j, -0.5, 0.75); err != nil {
				t.Fatalf("SetLimits: %v", err)
			}
			lower, _ := f.LowerLimit(j)
			upper, _ := f.UpperLimit(j)
			if lower != -0.5 || upper != 0.75 {
				t.Errorf("limits = [%v, %v], want [-0.5, 0.75]", lower, upper)
			}

			err = f.SetLimits(j, 1, -1)
			if !errors.IsKind(err, errors.KindInvalidData) {
				t.Fatalf("inverted limits: got %v, want invalid_data", err)
			}
			if e, ok := err.(*errors.Error); !ok || e.Phase != errors.PhaseAccess {
				t.Errorf("inverted limits phase: got %v, want access", err)
			}
			lower, _ = f.LowerLimit(j)
			if lower != -0.5 {
				t.Errorf("lower after rejected call = %v, want -0.5", lower)
			}
		})
	}
}

func TestWheelJoints_NoLimitAccessors(t *testing.T) {
	w := newTestWorld(t)
	if _, ok := any(w.Wheel).(limitFamily); ok {
		t.Error("wheel joints expose limit accessors")
	}
}

func TestJointFamilies_JointSpeed(t *testing.T) {
	w := newTestWorld(t)
	a, b := jointPair(t, w)

	wheel, err := w.CreateJoint(JointDef{Type: mapping.JointWheel, BodyA: a, BodyB: b, AnchorA: marshal.Vec2{2, 0}, Axis: marshal.Vec2{0, 1}})
	if err != nil {
		t.Fatalf("CreateJoint(wheel): %v", err)
	}
	c, _ := addCircle(t, w, mapping.BodyDynamic, -2, 0, 0.5)
	rev := revolute(t, w, a, c, -1, 0)
	d, _ := addCircle(t, w, mapping.BodyDynamic, 0, 3, 0.5)
	pri, err := w.CreateJoint(JointDef{Type: mapping.JointPrismatic, BodyA: a, BodyB: d, AnchorA: marshal.Vec2{0, 3}, Axis: marshal.Vec2{0, 1}})
	if err != nil {
		t.Fatalf("CreateJoint(prismatic): %v", err)
	}

	if err := w.Step(1.0/60, 8, 3); err != nil {
		t.Fatalf("Step: %v", err)
	}

	tests := []struct {
		name  string
		speed func(handle.Handle) (float32, error)
		j     handle.Handle
	}{
		{"wheel", w.Wheel.JointSpeed, wheel},
		{"revolute", w.Revolute.JointSpeed, rev},
		{"prismatic", w.Prismatic.JointSpeed, pri},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.speed(tt.j)
			if err != nil {
				t.Fatalf("JointSpeed: %v", err)
			}
			if got == 0 {
				t.Error("JointSpeed = 0 for a body falling under gravity")
			}
		})
	}

	// Bodies fall against an upward axis.
	if s, _ := w.Wheel.JointSpeed(wheel); s >= 0 {
		t.Errorf("wheel JointSpeed = %v, want negative", s)
	}
	if s, _ := w.Prismatic.JointSpeed(pri); s >= 0 {
		t.Errorf("prismatic JointSpeed = %v, want negative", s)
	}
}

func TestJointFamilies_SetterRejectsEngineAssert(t *testing.T) {
	w := newTestWorld(t)
	a, b := jointPair(t, w)
	j, err := w.CreateJoint(JointDef{Type: mapping.JointMotor, BodyA: a, BodyB: b})
	if err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	tests := []struct {
		name string
		set  func(handle.Handle, float32) error
		v    float32
	}{
		{"correction factor above one", w.Motor.SetCorrectionFactor, 2},
		{"negative max force", w.Motor.SetMaxForce, -1},
		{"negative max torque", w.Motor.SetMaxTorque, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(j, tt.v); !errors.IsKind(err, errors.KindInvalidData) {
				t.Errorf("got %v, want invalid_data", err)
			}
		})
	}
}
