package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// enum adapts a getter of a closed bridge encoding to an s32 getter.
func enum[T ~int32](get func(handle.Handle) (T, error)) func(handle.Handle) (int32, error) {
	return func(h handle.Handle) (int32, error) {
		v, err := get(h)
		return int32(v), err
	}
}

func (m *Module) registerWorld() {
	w := m.world

	m.fn("world-step", types(tF32, tS32, tS32), nil, func(ctx context.Context, mod api.Module, stack []uint64) error {
		dt, vel, pos := argF32(stack, 0), int(argS32(stack, 1)), int(argS32(stack, 2))

		gl := newGuestListener(ctx, mod, m.logger)
		if gl == nil {
			return w.Step(dt, vel, pos)
		}
		prev := w.ContactListener()
		w.SetContactListener(gl)
		defer w.SetContactListener(prev)

		if err := w.Step(dt, vel, pos); err != nil {
			return err
		}
		if gl.err != nil {
			return errors.Wrap(errors.PhaseHost, errors.KindInvalidData, gl.err, "guest contact callback failed")
		}
		return nil
	})

	m.fn("world-get-contacts", types(tPtr, tS32), types(tS32), func(_ context.Context, mod api.Module, stack []uint64) error {
		list, err := w.ContactList(nil)
		if err != nil {
			return err
		}
		n, err := m.writeHandles("world-get-contacts", mod, argU32(stack, 0), argS32(stack, 1), list)
		if err != nil {
			return err
		}
		stack[0] = api.EncodeI32(n)
		return nil
	})
}

func (m *Module) registerShapes() {
	w := m.world

	m.getS32("shape-get-type", enum(w.Shapes.Type))
	m.getF32("shape-get-radius", w.Shapes.Radius)
	m.setF32("shape-set-radius", w.Shapes.SetRadius)
	m.getS32("shape-get-child-count", w.Shapes.ChildCount)
	m.call("shape-dispose", w.Shapes.Dispose)

	m.newHandle("circle-new", w.Circles.New)
	m.getVec("circle-get-position", w.Circles.Position)
	m.setVec("circle-set-position", w.Circles.SetPosition)

	m.newHandle("edge-new", w.Edges.New)
	m.fn("edge-set", types(tHandle, tF32, tF32, tF32, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return w.Edges.Set(argHandle(stack, 0), argF32(stack, 1), argF32(stack, 2), argF32(stack, 3), argF32(stack, 4))
	})
	m.getVec("edge-get-vertex0", w.Edges.Vertex0)
	m.getVec("edge-get-vertex1", w.Edges.Vertex1)
	m.getVec("edge-get-vertex2", w.Edges.Vertex2)
	m.getVec("edge-get-vertex3", w.Edges.Vertex3)
	m.setVec("edge-set-vertex0", w.Edges.SetVertex0)
	m.setVec("edge-set-vertex3", w.Edges.SetVertex3)
	m.getBool("edge-get-has-vertex0", w.Edges.HasVertex0)
	m.getBool("edge-get-has-vertex3", w.Edges.HasVertex3)
	m.setBool("edge-set-has-vertex0", w.Edges.SetHasVertex0)
	m.setBool("edge-set-has-vertex3", w.Edges.SetHasVertex3)

	m.newHandle("chain-new", w.Chains.New)
	m.loadVertices("chain-create-chain", w.Chains.CreateChain)
	m.loadVertices("chain-create-loop", w.Chains.CreateLoop)
	m.getS32("chain-get-vertex-count", w.Chains.VertexCount)
	m.getVertex("chain-get-vertex", w.Chains.Vertex)
	m.setVec("chain-set-prev-vertex", w.Chains.SetPrevVertex)
	m.setVec("chain-set-next-vertex", w.Chains.SetNextVertex)

	m.newHandle("polygon-new", w.Polygons.New)
	m.loadVertices("polygon-set", w.Polygons.Set)
	m.fn("polygon-set-as-box", types(tHandle, tF32, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return w.Polygons.SetAsBox(argHandle(stack, 0), argF32(stack, 1), argF32(stack, 2))
	})
	m.fn("polygon-set-as-oriented-box", types(tHandle, tF32, tF32, tF32, tF32, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return w.Polygons.SetAsOrientedBox(argHandle(stack, 0),
			argF32(stack, 1), argF32(stack, 2), argF32(stack, 3), argF32(stack, 4), argF32(stack, 5))
	})
	m.getS32("polygon-get-vertex-count", w.Polygons.VertexCount)
	m.getVertex("polygon-get-vertex", w.Polygons.Vertex)
}

func (m *Module) registerBodies() {
	w := m.world

	m.fn("body-create", types(tS32, tF32, tF32, tF32), types(tHandle), func(_ context.Context, _ api.Module, stack []uint64) error {
		h, err := w.Bodies.New(mapping.BodyType(argS32(stack, 0)), argF32(stack, 1), argF32(stack, 2), argF32(stack, 3))
		if err != nil {
			return err
		}
		stack[0] = uint64(h)
		return nil
	})
	m.fn("body-attach", types(tHandle, tHandle, tF32), types(tHandle), func(_ context.Context, _ api.Module, stack []uint64) error {
		h, err := w.Bodies.Attach(argHandle(stack, 0), argHandle(stack, 1), argF32(stack, 2))
		if err != nil {
			return err
		}
		stack[0] = uint64(h)
		return nil
	})
	m.getS32("body-get-type", enum(w.Bodies.Type))
	m.getVec("body-get-position", w.Bodies.Position)
	m.getF32("body-get-angle", w.Bodies.Angle)
	m.getVec("body-get-linear-velocity", w.Bodies.LinearVelocity)
	m.setVec("body-set-linear-velocity", w.Bodies.SetLinearVelocity)
	m.fn("body-apply-linear-impulse", types(tHandle, tF32, tF32, tF32, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return w.Bodies.ApplyLinearImpulse(argHandle(stack, 0),
			argF32(stack, 1), argF32(stack, 2), argF32(stack, 3), argF32(stack, 4))
	})
	m.fn("body-get-fixtures", types(tHandle, tPtr, tS32), types(tS32), func(_ context.Context, mod api.Module, stack []uint64) error {
		list, err := w.Bodies.Fixtures(argHandle(stack, 0), nil)
		if err != nil {
			return err
		}
		n, err := m.writeHandles("body-get-fixtures", mod, argU32(stack, 1), argS32(stack, 2), list)
		if err != nil {
			return err
		}
		stack[0] = api.EncodeI32(n)
		return nil
	})
	m.call("body-destroy", w.Bodies.Destroy)
}

func (m *Module) registerFixtures() {
	w := m.world

	m.getS32("fixture-get-type", enum(w.Fixtures.Type))
	m.getHandle("fixture-get-shape", w.Fixtures.Shape)
	m.getHandle("fixture-get-body", w.Fixtures.Body)
	m.setBool("fixture-set-sensor", w.Fixtures.SetSensor)
	m.getBool("fixture-is-sensor", w.Fixtures.IsSensor)
	m.fn("fixture-set-filter-data", types(tHandle, tU16, tU16, tS16), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return w.Fixtures.SetFilterData(argHandle(stack, 0), uint16(stack[1]), uint16(stack[2]), int16(uint16(stack[3])))
	})
	m.fn("fixture-get-filter-data", types(tHandle, tPtr), nil, func(_ context.Context, mod api.Module, stack []uint64) error {
		var f marshal.Filter
		if err := w.Fixtures.FilterData(argHandle(stack, 0), &f); err != nil {
			return err
		}
		return m.memory("fixture-get-filter-data", mod).WriteI16s(argU32(stack, 1), f[:])
	})
	m.call("fixture-refilter", w.Fixtures.Refilter)
	m.fn("fixture-test-point", types(tHandle, tF32, tF32), types(tBool), func(_ context.Context, _ api.Module, stack []uint64) error {
		in, err := w.Fixtures.TestPoint(argHandle(stack, 0), argF32(stack, 1), argF32(stack, 2))
		if err != nil {
			return err
		}
		stack[0] = encodeBool(in)
		return nil
	})
	m.getF32("fixture-get-density", w.Fixtures.Density)
	m.setF32("fixture-set-density", w.Fixtures.SetDensity)
	m.getF32("fixture-get-friction", w.Fixtures.Friction)
	m.setF32("fixture-set-friction", w.Fixtures.SetFriction)
	m.getF32("fixture-get-restitution", w.Fixtures.Restitution)
	m.setF32("fixture-set-restitution", w.Fixtures.SetRestitution)
}

func (m *Module) registerContacts() {
	w := m.world

	m.fn("contact-get-world-manifold", types(tHandle, tPtr), types(tS32), func(_ context.Context, mod api.Module, stack []uint64) error {
		var wm marshal.WorldManifold
		n, err := w.Contacts.WorldManifold(argHandle(stack, 0), &wm)
		if err != nil {
			return err
		}
		if err := writeWorldManifold(m.memory("contact-get-world-manifold", mod), argU32(stack, 1), &wm, int(n)); err != nil {
			return err
		}
		stack[0] = api.EncodeI32(n)
		return nil
	})
	m.getHandle("contact-get-manifold", w.Contacts.Manifold)
	m.getBool("contact-is-touching", w.Contacts.IsTouching)
	m.setBool("contact-set-enabled", w.Contacts.SetEnabled)
	m.getBool("contact-is-enabled", w.Contacts.IsEnabled)
	m.getHandle("contact-get-fixture-a", w.Contacts.FixtureA)
	m.getHandle("contact-get-fixture-b", w.Contacts.FixtureB)
	m.getS32("contact-get-child-index-a", w.Contacts.ChildIndexA)
	m.getS32("contact-get-child-index-b", w.Contacts.ChildIndexB)
	m.getF32("contact-get-friction", w.Contacts.Friction)
	m.setF32("contact-set-friction", w.Contacts.SetFriction)
	m.call("contact-reset-friction", w.Contacts.ResetFriction)
	m.getF32("contact-get-restitution", w.Contacts.Restitution)
	m.setF32("contact-set-restitution", w.Contacts.SetRestitution)
	m.call("contact-reset-restitution", w.Contacts.ResetRestitution)
	m.getF32("contact-get-tangent-speed", w.Contacts.TangentSpeed)
	m.setF32("contact-set-tangent-speed", w.Contacts.SetTangentSpeed)

	m.getS32("impulse-get-count", w.Impulses.Count)
	impulses := func(name string, get func(handle.Handle, *marshal.Impulses) (int32, error)) {
		m.fn(name, types(tHandle, tPtr), types(tS32), func(_ context.Context, mod api.Module, stack []uint64) error {
			var out marshal.Impulses
			n, err := get(argHandle(stack, 0), &out)
			if err != nil {
				return err
			}
			if err := m.memory(name, mod).WriteF32s(argU32(stack, 1), out[:]); err != nil {
				return err
			}
			stack[0] = api.EncodeI32(n)
			return nil
		})
	}
	impulses("impulse-get-normal-impulses", w.Impulses.NormalImpulses)
	impulses("impulse-get-tangent-impulses", w.Impulses.TangentImpulses)

	m.getS32("manifold-get-type", enum(w.Manifolds.Type))
	m.getS32("manifold-get-point-count", w.Manifolds.PointCount)
	m.getVec("manifold-get-local-normal", w.Manifolds.LocalNormal)
	m.getVec("manifold-get-local-point", w.Manifolds.LocalPoint)
	m.fn("manifold-get-point", types(tHandle, tS32, tPtr), types(tU32), func(_ context.Context, mod api.Module, stack []uint64) error {
		var p marshal.ManifoldPoint
		key, err := w.Manifolds.Point(argHandle(stack, 0), argS32(stack, 1), &p)
		if err != nil {
			return err
		}
		if err := m.memory("manifold-get-point", mod).WriteF32s(argU32(stack, 2), p[:]); err != nil {
			return err
		}
		stack[0] = api.EncodeU32(key)
		return nil
	})
}

// writeWorldManifold writes the normal and the slots of the n populated
// points, leaving the rest of the guest buffer untouched.
func writeWorldManifold(mem *marshal.GuestMemory, ptr uint32, wm *marshal.WorldManifold, n int) error {
	lease, err := mem.Acquire(ptr, uint32(len(wm))*marshal.SizeF32)
	if err != nil {
		return err
	}
	lease.Release()

	at := func(i int) uint32 { return ptr + uint32(i)*marshal.SizeF32 }
	if err := mem.WriteF32s(at(marshal.WorldManifoldNormal), wm[marshal.WorldManifoldNormal:marshal.WorldManifoldNormal+2]); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		p := marshal.WorldManifoldPoints + 2*i
		if err := mem.WriteF32s(at(p), wm[p:p+2]); err != nil {
			return err
		}
		s := marshal.WorldManifoldSeparations + i
		if err := mem.WriteF32s(at(s), wm[s:s+1]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) registerJoints() {
	w := m.world

	m.fn("joint-create", types(tS32, tHandle, tHandle, tPtr, tBool), types(tHandle), func(_ context.Context, mod api.Module, stack []uint64) error {
		var p marshal.JointParams
		if err := m.memory("joint-create", mod).ReadF32s(argU32(stack, 3), p[:]); err != nil {
			return err
		}
		h, err := w.CreateJoint(bridge.JointDef{
			Type:             mapping.JointType(argS32(stack, 0)),
			BodyA:            argHandle(stack, 1),
			BodyB:            argHandle(stack, 2),
			AnchorA:          p.Vec(marshal.JointAnchorA),
			AnchorB:          p.Vec(marshal.JointAnchorB),
			GroundA:          p.Vec(marshal.JointGroundA),
			GroundB:          p.Vec(marshal.JointGroundB),
			Axis:             p.Vec(marshal.JointAxis),
			Target:           p.Vec(marshal.JointTarget),
			Ratio:            p[marshal.JointRatio],
			MaxLength:        p[marshal.JointMaxLength],
			MaxForce:         p[marshal.JointMaxForce],
			CollideConnected: argBool(stack, 4),
		})
		if err != nil {
			return err
		}
		stack[0] = uint64(h)
		return nil
	})
	m.fn("joint-create-gear", types(tHandle, tHandle, tHandle, tHandle, tF32, tBool), types(tHandle), func(_ context.Context, _ api.Module, stack []uint64) error {
		h, err := w.CreateJoint(bridge.JointDef{
			Type:             mapping.JointGear,
			BodyA:            argHandle(stack, 0),
			BodyB:            argHandle(stack, 1),
			Joint1:           argHandle(stack, 2),
			Joint2:           argHandle(stack, 3),
			Ratio:            argF32(stack, 4),
			CollideConnected: argBool(stack, 5),
		})
		if err != nil {
			return err
		}
		stack[0] = uint64(h)
		return nil
	})

	m.getS32("joint-get-type", enum(w.Joints.Type))
	m.getHandle("joint-get-body-a", w.Joints.BodyA)
	m.getHandle("joint-get-body-b", w.Joints.BodyB)
	m.getVec("joint-get-anchor-a", w.Joints.AnchorA)
	m.getVec("joint-get-anchor-b", w.Joints.AnchorB)
	m.getVecAt("joint-get-reaction-force", w.Joints.ReactionForce)
	m.getF32At("joint-get-reaction-torque", w.Joints.ReactionTorque)
	m.getBool("joint-is-active", w.Joints.IsActive)
	m.getBool("joint-get-collide-connected", w.Joints.CollideConnected)
	m.call("joint-destroy", w.Joints.Destroy)
}

type anchorAccess interface {
	LocalAnchorA(handle.Handle, *marshal.Vec2) error
	LocalAnchorB(handle.Handle, *marshal.Vec2) error
}

type limitAccess interface {
	IsLimitEnabled(handle.Handle) (bool, error)
	EnableLimit(handle.Handle, bool) error
	LowerLimit(handle.Handle) (float32, error)
	UpperLimit(handle.Handle) (float32, error)
	SetLimits(handle.Handle, float32, float32) error
}

type motorAccess interface {
	IsMotorEnabled(handle.Handle) (bool, error)
	EnableMotor(handle.Handle, bool) error
	MotorSpeed(handle.Handle) (float32, error)
	SetMotorSpeed(handle.Handle, float32) error
}

func (m *Module) anchors(prefix string, a anchorAccess) {
	m.getVec(prefix+"get-local-anchor-a", a.LocalAnchorA)
	m.getVec(prefix+"get-local-anchor-b", a.LocalAnchorB)
}

func (m *Module) limits(prefix string, l limitAccess) {
	m.getBool(prefix+"is-limit-enabled", l.IsLimitEnabled)
	m.setBool(prefix+"enable-limit", l.EnableLimit)
	m.getF32(prefix+"get-lower-limit", l.LowerLimit)
	m.getF32(prefix+"get-upper-limit", l.UpperLimit)
	m.fn(prefix+"set-limits", types(tHandle, tF32, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return l.SetLimits(argHandle(stack, 0), argF32(stack, 1), argF32(stack, 2))
	})
}

func (m *Module) motors(prefix string, mo motorAccess) {
	m.getBool(prefix+"is-motor-enabled", mo.IsMotorEnabled)
	m.setBool(prefix+"enable-motor", mo.EnableMotor)
	m.getF32(prefix+"get-motor-speed", mo.MotorSpeed)
	m.setF32(prefix+"set-motor-speed", mo.SetMotorSpeed)
}

func (m *Module) registerJointFamilies() {
	w := m.world

	const distance = "distance-joint-"
	m.anchors(distance, w.Distance)
	m.getF32(distance+"get-length", w.Distance.Length)
	m.setF32(distance+"set-length", w.Distance.SetLength)
	m.getF32(distance+"get-frequency", w.Distance.Frequency)
	m.setF32(distance+"set-frequency", w.Distance.SetFrequency)
	m.getF32(distance+"get-damping-ratio", w.Distance.DampingRatio)
	m.setF32(distance+"set-damping-ratio", w.Distance.SetDampingRatio)

	const friction = "friction-joint-"
	m.anchors(friction, w.Friction)
	m.getF32(friction+"get-max-force", w.Friction.MaxForce)
	m.setF32(friction+"set-max-force", w.Friction.SetMaxForce)
	m.getF32(friction+"get-max-torque", w.Friction.MaxTorque)
	m.setF32(friction+"set-max-torque", w.Friction.SetMaxTorque)

	const gear = "gear-joint-"
	m.getHandle(gear+"get-joint1", w.Gear.Joint1)
	m.getHandle(gear+"get-joint2", w.Gear.Joint2)
	m.getF32(gear+"get-ratio", w.Gear.Ratio)
	m.setF32(gear+"set-ratio", w.Gear.SetRatio)

	const motor = "motor-joint-"
	m.getVec(motor+"get-linear-offset", w.Motor.LinearOffset)
	m.setVec(motor+"set-linear-offset", w.Motor.SetLinearOffset)
	m.getF32(motor+"get-angular-offset", w.Motor.AngularOffset)
	m.setF32(motor+"set-angular-offset", w.Motor.SetAngularOffset)
	m.getF32(motor+"get-max-force", w.Motor.MaxForce)
	m.setF32(motor+"set-max-force", w.Motor.SetMaxForce)
	m.getF32(motor+"get-max-torque", w.Motor.MaxTorque)
	m.setF32(motor+"set-max-torque", w.Motor.SetMaxTorque)
	m.getF32(motor+"get-correction-factor", w.Motor.CorrectionFactor)
	m.setF32(motor+"set-correction-factor", w.Motor.SetCorrectionFactor)

	const mouse = "mouse-joint-"
	m.getVec(mouse+"get-target", w.Mouse.Target)
	m.setVec(mouse+"set-target", w.Mouse.SetTarget)
	m.getF32(mouse+"get-max-force", w.Mouse.MaxForce)
	m.setF32(mouse+"set-max-force", w.Mouse.SetMaxForce)
	m.getF32(mouse+"get-frequency", w.Mouse.Frequency)
	m.setF32(mouse+"set-frequency", w.Mouse.SetFrequency)
	m.getF32(mouse+"get-damping-ratio", w.Mouse.DampingRatio)
	m.setF32(mouse+"set-damping-ratio", w.Mouse.SetDampingRatio)

	const prismatic = "prismatic-joint-"
	m.anchors(prismatic, w.Prismatic)
	m.getVec(prismatic+"get-local-axis-a", w.Prismatic.LocalAxisA)
	m.getF32(prismatic+"get-reference-angle", w.Prismatic.ReferenceAngle)
	m.getF32(prismatic+"get-joint-translation", w.Prismatic.JointTranslation)
	m.getF32(prismatic+"get-joint-speed", w.Prismatic.JointSpeed)
	m.limits(prismatic, w.Prismatic)
	m.motors(prismatic, w.Prismatic)
	m.getF32(prismatic+"get-max-motor-force", w.Prismatic.MaxMotorForce)
	m.setF32(prismatic+"set-max-motor-force", w.Prismatic.SetMaxMotorForce)
	m.getF32At(prismatic+"get-motor-force", w.Prismatic.MotorForce)

	const pulley = "pulley-joint-"
	m.getVec(pulley+"get-ground-anchor-a", w.Pulley.GroundAnchorA)
	m.getVec(pulley+"get-ground-anchor-b", w.Pulley.GroundAnchorB)
	m.getF32(pulley+"get-length-a", w.Pulley.LengthA)
	m.getF32(pulley+"get-length-b", w.Pulley.LengthB)
	m.getF32(pulley+"get-ratio", w.Pulley.Ratio)

	const revolute = "revolute-joint-"
	m.anchors(revolute, w.Revolute)
	m.getF32(revolute+"get-reference-angle", w.Revolute.ReferenceAngle)
	m.getF32(revolute+"get-joint-angle", w.Revolute.JointAngle)
	m.getF32(revolute+"get-joint-speed", w.Revolute.JointSpeed)
	m.limits(revolute, w.Revolute)
	m.motors(revolute, w.Revolute)
	m.getF32(revolute+"get-max-motor-torque", w.Revolute.MaxMotorTorque)
	m.setF32(revolute+"set-max-motor-torque", w.Revolute.SetMaxMotorTorque)
	m.getF32At(revolute+"get-motor-torque", w.Revolute.MotorTorque)

	const rope = "rope-joint-"
	m.anchors(rope, w.Rope)
	m.getF32(rope+"get-max-length", w.Rope.MaxLength)
	m.setF32(rope+"set-max-length", w.Rope.SetMaxLength)
	m.getS32(rope+"get-limit-state", enum(w.Rope.LimitState))

	const weld = "weld-joint-"
	m.anchors(weld, w.Weld)
	m.getF32(weld+"get-reference-angle", w.Weld.ReferenceAngle)
	m.getF32(weld+"get-frequency", w.Weld.Frequency)
	m.setF32(weld+"set-frequency", w.Weld.SetFrequency)
	m.getF32(weld+"get-damping-ratio", w.Weld.DampingRatio)
	m.setF32(weld+"set-damping-ratio", w.Weld.SetDampingRatio)

	const wheel = "wheel-joint-"
	m.anchors(wheel, w.Wheel)
	m.getVec(wheel+"get-local-axis-a", w.Wheel.LocalAxisA)
	m.getF32(wheel+"get-joint-translation", w.Wheel.JointTranslation)
	m.getF32(wheel+"get-joint-speed", w.Wheel.JointSpeed)
	m.motors(wheel, w.Wheel)
	m.getF32(wheel+"get-max-motor-torque", w.Wheel.MaxMotorTorque)
	m.setF32(wheel+"set-max-motor-torque", w.Wheel.SetMaxMotorTorque)
	m.getF32At(wheel+"get-motor-torque", w.Wheel.MotorTorque)
	m.getF32(wheel+"get-spring-frequency", w.Wheel.SpringFrequency)
	m.setF32(wheel+"set-spring-frequency", w.Wheel.SetSpringFrequency)
	m.getF32(wheel+"get-spring-damping-ratio", w.Wheel.SpringDampingRatio)
	m.setF32(wheel+"set-spring-damping-ratio", w.Wheel.SetSpringDampingRatio)
}
