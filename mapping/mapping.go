package mapping

import (
	"github.com/ByteArena/box2d"
)

// Unknown is the sentinel for an engine discriminant outside the known set.
const Unknown = -1

// ShapeType is the bridge encoding of a shape variant.
type ShapeType int32

const (
	ShapeCircle ShapeType = iota
	ShapeEdge
	ShapePolygon
	ShapeChain
	ShapeUnknown ShapeType = Unknown
)

// ManifoldType is the bridge encoding of a manifold variant.
type ManifoldType int32

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
	ManifoldUnknown ManifoldType = Unknown
)

// JointType is the bridge encoding of a joint family.
type JointType int32

const (
	JointRevolute JointType = iota
	JointPrismatic
	JointDistance
	JointPulley
	JointMouse
	JointGear
	JointWheel
	JointWeld
	JointFriction
	JointRope
	JointMotor
	JointUnknown JointType = Unknown
)

// LimitState is the bridge encoding of a joint limit state.
type LimitState int32

const (
	LimitInactive LimitState = iota
	LimitAtLower
	LimitAtUpper
	LimitEqual
	LimitUnknown LimitState = Unknown
)

// BodyType is the bridge encoding of a body simulation type.
type BodyType int32

const (
	BodyStatic BodyType = iota
	BodyKinematic
	BodyDynamic
	BodyUnknown BodyType = Unknown
)

// The tables below pair each bridge value with the engine's discriminant.
// They are the only place engine numbering is read.

var shapeTypes = table[ShapeType]{
	{ShapeCircle, box2d.B2Shape_Type.E_circle, "circle"},
	{ShapeEdge, box2d.B2Shape_Type.E_edge, "edge"},
	{ShapePolygon, box2d.B2Shape_Type.E_polygon, "polygon"},
	{ShapeChain, box2d.B2Shape_Type.E_chain, "chain"},
}

var manifoldTypes = table[ManifoldType]{
	{ManifoldCircles, box2d.B2Manifold_Type.E_circles, "circles"},
	{ManifoldFaceA, box2d.B2Manifold_Type.E_faceA, "face-a"},
	{ManifoldFaceB, box2d.B2Manifold_Type.E_faceB, "face-b"},
}

// The engine's own unknown joint type is deliberately absent.
var jointTypes = table[JointType]{
	{JointRevolute, box2d.B2JointType.E_revoluteJoint, "revolute"},
	{JointPrismatic, box2d.B2JointType.E_prismaticJoint, "prismatic"},
	{JointDistance, box2d.B2JointType.E_distanceJoint, "distance"},
	{JointPulley, box2d.B2JointType.E_pulleyJoint, "pulley"},
	{JointMouse, box2d.B2JointType.E_mouseJoint, "mouse"},
	{JointGear, box2d.B2JointType.E_gearJoint, "gear"},
	{JointWheel, box2d.B2JointType.E_wheelJoint, "wheel"},
	{JointWeld, box2d.B2JointType.E_weldJoint, "weld"},
	{JointFriction, box2d.B2JointType.E_frictionJoint, "friction"},
	{JointRope, box2d.B2JointType.E_ropeJoint, "rope"},
	{JointMotor, box2d.B2JointType.E_motorJoint, "motor"},
}

var limitStates = table[LimitState]{
	{LimitInactive, box2d.B2LimitState.E_inactiveLimit, "inactive"},
	{LimitAtLower, box2d.B2LimitState.E_atLowerLimit, "at-lower"},
	{LimitAtUpper, box2d.B2LimitState.E_atUpperLimit, "at-upper"},
	{LimitEqual, box2d.B2LimitState.E_equalLimits, "equal"},
}

var bodyTypes = table[BodyType]{
	{BodyStatic, box2d.B2BodyType.B2_staticBody, "static"},
	{BodyKinematic, box2d.B2BodyType.B2_kinematicBody, "kinematic"},
	{BodyDynamic, box2d.B2BodyType.B2_dynamicBody, "dynamic"},
}

// ShapeTypeFromEngine maps an engine shape discriminant.
func ShapeTypeFromEngine(v uint8) ShapeType { return shapeTypes.fromEngine(v) }

// Engine returns the engine discriminant, or false for an unknown value.
func (t ShapeType) Engine() (uint8, bool) { return shapeTypes.toEngine(t) }

func (t ShapeType) String() string { return shapeTypes.name(t) }

// ParseShapeType looks up a shape variant by name.
func ParseShapeType(name string) ShapeType { return shapeTypes.parse(name) }

// ManifoldTypeFromEngine maps an engine manifold discriminant.
func ManifoldTypeFromEngine(v uint8) ManifoldType { return manifoldTypes.fromEngine(v) }

// Engine returns the engine discriminant, or false for an unknown value.
func (t ManifoldType) Engine() (uint8, bool) { return manifoldTypes.toEngine(t) }

func (t ManifoldType) String() string { return manifoldTypes.name(t) }

// JointTypeFromEngine maps an engine joint discriminant.
func JointTypeFromEngine(v uint8) JointType { return jointTypes.fromEngine(v) }

// Engine returns the engine discriminant, or false for an unknown value.
func (t JointType) Engine() (uint8, bool) { return jointTypes.toEngine(t) }

func (t JointType) String() string { return jointTypes.name(t) }

// ParseJointType looks up a joint family by name.
func ParseJointType(name string) JointType { return jointTypes.parse(name) }

// LimitStateFromEngine maps an engine limit state.
func LimitStateFromEngine(v uint8) LimitState { return limitStates.fromEngine(v) }

// Engine returns the engine discriminant, or false for an unknown value.
func (s LimitState) Engine() (uint8, bool) { return limitStates.toEngine(s) }

func (s LimitState) String() string { return limitStates.name(s) }

// BodyTypeFromEngine maps an engine body type.
func BodyTypeFromEngine(v uint8) BodyType { return bodyTypes.fromEngine(v) }

// Engine returns the engine discriminant, or false for an unknown value.
func (t BodyType) Engine() (uint8, bool) { return bodyTypes.toEngine(t) }

func (t BodyType) String() string { return bodyTypes.name(t) }

// ParseBodyType looks up a body type by name.
func ParseBodyType(name string) BodyType { return bodyTypes.parse(name) }

type pair[T ~int32] struct {
	bridge T
	engine uint8
	name   string
}

type table[T ~int32] []pair[T]

func (t table[T]) fromEngine(v uint8) T {
	for _, p := range t {
		if p.engine == v {
			return p.bridge
		}
	}
	return T(Unknown)
}

func (t table[T]) toEngine(v T) (uint8, bool) {
	for _, p := range t {
		if p.bridge == v {
			return p.engine, true
		}
	}
	return 0, false
}

func (t table[T]) name(v T) string {
	for _, p := range t {
		if p.bridge == v {
			return p.name
		}
	}
	return "unknown"
}

func (t table[T]) parse(name string) T {
	for _, p := range t {
		if p.name == name {
			return p.bridge
		}
	}
	return T(Unknown)
}
