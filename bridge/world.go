package bridge

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

// Default solver iterations used when Step is called with zero counts.
const (
	DefaultVelocityIterations = 8
	DefaultPositionIterations = 3
)

// ContactListener receives contact events during a step.
//
// Contact handles are valid until the next step. The oldManifold handle in
// PreSolve and the impulse handle in PostSolve are valid only until the
// callback returns.
type ContactListener interface {
	BeginContact(contact handle.Handle)
	EndContact(contact handle.Handle)
	PreSolve(contact, oldManifold handle.Handle)
	PostSolve(contact, impulse handle.Handle)
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the world's logger. Defaults to the package Logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithContactListener installs a contact listener at construction.
func WithContactListener(l ContactListener) Option {
	return func(w *World) {
		w.listener = l
	}
}

// WithIterations sets the solver iterations used when Step gets zero counts.
func WithIterations(velocity, position int) Option {
	return func(w *World) {
		if velocity > 0 {
			w.velocityIterations = velocity
		}
		if position > 0 {
			w.positionIterations = position
		}
	}
}

// World is the explicit context for one simulation world. It owns the
// engine world, the handle table and every handle derived from it.
//
// A World is not safe for concurrent use. Whoever holds it serializes all
// access to it and to everything it owns.
type World struct {
	engine   *box2d.B2World
	handles  *handle.Table
	logger   *zap.Logger
	listener ContactListener

	velocityIterations int
	positionIterations int
	stepping           bool
	closed             bool

	Shapes    Shapes
	Circles   Circles
	Edges     Edges
	Chains    Chains
	Polygons  Polygons
	Bodies    Bodies
	Fixtures  Fixtures
	Contacts  Contacts
	Impulses  Impulses
	Manifolds Manifolds
	Joints    Joints

	Distance  DistanceJoints
	Friction  FrictionJoints
	Gear      GearJoints
	Motor     MotorJoints
	Mouse     MouseJoints
	Prismatic PrismaticJoints
	Pulley    PulleyJoints
	Revolute  RevoluteJoints
	Rope      RopeJoints
	Weld      WeldJoints
	Wheel     WheelJoints
}

// NewWorld creates a world with the given gravity.
func NewWorld(gx, gy float32, opts ...Option) *World {
	engine := box2d.MakeB2World(vec(gx, gy))
	w := &World{
		engine:             &engine,
		handles:            handle.NewTable(),
		logger:             Logger(),
		velocityIterations: DefaultVelocityIterations,
		positionIterations: DefaultPositionIterations,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Shapes = Shapes{w}
	w.Circles = Circles{w}
	w.Edges = Edges{w}
	w.Chains = Chains{w}
	w.Polygons = Polygons{w}
	w.Bodies = Bodies{w}
	w.Fixtures = Fixtures{w}
	w.Contacts = Contacts{w}
	w.Impulses = Impulses{w}
	w.Manifolds = Manifolds{w}
	w.Joints = Joints{w}
	w.Distance = DistanceJoints{w}
	w.Friction = FrictionJoints{w}
	w.Gear = GearJoints{w}
	w.Motor = MotorJoints{w}
	w.Mouse = MouseJoints{w}
	w.Prismatic = PrismaticJoints{jointFamily{w, mapping.JointPrismatic}}
	w.Pulley = PulleyJoints{w}
	w.Revolute = RevoluteJoints{jointFamily{w, mapping.JointRevolute}}
	w.Rope = RopeJoints{w}
	w.Weld = WeldJoints{w}
	w.Wheel = WheelJoints{w}

	w.engine.SetContactListener(contactEvents{w})
	w.engine.SetDestructionListener(destructionEvents{w})

	if w.logger.Core().Enabled(zap.DebugLevel) {
		w.handles.Subscribe(handleLog{log: w.logger})
	}
	w.logger.Debug("world created",
		zap.Float32("gravity_x", gx),
		zap.Float32("gravity_y", gy),
	)
	return w
}

// Engine returns the wrapped engine world.
func (w *World) Engine() *box2d.B2World {
	return w.engine
}

// Handles returns the world's handle table.
func (w *World) Handles() *handle.Table {
	return w.handles
}

// Stepping reports whether the world is inside Step.
func (w *World) Stepping() bool {
	return w.stepping
}

// ContactListener returns the installed contact listener, or nil.
func (w *World) ContactListener() ContactListener {
	return w.listener
}

// SetContactListener replaces the contact listener; nil removes it.
func (w *World) SetContactListener(l ContactListener) {
	w.listener = l
}

// Step advances the simulation. Zero iteration counts use the world's
// defaults. Contact and manifold handles from the previous step become
// stale before the engine runs.
func (w *World) Step(dt float32, velocityIterations, positionIterations int) error {
	if w.closed {
		return errors.Closed(errors.PhaseWorld, "world")
	}
	if w.stepping {
		return errors.Locked("step")
	}
	if dt < 0 || math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) {
		return errors.New(errors.PhaseWorld, errors.KindInvalidInput).
			Op("step").
			Value(dt).
			Detail("time step must be finite and non-negative, got %v", dt).
			Build()
	}
	if velocityIterations <= 0 {
		velocityIterations = w.velocityIterations
	}
	if positionIterations <= 0 {
		positionIterations = w.positionIterations
	}

	w.handles.Invalidate(handle.ScopeStep)

	w.stepping = true
	defer func() { w.stepping = false }()
	return guard(errors.PhaseWorld, "step", func() {
		w.engine.Step(float64(dt), velocityIterations, positionIterations)
	})
}

// ContactList appends a handle for every contact in the world to dst.
// The handles are valid until the next step.
func (w *World) ContactList(dst []handle.Handle) ([]handle.Handle, error) {
	if w.closed {
		return dst, errors.Closed(errors.PhaseWorld, "world")
	}
	for c := w.engine.GetContactList(); c != nil; c = c.GetNext() {
		h, err := w.refContact(c)
		if err != nil {
			return dst, err
		}
		dst = append(dst, h)
	}
	return dst, nil
}

// Close releases every handle. The world must not be used afterwards.
func (w *World) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.listener = nil
	w.logger.Debug("world closed", zap.Int("live_handles", w.handles.Len()))
	return w.handles.Close()
}

// unlocked rejects world mutations while stepping or after Close.
func (w *World) unlocked(op string) error {
	if w.closed {
		return errors.Closed(errors.PhaseWorld, "world")
	}
	if w.stepping {
		return errors.Locked(op)
	}
	return nil
}

func (w *World) refContact(c box2d.B2ContactInterface) (handle.Handle, error) {
	return w.handles.Ref(handle.KindContact, handle.ScopeStep, c)
}

func (w *World) refFixture(f *box2d.B2Fixture) (handle.Handle, error) {
	return w.handles.Ref(handle.KindFixture, handle.ScopeWorld, f)
}

func (w *World) refBody(b *box2d.B2Body) (handle.Handle, error) {
	return w.handles.Ref(handle.KindBody, handle.ScopeWorld, b)
}

func (w *World) refJoint(j box2d.B2JointInterface) (handle.Handle, error) {
	return w.handles.Ref(handle.KindJoint, handle.ScopeWorld, j)
}

// forgetFixture stales a destroyed fixture and the shape it owned.
func (w *World) forgetFixture(f *box2d.B2Fixture) {
	if shape := f.GetShape(); shape != nil {
		w.handles.Forget(shape)
	}
	w.handles.Forget(f)
}

// contactEvents adapts engine contact callbacks to the ContactListener.
type contactEvents struct {
	w *World
}

func (e contactEvents) BeginContact(contact box2d.B2ContactInterface) {
	if l, h, ok := e.deliver(contact); ok {
		l.BeginContact(h)
	}
}

func (e contactEvents) EndContact(contact box2d.B2ContactInterface) {
	if l, h, ok := e.deliver(contact); ok {
		l.EndContact(h)
	}
}

func (e contactEvents) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
	l, h, ok := e.deliver(contact)
	if !ok {
		return
	}
	old := oldManifold
	mh, err := e.w.handles.Ref(handle.KindManifold, handle.ScopeCallback, &old)
	if err != nil {
		e.w.logger.Warn("pre-solve manifold not registered", zap.Error(err))
		return
	}
	defer e.w.handles.Invalidate(handle.ScopeCallback)
	l.PreSolve(h, mh)
}

func (e contactEvents) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
	l, h, ok := e.deliver(contact)
	if !ok || impulse == nil {
		return
	}
	ih, err := e.w.handles.Ref(handle.KindImpulse, handle.ScopeCallback, impulse)
	if err != nil {
		e.w.logger.Warn("post-solve impulse not registered", zap.Error(err))
		return
	}
	defer e.w.handles.Invalidate(handle.ScopeCallback)
	l.PostSolve(h, ih)
}

func (e contactEvents) deliver(contact box2d.B2ContactInterface) (ContactListener, handle.Handle, bool) {
	l := e.w.listener
	if l == nil || e.w.closed {
		return nil, 0, false
	}
	h, err := e.w.refContact(contact)
	if err != nil {
		e.w.logger.Warn("contact not registered", zap.Error(err))
		return nil, 0, false
	}
	return l, h, true
}

// destructionEvents stales handles of objects the engine destroys
// implicitly with their body.
type destructionEvents struct {
	w *World
}

func (e destructionEvents) SayGoodbyeToFixture(fixture *box2d.B2Fixture) {
	e.w.forgetFixture(fixture)
}

func (e destructionEvents) SayGoodbyeToJoint(joint box2d.B2JointInterface) {
	e.w.handles.Forget(joint)
}

// guard runs an engine call and converts an engine assertion into an error.
func guard(phase errors.Phase, op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(phase, errors.KindInvalidData).
				Op(op).
				Value(r).
				Detail("engine rejected the call: %v", r).
				Build()
		}
	}()
	fn()
	return nil
}

func vec(x, y float32) box2d.B2Vec2 {
	return box2d.B2Vec2{X: float64(x), Y: float64(y)}
}

func putVec(out *marshal.Vec2, v box2d.B2Vec2) {
	out[0] = float32(v.X)
	out[1] = float32(v.Y)
}

func wrongEntity(want string, got any, h handle.Handle) error {
	return errors.WrongKind(errors.PhaseAccess, want, entityName(got), uint64(h))
}

func entityName(v any) string {
	switch v.(type) {
	case *box2d.B2CircleShape:
		return "circle"
	case *box2d.B2EdgeShape:
		return "edge"
	case *box2d.B2ChainShape:
		return "chain"
	case *box2d.B2PolygonShape:
		return "polygon"
	default:
		return fmt.Sprintf("%T", v)
	}
}
