// Package bridge exposes a 2D rigid-body engine through opaque handles.
//
// A World wraps one engine world and one handle table. Every engine object
// reachable from the managed side (shapes, bodies, fixtures, contacts,
// manifolds, impulses, joints) is addressed by a handle.Handle and accessed
// through a per-entity façade hanging off the World:
//
//	w := bridge.NewWorld(0, -10)
//	defer w.Close()
//
//	body, _ := w.Bodies.New(mapping.BodyDynamic, 0, 4, 0)
//	circle, _ := w.Circles.New()
//	w.Shapes.SetRadius(circle, 0.5)
//	fixture, _ := w.Bodies.Attach(body, circle, 1)
//
//	w.Step(1.0/60, 0, 0)
//
//	var pos marshal.Vec2
//	w.Bodies.Position(body, &pos)
//
// # Ownership
//
// Shapes are created caller-owned and must be disposed with Shapes.Dispose
// unless they are attached to a body. Attach transfers the shape to the
// engine: the shape handle goes stale and the fixture's copy is reached via
// Fixtures.Shape. Everything else is engine-owned and goes stale when the
// engine destroys it.
//
// # Lifetimes
//
// Contact and manifold handles are valid until the next Step. The manifold
// passed to PreSolve and the impulse passed to PostSolve are valid only
// while the callback runs. Creating or destroying bodies and joints from
// inside a callback fails with errors.KindLocked.
//
// # Joints
//
// Joints.* accessors work on any joint. Family accessors (w.Revolute,
// w.Distance, ...) check the joint's family first and report
// errors.KindWrongKind on a mismatch.
package bridge
