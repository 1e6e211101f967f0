// Package box2dbridge exposes a Box2D physics world across a handle-based
// boundary, for WebAssembly guests or any caller that should never hold
// engine pointers.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	box2dbridge/
//	├── bridge/      World façade: shapes, bodies, fixtures, contacts, joints
//	├── handle/      Generational handle table with ownership and scopes
//	├── marshal/     Fixed-size result buffers and guest memory leases
//	├── mapping/     Engine enum discriminants to stable bridge values
//	├── host/        wazero host module "box2d" over a bridge.World
//	├── scene/       YAML/TOML scene loading, building and watching
//	├── errors/      Structured error types for debugging
//	└── cmd/run/     CLI: simulate a scene, run a guest, interactive TUI
//
// # Quick Start
//
// Drive a world from Go:
//
//	w := bridge.NewWorld(0, -10)
//	defer w.Close()
//
//	body, _ := w.Bodies.New(mapping.BodyDynamic, 0, 4, 0)
//	shape, _ := w.Circles.New()
//	_ = w.Shapes.SetRadius(shape, 0.5)
//	fixture, _ := w.Bodies.Attach(body, shape, 1)
//
//	_ = w.Step(1.0/60, 8, 3)
//	var pos marshal.Vec2
//	_ = w.Bodies.Position(body, &pos)
//
// Expose it to a guest:
//
//	r := wazero.NewRuntime(ctx)
//	if _, err := host.New(w).Instantiate(ctx, r); err != nil {
//		return err
//	}
//
// # Handles
//
// Every entity crossing the boundary is a handle.Handle. Shapes created by
// the caller are caller-owned and must be attached or disposed. Everything
// else is engine-owned and becomes stale when the engine releases it:
// contacts and manifolds at the next step, fixtures and joints with their
// body, all handles when the world closes. Stale handles are rejected with
// errors.KindStaleHandle instead of reaching freed engine memory.
//
// # Error Handling
//
// All errors are *errors.Error with Phase and Kind:
//
//	if errors.IsKind(err, errors.KindStaleHandle) {
//		// handle outlived its entity
//	}
package box2dbridge
