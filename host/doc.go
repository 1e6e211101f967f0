// Package host exposes a bridge.World to WebAssembly guests as the wazero
// host module "box2d".
//
// Every bridge accessor becomes one kebab-case function declared with WIT
// primitive types: handles are u64, scalars f32, counts and indices s32,
// flags bool and guest buffers u32 pointers. Buffer results are written
// into guest memory through marshal.GuestMemory leases.
//
//	w := bridge.NewWorld(0, -10)
//	m := host.New(w)
//	if _, err := m.Instantiate(ctx, r); err != nil {
//		return err
//	}
//
// A contract violation (stale handle, wrong kind, out-of-bounds pointer)
// traps the calling guest with the structured error.
//
// # Contact callbacks
//
// While a guest is inside world-step, contact events are forwarded to its
// exports box2d-begin-contact(u64), box2d-end-contact(u64),
// box2d-pre-solve(u64, u64) and box2d-post-solve(u64, u64) when present.
package host
