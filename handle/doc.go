// Package handle implements the opaque handle discipline used to expose
// engine objects across the managed boundary.
//
// A Handle is a fixed-width integer. Its only legal uses are passing it back
// into an accessor for the same entity kind and comparing it for equality.
//
// # Ownership
//
// Two ownership classes share one table:
//
//	Own       - caller-owned values (shapes before attachment)
//	Dispose   - caller releases an owned value
//	Transfer  - ownership moves to the engine on attachment
//	Ref       - non-owning reference to an engine-owned value
//	Forget    - the engine destroyed a referenced value
//
// Disposing an engine-owned handle, or disposing twice, is reported as an
// error instead of reaching the engine:
//
//	table := handle.NewTable()
//	h, _ := table.Own(handle.KindShape, shape)
//	table.Dispose(h, handle.KindShape) // ok
//	table.Dispose(h, handle.KindShape) // KindDoubleDispose
//
// # Scopes
//
// Engine references carry a Scope. ScopeWorld refs stay valid until the
// engine destroys the referent. ScopeStep refs (contacts, manifolds) are
// staled in bulk when the world steps. ScopeCallback refs (contact impulses)
// are staled when the delivering callback returns.
//
// # Generations
//
// Slots are recycled, and every release bumps the slot generation encoded in
// the handle's high bits. A handle kept past its referent's lifetime fails
// lookup with KindStaleHandle rather than aliasing a newer object.
package handle
