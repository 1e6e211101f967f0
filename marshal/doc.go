// Package marshal implements the buffer protocol for numeric arrays that
// cross the managed boundary.
//
// # Result buffers
//
// Each operation writes into a caller-supplied buffer of a fixed type whose
// length is the operation's element count:
//
//	Vec2           [2]float32  x, y
//	ManifoldPoint  [4]float32  local x, local y, normal impulse, tangent impulse
//	WorldManifold  [8]float32  normal, 2 points, 2 separations
//	Filter         [3]int16    mask, category, group
//	Impulses       [2]float32  one per manifold point
//
// Multi-point results come with an explicit count; slots past the count are
// left untouched and must not be read.
//
// # Input arrays
//
// Variable-length input travels with an explicit element count. EachPair
// walks exactly n (x, y) pairs and rejects a source holding fewer than 2n
// values before anything reaches the engine.
//
// # Guest memory
//
// GuestMemory wraps a wazero api.Memory. Transfers run under a Lease that
// bounds-checks the whole range and excludes overlapping leases, including
// reentrant ones from the same goroutine:
//
//	l, err := mem.Acquire(ptr, 8*marshal.SizeF32)
//	if err != nil {
//	    return err
//	}
//	defer l.Release()
//	return l.PutF32s(buf[:])
//
// The callee never keeps a reference into guest memory after Release.
package marshal
