// Package mapping holds the bridge's stable encodings for the engine's
// discriminated kinds.
//
// Each kind is a closed set of small integers (0..N-1) paired explicitly
// with the engine's internal value, so the wire contract does not move
// when the engine renumbers. An engine value with no pair maps to -1;
// callers treat -1 as a forward-compatibility case. Reverse lookups of a
// bridge value outside the set report ok=false.
package mapping
