// Package aggregate accumulates statistics over object streams.
//
// An Accumulator tracks total counts and sizes, a size histogram, and
// per-prefix rollups with bounded memory: each object is folded in with
// O(1) work, and the prefix map is capped, with excess prefixes rolling
// into a synthetic "other" bucket. Accumulators merge associatively and
// commutatively, which makes fork-join parallel scans safe.
package aggregate
