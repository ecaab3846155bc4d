// Package generator synthesizes edge-update streams for benchmarking graph
// streaming algorithms.
//
// Three generators are provided:
//
//   - [Static]: a random G(n, p) graph emitted as INSERT updates only. Edges
//     are enumerated lazily through a [permute.Set], so memory use is O(1)
//     regardless of n.
//   - [Dynamic]: a random target graph hidden inside churn. Selected target
//     edges are deleted and reinserted, and selected non-target edges are
//     inserted and deleted again, so the final graph equals the target set.
//   - [Cut]: two paths joined repeatedly across a single cut, stressing
//     connectivity sketches that must track one changing bridge.
//
// All generators implement [Generator]: a single-pass cursor that reports the
// vertex count and the exact number of updates it will produce. [Export]
// drains a generator into any [stream.Writer] in batches.
//
// # Preconditions
//
// Constructors validate their parameters and fail with an error carrying
// [errors.ErrCodeGenerationPrecondition]. Once constructed, a generator never
// fails.
//
// # Determinism
//
// Given identical parameters and seed, every generator emits the identical
// sequence of updates.
package generator
