// Package transform rewrites update streams.
//
// [Convert] copies a stream between formats while normalizing it: vertex ids
// are optionally remapped to [0, n) in order of first appearance, self loops
// are dropped and INSERT/DELETE types are reassigned by replaying the stream
// against an adjacency matrix. With [ConvertOptions.Static] only the final
// graph is written, as INSERT updates.
//
// [Queryify] interleaves bursts of random QUERY updates into a stream so that
// a given fraction of the output consists of queries.
//
// [Streamify] walks the graph formed by a stream's edges through a series of
// density checkpoints, optionally with random insert/delete churn.
//
// [Replay] collapses a stream into its final graph.
//
// All functions read the source up to its next breakpoint and check the
// context between batches.
package transform
