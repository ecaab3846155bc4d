// Package stream defines graph update streams: the update data model, the
// capability interfaces a stream sink or source implements, and file-backed
// implementations.
//
// # Data Model
//
// An [Update] pairs an [UpdateType] with an [Edge]. Generators only produce
// [Insert] and [Delete]; [Breakpoint] and [Query] are reserved for the stream
// layer and tools. Edges are unordered; [Edge.Canonical] yields the (low, high)
// form used for comparison.
//
// # Capabilities
//
// Instead of a single class hierarchy, streams are described by small
// interfaces: [Reader], [Writer], [Seeker], [Breakpointer] and
// [MetadataSerializer]. Code that only exports updates depends on [Writer];
// tools that rewrite streams ask for the capabilities they need. [Stream]
// bundles all of them.
//
// # Implementations
//
//   - [BinaryFile]: 12-byte header, 9-byte packed records, seekable
//   - [ASCIIFile]: "vertices updates" header line, one update per line
//   - sqlstream.Store (package sqlstream): SQLite table, seekable
//
// # Reading
//
// [Reader.ReadUpdates] fills a buffer and stops at breakpoints. [ReadAll] and
// [Collect] drain a reader up to the next breakpoint:
//
//	s, _ := stream.OpenBinary("erdos.bin")
//	defer s.Close()
//	n, err := stream.ReadAll(s, func(u stream.Update) error {
//	    fmt.Println(u)
//	    return nil
//	})
//
// # Metadata
//
// [Metadata] captures a stream's configuration as YAML so another process can
// reopen it with [FromMetadata]. Additional kinds are added with [Register].
//
// # Concurrency
//
// Streams are not safe for concurrent use; each has a single cursor shared
// by reads and writes.
package stream
