// Package pkg provides the core libraries for streamgen graph stream synthesis.
//
// # Overview
//
// streamgen produces sequences of edge insertions and deletions over a fixed
// vertex set, for benchmarking dynamic and streaming graph algorithms. The
// pkg directory is organized into three main areas:
//
//  1. Generation - [permute], [generator]
//  2. Streams - [stream], [stream/sqlstream], [stream/kvstream]
//  3. Tools - [adjacency], [transform], [validate], [render], [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	generator parameters (flags or TOML)
//	         ↓
//	    [generator] package (static, dynamic or cut stream)
//	         ↓
//	    [stream] package (binary, ascii, sqlite or badger sink)
//	         ↓
//	    [validate] / [transform] / [render]
//
// # Quick Start
//
// Generate a dynamic stream and write it to a binary file:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/streamgen/pkg/generator"
//	    "github.com/matzehuels/streamgen/pkg/stream"
//	)
//
//	g, err := generator.NewDynamic(generator.DynamicParams{
//	    Seed: 1, Vertices: 1024, Density: 0.002,
//	    PortionDelete: 0.5, PortionAdditional: 0.001, Rounds: 10,
//	})
//	if err != nil {
//	    return err // GENERATION_PRECONDITION
//	}
//	out, _ := stream.CreateBinary("dynamic_1024.bin")
//	defer out.Close()
//	_, err = generator.Export(context.Background(), g, out)
//
// # Main Packages
//
// [permute] - Keyed Feistel permutation of a power-of-two domain, used to
// emit edges in pseudorandom order without materializing them.
//
// [generator] - The static Erdos-Renyi, dynamic Erdos-Renyi and cut
// generators, plus [generator.Export] to drain one into a stream.
//
// [stream] - Update types, the Reader/Writer/Seeker/Breakpointer contracts,
// binary and ASCII files, and YAML metadata that reopens a stream.
//
// [stream/sqlstream], [stream/kvstream] - SQLite and Badger backed streams.
//
// [adjacency] - Bit-packed upper-triangular adjacency matrix used by replay.
//
// [transform] - Replay, format conversion, vertex remapping and query
// injection.
//
// [validate] - Replay check of a stream and comparison with an edge list.
//
// [render] - DOT and Graphviz output of a small stream's final graph.
//
// [pipeline] - Options, TOML configuration and the build → export runner.
//
// [observability] - Hooks for generation, export and tool events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/generator/...          # Specific package
//	go test -run Example                 # Examples only
//
// [permute]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/permute
// [generator]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/generator
// [generator.Export]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/generator#Export
// [stream]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/stream
// [stream/sqlstream]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/stream/sqlstream
// [stream/kvstream]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/stream/kvstream
// [adjacency]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/adjacency
// [transform]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/transform
// [validate]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/validate
// [render]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/streamgen/pkg/observability
package pkg
