// Package pkg provides the libraries behind strata, a deterministic layered
// layout engine for directed diagrams.
//
// # Overview
//
// Strata takes a diagram (nodes, edges, clusters) and computes where every
// node goes and how every edge is drawn. Identical input and configuration
// always produce byte-identical output, so layouts can be cached by content
// hash and pinned in regression snapshots.
//
// # Architecture
//
// The typical data flow:
//
//	diagram JSON
//	     ↓
//	[graph] (decode and validate the diagram)
//	     ↓
//	[layout] (cycle removal, ranks, ordering, coordinates, routing, clusters)
//	     ↓
//	[pipeline] (cache, hooks, rendering)
//	     ↓
//	layout JSON / DOT / SVG
//
// # Quick Start
//
//	d, _ := graph.ReadDiagramFile("diagram.json")
//	l, err := layout.Compute(d, layout.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(l.Stats.CrossingCount)
//
// # Main Packages
//
// ## Layout Core
//
// [graph] - The diagram IR: nodes, edges, clusters and flow direction, with
// JSON and BSON encodings.
//
// [dag] - Index-based working graph used during layout, including virtual
// nodes for long edges and crossing counting between adjacent ranks.
//
// [dag/transform] - Cycle removal strategies (greedy, dfs-back, mfas,
// hybrid) and strongly connected component detection.
//
// [layout] - The layered pipeline and its result type. [layout/ordering]
// holds the barycenter crossing minimizer.
//
// [errors] - Coded errors shared by every package and mapped to HTTP
// statuses by the server.
//
// ## Infrastructure
//
// [pipeline] - Cached layout and rendering used by the CLI and the HTTP
// server, plus TOML configuration files.
//
// [cache] - File, Redis and null caches keyed by content hash.
//
// [snapshot] - Named layout snapshots in files or MongoDB, with regression
// checks.
//
// [render/nodelink] - DOT export with pinned positions and SVG via Graphviz.
//
// [observability] - Hook interfaces for metrics and tracing; [otelhooks]
// implements them with OpenTelemetry.
//
// [server] - The chi-based HTTP API.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test -short ./pkg/...          # Skip Graphviz rendering
//	go test -run Example ./pkg/...    # Examples only
//
// MongoDB tests run only when STRATA_TEST_MONGO_URI is set.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/graph
// [dag]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/layout
// [layout/ordering]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/layout/ordering
// [errors]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/cache
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/snapshot
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/observability
// [otelhooks]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/observability/otelhooks
// [server]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/server
package pkg
