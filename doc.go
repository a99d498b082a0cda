// Package seqgraph provides an embedded hypergraph index over token
// sequences.
//
// Every distinct subsequence that has been inserted or read is represented
// by exactly one vertex. A vertex owns one or more patterns, alternative
// decompositions into narrower vertices, so shared substrings are stored
// once and every occurrence is reachable from its content.
//
// # Quick Start
//
//	ctx := context.Background()
//	g, err := seqgraph.New(
//	    seqgraph.WithLogger(seqgraph.NewJSONLogger(slog.LevelInfo)),
//	    seqgraph.WithMetricsCollector(&seqgraph.BasicMetricsCollector{}),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
// Insert a sequence, reusing every known part of it:
//
//	root, err := g.InsertTokens(ctx, []string{"h", "e", "l", "d", "l", "d"})
//
// Read a sequence incrementally. Overlapping known subsequences are bundled
// into one vertex with one pattern per overlap:
//
//	root, err := g.ReadString(ctx, "abcab")
//
// Search for the longest alignment of a query with the graph:
//
//	res, err := g.FindTokens(ctx, []string{"l", "d"})
//	if errors.Is(err, seqgraph.ErrNoMatchingParent) {
//	    // nothing contains the query
//	}
//	fmt.Println(res.Kind, res.Root, res.Start, res.End)
//
// Cut a vertex in two:
//
//	prefix, postfix, err := g.SplitAt(ctx, root, 3)
//
// # Persistence
//
// Snapshots are versioned in any blobstore.BlobStore: in memory, a local
// directory, Badger, Amazon S3 (optionally with DynamoDB versioned commits)
// or MinIO.
//
//	store := blobstore.NewLocalStore("./data")
//	m, err := g.Snapshot(ctx, store, "docs")
//	restored, err := seqgraph.Restore(ctx, store, "docs")
//	older, err := seqgraph.RestoreVersion(ctx, store, "docs", m.Seq-1)
//
// # Concurrency
//
// A Graph is safe for concurrent use. Mutations are serialized; searches run
// in parallel with each other. FindAll fans a batch of searches out over a
// bounded number of goroutines (see WithResourceConfig).
//
// # Observability
//
// Every operation is logged through Logger, counted by the configured
// MetricsCollector (metrics/prometheus provides a Prometheus one) and traced
// with OpenTelemetry.
package seqgraph
