package seqgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/graph"
	"github.com/hupe1980/seqgraph/internal/insert"
	"github.com/hupe1980/seqgraph/internal/read"
	"github.com/hupe1980/seqgraph/internal/resource"
	"github.com/hupe1980/seqgraph/internal/traversal"
)

type (
	// VertexID is the dense index of a vertex.
	VertexID = graph.VertexID
	// PatternID identifies one decomposition of a vertex.
	PatternID = graph.PatternID
	// Child references a vertex together with its width.
	Child = graph.Child
	// Pattern is an ordered sequence of children.
	Pattern = graph.Pattern
	// Stats summarizes a graph.
	Stats = graph.Stats
	// FinishedState is the result of a search.
	FinishedState = traversal.FinishedState
	// Kind classifies where a match lies inside its root.
	Kind = traversal.Kind
)

const (
	Complete = traversal.Complete
	Prefix   = traversal.Prefix
	Postfix  = traversal.Postfix
	Range    = traversal.Range
)

// Graph is a thread-safe hypergraph index over token sequences.
//
// Mutating operations (Insert*, ReadSequence, SplitAt, Prefix, Postfix) take
// the write lock for their whole duration; searches and accessors share the
// read lock.
type Graph struct {
	mu    sync.RWMutex
	store *graph.Store
	in    *insert.Inserter

	codec       codec.Codec
	compression Compression
	metrics     MetricsCollector
	logger      *Logger
	tel         *telemetry
	rc          *resource.Controller
	validate    bool
}

// New creates an empty graph.
func New(optFns ...Option) (*Graph, error) {
	return newGraph(graph.New(), optFns...)
}

func newGraph(store *graph.Store, optFns ...Option) (*Graph, error) {
	opts := applyOptions(optFns)
	if !opts.compression.Valid() {
		return nil, fmt.Errorf("seqgraph: invalid compression %d", opts.compression)
	}

	tel, err := newTelemetry(opts.tracerProvider, opts.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("seqgraph: failed to create telemetry: %w", err)
	}

	g := &Graph{
		store:       store,
		codec:       opts.codec,
		compression: opts.compression,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
		tel:         tel,
		rc:          resource.NewController(opts.resource),
		validate:    opts.validate,
	}
	g.in = g.newInserter()
	return g, nil
}

func (g *Graph) newInserter() *insert.Inserter {
	return insert.New(g.store)
}

func isSearchMiss(err error) bool {
	var si *ErrSingleIndex
	return errors.Is(err, ErrNoMatchingParent) || errors.Is(err, ErrMismatch) || errors.As(err, &si)
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Len()
}

// Stats returns counters describing the graph.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Stats()
}

// Validate checks every structural invariant of the graph.
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return translateError(g.store.Validate())
}

// Leaf returns the vertex of token.
func (g *Graph) Leaf(token string) (Child, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Leaf(token)
}

// Lookup returns the pattern of leaves for tokens. Every token must be known.
func (g *Graph) Lookup(tokens []string) (Pattern, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lookup(tokens)
}

func (g *Graph) lookup(tokens []string) (Pattern, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyPatterns
	}
	out := make(Pattern, len(tokens))
	for i, t := range tokens {
		c, ok := g.store.Leaf(t)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownToken, t)
		}
		out[i] = c
	}
	return out, nil
}

// Content returns the tokens of vertex id.
func (g *Graph) Content(id VertexID) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.store.Vertex(id); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	return g.store.Content(id), nil
}

// Label returns the concatenated tokens of vertex id.
func (g *Graph) Label(id VertexID) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.store.Vertex(id); !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	return g.store.Label(id), nil
}

// Patterns returns every decomposition of vertex id.
func (g *Graph) Patterns(id VertexID) ([]Pattern, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.store.Vertex(id); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	return g.store.PatternSet(id), nil
}

// Roots returns the ids of all vertices that occur in no wider vertex, in
// ascending order.
func (g *Graph) Roots() []VertexID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	bm := g.store.Roots()
	out := make([]VertexID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, VertexID(it.Next()))
	}
	return out
}

// checkPattern verifies that every child references an existing vertex of
// the cached width.
func (g *Graph) checkPattern(p Pattern) error {
	for _, c := range p {
		v, ok := g.store.Vertex(c.ID)
		if !ok || v.Width != c.Width {
			return fmt.Errorf("%w: %v", ErrUnknownVertex, c)
		}
	}
	return nil
}

// write runs fn under the write lock and returns the number of vertices it
// created.
func (g *Graph) write(fn func() (Child, error)) (Child, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	before := g.store.Len()
	c, err := fn()
	if err == nil && g.validate {
		err = g.store.Validate()
	}
	return c, g.store.Len() - before, err
}

// InsertTokens returns the vertex representing tokens, creating leaves and
// vertices as needed.
func (g *Graph) InsertTokens(ctx context.Context, tokens []string) (Child, error) {
	return g.mutate(ctx, "InsertTokens", len(tokens), func() (Child, error) {
		return g.in.InsertTokens(tokens)
	})
}

// Insert returns the vertex representing query, a sequence of existing
// vertices, creating it if needed.
func (g *Graph) Insert(ctx context.Context, query Pattern) (Child, error) {
	return g.mutate(ctx, "Insert", len(query), func() (Child, error) {
		if err := g.checkPattern(query); err != nil {
			return Child{}, err
		}
		return g.in.Insert(query)
	})
}

// InsertPatterns returns the vertex with all of patterns as decompositions.
// Every pattern must expand to the same tokens; otherwise ErrPatternMismatch
// is returned and the graph is left unchanged.
func (g *Graph) InsertPatterns(ctx context.Context, patterns []Pattern) (Child, error) {
	return g.mutate(ctx, "InsertPatterns", len(patterns), func() (Child, error) {
		for _, p := range patterns {
			if err := g.checkPattern(p); err != nil {
				return Child{}, err
			}
		}
		return g.in.InsertPatterns(patterns)
	})
}

func (g *Graph) mutate(ctx context.Context, op string, queryLen int, fn func() (Child, error)) (Child, error) {
	ctx, span := g.tel.start(ctx, op, attribute.Int("query.len", queryLen))
	start := time.Now()

	c, created, err := g.write(fn)
	err = translateError(err)
	if err == nil {
		span.SetAttributes(attribute.Int("vertex.id", int(c.ID)), attribute.Int("vertex.width", c.Width))
	}
	g.tel.end(ctx, span, op, start, created, err)
	g.metrics.RecordInsert(c.Width, time.Since(start), err)
	g.logger.LogInsert(ctx, queryLen, c, err)
	return c, err
}

// ReadSequence reads tokens incrementally and returns the vertex for the
// whole sequence. Known subsequences are reused; overlapping ones are
// bundled into a vertex with one pattern per overlap.
func (g *Graph) ReadSequence(ctx context.Context, tokens []string) (Child, error) {
	ctx, span := g.tel.start(ctx, "ReadSequence", attribute.Int("tokens", len(tokens)))
	start := time.Now()

	var r *read.Reader
	c, created, err := g.write(func() (Child, error) {
		r = read.New(g.in)
		return r.ReadSequence(tokens)
	})

	err = translateError(err)
	if err == nil {
		counters := r.Counters()
		span.SetAttributes(
			attribute.Int("vertex.id", int(c.ID)),
			attribute.Int("read.blocks", counters.Blocks),
			attribute.Int("read.bundles", counters.Bundles),
		)
	}
	g.tel.end(ctx, span, "ReadSequence", start, created, err)
	g.metrics.RecordRead(len(tokens), time.Since(start), err)
	g.logger.LogRead(ctx, len(tokens), c, err)
	return c, err
}

// ReadString reads the runes of s as tokens.
func (g *Graph) ReadString(ctx context.Context, s string) (Child, error) {
	tokens := make([]string, 0, len(s))
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return g.ReadSequence(ctx, tokens)
}

// FindAncestor returns the longest alignment of query with the graph.
func (g *Graph) FindAncestor(ctx context.Context, query Pattern) (*FinishedState, error) {
	return g.search(ctx, "find_ancestor", query, func(s *traversal.Searcher) (*FinishedState, error) {
		return s.FindAncestor(query)
	})
}

// FindParent returns the direct parent of query's first element that
// contains the whole query.
func (g *Graph) FindParent(ctx context.Context, query Pattern) (*FinishedState, error) {
	return g.search(ctx, "find_parent", query, func(s *traversal.Searcher) (*FinishedState, error) {
		return s.FindParent(query)
	})
}

// FindTokens is FindAncestor over the leaves of tokens.
func (g *Graph) FindTokens(ctx context.Context, tokens []string) (*FinishedState, error) {
	query, err := g.Lookup(tokens)
	if err != nil {
		return nil, err
	}
	return g.FindAncestor(ctx, query)
}

func (g *Graph) search(ctx context.Context, op string, query Pattern, fn func(*traversal.Searcher) (*FinishedState, error)) (*FinishedState, error) {
	ctx, span := g.tel.start(ctx, op, attribute.Int("query.len", len(query)))
	start := time.Now()

	res, err := g.withReadLock(func() (*FinishedState, error) {
		return g.searchLocked(query, fn)
	})

	err = translateError(err)
	if err == nil {
		span.SetAttributes(
			attribute.String("result.kind", res.Kind.String()),
			attribute.Int("result.root", int(res.Root.ID)),
		)
	}
	g.tel.end(ctx, span, op, start, 0, err)
	g.metrics.RecordSearch(op, len(query), time.Since(start), err)
	g.logger.LogSearch(ctx, op, len(query), res, err)
	return res, err
}

func (g *Graph) withReadLock(fn func() (*FinishedState, error)) (*FinishedState, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn()
}

func (g *Graph) searchLocked(query Pattern, fn func(*traversal.Searcher) (*FinishedState, error)) (*FinishedState, error) {
	if err := g.checkPattern(query); err != nil {
		return nil, err
	}
	return fn(traversal.NewSearcher(g.store))
}

// SearchResult is the outcome of one query of FindAll.
type SearchResult struct {
	State *FinishedState
	Err   error
}

// FindAll runs FindAncestor for every query in parallel, bounded by
// ResourceConfig.MaxConcurrentSearches. Per-query failures are reported in
// the results; the returned error is only set when ctx ends first.
func (g *Graph) FindAll(ctx context.Context, queries []Pattern) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]SearchResult, len(queries))

	g.mu.RLock()
	defer g.mu.RUnlock()

	eg, egCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		eg.Go(func() error {
			if err := g.rc.AcquireSearch(egCtx); err != nil {
				return err
			}
			defer g.rc.ReleaseSearch()

			start := time.Now()
			res, err := g.searchLocked(q, func(s *traversal.Searcher) (*FinishedState, error) {
				return s.FindAncestor(q)
			})
			err = translateError(err)
			g.metrics.RecordSearch("find_ancestor", len(q), time.Since(start), err)
			results[i] = SearchResult{State: res, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SplitAt returns the vertices for the first offset tokens of v and the
// rest, adding the pattern [prefix, postfix] to v.
func (g *Graph) SplitAt(ctx context.Context, v Child, offset int) (Child, Child, error) {
	var post Child
	pre, err := g.split(ctx, "SplitAt", v, offset, func() (Child, error) {
		pre, p, err := g.in.SplitAt(v, offset)
		post = p
		return pre, err
	})
	if err != nil {
		return Child{}, Child{}, err
	}
	return pre, post, nil
}

// Prefix returns the vertex for the first n tokens of v.
func (g *Graph) Prefix(ctx context.Context, v Child, n int) (Child, error) {
	return g.split(ctx, "Prefix", v, n, func() (Child, error) {
		return g.in.Prefix(v, n)
	})
}

// Postfix returns the vertex for the last n tokens of v.
func (g *Graph) Postfix(ctx context.Context, v Child, n int) (Child, error) {
	return g.split(ctx, "Postfix", v, n, func() (Child, error) {
		return g.in.Postfix(v, n)
	})
}

func (g *Graph) split(ctx context.Context, op string, v Child, offset int, fn func() (Child, error)) (Child, error) {
	ctx, span := g.tel.start(ctx, op,
		attribute.Int("vertex.id", int(v.ID)),
		attribute.Int("offset", offset),
	)
	start := time.Now()

	c, created, err := g.write(func() (Child, error) {
		if err := g.checkPattern(Pattern{v}); err != nil {
			return Child{}, err
		}
		return fn()
	})
	err = translateError(err)
	g.tel.end(ctx, span, op, start, created, err)
	g.metrics.RecordSplit(time.Since(start), err)
	g.logger.LogSplit(ctx, v, offset, err)
	return c, err
}
