package testutil

import (
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/seqgraph/graph"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Tokens returns n tokens drawn uniformly from the runes of alphabet.
func (r *RNG) Tokens(n int, alphabet string) []string {
	symbols := Tokens(alphabet)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		out[i] = symbols[r.rand.Intn(len(symbols))]
	}
	return out
}

// ZipfTokens returns n tokens whose frequencies follow a Zipf distribution
// over the runes of alphabet. s=1.0 gives standard Zipf.
func (r *RNG) ZipfTokens(n int, alphabet string, s float64) []string {
	symbols := Tokens(alphabet)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		out[i] = symbols[r.zipfLocked(len(symbols), s)]
	}
	return out
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Tokens splits s into one token per rune.
func Tokens(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Canonical renders a store independently of vertex and pattern ids: one
// line per vertex with its content followed by its sorted patterns, each
// pattern written as the contents of its children. Two stores built by the
// same deterministic sequence of operations have equal canonical forms.
func Canonical(s *graph.Store) []string {
	out := make([]string, 0, s.Len())
	for id := 0; id < s.Len(); id++ {
		vid := graph.VertexID(id)
		var patterns []string
		for _, p := range s.PatternSet(vid) {
			parts := make([]string, len(p))
			for i, c := range p {
				parts[i] = s.Label(c.ID)
			}
			patterns = append(patterns, strings.Join(parts, "|"))
		}
		slices.Sort(patterns)
		out = append(out, s.Label(vid)+" = "+strings.Join(patterns, " ; "))
	}
	slices.Sort(out)
	return out
}

// PatternLabels returns the patterns of a vertex as content strings, sorted.
func PatternLabels(s *graph.Store, id graph.VertexID) []string {
	var out []string
	for _, p := range s.PatternSet(id) {
		parts := make([]string, len(p))
		for i, c := range p {
			parts[i] = s.Label(c.ID)
		}
		out = append(out, strings.Join(parts, "|"))
	}
	slices.Sort(out)
	return out
}

// FindLabel returns the first vertex whose content equals label.
func FindLabel(s *graph.Store, label string) (graph.Child, bool) {
	for id := 0; id < s.Len(); id++ {
		vid := graph.VertexID(id)
		if s.Label(vid) == label {
			return s.ExpectChild(vid), true
		}
	}
	return graph.Child{}, false
}

// DuplicateLabels returns every content shared by more than one vertex,
// mapped to the ids carrying it in ascending order.
func DuplicateLabels(s *graph.Store) map[string][]graph.VertexID {
	byLabel := make(map[string][]graph.VertexID)
	for id := 0; id < s.Len(); id++ {
		vid := graph.VertexID(id)
		l := s.Label(vid)
		byLabel[l] = append(byLabel[l], vid)
	}
	out := make(map[string][]graph.VertexID)
	for l, ids := range byLabel {
		if len(ids) > 1 {
			out[l] = ids
		}
	}
	return out
}
