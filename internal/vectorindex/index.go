package vectorindex

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDimensionMismatch means a vector's dimension differs from the
	// dimension established for the index. Mixing dimensions is a fatal
	// configuration error, never a silent truncation.
	ErrDimensionMismatch = errors.New("vectorindex: embedding dimension mismatch")

	// ErrDuplicateChunk is returned under DuplicateError when an entry's
	// chunk id is already indexed.
	ErrDuplicateChunk = errors.New("vectorindex: duplicate chunk id")

	// ErrInvalidTopK rejects non-positive retrieval depths.
	ErrInvalidTopK = errors.New("vectorindex: k must be positive")
)

// DuplicatePolicy decides what Insert does with an already-indexed chunk id.
// Either way the existing entry is left untouched.
type DuplicatePolicy int

const (
	DuplicateSkip DuplicatePolicy = iota
	DuplicateError
)

// Entry is one (chunk id, embedding) pair. Insertion order defines the
// internal position used to resolve ties and to map results back to chunk
// metadata.
type Entry struct {
	ChunkID string
	Vector  []float32
}

// Result is one search hit: the chunk id, its insertion position, and the
// inner-product similarity to the query.
type Result struct {
	ChunkID  string
	Position int
	Score    float64
}

// Index is an append-only, brute-force inner-product index over unit-norm
// vectors. One index serves one document session; there is no update or
// delete. Search on a built index is read-only and safe for concurrent use
// as long as no Insert is interleaved; re-ingestion must build a fresh
// Index and swap it in rather than mutate a live one.
type Index struct {
	dim       int
	onDup     DuplicatePolicy
	entries   []Entry
	positions map[string]int
}

// New creates an index whose dimension is fixed by the first inserted
// vector. Pass dim > 0 to pin the dimension up front (e.g. from the
// embedding model configuration).
func New(dim int, onDup DuplicatePolicy) *Index {
	return &Index{
		dim:       dim,
		onDup:     onDup,
		positions: make(map[string]int),
	}
}

// Size returns the number of stored entries.
func (ix *Index) Size() int { return len(ix.entries) }

// Dimension returns the established vector dimension, or 0 before the first
// insert of an unpinned index.
func (ix *Index) Dimension() int { return ix.dim }

// Entries returns a copy of the stored entries in insertion order, for
// callers that persist a built index elsewhere.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Insert appends entries to the index. The whole batch is validated before
// any mutation: a dimension mismatch anywhere (or a duplicate chunk id under
// DuplicateError) rejects the batch and leaves the index unchanged. Under
// DuplicateSkip, entries whose chunk id is already indexed are dropped
// without touching the stored entry.
func (ix *Index) Insert(entries []Entry) error {
	dim := ix.dim
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %s", ErrDimensionMismatch, e.ChunkID)
		}
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return fmt.Errorf("%w: index dimension %d, got %d for chunk %s", ErrDimensionMismatch, dim, len(e.Vector), e.ChunkID)
		}
		_, dupStored := ix.positions[e.ChunkID]
		_, dupBatch := seen[e.ChunkID]
		if dupStored || dupBatch {
			if ix.onDup == DuplicateError {
				return fmt.Errorf("%w: %s", ErrDuplicateChunk, e.ChunkID)
			}
			continue
		}
		seen[e.ChunkID] = struct{}{}
	}

	ix.dim = dim
	for _, e := range entries {
		if _, ok := ix.positions[e.ChunkID]; ok {
			continue
		}
		ix.positions[e.ChunkID] = len(ix.entries)
		ix.entries = append(ix.entries, e)
	}
	return nil
}

// Search scans every stored vector and returns the top min(k, size) entries
// by inner product with the query — cosine similarity, both operands being
// unit-norm. Results are ordered by strictly descending score; equal scores
// preserve insertion order. An empty index returns an empty result.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
	}
	if len(ix.entries) == 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: index dimension %d, query dimension %d", ErrDimensionMismatch, ix.dim, len(query))
	}

	results := make([]Result, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = Result{ChunkID: e.ChunkID, Position: i, Score: dot(query, e.Vector)}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
