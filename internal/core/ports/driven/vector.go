package driven

import "context"

// VectorCollection is an opaque nearest-neighbour store holding documents
// with embeddings and metadata. The chunk store layers its catalog and
// content collections on top of this port.
//
// Implementations may include:
//   - In-memory brute-force scan (tests, small corpora)
//   - SQLite-persisted collections
type VectorCollection interface {
	// Upsert inserts or overwrites entries keyed by ID.
	Upsert(ctx context.Context, entries []Entry) error

	// Get retrieves entries by ID. Missing IDs are skipped, not errors.
	Get(ctx context.Context, ids []string) ([]Entry, error)

	// Query finds the k nearest neighbours to the query vector,
	// restricted to entries whose metadata satisfies the filter.
	// k must be positive.
	Query(ctx context.Context, embedding []float32, k int, filter Filter) ([]Hit, error)

	// List returns every entry in the collection.
	List(ctx context.Context) ([]Entry, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Entry is one stored item: a document with its embedding and metadata.
type Entry struct {
	// ID uniquely identifies the entry within its collection.
	ID string

	// Document is the stored text.
	Document string

	// Embedding is the vector representation of the document.
	Embedding []float32

	// Metadata holds string or numeric values used for filtering.
	Metadata map[string]any
}

// Hit is a nearest-neighbour match.
type Hit struct {
	Entry

	// Distance is the L2 distance to the query; shorter = closer.
	Distance float64
}

// Filter is a conjunction of exact-match metadata constraints.
// A nil or empty filter matches every entry.
type Filter map[string]any

// Matches reports whether the metadata satisfies every constraint.
// Numeric values compare by value so int and float encodings of the
// same number are equal (JSON round-trips produce float64).
func (f Filter) Matches(metadata map[string]any) bool {
	for key, want := range f {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
