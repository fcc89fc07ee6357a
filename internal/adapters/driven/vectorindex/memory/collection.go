// Package memory provides an in-memory vector collection.
//
// Entries live in a map guarded by a RWMutex and queries run a
// brute-force scan. Suitable for tests and small corpora; use the
// sqlite collection for anything that should survive a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

// Ensure Collection implements the interface.
var _ driven.VectorCollection = (*Collection)(nil)

// Collection is an in-memory vector store.
type Collection struct {
	mu      sync.RWMutex
	entries map[string]driven.Entry
}

// NewCollection creates an empty in-memory collection.
func NewCollection() *Collection {
	return &Collection{
		entries: make(map[string]driven.Entry),
	}
}

// Upsert inserts or overwrites entries keyed by ID.
func (c *Collection) Upsert(_ context.Context, entries []driven.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("upsert entry: empty ID")
		}
		c.entries[entry.ID] = entry
	}
	return nil
}

// Get retrieves entries by ID. Missing IDs are skipped.
func (c *Collection) Get(_ context.Context, ids []string) ([]driven.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]driven.Entry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := c.entries[id]; ok {
			results = append(results, entry)
		}
	}
	return results, nil
}

// Query scans every entry, keeps those matching the filter and returns
// the k nearest by L2 distance.
func (c *Collection) Query(_ context.Context, embedding []float32, k int, filter driven.Filter) ([]driven.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("number of requested results must be positive, got %d", k)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	hits := make([]driven.Hit, 0, len(c.entries))
	for _, entry := range c.entries {
		if !filter.Matches(entry.Metadata) {
			continue
		}
		hits = append(hits, driven.Hit{
			Entry:    entry,
			Distance: l2Distance(embedding, entry.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// List returns every entry in the collection.
func (c *Collection) List(_ context.Context) ([]driven.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]driven.Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		results = append(results, entry)
	}
	return results, nil
}

// Count returns the number of entries.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Clear removes every entry.
func (c *Collection) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]driven.Entry)
	return nil
}

// Close is a no-op for the in-memory collection.
func (c *Collection) Close() error {
	return nil
}

// l2Distance computes the Euclidean distance between two vectors.
// Mismatched lengths compare over the shorter prefix plus the excess
// magnitude of the longer vector.
func l2Distance(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	for i := n; i < len(a); i++ {
		sum += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		sum += float64(b[i]) * float64(b[i])
	}
	return math.Sqrt(sum)
}
