package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntries() []driven.Entry {
	return []driven.Entry{
		{ID: "a", Document: "alpha", Embedding: []float32{1, 0, 0}, Metadata: map[string]any{"course_title": "ML", "lesson_number": 1}},
		{ID: "b", Document: "bravo", Embedding: []float32{0, 1, 0}, Metadata: map[string]any{"course_title": "ML", "lesson_number": 2}},
		{ID: "c", Document: "charlie", Embedding: []float32{0, 0, 1}, Metadata: map[string]any{"course_title": "DL", "lesson_number": 1}},
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	coll := store.Collection("course_content")
	ctx := context.Background()

	require.NoError(t, coll.Upsert(ctx, sampleEntries()))

	got, err := coll.Get(ctx, []string{"a", "missing", "c"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Document)
	assert.Equal(t, []float32{1, 0, 0}, got[0].Embedding)
	assert.Equal(t, "ML", got[0].Metadata["course_title"])
}

func TestStore_Upsert_Overwrites(t *testing.T) {
	store := newTestStore(t)
	coll := store.Collection("course_content")
	ctx := context.Background()

	require.NoError(t, coll.Upsert(ctx, sampleEntries()))
	require.NoError(t, coll.Upsert(ctx, []driven.Entry{
		{ID: "a", Document: "alpha rewritten", Embedding: []float32{0.5, 0, 0}},
	}))

	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := coll.Get(ctx, []string{"a"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alpha rewritten", got[0].Document)
}

func TestStore_Query_RanksAndFilters(t *testing.T) {
	store := newTestStore(t)
	coll := store.Collection("course_content")
	ctx := context.Background()

	require.NoError(t, coll.Upsert(ctx, sampleEntries()))

	hits, err := coll.Query(ctx, []float32{0.9, 0.1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)

	// Metadata survives the JSON round-trip as float64, so numeric
	// filters still match.
	filtered, err := coll.Query(ctx, []float32{1, 0, 0}, 10, driven.Filter{"lesson_number": 1})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
}

func TestStore_Query_NonPositiveK(t *testing.T) {
	store := newTestStore(t)
	coll := store.Collection("course_content")

	_, err := coll.Query(context.Background(), []float32{1, 0, 0}, -1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	catalog := store.Collection("course_catalog")
	content := store.Collection("course_content")

	require.NoError(t, catalog.Upsert(ctx, []driven.Entry{{ID: "ML", Document: "ML"}}))
	require.NoError(t, content.Upsert(ctx, sampleEntries()))

	catalogCount, err := catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, catalogCount)

	contentCount, err := content.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, contentCount)

	// Clearing one collection leaves the other intact.
	require.NoError(t, content.Clear(ctx))
	catalogCount, err = catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, catalogCount)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Collection("course_content").Upsert(context.Background(), sampleEntries()))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Collection("course_content").Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFloat32SliceRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 3e7, 0}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
