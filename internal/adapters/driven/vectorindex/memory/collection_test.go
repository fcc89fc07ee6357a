package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

func seedCollection(t *testing.T) *Collection {
	t.Helper()

	c := NewCollection()
	err := c.Upsert(context.Background(), []driven.Entry{
		{ID: "a", Document: "alpha", Embedding: []float32{1, 0, 0}, Metadata: map[string]any{"course_title": "ML", "lesson_number": 1}},
		{ID: "b", Document: "bravo", Embedding: []float32{0, 1, 0}, Metadata: map[string]any{"course_title": "ML", "lesson_number": 2}},
		{ID: "c", Document: "charlie", Embedding: []float32{0, 0, 1}, Metadata: map[string]any{"course_title": "DL", "lesson_number": 1}},
	})
	require.NoError(t, err)
	return c
}

func TestCollection_Upsert_Overwrites(t *testing.T) {
	c := seedCollection(t)
	ctx := context.Background()

	err := c.Upsert(ctx, []driven.Entry{
		{ID: "a", Document: "alpha rewritten", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := c.Get(ctx, []string{"a"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alpha rewritten", got[0].Document)
}

func TestCollection_Upsert_RejectsEmptyID(t *testing.T) {
	c := NewCollection()

	err := c.Upsert(context.Background(), []driven.Entry{{Document: "no id"}})
	assert.Error(t, err)
}

func TestCollection_Get_SkipsMissing(t *testing.T) {
	c := seedCollection(t)

	got, err := c.Get(context.Background(), []string{"a", "missing", "c"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestCollection_Query_RanksByDistance(t *testing.T) {
	c := seedCollection(t)

	hits, err := c.Query(context.Background(), []float32{0.9, 0.1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

func TestCollection_Query_AppliesFilter(t *testing.T) {
	c := seedCollection(t)

	hits, err := c.Query(context.Background(), []float32{1, 0, 0}, 10, driven.Filter{
		"course_title": "ML",
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, hit := range hits {
		assert.Equal(t, "ML", hit.Metadata["course_title"])
	}
}

func TestCollection_Query_NumericFilterCrossesTypes(t *testing.T) {
	c := seedCollection(t)

	// Stored lesson numbers are ints; a float64 constraint still matches.
	hits, err := c.Query(context.Background(), []float32{1, 0, 0}, 10, driven.Filter{
		"lesson_number": float64(1),
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestCollection_Query_NonPositiveK(t *testing.T) {
	c := seedCollection(t)

	_, err := c.Query(context.Background(), []float32{1, 0, 0}, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestCollection_Clear(t *testing.T) {
	c := seedCollection(t)
	ctx := context.Background()

	require.NoError(t, c.Clear(ctx))

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestL2Distance_MismatchedLengths(t *testing.T) {
	// The excess dimension contributes its full magnitude.
	assert.InDelta(t, 1.0, l2Distance([]float32{0, 0}, []float32{0, 0, 1}), 1e-9)
	assert.InDelta(t, 1.0, l2Distance([]float32{0, 0, 1}, []float32{0, 0}), 1e-9)
}
