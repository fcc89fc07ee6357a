package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mlCourseDoc = `Course Title: Intro to ML
Course Link: https://example.com/ml
Course Instructor: Dr. Jane Smith

Lesson 1: What is Machine Learning?
Lesson Link: https://example.com/ml/1
Machine learning is the study of algorithms that improve with data.

Lesson 2: Supervised Learning
Lesson Link: https://example.com/ml/2
Supervised learning maps labelled inputs to outputs.
`

const dlCourseDoc = `Course Title: Deep Learning
Course Instructor: Dr. Ada Miles

Lesson 1: Neural Networks
Neural networks stack layers of weighted units.
`

func writeCourseDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ml.txt"), []byte(mlCourseDoc), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dl.txt"), []byte(dlCourseDoc), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("ignored"), 0600))
	return dir
}

func TestIngestor_AddCourseDocument(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	ingestor := NewIngestor(store, IngestConfig{})
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "ml.txt")
	require.NoError(t, os.WriteFile(path, []byte(mlCourseDoc), 0600))

	course, chunks, err := ingestor.AddCourseDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Intro to ML", course.Title)
	assert.Len(t, course.Lessons, 2)
	assert.Positive(t, chunks)

	count, err := store.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestor_AddCourseFolder(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	ingestor := NewIngestor(store, IngestConfig{})
	ctx := context.Background()
	dir := writeCourseDir(t)

	courses, chunks, err := ingestor.AddCourseFolder(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, courses)
	assert.Positive(t, chunks)

	titles, err := store.ExistingCourseTitles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Intro to ML", "Deep Learning"}, titles)
}

func TestIngestor_AddCourseFolder_Idempotent(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	ingestor := NewIngestor(store, IngestConfig{})
	ctx := context.Background()
	dir := writeCourseDir(t)

	_, _, err := ingestor.AddCourseFolder(ctx, dir)
	require.NoError(t, err)

	courses, chunks, err := ingestor.AddCourseFolder(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, courses)
	assert.Zero(t, chunks)

	count, err := store.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngestor_AddCourseFolder_MissingDir(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	ingestor := NewIngestor(store, IngestConfig{})

	_, _, err := ingestor.AddCourseFolder(context.Background(), "/nonexistent/dir")
	assert.Error(t, err)
}

func TestIngestor_FilenameFallbackTitle(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	ingestor := NewIngestor(store, IngestConfig{})
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "untitled-course.txt")
	require.NoError(t, os.WriteFile(path, []byte("Just transcript text. No header at all."), 0600))

	course, _, err := ingestor.AddCourseDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "untitled-course", course.Title)
}
