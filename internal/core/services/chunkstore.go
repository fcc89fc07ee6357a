package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// DefaultMaxResults is the fallback result limit when none is configured.
const DefaultMaxResults = 5

// Metadata keys used on the catalog and content collections.
const (
	metaCourseTitle  = "course_title"
	metaLessonNumber = "lesson_number"
	metaChunkIndex   = "chunk_index"
	metaTitle        = "title"
	metaInstructor   = "instructor"
	metaCourseLink   = "course_link"
	metaLessons      = "lessons_json"
	metaLessonCount  = "lesson_count"
)

// ChunkStoreConfig configures a ChunkStore.
type ChunkStoreConfig struct {
	// MaxResults is the default search result limit. A value of zero or
	// less is a configuration error and is clamped to DefaultMaxResults;
	// it never silently disables retrieval.
	MaxResults int

	// ResolveMaxDistance, when positive, is the maximum distance at which
	// a course-name hint still resolves. Zero keeps the default policy of
	// always returning the nearest title.
	ResolveMaxDistance float64
}

// ChunkStore owns the two logical collections of the system: the course
// catalog (one entry per course) and the course content (many chunks per
// course). It translates text queries into embeddings and resolves fuzzy
// course names and lesson numbers into precise metadata filters.
type ChunkStore struct {
	catalog    driven.VectorCollection
	content    driven.VectorCollection
	embedder   driven.EmbeddingService
	resolver   *Resolver
	maxResults int
}

// lessonMeta is the JSON encoding of a lesson inside catalog metadata.
type lessonMeta struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// NewChunkStore creates a chunk store over the given collections.
func NewChunkStore(
	catalog, content driven.VectorCollection,
	embedder driven.EmbeddingService,
	cfg ChunkStoreConfig,
) *ChunkStore {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		logger.Warn("invalid max results %d, clamping to %d", maxResults, DefaultMaxResults)
		maxResults = DefaultMaxResults
	}

	return &ChunkStore{
		catalog:    catalog,
		content:    content,
		embedder:   embedder,
		resolver:   NewResolver(catalog, embedder, cfg.ResolveMaxDistance),
		maxResults: maxResults,
	}
}

// MaxResults returns the configured default result limit.
func (s *ChunkStore) MaxResults() int {
	return s.maxResults
}

// Resolver returns the course-name resolver backed by this store's catalog.
func (s *ChunkStore) Resolver() *Resolver {
	return s.resolver
}

// AddCourseMetadata inserts or overwrites the catalog entry for a course.
// The entry is keyed by title; the lesson list is stored as structured
// metadata so outline and link lookups need no second collection.
func (s *ChunkStore) AddCourseMetadata(ctx context.Context, course domain.Course) error {
	lessons := make([]lessonMeta, len(course.Lessons))
	for i, l := range course.Lessons {
		lessons[i] = lessonMeta{Number: l.Number, Title: l.Title, Link: l.Link}
	}
	lessonsJSON, err := json.Marshal(lessons)
	if err != nil {
		return fmt.Errorf("encode lessons: %w", err)
	}

	embedding, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	entry := driven.Entry{
		ID:        course.Title,
		Document:  course.Title,
		Embedding: embedding,
		Metadata: map[string]any{
			metaTitle:       course.Title,
			metaInstructor:  course.Instructor,
			metaCourseLink:  course.Link,
			metaLessons:     string(lessonsJSON),
			metaLessonCount: len(course.Lessons),
		},
	}

	logger.Debug("Catalog upsert: %q (%d lessons)", course.Title, len(course.Lessons))
	if err := s.catalog.Upsert(ctx, []driven.Entry{entry}); err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}
	return nil
}

// AddCourseContent inserts content chunks with their provenance metadata.
// An empty chunk list is a no-op.
func (s *ChunkStore) AddCourseContent(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	entries := make([]driven.Entry, len(chunks))
	for i, c := range chunks {
		metadata := map[string]any{
			metaCourseTitle: c.CourseTitle,
			metaChunkIndex:  c.Index,
		}
		if c.LessonNumber != nil {
			metadata[metaLessonNumber] = *c.LessonNumber
		}
		entries[i] = driven.Entry{
			ID:        fmt.Sprintf("%s_%d", c.CourseTitle, c.Index),
			Document:  c.Content,
			Embedding: embeddings[i],
			Metadata:  metadata,
		}
	}

	logger.Debug("Content upsert: %d chunks", len(entries))
	if err := s.content.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("upsert content entries: %w", err)
	}
	return nil
}

// Search runs a semantic query over the course content, optionally
// narrowed by a fuzzy course name and an exact lesson number. A limit of
// zero or less falls back to the configured default. Failures are
// reported inside the result set so they can reach the model verbatim.
func (s *ChunkStore) Search(
	ctx context.Context, query, courseName string, lessonNumber *int, limit int,
) domain.SearchResults {
	logger.Section("Chunk Search")
	logger.Debug("Query: %q course=%q lesson=%v limit=%d", query, courseName, lessonNumber, limit)

	var courseTitle string
	if courseName != "" {
		resolved, ok := s.resolver.ResolveCourseTitle(ctx, courseName)
		if !ok {
			logger.Info("No course matched hint %q", courseName)
			return domain.ErrorResults(fmt.Sprintf("No course found matching '%s'", courseName))
		}
		logger.Debug("Resolved course hint %q -> %q", courseName, resolved)
		courseTitle = resolved
	}

	if limit <= 0 {
		limit = s.maxResults
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	filter := BuildFilter(courseTitle, lessonNumber)
	hits, err := s.content.Query(ctx, embedding, limit, filter)
	if err != nil {
		return domain.ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	results := domain.SearchResults{
		Documents: make([]string, 0, len(hits)),
		Metadata:  make([]domain.ChunkMeta, 0, len(hits)),
		Distances: make([]float64, 0, len(hits)),
	}
	for _, hit := range hits {
		results.Documents = append(results.Documents, hit.Document)
		results.Metadata = append(results.Metadata, chunkMetaFrom(hit.Metadata))
		results.Distances = append(results.Distances, hit.Distance)
	}
	logger.Debug("Search hits: %d", len(hits))
	return results
}

// ExistingCourseTitles returns every course title in the catalog.
func (s *ChunkStore) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.ID)
	}
	return titles, nil
}

// CourseCount returns the number of courses in the catalog.
func (s *ChunkStore) CourseCount(ctx context.Context) (int, error) {
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return count, nil
}

// CourseLink returns the link for an exact course title, empty on no match.
func (s *ChunkStore) CourseLink(ctx context.Context, title string) (string, error) {
	entry, ok, err := s.catalogEntry(ctx, title)
	if err != nil || !ok {
		return "", err
	}
	link, _ := entry.Metadata[metaCourseLink].(string)
	return link, nil
}

// LessonLink returns the deep link for a lesson, empty on no match.
func (s *ChunkStore) LessonLink(ctx context.Context, title string, lessonNumber int) (string, error) {
	outline, err := s.CourseOutline(ctx, title)
	if err != nil {
		if err == domain.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	for _, l := range outline.Lessons {
		if l.Number == lessonNumber {
			return l.Link, nil
		}
	}
	return "", nil
}

// CourseOutline returns the catalog view of an exact course title.
// Returns domain.ErrNotFound when the title is not in the catalog.
func (s *ChunkStore) CourseOutline(ctx context.Context, title string) (*domain.CourseOutline, error) {
	entry, ok, err := s.catalogEntry(ctx, title)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	var lessons []lessonMeta
	if raw, _ := entry.Metadata[metaLessons].(string); raw != "" {
		if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
			return nil, fmt.Errorf("decode lessons for %q: %w", title, err)
		}
	}

	outline := &domain.CourseOutline{
		CourseTitle: title,
		Lessons:     make([]domain.Lesson, len(lessons)),
	}
	outline.CourseLink, _ = entry.Metadata[metaCourseLink].(string)
	outline.Instructor, _ = entry.Metadata[metaInstructor].(string)
	for i, l := range lessons {
		outline.Lessons[i] = domain.Lesson{Number: l.Number, Title: l.Title, Link: l.Link}
	}
	return outline, nil
}

// Clear removes every catalog entry and content chunk.
func (s *ChunkStore) Clear(ctx context.Context) error {
	if err := s.catalog.Clear(ctx); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	if err := s.content.Clear(ctx); err != nil {
		return fmt.Errorf("clear content: %w", err)
	}
	return nil
}

func (s *ChunkStore) catalogEntry(ctx context.Context, title string) (driven.Entry, bool, error) {
	entries, err := s.catalog.Get(ctx, []string{title})
	if err != nil {
		return driven.Entry{}, false, fmt.Errorf("get catalog entry: %w", err)
	}
	if len(entries) == 0 {
		return driven.Entry{}, false, nil
	}
	return entries[0], true, nil
}

func chunkMetaFrom(metadata map[string]any) domain.ChunkMeta {
	meta := domain.ChunkMeta{}
	meta.CourseTitle, _ = metadata[metaCourseTitle].(string)
	if idx, ok := toInt(metadata[metaChunkIndex]); ok {
		meta.ChunkIndex = idx
	}
	if n, ok := toInt(metadata[metaLessonNumber]); ok {
		meta.LessonNumber = &n
	}
	return meta
}

// toInt normalises the numeric encodings metadata can come back as.
// JSON round-trips through persistent collections produce float64.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
