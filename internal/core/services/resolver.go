package services

import (
	"context"

	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// Resolver translates human-supplied course names into canonical catalog
// titles via a semantic lookup against the catalog's title embeddings.
//
// By default the single nearest title is returned regardless of distance,
// so a hint matching nothing sensible still resolves to the closest
// existing title. A positive maxDistance turns that into a cutoff with a
// well-defined miss.
type Resolver struct {
	catalog     driven.VectorCollection
	embedder    driven.EmbeddingService
	maxDistance float64
}

// NewResolver creates a resolver over the catalog collection.
// maxDistance of zero disables the distance cutoff.
func NewResolver(catalog driven.VectorCollection, embedder driven.EmbeddingService, maxDistance float64) *Resolver {
	return &Resolver{
		catalog:     catalog,
		embedder:    embedder,
		maxDistance: maxDistance,
	}
}

// ResolveCourseTitle returns the canonical title closest to the hint.
// The boolean is false when the catalog is empty, the lookup fails, or
// the configured distance cutoff is exceeded.
func (r *Resolver) ResolveCourseTitle(ctx context.Context, hint string) (string, bool) {
	embedding, err := r.embedder.Embed(ctx, hint)
	if err != nil {
		logger.Warn("Resolve %q: embedding failed: %v", hint, err)
		return "", false
	}

	hits, err := r.catalog.Query(ctx, embedding, 1, nil)
	if err != nil {
		logger.Warn("Resolve %q: catalog query failed: %v", hint, err)
		return "", false
	}
	if len(hits) == 0 {
		return "", false
	}

	hit := hits[0]
	if r.maxDistance > 0 && hit.Distance > r.maxDistance {
		logger.Debug("Resolve %q: nearest %q at %.3f exceeds cutoff %.3f",
			hint, hit.ID, hit.Distance, r.maxDistance)
		return "", false
	}

	title, _ := hit.Metadata[metaTitle].(string)
	if title == "" {
		title = hit.ID
	}
	return title, true
}

// BuildFilter combines an optional exact course-title equality and an
// optional exact lesson-number equality via logical AND. Returns nil when
// both are absent.
func BuildFilter(courseTitle string, lessonNumber *int) driven.Filter {
	if courseTitle == "" && lessonNumber == nil {
		return nil
	}
	filter := driven.Filter{}
	if courseTitle != "" {
		filter[metaCourseTitle] = courseTitle
	}
	if lessonNumber != nil {
		filter[metaLessonNumber] = *lessonNumber
	}
	return filter
}
