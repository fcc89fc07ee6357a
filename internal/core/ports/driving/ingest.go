package driving

import (
	"context"

	"github.com/studium-labs/studium-cli/internal/core/domain"
)

// IngestService loads course documents into the chunk store.
type IngestService interface {
	// AddCourseDocument parses and indexes a single course script.
	// Returns the parsed course and the number of chunks stored.
	AddCourseDocument(ctx context.Context, path string) (*domain.Course, int, error)

	// AddCourseFolder indexes every course script in a folder.
	// Courses whose title is already in the catalog are skipped, so
	// re-ingesting a folder is idempotent. Returns the number of new
	// courses and chunks added.
	AddCourseFolder(ctx context.Context, dir string) (int, int, error)
}
