package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
	"github.com/studium-labs/studium-cli/internal/docparse"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// defaultEmbedBatchSize is the number of chunks sent per embedding call.
const defaultEmbedBatchSize = 64

// IngestConfig configures an Ingestor.
type IngestConfig struct {
	// ChunkSize and Overlap are passed through to the document parser.
	ChunkSize int
	Overlap   int

	// BatchSize is the number of chunks embedded per store call.
	BatchSize int

	// BatchesPerSecond throttles embedding batches to stay under
	// provider rate limits. Zero disables throttling.
	BatchesPerSecond float64
}

// Ingestor loads course scripts into the chunk store.
type Ingestor struct {
	store   *ChunkStore
	opts    docparse.Options
	batch   int
	limiter *rate.Limiter
}

// NewIngestor creates an ingestor over the given store.
func NewIngestor(store *ChunkStore, cfg IngestConfig) *Ingestor {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultEmbedBatchSize
	}

	var limiter *rate.Limiter
	if cfg.BatchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.BatchesPerSecond), 1)
	}

	return &Ingestor{
		store:   store,
		opts:    docparse.Options{ChunkSize: cfg.ChunkSize, Overlap: cfg.Overlap},
		batch:   batch,
		limiter: limiter,
	}
}

// AddCourseDocument parses one course script and stores its metadata and
// content chunks. Returns the parsed course and the chunk count.
func (in *Ingestor) AddCourseDocument(ctx context.Context, path string) (*domain.Course, int, error) {
	logger.Section("Ingest Document")
	logger.Debug("Parsing %s", path)

	course, chunks, err := docparse.ParseFile(path, in.opts)
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := in.store.AddCourseMetadata(ctx, *course); err != nil {
		return nil, 0, err
	}
	if err := in.addContent(ctx, chunks); err != nil {
		return nil, 0, err
	}

	logger.Info("Ingested %q: %d chunks", course.Title, len(chunks))
	return course, len(chunks), nil
}

// AddCourseFolder indexes every course script in a folder, skipping
// titles already present in the catalog so repeated runs never duplicate
// chunks.
func (in *Ingestor) AddCourseFolder(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	existing, err := in.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, title := range existing {
		known[title] = true
	}

	var newCourses, newChunks int
	for _, entry := range entries {
		if entry.IsDir() || !isCourseScript(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		course, chunks, err := docparse.ParseFile(path, in.opts)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		if known[course.Title] {
			logger.Debug("Skipping %q: already in catalog", course.Title)
			continue
		}

		if err := in.store.AddCourseMetadata(ctx, *course); err != nil {
			return newCourses, newChunks, err
		}
		if err := in.addContent(ctx, chunks); err != nil {
			return newCourses, newChunks, err
		}

		known[course.Title] = true
		newCourses++
		newChunks += len(chunks)
		logger.Info("Ingested %q: %d chunks", course.Title, len(chunks))
	}

	return newCourses, newChunks, nil
}

// addContent stores chunks in rate-limited embedding batches.
func (in *Ingestor) addContent(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += in.batch {
		end := start + in.batch
		if end > len(chunks) {
			end = len(chunks)
		}
		if in.limiter != nil {
			if err := in.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}
		if err := in.store.AddCourseContent(ctx, chunks[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func isCourseScript(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
