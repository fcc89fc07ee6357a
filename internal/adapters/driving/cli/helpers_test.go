package cli

import (
	"context"
	"errors"
	"os"

	"github.com/studium-labs/studium-cli/internal/adapters/driven/config/file"
	vecmemory "github.com/studium-labs/studium-cli/internal/adapters/driven/vectorindex/memory"
	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
	"github.com/studium-labs/studium-cli/internal/core/services"
)

// stubEmbedder returns a fixed vector for every text so any course hint
// resolves against the single seeded course.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int              { return 3 }
func (stubEmbedder) ModelName() string            { return "stub-embedder" }
func (stubEmbedder) Ping(_ context.Context) error { return nil }
func (stubEmbedder) Close() error                 { return nil }

type stubAssistant struct {
	answer driving.Answer
	err    error
}

func (s *stubAssistant) Answer(_ context.Context, _, _ string) (driving.Answer, error) {
	return s.answer, s.err
}

func (s *stubAssistant) Analytics(_ context.Context) (driving.Analytics, error) {
	if s.err != nil {
		return driving.Analytics{}, s.err
	}
	return driving.Analytics{TotalCourses: 1, CourseTitles: []string{"Intro to ML"}}, nil
}

type stubIngest struct {
	err error
}

func (s *stubIngest) AddCourseDocument(_ context.Context, _ string) (*domain.Course, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return &domain.Course{
		Title:   "Intro to ML",
		Lessons: []domain.Lesson{{Number: 1, Title: "What is Machine Learning?"}},
	}, 3, nil
}

func (s *stubIngest) AddCourseFolder(_ context.Context, _ string) (int, int, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	return 2, 7, nil
}

// setupTestServices injects in-memory services so commands run without
// touching the real config or index. The returned cleanup restores the
// previous wiring.
func setupTestServices() func() {
	oldAssistant := assistantService
	oldIngest := ingestService
	oldChunkStore := chunkStore
	oldRegistry := toolRegistry
	oldConfig := configStore
	oldBootstrapped := bootstrapped

	store := services.NewChunkStore(
		vecmemory.NewCollection(),
		vecmemory.NewCollection(),
		stubEmbedder{},
		services.ChunkStoreConfig{MaxResults: 5},
	)
	store.AddCourseMetadata(context.Background(), domain.Course{ //nolint:errcheck
		Title:      "Intro to ML",
		Link:       "https://example.com/ml",
		Instructor: "Dr. Jane Smith",
		Lessons: []domain.Lesson{
			{Number: 1, Title: "What is Machine Learning?", Link: "https://example.com/ml/1"},
			{Number: 2, Title: "Supervised Learning", Link: "https://example.com/ml/2"},
		},
	})

	configDir, _ := os.MkdirTemp("", "studium-cli-test")
	cfg, _ := file.NewConfigStore(configDir)

	assistantService = &stubAssistant{answer: driving.Answer{
		Text:      "Gradient descent minimises loss.",
		SessionID: "session-1",
		Sources: []domain.Source{
			{Text: "Intro to ML - Lesson 1", Link: "https://example.com/ml/1"},
		},
	}}
	ingestService = &stubIngest{}
	chunkStore = store
	toolRegistry = services.NewToolRegistry()
	configStore = cfg
	bootstrapped = true

	return func() {
		assistantService = oldAssistant
		ingestService = oldIngest
		chunkStore = oldChunkStore
		toolRegistry = oldRegistry
		configStore = oldConfig
		bootstrapped = oldBootstrapped
		os.RemoveAll(configDir)
	}
}

var errStub = errors.New("stub failure")
