package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/adapters/driven/config/file"
	embedmock "github.com/custodia-labs/corpus/internal/adapters/driven/embedding/mock"
	llmmock "github.com/custodia-labs/corpus/internal/adapters/driven/llm/mock"
	"github.com/custodia-labs/corpus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/services"
	"github.com/custodia-labs/corpus/internal/extractors"
	"github.com/custodia-labs/corpus/internal/metrics"
	"github.com/custodia-labs/corpus/internal/postprocessors"
)

// testEnv is a fully wired in-memory application.
type testEnv struct {
	services *Services
	config   *memory.ConfigStore
	vectors  *memory.VectorStore
}

// setupTestServices wires the commands to in-memory services with the mock
// providers and restores the previous wiring when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	previous := &Services{
		Projects:  projectService,
		Documents: documentService,
		Ingestion: ingestionService,
		Retrieval: retrievalService,
		Answers:   answerService,
		Chat:      chatService,
		Settings:  settingsService,
		Metrics:   appMetrics,
		Workers:   ingestWorkers,
	}
	t.Cleanup(func() { SetServices(previous) })
	resetFlags()

	pipeline, err := postprocessors.NewDefaultPipeline(200, 40)
	require.NoError(t, err)
	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)

	projectStore := memory.NewProjectStore()
	docStore := memory.NewDocumentStore()
	messageStore := memory.NewMessageStore()
	blobs := memory.NewBlobStore()
	vectors := memory.NewVectorStore()
	config := memory.NewConfigStore()
	embedder := embedmock.NewEmbeddingService(embedmock.Config{})
	m := metrics.New()

	locks := services.NewDocumentLocks()
	docs := services.NewDocumentService(projectStore, docStore, blobs, vectors, locks)
	projects := services.NewProjectService(projectStore, docStore, messageStore, vectors, docs)
	ingestion := services.NewIngestionService(projectStore, docStore, blobs, extractors.NewDefaultRegistry(), pipeline,
		embedder, vectors, locks, services.WithIngestionMetrics(m))
	retrieval := services.NewRetrievalService(embedder, vectors, domain.DefaultRetrievalK, m)
	answers := services.NewAnswerService(retrieval, llmmock.NewLLMService(""), prompts,
		domain.DefaultAppSettings().Answer, m)

	env := &testEnv{
		services: &Services{
			Projects:  projects,
			Documents: docs,
			Ingestion: ingestion,
			Retrieval: retrieval,
			Answers:   answers,
			Chat:      services.NewChatService(projectStore, messageStore, answers, domain.DefaultHistoryLimit),
			Settings:  services.NewSettingsService(config, nil),
			Metrics:   m,
			Workers:   2,
		},
		config:  config,
		vectors: vectors,
	}
	SetServices(env.services)
	return env
}

// clearServices unwires every command for the duration of the test.
func clearServices(t *testing.T) {
	t.Helper()
	setupTestServices(t)
	SetServices(&Services{})
}

func resetFlags() {
	verbose = false
	ownerID = "local"
	projectListAll = false
	uploadNoIngest = false
	ingestAll = false
	retrieveK = 0
	retrieveJSON = false
	askJSON = false
	watchInitial = false
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func (e *testEnv) createProject(t *testing.T, name string) *domain.Project {
	t.Helper()
	p, err := e.services.Projects.Create(context.Background(), "local", name)
	require.NoError(t, err)
	return p
}

func (e *testEnv) documents(t *testing.T, projectID string) []domain.Document {
	t.Helper()
	docs, err := e.services.Documents.List(context.Background(), projectID)
	require.NoError(t, err)
	return docs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

