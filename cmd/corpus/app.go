package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/corpus/internal/adapters/driven/ai"
	"github.com/custodia-labs/corpus/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/corpus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/corpus/internal/adapters/driving/cli"
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/services"
	"github.com/custodia-labs/corpus/internal/extractors"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
	"github.com/custodia-labs/corpus/internal/postprocessors"
)

// envHome overrides the configuration directory (default ~/.corpus).
const envHome = "CORPUS_HOME"

// stores groups the persistence ports.
type stores struct {
	projects  driven.ProjectStore
	documents driven.DocumentStore
	messages  driven.MessageStore
	vectors   driven.VectorStore
	blobs     driven.BlobStore
}

// app owns the wired services and the resources they hold.
type app struct {
	Services *cli.Services

	closers []func() error
}

// newApp loads settings from configDir and wires storage, gateways and
// services. An empty configDir means ~/.corpus.
func newApp(configDir string) (*app, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &app{}
	m := metrics.New()

	st, err := a.openStores(configDir, settings.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}

	gateways, err := ai.NewGateways(settings, m)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		gateways.Close()
		return nil
	})

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Ingest.ChunkSize, settings.Ingest.Overlap)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	locks := services.NewDocumentLocks()
	documents := services.NewDocumentService(st.projects, st.documents, st.blobs, st.vectors, locks)
	projects := services.NewProjectService(st.projects, st.documents, st.messages, st.vectors, documents)
	ingestion := services.NewIngestionService(st.projects, st.documents, st.blobs, extractors.NewDefaultRegistry(), pipeline,
		gateways.Embedding, st.vectors, locks,
		services.WithEmbedConcurrency(settings.Ingest.EmbedConcurrency),
		services.WithIngestionMetrics(m))
	retrieval := services.NewRetrievalService(gateways.Embedding, st.vectors, settings.Retrieval.DefaultK, m)
	answers := services.NewAnswerService(retrieval, gateways.LLM, prompts, settings.Answer, m)
	chat := services.NewChatService(st.projects, st.messages, answers, settings.Answer.HistoryLimit)

	a.Services = &cli.Services{
		Projects:  projects,
		Documents: documents,
		Ingestion: ingestion,
		Retrieval: retrieval,
		Answers:   answers,
		Chat:      chat,
		Settings:  settingsService,
		Metrics:   m,
		Workers:   settings.Ingest.Workers,
	}
	return a, nil
}

// openStores opens the configured storage backend. The memory backend
// keeps nothing between runs.
func (a *app) openStores(configDir string, cfg domain.StorageSettings) (*stores, error) {
	if cfg.Backend == domain.StorageMemory {
		logger.Debug("Using in-memory storage")
		return &stores{
			projects:  memory.NewProjectStore(),
			documents: memory.NewDocumentStore(),
			messages:  memory.NewMessageStore(),
			vectors:   memory.NewVectorStore(),
			blobs:     memory.NewBlobStore(),
		}, nil
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	blobs, err := filesystem.NewBlobStore(filepath.Join(dataDir, "blobs"))
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	logger.Debug("Using SQLite storage at %s", db.Path())
	return &stores{
		projects:  db.ProjectStore(),
		documents: db.DocumentStore(),
		messages:  db.MessageStore(),
		vectors:   db.VectorStore(),
		blobs:     blobs,
	}, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Close: %v", err)
		}
	}
	a.closers = nil
}
