package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/graph"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/services/embeddings"
	"github.com/ternarybob/citare/internal/services/llm"
	"github.com/ternarybob/citare/internal/services/retrieval"
	"github.com/ternarybob/citare/internal/services/router"
	"github.com/ternarybob/citare/internal/services/synthesis"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Generation, embedding, and search backends, selected by mode
	GenerationService interfaces.GenerationService
	EmbeddingService  interfaces.EmbeddingService
	SearchService     interfaces.VectorSearchService

	// Pipeline services
	Router      *router.Router
	Retriever   *retrieval.Retriever
	Synthesizer *synthesis.Service
	Runner      *graph.Runner

	// localStore is set only in offline mode, for seeding and cleanup
	localStore *retrieval.LocalSearch
}

// New initializes the application with all dependencies for the
// configured mode. Live mode requires a reachable pgvector index and
// provider API keys; offline mode is fully self-contained.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initBackends(ctx); err != nil {
		return nil, err
	}

	app.initPipeline()

	logger.Info().
		Str("mode", cfg.Mode).
		Str("embedder", app.EmbeddingService.ModelName()).
		Bool("classifier_enabled", cfg.Router.UseClassifier).
		Msg("Application initialization complete")

	return app, nil
}

// initBackends selects the generation, embedding, and vector search
// implementations for the configured mode
func (a *App) initBackends(ctx context.Context) error {
	switch a.Config.Mode {
	case common.ModeLive:
		return a.initLiveBackends(ctx)
	case common.ModeOffline:
		return a.initOfflineBackends(ctx)
	default:
		return fmt.Errorf("unknown mode: %s", a.Config.Mode)
	}
}

func (a *App) initLiveBackends(ctx context.Context) error {
	a.GenerationService = llm.NewProviderFactory(
		&a.Config.Gemini,
		&a.Config.Claude,
		&a.Config.LLM,
		a.Logger,
	)

	embedder, err := embeddings.NewGeminiEmbedder(ctx, &a.Config.Gemini, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	a.EmbeddingService = embedder

	search, err := retrieval.NewPgVectorSearch(ctx, a.Config.Postgres.URL, a.Config.Retrieval.Table, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vector search: %w", err)
	}
	a.SearchService = search

	return nil
}

func (a *App) initOfflineBackends(ctx context.Context) error {
	a.GenerationService = llm.NewOfflineService(a.Logger)
	a.EmbeddingService = embeddings.NewHashEmbedder()

	store, err := retrieval.NewLocalSearch(&a.Config.Storage.Badger, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize local store: %w", err)
	}
	a.localStore = store
	a.SearchService = store

	// An empty store gets the bundled transcript fixtures so queries
	// have something to retrieve against
	if err := retrieval.SeedDefaultCorpus(ctx, store, a.EmbeddingService); err != nil {
		store.Close()
		return fmt.Errorf("failed to seed local store: %w", err)
	}

	return nil
}

// initPipeline wires the router, retriever, synthesizer, and runner
// over the selected backends
func (a *App) initPipeline() {
	var classifier interfaces.ClassifierService
	if a.Config.Router.UseClassifier {
		classifier = router.NewLLMClassifier(a.GenerationService, a.Logger)
	}
	a.Router = router.NewRouter(classifier, a.Logger)

	a.Retriever = retrieval.NewRetriever(
		a.EmbeddingService,
		a.SearchService,
		a.Config.Retrieval.TopK,
		a.Config.Retrieval.MinScore,
		a.Logger,
	)

	a.Synthesizer = synthesis.NewService(a.GenerationService, &a.Config.Synthesis, a.Logger)
	a.Runner = graph.NewRunner(a.Router, a.Retriever, a.Synthesizer, a.Logger)
}

// Close releases backend connections and storage handles
func (a *App) Close() error {
	var firstErr error

	if a.SearchService != nil {
		if err := a.SearchService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.GenerationService != nil {
		if err := a.GenerationService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
