package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"go.uber.org/zap"

	"github.com/pandyaved98/dotkonekt/auth"
	"github.com/pandyaved98/dotkonekt/config"
	"github.com/pandyaved98/dotkonekt/db"
	"github.com/pandyaved98/dotkonekt/handlers"
	"github.com/pandyaved98/dotkonekt/logging"
	"github.com/pandyaved98/dotkonekt/scheduler"
	"github.com/pandyaved98/dotkonekt/searchindex"
	"github.com/pandyaved98/dotkonekt/server"
	"github.com/pandyaved98/dotkonekt/services/embedding"
	"github.com/pandyaved98/dotkonekt/services/llm_service"
	"github.com/pandyaved98/dotkonekt/services/notification"
	"github.com/pandyaved98/dotkonekt/services/rag_service"
	"github.com/pandyaved98/dotkonekt/store"
)

func main() {
	cfg := config.Load()

	fileHandler, err := logging.NewDailyFileHandler("logs", &slog.HandlerOptions{Level: slog.LevelInfo})
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := slog.New(fileHandler)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Capability clients are constructed once here and injected; no
	// package-level singletons.
	index := searchindex.NewClient(cfg.OpenSearchURL, cfg.OpenSearchUser, cfg.OpenSearchPassword, cfg.OpenSearchIndex, logger)
	if err := index.EnsureIndex(context.Background()); err != nil {
		log.Fatalf("Failed to ensure search index: %v", err)
	}

	embedder := embedding.NewClient(cfg.EmbeddingAPIURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	llm := llm_service.NewCompletionService(cfg.GenerationAPIURL, cfg.GenerationAPIKey, zapLogger)

	retriever := rag_service.NewContextRetriever(index, cfg.SearchResultLimit, logger)
	generator := rag_service.NewGroundedGenerator(llm, cfg.TargetWordCount, cfg.ContextCharBudget, logger)
	pipeline := rag_service.NewPipeline(retriever, generator, embedder, index, cfg.MaxChunkChars, logger)
	extractor := rag_service.NewDocumentExtractor(logger)
	fetcher := rag_service.NewWebPageFetcher()

	users := store.NewUserStore(pool)
	blogs := store.NewBlogStore(pool)
	products := store.NewProductStore(pool)
	documents := store.NewDocumentStore(pool)
	revoked := store.NewRevokedTokenStore(pool)

	tokens := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	notifier := notification.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.TwilioToNumber, logger)

	janitor := scheduler.New(index, revoked, cfg.RetentionDays, cfg.CleanupInterval, logger)
	go janitor.Start()

	authMW := handlers.NewAuthMiddleware(tokens, revoked, users, logger)
	h := server.Handlers{
		Auth:     handlers.NewAuthHandler(users, revoked, tokens, logger),
		Upload:   handlers.NewUploadHandler(pipeline, extractor, fetcher, documents, embedder, cfg.MaxUploadBytes, logger),
		Blogs:    handlers.NewBlogHandler(pipeline, blogs, embedder, notifier, logger),
		Products: handlers.NewProductsHandler(blogs, products, llm, logger),
		Search:   handlers.NewSearchHandler(index, cfg.SearchResultLimit, logger),
	}

	r := server.SetupRoutes(h, authMW)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:        ":" + cfg.HTTPPort,
			Handler:     n,
			IdleTimeout: time.Minute,
			ReadTimeout: 30 * time.Second,
			// Generation calls block for the duration of the model
			// call; the write timeout must absorb that.
			WriteTimeout: 5 * time.Minute,
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}
