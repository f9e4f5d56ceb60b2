package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"notetree/internal/config"
	"notetree/internal/docroot"
	"notetree/internal/docsys"
	"notetree/internal/handler"
	"notetree/internal/middleware"
	"notetree/internal/storage/postgres"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logger *slog.Logger
	if cfg.Environment == "dev" {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	}
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"roots_file", cfg.RootsFile,
	)

	// Create pgx connection pool when relational roots are configured
	ctx := context.Background()
	var pgConfig *postgres.Config
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		pgConfig = &postgres.Config{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	}

	// Build the document root registry
	specs, err := docroot.LoadSpecs(cfg.RootsFile)
	if err != nil {
		log.Fatalf("Failed to load roots file: %v", err)
	}
	registry, err := docroot.NewRegistry(specs, docroot.Options{
		Postgres: pgConfig,
		GrepBin:  cfg.GrepBin,
		PDFBin:   cfg.PDFGrepBin,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to build document roots: %v", err)
	}
	logger.Info("document roots ready", "roots", registry.Keys())

	// Create services
	treeService := docsys.NewTreeService(registry, logger)
	docService := docsys.NewDocumentService(registry, logger)
	folderService := docsys.NewFolderService(registry, logger)
	moveService := docsys.NewMoveService(registry, logger)
	searchService := docsys.NewSearchService(registry, logger)

	// Create handlers
	rootsHandler := handler.NewRootsHandler(registry, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	docHandler := handler.NewDocumentHandler(docService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	moveHandler := handler.NewMoveHandler(moveService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", rootsHandler.HealthCheck)

	// Root routes
	mux.HandleFunc("GET /api/roots", rootsHandler.ListRoots)
	mux.HandleFunc("GET /api/roots/{key}/tree", treeHandler.GetTree)

	// File routes
	mux.HandleFunc("POST /api/roots/{key}/files", docHandler.CreateFile)
	mux.HandleFunc("PUT /api/roots/{key}/files", docHandler.SaveFile)
	mux.HandleFunc("GET /api/roots/{key}/files", docHandler.ReadFile)
	mux.HandleFunc("POST /api/roots/{key}/delete", docHandler.Delete)

	// Folder routes
	mux.HandleFunc("POST /api/roots/{key}/folders", folderHandler.CreateFolder)
	mux.HandleFunc("POST /api/roots/{key}/folders/rename", folderHandler.RenameFolder)

	// Reorder and move routes
	mux.HandleFunc("POST /api/roots/{key}/move", moveHandler.Move)
	mux.HandleFunc("POST /api/roots/{key}/paste", moveHandler.Paste)

	// Search routes
	mux.HandleFunc("POST /api/roots/{key}/search", searchHandler.Search)
	mux.HandleFunc("POST /api/roots/{key}/search/binary", searchHandler.SearchBinary)

	// Build middleware chain
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
