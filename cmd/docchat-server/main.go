// Package main provides the HTTP server for docchat.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docchat-labs/docchat/internal/blob"
	"github.com/docchat-labs/docchat/internal/chunker"
	"github.com/docchat-labs/docchat/internal/config"
	"github.com/docchat-labs/docchat/internal/db"
	"github.com/docchat-labs/docchat/internal/extract"
	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/llm"
	"github.com/docchat-labs/docchat/internal/memory"
	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/server"
	"github.com/docchat-labs/docchat/internal/service"
)

const startupTimeout = 30 * time.Second

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	_ = godotenv.Load()

	var cfg config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			slog.Error("failed to load config file", "path", *configFile, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Load()
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting docchat-server", "addr", cfg.HTTPAddr)

	stats := metrics.NewCollector()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, stats, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		cancel()
		os.Exit(1)
	}

	if *wipeDB {
		if err := dbClient.WipeData(ctx); err != nil {
			logger.Error("failed to wipe database", "error", err)
			cancel()
			os.Exit(1)
		}
		logger.Warn("database wiped")
	}

	if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		cancel()
		os.Exit(1)
	}
	cancel()
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	model, err := llm.NewModel(cfg, stats)
	if err != nil {
		logger.Error("failed to init LLM model", "error", err)
		os.Exit(1)
	}
	embedder, err := llm.NewEmbedder(cfg, stats)
	if err != nil {
		logger.Error("failed to init embedder", "error", err)
		os.Exit(1)
	}

	blobs, err := blob.NewFilesystemStore(cfg.BlobRoot, cfg.BlobContainer)
	if err != nil {
		logger.Error("failed to init blob store", "error", err)
		os.Exit(1)
	}

	indexes := index.New(dbClient, embedder, logger)
	memories := memory.New(dbClient, embedder, cfg.MemoryTopK, logger)

	docChunker := chunker.New(
		chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		llm.NewTableCleaner(model),
	)

	ingest := service.NewIngestService(
		blobs,
		extract.NewPdftotext(cfg.PdftotextPath),
		docChunker,
		dbClient,
		indexes,
		cfg.MaxUploadBytes,
		stats,
		logger,
	)

	chat := service.NewChatService(
		dbClient,
		service.NewRewriter(model, cfg.RewriteMaxWords, stats, logger),
		service.NewRetriever(indexes, cfg.RetrievalTopK, stats, logger),
		service.NewGenerator(model, stats, logger),
		memories,
		stats,
		logger,
	)

	srv := server.New(cfg.HTTPAddr, chat, ingest, memories, stats, logger)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
