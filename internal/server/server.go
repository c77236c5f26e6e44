// Package server exposes the chat and ingestion pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/service"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// shutdownTimeout bounds graceful shutdown on Stop.
const shutdownTimeout = 15 * time.Second

// ChatRunner runs one conversational turn.
type ChatRunner interface {
	Chat(ctx context.Context, req service.ChatRequest) (*service.ChatResponse, error)
	ChatStream(ctx context.Context, req service.ChatRequest, fn func(chunk string)) (*service.ChatResponse, error)
}

// Ingester handles document upload and vectorization.
type Ingester interface {
	Upload(ctx context.Context, clientID, productID, filename string, r io.Reader) (string, error)
	Vectorize(ctx context.Context, clientID, productID string) (*index.Handle, error)
	Reindex(ctx context.Context, clientID, productID string) (*index.Handle, error)
}

// MemoryWriter stores user facts for later recall. Optional; a nil writer
// disables the /memory endpoint.
type MemoryWriter interface {
	Remember(ctx context.Context, userID, content string) error
}

// Server is the HTTP front of the pipeline.
type Server struct {
	chat     ChatRunner
	ingest   Ingester
	memories MemoryWriter
	stats    *metrics.Collector
	logger   *slog.Logger
	router   *gin.Engine
	httpSrv  *http.Server
}

// New wires the routes and returns the server. addr is the listen address.
func New(addr string, chat ChatRunner, ingest Ingester, memories MemoryWriter, stats *metrics.Collector, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		chat:     chat,
		ingest:   ingest,
		memories: memories,
		stats:    stats,
		logger:   logger,
		router:   gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggingMiddleware(logger))

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/stats", s.handleStats)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/vectorize", s.handleVectorize)
	s.router.POST("/chat", s.handleChat)
	s.router.POST("/chat/stream", s.handleChatStream)
	if memories != nil {
		s.router.POST("/memory", s.handleMemory)
	}

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the HTTP handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails or Stop is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}
