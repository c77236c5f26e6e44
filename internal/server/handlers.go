package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docchat-labs/docchat/internal/db"
	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/service"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps pipeline errors to HTTP statuses. Caller-fixable errors
// keep their message; everything else becomes an opaque 500 so internals
// never leak.
func (s *Server) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Message})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "conversation not found"})
	case errors.Is(err, index.ErrNotIndexed):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no index exists for this client/product, run vectorize first"})
	case errors.Is(err, index.ErrNoChunks):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no text chunks found in the uploaded documents"})
	default:
		s.logger.Error("request error", "request_id", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleUpload(c *gin.Context) {
	clientID := c.PostForm("client_id")
	productID := c.PostForm("product_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "multipart field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer f.Close()

	name, err := s.ingest.Upload(c.Request.Context(), clientID, productID, fileHeader.Filename, f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name})
}

type vectorizeRequest struct {
	ClientID  string `json:"client_id"`
	ProductID string `json:"product_id"`
	// ReuseChunks rebuilds from the stored chunk snapshot instead of
	// re-extracting the uploaded documents.
	ReuseChunks bool `json:"reuse_chunks"`
}

func (s *Server) handleVectorize(c *gin.Context) {
	var req vectorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var (
		h   *index.Handle
		err error
	)
	if req.ReuseChunks {
		h, err = s.ingest.Reindex(c.Request.Context(), req.ClientID, req.ProductID)
	} else {
		h, err = s.ingest.Vectorize(c.Request.Context(), req.ClientID, req.ProductID)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.Version,
		"chunks":  h.ChunkCount,
	})
}

type memoryRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

func (s *Server) handleMemory(c *gin.Context) {
	var req memoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "user_id and content are required"})
		return
	}

	if err := s.memories.Remember(c.Request.Context(), req.UserID, req.Content); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type chatRequest struct {
	ConversationID string  `json:"conversation_id"`
	ClientID       string  `json:"client_id"`
	ProductID      string  `json:"product_id"`
	UserID         *string `json:"user_id"`
	Message        string  `json:"message"`
}

func (r chatRequest) toService() service.ChatRequest {
	return service.ChatRequest{
		ConversationID: r.ConversationID,
		ClientID:       r.ClientID,
		ProductID:      r.ProductID,
		UserID:         r.UserID,
		Message:        r.Message,
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	resp, err := s.chat.Chat(c.Request.Context(), req.toService())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": resp.ConversationID,
		"answer":          resp.Answer,
	})
}

// handleChatStream streams the answer as SSE: one "chunk" event per token
// batch, then a final "done" event carrying the conversation id.
func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, _ := c.Writer.(http.Flusher)

	// Chunks are wrapped in JSON so leading/trailing whitespace survives
	// the SSE framing.
	resp, err := s.chat.ChatStream(c.Request.Context(), req.toService(), func(chunk string) {
		c.SSEvent("chunk", gin.H{"text": chunk})
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		// Headers are already out; signal the failure in-stream.
		c.SSEvent("error", gin.H{"message": sseChatError(err)})
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	c.SSEvent("done", gin.H{"conversation_id": resp.ConversationID})
	if flusher != nil {
		flusher.Flush()
	}
}

// sseChatError reduces an error to a client-safe message.
func sseChatError(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, db.ErrNotFound):
		return "conversation not found"
	case errors.Is(err, index.ErrNotIndexed):
		return "no index exists for this client/product, run vectorize first"
	}
	return "internal server error"
}
