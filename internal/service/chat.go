// Package service implements the chat pipeline: rewrite, retrieve,
// generate, persist. Each step is its own component; ChatService wires
// them into one turn.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/models"
)

// ConversationStore persists conversations and turns.
type ConversationStore interface {
	CreateConversation(ctx context.Context, clientID, productID string, userID *string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	AppendTurn(ctx context.Context, id, userText, assistantText string) error
}

// questionRewriter makes a follow-up standalone using the history.
type questionRewriter interface {
	Rewrite(ctx context.Context, history []models.Message, input string) (string, error)
}

// chunkRetriever finds the chunks relevant to a question.
type chunkRetriever interface {
	Retrieve(ctx context.Context, clientID, productID, query string) ([]models.ScoredChunk, error)
}

// answerGenerator produces the grounded answer.
type answerGenerator interface {
	Answer(ctx context.Context, req AnswerRequest) (string, error)
	AnswerStream(ctx context.Context, req AnswerRequest, fn func(chunk string)) (string, error)
}

// memoryRecaller returns stored user facts relevant to a question.
// Optional; a nil recaller skips personalization.
type memoryRecaller interface {
	Recall(ctx context.Context, userID, query string) ([]models.UserMemory, error)
}

// ChatService runs one conversational turn end to end.
type ChatService struct {
	conversations ConversationStore
	rewriter      questionRewriter
	retriever     chunkRetriever
	generator     answerGenerator
	memories      memoryRecaller
	stats         *metrics.Collector
	log           *slog.Logger
}

// NewChatService wires the pipeline. memories may be nil.
func NewChatService(
	conversations ConversationStore,
	rewriter questionRewriter,
	retriever chunkRetriever,
	generator answerGenerator,
	memories memoryRecaller,
	stats *metrics.Collector,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		rewriter:      rewriter,
		retriever:     retriever,
		generator:     generator,
		memories:      memories,
		stats:         stats,
		log:           log,
	}
}

// ChatRequest is one user turn. An empty ConversationID starts a new
// conversation.
type ChatRequest struct {
	ConversationID string
	ClientID       string
	ProductID      string
	UserID         *string
	Message        string
}

// ChatResponse is the completed turn.
type ChatResponse struct {
	ConversationID string
	Answer         string
	Question       string
	Sources        []models.ScoredChunk
}

// Chat runs one turn: resolve the conversation, rewrite the message into a
// standalone question, retrieve context, generate the answer, and append
// the turn. Nothing is persisted unless generation succeeds.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return s.run(ctx, req, nil)
}

// ChatStream is Chat with token streaming; fn receives answer chunks as
// they are generated. The turn is persisted only after the stream
// completes.
func (s *ChatService) ChatStream(ctx context.Context, req ChatRequest, fn func(chunk string)) (*ChatResponse, error) {
	return s.run(ctx, req, fn)
}

func (s *ChatService) run(ctx context.Context, req ChatRequest, stream func(chunk string)) (*ChatResponse, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}
	convID, err := models.RecordIDString(conv.ID)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation id: %w", err)
	}

	question, err := s.rewriter.Rewrite(ctx, conv.Messages, req.Message)
	if err != nil {
		return nil, err
	}

	chunks, err := s.retriever.Retrieve(ctx, req.ClientID, req.ProductID, question)
	if err != nil {
		return nil, err
	}

	memories := s.recall(ctx, req.UserID, question)

	answerReq := AnswerRequest{
		Context:  JoinContext(chunks),
		History:  conv.Messages,
		Memories: memories,
		Question: question,
	}

	var answer string
	if stream != nil {
		answer, err = s.generator.AnswerStream(ctx, answerReq, stream)
	} else {
		answer, err = s.generator.Answer(ctx, answerReq)
	}
	if err != nil {
		return nil, err
	}

	// Persist even when the caller has already disconnected; the answer
	// exists, so the turn must survive.
	if err := s.conversations.AppendTurn(context.WithoutCancel(ctx), convID, req.Message, answer); err != nil {
		return nil, fmt.Errorf("persisting turn: %w", err)
	}

	s.stats.RecordChatTurn(IsFallback(answer))
	s.log.Info("chat turn complete",
		"conversation_id", convID,
		"client_id", req.ClientID, "product_id", req.ProductID,
		"fallback", IsFallback(answer), "sources", len(chunks))

	return &ChatResponse{
		ConversationID: convID,
		Answer:         answer,
		Question:       question,
		Sources:        chunks,
	}, nil
}

// resolveConversation loads the referenced conversation or creates one.
func (s *ChatService) resolveConversation(ctx context.Context, req ChatRequest) (*models.Conversation, error) {
	if req.ConversationID == "" {
		conv, err := s.conversations.CreateConversation(ctx, req.ClientID, req.ProductID, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("creating conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := s.conversations.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", req.ConversationID, err)
	}
	if conv.ClientID != req.ClientID || conv.ProductID != req.ProductID {
		return nil, Validationf("conversation %s does not belong to %s/%s", req.ConversationID, req.ClientID, req.ProductID)
	}
	return conv, nil
}

// recall fetches user memories; failures only cost personalization.
func (s *ChatService) recall(ctx context.Context, userID *string, question string) []models.UserMemory {
	if s.memories == nil || userID == nil {
		return nil
	}
	memories, err := s.memories.Recall(ctx, *userID, question)
	if err != nil {
		s.log.Warn("memory recall failed", "user_id", *userID, "error", err)
		return nil
	}
	return memories
}

func validateChatRequest(req ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return Validationf("message must not be empty")
	}
	if req.ClientID == "" || req.ProductID == "" {
		return Validationf("client_id and product_id are required")
	}
	return nil
}
