package models

import (
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Role tags a message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// MessageContent is one content part of a message.
type MessageContent struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	TokensUsed int    `json:"tokens_used"`
}

// Message is a single role-tagged entry in a conversation.
// Immutable once appended.
type Message struct {
	Role    Role             `json:"role"`
	Content []MessageContent `json:"content"`
}

// Text returns the concatenated text of all content parts.
func (m Message) Text() string {
	switch len(m.Content) {
	case 0:
		return ""
	case 1:
		return m.Content[0].Text
	}
	out := ""
	for _, c := range m.Content {
		out += c.Text
	}
	return out
}

// Validate checks the message against the fixed content schema.
// Called at the store boundary before any append.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	if len(m.Content) == 0 {
		return fmt.Errorf("message has no content")
	}
	for i, c := range m.Content {
		if c.Type == "" {
			return fmt.Errorf("content part %d has empty type", i)
		}
	}
	return nil
}

// NewTextMessage builds a single-part text message.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Content: []MessageContent{{Type: "text", Text: text}},
	}
}

// Conversation is a persisted sequence of user/assistant turns scoped to a
// tenant+product.
type Conversation struct {
	ID surrealmodels.RecordID `json:"id"`

	ClientID  string  `json:"client_id"`
	ProductID string  `json:"product_id"`
	UserID    *string `json:"user_id,omitempty"`

	Messages []Message `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}
