package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/docchat-labs/docchat/internal/models"
)

func textOf(t *testing.T, mc llms.MessageContent) string {
	t.Helper()
	require.Len(t, mc.Parts, 1)
	part, ok := mc.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestBuildAnswerMessages(t *testing.T) {
	req := AnswerRequest{
		Context: "Storm damage is covered.",
		History: []models.Message{
			models.NewTextMessage(models.RoleUser, "hello"),
			models.NewTextMessage(models.RoleAssistant, "Hi! How can I help?"),
		},
		Memories: []models.UserMemory{{Content: "prefers short answers"}},
		Question: "Is storm damage covered?",
	}

	messages := buildAnswerMessages(req)
	require.Len(t, messages, 4)

	assert.Equal(t, llms.ChatMessageTypeSystem, messages[0].Role)
	sys := textOf(t, messages[0])
	assert.True(t, strings.Contains(sys, "SYSTEM CONTEXT:\nStorm damage is covered."))
	assert.True(t, strings.Contains(sys, "USER MEMORY:\n- prefers short answers"))

	assert.Equal(t, llms.ChatMessageTypeHuman, messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, messages[2].Role)

	assert.Equal(t, llms.ChatMessageTypeHuman, messages[3].Role)
	assert.Equal(t, "Is storm damage covered?", textOf(t, messages[3]))
}

func TestBuildAnswerMessages_NoMemories(t *testing.T) {
	messages := buildAnswerMessages(AnswerRequest{Context: "ctx", Question: "q"})
	require.Len(t, messages, 2)
	assert.False(t, strings.Contains(textOf(t, messages[0]), "USER MEMORY"))
}

func TestBuildAnswerMessages_SystemHistorySkipped(t *testing.T) {
	messages := buildAnswerMessages(AnswerRequest{
		History:  []models.Message{models.NewTextMessage(models.RoleSystem, "internal")},
		Question: "q",
	})
	require.Len(t, messages, 2)
}
