package models

import (
	"testing"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestMessageText(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"empty", Message{Role: RoleUser}, ""},
		{"single part", NewTextMessage(RoleUser, "hello"), "hello"},
		{"multiple parts", Message{
			Role: RoleAssistant,
			Content: []MessageContent{
				{Type: "text", Text: "first "},
				{Type: "text", Text: "second"},
			},
		}, "first second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.msg.Text()
			if got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"valid user message", NewTextMessage(RoleUser, "hi"), false},
		{"valid assistant message", NewTextMessage(RoleAssistant, "hello"), false},
		{"valid system message", NewTextMessage(RoleSystem, "rules"), false},
		{"unknown role", Message{Role: "bot", Content: []MessageContent{{Type: "text"}}}, true},
		{"no content", Message{Role: RoleUser}, true},
		{"untyped content part", Message{Role: RoleUser, Content: []MessageContent{{Text: "hi"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordIDString(t *testing.T) {
	id := surrealmodels.RecordID{Table: "conversation", ID: "abc123"}
	s, err := RecordIDString(id)
	if err != nil {
		t.Fatalf("RecordIDString failed: %v", err)
	}
	if s != "abc123" {
		t.Errorf("RecordIDString = %q, want %q", s, "abc123")
	}

	bad := surrealmodels.RecordID{Table: "conversation", ID: 42}
	if _, err := RecordIDString(bad); err == nil {
		t.Error("expected error for non-string ID")
	}
}
