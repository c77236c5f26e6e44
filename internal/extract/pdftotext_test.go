package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestExtract_EmptyInput(t *testing.T) {
	ex := NewPdftotextWithRunner("", &mockRunner{})

	doc, err := ex.Extract(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, doc)
}

func TestExtract_RunnerError(t *testing.T) {
	ex := NewPdftotextWithRunner("", &mockRunner{err: errors.New("exit status 1")})

	doc, err := ex.Extract(context.Background(), []byte("%PDF-1.4"))
	assert.Error(t, err)
	assert.Nil(t, doc)
}

func TestExtract_SplitsPagesOnFormFeed(t *testing.T) {
	ex := NewPdftotextWithRunner("", &mockRunner{
		output: []byte("page one text\n\fpage two text\n\f"),
	})

	doc, err := ex.Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)

	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, "page one text", doc.Pages[0].Text)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, "page two text", doc.Pages[1].Text)
}

func TestExtract_SinglePageNoTrailingFormFeed(t *testing.T) {
	ex := NewPdftotextWithRunner("", &mockRunner{
		output: []byte("only page"),
	})

	doc, err := ex.Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "only page", doc.Pages[0].Text)
}

func TestParsePages_BlankPagePreserved(t *testing.T) {
	// A blank middle page keeps its slot so page numbers stay aligned
	// with the source document.
	doc := parsePages("first\f\fthird\f")
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "", doc.Pages[1].Text)
	assert.Equal(t, 3, doc.Pages[2].Number)
}
