package llm

import "context"

// TableCleaner restructures raw extracted tables with the chat model.
type TableCleaner struct {
	model *Model
}

// NewTableCleaner creates a TableCleaner backed by the given model.
func NewTableCleaner(model *Model) *TableCleaner {
	return &TableCleaner{model: model}
}

// Clean sends the serialized table through the cleanup prompt.
func (c *TableCleaner) Clean(ctx context.Context, tableText string) (string, error) {
	return c.model.GenerateWithSystem(ctx, TableCleanupSystemPrompt, tableText)
}
