package chunker

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/docchat-labs/docchat/internal/extract"
)

// serializeTable flattens a raw extracted table into row text: empty cells
// dropped, cells joined with " | ", one row per line. Returns "" for
// tables with no usable cells.
func serializeTable(tbl extract.Table) string {
	var rows []string
	for _, row := range tbl {
		var cells []string
		for _, cell := range row {
			cell = strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
			if cell == "" {
				continue
			}
			cells = append(cells, cell)
		}
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}

// normalizeCleanerOutput strips Markdown code fences from model output and
// pretty-prints it when it is valid JSON. Invalid JSON is returned
// trimmed; the raw row text stays usable either way.
func normalizeCleanerOutput(out string) string {
	content := strings.TrimSpace(out)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimSpace(content[len("```json"):])
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimSpace(content[len("```"):])
	}
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content
	}
	return buf.String()
}
