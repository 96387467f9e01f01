package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lowkaihon/toolcore/config"
)

type insertInput struct {
	FilePath   string `json:"file_path"`
	LineOffset int    `json:"line_offset"`
	Content    string `json:"content"`
	Create     bool   `json:"create"`
}

func (r *Registry) editInsertTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[insertInput](input)
	if err != nil {
		return nil, err
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	if params.LineOffset < 0 {
		return nil, fmt.Errorf("line_offset must be >= 0")
	}

	out := runEditPipeline(ctx, cfg, params.FilePath, params.Create, func(content string) (editOutcome, error) {
		var lines []string
		if content != "" {
			lines = strings.Split(content, "\n")
		}
		if params.LineOffset > len(lines) {
			return editOutcome{}, fmt.Errorf("line_offset %d is past the end of the file (%d lines)", params.LineOffset, len(lines))
		}

		insertAtEOF := params.LineOffset == len(lines)
		toInsert := params.Content
		if strings.HasSuffix(toInsert, "\n") && !insertAtEOF {
			// join("\n") re-adds the separator; keeping a trailing \n here
			// would double it. At EOF there's nothing after to join against,
			// so the trailing newline is preserved as-is.
			toInsert = strings.TrimSuffix(toInsert, "\n")
		}
		insertedLines := strings.Split(toInsert, "\n")

		newLines := append([]string{}, lines[:params.LineOffset]...)
		newLines = append(newLines, insertedLines...)
		newLines = append(newLines, lines[params.LineOffset:]...)

		return editOutcome{
			NewContent: strings.Join(newLines, "\n"),
			Metadata: map[string]any{
				"lines_inserted": len(insertedLines),
			},
		}, nil
	})

	return json.Marshal(out)
}
