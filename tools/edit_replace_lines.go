package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lowkaihon/toolcore/config"
)

type replaceLinesInput struct {
	FilePath      string   `json:"file_path"`
	StartLine     int      `json:"start_line"`
	EndLine       int      `json:"end_line"`
	NewLines      []string `json:"new_lines"`
	ExpectedLines []string `json:"expected_lines"`
}

func (r *Registry) editReplaceLinesTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[replaceLinesInput](input)
	if err != nil {
		return nil, err
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	if params.StartLine < 1 {
		return nil, fmt.Errorf("start_line must be >= 1")
	}
	if params.EndLine < params.StartLine {
		return nil, fmt.Errorf("end_line must be >= start_line")
	}

	out := runEditPipeline(ctx, cfg, params.FilePath, false, func(content string) (editOutcome, error) {
		lines := strings.Split(content, "\n")

		startIdx := params.StartLine - 1
		if startIdx >= len(lines) {
			return editOutcome{}, fmt.Errorf("start_line %d is past the end of the file (%d lines)", params.StartLine, len(lines))
		}
		endIdx := params.EndLine - 1
		if endIdx >= len(lines) {
			endIdx = len(lines) - 1
		}

		if params.ExpectedLines != nil {
			current := lines[startIdx : endIdx+1]
			if !equalStrings(current, params.ExpectedLines) {
				return editOutcome{}, fmt.Errorf("expected_lines does not match the current content of lines %d-%d — the file has changed since it was last read", params.StartLine, params.EndLine)
			}
		}

		oldCount := endIdx - startIdx + 1
		newLines := append([]string{}, lines[:startIdx]...)
		newLines = append(newLines, params.NewLines...)
		newLines = append(newLines, lines[endIdx+1:]...)

		return editOutcome{
			NewContent: strings.Join(newLines, "\n"),
			Metadata: map[string]any{
				"lines_replaced": oldCount,
				"line_delta":     len(params.NewLines) - oldCount,
			},
		}, nil
	})

	return json.Marshal(out)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
