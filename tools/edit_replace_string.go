package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lowkaihon/toolcore/config"
)

type replaceStringInput struct {
	FilePath     string `json:"file_path"`
	OldString    string `json:"old_string"`
	NewString    string `json:"new_string"`
	ReplaceCount int    `json:"replace_count"`
}

func (r *Registry) editReplaceStringTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[replaceStringInput](input)
	if err != nil {
		return nil, err
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	if params.OldString == "" {
		return nil, fmt.Errorf("old_string is required")
	}
	replaceCount := params.ReplaceCount
	if replaceCount == 0 {
		replaceCount = 1
	}

	out := runEditPipeline(ctx, cfg, params.FilePath, false, func(content string) (editOutcome, error) {
		k := strings.Count(content, params.OldString)
		if k == 0 {
			return editOutcome{}, fmt.Errorf("no match found for old_string — check for exact whitespace and indentation")
		}
		if replaceCount == 1 && k > 1 {
			return editOutcome{}, fmt.Errorf("old_string appears %d times — expand context to make the match unique, or set replace_count to %d or -1", k, k)
		}
		if replaceCount != -1 && replaceCount > k {
			return editOutcome{}, fmt.Errorf("replace_count %d exceeds the %d occurrences found", replaceCount, k)
		}

		n := replaceCount
		if replaceCount == -1 {
			n = k
		}
		newContent := strings.Replace(content, params.OldString, params.NewString, n)
		return editOutcome{NewContent: newContent, Metadata: map[string]any{"edits_applied": n}}, nil
	})

	return json.Marshal(out)
}
