package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lowkaihon/toolcore/config"
)

type searchInput struct {
	FilePath     string `json:"file_path"`
	Pattern      string `json:"pattern"`
	ContextLines int    `json:"context_lines"`
	MaxResults   int    `json:"max_results"`
}

type searchMatch struct {
	LineNumber    int      `json:"line_number"`
	LineContent   string   `json:"line_content"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
}

type searchResult struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	FilePath     string        `json:"file_path,omitempty"`
	Pattern      string        `json:"pattern,omitempty"`
	Matches      []searchMatch `json:"matches,omitempty"`
	TotalMatches int           `json:"total_matches,omitempty"`
	FileSize     int64         `json:"file_size,omitempty"`
}

// fileSearchTool implements spec C6 file_search: literal substring match
// within a single file, with clamped context slices around each hit.
func (r *Registry) fileSearchTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[searchInput](input)
	if err != nil {
		return nil, err
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	if params.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}

	contextLines := params.ContextLines
	if contextLines <= 0 {
		contextLines = config.MaxSearchContextLines
	}
	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = config.MaxSearchResults
	}

	resolved, err := resolvePath(cfg, params.FilePath)
	if err != nil {
		return json.Marshal(searchResult{Success: false, Error: err.Error()})
	}
	st, err := cfg.Runtime.Stat(ctx, resolved)
	if err != nil {
		return json.Marshal(searchResult{Success: false, Error: fmt.Sprintf("stat %s: %v", resolved, err)})
	}
	if st.IsDirectory {
		return json.Marshal(searchResult{Success: false, Error: fmt.Sprintf("%s is a directory, not a file", resolved)})
	}
	if st.Size > config.MaxFileSize {
		return json.Marshal(searchResult{Success: false, Error: fmt.Sprintf("%s is %d bytes, larger than the %d byte search limit", resolved, st.Size, config.MaxFileSize)})
	}

	rc, err := cfg.Runtime.ReadFile(ctx, resolved)
	if err != nil {
		return json.Marshal(searchResult{Success: false, Error: fmt.Sprintf("read %s: %v", resolved, err)})
	}
	defer rc.Close()

	var lines []string
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	var matches []searchMatch
	total := 0
	for i, line := range lines {
		if !strings.Contains(line, params.Pattern) {
			continue
		}
		total++
		if len(matches) >= maxResults {
			continue
		}
		before := max0(i - contextLines)
		after := i + contextLines + 1
		if after > len(lines) {
			after = len(lines)
		}
		matches = append(matches, searchMatch{
			LineNumber:    i + 1,
			LineContent:   line,
			ContextBefore: append([]string{}, lines[before:i]...),
			ContextAfter:  append([]string{}, lines[i+1:after]...),
		})
	}

	return json.Marshal(searchResult{
		Success:      true,
		FilePath:     resolved,
		Pattern:      params.Pattern,
		Matches:      matches,
		TotalMatches: total,
		FileSize:     st.Size,
	})
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
