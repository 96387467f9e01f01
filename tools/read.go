package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lowkaihon/toolcore/config"
)

type readInput struct {
	FilePath string `json:"file_path"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

type readResult struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	ModifiedTime int64  `json:"modifiedTime,omitempty"`
	LinesRead    int    `json:"lines_read,omitempty"`
	Content      string `json:"content,omitempty"`
	Lease        string `json:"lease,omitempty"`
}

// fileReadTool implements spec C6 file_read: bounded line reader with
// offset/limit, per-line truncation, and total line/byte caps.
func (r *Registry) fileReadTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[readInput](input)
	if err != nil {
		return nil, err
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}

	resolved, err := resolvePath(cfg, params.FilePath)
	if err != nil {
		return json.Marshal(readResult{Success: false, Error: err.Error()})
	}
	st, err := statChecked(ctx, cfg, resolved)
	if err != nil {
		return json.Marshal(readResult{Success: false, Error: err.Error()})
	}

	rc, err := cfg.Runtime.ReadFile(ctx, resolved)
	if err != nil {
		return json.Marshal(readResult{Success: false, Error: fmt.Sprintf("read %s: %v", resolved, err)})
	}
	defer rc.Close()

	offset := params.Offset
	if offset < 1 {
		offset = 1
	}

	var b strings.Builder
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)

	lineNum := 0
	linesRead := 0
	totalBytes := 0

	for scanner.Scan() {
		lineNum++
		if lineNum < offset {
			continue
		}
		if params.Limit > 0 && linesRead >= params.Limit {
			break
		}

		line := scanner.Text()
		if len(line) > config.MaxReadLineBytes {
			line = line[:config.MaxReadLineBytes] + config.TruncatedLineSuffix
		}

		formatted := fmt.Sprintf("%d\t%s\n", lineNum, line)
		totalBytes += len(formatted)
		if totalBytes > config.MaxReadBytes {
			return json.Marshal(readResult{Success: false, Error: fmt.Sprintf(
				"reading from line %d would exceed the %d byte response cap — narrow the offset/limit range", offset, config.MaxReadBytes)})
		}

		b.WriteString(formatted)
		linesRead++
		if linesRead > config.MaxReadLines {
			return json.Marshal(readResult{Success: false, Error: fmt.Sprintf(
				"reading from line %d would exceed the %d line cap — narrow the offset/limit range", offset, config.MaxReadLines)})
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return json.Marshal(readResult{Success: false, Error: fmt.Sprintf("read %s: %v", resolved, err)})
	}

	return json.Marshal(readResult{
		Success:      true,
		FileSize:     st.Size,
		ModifiedTime: st.ModTime.UnixMilli(),
		LinesRead:    linesRead,
		Content:      b.String(),
		Lease:        fileLease(st),
	})
}
