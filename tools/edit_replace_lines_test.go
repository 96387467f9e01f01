package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditReplaceLines_rejectsStaleExpectedLines(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, "a.txt", "one\ntwo\nthree")
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{
		"file_path":      "a.txt",
		"start_line":     2,
		"end_line":       2,
		"new_lines":      []string{"TWO"},
		"expected_lines": []string{"not-two"},
	})
	out, err := r.editReplaceLinesTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res["success"].(bool))
	assert.Contains(t, res["error"], "has changed since it was last read")
}

func TestEditReplaceLines_replacesRangeAndReportsDelta(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, "a.txt", "one\ntwo\nthree")
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{
		"file_path":  "a.txt",
		"start_line": 2,
		"end_line":   2,
		"new_lines":  []string{"TWO", "TWO-AND-A-HALF"},
	})
	out, err := r.editReplaceLinesTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal(out, &res))
	require.True(t, res["success"].(bool))
	assert.Equal(t, float64(1), res["line_delta"])

	got, _ := os.ReadFile(filepath.Join(cfg.Cwd, "a.txt"))
	assert.Equal(t, "one\nTWO\nTWO-AND-A-HALF\nthree", string(got))
}

func TestEditReplaceLines_rejectsStartPastEOF(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, "a.txt", "one\ntwo")
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{
		"file_path":  "a.txt",
		"start_line": 10,
		"end_line":   10,
		"new_lines":  []string{"x"},
	})
	out, err := r.editReplaceLinesTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res["success"].(bool))
	assert.Contains(t, res["error"], "past the end of the file")
}
