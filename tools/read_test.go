package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRead_numbersLinesFromOne(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, "a.txt", "alpha\nbeta\ngamma")
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"file_path": "a.txt"})
	out, err := r.fileReadTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res readResult
	require.NoError(t, json.Unmarshal(out, &res))
	require.True(t, res.Success)
	assert.Equal(t, "1\talpha\n2\tbeta\n3\tgamma\n", res.Content)
	assert.Equal(t, 3, res.LinesRead)
	assert.NotEmpty(t, res.Lease)
}

func TestFileRead_offsetAndLimit(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, "a.txt", "one\ntwo\nthree\nfour")
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"file_path": "a.txt", "offset": 2, "limit": 2})
	out, err := r.fileReadTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res readResult
	require.NoError(t, json.Unmarshal(out, &res))
	require.True(t, res.Success)
	assert.Equal(t, "2\ttwo\n3\tthree\n", res.Content)
}

func TestFileRead_truncatesOverlongLine(t *testing.T) {
	cfg := testConfig(t)
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	writeWorkspaceFile(t, cfg, "a.txt", string(long))
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"file_path": "a.txt"})
	out, err := r.fileReadTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res readResult
	require.NoError(t, json.Unmarshal(out, &res))
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "[truncated]")
}

func TestFileRead_rejectsMissingFile(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"file_path": "missing.txt"})
	out, err := r.fileReadTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res readResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success)
}
