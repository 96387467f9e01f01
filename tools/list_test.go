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

func TestFileList_skipsGitDirectoryAlways(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Cwd, ".git", "objects"), 0755))
	writeWorkspaceFile(t, cfg, "a.txt", "x")
	r := NewRegistry()

	out, err := r.fileListTool(context.Background(), cfg, nil)
	require.NoError(t, err)

	var res listResult
	require.NoError(t, json.Unmarshal(out, &res))
	require.True(t, res.Success)
	for _, e := range res.Entries {
		assert.NotContains(t, e.Path, ".git")
	}
}

func TestFileList_honorsGitignore(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, ".gitignore", "ignored.txt\n")
	writeWorkspaceFile(t, cfg, "ignored.txt", "x")
	writeWorkspaceFile(t, cfg, "kept.txt", "x")
	r := NewRegistry()

	out, err := r.fileListTool(context.Background(), cfg, nil)
	require.NoError(t, err)

	var res listResult
	require.NoError(t, json.Unmarshal(out, &res))
	require.True(t, res.Success)

	var paths []string
	for _, e := range res.Entries {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "kept.txt")
	assert.NotContains(t, paths, "ignored.txt")
}

func TestFileList_rejectsOverMaxEntries(t *testing.T) {
	cfg := testConfig(t)
	for i := 0; i < 5; i++ {
		writeWorkspaceFile(t, cfg, string(rune('a'+i))+".txt", "x")
	}
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"max_entries": 2})
	out, err := r.fileListTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res listResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "more than the requested limit")
}

func TestFileList_rejectsNonDirectory(t *testing.T) {
	cfg := testConfig(t)
	writeWorkspaceFile(t, cfg, "a.txt", "x")
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"path": "a.txt"})
	out, err := r.fileListTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res listResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not a directory")
}
