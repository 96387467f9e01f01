package tools

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBash_runsAndCapturesOutput(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"script": "echo hello"})
	out, err := r.bashTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res bashResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Output)
	assert.Equal(t, 0, res.ExitCode)
}

func TestBash_nonZeroExitIsNotSuccess(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"script": "exit 3"})
	out, err := r.bashTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res bashResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
}

func TestBash_rejectsEmptyScript(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"script": "   "})
	out, err := r.bashTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res bashResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success)
}

func TestBash_displayOverflowWritesTmpfileAndFails(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"script": "for i in {1..400}; do echo line$i; done"})
	out, err := r.bashTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res bashResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success, "300-line display cap must fail the call even though the loop exits 0")
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Error, "[OUTPUT OVERFLOW]")
	assert.Contains(t, res.Error, "exceeded line count")
	require.NotNil(t, res.Truncated)
	assert.GreaterOrEqual(t, res.Truncated.TotalLines, 300)

	entries, err := os.ReadDir(cfg.RuntimeTempDir)
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if len(e.Name()) > 5 && e.Name()[:5] == "bash-" {
			found = true
			data, rerr := os.ReadFile(cfg.RuntimeTempDir + "/" + e.Name())
			require.NoError(t, rerr)
			assert.Contains(t, string(data), "line1\n")
		}
	}
	assert.True(t, found, "expected a bash-<8hex>.txt overflow file in RuntimeTempDir")
}

func TestBash_rejectsRedundantCdToWorkspace(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()

	input, _ := json.Marshal(map[string]any{"script": "cd " + cfg.Cwd + " && echo x"})
	out, err := r.bashTool(context.Background(), cfg, input)
	require.NoError(t, err)

	var res bashResult
	require.NoError(t, json.Unmarshal(out, &res))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "redundant cd")
}
