package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInitStateManager struct {
	waited bool
	err    error
}

func (f *fakeInitStateManager) WaitForInit(ctx context.Context, workspaceID string) error {
	f.waited = true
	return f.err
}

func TestRegistry_definitionsCoverEveryBuiltinTool(t *testing.T) {
	r := NewRegistry()
	names := map[string]bool{}
	for _, d := range r.Definitions() {
		names[d.Name] = true
	}
	for _, want := range []string{
		"bash", "file_read", "file_edit_replace_string", "file_edit_replace_lines",
		"file_edit_insert", "file_search", "file_list", "todo_read", "todo_write",
		"status_set", "propose_plan", "compact_summary",
	} {
		assert.True(t, names[want], "missing tool definition %q", want)
	}
}

func TestRegistry_isReadOnlyClassifiesMutatingToolsCorrectly(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.IsReadOnly("file_read"))
	assert.True(t, r.IsReadOnly("file_search"))
	assert.False(t, r.IsReadOnly("bash"))
	assert.False(t, r.IsReadOnly("file_edit_replace_string"))
	assert.False(t, r.IsReadOnly("unknown_tool"))
}

func TestRegistry_executeGatesRuntimeToolsOnInit(t *testing.T) {
	cfg := testConfig(t)
	fake := &fakeInitStateManager{}
	cfg.InitStateManager = fake

	r := NewRegistry()
	input, _ := json.Marshal(map[string]any{"script": "echo hi"})
	_, err := r.Execute(context.Background(), cfg, "bash", input)
	require.NoError(t, err)
	assert.True(t, fake.waited, "bash needs a runtime and must wait for init")
}

func TestRegistry_executeSkipsInitWaitForNonRuntimeTools(t *testing.T) {
	cfg := testConfig(t)
	fake := &fakeInitStateManager{}
	cfg.InitStateManager = fake

	r := NewRegistry()
	_, err := r.Execute(context.Background(), cfg, "todo_read", nil)
	require.NoError(t, err)
	assert.False(t, fake.waited, "todo_read has no runtime dependency")
}

func TestRegistry_executePropagatesInitFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.InitStateManager = &fakeInitStateManager{err: fmt.Errorf("workspace not ready")}

	r := NewRegistry()
	input, _ := json.Marshal(map[string]any{"script": "echo hi"})
	_, err := r.Execute(context.Background(), cfg, "bash", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace not ready")
}

func TestRegistry_executeUnknownToolErrors(t *testing.T) {
	cfg := testConfig(t)
	r := NewRegistry()
	_, err := r.Execute(context.Background(), cfg, "does_not_exist", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}
