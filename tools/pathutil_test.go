package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath_rejectsRedundantWorkspacePrefix(t *testing.T) {
	cfg := testConfig(t)
	_, err := resolvePath(cfg, cfg.Cwd+"/a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already rooted at the workspace directory")
}

func TestResolvePath_rejectsTraversalOutsideWorkspace(t *testing.T) {
	cfg := testConfig(t)
	_, err := resolvePath(cfg, "../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolves outside the workspace directory")
}

func TestResolvePath_acceptsRelativePathInsideWorkspace(t *testing.T) {
	cfg := testConfig(t)
	resolved, err := resolvePath(cfg, "sub/a.txt")
	require.NoError(t, err)
	assert.Contains(t, resolved, "sub/a.txt")
}

func TestIsWithinWorkspace_exactAndDescendant(t *testing.T) {
	assert.True(t, isWithinWorkspace("/workspace", "/workspace"))
	assert.True(t, isWithinWorkspace("/workspace", "/workspace/a"))
	assert.False(t, isWithinWorkspace("/workspace", "/workspace-sibling/a"))
	assert.False(t, isWithinWorkspace("/workspace", "/other"))
}

func TestStatChecked_rejectsDirectory(t *testing.T) {
	cfg := testConfig(t)
	_, err := statChecked(context.Background(), cfg, cfg.Cwd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
