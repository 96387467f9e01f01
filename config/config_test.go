package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaults_fillsWorkspaceIDAndTempDir(t *testing.T) {
	cfg, err := ToolConfiguration{Cwd: t.TempDir()}.WithDefaults()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.WorkspaceID)
	assert.NotEmpty(t, cfg.RuntimeTempDir)
	assert.Equal(t, OverflowTmpfile, cfg.OverflowPolicy)
}

func TestWithDefaults_preservesExplicitValues(t *testing.T) {
	cfg, err := ToolConfiguration{
		Cwd:            t.TempDir(),
		WorkspaceID:    "fixed-id",
		OverflowPolicy: OverflowTruncate,
		RuntimeTempDir: "/tmp/explicit",
	}.WithDefaults()
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", cfg.WorkspaceID)
	assert.Equal(t, OverflowTruncate, cfg.OverflowPolicy)
	assert.Equal(t, "/tmp/explicit", cfg.RuntimeTempDir)
}

func TestWithDefaults_distinctWorkspacesGetDistinctTempDirs(t *testing.T) {
	a, err := ToolConfiguration{Cwd: t.TempDir()}.WithDefaults()
	require.NoError(t, err)
	b, err := ToolConfiguration{Cwd: t.TempDir()}.WithDefaults()
	require.NoError(t, err)

	assert.NotEqual(t, a.RuntimeTempDir, b.RuntimeTempDir)
}
