package runtime

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_execCapturesStdout(t *testing.T) {
	l := NewLocal(nil)
	stream, err := l.Exec(context.Background(), "echo hi", ExecOptions{Cwd: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, stream.Stdin.Close())

	out, err := io.ReadAll(stream.Stdout)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))

	code, err := stream.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestLocal_writeFileIsAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	l := NewLocal(nil)
	wc, err := l.WriteFile(context.Background(), target)
	require.NoError(t, err)
	_, err = wc.Write([]byte("new content"))
	require.NoError(t, err)

	// Before Close, the target must still read as the old content.
	before, _ := os.ReadFile(target)
	assert.Equal(t, "old", string(before))

	require.NoError(t, wc.Close())
	after, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(after))
}

func TestLocal_statReportsDirectory(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(nil)
	st, err := l.Stat(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, st.IsDirectory)
}

func TestNormalizeLocal_absoluteStaysAbsolute(t *testing.T) {
	assert.Equal(t, "/a/b", NormalizeLocal("/a/../a/b", "/base"))
}

func TestNormalizeLocal_relativeResolvesAgainstBase(t *testing.T) {
	assert.Equal(t, "/base/c", NormalizeLocal("c", "/base"))
}

func TestNormalizePOSIX_neverUsesHostSeparators(t *testing.T) {
	assert.Equal(t, "/base/c", NormalizePOSIX("c", "/base"))
	assert.Equal(t, "/a/b", NormalizePOSIX("/a/../a/b", "/base"))
}
