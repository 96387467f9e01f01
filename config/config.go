// Package config defines the per-call tool configuration and the
// compile-time tunables shared across the tool implementations, plus
// XDG-compliant resolution of the default runtime temp directory when a
// tool host doesn't supply one.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/google/uuid"

	"github.com/lowkaihon/toolcore/runtime"
)

// Tunables. Documented as compile-time constants, not per-call arguments —
// see spec §4.2 and §4.4.
const (
	BashDefaultTimeoutSecs = 3
	MaxFileSize            = 1 << 20 // 1 MiB, C5/C6 file-size reject threshold
	MaxTodos                = 7
	MaxReadLines            = 1000
	MaxReadBytes            = 16 * 1024
	MaxReadLineBytes        = 1024
	TruncatedLineSuffix     = "... [truncated]"
	MaxSearchResults        = 100
	MaxSearchContextLines   = 3
	MaxListDepth            = 10
	DefaultListDepth        = 1
	DefaultMaxEntries       = 64
	HardMaxEntries          = 128
	MaxStatusMessageLen     = 40
)

// WriteDeniedPrefix tags every file-edit error reply so the tool host can
// surface edit-pipeline rejections distinctly from other tool errors.
const WriteDeniedPrefix = "WRITE_DENIED: "

// OverflowPolicy selects between inline truncated output and an out-of-band
// preserved file for the bash tool.
type OverflowPolicy string

const (
	OverflowTruncate OverflowPolicy = "truncate"
	OverflowTmpfile  OverflowPolicy = "tmpfile"
)

// InitStateManager signals when a workspace's runtime-dependent setup has
// finished. Runtime-backed tools must block on WaitForInit before doing any
// work; it is a no-op for already-initialized workspaces and for runtimes
// that don't require async init.
type InitStateManager interface {
	WaitForInit(ctx context.Context, workspaceID string) error
}

// ToolConfiguration is the per-call context every tool is invoked with. It
// has no shared mutability with other calls — one value per tool call.
type ToolConfiguration struct {
	Cwd             string
	Runtime         runtime.Runtime
	WorkspaceID     string
	InitStateManager InitStateManager
	Secrets         map[string]string
	Niceness        *int // [-20, 19]
	RuntimeTempDir  string
	OverflowPolicy  OverflowPolicy
}

// WithDefaults fills in WorkspaceID and RuntimeTempDir when the caller left
// them empty, generalizing the teacher's own project-hash-under-home-dir
// scheme (agent/paths.go) to a workspace-ID-keyed XDG cache directory.
func (c ToolConfiguration) WithDefaults() (ToolConfiguration, error) {
	if c.WorkspaceID == "" {
		c.WorkspaceID = uuid.NewString()
	}
	if c.OverflowPolicy == "" {
		c.OverflowPolicy = OverflowTmpfile
	}
	if c.RuntimeTempDir == "" {
		dir, err := defaultRuntimeTempDir(c.WorkspaceID)
		if err != nil {
			return c, err
		}
		c.RuntimeTempDir = dir
	}
	return c, nil
}

// defaultRuntimeTempDir resolves ~/.cache/toolcore/<workspace-id> (or
// $XDG_CACHE_HOME equivalent) via xdg.CacheHome, mirroring
// jesseduffield-lazydocker's use of the same library for its config
// directory, and creates it if missing.
func defaultRuntimeTempDir(workspaceID string) (string, error) {
	dir := filepath.Join(xdg.New("", "toolcore").CacheHome(), workspaceID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
