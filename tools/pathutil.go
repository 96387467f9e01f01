package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/lowkaihon/toolcore/config"
	"github.com/lowkaihon/toolcore/runtime"
)

// resolvePath runs the first three steps of the file edit pipeline (spec C5
// steps 1-3): reject a redundant absolute-path prefix, confine the result to
// the workspace, then resolve it through the runtime's own path semantics.
// Every tool that touches a single file (edit variants, file_read,
// file_search) shares this, not just the edit pipeline.
func resolvePath(cfg config.ToolConfiguration, requestedPath string) (string, error) {
	if strings.HasPrefix(requestedPath, cfg.Cwd) {
		return "", fmt.Errorf("path %q is already rooted at the workspace directory — pass it relative to the workspace instead", requestedPath)
	}

	candidate := cfg.Runtime.NormalizePath(requestedPath, cfg.Cwd)

	if !isWithinWorkspace(cfg.Cwd, candidate) {
		return "", fmt.Errorf("path %q resolves outside the workspace directory — this tool is restricted to the workspace directory, ask the user for permission first", requestedPath)
	}

	return candidate, nil
}

// isWithinWorkspace reports whether candidate is cwd itself or a
// descendant of it, working on plain path strings so it applies equally
// to POSIX-normalized remote paths and host-normalized local ones.
func isWithinWorkspace(cwd, candidate string) bool {
	cwd = strings.TrimRight(cwd, "/")
	return candidate == cwd || strings.HasPrefix(candidate, cwd+"/")
}

// statChecked stats a resolved path and rejects directories and
// over-size files in one shot, used by file_read. The edit pipeline and
// file_search run the same checks inline.
func statChecked(ctx context.Context, cfg config.ToolConfiguration, resolved string) (runtime.FileStat, error) {
	st, err := cfg.Runtime.Stat(ctx, resolved)
	if err != nil {
		return runtime.FileStat{}, fmt.Errorf("stat %s: %w", resolved, err)
	}
	if st.IsDirectory {
		return runtime.FileStat{}, fmt.Errorf("%s is a directory, not a file", resolved)
	}
	if st.Size > config.MaxFileSize {
		return runtime.FileStat{}, fmt.Errorf("%s is %d bytes, larger than the %d byte limit — use grep/sed/awk via bash instead of reading it whole", resolved, st.Size, config.MaxFileSize)
	}
	return st, nil
}
