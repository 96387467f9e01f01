// Package runtime provides the uniform capability contract — process exec,
// file stat/read/write, and path normalization — that every tool in this
// module is written against. A Runtime is either Local (direct OS calls) or
// Remote (SSH-tunneled); callers never branch on which one they hold, and
// path resolution always goes through NormalizePath rather than host-local
// path logic.
package runtime

import (
	"context"
	"io"
	"time"
)

// Sentinel exit codes. These sit outside the shell's natural 0-255 exit
// range so callers can distinguish "the command finished" from "we killed
// it" without inspecting signals.
const (
	ExitCodeAborted = -1000
	ExitCodeTimeout = -1001
)

// FileStat is the metadata a Runtime reports for a path.
type FileStat struct {
	Size        int64
	IsDirectory bool
	ModTime     time.Time
}

// ExecOptions configures a single Exec call. Env holds the variables the
// caller wants merged on top of the runtime's ambient environment (secrets
// plus any hard-coded blockers); it is not the full environment.
type ExecOptions struct {
	Cwd      string
	Env      map[string]string
	Timeout  time.Duration // <= 0 means no timeout
	Niceness *int          // nil = unset; valid range [-20, 19]

	// Abort, when closed, must cause the process group to receive SIGKILL
	// exactly as a timeout would, surfaced as ExitCodeAborted instead of
	// ExitCodeTimeout. The caller owns this channel and decides when (or
	// whether) to close it.
	Abort <-chan struct{}
}

// ExecStream is the live handle to a spawned shell. It is terminated by
// exactly one of: ExitCode resolving naturally, the Abort channel closing,
// or the configured Timeout elapsing. Stdin is a plain WriteCloser; callers
// that don't want to feed input must close it immediately, since the
// spawned shell never reads interactively.
type ExecStream struct {
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	// Wait blocks until the process reaches a terminal state and returns
	// its exit code (or one of the sentinels above). Safe to call from
	// multiple goroutines; all calls observe the same result.
	Wait func(ctx context.Context) (int, error)
}

// Runtime is the capability bundle every tool is written against.
type Runtime interface {
	Exec(ctx context.Context, script string, opts ExecOptions) (*ExecStream, error)
	Stat(ctx context.Context, path string) (FileStat, error)
	ReadFile(ctx context.Context, path string) (io.ReadCloser, error)
	WriteFile(ctx context.Context, path string) (io.WriteCloser, error)

	// NormalizePath resolves target against base using the runtime's own
	// path semantics (POSIX for remote runtimes). This is the only correct
	// way to resolve a path against this runtime.
	NormalizePath(target, base string) string
}
