package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Local is the direct-process-spawn, direct-filesystem Runtime variant.
type Local struct {
	Log *logrus.Entry
}

// NewLocal returns a Local runtime. A nil log discards all logging.
func NewLocal(log *logrus.Entry) *Local {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = logrus.NewEntry(l)
	}
	return &Local{Log: log}
}

func (l *Local) Exec(ctx context.Context, script string, opts ExecOptions) (*ExecStream, error) {
	var cmd *exec.Cmd
	if opts.Niceness != nil {
		cmd = exec.Command("nice", "-n", strconv.Itoa(*opts.Niceness), "bash", "-c", script)
	} else {
		cmd = exec.Command("bash", "-c", script)
	}
	cmd.Dir = opts.Cwd
	cmd.Env = mergeEnv(os.Environ(), opts.Env)
	detachProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	l.Log.WithFields(logrus.Fields{"pid": cmd.Process.Pid, "cwd": opts.Cwd}).Debug("runtime: spawned local process group")

	resultCh := make(chan error, 1)
	go func() { resultCh <- cmd.Wait() }()

	var once sync.Once
	var exitCode int
	var waitErr error
	done := make(chan struct{})

	go func() {
		defer once.Do(func() { close(done) })

		var timer *time.Timer
		var timerCh <-chan time.Time
		if opts.Timeout > 0 {
			timer = time.NewTimer(opts.Timeout)
			timerCh = timer.C
			defer timer.Stop()
		}

		select {
		case err := <-resultCh:
			exitCode, waitErr = classifyExit(err)
			// The shell itself has exited; kill the group anyway so any
			// backgrounded descendants do not outlive the call.
			_ = killProcessGroup(cmd.Process.Pid)
		case <-timerCh:
			l.Log.WithField("pid", cmd.Process.Pid).Warn("runtime: timeout, killing process group")
			_ = killProcessGroup(cmd.Process.Pid)
			<-resultCh // reap
			exitCode, waitErr = ExitCodeTimeout, nil
		case <-opts.Abort:
			l.Log.WithField("pid", cmd.Process.Pid).Warn("runtime: abort signal, killing process group")
			_ = killProcessGroup(cmd.Process.Pid)
			<-resultCh // reap
			exitCode, waitErr = ExitCodeAborted, nil
		}
	}()

	wait := func(ctx context.Context) (int, error) {
		select {
		case <-done:
			return exitCode, waitErr
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	return &ExecStream{Stdin: stdin, Stdout: stdout, Stderr: stderr, Wait: wait}, nil
}

// classifyExit turns a cmd.Wait() error into an exit code, the way the
// stdlib idiom does: unwrap *exec.ExitError for the code, anything else is
// a genuine spawn/wait failure.
func classifyExit(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func mergeEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overlay))
	out = append(out, base...)
	for k, v := range overlay {
		out = append(out, k+"="+v)
	}
	return out
}

func (l *Local) Stat(_ context.Context, path string) (FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStat{}, err
	}
	return FileStat{Size: info.Size(), IsDirectory: info.IsDir(), ModTime: info.ModTime()}, nil
}

func (l *Local) ReadFile(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// WriteFile returns a sink that writes to a temp file in the same directory
// and renames over the target on Close, so a reader never observes a
// partially-written file — the write is atomic from the caller's
// perspective, as C5 (the file edit pipeline) requires.
func (l *Local) WriteFile(_ context.Context, path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".toolcore-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	mode := os.FileMode(0644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	return &atomicFile{f: tmp, target: path, mode: mode}, nil
}

type atomicFile struct {
	f      *os.File
	target string
	mode   os.FileMode
}

func (a *atomicFile) Write(p []byte) (int, error) { return a.f.Write(p) }

func (a *atomicFile) Close() error {
	tmpPath := a.f.Name()
	if err := a.f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, a.mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, a.target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (l *Local) NormalizePath(target, base string) string {
	return NormalizeLocal(target, base)
}
