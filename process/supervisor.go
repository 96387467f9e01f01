// Package process implements the supervisor that spawns a shell as a
// detached process-group leader, wires its stdio through the output
// accountant, and guarantees the group is killed on every terminal path:
// success, error, abort, timeout, or output truncation.
package process

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lowkaihon/toolcore/output"
	"github.com/lowkaihon/toolcore/runtime"
)

// readGrace is the short pause after exit code resolution that gives
// buffered lines a chance to finish processing before readers are torn
// down, per the spec's completion model.
const readGrace = 10 * time.Millisecond

// State is the supervisor's terminal classification for one call.
type State int

const (
	StateExited State = iota
	StateAborted
	StateTimedOut
	StateFileTruncated
)

// Result is what a supervised run produces, independent of any tool-level
// formatting (the bash tool layers overflow-policy formatting on top).
type Result struct {
	State      State
	ExitCode   int
	Output     *output.Accountant
	WallMS     int64
	PrecheckErr error // set when a precheck rejected the call before spawn, or when spawning or waiting failed
}

// PrecheckFunc validates a script before it is ever spawned. Returning a
// non-nil error aborts the call with wall_duration_ms = 0.
type PrecheckFunc func(script string) error

// Supervisor runs one bash call end to end.
type Supervisor struct {
	Runtime runtime.Runtime
	Log     *logrus.Entry
}

func New(rt runtime.Runtime, log *logrus.Entry) *Supervisor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Supervisor{Runtime: rt, Log: log}
}

// Run executes script under the given options and accounting policy,
// honoring external cancellation via the cancel channel (closed by the
// caller, e.g. on an Esc keypress forwarded from the tool host).
func (s *Supervisor) Run(ctx context.Context, script string, opts runtime.ExecOptions, policy output.Policy, cancel <-chan struct{}, prechecks ...PrecheckFunc) Result {
	for _, pc := range prechecks {
		if err := pc(script); err != nil {
			return Result{PrecheckErr: err}
		}
	}

	start := time.Now()

	// The abort channel is owned by the supervisor so that a file
	// truncation decision (discovered mid-stream, inside this call) can
	// trigger the exact same kill path as an external cancellation.
	abort := make(chan struct{})
	var abortOnce sync.Once
	triggerAbort := func() { abortOnce.Do(func() { close(abort) }) }

	go func() {
		select {
		case <-cancel:
			triggerAbort()
		case <-abort:
		}
	}()

	opts.Abort = abort

	stream, err := s.Runtime.Exec(ctx, script, opts)
	if err != nil {
		return Result{State: StateExited, ExitCode: -1, WallMS: millisSince(start),
			Output: output.New(policy), PrecheckErr: fmt.Errorf("spawn failed: %w", err)}
	}

	// The spawned shell never reads input from the assistant; stdin is
	// force-closed immediately and unconditionally, not a polite close —
	// over a remote transport a polite close can itself hang.
	_ = stream.Stdin.Close()

	acct := output.New(policy)

	var wg sync.WaitGroup
	var fileTruncatedOnce sync.Once
	onFileTruncation := func() {
		fileTruncatedOnce.Do(triggerAbort)
	}

	wg.Add(2)
	go pumpLines(&wg, stream.Stdout, acct, onFileTruncation)
	go pumpLines(&wg, stream.Stderr, acct, onFileTruncation)

	exitCode, waitErr := stream.Wait(ctx)

	// Short grace window for any buffered lines still being processed by
	// the pump goroutines, then tear down readers unconditionally.
	doneReading := make(chan struct{})
	go func() { wg.Wait(); close(doneReading) }()
	select {
	case <-doneReading:
	case <-time.After(readGrace):
	}

	wallMS := millisSince(start)
	snap := acct.Snapshot()

	result := Result{Output: acct, WallMS: wallMS, ExitCode: exitCode}

	switch {
	case waitErr != nil:
		result.State = StateExited
		result.ExitCode = -1
		result.PrecheckErr = fmt.Errorf("wait failed: %w", waitErr)
	case exitCode == runtime.ExitCodeAborted && snap.FileTruncated:
		result.State = StateFileTruncated
	case exitCode == runtime.ExitCodeAborted:
		result.State = StateAborted
	case exitCode == runtime.ExitCodeTimeout:
		result.State = StateTimedOut
	default:
		result.State = StateExited
	}

	s.Log.WithFields(logrus.Fields{
		"state":     result.State,
		"exit_code": result.ExitCode,
		"wall_ms":   result.WallMS,
	}).Debug("process: call complete")

	return result
}

func millisSince(start time.Time) int64 {
	return time.Since(start).Round(time.Millisecond).Milliseconds()
}

// pumpLines reads newline-delimited text from r and offers each line to
// acct, in arrival order for this stream. onOverflow fires exactly once,
// the moment the accountant reports a file-level truncation.
func pumpLines(wg *sync.WaitGroup, r io.Reader, acct *output.Accountant, onOverflow func()) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if acct.Offer(scanner.Text()) {
			onOverflow()
			return
		}
	}
}

// Preconditions ----------------------------------------------------------

var leadingSleepRE = regexp.MustCompile(`^\s*sleep(\s|$)`)

// RejectEmpty rejects a script that is empty after trimming.
func RejectEmpty(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("Script parameter is empty. This likely indicates a malformed tool call.")
	}
	return nil
}

// RejectLeadingSleep bans scripts that start with a bare sleep, since that
// wastes wall clock the caller is paying for; a polling loop
// (`while ! cond; do sleep 1; done`) is the suggested remedy. Sleep inside a
// loop is fine — only a leading sleep is rejected.
func RejectLeadingSleep(script string) error {
	if leadingSleepRE.MatchString(strings.TrimSpace(script)) {
		return fmt.Errorf("do not start commands with sleep — wastes wall clock; use a polling loop instead (e.g. `while ! cond; do sleep 1; done`)")
	}
	return nil
}

var redundantCdRE = regexp.MustCompile(`^\s*cd\s+['"]?([^'";&|]+)['"]?\s*[;&|]`)

// RejectRedundantCd rejects `cd <cwd> && ...` where the target is already
// the tool's working directory, since the cd does nothing but costs a
// round trip the model could have skipped.
func RejectRedundantCd(normalize func(target, base string) string, cwd string) PrecheckFunc {
	return func(script string) error {
		m := redundantCdRE.FindStringSubmatch(script)
		if m == nil {
			return nil
		}
		target := strings.TrimSpace(m[1])
		if normalize(target, cwd) == normalize(".", cwd) {
			return fmt.Errorf("redundant cd to the current working directory (%s) — drop the cd, commands already run from cwd", cwd)
		}
		return nil
	}
}
