// Package output implements the line-buffered output accounting used by the
// bash tool: per-line, total-display, and total-preservation byte caps, with
// a two-stage (display / preservation) truncation policy so agents can
// reuse truncated output without re-running expensive commands.
package output

import (
	"fmt"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Policy names the two overflow-cap profiles a caller can select.
type Policy int

const (
	// PolicyTmpfile is the default for agent callers: tight display caps,
	// a hard preservation cap, killing the process on file truncation.
	PolicyTmpfile Policy = iota
	// PolicyTruncate is for IPC callers: looser caps, no per-line cap, no
	// line-count cap, everything returned inline.
	PolicyTruncate
)

// Tunables, documented as compile-time constants rather than per-call
// arguments, per the spec.
const (
	HardMaxLines    = 300        // display cap on line count (tmpfile policy)
	MaxLineBytes    = 1024       // a single line longer than this is corruption
	MaxTotalBytes   = 16 * 1024  // display cap on total bytes
	MaxFileBytes    = 100 * 1024 // preservation cap (tmpfile policy)
	TruncateMaxBytes = 1 << 20   // total cap for the truncate (IPC) policy
)

// Accountant tracks the monotonic truncation state for one bash call. Once
// a flag is set it never clears; Lines and TotalBytes only increase.
type Accountant struct {
	mu deadlock.Mutex

	policy Policy

	lines           []string
	totalBytes      int
	displayTruncated bool
	fileTruncated   bool
	overflowReason  string
}

// New returns an Accountant configured for the given overflow policy.
func New(policy Policy) *Accountant {
	return &Accountant{policy: policy}
}

func (a *Accountant) maxLineBytes() int {
	if a.policy == PolicyTruncate {
		return 0 // disabled
	}
	return MaxLineBytes
}

func (a *Accountant) maxFileBytes() int {
	if a.policy == PolicyTruncate {
		return TruncateMaxBytes
	}
	return MaxFileBytes
}

func (a *Accountant) maxTotalBytes() int {
	if a.policy == PolicyTruncate {
		return TruncateMaxBytes
	}
	return MaxTotalBytes
}

func (a *Accountant) maxLines() int {
	if a.policy == PolicyTruncate {
		return 0 // disabled
	}
	return HardMaxLines
}

// Offer appends one line of output (without its trailing newline) per the
// spec's five-step algorithm. It returns true when this call triggers file
// truncation, and on every call after that, meaning the caller's process
// must be killed now.
func (a *Accountant) Offer(line string) (killNow bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fileTruncated {
		return true
	}

	b := len(line)
	if maxLB := a.maxLineBytes(); maxLB > 0 && b > maxLB {
		a.triggerFileTruncation(fmt.Sprintf("line %d exceeded per-line limit", len(a.lines)+1))
		return true
	}

	nextTotal := a.totalBytes + b + 1
	if nextTotal > a.maxFileBytes() {
		a.triggerFileTruncation("would exceed file preservation limit")
		return true
	}

	a.lines = append(a.lines, line)
	a.totalBytes = nextTotal

	if !a.displayTruncated {
		if a.totalBytes > a.maxTotalBytes() {
			a.triggerDisplayTruncation("exceeded display limit")
		} else if maxLines := a.maxLines(); maxLines > 0 && len(a.lines) >= maxLines {
			a.triggerDisplayTruncation("exceeded line count")
		}
	}

	return false
}

func (a *Accountant) triggerFileTruncation(reason string) {
	a.fileTruncated = true
	a.displayTruncated = true
	if a.overflowReason == "" {
		a.overflowReason = reason
	}
}

func (a *Accountant) triggerDisplayTruncation(reason string) {
	a.displayTruncated = true
	if a.overflowReason == "" {
		a.overflowReason = reason
	}
}

// Snapshot is a point-in-time, read-only view of the accounting state.
type Snapshot struct {
	Lines            []string
	TotalBytes       int
	DisplayTruncated bool
	FileTruncated    bool
	OverflowReason   string
}

// Snapshot returns the current accounting state. Safe to call concurrently
// with Offer.
func (a *Accountant) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	lines := make([]string, len(a.lines))
	copy(lines, a.lines)
	return Snapshot{
		Lines:            lines,
		TotalBytes:       a.totalBytes,
		DisplayTruncated: a.displayTruncated,
		FileTruncated:    a.fileTruncated,
		OverflowReason:   a.overflowReason,
	}
}
