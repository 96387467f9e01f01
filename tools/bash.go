package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lowkaihon/toolcore/config"
	"github.com/lowkaihon/toolcore/output"
	"github.com/lowkaihon/toolcore/process"
	"github.com/lowkaihon/toolcore/runtime"
)

type bashInput struct {
	Script      string  `json:"script"`
	TimeoutSecs float64 `json:"timeout_secs"`
}

// blockerEnv is injected on every bash child to stop interactive editor or
// credential prompts from hanging a command like `git commit` or
// `git rebase -i` — spec §4.1/§6, not configurable per call.
var blockerEnv = map[string]string{
	"GIT_EDITOR":          "true",
	"GIT_SEQUENCE_EDITOR":  "true",
	"EDITOR":              "true",
	"VISUAL":              "true",
	"GIT_TERMINAL_PROMPT": "0",
}

type bashResult struct {
	Success   bool           `json:"success"`
	Output    string         `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	ExitCode  int            `json:"exitCode"`
	WallMS    int64          `json:"wall_duration_ms"`
	Truncated *truncatedInfo `json:"truncated,omitempty"`
}

type truncatedInfo struct {
	Reason     string `json:"reason"`
	TotalLines int    `json:"totalLines"`
}

func (r *Registry) bashTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[bashInput](input)
	if err != nil {
		return nil, err
	}

	timeoutSecs := params.TimeoutSecs
	if timeoutSecs <= 0 {
		timeoutSecs = config.BashDefaultTimeoutSecs
	}

	env := make(map[string]string, len(blockerEnv)+len(cfg.Secrets))
	for k, v := range blockerEnv {
		env[k] = v
	}
	for k, v := range cfg.Secrets {
		env[k] = v
	}

	opts := runtime.ExecOptions{
		Cwd:      cfg.Cwd,
		Env:      env,
		Timeout:  time.Duration(timeoutSecs * float64(time.Second)),
		Niceness: cfg.Niceness,
	}

	policy := output.PolicyTmpfile
	if cfg.OverflowPolicy == config.OverflowTruncate {
		policy = output.PolicyTruncate
	}

	sup := process.New(cfg.Runtime, logrus.NewEntry(logrus.StandardLogger()))
	res := sup.Run(ctx, params.Script, opts, policy, ctx.Done(),
		process.RejectEmpty,
		process.RejectLeadingSleep,
		process.RejectRedundantCd(cfg.Runtime.NormalizePath, cfg.Cwd),
	)

	if res.PrecheckErr != nil {
		return json.Marshal(bashResult{Success: false, Error: res.PrecheckErr.Error(), ExitCode: -1, WallMS: 0})
	}

	switch res.State {
	case process.StateAborted:
		return json.Marshal(bashResult{Success: false, Error: "Command execution was aborted", ExitCode: -1, WallMS: res.WallMS})
	case process.StateTimedOut:
		return json.Marshal(bashResult{Success: false, Error: fmt.Sprintf("Command exceeded timeout of %g seconds", timeoutSecs), ExitCode: -1, WallMS: res.WallMS})
	case process.StateFileTruncated:
		return r.overflowResult(ctx, cfg, res)
	}

	snap := res.Output.Snapshot()
	joined := strings.Join(snap.Lines, "\n")
	if snap.DisplayTruncated {
		return r.overflowResult(ctx, cfg, res)
	}

	if res.ExitCode == 0 {
		out := joined
		if out == "" {
			out = "(no output)"
		}
		return json.Marshal(bashResult{Success: true, Output: out, ExitCode: 0, WallMS: res.WallMS})
	}
	return json.Marshal(bashResult{
		Success:  false,
		Output:   joined,
		Error:    fmt.Sprintf("Command exited with code %d", res.ExitCode),
		ExitCode: res.ExitCode,
		WallMS:   res.WallMS,
	})
}

// overflowResult handles any overflow — display-level (process ran to
// completion, output just exceeded the display/line caps) or file-level
// (process was killed after exceeding the file-preservation cap). Both
// follow the same tmpfile-vs-truncate split: tmpfile policy writes the full
// preserved output to runtimeTempDir and names that file instead of
// inlining it; truncate policy inlines.
func (r *Registry) overflowResult(ctx context.Context, cfg config.ToolConfiguration, res process.Result) (json.RawMessage, error) {
	snap := res.Output.Snapshot()
	joined := strings.Join(snap.Lines, "\n")

	if cfg.OverflowPolicy == config.OverflowTruncate {
		return json.Marshal(bashResult{
			Success: false, Output: joined, ExitCode: -1, WallMS: res.WallMS,
			Error:     fmt.Sprintf("[OUTPUT OVERFLOW] %s", snap.OverflowReason),
			Truncated: &truncatedInfo{Reason: snap.OverflowReason, TotalLines: len(snap.Lines)},
		})
	}

	name := fmt.Sprintf("bash-%s.txt", randomHex8())
	path := cfg.RuntimeTempDir + "/" + name
	wc, err := cfg.Runtime.WriteFile(ctx, path)
	if err == nil {
		_, werr := wc.Write([]byte(joined))
		cerr := wc.Close()
		if werr != nil || cerr != nil {
			err = werr
			if err == nil {
				err = cerr
			}
		}
	}
	if err != nil {
		return json.Marshal(bashResult{
			Success: false, ExitCode: -1, WallMS: res.WallMS,
			Error: fmt.Sprintf("[OUTPUT OVERFLOW] %s, and the preserved-output file could not be written: %v", snap.OverflowReason, err),
		})
	}

	return json.Marshal(bashResult{
		Success: false, ExitCode: -1, WallMS: res.WallMS,
		Error: fmt.Sprintf("[OUTPUT OVERFLOW] %s. Full output (%d lines) preserved to %s — use file_read with offset/limit or file_search to inspect it selectively rather than reading it whole.",
			snap.OverflowReason, len(snap.Lines), path),
		Truncated: &truncatedInfo{Reason: snap.OverflowReason, TotalLines: len(snap.Lines)},
	})
}

func randomHex8() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
