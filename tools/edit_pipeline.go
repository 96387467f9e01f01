package tools

import (
	"context"
	"fmt"
	"io"

	"github.com/lowkaihon/toolcore/config"
)

// editOutcome is what a variant's operation callback (step 6 of the
// pipeline) returns: either the new content plus variant-specific metadata
// to merge into the success result, or a rejection reason.
type editOutcome struct {
	NewContent string
	Metadata   map[string]any
}

type editOp func(content string) (editOutcome, error)

// editResult is the typed result every file_edit_* variant returns.
type editResult struct {
	Success bool           `json:"success"`
	Diff    string         `json:"diff,omitempty"`
	Error   string         `json:"error,omitempty"`
	Extra   map[string]any `json:"-"`
}

// toMap flattens Extra alongside the fixed fields, so each variant's
// metadata (edits_applied, lines_replaced, line_delta, ...) appears at the
// top level of the result rather than nested.
func (e editResult) toMap() map[string]any {
	m := map[string]any{"success": e.Success}
	if e.Success || e.Diff != "" {
		m["diff"] = e.Diff
	}
	if e.Error != "" {
		m["error"] = e.Error
	}
	for k, v := range e.Extra {
		m[k] = v
	}
	return m
}

// runEditPipeline implements spec C5 steps 1-8, shared by the three edit
// variants. op is the variant-specific pure transform (step 6); allowMissing
// lets file_edit_insert create a missing file with empty content first.
func runEditPipeline(ctx context.Context, cfg config.ToolConfiguration, requestedPath string, allowMissing bool, op editOp) map[string]any {
	resolved, err := resolvePath(cfg, requestedPath)
	if err != nil {
		return deniedResult(err)
	}

	var original string
	st, statErr := cfg.Runtime.Stat(ctx, resolved)
	switch {
	case statErr != nil && allowMissing:
		original = ""
	case statErr != nil:
		return deniedResult(fmt.Errorf("stat %s: %w", resolved, statErr))
	default:
		if st.IsDirectory {
			return deniedResult(fmt.Errorf("%s is a directory, not a file", resolved))
		}
		if st.Size > config.MaxFileSize {
			return deniedResult(fmt.Errorf("%s is %d bytes, larger than the %d byte limit — use grep/sed/awk via bash instead", resolved, st.Size, config.MaxFileSize))
		}
		content, readErr := readAll(ctx, cfg, resolved)
		if readErr != nil {
			return deniedResult(fmt.Errorf("read %s: %w", resolved, readErr))
		}
		original = content
	}

	outcome, err := op(original)
	if err != nil {
		return deniedResult(err)
	}

	if err := writeAll(ctx, cfg, resolved, outcome.NewContent); err != nil {
		return deniedResult(fmt.Errorf("write %s: %w", resolved, err))
	}

	result := editResult{Success: true, Diff: unifiedDiff(resolved, original, outcome.NewContent), Extra: outcome.Metadata}
	return result.toMap()
}

func deniedResult(err error) map[string]any {
	return map[string]any{
		"success": false,
		"error":   config.WriteDeniedPrefix + err.Error(),
	}
}

func readAll(ctx context.Context, cfg config.ToolConfiguration, resolved string) (string, error) {
	rc, err := cfg.Runtime.ReadFile(ctx, resolved)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeAll(ctx context.Context, cfg config.ToolConfiguration, resolved, content string) error {
	wc, err := cfg.Runtime.WriteFile(ctx, resolved)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(wc, content); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
