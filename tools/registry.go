// Package tools implements the fixed tool surface (spec §6) above the
// runtime, output-accounting, and process-supervisor packages: the bash
// tool, the three file-edit variants, file read/search/list, and the
// todo/status/plan side channels. Every tool is a pure function of a
// per-call ToolConfiguration and a JSON input — no tool holds state across
// calls beyond what's persisted to runtimeTempDir.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lowkaihon/toolcore/config"
)

// ToolFunc is the signature every tool implementation satisfies. The
// returned error is reserved for boundary failures (malformed JSON input,
// unknown tool name) — business-level failure is a typed result with
// success:false, never a Go error, per the propagation policy in spec §7.
type ToolFunc func(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error)

type toolEntry struct {
	name        string
	description string
	schema      json.RawMessage
	fn          ToolFunc
	readOnly    bool
	needsRuntime bool
}

// Registry holds the fixed tool set and dispatches by name.
type Registry struct {
	tools []toolEntry
}

// NewRegistry builds a registry with every tool in the spec's fixed set
// (§6) registered in stable order.
func NewRegistry() *Registry {
	r := &Registry{}
	r.registerBuiltins()
	return r
}

func (r *Registry) register(name, description string, schema json.RawMessage, readOnly, needsRuntime bool, fn ToolFunc) {
	r.tools = append(r.tools, toolEntry{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
		readOnly:    readOnly,
		needsRuntime: needsRuntime,
	})
}

// Execute runs a tool by name, gating runtime-dependent tools on
// cfg.InitStateManager.WaitForInit first, per spec §5's init gate.
func (r *Registry) Execute(ctx context.Context, cfg config.ToolConfiguration, name string, input json.RawMessage) (json.RawMessage, error) {
	for _, t := range r.tools {
		if t.name != name {
			continue
		}
		if t.needsRuntime && cfg.InitStateManager != nil {
			if err := cfg.InitStateManager.WaitForInit(ctx, cfg.WorkspaceID); err != nil {
				return nil, fmt.Errorf("waiting for workspace init: %w", err)
			}
		}
		return t.fn(ctx, cfg, input)
	}
	return nil, fmt.Errorf("unknown tool: %s", name)
}

// IsReadOnly reports whether name never mutates the filesystem or todo
// store, mirroring the teacher's read-only tool classification.
func (r *Registry) IsReadOnly(name string) bool {
	for _, t := range r.tools {
		if t.name == name {
			return t.readOnly
		}
	}
	return false
}

// Definitions returns the tool schemas in stable registration order, the
// shape a tool host translates into each LLM provider's function-calling
// format.
type Definition struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, len(r.tools))
	for i, t := range r.tools {
		defs[i] = Definition{Name: t.name, Description: t.description, Schema: t.schema}
	}
	return defs
}

func (r *Registry) registerBuiltins() {
	r.register("bash",
		`Execute a shell command in the workspace. Use for terminal operations like git, builds, tests, and other system commands. Do NOT use bash for file operations (reading, writing, editing, searching) — use the dedicated tools instead. Specifically, do not use cat, head, tail, sed, awk, find, grep, or echo when a dedicated tool exists.

Default timeout: 3s, raise timeout_secs for long-running commands. Output beyond the line/byte caps is either truncated inline or preserved to a temp file, depending on overflow policy.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"script": {"type": "string", "description": "Shell script to execute"},
				"timeout_secs": {"type": "number", "description": "Timeout in seconds (default: 3)"}
			},
			"required": ["script"]
		}`),
		false, true,
		r.bashTool,
	)

	r.register("file_read",
		`Read file contents with line numbers (1-indexed, "N\tcontent" format). Use offset/limit for large files to read specific sections. Always prefer this over bash cat/head/tail.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "File path to read"},
				"offset": {"type": "integer", "description": "First line to read (1-indexed, default: 1)"},
				"limit": {"type": "integer", "description": "Maximum number of lines to read"}
			},
			"required": ["file_path"]
		}`),
		true, true,
		r.fileReadTool,
	)

	r.register("file_edit_replace_string",
		`Edit a file by replacing an exact string match. old_string must appear exactly once unless replace_count names how many occurrences to replace (-1 for all). Preserve exact whitespace/indentation from file_read output.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string"},
				"old_string": {"type": "string"},
				"new_string": {"type": "string"},
				"replace_count": {"type": "integer", "description": "Number of occurrences to replace (default 1, -1 for all)"}
			},
			"required": ["file_path", "old_string", "new_string"]
		}`),
		false, true,
		r.editReplaceStringTool,
	)

	r.register("file_edit_replace_lines",
		`Edit a file by replacing an inclusive line range with new_lines. Set new_lines to an empty array to delete the range. Pass expected_lines to guard against the file having changed since it was last read.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string"},
				"start_line": {"type": "integer"},
				"end_line": {"type": "integer"},
				"new_lines": {"type": "array", "items": {"type": "string"}},
				"expected_lines": {"type": "array", "items": {"type": "string"}, "description": "Pre-image check: current content of [start_line,end_line]"}
			},
			"required": ["file_path", "start_line", "end_line", "new_lines"]
		}`),
		false, true,
		r.editReplaceLinesTool,
	)

	r.register("file_edit_insert",
		`Insert content after line_offset (0 inserts at the top of the file). Set create:true to create a missing file with empty content first.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string"},
				"line_offset": {"type": "integer"},
				"content": {"type": "string"},
				"create": {"type": "boolean"}
			},
			"required": ["file_path", "line_offset", "content"]
		}`),
		false, true,
		r.editInsertTool,
	)

	r.register("file_search",
		`Search for a literal substring within one file. Returns matching lines with surrounding context. Use file_list + bash grep for repo-wide search; this tool is scoped to a single file_path.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string"},
				"pattern": {"type": "string", "description": "Literal substring to search for (case-sensitive)"},
				"context_lines": {"type": "integer", "description": "Lines of context before/after each match (default 3)"},
				"max_results": {"type": "integer", "description": "Maximum matches to return (default 100)"}
			},
			"required": ["file_path", "pattern"]
		}`),
		true, true,
		r.fileSearchTool,
	)

	r.register("file_list",
		`List directory contents. Directories sort before files, alphabetical within each group. .git is always skipped; .gitignore patterns are applied unless gitignore:false.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Directory to list (default: workspace root)"},
				"max_depth": {"type": "integer", "description": "Recursion depth (default 1, max 10)"},
				"pattern": {"type": "string", "description": "Glob pattern filter, e.g. '*.go'"},
				"gitignore": {"type": "boolean", "description": "Apply .gitignore filtering (default true)"},
				"max_entries": {"type": "integer", "description": "Entry cap (default 64, hard max 128)"}
			}
		}`),
		true, true,
		r.fileListTool,
	)

	r.register("todo_read",
		`Read the current todo list. Todo state is already in the system prompt at the start of each turn — this is rarely needed except after heavy context compaction.`,
		json.RawMessage(`{"type": "object", "properties": {}}`),
		true, false,
		r.todoReadTool,
	)

	r.register("todo_write",
		`Replace the todo list. At most one item may be in_progress; ordering must be completed*, then at most one in_progress, then pending*.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"todos": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"content": {"type": "string"},
							"status": {"type": "string", "enum": ["pending", "in_progress", "completed"]}
						},
						"required": ["content", "status"]
					}
				}
			},
			"required": ["todos"]
		}`),
		false, false,
		r.todoWriteTool,
	)

	r.register("status_set",
		`Set a one-line live status indicator: a single emoji plus a short message (<=40 chars). Surfaced by the tool host while other tool calls are still resolving.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"emoji": {"type": "string", "description": "Exactly one emoji grapheme cluster"},
				"message": {"type": "string"}
			},
			"required": ["emoji", "message"]
		}`),
		false, false,
		r.statusSetTool,
	)

	r.register("propose_plan",
		`Side channel for surfacing a proposed multi-step plan to the user ahead of execution. No-op at this layer — returns the payload unchanged for the tool host to render.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"summary": {"type": "string"},
				"steps": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["summary", "steps"]
		}`),
		true, false,
		r.proposePlanTool,
	)

	r.register("compact_summary",
		`Side channel for recording a context-compaction summary. No-op at this layer — returns the payload unchanged for the tool host to persist.`,
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"summary": {"type": "string"}
			},
			"required": ["summary"]
		}`),
		true, false,
		r.compactSummaryTool,
	)
}
