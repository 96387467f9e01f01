package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/lowkaihon/toolcore/config"
)

// TodoStatus is one of the three lifecycle states a todo item can be in.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// Todo is the persisted shape of one item in runtimeTempDir/todos.json.
type Todo struct {
	Content string     `json:"content"`
	Status  TodoStatus `json:"status"`
}

func todoPath(cfg config.ToolConfiguration) string {
	return cfg.Runtime.NormalizePath(cfg.RuntimeTempDir+"/todos.json", cfg.Cwd)
}

// loadTodos treats any failure to produce bytes (missing file locally, a
// failed `cat` over the remote transport) as the documented "missing file"
// case and returns an empty list, rather than trying to distinguish
// not-found from other I/O errors across two very different transports.
func loadTodos(ctx context.Context, cfg config.ToolConfiguration) ([]Todo, error) {
	rc, err := cfg.Runtime.ReadFile(ctx, todoPath(cfg))
	if err != nil {
		return []Todo{}, nil
	}
	b, readErr := io.ReadAll(rc)
	closeErr := rc.Close()
	if readErr != nil || closeErr != nil || len(b) == 0 {
		return []Todo{}, nil
	}
	var todos []Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// validateTodos enforces spec §3/§4.7's invariants in the documented order:
// type check (handled by JSON unmarshal before this runs), phase order,
// single in_progress, and the MAX_TODOS cap.
func validateTodos(todos []Todo) error {
	seenInProgress := false
	seenPending := false
	for _, t := range todos {
		switch t.Status {
		case TodoCompleted:
			if seenInProgress || seenPending {
				return fmt.Errorf("completed todo %q must precede any in_progress or pending todo", t.Content)
			}
		case TodoInProgress:
			if seenPending {
				return fmt.Errorf("in_progress todo %q must precede any pending todo", t.Content)
			}
			seenInProgress = true
		case TodoPending:
			seenPending = true
		default:
			return fmt.Errorf("todo %q has unknown status %q", t.Content, t.Status)
		}
	}

	inProgressCount := lo.CountBy(todos, func(t Todo) bool { return t.Status == TodoInProgress })
	if inProgressCount > 1 {
		return fmt.Errorf("at most one todo may be in_progress, found %d", inProgressCount)
	}

	if len(todos) > config.MaxTodos {
		return fmt.Errorf("too many TODOs (%d/%d). Keep high precision at the center of current work — collapse finished or speculative items instead of tracking everything", len(todos), config.MaxTodos)
	}

	return nil
}

type todoListResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Todos   []Todo `json:"todos,omitempty"`
}

func (r *Registry) todoReadTool(ctx context.Context, cfg config.ToolConfiguration, _ json.RawMessage) (json.RawMessage, error) {
	todos, err := loadTodos(ctx, cfg)
	if err != nil {
		return json.Marshal(todoListResult{Success: false, Error: err.Error()})
	}
	return json.Marshal(todoListResult{Success: true, Todos: todos})
}

type todoWriteInput struct {
	Todos []Todo `json:"todos"`
}

// todoWriteTool replaces the todo list wholesale after validating
// invariants. A failed validation leaves the previous file untouched
// (spec T2) — validate happens entirely before any write.
func (r *Registry) todoWriteTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[todoWriteInput](input)
	if err != nil {
		return nil, err
	}

	if err := validateTodos(params.Todos); err != nil {
		return json.Marshal(todoListResult{Success: false, Error: err.Error()})
	}

	b, err := json.MarshalIndent(params.Todos, "", "  ")
	if err != nil {
		return json.Marshal(todoListResult{Success: false, Error: err.Error()})
	}

	wc, err := cfg.Runtime.WriteFile(ctx, todoPath(cfg))
	if err != nil {
		return json.Marshal(todoListResult{Success: false, Error: err.Error()})
	}
	if _, err := wc.Write(b); err != nil {
		wc.Close()
		return json.Marshal(todoListResult{Success: false, Error: err.Error()})
	}
	if err := wc.Close(); err != nil {
		return json.Marshal(todoListResult{Success: false, Error: err.Error()})
	}

	return json.Marshal(todoListResult{Success: true, Todos: params.Todos})
}
