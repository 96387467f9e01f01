package tools

import (
	"context"
	"encoding/json"

	"github.com/lowkaihon/toolcore/config"
)

// proposePlanTool and compactSummaryTool are the two no-op side channels
// named in spec §6's tool table but left unspecified beyond "no-op side
// channels with typed payloads" — they exist so a tool host can route a
// plan or a compaction summary through the same typed-result discipline as
// every other tool, with nothing for this core to validate or persist.

type proposePlanInput struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

func (r *Registry) proposePlanTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[proposePlanInput](input)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"success": true, "summary": params.Summary, "steps": params.Steps})
}

type compactSummaryInput struct {
	Summary string `json:"summary"`
}

func (r *Registry) compactSummaryTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[compactSummaryInput](input)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"success": true, "summary": params.Summary})
}
