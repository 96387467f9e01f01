package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/lowkaihon/toolcore/config"
)

type statusInput struct {
	Emoji   string `json:"emoji"`
	Message string `json:"message"`
}

type statusResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
	Message string `json:"message,omitempty"`
}

// statusSetTool implements spec C7 status_set. Backend effect is a no-op —
// the tool host surfaces the live indicator — so all the work here is
// input validation: exactly one grapheme cluster, and that cluster must be
// an emoji rather than ordinary text.
func (r *Registry) statusSetTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[statusInput](input)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(params.Message); n > config.MaxStatusMessageLen {
		return json.Marshal(statusResult{Success: false, Error: fmt.Sprintf("message is %d characters, longer than the %d character limit", n, config.MaxStatusMessageLen)})
	}
	if err := validateEmojiGrapheme(params.Emoji); err != nil {
		return json.Marshal(statusResult{Success: false, Error: err.Error()})
	}
	return json.Marshal(statusResult{Success: true, Emoji: params.Emoji, Message: params.Message})
}

// validateEmojiGrapheme uses uniseg's UAX #29 grapheme cluster
// segmentation to require exactly one cluster in emoji, then checks every
// rune in that cluster against the Extended_Pictographic /
// Emoji_Presentation ranges so a plain-text grapheme (a letter, a digit, a
// combining accent) is rejected.
func validateEmojiGrapheme(emoji string) error {
	if emoji == "" {
		return fmt.Errorf("emoji is required")
	}
	gr := uniseg.NewGraphemes(emoji)
	if !gr.Next() {
		return fmt.Errorf("emoji must contain exactly one grapheme cluster")
	}
	first := gr.Str()
	if gr.Next() {
		return fmt.Errorf("emoji must be exactly one grapheme cluster, got more than one")
	}
	if first != emoji {
		return fmt.Errorf("emoji must be exactly one grapheme cluster")
	}

	sawPictographic := false
	for _, r := range first {
		if unicode.Is(emojiRanges, r) {
			sawPictographic = true
			continue
		}
		if isEmojiJoinerOrModifier(r) {
			continue
		}
		return fmt.Errorf("grapheme %q is not an emoji", emoji)
	}
	if !sawPictographic {
		return fmt.Errorf("grapheme %q is not an emoji", emoji)
	}
	return nil
}

func isEmojiJoinerOrModifier(r rune) bool {
	switch {
	case r == 0x200D: // ZERO WIDTH JOINER
		return true
	case r == 0xFE0F: // VARIATION SELECTOR-16 (emoji presentation)
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // Fitzpatrick skin tone modifiers
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicator symbols (flags)
		return true
	default:
		return false
	}
}

// emojiRanges approximates Unicode's Extended_Pictographic / Emoji_Presentation
// property. The Unicode Character Database ships this as a generated property
// table, not as a reusable range table in any package in the dependency
// corpus; the ranges below cover the blocks that carry the overwhelming
// majority of real-world emoji usage.
var emojiRanges = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},   // Misc symbols, Dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1},   // Misc symbols and arrows
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // Regional indicator symbols (flags)
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // Misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // Emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // Transport and map symbols
		{Lo: 0x1F700, Hi: 0x1F77F, Stride: 1}, // Alchemical symbols
		{Lo: 0x1F780, Hi: 0x1F7FF, Stride: 1}, // Geometric shapes extended
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // Supplemental symbols and pictographs
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // Symbols and pictographs extended-A
	},
}
