package generator

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

const truncationMarker = "\n[LOG_TRUNCATED]"

// tokenBudget caps the sanitized log text so oversized logs never blow the
// provider context window. When the tiktoken encoding cannot be loaded the
// budget falls back to a bytes-per-token estimate.
type tokenBudget struct {
	enc *tiktoken.Tiktoken
	max int
}

func newTokenBudget(max int, log *slog.Logger) *tokenBudget {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Warn("tiktoken encoding unavailable, falling back to byte estimate", "error", err)
		enc = nil
	}
	return &tokenBudget{enc: enc, max: max}
}

func (b *tokenBudget) truncate(text string) string {
	if b.max <= 0 {
		return text
	}

	if b.enc == nil {
		// Rough cl100k average of ~4 bytes per token.
		limit := b.max * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit] + truncationMarker
	}

	tokens := b.enc.Encode(text, nil, nil)
	if len(tokens) <= b.max {
		return text
	}
	return b.enc.Decode(tokens[:b.max]) + truncationMarker
}
