// Package tagger provides token classification for entity-aware case
// decisions. A Tagger splits text into tokens that carry their exact
// trailing whitespace and labels each one; the case transformer keeps
// protected categories verbatim and lowercases the rest.
//
// Three implementations exist: a rule-based heuristic, an ONNX
// token-classification model, and an OpenAI-compatible chat model. The
// model-backed taggers degrade to the rule tagger when their backend
// fails, so entity mode never hard-fails on a missing model or API.
package tagger

import (
	"context"

	"lowher/internal/types"
)

// Tagger classifies the tokens of a text. Implementations must be safe
// for concurrent use and must preserve, per token, the whitespace that
// followed it, so that re-assembly is byte-exact.
type Tagger interface {
	Classify(ctx context.Context, text string) ([]types.Token, error)
}

// Reassemble concatenates tokens back into the exact string they were
// produced from.
func Reassemble(tokens []types.Token) string {
	n := 0
	for _, t := range tokens {
		n += len(t.Text) + len(t.Whitespace)
	}
	buf := make([]byte, 0, n)
	for _, t := range tokens {
		buf = append(buf, t.Text...)
		buf = append(buf, t.Whitespace...)
	}
	return string(buf)
}
