// Package transform applies the case decision to masked text: either a
// blind lowercase pass, or a per-token pass driven by an injected
// tagger that keeps named entities and uppercase tokens intact.
package transform

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lowher/internal/logger"
	"lowher/internal/tagger"
)

// CaseTransformer lowercases masked text. The zero value is not usable;
// construct with NewBlind or NewTokenwise.
type CaseTransformer struct {
	tagger tagger.Tagger
}

// NewBlind returns a transformer that lowercases the whole string in
// one pass. Valid only on masked text: every case-sensitive protected
// span must already be a case-stable placeholder.
func NewBlind() *CaseTransformer {
	return &CaseTransformer{}
}

// NewTokenwise returns a transformer that decides case per token using
// the given tagger.
func NewTokenwise(t tagger.Tagger) *CaseTransformer {
	return &CaseTransformer{tagger: t}
}

// Apply transforms text. The returned token count is zero in blind mode.
func (c *CaseTransformer) Apply(ctx context.Context, text string) (string, int, error) {
	if c.tagger == nil {
		return lower(text), 0, nil
	}

	tokens, err := c.tagger.Classify(ctx, text)
	if err != nil {
		return "", 0, err
	}

	var sb strings.Builder
	sb.Grow(len(text))
	kept := 0
	for _, tok := range tokens {
		if tok.Category.Protected() {
			sb.WriteString(tok.Text)
			kept++
		} else {
			sb.WriteString(lower(tok.Text))
		}
		sb.WriteString(tok.Whitespace)
	}

	logger.Debug("tokenwise case transform",
		logger.Int("tokenCount", len(tokens)),
		logger.Int("protectedTokens", kept))

	return sb.String(), len(tokens), nil
}

// lower applies a Unicode-aware lowercase mapping. A cases.Caser is
// stateful, so a fresh one is taken per call rather than shared.
func lower(s string) string {
	return cases.Lower(language.English).String(s)
}
