// Package extractor finds the spans of a text that must survive the
// lowercase transform unmodified. Spans are recorded as explicit byte
// intervals against the immutable input, so duplicate literal text never
// causes ambiguity downstream.
package extractor

import (
	"regexp"
	"sort"

	"lowher/internal/logger"
	"lowher/internal/types"
)

var (
	// fenced code blocks: ```...``` non-greedy, may span newlines
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	// inline code spans: `...` on a single line, so an unbalanced
	// backtick cannot swallow the rest of the document
	inlineCodePattern = regexp.MustCompile("`[^`\n]*`")
	// simple capitalized word
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	// acronym: 2+ consecutive uppercase letters
	acronymPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	// literal text that already looks like one of our placeholders must
	// be captured too, or restoration could confuse it with a real one
	placeholderLiteralPattern = regexp.MustCompile(`<<<span_\d+>>>`)
)

// Options selects which span categories the extractor emits. Code spans
// and placeholder-shaped literals are always protected.
type Options struct {
	// ProtectCapitalized emits spans for [A-Z][a-z]+ words.
	ProtectCapitalized bool
	// ProtectAcronyms emits spans for 2+ letter uppercase runs.
	ProtectAcronyms bool
}

// Extractor scans text for protected spans. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	opts Options
}

// New creates an Extractor with the given options.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract returns the protected spans of text, sorted by start offset,
// with overlaps resolved by category precedence (code blocks win over
// inline code, which wins over word-level spans).
func (e *Extractor) Extract(text string) []types.Span {
	var spans []types.Span

	spans = append(spans, findPattern(text, fencedCodePattern, types.SpanCodeBlock)...)
	spans = append(spans, findPattern(text, inlineCodePattern, types.SpanInlineCode)...)
	spans = append(spans, findPattern(text, placeholderLiteralPattern, types.SpanInlineCode)...)
	if e.opts.ProtectAcronyms {
		spans = append(spans, findPattern(text, acronymPattern, types.SpanAcronym)...)
	}
	if e.opts.ProtectCapitalized {
		spans = append(spans, findPattern(text, capitalizedPattern, types.SpanCapitalizedWord)...)
	}

	spans = removeOverlapping(spans)

	logger.Debug("extracted protected spans",
		logger.Int("spanCount", len(spans)),
		logger.Int("textLength", len(text)))

	return spans
}

// findPattern records every match of re as a span of the given category.
func findPattern(text string, re *regexp.Regexp, category types.SpanCategory) []types.Span {
	var spans []types.Span

	matches := re.FindAllStringIndex(text, -1)
	for _, m := range matches {
		spans = append(spans, types.Span{
			Category: category,
			Start:    m[0],
			End:      m[1],
			Text:     text[m[0]:m[1]],
		})
	}

	return spans
}

// removeOverlapping sorts spans by start offset and drops any span that
// overlaps an already accepted one. Ties at the same offset resolve by
// category rank, then by span length, so a capitalized word inside a
// code block is never separately protected.
func removeOverlapping(spans []types.Span) []types.Span {
	if len(spans) <= 1 {
		return spans
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		if spans[i].Category.Rank() != spans[j].Category.Rank() {
			return spans[i].Category.Rank() < spans[j].Category.Rank()
		}
		return spans[i].End-spans[i].Start > spans[j].End-spans[j].Start
	})

	result := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if s.Start < lastEnd {
			continue
		}
		result = append(result, s)
		lastEnd = s.End
	}

	return result
}
