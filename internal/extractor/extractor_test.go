package extractor

import (
	"testing"

	"lowher/internal/types"
)

func allOptions() Options {
	return Options{ProtectCapitalized: true, ProtectAcronyms: true}
}

func TestExtract_FencedCodeBlock(t *testing.T) {
	text := "before\n```\nMixed CASE\ncode\n```\nafter"
	spans := New(Options{}).Extract(text)

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %v", len(spans), spans)
	}
	if spans[0].Category != types.SpanCodeBlock {
		t.Errorf("expected CodeBlock, got %s", spans[0].Category)
	}
	want := "```\nMixed CASE\ncode\n```"
	if spans[0].Text != want {
		t.Errorf("expected span text %q, got %q", want, spans[0].Text)
	}
	if text[spans[0].Start:spans[0].End] != want {
		t.Errorf("span interval does not match text: %q", text[spans[0].Start:spans[0].End])
	}
}

func TestExtract_InlineCode(t *testing.T) {
	spans := New(Options{}).Extract("use `myFunc()` here")

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Category != types.SpanInlineCode {
		t.Errorf("expected InlineCode, got %s", spans[0].Category)
	}
	if spans[0].Text != "`myFunc()`" {
		t.Errorf("unexpected span text %q", spans[0].Text)
	}
}

func TestExtract_UnbalancedBacktickDoesNotCrossNewline(t *testing.T) {
	spans := New(Options{}).Extract("a stray ` backtick\nand `real` code")

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %v", len(spans), spans)
	}
	if spans[0].Text != "`real`" {
		t.Errorf("expected `real`, got %q", spans[0].Text)
	}
}

func TestExtract_AcronymsAndCapitalized(t *testing.T) {
	text := "The NASA report cites Smith twice"
	spans := New(allOptions()).Extract(text)

	var got []string
	for _, s := range spans {
		got = append(got, s.Category.String()+":"+s.Text)
	}
	want := []string{
		"CapitalizedWord:The",
		"Acronym:NASA",
		"CapitalizedWord:Smith",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExtract_OptionsDisableWordSpans(t *testing.T) {
	text := "The NASA report"

	if spans := New(Options{ProtectAcronyms: true}).Extract(text); len(spans) != 1 || spans[0].Text != "NASA" {
		t.Errorf("acronyms only: unexpected spans %v", spans)
	}
	if spans := New(Options{}).Extract(text); len(spans) != 0 {
		t.Errorf("no options: unexpected spans %v", spans)
	}
}

func TestExtract_NoSubstringMatches(t *testing.T) {
	// Uppercase runs inside longer words must not match on their own.
	spans := New(Options{ProtectAcronyms: true}).Extract("miXEDcase")
	if len(spans) != 0 {
		t.Errorf("expected no spans, got %v", spans)
	}
}

func TestExtract_WordInsideCodeBlockNotProtectedSeparately(t *testing.T) {
	text := "Run ```Example CODE``` now"
	spans := New(allOptions()).Extract(text)

	for _, s := range spans {
		if s.Category != types.SpanCodeBlock && s.Start > 3 && s.End < len(text)-4 {
			t.Errorf("span inside code block leaked: %v", s)
		}
	}
	if spans[1].Category != types.SpanCodeBlock {
		t.Errorf("expected code block as second span, got %v", spans[1])
	}
}

func TestExtract_PlaceholderLiteralAlwaysProtected(t *testing.T) {
	spans := New(Options{}).Extract("text with a literal <<<span_3>>> inside")

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != "<<<span_3>>>" {
		t.Errorf("unexpected span text %q", spans[0].Text)
	}
}

func TestExtract_SpansSortedAndNonOverlapping(t *testing.T) {
	text := "Alpha BETA `code` Gamma DELTA ```block``` End"
	spans := New(allOptions()).Extract(text)

	lastEnd := -1
	for _, s := range spans {
		if s.Start < lastEnd {
			t.Fatalf("spans overlap or are unsorted: %v", spans)
		}
		lastEnd = s.End
	}
}
