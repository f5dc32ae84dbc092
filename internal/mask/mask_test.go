package mask

import (
	"strings"
	"testing"

	"lowher/internal/types"
)

func span(cat types.SpanCategory, start int, text string) types.Span {
	return types.Span{Category: cat, Start: start, End: start + len(text), Text: text}
}

func TestMaskRestore_RoundTrip(t *testing.T) {
	text := "keep NASA and `code` safe"
	spans := []types.Span{
		span(types.SpanAcronym, 5, "NASA"),
		span(types.SpanInlineCode, 14, "`code`"),
	}

	masked, mapping := Mask(text, spans)

	if strings.Contains(masked, "NASA") || strings.Contains(masked, "`code`") {
		t.Errorf("masked text still contains span text: %q", masked)
	}
	if len(mapping) != 2 {
		t.Fatalf("expected 2 mapping entries, got %d", len(mapping))
	}
	if got := Restore(masked, mapping); got != text {
		t.Errorf("round trip mismatch:\n  want %q\n  got  %q", text, got)
	}
}

func TestMask_PlaceholdersAreLowercaseStable(t *testing.T) {
	text := "A B C"
	spans := []types.Span{
		span(types.SpanCapitalizedWord, 0, "A"),
		span(types.SpanCapitalizedWord, 2, "B"),
		span(types.SpanCapitalizedWord, 4, "C"),
	}

	masked, mapping := Mask(text, spans)
	lowered := strings.ToLower(masked)

	if got := Restore(lowered, mapping); got != text {
		t.Errorf("blind lowercase broke a placeholder:\n  masked  %q\n  lowered %q\n  got     %q", masked, lowered, got)
	}
}

func TestMask_DuplicateLiteralsRestorePositionally(t *testing.T) {
	text := "NASA first, NASA second"
	spans := []types.Span{
		span(types.SpanAcronym, 0, "NASA"),
		span(types.SpanAcronym, 12, "NASA"),
	}

	masked, mapping := Mask(text, spans)

	if mapping[0].Placeholder == mapping[1].Placeholder {
		t.Fatal("duplicate spans must get distinct placeholders")
	}
	if got := Restore(masked, mapping); got != text {
		t.Errorf("duplicate literal round trip mismatch: %q", got)
	}
}

func TestMask_EmptySpans(t *testing.T) {
	masked, mapping := Mask("nothing protected", nil)
	if masked != "nothing protected" || mapping != nil {
		t.Errorf("unexpected result for empty spans: %q %v", masked, mapping)
	}
}

func TestRestore_SkipsDestroyedPlaceholder(t *testing.T) {
	mapping := types.Mapping{
		{Placeholder: Placeholder(0), Original: "KEPT"},
		{Placeholder: Placeholder(1), Original: "LOST"},
	}
	// Placeholder 1 was mangled by the transform.
	text := "a " + Placeholder(0) + " b <<<destroyed>>> c"

	got := Restore(text, mapping)
	want := "a KEPT b <<<destroyed>>> c"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRestore_DoesNotRescanRestoredText(t *testing.T) {
	// A restored span whose original text is itself placeholder-shaped
	// must not be matched again by a later entry.
	mapping := types.Mapping{
		{Placeholder: Placeholder(0), Original: "`literal " + Placeholder(1) + "`"},
		{Placeholder: Placeholder(1), Original: "REAL"},
	}
	text := Placeholder(0) + " and " + Placeholder(1)

	got := Restore(text, mapping)
	want := "`literal " + Placeholder(1) + "` and REAL"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRestore_ForeignPlaceholderLeftAlone(t *testing.T) {
	text := "contains <<<span_99>>> from nowhere"
	if got := Restore(text, nil); got != text {
		t.Errorf("foreign placeholder altered: %q", got)
	}
}

func TestMissingAndLeaked(t *testing.T) {
	mapping := types.Mapping{
		{Placeholder: Placeholder(0), Original: "a"},
		{Placeholder: Placeholder(1), Original: "b"},
	}

	missing := Missing("only "+Placeholder(0)+" here", mapping)
	if len(missing) != 1 || missing[0] != Placeholder(1) {
		t.Errorf("expected [%s], got %v", Placeholder(1), missing)
	}

	leaked := Leaked("output with " + Placeholder(7) + " left over")
	if len(leaked) != 1 || leaked[0] != Placeholder(7) {
		t.Errorf("expected [%s], got %v", Placeholder(7), leaked)
	}
	if leaked := Leaked("clean output"); len(leaked) != 0 {
		t.Errorf("expected no leaks, got %v", leaked)
	}
}
