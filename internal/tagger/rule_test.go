package tagger

import (
	"context"
	"testing"

	"lowher/internal/types"
)

// categoryOf returns the category assigned to the first token whose
// text equals word.
func categoryOf(t *testing.T, tokens []types.Token, word string) types.TokenCategory {
	t.Helper()
	for _, tok := range tokens {
		if tok.Text == word {
			return tok.Category
		}
	}
	t.Fatalf("token %q not found in %v", word, tokens)
	return types.TokenWord
}

func classify(t *testing.T, text string) []types.Token {
	t.Helper()
	tokens, err := NewRuleTagger().Classify(context.Background(), text)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	return tokens
}

func TestRuleTagger_SentenceInitialCapitalNotEntity(t *testing.T) {
	tokens := classify(t, "This is a test.")

	if got := categoryOf(t, tokens, "This"); got != types.TokenWord {
		t.Errorf("sentence-initial capitalized word: expected Word, got %s", got)
	}
}

func TestRuleTagger_MidSentenceCapitalIsEntity(t *testing.T) {
	tokens := classify(t, "we met Smith yesterday.")

	if got := categoryOf(t, tokens, "Smith"); got != types.TokenPerson {
		t.Errorf("expected Person, got %s", got)
	}
}

func TestRuleTagger_CapitalizedRunIsOrganization(t *testing.T) {
	tokens := classify(t, "read the Proper Noun Detection report")

	for _, word := range []string{"Proper", "Noun", "Detection"} {
		if got := categoryOf(t, tokens, word); got != types.TokenOrganization {
			t.Errorf("%q: expected Organization, got %s", word, got)
		}
	}
	if got := categoryOf(t, tokens, "report"); got != types.TokenWord {
		t.Errorf("word after run: expected Word, got %s", got)
	}
}

func TestRuleTagger_SentenceInitialRunStillProtected(t *testing.T) {
	// A multi-word capitalized phrase is an entity even at the start of
	// a sentence; only the lone capitalized word is ambiguous there.
	tokens := classify(t, "John Doe wrote this.")

	if got := categoryOf(t, tokens, "John"); got != types.TokenOrganization {
		t.Errorf("expected Organization, got %s", got)
	}
	if got := categoryOf(t, tokens, "Doe"); got != types.TokenOrganization {
		t.Errorf("expected Organization, got %s", got)
	}
}

func TestRuleTagger_UppercaseTokenProtected(t *testing.T) {
	tokens := classify(t, "the NASA budget")

	if got := categoryOf(t, tokens, "NASA"); got != types.TokenUppercase {
		t.Errorf("expected Uppercase, got %s", got)
	}
}

func TestRuleTagger_SentenceBoundaryResets(t *testing.T) {
	tokens := classify(t, "we saw it. This happened later.")

	if got := categoryOf(t, tokens, "This"); got != types.TokenWord {
		t.Errorf("capitalized word after sentence end: expected Word, got %s", got)
	}
}

func TestRuleTagger_ParagraphBreakResets(t *testing.T) {
	tokens := classify(t, "some text\n\nNext paragraph here")

	if got := categoryOf(t, tokens, "Next"); got != types.TokenWord {
		t.Errorf("capitalized word after paragraph break: expected Word, got %s", got)
	}
}

func TestRuleTagger_ReassemblyIsExact(t *testing.T) {
	text := "  This is John Doe. NASA, it said,\n\nhad 42 reasons!  "
	tokens := classify(t, text)

	if got := Reassemble(tokens); got != text {
		t.Errorf("reassembly mismatch:\n  want %q\n  got  %q", text, got)
	}
}
