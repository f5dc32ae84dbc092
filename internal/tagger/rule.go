package tagger

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"lowher/internal/types"
)

// RuleTagger is a heuristic entity tagger with no model behind it.
// Fully uppercase tokens are acronym-like and protected; runs of two or
// more adjacent capitalized words form a proper-noun phrase; a lone
// capitalized word is an entity unless it opens a sentence, where
// capitalization carries no signal.
type RuleTagger struct{}

// NewRuleTagger creates a RuleTagger.
func NewRuleTagger() *RuleTagger {
	return &RuleTagger{}
}

// Classify implements Tagger.
func (t *RuleTagger) Classify(_ context.Context, text string) ([]types.Token, error) {
	tokens := Tokenize(text)

	sentenceStart := true
	for i := 0; i < len(tokens); i++ {
		tok := &tokens[i]

		if tok.Category == types.TokenPunct {
			if endsSentence(tok.Text) || paragraphBreak(*tok) {
				sentenceStart = true
			}
			continue
		}
		if tok.Category != types.TokenWord {
			// Uppercase and number tokens keep their base category;
			// they do not open or extend a capitalized phrase.
			sentenceStart = paragraphBreak(*tok)
			continue
		}

		if isCapitalized(tok.Text) {
			run := capitalizedRun(tokens, i)
			if run > 1 {
				for j := i; j < i+run; j++ {
					tokens[j].Category = types.TokenOrganization
				}
				i += run - 1
				sentenceStart = paragraphBreak(tokens[i])
				continue
			}
			if !sentenceStart {
				tok.Category = types.TokenPerson
			}
		}
		sentenceStart = paragraphBreak(*tok)
	}

	return tokens, nil
}

// endsSentence reports whether a punctuation token terminates a
// sentence.
func endsSentence(punct string) bool {
	return strings.ContainsAny(punct, ".!?")
}

// paragraphBreak reports whether the whitespace after tok contains a
// blank line, which opens a new sentence regardless of punctuation.
func paragraphBreak(tok types.Token) bool {
	return strings.Contains(tok.Whitespace, "\n\n")
}

// isCapitalized reports whether word starts with an uppercase letter
// followed by at least one lowercase letter.
func isCapitalized(word string) bool {
	first, size := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(first) || size >= len(word) {
		return false
	}
	for _, r := range word[size:] {
		if unicode.IsLetter(r) && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// capitalizedRun counts the adjacent capitalized word tokens starting
// at index i. Adjacent means separated only by whitespace; punctuation
// breaks the run.
func capitalizedRun(tokens []types.Token, i int) int {
	run := 0
	for j := i; j < len(tokens); j++ {
		if tokens[j].Category != types.TokenWord || !isCapitalized(tokens[j].Text) {
			break
		}
		run++
	}
	return run
}
