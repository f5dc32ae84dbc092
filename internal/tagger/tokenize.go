package tagger

import (
	"unicode"
	"unicode/utf8"

	"lowher/internal/types"
)

// Tokenize splits text into word, number and punctuation tokens, each
// carrying the exact run of whitespace that followed it. Concatenating
// Text+Whitespace over the result reproduces text byte for byte; any
// whitespace before the first token is attached to a leading empty
// punctuation token.
func Tokenize(text string) []types.Token {
	var tokens []types.Token

	i := 0
	for i < len(text) {
		start := i

		// Leading or inter-token whitespace with no token to attach
		// to yet: emit an empty carrier token.
		ws := scanWhitespace(text, i)
		if ws > i {
			if len(tokens) == 0 {
				tokens = append(tokens, types.Token{
					Whitespace: text[i:ws],
					Category:   types.TokenPunct,
				})
			} else {
				tokens[len(tokens)-1].Whitespace += text[i:ws]
			}
			i = ws
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
		} else {
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if isWordRune(r) || unicode.IsSpace(r) {
					break
				}
				i += size
			}
		}

		word := text[start:i]
		trailing := scanWhitespace(text, i)
		tokens = append(tokens, types.Token{
			Text:       word,
			Whitespace: text[i:trailing],
			Category:   baseCategory(word),
		})
		i = trailing
	}

	return tokens
}

// scanWhitespace returns the offset after the whitespace run at i.
func scanWhitespace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			return i
		}
		i += size
	}
	return i
}

// isWordRune reports whether r belongs inside a word token.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// baseCategory assigns the surface-level category of a token before any
// entity tagging: numbers, punctuation, fully uppercase words, or plain
// words.
func baseCategory(word string) types.TokenCategory {
	hasLetter := false
	hasDigit := false
	allUpper := true
	for _, r := range word {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
			if !unicode.IsUpper(r) {
				allUpper = false
			}
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasLetter && hasDigit:
		return types.TokenNumber
	case !hasLetter:
		return types.TokenPunct
	case allUpper:
		return types.TokenUppercase
	default:
		return types.TokenWord
	}
}
