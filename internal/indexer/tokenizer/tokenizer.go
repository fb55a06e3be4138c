// Package tokenizer splits raw lines into whitespace-delimited tokens and
// normalises tokens into the canonical keys used by the inverted index.
//
// Normalisation lower-cases the token and then drops every rune that is not
// alphabetic. Nothing is replaced, so "don't" becomes "dont" and
// "well-known" becomes "wellknown". Tokens made only of digits or
// punctuation normalise to the empty string.
package tokenizer

import (
	"strings"
	"unicode"
)

// Normalize returns the index key for a raw token. It never fails; the
// result may be empty.
func Normalize(token string) string {
	lower := strings.ToLower(token)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if isAlphabetic(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fields splits a line on Unicode whitespace.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Terms tokenises a line and normalises every token, preserving order and
// duplicates. Empty keys are kept.
func Terms(line string) []string {
	fields := Fields(line)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, Normalize(f))
	}
	return terms
}

// LowerFields lower-cases a line and splits it on whitespace without
// stripping punctuation. This is the token form keyword extraction works on.
func LowerFields(line string) []string {
	return Fields(strings.ToLower(line))
}

// isAlphabetic matches the Unicode Alphabetic property: letters, letter
// numbers and the Other_Alphabetic combining marks.
func isAlphabetic(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.Is(unicode.Nl, r) ||
		unicode.Is(unicode.Other_Alphabetic, r)
}
