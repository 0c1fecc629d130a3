package text

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// StemToken returns the english snowball stem of a single token, lowercased.
func StemToken(token string) string {
	return english.Stem(token, true)
}

// Stem stems every whitespace-delimited token of s and re-joins them.
// Stemming is token-count preserving: a token that stems to nothing keeps its lowercase form.
func Stem(s string) string {
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if st := StemToken(tok); st != "" {
			tokens[i] = st
		} else {
			tokens[i] = strings.ToLower(tok)
		}
	}
	return strings.Join(tokens, " ")
}
