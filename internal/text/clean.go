// Package text holds the lexical helpers of the re-ranker: cleaning,
// tokenizing, stemming, stopwords, n-grams, match location and highlighting.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

// tagRegex matches markup tags such as <em> or </b>.
var tagRegex = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup tags.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// Clean strips markup and noise characters and collapses whitespace.
// Letters, digits, hyphens and apostrophes survive; everything else becomes a space.
// Clean is idempotent.
func Clean(s string) string {
	s = tagRegex.ReplaceAllString(s, " ")
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '\'':
			return r
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Tokens splits text on whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}
