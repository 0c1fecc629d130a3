package text

import (
	"regexp"
	"strings"
)

// Mark delimits a highlighted term.
const Mark = "*"

// wordRegex finds the same tokens Clean keeps: runs of letters, digits,
// hyphens and apostrophes.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}'-]+`)

// StripHighlight removes highlight marks.
func StripHighlight(s string) string {
	return strings.ReplaceAll(s, Mark, "")
}

// Highlight wraps every whole-token occurrence of terms in s with Mark.
// Punctuation around or between tokens is kept outside the marks.
func Highlight(s string, terms []string) string {
	if len(terms) == 0 {
		return s
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}

	return wordRegex.ReplaceAllStringFunc(s, func(word string) string {
		if _, ok := set[word]; !ok {
			return word
		}
		return Mark + word + Mark
	})
}

// Rehighlight strips prior marks and markup, then highlights terms.
// Applying it twice yields the same text as applying it once.
func Rehighlight(s string, terms []string) string {
	return Highlight(StripTags(StripHighlight(s)), terms)
}
