package text

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// punkt loads the pre-trained english Punkt model once.
var punkt = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// SplitSentences splits text into sentences with the english Punkt tokenizer,
// so abbreviations and decimals do not end a sentence.
// Empty fragments are dropped; a text that cannot be split is one sentence.
func SplitSentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	tokenizer, err := punkt()
	if err != nil {
		return []string{s}
	}

	var out []string
	for _, sent := range tokenizer.Tokenize(s) {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{s}
	}
	return out
}
