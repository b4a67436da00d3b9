package sentiment

import (
	"strings"
	"sync"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

var (
	punktOnce      sync.Once
	punktTokenizer *sentences.DefaultSentenceTokenizer
)

// segmentSentences splits text into sentences using the pre-trained
// English Punkt model. Building the tokenizer parses the embedded
// training data, so it is done once and shared; the tokenizer itself is
// safe for concurrent use.
func segmentSentences(text string) []string {
	punktOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			// The training data is compiled into the binary, so this
			// only fires if the dependency itself is broken.
			panic("sentiment: load punkt model: " + err.Error())
		}
		punktTokenizer = t
	})

	sents := punktTokenizer.Tokenize(text)
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
