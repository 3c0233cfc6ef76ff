// Package tokenizer provides sentence segmentation and sub-word token
// counting for the chunking pipeline.
package tokenizer

import (
	"regexp"
	"strings"
)

// Tokenizer splits raw text into sentences and tokens. Implementations must
// be safe for concurrent use; the process shares a single instance.
type Tokenizer interface {
	Tokenize(text string) []string
	SegmentSentences(text string) []string
}

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)
	tokenRe    = regexp.MustCompile(`\p{L}+(?:'\p{L}+)*|\p{N}+|[^\s\p{L}\p{N}]`)
)

// Simple is a regexp-based tokenizer. Sentences end at ., ! or ?; trailing
// text without a terminator is kept as a final sentence. Tokens are
// lowercased words, numbers, and individual punctuation marks.
type Simple struct{}

// NewSimple returns the default tokenizer.
func NewSimple() *Simple {
	return &Simple{}
}

func (t *Simple) SegmentSentences(text string) []string {
	var sentences []string
	last := 0
	for _, m := range sentenceRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[m[0]:m[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func (t *Simple) Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}
