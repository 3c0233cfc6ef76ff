// Package chunker groups sentences into token-bounded chunks for embedding.
package chunker

import (
	"github.com/traingrc/textweaver/internal/models"
	"github.com/traingrc/textweaver/internal/tokenizer"
)

// DefaultMaxTokens is the per-chunk token budget.
const DefaultMaxTokens = 256

// Chunker splits document text into ordered, token-bounded sentence groups.
type Chunker struct {
	tok       tokenizer.Tokenizer
	maxTokens int
}

// New creates a Chunker with the given token budget. A non-positive budget
// falls back to DefaultMaxTokens.
func New(tok tokenizer.Tokenizer, maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Chunker{tok: tok, maxTokens: maxTokens}
}

// Split segments text into sentences and accumulates them greedily: a
// sentence joins the current chunk while the running token count stays
// within budget, otherwise the chunk is closed and the sentence starts the
// next one. A single sentence over budget becomes its own oversized chunk;
// sentences are never split or dropped. Empty text yields no chunks.
//
// Chunk numbers are 1-based and contiguous in document order.
func (c *Chunker) Split(text string) []models.Chunk {
	sentences := c.tok.SegmentSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []models.Chunk
	var current []string
	numTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{
			No:   len(chunks) + 1,
			Text: joinSentences(current),
		})
		current = nil
	}

	for _, sentence := range sentences {
		n := len(c.tok.Tokenize(sentence))
		if len(current) > 0 && numTokens+n > c.maxTokens {
			flush()
			numTokens = 0
		}
		current = append(current, sentence)
		numTokens += n
	}
	flush()

	return chunks
}

func joinSentences(sentences []string) string {
	out := sentences[0]
	for _, s := range sentences[1:] {
		out += " " + s
	}
	return out
}
