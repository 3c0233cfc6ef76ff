package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traingrc/textweaver/internal/models"
	"github.com/traingrc/textweaver/internal/tokenizer"
)

// countingTokenizer treats each input line as one sentence and reports a
// fixed token count per sentence, so budget boundaries are exact.
type countingTokenizer struct {
	tokensPerSentence map[string]int
}

func (f *countingTokenizer) SegmentSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (f *countingTokenizer) Tokenize(sentence string) []string {
	n := f.tokensPerSentence[sentence]
	return make([]string, n)
}

func TestSplit_EmptyText(t *testing.T) {
	c := New(&countingTokenizer{}, 256)
	assert.Empty(t, c.Split(""))
}

func TestSplit_ThreeSentencesTwoChunks(t *testing.T) {
	// 100+100 fits in 256, the third sentence starts a new chunk.
	tok := &countingTokenizer{tokensPerSentence: map[string]int{
		"one": 100, "two": 100, "three": 100,
	}}
	c := New(tok, 256)

	chunks := c.Split("one\ntwo\nthree")
	require.Len(t, chunks, 2)
	assert.Equal(t, models.Chunk{No: 1, Text: "one two"}, chunks[0])
	assert.Equal(t, models.Chunk{No: 2, Text: "three"}, chunks[1])
}

func TestSplit_OversizedSentenceGetsOwnChunk(t *testing.T) {
	tok := &countingTokenizer{tokensPerSentence: map[string]int{"huge": 500}}
	c := New(tok, 256)

	chunks := c.Split("huge")
	require.Len(t, chunks, 1)
	assert.Equal(t, "huge", chunks[0].Text)
}

func TestSplit_OversizedSentenceInMiddle(t *testing.T) {
	tok := &countingTokenizer{tokensPerSentence: map[string]int{
		"a": 50, "huge": 500, "b": 50,
	}}
	c := New(tok, 256)

	chunks := c.Split("a\nhuge\nb")
	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0].Text)
	assert.Equal(t, "huge", chunks[1].Text)
	assert.Equal(t, "b", chunks[2].Text)
}

func TestSplit_NoSentenceLostOrReordered(t *testing.T) {
	sentences := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	counts := map[string]int{}
	for i, s := range sentences {
		counts[s] = 40 + i*20
	}
	c := New(&countingTokenizer{tokensPerSentence: counts}, 150)

	chunks := c.Split(strings.Join(sentences, "\n"))
	require.NotEmpty(t, chunks)

	var rejoined []string
	for i, ch := range chunks {
		assert.Equal(t, i+1, ch.No, "chunk numbers must be contiguous from 1")
		rejoined = append(rejoined, strings.Fields(ch.Text)...)
	}
	assert.Equal(t, sentences, rejoined)
}

func TestSplit_ChunksRespectBudget(t *testing.T) {
	counts := map[string]int{}
	var lines []string
	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		counts[s] = 90
		lines = append(lines, s)
	}
	c := New(&countingTokenizer{tokensPerSentence: counts}, 200)

	for _, ch := range c.Split(strings.Join(lines, "\n")) {
		total := 0
		for _, s := range strings.Fields(ch.Text) {
			total += counts[s]
		}
		assert.LessOrEqual(t, total, 200)
	}
}

func TestSplit_RealTokenizerBoundary(t *testing.T) {
	// With the word-level tokenizer, each sentence below counts 5 tokens
	// (4 words + terminator), so a budget of 10 packs exactly two per chunk.
	text := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu."
	c := New(tokenizer.NewSimple(), 10)

	chunks := c.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Alpha beta gamma delta. Epsilon zeta eta theta.", chunks[0].Text)
	assert.Equal(t, "Iota kappa lambda mu.", chunks[1].Text)
}
