package llm

import "context"

// Embedder maps an instruction-prefixed text string to a fixed-length dense
// vector. The same instruction prefix must be used at ingestion and query
// time for the vectors to be comparable.
type Embedder interface {
	Encode(ctx context.Context, input string) ([]float32, error)
}

// Prefixed joins the instruction prefix and the text to embed.
func Prefixed(instruction, text string) string {
	if instruction == "" {
		return text
	}
	return instruction + " " + text
}
