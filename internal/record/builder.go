// Package record assembles vector-index records from embedded chunks.
package record

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traingrc/textweaver/internal/models"
)

const dateLayout = "2006-01-02"

// ErrInvalidEmbedding is returned when the embedding cannot be reduced to a
// single non-empty vector.
var ErrInvalidEmbedding = errors.New("embedding is not a single non-empty vector")

// Build produces the persisted record for one chunk.
//
// The embedding may arrive as a 2-D batch-of-one array from the encoder; it
// is flattened to 1-D here. The record id is "{doc_id}-{chunk_no}" when the
// header carries a document id, otherwise a fresh UUID. Every metadata key is
// always present: values that are absent, empty, or fail validation are
// stored as the literal "unknown" so downstream consumers see a stable
// schema. Only structural embedding problems are errors; missing metadata is
// not.
func Build(fileKey string, header models.Header, chunkNo int, embedding [][]float32, chunkText string) (models.Record, error) {
	vector, err := flatten(embedding)
	if err != nil {
		return models.Record{}, err
	}

	id := uuid.NewString()
	if header.DocID != "" {
		id = fmt.Sprintf("%s-%d", header.DocID, chunkNo)
	}

	metadata := map[string]string{
		models.MetaTitle:           title(fileKey, chunkNo),
		models.MetaFilename:        orUnknown(fileKey),
		models.MetaURL:             orUnknown(header.URL),
		models.MetaPublicationDate: publicationDate(header.PublicationDate),
		models.MetaTags:            listOrUnknown(header.Tags),
		models.MetaAuthor:          listOrUnknown(header.Authors),
		models.MetaText:            orUnknown(chunkText),
	}

	return models.Record{ID: id, Vector: vector, Metadata: metadata}, nil
}

// flatten accepts either a 1-row 2-D embedding or rejects the input. Some
// encoders return batch-shaped output even for a single string.
func flatten(embedding [][]float32) ([]float32, error) {
	if len(embedding) != 1 || len(embedding[0]) == 0 {
		return nil, ErrInvalidEmbedding
	}
	return embedding[0], nil
}

// title derives "{basename} Part {n}" with the file extension stripped.
func title(fileKey string, chunkNo int) string {
	base := filepath.Base(fileKey)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return models.MetaUnknown
	}
	return fmt.Sprintf("%s Part %d", base, chunkNo)
}

// publicationDate keeps a header date that parses as YYYY-MM-DD and falls
// back to the ingestion date otherwise. The fallback is expected behavior,
// not a validation failure.
func publicationDate(raw string) string {
	if _, err := time.Parse(dateLayout, raw); err == nil {
		return raw
	}
	return time.Now().Format(dateLayout)
}

func orUnknown(s string) string {
	if s == "" {
		return models.MetaUnknown
	}
	return s
}

func listOrUnknown(values []string) string {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return models.MetaUnknown
	}
	return strings.Join(kept, ", ")
}
