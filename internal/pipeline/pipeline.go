// Package pipeline runs background ingestion: extracted text is chunked,
// embedded, assembled into records, and upserted into the vector index.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/traingrc/textweaver/internal/chunker"
	"github.com/traingrc/textweaver/internal/db"
	"github.com/traingrc/textweaver/internal/faillog"
	"github.com/traingrc/textweaver/internal/llm"
	"github.com/traingrc/textweaver/internal/models"
	"github.com/traingrc/textweaver/internal/record"
)

// Pipeline embeds and persists one document at a time. All collaborators are
// injected at startup and shared across workers.
type Pipeline struct {
	Chunker      *chunker.Chunker
	Embedder     llm.Embedder
	Index        db.Index
	FailLog      *faillog.Log
	Instruction  string
	EmbedTimeout time.Duration
}

// New wires a pipeline with a default per-embedding timeout.
func New(c *chunker.Chunker, embedder llm.Embedder, index db.Index, failLog *faillog.Log, instruction string) *Pipeline {
	return &Pipeline{
		Chunker:      c,
		Embedder:     embedder,
		Index:        index,
		FailLog:      failLog,
		Instruction:  instruction,
		EmbedTimeout: 60 * time.Second,
	}
}

// Process ingests the extracted text of one document into the namespace.
//
// A chunk that fails embedding or record building is logged and skipped;
// remaining chunks keep their original numbering. A document that yields
// zero records fails outright rather than silently writing nothing. Upsert
// failures append one failure-log line per record for manual replay; the
// batch is all-or-nothing, so no partial document is ever persisted.
func (p *Pipeline) Process(ctx context.Context, namespace, docID, fileKey string, fileType models.FileType, body string) error {
	log.Printf("Started processing: %s", fileKey)

	header := models.Header{DocID: docID, FileKey: fileKey, FileType: fileType}
	chunks := p.Chunker.Split(body)

	var records []models.Record
	for _, chunk := range chunks {
		vector, err := p.embedChunk(ctx, chunk.Text)
		if err != nil {
			log.Printf("Error embedding chunk %d of %s: %v", chunk.No, fileKey, err)
			continue
		}

		rec, err := record.Build(fileKey, header, chunk.No, [][]float32{vector}, chunk.Text)
		if err != nil {
			log.Printf("Error preparing record %d of %s: %v", chunk.No, fileKey, err)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return fmt.Errorf("no records to upsert for %s", fileKey)
	}

	if err := p.Index.Upsert(ctx, namespace, records); err != nil {
		log.Printf("Failed to upsert %d records for %s: %v", len(records), fileKey, err)
		fileKeys := make([]string, len(records))
		for i := range records {
			fileKeys[i] = fileKey
		}
		if logErr := p.FailLog.Append(fileKeys...); logErr != nil {
			log.Printf("Failed to record %s in failure log: %v", fileKey, logErr)
		}
		return fmt.Errorf("failed to upsert records for %s: %w", fileKey, err)
	}

	log.Printf("Upserted %d records for %s", len(records), fileKey)
	return nil
}

func (p *Pipeline) embedChunk(ctx context.Context, text string) ([]float32, error) {
	if p.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.EmbedTimeout)
		defer cancel()
	}
	return p.Embedder.Encode(ctx, llm.Prefixed(p.Instruction, text))
}
