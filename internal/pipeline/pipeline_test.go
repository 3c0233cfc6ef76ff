package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traingrc/textweaver/internal/chunker"
	"github.com/traingrc/textweaver/internal/faillog"
	"github.com/traingrc/textweaver/internal/models"
	"github.com/traingrc/textweaver/internal/parsing"
	"github.com/traingrc/textweaver/internal/tokenizer"
)

func testRegistry() *parsing.Registry {
	return &parsing.Registry{}
}

type fakeEmbedder struct {
	inputs  []string
	failFor string
}

func (f *fakeEmbedder) Encode(_ context.Context, input string) ([]float32, error) {
	f.inputs = append(f.inputs, input)
	if f.failFor != "" && strings.Contains(input, f.failFor) {
		return nil, errors.New("embedding service unavailable")
	}
	return []float32{1, 2, 3}, nil
}

type captureIndex struct {
	namespace string
	records   []models.Record
	err       error
}

func (c *captureIndex) Upsert(_ context.Context, namespace string, records []models.Record) error {
	c.namespace = namespace
	c.records = records
	return c.err
}

func (c *captureIndex) Query(context.Context, string, []float32, int) ([]models.Match, error) {
	return nil, nil
}

func (c *captureIndex) Close() error { return nil }

func newTestPipeline(t *testing.T, index *captureIndex, embedder *fakeEmbedder) (*Pipeline, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "errors.txt")
	p := New(
		chunker.New(tokenizer.NewSimple(), 256),
		embedder,
		index,
		faillog.New(logPath),
		"Represent the cybersecurity content:",
	)
	return p, logPath
}

func TestProcess_UpsertsOrderedRecords(t *testing.T) {
	index := &captureIndex{}
	embedder := &fakeEmbedder{}
	p, _ := newTestPipeline(t, index, embedder)

	body := "First sentence. Second sentence. Third sentence."
	err := p.Process(context.Background(), "alice", "doc123", "notes.txt", models.FileTypeText, body)
	require.NoError(t, err)

	assert.Equal(t, "alice", index.namespace)
	require.NotEmpty(t, index.records)
	for i, rec := range index.records {
		assert.Equal(t, fmt.Sprintf("doc123-%d", i+1), rec.ID)
	}
	// Every embedding input carries the instruction prefix.
	for _, input := range embedder.inputs {
		assert.True(t, strings.HasPrefix(input, "Represent the cybersecurity content:"))
	}
}

func TestProcess_EmptyBodyFailsFast(t *testing.T) {
	index := &captureIndex{}
	p, logPath := newTestPipeline(t, index, &fakeEmbedder{})

	err := p.Process(context.Background(), "", "doc1", "empty.txt", models.FileTypeText, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records to upsert")
	assert.Empty(t, index.records)

	// Nothing reached the index, so nothing belongs in the failure log.
	_, statErr := os.Stat(logPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcess_UpsertFailureWritesFailureLog(t *testing.T) {
	index := &captureIndex{err: errors.New("index unavailable")}
	p, logPath := newTestPipeline(t, index, &fakeEmbedder{})

	// Five sentences, each over half the budget, land in five records.
	var sentences []string
	long := strings.Repeat("word ", 150)
	for i := 0; i < 5; i++ {
		sentences = append(sentences, long+"end.")
	}
	body := strings.Join(sentences, " ")

	err := p.Process(context.Background(), "", "doc1", "big.txt", models.FileTypeText, body)
	require.Error(t, err)
	require.Len(t, index.records, 5)

	data, readErr := os.ReadFile(logPath)
	require.NoError(t, readErr)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5, "one failure-log line per record")
	for _, line := range lines {
		assert.Equal(t, "big.txt", line)
	}
}

func TestProcess_SkipsFailedChunksKeepsNumbering(t *testing.T) {
	index := &captureIndex{}
	embedder := &fakeEmbedder{failFor: "Second"}
	p, _ := newTestPipeline(t, index, embedder)

	// Force one chunk per sentence so the failing sentence is isolated.
	p.Chunker = chunker.New(tokenizer.NewSimple(), 1)

	body := "First. Second. Third."
	err := p.Process(context.Background(), "", "doc9", "notes.txt", models.FileTypeText, body)
	require.NoError(t, err)

	require.Len(t, index.records, 2)
	assert.Equal(t, "doc9-1", index.records[0].ID)
	assert.Equal(t, "doc9-3", index.records[1].ID, "surviving chunks keep original numbering")
}

func TestPool_ProcessesJobsInBackground(t *testing.T) {
	index := &captureIndex{}
	p, _ := newTestPipeline(t, index, &fakeEmbedder{})
	pool := NewPool(2, 8, p, testRegistry())

	pool.Start()
	err := pool.Enqueue(Job{
		Namespace: "alice",
		DocID:     "doc42",
		FileKey:   "notes.txt",
		FileType:  models.FileTypeText,
		Data:      []byte("A sentence to ingest."),
	})
	require.NoError(t, err)
	pool.Stop()

	require.NotEmpty(t, index.records)
	assert.Equal(t, "doc42-1", index.records[0].ID)
	assert.Equal(t, "alice", index.namespace)
}

func TestPool_EnqueueFailsWhenQueueFull(t *testing.T) {
	p, _ := newTestPipeline(t, &captureIndex{}, &fakeEmbedder{})
	pool := NewPool(1, 1, p, testRegistry())
	// Pool not started: the queue holds exactly one job.

	require.NoError(t, pool.Enqueue(Job{FileType: models.FileTypeText}))
	assert.ErrorIs(t, pool.Enqueue(Job{FileType: models.FileTypeText}), ErrQueueFull)
}
