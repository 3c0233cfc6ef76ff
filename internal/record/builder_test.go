package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traingrc/textweaver/internal/models"
)

func vec() [][]float32 {
	return [][]float32{{0.1, 0.2, 0.3}}
}

func TestBuild_IDFromHeaderDocID(t *testing.T) {
	header := models.Header{DocID: "2a9fQx"}

	rec, err := Build("report.pdf", header, 3, vec(), "chunk text")
	require.NoError(t, err)
	assert.Equal(t, "2a9fQx-3", rec.ID)
}

func TestBuild_FreshIDWithoutDocID(t *testing.T) {
	rec1, err := Build("report.pdf", models.Header{}, 1, vec(), "text")
	require.NoError(t, err)
	rec2, err := Build("report.pdf", models.Header{}, 1, vec(), "text")
	require.NoError(t, err)

	assert.NotEmpty(t, rec1.ID)
	assert.NotEqual(t, rec1.ID, rec2.ID)
}

func TestBuild_FlattensSingleRowEmbedding(t *testing.T) {
	rec, err := Build("a.txt", models.Header{DocID: "d"}, 1, [][]float32{{1, 2, 3, 4}}, "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, rec.Vector)
}

func TestBuild_RejectsStructurallyInvalidEmbeddings(t *testing.T) {
	for _, bad := range [][][]float32{
		nil,
		{},
		{{}},
		{{1, 2}, {3, 4}},
	} {
		_, err := Build("a.txt", models.Header{DocID: "d"}, 1, bad, "text")
		assert.ErrorIs(t, err, ErrInvalidEmbedding)
	}
}

func TestBuild_TitleDerivation(t *testing.T) {
	rec, err := Build("uploads/incident-report.pdf", models.Header{DocID: "d"}, 2, vec(), "text")
	require.NoError(t, err)
	assert.Equal(t, "incident-report Part 2", rec.Metadata[models.MetaTitle])
}

func TestBuild_AllKeysPresentWithUnknownSentinel(t *testing.T) {
	rec, err := Build("", models.Header{DocID: "d"}, 1, vec(), "")
	require.NoError(t, err)

	require.Len(t, rec.Metadata, len(models.MetadataKeys))
	for _, key := range models.MetadataKeys {
		v, ok := rec.Metadata[key]
		require.True(t, ok, "metadata key %q must be present", key)
		if key == models.MetaPublicationDate {
			continue // falls back to the ingestion date, not "unknown"
		}
		assert.Equal(t, models.MetaUnknown, v, "key %q", key)
	}
}

func TestBuild_PublicationDate(t *testing.T) {
	valid := models.Header{DocID: "d", PublicationDate: "2023-11-05"}
	rec, err := Build("a.txt", valid, 1, vec(), "text")
	require.NoError(t, err)
	assert.Equal(t, "2023-11-05", rec.Metadata[models.MetaPublicationDate])

	today := time.Now().Format("2006-01-02")
	for _, raw := range []string{"", "05/11/2023", "not a date", "2023-13-40"} {
		rec, err := Build("a.txt", models.Header{DocID: "d", PublicationDate: raw}, 1, vec(), "text")
		require.NoError(t, err)
		assert.Equal(t, today, rec.Metadata[models.MetaPublicationDate], "raw=%q", raw)
	}
}

func TestBuild_TagsAndAuthors(t *testing.T) {
	header := models.Header{
		DocID:   "d",
		Tags:    []string{"malware", "", "ransomware"},
		Authors: []string{"A. Turing"},
	}
	rec, err := Build("a.txt", header, 1, vec(), "text")
	require.NoError(t, err)
	assert.Equal(t, "malware, ransomware", rec.Metadata[models.MetaTags])
	assert.Equal(t, "A. Turing", rec.Metadata[models.MetaAuthor])

	empties := models.Header{DocID: "d", Tags: []string{""}, Authors: []string{}}
	rec, err = Build("a.txt", empties, 1, vec(), "text")
	require.NoError(t, err)
	assert.Equal(t, models.MetaUnknown, rec.Metadata[models.MetaTags])
	assert.Equal(t, models.MetaUnknown, rec.Metadata[models.MetaAuthor])
}

func TestBuild_Deterministic(t *testing.T) {
	header := models.Header{DocID: "doc", URL: "https://example.com", PublicationDate: "2024-01-02"}

	rec1, err := Build("a.txt", header, 5, vec(), "same text")
	require.NoError(t, err)
	rec2, err := Build("a.txt", header, 5, vec(), "same text")
	require.NoError(t, err)

	assert.Equal(t, rec1.ID, rec2.ID)
	assert.Equal(t, rec1.Metadata, rec2.Metadata)
}
