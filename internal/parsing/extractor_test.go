package parsing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traingrc/textweaver/internal/models"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		fileType models.FileType
		filename string
		ok       bool
	}{
		{models.FileTypeText, "notes.txt", true},
		{models.FileTypeText, "notes.TXT", true},
		{models.FileTypeText, "notes.exe", false},
		{models.FileTypePDF, "report.pdf", true},
		{models.FileTypePDF, "report.txt", false},
		{models.FileTypeAudio, "talk.mp3", true},
		{models.FileTypeAudio, "talk.wav", false},
		{models.FileTypeVideo, "demo.mp4", true},
		{models.FileTypeImage, "scan.jpeg", true},
		{models.FileTypeImage, "scan.gif", false},
		{models.FileTypeText, "noextension", false},
	}

	for _, tt := range tests {
		err := ValidateFilename(tt.fileType, tt.filename)
		if tt.ok {
			assert.NoError(t, err, "%s/%s", tt.fileType, tt.filename)
		} else {
			assert.Error(t, err, "%s/%s", tt.fileType, tt.filename)
		}
	}
}

func TestTextExtractor(t *testing.T) {
	ex := TextExtractor{}

	text, err := ex.Extract(context.Background(), []byte("plain body"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain body", text)

	_, err = ex.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "bad.txt")
	assert.Error(t, err)
}

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

func TestRegistry_ForType(t *testing.T) {
	reg := &Registry{Transcriber: stubTranscriber{text: "spoken words"}}

	for _, ft := range []models.FileType{models.FileTypeAudio, models.FileTypeVideo} {
		ex, err := reg.ForType(ft)
		require.NoError(t, err)
		text, err := ex.Extract(context.Background(), []byte("data"), "f")
		require.NoError(t, err)
		assert.Equal(t, "spoken words", text)
	}

	// Image uploads need an OCR service.
	_, err := reg.ForType(models.FileTypeImage)
	assert.Error(t, err)

	_, err = reg.ForType(models.FileType("zip"))
	assert.Error(t, err)
}

func TestTranscriptExtractor_WrapsErrors(t *testing.T) {
	reg := &Registry{Transcriber: stubTranscriber{err: errors.New("service down")}}
	ex, err := reg.ForType(models.FileTypeAudio)
	require.NoError(t, err)

	_, err = ex.Extract(context.Background(), []byte("data"), "talk.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "talk.mp3")
}
