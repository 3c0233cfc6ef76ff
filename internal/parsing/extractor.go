// Package parsing extracts plain text from uploaded files. PDF and text
// files are handled in-process; audio, video, and image content is delegated
// to external transcription and OCR services.
package parsing

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/traingrc/textweaver/internal/models"
)

// Extractor converts raw file bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// Transcriber converts audio or video bytes into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, filename string) (string, error)
}

// TextRecognizer detects text in image bytes.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, data []byte, filename string) (string, error)
}

// Registry maps file types onto extraction strategies.
type Registry struct {
	Transcriber Transcriber
	Recognizer  TextRecognizer
}

// ForType returns the extractor for the given file type.
func (r *Registry) ForType(t models.FileType) (Extractor, error) {
	switch t {
	case models.FileTypePDF:
		return PDFExtractor{}, nil
	case models.FileTypeText:
		return TextExtractor{}, nil
	case models.FileTypeAudio, models.FileTypeVideo:
		if r.Transcriber == nil {
			return nil, fmt.Errorf("no transcription service configured for %s uploads", t)
		}
		return transcriptExtractor{transcriber: r.Transcriber}, nil
	case models.FileTypeImage:
		if r.Recognizer == nil {
			return nil, fmt.Errorf("no ocr service configured for image uploads")
		}
		return imageExtractor{recognizer: r.Recognizer}, nil
	}
	return nil, fmt.Errorf("invalid file type: %q", t)
}

var extensionsByType = map[models.FileType][]string{
	models.FileTypeAudio: {".mp3"},
	models.FileTypeVideo: {".mp4"},
	models.FileTypeImage: {".jpg", ".jpeg", ".png", ".tiff"},
	models.FileTypePDF:   {".pdf"},
	models.FileTypeText:  {".txt"},
}

// ValidateFilename rejects files whose extension does not match the declared
// file type. Checked at the boundary so bad uploads never enter the
// pipeline.
func ValidateFilename(t models.FileType, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range extensionsByType[t] {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported file extension %q for file type %s", ext, t)
}

// TextExtractor handles plain-text uploads.
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, data []byte, filename string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %s is not valid UTF-8 text", filename)
	}
	return string(data), nil
}

type transcriptExtractor struct {
	transcriber Transcriber
}

func (e transcriptExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	text, err := e.transcriber.Transcribe(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("transcription failed for %s: %w", filename, err)
	}
	return text, nil
}

type imageExtractor struct {
	recognizer TextRecognizer
}

func (e imageExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	text, err := e.recognizer.RecognizeText(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("text detection failed for %s: %w", filename, err)
	}
	return text, nil
}
