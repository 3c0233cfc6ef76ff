package parsing

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts plain text from PDF bytes in-process.
type PDFExtractor struct{}

func (PDFExtractor) Extract(_ context.Context, data []byte, filename string) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error creating PDF reader for %s: %w", filename, err)
	}

	b, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("could not read content of %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("could not read content of %s: %w", filename, err)
	}
	return buf.String(), nil
}
