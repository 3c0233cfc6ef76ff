package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/traingrc/textweaver/internal/parsing"
)

// TranscriptionHandler serves POST /speech2text: it returns the transcript
// of an uploaded audio file without ingesting it.
type TranscriptionHandler struct {
	Transcriber   parsing.Transcriber
	MaxUploadSize int64
}

func (h *TranscriptionHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.Transcriber == nil {
		http.Error(w, "Transcription service is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	if err := r.ParseMultipartForm(h.MaxUploadSize); err != nil {
		http.Error(w, "The uploaded file is too big or the form is malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Invalid file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".mp3" {
		http.Error(w, "Unsupported file extension for audio", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		http.Error(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	transcript, err := h.Transcriber.Transcribe(r.Context(), buf.Bytes(), header.Filename)
	if err != nil {
		log.Printf("Error processing audio file %s: %v", header.Filename, err)
		http.Error(w, "Error processing audio file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}
