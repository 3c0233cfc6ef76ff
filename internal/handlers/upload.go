package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	api "github.com/traingrc/textweaver/internal/api/documents"
	"github.com/traingrc/textweaver/internal/models"
	"github.com/traingrc/textweaver/internal/parsing"
	"github.com/traingrc/textweaver/internal/pipeline"
)

// UploadHandler accepts multipart file uploads and enqueues them for
// background ingestion.
type UploadHandler struct {
	Pool          *pipeline.Pool
	MaxUploadSize int64
}

// UploadFile handles POST /upload. Validation happens here at the boundary;
// extraction and embedding run in the worker pool after the 202 response.
func (h *UploadHandler) UploadFile(username string, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)

	if err := r.ParseMultipartForm(h.MaxUploadSize); err != nil {
		log.Printf("Error parsing multipart form: %v", err)
		http.Error(w, "The uploaded file is too big or the form is malformed", http.StatusBadRequest)
		return
	}

	fileType, err := models.ParseFileType(r.FormValue("file_type"))
	if err != nil {
		http.Error(w, "file_type must be one of audio, video, image, pdf, text", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("Error retrieving the file: %v", err)
		http.Error(w, "Invalid file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := parsing.ValidateFilename(fileType, header.Filename); err != nil {
		log.Printf("Invalid upload from %q: %v", username, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		log.Printf("Error reading the file: %v", err)
		http.Error(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	docID := uuid.NewString()
	job := pipeline.Job{
		Namespace: username,
		DocID:     docID,
		FileKey:   header.Filename,
		FileType:  fileType,
		Data:      buf.Bytes(),
	}
	if err := h.Pool.Enqueue(job); err != nil {
		log.Printf("Could not enqueue %s: %v", header.Filename, err)
		http.Error(w, "Server is busy, try again later", http.StatusServiceUnavailable)
		return
	}

	log.Printf("Accepted %s (%d bytes) as doc %s for %q", header.Filename, buf.Len(), docID, username)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(api.UploadResponse{
		DocID:            docID,
		OriginalFilename: header.Filename,
	})
}
