package api

// UploadResponse acknowledges an accepted upload. Ingestion continues in the
// background after this is returned.
type UploadResponse struct {
	DocID            string `json:"doc_id"`
	OriginalFilename string `json:"original_filename"`
}
