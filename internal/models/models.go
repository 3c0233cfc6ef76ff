package models

import (
	"fmt"
	"time"
)

// FileType identifies the kind of content a client uploaded. Each type maps
// to an extraction strategy in the parsing package.
type FileType string

const (
	FileTypeAudio FileType = "audio"
	FileTypeVideo FileType = "video"
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
	FileTypeText  FileType = "text"
)

// ParseFileType converts a form value into a FileType.
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case FileTypeAudio, FileTypeVideo, FileTypeImage, FileTypePDF, FileTypeText:
		return FileType(s), nil
	}
	return "", fmt.Errorf("invalid file type: %q", s)
}

// Header carries document-level metadata through the ingestion pipeline.
// DocID is generated when the file is accepted; the remaining fields are
// optional and default to the "unknown" sentinel at record-build time.
type Header struct {
	DocID           string
	FileKey         string
	FileType        FileType
	Title           string
	URL             string
	PublicationDate string
	Tags            []string
	Authors         []string
}

// Chunk is a contiguous run of sentences from one document. No is 1-based
// and strictly increasing within the document.
type Chunk struct {
	No   int
	Text string
}

// Metadata keys recognized on every stored record. A key that cannot be
// derived from the input is stored as MetaUnknown, never omitted.
const (
	MetaTitle           = "Title"
	MetaFilename        = "Filename"
	MetaURL             = "URL"
	MetaPublicationDate = "PublicationDate"
	MetaTags            = "Tags"
	MetaAuthor          = "Author"
	MetaText            = "text"

	MetaUnknown = "unknown"
)

// MetadataKeys lists every key present on a stored record's metadata.
var MetadataKeys = []string{
	MetaTitle, MetaFilename, MetaURL, MetaPublicationDate, MetaTags, MetaAuthor, MetaText,
}

// Record is the persisted unit in the vector index: one per chunk.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// Match is a single nearest-neighbor result as returned by the index.
// Distance carries the raw metric value; the query engine converts it
// into a similarity score.
type Match struct {
	ID       string
	Distance float64
	Metadata map[string]string
}

// AccessToken is a row in the access_tokens table used to authenticate
// uploads and user-scoped searches.
type AccessToken struct {
	Username   string
	Token      string
	Expiration time.Time
}
