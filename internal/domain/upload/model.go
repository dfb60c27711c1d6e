package upload

import "time"

// Status enumerates the lifecycle states of an upload record. Records are
// created as pending and flipped to uploaded once the blob write succeeds;
// processing and completed belong to a later processing stage that sets them
// through UpdateStatus.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Upload is the durable record describing one stored file.
type Upload struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	StorageKey       string    `json:"s3_key"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	Status           Status    `json:"status"`
	UserID           *int64    `json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Input is the validated payload handed to the ingestion pipeline.
type Input struct {
	Data             []byte
	OriginalFilename string
	MimeType         string
	Size             int64
	UserID           *int64
}

// Page echoes the effective pagination window applied to a listing.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
