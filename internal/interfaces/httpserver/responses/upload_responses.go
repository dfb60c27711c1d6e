package responses

import (
	"time"

	"soundtrack-server/services/upload-api/internal/domain/upload"
)

// UploadSummary is the trimmed view returned right after ingestion. The
// filename is the client-supplied original, kept for display.
type UploadSummary struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	S3Key      string    `json:"s3Key"`
	Size       int64     `json:"size"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadCreatedResponse is the 201 envelope for POST /api/upload.
type UploadCreatedResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Upload  UploadSummary `json:"upload"`
}

// BuildUploadCreated creates the ingestion response from a domain record.
func BuildUploadCreated(rec *upload.Upload) *UploadCreatedResponse {
	return &UploadCreatedResponse{
		Success: true,
		Message: "File uploaded successfully",
		Upload: UploadSummary{
			ID:         rec.ID,
			Filename:   rec.OriginalFilename,
			S3Key:      rec.StorageKey,
			Size:       rec.FileSize,
			Status:     string(rec.Status),
			UploadedAt: rec.CreatedAt,
		},
	}
}

// UploadDetailResponse is the envelope for GET /api/upload/:id.
type UploadDetailResponse struct {
	Success bool           `json:"success"`
	Upload  *upload.Upload `json:"upload"`
	URL     string         `json:"url,omitempty"`
}

// BuildUploadDetail creates the detail response with a display URL.
func BuildUploadDetail(rec *upload.Upload, url string) *UploadDetailResponse {
	return &UploadDetailResponse{
		Success: true,
		Upload:  rec,
		URL:     url,
	}
}

// UploadListResponse is the envelope for GET /api/uploads.
type UploadListResponse struct {
	Success    bool             `json:"success"`
	Uploads    []*upload.Upload `json:"uploads"`
	Count      int              `json:"count"`
	Pagination upload.Page      `json:"pagination"`
}

// BuildUploadList creates the listing response.
func BuildUploadList(records []*upload.Upload, page upload.Page) *UploadListResponse {
	return &UploadListResponse{
		Success:    true,
		Uploads:    records,
		Count:      len(records),
		Pagination: page,
	}
}
