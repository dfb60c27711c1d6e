package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"soundtrack-server/services/upload-api/internal/config"
	"soundtrack-server/services/upload-api/internal/infrastructure/logger"
	"soundtrack-server/services/upload-api/internal/utils/platformerrors"
	"soundtrack-server/services/upload-api/utils/uploadkey"
)

// allowedMIMETypes lists the audio and video types accepted for ingestion.
// Validation is on the declared type only; content sniffing is out of scope.
var allowedMIMETypes = map[string]struct{}{
	"audio/mpeg":       {},
	"audio/mp3":        {},
	"audio/wav":        {},
	"audio/ogg":        {},
	"audio/aac":        {},
	"audio/flac":       {},
	"audio/webm":       {},
	"video/mp4":        {},
	"video/mpeg":       {},
	"video/quicktime":  {},
	"video/x-msvideo":  {},
	"video/webm":       {},
	"video/x-matroska": {},
}

// MIMEAllowed reports whether the declared MIME type is accepted.
func MIMEAllowed(mimeType string) bool {
	_, ok := allowedMIMETypes[mimeType]
	return ok
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, rec *Upload) error
	GetByID(ctx context.Context, id int64) (*Upload, error)
	List(ctx context.Context, limit, offset int) ([]*Upload, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Upload, error)
}

// Storage defines blob storage operations.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, metadata map[string]string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	URL(key string) string
}

// Service orchestrates upload ingestion and retrieval.
type Service interface {
	Process(ctx context.Context, input Input) (*Upload, error)
	GetByID(ctx context.Context, id int64) (*Upload, error)
	List(ctx context.Context, limit, offset int) ([]*Upload, Page, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Upload, error)
	Download(ctx context.Context, id int64) (io.ReadCloser, string, error)
	URL(rec *Upload) string
}

type service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	log     zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, log zerolog.Logger) Service {
	return &service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		log:     logger.Component(log, "upload-service"),
	}
}

// Process turns a validated payload into a durable upload record. The
// metadata row is written first with status pending, then the blob, then the
// row is committed to uploaded. On a blob failure the row is marked failed,
// so a row with status uploaded always has a retrievable blob and no blob
// exists without a row referencing it.
func (s *service) Process(ctx context.Context, input Input) (*Upload, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	key := uploadkey.New(input.OriginalFilename)

	rec := &Upload{
		Filename:         uploadkey.Sanitize(input.OriginalFilename),
		OriginalFilename: input.OriginalFilename,
		StorageKey:       key.Value,
		FileSize:         input.Size,
		MimeType:         input.MimeType,
		Status:           StatusPending,
		UserID:           input.UserID,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	// Object metadata travels in HTTP headers, so the filename goes in
	// sanitized and the key says so.
	metadata := map[string]string{
		"sanitized-filename": uploadkey.Sanitize(input.OriginalFilename),
		"upload-id":          key.ID,
		"uploaded-at":        key.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.storage.Upload(ctx, key.Value, bytes.NewReader(input.Data), input.Size, input.MimeType, metadata); err != nil {
		if _, markErr := s.repo.UpdateStatus(ctx, rec.ID, StatusFailed); markErr != nil {
			s.log.Error().Err(markErr).Int64("id", rec.ID).Msg("failed to mark upload as failed after storage error")
		}
		s.log.Error().Err(err).Str("key", key.Value).Msg("blob write failed")
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal,
			"storage service error",
			err,
			"c4f7b9e1-3a52-4d86-9f10-58e2ab6c7d34",
		)
	}

	updated, err := s.repo.UpdateStatus(ctx, rec.ID, StatusUploaded)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("id", updated.ID).
		Str("key", updated.StorageKey).
		Int64("bytes", updated.FileSize).
		Str("mime", updated.MimeType).
		Msg("upload stored")

	return updated, nil
}

// validate rejects a payload before any row or blob is written. Zero-byte
// files are accepted; only the declared size, the size cap and the MIME
// allow-list gate ingestion.
func (s *service) validate(ctx context.Context, input Input) error {
	if input.Size != int64(len(input.Data)) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("declared size %d does not match payload length %d", input.Size, len(input.Data)),
			nil,
			"5e9a7d31-62c8-40fb-b3e4-c9d1086f52aa",
		)
	}
	if input.Size > s.cfg.MaxUploadBytes {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypePayloadTooLarge,
			fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxUploadBytes),
			nil,
			"2b6c8e40-f1d7-4a93-8c25-7e30d9a41f68",
		)
	}
	if !MIMEAllowed(input.MimeType) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported mime type %s", input.MimeType),
			nil,
			"a3d05f16-74b2-4c98-b1e7-0c649d823e51",
		)
	}
	return nil
}

// GetByID returns the record, or nil when no record exists. Absence is a
// normal negative result, not an error.
func (s *service) GetByID(ctx context.Context, id int64) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of records ordered newest first, along with the
// pagination window actually applied.
func (s *service) List(ctx context.Context, limit, offset int) ([]*Upload, Page, error) {
	if limit <= 0 {
		limit = s.cfg.ListDefaultLimit
	}
	if limit > s.cfg.ListMaxLimit {
		limit = s.cfg.ListMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, Page{}, err
	}
	return records, Page{Limit: limit, Offset: offset}, nil
}

// UpdateStatus transitions a record to a new status. The core pipeline only
// produces pending, uploaded and failed; the remaining values are reserved
// for a post-upload processing stage.
func (s *service) UpdateStatus(ctx context.Context, id int64, status Status) (*Upload, error) {
	if !status.Valid() {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown status %q", status),
			nil,
			"f8427c5d-1e96-4b30-ad62-93b5e0c7a184",
		)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Download streams the stored blob for a record.
func (s *service) Download(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if rec == nil {
		return nil, "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("upload %d not found", id),
			nil,
			"6a91e3b8-d042-47cf-85b1-29fe60c4a7d3",
		)
	}
	reader, mime, err := s.storage.Download(ctx, rec.StorageKey)
	if err != nil {
		return nil, "", platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal,
			"storage service error",
			err,
			"0e5d2f7c-48a1-4e6b-bc93-d7261a90f3e5",
		)
	}
	if mime == "" {
		mime = rec.MimeType
	}
	return reader, mime, nil
}

// URL returns the display URL for a record's blob. Not a security boundary.
func (s *service) URL(rec *Upload) string {
	return s.storage.URL(rec.StorageKey)
}
