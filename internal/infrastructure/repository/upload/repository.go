package upload

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "soundtrack-server/services/upload-api/internal/domain/upload"
	"soundtrack-server/services/upload-api/internal/infrastructure/database/entities"
	"soundtrack-server/services/upload-api/internal/utils/platformerrors"
)

// Repository handles upload record persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new row and fills in the assigned id and timestamps.
func (r *Repository) Create(ctx context.Context, rec *domain.Upload) error {
	entity := toEntity(rec)
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"upload record violates a database constraint",
				err,
				"4b8e2d6f-a913-4c57-b08a-f52c17d9e306",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create upload record",
			err,
			"9c3f5a71-28de-4b64-91c0-6ad8e4f7b125",
		)
	}
	*rec = fromEntity(entity)
	return nil
}

// GetByID returns the record, or nil when no row matches.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Upload, error) {
	var entity entities.Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get upload by id",
			err,
			"7d40c9b2-e615-4f83-a2d7-09c8351fb6ea",
		)
	}
	rec := fromEntity(entity)
	return &rec, nil
}

// List returns a page ordered by created_at descending, id descending as the
// tie breaker so pages are deterministic under identical timestamps.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*domain.Upload, error) {
	var rows []entities.Upload
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list uploads",
			err,
			"e2a68d05-73cf-4b19-8e54-b1f90c273da8",
		)
	}

	records := make([]*domain.Upload, 0, len(rows))
	for _, row := range rows {
		rec := fromEntity(row)
		records = append(records, &rec)
	}
	return records, nil
}

// UpdateStatus transitions a row to a new status and refreshes updated_at.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Upload, error) {
	var entity entities.Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"upload record not found",
				err,
				"1f7b3e92-c580-4da6-b634-8a05d12ce947",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load upload for status update",
			err,
			"b5d19c4e-06af-4273-9be8-3fc7e8a2d061",
		)
	}

	entity.Status = string(status)
	if err := r.db.WithContext(ctx).Model(&entity).Update("status", string(status)).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update upload status",
			err,
			"83c6f0d7-51be-49a2-ae14-d29b74e6c5f0",
		)
	}

	rec := fromEntity(entity)
	return &rec, nil
}

func toEntity(rec *domain.Upload) entities.Upload {
	return entities.Upload{
		ID:               rec.ID,
		Filename:         rec.Filename,
		OriginalFilename: rec.OriginalFilename,
		S3Key:            rec.StorageKey,
		FileSize:         rec.FileSize,
		MimeType:         rec.MimeType,
		Status:           string(rec.Status),
		UserID:           rec.UserID,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func fromEntity(entity entities.Upload) domain.Upload {
	return domain.Upload{
		ID:               entity.ID,
		Filename:         entity.Filename,
		OriginalFilename: entity.OriginalFilename,
		StorageKey:       entity.S3Key,
		FileSize:         entity.FileSize,
		MimeType:         entity.MimeType,
		Status:           domain.Status(entity.Status),
		UserID:           entity.UserID,
		CreatedAt:        entity.CreatedAt,
		UpdatedAt:        entity.UpdatedAt,
	}
}
