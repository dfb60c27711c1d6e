package entities

import "time"

// Upload represents the persisted upload metadata row.
type Upload struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Filename         string `gorm:"type:varchar(255);not null"`
	OriginalFilename string `gorm:"type:varchar(255);not null"`
	S3Key            string `gorm:"column:s3_key;type:varchar(512);uniqueIndex;not null"`
	FileSize         int64  `gorm:"not null"`
	MimeType         string `gorm:"type:varchar(64);not null"`
	Status           string `gorm:"type:varchar(32);not null;default:pending"`
	UserID           *int64
	CreatedAt        time.Time `gorm:"autoCreateTime;index:idx_uploads_created_at,sort:desc"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Upload) TableName() string {
	return "uploads"
}
