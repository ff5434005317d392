package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CvArtifact - загруженное резюме. Записи не меняются и не удаляются,
// новая загрузка создает новую запись.
type CvArtifact struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	StudentID    string    `gorm:"type:varchar(36);not null;index" json:"student_id"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	StoredName   string    `gorm:"not null" json:"stored_name"`
	Path         string    `gorm:"not null" json:"path"`
	MimeType     string    `gorm:"type:varchar(150);not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	UploadedAt   time.Time `gorm:"not null" json:"uploaded_at"`
}

func (c *CvArtifact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
