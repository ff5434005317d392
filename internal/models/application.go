package models

import "time"

// Application - заявка студента. CvArtifactID и CvPath фиксируются при подаче
// и не меняются, даже если студент позже загрузит новое резюме.
type Application struct {
	BaseModel
	StudentID       string            `gorm:"type:varchar(36);not null;index:idx_app_student_posting" json:"student_id"`
	PostingID       string            `gorm:"type:varchar(36);not null;index:idx_app_student_posting;index" json:"posting_id"`
	CvArtifactID    string            `gorm:"type:varchar(36);not null" json:"cv_artifact_id"`
	CvPath          string            `gorm:"not null" json:"cv_path"`
	CoverLetter     string            `gorm:"type:text" json:"cover_letter,omitempty"`
	Status          ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	StatusUpdatedAt time.Time         `gorm:"not null" json:"status_updated_at"`

	Posting *JobPosting `gorm:"foreignKey:PostingID" json:"posting,omitempty"`
}

func (a *Application) IsActive() bool {
	return a.Status != ApplicationStatusWithdrawn
}
