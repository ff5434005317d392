package dto

import (
	"time"

	"placement_backend/internal/models"
)

type UpdateCompanyProfileRequest struct {
	CompanyName  string `json:"company_name" validate:"required,max=200"`
	Industry     string `json:"industry" validate:"max=100"`
	Description  string `json:"description" validate:"max=5000"`
	Website      string `json:"website" validate:"omitempty,url,max=255"`
	City         string `json:"city" validate:"max=100"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=255"`
}

type UpdateStudentProfileRequest struct {
	FirstName      string   `json:"first_name" validate:"required,max=100"`
	LastName       string   `json:"last_name" validate:"required,max=100"`
	School         string   `json:"school" validate:"max=200"`
	Program        string   `json:"program" validate:"max=200"`
	GraduationYear *int     `json:"graduation_year,omitempty" validate:"omitempty,min=1950,max=2100"`
	Phone          string   `json:"phone" validate:"max=30"`
	Skills         []string `json:"skills" validate:"max=50,dive,min=1,max=50"`
}

type CompanyProfileResponse struct {
	UserID       string `json:"user_id"`
	CompanyName  string `json:"company_name"`
	Industry     string `json:"industry,omitempty"`
	Description  string `json:"description,omitempty"`
	Website      string `json:"website,omitempty"`
	City         string `json:"city,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	ThumbnailURL string `json:"logo_thumbnail_url,omitempty"`
}

type StudentProfileResponse struct {
	UserID         string         `json:"user_id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	School         string         `json:"school,omitempty"`
	Program        string         `json:"program,omitempty"`
	GraduationYear *int           `json:"graduation_year,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Skills         []string    `json:"skills"`
	CurrentCv      *CvResponse `json:"current_cv,omitempty"`
}

type CvResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func NewCvResponse(cv *models.CvArtifact) *CvResponse {
	if cv == nil {
		return nil
	}
	return &CvResponse{
		ID:           cv.ID,
		OriginalName: cv.OriginalName,
		StoredName:   cv.StoredName,
		MimeType:     cv.MimeType,
		Size:         cv.Size,
		UploadedAt:   cv.UploadedAt,
	}
}

func NewStudentProfileResponse(p *models.StudentProfile) StudentProfileResponse {
	return StudentProfileResponse{
		UserID:         p.UserID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		School:         p.School,
		Program:        p.Program,
		GraduationYear: p.GraduationYear,
		Phone:          p.Phone,
		Skills:         p.GetSkills(),
		CurrentCv:      NewCvResponse(p.CurrentCv),
	}
}

// CvDownload - содержимое резюме для отдачи клиенту
type CvDownload struct {
	FileName string
	MimeType string
	Data     []byte
}
