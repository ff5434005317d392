package dto

import (
	"time"

	"placement_backend/internal/models"
)

// SubmitApplicationRequest - cv_id пустой: берется текущее резюме студента
type SubmitApplicationRequest struct {
	PostingID   string `json:"posting_id" validate:"required"`
	CvID        string `json:"cv_id,omitempty"`
	CoverLetter string `json:"cover_letter,omitempty" validate:"max=5000"`
}

// UpdateApplicationStatusRequest - решение компании по заявке
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,is-application-status"`
	Notes  *string                  `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type ApplicationResponse struct {
	ID              string                   `json:"id"`
	StudentID       string                   `json:"student_id"`
	PostingID       string                   `json:"posting_id"`
	PostingTitle    string                   `json:"posting_title,omitempty"`
	CvID            string                   `json:"cv_id"`
	CoverLetter     string                   `json:"cover_letter,omitempty"`
	Status          models.ApplicationStatus `json:"status"`
	Notes           string                   `json:"notes,omitempty"`
	StatusUpdatedAt time.Time                `json:"status_updated_at"`
	CreatedAt       time.Time                `json:"created_at"`
}

func NewApplicationResponse(a *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:              a.ID,
		StudentID:       a.StudentID,
		PostingID:       a.PostingID,
		CvID:            a.CvArtifactID,
		CoverLetter:     a.CoverLetter,
		Status:          a.Status,
		Notes:           a.Notes,
		StatusUpdatedAt: a.StatusUpdatedAt,
		CreatedAt:       a.CreatedAt,
	}
	if a.Posting != nil {
		resp.PostingTitle = a.Posting.Title
	}
	return resp
}

func NewApplicationResponses(apps []models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, NewApplicationResponse(&apps[i]))
	}
	return out
}
