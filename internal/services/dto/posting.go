package dto

import (
	"time"

	"placement_backend/internal/models"
)

// CreatePostingRequest - новая вакансия всегда попадает на модерацию
type CreatePostingRequest struct {
	Title          string                `json:"title" validate:"required,min=3,max=200"`
	Description    string                `json:"description" validate:"required,min=10"`
	Requirements   string                `json:"requirements,omitempty" validate:"max=5000"`
	Location       string                `json:"location" validate:"max=200"`
	EmploymentType models.EmploymentType `json:"employment_type" validate:"required,is-employment-type"`
	SalaryMin      *int                  `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax      *int                  `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Tags           []string              `json:"tags,omitempty" validate:"max=20,dive,min=1,max=50"`
	Deadline       *time.Time            `json:"deadline,omitempty"`
}

// DecisionRequest - решение модератора
type DecisionRequest struct {
	Decision models.PostingStatus `json:"decision" validate:"required,is-decision"`
	Reason   string               `json:"reason,omitempty" validate:"max=1000"`
}

// BulkDecisionRequest - одно решение для нескольких вакансий
type BulkDecisionRequest struct {
	PostingIDs []string             `json:"posting_ids" validate:"required,min=1,max=100,dive,required"`
	Decision   models.PostingStatus `json:"decision" validate:"required,is-decision"`
	Reason     string               `json:"reason,omitempty" validate:"max=1000"`
}

// BulkDecisionItem - результат по одной вакансии
type BulkDecisionItem struct {
	PostingID string               `json:"posting_id"`
	Status    models.PostingStatus `json:"status,omitempty"`
	Error     string               `json:"error,omitempty"`
	Code      string               `json:"code,omitempty"`
}

type BulkDecisionResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []BulkDecisionItem `json:"items"`
}

// PostingListQuery - фильтры публичной ленты
type PostingListQuery struct {
	Query          string `form:"q" validate:"max=100"`
	Location       string `form:"location" validate:"max=100"`
	EmploymentType string `form:"employment_type" validate:"omitempty,is-employment-type"`
	Page           int    `form:"page" validate:"omitempty,min=1"`
	PageSize       int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type PostingResponse struct {
	ID             string                `json:"id"`
	CompanyID      string                `json:"company_id"`
	CompanyName    string                `json:"company_name,omitempty"`
	Industry       string                `json:"industry,omitempty"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Requirements   string                `json:"requirements,omitempty"`
	Location       string                `json:"location,omitempty"`
	EmploymentType models.EmploymentType `json:"employment_type"`
	SalaryMin      *int                  `json:"salary_min,omitempty"`
	SalaryMax      *int                  `json:"salary_max,omitempty"`
	Tags           []string              `json:"tags"`
	Deadline       *time.Time            `json:"deadline,omitempty"`
	Status         models.PostingStatus  `json:"status"`
	RejectReason   *string               `json:"reject_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

type PostingListResponse struct {
	Items    []PostingResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func NewPostingResponse(p *models.JobPosting) PostingResponse {
	resp := PostingResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		Title:          p.Title,
		Description:    p.Description,
		Requirements:   p.Requirements,
		Location:       p.Location,
		EmploymentType: p.EmploymentType,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		Tags:           p.GetTags(),
		Deadline:       p.Deadline,
		Status:         p.Status,
		RejectReason:   p.RejectReason,
		CreatedAt:      p.CreatedAt,
	}
	if p.Company != nil {
		resp.CompanyName = p.Company.CompanyName
		resp.Industry = p.Company.Industry
	}
	return resp
}

func NewPostingResponses(postings []models.JobPosting) []PostingResponse {
	out := make([]PostingResponse, 0, len(postings))
	for i := range postings {
		out = append(out, NewPostingResponse(&postings[i]))
	}
	return out
}

// SimilarPosting - рекомендация на странице вакансии
type SimilarPosting struct {
	PostingResponse
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
