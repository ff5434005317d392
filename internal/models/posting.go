package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type JobPosting struct {
	BaseModel
	CompanyID      string         `gorm:"type:varchar(36);not null;index" json:"company_id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Requirements   string         `gorm:"type:text" json:"requirements,omitempty"`
	Location       string         `json:"location"`
	EmploymentType EmploymentType `gorm:"type:varchar(20);not null" json:"employment_type"`
	SalaryMin      *int           `json:"salary_min,omitempty"`
	SalaryMax      *int           `json:"salary_max,omitempty"`
	Tags           datatypes.JSON `json:"tags,omitempty"`
	Deadline       *time.Time     `gorm:"index" json:"deadline,omitempty"`
	Status         PostingStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	RejectReason   *string        `json:"reject_reason,omitempty"`
	DecidedBy      *string        `gorm:"type:varchar(36)" json:"decided_by,omitempty"`
	DecidedAt      *time.Time     `json:"decided_at,omitempty"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`

	Company *CompanyProfile `gorm:"foreignKey:CompanyID;references:UserID" json:"company,omitempty"`
}

// IsExpired - дедлайн задан и уже прошел
func (p *JobPosting) IsExpired(now time.Time) bool {
	return p.Deadline != nil && !p.Deadline.After(now)
}

// IsVisible - вакансия показывается в публичной ленте
func (p *JobPosting) IsVisible(now time.Time) bool {
	return p.Status == PostingStatusApproved && !p.IsExpired(now)
}

// AcceptsApplications совпадает с видимостью: только одобренные и не просроченные
func (p *JobPosting) AcceptsApplications(now time.Time) bool {
	return p.IsVisible(now)
}

func (p *JobPosting) Industry() string {
	if p.Company == nil {
		return ""
	}
	return p.Company.Industry
}

func (p *JobPosting) GetTags() []string {
	var tags []string
	if len(p.Tags) == 0 {
		return tags
	}
	_ = json.Unmarshal(p.Tags, &tags)
	return tags
}

func (p *JobPosting) SetTags(tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	p.Tags = datatypes.JSON(data)
	return nil
}
