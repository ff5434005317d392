package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type CompanyProfile struct {
	BaseModel
	UserID            string  `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	CompanyName       string  `gorm:"not null" json:"company_name"`
	Industry          string  `gorm:"type:varchar(100);index" json:"industry"`
	Description       string  `gorm:"type:text" json:"description"`
	Website           string  `json:"website,omitempty"`
	City              string  `json:"city,omitempty"`
	ContactEmail      string  `json:"contact_email,omitempty"`
	LogoPath          *string `json:"logo_path,omitempty"`
	LogoThumbnailPath *string `json:"logo_thumbnail_path,omitempty"`
}

type StudentProfile struct {
	BaseModel
	UserID         string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	FirstName      string         `gorm:"not null" json:"first_name"`
	LastName       string         `gorm:"not null" json:"last_name"`
	School         string         `json:"school,omitempty"`
	Program        string         `json:"program,omitempty"`
	GraduationYear *int           `json:"graduation_year,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Skills         datatypes.JSON `json:"skills,omitempty"`
	CurrentCvID    *string        `gorm:"type:varchar(36)" json:"current_cv_id,omitempty"`

	CurrentCv *CvArtifact `gorm:"foreignKey:CurrentCvID" json:"current_cv,omitempty"`
}

func (p *StudentProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p *StudentProfile) GetSkills() []string {
	var skills []string
	if len(p.Skills) == 0 {
		return skills
	}
	_ = json.Unmarshal(p.Skills, &skills)
	return skills
}

func (p *StudentProfile) SetSkills(skills []string) error {
	data, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	p.Skills = datatypes.JSON(data)
	return nil
}
