package models

type Account struct {
	BaseModel
	Email        string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	Role         Role          `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       AccountStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CompanyProfile *CompanyProfile `gorm:"foreignKey:UserID" json:"company_profile,omitempty"`
	StudentProfile *StudentProfile `gorm:"foreignKey:UserID" json:"student_profile,omitempty"`
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
