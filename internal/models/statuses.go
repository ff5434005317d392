package models

import "fmt"

type Role string
type AccountStatus string
type PostingStatus string
type ApplicationStatus string
type EmploymentType string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"

	AccountStatusActive   AccountStatus = "active"
	AccountStatusDisabled AccountStatus = "disabled"

	PostingStatusPending  PostingStatus = "pending"
	PostingStatusApproved PostingStatus = "approved"
	PostingStatusRejected PostingStatus = "rejected"
	PostingStatusClosed   PostingStatus = "closed"

	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"

	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentInternship EmploymentType = "internship"
	EmploymentContract   EmploymentType = "contract"
)

// Roles - полный список ролей. Других не бывает.
var Roles = []Role{RoleStudent, RoleCompany, RoleAdmin}

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// ParseRole разбирает роль из строки (токен, запрос)
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (s AccountStatus) Valid() bool {
	return s == AccountStatusActive || s == AccountStatusDisabled
}

func (s PostingStatus) String() string { return string(s) }

func (s ApplicationStatus) String() string { return string(s) }

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusInterview, ApplicationStatusAccepted,
		ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// Terminal - из этих статусов переходов нет
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

func (t EmploymentType) Valid() bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentInternship, EmploymentContract:
		return true
	}
	return false
}

// Переходы вакансии: решение модератора и закрытие компанией
var postingTransitions = map[PostingStatus][]PostingStatus{
	PostingStatusPending:  {PostingStatusApproved, PostingStatusRejected},
	PostingStatusApproved: {PostingStatusClosed},
}

// Переходы заявки, которые делает компания. Отзыв студентом - отдельно.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:   {ApplicationStatusInterview, ApplicationStatusRejected},
	ApplicationStatusInterview: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

func PostingTransitionAllowed(from, to PostingStatus) bool {
	for _, next := range postingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsDecision - допустимый результат модерации
func (s PostingStatus) IsDecision() bool {
	return s == PostingStatusApproved || s == PostingStatusRejected
}

func ApplicationTransitionAllowed(from, to ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanWithdraw - студент может отозвать только заявку, которую еще не рассмотрели
func CanWithdraw(s ApplicationStatus) bool {
	return s == ApplicationStatusPending
}
