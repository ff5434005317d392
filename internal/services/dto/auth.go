package dto

import (
	"time"

	"placement_backend/internal/models"
)

// RegisterRequest - регистрация студента или компании
type RegisterRequest struct {
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"required,is-registration-role"`

	// Для студента
	FirstName string `json:"first_name,omitempty" validate:"required_if=Role student,max=100"`
	LastName  string `json:"last_name,omitempty" validate:"required_if=Role student,max=100"`
	School    string `json:"school,omitempty" validate:"max=200"`

	// Для компании
	CompanyName string `json:"company_name,omitempty" validate:"required_if=Role company,max=200"`
	Industry    string `json:"industry,omitempty" validate:"max=100"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - ответ с токеном
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Account     AccountResponse `json:"account"`
}

type AccountResponse struct {
	ID        string               `json:"id"`
	Email     string               `json:"email"`
	Role      models.Role          `json:"role"`
	Status    models.AccountStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// UpdateAccountStatusRequest - отключение/включение аккаунта админом
type UpdateAccountStatusRequest struct {
	Status models.AccountStatus `json:"status" validate:"required,is-account-status"`
}

func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}
