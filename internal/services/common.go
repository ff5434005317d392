package services

import (
	"errors"
	"time"

	"placement_backend/internal/auth"
	"placement_backend/internal/repositories"
	"placement_backend/pkg/apperrors"
)

// Clock - источник времени. В тестах подменяется фиксированным.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// ============================================
// ТРАНСЛЯЦИЯ ОШИБОК РЕПОЗИТОРИЕВ
// ============================================

// handleRepoError переводит sentinel-ошибки репозиториев в AppError.
// Неизвестные ошибки считаются внутренними.
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrAccountNotFound):
		return apperrors.ErrNotFound("account", err)
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.ErrNotFound("profile", err)
	case errors.Is(err, repositories.ErrCvNotFound):
		return apperrors.ErrNotFound("cv", err)
	case errors.Is(err, repositories.ErrPostingNotFound):
		return apperrors.ErrNotFound("posting", err)
	case errors.Is(err, repositories.ErrApplicationNotFound):
		return apperrors.ErrNotFound("application", err)
	case errors.Is(err, repositories.ErrAccountAlreadyExists):
		return apperrors.ErrConflict(err, "account", "an account with this email already exists")
	case errors.Is(err, repositories.ErrProfileAlreadyExists):
		return apperrors.ErrConflict(err, "profile", "profile already exists")
	case errors.Is(err, repositories.ErrApplicationAlreadyExists):
		return apperrors.ErrDuplicateApplication(err)
	default:
		return apperrors.InternalError(err)
	}
}

// hideMissing используется для ресурсов под проверкой владельца:
// вызывающий, который не admin, не должен узнать, существует ли запись.
func hideMissing(principal *auth.Principal, err error) error {
	if apperrors.IsCode(err, apperrors.CodeNotFound) && !principal.IsAdmin() {
		return apperrors.NewForbiddenError("resource belongs to another account")
	}
	return err
}

func isNotFound(err error) bool {
	return apperrors.IsCode(err, apperrors.CodeNotFound)
}
