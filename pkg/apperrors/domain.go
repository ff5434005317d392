package apperrors

import (
	"fmt"
	"net/http"
)

// Фабрики доменных ошибок. Каждый вызов возвращает новый экземпляр,
// поэтому WithDetails не портит общие значения.

// ErrNotFound - ресурс не найден (404)
func ErrNotFound(domain string, err error) *AppError {
	return Wrap(err, CodeNotFound, domain, fmt.Sprintf("%s not found", domain), http.StatusNotFound)
}

// ErrConflict - общий конфликт (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidTransition - переход статуса не разрешен (409)
func ErrInvalidTransition(domain string, from, to fmt.Stringer) *AppError {
	return New(CodeInvalidTransition, domain,
		fmt.Sprintf("transition from %s to %s is not allowed", from, to),
		http.StatusConflict,
	).WithDetails(map[string]string{"from": from.String(), "to": to.String()})
}

// ErrDuplicateApplication - у студента уже есть активная заявка на вакансию (409)
func ErrDuplicateApplication(err error) *AppError {
	return Wrap(err, CodeDuplicateApplication, "application",
		"an active application for this posting already exists", http.StatusConflict)
}

// ErrPostingNotAcceptingApplications - вакансия не одобрена или срок истек (422)
func ErrPostingNotAcceptingApplications() *AppError {
	return New(CodePostingNotAcceptingApplications, "posting",
		"posting is not accepting applications", http.StatusUnprocessableEntity)
}

// ErrUnsupportedType - MIME-тип не входит в список разрешенных (415)
func ErrUnsupportedType(mime string, allowed []string) *AppError {
	return New(CodeUnsupportedType, "validation",
		"the provided file type is not allowed", http.StatusUnsupportedMediaType,
	).WithDetails(map[string]interface{}{"mime_type": mime, "allowed": allowed})
}

// ErrTooLarge - файл больше разрешенного размера (413)
func ErrTooLarge(size, limit int64) *AppError {
	return New(CodeTooLarge, "validation",
		"file size exceeds the allowed limit", http.StatusRequestEntityTooLarge,
	).WithDetails(map[string]int64{"size": size, "max_size": limit})
}

// ErrBodyTooLarge - тело запроса оборвано до конца файла, размер файла неизвестен (413)
func ErrBodyTooLarge(limit int64) *AppError {
	return New(CodeTooLarge, "validation",
		"file exceeds the allowed limit", http.StatusRequestEntityTooLarge,
	).WithDetails(map[string]int64{"max_size": limit})
}

// ErrInvalidCredentials - неверный email или пароль (401)
func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "auth", "invalid email or password", http.StatusUnauthorized)
}

// ErrAccountDisabled - аккаунт отключен администратором (403)
func ErrAccountDisabled() *AppError {
	return New(CodeAccountDisabled, "auth", "account is disabled", http.StatusForbidden)
}

// ErrRateLimited - превышен лимит запросов (429)
func ErrRateLimited() *AppError {
	return New(CodeRateLimited, "request", "too many requests", http.StatusTooManyRequests)
}
