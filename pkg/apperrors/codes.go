package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Аутентификация и авторизация
	CodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeAccountDisabled    ErrorCode = "ACCOUNT_DISABLED"

	// Валидация входных данных
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeUnsupportedType  ErrorCode = "UNSUPPORTED_TYPE"
	CodeTooLarge         ErrorCode = "TOO_LARGE"

	// Бизнес-логика
	CodeNotFound                        ErrorCode = "NOT_FOUND"
	CodeConflict                        ErrorCode = "CONFLICT"
	CodeInvalidTransition               ErrorCode = "INVALID_TRANSITION"
	CodeDuplicateApplication            ErrorCode = "DUPLICATE_APPLICATION"
	CodePostingNotAcceptingApplications ErrorCode = "POSTING_NOT_ACCEPTING_APPLICATIONS"
	CodeRateLimited                     ErrorCode = "RATE_LIMITED"
)
