package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - *gorm.DB (пул или транзакция)
	DBContextKey = contextKey("db")
	// TokenContextKey - сырой bearer токен запроса
	TokenContextKey = contextKey("token")
	// PrincipalContextKey - *auth.Principal после AuthMiddleware
	PrincipalContextKey = contextKey("principal")
)
