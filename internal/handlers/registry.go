package handlers

import (
	"placement_backend/internal/services"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	HealthHandler      *HealthHandler
	AuthHandler        *AuthHandler
	ProfileHandler     *ProfileHandler
	PostingHandler     *PostingHandler
	ApplicationHandler *ApplicationHandler
	FileHandler        *FileHandler
}

func NewAppHandlers(base *BaseHandler, svc *services.ServiceContainer) *AppHandlers {
	return &AppHandlers{
		HealthHandler:      NewHealthHandler(base),
		AuthHandler:        NewAuthHandler(base, svc.AuthService),
		ProfileHandler:     NewProfileHandler(base, svc.ProfileService),
		PostingHandler:     NewPostingHandler(base, svc.PostingService, svc.MatchingService),
		ApplicationHandler: NewApplicationHandler(base, svc.ApplicationService),
		FileHandler:        NewFileHandler(base, svc.UploadService),
	}
}
