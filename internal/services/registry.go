package services

import (
	"placement_backend/internal/auth"
	"placement_backend/internal/config"
	"placement_backend/internal/email"
	"placement_backend/internal/imageprocessor"
	"placement_backend/internal/repositories"
	"placement_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService        AuthService
	UploadService      UploadService
	ProfileService     ProfileService
	PostingService     PostingService
	ApplicationService ApplicationService
	MatchingService    MatchingService
}

// Dependencies - то, что собирается в app до создания сервисов
type Dependencies struct {
	Tokens   *auth.TokenService
	Guard    *auth.Guard
	Storage  storage.Storage
	Notifier email.Notifier
	Upload   config.UploadRules
	Clock    Clock
}

// NewServiceContainer собирает сервисы поверх gorm-репозиториев
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	accountRepo := repositories.NewAccountRepository()
	profileRepo := repositories.NewProfileRepository()
	cvRepo := repositories.NewCvRepository()
	postingRepo := repositories.NewPostingRepository()
	appRepo := repositories.NewApplicationRepository()
	tx := repositories.NewTransactor()

	uploads := NewUploadService(deps.Storage, deps.Upload, deps.Clock)
	images := imageprocessor.NewProcessor(deps.Upload.ImageQuality)

	return &ServiceContainer{
		AuthService:    NewAuthService(accountRepo, profileRepo, tx, deps.Tokens, deps.Guard),
		UploadService:  uploads,
		ProfileService: NewProfileService(profileRepo, cvRepo, appRepo, tx, uploads, images, deps.Upload.ThumbnailSize, deps.Guard, deps.Clock),
		PostingService: NewPostingService(postingRepo, accountRepo, tx, deps.Guard, deps.Notifier, deps.Clock),
		ApplicationService: NewApplicationService(
			appRepo, postingRepo, cvRepo, profileRepo, accountRepo, tx, deps.Guard, deps.Notifier, deps.Clock,
		),
		MatchingService: NewMatchingService(postingRepo, deps.Clock),
	}
}
