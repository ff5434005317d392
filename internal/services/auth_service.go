package services

import (
	"context"
	"strings"

	"placement_backend/internal/auth"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	// Register создает аккаунт студента или компании вместе с профилем
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, db *gorm.DB, token string) (*dto.AccountResponse, error)
	// SetAccountStatus - мягкое отключение аккаунта, только admin
	SetAccountStatus(ctx context.Context, db *gorm.DB, token, accountID string, status models.AccountStatus) (*dto.AccountResponse, error)
	// SeedAdmin создает первого администратора, если его еще нет
	SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) error
}

type AuthServiceImpl struct {
	accountRepo repositories.AccountRepository
	profileRepo repositories.ProfileRepository
	tx          repositories.Transactor
	tokens      *auth.TokenService
	guard       *auth.Guard
}

func NewAuthService(
	accountRepo repositories.AccountRepository,
	profileRepo repositories.ProfileRepository,
	tx repositories.Transactor,
	tokens *auth.TokenService,
	guard *auth.Guard,
) AuthService {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		tx:          tx,
		tokens:      tokens,
		guard:       guard,
	}
}

// Register - регистрация нового пользователя
func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	// admin через регистрацию не создается
	if req.Role != models.RoleStudent && req.Role != models.RoleCompany {
		return nil, apperrors.ValidationError(map[string]string{"role": "role must be student or company"})
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}
	if err := validateRegisterProfile(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	account := &models.Account{
		Email:        repositories.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.AccountStatusActive,
	}

	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}
		return s.createProfile(ctx, tx, account, req)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Account registered", "account_id", account.ID, "role", account.Role)
	return s.issue(account)
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	account, err := s.accountRepo.FindByEmail(ctx, db, req.Email)
	if err != nil {
		if isNotFound(handleRepoError(err)) {
			return nil, apperrors.ErrInvalidCredentials()
		}
		return nil, handleRepoError(err)
	}

	if !auth.CheckPasswordHash(req.Password, account.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials()
	}
	if !account.IsActive() {
		logger.CtxWarn(ctx, "Login attempt for disabled account", "account_id", account.ID)
		return nil, apperrors.ErrAccountDisabled()
	}

	return s.issue(account)
}

func (s *AuthServiceImpl) Me(ctx context.Context, db *gorm.DB, token string) (*dto.AccountResponse, error) {
	principal, err := s.guard.Authenticate(token)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByID(ctx, db, principal.AccountID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	resp := dto.NewAccountResponse(account)
	return &resp, nil
}

func (s *AuthServiceImpl) SetAccountStatus(ctx context.Context, db *gorm.DB, token, accountID string, status models.AccountStatus) (*dto.AccountResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleAdmin))
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "status must be active or disabled"})
	}
	if principal.AccountID == accountID && status == models.AccountStatusDisabled {
		return nil, apperrors.NewBadRequestError("administrators cannot disable their own account")
	}

	var account *models.Account
	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := s.accountRepo.UpdateStatus(ctx, tx, accountID, status); err != nil {
			return err
		}
		var err error
		account, err = s.accountRepo.FindByID(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Account status changed", "account_id", accountID, "status", status, "admin_id", principal.AccountID)
	resp := dto.NewAccountResponse(account)
	return &resp, nil
}

func (s *AuthServiceImpl) SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}

	exists, err := s.accountRepo.ExistsWithRole(ctx, db, models.RoleAdmin)
	if err != nil {
		return handleRepoError(err)
	}
	if exists {
		return nil
	}

	if err := auth.ValidatePassword(password); err != nil {
		return apperrors.ValidationError(map[string]string{"first_admin.password": err.Error()})
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	admin := &models.Account{
		Email:        repositories.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.AccountStatusActive,
	}
	if err := s.accountRepo.Create(ctx, db, admin); err != nil {
		return handleRepoError(err)
	}

	logger.CtxInfo(ctx, "First administrator created", "account_id", admin.ID)
	return nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ
// ============================================

func validateRegisterProfile(req *dto.RegisterRequest) error {
	details := map[string]string{}
	switch req.Role {
	case models.RoleStudent:
		if strings.TrimSpace(req.FirstName) == "" {
			details["first_name"] = "first_name is required"
		}
		if strings.TrimSpace(req.LastName) == "" {
			details["last_name"] = "last_name is required"
		}
	case models.RoleCompany:
		if strings.TrimSpace(req.CompanyName) == "" {
			details["company_name"] = "company_name is required"
		}
	}
	if len(details) > 0 {
		return apperrors.ValidationError(details)
	}
	return nil
}

func (s *AuthServiceImpl) createProfile(ctx context.Context, tx *gorm.DB, account *models.Account, req *dto.RegisterRequest) error {
	if account.Role == models.RoleCompany {
		return s.profileRepo.CreateCompanyProfile(ctx, tx, &models.CompanyProfile{
			UserID:       account.ID,
			CompanyName:  strings.TrimSpace(req.CompanyName),
			Industry:     strings.TrimSpace(req.Industry),
			ContactEmail: account.Email,
		})
	}
	return s.profileRepo.CreateStudentProfile(ctx, tx, &models.StudentProfile{
		UserID:    account.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		School:    strings.TrimSpace(req.School),
	})
}

func (s *AuthServiceImpl) issue(account *models.Account) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Account:     dto.NewAccountResponse(account),
	}, nil
}
