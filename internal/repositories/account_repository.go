package repositories

import (
	"context"
	"errors"
	"strings"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
)

type AccountRepository interface {
	Create(ctx context.Context, db *gorm.DB, account *models.Account) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.Account, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id string, status models.AccountStatus) error
	ExistsWithRole(ctx context.Context, db *gorm.DB, role models.Role) (bool, error)
}

type AccountRepositoryImpl struct{}

func NewAccountRepository() AccountRepository {
	return &AccountRepositoryImpl{}
}

// NormalizeEmail - email хранится и ищется в нижнем регистре
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, db *gorm.DB, account *models.Account) error {
	account.Email = NormalizeEmail(account.Email)
	if err := db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAccountAlreadyExists
		}
		return err
	}
	return nil
}

func (r *AccountRepositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Account, error) {
	var account models.Account
	if err := db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.Account, error) {
	var account models.Account
	err := db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) UpdateStatus(ctx context.Context, db *gorm.DB, id string, status models.AccountStatus) error {
	result := db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepositoryImpl) ExistsWithRole(ctx context.Context, db *gorm.DB, role models.Role) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Account{}).Where("role = ?", role).Limit(1).Count(&count).Error
	return count > 0, err
}
