package repositories

import (
	"context"
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists for this user")
)

type ProfileRepository interface {
	// CompanyProfile
	CreateCompanyProfile(ctx context.Context, db *gorm.DB, profile *models.CompanyProfile) error
	FindCompanyByUserID(ctx context.Context, db *gorm.DB, userID string) (*models.CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, db *gorm.DB, profile *models.CompanyProfile) error
	SetCompanyLogo(ctx context.Context, db *gorm.DB, userID string, logoPath, thumbnailPath *string) error

	// StudentProfile
	CreateStudentProfile(ctx context.Context, db *gorm.DB, profile *models.StudentProfile) error
	FindStudentByUserID(ctx context.Context, db *gorm.DB, userID string) (*models.StudentProfile, error)
	UpdateStudentProfile(ctx context.Context, db *gorm.DB, profile *models.StudentProfile) error
	SetCurrentCV(ctx context.Context, db *gorm.DB, userID, cvID string) error
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

func (r *ProfileRepositoryImpl) CreateCompanyProfile(ctx context.Context, db *gorm.DB, profile *models.CompanyProfile) error {
	if err := db.WithContext(ctx).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindCompanyByUserID(ctx context.Context, db *gorm.DB, userID string) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateCompanyProfile(ctx context.Context, db *gorm.DB, profile *models.CompanyProfile) error {
	return db.WithContext(ctx).Model(profile).Select(
		"CompanyName", "Industry", "Description", "Website", "City", "ContactEmail",
	).Updates(profile).Error
}

func (r *ProfileRepositoryImpl) SetCompanyLogo(ctx context.Context, db *gorm.DB, userID string, logoPath, thumbnailPath *string) error {
	result := db.WithContext(ctx).Model(&models.CompanyProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"logo_path":           logoPath,
			"logo_thumbnail_path": thumbnailPath,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) CreateStudentProfile(ctx context.Context, db *gorm.DB, profile *models.StudentProfile) error {
	if err := db.WithContext(ctx).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindStudentByUserID(ctx context.Context, db *gorm.DB, userID string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := db.WithContext(ctx).Preload("CurrentCv").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateStudentProfile(ctx context.Context, db *gorm.DB, profile *models.StudentProfile) error {
	return db.WithContext(ctx).Model(profile).Select(
		"FirstName", "LastName", "School", "Program", "GraduationYear", "Phone", "Skills",
	).Updates(profile).Error
}

func (r *ProfileRepositoryImpl) SetCurrentCV(ctx context.Context, db *gorm.DB, userID, cvID string) error {
	result := db.WithContext(ctx).Model(&models.StudentProfile{}).
		Where("user_id = ?", userID).
		Update("current_cv_id", cvID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
