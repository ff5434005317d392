package repositories

import (
	"context"
	"errors"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrApplicationNotFound      = errors.New("application not found")
	ErrApplicationAlreadyExists = errors.New("active application already exists")
)

type ApplicationRepository interface {
	// Create возвращает ErrApplicationAlreadyExists при нарушении уникального индекса
	Create(ctx context.Context, db *gorm.DB, app *models.Application) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Application, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id string) (*models.Application, error)
	FindActive(ctx context.Context, db *gorm.DB, studentID, postingID string) (*models.Application, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id string, status models.ApplicationStatus, notes *string, at time.Time) error
	ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Application, error)
	ListByPosting(ctx context.Context, db *gorm.DB, postingID string) ([]models.Application, error)
	// CompanyReceivedCv - есть ли у компании заявка с этим резюме
	CompanyReceivedCv(ctx context.Context, db *gorm.DB, companyID, cvID string) (bool, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, db *gorm.DB, app *models.Application) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrApplicationAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ApplicationRepositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	if err := db.WithContext(ctx).Preload("Posting").First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindActive(ctx context.Context, db *gorm.DB, studentID, postingID string) (*models.Application, error) {
	var app models.Application
	err := db.WithContext(ctx).
		Where("student_id = ? AND posting_id = ? AND status <> ?", studentID, postingID, models.ApplicationStatusWithdrawn).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) UpdateStatus(ctx context.Context, db *gorm.DB, id string, status models.ApplicationStatus, notes *string, at time.Time) error {
	updates := map[string]interface{}{
		"status":            status,
		"status_updated_at": at,
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	result := db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Application, error) {
	var apps []models.Application
	err := db.WithContext(ctx).
		Preload("Posting").
		Preload("Posting.Company").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) ListByPosting(ctx context.Context, db *gorm.DB, postingID string) ([]models.Application, error) {
	var apps []models.Application
	err := db.WithContext(ctx).
		Where("posting_id = ?", postingID).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) CompanyReceivedCv(ctx context.Context, db *gorm.DB, companyID, cvID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Application{}).
		Joins("JOIN job_postings ON job_postings.id = applications.posting_id").
		Where("job_postings.company_id = ? AND applications.cv_artifact_id = ?", companyID, cvID).
		Count(&count).Error
	return count > 0, err
}
