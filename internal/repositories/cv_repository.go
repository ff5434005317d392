package repositories

import (
	"context"
	"errors"

	"placement_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCvNotFound = errors.New("cv not found")

// CvRepository - история резюме. Только добавление и чтение.
type CvRepository interface {
	Create(ctx context.Context, db *gorm.DB, cv *models.CvArtifact) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*models.CvArtifact, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.CvArtifact, error)
}

type CvRepositoryImpl struct{}

func NewCvRepository() CvRepository {
	return &CvRepositoryImpl{}
}

func (r *CvRepositoryImpl) Create(ctx context.Context, db *gorm.DB, cv *models.CvArtifact) error {
	return db.WithContext(ctx).Create(cv).Error
}

func (r *CvRepositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.CvArtifact, error) {
	var cv models.CvArtifact
	if err := db.WithContext(ctx).First(&cv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCvNotFound
		}
		return nil, err
	}
	return &cv, nil
}

func (r *CvRepositoryImpl) ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.CvArtifact, error) {
	var cvs []models.CvArtifact
	err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("uploaded_at DESC").
		Find(&cvs).Error
	return cvs, err
}
