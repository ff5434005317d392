package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"placement_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPostingNotFound = errors.New("posting not found")

// PostingFilter - фильтры публичной ленты. Видимость они не расширяют.
type PostingFilter struct {
	Query          string
	Location       string
	EmploymentType models.EmploymentType
	CompanyID      string
	Page           int
	PageSize       int
}

type PostingRepository interface {
	Create(ctx context.Context, db *gorm.DB, posting *models.JobPosting) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*models.JobPosting, error)
	// FindByIDForUpdate блокирует строку до конца транзакции
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id string) (*models.JobPosting, error)
	Update(ctx context.Context, db *gorm.DB, posting *models.JobPosting) error
	ListVisible(ctx context.Context, db *gorm.DB, now time.Time, filter PostingFilter) ([]models.JobPosting, int64, error)
	ListByCompany(ctx context.Context, db *gorm.DB, companyID string) ([]models.JobPosting, error)
	ListByStatus(ctx context.Context, db *gorm.DB, status models.PostingStatus) ([]models.JobPosting, error)
}

type PostingRepositoryImpl struct{}

func NewPostingRepository() PostingRepository {
	return &PostingRepositoryImpl{}
}

func (r *PostingRepositoryImpl) Create(ctx context.Context, db *gorm.DB, posting *models.JobPosting) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(posting).Error
}

func (r *PostingRepositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.JobPosting, error) {
	var posting models.JobPosting
	if err := db.WithContext(ctx).Preload("Company").First(&posting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostingNotFound
		}
		return nil, err
	}
	return &posting, nil
}

func (r *PostingRepositoryImpl) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id string) (*models.JobPosting, error) {
	var posting models.JobPosting
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&posting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostingNotFound
		}
		return nil, err
	}
	return &posting, nil
}

func (r *PostingRepositoryImpl) Update(ctx context.Context, db *gorm.DB, posting *models.JobPosting) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(posting).Error
}

// ListVisible - одобренные вакансии без дедлайна или с дедлайном в будущем.
// Срок проверяется при чтении, фоновых задач нет.
func (r *PostingRepositoryImpl) ListVisible(ctx context.Context, db *gorm.DB, now time.Time, filter PostingFilter) ([]models.JobPosting, int64, error) {
	query := db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("status = ?", models.PostingStatusApproved).
		Where("(deadline IS NULL OR deadline > ?)", now)

	if q := strings.TrimSpace(strings.ToLower(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(requirements) LIKE ?)", like, like, like)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.EmploymentType != "" {
		query = query.Where("employment_type = ?", filter.EmploymentType)
	}
	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var postings []models.JobPosting
	err := query.Preload("Company").Order("created_at DESC").Order("id").Find(&postings).Error
	return postings, total, err
}

func (r *PostingRepositoryImpl) ListByCompany(ctx context.Context, db *gorm.DB, companyID string) ([]models.JobPosting, error) {
	var postings []models.JobPosting
	err := db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&postings).Error
	return postings, err
}

func (r *PostingRepositoryImpl) ListByStatus(ctx context.Context, db *gorm.DB, status models.PostingStatus) ([]models.JobPosting, error) {
	var postings []models.JobPosting
	err := db.WithContext(ctx).
		Preload("Company").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&postings).Error
	return postings, err
}
