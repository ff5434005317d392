package services

import (
	"context"
	"strings"

	"placement_backend/internal/auth"
	"placement_backend/internal/email"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PostingService - жизненный цикл вакансии:
// PENDING -> APPROVED | REJECTED (admin), APPROVED -> CLOSED (компания-владелец)
type PostingService interface {
	Create(ctx context.Context, db *gorm.DB, token, companyID string, req *dto.CreatePostingRequest) (*dto.PostingResponse, error)
	Decide(ctx context.Context, db *gorm.DB, token, postingID string, decision models.PostingStatus, reason string) (*dto.PostingResponse, error)
	// BulkDecide применяет одно решение к каждой вакансии с теми же проверками, что Decide
	BulkDecide(ctx context.Context, db *gorm.DB, token string, req *dto.BulkDecisionRequest) (*dto.BulkDecisionResponse, error)
	Close(ctx context.Context, db *gorm.DB, token, postingID, companyID string) (*dto.PostingResponse, error)

	ListVisible(ctx context.Context, db *gorm.DB, query *dto.PostingListQuery) (*dto.PostingListResponse, error)
	GetVisible(ctx context.Context, db *gorm.DB, postingID string) (*dto.PostingResponse, error)
	GetForManagement(ctx context.Context, db *gorm.DB, token, postingID string) (*dto.PostingResponse, error)
	ListByCompany(ctx context.Context, db *gorm.DB, token, companyID string) ([]dto.PostingResponse, error)
	ListPending(ctx context.Context, db *gorm.DB, token string) ([]dto.PostingResponse, error)
}

type PostingServiceImpl struct {
	postingRepo repositories.PostingRepository
	accountRepo repositories.AccountRepository
	tx          repositories.Transactor
	guard       *auth.Guard
	notifier    email.Notifier
	now         Clock
}

func NewPostingService(
	postingRepo repositories.PostingRepository,
	accountRepo repositories.AccountRepository,
	tx repositories.Transactor,
	guard *auth.Guard,
	notifier email.Notifier,
	now Clock,
) PostingService {
	if now == nil {
		now = systemClock
	}
	if notifier == nil {
		notifier = email.NoopNotifier{}
	}
	return &PostingServiceImpl{
		postingRepo: postingRepo,
		accountRepo: accountRepo,
		tx:          tx,
		guard:       guard,
		notifier:    notifier,
		now:         now,
	}
}

// ============================================
// ИЗМЕНЕНИЕ СОСТОЯНИЯ
// ============================================

// Create - новая вакансия всегда PENDING, независимо от запроса
func (s *PostingServiceImpl) Create(ctx context.Context, db *gorm.DB, token, companyID string, req *dto.CreatePostingRequest) (*dto.PostingResponse, error) {
	if _, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleCompany).OwnedBy(companyID)); err != nil {
		return nil, err
	}
	if err := s.validatePosting(req); err != nil {
		return nil, err
	}

	posting := &models.JobPosting{
		CompanyID:      companyID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Requirements:   strings.TrimSpace(req.Requirements),
		Location:       strings.TrimSpace(req.Location),
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Deadline:       req.Deadline,
		Status:         models.PostingStatusPending,
	}
	if err := posting.SetTags(normalizeList(req.Tags)); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.postingRepo.Create(ctx, db, posting); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Posting created", "posting_id", posting.ID, "company_id", companyID)
	resp := dto.NewPostingResponse(posting)
	return &resp, nil
}

func (s *PostingServiceImpl) validatePosting(req *dto.CreatePostingRequest) error {
	details := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		details["title"] = "title is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		details["description"] = "description is required"
	}
	if !req.EmploymentType.Valid() {
		details["employment_type"] = "employment_type must be one of full_time, part_time, internship, contract"
	}
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		details["salary_max"] = "salary_max cannot be less than salary_min"
	}
	if req.Deadline != nil && !req.Deadline.After(s.now()) {
		details["deadline"] = "deadline must be in the future"
	}
	if len(details) > 0 {
		return apperrors.ValidationError(details)
	}
	return nil
}

// Decide - решение модератора. Строка вакансии блокируется,
// поэтому два одновременных решения не пройдут оба.
func (s *PostingServiceImpl) Decide(ctx context.Context, db *gorm.DB, token, postingID string, decision models.PostingStatus, reason string) (*dto.PostingResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleAdmin))
	if err != nil {
		return nil, err
	}

	posting, err := s.decide(ctx, db, principal, postingID, decision, reason)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, db, posting)
	resp := dto.NewPostingResponse(posting)
	return &resp, nil
}

func (s *PostingServiceImpl) decide(ctx context.Context, db *gorm.DB, principal *auth.Principal, postingID string, decision models.PostingStatus, reason string) (*models.JobPosting, error) {
	if !decision.IsDecision() {
		return nil, apperrors.ValidationError(map[string]string{"decision": "decision must be approved or rejected"})
	}

	var posting *models.JobPosting
	err := s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		posting, err = s.postingRepo.FindByIDForUpdate(ctx, tx, postingID)
		if err != nil {
			return err
		}
		if !models.PostingTransitionAllowed(posting.Status, decision) {
			return apperrors.ErrInvalidTransition("posting", posting.Status, decision)
		}

		now := s.now()
		posting.Status = decision
		posting.DecidedBy = &principal.AccountID
		posting.DecidedAt = &now
		posting.RejectReason = nil
		if decision == models.PostingStatusRejected {
			if r := strings.TrimSpace(reason); r != "" {
				posting.RejectReason = &r
			}
		}
		return s.postingRepo.Update(ctx, tx, posting)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Posting decided", "posting_id", posting.ID, "status", posting.Status, "admin_id", principal.AccountID)
	return posting, nil
}

func (s *PostingServiceImpl) BulkDecide(ctx context.Context, db *gorm.DB, token string, req *dto.BulkDecisionRequest) (*dto.BulkDecisionResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleAdmin))
	if err != nil {
		return nil, err
	}
	if !req.Decision.IsDecision() {
		return nil, apperrors.ValidationError(map[string]string{"decision": "decision must be approved or rejected"})
	}

	resp := &dto.BulkDecisionResponse{Items: make([]dto.BulkDecisionItem, 0, len(req.PostingIDs))}
	seen := make(map[string]struct{}, len(req.PostingIDs))
	for _, id := range req.PostingIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		// Каждая вакансия в своей транзакции: ошибка одной не откатывает остальные
		posting, err := s.decide(ctx, db, principal, id, req.Decision, req.Reason)
		if err != nil {
			item := dto.BulkDecisionItem{PostingID: id, Error: err.Error()}
			if appErr, ok := apperrors.AsAppError(err); ok {
				item.Error = appErr.Message
				item.Code = string(appErr.Code)
			}
			resp.Items = append(resp.Items, item)
			resp.Failed++
			continue
		}

		s.notifyDecision(ctx, db, posting)
		resp.Items = append(resp.Items, dto.BulkDecisionItem{PostingID: id, Status: posting.Status})
		resp.Succeeded++
	}
	return resp, nil
}

// Close - только компания-владелец. Admin override нет.
func (s *PostingServiceImpl) Close(ctx context.Context, db *gorm.DB, token, postingID, companyID string) (*dto.PostingResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleCompany).OwnedBy(companyID))
	if err != nil {
		return nil, err
	}

	var posting *models.JobPosting
	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		posting, err = s.postingRepo.FindByIDForUpdate(ctx, tx, postingID)
		if err != nil {
			return hideMissing(principal, handleRepoError(err))
		}
		if err := principal.Check(auth.RequireRoles(models.RoleCompany).OwnedBy(posting.CompanyID)); err != nil {
			return err
		}
		if !models.PostingTransitionAllowed(posting.Status, models.PostingStatusClosed) {
			return apperrors.ErrInvalidTransition("posting", posting.Status, models.PostingStatusClosed)
		}

		now := s.now()
		posting.Status = models.PostingStatusClosed
		posting.ClosedAt = &now
		return s.postingRepo.Update(ctx, tx, posting)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Posting closed", "posting_id", posting.ID, "company_id", principal.AccountID)
	resp := dto.NewPostingResponse(posting)
	return &resp, nil
}

// ============================================
// ЧТЕНИЕ
// ============================================

// ListVisible - публичная лента. Фильтры только сужают выборку видимых вакансий.
func (s *PostingServiceImpl) ListVisible(ctx context.Context, db *gorm.DB, query *dto.PostingListQuery) (*dto.PostingListResponse, error) {
	if query == nil {
		query = &dto.PostingListQuery{}
	}
	page, pageSize := normalizePage(query.Page, query.PageSize)

	filter := repositories.PostingFilter{
		Query:          query.Query,
		Location:       query.Location,
		EmploymentType: models.EmploymentType(query.EmploymentType),
		Page:           page,
		PageSize:       pageSize,
	}
	postings, total, err := s.postingRepo.ListVisible(ctx, db, s.now(), filter)
	if err != nil {
		return nil, handleRepoError(err)
	}

	return &dto.PostingListResponse{
		Items:    dto.NewPostingResponses(postings),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetVisible - невидимая вакансия для публичного API не существует
func (s *PostingServiceImpl) GetVisible(ctx context.Context, db *gorm.DB, postingID string) (*dto.PostingResponse, error) {
	posting, err := s.postingRepo.FindByID(ctx, db, postingID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !posting.IsVisible(s.now()) {
		return nil, apperrors.ErrNotFound("posting", nil)
	}
	resp := dto.NewPostingResponse(posting)
	return &resp, nil
}

func (s *PostingServiceImpl) GetForManagement(ctx context.Context, db *gorm.DB, token, postingID string) (*dto.PostingResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleCompany, models.RoleAdmin))
	if err != nil {
		return nil, err
	}

	posting, err := s.postingRepo.FindByID(ctx, db, postingID)
	if err != nil {
		return nil, hideMissing(principal, handleRepoError(err))
	}
	if err := principal.Check(companyOwnerPolicy(posting.CompanyID)); err != nil {
		return nil, err
	}
	resp := dto.NewPostingResponse(posting)
	return &resp, nil
}

func (s *PostingServiceImpl) ListByCompany(ctx context.Context, db *gorm.DB, token, companyID string) ([]dto.PostingResponse, error) {
	if _, err := s.guard.Authorize(token, companyOwnerPolicy(companyID)); err != nil {
		return nil, err
	}

	postings, err := s.postingRepo.ListByCompany(ctx, db, companyID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewPostingResponses(postings), nil
}

// ListPending - очередь модерации
func (s *PostingServiceImpl) ListPending(ctx context.Context, db *gorm.DB, token string) ([]dto.PostingResponse, error) {
	if _, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleAdmin)); err != nil {
		return nil, err
	}

	postings, err := s.postingRepo.ListByStatus(ctx, db, models.PostingStatusPending)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewPostingResponses(postings), nil
}

// ============================================
// УВЕДОМЛЕНИЯ
// ============================================

// notifyDecision вызывается после коммита. Ошибки только логируются.
func (s *PostingServiceImpl) notifyDecision(ctx context.Context, db *gorm.DB, posting *models.JobPosting) {
	account, err := s.accountRepo.FindByID(ctx, db, posting.CompanyID)
	if err != nil {
		logger.CtxWarn(ctx, "Decision notice skipped: company account not loaded", "posting_id", posting.ID, "error", err)
		return
	}

	notice := email.PostingNotice{
		To:           account.Email,
		PostingTitle: posting.Title,
		Status:       posting.Status.String(),
	}
	if posting.RejectReason != nil {
		notice.Reason = *posting.RejectReason
	}
	if err := s.notifier.PostingDecided(ctx, notice); err != nil {
		logger.CtxWarn(ctx, "Decision notice not sent", "posting_id", posting.ID, "error", err)
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
