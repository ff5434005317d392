package services

import (
	"context"
	"errors"
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

// ApplicationService - жизненный цикл заявки:
// PENDING -> INTERVIEW -> ACCEPTED | REJECTED, PENDING -> REJECTED (компания),
// PENDING -> WITHDRAWN (студент)
type ApplicationService interface {
	// Submit: пустой CvID - берется текущее резюме студента
	Submit(ctx context.Context, db *gorm.DB, token, studentID string, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, token, applicationID, companyID string, req *dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error)
	Withdraw(ctx context.Context, db *gorm.DB, token, applicationID, studentID string) (*dto.ApplicationResponse, error)

	Get(ctx context.Context, db *gorm.DB, token, applicationID string) (*dto.ApplicationResponse, error)
	ListByStudent(ctx context.Context, db *gorm.DB, token, studentID string) ([]dto.ApplicationResponse, error)
	ListByPosting(ctx context.Context, db *gorm.DB, token, postingID string) ([]dto.ApplicationResponse, error)
}

type ApplicationServiceImpl struct {
	appRepo     repositories.ApplicationRepository
	postingRepo repositories.PostingRepository
	cvRepo      repositories.CvRepository
	profileRepo repositories.ProfileRepository
	accountRepo repositories.AccountRepository
	tx          repositories.Transactor
	guard       *auth.Guard
	notifier    email.Notifier
	now         Clock
}

func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	postingRepo repositories.PostingRepository,
	cvRepo repositories.CvRepository,
	profileRepo repositories.ProfileRepository,
	accountRepo repositories.AccountRepository,
	tx repositories.Transactor,
	guard *auth.Guard,
	notifier email.Notifier,
	now Clock,
) ApplicationService {
	if now == nil {
		now = systemClock
	}
	if notifier == nil {
		notifier = email.NoopNotifier{}
	}
	return &ApplicationServiceImpl{
		appRepo:     appRepo,
		postingRepo: postingRepo,
		cvRepo:      cvRepo,
		profileRepo: profileRepo,
		accountRepo: accountRepo,
		tx:          tx,
		guard:       guard,
		notifier:    notifier,
		now:         now,
	}
}

// ============================================
// ПОДАЧА
// ============================================

// Submit блокирует строку вакансии, поэтому проверка статуса, проверка
// дубликата и вставка выполняются атомарно. Уникальный индекс по активным
// заявкам - вторая линия защиты.
func (s *ApplicationServiceImpl) Submit(ctx context.Context, db *gorm.DB, token, studentID string, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleStudent).OwnedBy(studentID))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PostingID) == "" {
		return nil, apperrors.ValidationError(map[string]string{"posting_id": "posting_id is required"})
	}

	var app *models.Application
	var posting *models.JobPosting
	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		posting, err = s.postingRepo.FindByIDForUpdate(ctx, tx, req.PostingID)
		if err != nil {
			return err
		}
		if !posting.AcceptsApplications(s.now()) {
			return apperrors.ErrPostingNotAcceptingApplications()
		}

		if _, err := s.appRepo.FindActive(ctx, tx, principal.AccountID, posting.ID); err == nil {
			return apperrors.ErrDuplicateApplication(nil)
		} else if !errors.Is(err, repositories.ErrApplicationNotFound) {
			return err
		}

		cv, err := s.resolveCv(ctx, tx, principal, req.CvID)
		if err != nil {
			return err
		}

		now := s.now()
		app = &models.Application{
			StudentID:       principal.AccountID,
			PostingID:       posting.ID,
			CvArtifactID:    cv.ID,
			CvPath:          cv.Path,
			CoverLetter:     strings.TrimSpace(req.CoverLetter),
			Status:          models.ApplicationStatusPending,
			StatusUpdatedAt: now,
		}
		return s.appRepo.Create(ctx, tx, app)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Application submitted", "application_id", app.ID, "posting_id", app.PostingID, "student_id", app.StudentID)
	s.notifySubmitted(ctx, db, app, posting)

	app.Posting = posting
	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// resolveCv: резюме должно принадлежать студенту. Чужое и несуществующее
// резюме неразличимы.
func (s *ApplicationServiceImpl) resolveCv(ctx context.Context, tx *gorm.DB, principal *auth.Principal, cvID string) (*models.CvArtifact, error) {
	cvID = strings.TrimSpace(cvID)
	if cvID == "" {
		profile, err := s.profileRepo.FindStudentByUserID(ctx, tx, principal.AccountID)
		if err != nil {
			return nil, err
		}
		if profile.CurrentCvID == nil || *profile.CurrentCvID == "" {
			return nil, apperrors.ValidationError(map[string]string{"cv_id": "upload a CV before applying"})
		}
		cvID = *profile.CurrentCvID
	}

	cv, err := s.cvRepo.FindByID(ctx, tx, cvID)
	if err != nil {
		if errors.Is(err, repositories.ErrCvNotFound) {
			return nil, apperrors.NewForbiddenError("cv belongs to another account")
		}
		return nil, err
	}
	if err := principal.Check(auth.RequireRoles(models.RoleStudent).OwnedBy(cv.StudentID)); err != nil {
		return nil, err
	}
	return cv, nil
}

// ============================================
// ИЗМЕНЕНИЕ СТАТУСА
// ============================================

// UpdateStatus - только компания, которой принадлежит вакансия.
// Строка заявки блокируется до конца транзакции.
func (s *ApplicationServiceImpl) UpdateStatus(ctx context.Context, db *gorm.DB, token, applicationID, companyID string, req *dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleCompany).OwnedBy(companyID))
	if err != nil {
		return nil, err
	}
	// PENDING и WITHDRAWN отсекает граф переходов, здесь только неизвестные значения
	if !req.Status.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "unknown application status"})
	}

	var app *models.Application
	var posting *models.JobPosting
	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		app, err = s.appRepo.FindByIDForUpdate(ctx, tx, applicationID)
		if err != nil {
			return hideMissing(principal, handleRepoError(err))
		}
		posting, err = s.postingRepo.FindByID(ctx, tx, app.PostingID)
		if err != nil {
			return hideMissing(principal, handleRepoError(err))
		}
		if err := principal.Check(auth.RequireRoles(models.RoleCompany).OwnedBy(posting.CompanyID)); err != nil {
			return err
		}

		if !models.ApplicationTransitionAllowed(app.Status, req.Status) {
			return apperrors.ErrInvalidTransition("application", app.Status, req.Status)
		}

		now := s.now()
		if err := s.appRepo.UpdateStatus(ctx, tx, app.ID, req.Status, req.Notes, now); err != nil {
			return err
		}
		app.Status = req.Status
		app.StatusUpdatedAt = now
		if req.Notes != nil {
			app.Notes = *req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Application status changed", "application_id", app.ID, "status", app.Status, "company_id", principal.AccountID)
	s.notifyStatusChanged(ctx, db, app, posting)

	app.Posting = posting
	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// Withdraw - студент отзывает свою заявку, пока она PENDING
func (s *ApplicationServiceImpl) Withdraw(ctx context.Context, db *gorm.DB, token, applicationID, studentID string) (*dto.ApplicationResponse, error) {
	principal, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleStudent).OwnedBy(studentID))
	if err != nil {
		return nil, err
	}

	var app *models.Application
	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		app, err = s.appRepo.FindByIDForUpdate(ctx, tx, applicationID)
		if err != nil {
			return hideMissing(principal, handleRepoError(err))
		}
		if err := principal.Check(auth.RequireRoles(models.RoleStudent).OwnedBy(app.StudentID)); err != nil {
			return err
		}
		if !models.CanWithdraw(app.Status) {
			return apperrors.ErrInvalidTransition("application", app.Status, models.ApplicationStatusWithdrawn)
		}

		now := s.now()
		if err := s.appRepo.UpdateStatus(ctx, tx, app.ID, models.ApplicationStatusWithdrawn, nil, now); err != nil {
			return err
		}
		app.Status = models.ApplicationStatusWithdrawn
		app.StatusUpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "Application withdrawn", "application_id", app.ID, "student_id", principal.AccountID)
	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// ============================================
// ЧТЕНИЕ
// ============================================

// Get: студент-автор, компания-владелец вакансии или admin
func (s *ApplicationServiceImpl) Get(ctx context.Context, db *gorm.DB, token, applicationID string) (*dto.ApplicationResponse, error) {
	principal, err := s.guard.Authenticate(token)
	if err != nil {
		return nil, err
	}

	app, err := s.appRepo.FindByID(ctx, db, applicationID)
	if err != nil {
		return nil, hideMissing(principal, handleRepoError(err))
	}

	switch principal.Role {
	case models.RoleAdmin:
	case models.RoleStudent:
		if err := principal.Check(auth.RequireRoles(models.RoleStudent).OwnedBy(app.StudentID)); err != nil {
			return nil, err
		}
	case models.RoleCompany:
		ownerID := ""
		if app.Posting != nil {
			ownerID = app.Posting.CompanyID
		}
		if err := principal.Check(auth.RequireRoles(models.RoleCompany).OwnedBy(ownerID)); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewForbiddenError("role is not allowed to perform this operation")
	}

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

func (s *ApplicationServiceImpl) ListByStudent(ctx context.Context, db *gorm.DB, token, studentID string) ([]dto.ApplicationResponse, error) {
	if _, err := s.guard.Authorize(token, studentOwnerPolicy(studentID)); err != nil {
		return nil, err
	}

	apps, err := s.appRepo.ListByStudent(ctx, db, studentID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewApplicationResponses(apps), nil
}

// ListByPosting - заявки видит только компания-владелец вакансии или admin
func (s *ApplicationServiceImpl) ListByPosting(ctx context.Context, db *gorm.DB, token, postingID string) ([]dto.ApplicationResponse, error) {
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

	apps, err := s.appRepo.ListByPosting(ctx, db, postingID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	for i := range apps {
		apps[i].Posting = posting
	}
	return dto.NewApplicationResponses(apps), nil
}

// ============================================
// УВЕДОМЛЕНИЯ
// ============================================

func (s *ApplicationServiceImpl) notifySubmitted(ctx context.Context, db *gorm.DB, app *models.Application, posting *models.JobPosting) {
	company, err := s.accountRepo.FindByID(ctx, db, posting.CompanyID)
	if err != nil {
		logger.CtxWarn(ctx, "Submission notice skipped: company account not loaded", "application_id", app.ID, "error", err)
		return
	}

	notice := email.ApplicationNotice{
		To:           company.Email,
		StudentName:  s.studentName(ctx, db, app.StudentID),
		PostingTitle: posting.Title,
		Status:       app.Status.String(),
	}
	if err := s.notifier.ApplicationSubmitted(ctx, notice); err != nil {
		logger.CtxWarn(ctx, "Submission notice not sent", "application_id", app.ID, "error", err)
	}
}

func (s *ApplicationServiceImpl) notifyStatusChanged(ctx context.Context, db *gorm.DB, app *models.Application, posting *models.JobPosting) {
	student, err := s.accountRepo.FindByID(ctx, db, app.StudentID)
	if err != nil {
		logger.CtxWarn(ctx, "Status notice skipped: student account not loaded", "application_id", app.ID, "error", err)
		return
	}

	notice := email.ApplicationNotice{
		To:           student.Email,
		StudentName:  s.studentName(ctx, db, app.StudentID),
		PostingTitle: posting.Title,
		Status:       app.Status.String(),
		Notes:        app.Notes,
	}
	if posting.Company != nil {
		notice.CompanyName = posting.Company.CompanyName
	}
	if err := s.notifier.ApplicationStatusChanged(ctx, notice); err != nil {
		logger.CtxWarn(ctx, "Status notice not sent", "application_id", app.ID, "error", err)
	}
}

func (s *ApplicationServiceImpl) studentName(ctx context.Context, db *gorm.DB, studentID string) string {
	profile, err := s.profileRepo.FindStudentByUserID(ctx, db, studentID)
	if err != nil {
		return ""
	}
	return profile.FullName()
}
