package services

import (
	"bytes"
	"context"
	"strings"

	"placement_backend/internal/auth"
	"placement_backend/internal/imageprocessor"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/internal/utils"
	"placement_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ProfileService - профили компаний и студентов, логотипы и резюме
type ProfileService interface {
	GetCompanyProfile(ctx context.Context, db *gorm.DB, token, userID string) (*dto.CompanyProfileResponse, error)
	UpdateCompanyProfile(ctx context.Context, db *gorm.DB, token, userID string, req *dto.UpdateCompanyProfileRequest) (*dto.CompanyProfileResponse, error)
	UploadLogo(ctx context.Context, db *gorm.DB, token, userID string, file *dto.FileUpload) (*dto.CompanyProfileResponse, error)

	GetStudentProfile(ctx context.Context, db *gorm.DB, token, userID string) (*dto.StudentProfileResponse, error)
	UpdateStudentProfile(ctx context.Context, db *gorm.DB, token, userID string, req *dto.UpdateStudentProfileRequest) (*dto.StudentProfileResponse, error)
	UploadCV(ctx context.Context, db *gorm.DB, token, studentID string, file *dto.FileUpload) (*dto.CvResponse, error)
	ListCVs(ctx context.Context, db *gorm.DB, token, studentID string) ([]*dto.CvResponse, error)
	DownloadCV(ctx context.Context, db *gorm.DB, token, cvID string) (*dto.CvDownload, error)
}

type ProfileServiceImpl struct {
	profileRepo repositories.ProfileRepository
	cvRepo      repositories.CvRepository
	appRepo     repositories.ApplicationRepository
	tx          repositories.Transactor
	uploads     UploadService
	images      *imageprocessor.Processor
	thumbSize   int
	guard       *auth.Guard
	now         Clock
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	cvRepo repositories.CvRepository,
	appRepo repositories.ApplicationRepository,
	tx repositories.Transactor,
	uploads UploadService,
	images *imageprocessor.Processor,
	thumbSize int,
	guard *auth.Guard,
	now Clock,
) ProfileService {
	if now == nil {
		now = systemClock
	}
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		cvRepo:      cvRepo,
		appRepo:     appRepo,
		tx:          tx,
		uploads:     uploads,
		images:      images,
		thumbSize:   thumbSize,
		guard:       guard,
		now:         now,
	}
}

// ============================================
// КОМПАНИЯ
// ============================================

func companyOwnerPolicy(userID string) auth.Policy {
	return auth.RequireRoles(models.RoleCompany, models.RoleAdmin).OwnedBy(userID).WithAdminOverride()
}

func (s *ProfileServiceImpl) GetCompanyProfile(ctx context.Context, db *gorm.DB, token, userID string) (*dto.CompanyProfileResponse, error) {
	if _, err := s.guard.Authorize(token, companyOwnerPolicy(userID)); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindCompanyByUserID(ctx, db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return s.companyResponse(ctx, profile), nil
}

func (s *ProfileServiceImpl) UpdateCompanyProfile(ctx context.Context, db *gorm.DB, token, userID string, req *dto.UpdateCompanyProfileRequest) (*dto.CompanyProfileResponse, error) {
	if _, err := s.guard.Authorize(token, companyOwnerPolicy(userID)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, apperrors.ValidationError(map[string]string{"company_name": "company_name is required"})
	}

	var profile *models.CompanyProfile
	err := s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		profile, err = s.profileRepo.FindCompanyByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		profile.CompanyName = strings.TrimSpace(req.CompanyName)
		profile.Industry = strings.TrimSpace(req.Industry)
		profile.Description = req.Description
		profile.Website = strings.TrimSpace(req.Website)
		profile.City = strings.TrimSpace(req.City)
		profile.ContactEmail = strings.TrimSpace(req.ContactEmail)
		return s.profileRepo.UpdateCompanyProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}
	return s.companyResponse(ctx, profile), nil
}

// UploadLogo заменяет логотип. Новые объекты пишутся до обновления профиля,
// старые удаляются только после успешного обновления.
func (s *ProfileServiceImpl) UploadLogo(ctx context.Context, db *gorm.DB, token, userID string, file *dto.FileUpload) (*dto.CompanyProfileResponse, error) {
	if _, err := s.guard.Authorize(token, companyOwnerPolicy(userID)); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindCompanyByUserID(ctx, db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	constraints := s.uploads.LogoConstraints(userID)
	logo, err := s.uploads.Ingest(ctx, file.Data, file.DeclaredName, file.DeclaredMime, constraints)
	if err != nil {
		return nil, err
	}
	written := []string{logo.Path}

	// Миниатюра не обязательна: при ошибке логотип сохраняется без нее
	var thumbPath *string
	if thumb := s.makeThumbnail(ctx, file, constraints); thumb != nil {
		thumbPath = &thumb.Path
		written = append(written, thumb.Path)
	}

	if err := s.profileRepo.SetCompanyLogo(ctx, db, userID, &logo.Path, thumbPath); err != nil {
		s.cleanup(ctx, written...)
		return nil, handleRepoError(err)
	}

	// На старые объекты больше нет ссылок
	var stale []string
	if profile.LogoPath != nil {
		stale = append(stale, *profile.LogoPath)
	}
	if profile.LogoThumbnailPath != nil {
		stale = append(stale, *profile.LogoThumbnailPath)
	}
	s.cleanup(ctx, stale...)

	profile.LogoPath = &logo.Path
	profile.LogoThumbnailPath = thumbPath
	logger.CtxInfo(ctx, "Company logo replaced", "company_id", userID, "path", logo.Path)
	return s.companyResponse(ctx, profile), nil
}

func (s *ProfileServiceImpl) makeThumbnail(ctx context.Context, file *dto.FileUpload, c Constraints) *dto.FileRef {
	if s.images == nil || s.thumbSize <= 0 {
		return nil
	}

	result, err := s.images.Thumbnail(bytes.NewReader(file.Data), s.thumbSize)
	if err != nil {
		logger.CtxWarn(ctx, "Logo thumbnail skipped", "error", err)
		return nil
	}

	base, _ := utils.SplitFileName(file.DeclaredName)
	c.MaxBytes = 0
	ref, err := s.uploads.Ingest(ctx, result.Data, "thumb-"+base+result.Extension(), result.ContentType, c)
	if err != nil {
		logger.CtxWarn(ctx, "Logo thumbnail not stored", "error", err)
		return nil
	}
	return ref
}

func (s *ProfileServiceImpl) companyResponse(ctx context.Context, p *models.CompanyProfile) *dto.CompanyProfileResponse {
	resp := &dto.CompanyProfileResponse{
		UserID:       p.UserID,
		CompanyName:  p.CompanyName,
		Industry:     p.Industry,
		Description:  p.Description,
		Website:      p.Website,
		City:         p.City,
		ContactEmail: p.ContactEmail,
	}
	if p.LogoPath != nil {
		resp.LogoURL, _ = s.uploads.URL(ctx, *p.LogoPath)
	}
	if p.LogoThumbnailPath != nil {
		resp.ThumbnailURL, _ = s.uploads.URL(ctx, *p.LogoThumbnailPath)
	}
	return resp
}

// ============================================
// СТУДЕНТ
// ============================================

func studentOwnerPolicy(userID string) auth.Policy {
	return auth.RequireRoles(models.RoleStudent, models.RoleAdmin).OwnedBy(userID).WithAdminOverride()
}

func (s *ProfileServiceImpl) GetStudentProfile(ctx context.Context, db *gorm.DB, token, userID string) (*dto.StudentProfileResponse, error) {
	if _, err := s.guard.Authorize(token, studentOwnerPolicy(userID)); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindStudentByUserID(ctx, db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	resp := dto.NewStudentProfileResponse(profile)
	return &resp, nil
}

func (s *ProfileServiceImpl) UpdateStudentProfile(ctx context.Context, db *gorm.DB, token, userID string, req *dto.UpdateStudentProfileRequest) (*dto.StudentProfileResponse, error) {
	if _, err := s.guard.Authorize(token, studentOwnerPolicy(userID)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, apperrors.ValidationError(map[string]string{"name": "first_name and last_name are required"})
	}

	var profile *models.StudentProfile
	err := s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		var err error
		profile, err = s.profileRepo.FindStudentByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		profile.FirstName = strings.TrimSpace(req.FirstName)
		profile.LastName = strings.TrimSpace(req.LastName)
		profile.School = strings.TrimSpace(req.School)
		profile.Program = strings.TrimSpace(req.Program)
		profile.GraduationYear = req.GraduationYear
		profile.Phone = strings.TrimSpace(req.Phone)
		if err := profile.SetSkills(normalizeList(req.Skills)); err != nil {
			return err
		}
		return s.profileRepo.UpdateStudentProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}
	resp := dto.NewStudentProfileResponse(profile)
	return &resp, nil
}

// UploadCV - только сам студент. Объект пишется до записи в БД;
// если транзакция не прошла, объект удаляется.
func (s *ProfileServiceImpl) UploadCV(ctx context.Context, db *gorm.DB, token, studentID string, file *dto.FileUpload) (*dto.CvResponse, error) {
	if _, err := s.guard.Authorize(token, auth.RequireRoles(models.RoleStudent).OwnedBy(studentID)); err != nil {
		return nil, err
	}

	ref, err := s.uploads.Ingest(ctx, file.Data, file.DeclaredName, file.DeclaredMime, s.uploads.CVConstraints(studentID))
	if err != nil {
		return nil, err
	}

	cv := &models.CvArtifact{
		StudentID:    studentID,
		OriginalName: file.DeclaredName,
		StoredName:   ref.StoredName,
		Path:         ref.Path,
		MimeType:     ref.MimeType,
		Size:         ref.Size,
		UploadedAt:   s.now(),
	}

	err = s.tx.WithinTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := s.cvRepo.Create(ctx, tx, cv); err != nil {
			return err
		}
		return s.profileRepo.SetCurrentCV(ctx, tx, studentID, cv.ID)
	})
	if err != nil {
		s.cleanup(ctx, ref.Path)
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "CV uploaded", "student_id", studentID, "cv_id", cv.ID, "size", cv.Size)
	return dto.NewCvResponse(cv), nil
}

func (s *ProfileServiceImpl) ListCVs(ctx context.Context, db *gorm.DB, token, studentID string) ([]*dto.CvResponse, error) {
	if _, err := s.guard.Authorize(token, studentOwnerPolicy(studentID)); err != nil {
		return nil, err
	}

	cvs, err := s.cvRepo.ListByStudent(ctx, db, studentID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	out := make([]*dto.CvResponse, 0, len(cvs))
	for i := range cvs {
		out = append(out, dto.NewCvResponse(&cvs[i]))
	}
	return out, nil
}

// DownloadCV: владелец, admin или компания, получившая заявку с этим резюме
func (s *ProfileServiceImpl) DownloadCV(ctx context.Context, db *gorm.DB, token, cvID string) (*dto.CvDownload, error) {
	principal, err := s.guard.Authenticate(token)
	if err != nil {
		return nil, err
	}

	cv, err := s.cvRepo.FindByID(ctx, db, cvID)
	if err != nil {
		return nil, hideMissing(principal, handleRepoError(err))
	}

	if err := s.checkCvAccess(ctx, db, principal, cv); err != nil {
		return nil, err
	}

	data, err := s.uploads.Read(ctx, cv.Path)
	if err != nil {
		return nil, err
	}
	return &dto.CvDownload{FileName: cv.OriginalName, MimeType: cv.MimeType, Data: data}, nil
}

func (s *ProfileServiceImpl) checkCvAccess(ctx context.Context, db *gorm.DB, principal *auth.Principal, cv *models.CvArtifact) error {
	switch principal.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent:
		return principal.Check(auth.RequireRoles(models.RoleStudent).OwnedBy(cv.StudentID))
	case models.RoleCompany:
		received, err := s.appRepo.CompanyReceivedCv(ctx, db, principal.AccountID, cv.ID)
		if err != nil {
			return handleRepoError(err)
		}
		if received {
			return nil
		}
	}
	return apperrors.NewForbiddenError("no access to this cv")
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ
// ============================================

// cleanup удаляет объекты, на которые больше нет ссылок. Ошибки только логируются.
func (s *ProfileServiceImpl) cleanup(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if err := s.uploads.Delete(ctx, p); err != nil {
			logger.CtxWithError(ctx, "Failed to delete unreferenced file", err, "path", p)
		}
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
