package services

import (
	"errors"
	"strings"
	"testing"

	"placement_backend/internal/imageprocessor"
	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_UploadCVSetsCurrent(t *testing.T) {
	env := newTestEnv(t)
	student := env.newActor(models.RoleStudent, "ann")

	first := env.addCV(student)
	second := env.addCV(student)
	assert.NotEqual(t, first, second)

	profile, err := env.profileSvc.GetStudentProfile(env.ctx, nil, student.Token, student.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.CurrentCv)
	assert.Equal(t, second, profile.CurrentCv.ID)

	cvs, err := env.profileSvc.ListCVs(env.ctx, nil, student.Token, student.ID)
	require.NoError(t, err)
	assert.Len(t, cvs, 2)
	assert.Len(t, storedFiles(t, env.baseDir), 2)
}

func TestProfile_UploadCVTooLargeCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	student := env.newActor(models.RoleStudent, "ann")

	_, err := env.profileSvc.UploadCV(env.ctx, nil, student.Token, student.ID, pdfUpload("big.pdf", 6*1024*1024))

	assert.True(t, apperrors.IsCode(err, apperrors.CodeTooLarge))
	assert.Empty(t, storedFiles(t, env.baseDir))
	cvs, _ := env.cvs.ListByStudent(env.ctx, nil, student.ID)
	assert.Empty(t, cvs)
}

func TestProfile_UploadCVRemovesObjectWhenRecordFails(t *testing.T) {
	env := newTestEnv(t)
	student := env.newActor(models.RoleStudent, "ann")
	env.cvs.createErr = errors.New("db down")

	_, err := env.profileSvc.UploadCV(env.ctx, nil, student.Token, student.ID, pdfUpload("cv.pdf", 100))

	assert.True(t, apperrors.IsCode(err, apperrors.CodeInternalError))
	assert.Empty(t, storedFiles(t, env.baseDir))
}

func TestProfile_UploadCVOnlyByOwner(t *testing.T) {
	env := newTestEnv(t)
	ann := env.newActor(models.RoleStudent, "ann")
	bob := env.newActor(models.RoleStudent, "bob")
	admin := env.newActor(models.RoleAdmin, "admin")

	_, err := env.profileSvc.UploadCV(env.ctx, nil, bob.Token, ann.ID, pdfUpload("cv.pdf", 100))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	// admin не загружает резюме за студента
	_, err = env.profileSvc.UploadCV(env.ctx, nil, admin.Token, ann.ID, pdfUpload("cv.pdf", 100))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	assert.Empty(t, storedFiles(t, env.baseDir))
}

func TestProfile_DownloadCVAccess(t *testing.T) {
	env := newTestEnv(t)
	ann := env.newActor(models.RoleStudent, "ann")
	bob := env.newActor(models.RoleStudent, "bob")
	acme := env.newActor(models.RoleCompany, "acme")
	other := env.newActor(models.RoleCompany, "other")
	admin := env.newActor(models.RoleAdmin, "admin")

	cvID := env.addCV(ann)
	posting := env.addPosting(acme.ID, models.PostingStatusApproved, 0)
	_, err := env.appSvc.Submit(env.ctx, nil, ann.Token, ann.ID, &dto.SubmitApplicationRequest{PostingID: posting.ID})
	require.NoError(t, err)

	for _, who := range []actor{ann, acme, admin} {
		dl, err := env.profileSvc.DownloadCV(env.ctx, nil, who.Token, cvID)
		require.NoError(t, err, who.Role)
		assert.Equal(t, "resume.pdf", dl.FileName)
		assert.Equal(t, "application/pdf", dl.MimeType)
		assert.Len(t, dl.Data, 1024)
	}

	for _, who := range []actor{bob, other} {
		_, err := env.profileSvc.DownloadCV(env.ctx, nil, who.Token, cvID)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), who.Role)
	}

	_, err = env.profileSvc.DownloadCV(env.ctx, nil, bob.Token, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	_, err = env.profileSvc.DownloadCV(env.ctx, nil, admin.Token, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestProfile_UpdateCompanyProfile(t *testing.T) {
	env := newTestEnv(t)
	acme := env.newActor(models.RoleCompany, "acme")
	other := env.newActor(models.RoleCompany, "other")
	admin := env.newActor(models.RoleAdmin, "admin")
	req := &dto.UpdateCompanyProfileRequest{CompanyName: "Acme Corp", Industry: "Fintech", City: "Almaty"}

	_, err := env.profileSvc.UpdateCompanyProfile(env.ctx, nil, other.Token, acme.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	resp, err := env.profileSvc.UpdateCompanyProfile(env.ctx, nil, acme.Token, acme.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", resp.CompanyName)

	resp, err = env.profileSvc.GetCompanyProfile(env.ctx, nil, admin.Token, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fintech", resp.Industry)
}

func TestProfile_UpdateStudentSkills(t *testing.T) {
	env := newTestEnv(t)
	ann := env.newActor(models.RoleStudent, "ann")

	resp, err := env.profileSvc.UpdateStudentProfile(env.ctx, nil, ann.Token, ann.ID, &dto.UpdateStudentProfileRequest{
		FirstName: "Ann", LastName: "Lee", Skills: []string{"Go", " go ", "SQL", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, resp.Skills)
}

func TestProfile_UploadLogoReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	acme := env.newActor(models.RoleCompany, "acme")
	env.profileSvc = NewProfileService(env.profiles, env.cvs, env.apps, env.tx, env.uploads,
		imageprocessor.NewProcessor(85), 16, env.authGuard, fixedNow)

	file := &dto.FileUpload{Data: pngBytes(t, 64, 32), DeclaredName: "logo.png", DeclaredMime: "image/png"}

	first, err := env.profileSvc.UploadLogo(env.ctx, nil, acme.Token, acme.ID, file)
	require.NoError(t, err)
	assert.NotEmpty(t, first.LogoURL)
	assert.NotEmpty(t, first.ThumbnailURL)
	assert.Len(t, storedFiles(t, env.baseDir), 2)

	second, err := env.profileSvc.UploadLogo(env.ctx, nil, acme.Token, acme.ID, file)
	require.NoError(t, err)
	assert.NotEqual(t, first.LogoURL, second.LogoURL)

	files := storedFiles(t, env.baseDir)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.True(t, strings.HasPrefix(f, "logos/"+acme.ID+"/"))
		assert.True(t, strings.HasSuffix(second.LogoURL, f) || strings.HasSuffix(second.ThumbnailURL, f))
	}
}

func TestProfile_UploadLogoRejectsDocuments(t *testing.T) {
	env := newTestEnv(t)
	acme := env.newActor(models.RoleCompany, "acme")

	_, err := env.profileSvc.UploadLogo(env.ctx, nil, acme.Token, acme.ID, pdfUpload("logo.pdf", 100))

	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnsupportedType))
}
