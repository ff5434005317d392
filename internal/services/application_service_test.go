package services

import (
	"sync"
	"testing"
	"time"

	"placement_backend/internal/models"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicationFixture struct {
	env     *testEnv
	student actor
	company actor
	posting *models.JobPosting
	cvID    string
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	env := newTestEnv(t)
	f := &applicationFixture{
		env:     env,
		student: env.newActor(models.RoleStudent, "ann"),
		company: env.newActor(models.RoleCompany, "acme"),
	}
	f.posting = env.addPosting(f.company.ID, models.PostingStatusApproved, 0)
	f.cvID = env.addCV(f.student)
	return f
}

func (f *applicationFixture) submit(t *testing.T) *dto.ApplicationResponse {
	t.Helper()
	resp, err := f.env.appSvc.Submit(f.env.ctx, nil, f.student.Token, f.student.ID, &dto.SubmitApplicationRequest{PostingID: f.posting.ID})
	require.NoError(t, err)
	return resp
}

func (f *applicationFixture) setStatus(t *testing.T, appID string, status models.ApplicationStatus) (*dto.ApplicationResponse, error) {
	t.Helper()
	return f.env.appSvc.UpdateStatus(f.env.ctx, nil, f.company.Token, appID, f.company.ID, &dto.UpdateApplicationStatusRequest{Status: status})
}

func TestApplication_SubmitSnapshotsCurrentCV(t *testing.T) {
	f := newApplicationFixture(t)

	resp := f.submit(t)
	assert.Equal(t, models.ApplicationStatusPending, resp.Status)
	assert.Equal(t, f.cvID, resp.CvID)
	assert.Equal(t, testNow, resp.StatusUpdatedAt)

	stored, err := f.env.apps.FindByID(f.env.ctx, nil, resp.ID)
	require.NoError(t, err)
	cv, err := f.env.cvs.FindByID(f.env.ctx, nil, f.cvID)
	require.NoError(t, err)
	assert.Equal(t, cv.Path, stored.CvPath)

	// новое резюме не меняет поданную заявку
	f.env.addCV(f.student)
	stored, err = f.env.apps.FindByID(f.env.ctx, nil, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, f.cvID, stored.CvArtifactID)
	assert.Equal(t, cv.Path, stored.CvPath)

	require.Len(t, f.env.notifier.submitted, 1)
	assert.Equal(t, "acme@example.com", f.env.notifier.submitted[0].To)
	assert.Equal(t, "ann Test", f.env.notifier.submitted[0].StudentName)
}

func TestApplication_SubmitTwiceIsDuplicate(t *testing.T) {
	f := newApplicationFixture(t)
	f.submit(t)

	_, err := f.env.appSvc.Submit(f.env.ctx, nil, f.student.Token, f.student.ID, &dto.SubmitApplicationRequest{PostingID: f.posting.ID})

	assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateApplication))
	assert.Equal(t, 1, f.env.apps.count())
}

func TestApplication_ConcurrentSubmitCreatesOne(t *testing.T) {
	f := newApplicationFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.env.appSvc.Submit(f.env.ctx, nil, f.student.Token, f.student.ID, &dto.SubmitApplicationRequest{PostingID: f.posting.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateApplication))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.env.apps.count())
}

// Scenario B: подача на неодобренную вакансию
func TestApplication_SubmitToPendingPosting(t *testing.T) {
	f := newApplicationFixture(t)
	pending := f.env.addPosting(f.company.ID, models.PostingStatusPending, 0)

	_, err := f.env.appSvc.Submit(f.env.ctx, nil, f.student.Token, f.student.ID, &dto.SubmitApplicationRequest{PostingID: pending.ID})

	assert.True(t, apperrors.IsCode(err, apperrors.CodePostingNotAcceptingApplications))
	assert.Zero(t, f.env.apps.count())
}

func TestApplication_SubmitToExpiredPosting(t *testing.T) {
	f := newApplicationFixture(t)
	past := testNow.Add(-time.Minute)
	f.posting.Deadline = &past
	require.NoError(t, f.env.postings.Update(f.env.ctx, nil, f.posting))

	_, err := f.env.appSvc.Submit(f.env.ctx, nil, f.student.Token, f.student.ID, &dto.SubmitApplicationRequest{PostingID: f.posting.ID})

	assert.True(t, apperrors.IsCode(err, apperrors.CodePostingNotAcceptingApplications))
}

func TestApplication_SubmitRules(t *testing.T) {
	f := newApplicationFixture(t)
	bob := f.env.newActor(models.RoleStudent, "bob")
	admin := f.env.newActor(models.RoleAdmin, "admin")
	req := &dto.SubmitApplicationRequest{PostingID: f.posting.ID}

	_, err := f.env.appSvc.Submit(f.env.ctx, nil, "", f.student.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthenticated))

	_, err = f.env.appSvc.Submit(f.env.ctx, nil, f.company.Token, f.company.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.env.appSvc.Submit(f.env.ctx, nil, admin.Token, f.student.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	// у bob нет резюме
	_, err = f.env.appSvc.Submit(f.env.ctx, nil, bob.Token, bob.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	// чужое резюме
	_, err = f.env.appSvc.Submit(f.env.ctx, nil, bob.Token, bob.ID, &dto.SubmitApplicationRequest{PostingID: f.posting.ID, CvID: f.cvID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.env.appSvc.Submit(f.env.ctx, nil, f.student.Token, f.student.ID, &dto.SubmitApplicationRequest{PostingID: "missing"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	assert.Zero(t, f.env.apps.count())
}

func TestApplication_StatusTransitions(t *testing.T) {
	cases := []struct {
		name  string
		path  []models.ApplicationStatus
		final models.ApplicationStatus
		fail  models.ApplicationStatus
	}{
		{"pending to interview to accepted", []models.ApplicationStatus{models.ApplicationStatusInterview, models.ApplicationStatusAccepted}, models.ApplicationStatusAccepted, models.ApplicationStatusInterview},
		{"pending to rejected", []models.ApplicationStatus{models.ApplicationStatusRejected}, models.ApplicationStatusRejected, models.ApplicationStatusInterview},
		{"interview to rejected", []models.ApplicationStatus{models.ApplicationStatusInterview, models.ApplicationStatusRejected}, models.ApplicationStatusRejected, models.ApplicationStatusAccepted},
		{"pending cannot jump to accepted", nil, models.ApplicationStatusPending, models.ApplicationStatusAccepted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newApplicationFixture(t)
			app := f.submit(t)

			for _, next := range tc.path {
				resp, err := f.setStatus(t, app.ID, next)
				require.NoError(t, err)
				assert.Equal(t, next, resp.Status)
			}

			_, err := f.setStatus(t, app.ID, tc.fail)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

			stored, err := f.env.apps.FindByID(f.env.ctx, nil, app.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.final, stored.Status)
		})
	}
}

func TestApplication_UpdateStatusBackwardsIsInvalidTransition(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)

	_, err := f.setStatus(t, app.ID, models.ApplicationStatusPending)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), "pending -> pending")
	_, err = f.setStatus(t, app.ID, models.ApplicationStatusWithdrawn)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), "company cannot withdraw")

	_, err = f.setStatus(t, app.ID, models.ApplicationStatusInterview)
	require.NoError(t, err)
	_, err = f.setStatus(t, app.ID, models.ApplicationStatusAccepted)
	require.NoError(t, err)

	_, err = f.setStatus(t, app.ID, models.ApplicationStatusPending)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), "accepted -> pending")

	stored, err := f.env.apps.FindByID(f.env.ctx, nil, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, stored.Status)
}

func TestApplication_UpdateStatusUnknownValue(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)

	_, err := f.setStatus(t, app.ID, "hired")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestApplication_UpdateStatusStampsNotesAndNotifies(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)
	notes := "Interview on Monday"

	resp, err := f.env.appSvc.UpdateStatus(f.env.ctx, nil, f.company.Token, app.ID, f.company.ID,
		&dto.UpdateApplicationStatusRequest{Status: models.ApplicationStatusInterview, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, resp.Notes)
	assert.Equal(t, testNow, resp.StatusUpdatedAt)

	require.Len(t, f.env.notifier.changed, 1)
	assert.Equal(t, "ann@example.com", f.env.notifier.changed[0].To)
	assert.Equal(t, "interview", f.env.notifier.changed[0].Status)
	assert.Equal(t, "acme", f.env.notifier.changed[0].CompanyName)
}

func TestApplication_UpdateStatusOnlyByPostingOwner(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)
	other := f.env.newActor(models.RoleCompany, "other")
	admin := f.env.newActor(models.RoleAdmin, "admin")
	req := &dto.UpdateApplicationStatusRequest{Status: models.ApplicationStatusInterview}

	_, err := f.env.appSvc.UpdateStatus(f.env.ctx, nil, other.Token, app.ID, other.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.env.appSvc.UpdateStatus(f.env.ctx, nil, admin.Token, app.ID, f.company.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.env.appSvc.UpdateStatus(f.env.ctx, nil, other.Token, "missing", other.ID, req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	stored, err := f.env.apps.FindByID(f.env.ctx, nil, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)
}

func TestApplication_WithdrawAndResubmit(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)

	resp, err := f.env.appSvc.Withdraw(f.env.ctx, nil, f.student.Token, app.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, resp.Status)

	_, err = f.env.appSvc.Withdraw(f.env.ctx, nil, f.student.Token, app.ID, f.student.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	// после отзыва можно подать снова
	again := f.submit(t)
	assert.NotEqual(t, app.ID, again.ID)
	assert.Equal(t, 2, f.env.apps.count())
}

func TestApplication_WithdrawRules(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)
	bob := f.env.newActor(models.RoleStudent, "bob")

	_, err := f.env.appSvc.Withdraw(f.env.ctx, nil, bob.Token, app.ID, bob.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.setStatus(t, app.ID, models.ApplicationStatusInterview)
	require.NoError(t, err)

	_, err = f.env.appSvc.Withdraw(f.env.ctx, nil, f.student.Token, app.ID, f.student.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestApplication_ReadAccess(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.submit(t)
	bob := f.env.newActor(models.RoleStudent, "bob")
	other := f.env.newActor(models.RoleCompany, "other")
	admin := f.env.newActor(models.RoleAdmin, "admin")

	for _, who := range []actor{f.student, f.company, admin} {
		resp, err := f.env.appSvc.Get(f.env.ctx, nil, who.Token, app.ID)
		require.NoError(t, err, who.Role)
		assert.Equal(t, f.posting.Title, resp.PostingTitle)
	}
	for _, who := range []actor{bob, other} {
		_, err := f.env.appSvc.Get(f.env.ctx, nil, who.Token, app.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), who.Role)
	}

	list, err := f.env.appSvc.ListByPosting(f.env.ctx, nil, f.company.Token, f.posting.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.env.appSvc.ListByPosting(f.env.ctx, nil, other.Token, f.posting.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	mine, err := f.env.appSvc.ListByStudent(f.env.ctx, nil, f.student.Token, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.env.appSvc.ListByStudent(f.env.ctx, nil, bob.Token, f.student.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}
