package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"placement_backend/internal/auth"
	"placement_backend/internal/config"
	"placement_backend/internal/email"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================
// In-memory репозитории. Сервисы передают им db, в тестах это nil.
// ============================================

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// tickingClock сдвигается на миллисекунду при каждом вызове,
// чтобы имена файлов в одном тесте не совпадали
func tickingClock() Clock {
	var mu sync.Mutex
	current := testNow
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Millisecond)
		return current
	}
}

// fakeTransactor выполняет единицы работы по одной, как строковая блокировка в БД
type fakeTransactor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTransactor) WithinTransaction(_ context.Context, _ *gorm.DB, fn func(tx *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(nil)
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*models.Account{}}
}

func (r *fakeAccountRepo) Create(_ context.Context, _ *gorm.DB, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.Email = repositories.NormalizeEmail(a.Email)
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return repositories.ErrAccountAlreadyExists
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, _ *gorm.DB, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, _ *gorm.DB, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = repositories.NormalizeEmail(email)
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (r *fakeAccountRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id string, status models.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAccountRepo) ExistsWithRole(_ context.Context, _ *gorm.DB, role models.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type fakeProfileRepo struct {
	mu        sync.Mutex
	companies map[string]*models.CompanyProfile
	students  map[string]*models.StudentProfile
	cvs       *fakeCvRepo
}

func newFakeProfileRepo(cvs *fakeCvRepo) *fakeProfileRepo {
	return &fakeProfileRepo{
		companies: map[string]*models.CompanyProfile{},
		students:  map[string]*models.StudentProfile{},
		cvs:       cvs,
	}
}

func (r *fakeProfileRepo) CreateCompanyProfile(_ context.Context, _ *gorm.DB, p *models.CompanyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[p.UserID]; ok {
		return repositories.ErrProfileAlreadyExists
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.companies[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) FindCompanyByUserID(_ context.Context, _ *gorm.DB, userID string) (*models.CompanyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.companies[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateCompanyProfile(_ context.Context, _ *gorm.DB, p *models.CompanyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.companies[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) SetCompanyLogo(_ context.Context, _ *gorm.DB, userID string, logoPath, thumbnailPath *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.companies[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.LogoPath = logoPath
	p.LogoThumbnailPath = thumbnailPath
	return nil
}

func (r *fakeProfileRepo) CreateStudentProfile(_ context.Context, _ *gorm.DB, p *models.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[p.UserID]; ok {
		return repositories.ErrProfileAlreadyExists
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.students[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) FindStudentByUserID(ctx context.Context, db *gorm.DB, userID string) (*models.StudentProfile, error) {
	r.mu.Lock()
	p, ok := r.students[userID]
	var cp models.StudentProfile
	if ok {
		cp = *p
	}
	r.mu.Unlock()
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	if cp.CurrentCvID != nil && r.cvs != nil {
		if cv, err := r.cvs.FindByID(ctx, db, *cp.CurrentCvID); err == nil {
			cp.CurrentCv = cv
		}
	}
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateStudentProfile(_ context.Context, _ *gorm.DB, p *models.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.CurrentCv = nil
	r.students[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) SetCurrentCV(_ context.Context, _ *gorm.DB, userID, cvID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.students[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	id := cvID
	p.CurrentCvID = &id
	return nil
}

type fakeCvRepo struct {
	mu        sync.Mutex
	cvs       map[string]*models.CvArtifact
	createErr error
}

func newFakeCvRepo() *fakeCvRepo {
	return &fakeCvRepo{cvs: map[string]*models.CvArtifact{}}
}

func (r *fakeCvRepo) Create(_ context.Context, _ *gorm.DB, cv *models.CvArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if cv.ID == "" {
		cv.ID = uuid.NewString()
	}
	cp := *cv
	r.cvs[cv.ID] = &cp
	return nil
}

func (r *fakeCvRepo) FindByID(_ context.Context, _ *gorm.DB, id string) (*models.CvArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.cvs[id]
	if !ok {
		return nil, repositories.ErrCvNotFound
	}
	cp := *cv
	return &cp, nil
}

func (r *fakeCvRepo) ListByStudent(_ context.Context, _ *gorm.DB, studentID string) ([]models.CvArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CvArtifact
	for _, cv := range r.cvs {
		if cv.StudentID == studentID {
			out = append(out, *cv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

type fakePostingRepo struct {
	mu       sync.Mutex
	postings map[string]*models.JobPosting
	profiles *fakeProfileRepo
}

func newFakePostingRepo(profiles *fakeProfileRepo) *fakePostingRepo {
	return &fakePostingRepo{postings: map[string]*models.JobPosting{}, profiles: profiles}
}

func (r *fakePostingRepo) withCompany(p models.JobPosting) *models.JobPosting {
	if r.profiles != nil {
		if c, err := r.profiles.FindCompanyByUserID(context.Background(), nil, p.CompanyID); err == nil {
			p.Company = c
		}
	}
	return &p
}

func (r *fakePostingRepo) Create(_ context.Context, _ *gorm.DB, p *models.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = testNow
	}
	cp := *p
	cp.Company = nil
	r.postings[p.ID] = &cp
	return nil
}

func (r *fakePostingRepo) FindByID(_ context.Context, _ *gorm.DB, id string) (*models.JobPosting, error) {
	r.mu.Lock()
	p, ok := r.postings[id]
	var cp models.JobPosting
	if ok {
		cp = *p
	}
	r.mu.Unlock()
	if !ok {
		return nil, repositories.ErrPostingNotFound
	}
	return r.withCompany(cp), nil
}

func (r *fakePostingRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id string) (*models.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.postings[id]
	if !ok {
		return nil, repositories.ErrPostingNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostingRepo) Update(_ context.Context, _ *gorm.DB, p *models.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.Company = nil
	r.postings[p.ID] = &cp
	return nil
}

func (r *fakePostingRepo) ListVisible(_ context.Context, _ *gorm.DB, now time.Time, filter repositories.PostingFilter) ([]models.JobPosting, int64, error) {
	r.mu.Lock()
	var out []models.JobPosting
	for _, p := range r.postings {
		if p.Status != models.PostingStatusApproved || (p.Deadline != nil && !p.Deadline.After(now)) {
			continue
		}
		if filter.EmploymentType != "" && p.EmploymentType != filter.EmploymentType {
			continue
		}
		out = append(out, *p)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	total := int64(len(out))
	if filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	for i := range out {
		out[i] = *r.withCompany(out[i])
	}
	return out, total, nil
}

func (r *fakePostingRepo) list(match func(*models.JobPosting) bool) []models.JobPosting {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobPosting
	for _, p := range r.postings {
		if match(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakePostingRepo) ListByCompany(_ context.Context, _ *gorm.DB, companyID string) ([]models.JobPosting, error) {
	return r.list(func(p *models.JobPosting) bool { return p.CompanyID == companyID }), nil
}

func (r *fakePostingRepo) ListByStatus(_ context.Context, _ *gorm.DB, status models.PostingStatus) ([]models.JobPosting, error) {
	return r.list(func(p *models.JobPosting) bool { return p.Status == status }), nil
}

func (r *fakePostingRepo) status(id string) models.PostingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.postings[id].Status
}

type fakeApplicationRepo struct {
	mu       sync.Mutex
	apps     map[string]*models.Application
	postings *fakePostingRepo
}

func newFakeApplicationRepo(postings *fakePostingRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[string]*models.Application{}, postings: postings}
}

// Create повторяет частичный уникальный индекс (student_id, posting_id) WHERE status <> 'withdrawn'
func (r *fakeApplicationRepo) Create(_ context.Context, _ *gorm.DB, a *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.StudentID == a.StudentID && existing.PostingID == a.PostingID && existing.IsActive() {
			return repositories.ErrApplicationAlreadyExists
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	cp.Posting = nil
	r.apps[a.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) get(id string) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Application, error) {
	a, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if p, err := r.postings.FindByID(ctx, db, a.PostingID); err == nil {
		a.Posting = p
	}
	return a, nil
}

func (r *fakeApplicationRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id string) (*models.Application, error) {
	return r.get(id)
}

func (r *fakeApplicationRepo) FindActive(_ context.Context, _ *gorm.DB, studentID, postingID string) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.StudentID == studentID && a.PostingID == postingID && a.IsActive() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id string, status models.ApplicationStatus, notes *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	a.Status = status
	a.StatusUpdatedAt = at
	if notes != nil {
		a.Notes = *notes
	}
	return nil
}

func (r *fakeApplicationRepo) list(match func(*models.Application) bool) []models.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for _, a := range r.apps {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeApplicationRepo) ListByStudent(_ context.Context, _ *gorm.DB, studentID string) ([]models.Application, error) {
	return r.list(func(a *models.Application) bool { return a.StudentID == studentID }), nil
}

func (r *fakeApplicationRepo) ListByPosting(_ context.Context, _ *gorm.DB, postingID string) ([]models.Application, error) {
	return r.list(func(a *models.Application) bool { return a.PostingID == postingID }), nil
}

func (r *fakeApplicationRepo) CompanyReceivedCv(ctx context.Context, db *gorm.DB, companyID, cvID string) (bool, error) {
	for _, a := range r.list(func(a *models.Application) bool { return a.CvArtifactID == cvID }) {
		p, err := r.postings.FindByID(ctx, db, a.PostingID)
		if err == nil && p.CompanyID == companyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps)
}

// recordingNotifier запоминает уведомления вместо отправки
type recordingNotifier struct {
	mu        sync.Mutex
	submitted []email.ApplicationNotice
	changed   []email.ApplicationNotice
	decided   []email.PostingNotice
}

func (n *recordingNotifier) ApplicationSubmitted(_ context.Context, notice email.ApplicationNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, notice)
	return nil
}

func (n *recordingNotifier) ApplicationStatusChanged(_ context.Context, notice email.ApplicationNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, notice)
	return nil
}

func (n *recordingNotifier) PostingDecided(_ context.Context, notice email.PostingNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided = append(n.decided, notice)
	return nil
}

// ============================================
// Сборка окружения
// ============================================

type testEnv struct {
	t         *testing.T
	ctx       context.Context
	tokens    *auth.TokenService
	authGuard *auth.Guard
	baseDir   string
	store     *storage.LocalStorage
	accounts  *fakeAccountRepo
	profiles  *fakeProfileRepo
	cvs       *fakeCvRepo
	postings  *fakePostingRepo
	apps      *fakeApplicationRepo
	tx        *fakeTransactor
	notifier  *recordingNotifier

	uploads     UploadService
	authSvc     AuthService
	profileSvc  ProfileService
	postingSvc  PostingService
	appSvc      ApplicationService
	matchingSvc MatchingService
	uploadRules config.UploadRules
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	baseDir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.Config{BasePath: baseDir, BaseURL: "http://files.test"})
	require.NoError(t, err)

	tokens := auth.NewTokenService("services-test-secret-0123456789abcdef", time.Hour, "test").WithClock(fixedNow)
	guard := auth.NewGuard(tokens)

	cvs := newFakeCvRepo()
	profiles := newFakeProfileRepo(cvs)
	postings := newFakePostingRepo(profiles)
	env := &testEnv{
		t:           t,
		ctx:         context.Background(),
		tokens:      tokens,
		authGuard:   guard,
		baseDir:     baseDir,
		store:       store,
		accounts:    newFakeAccountRepo(),
		profiles:    profiles,
		cvs:         cvs,
		postings:    postings,
		apps:        newFakeApplicationRepo(postings),
		tx:          &fakeTransactor{},
		notifier:    &recordingNotifier{},
		uploadRules: config.DefaultUploadRules(),
	}

	env.uploads = NewUploadService(store, env.uploadRules, tickingClock())
	env.authSvc = NewAuthService(env.accounts, env.profiles, env.tx, tokens, guard)
	env.profileSvc = NewProfileService(env.profiles, env.cvs, env.apps, env.tx, env.uploads, nil, 0, guard, fixedNow)
	env.postingSvc = NewPostingService(env.postings, env.accounts, env.tx, guard, env.notifier, fixedNow)
	env.appSvc = NewApplicationService(env.apps, env.postings, env.cvs, env.profiles, env.accounts, env.tx, guard, env.notifier, fixedNow)
	env.matchingSvc = NewMatchingService(env.postings, fixedNow)
	return env
}

type actor struct {
	ID    string
	Role  models.Role
	Token string
}

func (e *testEnv) newActor(role models.Role, name string) actor {
	e.t.Helper()
	account := &models.Account{Email: name + "@example.com", PasswordHash: "x", Role: role, Status: models.AccountStatusActive}
	require.NoError(e.t, e.accounts.Create(e.ctx, nil, account))

	switch role {
	case models.RoleCompany:
		require.NoError(e.t, e.profiles.CreateCompanyProfile(e.ctx, nil, &models.CompanyProfile{UserID: account.ID, CompanyName: name}))
	case models.RoleStudent:
		require.NoError(e.t, e.profiles.CreateStudentProfile(e.ctx, nil, &models.StudentProfile{UserID: account.ID, FirstName: name, LastName: "Test"}))
	}

	token, _, err := e.tokens.Issue(account.ID, role)
	require.NoError(e.t, err)
	return actor{ID: account.ID, Role: role, Token: token}
}

// addPosting кладет вакансию напрямую в репозиторий, минуя модерацию
func (e *testEnv) addPosting(companyID string, status models.PostingStatus, createdAgo time.Duration) *models.JobPosting {
	e.t.Helper()
	p := &models.JobPosting{
		CompanyID:      companyID,
		Title:          "Backend intern",
		Description:    "Work on the placement platform",
		EmploymentType: models.EmploymentInternship,
		Status:         status,
	}
	p.CreatedAt = testNow.Add(-createdAgo)
	require.NoError(e.t, e.postings.Create(e.ctx, nil, p))
	return p
}

// addCV загружает резюме через сервис, как это делает студент
func (e *testEnv) addCV(student actor) string {
	e.t.Helper()
	cv, err := e.profileSvc.UploadCV(e.ctx, nil, student.Token, student.ID, pdfUpload("resume.pdf", 1024))
	require.NoError(e.t, err)
	return cv.ID
}
