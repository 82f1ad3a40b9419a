package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursgen/coursgen/internal/generator"
	"github.com/coursgen/coursgen/internal/identity"
	"github.com/coursgen/coursgen/internal/models"
	"github.com/coursgen/coursgen/internal/storage"
)

type LedgerMock struct {
	mock.Mock
}

func (m *LedgerMock) CreateProfile(ctx context.Context, userID, firstName, lastName string) error {
	args := m.Called(ctx, userID, firstName, lastName)
	return args.Error(0)
}

func (m *LedgerMock) SelectProfile(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *LedgerMock) CheckCredits(ctx context.Context, userID string) (string, int, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Int(1), args.Error(2)
}

func (m *LedgerMock) IncrementGenerationCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type IdentityMock struct {
	mock.Mock
}

func (m *IdentityMock) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(*identity.Session)
	return session, args.Error(1)
}

func (m *IdentityMock) SignUp(ctx context.Context, email, password, name, lastname string) (*identity.Principal, error) {
	args := m.Called(ctx, email, password, name, lastname)
	principal, _ := args.Get(0).(*identity.Principal)
	return principal, args.Error(1)
}

func (m *IdentityMock) AuthorizeURL(provider string) string {
	args := m.Called(provider)
	return args.String(0)
}

func (m *IdentityMock) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *IdentityMock) ResetPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) Generate(ctx context.Context, req generator.GenerateRequest) (*generator.GenerateResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*generator.GenerateResponse)
	return resp, args.Error(1)
}

// fakeStore хранилище снимков в памяти, со сбоем чтения по требованию.
type fakeStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	files   map[string][]models.GeneratedFile
	loadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]models.User),
		files: make(map[string][]models.GeneratedFile),
	}
}

func (f *fakeStore) SaveUser(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) LoadUser(_ context.Context, uid string) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	user, ok := f.users[uid]
	if !ok {
		return nil, false, nil
	}
	return &user, true, nil
}

func (f *fakeStore) ClearUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, uid)
	return nil
}

func (f *fakeStore) SaveFiles(_ context.Context, uid string, files []models.GeneratedFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[uid] = files
	return nil
}

func (f *fakeStore) LoadFiles(_ context.Context, uid string) ([]models.GeneratedFile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	files, ok := f.files[uid]
	if !ok {
		return nil, false, nil
	}
	return files, true, nil
}

func (f *fakeStore) ClearFiles(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, uid)
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type fixture struct {
	ledger  *LedgerMock
	idp     *IdentityMock
	backend *BackendMock
	store   *fakeStore
	service *Service
}

func newFixture() *fixture {
	f := &fixture{
		ledger:  new(LedgerMock),
		idp:     new(IdentityMock),
		backend: new(BackendMock),
		store:   newFakeStore(),
	}
	f.service = NewService(f.ledger, f.idp, f.backend, f.store, nil, newNoopLogger(), 30*time.Second)
	return f
}

func confirmedSession(uid, email string) *identity.Session {
	return &identity.Session{
		AccessToken:  "tok",
		RefreshToken: "ref",
		Principal: identity.Principal{
			ID:             uid,
			Email:          email,
			EmailConfirmed: true,
			Provider:       models.ProviderEmail,
		},
	}
}

// loggedIn приводит фикстуру в состояние с аутентифицированным пользователем.
func (f *fixture) loggedIn(t *testing.T, uid, plan string, balance int) {
	t.Helper()
	f.idp.On("SignIn", mock.Anything, "prof@coursgen.fr", "secret").
		Return(confirmedSession(uid, "prof@coursgen.fr"), nil).Once()
	f.ledger.On("SelectProfile", mock.Anything, uid).
		Return(&models.Profile{
			UserID:        uid,
			FirstName:     "Marie",
			LastName:      "Dupont",
			Plan:          plan,
			CreditBalance: balance,
		}, nil).Once()

	_, err := f.service.Login(context.Background(), "prof@coursgen.fr", "secret")
	require.NoError(t, err)
}

func TestLogin_FreshnessInvariant(t *testing.T) {
	f := newFixture()
	f.idp.On("SignIn", mock.Anything, "prof@coursgen.fr", "secret").
		Return(confirmedSession("uid-1", "prof@coursgen.fr"), nil)
	f.ledger.On("SelectProfile", mock.Anything, "uid-1").
		Return(&models.Profile{
			UserID:          "uid-1",
			FirstName:       "Marie",
			LastName:        "Dupont",
			Plan:            models.PlanPremium,
			CreditBalance:   7,
			GenerationCount: 4,
		}, nil)

	result, err := f.service.Login(context.Background(), "prof@coursgen.fr", "secret")
	require.NoError(t, err)

	// Баланс пользователя равен значению леджера в момент входа
	require.NotNil(t, result.User.CreditBalance)
	assert.Equal(t, 7, *result.User.CreditBalance)
	assert.Equal(t, models.PlanPremium, result.User.Plan)
	assert.Equal(t, 4, result.User.GenerationCount)
	assert.Equal(t, "Marie", result.User.Name)
	assert.Equal(t, "tok", result.AccessToken)

	snap := f.service.Snapshot(context.Background(), "uid-1")
	assert.Equal(t, ViewDashboard, snap.View)

	// Снимок сразу персистится
	stored, found, err := f.store.LoadUser(context.Background(), "uid-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, *stored.CreditBalance)
}

func TestLogin_NameFallbackFromIdentityMetadata(t *testing.T) {
	f := newFixture()
	session := confirmedSession("uid-1", "prof@coursgen.fr")
	session.Principal.Name = "Claire"
	session.Principal.Lastname = "Martin"
	f.idp.On("SignIn", mock.Anything, "prof@coursgen.fr", "secret").Return(session, nil)
	f.ledger.On("SelectProfile", mock.Anything, "uid-1").
		Return(&models.Profile{UserID: "uid-1", Plan: models.PlanFree, CreditBalance: 1}, nil)

	result, err := f.service.Login(context.Background(), "prof@coursgen.fr", "secret")
	require.NoError(t, err)
	// Имя провайдера используется только когда в леджере его нет
	assert.Equal(t, "Claire", result.User.Name)
	assert.Equal(t, "Martin", result.User.Lastname)
}

func TestLogin_UnconfirmedEmailIsHardGate(t *testing.T) {
	f := newFixture()
	session := confirmedSession("uid-1", "prof@coursgen.fr")
	session.Principal.EmailConfirmed = false
	f.idp.On("SignIn", mock.Anything, "prof@coursgen.fr", "secret").Return(session, nil)
	f.idp.On("SignOut", mock.Anything, "tok").Return(nil)

	result, err := f.service.Login(context.Background(), "prof@coursgen.fr", "secret")
	require.ErrorIs(t, err, ErrEmailNotConfirmed)
	assert.Nil(t, result)

	// Принудительный выход выполнен, профиль не запрашивался
	f.idp.AssertCalled(t, "SignOut", mock.Anything, "tok")
	f.ledger.AssertNotCalled(t, "SelectProfile", mock.Anything, mock.Anything)
}

func TestLogin_ProviderErrorSurfacedVerbatim(t *testing.T) {
	f := newFixture()
	f.idp.On("SignIn", mock.Anything, "prof@coursgen.fr", "wrong").
		Return(nil, errors.New("Invalid login credentials"))

	result, err := f.service.Login(context.Background(), "prof@coursgen.fr", "wrong")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestRegister_ProvisionsLedgerRow(t *testing.T) {
	f := newFixture()
	f.idp.On("SignUp", mock.Anything, "new@coursgen.fr", "secret", "Marie", "Dupont").
		Return(&identity.Principal{ID: "uid-2", Email: "new@coursgen.fr"}, nil)
	f.ledger.On("CreateProfile", mock.Anything, "uid-2", "Marie", "Dupont").Return(nil)

	err := f.service.Register(context.Background(), "Marie", "Dupont", "new@coursgen.fr", "secret")
	require.NoError(t, err)
	f.ledger.AssertExpectations(t)
}

func TestRegister_LedgerFailureFailsWholeRegistration(t *testing.T) {
	f := newFixture()
	f.idp.On("SignUp", mock.Anything, "new@coursgen.fr", "secret", "Marie", "Dupont").
		Return(&identity.Principal{ID: "uid-2"}, nil)
	f.ledger.On("CreateProfile", mock.Anything, "uid-2", "Marie", "Dupont").
		Return(errors.New("connection refused"))

	err := f.service.Register(context.Background(), "Marie", "Dupont", "new@coursgen.fr", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.idp.On("SignOut", mock.Anything, "tok").Return(nil)

	require.NoError(t, f.service.Logout(context.Background(), "uid-1", "tok"))
	first := f.service.Snapshot(context.Background(), "uid-1")

	require.NoError(t, f.service.Logout(context.Background(), "uid-1", "tok"))
	second := f.service.Snapshot(context.Background(), "uid-1")

	assert.Equal(t, first, second)
	assert.Equal(t, ViewLanding, second.View)
	assert.Nil(t, second.User)

	_, found, err := f.store.LoadUser(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRefreshUserData_NoUserIsNoop(t *testing.T) {
	f := newFixture()

	user, err := f.service.RefreshUserData(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
	f.ledger.AssertNotCalled(t, "CheckCredits", mock.Anything, mock.Anything)
}

func TestRefreshUserData_ReplacesWholeUser(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").
		Return(models.PlanPremium, 42, nil)

	user, err := f.service.RefreshUserData(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, user.Plan)
	assert.Equal(t, 42, *user.CreditBalance)
	// Остальные поля не тронуты
	assert.Equal(t, "Marie", user.Name)
	assert.Equal(t, "prof@coursgen.fr", user.Email)
}

func validRequest(format string) models.CourseRequest {
	return models.CourseRequest{
		ModuleTitle:  "Pharmacologie",
		StudentLevel: "Semestre 3",
		Chapters:     "Antalgiques; Antibiotiques",
		Duration:     "2h",
		CourseFormat: format,
		Email:        "prof@coursgen.fr",
	}
}

func TestGenerate_NotAuthenticated(t *testing.T) {
	f := newFixture()

	files, err := f.service.Generate(context.Background(), "ghost", "tok", validRequest("court"))
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, files)
	f.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_FreePlanWrongFormat_FailsBeforeBackend(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 5)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 5, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("long"))
	require.ErrorIs(t, err, ErrFormatNotAllowed)
	assert.Nil(t, files)
	f.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "IncrementGenerationCount", mock.Anything, mock.Anything)
}

func TestGenerate_FreePlanZeroBalance(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 0)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 0, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.Error(t, err)
	assert.Nil(t, files)

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Cost)
	assert.Equal(t, 0, insufficient.Balance)
	f.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_PremiumShortfallReportsNumbers(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanPremium, 2)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanPremium, 2, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("long"))
	require.Error(t, err)
	assert.Nil(t, files)
	assert.Contains(t, err.Error(), "3")
	assert.Contains(t, err.Error(), "2")

	// Список документов не изменился
	snap := f.service.Snapshot(context.Background(), "uid-1")
	assert.Empty(t, snap.Files)
	f.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_UnknownFormat(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanPremium, 10)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanPremium, 10, nil)

	_, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("epique"))
	require.ErrorIs(t, err, ErrUnknownCourseFormat)
	f.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 1, nil)
	f.backend.On("Generate", mock.Anything, mock.MatchedBy(func(req generator.GenerateRequest) bool {
		return req.UserID == "uid-1" && req.Token == "tok" && req.Format == "court"
	})).Return(&generator.GenerateResponse{
		PptxURL: "https://files/p.pptx",
		DocxURL: "https://files/p.docx",
	}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.NoError(t, err)

	// Ровно два документа: powerpoint и word, оба ready
	require.Len(t, files, 2)
	assert.Equal(t, models.FileTypePowerpoint, files[0].Type)
	assert.Equal(t, models.FileTypeWord, files[1].Type)
	assert.Equal(t, models.FileStatusReady, files[0].Status)
	assert.Equal(t, models.FileStatusReady, files[1].Status)
	assert.Equal(t, "https://files/p.pptx", files[0].FileURL)
	assert.NotEqual(t, files[0].ID, files[1].ID)

	snap := f.service.Snapshot(context.Background(), "uid-1")
	assert.Equal(t, 1, snap.User.GenerationCount)
	f.ledger.AssertCalled(t, "IncrementGenerationCount", mock.Anything, "uid-1")
}

func TestGenerate_PrependsBeforeExistingFiles(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanPremium, 10)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanPremium, 10, nil)
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil).Once()
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(2, nil).Once()

	first, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.NoError(t, err)
	second, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("long"))
	require.NoError(t, err)

	snap := f.service.Snapshot(context.Background(), "uid-1")
	require.Len(t, snap.Files, 4)
	// Новая пара стоит перед всеми ранее существовавшими записями
	assert.Equal(t, second[0].ID, snap.Files[0].ID)
	assert.Equal(t, second[1].ID, snap.Files[1].ID)
	assert.Equal(t, first[0].ID, snap.Files[2].ID)
	assert.Equal(t, first[1].ID, snap.Files[3].ID)
}

func TestGenerate_MissingURLsFallBackToPlaceholder(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 1, nil)
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderFileURL, files[0].FileURL)
	assert.Equal(t, models.PlaceholderFileURL, files[1].FileURL)
}

func TestGenerate_BackendFailureAddsNothing(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 1, nil)
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New("generation backend request failed: 502 Bad Gateway"))

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.Error(t, err)
	assert.Nil(t, files)

	snap := f.service.Snapshot(context.Background(), "uid-1")
	assert.Empty(t, snap.Files)
	f.ledger.AssertNotCalled(t, "IncrementGenerationCount", mock.Anything, mock.Anything)
}

func TestGenerate_SingleSlotGuard(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanPremium, 10)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanPremium, 10, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Run(func(_ mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&generator.GenerateResponse{}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
		done <- err
	}()

	<-started
	// Вторая генерация отклоняется, пока первая держит слот
	_, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestGenerate_ProfileMissingInLedger(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").
		Return("", 0, storage.ErrProfileNotFound)

	_, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.ErrorIs(t, err, storage.ErrProfileNotFound)
	f.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestDownload(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 1, nil)
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{PptxURL: "https://files/p.pptx"}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.NoError(t, err)

	file, err := f.service.Download(context.Background(), "uid-1", files[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files/p.pptx", file.FileURL)

	_, err = f.service.Download(context.Background(), "uid-1", "no-such-file")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 1, nil)
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil)

	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("court"))
	require.NoError(t, err)

	// Без подтверждения удаления нет
	err = f.service.Delete(context.Background(), "uid-1", files[0].ID, false)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Len(t, f.service.Snapshot(context.Background(), "uid-1").Files, 2)

	require.NoError(t, f.service.Delete(context.Background(), "uid-1", files[0].ID, true))
	assert.Len(t, f.service.Snapshot(context.Background(), "uid-1").Files, 1)

	// Удаление несуществующего идентификатора: список не меняется, ошибки нет
	require.NoError(t, f.service.Delete(context.Background(), "uid-1", "no-such-file", true))
	assert.Len(t, f.service.Snapshot(context.Background(), "uid-1").Files, 1)
}

// seedPersistedSession наполняет хранилище снимков так, как оно выглядит
// после рестарта процесса: пользователь и документы есть, памяти нет.
func (f *fixture) seedPersistedSession(t *testing.T, uid string, balance int) models.GeneratedFile {
	t.Helper()
	file := models.GeneratedFile{
		ID:        "ppt-1",
		Title:     "Pharmacologie - Présentation",
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Type:      models.FileTypePowerpoint,
		FileURL:   "https://files/p.pptx",
		Status:    models.FileStatusReady,
	}
	require.NoError(t, f.store.SaveUser(context.Background(), models.User{
		ID:            uid,
		Email:         "prof@coursgen.fr",
		Plan:          models.PlanPremium,
		CreditBalance: &balance,
	}))
	require.NoError(t, f.store.SaveFiles(context.Background(), uid, []models.GeneratedFile{file}))
	return file
}

func TestGenerate_ResumesPersistedSessionAfterRestart(t *testing.T) {
	f := newFixture()
	f.seedPersistedSession(t, "uid-1", 5)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanPremium, 5, nil)
	f.backend.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.GenerateResponse{}, nil)
	f.ledger.On("IncrementGenerationCount", mock.Anything, "uid-1").Return(1, nil)

	// Входа после рестарта не было, сессия поднимается из снимка
	files, err := f.service.Generate(context.Background(), "uid-1", "tok", validRequest("long"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	snap := f.service.Snapshot(context.Background(), "uid-1")
	require.NotNil(t, snap.User)
	// Новая пара стоит перед документом из снимка
	require.Len(t, snap.Files, 3)
	assert.Equal(t, "ppt-1", snap.Files[2].ID)
}

func TestDownload_ResumesPersistedSessionAfterRestart(t *testing.T) {
	f := newFixture()
	seeded := f.seedPersistedSession(t, "uid-1", 5)

	file, err := f.service.Download(context.Background(), "uid-1", seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files/p.pptx", file.FileURL)
}

func TestDelete_ResumesPersistedSessionAfterRestart(t *testing.T) {
	f := newFixture()
	seeded := f.seedPersistedSession(t, "uid-1", 5)

	require.NoError(t, f.service.Delete(context.Background(), "uid-1", seeded.ID, true))

	files, found, err := f.store.LoadFiles(context.Background(), "uid-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, files)
}

func TestSnapshot_ResumesPersistedSessionAfterRestart(t *testing.T) {
	f := newFixture()
	f.seedPersistedSession(t, "uid-1", 5)

	snap := f.service.Snapshot(context.Background(), "uid-1")
	assert.Equal(t, ViewDashboard, snap.View)
	require.NotNil(t, snap.User)
	assert.Equal(t, 5, *snap.User.CreditBalance)
	require.Len(t, snap.Files, 1)
}

func TestSnapshot_NotResumedAfterLogout(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.idp.On("SignOut", mock.Anything, "tok").Return(nil)

	require.NoError(t, f.service.Logout(context.Background(), "uid-1", "tok"))

	// Снимок очищен вместе с сессией, воскрешения после выхода нет
	snap := f.service.Snapshot(context.Background(), "uid-1")
	assert.Equal(t, ViewLanding, snap.View)
	assert.Nil(t, snap.User)
}

func TestBootstrap_RestoresSession(t *testing.T) {
	f := newFixture()
	balance := 3
	createdAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.SaveUser(context.Background(), models.User{
		ID:            "uid-1",
		Email:         "prof@coursgen.fr",
		Plan:          models.PlanPremium,
		CreditBalance: &balance,
	}))
	require.NoError(t, f.store.SaveFiles(context.Background(), "uid-1", []models.GeneratedFile{
		{ID: "ppt-1", Title: "t", CreatedAt: createdAt, Type: models.FileTypePowerpoint, FileURL: "#", Status: models.FileStatusReady},
	}))

	snap := f.service.Bootstrap(context.Background(), "uid-1")
	assert.Equal(t, ViewDashboard, snap.View)
	require.NotNil(t, snap.User)
	assert.Equal(t, 3, *snap.User.CreditBalance)
	require.Len(t, snap.Files, 1)
	assert.True(t, createdAt.Equal(snap.Files[0].CreatedAt))
}

func TestBootstrap_MalformedSnapshotFallsBackSilently(t *testing.T) {
	f := newFixture()
	f.store.loadErr = errors.New("unexpected end of JSON input")

	snap := f.service.Bootstrap(context.Background(), "uid-1")
	assert.Equal(t, ViewLanding, snap.View)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Files)
}

func TestGoogleAuth_ReturnsAuthorizeURL(t *testing.T) {
	f := newFixture()
	f.idp.On("AuthorizeURL", "google").Return("https://idp/authorize?provider=google")

	assert.Equal(t, "https://idp/authorize?provider=google", f.service.GoogleAuth())
}

func TestEnterView_RefreshesImmediately(t *testing.T) {
	f := newFixture()
	f.loggedIn(t, "uid-1", models.PlanFree, 1)
	f.ledger.On("CheckCredits", mock.Anything, "uid-1").Return(models.PlanFree, 0, nil)

	snap, err := f.service.EnterView(context.Background(), "uid-1", ViewGenerator)
	require.NoError(t, err)
	assert.Equal(t, ViewGenerator, snap.View)
	// Переход на экран немедленно освежил баланс
	assert.Equal(t, 0, *snap.User.CreditBalance)
	f.ledger.AssertCalled(t, "CheckCredits", mock.Anything, "uid-1")
}

func TestCreditCost(t *testing.T) {
	tests := []struct {
		format   string
		wantCost int
		wantErr  bool
	}{
		{format: "court", wantCost: 1},
		{format: "intermediaire", wantCost: 2},
		{format: "long", wantCost: 3},
		{format: "exhaustif", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cost, err := CreditCost(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cost)
		})
	}
}
