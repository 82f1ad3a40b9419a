package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coursgen/coursgen/internal/generator"
	"github.com/coursgen/coursgen/internal/identity"
	"github.com/coursgen/coursgen/internal/lib/sl"
	"github.com/coursgen/coursgen/internal/models"
)

// View состояние видимого экрана, которым управляет контроллер.
type View string

// Возможные экраны приложения.
const (
	ViewLanding   View = "landing"
	ViewAuth      View = "auth"
	ViewGenerator View = "generator"
	ViewDashboard View = "dashboard"
)

// Ledger описывает контракт леджера кредитов.
type Ledger interface {
	// CreateProfile провижинит строку леджера для нового пользователя.
	CreateProfile(ctx context.Context, userID, firstName, lastName string) error
	// SelectProfile возвращает полную проекцию строки леджера.
	SelectProfile(ctx context.Context, userID string) (*models.Profile, error)
	// CheckCredits возвращает тариф и остаток кредитов.
	CheckCredits(ctx context.Context, userID string) (string, int, error)
	// IncrementGenerationCount атомарно увеличивает счётчик генераций.
	IncrementGenerationCount(ctx context.Context, userID string) (int, error)
}

// IdentityProvider описывает контракт внешнего identity-провайдера.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignUp(ctx context.Context, email, password, name, lastname string) (*identity.Principal, error)
	AuthorizeURL(provider string) string
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, email string) error
}

// GeneratorBackend описывает контракт webhook генерации документов.
type GeneratorBackend interface {
	Generate(ctx context.Context, req generator.GenerateRequest) (*generator.GenerateResponse, error)
}

// SnapshotStore описывает сессионное хранилище снимков.
type SnapshotStore interface {
	SaveUser(ctx context.Context, user models.User) error
	LoadUser(ctx context.Context, uid string) (*models.User, bool, error)
	ClearUser(ctx context.Context, uid string) error
	SaveFiles(ctx context.Context, uid string, files []models.GeneratedFile) error
	LoadFiles(ctx context.Context, uid string) ([]models.GeneratedFile, bool, error)
	ClearFiles(ctx context.Context, uid string) error
}

// EventPublisher публикует событие о готовых документах для сервиса уведомлений.
type EventPublisher interface {
	PublishCourseReady(event models.CourseReadyEvent) error
}

// state внутреннее состояние одной пользовательской сессии.
// Значения принадлежат контроллеру, наружу уходят только копии.
type state struct {
	user  *models.User
	files []models.GeneratedFile
	view  View
}

// Snapshot проекция состояния сессии для слоя представления, только для чтения.
type Snapshot struct {
	View  View
	User  *models.User
	Files []models.GeneratedFile
}

// LoginResult результат успешного входа.
type LoginResult struct {
	User         models.User
	AccessToken  string
	RefreshToken string
}

// Service реализует сессионный контроллер.
type Service struct {
	ledger    Ledger
	idp       IdentityProvider
	backend   GeneratorBackend
	store     SnapshotStore
	events    EventPublisher
	log       *slog.Logger
	refresh   time.Duration

	mu            sync.Mutex
	sessions      map[string]*state
	loginInFlight map[string]struct{}
	generating    map[string]struct{}
}

// NewService создает новый экземпляр сессионного контроллера.
// events может быть nil, тогда события о готовых документах не публикуются.
func NewService(ledger Ledger, idp IdentityProvider, backend GeneratorBackend,
	store SnapshotStore, events EventPublisher, log *slog.Logger, refreshInterval time.Duration) *Service {
	return &Service{
		ledger:        ledger,
		idp:           idp,
		backend:       backend,
		store:         store,
		events:        events,
		log:           log,
		refresh:       refreshInterval,
		sessions:      make(map[string]*state),
		loginInFlight: make(map[string]struct{}),
		generating:    make(map[string]struct{}),
	}
}

// snapshotLocked возвращает копию состояния; вызывается под мьютексом.
func (s *Service) snapshotLocked(st *state) Snapshot {
	snap := Snapshot{View: st.view}
	if st.user != nil {
		userCopy := *st.user
		snap.User = &userCopy
	}
	if st.files != nil {
		snap.Files = make([]models.GeneratedFile, len(st.files))
		copy(snap.Files, st.files)
	}
	return snap
}

func (s *Service) sessionLocked(uid string) *state {
	st, ok := s.sessions[uid]
	if !ok {
		st = &state{view: ViewLanding}
		s.sessions[uid] = st
	}
	return st
}

// Bootstrap восстанавливает сессию из хранилища на холодном старте.
// Повреждённый снимок трактуется как отсутствующая сессия и никогда не является ошибкой.
func (s *Service) Bootstrap(ctx context.Context, uid string) Snapshot {
	const op = "session.Bootstrap"

	user, found, err := s.store.LoadUser(ctx, uid)
	if err != nil {
		s.log.Warn("failed to load user snapshot, treating session as absent",
			slog.String("op", op), slog.String("uid", uid), sl.Err(err))
		user, found = nil, false
	}

	files, filesFound, err := s.store.LoadFiles(ctx, uid)
	if err != nil {
		s.log.Warn("failed to load files snapshot, treating list as empty",
			slog.String("op", op), slog.String("uid", uid), sl.Err(err))
		files, filesFound = nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(uid)
	if found {
		st.user = user
		st.view = ViewDashboard
	}
	if filesFound {
		st.files = files
	}
	return s.snapshotLocked(st)
}

// resume поднимает сессию из хранилища снимков, когда в памяти её нет,
// например после рестарта процесса. Для живой сессии является no-op.
func (s *Service) resume(ctx context.Context, uid string) {
	s.mu.Lock()
	st, ok := s.sessions[uid]
	if ok && st.user != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.Bootstrap(ctx, uid)
}

// Login выполняет вход через identity-провайдера и собирает пользователя
// из профиля леджера. Одновременно выполняется не более одной попытки входа
// на каждый email.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "session.Login"

	s.mu.Lock()
	if _, busy := s.loginInFlight[email]; busy {
		s.mu.Unlock()
		return nil, ErrLoginInFlight
	}
	s.loginInFlight[email] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.loginInFlight, email)
		s.mu.Unlock()
	}()

	providerSession, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		// Текст ошибки провайдера уходит пользователю дословно
		return nil, err
	}

	principal := providerSession.Principal
	if !principal.EmailConfirmed {
		// Жёсткий гейт: принудительный выход, пользователь остаётся на экране входа
		if signOutErr := s.idp.SignOut(ctx, providerSession.AccessToken); signOutErr != nil {
			s.log.Warn("failed to sign out unconfirmed principal",
				slog.String("op", op), sl.Err(signOutErr))
		}
		return nil, ErrEmailNotConfirmed
	}

	profile, err := s.ledger.SelectProfile(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Имя из метаданных провайдера используется только как запасной вариант
	name := profile.FirstName
	if name == "" {
		name = principal.Name
	}
	lastname := profile.LastName
	if lastname == "" {
		lastname = principal.Lastname
	}

	balance := profile.CreditBalance
	user := models.User{
		ID:              principal.ID,
		Email:           principal.Email,
		Name:            name,
		Lastname:        lastname,
		Avatar:          principal.Avatar,
		Provider:        principal.Provider,
		Plan:            profile.Plan,
		CreditBalance:   &balance,
		GenerationCount: profile.GenerationCount,
	}

	s.mu.Lock()
	st := s.sessionLocked(principal.ID)
	st.user = &user
	st.view = ViewDashboard
	s.mu.Unlock()

	if err := s.store.SaveUser(ctx, user); err != nil {
		s.log.Warn("failed to persist user snapshot", slog.String("op", op), sl.Err(err))
	}

	s.log.Info("user logged in", slog.String("uid", user.ID), slog.String("plan", user.Plan))
	return &LoginResult{
		User:         user,
		AccessToken:  providerSession.AccessToken,
		RefreshToken: providerSession.RefreshToken,
	}, nil
}

// Register создаёт учётную запись у провайдера и провижинит строку леджера.
// Сбой провижининга делает регистрацию неуспешной целиком: identity-запись
// при этом остаётся без строки леджера, случай логируется для ручной сверки.
func (s *Service) Register(ctx context.Context, name, lastname, email, password string) error {
	const op = "session.Register"

	principal, err := s.idp.SignUp(ctx, email, password, name, lastname)
	if err != nil {
		return err
	}

	if err := s.ledger.CreateProfile(ctx, principal.ID, name, lastname); err != nil {
		s.log.Error("ledger provisioning failed, identity record is orphaned",
			slog.String("op", op), slog.String("identity_id", principal.ID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered, confirmation email pending", slog.String("uid", principal.ID))
	return nil
}

// GoogleAuth возвращает адрес OAuth-редиректа. Синхронного пользователя здесь нет:
// успех наблюдается только на следующем Bootstrap после редиректа.
func (s *Service) GoogleAuth() string {
	return s.idp.AuthorizeURL("google")
}

// Logout выходит у провайдера и очищает сессию. Повторный вызов безопасен
// и приводит к тому же конечному состоянию.
func (s *Service) Logout(ctx context.Context, uid, accessToken string) error {
	const op = "session.Logout"

	if accessToken != "" {
		if err := s.idp.SignOut(ctx, accessToken); err != nil {
			s.log.Warn("identity sign out failed", slog.String("op", op), sl.Err(err))
		}
	}

	s.mu.Lock()
	st := s.sessionLocked(uid)
	st.user = nil
	st.view = ViewLanding
	s.mu.Unlock()

	if err := s.store.ClearUser(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPassword запрашивает у провайдера письмо восстановления пароля.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	return s.idp.ResetPassword(ctx, email)
}

// RefreshUserData перечитывает тариф и баланс из леджера и замещает
// пользователя целиком новым значением, не патчит поля на месте.
// Без пользователя ни в памяти, ни в снимке операция является no-op.
func (s *Service) RefreshUserData(ctx context.Context, uid string) (*models.User, error) {
	const op = "session.RefreshUserData"

	s.resume(ctx, uid)

	s.mu.Lock()
	st, ok := s.sessions[uid]
	if !ok || st.user == nil {
		s.mu.Unlock()
		return nil, nil
	}
	current := *st.user
	s.mu.Unlock()

	plan, balance, err := s.ledger.CheckCredits(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated := current
	updated.Plan = plan
	updated.CreditBalance = &balance

	s.mu.Lock()
	st = s.sessionLocked(uid)
	st.user = &updated
	s.mu.Unlock()

	if err := s.store.SaveUser(ctx, updated); err != nil {
		s.log.Warn("failed to persist refreshed user", slog.String("op", op), sl.Err(err))
	}

	userCopy := updated
	return &userCopy, nil
}

// EnterView переводит сессию на экран генератора или дашборда
// и немедленно освежает данные пользователя.
func (s *Service) EnterView(ctx context.Context, uid string, view View) (Snapshot, error) {
	if view != ViewGenerator && view != ViewDashboard {
		return Snapshot{}, fmt.Errorf("view %q is not reachable for an authenticated session", view)
	}

	if _, err := s.RefreshUserData(ctx, uid); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(uid)
	if st.user == nil {
		return Snapshot{}, ErrNotAuthenticated
	}
	st.view = view
	return s.snapshotLocked(st), nil
}

// Generate выполняет протокол платной генерации. Порядок шагов фиксирован:
// захват слота генерации, принудительное обновление, прямое перечитывание
// баланса, таблица стоимости, гейт, вызов backend, вставка пары документов,
// атомарный инкремент счётчика.
func (s *Service) Generate(ctx context.Context, uid, accessToken string, form models.CourseRequest) ([]models.GeneratedFile, error) {
	const op = "session.Generate"

	s.resume(ctx, uid)

	s.mu.Lock()
	if _, busy := s.generating[uid]; busy {
		s.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	st, ok := s.sessions[uid]
	if !ok || st.user == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	s.generating[uid] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.generating, uid)
		s.mu.Unlock()
	}()

	// Принудительное обновление сужает окно устаревания между
	// интервальными тиками, но не закрывает гонку полностью
	if _, err := s.RefreshUserData(ctx, uid); err != nil {
		return nil, err
	}

	// Баланс перечитывается напрямую, обновлённой копии в памяти не доверяем
	plan, balance, err := s.ledger.CheckCredits(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cost, err := CreditCost(form.CourseFormat)
	if err != nil {
		return nil, err
	}

	if err := checkCreditGate(plan, balance, cost, form.CourseFormat); err != nil {
		return nil, err
	}

	resp, err := s.backend.Generate(ctx, generator.GenerateRequest{
		Title:    form.ModuleTitle,
		Level:    form.StudentLevel,
		Chapters: form.Chapters,
		Duration: form.Duration,
		Format:   form.CourseFormat,
		Email:    form.Email,
		UserID:   uid,
		Token:    accessToken,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pptxURL := resp.PptxURL
	if pptxURL == "" {
		pptxURL = models.PlaceholderFileURL
	}
	docxURL := resp.DocxURL
	if docxURL == "" {
		docxURL = models.PlaceholderFileURL
	}
	newFiles := []models.GeneratedFile{
		{
			ID:        fmt.Sprintf("ppt-%d", now.UnixNano()),
			Title:     form.ModuleTitle + " - Présentation",
			CreatedAt: now,
			Type:      models.FileTypePowerpoint,
			FileURL:   pptxURL,
			Status:    models.FileStatusReady,
		},
		{
			ID:        fmt.Sprintf("doc-%d", now.UnixNano()),
			Title:     form.ModuleTitle + " - Résumé",
			CreatedAt: now,
			Type:      models.FileTypeWord,
			FileURL:   docxURL,
			Status:    models.FileStatusReady,
		},
	}

	s.mu.Lock()
	st = s.sessionLocked(uid)
	st.files = append(newFiles, st.files...)
	filesCopy := make([]models.GeneratedFile, len(st.files))
	copy(filesCopy, st.files)
	s.mu.Unlock()

	if err := s.store.SaveFiles(ctx, uid, filesCopy); err != nil {
		s.log.Warn("failed to persist files snapshot", slog.String("op", op), sl.Err(err))
	}

	count, err := s.ledger.IncrementGenerationCount(ctx, uid)
	if err != nil {
		// Документы уже вставлены, счётчик не инкрементирован: шаги не
		// транзакционны между собой, ошибка уходит вызывающему как есть
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	st = s.sessionLocked(uid)
	if st.user != nil {
		updated := *st.user
		updated.GenerationCount = count
		st.user = &updated
		userCopy := updated
		s.mu.Unlock()
		if err := s.store.SaveUser(ctx, userCopy); err != nil {
			s.log.Warn("failed to persist user snapshot", slog.String("op", op), sl.Err(err))
		}
	} else {
		s.mu.Unlock()
	}

	if s.events != nil {
		event := models.CourseReadyEvent{
			Email:       form.Email,
			CourseTitle: form.ModuleTitle,
			Files:       newFiles,
		}
		if err := s.events.PublishCourseReady(event); err != nil {
			s.log.Warn("failed to publish course ready event", slog.String("op", op), sl.Err(err))
		}
	}

	s.log.Info("course generated", slog.String("uid", uid),
		slog.String("format", form.CourseFormat), slog.Int("generation_count", count))
	return newFiles, nil
}

// Download возвращает документ для скачивания, только если он готов.
func (s *Service) Download(ctx context.Context, uid, fileID string) (*models.GeneratedFile, error) {
	s.resume(ctx, uid)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[uid]
	if !ok {
		return nil, ErrFileNotFound
	}
	for _, f := range st.files {
		if f.ID == fileID {
			if f.Status != models.FileStatusReady {
				return nil, ErrFileNotReady
			}
			fileCopy := f
			return &fileCopy, nil
		}
	}
	return nil, ErrFileNotFound
}

// Delete удаляет документ из списка после явного подтверждения.
// Удаление несуществующего идентификатора является no-op без ошибки.
func (s *Service) Delete(ctx context.Context, uid, fileID string, confirmed bool) error {
	const op = "session.Delete"

	if !confirmed {
		return ErrConfirmationRequired
	}

	s.resume(ctx, uid)

	s.mu.Lock()
	st, ok := s.sessions[uid]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	changed := false
	kept := st.files[:0]
	for _, f := range st.files {
		if f.ID == fileID {
			changed = true
			continue
		}
		kept = append(kept, f)
	}
	st.files = kept
	filesCopy := make([]models.GeneratedFile, len(st.files))
	copy(filesCopy, st.files)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	if err := s.store.SaveFiles(ctx, uid, filesCopy); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Snapshot возвращает текущее состояние сессии для слоя представления,
// при необходимости поднимая её из хранилища снимков.
func (s *Service) Snapshot(ctx context.Context, uid string) Snapshot {
	s.resume(ctx, uid)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[uid]
	if !ok {
		return Snapshot{View: ViewLanding}
	}
	return s.snapshotLocked(st)
}

// RunRefreshLoop фоново освежает баланс всех активных сессий с фиксированным
// периодом, пока контекст не отменён. Ошибка одного тика логируется
// и не повторяется до следующего тика.
func (s *Service) RunRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) refreshAll(ctx context.Context) {
	s.mu.Lock()
	uids := make([]string, 0, len(s.sessions))
	for uid, st := range s.sessions {
		if st.user != nil {
			uids = append(uids, uid)
		}
	}
	s.mu.Unlock()

	for _, uid := range uids {
		if _, err := s.RefreshUserData(ctx, uid); err != nil {
			s.log.Warn("periodic refresh failed", slog.String("uid", uid), sl.Err(err))
		}
	}
}
