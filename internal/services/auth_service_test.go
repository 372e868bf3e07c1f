package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory фейки репозиториев ---
// Сервисы не трогают *gorm.DB напрямую, поэтому db здесь всегда nil.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(_ *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) Update(_ *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdateStatus(_ *gorm.DB, id string, status models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *memUserRepo) FindWithFilter(_ *gorm.DB, _ repositories.UserFilter) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Delete(_ *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken

	// beforeMarkRotated позволяет тестам вклиниться между FindByHash
	// и MarkRotated (симуляция конкурентного refresh)
	beforeMarkRotated func()
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *memTokenRepo) Create(_ *gorm.DB, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *memTokenRepo) FindByHash(_ *gorm.DB, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrRefreshTokenNotFound
}

func (r *memTokenRepo) MarkRotated(_ *gorm.DB, tokenID, replacedByID string, now time.Time) (bool, error) {
	if r.beforeMarkRotated != nil {
		r.beforeMarkRotated()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenID]
	if !ok || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked = true
	t.ReplacedBy = &replacedByID
	t.LastUsedAt = &now
	return true, nil
}

func (r *memTokenRepo) RevokeByHash(_ *gorm.DB, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && !t.IsRevoked {
			t.IsRevoked = true
		}
	}
	return nil
}

func (r *memTokenRepo) RevokeByID(_ *gorm.DB, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenID]; ok && !t.IsRevoked {
		t.IsRevoked = true
	}
	return nil
}

func (r *memTokenRepo) RevokeAllForUser(_ *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked = true
		}
	}
	return nil
}

func (r *memTokenRepo) DeleteExpiredOrRevoked(_ *gorm.DB, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, t := range r.tokens {
		if t.IsRevoked || t.ExpiresAt.Before(now) {
			delete(r.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memTokenRepo) FindByUserID(_ *gorm.DB, userID string) ([]models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RefreshToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTokenRepo) byHash(hash string) *models.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp
		}
	}
	return nil
}

func (r *memTokenRepo) deleteByHash(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.TokenHash == hash {
			delete(r.tokens, id)
		}
	}
}

func (r *memTokenRepo) countAlive(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && !t.IsRevoked {
			n++
		}
	}
	return n
}

// plainHasher - хешер без bcrypt, чтобы тесты не жгли CPU
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Check(password, hash string) bool     { return "h:"+password == hash }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type authFixture struct {
	svc    AuthService
	users  *memUserRepo
	tokens *memTokenRepo
	clock  *fakeClock
	codec  *auth.TokenCodec
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	codec := auth.NewTokenCodec("test-secret", 15*time.Minute, 30*24*time.Hour, clock.Now)
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	svc := NewAuthService(users, tokens, codec, plainHasher{}, auth.NewDenylist(nil), nil, clock.Now)
	return &authFixture{svc: svc, users: users, tokens: tokens, clock: clock, codec: codec}
}

func (f *authFixture) seedUser(t *testing.T, email, password string, status models.UserStatus) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Тест Пользователь",
		Email:        email,
		PasswordHash: "h:" + password,
		Role:         models.UserRoleBuyer,
		Status:       status,
	}
	require.NoError(t, f.users.Create(nil, user))
	return user
}

var testMeta = dto.RequestMeta{
	IP:         "10.0.0.1",
	UserAgent:  "test-agent",
	DeviceID:   "device-1",
	DeviceName: "iPhone",
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Register(nil, &dto.RegisterRequest{
		Name:     "Айгерим",
		Email:    "aigerim@example.com",
		Password: "password123",
		Role:     models.UserRoleSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, resp.Status)
	assert.Equal(t, models.UserRoleSeller, resp.Role)

	// Повторная регистрация с тем же email
	_, err = f.svc.Register(nil, &dto.RegisterRequest{
		Name:     "Другой",
		Email:    "aigerim@example.com",
		Password: "password123",
		Role:     models.UserRoleBuyer,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(nil, &dto.RegisterRequest{
		Name:     "Тест",
		Email:    "weak@example.com",
		Password: "short",
		Role:     models.UserRoleBuyer,
	})
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(nil, &dto.RegisterRequest{
		Name:     "Хакер",
		Email:    "admin@example.com",
		Password: "password123",
		Role:     models.UserRoleAdmin,
	})
	require.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	resp, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int((15 * time.Minute).Seconds()), resp.ExpiresIn)

	// Refresh-токен записан в БД вместе с метаданными устройства
	row := f.tokens.byHash(auth.HashToken(resp.RefreshToken))
	require.NotNil(t, row)
	assert.Equal(t, user.ID, row.UserID)
	assert.Equal(t, "device-1", row.DeviceID)
	assert.Equal(t, "10.0.0.1", row.IP)
	assert.False(t, row.IsRevoked)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	_, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "wrong-pass"}, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(nil, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"}, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

// Неверный пароль на забаненном аккаунте отдает те же invalid credentials,
// что и на живом: ответ не должен раскрывать статус аккаунта
func TestAuthService_Login_BannedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "banned@example.com", "password123", models.UserStatusBanned)

	_, err := f.svc.Login(nil, &dto.LoginRequest{Email: "banned@example.com", Password: "password123"}, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrAccountBanned)

	_, err = f.svc.Login(nil, &dto.LoginRequest{Email: "banned@example.com", Password: "wrong-pass"}, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	newMeta := dto.RequestMeta{IP: "10.0.0.2", UserAgent: "test-agent", DeviceID: "ignored", DeviceName: "ignored"}
	refreshed, err := f.svc.Refresh(nil, login.RefreshToken, newMeta)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Старая запись помечена ротированной и ссылается на новую
	oldRow := f.tokens.byHash(auth.HashToken(login.RefreshToken))
	newRow := f.tokens.byHash(auth.HashToken(refreshed.RefreshToken))
	require.NotNil(t, oldRow)
	require.NotNil(t, newRow)
	assert.True(t, oldRow.IsRevoked)
	require.NotNil(t, oldRow.ReplacedBy)
	assert.Equal(t, newRow.ID, *oldRow.ReplacedBy)

	// Устройство наследуется от ротированного токена, IP берется из запроса
	assert.Equal(t, "device-1", newRow.DeviceID)
	assert.Equal(t, "iPhone", newRow.DeviceName)
	assert.Equal(t, "10.0.0.2", newRow.IP)
	assert.False(t, newRow.IsRevoked)
}

func TestAuthService_Refresh_ReuseDetected(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(nil, login.RefreshToken, testMeta)
	require.NoError(t, err)

	// Повторное предъявление уже ротированного токена - кража
	_, err = f.svc.Refresh(nil, login.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenReuseDetected)

	// Вся семья сессий отозвана, включая свежевыданный токен
	assert.Equal(t, 0, f.tokens.countAlive(user.ID))
	_, err = f.svc.Refresh(nil, refreshed.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

// Прямой отзыв (logout) не каскадирует на другие сессии
func TestAuthService_Refresh_DirectlyRevoked(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	sessionA, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)
	sessionB, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), nil, "", sessionA.RefreshToken))

	_, err = f.svc.Refresh(nil, sessionA.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// Вторая сессия жива
	assert.Equal(t, 1, f.tokens.countAlive(user.ID))
	_, err = f.svc.Refresh(nil, sessionB.RefreshToken, testMeta)
	assert.NoError(t, err)
}

func TestAuthService_Refresh_BannedUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	require.NoError(t, f.users.UpdateStatus(nil, user.ID, models.UserStatusBanned))

	_, err = f.svc.Refresh(nil, login.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrAccountBanned)

	// Предъявленный токен погашен
	row := f.tokens.byHash(auth.HashToken(login.RefreshToken))
	require.NotNil(t, row)
	assert.True(t, row.IsRevoked)
}

// Подпись валидна, но строки в БД нет (например, удалил sweep).
// Токен принимается, новая пара выдается без ротации.
func TestAuthService_Refresh_UntrackedToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	f.tokens.deleteByHash(auth.HashToken(login.RefreshToken))

	refreshed, err := f.svc.Refresh(nil, login.RefreshToken, testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.RefreshToken)
	assert.NotNil(t, f.tokens.byHash(auth.HashToken(refreshed.RefreshToken)))
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	_, err = f.svc.Refresh(nil, login.AccessToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrWrongTokenType)
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	f.clock.Advance(31 * 24 * time.Hour)

	_, err = f.svc.Refresh(nil, login.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestAuthService_Refresh_Garbage(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Refresh(nil, "not-a-jwt", testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

// Гонка двух одновременных refresh: проигравший не должен оставить
// свою свежую запись живой, и вся семья отзывается
func TestAuthService_Refresh_ConcurrentLoser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	// Конкурент успевает отозвать строку между FindByHash и MarkRotated
	f.tokens.beforeMarkRotated = func() {
		f.tokens.beforeMarkRotated = nil
		require.NoError(t, f.tokens.RevokeByHash(nil, auth.HashToken(login.RefreshToken)))
	}

	_, err = f.svc.Refresh(nil, login.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenReuseDetected)
	assert.Equal(t, 0, f.tokens.countAlive(user.ID))
}

func TestAuthService_LogoutAll(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.tokens.countAlive(user.ID))

	require.NoError(t, f.svc.LogoutAll(context.Background(), nil, user.ID, ""))
	assert.Equal(t, 0, f.tokens.countAlive(user.ID))
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), nil, user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong-pass",
		NewPassword:     "new-password-456",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.svc.ChangePassword(context.Background(), nil, user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "new-password-456",
	})
	require.NoError(t, err)

	// Старые сессии отозваны, новый пароль работает
	_, err = f.svc.Refresh(nil, login.RefreshToken, testMeta)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "new-password-456"}, testMeta)
	assert.NoError(t, err)
}

func TestAuthService_Sessions(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "buyer@example.com", "password123", models.UserStatusActive)

	login, err := f.svc.Login(nil, &dto.LoginRequest{Email: "buyer@example.com", Password: "password123"}, testMeta)
	require.NoError(t, err)
	_, err = f.svc.Refresh(nil, login.RefreshToken, testMeta)
	require.NoError(t, err)

	sessions, err := f.svc.Sessions(nil, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var alive, revoked int
	for _, s := range sessions {
		if s.IsRevoked {
			revoked++
		} else {
			alive++
		}
		assert.Equal(t, "device-1", s.DeviceID)
	}
	assert.Equal(t, 1, alive)
	assert.Equal(t, 1, revoked)
}
