package services

import (
	"context"
	"time"

	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/email"
	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest, meta dto.RequestMeta) (*dto.AuthResponse, error)
	// Refresh ротирует refresh-токен: старый отзывается, выдается новая пара.
	// Повторное предъявление уже ротированного токена трактуется как кража
	// и отзывает все сессии пользователя.
	Refresh(db *gorm.DB, refreshToken string, meta dto.RequestMeta) (*dto.AuthResponse, error)
	Logout(ctx context.Context, db *gorm.DB, accessToken, refreshToken string) error
	LogoutAll(ctx context.Context, db *gorm.DB, userID, accessToken string) error
	Sessions(db *gorm.DB, userID string) ([]dto.SessionResponse, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	tokenRepo     repositories.RefreshTokenRepository
	codec         *auth.TokenCodec
	hasher        auth.PasswordHasher
	denylist      *auth.Denylist
	emailProvider email.Provider
	now           func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	codec *auth.TokenCodec,
	hasher auth.PasswordHasher,
	denylist *auth.Denylist,
	emailProvider email.Provider,
	now func() time.Time,
) AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthServiceImpl{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		codec:         codec,
		hasher:        hasher,
		denylist:      denylist,
		emailProvider: emailProvider,
		now:           now,
	}
}

// Register - регистрация нового пользователя
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	// Роль admin через регистрацию не выдается
	if req.Role != models.UserRoleBuyer && req.Role != models.UserRoleSeller {
		return nil, apperrors.ValidationError("role must be buyer or seller")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.UserStatusActive,
		Phone:        req.Phone,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.sendWelcomeEmail(user.Email, user.Name)

	return dto.NewUserResponse(user), nil
}

// Login - аутентификация пользователя и выдача пары токенов
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest, meta dto.RequestMeta) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	// Пароль проверяется ДО статуса: иначе ответ раскрывает,
	// что аккаунт существует и забанен
	if !s.hasher.Check(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.checkUserStatus(user); err != nil {
		return nil, err
	}

	return s.issueTokenPair(db, user, meta, nil)
}

// Refresh - обновление пары токенов по refresh-токену.
//
// Порядок проверок фиксирован: подпись -> тип -> пользователь -> статус ->
// запись в БД -> reuse -> отзыв -> ротация. Каждая проверка отсекает свой
// класс отказа, и только после всех старый токен помечается ротированным.
func (s *AuthServiceImpl) Refresh(db *gorm.DB, refreshToken string, meta dto.RequestMeta) (*dto.AuthResponse, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		if apperrors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	if claims.Type != auth.TokenTypeRefresh {
		return nil, apperrors.ErrWrongTokenType
	}

	user, err := s.userRepo.FindByID(db, claims.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	tokenHash := auth.HashToken(refreshToken)

	if user.Status == models.UserStatusBanned {
		// Токен забаненного пользователя гасим сразу
		if err := s.tokenRepo.RevokeByHash(db, tokenHash); err != nil {
			logger.Error("failed to revoke token of banned user", "error", err, "user_id", user.ID)
		}
		return nil, apperrors.ErrAccountBanned
	}

	stored, err := s.tokenRepo.FindByHash(db, tokenHash)
	if err != nil {
		if !apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.InternalError(err)
		}
		// Подпись валидна, но записи нет (например, строку удалил sweep
		// после истечения, а часы клиента спешат). Токен принимается,
		// новая пара выдается без ротации несуществующей строки.
		logger.Warn("refresh token valid but untracked", "user_id", user.ID)
		return s.issueTokenPair(db, user, meta, nil)
	}

	if stored.IsRevoked {
		if stored.ReplacedBy != nil {
			// Токен уже был ротирован и предъявлен снова - это кража
			// (легитимный клиент держит только последний токен цепочки).
			// Отзываем все сессии пользователя.
			logger.Warn("refresh token reuse detected, revoking all sessions",
				"user_id", user.ID, "token_id", stored.ID, "ip", meta.IP)
			if err := s.tokenRepo.RevokeAllForUser(db, user.ID); err != nil {
				return nil, apperrors.InternalError(err)
			}
			return nil, apperrors.ErrTokenReuseDetected
		}
		// Отозван напрямую (logout, "выйти везде") - без каскада
		return nil, apperrors.ErrTokenRevoked
	}

	return s.issueTokenPair(db, user, meta, stored)
}

// issueTokenPair выпускает новую пару токенов и сохраняет refresh в БД.
// При rotated != nil старая запись атомарно помечается ротированной;
// проигрыш гонки (строку уже отозвали) трактуется как reuse.
func (s *AuthServiceImpl) issueTokenPair(db *gorm.DB, user *models.User, meta dto.RequestMeta, rotated *models.RefreshToken) (*dto.AuthResponse, error) {
	accessToken, err := s.codec.SignAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, jti, expiresAt, err := s.codec.SignRefresh(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: expiresAt,
	}
	record.ID = jti
	s.fillDeviceInfo(record, meta, rotated)

	if err := s.tokenRepo.Create(db, record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if rotated != nil {
		ok, err := s.tokenRepo.MarkRotated(db, rotated.ID, record.ID, s.now())
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !ok {
			// Гонка: конкурентный refresh успел ротировать токен первым.
			// Наша свежая запись не должна остаться живой capability.
			if err := s.tokenRepo.RevokeByID(db, record.ID); err != nil {
				logger.Error("failed to revoke orphaned refresh token", "error", err, "token_id", record.ID)
			}
			logger.Warn("concurrent refresh lost the race, revoking all sessions",
				"user_id", user.ID, "token_id", rotated.ID)
			if err := s.tokenRepo.RevokeAllForUser(db, user.ID); err != nil {
				return nil, apperrors.InternalError(err)
			}
			return nil, apperrors.ErrTokenReuseDetected
		}
	}

	return &dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
	}, nil
}

// fillDeviceInfo наследует сведения об устройстве от ротируемого токена,
// чтобы сессия оставалась "той же" в списке устройств
func (s *AuthServiceImpl) fillDeviceInfo(record *models.RefreshToken, meta dto.RequestMeta, rotated *models.RefreshToken) {
	if rotated != nil {
		record.DeviceID = rotated.DeviceID
		record.DeviceName = rotated.DeviceName
	} else {
		record.DeviceID = meta.DeviceID
		record.DeviceName = meta.DeviceName
	}
	record.IP = meta.IP
	record.UserAgent = meta.UserAgent
}

// Logout - выход с текущего устройства. Refresh-токен отзывается в БД,
// access-токен уходит в денайлист на остаток своей жизни.
func (s *AuthServiceImpl) Logout(ctx context.Context, db *gorm.DB, accessToken, refreshToken string) error {
	if err := s.tokenRepo.RevokeByHash(db, auth.HashToken(refreshToken)); err != nil {
		return apperrors.InternalError(err)
	}
	s.denyAccessToken(ctx, accessToken)
	return nil
}

// LogoutAll - выход со всех устройств
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, db *gorm.DB, userID, accessToken string) error {
	if err := s.tokenRepo.RevokeAllForUser(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	s.denyAccessToken(ctx, accessToken)
	return nil
}

// Sessions - список сессий пользователя (активных и отозванных)
func (s *AuthServiceImpl) Sessions(db *gorm.DB, userID string) ([]dto.SessionResponse, error) {
	tokens, err := s.tokenRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sessions := make([]dto.SessionResponse, 0, len(tokens))
	for _, t := range tokens {
		session := dto.SessionResponse{
			ID:         t.ID,
			DeviceID:   t.DeviceID,
			DeviceName: t.DeviceName,
			IP:         t.IP,
			CreatedAt:  t.CreatedAt.Format(time.RFC3339),
			IsRevoked:  t.IsRevoked,
		}
		if t.LastUsedAt != nil {
			session.LastUsedAt = t.LastUsedAt.Format(time.RFC3339)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// ChangePassword - смена пароля. Все сессии отзываются:
// старые refresh-токены после смены пароля недействительны.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	if !s.hasher.Check(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(db, user); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.tokenRepo.RevokeAllForUser(db, userID); err != nil {
		logger.Error("failed to revoke sessions after password change", "error", err, "user_id", userID)
	}

	return nil
}

// checkUserStatus проверяет статус пользователя
func (s *AuthServiceImpl) checkUserStatus(user *models.User) error {
	switch user.Status {
	case models.UserStatusBanned:
		return apperrors.ErrAccountBanned
	case models.UserStatusPending:
		return apperrors.ErrAccountPending
	}
	return nil
}

// denyAccessToken гасит access-токен в денайлисте на остаток его жизни
func (s *AuthServiceImpl) denyAccessToken(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	claims, err := s.codec.Verify(accessToken)
	if err != nil || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.denylist.Revoke(ctx, accessToken, ttl); err != nil {
		logger.Error("failed to denylist access token", "error", err)
	}
}

// sendWelcomeEmail отправляет приветственное письмо
func (s *AuthServiceImpl) sendWelcomeEmail(to, name string) {
	if s.emailProvider == nil {
		return
	}

	go func() {
		body := "Здравствуйте, " + name + "!\n\nВаш аккаунт на Bazaar успешно создан."
		if err := s.emailProvider.Send([]string{to}, "Добро пожаловать в Bazaar", body); err != nil {
			logger.Error("failed to send welcome email", "error", err)
		}
	}()
}
