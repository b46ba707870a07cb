package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go-gin-invitation/internal/auth"
	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/notify"
	"go-gin-invitation/internal/repository"
	apperrors "go-gin-invitation/pkg/app_errors"
	"go-gin-invitation/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinPasswordLength    = 6
	verificationTokenTTL = 24 * time.Hour
)

// AuthEvent 登入狀態變化
type AuthEvent string

const (
	AuthEventSignedIn    AuthEvent = "SIGNED_IN"
	AuthEventSignedOut   AuthEvent = "SIGNED_OUT"
	AuthEventUserUpdated AuthEvent = "USER_UPDATED"
)

type AuthListener func(event AuthEvent, session *model.Session)

type AuthService interface {
	// SignUp 註冊；需要驗證 email 時 Session 為 nil 且 VerificationRequired 為 true
	SignUp(ctx context.Context, email, password string) (*model.AuthResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*model.AuthResult, error)
	// GetSession 無效、過期或已登出的 token 回傳 (nil, nil)
	GetSession(ctx context.Context, token string) (*model.Session, error)
	SignOut(ctx context.Context, token string) error
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	OnAuthStateChange(listener AuthListener) (unsubscribe func())
}

type AuthConfig struct {
	SessionTTL               time.Duration
	RequireEmailVerification bool
	// PublicOrigin 用來組出 email 驗證連結
	PublicOrigin string
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	sessions auth.SessionStore
	issuer   *auth.JWTIssuer
	hasher   *auth.BcryptHasher
	mailer   notify.Mailer
	cfg      AuthConfig

	mu        sync.RWMutex
	listeners map[int]AuthListener
	nextID    int
}

func NewAuthService(
	users repository.UserRepository,
	sessions auth.SessionStore,
	issuer *auth.JWTIssuer,
	hasher *auth.BcryptHasher,
	mailer notify.Mailer,
	cfg AuthConfig,
) AuthService {
	return &AuthServiceImpl{
		users:     users,
		sessions:  sessions,
		issuer:    issuer,
		hasher:    hasher,
		mailer:    mailer,
		cfg:       cfg,
		listeners: make(map[int]AuthListener),
	}
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password string) (*model.AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateStruct(credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.Validation("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: !s.cfg.RequireEmailVerification,
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.RequireEmailVerification {
		s.sendVerification(ctx, user)
		return &model.AuthResult{User: user, VerificationRequired: true}, nil
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{User: user, Session: session}, nil
}

// sendVerification mails the verification link. The account already exists
// at this point, so a mail failure is logged instead of failing the sign-up.
func (s *AuthServiceImpl) sendVerification(ctx context.Context, user *model.User) {
	log := logger.WithComponent("service")

	token, _, err := s.issuer.Issue(user.ID, user.Email, auth.PurposeVerifyEmail, uuid.New(), verificationTokenTTL)
	if err != nil {
		log.Error("issue verification token failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}

	link := fmt.Sprintf("%s/api/v1/auth/verify?token=%s", strings.TrimRight(s.cfg.PublicOrigin, "/"), url.QueryEscape(token))
	text := fmt.Sprintf("Klik tautan berikut untuk memverifikasi email Anda:\n%s", link)
	html := fmt.Sprintf(`<p>Klik tautan berikut untuk memverifikasi email Anda:</p><p><a href="%s">Verifikasi email</a></p>`, link)

	if err := s.mailer.Send(ctx, user.Email, "Verifikasi email Anda", html, text); err != nil {
		log.Error("send verification email failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func (s *AuthServiceImpl) SignInWithPassword(ctx context.Context, email, password string) (*model.AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateStruct(credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if s.cfg.RequireEmailVerification && !user.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{User: user, Session: session}, nil
}

func (s *AuthServiceImpl) startSession(ctx context.Context, user *model.User) (*model.Session, error) {
	sessionID := uuid.New()
	token, expiresAt, err := s.issuer.Issue(user.ID, user.Email, auth.PurposeSession, sessionID, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:          sessionID,
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.Backend(err)
	}

	s.emit(AuthEventSignedIn, session)
	return session, nil
}

func (s *AuthServiceImpl) GetSession(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.issuer.Parse(token, auth.PurposeSession)
	if err != nil {
		return nil, nil
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, nil
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, apperrors.Backend(err)
	}
	return session, nil
}

func (s *AuthServiceImpl) SignOut(ctx context.Context, token string) error {
	session, err := s.GetSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return apperrors.Backend(err)
	}
	s.emit(AuthEventSignedOut, session)
	return nil
}

func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.issuer.Parse(token, auth.PurposeVerifyEmail)
	if err != nil {
		return nil, apperrors.Validation("invalid or expired verification token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.Validation("invalid verification token subject")
	}

	user, err := s.users.MarkEmailVerified(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.emit(AuthEventUserUpdated, nil)
	return user, nil
}

func (s *AuthServiceImpl) OnAuthStateChange(listener AuthListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// emit calls listeners outside the lock so a listener may unsubscribe itself.
func (s *AuthServiceImpl) emit(event AuthEvent, session *model.Session) {
	s.mu.RLock()
	listeners := make([]AuthListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event, session)
	}
}
