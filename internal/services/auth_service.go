package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not logged in")
)

// Session is an issued login token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService handles sign-up, log-in and session lookup.
type AuthService struct {
	users      UserStore
	sessionTTL time.Duration
	cost       int
	now        func() time.Time
	logger     *log.Logger

	// compared against when the email is unknown so both paths cost a hash
	dummyHash []byte
}

func NewAuthService(users UserStore, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithCost(users, sessionTTL, bcrypt.DefaultCost)
}

// NewAuthServiceWithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func NewAuthServiceWithCost(users UserStore, sessionTTL time.Duration, cost int) *AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("walletnote-dummy-password"), cost)
	return &AuthService{
		users:      users,
		sessionTTL: sessionTTL,
		cost:       cost,
		now:        time.Now,
		logger:     log.WithComponent(log.ComponentAuth),
		dummyHash:  dummy,
	}
}

// SignUp creates an account with the default currency and logs it in.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (core.User, Session, error) {
	if err := core.ValidateSignUp(username, email, password); err != nil {
		return core.User{}, Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, strings.TrimSpace(username), core.NormalizeEmail(email), string(hash), core.DefaultCurrency)
	if err != nil {
		return core.User{}, Session{}, err
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return core.User{}, Session{}, err
	}

	s.logger.InfoContext(ctx, "User signed up", log.FieldUserID, user.ID, log.FieldOperation, log.OpSignUp)
	return user, session, nil
}

// Login checks the password and issues a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, Session, error) {
	user, err := s.users.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return core.User{}, Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Failed login", log.FieldUserID, user.ID, log.FieldOperation, log.OpLogin)
		return core.User{}, Session{}, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return core.User{}, Session{}, err
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID, log.FieldOperation, log.OpLogin)
	return user, session, nil
}

// Logout forgets a session token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.users.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, ErrUnauthenticated
	}
	user, err := s.users.SessionUser(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrUnauthenticated
	}
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "Expired sessions purged", "count", n)
	}
	return n, nil
}

func (s *AuthService) issueSession(ctx context.Context, userID int64) (Session, error) {
	session := Session{
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.users.CreateSession(ctx, session.Token, userID, session.ExpiresAt); err != nil {
		return Session{}, err
	}
	return session, nil
}
