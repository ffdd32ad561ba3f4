package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// Keys under which the current session is kept in the state store.
const (
	SessionTokenKey = "session.token"
	SessionUserKey  = "session.user"
)

// CredentialStore exposes user credential lookup operations required by the auth service.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
}

// StateStore is the key/value store holding the current session.
type StateStore interface {
	GetState(ctx context.Context, keys ...string) (map[string]string, error)
	PutState(ctx context.Context, entries map[string]string) error
	DeleteState(ctx context.Context, keys ...string) error
}

// AuthService coordinates login, logout, and the single stored session.
type AuthService struct {
	credentials CredentialStore
	state       StateStore
	passwords   PasswordScheme
	tokens      *TokenIssuer
	logger      *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, state StateStore, passwords PasswordScheme, tokens *TokenIssuer) *AuthService {
	return NewAuthServiceWithLogger(credentials, state, passwords, tokens, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, state StateStore, passwords PasswordScheme, tokens *TokenIssuer, logger *slog.Logger) *AuthService {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	return &AuthService{
		credentials: credentials,
		state:       state,
		passwords:   passwords,
		tokens:      tokens,
		logger:      defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// sessionUser is the JSON form of the stored user entry.
type sessionUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthenticateUser looks up the user by email and checks the password. Lookup
// failures are logged and reported the same way as a mismatch.
func (s *AuthService) AuthenticateUser(ctx context.Context, email, password string) (User, bool) {
	if s == nil || s.credentials == nil {
		return User{}, false
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, false
	}

	creds, err := s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, persistence.ErrNotFound) {
			s.loggerWith(ctx, "AuthenticateUser", "email", email).
				ErrorContext(ctx, "credential lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
		return User{}, false
	}
	if err := s.passwords.Verify(creds.Password, password); err != nil {
		return User{}, false
	}
	return creds.User, true
}

// Login verifies credentials and replaces the stored session.
func (s *AuthService) Login(ctx context.Context, email, password string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login", "email", normalizeEmail(email))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", session.User.ID).InfoContext(ctx, "login succeeded")
	}()

	user, ok := s.AuthenticateUser(ctx, email, password)
	if !ok {
		err = ErrInvalidCredentials
		return
	}

	session, err = s.StartSession(ctx, user)
	return
}

// StartSession issues a token for user and stores it together with the user
// in one write, replacing any previous session.
func (s *AuthService) StartSession(ctx context.Context, user User) (Session, error) {
	if s.tokens == nil {
		return Session{}, fmt.Errorf("token issuer not configured")
	}
	if s.state == nil {
		return Session{}, fmt.Errorf("state store not configured")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	encoded, err := json.Marshal(sessionUser{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Department: user.Department,
	})
	if err != nil {
		return Session{}, fmt.Errorf("encode session user: %w", err)
	}

	if err := s.state.PutState(ctx, map[string]string{
		SessionTokenKey: token,
		SessionUserKey:  string(encoded),
	}); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	return Session{Token: token, User: user, ExpiresAt: expiresAt}, nil
}

// Logout removes the stored session. It succeeds when none is stored.
func (s *AuthService) Logout(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.state == nil {
		return fmt.Errorf("state store not configured")
	}

	logger := s.loggerWith(ctx, "Logout")
	if err := s.state.DeleteState(ctx, SessionTokenKey, SessionUserKey); err != nil {
		logger.ErrorContext(ctx, "failed to clear session", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session cleared")
	return nil
}

// RestoreSession loads the stored session. It returns ErrNotFound when no
// session is stored, and clears the entries and returns ErrSessionExpired
// when the stored token no longer verifies.
func (s *AuthService) RestoreSession(ctx context.Context) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RestoreSession")
	defer func() {
		switch {
		case errors.Is(err, ErrNotFound):
			logger.InfoContext(ctx, "no stored session")
		case err != nil:
			logger.WarnContext(ctx, "stored session discarded", "error", err, "error_kind", ErrorKind(err))
		default:
			logger.With("user_id", session.User.ID, "expires_at", session.ExpiresAt).InfoContext(ctx, "session restored")
		}
	}()

	session, err = s.loadSession(ctx)
	if errors.Is(err, ErrSessionExpired) {
		if clearErr := s.state.DeleteState(ctx, SessionTokenKey, SessionUserKey); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
	}
	return
}

// ValidateSession verifies that token is the stored session token and
// returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.loadSession(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	if session.Token != trimmed {
		err = ErrUnauthorized
		return
	}

	principal = Principal{UserID: session.User.ID, Email: session.User.Email, Name: session.User.Name}
	return
}

// PruneExpiredSession clears the stored session when its token has expired
// or no longer verifies. It reports whether anything was removed.
func (s *AuthService) PruneExpiredSession(ctx context.Context) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("AuthService is nil")
	}

	_, err := s.loadSession(ctx)
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return false, nil
	case !errors.Is(err, ErrSessionExpired):
		return false, err
	}

	logger := s.loggerWith(ctx, "PruneExpiredSession")
	if err := s.state.DeleteState(ctx, SessionTokenKey, SessionUserKey); err != nil {
		logger.ErrorContext(ctx, "failed to prune session", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	logger.InfoContext(ctx, "expired session pruned")
	return true, nil
}

// loadSession reads and verifies the stored entries. Any stored value that
// cannot be trusted is reported as ErrSessionExpired.
func (s *AuthService) loadSession(ctx context.Context) (Session, error) {
	if s.state == nil {
		return Session{}, fmt.Errorf("state store not configured")
	}
	if s.tokens == nil {
		return Session{}, fmt.Errorf("token issuer not configured")
	}

	values, err := s.state.GetState(ctx, SessionTokenKey, SessionUserKey)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	token, hasToken := values[SessionTokenKey]
	rawUser, hasUser := values[SessionUserKey]
	if !hasToken && !hasUser {
		return Session{}, ErrNotFound
	}
	if !hasToken || !hasUser {
		return Session{}, fmt.Errorf("%w: incomplete session entries", ErrSessionExpired)
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	var stored sessionUser
	if err := json.Unmarshal([]byte(rawUser), &stored); err != nil {
		return Session{}, fmt.Errorf("%w: unreadable session user: %v", ErrSessionExpired, err)
	}
	if stored.ID != claims.UserID {
		return Session{}, fmt.Errorf("%w: session user does not match token", ErrSessionExpired)
	}

	return Session{
		Token:     token,
		User:      User{ID: stored.ID, Email: stored.Email, Name: stored.Name, Department: stored.Department},
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
