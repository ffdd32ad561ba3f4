package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

var authNow = time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestIssuer(now *time.Time) *TokenIssuer {
	return NewTokenIssuer([]byte("secret"), time.Hour, func() time.Time { return *now }, func() string { return "jti" })
}

func newTestAuthService(creds CredentialStore, state StateStore, now *time.Time) *AuthService {
	return NewAuthService(creds, state, PlainPasswords{}, newTestIssuer(now))
}

func demoCredentials() *credentialStoreStub {
	return &credentialStoreStub{credentials: UserCredentials{
		User:     User{ID: "1", Email: "demo@company.com", Name: "Demo User", Department: "Engineering"},
		Password: "123456",
	}}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("stores token and user in one write", func(t *testing.T) {
		t.Parallel()

		now := authNow
		state := newStateStoreStub()
		svc := newTestAuthService(demoCredentials(), state, &now)

		session, err := svc.Login(context.Background(), " Demo@Company.com ", "123456")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if session.User.ID != "1" || session.Token == "" {
			t.Fatalf("unexpected session %+v", session)
		}
		if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected expiry in one hour, got %v", session.ExpiresAt)
		}
		if state.putCalls != 1 {
			t.Fatalf("expected a single PutState call, got %d", state.putCalls)
		}
		if state.values[SessionTokenKey] != session.Token {
			t.Fatal("expected token to be stored")
		}

		var stored map[string]any
		if err := json.Unmarshal([]byte(state.values[SessionUserKey]), &stored); err != nil {
			t.Fatalf("stored user is not JSON: %v", err)
		}
		if _, ok := stored["password"]; ok {
			t.Fatal("expected stored user without password")
		}
		if stored["email"] != "demo@company.com" {
			t.Fatalf("unexpected stored email %v", stored["email"])
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		now := authNow
		state := newStateStoreStub()
		_, err := newTestAuthService(demoCredentials(), state, &now).Login(context.Background(), "demo@company.com", "nope")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if len(state.values) != 0 {
			t.Fatal("expected no session stored")
		}
	})

	t.Run("lookup failure is reported as invalid credentials", func(t *testing.T) {
		t.Parallel()

		now := authNow
		creds := &credentialStoreStub{err: persistence.ErrBusy}
		_, err := newTestAuthService(creds, newStateStoreStub(), &now).Login(context.Background(), "demo@company.com", "123456")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("state write failure propagates", func(t *testing.T) {
		t.Parallel()

		now := authNow
		state := newStateStoreStub()
		state.putErr = persistence.ErrBusy
		_, err := newTestAuthService(demoCredentials(), state, &now).Login(context.Background(), "demo@company.com", "123456")
		if !errors.Is(err, persistence.ErrBusy) {
			t.Fatalf("expected ErrBusy, got %v", err)
		}
	})
}

func TestAuthService_AuthenticateUser(t *testing.T) {
	t.Parallel()

	now := authNow
	svc := newTestAuthService(demoCredentials(), newStateStoreStub(), &now)

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{name: "match", email: "demo@company.com", password: "123456", want: true},
		{name: "empty password", email: "demo@company.com", password: "", want: false},
		{name: "empty email", email: " ", password: "123456", want: false},
		{name: "mismatch", email: "demo@company.com", password: "654321", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := svc.AuthenticateUser(context.Background(), tt.email, tt.password)
			if ok != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, ok)
			}
		})
	}
}

func TestAuthService_SessionLifecycle(t *testing.T) {
	t.Parallel()

	now := authNow
	state := newStateStoreStub()
	svc := newTestAuthService(demoCredentials(), state, &now)
	ctx := context.Background()

	if _, err := svc.RestoreSession(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before login, got %v", err)
	}

	session, err := svc.Login(ctx, "demo@company.com", "123456")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	restored, err := svc.RestoreSession(ctx)
	if err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if restored.User.Email != "demo@company.com" || restored.Token != session.Token {
		t.Fatalf("unexpected restored session %+v", restored)
	}

	principal, err := svc.ValidateSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if principal.UserID != "1" || principal.Name != "Demo User" {
		t.Fatalf("unexpected principal %+v", principal)
	}

	if _, err := svc.ValidateSession(ctx, "other-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign token, got %v", err)
	}
	if _, err := svc.ValidateSession(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if _, err := svc.ValidateSession(ctx, session.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestAuthService_ExpiredSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("restore clears expired entries", func(t *testing.T) {
		t.Parallel()

		now := authNow
		state := newStateStoreStub()
		svc := newTestAuthService(demoCredentials(), state, &now)
		session, err := svc.Login(ctx, "demo@company.com", "123456")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		now = now.Add(2 * time.Hour)
		if _, err := svc.ValidateSession(ctx, session.Token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if _, err := svc.RestoreSession(ctx); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if len(state.values) != 0 {
			t.Fatalf("expected entries cleared, got %v", state.values)
		}
	})

	t.Run("prune removes only expired sessions", func(t *testing.T) {
		t.Parallel()

		now := authNow
		state := newStateStoreStub()
		svc := newTestAuthService(demoCredentials(), state, &now)
		if _, err := svc.Login(ctx, "demo@company.com", "123456"); err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		pruned, err := svc.PruneExpiredSession(ctx)
		if err != nil || pruned {
			t.Fatalf("expected live session kept, got pruned=%v err=%v", pruned, err)
		}

		now = now.Add(90 * time.Minute)
		pruned, err = svc.PruneExpiredSession(ctx)
		if err != nil || !pruned {
			t.Fatalf("expected expired session pruned, got pruned=%v err=%v", pruned, err)
		}
		if len(state.values) != 0 {
			t.Fatalf("expected entries cleared, got %v", state.values)
		}

		pruned, err = svc.PruneExpiredSession(ctx)
		if err != nil || pruned {
			t.Fatalf("expected nothing to prune, got pruned=%v err=%v", pruned, err)
		}
	})

	t.Run("corrupt user entry is discarded", func(t *testing.T) {
		t.Parallel()

		now := authNow
		state := newStateStoreStub()
		svc := newTestAuthService(demoCredentials(), state, &now)
		if _, err := svc.Login(ctx, "demo@company.com", "123456"); err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		state.values[SessionUserKey] = "{not json"

		if _, err := svc.RestoreSession(ctx); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if len(state.values) != 0 {
			t.Fatalf("expected entries cleared, got %v", state.values)
		}
	})
}

// credentialStoreStub implements CredentialStore for tests.
type credentialStoreStub struct {
	credentials UserCredentials
	err         error
}

func (c *credentialStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	if c.err != nil {
		return UserCredentials{}, c.err
	}
	if c.credentials.User.ID == "" || c.credentials.User.Email != email {
		return UserCredentials{}, persistence.ErrNotFound
	}
	return c.credentials, nil
}

// stateStoreStub provides an in-memory StateStore for tests.
type stateStoreStub struct {
	values   map[string]string
	putCalls int

	getErr    error
	putErr    error
	deleteErr error
}

func newStateStoreStub() *stateStoreStub {
	return &stateStoreStub{values: make(map[string]string)}
}

func (s *stateStoreStub) GetState(ctx context.Context, keys ...string) (map[string]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *stateStoreStub) PutState(ctx context.Context, entries map[string]string) error {
	s.putCalls++
	if s.putErr != nil {
		return s.putErr
	}
	for k, v := range entries {
		s.values[k] = v
	}
	return nil
}

func (s *stateStoreStub) DeleteState(ctx context.Context, keys ...string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
