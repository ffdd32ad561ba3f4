package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/example/room-booking/internal/persistence"
)

// Registration validation codes.
const (
	CodeRegistrationIncomplete = "missing_fields"
	CodePasswordTooShort       = "password_too_short"
	CodeInvalidEmail           = "invalid_email"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// DefaultDepartment is stored when registration omits a department.
	DefaultDepartment = "General"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, user UserCredentials) (User, error)
}

// SessionStarter opens a session for a freshly registered user.
type SessionStarter interface {
	StartSession(ctx context.Context, user User) (Session, error)
}

// UserService registers accounts.
type UserService struct {
	users       UserRepository
	passwords   PasswordScheme
	sessions    SessionStarter
	idGenerator func() string
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, passwords PasswordScheme, sessions SessionStarter, idGenerator func() string) *UserService {
	return NewUserServiceWithLogger(users, passwords, sessions, idGenerator, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, passwords PasswordScheme, sessions SessionStarter, idGenerator func() string, logger *slog.Logger) *UserService {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &UserService{
		users:       users,
		passwords:   passwords,
		sessions:    sessions,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// Register validates input, creates the account, and logs the new user in.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	input = normalizeRegisterInput(input)
	logger := serviceLogger(ctx, s.logger, "UserService", "Register", "email", input.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", session.User.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateRegisterInput(input); vErr != nil {
		err = vErr
		return
	}

	var stored string
	stored, err = s.passwords.Hash(input.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	var user User
	user, err = s.users.CreateUser(ctx, UserCredentials{
		User: User{
			ID:         s.idGenerator(),
			Email:      input.Email,
			Name:       input.Name,
			Department: input.Department,
		},
		Password: stored,
	})
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	if s.sessions == nil {
		session = Session{User: user}
		return
	}
	session, err = s.sessions.StartSession(ctx, user)
	return
}

func normalizeRegisterInput(input RegisterInput) RegisterInput {
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = DefaultDepartment
	}
	return RegisterInput{
		Name:       strings.TrimSpace(input.Name),
		Email:      normalizeEmail(input.Email),
		Password:   input.Password,
		Department: department,
	}
}

func validateRegisterInput(input RegisterInput) *ValidationError {
	switch {
	case input.Name == "" || input.Email == "" || input.Password == "":
		return ruleViolation(CodeRegistrationIncomplete, "registration", "Please fill all required fields")
	case utf8.RuneCountInString(input.Password) < MinPasswordLength:
		return ruleViolation(CodePasswordTooShort, "password", "Password must be at least 6 characters")
	case !emailPattern.MatchString(input.Email):
		return ruleViolation(CodeInvalidEmail, "email", "Please enter a valid email address")
	}
	return nil
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlreadyExists) || errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
