package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/application"
)

// TestSessionSecret signs tokens issued by factory-built auth services.
const TestSessionSecret = "test-session-secret"

// ServiceFactory builds application services on a shared Clock and
// IDGenerator so tests control time and identifiers.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Passwords   application.PasswordScheme
	SessionTTL  time.Duration
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory returns a factory at ReferenceTime with plain passwords.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Passwords:   application.PlainPasswords{},
		SessionTTL:  time.Hour,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Passwords == nil {
		factory.Passwords = application.PlainPasswords{}
	}
	return factory
}

// WithClock overrides the clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithPasswords overrides the password scheme.
func WithPasswords(passwords application.PasswordScheme) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Passwords = passwords
	}
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewTokenIssuer returns an issuer bound to the factory clock.
func (f *ServiceFactory) NewTokenIssuer() *application.TokenIssuer {
	return application.NewTokenIssuer([]byte(TestSessionSecret), f.SessionTTL, f.Clock.NowFunc(), f.IDGenerator.NextFunc())
}

// NewBookingService builds a booking service over bookings.
func (f *ServiceFactory) NewBookingService(bookings application.BookingRepository) *application.BookingService {
	return application.NewBookingServiceWithLogger(bookings, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), application.DefaultMaxAdvanceDays, f.Logger)
}

// NewRoomService builds a room service over rooms.
func (f *ServiceFactory) NewRoomService(rooms application.RoomRepository) *application.RoomService {
	return application.NewRoomServiceWithLogger(rooms, f.Logger)
}

// NewAuthService builds an auth service with a factory token issuer.
func (f *ServiceFactory) NewAuthService(credentials application.CredentialStore, state application.StateStore) *application.AuthService {
	return application.NewAuthServiceWithLogger(credentials, state, f.Passwords, f.NewTokenIssuer(), f.Logger)
}

// NewUserService builds a user service that logs new accounts in through sessions.
func (f *ServiceFactory) NewUserService(users application.UserRepository, sessions application.SessionStarter) *application.UserService {
	return application.NewUserServiceWithLogger(users, f.Passwords, sessions, f.IDGenerator.NextFunc(), f.Logger)
}
