package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/room-booking/internal/application"
)

const testToken = "valid-token"

var testPrincipal = application.Principal{UserID: "u1", Email: "alice@example.com", Name: "Alice"}

type fakeSessionValidator struct {
	principal application.Principal
	err       error
}

func (f fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	if f.err != nil {
		return application.Principal{}, f.err
	}
	if token != testToken {
		return application.Principal{}, application.ErrSessionExpired
	}
	return f.principal, nil
}

type fakeAuthService struct {
	session   application.Session
	err       error
	logoutErr error
	email     string
	loggedOut bool
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (application.Session, error) {
	f.email = email
	return f.session, f.err
}

func (f *fakeAuthService) Logout(ctx context.Context) error {
	f.loggedOut = true
	return f.logoutErr
}

type fakeRegistrationService struct {
	session application.Session
	err     error
	input   application.RegisterInput
}

func (f *fakeRegistrationService) Register(ctx context.Context, input application.RegisterInput) (application.Session, error) {
	f.input = input
	return f.session, f.err
}

type fakeRoomService struct {
	rooms []application.Room
}

func (f *fakeRoomService) ListRooms(ctx context.Context) []application.Room {
	return f.rooms
}

func (f *fakeRoomService) GetRoom(ctx context.Context, roomID string) (application.Room, error) {
	for _, room := range f.rooms {
		if room.ID == roomID {
			return room, nil
		}
	}
	return application.Room{}, application.ErrNotFound
}

type fakeBookingService struct {
	created     application.Booking
	createErr   error
	params      application.CreateBookingParams
	list        []application.Booking
	mutateErr   error
	mutatedID   string
	cancelled   bool
	deleted     bool
	calendar    string
	calendarErr error
	day         application.DayAvailability
	dayErr      error
	dayDate     string
}

func (f *fakeBookingService) CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error) {
	f.params = params
	return f.created, f.createErr
}

func (f *fakeBookingService) ListMyBookings(ctx context.Context, principal application.Principal) []application.Booking {
	return f.list
}

func (f *fakeBookingService) CancelBooking(ctx context.Context, principal application.Principal, bookingID string) error {
	f.mutatedID = bookingID
	f.cancelled = f.mutateErr == nil
	return f.mutateErr
}

func (f *fakeBookingService) DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error {
	f.mutatedID = bookingID
	f.deleted = f.mutateErr == nil
	return f.mutateErr
}

func (f *fakeBookingService) ExportCalendar(ctx context.Context, principal application.Principal, w io.Writer) error {
	if f.calendarErr != nil {
		return f.calendarErr
	}
	_, err := io.WriteString(w, f.calendar)
	return err
}

func (f *fakeBookingService) DayAvailability(ctx context.Context, roomID, date string) (application.DayAvailability, error) {
	f.dayDate = date
	if f.dayErr != nil {
		return application.DayAvailability{}, f.dayErr
	}
	day := f.day
	day.RoomID = roomID
	day.Date = date
	return day, nil
}

type testServer struct {
	handler  http.Handler
	auth     *fakeAuthService
	users    *fakeRegistrationService
	rooms    *fakeRoomService
	bookings *fakeBookingService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &testServer{
		auth:  &fakeAuthService{},
		users: &fakeRegistrationService{},
		rooms: &fakeRoomService{rooms: []application.Room{
			{ID: "1", Name: "Aurora", Capacity: 8, Floor: "3F", Amenities: []string{"Projector"}},
			{ID: "2", Name: "Borealis", Capacity: 4, Floor: "2F"},
		}},
		bookings: &fakeBookingService{},
	}
	s.handler = NewRouter(RouterConfig{
		Auth:           NewAuthHandler(s.auth, s.users, logger),
		Rooms:          NewRoomHandler(s.rooms, s.bookings, func() string { return "2030-03-11" }, logger),
		Bookings:       NewBookingHandler(s.bookings, logger),
		Sessions:       fakeSessionValidator{principal: testPrincipal},
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         logger,
	})
	return s
}

func (s *testServer) do(method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}
