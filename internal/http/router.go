package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig wires handlers and middleware into NewRouter. Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Auth           *AuthHandler
	Rooms          *RoomHandler
	Bookings       *BookingHandler
	Sessions       SessionValidator
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the chi router for the booking API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	resp := newResponder(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           int((10 * time.Minute).Seconds()),
		}))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		resp.writeJSON(req.Context(), w, http.StatusNotFound, errorResponse{ErrorCode: codeNotFound, Message: statusMessage(http.StatusNotFound)})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		resp.writeJSON(req.Context(), w, http.StatusMethodNotAllowed, errorResponse{ErrorCode: codeMethodNotAllowed, Message: statusMessage(http.StatusMethodNotAllowed)})
	})

	if cfg.Auth != nil {
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
	}

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(RequireSession(cfg.Sessions, logger))
		}

		if cfg.Auth != nil {
			r.Post("/logout", cfg.Auth.Logout)
			r.Get("/session", cfg.Auth.Current)
		}

		if cfg.Rooms != nil {
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", cfg.Rooms.List)
				r.Get("/{roomID}", cfg.Rooms.Get)
				r.Get("/{roomID}/availability", cfg.Rooms.Availability)
			})
		}

		if cfg.Bookings != nil {
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", cfg.Bookings.List)
				r.Post("/", cfg.Bookings.Create)
				r.Get("/calendar.ics", cfg.Bookings.Calendar)
				r.Post("/{bookingID}/cancel", cfg.Bookings.Cancel)
				r.Delete("/{bookingID}", cfg.Bookings.Delete)
			})
		}
	})

	return r
}
