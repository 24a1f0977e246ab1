package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge/portal/internal/http/handlers"
	httpmiddleware "github.com/carebridge/portal/internal/http/middleware"
	"github.com/carebridge/portal/internal/session"
	"github.com/carebridge/portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Sessions       *session.Manager
	Home           *handlers.HomeHandler
	Auth           *handlers.AuthHandler
	Patient        *handlers.PatientHandler
	Doctor         *handlers.DoctorHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.LoadSession(cfg.Sessions))

	// Public pages
	r.Get("/", cfg.Home.Home)
	r.Get("/login", cfg.Auth.LoginPage)
	r.Post("/login", cfg.Auth.LoginSubmit)
	r.Get("/register", cfg.Auth.RegisterPage)
	r.Post("/register", cfg.Auth.RegisterSubmit)
	r.Post("/logout", cfg.Auth.Logout)

	// Patient area
	r.Route("/patient", func(patient chi.Router) {
		patient.Use(httpmiddleware.RequireRole(session.RolePatient))
		patient.Get("/dashboard", cfg.Patient.Dashboard)
		patient.Post("/appointments/book", cfg.Patient.Book)
		patient.Get("/appointments", cfg.Patient.Appointments)
		patient.Get("/appointments/{id}/cancel", cfg.Patient.CancelConfirm)
		patient.Post("/appointments/{id}/cancel", cfg.Patient.Cancel)
	})

	// Doctor area
	r.Route("/doctor", func(doctor chi.Router) {
		doctor.Use(httpmiddleware.RequireRole(session.RoleDoctor))
		doctor.Get("/dashboard", cfg.Doctor.Dashboard)
		doctor.Get("/appointments/{id}/status", cfg.Doctor.StatusConfirm)
		doctor.Post("/appointments/{id}/status", cfg.Doctor.StatusUpdate)
	})

	r.Handle("/static/*", handlers.Static())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
