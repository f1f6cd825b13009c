package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/medpractice-client/internal/api/http/handlers"
	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	State         *handlers.StateHandler
	Auth          *handlers.AuthHandler
	Patients      *handlers.PatientsHandler
	Appointments  *handlers.AppointmentsHandler
	Doctors       *handlers.DoctorsHandler
	Gate          *auth.Gate
	Metrics       *observability.Metrics
	AccessKeyHash string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	console := app.Group("", auth.RequireAccessKey(cfg.AccessKeyHash))

	console.Get("/state", cfg.State.Get)
	console.Get("/state/admit", cfg.State.Admit)

	authGroup := console.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/oauth2/redirect", cfg.Auth.OAuth2Redirect)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Delete("/error", cfg.Auth.ClearError)

	profile := authGroup.Group("", auth.Guard(cfg.Gate, "profile"))
	profile.Get("/me", cfg.Auth.Me)
	profile.Put("/profile", cfg.Auth.UpdateProfile)
	profile.Post("/profile/photo", cfg.Auth.UploadPhoto)

	patients := console.Group("/patients", auth.Guard(cfg.Gate, "patients"))
	patients.Get("/", cfg.Patients.List)
	patients.Post("/", cfg.Patients.Create)
	patients.Get("/search", cfg.Patients.Search)
	patients.Get("/export/:format", cfg.Patients.Export)
	patients.Delete("/error", cfg.Patients.ClearError)
	patients.Delete("/current", cfg.Patients.ClearCurrent)
	patients.Get("/:id", cfg.Patients.Get)
	patients.Put("/:id", cfg.Patients.Update)
	patients.Delete("/:id", cfg.Patients.Delete)
	patients.Put("/:id/archive", cfg.Patients.Archive)
	patients.Put("/:id/reactivate", cfg.Patients.Reactivate)

	appointments := console.Group("/appointments", auth.Guard(cfg.Gate, "appointments"))
	appointments.Get("/", cfg.Appointments.List)
	appointments.Post("/", cfg.Appointments.Create)
	appointments.Delete("/error", cfg.Appointments.ClearError)
	appointments.Get("/patient/:id", cfg.Appointments.ByPatient)
	appointments.Get("/doctor/:id", cfg.Appointments.ByDoctor)
	appointments.Get("/:id", cfg.Appointments.Get)
	appointments.Put("/:id", cfg.Appointments.Update)
	appointments.Delete("/:id", cfg.Appointments.Delete)
	appointments.Put("/:id/confirm", cfg.Appointments.Confirm)
	appointments.Put("/:id/cancel", cfg.Appointments.Cancel)
	appointments.Put("/:id/complete", cfg.Appointments.Complete)

	// Doctors publish their own availability outside the doctors area.
	console.Post("/doctors/my-availability", auth.RequireSession(cfg.Gate), cfg.Doctors.SetMyAvailability)

	doctors := console.Group("/doctors", auth.Guard(cfg.Gate, "doctors"))
	doctors.Get("/", cfg.Doctors.List)
	doctors.Get("/:id", cfg.Doctors.Get)
	doctors.Get("/:id/availability", cfg.Doctors.Availability)
	doctors.Get("/:id/available-slots", cfg.Doctors.AvailableSlots)
}
