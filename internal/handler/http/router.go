package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the environment-dependent router settings.
type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Jobs       JobsHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-engine"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/time-in", h.Attendance.TimeIn)
			r.Post("/time-out", h.Attendance.TimeOut)
			r.Get("/logs", h.Attendance.ListMyLogs)
			r.Get("/exceptions", h.Attendance.ListMyExceptions)
		})

		r.Route("/leave", func(r chi.Router) {
			r.Route("/types", func(r chi.Router) {
				r.Get("/", h.Leave.ListTypes)
				r.Get("/{id}", h.Leave.GetType)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Leave.CreateType)
					r.Patch("/{id}", h.Leave.UpdateType)
					r.Delete("/{id}", h.Leave.DeactivateType)
				})
			})

			r.Get("/balances", h.Leave.GetMyBalances)

			r.Route("/applications", func(r chi.Router) {
				r.Post("/", h.Leave.SubmitApplication)
				r.Get("/", h.Leave.ListMyApplications)
				r.Get("/{id}", h.Leave.GetApplication)
				r.Get("/{id}/days", h.Leave.ListApplicationDays)
			})

			r.Route("/application-days", func(r chi.Router) {
				r.Post("/cancel", h.Leave.CancelDays)
				r.With(middleware.AdminOnly).Post("/status", h.Leave.UpdateDayStatus)
			})

			r.Route("/grant-requests", func(r chi.Router) {
				r.Post("/", h.Leave.FileGrantRequest)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Leave.ListGrantRequests)
					r.Post("/{id}/review", h.Leave.ReviewGrantRequest)
				})
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.Leave.ListTransactions)
				r.Get("/export", h.Leave.ExportTransactions)
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Leave.ListHolidays)
				r.With(middleware.AdminOnly).Post("/", h.Leave.CreateHoliday)
			})
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly)

			r.Route("/employees/{id}", func(r chi.Router) {
				r.Post("/leave-grants", h.Leave.GrantEmployeeLeave)
				r.Get("/leave-balances", h.Leave.GetEmployeeBalances)
			})

			r.Route("/admin/jobs", func(r chi.Router) {
				r.Post("/accrue-monthly", h.Jobs.AccrueMonthly)
				r.Post("/carry-over", h.Jobs.CarryOver)
			})
		})
	})
	return r
}
