package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/moura-tracker/timeclock/internal/config"
	"github.com/moura-tracker/timeclock/internal/handler/http/middleware"
	"github.com/moura-tracker/timeclock/internal/pkg/jwt"
)

const appVersion = "v1.0.0"

func NewRouter(
	cfg *config.Config,
	JWTService jwt.Service,
	authHandler AuthHandler,
	workHandler WorkHandler,
	historyHandler HistoryHandler,
	adminHandler AdminHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock"),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/login", authHandler.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/session", authHandler.Session)

			r.Route("/me", func(r chi.Router) {
				r.Get("/shift-config", workHandler.ShiftConfig)
				r.Get("/status", workHandler.Status)
				r.Get("/stream", workHandler.Stream)
				r.Post("/check-in", workHandler.CheckIn)
				r.Post("/check-out", workHandler.CheckOut)

				r.Get("/history", historyHandler.List)
				r.Get("/history/pdf", historyHandler.ExportPDF)
				r.Get("/dashboard", historyHandler.Dashboard)
				r.Get("/weekly", historyHandler.Weekly)
				r.Get("/monthly", historyHandler.Monthly)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/team-status", adminHandler.TeamStatus)
				r.Get("/employees", adminHandler.ListEmployees)
				r.Put("/employees/{id}/schedule", adminHandler.UpdateSchedule)
				r.Get("/report", adminHandler.Report)
				r.Get("/report/pdf", adminHandler.ReportPDF)
				r.Get("/ranking", adminHandler.Ranking)
			})
		})
	})
	return r
}
