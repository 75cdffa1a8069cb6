package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moura-tracker/timeclock/internal/config"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	appHTTP "github.com/moura-tracker/timeclock/internal/handler/http"
	"github.com/moura-tracker/timeclock/internal/pkg/backend"
	"github.com/moura-tracker/timeclock/internal/pkg/cron"
	"github.com/moura-tracker/timeclock/internal/pkg/database"
	"github.com/moura-tracker/timeclock/internal/pkg/jwt"
	"github.com/moura-tracker/timeclock/internal/pkg/sse"
	"github.com/moura-tracker/timeclock/internal/repository/api"
	"github.com/moura-tracker/timeclock/internal/repository/postgresql"
	adminService "github.com/moura-tracker/timeclock/internal/service/admin"
	serviceAuth "github.com/moura-tracker/timeclock/internal/service/auth"
	historyService "github.com/moura-tracker/timeclock/internal/service/history"
	"github.com/moura-tracker/timeclock/internal/service/report"
	shiftService "github.com/moura-tracker/timeclock/internal/service/shift"
	workService "github.com/moura-tracker/timeclock/internal/service/work"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Writes always go through the backend API
	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	workPeriodAPI := api.NewWorkPeriodRepository(client)
	employeeAPI := api.NewEmployeeRepository(client)

	var (
		periodReader   workperiod.Reader           = workPeriodAPI
		employeeReader employee.EmployeeRepository = employeeAPI
	)
	if cfg.App.RecordSource == config.RecordSourcePostgres {
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			slog.Error("Error connecting to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		periodReader = postgresql.NewWorkPeriodRepository(db)
		employeeReader = postgresql.NewEmployeeRepository(db)
	}
	slog.Info("Record source selected", "source", cfg.App.RecordSource)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	shiftTarget := cfg.ShiftTarget()
	classifier := shiftService.NewClassifier(shiftTarget)
	engine := shiftService.NewEngine(shiftTarget)
	watcher := shiftService.NewWatcher(classifier, cfg.Shift.TickInterval)
	renderer := report.NewRenderer()

	authSvc := serviceAuth.NewAuthService(api.NewAuthenticator(client), JWTService)
	workSvc := workService.NewWorkService(periodReader, workPeriodAPI, classifier, hub)
	historySvc := historyService.NewHistoryService(periodReader, classifier, engine, renderer)
	adminSvc := adminService.NewAdminService(employeeReader, employeeAPI, classifier, renderer)

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		appHTTP.NewAuthHandler(authSvc),
		appHTTP.NewWorkHandler(workSvc, hub, watcher),
		appHTTP.NewHistoryHandler(historySvc),
		appHTTP.NewAdminHandler(adminSvc),
	)

	scheduler := cron.NewScheduler()
	if err := scheduler.AddJob("purge revoked tokens", cfg.Jobs.RevokedTokenPurgeInterval, cron.PurgeRevokedTokens(JWTService)); err != nil {
		slog.Error("Error registering cron job", "error", err)
		os.Exit(1)
	}
	if err := scheduler.AddJob("report open streams", cfg.Jobs.RevokedTokenPurgeInterval, cron.ReportOpenStreams(hub)); err != nil {
		slog.Error("Error registering cron job", "error", err)
		os.Exit(1)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// No write timeout: live streams stay open for the whole shift. Requests share
	// ctx so a shutdown signal also ends the open streams.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
