package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/action"
	httptransport "github.com/spec-kit/medpractice-client/internal/api/http"
	"github.com/spec-kit/medpractice-client/internal/api/http/handlers"
	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/config"
	"github.com/spec-kit/medpractice-client/internal/credentials"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/httpclient"
	"github.com/spec-kit/medpractice-client/internal/observability"
	"github.com/spec-kit/medpractice-client/internal/service"
	"github.com/spec-kit/medpractice-client/internal/store"
	"github.com/spec-kit/medpractice-client/internal/worker"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-key" {
		os.Exit(hashKey(os.Args[2:]))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opened, err := credentials.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open credential store", zap.Error(err))
	}
	defer opened.Close()

	metrics := observability.NewMetrics()
	policy := store.Policy{FreshnessTTL: cfg.Store.FreshnessTTL, DiscardStale: cfg.Store.DiscardStale}

	session := store.NewAuth(ctx, credentials.NewStore(opened.Backend, logger), policy, logger)
	client := httpclient.New(httpclient.Options{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		RateLimitRPS: cfg.API.RateLimitRPS,
		RateBurst:    cfg.API.RateBurst,
		Tokens:       session,
		Logger:       logger,
		Metrics:      metrics,
	})

	dispatcher := events.NewInMemoryDispatcher()
	runner := action.NewRunner(dispatcher, logger, metrics)

	authService := service.NewAuthService(service.AuthDependencies{
		Gateway:    gateway.NewAuthGateway(client),
		Session:    session,
		Runner:     runner,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if cfg.Session.LogoutOnAuthFailure {
		runner.OnAuthFailure(authService.HandleAuthFailure)
	}

	patientService := service.NewPatientService(gateway.NewPatientGateway(client),
		store.NewCollection[domain.Patient]("patients", policy, logger), runner)
	appointmentService := service.NewAppointmentService(gateway.NewAppointmentGateway(client),
		store.NewCollection[domain.Appointment]("appointments", policy, logger), runner)
	doctorService := service.NewDoctorService(gateway.NewDoctorGateway(client),
		store.NewCollection[domain.Doctor]("doctors", policy, logger), runner)

	auditService := service.NewAuditService(dispatcher, logger, cfg.App.AuditBufferSize)
	worker.StartAuditWorker(auditService)

	gate := auth.NewGate(authService, logger)
	sessionWorker := worker.NewSessionWorker(authService, gate, cfg.Session.CheckInterval, cfg.Session.RefreshLeeway, logger)
	go sessionWorker.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Credentials.Backend, opened.Health),
		State: handlers.NewStateHandler(handlers.StateDependencies{
			Gate:         gate,
			Auth:         authService,
			Patients:     patientService,
			Appointments: appointmentService,
			Doctors:      doctorService,
			Audit:        auditService,
		}),
		Auth:          handlers.NewAuthHandler(authService, gate),
		Patients:      handlers.NewPatientsHandler(patientService),
		Appointments:  handlers.NewAppointmentsHandler(appointmentService),
		Doctors:       handlers.NewDoctorsHandler(doctorService),
		Gate:          gate,
		Metrics:       metrics,
		AccessKeyHash: cfg.App.AccessKeyHash,
	})

	go func() {
		logger.Info("console listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("api", cfg.API.BaseURL),
			zap.String("credentials", cfg.Credentials.Backend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// hashKey prints the bcrypt hash to put in CONSOLE_ACCESS_KEY_HASH.
func hashKey(args []string) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "usage: medconsole hash-key <key>")
		return 2
	}
	hashed, err := auth.HashAccessKey(args[0], 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash-key: %v\n", err)
		return 1
	}
	fmt.Println(hashed)
	return 0
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
