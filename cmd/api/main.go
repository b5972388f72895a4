package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediseen/teleconsult-api/config"
	"github.com/mediseen/teleconsult-api/internal/handler"
	appointmentHandler "github.com/mediseen/teleconsult-api/internal/handler/appointment"
	authHandler "github.com/mediseen/teleconsult-api/internal/handler/auth"
	bookingHandler "github.com/mediseen/teleconsult-api/internal/handler/booking"
	doctorHandler "github.com/mediseen/teleconsult-api/internal/handler/doctor"
	hospitalHandler "github.com/mediseen/teleconsult-api/internal/handler/hospital"
	triageHandler "github.com/mediseen/teleconsult-api/internal/handler/triage"
	"github.com/mediseen/teleconsult-api/internal/middleware"
	"github.com/mediseen/teleconsult-api/internal/repository/postgres"
	"github.com/mediseen/teleconsult-api/internal/router"
	appointmentService "github.com/mediseen/teleconsult-api/internal/service/appointment"
	authService "github.com/mediseen/teleconsult-api/internal/service/auth"
	bookingService "github.com/mediseen/teleconsult-api/internal/service/booking"
	doctorService "github.com/mediseen/teleconsult-api/internal/service/doctor"
	eventService "github.com/mediseen/teleconsult-api/internal/service/event"
	hospitalService "github.com/mediseen/teleconsult-api/internal/service/hospital"
	paymentService "github.com/mediseen/teleconsult-api/internal/service/payment"
	profileService "github.com/mediseen/teleconsult-api/internal/service/profile"
	slotService "github.com/mediseen/teleconsult-api/internal/service/slot"
	triageService "github.com/mediseen/teleconsult-api/internal/service/triage"
	"github.com/mediseen/teleconsult-api/pkg/auth"
	"github.com/mediseen/teleconsult-api/pkg/logger"
	"github.com/mediseen/teleconsult-api/pkg/metrics"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:   logger.InfoLevel,
		Service: "teleconsult-api",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("teleconsult", "api")

	// Repositories
	doctorRepo := postgres.NewDoctorRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(patientRepo, jwtSvc, time.Duration(cfg.JWT.ExpiryHours)*time.Hour, log)
	resolver := profileService.NewService(doctorRepo, cfg.Booking.ProfileCacheTTL, cfg.Booking.FetchTimeout, log)
	doctorSvc := doctorService.NewService(doctorRepo, resolver)
	hospitalSvc := hospitalService.NewService(hospitalRepo)
	eventSvc := eventService.NewService(outboxRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, eventSvc, log)
	catalog := slotService.NewCatalog(cfg.Booking.UnavailableSlots)
	processor := paymentService.NewSimulator(cfg.Payment.Latency, cfg.Payment.ApprovalRate)
	triageClient := triageService.NewClient(cfg.Triage, log)

	bookingManager := bookingService.NewManager(
		resolver,
		catalog,
		processor,
		appointmentSvc,
		bookingService.ManagerConfig{
			SessionTTL:   cfg.Booking.SessionTTL,
			FetchTimeout: cfg.Booking.FetchTimeout,
		},
		log,
		m,
	)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		doctorHandler.NewHandler(doctorSvc),
		hospitalHandler.NewHandler(hospitalSvc),
		bookingHandler.NewHandler(bookingManager, catalog),
		appointmentHandler.NewHandler(appointmentSvc),
		triageHandler.NewHandler(triageClient),
		h,
		log,
		router.RouterConfig{
			RateLimit:      rateLimitConfig(cfg),
			CORSConfig:     corsConfig(cfg),
			RequestTimeout: cfg.Server.WriteTimeout,
			MetricsPrefix:  "teleconsult",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimiterConfig {
	if !cfg.RateLimit.Enabled {
		return middleware.RateLimiterConfig{}
	}
	return middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		Burst: cfg.RateLimit.Burst,
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	return corsCfg
}
