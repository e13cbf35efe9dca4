package main

import (
	"academic_records/internal/api"
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"academic_records/internal/common/security"
	"academic_records/internal/domain/repository"
	"academic_records/internal/platform/cache"
	"academic_records/internal/platform/config"
	"academic_records/internal/platform/database"
	"academic_records/internal/platform/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Initialize Logger
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("configuration loaded", zap.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("database connected")

	// 4. Initialize Revocation Store
	var revocations repository.RevocationRepository = repository.NopRevocationRepository{}
	if cfg.TokenRevocationEnabled {
		rdb, err := cache.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		revocations = repository.NewRedisRevocationRepository(rdb, cfg.JWTExp)
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	} else {
		log.Warn("token revocation disabled; logout will not invalidate tokens")
	}

	// 5. Initialize Security
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	codec, err := security.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExp)
	if err != nil {
		return err
	}

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	studentRepo := repository.NewPgStudentRepository(db)
	professorRepo := repository.NewPgProfessorRepository(db)
	disciplineRepo := repository.NewPgDisciplineRepository(db)
	classRepo := repository.NewPgClassRepository(db)
	enrollmentRepo := repository.NewPgEnrollmentRepository(db)
	gradeRepo := repository.NewPgGradeRepository(db)

	// 7. Initialize Services
	services := api.Services{
		Auth:        service.NewAuthService(userRepo, revocations, hasher, codec, log),
		Users:       service.NewUserService(userRepo, revocations, hasher, log),
		Students:    service.NewStudentService(studentRepo),
		Professors:  service.NewProfessorService(professorRepo),
		Disciplines: service.NewDisciplineService(disciplineRepo),
		Classes:     service.NewClassService(classRepo, disciplineRepo, professorRepo),
		Enrollments: service.NewEnrollmentService(enrollmentRepo, studentRepo, classRepo),
		Grades:      service.NewGradeService(gradeRepo, studentRepo, classRepo),
	}

	if cfg.BootstrapAdmin {
		created, err := service.BootstrapAdmin(ctx, userRepo, hasher, log, service.BootstrapAdminOptions{
			Username:     cfg.BootstrapAdminUsername,
			Email:        cfg.BootstrapAdminEmail,
			PasswordPath: cfg.InitialAdminPasswordPath,
		})
		if err != nil {
			return err
		}
		if !created {
			log.Info("administrator already present; bootstrap skipped")
		}
	}

	// 8. Initialize Router & HTTP Server
	resolver := middleware.NewResolver(codec, revocations, log)
	router := api.NewRouter(services, resolver, log, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("could not listen on %s: %w", cfg.APIPort, err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
