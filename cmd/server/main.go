package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/auth"
	"github.com/heka-app/heka-server-go/internal/config"
	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/handler"
	"github.com/heka-app/heka-server-go/internal/jobs"
	"github.com/heka-app/heka-server-go/internal/mediation"
	"github.com/heka-app/heka-server-go/internal/middleware"
	"github.com/heka-app/heka-server-go/internal/redis"
	"github.com/heka-app/heka-server-go/internal/repository"
	"github.com/heka-app/heka-server-go/internal/safety"
	"github.com/heka-app/heka-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	coupleRepo := repository.NewCoupleRepository(db.DB)
	invitationRepo := repository.NewInvitationRepository(db.DB)
	argumentRepo := repository.NewArgumentRepository(db.DB)
	perspectiveRepo := repository.NewPerspectiveRepository(db.DB)
	insightRepo := repository.NewInsightRepository(db.DB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db.DB)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL())
	authority := auth.NewAuthority(db, refreshTokenRepo, cfg.RefreshTokenTTL())

	classifier := safety.NewClassifier(safety.DefaultRuleset())
	gateway := mediation.NewOpenAIGateway(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	mediator := mediation.NewMediator(classifier, gateway, insightRepo)

	authService := service.NewAuthService(userRepo, authority, tokenManager, cfg.AccessTokenTTL())
	coupleService := service.NewCoupleService(db, coupleRepo, invitationRepo)
	argumentService := service.NewArgumentService(argumentRepo, coupleRepo)
	perspectiveService := service.NewPerspectiveService(perspectiveRepo, argumentRepo, coupleRepo, insightRepo, mediator)

	authMiddleware := middleware.NewAuthMiddleware(tokenManager, userRepo)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(cfg.IsProduction())

	loginLimit := rateLimiter.Limit("login", config.LoginRateLimit, config.LoginRateWindow, middleware.SubjectIP)
	registerLimit := rateLimiter.Limit("register", config.RegisterRateLimit, config.RegisterRateWindow, middleware.SubjectIP)
	analyzeLimit := rateLimiter.Limit("analyze", config.AnalyzeRateLimit, config.AnalyzeRateWindow, middleware.SubjectUser)

	authHandler := handler.NewAuthHandler(authService)
	coupleHandler := handler.NewCoupleHandler(coupleService)
	argumentHandler := handler.NewArgumentHandler(argumentService, perspectiveService)
	mediationHandler := handler.NewMediationHandler(perspectiveService)
	safetyHandler := handler.NewSafetyHandler()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/safety/resources", safetyHandler.Resources)

		r.Mount("/auth", authHandler.Routes(authMiddleware.Handler, loginLimit, registerLimit))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)

			r.Mount("/couples", coupleHandler.Routes())
			r.Mount("/arguments", argumentHandler.Routes())
			r.Mount("/ai", mediationHandler.Routes(analyzeLimit))
		})
	})

	cleanupJob := jobs.NewCleanupJob(refreshTokenRepo, invitationRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
