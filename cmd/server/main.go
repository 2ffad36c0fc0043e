// Package main is the entry point for the Study Buddy API server.
//
// The server exposes the chat surface and the read-side REST endpoints,
// and runs the recommendation pipeline on demand. Scheduled refreshes
// live in the worker binary; this process only reacts to chat and HTTP
// traffic plus the quiz-evaluated event.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (commands, queries, pipeline)
// - Infrastructure: repositories, caches, external API clients
// - Interface: chat role router, HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/study-buddy/study-buddy-backend/config"
	"github.com/study-buddy/study-buddy-backend/internal/application/command"
	"github.com/study-buddy/study-buddy-backend/internal/application/eventhandler"
	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/application/query"
	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/anthropic"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/linkcheck"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/messaging"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/persistence/memory"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/persistence/postgres"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/persistence/redis"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/service"
	"github.com/study-buddy/study-buddy-backend/internal/interface/chat"
	httpserver "github.com/study-buddy/study-buddy-backend/internal/interface/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting study buddy server",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE CONNECTION (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	// Without Redis the caches stay nil (handlers skip the cache-aside
	// path), quizzes and chat sessions are held in process memory, and
	// events stay on the in-memory bus.
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES AND CACHES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	teacherRepo := postgres.NewTeacherRepository(dbConn)
	recRepo := postgres.NewRecommendationRepository(dbConn)
	resultRepo := postgres.NewResultRepository(dbConn)

	var (
		studentCache student.Cache
		recCache     recommendation.Cache
		averageCache query.AverageCache
		avgInval     eventhandler.AverageInvalidator
		quizStore    assessment.QuizStore
	)
	if redisCache != nil {
		studentCache = redis.NewStudentCache(redisCache)
		recCache = redis.NewRecommendationCache(redisCache)
		avgCache := redis.NewAverageCache(redisCache)
		averageCache = avgCache
		avgInval = avgCache
		quizStore = redis.NewQuizStore(redisCache)
	} else {
		quizStore = memory.NewQuizStore()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	localBusCfg := messaging.DefaultInMemoryEventBusConfig()
	localBusCfg.Logger = log

	var eventBus shared.EventBus
	if redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redisCache.Client(),
			LocalBusConfig: localBusCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		defer func() { _ = redisBus.Close() }()
		eventBus = redisBus
	} else {
		localBus := messaging.NewInMemoryEventBus(localBusCfg)
		defer func() { _ = localBus.Close() }()
		eventBus = localBus
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing external clients...")

	anthropicCfg := anthropic.DefaultClientConfig(cfg.Anthropic.APIKey)
	if cfg.Anthropic.Model != "" {
		anthropicCfg.Model = cfg.Anthropic.Model
	}
	anthropicCfg.MaxTokens = cfg.Anthropic.MaxTokens
	anthropicCfg.RequestTimeout = cfg.Anthropic.RequestTimeout
	anthropicCfg.RateLimiterConfig.RequestsPerSecond = float64(cfg.Anthropic.RateLimit) / 60.0
	anthropicCfg.RateLimiterConfig.BurstSize = cfg.Anthropic.RateLimitBurst
	anthropicCfg.Logger = log
	anthropicCfg.Debug = cfg.App.Debug
	llmClient := anthropic.NewClient(anthropicCfg)

	linkChecker := linkcheck.NewChecker(linkcheck.CheckerConfig{
		Timeout:      cfg.LinkCheck.Timeout,
		UserAgent:    cfg.LinkCheck.UserAgent,
		AllowedHosts: cfg.LinkCheck.AllowedHosts,
		Logger:       log,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 9. PIPELINE
	// ─────────────────────────────────────────────────────────────────────────
	runner := pipeline.NewRunner(
		service.NewStudentProfileSource(studentRepo),
		service.NewReferenceGenerator(llmClient),
		service.NewLinkValidator(linkChecker),
		recRepo,
		eventBus,
		log,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. APPLICATION LAYER (commands and queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")
	quizService := service.NewQuizService(llmClient)

	handlers := chat.Handlers{
		GetStudent:          query.NewGetStudentHandler(studentRepo, studentCache, 0),
		GetTeacher:          query.NewGetTeacherHandler(teacherRepo),
		GetClassAverage:     query.NewGetClassAverageHandler(teacherRepo, studentRepo, averageCache, 0),
		ListRecommendations: query.NewListRecommendationsHandler(studentRepo, recRepo, recCache, 0),
		GetStudentResults:   query.NewGetStudentResultsHandler(resultRepo),
		GenerateQuiz:        command.NewGenerateQuizHandler(studentRepo, quizService, quizStore, 0),
		EvaluateQuiz:        command.NewEvaluateQuizHandler(quizStore, quizService, resultRepo, eventBus),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")
	if err := registerEventHandlers(eventBus, registration{
		StudentRepo:  studentRepo,
		StudentCache: studentCache,
		RecCache:     recCache,
		AverageCache: avgInval,
		Refresher:    runner,
		Logger:       log,
	}); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. CHAT ROUTER AND HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing chat router...")
	var sessions chat.SessionStore
	if redisCache != nil {
		sessions = chat.NewRedisSessionStore(redis.NewSessionStore(redisCache))
	} else {
		sessions = chat.NewInMemorySessionStore(0)
	}

	router := chat.NewRouter(chat.RouterConfig{
		Sessions: sessions,
		Handlers: handlers,
		Pipeline: runner,
		Tutor:    service.NewTutorService(llmClient),
		Features: cfg.Features,
		Logger:   log,
	})

	log.Info("initializing HTTP server...")
	server := httpserver.NewServer(cfg.HTTP, httpserver.Dependencies{
		Chat: router,
		Queries: httpserver.Queries{
			ListRecommendations: handlers.ListRecommendations,
			GetClassAverage:     handlers.GetClassAverage,
		},
		Postgres: dbConn,
		Redis:    redisPinger(redisCache),
		Logger:   log,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 13. RUN AND GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("study buddy server is running", "addr", cfg.HTTP.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	// Event bus and connections close through the defers above.
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// registration bundles the event handler dependencies.
type registration struct {
	StudentRepo  student.Repository
	StudentCache student.Cache
	RecCache     recommendation.Cache
	AverageCache eventhandler.AverageInvalidator
	Refresher    eventhandler.RecommendationRefresher
	Logger       *slog.Logger
}

// registerEventHandlers subscribes the application event handlers.
func registerEventHandlers(bus shared.EventBus, reg registration) error {
	updated := eventhandler.NewOnStudentUpdatedHandler(
		reg.StudentRepo, reg.StudentCache, reg.RecCache, reg.AverageCache, reg.Logger)
	registered := eventhandler.NewOnStudentRegisteredHandler(reg.AverageCache, reg.Logger)
	refreshed := eventhandler.NewOnRecommendationsRefreshedHandler(reg.RecCache, reg.Logger)
	pruned := eventhandler.NewOnRecommendationPrunedHandler(reg.RecCache, reg.Logger)
	evaluated := eventhandler.NewOnQuizEvaluatedHandler(
		reg.Refresher, reg.Logger, eventhandler.DefaultQuizEvaluatedConfig())

	subscriptions := []struct {
		eventType shared.EventType
		handler   shared.EventHandler
	}{
		{updated.EventType(), updated.Handle},
		{registered.EventType(), registered.Handle},
		{refreshed.EventType(), refreshed.Handle},
		{pruned.EventType(), pruned.Handle},
		{evaluated.EventType(), evaluated.Handle},
	}

	for _, sub := range subscriptions {
		if err := bus.Subscribe(sub.eventType, sub.handler); err != nil {
			return err
		}
	}
	return nil
}

// redisPinger returns the cache as a health pinger, or nil when Redis
// is not configured. A typed nil would defeat the server's nil check.
func redisPinger(cache *redis.Cache) httpserver.Pinger {
	if cache == nil {
		return nil
	}
	return cache
}

// setupLogger configures structured logging from the observability
// settings and installs it as the process default.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Observability.LogLevel)}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Observability.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
