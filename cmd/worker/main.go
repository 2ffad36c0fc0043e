// Package main is the entry point for the Study Buddy background
// worker.
//
// The worker owns the scheduled jobs:
// - Nightly recommendation refresh: reruns the pipeline for every
//   registered student so references track score changes.
// - Dead-link sweep: reprobes persisted references and prunes rows
//   whose links went dead since the last refresh.
//
// The API server reacts to traffic; the worker keeps the stored
// recommendations fresh without it.
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
	"github.com/study-buddy/study-buddy-backend/internal/application/eventhandler"
	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/anthropic"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/linkcheck"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/messaging"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/persistence/postgres"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/persistence/redis"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/scheduler"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/scheduler/jobs"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/service"
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
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting study buddy worker",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled; nothing for the worker to do")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. DATABASE CONNECTION
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

	// Migrations run in the server binary; the worker assumes the
	// schema is current.

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
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
			log.Warn("failed to connect to Redis, cache invalidation disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	// On the Redis bus the server instances also see refresh and prune
	// events, so their local caches stay in step with the jobs.
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
	// 5. PIPELINE DEPENDENCIES
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

	studentRepo := postgres.NewStudentRepository(dbConn)
	recRepo := postgres.NewRecommendationRepository(dbConn)

	runner := pipeline.NewRunner(
		service.NewStudentProfileSource(studentRepo),
		service.NewReferenceGenerator(llmClient),
		service.NewLinkValidator(linkChecker),
		recRepo,
		eventBus,
		log,
	)

	// The worker also invalidates its side of the caches when a refresh
	// lands, so the subscriptions mirror the server's cache handlers.
	var recCache recommendation.Cache
	if redisCache != nil {
		recCache = redis.NewRecommendationCache(redisCache)
	}
	refreshed := eventhandler.NewOnRecommendationsRefreshedHandler(recCache, log)
	pruned := eventhandler.NewOnRecommendationPrunedHandler(recCache, log)
	if err := eventBus.Subscribe(refreshed.EventType(), refreshed.Handle); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}
	if err := eventBus.Subscribe(pruned.EventType(), pruned.Handle); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SCHEDULER AND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing scheduler...")
	sched := scheduler.New(scheduler.Config{
		Logger:            log,
		Timezone:          cfg.App.Location,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
	})

	refreshJob := jobs.NewRefreshRecommendationsJob(
		studentRepo, runner, log, jobs.DefaultRefreshRecommendationsConfig())
	if err := sched.Register(refreshJob, scheduler.Every(cfg.Scheduler.RefreshRecommendationsInterval)); err != nil {
		return fmt.Errorf("failed to register refresh job: %w", err)
	}

	sweepJob := jobs.NewSweepDeadLinksJob(recRepo, linkChecker, eventBus, log, jobs.SweepDeadLinksConfig{
		MinAge:     cfg.Scheduler.SweepMinAge,
		BatchLimit: cfg.Scheduler.SweepBatchLimit,
		Timeout:    cfg.Scheduler.JobTimeout,
	})
	if err := sched.Register(sweepJob, scheduler.Every(cfg.Scheduler.SweepDeadLinksInterval)); err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. RUN AND GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("study buddy worker is running",
		"refresh_interval", cfg.Scheduler.RefreshRecommendationsInterval.String(),
		"sweep_interval", cfg.Scheduler.SweepDeadLinksInterval.String(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
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
