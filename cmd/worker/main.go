package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admissions_crm_backend/internal/assignment"
	"admissions_crm_backend/internal/config"
	"admissions_crm_backend/internal/email"
	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/internal/leads"
	"admissions_crm_backend/internal/notification"
	"admissions_crm_backend/internal/scheduler"
	"admissions_crm_backend/platform/db"
	"admissions_crm_backend/platform/logger"
	"admissions_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	var rdb *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
		rdb = redis.NewClient(opt)
		defer func() { _ = rdb.Close() }()
	}

	sender := initEmailSender(cfg, log)
	notification.NewModule(sender, eventBus, log)

	// Worker-side wiring: the scoring and assignment engines run without HTTP
	// handlers, driven by queued tasks. Enqueuers stay nil; the worker is the
	// consumer, not a producer.
	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, log, nil)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	assignmentModule := assignment.NewModule(pool, rdb, cfg.StatsCacheTTL, eventBus, val, log, nil)

	worker, err := scheduler.NewWorker(cfg, leadsModule.ScoringService(), assignmentModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func initEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.EmailEnabled() {
		log.Warn("SMTP not configured; assignment notification emails disabled")
		return email.NoopSender{}
	}

	return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFromAddress, cfg.EmailFromName)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
