package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jhonnyxt/loantracker/modules/library"
	"github.com/jhonnyxt/loantracker/pkg/alarm"
	"github.com/jhonnyxt/loantracker/pkg/config"
	"github.com/jhonnyxt/loantracker/pkg/email"
	"github.com/jhonnyxt/loantracker/pkg/environment"
	"github.com/jhonnyxt/loantracker/pkg/httpserver"
	"github.com/jhonnyxt/loantracker/pkg/logger"
	"github.com/jhonnyxt/loantracker/pkg/mongo"
	"github.com/jhonnyxt/loantracker/pkg/notifications"
	"github.com/jhonnyxt/loantracker/pkg/pg"
	"github.com/jhonnyxt/loantracker/pkg/redis"
	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

type appConfig struct {
	ServiceName   string `env:"SERVICE_NAME" envDefault:"loantracker"`
	Environment   string `env:"APP_ENV" envDefault:"development"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"loantracker"`
	Timezone      string `env:"REMINDER_TIMEZONE"` // IANA name; empty means the host timezone

	OverdueDigestEvery time.Duration `env:"OVERDUE_DIGEST_EVERY" envDefault:"24h"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("service terminated", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, cfg.ServiceName),
		logger.WithContextExtractors(environment.LoggerExtractor()),
	)
	logger.SetAsDefault(log)
	ctx = environment.WithContext(ctx, environment.Environment(cfg.Environment))

	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid REMINDER_TIMEZONE: %w", err)
		}
	}

	// Stores.
	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	db, err := mongo.NewWithDatabase(ctx, mongoCfg, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	// Notification inbox: Postgres persistence, Redis real-time fan-out.
	storage, err := notifications.NewPGStorage(pool)
	if err != nil {
		return fmt.Errorf("notification storage: %w", err)
	}
	inbox, err := notifications.NewManager(storage,
		notifications.WithDeliverer(notifications.NewRedisDeliverer(redisClient)),
		notifications.WithManagerLogger(log),
	)
	if err != nil {
		return fmt.Errorf("notification manager: %w", err)
	}

	// Reminder core: dispatcher renders fires into the inbox, the alarm
	// registry calls the dispatcher when timers go off, the scheduler
	// registers the tiered reminder ladder.
	dispatcher, err := reminder.NewDispatcher(inbox, reminder.WithDispatcherLogger(log))
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	registry, err := alarm.NewRegistry[reminder.Payload](dispatcher.HandleFire, alarm.WithLogger(log))
	if err != nil {
		return fmt.Errorf("alarm registry: %w", err)
	}
	defer registry.Close()

	scheduler, err := reminder.NewScheduler(registry,
		reminder.WithPolicy(reminder.NewPolicy(reminder.WithPolicyLocation(loc))),
		reminder.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	// Outbound email.
	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	var sender email.EmailSender
	if emailCfg.DevMode {
		sender = email.NewDevSender(emailCfg.DevDir)
	} else {
		if sender, err = email.NewPostmarkClient(emailCfg); err != nil {
			return fmt.Errorf("email: %w", err)
		}
	}

	// Domain service over the Mongo repository. The repository also feeds
	// boot-time rehydration as the loan data source.
	repo := library.NewMongoRepository(db)
	svc, err := library.NewService(repo, scheduler,
		library.WithNotifier(inbox),
		library.WithEmailSender(sender),
		library.WithServiceLogger(log),
	)
	if err != nil {
		return fmt.Errorf("library service: %w", err)
	}

	rehydrator, err := reminder.NewRehydrator(repo, scheduler, reminder.WithRehydratorLogger(log))
	if err != nil {
		return fmt.Errorf("rehydrator: %w", err)
	}
	// The in-process alarm registry is empty after every restart, so the
	// boot signal runs unconditionally at startup.
	rehydrator.OnRestart(ctx)

	// Periodic overdue digest. Borrowers holding overdue copies get an
	// email once per sweep; failures stay inside the service.
	go func() {
		ticker := time.NewTicker(cfg.OverdueDigestEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := svc.SendOverdueDigest(ctx); err != nil {
					log.ErrorContext(ctx, "overdue digest sweep failed", slog.Any("error", err))
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(environment.Middleware(environment.Environment(cfg.Environment)))
	r.Mount("/", library.Router(library.RouterOptions{
		Service:    svc,
		Inbox:      inbox,
		Rehydrator: rehydrator,
		Healths: []library.HealthCheck{
			mongo.Healthcheck(db.Client()),
			pg.Healthcheck(pool),
			redis.Healthcheck(redisClient),
		},
		Logger: log,
	}))

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("http server listening", slog.String("addr", httpCfg.Addr))
		}),
	)
	if err := srv.Run(ctx, r); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
