package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/expiryguard/expiryguard/internal/config"
	"github.com/expiryguard/expiryguard/internal/httpserver"
	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/notify"
	"github.com/expiryguard/expiryguard/internal/reconcile"
	"github.com/expiryguard/expiryguard/internal/redis"
	"github.com/expiryguard/expiryguard/internal/scheduler"
	redisstore "github.com/expiryguard/expiryguard/internal/store/redis"
	"github.com/expiryguard/expiryguard/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	cronTrigger  *scheduler.CronTrigger
	seedReloader *scheduler.SeedReloader
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	dispatcher := buildDispatcher(cfg, loggerClient)
	if !dispatcher.Configured() {
		loggerClient.Warn("no notification channel configured, runs will evaluate but deliver nothing")
	}

	job := reconcile.New(store, dispatcher, loggerClient, cfg.LookaheadDays, cfg.SchedulerEnabled)

	// Manual run trigger channel (HTTP endpoint -> cron trigger loop)
	runTrigger := make(chan struct{}, 1)

	cronTrigger, err := scheduler.NewCronTrigger(scheduler.Config{
		Enabled:  cfg.SchedulerEnabled,
		Cron:     cfg.ScheduleCron,
		Timezone: cfg.ScheduleTZ,
	}, job, loggerClient, runTrigger)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule: %w", err)
	}

	// Seed reloader (if a seed file is configured)
	var seedReloader *scheduler.SeedReloader
	var seedReloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		seedReloadTrigger = make(chan struct{}, 1)
		seedReloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			store,
			loggerClient,
			cfg.SeedInterval,
			seedReloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, inventory comes from the API only")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		RedisClient:       redisClient,
		Store:             store,
		Dispatcher:        dispatcher,
		Job:               job,
		RunTrigger:        runTrigger,
		SeedReloadTrigger: seedReloadTrigger,
		ScheduleCron:      cfg.ScheduleCron,
		ScheduleTZ:        cfg.ScheduleTZ,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		redisClient:  redisClient,
		cronTrigger:  cronTrigger,
		seedReloader: seedReloader,
	}, nil
}

// buildDispatcher assembles the notification channels enabled in config.
func buildDispatcher(cfg *config.Config, log logger.Logger) *notify.Dispatcher {
	var email notify.Notifier
	if cfg.EmailEnabled && cfg.SMTPHost != "" {
		email = notify.NewEmail(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.NotifyTimeout,
		})
		log.Info("email channel enabled", logger.String("host", cfg.SMTPHost))
	}

	var webhooks []notify.Notifier
	if cfg.WebhookEnabled {
		if cfg.SlackWebhookURL != "" {
			webhooks = append(webhooks, notify.NewSlack(cfg.SlackWebhookURL, cfg.NotifyTimeout))
			log.Info("slack channel enabled")
		}
		if cfg.DiscordWebhookURL != "" {
			webhooks = append(webhooks, notify.NewDiscord(cfg.DiscordWebhookURL, cfg.NotifyTimeout))
			log.Info("discord channel enabled")
		}
		if cfg.GenericWebhookURL != "" {
			webhooks = append(webhooks, notify.NewGenericWebhook(cfg.GenericWebhookURL, cfg.NotifyTimeout))
			log.Info("generic webhook channel enabled")
		}
	}

	return notify.NewDispatcher(log, email, webhooks)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting ExpiryGuard v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("ExpiryGuard %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start seed reloader first so the initial run sees the inventory
	if a.seedReloader != nil {
		if err := a.seedReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.SeedInterval))
	}

	// Start the cron trigger (schedule + manual trigger loop)
	if err := a.cronTrigger.Start(ctx); err != nil {
		return fmt.Errorf("failed to start schedule: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.cronTrigger.Stop()

	if a.seedReloader != nil {
		a.seedReloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ ExpiryGuard stopped cleanly")
	return nil
}
