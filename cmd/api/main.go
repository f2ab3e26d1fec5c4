package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agendahub/agendahub/pkg/config"
	"github.com/agendahub/agendahub/pkg/email"
	"github.com/agendahub/agendahub/pkg/httpserver"
	"github.com/agendahub/agendahub/pkg/logger"
	"github.com/agendahub/agendahub/pkg/pg"
	"github.com/agendahub/agendahub/pkg/pix"
	"github.com/agendahub/agendahub/pkg/ratelimiter"
	"github.com/agendahub/agendahub/pkg/redis"
	"github.com/agendahub/agendahub/pkg/schedule"

	billingmodule "github.com/agendahub/agendahub/modules/billing"
	"github.com/agendahub/agendahub/svc/billing"
	"github.com/agendahub/agendahub/svc/organization"
	"github.com/agendahub/agendahub/svc/plan"
	"github.com/agendahub/agendahub/svc/user"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	// EmailNotifications switches from log-only notifications to Postmark.
	EmailNotifications bool `env:"EMAIL_NOTIFICATIONS" envDefault:"false"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "agendahub-api"))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.ErrorContext(ctx, "api exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var pixCfg pix.Config
	config.MustLoad(&pixCfg)
	gateway, err := pix.NewClient(pixCfg)
	if err != nil {
		return err
	}

	catalog, err := plan.NewCatalog(ctx, plan.NewPGSource(pool))
	if err != nil {
		return err
	}

	orgs := organization.NewPGStore(pool)
	users := user.NewPGStore(pool)
	ledger := billing.NewPGLedgerStore(pool)

	notifier, err := buildNotifier(appCfg, users, log)
	if err != nil {
		return err
	}

	svc := billing.NewService(orgs, users, catalog, gateway, ledger, notifier,
		billing.WithLogger(log))
	analytics := billing.NewAnalytics(billing.NewPGAnalyticsStore(pool), orgs, ledger, catalog,
		billing.WithAnalyticsLogger(log))

	renewal := billing.NewRenewalJob(orgs, users, catalog, gateway, ledger, notifier,
		billing.WithRenewalLogger(log))

	runner := schedule.NewRunner(schedule.WithLogger(log))
	if err := runner.AddJob("renewal-scan", schedule.DailyAt(0, 0), renewal.Run); err != nil {
		return err
	}
	go func() {
		if err := runner.Start(ctx); err != nil {
			log.ErrorContext(ctx, "scheduler stopped", logger.Error(err))
		}
	}()

	// The provider retries webhooks aggressively; allow bursts but keep a
	// sane steady rate per source IP.
	webhookLimiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(redisClient, "webhook"),
		ratelimiter.Config{Capacity: 30, RefillRate: 10, RefillInterval: time.Minute},
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool), redis.Healthcheck(redisClient)))
	r.Mount("/api", billingmodule.Router(billingmodule.RouterOptions{
		Service:        svc,
		Analytics:      analytics,
		Users:          users,
		WebhookLimiter: webhookLimiter,
	}))

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	server := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	log.InfoContext(ctx, "starting api server",
		slog.String("addr", httpCfg.Addr),
		slog.String("environment", appCfg.Environment),
	)
	return server.Run(ctx, r)
}

func buildNotifier(appCfg appConfig, users user.Store, log *slog.Logger) (billing.Notifier, error) {
	if !appCfg.EmailNotifications {
		return billing.NewLogNotifier(log), nil
	}

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	sender, err := email.NewPostmarkClient(emailCfg)
	if err != nil {
		return nil, err
	}
	return billing.NewEmailNotifier(sender, users, log), nil
}
