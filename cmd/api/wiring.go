package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-secretary/internal/api/router"
	"github.com/wolfman30/clinic-secretary/internal/app/bootstrap"
	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/internal/catalog"
	"github.com/wolfman30/clinic-secretary/internal/clinic"
	appconfig "github.com/wolfman30/clinic-secretary/internal/config"
	"github.com/wolfman30/clinic-secretary/internal/dialoglog"
	"github.com/wolfman30/clinic-secretary/internal/events"
	"github.com/wolfman30/clinic-secretary/internal/observability/metrics"
	"github.com/wolfman30/clinic-secretary/internal/reminders"
	"github.com/wolfman30/clinic-secretary/internal/secretary"
	"github.com/wolfman30/clinic-secretary/internal/validation"
	"github.com/wolfman30/clinic-secretary/internal/webchat"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// infra carries the optional backing services; nil members select the
// in-memory fallbacks.
type infra struct {
	redis   *redis.Client
	pool    *pgxpool.Pool
	sqlDB   *sql.DB
	metrics *metrics.SecretaryMetrics
}

func setupMetrics() (http.Handler, *metrics.SecretaryMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSecretaryMetrics(reg)
}

func buildRouterConfig(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, deps infra) *router.Config {
	defaults := bootstrap.ClinicDefaults(cfg)
	clinicStore := bootstrap.BuildClinicStore(deps.redis, defaults)
	cat := bootstrap.LoadCatalog(ctx, deps.pool, logger)

	var repo booking.Repository = booking.NewInMemoryRepository()
	if deps.pool != nil {
		repo = booking.NewPostgresRepository(deps.pool)
	}

	ruleOpts := validation.Options{
		Buffer:      cfg.BookingBuffer,
		HorizonDays: cfg.MaxBookingHorizonDays,
	}
	slotOpts := []validation.SlotFinderOption{
		validation.WithSlotStep(cfg.SlotStep),
		validation.WithSlotObserver(deps.metrics),
	}
	if deps.redis != nil {
		slotOpts = append(slotOpts, validation.WithSlotCache(validation.NewRedisSlotCache(deps.redis, cfg.SlotCacheTTL)))
	}
	validator := validation.NewValidator(cat,
		validation.NewChecker(clinicStore, repo, ruleOpts),
		validation.NewSlotFinder(clinicStore, repo, ruleOpts, slotOpts...),
	)

	bookingOpts := booking.Options{
		Observer: deps.metrics,
		Logger:   logger,
	}
	var reminderStore *reminders.Store
	if deps.pool != nil {
		bookingOpts.Publisher = events.NewOutboxStore(deps.pool)
		reminderStore = reminders.NewStore(deps.pool)
		bookingOpts.Reminders = reminders.NewScheduler(reminderStore, nil, logger)
	}
	bookings := booking.NewService(repo, validator, bookingOpts)

	var sessions secretary.SessionStore = secretary.NewMemorySessionStore(cfg.SessionTTL)
	if deps.redis != nil {
		sessions = secretary.NewRedisSessionStore(deps.redis, cfg.SessionTTL)
	}
	secOpts := secretary.Options{
		Observer: deps.metrics,
		Logger:   logger,
	}
	var dialogStore *dialoglog.Store
	if deps.sqlDB != nil {
		dialogStore = dialoglog.NewStore(deps.sqlDB)
		secOpts.DialogLog = dialogStore
	}
	sec := secretary.New(validator, bookings, sessions, secOpts)

	routerCfg := &router.Config{
		Logger:              logger,
		HTTPObserver:        deps.metrics,
		CatalogHandler:      catalog.NewHandler(cat, logger),
		BookingHandler:      booking.NewHandler(bookings, logger),
		SecretaryHandler:    secretary.NewHandler(sec, logger),
		WebChat:             webchat.NewHandler(sec, logger),
		ClinicHandler:       clinic.NewHandler(clinicStore, logger),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ChatRateLimitPerSec: cfg.ChatRateLimitPerSec,
		ChatRateLimitBurst:  cfg.ChatRateLimitBurst,
	}
	if dialogStore != nil {
		routerCfg.AnalyticsHandler = dialoglog.NewHandler(dialogStore, defaults.Location(), logger)
	}
	if reminderStore != nil {
		routerCfg.RemindersHandler = reminders.NewHandler(reminderStore, logger)
	}
	return routerCfg
}
