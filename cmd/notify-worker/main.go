package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/wolfman30/clinic-secretary/internal/app/bootstrap"
	"github.com/wolfman30/clinic-secretary/internal/booking"
	appconfig "github.com/wolfman30/clinic-secretary/internal/config"
	"github.com/wolfman30/clinic-secretary/internal/events"
	"github.com/wolfman30/clinic-secretary/internal/notify"
	"github.com/wolfman30/clinic-secretary/internal/reminders"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

const (
	dispatcherConsumer = "notify-worker"
	processedRetention = 7 * 24 * time.Hour
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("notify worker requires DATABASE_URL")
		os.Exit(1)
	}
	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("failed to connect postgres")
		os.Exit(1)
	}
	defer pool.Close()

	clinicCfg := bootstrap.ClinicDefaults(cfg)
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		if stored, err := bootstrap.BuildClinicStore(redisClient, clinicCfg).Get(ctx); err == nil {
			clinicCfg = stored
		} else {
			logger.Warn("clinic settings unavailable; using defaults", "error", err)
		}
		_ = redisClient.Close()
	}

	sender, provider := bootstrap.BuildEmailSender(ctx, cfg, logger)
	logger.Info("email sender configured", "provider", provider)
	notifier := notify.NewNotifier(sender, notify.NotifierConfig{
		ClinicName:    clinicCfg.Name,
		ClinicPhone:   clinicCfg.Phone,
		ClinicAddress: clinicCfg.Address,
		AdminEmails:   clinicCfg.AdminEmails,
		Location:      clinicCfg.Location(),
	}, logger)

	processed := events.NewProcessedStore(pool)
	handlers := events.Fanout{
		events.NewDispatcher(dispatcherConsumer, notifier, processed, logger),
	}
	if cfg.EventsQueueURL != "" {
		awsCfg, err := bootstrap.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		handlers = append(handlers, events.NewSQSForwarder(sqs.NewFromConfig(awsCfg), cfg.EventsQueueURL))
		logger.Info("forwarding outbox events to SQS", "queue_url", cfg.EventsQueueURL)
	}
	deliverer := events.NewDeliverer(events.NewOutboxStore(pool), handlers, logger).
		WithInterval(cfg.OutboxPollInterval)

	reminderWorker := reminders.NewWorker(
		reminders.NewStore(pool),
		booking.NewPostgresRepository(pool),
		notifier,
		logger,
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		deliverer.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		reminderWorker.Run(ctx, cfg.ReminderPollInterval)
	}()
	go func() {
		defer wg.Done()
		pruneProcessed(ctx, processed, logger)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("notify worker shutting down")
	cancel()
	wg.Wait()
}

// pruneProcessed drops old dedupe markers once a day.
func pruneProcessed(ctx context.Context, store *events.ProcessedStore, logger *logging.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, err := store.Prune(ctx, time.Now().Add(-processedRetention))
		if err != nil {
			logger.Warn("processed events prune failed", "error", err)
			continue
		}
		logger.Info("processed events pruned", "deleted", n)
	}
}
