package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/glunkad/invoice-service/internal/booking"
	"github.com/glunkad/invoice-service/internal/bot"
	"github.com/glunkad/invoice-service/internal/config"
	"github.com/glunkad/invoice-service/internal/domain"
	"github.com/glunkad/invoice-service/internal/invoice"
	"github.com/glunkad/invoice-service/internal/logging"
	"github.com/glunkad/invoice-service/internal/metrics"
	"github.com/glunkad/invoice-service/internal/repository"
	"github.com/glunkad/invoice-service/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// newBotAPI connects to Telegram. Tests replace it.
var newBotAPI = tgbotapi.NewBotAPI

func main() {
	os.Exit(realMain(os.Args[1:], os.Stderr))
}

// realMain returns the process exit code. It never exits itself, so the
// deferred logger flush always runs.
func realMain(args []string, stderr io.Writer) int {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}

	flags := pflag.NewFlagSet("invoice-bot", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.StringP("config", "c", defaultConfig, "path to the YAML config file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("bot exited with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting invoice bot",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("property", cfg.Property.Name),
		zap.String("invoice_format", cfg.Invoice.Format))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	botMetrics := metrics.New(registry)
	if cfg.Monitoring.PrometheusEnabled {
		go metrics.Serve(ctx, cfg.Monitoring.PrometheusPort, registry, logger)
	}

	store, closeStore := newStateRepository(ctx, cfg, logger)
	defer closeStore()

	encoder, err := invoice.NewEncoder(cfg.Invoice.Format)
	if err != nil {
		return err
	}
	renderer := invoice.NewFileRenderer(encoder, cfg.Invoice.TempDir, nil)

	api, err := newBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info("authorized on telegram", zap.String("username", api.Self.UserName))

	controller := booking.NewController(booking.Options{
		Store:     store,
		Renderer:  renderer,
		Responder: service.NewTelegramService(api, logger),
		Property:  cfg.Property,
		Location:  loc,
		Metrics:   botMetrics,
		Logger:    logger,
	})

	telegramBot := bot.NewBot(api, controller, cfg.Workers, botMetrics, logger)
	go telegramBot.Start(ctx)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	telegramBot.Stop()
	return nil
}

// newStateRepository uses Redis when configured and reachable, the in-memory
// store otherwise.
func newStateRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.StateRepository, func()) {
	if cfg.Redis.Address != "" {
		client := repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, client); err != nil {
			logger.Warn("redis unavailable, falling back to in-memory sessions", zap.Error(err))
			_ = client.Close()
		} else {
			logger.Info("using redis session store", zap.String("address", cfg.Redis.Address))
			return repository.NewRedisStateRepository(client, cfg.Session.TTL), func() { _ = client.Close() }
		}
	}

	logger.Info("using in-memory session store", zap.Duration("ttl", cfg.Session.TTL))
	return repository.NewMemoryStateRepository(cfg.Session.TTL, nil), func() {}
}
