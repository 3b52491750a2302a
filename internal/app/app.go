package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DisclosureNotifier/internal/classify"
	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/infrastructure/discord"
	"DisclosureNotifier/internal/infrastructure/feed"
	"DisclosureNotifier/internal/infrastructure/marketdata"
	"DisclosureNotifier/internal/infrastructure/scheduler"
	"DisclosureNotifier/internal/infrastructure/storage"
	"DisclosureNotifier/internal/ledger"
	"DisclosureNotifier/internal/logging"
	"DisclosureNotifier/internal/ports"
	"DisclosureNotifier/internal/source"
	"DisclosureNotifier/internal/usecase"
)

// Application wires configuration to the pipeline and its lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	history  *storage.HistoryStore
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := source.NewRegistry()
	registry.Register(feed.NewEDINETSource(cfg.EDINET, nil, baseLogger.With("component", "source.edinet")))
	if cfg.TDnet.ListURL != "" {
		registry.Register(feed.NewTDnetSource(cfg.TDnet, nil, baseLogger.With("component", "source.tdnet")))
	}

	led := ledger.LoadFile(cfg.Ledger.Path, cfg.Ledger.Capacity, baseLogger.With("component", "ledger"))

	var history *storage.HistoryStore
	if cfg.History.DSN != "" {
		store, err := storage.Open(ctx, cfg.History.DSN)
		if err != nil {
			// The ledger stays authoritative; run without audit history.
			baseLogger.Warn("history store unavailable", "error", err)
		} else {
			history = store
		}
	}

	var historyPort ports.DeliveryStore
	if history != nil {
		historyPort = history
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:  registry.ResolveOrder(cfg.Sources.Priority),
		Classify: classify.New(cfg.Rules),
		Ledger:   led,
		Enricher: marketdata.NewClient(cfg.MarketData, nil, baseLogger.With("component", "marketdata")),
		Earnings: discord.NewNotifier("earnings", cfg.Discord.EarningsWebhook, baseLogger.With("component", "discord.earnings")),
		News:     discord.NewNotifier("news", cfg.Discord.NewsWebhook, baseLogger.With("component", "discord.news")),
		History:  historyPort,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, history: history}, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) error {
	defer a.close()
	return a.pipeline.Run(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// RunScheduled blocks, executing the pipeline on the configured cron
// expression until the context is cancelled or a signal arrives.
func (a *Application) RunScheduled(ctx context.Context) error {
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, a.pipeline)

	if err := runner.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}

func (a *Application) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("closing history store", "error", err)
		}
	}
}
