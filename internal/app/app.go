package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"NewsDigest/internal/config"
	"NewsDigest/internal/delivery"
	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/enrich"
	"NewsDigest/internal/infrastructure/feeds"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/infrastructure/storage"
	"NewsDigest/internal/infrastructure/telegram"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/metrics"
	"NewsDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *storage.SQLStore
	pipeline   *usecase.Pipeline
	dispatcher *delivery.Dispatcher
	commands   *usecase.CommandHandler
	telegram   *telegram.Client
}

// New opens the item store, applies the schema and builds every component.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.File)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	generator, err := llm.New(cfg.Enrichment, nil)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	registry := feeds.NewRegistry(
		feeds.NewGofeedReader(nil, baseLogger.With("component", "feeds.gofeed")),
		feeds.NewHTMLReader(nil, baseLogger.With("component", "feeds.html")),
	)
	ingestor := usecase.NewIngestor(registry, store, sources(cfg.Feeds), nil, baseLogger.With("component", "ingestor"))

	engine := enrich.NewEngine(generator, enrich.Options{
		MaxAttempts:    cfg.Enrichment.MaxAttempts,
		BaseDelay:      cfg.Enrichment.BaseDelay,
		Timeout:        cfg.Enrichment.Timeout,
		FallbackLength: cfg.Enrichment.FallbackLength,
		Labels:         enrich.Labels{Region: cfg.Enrichment.RegionName, Topic: cfg.Enrichment.Topic},
		Limiter:        perMinute(cfg.Enrichment.RequestsPerMinute),
	}, baseLogger.With("component", "enrich"))

	assembler := digest.NewAssembler(store, digest.Options{
		Title:      cfg.Digest.Title,
		RegionName: cfg.Enrichment.RegionName,
		RegionFlag: cfg.Digest.RegionFlag,
		Location:   cfg.Scheduler.Location(),
	}, nil)

	tg := telegram.NewClient(cfg.Telegram.APIBase, cfg.Telegram.BotToken, nil)
	notifier := telegram.NewNotifier(tg, cfg.Telegram.ChatID, cfg.Telegram.SendInterval, baseLogger.With("component", "telegram"))
	dispatcher := delivery.NewDispatcher(notifier, store, cfg.Telegram.MaxMessageLength,
		metrics.DeliveryObserver{}, baseLogger.With("component", "delivery"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Ingestor:   ingestor,
		Enricher:   engine,
		Store:      store,
		Assembler:  assembler,
		Dispatcher: dispatcher,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		store:      store,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		commands:   usecase.NewCommandHandler(pipeline, cfg.Digest.RecentLimit, baseLogger.With("component", "commands")),
		telegram:   tg,
	}, nil
}

// OpenStore connects to the configured database and creates the schema.
func OpenStore(ctx context.Context, cfg config.Config) (*storage.SQLStore, error) {
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open item store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Serve runs the daily scheduler, the command poller and the optional
// metrics endpoint until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	sched := usecase.NewScheduler(
		scheduler.NewTickerDriver(a.cfg.Scheduler.CheckInterval),
		a.pipeline,
		usecase.ScheduleConfig{
			Trigger:       a.cfg.Scheduler.Trigger(),
			Location:      a.cfg.Scheduler.Location(),
			CheckInterval: a.cfg.Scheduler.CheckInterval,
		},
		a.logger.With("component", "scheduler"),
	)

	poller := telegram.NewPoller(a.telegram, a.cfg.Telegram.ChatID, a.cfg.Telegram.PollTimeout,
		a.handleCommand, a.logger.With("component", "telegram.poller"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sched.Start(gCtx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		<-gCtx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return sched.Stop(stopCtx)
	})

	g.Go(func() error {
		return poller.Run(gCtx)
	})

	if a.cfg.Metrics.Addr != "" {
		g.Go(func() error {
			a.logger.Info("metrics endpoint listening", "addr", a.cfg.Metrics.Addr)
			return metrics.Serve(gCtx, a.cfg.Metrics.Addr)
		})
	}

	a.logger.Info("news digest serving",
		"digest_time", a.cfg.Scheduler.Trigger().String(),
		"timezone", a.cfg.Scheduler.Location().String())
	return g.Wait()
}

func (a *Application) handleCommand(ctx context.Context, text string) {
	if err := a.commands.Handle(ctx, text, a.dispatcher.SendText); err != nil {
		a.logger.Warn("command reply failed", "command", usecase.ParseCommand(text), "error", err)
	}
}

// RunDigest performs one manual pipeline run.
func (a *Application) RunDigest(ctx context.Context) (usecase.Report, error) {
	return a.pipeline.Run(ctx, usecase.TriggerManual)
}

// Recent renders the most recent items.
func (a *Application) Recent(ctx context.Context, limit int) (string, error) {
	if limit <= 0 {
		limit = a.cfg.Digest.RecentLimit
	}
	return a.pipeline.Recent(ctx, limit)
}

// Close releases the item store.
func (a *Application) Close() error {
	return a.store.Close()
}

func sources(feedsCfg []config.FeedConfig) []domain.Source {
	out := make([]domain.Source, 0, len(feedsCfg))
	for _, f := range feedsCfg {
		out = append(out, domain.Source{Name: f.Name, URL: f.URL, Kind: f.Kind, Options: f.Options})
	}
	return out
}

func perMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}
