package bootstrap

import (
	"context"
	"fmt"

	"github.com/hushdesk/maraudit/internal/config"
	"github.com/hushdesk/maraudit/internal/core/ports"
	"github.com/hushdesk/maraudit/internal/core/usecase"
	"github.com/hushdesk/maraudit/internal/infrastructure/extractor/pdftext"
	"github.com/hushdesk/maraudit/internal/infrastructure/queue/nats"
	"github.com/hushdesk/maraudit/internal/infrastructure/report/txt"
	"github.com/hushdesk/maraudit/internal/infrastructure/report/xlsx"
	"github.com/hushdesk/maraudit/internal/infrastructure/repository/postgres"
	"github.com/hushdesk/maraudit/internal/infrastructure/resilience"
	"github.com/hushdesk/maraudit/internal/infrastructure/roster"
	"github.com/hushdesk/maraudit/internal/infrastructure/storage/localfs"
	"github.com/hushdesk/maraudit/internal/infrastructure/vocab"
)

type App struct {
	Config config.Config

	Queue   ports.AuditQueue
	Repo    ports.RunRepository
	AuditUC ports.BinderAuditor

	closeFn func()
}

// Options toggles the external services an entrypoint needs. The worker
// wants everything; the CLI can run without a queue or database.
type Options struct {
	SkipQueue    bool
	SkipDatabase bool
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	return NewWithOptions(ctx, cfg, Options{})
}

func NewWithOptions(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	var (
		repo    *postgres.RunRepository
		queue   *nats.Queue
		closers []func()
	)
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	if !opts.SkipDatabase {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		repo = postgres.NewRunRepositoryWithExecutor(db, executor)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	if !opts.SkipQueue {
		q, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init audit queue: %w", err)
		}
		closers = append(closers, q.Close)
		queue = q
	}

	storage, err := localfs.New(cfg.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("init report storage: %w", err)
	}

	vocabulary, err := vocab.Load(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	rooms, err := roster.Load(cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	var runRepo ports.RunRepository
	if repo != nil {
		runRepo = repo
	}
	auditUC := usecase.NewAuditBinderUseCase(
		pdftext.New(),
		rooms,
		runRepo,
		[]ports.ReportWriter{txt.NewWriter(storage), xlsx.NewWriter(storage)},
		vocabulary,
		cfg.PageWorkers,
	)

	app := &App{
		Config:  cfg,
		AuditUC: auditUC,
		closeFn: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}
	if queue != nil {
		app.Queue = queue
	}
	if repo != nil {
		app.Repo = repo
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
