package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/hushdesk/maraudit/internal/bootstrap"
	"github.com/hushdesk/maraudit/internal/config"
	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/observability/logging"
	"github.com/hushdesk/maraudit/internal/observability/metrics"
)

const serviceName = "mar-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	auditMetrics := metrics.NewAuditMetrics(serviceName)
	if cfg.MetricsEnabled {
		go serveMetrics(cfg.WorkerMetricsPort, auditMetrics, logger)
	}

	// A binder audit is CPU-heavy and a night-shift scan drops the whole
	// stack of halls on the queue at once; the limiter spreads them out.
	jobsPerMin := cfg.JobsPerMin
	if jobsPerMin <= 0 {
		jobsPerMin = 12
	}
	limiter := rate.NewLimiter(rate.Limit(jobsPerMin/60.0), 1)

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAudit(ctx, func(handlerCtx context.Context, job domain.AuditJob) error {
		if err := limiter.Wait(handlerCtx); err != nil {
			return err
		}

		jobCtx, cancel := context.WithTimeout(handlerCtx, time.Duration(cfg.JobTimeout)*time.Second)
		defer cancel()

		auditMetrics.StartAudit()
		start := time.Now()
		result, err := app.AuditUC.Audit(jobCtx, job.Request)
		auditMetrics.FinishAudit(serviceName, time.Since(start), err)
		if err != nil {
			logger.Error("audit failed", "job_id", job.ID, "source", job.Request.Source, "error", err)
			return err
		}

		auditMetrics.ObserveResult(serviceName, result)
		logger.Info("audit complete",
			"job_id", job.ID,
			"run_id", result.RunID,
			"source", result.Source,
			"hall", result.Hall,
			"reviewed", result.Counts.Reviewed,
			"hold_miss", result.Counts.HoldMiss,
			"gate_ok", result.GateOK,
			"reports", result.ReportPaths,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func serveMetrics(port string, m *metrics.AuditMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server error", "error", err)
	}
}
