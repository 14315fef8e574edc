// Command audit runs one binder audit from the command line. It talks to
// the same wiring as the worker but can skip the queue, and optionally the
// database, so a nurse manager's laptop can audit a PDF directly. With
// -enqueue the job is published to the queue for a worker instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/hushdesk/maraudit/internal/bootstrap"
	"github.com/hushdesk/maraudit/internal/config"
	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/core/ports"
	"github.com/hushdesk/maraudit/internal/observability/logging"
)

func main() {
	var (
		source   = flag.String("pdf", "", "path of the binder PDF to audit (required)")
		hall     = flag.String("hall", "", "hall label for the binder, e.g. A")
		dateOver = flag.String("date", "", "audit date override, MMDDYYYY")
		noDB     = flag.Bool("no-db", false, "skip run persistence")
		enqueue  = flag.Bool("enqueue", false, "publish the audit as a queue job instead of running it here")
		recent   = flag.Int("recent", 0, "list the N most recent stored runs and exit")
	)
	flag.Parse()
	if *source == "" && *recent <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.NewJSONLogger("mar-audit-cli", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWithOptions(ctx, cfg, bootstrap.Options{
		SkipQueue:    !*enqueue,
		SkipDatabase: (*noDB || *enqueue) && *recent <= 0,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if *recent > 0 {
		listRecent(ctx, app.Repo, *recent)
		return
	}

	req := domain.AuditRequest{
		Source:            *source,
		Hall:              *hall,
		AuditDateOverride: *dateOver,
	}
	if *enqueue {
		job := domain.AuditJob{ID: uuid.NewString(), Request: req}
		if err := app.Queue.PublishAudit(ctx, job); err != nil {
			log.Fatalf("enqueue error: %v", err)
		}
		logger.Info("audit enqueued", "job_id", job.ID, "subject", cfg.NATSSubject)
		fmt.Println("enqueued job " + job.ID)
		return
	}

	result, err := app.AuditUC.Audit(ctx, req)
	if err != nil {
		log.Fatalf("audit error: %v", err)
	}

	logger.Info("audit complete",
		"run_id", result.RunID,
		"audit_date", result.AuditDateText(),
		"reviewed", result.Counts.Reviewed,
		"hold_miss", result.Counts.HoldMiss,
		"gate_ok", result.GateOK,
	)
	fmt.Printf("Audit %s · %s · reviewed %d · hold-miss %d\n",
		result.AuditDateText(), orAll(result.Hall), result.Counts.Reviewed, result.Counts.HoldMiss)
	if !result.GateOK {
		fmt.Println("Gate: FAIL")
		for _, r := range result.GateReasons {
			fmt.Println("  " + r)
		}
	}
	for _, p := range result.ReportPaths {
		fmt.Println("report: " + p)
	}
}

func listRecent(ctx context.Context, runs ports.RunReader, limit int) {
	results, err := runs.ListRecentRuns(ctx, limit)
	if err != nil {
		log.Fatalf("list runs error: %v", err)
	}
	for _, r := range results {
		fmt.Printf("%s  %s  %s  reviewed %d  hold-miss %d  gate %s\n",
			r.RunID, r.AuditDateText(), orAll(r.Hall), r.Counts.Reviewed, r.Counts.HoldMiss, gateWord(r.GateOK))
	}
}

func gateWord(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

func orAll(hall string) string {
	if hall == "" {
		return "all halls"
	}
	return "Hall " + hall
}
