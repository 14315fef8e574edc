package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/infrastructure/resilience"
)

// RunRepository stores completed audit runs. The full result is kept as a
// JSONB payload next to the columns reports and listings filter on.
type RunRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// NewRunRepositoryWithExecutor wraps writes in the retry/breaker executor.
// Reads stay direct; a failed lookup is cheap to repeat at the call site.
func NewRunRepositoryWithExecutor(db *sql.DB, executor *resilience.Executor) *RunRepository {
	return &RunRepository{db: db, executor: executor}
}

func classifyPostgresError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

const runSchema = `
CREATE TABLE IF NOT EXISTS audit_runs (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    hall        TEXT NOT NULL DEFAULT '',
    audit_date  DATE NOT NULL,
    gate_ok     BOOLEAN NOT NULL,
    hold_miss   INTEGER NOT NULL,
    reviewed    INTEGER NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the audit_runs table when missing.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, runSchema); err != nil {
		return fmt.Errorf("ensure audit_runs schema: %w", err)
	}
	return nil
}

func (r *RunRepository) SaveRun(ctx context.Context, result *domain.AuditResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal audit result: %w", err)
	}

	insert := func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_runs (id, source, hall, audit_date, gate_ok, hold_miss, reviewed, payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, result.RunID, result.Source, result.Hall, result.AuditDate, result.GateOK,
			result.Counts.HoldMiss, result.Counts.Reviewed, payload, result.CreatedAt)
		return err
	}

	if r.executor != nil {
		err = r.executor.Execute(ctx, "postgres.save_run", insert, classifyPostgresError)
	} else {
		err = insert(ctx)
	}
	if err != nil {
		return fmt.Errorf("save audit run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, runID string) (*domain.AuditResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload FROM audit_runs WHERE id = $1
`, runID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRunNotFound, "get audit run", fmt.Errorf("id=%s", runID))
		}
		return nil, fmt.Errorf("get audit run: %w", err)
	}
	return unmarshalRun(payload)
}

func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]domain.AuditResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT payload FROM audit_runs ORDER BY created_at DESC LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit runs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AuditResult, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit run: %w", err)
		}
		result, err := unmarshalRun(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit runs: %w", err)
	}
	return out, nil
}

func unmarshalRun(payload []byte) (*domain.AuditResult, error) {
	var result domain.AuditResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal audit result: %w", err)
	}
	return &result, nil
}
