package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

func sampleResult(t *testing.T) *domain.AuditResult {
	t.Helper()
	return &domain.AuditResult{
		RunID:     "run-1",
		Source:    "/drop/MAR_08-15-2025.pdf",
		Hall:      "A",
		AuditDate: time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
		Decisions: []domain.Decision{{
			RoomBed: "302-1",
			Slot:    domain.SlotAM,
			Outcome: domain.OutcomeHoldMiss,
		}},
		Counts:    domain.Counts{Reviewed: 1, HoldMiss: 1},
		GateOK:    true,
		CreatedAt: time.Date(2025, 8, 15, 6, 0, 0, 0, time.UTC),
	}
}

func TestRunRepositorySaveRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	result := sampleResult(t)
	mock.ExpectExec("INSERT INTO audit_runs").
		WithArgs(result.RunID, result.Source, result.Hall, result.AuditDate, true, 1, 1, sqlmock.AnyArg(), result.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewRunRepository(db).SaveRun(context.Background(), result); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClassifyPostgresError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{"bad connection retries", driver.ErrBadConn, true, true},
		{"context cancel is silent", context.Canceled, false, false},
		{"constraint violation records only", errors.New("duplicate key value"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			class := classifyPostgresError(tc.err)
			if class.Retryable != tc.retryable || class.RecordFailure != tc.record {
				t.Fatalf("classifyPostgresError(%v) = %+v", tc.err, class)
			}
		})
	}
}

func TestRunRepositoryGetRunRoundTrips(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	want := sampleResult(t)
	payload, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.ExpectQuery("SELECT payload FROM audit_runs").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := NewRunRepository(db).GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.RunID != want.RunID || got.Counts.HoldMiss != 1 || len(got.Decisions) != 1 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunRepositoryGetRunNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM audit_runs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err = NewRunRepository(db).GetRun(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrRunNotFound) {
		t.Fatalf("expected run-not-found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunRepositoryListRecentRuns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	payload, err := json.Marshal(sampleResult(t))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.ExpectQuery("SELECT payload FROM audit_runs").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	runs, err := NewRunRepository(db).ListRecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListRecentRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
