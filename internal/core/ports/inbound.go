package ports

import (
	"context"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

// BinderAuditor is the inbound contract for running one binder audit.
type BinderAuditor interface {
	Audit(ctx context.Context, req domain.AuditRequest) (*domain.AuditResult, error)
}

// RunReader is the inbound read model for stored audit runs.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*domain.AuditResult, error)
	ListRecentRuns(ctx context.Context, limit int) ([]domain.AuditResult, error)
}
