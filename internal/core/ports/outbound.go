package ports

import (
	"context"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

// TokenExtractor turns a binder PDF into positioned page tokens.
type TokenExtractor interface {
	Extract(ctx context.Context, source string) ([]domain.PageTokens, error)
}

// RunRepository persists completed audit runs.
type RunRepository interface {
	SaveRun(ctx context.Context, result *domain.AuditResult) error
	GetRun(ctx context.Context, runID string) (*domain.AuditResult, error)
	ListRecentRuns(ctx context.Context, limit int) ([]domain.AuditResult, error)
}

// ReportWriter renders one audit result to a durable artifact and returns
// its location.
type ReportWriter interface {
	Write(ctx context.Context, result *domain.AuditResult) (string, error)
}

// AuditQueue publishes and consumes audit jobs.
type AuditQueue interface {
	PublishAudit(ctx context.Context, job domain.AuditJob) error
	SubscribeAudit(ctx context.Context, handler func(context.Context, domain.AuditJob) error) error
}

// RoomRoster maps a resident's room-bed to the hall it belongs to.
type RoomRoster interface {
	HallFor(roomBed string) (string, bool)
}
