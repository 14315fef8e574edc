// Package txt renders an audit result as the plain-text binder report the
// nursing team reads at the morning meeting.
package txt

import (
	"context"
	"fmt"
	"strings"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/infrastructure/storage/localfs"
	"github.com/hushdesk/maraudit/internal/mar/auditdate"
)

// outcomeOrder fixes section ordering inside the report body.
var outcomeOrder = []domain.Outcome{
	domain.OutcomeHoldMiss,
	domain.OutcomeHeldOK,
	domain.OutcomeCompliant,
	domain.OutcomeDCD,
	domain.OutcomeNoRule,
	domain.OutcomeNote,
}

type Writer struct {
	storage *localfs.Storage
}

func NewWriter(storage *localfs.Storage) *Writer {
	return &Writer{storage: storage}
}

func (w *Writer) Write(ctx context.Context, result *domain.AuditResult) (string, error) {
	key := fileName(result)
	if err := w.storage.Save(ctx, key, strings.NewReader(Render(result))); err != nil {
		return "", fmt.Errorf("save txt report: %w", err)
	}
	return w.storage.Path(key), nil
}

func fileName(result *domain.AuditResult) string {
	hall := result.Hall
	if hall == "" {
		hall = "all"
	}
	return fmt.Sprintf("mar_audit_%s_%s.txt", result.AuditDate.Format("2006-01-02"), hall)
}

// Render produces the full report text. Split out from Write so tests can
// check the format without touching the filesystem.
func Render(result *domain.AuditResult) string {
	var b strings.Builder

	hall := result.Hall
	if hall == "" {
		hall = "?"
	}
	fmt.Fprintf(&b, "MAR AUDIT %s · Hall: %s · Source: %s\n", result.AuditDateText(), hall, result.Source)
	fmt.Fprintf(&b, "Reviewed: %d · Hold-miss: %d · Held-ok: %d · Compliant: %d · DC'd: %d · No-rule: %d · Notes: %d\n",
		result.Counts.Reviewed, result.Counts.HoldMiss, result.Counts.HeldOK,
		result.Counts.Compliant, result.Counts.DCD, result.Counts.NoRule, result.Counts.Notes)
	if result.GateOK {
		b.WriteString("Gate: PASS\n")
	} else {
		fmt.Fprintf(&b, "Gate: FAIL (%s)\n", strings.Join(result.GateReasons, "; "))
	}
	b.WriteString("\n")

	exceptions := filterOutcome(result.Decisions, domain.OutcomeHoldMiss)
	exceptions = append(exceptions, filterOutcome(result.Decisions, domain.OutcomeHeldOK)...)
	b.WriteString("EXCEPTIONS\n")
	if len(exceptions) == 0 {
		b.WriteString("  none\n")
	}
	for _, d := range exceptions {
		b.WriteString("  " + decisionLine(d) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("ALL REVIEWED\n")
	for _, outcome := range outcomeOrder {
		for _, d := range filterOutcome(result.Decisions, outcome) {
			b.WriteString("  " + decisionLine(d) + "\n")
		}
	}
	b.WriteString("\n")

	if len(result.Warnings) > 0 {
		b.WriteString("WARNINGS\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  page %d: %s\n", w.Page+1, w.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Generated %s\n", result.CreatedAt.In(auditdate.Location()).Format("01/02/2006 15:04 MST"))
	return b.String()
}

func filterOutcome(ds []domain.Decision, outcome domain.Outcome) []domain.Decision {
	var out []domain.Decision
	for _, d := range ds {
		if d.Outcome == outcome {
			out = append(out, d)
		}
	}
	return out
}

func decisionLine(d domain.Decision) string {
	parts := []string{
		fmt.Sprintf("%-7s", orDash(d.RoomBed)),
		fmt.Sprintf("%-2s", d.Slot),
		fmt.Sprintf("%-9s", d.Outcome),
	}
	if d.Title != "" {
		parts = append(parts, d.Title)
	}
	if d.Rule != nil {
		parts = append(parts, fmt.Sprintf("[%s]", d.Rule.Display()))
	}
	if d.Reading != nil {
		reading := fmt.Sprintf("%s=%d", d.Reading.Kind, d.Reading.Value)
		if d.Reading.Gated {
			reading += " (gated)"
		}
		parts = append(parts, reading)
	}
	if d.Note != "" {
		parts = append(parts, d.Note)
	}
	return strings.Join(parts, "  ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
