package txt

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/infrastructure/storage/localfs"
)

func sampleResult() *domain.AuditResult {
	rule := domain.Rule{Kind: domain.VitalSBP, Cmp: domain.CmpLT, Threshold: 110, Confidence: domain.ConfidenceParsed}
	reading := domain.Reading{Kind: domain.VitalSBP, Value: 104}
	return &domain.AuditResult{
		RunID:     "run-1",
		Source:    "MAR_08-15-2025.pdf",
		Hall:      "A",
		AuditDate: time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
		Decisions: []domain.Decision{
			{RoomBed: "302-1", Hall: "A", Slot: domain.SlotAM, Title: "LISINOPRIL 10 MG TAB",
				Outcome: domain.OutcomeHoldMiss, Rule: &rule, Reading: &reading},
			{RoomBed: "305-2", Hall: "A", Slot: domain.SlotPM, Title: "METOPROLOL 25 MG TAB",
				Outcome: domain.OutcomeCompliant, Rule: &rule},
		},
		Counts:    domain.Counts{Reviewed: 2, HoldMiss: 1, Compliant: 1},
		GateOK:    true,
		CreatedAt: time.Date(2025, 8, 15, 11, 0, 0, 0, time.UTC),
	}
}

func TestRenderSections(t *testing.T) {
	out := Render(sampleResult())

	if !strings.Contains(out, "MAR AUDIT 08/14/2025 · Hall: A · Source: MAR_08-15-2025.pdf") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Gate: PASS") {
		t.Fatalf("missing gate line:\n%s", out)
	}
	if !strings.Contains(out, "EXCEPTIONS") || !strings.Contains(out, "ALL REVIEWED") {
		t.Fatalf("missing sections:\n%s", out)
	}
	if !strings.Contains(out, "302-1") || !strings.Contains(out, "HOLD-MISS") || !strings.Contains(out, "SBP=104") {
		t.Fatalf("missing exception detail:\n%s", out)
	}

	// COMPLIANT entries belong to the review body only, never to the
	// exceptions section.
	body := out[strings.Index(out, "EXCEPTIONS"):strings.Index(out, "ALL REVIEWED")]
	if strings.Contains(body, "COMPLIANT") {
		t.Fatalf("compliant entry leaked into exceptions:\n%s", out)
	}

	// The hold-miss must appear before the compliant entry in the body.
	if strings.Index(out, "HOLD-MISS") > strings.Index(out, "COMPLIANT") {
		t.Fatalf("outcome ordering wrong:\n%s", out)
	}
}

func TestRenderGateFailure(t *testing.T) {
	result := sampleResult()
	result.GateOK = false
	result.GateReasons = []string{"row band sets 3 below page count 5"}

	out := Render(result)
	if !strings.Contains(out, "Gate: FAIL (row band sets 3 below page count 5)") {
		t.Fatalf("missing gate failure:\n%s", out)
	}
}

func TestWriteCreatesFile(t *testing.T) {
	storage, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}

	path, err := NewWriter(storage).Write(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(raw), "MAR AUDIT") {
		t.Fatalf("report content missing:\n%s", raw)
	}
	if !strings.Contains(path, "mar_audit_2025-08-14_A.txt") {
		t.Fatalf("unexpected report path %s", path)
	}
}
