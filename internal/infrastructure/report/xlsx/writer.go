// Package xlsx renders an audit result as a spreadsheet for the DON's
// compliance binder.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/infrastructure/storage/localfs"
)

const (
	decisionsSheet = "Decisions"
	summarySheet   = "Summary"
)

type Writer struct {
	storage *localfs.Storage
}

func NewWriter(storage *localfs.Storage) *Writer {
	return &Writer{storage: storage}
}

func (w *Writer) Write(_ context.Context, result *domain.AuditResult) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeDecisions(f, result); err != nil {
		return "", err
	}
	if err := writeSummary(f, result); err != nil {
		return "", err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("drop default sheet: %w", err)
	}

	hall := result.Hall
	if hall == "" {
		hall = "all"
	}
	path := w.storage.Path(fmt.Sprintf("mar_audit_%s_%s.xlsx", result.AuditDate.Format("2006-01-02"), hall))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save xlsx report: %w", err)
	}
	return path, nil
}

func writeDecisions(f *excelize.File, result *domain.AuditResult) error {
	if _, err := f.NewSheet(decisionsSheet); err != nil {
		return fmt.Errorf("create decisions sheet: %w", err)
	}

	header := []any{"Room-Bed", "Hall", "Slot", "Medication", "Outcome", "Rule", "Reading", "Gated", "Page", "Day", "Note"}
	if err := f.SetSheetRow(decisionsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range result.Decisions {
		rule, reading, gated := "", "", ""
		if d.Rule != nil {
			rule = d.Rule.Display()
		}
		if d.Reading != nil {
			reading = fmt.Sprintf("%s=%d", d.Reading.Kind, d.Reading.Value)
			if d.Reading.Gated {
				gated = "yes"
			}
		}
		row := []any{d.RoomBed, d.Hall, string(d.Slot), d.Title, string(d.Outcome), rule, reading, gated, d.Page + 1, d.Day, d.Note}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(decisionsSheet, cell, &row); err != nil {
			return fmt.Errorf("write decision row %d: %w", i, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, result *domain.AuditResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"Audit date", result.AuditDateText()},
		{"Hall", result.Hall},
		{"Source", result.Source},
		{"Gate", gateText(result)},
		{"Reviewed", result.Counts.Reviewed},
		{"Hold-miss", result.Counts.HoldMiss},
		{"Held-ok", result.Counts.HeldOK},
		{"Compliant", result.Counts.Compliant},
		{"DC'd", result.Counts.DCD},
		{"No-rule", result.Counts.NoRule},
		{"Notes", result.Counts.Notes},
		{"Row bands (header/page/borrow/miss)", fmt.Sprintf("%d/%d/%d/%d",
			result.Diag.Stages.Header, result.Diag.Stages.Page, result.Diag.Stages.Borrow, result.Diag.Stages.Miss)},
		{"Gated readings", fmt.Sprintf("%d of %d", result.Diag.GatedReadings, result.Diag.TotalReadings)},
	}
	for i, row := range rows {
		row := row
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	return nil
}

func gateText(result *domain.AuditResult) string {
	if result.GateOK {
		return "PASS"
	}
	return "FAIL"
}
