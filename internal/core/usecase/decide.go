package usecase

import (
	"fmt"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/columns"
	"github.com/hushdesk/maraudit/internal/mar/duecell"
	"github.com/hushdesk/maraudit/internal/mar/rules"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

// decidePage evaluates every due cell of the audit-date column on one
// page. Pages without a column for the audit day contribute a warning and
// nothing else.
func (uc *AuditBinderUseCase) decidePage(pa *pageAudit, day int, hall string, diag *domain.Diagnostics, warnings *[]domain.PageWarning) []domain.Decision {
	if pa.ix == nil || pa.ix.Empty() || len(pa.bands) == 0 {
		return nil
	}
	col, ok := columns.ForDay(pa.bands, day)
	if !ok {
		*warnings = append(*warnings, domain.PageWarning{
			Page:   pa.index,
			Reason: fmt.Sprintf("no column for audit day %d", day),
		})
		return nil
	}

	h := hall
	if h == "" && uc.roster != nil && pa.roomBed != "" {
		if rosterHall, found := uc.roster.HallFor(pa.roomBed); found {
			h = rosterHall
		}
	}

	var out []domain.Decision
	for bi, blk := range pa.blks {
		blockRules := uc.blockRules(blk.Text, pa.rbs[bi], diag)
		if len(blockRules) == 0 && !rules.HoldIntent(blk.Text) {
			continue
		}
		for _, slot := range []domain.Slot{domain.SlotAM, domain.SlotPM} {
			out = append(out, uc.evaluateCell(pa.ix, blk, bi, pa.rbs[bi], col, slot, blockRules, pa.roomBed, h, diag)...)
		}
	}
	return out
}

// blockRules returns the effective rules of one block: strict parses
// first, configured defaults only when the text shows hold intent for a
// vital but no parsable threshold. A block whose rule line is garbled past
// recognition can still name its vital through the row band it keeps.
func (uc *AuditBinderUseCase) blockRules(text string, rbs domain.RowBands, diag *domain.Diagnostics) []domain.Rule {
	parsed := rules.Parse(text)
	diag.ParsedRules += len(parsed)
	if len(parsed) > 0 {
		return parsed
	}
	if !rules.HoldIntent(text) {
		return nil
	}
	kinds := rules.MentionedVitals(text)
	if rbs.BP != nil {
		kinds = appendVital(kinds, domain.VitalSBP)
	}
	if rbs.HR != nil {
		kinds = appendVital(kinds, domain.VitalHR)
	}
	var out []domain.Rule
	for _, kind := range kinds {
		if r, found := uc.vocab.DefaultRuleFor(kind); found {
			out = append(out, r)
			diag.DefaultRules++
		}
	}
	return out
}

func appendVital(kinds []domain.VitalKind, kind domain.VitalKind) []domain.VitalKind {
	for _, k := range kinds {
		if k == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}

func (uc *AuditBinderUseCase) evaluateCell(
	ix *tokenindex.Index,
	blk domain.MedBlock,
	blockIdx int,
	rbs domain.RowBands,
	col domain.ColumnBand,
	slot domain.Slot,
	blockRules []domain.Rule,
	roomBed, hall string,
	diag *domain.Diagnostics,
) []domain.Decision {
	base := domain.Decision{
		RoomBed: roomBed,
		Hall:    hall,
		Slot:    slot,
		Page:    col.Page,
		Day:     col.Day,
		Block:   blockIdx,
		Title:   blk.Title,
	}

	// A cross-out anywhere in the column's block region voids both slots.
	colRegion := domain.Rect{X0: col.X0, Y0: blk.Box.Y0, X1: col.X1, Y1: blk.Box.Y1}
	crossed := duecell.ColumnCrossed(ix.WordsIn(colRegion))

	slotBand := rbs.SlotBand(slot)
	effRBS := rbs
	if slotBand == nil {
		// A Miss degrades to whole-block sampling.
		whole := domain.YBand{Y0: blk.Box.Y0, Y1: blk.Box.Y1}
		slotBand = &whole
		effRBS.AM = &whole
		effRBS.PM = &whole
	}
	cellWords := ix.WordsIn(domain.Rect{X0: col.X0, Y0: slotBand.Y0, X1: col.X1, Y1: slotBand.Y1})
	state := duecell.Classify(cellWords, crossed, uc.vocab.AllowsCode)
	base.State = state

	switch state.Kind {
	case domain.CellDCD:
		d := base
		d.Outcome = domain.OutcomeDCD
		return []domain.Decision{d}
	case domain.CellUnknown:
		d := base
		d.Outcome = domain.OutcomeNote
		d.Note = state.Note
		return []domain.Decision{d}
	}

	if len(blockRules) == 0 {
		d := base
		d.Outcome = domain.OutcomeNoRule
		d.Note = "hold instruction without usable threshold"
		return []domain.Decision{d}
	}

	var out []domain.Decision
	for i := range blockRules {
		rule := blockRules[i]
		d := base
		d.Kind = rule.Kind
		d.Rule = &rule

		reading, found := uc.vitals.Read(ix, effRBS, col, slot, rule.Kind)
		if found {
			diag.TotalReadings++
			r := reading
			d.Reading = &r
			if reading.Gated {
				diag.GatedReadings++
			}
		}
		usable := found && !reading.Gated

		switch state.Kind {
		case domain.CellGiven:
			switch {
			case usable && rule.Triggers(reading.Value):
				d.Outcome = domain.OutcomeHoldMiss
			case usable:
				d.Outcome = domain.OutcomeCompliant
			default:
				diag.MissingVitals++
				d.Outcome = domain.OutcomeNote
				d.Note = fmt.Sprintf("given with no usable %s reading", rule.Kind)
			}
		case domain.CellAllowedCode:
			switch {
			case usable && rule.Triggers(reading.Value):
				d.Outcome = domain.OutcomeHeldOK
			case usable:
				// Held although the rule did not require it. Tracked but
				// not reported as an exception.
				diag.CodeNoTrigger++
				continue
			default:
				diag.MissingVitals++
				d.Outcome = domain.OutcomeNote
				d.Note = fmt.Sprintf("held (code %d) with no usable %s reading", state.Code, rule.Kind)
			}
		}
		out = append(out, d)
	}
	return out
}
