package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/core/ports"
	"github.com/hushdesk/maraudit/internal/mar/auditdate"
	"github.com/hushdesk/maraudit/internal/mar/blocks"
	"github.com/hushdesk/maraudit/internal/mar/columns"
	"github.com/hushdesk/maraudit/internal/mar/rows"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
	"github.com/hushdesk/maraudit/internal/mar/vitals"
)

const defaultPageWorkers = 4

// AuditBinderUseCase runs the full binder audit: token extraction, page
// geometry resolution, due-cell evaluation, deduplication and the final
// acceptance gate. Page resolution is independent per page and runs on a
// bounded worker pool; the cross-page borrow pass and the decision pass
// are sequential.
type AuditBinderUseCase struct {
	extractor ports.TokenExtractor
	roster    ports.RoomRoster
	repo      ports.RunRepository
	reports   []ports.ReportWriter
	vocab     *domain.Vocabulary
	vitals    *vitals.Extractor
	workers   int
	now       func() time.Time
}

func NewAuditBinderUseCase(
	extractor ports.TokenExtractor,
	roster ports.RoomRoster,
	repo ports.RunRepository,
	reports []ports.ReportWriter,
	vocab *domain.Vocabulary,
	pageWorkers int,
) *AuditBinderUseCase {
	if pageWorkers <= 0 {
		pageWorkers = defaultPageWorkers
	}
	// Prime the lazy code set so lookups during the parallel pass never
	// write to shared state.
	vocab.AllowsCode(0)
	return &AuditBinderUseCase{
		extractor: extractor,
		roster:    roster,
		repo:      repo,
		reports:   reports,
		vocab:     vocab,
		vitals:    vitals.New(vocab.Bounds),
		workers:   pageWorkers,
		now:       time.Now,
	}
}

// pageAudit is the per-page resolution state threaded between passes.
type pageAudit struct {
	index   int
	ix      *tokenindex.Index
	bands   []domain.ColumnBand
	blks    []domain.MedBlock
	rbs     []domain.RowBands
	roomBed string
	warning *domain.PageWarning
	diag    domain.Diagnostics
}

func (uc *AuditBinderUseCase) Audit(ctx context.Context, req domain.AuditRequest) (*domain.AuditResult, error) {
	pages, err := uc.extractor.Extract(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("extract tokens: %w", err)
	}
	if len(pages) == 0 {
		return nil, domain.WrapError(domain.ErrNoPages, "extract tokens", errors.New("extractor produced zero pages"))
	}

	override := req.AuditDateOverride
	if override == "" {
		override = os.Getenv(auditdate.EnvOverride)
	}
	auditDate, err := auditdate.Resolve(req.Source, override, uc.now())
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve audit date", err)
	}

	audits := uc.resolvePages(pages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	borrowAcrossPages(audits)

	result := &domain.AuditResult{
		RunID:     uuid.NewString(),
		Source:    req.Source,
		Hall:      req.Hall,
		AuditDate: auditDate,
		CreatedAt: uc.now().UTC(),
	}

	var all []domain.Decision
	for _, pa := range audits {
		result.Diag.Merge(pa.diag)
		if pa.warning != nil {
			result.Warnings = append(result.Warnings, *pa.warning)
		}
		for _, r := range pa.rbs {
			result.Diag.Stages.Add(r.Stage)
		}
		all = append(all, uc.decidePage(pa, auditDate.Day(), req.Hall, &result.Diag, &result.Warnings)...)
	}
	result.Diag.RowBandSets = result.Diag.Stages.Header + result.Diag.Stages.Page + result.Diag.Stages.Borrow

	result.Decisions = dedupe(all, &result.Diag)
	sortDecisions(result.Decisions)
	result.Counts = tally(result.Decisions)
	uc.gate(result)

	for _, w := range uc.reports {
		path, err := w.Write(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		result.ReportPaths = append(result.ReportPaths, path)
	}
	if uc.repo != nil {
		if err := uc.repo.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("save audit run: %w", err)
		}
	}
	return result, nil
}

// resolvePages runs the per-page geometry pass on a bounded pool. Pages
// share nothing at this stage, so order of completion does not matter.
func (uc *AuditBinderUseCase) resolvePages(pages []domain.PageTokens) []*pageAudit {
	out := make([]*pageAudit, len(pages))
	sem := make(chan struct{}, uc.workers)
	var wg sync.WaitGroup
	for i := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = resolvePage(pages[i])
		}(i)
	}
	wg.Wait()
	return out
}

func resolvePage(page domain.PageTokens) *pageAudit {
	pa := &pageAudit{index: page.Index}
	pa.diag.PagesTotal = 1

	pa.ix = tokenindex.Build(page, tokenindex.Options{})
	if pa.ix.Empty() {
		pa.diag.PagesSkipped = 1
		pa.warning = &domain.PageWarning{Page: page.Index, Reason: "no extractable text"}
		return pa
	}

	pa.bands = columns.Resolve(pa.ix, columns.Config{})
	blkCfg := blocks.Config{}
	if len(pa.bands) > 0 {
		pa.diag.PagesWithColumns = 1
		blkCfg.HeaderXHint = pa.bands[0].X1
	} else {
		pa.warning = &domain.PageWarning{Page: page.Index, Reason: "no day-number header"}
	}

	pa.blks = blocks.Segment(pa.ix, blkCfg)
	pa.rbs = rows.BorrowSamePage(rows.Resolve(pa.ix, pa.blks, rows.Config{}), pa.blks)
	pa.roomBed = findRoomBed(pa.ix)
	return pa
}

// borrowAcrossPages is the depth-one adjacent borrow: each page may take
// geometry from the page before or after it, never further.
func borrowAcrossPages(audits []*pageAudit) {
	for i, pa := range audits {
		if i > 0 {
			pa.rbs = rows.BorrowAdjacent(pa.rbs, pa.blks, audits[i-1].rbs, audits[i-1].blks)
		}
		if i+1 < len(audits) {
			pa.rbs = rows.BorrowAdjacent(pa.rbs, pa.blks, audits[i+1].rbs, audits[i+1].blks)
		}
	}
}

var (
	roomBedRE  = regexp.MustCompile(`^([1-4]\d{2})[-/ ]?([12])$`)
	roomOnlyRE = regexp.MustCompile(`^[1-4]\d{2}$`)
)

// findRoomBed locates the resident's room-bed in the page header region.
// The scan stays in the top of the page so a systolic value like 120 in
// the grid is never misread as a room number.
func findRoomBed(ix *tokenindex.Index) string {
	yLimit := ix.Height() * 0.15
	var roomOnly string
	for _, w := range ix.Words() {
		if w.Box.CenterY() > yLimit {
			continue
		}
		t := strings.TrimSpace(w.Text)
		if m := roomBedRE.FindStringSubmatch(t); m != nil {
			return m[1] + "-" + m[2]
		}
		if roomOnly == "" && roomOnlyRE.MatchString(t) {
			roomOnly = t
		}
	}
	if roomOnly != "" {
		return roomOnly + "-1"
	}
	return ""
}

// dedupe drops repeat decisions for the same (cell, kind, rule) triple.
// Continuation pages restate earlier days, so repeats are expected, not a
// fault; they are counted for diagnostics and discarded.
func dedupe(decisions []domain.Decision, diag *domain.Diagnostics) []domain.Decision {
	seen := make(map[string]struct{}, len(decisions))
	out := decisions[:0]
	for _, d := range decisions {
		key := d.DedupKey()
		if _, dup := seen[key]; dup {
			diag.Deduped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// sortDecisions fixes the report order: room ascending with unknown rooms
// last, AM before PM, then page, block and kind for a stable tie-break.
func sortDecisions(ds []domain.Decision) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if (a.RoomBed == "") != (b.RoomBed == "") {
			return b.RoomBed == ""
		}
		if a.RoomBed != b.RoomBed {
			return a.RoomBed < b.RoomBed
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		return a.Kind < b.Kind
	})
}

func tally(ds []domain.Decision) domain.Counts {
	var c domain.Counts
	for _, d := range ds {
		c.Reviewed++
		switch d.Outcome {
		case domain.OutcomeHoldMiss:
			c.HoldMiss++
		case domain.OutcomeHeldOK:
			c.HeldOK++
		case domain.OutcomeCompliant:
			c.Compliant++
		case domain.OutcomeDCD:
			c.DCD++
		case domain.OutcomeNoRule:
			c.NoRule++
		case domain.OutcomeNote:
			c.Notes++
		}
	}
	return c
}

const defaultGatedCeiling = 0.15

// gate applies the acceptance gate: enough row-band sets to cover the
// document's pages, and a gated-reading ratio below the ceiling. A failed
// gate does not abort the run; it marks the result as untrustworthy.
func (uc *AuditBinderUseCase) gate(result *domain.AuditResult) {
	ceiling := uc.vocab.GatedCeiling
	if ceiling <= 0 {
		ceiling = defaultGatedCeiling
	}

	var reasons []string
	if result.Diag.RowBandSets < result.Diag.PagesTotal {
		reasons = append(reasons, fmt.Sprintf(
			"row band sets %d below page count %d", result.Diag.RowBandSets, result.Diag.PagesTotal))
	}
	if ratio := result.Diag.GatedRatio(); ratio > ceiling {
		reasons = append(reasons, fmt.Sprintf(
			"gated reading ratio %.2f above ceiling %.2f", ratio, ceiling))
	}
	result.GateReasons = reasons
	result.GateOK = len(reasons) == 0
}
