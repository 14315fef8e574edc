// Package rows resolves the vital and dose lanes (BP, HR, AM, PM) inside
// each medication block. Blocks that print their own row labels resolve
// directly; the rest borrow geometry, first from a labeled block on the
// same page, then from the same block position on one adjacent page. The
// borrow chain never exceeds depth one: a borrowed result is never lent on.
package rows

import (
	"regexp"
	"sort"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

var (
	bpLabelRE = regexp.MustCompile(`(?i)^b\.?p\.?$`)
	hrLabelRE = regexp.MustCompile(`(?i)^(?:hr|pulse)$`)
	amLabelRE = regexp.MustCompile(`(?i)^am$`)
	pmLabelRE = regexp.MustCompile(`(?i)^pm$`)
)

// Config tunes label detection. Zero values select defaults.
type Config struct {
	// GutterRatio bounds the label search to the left fraction of the page,
	// keeping grid cell content from matching a lane label.
	GutterRatio float64
}

func (c Config) normalize() Config {
	if c.GutterRatio <= 0 {
		c.GutterRatio = 0.5
	}
	return c
}

type lane int

const (
	laneBP lane = iota
	laneHR
	laneAM
	lanePM
	laneCount
)

func classifyLabel(text string) (lane, bool) {
	switch {
	case bpLabelRE.MatchString(text):
		return laneBP, true
	case hrLabelRE.MatchString(text):
		return laneHR, true
	case amLabelRE.MatchString(text):
		return laneAM, true
	case pmLabelRE.MatchString(text):
		return lanePM, true
	}
	return 0, false
}

// Resolve maps each block to its row bands using only the block's own
// labels. Unlabeled blocks come back as a Miss with no lanes; the caller
// runs the borrow passes afterwards.
func Resolve(ix *tokenindex.Index, blocksOnPage []domain.MedBlock, cfg Config) []domain.RowBands {
	cfg = cfg.normalize()
	out := make([]domain.RowBands, len(blocksOnPage))
	for i, block := range blocksOnPage {
		out[i] = resolveBlock(ix, block, cfg)
	}
	return out
}

type foundLabel struct {
	lane    lane
	y0, y1  float64
	yCenter float64
}

func resolveBlock(ix *tokenindex.Index, block domain.MedBlock, cfg Config) domain.RowBands {
	gutterLimit := ix.Width() * cfg.GutterRatio

	seen := [laneCount]bool{}
	var found []foundLabel
	for _, w := range ix.Words() {
		cy := w.Box.CenterY()
		if w.Stitched || cy < block.Box.Y0 || cy > block.Box.Y1 {
			continue
		}
		if w.Box.CenterX() > gutterLimit {
			continue
		}
		l, ok := classifyLabel(w.Text)
		if !ok || seen[l] {
			continue
		}
		seen[l] = true
		found = append(found, foundLabel{lane: l, y0: w.Box.Y0, y1: w.Box.Y1, yCenter: cy})
	}
	if len(found) == 0 {
		return domain.RowBands{Stage: domain.StageMiss}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].yCenter < found[j].yCenter })

	// Lane boundaries are midpoints between adjacent labels, clamped to the
	// block so a lane never bleeds into a neighboring medication.
	boundaries := make([]float64, 0, len(found)+1)
	boundaries = append(boundaries, block.Box.Y0)
	for i := 0; i < len(found)-1; i++ {
		boundaries = append(boundaries, (found[i].yCenter+found[i+1].yCenter)/2)
	}
	boundaries = append(boundaries, block.Box.Y1)

	bands := domain.RowBands{Stage: domain.StageHeader}
	for i, f := range found {
		band := &domain.YBand{Y0: boundaries[i], Y1: boundaries[i+1]}
		switch f.lane {
		case laneBP:
			bands.BP = band
		case laneHR:
			bands.HR = band
		case laneAM:
			bands.AM = band
		case lanePM:
			bands.PM = band
		}
	}
	return bands
}

// BorrowSamePage fills each Miss with geometry from the nearest block on the
// same page that resolved from its own labels. Lanes are translated
// proportionally into the target block's vertical extent.
func BorrowSamePage(bands []domain.RowBands, blocksOnPage []domain.MedBlock) []domain.RowBands {
	out := make([]domain.RowBands, len(bands))
	copy(out, bands)
	for i := range out {
		if out[i].Stage != domain.StageMiss {
			continue
		}
		donor := nearestHeader(bands, i)
		if donor == -1 {
			continue
		}
		out[i] = translate(bands[donor], blocksOnPage[donor].Box, blocksOnPage[i].Box)
		out[i].Stage = domain.StagePage
	}
	return out
}

// BorrowAdjacent fills each remaining Miss from the same block position on
// one adjacent page, and only from a block that carried its own labels.
// Borrowing from a borrower would chain geometry through pages with no
// evidence of their own, so those donors are skipped.
func BorrowAdjacent(bands []domain.RowBands, blocksOnPage []domain.MedBlock, donorBands []domain.RowBands, donorBlocks []domain.MedBlock) []domain.RowBands {
	out := make([]domain.RowBands, len(bands))
	copy(out, bands)
	for i := range out {
		if out[i].Stage != domain.StageMiss {
			continue
		}
		if i >= len(donorBands) || donorBands[i].Stage != domain.StageHeader {
			continue
		}
		out[i] = translate(donorBands[i], donorBlocks[i].Box, blocksOnPage[i].Box)
		out[i].Stage = domain.StageBorrow
	}
	return out
}

func nearestHeader(bands []domain.RowBands, from int) int {
	best, bestDist := -1, 0
	for i := range bands {
		if bands[i].Stage != domain.StageHeader {
			continue
		}
		dist := i - from
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func translate(src domain.RowBands, from, to domain.Rect) domain.RowBands {
	out := domain.RowBands{}
	out.BP = translateBand(src.BP, from, to)
	out.HR = translateBand(src.HR, from, to)
	out.AM = translateBand(src.AM, from, to)
	out.PM = translateBand(src.PM, from, to)
	return out
}

func translateBand(b *domain.YBand, from, to domain.Rect) *domain.YBand {
	if b == nil {
		return nil
	}
	fh := from.Height()
	if fh <= 0 {
		return nil
	}
	scale := to.Height() / fh
	return &domain.YBand{
		Y0: to.Y0 + (b.Y0-from.Y0)*scale,
		Y1: to.Y0 + (b.Y1-from.Y0)*scale,
	}
}
