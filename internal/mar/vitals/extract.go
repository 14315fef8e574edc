// Package vitals extracts the vital reading backing a hold rule from the
// active date column. Lookup is strictly local: the vital lane of the
// block first, then inline markings in the dose slot, always within the
// same column band. A reading from a neighboring column is worse than no
// reading at all, so adjacent columns are never consulted.
package vitals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

var (
	fractionRE = regexp.MustCompile(`^(\d{2,3})/(\d{2,3})$`)
	plainRE    = regexp.MustCompile(`^(\d{2,3})$`)
)

// Extractor reads vitals and applies the physiologic gate. Gated readings
// are returned with the flag set; the caller records them but must not
// let them trigger a rule.
type Extractor struct {
	bounds domain.VitalBounds
}

func New(bounds domain.VitalBounds) *Extractor {
	return &Extractor{bounds: bounds}
}

// Read returns the reading for kind in the block's column, or false when
// the column carries no usable value. The reading keeps the provenance
// stage of the row bands it was read through.
func (e *Extractor) Read(ix *tokenindex.Index, bands domain.RowBands, column domain.ColumnBand, slot domain.Slot, kind domain.VitalKind) (domain.Reading, bool) {
	var lane *domain.YBand
	switch kind {
	case domain.VitalSBP:
		lane = bands.BP
	case domain.VitalHR:
		lane = bands.HR
	}

	if lane != nil {
		if r, ok := e.scan(ix, *lane, column, kind, bands.Stage); ok {
			return r, true
		}
	}
	// Nurses sometimes write the value straight into the dose cell instead
	// of the vital lane. Same column, same block, so it still counts.
	if slotBand := bands.SlotBand(slot); slotBand != nil {
		if r, ok := e.scan(ix, *slotBand, column, kind, bands.Stage); ok {
			return r, true
		}
	}
	return domain.Reading{}, false
}

func (e *Extractor) scan(ix *tokenindex.Index, lane domain.YBand, column domain.ColumnBand, kind domain.VitalKind, stage domain.RowStage) (domain.Reading, bool) {
	region := domain.Rect{X0: column.X0, Y0: lane.Y0, X1: column.X1, Y1: lane.Y1}
	words := ix.WordsIn(region)

	// Stitched fractions keep their source fragments in the index. The
	// fragment boxes are collected page-wide so a diastolic "80" is not
	// mistaken for a heart rate even when the fraction straddles two lanes.
	var stitched []domain.Rect
	for _, w := range ix.Words() {
		if w.Stitched {
			stitched = append(stitched, w.Box)
		}
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		switch kind {
		case domain.VitalSBP:
			m := fractionRE.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			return e.reading(kind, m[1], text, stage)
		case domain.VitalHR:
			if w.Stitched || strings.ContainsAny(text, "/:") {
				continue
			}
			if insideAny(w.Box, stitched) {
				continue
			}
			m := plainRE.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			return e.reading(kind, m[1], text, stage)
		}
	}
	return domain.Reading{}, false
}

func (e *Extractor) reading(kind domain.VitalKind, digits, raw string, stage domain.RowStage) (domain.Reading, bool) {
	value, err := strconv.Atoi(digits)
	if err != nil {
		return domain.Reading{}, false
	}
	return domain.Reading{
		Kind:  kind,
		Value: value,
		Raw:   raw,
		Stage: stage,
		Gated: e.bounds.Gated(kind, value),
	}, true
}

func insideAny(box domain.Rect, regions []domain.Rect) bool {
	for _, r := range regions {
		if r.Contains(box.CenterX(), box.CenterY()) {
			return true
		}
	}
	return false
}
