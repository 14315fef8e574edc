package domain

// ColumnBand is a half-open x interval on one page tagged with the calendar
// day it belongs to. Bands on a page never overlap and are ordered by day.
type ColumnBand struct {
	Page int     `json:"page"`
	Day  int     `json:"day"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
}

func (b ColumnBand) Width() float64 { return b.X1 - b.X0 }

func (b ColumnBand) Contains(x float64) bool { return x >= b.X0 && x < b.X1 }

// RowStage records how a medication block's row bands were resolved.
type RowStage int

const (
	// StageHeader means the block carried its own row labels.
	StageHeader RowStage = iota
	// StagePage means the geometry was borrowed from a labeled block on the
	// same page.
	StagePage
	// StageBorrow means the geometry was borrowed from the same block
	// position on an adjacent page (cascade depth exactly one).
	StageBorrow
	// StageMiss means no row bands could be resolved; due cells in the block
	// degrade to whole-block sampling.
	StageMiss
)

func (s RowStage) String() string {
	switch s {
	case StageHeader:
		return "header"
	case StagePage:
		return "page"
	case StageBorrow:
		return "borrow"
	case StageMiss:
		return "miss"
	}
	return "unknown"
}

// YBand is a vertical interval within a medication block.
type YBand struct {
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

func (b YBand) Height() float64 { return b.Y1 - b.Y0 }

// RowBands holds the resolved vital and dose lanes for one medication block
// plus the provenance stage that produced them. Any lane may be nil; a Miss
// resolution has all four nil.
type RowBands struct {
	BP    *YBand   `json:"bp,omitempty"`
	HR    *YBand   `json:"hr,omitempty"`
	AM    *YBand   `json:"am,omitempty"`
	PM    *YBand   `json:"pm,omitempty"`
	Stage RowStage `json:"stage"`
}

// Resolved reports whether at least one lane was found.
func (r RowBands) Resolved() bool {
	return r.BP != nil || r.HR != nil || r.AM != nil || r.PM != nil
}

// SlotBand returns the lane for the dose slot, falling back to the union of
// AM and PM lanes when the specific lane is missing.
func (r RowBands) SlotBand(slot Slot) *YBand {
	switch slot {
	case SlotAM:
		if r.AM != nil {
			return r.AM
		}
	case SlotPM:
		if r.PM != nil {
			return r.PM
		}
	}
	if r.AM != nil && r.PM != nil {
		lo, hi := r.AM.Y0, r.PM.Y1
		if r.PM.Y0 < lo {
			lo = r.PM.Y0
		}
		if r.AM.Y1 > hi {
			hi = r.AM.Y1
		}
		return &YBand{Y0: lo, Y1: hi}
	}
	if r.AM != nil {
		return r.AM
	}
	return r.PM
}
