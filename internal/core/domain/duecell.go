package domain

import "fmt"

// Slot is the dose slot within the audit-date column.
type Slot string

const (
	SlotAM Slot = "AM"
	SlotPM Slot = "PM"
)

// CellStateKind enumerates the administration states a due cell can resolve
// to. Precedence during classification is DCD, then allowed code, then
// given; everything else is unknown.
type CellStateKind int

const (
	CellUnknown CellStateKind = iota
	CellDCD
	CellAllowedCode
	CellGiven
)

func (k CellStateKind) String() string {
	switch k {
	case CellDCD:
		return "DCD"
	case CellAllowedCode:
		return "ALLOWED_CODE"
	case CellGiven:
		return "GIVEN"
	}
	return "UNKNOWN"
}

// CellState is the resolved administration state of one due cell. Raw marker
// tokens are retained for diagnostics.
type CellState struct {
	Kind    CellStateKind `json:"kind"`
	Code    int           `json:"code,omitempty"`
	GivenAt string        `json:"given_at,omitempty"`
	Raw     []string      `json:"raw,omitempty"`
	Note    string        `json:"note,omitempty"`
}

// DueCell identifies one (block, column, slot) inspection target.
type DueCell struct {
	Block  int        `json:"block"`
	Column ColumnBand `json:"column"`
	Slot   Slot       `json:"slot"`
	State  CellState  `json:"state"`
}

// Identity keys the due cell for decision deduplication.
func (c DueCell) Identity() string {
	return fmt.Sprintf("p%d/b%d/d%d/%s", c.Column.Page, c.Block, c.Column.Day, c.Slot)
}
