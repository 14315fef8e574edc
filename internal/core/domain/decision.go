package domain

import "fmt"

// Outcome classifies one (due cell, vital kind) evaluation.
type Outcome string

const (
	OutcomeDCD       Outcome = "DC'D"
	OutcomeHoldMiss  Outcome = "HOLD-MISS"
	OutcomeHeldOK    Outcome = "HELD-OK"
	OutcomeCompliant Outcome = "COMPLIANT"
	OutcomeNoRule    Outcome = "NO-RULE"
	OutcomeNote      Outcome = "NOTE"
)

// Decision is the final record for one dose slot and vital kind, carrying
// the evidence the report and UI need.
type Decision struct {
	RoomBed string    `json:"room_bed"`
	Hall    string    `json:"hall"`
	Slot    Slot      `json:"slot"`
	Page    int       `json:"page"`
	Day     int       `json:"day"`
	Block   int       `json:"block"`
	Title   string    `json:"title,omitempty"`
	Kind    VitalKind `json:"kind,omitempty"`
	Outcome Outcome   `json:"outcome"`
	Rule    *Rule     `json:"rule,omitempty"`
	Reading *Reading  `json:"reading,omitempty"`
	State   CellState `json:"state"`
	Note    string    `json:"note,omitempty"`
}

// DedupKey is the (slot identity, vital kind, rule identity) triple used to
// deduplicate decisions before counting.
func (d Decision) DedupKey() string {
	rule := ""
	if d.Rule != nil {
		rule = d.Rule.Identity()
	}
	return fmt.Sprintf("p%d/b%d/d%d/%s|%s|%s", d.Page, d.Block, d.Day, d.Slot, d.Kind, rule)
}
