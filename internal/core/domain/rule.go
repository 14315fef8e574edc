package domain

import "fmt"

// VitalKind identifies which vital a rule or reading refers to.
type VitalKind string

const (
	VitalSBP VitalKind = "SBP"
	VitalHR  VitalKind = "HR"
)

// Comparator is a strict inequality. Inclusive comparators are rejected at
// parse time and never reach a Rule value.
type Comparator string

const (
	CmpLT Comparator = "<"
	CmpGT Comparator = ">"
)

// RuleConfidence distinguishes rules parsed from block text from configured
// fallback rules. The tag propagates to the final decision.
type RuleConfidence string

const (
	ConfidenceParsed  RuleConfidence = "parsed"
	ConfidenceDefault RuleConfidence = "default"
)

// Rule is a strict numeric hold rule for one vital kind. Immutable once
// created.
type Rule struct {
	Kind       VitalKind      `json:"kind"`
	Cmp        Comparator     `json:"cmp"`
	Threshold  int            `json:"threshold"`
	Confidence RuleConfidence `json:"confidence"`
	Text       string         `json:"text"`
}

// Triggers reports whether value satisfies the hold condition. The boundary
// is exclusive: SBP<110 does not trigger at 110, SBP>160 does not trigger at
// 160.
func (r Rule) Triggers(value int) bool {
	switch r.Cmp {
	case CmpLT:
		return value < r.Threshold
	case CmpGT:
		return value > r.Threshold
	}
	return false
}

// Display returns the canonical human-readable form used in reports.
func (r Rule) Display() string {
	if r.Text != "" {
		return r.Text
	}
	return fmt.Sprintf("Hold if %s %s %d", r.Kind, r.Cmp, r.Threshold)
}

// Identity keys the rule for decision deduplication.
func (r Rule) Identity() string {
	return fmt.Sprintf("%s%s%d", r.Kind, r.Cmp, r.Threshold)
}
