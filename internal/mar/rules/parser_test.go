package rules

import (
	"testing"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

func TestParseAcceptsExclusiveComparators(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.Rule
	}{
		{
			name: "symbolic less than",
			text: "HOLD if SBP < 110",
			want: domain.Rule{Kind: domain.VitalSBP, Cmp: domain.CmpLT, Threshold: 110},
		},
		{
			name: "worded less than",
			text: "hold for pulse less than 60",
			want: domain.Rule{Kind: domain.VitalHR, Cmp: domain.CmpLT, Threshold: 60},
		},
		{
			name: "worded greater than",
			text: "Hold dose if heart rate greater than 100",
			want: domain.Rule{Kind: domain.VitalHR, Cmp: domain.CmpGT, Threshold: 100},
		},
		{
			name: "abbreviated comparator",
			text: "HOLD HR GT 100",
			want: domain.Rule{Kind: domain.VitalHR, Cmp: domain.CmpGT, Threshold: 100},
		},
		{
			name: "no spaces",
			text: "hold if sbp<100",
			want: domain.Rule{Kind: domain.VitalSBP, Cmp: domain.CmpLT, Threshold: 100},
		},
		{
			name: "bp counts as systolic",
			text: "hold if BP is < 90",
			want: domain.Rule{Kind: domain.VitalSBP, Cmp: domain.CmpLT, Threshold: 90},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.text)
			if len(got) != 1 {
				t.Fatalf("expected 1 rule, got %d: %+v", len(got), got)
			}
			r := got[0]
			if r.Kind != tc.want.Kind || r.Cmp != tc.want.Cmp || r.Threshold != tc.want.Threshold {
				t.Fatalf("got %+v, want %+v", r, tc.want)
			}
			if r.Confidence != domain.ConfidenceParsed {
				t.Fatalf("parsed rule must carry parsed confidence, got %v", r.Confidence)
			}
		})
	}
}

func TestParseRejectsInclusiveForms(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{name: "unicode leq", text: "HOLD if SBP ≤ 110"},
		{name: "unicode geq", text: "HOLD if HR ≥ 100"},
		{name: "ascii leq", text: "HOLD if SBP <= 110"},
		{name: "equals", text: "HOLD if SBP = 110"},
		{name: "at or below", text: "hold if sbp at or below 110"},
		{name: "equal to or less", text: "hold if hr equal to 60 or less"},
		{name: "no less than", text: "hold if sbp no less than 100"},
		{name: "no more than", text: "hold if hr no more than 100"},
		{name: "at least", text: "HOLD if SBP at least 100"},
		{name: "at most", text: "HOLD if HR at most 55"},
		{name: "single digit threshold", text: "HOLD if SBP < 9"},
		{name: "no comparator", text: "monitor SBP daily"},
		{name: "comparator too far from label", text: "hold if SBP drops well below what the cardiologist wants < 100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse(tc.text); len(got) != 0 {
				t.Fatalf("expected rejection, got %+v", got)
			}
		})
	}
}

func TestParseRejectionIsSegmentLocal(t *testing.T) {
	got := Parse("HOLD if SBP < 110; hold if HR equal to 60")
	if len(got) != 1 {
		t.Fatalf("expected only the clean segment's rule, got %+v", got)
	}
	if got[0].Kind != domain.VitalSBP || got[0].Threshold != 110 {
		t.Fatalf("wrong surviving rule: %+v", got[0])
	}
}

func TestParseDeduplicates(t *testing.T) {
	got := Parse("HOLD SBP < 110\nHOLD if SBP < 110\nhold if pulse < 60")
	if len(got) != 2 {
		t.Fatalf("expected 2 deduped rules, got %+v", got)
	}
}

func TestParseCombinedClausesShareOneLabel(t *testing.T) {
	// Both bounds of a combined clause name the vital once; each comparator
	// still yields its own rule.
	got := Parse("HOLD IF SBP <100 OR >160")
	if len(got) != 2 {
		t.Fatalf("expected 2 rules, got %+v", got)
	}
	if got[0].Kind != domain.VitalSBP || got[0].Cmp != domain.CmpLT || got[0].Threshold != 100 {
		t.Fatalf("unexpected lower bound %+v", got[0])
	}
	if got[1].Kind != domain.VitalSBP || got[1].Cmp != domain.CmpGT || got[1].Threshold != 160 {
		t.Fatalf("unexpected upper bound %+v", got[1])
	}
}

func TestParseWindowClosesAtNextLabel(t *testing.T) {
	got := Parse("HOLD if SBP < 110 and HR < 60")
	if len(got) != 2 {
		t.Fatalf("expected 2 rules, got %+v", got)
	}
	if got[0].Kind != domain.VitalSBP || got[0].Threshold != 110 {
		t.Fatalf("sbp clause captured wrong threshold: %+v", got[0])
	}
	if got[1].Kind != domain.VitalHR || got[1].Threshold != 60 {
		t.Fatalf("hr clause captured wrong threshold: %+v", got[1])
	}
}

func TestParseMultipleRulesKeepOrder(t *testing.T) {
	got := Parse("HOLD if SBP < 110 and HR < 60")
	if len(got) != 2 {
		t.Fatalf("expected 2 rules, got %+v", got)
	}
	if got[0].Kind != domain.VitalSBP || got[1].Kind != domain.VitalHR {
		t.Fatalf("rules out of order: %+v", got)
	}
}

func TestHoldIntent(t *testing.T) {
	if !HoldIntent("HOLD for SBP below parameters") {
		t.Fatalf("expected hold intent")
	}
	if HoldIntent("give with food") {
		t.Fatalf("unexpected hold intent")
	}
}

func TestMentionedVitals(t *testing.T) {
	got := MentionedVitals("Hold for low SBP or low pulse. Recheck SBP in 1 hour.")
	if len(got) != 2 || got[0] != domain.VitalSBP || got[1] != domain.VitalHR {
		t.Fatalf("unexpected vitals %v", got)
	}
}
