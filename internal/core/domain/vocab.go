package domain

// Vocabulary is the read-only rules vocabulary document consumed once per
// run: allowed administration codes, default per-vital fallback rules,
// physiologic gating bounds and the acceptance-gate ceiling.
type Vocabulary struct {
	AllowedCodes []int          `yaml:"allowed_codes"`
	DefaultRules map[VitalKind]DefaultRule
	Bounds       VitalBounds `yaml:"bounds"`
	GatedCeiling float64     `yaml:"gated_ceiling"`

	codeSet map[int]struct{}
}

// DefaultRule is the configured fallback applied when a block requires a
// vital (has a row band for it) but no strict rule was parsed.
type DefaultRule struct {
	Cmp       Comparator `yaml:"comparator"`
	Threshold int        `yaml:"threshold"`
}

// AllowsCode reports whether code belongs to the closed allowed set.
func (v *Vocabulary) AllowsCode(code int) bool {
	if v.codeSet == nil {
		v.codeSet = make(map[int]struct{}, len(v.AllowedCodes))
		for _, c := range v.AllowedCodes {
			v.codeSet[c] = struct{}{}
		}
	}
	_, ok := v.codeSet[code]
	return ok
}

// DefaultRuleFor returns the configured fallback rule for kind, tagged with
// default confidence, or false when no fallback is configured.
func (v *Vocabulary) DefaultRuleFor(kind VitalKind) (Rule, bool) {
	d, ok := v.DefaultRules[kind]
	if !ok {
		return Rule{}, false
	}
	return Rule{
		Kind:       kind,
		Cmp:        d.Cmp,
		Threshold:  d.Threshold,
		Confidence: ConfidenceDefault,
	}, true
}
