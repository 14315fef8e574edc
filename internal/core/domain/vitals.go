package domain

// Reading is one extracted vital value. Gated readings stay in the result
// for audit transparency but never trigger a rule.
type Reading struct {
	Kind  VitalKind `json:"kind"`
	Value int       `json:"value"`
	Raw   string    `json:"raw"`
	Stage RowStage  `json:"stage"`
	Gated bool      `json:"gated"`
}

// VitalBounds are the physiologic plausibility limits supplied by the rules
// vocabulary document. Values outside [Min, Max] are flagged gated.
type VitalBounds struct {
	SBPMin int `yaml:"sbp_min" json:"sbp_min"`
	SBPMax int `yaml:"sbp_max" json:"sbp_max"`
	HRMin  int `yaml:"hr_min" json:"hr_min"`
	HRMax  int `yaml:"hr_max" json:"hr_max"`
}

// Gated reports whether value falls outside the bound for kind.
func (b VitalBounds) Gated(kind VitalKind, value int) bool {
	switch kind {
	case VitalSBP:
		return value < b.SBPMin || value > b.SBPMax
	case VitalHR:
		return value < b.HRMin || value > b.HRMax
	}
	return true
}
