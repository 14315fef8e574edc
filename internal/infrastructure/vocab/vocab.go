// Package vocab loads the rules vocabulary document: allowed
// administration codes, default hold rules, physiologic gating bounds and
// the acceptance-gate ceiling.
package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

type ruleSchema struct {
	Comparator string `yaml:"comparator"`
	Threshold  int    `yaml:"threshold"`
}

type fileSchema struct {
	AllowedCodes []int `yaml:"allowed_codes"`
	DefaultRules struct {
		SBP *ruleSchema `yaml:"sbp"`
		HR  *ruleSchema `yaml:"hr"`
	} `yaml:"default_rules"`
	Bounds       domain.VitalBounds `yaml:"bounds"`
	GatedCeiling float64            `yaml:"gated_ceiling"`
}

// Default is the built-in vocabulary used when no document is configured.
func Default() *domain.Vocabulary {
	return &domain.Vocabulary{
		AllowedCodes: []int{4, 6, 11, 12, 15},
		DefaultRules: map[domain.VitalKind]domain.DefaultRule{
			domain.VitalSBP: {Cmp: domain.CmpLT, Threshold: 100},
			domain.VitalHR:  {Cmp: domain.CmpLT, Threshold: 60},
		},
		Bounds:       domain.VitalBounds{SBPMin: 60, SBPMax: 260, HRMin: 30, HRMax: 220},
		GatedCeiling: 0.15,
	}
}

// Load reads the vocabulary document at path, falling back to the
// built-in defaults when path is empty.
func Load(path string) (*domain.Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	var file fileSchema
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	v := Default()
	if len(file.AllowedCodes) > 0 {
		v.AllowedCodes = file.AllowedCodes
	}
	if file.Bounds != (domain.VitalBounds{}) {
		v.Bounds = file.Bounds
	}
	if file.GatedCeiling > 0 {
		v.GatedCeiling = file.GatedCeiling
	}
	if file.DefaultRules.SBP != nil {
		rule, err := toDefaultRule(*file.DefaultRules.SBP)
		if err != nil {
			return nil, fmt.Errorf("vocabulary %s: sbp default: %w", path, err)
		}
		v.DefaultRules[domain.VitalSBP] = rule
	}
	if file.DefaultRules.HR != nil {
		rule, err := toDefaultRule(*file.DefaultRules.HR)
		if err != nil {
			return nil, fmt.Errorf("vocabulary %s: hr default: %w", path, err)
		}
		v.DefaultRules[domain.VitalHR] = rule
	}
	return v, nil
}

// toDefaultRule enforces the same strictness as the block-text parser:
// default rules carry exclusive comparators only.
func toDefaultRule(s ruleSchema) (domain.DefaultRule, error) {
	var cmp domain.Comparator
	switch s.Comparator {
	case "<":
		cmp = domain.CmpLT
	case ">":
		cmp = domain.CmpGT
	default:
		return domain.DefaultRule{}, fmt.Errorf("comparator %q is not strict", s.Comparator)
	}
	if s.Threshold < 10 || s.Threshold > 999 {
		return domain.DefaultRule{}, fmt.Errorf("threshold %d out of range", s.Threshold)
	}
	return domain.DefaultRule{Cmp: cmp, Threshold: s.Threshold}, nil
}
