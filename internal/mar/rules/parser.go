// Package rules parses hold-threshold rules out of medication block text.
// The grammar is deliberately strict: only unambiguous exclusive
// comparators are accepted, and any segment that hints at an inclusive or
// equality form is discarded whole rather than guessed at.
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

// labelWindow is how far, in bytes, a comparator may trail its vital label.
// Combined clauses reuse one label ("SBP <100 OR >160"), so every comparator
// inside the window yields its own rule.
const labelWindow = 30

var (
	segmentRE = regexp.MustCompile(`[;\n]`)

	// Inclusive and equality phrasings void the whole segment. Unicode
	// comparators are normalized to <= / >= first so one check covers both.
	rejectRE = regexp.MustCompile(`(?i)<=|>=|=|\bat\s+or\b|\bequal|\bno\s+less\b|\bno\s+more\b|\bat\s+least\b|\bat\s+most\b`)

	cmpRE = regexp.MustCompile(`(?i)(<|>|\bless\s+than\b|\bgreater\s+than\b|\blt\b|\bgt\b)\s*(\d{2,3})\b`)

	vitalRE = regexp.MustCompile(`(?i)\b(sbp|systolic|heart\s+rate|hr|pulse|bp)\b`)
	holdRE  = regexp.MustCompile(`(?i)\bhold\b`)

	unicodeCmp = strings.NewReplacer("≤", "<=", "≥", ">=", "＜", "<", "＞", ">")
)

// Parse extracts every well-formed hold rule from the block text, deduped
// by kind, comparator and threshold, in order of first appearance.
func Parse(text string) []domain.Rule {
	normalized := unicodeCmp.Replace(text)

	var out []domain.Rule
	seen := make(map[string]struct{})
	for _, segment := range segmentRE.Split(normalized, -1) {
		if rejectRE.MatchString(segment) {
			continue
		}
		labels := vitalRE.FindAllStringSubmatchIndex(segment, -1)
		for i, loc := range labels {
			label := segment[loc[2]:loc[3]]
			tail := segment[loc[1]:]

			// The window closes early at the next vital label; its
			// comparators belong to that label.
			limit := len(tail)
			if i+1 < len(labels) {
				limit = labels[i+1][0] - loc[1]
			}

			for _, cm := range cmpRE.FindAllStringSubmatchIndex(tail, -1) {
				if cm[0] >= limit || cm[0] > labelWindow {
					break
				}
				cmpTok := tail[cm[2]:cm[3]]
				num := tail[cm[4]:cm[5]]
				threshold, err := strconv.Atoi(num)
				if err != nil {
					continue
				}
				rule := domain.Rule{
					Kind:       kindOf(label),
					Cmp:        comparatorOf(cmpTok),
					Threshold:  threshold,
					Confidence: domain.ConfidenceParsed,
					Text:       strings.Join(strings.Fields(label+" "+cmpTok+" "+num), " "),
				}
				if _, dup := seen[rule.Identity()]; dup {
					continue
				}
				seen[rule.Identity()] = struct{}{}
				out = append(out, rule)
			}
		}
	}
	return out
}

// HoldIntent reports whether the block text asks to hold the dose at all.
// Blocks with hold intent and a mentioned vital but no parsable threshold
// fall back to the configured default rule for that vital.
func HoldIntent(text string) bool { return holdRE.MatchString(text) }

// MentionedVitals returns the vital kinds the text refers to, deduped, in
// order of first mention.
func MentionedVitals(text string) []domain.VitalKind {
	var out []domain.VitalKind
	seen := make(map[domain.VitalKind]struct{})
	for _, m := range vitalRE.FindAllStringSubmatch(text, -1) {
		kind := kindOf(m[1])
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		out = append(out, kind)
	}
	return out
}

func kindOf(synonym string) domain.VitalKind {
	s := strings.ToLower(strings.Join(strings.Fields(synonym), " "))
	switch s {
	case "hr", "pulse", "heart rate":
		return domain.VitalHR
	}
	return domain.VitalSBP
}

func comparatorOf(token string) domain.Comparator {
	switch strings.ToLower(strings.Join(strings.Fields(token), " ")) {
	case ">", "greater than", "gt":
		return domain.CmpGT
	}
	return domain.CmpLT
}
