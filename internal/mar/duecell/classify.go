// Package duecell classifies the administration markings found in one
// (block, column, slot) cell. Precedence is fixed: a cross-out beats an
// administration code, a code beats a given mark, and anything else is
// unknown. The classifier never guesses; unrecognized cells surface as
// UNKNOWN with a note instead of a silent skip.
package duecell

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

var (
	crossRE = regexp.MustCompile(`(?i)^x+$`)
	dcdRE   = regexp.MustCompile(`(?i)^(?:dcd|dc'?d|d/c'?d?)$`)
	codeRE  = regexp.MustCompile(`^\d{1,2}$`)
	timeRE  = regexp.MustCompile(`^(?:[01]?\d|2[0-3]):[0-5]\d$`)
)

var checkMarks = map[string]struct{}{
	"✓": {}, "✔": {}, "√": {},
}

// ColumnCrossed reports whether any marking in the column's full block
// region is a cross-out. A vertical X through the date column voids both
// dose slots of the block, not just the slot it happens to overlap.
func ColumnCrossed(words []tokenindex.Word) bool {
	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if crossRE.MatchString(t) || dcdRE.MatchString(t) {
			return true
		}
	}
	return false
}

// Classify resolves the state of one due cell from the words inside it.
// columnCrossed carries the column-level cross-out, which wins regardless
// of what the slot cell itself contains.
func Classify(words []tokenindex.Word, columnCrossed bool, allows func(int) bool) domain.CellState {
	raw := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Text); t != "" {
			raw = append(raw, t)
		}
	}

	if columnCrossed {
		return domain.CellState{Kind: domain.CellDCD, Raw: raw}
	}
	for _, t := range raw {
		if crossRE.MatchString(t) || dcdRE.MatchString(t) {
			return domain.CellState{Kind: domain.CellDCD, Raw: raw}
		}
	}

	for _, t := range raw {
		if !codeRE.MatchString(t) {
			continue
		}
		code, err := strconv.Atoi(t)
		if err != nil {
			continue
		}
		if allows(code) {
			return domain.CellState{Kind: domain.CellAllowedCode, Code: code, Raw: raw}
		}
		return domain.CellState{
			Kind: domain.CellUnknown,
			Raw:  raw,
			Note: fmt.Sprintf("unexpected code %d", code),
		}
	}

	for _, t := range raw {
		if timeRE.MatchString(t) {
			return domain.CellState{Kind: domain.CellGiven, GivenAt: t, Raw: raw}
		}
		if _, ok := checkMarks[t]; ok {
			return domain.CellState{Kind: domain.CellGiven, Raw: raw}
		}
	}

	if len(raw) == 0 {
		return domain.CellState{Kind: domain.CellUnknown, Note: "empty cell"}
	}
	return domain.CellState{Kind: domain.CellUnknown, Raw: raw, Note: "unrecognized markings"}
}
