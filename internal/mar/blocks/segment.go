// Package blocks segments the left-hand rule panel of a MAR page into
// medication blocks. A block starts at a title line (drug name and dose
// unit) and runs until the next title or a large vertical gap.
package blocks

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

var titleUnitTokens = map[string]struct{}{
	"mg": {}, "mcg": {}, "tab": {}, "tabs": {}, "cap": {}, "caps": {}, "ml": {},
}

const (
	gapMultiplier   = 1.5
	titleUpperRatio = 0.65
	minLineHeight   = 10.0
)

// Config tunes panel detection. Zero values select defaults.
type Config struct {
	// PanelRatio is the default panel width as a fraction of the page.
	PanelRatio float64
	// HeaderXHint, when positive, is the x center of the first day-number
	// header label; the panel is clamped to end left of it.
	HeaderXHint float64
}

func (c Config) normalize() Config {
	if c.PanelRatio <= 0 {
		c.PanelRatio = 0.35
	}
	return c
}

// Segment returns the medication blocks of one page, ordered top to bottom.
func Segment(ix *tokenindex.Index, cfg Config) []domain.MedBlock {
	cfg = cfg.normalize()
	if ix.Empty() {
		return nil
	}

	limit := panelLimit(ix.Width(), cfg)
	var panelLines []tokenindex.Line
	for _, line := range ix.Lines() {
		var kept []tokenindex.Word
		for _, w := range line.Words {
			if !w.Stitched && w.Box.CenterX() <= limit {
				kept = append(kept, w)
			}
		}
		if len(kept) > 0 {
			panelLines = append(panelLines, tokenindex.Line{Words: kept, Y0: line.Y0, Y1: line.Y1})
		}
	}
	if len(panelLines) == 0 {
		return nil
	}

	gap := medianHeight(panelLines) * gapMultiplier

	var blocks []domain.MedBlock
	var current []tokenindex.Line
	for i, line := range panelLines {
		startNew := len(current) == 0 ||
			isTitleLine(line) ||
			(i > 0 && line.Y0-panelLines[i-1].Y1 > gap)
		if startNew && len(current) > 0 {
			blocks = append(blocks, buildBlock(current, ix.Page(), limit))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, buildBlock(current, ix.Page(), limit))
	}
	return blocks
}

func panelLimit(pageWidth float64, cfg Config) float64 {
	limit := pageWidth * cfg.PanelRatio
	if cfg.HeaderXHint > 0 {
		hint := cfg.HeaderXHint - 40.0
		if hint < limit {
			limit = hint
		}
	}
	lower, upper := pageWidth*0.25, pageWidth*0.45
	if limit < lower {
		limit = lower
	}
	if limit > upper {
		limit = upper
	}
	return limit
}

func medianHeight(lines []tokenindex.Line) float64 {
	heights := make([]float64, 0, len(lines))
	for _, l := range lines {
		if h := l.Y1 - l.Y0; h > 0 {
			heights = append(heights, h)
		}
	}
	if len(heights) == 0 {
		return minLineHeight
	}
	sort.Float64s(heights)
	h := heights[len(heights)/2]
	if h < minLineHeight {
		h = minLineHeight
	}
	return h
}

// isTitleLine recognizes the drug-title line that anchors a block: mostly
// uppercase, carrying a dose-unit token, or hugging the panel's left edge.
func isTitleLine(line tokenindex.Line) bool {
	text := strings.TrimSpace(line.Text())
	if text == "" {
		return false
	}
	tokens := strings.Fields(text)

	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	upperRatio := 0.0
	if letters > 0 {
		upperRatio = float64(upper) / float64(letters)
	}

	hasUnit := false
	for _, tok := range tokens {
		if _, ok := titleUnitTokens[strings.ToLower(strings.Trim(tok, ".,"))]; ok {
			hasUnit = true
			break
		}
	}

	if hasUnit && upperRatio >= titleUpperRatio {
		return true
	}
	// A lone uppercase token is more likely a row label than a drug name,
	// so the caps-only branch needs at least two tokens.
	if letters >= 6 && upperRatio >= 0.85 && len(tokens) >= 2 && len(tokens) <= 6 {
		return true
	}

	// Mixed-case export quirk: the name stays uppercase while the strength
	// suffix is lowercased. Two all-caps tokens plus a unit still anchor.
	dominantUpper := 0
	for _, tok := range tokens {
		if len(tok) >= 3 && tok == strings.ToUpper(tok) && strings.IndexFunc(tok, unicode.IsLetter) >= 0 {
			dominantUpper++
		}
	}
	return dominantUpper >= 2 && hasUnit
}

func buildBlock(lines []tokenindex.Line, page int, panelX1 float64) domain.MedBlock {
	box := domain.Rect{X0: 0, Y0: lines[0].Y0, X1: panelX1, Y1: lines[0].Y1}
	var texts []string
	for _, l := range lines {
		if l.Y0 < box.Y0 {
			box.Y0 = l.Y0
		}
		if l.Y1 > box.Y1 {
			box.Y1 = l.Y1
		}
		if t := strings.TrimSpace(l.Text()); t != "" {
			texts = append(texts, t)
		}
	}
	title := ""
	if len(texts) > 0 {
		title = texts[0]
	}
	return domain.MedBlock{
		Page:  page,
		Box:   box,
		Title: title,
		Text:  strings.Join(texts, "\n"),
	}
}
