// Package tokenindex clusters a page's raw positioned tokens into lines and
// words and stitches values split across lines, such as a blood-pressure
// fraction broken between two rows. Building an index has no side effects
// and is idempotent: the same token set always yields the same clusters.
package tokenindex

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

const (
	defaultLineTolerance = 0.6
	defaultStitchMaxGap  = 1.5
	minLineHeight        = 4.0
	wordJoinGap          = 1.0
	stitchMaxXGap        = 18.0
)

var (
	danglingFractionRE = regexp.MustCompile(`^(\d{2,3})\s*/$`)
	digitsOnlyRE       = regexp.MustCompile(`^\d{1,3}$`)
)

// Options tune line bucketing and stitching. Zero values select defaults.
type Options struct {
	// LineTolerance is the y-proximity tolerance as a fraction of the
	// median token height.
	LineTolerance float64
	// StitchMaxGap is the max vertical gap between a dangling fraction and
	// its continuation, in multiples of the fraction's line height.
	StitchMaxGap float64
}

func (o Options) normalize() Options {
	if o.LineTolerance <= 0 {
		o.LineTolerance = defaultLineTolerance
	}
	if o.StitchMaxGap <= 0 {
		o.StitchMaxGap = defaultStitchMaxGap
	}
	return o
}

// Word is a horizontally merged run of tokens, or a stitched composite.
type Word struct {
	Text     string
	Box      domain.Rect
	Stitched bool
}

// Line is one horizontal band of words ordered left to right.
type Line struct {
	Words []Word
	Y0    float64
	Y1    float64
}

// Text joins the line's words with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// Index is the clustered, stitched view of one page's tokens.
type Index struct {
	pageIndex int
	width     float64
	height    float64
	lines     []Line
	words     []Word
}

// Build constructs the index for one page. A page with zero extractable
// tokens yields an empty index, never an error.
func Build(page domain.PageTokens, opts Options) *Index {
	opts = opts.normalize()

	ix := &Index{pageIndex: page.Index, width: page.Width, height: page.Height}

	tokens := make([]domain.Token, 0, len(page.Tokens))
	for _, t := range page.Tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		t.Box = t.Box.Normalize()
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return ix
	}

	tolerance := lineTolerance(tokens, opts.LineTolerance)
	ix.lines = clusterLines(tokens, tolerance)
	for _, line := range ix.lines {
		ix.words = append(ix.words, line.Words...)
	}
	ix.words = append(ix.words, stitch(ix.lines, opts.StitchMaxGap)...)
	return ix
}

// Empty reports whether the page produced no clusters. Downstream stages
// treat an empty index as "page skipped, continue".
func (ix *Index) Empty() bool { return len(ix.words) == 0 }

func (ix *Index) Page() int       { return ix.pageIndex }
func (ix *Index) Width() float64  { return ix.width }
func (ix *Index) Height() float64 { return ix.height }

// Lines returns the clustered lines ordered top to bottom.
func (ix *Index) Lines() []Line { return ix.lines }

// Words returns every word on the page, stitched composites included.
func (ix *Index) Words() []Word { return ix.words }

// WordsIn returns the words whose center falls inside r.
func (ix *Index) WordsIn(r domain.Rect) []Word {
	r = r.Normalize()
	var out []Word
	for _, w := range ix.words {
		if r.Contains(w.Box.CenterX(), w.Box.CenterY()) {
			out = append(out, w)
		}
	}
	return out
}

// TextIn returns the text of every line intersecting r, clipped to the words
// inside it, joined with newlines.
func (ix *Index) TextIn(r domain.Rect) string {
	r = r.Normalize()
	var lines []string
	for _, line := range ix.lines {
		var parts []string
		for _, w := range line.Words {
			if r.Contains(w.Box.CenterX(), w.Box.CenterY()) {
				parts = append(parts, w.Text)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func lineTolerance(tokens []domain.Token, fraction float64) float64 {
	heights := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		h := t.Box.Height()
		if h < minLineHeight {
			h = minLineHeight
		}
		heights = append(heights, h)
	}
	sort.Float64s(heights)
	median := heights[len(heights)/2]
	tol := median * fraction
	if tol < minLineHeight {
		tol = minLineHeight
	}
	return tol
}

// clusterLines buckets tokens by vertical center distance. Adjacent rows of
// dense print sit only a couple of points apart edge to edge, well inside the
// tolerance, so box edges are never compared.
func clusterLines(tokens []domain.Token, tolerance float64) []Line {
	ordered := make([]domain.Token, len(tokens))
	copy(ordered, tokens)
	sort.Slice(ordered, func(i, j int) bool {
		yi, yj := ordered[i].Box.CenterY(), ordered[j].Box.CenterY()
		if yi != yj {
			return yi < yj
		}
		return ordered[i].Box.X0 < ordered[j].Box.X0
	})

	var lines []Line
	var bucket []domain.Token
	prevCenter := 0.0
	for _, t := range ordered {
		c := t.Box.CenterY()
		if len(bucket) > 0 && c-prevCenter > tolerance {
			lines = append(lines, buildLine(bucket))
			bucket = nil
		}
		bucket = append(bucket, t)
		prevCenter = c
	}
	if len(bucket) > 0 {
		lines = append(lines, buildLine(bucket))
	}
	return lines
}

// buildLine merges horizontally adjacent fragments into words. Extractors
// frequently split a word into kerned runs; fragments closer than wordJoinGap
// are rejoined.
func buildLine(tokens []domain.Token) Line {
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Box.X0 < tokens[j].Box.X0 })

	var words []Word
	for _, t := range tokens {
		if n := len(words); n > 0 && t.Box.X0-words[n-1].Box.X1 <= wordJoinGap {
			words[n-1].Text += t.Text
			words[n-1].Box = words[n-1].Box.Union(t.Box)
			continue
		}
		words = append(words, Word{Text: t.Text, Box: t.Box})
	}

	line := Line{Words: words, Y0: tokens[0].Box.Y0, Y1: tokens[0].Box.Y1}
	for _, t := range tokens {
		if t.Box.Y0 < line.Y0 {
			line.Y0 = t.Box.Y0
		}
		if t.Box.Y1 > line.Y1 {
			line.Y1 = t.Box.Y1
		}
	}
	return line
}

// stitch rejoins values split across lines: a word ending mid-fraction is
// combined with the digits-only word immediately below it in the same
// x-range, e.g. "120/" above "80" becomes "120/80".
func stitch(lines []Line, maxGapFactor float64) []Word {
	var out []Word
	for i, line := range lines {
		for _, w := range line.Words {
			m := danglingFractionRE.FindStringSubmatch(strings.TrimSpace(w.Text))
			if m == nil {
				continue
			}
			maxGap := (line.Y1 - line.Y0) * maxGapFactor
			if maxGap < minLineHeight {
				maxGap = minLineHeight
			}
			below := findContinuation(lines[i+1:], w, maxGap)
			if below == nil {
				continue
			}
			out = append(out, Word{
				Text:     m[1] + "/" + strings.TrimSpace(below.Text),
				Box:      w.Box.Union(below.Box),
				Stitched: true,
			})
		}
	}
	return out
}

func findContinuation(below []Line, w Word, maxGap float64) *Word {
	for li := range below {
		line := below[li]
		if line.Y0 > w.Box.Y1+maxGap {
			return nil
		}
		for wi := range line.Words {
			cand := &line.Words[wi]
			if !digitsOnlyRE.MatchString(strings.TrimSpace(cand.Text)) {
				continue
			}
			if xGap(w.Box, cand.Box) > stitchMaxXGap {
				continue
			}
			return cand
		}
	}
	return nil
}

func xGap(a, b domain.Rect) float64 {
	overlap := minf(a.X1, b.X1) - maxf(a.X0, b.X0)
	if overlap >= 0 {
		return 0
	}
	return -overlap
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
