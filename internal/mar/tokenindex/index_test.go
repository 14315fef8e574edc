package tokenindex

import (
	"reflect"
	"testing"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

func tok(text string, x0, y0, x1, y1 float64) domain.Token {
	return domain.Token{Text: text, Box: domain.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func TestBuildClustersTokensIntoLines(t *testing.T) {
	page := domain.PageTokens{
		Width:  600,
		Height: 800,
		Tokens: []domain.Token{
			tok("HOLD", 10, 100, 40, 110),
			tok("if", 44, 101, 52, 110),
			tok("SBP", 60, 99, 85, 110),
			tok("AM", 10, 140, 30, 150),
		},
	}

	ix := Build(page, Options{})
	lines := ix.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := lines[0].Text(); got != "HOLD if SBP" {
		t.Fatalf("expected first line %q, got %q", "HOLD if SBP", got)
	}
	if got := lines[1].Text(); got != "AM" {
		t.Fatalf("expected second line %q, got %q", "AM", got)
	}
}

func TestBuildMergesKernedFragments(t *testing.T) {
	page := domain.PageTokens{
		Width:  600,
		Height: 800,
		Tokens: []domain.Token{
			tok("12", 10, 100, 22, 110),
			tok("0/80", 22.5, 100, 46, 110),
		},
	}

	ix := Build(page, Options{})
	words := ix.Lines()[0].Words
	if len(words) != 1 {
		t.Fatalf("expected fragments merged into 1 word, got %d", len(words))
	}
	if words[0].Text != "120/80" {
		t.Fatalf("expected merged word 120/80, got %q", words[0].Text)
	}
}

func TestBuildKeepsTightlyLeadedLinesApart(t *testing.T) {
	// A title row and its rule row printed 2pt apart edge to edge must stay
	// two lines, or the block text mangles into one run.
	page := domain.PageTokens{
		Width:  600,
		Height: 800,
		Tokens: []domain.Token{
			tok("LISINOPRIL", 10, 100, 80, 110),
			tok("HOLD", 10, 112, 40, 122),
			tok("if", 44, 112, 52, 122),
			tok("SBP", 60, 112, 85, 122),
			tok("<", 90, 112, 96, 122),
			tok("110", 100, 112, 118, 122),
		},
	}

	ix := Build(page, Options{})
	lines := ix.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), ix.TextIn(domain.Rect{X1: 600, Y1: 800}))
	}
	if got := lines[0].Text(); got != "LISINOPRIL" {
		t.Fatalf("expected title line alone, got %q", got)
	}
	if got := lines[1].Text(); got != "HOLD if SBP < 110" {
		t.Fatalf("expected intact rule line, got %q", got)
	}
}

func TestStitchRejoinsFractionAcrossLines(t *testing.T) {
	page := domain.PageTokens{
		Width:  600,
		Height: 800,
		Tokens: []domain.Token{
			tok("120/", 200, 100, 226, 110),
			tok("80", 202, 112, 216, 122),
		},
	}

	ix := Build(page, Options{})
	var stitched []string
	for _, w := range ix.Words() {
		if w.Stitched {
			stitched = append(stitched, w.Text)
		}
	}
	if len(stitched) != 1 || stitched[0] != "120/80" {
		t.Fatalf("expected stitched value [120/80], got %v", stitched)
	}
}

func TestStitchIgnoresFarOrMisalignedContinuations(t *testing.T) {
	cases := []struct {
		name  string
		below domain.Token
	}{
		{name: "too far down", below: tok("80", 202, 180, 216, 190)},
		{name: "different column", below: tok("80", 320, 112, 334, 122)},
		{name: "not digits", below: tok("AM", 202, 112, 216, 122)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := domain.PageTokens{
				Width:  600,
				Height: 800,
				Tokens: []domain.Token{tok("120/", 200, 100, 226, 110), tc.below},
			}
			for _, w := range Build(page, Options{}).Words() {
				if w.Stitched {
					t.Fatalf("unexpected stitched word %q", w.Text)
				}
			}
		})
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	page := domain.PageTokens{
		Width:  600,
		Height: 800,
		Tokens: []domain.Token{
			tok("120/", 200, 100, 226, 110),
			tok("80", 202, 112, 216, 122),
			tok("BP", 10, 100, 25, 110),
		},
	}

	first := Build(page, Options{})
	second := Build(page, Options{})
	if !reflect.DeepEqual(first.Words(), second.Words()) {
		t.Fatalf("rebuilding the index changed its words")
	}
	if !reflect.DeepEqual(first.Lines(), second.Lines()) {
		t.Fatalf("rebuilding the index changed its lines")
	}
}

func TestEmptyPageYieldsEmptyIndex(t *testing.T) {
	ix := Build(domain.PageTokens{Width: 600, Height: 800}, Options{})
	if !ix.Empty() {
		t.Fatalf("expected empty index")
	}
	if got := ix.TextIn(domain.Rect{X1: 600, Y1: 800}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestWordsInRespectsBounds(t *testing.T) {
	page := domain.PageTokens{
		Width:  600,
		Height: 800,
		Tokens: []domain.Token{
			tok("inside", 100, 100, 130, 110),
			tok("outside", 400, 100, 440, 110),
		},
	}
	ix := Build(page, Options{})
	got := ix.WordsIn(domain.Rect{X0: 50, Y0: 50, X1: 200, Y1: 200})
	if len(got) != 1 || got[0].Text != "inside" {
		t.Fatalf("expected only the inside word, got %+v", got)
	}
}
