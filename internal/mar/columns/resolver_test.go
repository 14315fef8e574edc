package columns

import (
	"testing"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

func headerPage(t *testing.T, days ...string) *tokenindex.Index {
	t.Helper()
	page := domain.PageTokens{Index: 0, Width: 700, Height: 900}
	x := 100.0
	for _, d := range days {
		page.Tokens = append(page.Tokens, domain.Token{
			Text: d,
			Box:  domain.Rect{X0: x, Y0: 40, X1: x + 12, Y1: 50},
		})
		x += 60
	}
	return tokenindex.Build(page, tokenindex.Options{})
}

func TestResolveBuildsMidpointBands(t *testing.T) {
	ix := headerPage(t, "1", "2", "3", "4", "5", "6")
	bands := Resolve(ix, Config{})
	if len(bands) != 6 {
		t.Fatalf("expected 6 bands, got %d", len(bands))
	}
	if bands[0].X0 != 0 {
		t.Fatalf("first band must extend to page edge, got x0=%v", bands[0].X0)
	}
	if bands[5].X1 != 700 {
		t.Fatalf("last band must extend to page edge, got x1=%v", bands[5].X1)
	}
	// Midpoint between the centers of labels 1 (106) and 2 (166).
	if got := bands[0].X1; got != 136 {
		t.Fatalf("expected boundary at 136, got %v", got)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].X0 != bands[i-1].X1 {
			t.Fatalf("bands must tile without overlap: %v / %v", bands[i-1], bands[i])
		}
		if bands[i].Day <= bands[i-1].Day {
			t.Fatalf("bands must be ordered by day: %v / %v", bands[i-1], bands[i])
		}
	}
}

func TestResolveAllowsMonthWraparound(t *testing.T) {
	ix := headerPage(t, "29", "30", "31", "1", "2", "3")
	bands := Resolve(ix, Config{})
	if len(bands) != 6 {
		t.Fatalf("expected 6 bands across month boundary, got %d", len(bands))
	}
	if bands[2].Day != 31 || bands[3].Day != 1 {
		t.Fatalf("expected 31 then 1, got %d then %d", bands[2].Day, bands[3].Day)
	}
}

func TestResolveDropsStrayNumerics(t *testing.T) {
	page := domain.PageTokens{Index: 0, Width: 700, Height: 900}
	x := 100.0
	for _, d := range []string{"5", "6", "7", "8", "9", "10"} {
		page.Tokens = append(page.Tokens, domain.Token{Text: d, Box: domain.Rect{X0: x, Y0: 40, X1: x + 12, Y1: 50}})
		x += 60
	}
	// A stray room number on the same header line, far right, breaks
	// monotonicity and must not become a column.
	page.Tokens = append(page.Tokens, domain.Token{Text: "3", Box: domain.Rect{X0: 620, Y0: 40, X1: 632, Y1: 50}})

	bands := Resolve(tokenindex.Build(page, tokenindex.Options{}), Config{})
	if len(bands) != 6 {
		t.Fatalf("expected stray numeric dropped, got %d bands", len(bands))
	}
	if bands[len(bands)-1].Day != 10 {
		t.Fatalf("expected last day 10, got %d", bands[len(bands)-1].Day)
	}
}

func TestResolveDeduplicatesDoubledLabels(t *testing.T) {
	page := domain.PageTokens{Index: 0, Width: 700, Height: 900}
	x := 100.0
	for _, d := range []string{"1", "2", "3", "4", "5"} {
		page.Tokens = append(page.Tokens, domain.Token{Text: d, Box: domain.Rect{X0: x, Y0: 40, X1: x + 5, Y1: 50}})
		// Kerning double of the same glyph a few points to the right.
		page.Tokens = append(page.Tokens, domain.Token{Text: d, Box: domain.Rect{X0: x + 7, Y0: 40, X1: x + 12, Y1: 50}})
		x += 60
	}

	bands := Resolve(tokenindex.Build(page, tokenindex.Options{}), Config{MinSpacing: 10})
	if len(bands) != 5 {
		t.Fatalf("expected doubled labels collapsed to 5 bands, got %d", len(bands))
	}
}

func TestResolveMergesNarrowBands(t *testing.T) {
	page := domain.PageTokens{Index: 0, Width: 700, Height: 900}
	centers := []float64{100, 150, 154, 158, 220, 280}
	for i, c := range centers {
		page.Tokens = append(page.Tokens, domain.Token{
			Text: []string{"1", "2", "3", "4", "5", "6"}[i],
			Box:  domain.Rect{X0: c - 1, Y0: 40, X1: c + 1, Y1: 50},
		})
	}

	bands := Resolve(tokenindex.Build(page, tokenindex.Options{}), Config{MinSpacing: 1})
	for i := 1; i < len(bands); i++ {
		if bands[i].X0 != bands[i-1].X1 {
			t.Fatalf("merged bands must still tile: %+v", bands)
		}
	}
	for _, b := range bands {
		if b.Width() < 5.0 {
			t.Fatalf("band narrower than minimum survived: %+v", b)
		}
	}
}

func TestResolveNoHeaderYieldsNoBands(t *testing.T) {
	page := domain.PageTokens{Index: 0, Width: 700, Height: 900, Tokens: []domain.Token{
		{Text: "LISINOPRIL 10 MG", Box: domain.Rect{X0: 10, Y0: 200, X1: 150, Y1: 212}},
	}}
	if bands := Resolve(tokenindex.Build(page, tokenindex.Options{}), Config{}); bands != nil {
		t.Fatalf("expected nil bands without a header, got %v", bands)
	}
}

func TestForDay(t *testing.T) {
	bands := []domain.ColumnBand{{Day: 14, X0: 0, X1: 50}, {Day: 15, X0: 50, X1: 100}}
	band, ok := ForDay(bands, 15)
	if !ok || band.X0 != 50 {
		t.Fatalf("expected day-15 band, got %v ok=%v", band, ok)
	}
	if _, ok := ForDay(bands, 16); ok {
		t.Fatalf("expected no band for day 16")
	}
}
