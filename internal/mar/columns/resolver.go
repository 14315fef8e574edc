// Package columns resolves per-page date-column bands from the day-number
// header line of a MAR grid.
package columns

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hushdesk/maraudit/internal/core/domain"
	"github.com/hushdesk/maraudit/internal/mar/tokenindex"
)

var dayLabelRE = regexp.MustCompile(`^(?:[1-9]|[12][0-9]|3[01])$`)

// Config tunes header detection. Zero values select defaults.
type Config struct {
	// HeaderRatio bounds the initial header scan to the top fraction of the
	// page; the scan widens when too few labels are found.
	HeaderRatio float64
	// ClusterTolerance is the y distance within which day labels are
	// considered part of the same header line.
	ClusterTolerance float64
	// MinSpacing deduplicates labels whose centers sit closer than this,
	// guarding against OCR/kerning doubling.
	MinSpacing float64
	// MinWidth is the narrowest acceptable band; narrower bands are merged
	// with a neighbor rather than dropped.
	MinWidth float64
	// MinLabels is the label count that stops the widening scan.
	MinLabels int
}

func (c Config) normalize() Config {
	if c.HeaderRatio <= 0 {
		c.HeaderRatio = 0.25
	}
	if c.ClusterTolerance <= 0 {
		c.ClusterTolerance = 6.0
	}
	if c.MinSpacing <= 0 {
		c.MinSpacing = 4.0
	}
	if c.MinWidth <= 0 {
		c.MinWidth = 5.0
	}
	if c.MinLabels <= 0 {
		c.MinLabels = 5
	}
	return c
}

type dayLabel struct {
	day     int
	xCenter float64
	yCenter float64
}

// Resolve returns the ordered, non-overlapping column bands for one page, or
// nil when no day-header line is found. A missing header is not an error;
// the page is flagged for the row-band cascade by the caller.
func Resolve(ix *tokenindex.Index, cfg Config) []domain.ColumnBand {
	cfg = cfg.normalize()
	if ix.Empty() {
		return nil
	}

	labels := headerLabels(ix, cfg)
	if len(labels) == 0 {
		return nil
	}

	labels = dedupeByCenter(labels, cfg.MinSpacing)
	labels = longestMonotonicRun(labels)
	if len(labels) == 0 {
		return nil
	}

	return bandsFromLabels(labels, ix.Page(), ix.Width(), cfg.MinWidth)
}

// ForDay returns the band for the audit day, or false when the page has no
// column for it.
func ForDay(bands []domain.ColumnBand, day int) (domain.ColumnBand, bool) {
	for _, b := range bands {
		if b.Day == day {
			return b, true
		}
	}
	return domain.ColumnBand{}, false
}

// headerLabels scans widening top fractions of the page until enough day
// labels appear, then keeps the dominant y-cluster. Continuation exports
// sometimes print the header lower than the nominal region.
func headerLabels(ix *tokenindex.Index, cfg Config) []dayLabel {
	limits := []float64{
		ix.Height() * cfg.HeaderRatio,
		ix.Height() * 0.5,
		ix.Height(),
	}

	var collected []dayLabel
	for _, limit := range limits {
		collected = collect(ix, limit)
		if len(collected) >= cfg.MinLabels {
			break
		}
	}
	if len(collected) == 0 {
		return nil
	}

	dominant := dominantCluster(collected, cfg.ClusterTolerance)
	sort.Slice(dominant, func(i, j int) bool { return dominant[i].xCenter < dominant[j].xCenter })
	return dominant
}

func collect(ix *tokenindex.Index, yLimit float64) []dayLabel {
	var out []dayLabel
	for _, w := range ix.Words() {
		if w.Box.CenterY() > yLimit {
			continue
		}
		text := strings.TrimSpace(w.Text)
		if !dayLabelRE.MatchString(text) {
			continue
		}
		day := 0
		for _, r := range text {
			day = day*10 + int(r-'0')
		}
		out = append(out, dayLabel{day: day, xCenter: w.Box.CenterX(), yCenter: w.Box.CenterY()})
	}
	return out
}

func dominantCluster(labels []dayLabel, tolerance float64) []dayLabel {
	sort.Slice(labels, func(i, j int) bool { return labels[i].yCenter < labels[j].yCenter })

	type cluster struct {
		items []dayLabel
		yMean float64
	}
	var clusters []*cluster
	for _, label := range labels {
		placed := false
		for _, c := range clusters {
			if abs(label.yCenter-c.yMean) <= tolerance {
				c.items = append(c.items, label)
				n := float64(len(c.items))
				c.yMean = (c.yMean*(n-1) + label.yCenter) / n
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, &cluster{items: []dayLabel{label}, yMean: label.yCenter})
		}
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].items) != len(clusters[j].items) {
			return len(clusters[i].items) > len(clusters[j].items)
		}
		return clusters[i].yMean < clusters[j].yMean
	})
	return clusters[0].items
}

func dedupeByCenter(labels []dayLabel, minSpacing float64) []dayLabel {
	var out []dayLabel
	for _, label := range labels {
		if n := len(out); n > 0 && label.xCenter-out[n-1].xCenter < minSpacing {
			// Doubled glyphs collapse to one label at the averaged center.
			out[n-1].xCenter = (out[n-1].xCenter + label.xCenter) / 2
			continue
		}
		out = append(out, label)
	}
	return out
}

// longestMonotonicRun keeps the longest contiguous run of day numbers that
// increases left to right, allowing a single wraparound at a month boundary
// (e.g. 30, 31, 1, 2). Stray numerics outside the run are discarded.
func longestMonotonicRun(labels []dayLabel) []dayLabel {
	if len(labels) == 0 {
		return nil
	}

	bestStart, bestLen := 0, 1
	start := 0
	wrapped := false
	for i := 1; i < len(labels); i++ {
		increasing := labels[i].day > labels[i-1].day
		wrap := !wrapped && labels[i-1].day >= 28 && labels[i].day == 1
		if increasing || wrap {
			if wrap {
				wrapped = true
			}
			if i-start+1 > bestLen {
				bestStart, bestLen = start, i-start+1
			}
			continue
		}
		start = i
		wrapped = false
	}
	return labels[bestStart : bestStart+bestLen]
}

func bandsFromLabels(labels []dayLabel, page int, pageWidth, minWidth float64) []domain.ColumnBand {
	boundaries := make([]float64, 0, len(labels)+1)
	boundaries = append(boundaries, 0)
	for i := 0; i < len(labels)-1; i++ {
		boundaries = append(boundaries, (labels[i].xCenter+labels[i+1].xCenter)/2)
	}
	boundaries = append(boundaries, pageWidth)

	bands := make([]domain.ColumnBand, 0, len(labels))
	for i, label := range labels {
		bands = append(bands, domain.ColumnBand{
			Page: page,
			Day:  label.day,
			X0:   boundaries[i],
			X1:   boundaries[i+1],
		})
	}
	return mergeNarrow(bands, minWidth)
}

// mergeNarrow folds bands below the minimum width into a neighbor instead of
// dropping them, so a valid date column is never lost.
func mergeNarrow(bands []domain.ColumnBand, minWidth float64) []domain.ColumnBand {
	for {
		idx := -1
		for i, b := range bands {
			if b.Width() < minWidth {
				idx = i
				break
			}
		}
		if idx == -1 || len(bands) == 1 {
			return bands
		}
		if idx == 0 {
			bands[1].X0 = bands[0].X0
			bands = bands[1:]
			continue
		}
		bands[idx-1].X1 = bands[idx].X1
		bands = append(bands[:idx], bands[idx+1:]...)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
