package domain

// Counts are the deduplicated per-run decision totals.
type Counts struct {
	Reviewed  int `json:"reviewed"`
	HoldMiss  int `json:"hold_miss"`
	HeldOK    int `json:"held_ok"`
	Compliant int `json:"compliant"`
	DCD       int `json:"dcd"`
	NoRule    int `json:"no_rule"`
	Notes     int `json:"notes"`
}

// StageCounts tracks the row-band resolution cascade. The sum of the four
// stages equals the number of (block, page) pairs in the document.
type StageCounts struct {
	Header int `json:"header"`
	Page   int `json:"page"`
	Borrow int `json:"borrow"`
	Miss   int `json:"miss"`
}

func (s StageCounts) Total() int { return s.Header + s.Page + s.Borrow + s.Miss }

// Add increments the counter for stage.
func (s *StageCounts) Add(stage RowStage) {
	switch stage {
	case StageHeader:
		s.Header++
	case StagePage:
		s.Page++
	case StageBorrow:
		s.Borrow++
	case StageMiss:
		s.Miss++
	}
}

// Diagnostics is the per-run instrumentation value. It is threaded through
// page processing and merged, never a process-wide singleton, so page-level
// resolution can run in parallel.
type Diagnostics struct {
	Stages           StageCounts `json:"stages"`
	ParsedRules      int         `json:"parsed_rules"`
	DefaultRules     int         `json:"default_rules"`
	GatedReadings    int         `json:"gated_readings"`
	TotalReadings    int         `json:"total_readings"`
	MissingVitals    int         `json:"missing_vitals"`
	CodeNoTrigger    int         `json:"code_no_trigger"`
	Deduped          int         `json:"deduped"`
	PagesTotal       int         `json:"pages_total"`
	PagesWithColumns int         `json:"pages_with_columns"`
	PagesSkipped     int         `json:"pages_skipped"`
	RowBandSets      int         `json:"row_band_sets"`
}

// Merge folds other into d.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Stages.Header += other.Stages.Header
	d.Stages.Page += other.Stages.Page
	d.Stages.Borrow += other.Stages.Borrow
	d.Stages.Miss += other.Stages.Miss
	d.ParsedRules += other.ParsedRules
	d.DefaultRules += other.DefaultRules
	d.GatedReadings += other.GatedReadings
	d.TotalReadings += other.TotalReadings
	d.MissingVitals += other.MissingVitals
	d.CodeNoTrigger += other.CodeNoTrigger
	d.Deduped += other.Deduped
	d.PagesTotal += other.PagesTotal
	d.PagesWithColumns += other.PagesWithColumns
	d.PagesSkipped += other.PagesSkipped
	d.RowBandSets += other.RowBandSets
}

// GatedRatio returns gated/total readings, zero when nothing was read.
func (d Diagnostics) GatedRatio() float64 {
	if d.TotalReadings == 0 {
		return 0
	}
	return float64(d.GatedReadings) / float64(d.TotalReadings)
}

// PageWarning is a structured per-page resolution failure. Warnings never
// abort the document.
type PageWarning struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}
