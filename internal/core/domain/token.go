package domain

// Token is a single positioned text fragment extracted from a PDF page.
// Tokens are immutable once produced by the extractor.
type Token struct {
	Text string `json:"text"`
	Box  Rect   `json:"box"`
	Page int    `json:"page"`
}

// PageTokens holds every positioned token of one page together with the
// page geometry the coordinates are expressed in.
type PageTokens struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Tokens []Token `json:"tokens"`
}

// Empty reports whether the page produced no extractable text at all.
// Empty pages are skipped by the audit, never treated as an error.
func (p PageTokens) Empty() bool { return len(p.Tokens) == 0 }
