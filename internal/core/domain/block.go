package domain

// MedBlock is a vertical region of a page anchored by the left-hand rule
// text panel. It owns its row bands and parsed rules for the audit pass.
type MedBlock struct {
	Page  int    `json:"page"`
	Box   Rect   `json:"box"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
