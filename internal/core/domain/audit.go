package domain

import "time"

// AuditRequest names one binder PDF to audit.
type AuditRequest struct {
	// Source is the path of the binder PDF.
	Source string `json:"source"`
	// Hall labels the unit the binder belongs to, e.g. "A".
	Hall string `json:"hall"`
	// AuditDateOverride pins the audit date for reruns, formatted MMDDYYYY.
	// Empty means derive the date from the filename or the clock.
	AuditDateOverride string `json:"audit_date_override,omitempty"`
}

// AuditJob is the queued form of an audit request.
type AuditJob struct {
	ID      string       `json:"id"`
	Request AuditRequest `json:"request"`
}

// AuditResult is the complete outcome of one document run: deduplicated
// decisions in deterministic order plus aggregate counters, diagnostics and
// structured warnings.
type AuditResult struct {
	RunID     string        `json:"run_id"`
	Source    string        `json:"source"`
	Hall      string        `json:"hall"`
	AuditDate time.Time     `json:"audit_date"`
	Decisions []Decision    `json:"decisions"`
	Counts    Counts        `json:"counts"`
	Diag      Diagnostics   `json:"diagnostics"`
	Notes     []string      `json:"notes,omitempty"`
	Warnings  []PageWarning `json:"warnings,omitempty"`

	GateOK      bool     `json:"gate_ok"`
	GateReasons []string `json:"gate_reasons,omitempty"`

	ReportPaths []string `json:"report_paths,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AuditDateText returns the MM/DD/YYYY display form used by reports.
func (r AuditResult) AuditDateText() string {
	return r.AuditDate.Format("01/02/2006")
}
