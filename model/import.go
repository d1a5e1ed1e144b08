package model

import "time"

// Import job statuses. A job only moves forward: PENDING → PROCESSING →
// COMPLETED or FAILED.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// ImportJob tracks one asynchronous statement-ingestion run. It lives in
// process memory only and is reclaimed after a grace window once terminal.
type ImportJob struct {
	ImportID      string     `json:"import_id"`
	Status        string     `json:"status"`
	RowsTotal     int        `json:"rows_total"`
	RowsProcessed int        `json:"rows_processed"`
	Message       string     `json:"message"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j *ImportJob) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// CompanyRecord is a registry entry cached by normalized CNPJ.
type CompanyRecord struct {
	CNPJ      string `json:"cnpj"`
	LegalName string `json:"razao_social"`
	TradeName string `json:"nome_fantasia"`
}

// DisplayName prefers the trade name, falling back to the legal name.
func (c *CompanyRecord) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	return c.LegalName
}
