package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// JobResult summarizes one scheduled-job run. Errors collects per-item
// failures; a non-empty Errors slice does not mean the whole run failed.
type JobResult struct {
	Processed int      `json:"processed"`
	Generated int      `json:"generated"`
	Errors    []string `json:"errors"`
}
