// Package model holds the core data types shared across the lead pipeline.
package model

import "time"

// Lead represents a candidate business contact produced by a source adapter.
// Optional fields use the empty string for "not known"; the store and CSV
// export treat empty and absent identically.
type Lead struct {
	Name      string         `json:"name"`
	Email     string         `json:"email,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Website   string         `json:"website,omitempty"`
	City      string         `json:"city,omitempty"`
	Source    string         `json:"source,omitempty"`
	Category  string         `json:"category,omitempty"`
	Raw       map[string]any `json:"raw,omitempty"` // source-specific diagnostics, never interpreted downstream
	CreatedAt time.Time      `json:"created_at"`
}

// NewLead creates a Lead with the creation timestamp set to now (UTC).
func NewLead(name string) Lead {
	return Lead{Name: name, CreatedAt: time.Now().UTC()}
}

// Identity returns the dedup/merge key: the exact (name, city, website) triple.
// An empty component is a distinct identity value, not a wildcard.
func (l Lead) Identity() [3]string {
	return [3]string{l.Name, l.City, l.Website}
}

// RunResult summarizes a single pipeline invocation.
type RunResult struct {
	Fetched    int    `json:"fetched"`
	Kept       int    `json:"kept"`
	Saved      int    `json:"saved"`
	ExportedTo string `json:"exported_to,omitempty"`
}
