// Package domain defines the pipeline run contract
package domain

import "time"

// Stage names, in execution order. Each one leaves an inspectable artifact
const (
	StageRaw      = "raw"
	StageMatched  = "matched"
	StageEnriched = "enriched"
	StageTagged   = "tagged"
	StageScored   = "scored"
	StageReport   = "report"
)

// RunInput parameterizes one pipeline run
type RunInput struct {
	// RunID is generated when empty
	RunID string
	// DryRun computes everything but writes no artifacts
	DryRun bool
}

// RunReport summarizes a finished run
type RunReport struct {
	RunID           string        `json:"run_id"`
	Started         time.Time     `json:"started"`
	Finished        *time.Time    `json:"finished,omitempty"` // nil while the run is in flight
	Duration        time.Duration `json:"duration_ns"`
	MatcherVersion  string        `json:"matcher_version"`
	RegistryVersion int           `json:"registry_version"`
	Strategy        string        `json:"strategy"`

	Total    int `json:"total"`
	Exact    int `json:"exact"`
	Regex    int `json:"regex"`
	Fuzzy    int `json:"fuzzy"`
	Unknown  int `json:"unknown"`
	Rejected int `json:"rejected"`
	Scored   int `json:"scored"`
	Warnings int `json:"warnings"`
}
