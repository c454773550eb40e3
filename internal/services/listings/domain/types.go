// Package domain defines the record shapes flowing through the scoring pipeline
package domain

import "gpulens/internal/core/matcher"

// RawListing is one marketplace row in the common input shape.
// Passthrough fields are carried untouched; the engine never inspects them
type RawListing struct {
	Title     string  `json:"title"`
	BulkNotes string  `json:"bulk_notes"`
	Price     float64 `json:"price"`

	Seller string `json:"seller,omitempty"`
	Region string `json:"region,omitempty"`
	URL    string `json:"url,omitempty"`
}

// SpecFields are the registry columns joined onto a listing.
// Pointers because an unmatched or registry-missed listing has explicit nulls
type SpecFields struct {
	VRAMGB         *int    `json:"vram_gb"`
	TDPWatts       *int    `json:"tdp_watts"`
	MIGSupport     *int    `json:"mig_support"`
	NVLink         *bool   `json:"nvlink"`
	Generation     *string `json:"generation"`
	CUDACores      *int    `json:"cuda_cores"`
	SlotWidth      *int    `json:"slot_width"`
	PCIeGeneration *int    `json:"pcie_generation"`
}

// EnrichedListing is a raw listing plus its match decision and joined spec.
// Never mutated after creation; each stage produces a new record
type EnrichedListing struct {
	Raw   RawListing       `json:"raw"`
	Match matcher.Decision `json:"match"`
	Spec  SpecFields       `json:"spec"`

	// Warnings collects data-quality anomalies (registry miss, classifier
	// probe failure). Never fatal; the record proceeds with degraded info
	Warnings []string `json:"warnings,omitempty"`

	// GPUProbability is the optional external classifier signal.
	// Informational only; it never overrides the match decision
	GPUProbability *float64 `json:"gpu_probability,omitempty"`
}

// Tag is one named heuristic output. Tags never overwrite each other;
// attaching a duplicate name is a programming error surfaced by the pipeline
type Tag struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Tags is an ordered tag collection with by-name lookup
type Tags []Tag

// Get returns the value for name
func (ts Tags) Get(name string) (any, bool) {
	for _, t := range ts {
		if t.Name == name {
			return t.Value, true
		}
	}
	return nil, false
}

// Bool returns a boolean tag value, false if absent or mistyped
func (ts Tags) Bool(name string) bool {
	v, ok := ts.Get(name)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Float returns a numeric tag value, 0 if absent or mistyped
func (ts Tags) Float(name string) float64 {
	v, ok := ts.Get(name)
	if !ok {
		return 0
	}
	f, _ := v.(float64)
	return f
}

// ScoredListing is the terminal pipeline artifact
type ScoredListing struct {
	EnrichedListing

	Tags Tags `json:"tags"`

	RawScore          float64 `json:"raw_score"`
	QuantizationScore float64 `json:"quantization_score"`
	AdjustedScore     float64 `json:"adjusted_score"`
	FinalScore        float64 `json:"final_score"`
}
