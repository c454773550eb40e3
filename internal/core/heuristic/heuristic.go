// Package heuristic provides the pluggable tag evaluators that run between
// enrichment and scoring. Each heuristic is self-contained: it owns its own
// configuration and emits named tags that never overwrite each other
package heuristic

import (
	listdom "gpulens/internal/services/listings/domain"
)

// Heuristic is the shared capability interface. New heuristics plug into the
// pipeline without touching the orchestrator
type Heuristic interface {
	// Name identifies the heuristic in logs and artifacts
	Name() string
	// Evaluate inspects an enriched listing and returns its tags.
	// Must be pure and deterministic; missing attributes degrade, never error
	Evaluate(l listdom.EnrichedListing) []listdom.Tag
}

// Defaults returns the stock evaluator set in registration order
func Defaults() []Heuristic {
	return []Heuristic{NewQuantization(QuantizationConfig{})}
}
