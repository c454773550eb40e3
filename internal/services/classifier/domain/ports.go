// Package domain defines the external GPU-classifier contract
package domain

import "context"

// ProbePort asks an external classifier how likely a listing is to be a real
// GPU. The signal is advisory; callers attach it as-is and never let it
// override the rule-based match decision
type ProbePort interface {
	// Probe returns a probability in [0, 1] for the given listing text
	Probe(ctx context.Context, title, notes string) (float64, error)
}

// Ports are dependencies injected into the classifier module
type Ports struct{}
