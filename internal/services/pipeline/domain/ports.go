package domain

import (
	"context"

	classdom "gpulens/internal/services/classifier/domain"
	listdom "gpulens/internal/services/listings/domain"
)

// RunnerPort is the external port for the scoring pipeline
type RunnerPort interface {
	// Run executes the full pipeline and returns the scored batch plus report
	Run(ctx context.Context, in RunInput) ([]listdom.ScoredListing, RunReport, error)
}

// Ports are dependencies injected into the pipeline module
type Ports struct {
	Reader    listdom.BatchReaderPort    // required
	Artifacts listdom.ArtifactWriterPort // optional; nil disables artifacts
	Probe     classdom.ProbePort         // optional; nil disables the classifier
}
