package domain

import "context"

// BatchReaderPort supplies the raw listing batch for a run
type BatchReaderPort interface {
	// ReadAll returns every listing in the batch, in source order
	ReadAll(ctx context.Context) ([]RawListing, error)
}

// ArtifactWriterPort persists per-stage pipeline artifacts so any run can be
// inspected after the fact
type ArtifactWriterPort interface {
	// WriteStage writes one named intermediate artifact (JSON)
	WriteStage(ctx context.Context, runID, stage string, v any) error

	// WriteScored writes the terminal scored batch in the output table shape
	WriteScored(ctx context.Context, runID string, xs []ScoredListing) error
}
