package tabular

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"gpulens/internal/core/heuristic"
	perr "gpulens/internal/platform/errors"
	str "gpulens/internal/platform/strings"

	listdom "gpulens/internal/services/listings/domain"
)

// scoredColumns is the output header: the input columns first, computed
// columns appended after. Order is fixed so consumers can diff runs
var scoredColumns = append(append([]string{}, csvColumns...),
	"canonical_model", "match_type", "match_score", "is_valid_gpu", "unknown_reason",
	"vram_gb", "tdp_watts", "mig_support", "nvlink", "generation",
	"gpu_probability",
	"quantization_capable", "quantization_score",
	"raw_score", "adjusted_score", "final_score",
	"warnings",
)

// ArtifactWriter implements listings/domain.ArtifactWriterPort on a local
// directory tree: <root>/<run_id>/<stage>.json plus scored.csv
type ArtifactWriter struct {
	root string
}

// NewArtifactWriter builds a writer rooted at dir
func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{root: dir}
}

// WriteStage persists one intermediate artifact as indented JSON
func (w *ArtifactWriter) WriteStage(_ context.Context, runID, stage string, v any) error {
	dir := filepath.Join(w.root, runID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: mkdir %s", dir)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeParse, "artifacts: marshal stage %s", stage)
	}
	path := filepath.Join(dir, stage+".json")
	if err := os.WriteFile(path, b, 0o640); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: write %s", path)
	}
	return nil
}

// WriteScored persists the terminal batch as scored.csv (column order) and
// scored.jsonl (one full record per line) for downstream consumers
func (w *ArtifactWriter) WriteScored(_ context.Context, runID string, xs []listdom.ScoredListing) error {
	dir := filepath.Join(w.root, runID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: mkdir %s", dir)
	}
	if err := writeScoredJSONL(filepath.Join(dir, "scored.jsonl"), xs); err != nil {
		return err
	}
	path := filepath.Join(dir, "scored.csv")
	f, err := os.Create(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: create %s", path)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(scoredColumns); err != nil {
		_ = f.Close()
		return perr.Wrap(err, perr.ErrorCodeIO, "artifacts: write header")
	}
	for i := range xs {
		if err := cw.Write(scoredRow(&xs[i])); err != nil {
			_ = f.Close()
			return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: write row %d", i)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return perr.Wrap(err, perr.ErrorCodeIO, "artifacts: flush")
	}
	if err := f.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: close %s", path)
	}
	return nil
}

func writeScoredJSONL(path string, xs []listdom.ScoredListing) error {
	f, err := os.Create(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: create %s", path)
	}
	enc := json.NewEncoder(f)
	for i := range xs {
		if err := enc.Encode(&xs[i]); err != nil {
			_ = f.Close()
			return perr.Wrapf(err, perr.ErrorCodeParse, "artifacts: encode record %d", i)
		}
	}
	if err := f.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "artifacts: close %s", path)
	}
	return nil
}

func scoredRow(x *listdom.ScoredListing) []string {
	warnings, _ := json.Marshal(x.Warnings)
	return []string{
		x.Raw.Title,
		x.Raw.BulkNotes,
		formatFloat(x.Raw.Price),
		x.Raw.Seller,
		x.Raw.Region,
		x.Raw.URL,

		x.Match.CanonicalModel,
		string(x.Match.MatchType),
		formatFloat(x.Match.MatchScore),
		strconv.FormatBool(x.Match.IsValidGPU),
		x.Match.UnknownReason,

		intCell(x.Spec.VRAMGB),
		intCell(x.Spec.TDPWatts),
		intCell(x.Spec.MIGSupport),
		boolCell(x.Spec.NVLink),
		str.Deref(x.Spec.Generation),

		floatCell(x.GPUProbability),

		strconv.FormatBool(x.Tags.Bool(heuristic.TagQuantizationCapable)),
		formatFloat(x.Tags.Float(heuristic.TagQuantizationScore)),

		formatFloat(x.RawScore),
		formatFloat(x.AdjustedScore),
		formatFloat(x.FinalScore),

		string(warnings),
	}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func boolCell(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}

func floatCell(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}
