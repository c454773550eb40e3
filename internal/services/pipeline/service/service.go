// Package service implements the pipeline orchestrator.
//
// The closing 0-100 rescale ranks only listings that survived
// disqualification; rejected records pin to FinalScore 0 so junk rows never
// stretch the scale for real cards
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gpulens/internal/core/heuristic"
	"gpulens/internal/core/matcher"
	"gpulens/internal/core/registry"
	"gpulens/internal/core/scoring"
	"gpulens/internal/core/version"
	perr "gpulens/internal/platform/errors"
	"gpulens/internal/platform/logger"
	ptime "gpulens/internal/platform/time"

	classdom "gpulens/internal/services/classifier/domain"
	listdom "gpulens/internal/services/listings/domain"
	"gpulens/internal/services/pipeline/domain"
)

// Config for the pipeline service
type Config struct {
	Workers int
}

// Service implements domain.RunnerPort
type Service struct {
	Reader    listdom.BatchReaderPort
	Artifacts listdom.ArtifactWriterPort
	Probe     classdom.ProbePort

	Reg        *registry.Registry
	Match      *matcher.Matcher
	Heuristics []heuristic.Heuristic
	Strategy   scoring.Strategy

	Log logger.Logger
	Cfg Config
}

// New constructs a new pipeline service
func New(
	ports domain.Ports,
	reg *registry.Registry,
	m *matcher.Matcher,
	hs []heuristic.Heuristic,
	strat scoring.Strategy,
	log logger.Logger,
	cfg Config,
) *Service {
	w := cfg.Workers
	if w <= 0 {
		w = 4
	}
	return &Service{
		Reader:     ports.Reader,
		Artifacts:  ports.Artifacts,
		Probe:      ports.Probe,
		Reg:        reg,
		Match:      m,
		Heuristics: hs,
		Strategy:   strat,
		Log:        log,
		Cfg:        Config{Workers: w},
	}
}

// Run executes match, enrich, tag, score, and finalize over the whole batch.
// Stage outputs land as artifacts; per-record data problems become warnings
// on the record, never run failures
func (s *Service) Run(ctx context.Context, in domain.RunInput) ([]listdom.ScoredListing, domain.RunReport, error) {
	started := time.Now().UTC()
	runID := in.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.WithRun(ctx, runID, "")
	log := logger.C(ctx)

	report := domain.RunReport{
		RunID:           runID,
		Started:         started,
		MatcherVersion:  version.MatcherVersion,
		RegistryVersion: s.Reg.Version(),
		Strategy:        s.Strategy.Name(),
	}

	rows, err := s.Reader.ReadAll(ctx)
	if err != nil {
		return nil, report, perr.Wrap(err, perr.CodeOf(err), "pipeline: read batch")
	}
	report.Total = len(rows)
	log.Info().Int("listings", len(rows)).Msg("batch loaded")
	if err := s.writeStage(ctx, in, runID, domain.StageRaw, rows); err != nil {
		return nil, report, err
	}

	enriched := s.matchAndEnrich(ctx, rows)
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}
	for i := range enriched {
		switch enriched[i].Match.MatchType {
		case matcher.MatchExact:
			report.Exact++
		case matcher.MatchRegex:
			report.Regex++
		case matcher.MatchFuzzy:
			report.Fuzzy++
		default:
			if enriched[i].Match.IsValidGPU {
				report.Unknown++
			}
		}
		if !enriched[i].Match.IsValidGPU {
			report.Rejected++
		}
		report.Warnings += len(enriched[i].Warnings)
	}
	if err := s.writeStage(ctx, in, runID, domain.StageMatched, decisionsOf(enriched)); err != nil {
		return nil, report, err
	}
	if err := s.writeStage(ctx, in, runID, domain.StageEnriched, enriched); err != nil {
		return nil, report, err
	}

	scored, err := s.tagAndScore(enriched)
	if err != nil {
		return nil, report, err
	}
	if err := s.writeStage(ctx, in, runID, domain.StageTagged, tagsOf(scored)); err != nil {
		return nil, report, err
	}

	finalize(scored)
	for i := range scored {
		if scored[i].Match.IsValidGPU {
			report.Scored++
		}
	}
	report.Duration = time.Since(started)
	report.Finished = ptime.Ptr(started.Add(report.Duration))

	if !in.DryRun && s.Artifacts != nil {
		if err := s.Artifacts.WriteScored(ctx, runID, scored); err != nil {
			return nil, report, err
		}
		if err := s.Artifacts.WriteStage(ctx, runID, domain.StageReport, report); err != nil {
			return nil, report, err
		}
	}

	log.Info().
		Int("scored", report.Scored).
		Int("rejected", report.Rejected).
		Dur("took", report.Duration).
		Msg("run complete")
	return scored, report, nil
}

// matchAndEnrich fans the batch across workers. Output is index addressed so
// batch order survives the concurrency
func (s *Service) matchAndEnrich(ctx context.Context, rows []listdom.RawListing) []listdom.EnrichedListing {
	out := make([]listdom.EnrichedListing, len(rows))

	sem := make(chan struct{}, s.Cfg.Workers)
	wg := sync.WaitGroup{}
	for i := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem; wg.Done() }()
			out[i] = s.enrichOne(ctx, rows[i])
		}(i)
	}
	wg.Wait()
	return out
}

func (s *Service) enrichOne(ctx context.Context, raw listdom.RawListing) listdom.EnrichedListing {
	e := listdom.EnrichedListing{
		Raw:   raw,
		Match: s.Match.Match(raw.Title, raw.BulkNotes),
	}

	if e.Match.CanonicalModel != matcher.UnknownModel {
		spec, ok := s.Reg.Lookup(e.Match.CanonicalModel)
		if !ok {
			// the matcher only emits registry keys, so this is a wiring bug
			e.Warnings = append(e.Warnings, "registry miss for "+e.Match.CanonicalModel)
		} else {
			e.Spec = listdom.SpecFields{
				VRAMGB:         &spec.VRAMGB,
				TDPWatts:       &spec.TDPWatts,
				MIGSupport:     &spec.MIGSupport,
				NVLink:         &spec.NVLink,
				Generation:     &spec.Generation,
				CUDACores:      &spec.CUDACores,
				SlotWidth:      &spec.SlotWidth,
				PCIeGeneration: &spec.PCIeGeneration,
			}
		}
	}

	// ambiguous listings get a second opinion from the external classifier
	if s.Probe != nil && e.Match.MatchType == matcher.MatchNone && e.Match.IsValidGPU {
		p, err := s.Probe.Probe(ctx, raw.Title, raw.BulkNotes)
		if err != nil {
			e.Warnings = append(e.Warnings, "classifier probe failed: "+err.Error())
		} else {
			e.GPUProbability = &p
		}
	}
	return e
}

// tagAndScore runs every heuristic over every listing and applies the
// scoring strategy. Duplicate tag names are a programming error in a
// heuristic and abort the run
func (s *Service) tagAndScore(enriched []listdom.EnrichedListing) ([]listdom.ScoredListing, error) {
	out := make([]listdom.ScoredListing, len(enriched))
	for i := range enriched {
		var tags listdom.Tags
		seen := map[string]string{}
		for _, h := range s.Heuristics {
			for _, tag := range h.Evaluate(enriched[i]) {
				if prev, dup := seen[tag.Name]; dup {
					return nil, perr.Validationf(
						"pipeline: heuristic %q re-emits tag %q already set by %q", h.Name(), tag.Name, prev)
				}
				seen[tag.Name] = h.Name()
				tags = append(tags, tag)
			}
		}

		raw, adjusted := s.Strategy.Score(enriched[i], tags)
		out[i] = listdom.ScoredListing{
			EnrichedListing:   enriched[i],
			Tags:              tags,
			RawScore:          raw,
			QuantizationScore: tags.Float(heuristic.TagQuantizationScore),
			AdjustedScore:     adjusted,
		}
	}
	return out, nil
}

// finalize rescales valid listings onto 0-100 and pins rejects to 0.
// Rejects are excluded from the rescale so junk rows cannot stretch the scale
func finalize(scored []listdom.ScoredListing) {
	valid := make([]listdom.ScoredListing, 0, len(scored))
	for i := range scored {
		if scored[i].Match.IsValidGPU {
			valid = append(valid, scored[i])
		}
	}
	scoring.Finalize(valid)

	j := 0
	for i := range scored {
		if scored[i].Match.IsValidGPU {
			scored[i].FinalScore = valid[j].FinalScore
			j++
		} else {
			scored[i].FinalScore = 0
		}
	}
}

func (s *Service) writeStage(ctx context.Context, in domain.RunInput, runID, stage string, v any) error {
	if in.DryRun || s.Artifacts == nil {
		return nil
	}
	return s.Artifacts.WriteStage(ctx, runID, stage, v)
}

func decisionsOf(xs []listdom.EnrichedListing) []matcher.Decision {
	out := make([]matcher.Decision, len(xs))
	for i := range xs {
		out[i] = xs[i].Match
	}
	return out
}

func tagsOf(xs []listdom.ScoredListing) []listdom.Tags {
	out := make([]listdom.Tags, len(xs))
	for i := range xs {
		out[i] = xs[i].Tags
	}
	return out
}
