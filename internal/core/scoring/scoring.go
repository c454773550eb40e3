// Package scoring turns enriched, tagged listings into comparable ranks.
// A Strategy computes per-listing raw and adjusted scores from registry
// attributes; Finalize then rescales a whole batch onto 0-100 so the best
// available deal always lands at 100
package scoring

import (
	"gpulens/internal/core/heuristic"

	listdom "gpulens/internal/services/listings/domain"
)

// Strategy scores a single listing. Implementations must be pure and
// deterministic; a missing or non-positive attribute contributes its
// worst-case term, never an error
type Strategy interface {
	// Name identifies the strategy in logs and artifacts
	Name() string
	// Score returns the raw weighted score and the heuristic-adjusted score
	Score(l listdom.EnrichedListing, tags listdom.Tags) (raw, adjusted float64)
}

// WeightedAdditive is the reference strategy: a weighted sum of normalized
// attribute terms where capability terms reward presence and cost terms
// reward absence, multiplied up by the quantization headroom tag
type WeightedAdditive struct {
	w Weights
}

// NewWeightedAdditive builds the reference strategy over a weight set
func NewWeightedAdditive(w Weights) *WeightedAdditive {
	return &WeightedAdditive{w: w}
}

// Name satisfies Strategy
func (s *WeightedAdditive) Name() string { return "weighted_additive" }

// Score computes
//
//	raw = w_vram*norm(vram) + w_mig*norm(mig) + w_nvlink*(0|1)
//	    + w_tdp*(1-norm(tdp)) + w_price*(1-norm(price))
//
// and adjusted = raw * (1 + quantization_score). A nil, zero, or negative
// numeric attribute zeroes its term, so broken data sinks instead of floats
func (s *WeightedAdditive) Score(l listdom.EnrichedListing, tags listdom.Tags) (raw, adjusted float64) {
	raw += s.w.VRAM * normPtr(l.Spec.VRAMGB, s.w.MaxVRAMGB)
	raw += s.w.MIG * normPtr(l.Spec.MIGSupport, s.w.MaxMIG)
	if l.Spec.NVLink != nil && *l.Spec.NVLink {
		raw += s.w.NVLink
	}
	if l.Spec.TDPWatts != nil && *l.Spec.TDPWatts > 0 {
		raw += s.w.TDP * (1 - norm(float64(*l.Spec.TDPWatts), s.w.MaxTDPWatts))
	}
	if l.Raw.Price > 0 {
		raw += s.w.Price * (1 - norm(l.Raw.Price, s.w.MaxPrice))
	}

	adjusted = raw * (1 + tags.Float(heuristic.TagQuantizationScore))
	return raw, adjusted
}

// norm clamps x into [0, max] and scales to [0, 1]
func norm(x, max float64) float64 {
	if max <= 0 || x <= 0 {
		return 0
	}
	if x >= max {
		return 1
	}
	return x / max
}

func normPtr(p *int, max float64) float64 {
	if p == nil {
		return 0
	}
	return norm(float64(*p), max)
}

// Finalize rescales adjusted scores onto 0-100 in place: the batch minimum
// maps to 0 and the maximum to 100. A single record, or a batch where every
// adjusted score is identical, finalizes to 100 because there is nothing to
// rank against
func Finalize(batch []listdom.ScoredListing) {
	if len(batch) == 0 {
		return
	}
	min, max := batch[0].AdjustedScore, batch[0].AdjustedScore
	for _, l := range batch[1:] {
		if l.AdjustedScore < min {
			min = l.AdjustedScore
		}
		if l.AdjustedScore > max {
			max = l.AdjustedScore
		}
	}
	if max == min {
		for i := range batch {
			batch[i].FinalScore = 100
		}
		return
	}
	span := max - min
	for i := range batch {
		batch[i].FinalScore = (batch[i].AdjustedScore - min) / span * 100
	}
}
