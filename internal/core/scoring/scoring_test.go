package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"gpulens/internal/core/heuristic"
	"gpulens/internal/platform/testkit"

	listdom "gpulens/internal/services/listings/domain"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func listing(vram, tdp, mig int, nvlink bool, price float64) listdom.EnrichedListing {
	return listdom.EnrichedListing{
		Raw: listdom.RawListing{Price: price},
		Spec: listdom.SpecFields{
			VRAMGB:     intp(vram),
			TDPWatts:   intp(tdp),
			MIGSupport: intp(mig),
			NVLink:     boolp(nvlink),
		},
	}
}

func TestWeightedAdditiveBounds(t *testing.T) {
	s := NewWeightedAdditive(DefaultWeights())

	// best possible card at a free price hits the full weight sum
	raw, _ := s.Score(listing(96, 1, 7, true, 0.01), nil)
	if raw < 0 || raw > 1.0+1e-9 {
		t.Fatalf("raw out of bounds: %v", raw)
	}

	// worst case: everything missing
	raw, adjusted := s.Score(listdom.EnrichedListing{}, nil)
	testkit.NearlyEqual(t, raw, 0, 1e-9)
	testkit.NearlyEqual(t, adjusted, 0, 1e-9)
}

func TestWeightedAdditiveReference(t *testing.T) {
	s := NewWeightedAdditive(DefaultWeights())

	// 48GB, 300W, MIG 4, NVLink, $1000:
	//   0.30*48/96 + 0.20*4/7 + 0.10 + 0.20*(1-300/600) + 0.20*(1-1000/5000)
	raw, _ := s.Score(listing(48, 300, 4, true, 1000), nil)
	want := 0.30*0.5 + 0.20*4.0/7.0 + 0.10 + 0.20*0.5 + 0.20*0.8
	testkit.NearlyEqual(t, raw, want, 1e-9)
}

func TestWeightedAdditiveMonotonic(t *testing.T) {
	s := NewWeightedAdditive(DefaultWeights())

	// more vram never hurts
	prev := -1.0
	for vram := 8; vram <= 96; vram += 8 {
		raw, _ := s.Score(listing(vram, 300, 0, false, 1000), nil)
		if raw < prev {
			t.Fatalf("raw must rise with vram: %d -> %v < %v", vram, raw, prev)
		}
		prev = raw
	}

	// hotter cards never score better
	cool, _ := s.Score(listing(24, 150, 0, false, 1000), nil)
	hot, _ := s.Score(listing(24, 450, 0, false, 1000), nil)
	if hot > cool {
		t.Fatalf("tdp term must penalize heat: hot %v > cool %v", hot, cool)
	}

	// cheaper cards never score worse
	cheap, _ := s.Score(listing(24, 300, 0, false, 500), nil)
	dear, _ := s.Score(listing(24, 300, 0, false, 4500), nil)
	if dear > cheap {
		t.Fatalf("price term must penalize cost: dear %v > cheap %v", dear, cheap)
	}
}

func TestWeightedAdditiveMissingAttributes(t *testing.T) {
	s := NewWeightedAdditive(DefaultWeights())

	// a nil vram contributes nothing, same as vram 0
	withVRAM, _ := s.Score(listing(48, 300, 0, false, 1000), nil)
	l := listing(48, 300, 0, false, 1000)
	l.Spec.VRAMGB = nil
	withoutVRAM, _ := s.Score(l, nil)
	testkit.NearlyEqual(t, withVRAM-withoutVRAM, 0.30*0.5, 1e-9)

	// zero or negative price gets the worst-case price term, not the best
	free := listing(48, 300, 0, false, 0)
	withPrice, _ := s.Score(listing(48, 300, 0, false, 1000), nil)
	noPrice, _ := s.Score(free, nil)
	if noPrice >= withPrice {
		t.Fatalf("missing price must not outrank a real one: %v >= %v", noPrice, withPrice)
	}

	// zero tdp likewise drops the whole cooling term
	l = listing(48, 300, 0, false, 1000)
	l.Spec.TDPWatts = intp(0)
	zeroTDP, _ := s.Score(l, nil)
	testkit.NearlyEqual(t, withPrice-zeroTDP, 0.20*0.5, 1e-9)
}

func TestWeightedAdditiveQuantizationAdjustment(t *testing.T) {
	s := NewWeightedAdditive(DefaultWeights())
	l := listing(48, 300, 4, false, 1000)

	raw, plain := s.Score(l, nil)
	testkit.NearlyEqual(t, plain, raw, 1e-9)

	tags := listdom.Tags{{Name: heuristic.TagQuantizationScore, Value: 0.5}}
	_, boosted := s.Score(l, tags)
	testkit.NearlyEqual(t, boosted, raw*1.5, 1e-9)
}

func TestFinalizeRescale(t *testing.T) {
	batch := []listdom.ScoredListing{
		{AdjustedScore: 0.2},
		{AdjustedScore: 0.5},
		{AdjustedScore: 0.8},
	}
	Finalize(batch)
	testkit.NearlyEqual(t, batch[0].FinalScore, 0, 1e-9)
	testkit.NearlyEqual(t, batch[1].FinalScore, 50, 1e-9)
	testkit.NearlyEqual(t, batch[2].FinalScore, 100, 1e-9)
}

func TestFinalizeDegenerate(t *testing.T) {
	// single record has nothing to rank against
	one := []listdom.ScoredListing{{AdjustedScore: 0.42}}
	Finalize(one)
	testkit.NearlyEqual(t, one[0].FinalScore, 100, 1e-9)

	// identical batch, including all-zero
	same := []listdom.ScoredListing{{AdjustedScore: 0}, {AdjustedScore: 0}}
	Finalize(same)
	testkit.NearlyEqual(t, same[0].FinalScore, 100, 1e-9)
	testkit.NearlyEqual(t, same[1].FinalScore, 100, 1e-9)

	Finalize(nil) // no-op
}

func TestWeightsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	body := "w_vram: 0.5\nw_price: 0.1\nmax_price: 3000\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := WeightsFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.VRAM != 0.5 || w.Price != 0.1 || w.MaxPrice != 3000 {
		t.Fatalf("file values not applied: %+v", w)
	}
	// untouched fields keep defaults
	if w.MIG != 0.20 || w.MaxVRAMGB != 96 {
		t.Fatalf("defaults not preserved: %+v", w)
	}
}

func TestWeightsValidate(t *testing.T) {
	w := DefaultWeights()
	w.VRAM = -0.1
	if err := w.Validate(); err == nil {
		t.Fatal("negative weight must fail validation")
	}
	w = DefaultWeights()
	w.MaxTDPWatts = 0
	if err := w.Validate(); err == nil {
		t.Fatal("zero maximum must fail validation")
	}
}
