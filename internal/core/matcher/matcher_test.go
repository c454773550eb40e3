package matcher

import (
	"strings"
	"testing"

	"gpulens/internal/core/registry"
)

func mustRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.Load()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return r
}

func TestVendorDisqualification(t *testing.T) {
	m := New(mustRegistry(t))

	d := m.Match("ASRock Intel Arc A380", "")
	if d.IsValidGPU {
		t.Fatalf("intel card slipped through: %+v", d)
	}
	if d.UnknownReason != "Intel GPU" || d.CanonicalModel != UnknownModel {
		t.Fatalf("unexpected decision: %+v", d)
	}

	d = m.Match("Sapphire AMD Radeon RX 7600 XT", "")
	if d.IsValidGPU || d.UnknownReason != "AMD GPU" {
		t.Fatalf("amd card slipped through: %+v", d)
	}
	if d.MatchNotes == "" {
		t.Fatalf("every branch must leave match notes")
	}
}

func TestVendorWinsOverRegex(t *testing.T) {
	m := New(mustRegistry(t))
	// mentions a matchable NVIDIA SKU, but the vendor signature must win
	d := m.Match("AMD Radeon trade-in, was an RTX 3090 system", "")
	if d.IsValidGPU {
		t.Fatalf("vendor disqualification must take precedence: %+v", d)
	}
	if d.UnknownReason != "AMD GPU" {
		t.Fatalf("wrong reason: %q", d.UnknownReason)
	}
}

func TestNonGPURejection(t *testing.T) {
	m := New(mustRegistry(t))

	d := m.Match("NVIDIA NVLINK 3-SLOT BRG", "")
	if d.IsValidGPU {
		t.Fatalf("bridge accessory slipped through: %+v", d)
	}
	if !strings.Contains(d.UnknownReason, "NVLINK bridge/connector") {
		t.Fatalf("reason must name the family: %q", d.UnknownReason)
	}
	if d.MatchType != MatchNone || d.MatchScore != 0 {
		t.Fatalf("rejects carry no match: %+v", d)
	}

	// filler words between the NVLINK token and the bridge wording
	for _, title := range []string{
		"NVLink 2-Slot Bridge for RTX A5000",
		"NVIDIA NVLINK HB 2-way connector",
		"nvlink bridge",
	} {
		d = m.Match(title, "")
		if d.IsValidGPU {
			t.Fatalf("bridge title %q slipped through: %+v", title, d)
		}
	}

	d = m.Match("Elgato HD60 capture card", "")
	if d.IsValidGPU || d.UnknownReason != "capture device" {
		t.Fatalf("capture device slipped through: %+v", d)
	}

	// rejection fine print can live in the notes
	d = m.Match("GPU accessory lot", "includes quadro sync card only")
	if d.IsValidGPU {
		t.Fatalf("sync module in notes must reject: %+v", d)
	}
}

func TestExactMatch(t *testing.T) {
	m := New(mustRegistry(t))
	d := m.Match("NVIDIA GeForce RTX 3090", "")
	if d.MatchType != MatchExact || d.MatchScore != 1.0 {
		t.Fatalf("expected exact at 1.0: %+v", d)
	}
	if d.CanonicalModel != "RTX_3090" || !d.IsValidGPU {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.UnknownReason != "" {
		t.Fatalf("matched listings carry no unknown_reason")
	}
}

func TestRegexMatchScenarios(t *testing.T) {
	m := New(mustRegistry(t))

	cases := []struct {
		title string
		key   string
	}{
		{"PNY NVIDIA RTX PRO 6000 96GB", "RTX_PRO_6000_BLACKWELL"},
		{"PNY RTX 6000 Ada Generation graphics card", "RTX_6000_ADA"},
		{"NVIDIA Quadro RTX 6000 24GB workstation", "QUADRO_RTX_6000"},
		{"MSI GeForce RTX 4070 Ti VENTUS 3X", "RTX_4070_TI"},
		{"Gigabyte RTX 4070 WINDFORCE OC", "RTX_4070"},
		{"NVIDIA A100 80GB PCIe HBM2e", "A100_PCIE_80GB"},
		{"NVIDIA H100 PCIe accelerator", "H100_PCIE"},
		{"EVGA RTX 3090 FTW3 Ultra", "RTX_3090"},
		{"ZOTAC RTX 3090 Ti AMP Extreme", "RTX_3090_TI"},
		{"Dell Tesla T4 16GB server GPU", "T4"},
		{"NVIDIA L40S datacenter", "L40S"},
	}
	for _, c := range cases {
		d := m.Match(c.title, "")
		if d.CanonicalModel != c.key {
			t.Fatalf("%q -> %s, want %s (%s)", c.title, d.CanonicalModel, c.key, d.MatchNotes)
		}
		if d.MatchType != MatchRegex || d.MatchScore != RegexScore {
			t.Fatalf("%q should hit the pattern table at %.1f: %+v", c.title, RegexScore, d)
		}
		if !d.IsValidGPU {
			t.Fatalf("%q wrongly invalidated", c.title)
		}
	}
}

func TestRegexExclusionsPreventCrossSKUHits(t *testing.T) {
	m := New(mustRegistry(t))

	// 4070 SUPER is not in the registry; the bare-4070 rule must not claim it
	d := m.Match("RTX 4070 SUPER 12GB", "")
	if d.CanonicalModel == "RTX_4070" {
		t.Fatalf("SUPER variant misassigned to RTX_4070: %+v", d)
	}

	// SXM modules are not the PCIe SKU
	d = m.Match("NVIDIA A100 80GB SXM4 module", "")
	if d.CanonicalModel == "A100_PCIE_80GB" {
		t.Fatalf("SXM misassigned to PCIe SKU: %+v", d)
	}
}

func TestNoMatchFallsThrough(t *testing.T) {
	m := New(mustRegistry(t))

	d := m.Match("mystery server pull, untested", "")
	if d.MatchType != MatchNone || d.CanonicalModel != UnknownModel || d.MatchScore != 0 {
		t.Fatalf("expected clean none: %+v", d)
	}
	if !d.IsValidGPU {
		t.Fatalf("generic unidentified hardware stays valid")
	}
	if d.UnknownReason != "no model match" {
		t.Fatalf("unknown_reason required when model is UNKNOWN: %+v", d)
	}

	// empty text never raises and never matches
	d = m.Match("", "")
	if d.MatchType != MatchNone {
		t.Fatalf("empty text should fall through: %+v", d)
	}
}

const tinyRegistry = `{"version":1,"models":[
  {"key":"TEST_GPU","name":"NVIDIA Test GPU","vram_gb":24,"tdp_watts":200,"mig_support":0,"nvlink":false,
   "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4}]}`

func TestFuzzyThresholdInclusive(t *testing.T) {
	r, err := registry.LoadBytes([]byte(tinyRegistry))
	if err != nil {
		t.Fatalf("load tiny registry: %v", err)
	}
	m := New(r)

	// candidate form is "nvidia test gpu" (15 runes)
	// 3 substitutions -> similarity exactly 1 - 3/15 = 0.80: accepted
	d := m.Match("nvidia tosy gpx", "")
	if d.MatchType != MatchFuzzy || d.CanonicalModel != "TEST_GPU" {
		t.Fatalf("similarity at threshold must be accepted: %+v", d)
	}
	if d.MatchScore < 0.7999 || d.MatchScore > 0.8001 {
		t.Fatalf("expected similarity 0.80, got %v", d.MatchScore)
	}
	if !strings.Contains(d.MatchNotes, "similarity") {
		t.Fatalf("fuzzy notes must carry the raw similarity: %q", d.MatchNotes)
	}

	// 4 substitutions -> 1 - 4/15 ~= 0.733: rejected, falls to none
	d = m.Match("nvidia tosy qpx", "")
	if d.MatchType != MatchNone {
		t.Fatalf("below-threshold similarity must fall through: %+v", d)
	}
}

func TestFuzzyTieBreakIsInsertionOrder(t *testing.T) {
	two := `{"version":1,"models":[
	  {"key":"FIRST","name":"NVIDIA Card AB","vram_gb":8,"tdp_watts":100,"mig_support":0,"nvlink":false,
	   "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4},
	  {"key":"SECOND","name":"NVIDIA Card CD","vram_gb":8,"tdp_watts":100,"mig_support":0,"nvlink":false,
	   "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4}]}`
	r, err := registry.LoadBytes([]byte(two))
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	m := New(r)

	// equidistant from both candidates, same common prefix: file order decides
	d := m.Match("nvidia card xy", "")
	if d.MatchType != MatchFuzzy || d.CanonicalModel != "FIRST" {
		t.Fatalf("tie must resolve to earlier registry entry: %+v", d)
	}
}

func TestDeterminism(t *testing.T) {
	m := New(mustRegistry(t))
	a := m.Match("EVGA RTX 3090 FTW3", "mild coil whine")
	b := m.Match("EVGA RTX 3090 FTW3", "mild coil whine")
	if a != b {
		t.Fatalf("matcher is not deterministic: %+v vs %+v", a, b)
	}
}

func TestSimilarityFunction(t *testing.T) {
	if similarity("abc", "abc") != 1.0 {
		t.Fatalf("identical strings are 1.0")
	}
	if similarity("", "abc") != 0 {
		t.Fatalf("empty vs non-empty is 0")
	}
	got := similarity("kitten", "sitting")
	want := 1.0 - 3.0/7.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("kitten/sitting similarity %v, want %v", got, want)
	}
}

func TestLongestCommonSubstring(t *testing.T) {
	if got := longestCommonSubstring("nvidia rtx", "rtx 4090"); got != 3 {
		t.Fatalf("lcs = %d, want 3", got)
	}
	if got := longestCommonSubstring("", "x"); got != 0 {
		t.Fatalf("empty lcs should be 0")
	}
}
