// Package matcher identifies the canonical GPU model a free-text listing
// refers to. Stages run in strict precedence order, first success wins:
//
//  1. vendor disqualification (AMD / Intel signatures)
//  2. non-GPU rejection (accessory keyword families)
//  3. exact match on canonical name or alias
//  4. ordered regex table at fixed score 0.9
//  5. fuzzy similarity against every name/alias, thresholded
//  6. no match
//
// Model identification (3-5) runs over the normalized title; the
// disqualification scans (1-2) also cover the seller notes, where the
// "bridge only, no card" fine print tends to live
package matcher

import (
	"fmt"

	"gpulens/internal/core/normalize"
	"gpulens/internal/core/registry"
)

// UnknownModel is the sentinel canonical model for unmatched listings
const UnknownModel = "UNKNOWN"

// MatchType is the method that produced a canonical-model decision
type MatchType string

const (
	// MatchExact is a normalized equality hit on a canonical name or alias
	MatchExact MatchType = "exact"
	// MatchRegex is a hit from the ordered pattern table
	MatchRegex MatchType = "regex"
	// MatchFuzzy is a thresholded similarity hit
	MatchFuzzy MatchType = "fuzzy"
	// MatchNone means no stage produced a model
	MatchNone MatchType = "none"
)

// RegexScore is the fixed confidence for pattern-table hits
const RegexScore = 0.9

// DefaultFuzzyThreshold is the inclusive acceptance bar for fuzzy similarity
const DefaultFuzzyThreshold = 0.80

// Decision is the matcher output for one listing
type Decision struct {
	CanonicalModel string    `json:"canonical_model"`
	MatchType      MatchType `json:"match_type"`
	MatchScore     float64   `json:"match_score"`
	IsValidGPU     bool      `json:"is_valid_gpu"`
	UnknownReason  string    `json:"unknown_reason,omitempty"`
	MatchNotes     string    `json:"match_notes"`
}

// Options controls matcher behavior
type Options struct {
	// FuzzyThreshold is the inclusive similarity bar on a 0-1 scale; 0 means default
	FuzzyThreshold float64
}

// Matcher is deterministic given the registry and options; no state across calls
type Matcher struct {
	reg  *registry.Registry
	n    *normalize.Normalizer
	opts Options

	exact map[string]registry.Candidate // normalized form -> candidate
	rules []patternRule
}

// New creates a Matcher with default options
func New(reg *registry.Registry) *Matcher {
	return NewWithOptions(reg, Options{})
}

// NewWithOptions creates a Matcher with custom options
func NewWithOptions(reg *registry.Registry, opts Options) *Matcher {
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}
	m := &Matcher{
		reg:   reg,
		n:     normalize.New(),
		opts:  opts,
		exact: make(map[string]registry.Candidate, len(reg.Candidates())),
		rules: patternTable(),
	}
	for _, c := range reg.Candidates() {
		// registry guarantees no cross-model collisions; first claim wins
		if _, ok := m.exact[c.Text]; !ok {
			m.exact[c.Text] = c
		}
	}
	// drop pattern rules whose model is absent from the registry so the
	// matcher can never invent a key outside the registry key set
	kept := m.rules[:0]
	for _, r := range m.rules {
		if _, ok := reg.Lookup(r.key); ok {
			kept = append(kept, r)
		}
	}
	m.rules = kept
	return m
}

// Match decides the canonical model for one listing's free text.
// Malformed or empty text never errors; it falls through to "none"
func (m *Matcher) Match(title, notes string) Decision {
	normTitle := m.n.Normalize(title)
	scanText := normTitle
	if nn := m.n.Normalize(notes); nn != "" {
		scanText = normTitle + " " + nn
	}

	// 1 vendor disqualification wins over everything else
	for _, vr := range vendorRules {
		if hit := vr.re.FindString(scanText); hit != "" {
			return Decision{
				CanonicalModel: UnknownModel,
				MatchType:      MatchNone,
				MatchScore:     0,
				IsValidGPU:     false,
				UnknownReason:  vr.reason,
				MatchNotes:     fmt.Sprintf("vendor disqualification: %s signature matched %q", vr.name, hit),
			}
		}
	}

	// 2 non-GPU rejection
	for _, ar := range accessoryRules {
		if hit := ar.re.FindString(scanText); hit != "" {
			return Decision{
				CanonicalModel: UnknownModel,
				MatchType:      MatchNone,
				MatchScore:     0,
				IsValidGPU:     false,
				UnknownReason:  ar.reason,
				MatchNotes:     fmt.Sprintf("non-GPU rejection: %s keyword family matched %q", ar.family, hit),
			}
		}
	}

	// 3 exact match on canonical name or alias
	if c, ok := m.exact[normTitle]; ok {
		return Decision{
			CanonicalModel: c.Key,
			MatchType:      MatchExact,
			MatchScore:     1.0,
			IsValidGPU:     true,
			MatchNotes:     fmt.Sprintf("exact match on %q", c.Display),
		}
	}

	// 4 ordered regex table, first hit wins
	for _, pr := range m.rules {
		hit := pr.re.FindString(normTitle)
		if hit == "" {
			continue
		}
		if pr.also != nil && !pr.also.MatchString(normTitle) {
			continue
		}
		if pr.exclude != nil && pr.exclude.MatchString(normTitle) {
			continue
		}
		return Decision{
			CanonicalModel: pr.key,
			MatchType:      MatchRegex,
			MatchScore:     RegexScore,
			IsValidGPU:     true,
			MatchNotes:     fmt.Sprintf("regex rule %s matched %q", pr.id, hit),
		}
	}

	// 5 fuzzy similarity over every candidate form
	if best, ok := m.bestFuzzy(normTitle); ok {
		return best
	}

	// 6 no match
	return Decision{
		CanonicalModel: UnknownModel,
		MatchType:      MatchNone,
		MatchScore:     0,
		IsValidGPU:     true,
		UnknownReason:  "no model match",
		MatchNotes:     "no stage matched",
	}
}

// bestFuzzy scans all candidates and returns an accepted fuzzy decision.
// Ties on similarity prefer the candidate sharing the longest common
// substring with the input, then earlier registry insertion order
func (m *Matcher) bestFuzzy(normTitle string) (Decision, bool) {
	if normTitle == "" {
		return Decision{}, false
	}

	var (
		found    bool
		bestSim  float64
		bestLCS  int
		bestCand registry.Candidate
	)
	for _, c := range m.reg.Candidates() {
		sim := similarity(normTitle, c.Text)
		if sim < m.opts.FuzzyThreshold {
			continue
		}
		switch {
		case !found || sim > bestSim:
			// new best
		case sim == bestSim:
			l := longestCommonSubstring(normTitle, c.Text)
			if l <= bestLCS {
				continue // earlier candidate keeps the tie
			}
			bestLCS = l
			bestCand = c
			continue
		default:
			continue
		}
		found = true
		bestSim = sim
		bestLCS = longestCommonSubstring(normTitle, c.Text)
		bestCand = c
	}
	if !found {
		return Decision{}, false
	}
	return Decision{
		CanonicalModel: bestCand.Key,
		MatchType:      MatchFuzzy,
		MatchScore:     bestSim,
		IsValidGPU:     true,
		MatchNotes: fmt.Sprintf("fuzzy matched against %q (similarity %.4f, threshold %.2f)",
			bestCand.Display, bestSim, m.opts.FuzzyThreshold),
	}, true
}
