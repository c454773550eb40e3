// Package registry loads the canonical GPU model registry from the embedded
// specs.json. It prepares the spec lookup and the normalized candidate list
// for the matcher
package registry

import (
	_ "embed"
	"encoding/json"
	"os"
	"strings"

	"gpulens/internal/core/normalize"
	perr "gpulens/internal/platform/errors"

	"github.com/go-playground/validator/v10"
)

//go:embed specs.json
var embedded []byte

// GPUModelSpec is one row of the registry, keyed by the canonical model key.
// Read-only after load
type GPUModelSpec struct {
	Key            string   `json:"key"             validate:"required"`
	Name           string   `json:"name"            validate:"required"`
	Aliases        []string `json:"aliases,omitempty"`
	VRAMGB         int      `json:"vram_gb"         validate:"gt=0"`
	TDPWatts       int      `json:"tdp_watts"       validate:"gt=0"`
	MIGSupport     int      `json:"mig_support"     validate:"gte=0,lte=7"`
	NVLink         bool     `json:"nvlink"`
	Generation     string   `json:"generation"      validate:"required"`
	CUDACores      int      `json:"cuda_cores"      validate:"gt=0"`
	SlotWidth      int      `json:"slot_width"      validate:"gte=1,lte=4"`
	PCIeGeneration int      `json:"pcie_generation" validate:"gte=1,lte=7"`
}

// Candidate is one normalized name/alias form the matcher tests against.
// Order follows specs.json file order (name first, then aliases), which is
// the documented fuzzy tie-break order
type Candidate struct {
	Key     string // canonical model key
	Text    string // normalized name or alias form
	Display string // original form for match notes
}

type rawRegistry struct {
	Version int            `json:"version"`
	Meta    map[string]any `json:"meta,omitempty"`
	Models  []GPUModelSpec `json:"models"`
}

// Registry is the immutable keyed spec lookup. Safe for concurrent reads
type Registry struct {
	version    int
	models     []GPUModelSpec
	byKey      map[string]int
	candidates []Candidate
}

// Load returns the registry compiled from the embedded specs.json
func Load() (*Registry, error) { return LoadBytes(embedded) }

// LoadFile loads a registry from an external specs file (same shape as the
// embedded one). Used for overrides and for `gpulens registry check`
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "registry: read %s", path)
	}
	return LoadBytes(b)
}

// LoadBytes compiles a registry from raw JSON. Any malformed or duplicate
// entry is a load-time error; there is no partial registry
func LoadBytes(b []byte) (*Registry, error) {
	var rr rawRegistry
	if err := json.Unmarshal(b, &rr); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "registry: parse specs.json")
	}
	if rr.Version != 1 {
		return nil, perr.Configf("registry: unsupported specs.json version %d (want 1)", rr.Version)
	}
	if len(rr.Models) == 0 {
		return nil, perr.Configf("registry: no models defined")
	}

	v := validator.New()
	n := normalize.New()

	r := &Registry{
		version: rr.Version,
		models:  make([]GPUModelSpec, 0, len(rr.Models)),
		byKey:   make(map[string]int, len(rr.Models)),
	}
	seenAlias := make(map[string]string, len(rr.Models)*4)

	for i, m := range rr.Models {
		m.Key = strings.TrimSpace(m.Key)
		if err := v.Struct(m); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "registry: invalid model at index %d (%s)", i, m.Key)
		}
		if _, dup := r.byKey[m.Key]; dup {
			return nil, perr.DuplicateKeyf("registry: duplicate model key %q", m.Key)
		}
		r.byKey[m.Key] = len(r.models)
		r.models = append(r.models, m)

		// Name first, then aliases, preserving file order
		forms := append([]string{m.Name}, m.Aliases...)
		for _, f := range forms {
			nf := n.Normalize(f)
			if nf == "" {
				return nil, perr.Configf("registry: model %q has an empty name/alias", m.Key)
			}
			if owner, dup := seenAlias[nf]; dup {
				if owner == m.Key {
					continue // same model listing the same form twice is harmless
				}
				return nil, perr.DuplicateKeyf("registry: alias %q claimed by both %s and %s", nf, owner, m.Key)
			}
			seenAlias[nf] = m.Key
			r.candidates = append(r.candidates, Candidate{Key: m.Key, Text: nf, Display: f})
		}
	}

	return r, nil
}

// Version returns the specs.json schema version
func (r *Registry) Version() int { return r.version }

// Lookup returns the spec for a canonical model key
func (r *Registry) Lookup(key string) (GPUModelSpec, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return GPUModelSpec{}, false
	}
	return r.models[i], true
}

// Keys returns canonical model keys in file order
func (r *Registry) Keys() []string {
	out := make([]string, len(r.models))
	for i := range r.models {
		out[i] = r.models[i].Key
	}
	return out
}

// Models returns all specs in file order
func (r *Registry) Models() []GPUModelSpec {
	out := make([]GPUModelSpec, len(r.models))
	copy(out, r.models)
	return out
}

// Candidates returns the normalized name/alias forms in file order.
// The slice is shared; callers must not mutate it
func (r *Registry) Candidates() []Candidate { return r.candidates }

// Len returns the number of models
func (r *Registry) Len() int { return len(r.models) }
