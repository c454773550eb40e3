package registry

import (
	"strings"
	"testing"

	perr "gpulens/internal/platform/errors"
)

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Load()
	if err != nil {
		t.Fatalf("load embedded registry: %v", err)
	}
	return r
}

func TestLoadEmbedded(t *testing.T) {
	r := mustRegistry(t)
	if r.Len() == 0 {
		t.Fatalf("embedded registry is empty")
	}

	spec, ok := r.Lookup("RTX_3090")
	if !ok {
		t.Fatalf("RTX_3090 missing")
	}
	if spec.VRAMGB != 24 || !spec.NVLink || spec.Generation != "Ampere" {
		t.Fatalf("unexpected RTX_3090 spec: %+v", spec)
	}

	if _, ok := r.Lookup("NOT_A_MODEL"); ok {
		t.Fatalf("lookup of unknown key should miss")
	}
}

func TestKeysFollowFileOrder(t *testing.T) {
	r := mustRegistry(t)
	keys := r.Keys()
	if keys[0] != "GTX_1080_TI" {
		t.Fatalf("first key should follow file order, got %s", keys[0])
	}
	// candidate order is name-then-aliases within each model, models in file order
	cands := r.Candidates()
	if cands[0].Key != "GTX_1080_TI" || !strings.Contains(cands[0].Text, "1080") {
		t.Fatalf("unexpected first candidate: %+v", cands[0])
	}
}

func TestDuplicateKeyFatal(t *testing.T) {
	b := []byte(`{"version":1,"models":[
		{"key":"X","name":"NVIDIA X","vram_gb":8,"tdp_watts":100,"mig_support":0,"nvlink":false,
		 "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4},
		{"key":"X","name":"NVIDIA X2","vram_gb":8,"tdp_watts":100,"mig_support":0,"nvlink":false,
		 "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4}]}`)
	_, err := LoadBytes(b)
	if err == nil || !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("duplicate key must be fatal, got %v", err)
	}
}

func TestCrossModelAliasCollisionFatal(t *testing.T) {
	b := []byte(`{"version":1,"models":[
		{"key":"A","name":"NVIDIA Same","vram_gb":8,"tdp_watts":100,"mig_support":0,"nvlink":false,
		 "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4},
		{"key":"B","name":"NVIDIA Other","aliases":["nvidia same"],"vram_gb":8,"tdp_watts":100,
		 "mig_support":0,"nvlink":false,"generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4}]}`)
	_, err := LoadBytes(b)
	if err == nil || !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("cross-model alias collision must be fatal, got %v", err)
	}
}

func TestMalformedEntryFatal(t *testing.T) {
	// mig_support out of range
	b := []byte(`{"version":1,"models":[
		{"key":"X","name":"NVIDIA X","vram_gb":8,"tdp_watts":100,"mig_support":9,"nvlink":false,
		 "generation":"Ampere","cuda_cores":1000,"slot_width":2,"pcie_generation":4}]}`)
	_, err := LoadBytes(b)
	if err == nil || !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("invalid entry must be a config error, got %v", err)
	}
}

func TestBadVersionFatal(t *testing.T) {
	if _, err := LoadBytes([]byte(`{"version":2,"models":[]}`)); err == nil {
		t.Fatalf("unsupported version must fail")
	}
}
