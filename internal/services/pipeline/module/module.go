// Package module implements the pipeline module
package module

import (
	"gpulens/internal/core/heuristic"
	"gpulens/internal/core/matcher"
	"gpulens/internal/core/registry"
	"gpulens/internal/core/scoring"
	"gpulens/internal/modkit"
	"gpulens/internal/services/pipeline/domain"
	"gpulens/internal/services/pipeline/service"
)

// Ports exposed by the pipeline module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new pipeline module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("pipeline"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("pipeline module: expected WithPorts(pipeline/domain.Ports)")
	}
	if ports.Reader == nil {
		panic("pipeline module: Ports missing Reader")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.FuzzyThreshold != 0 {
		cfg.FuzzyThreshold = overrides.FuzzyThreshold
	}
	if overrides.RegistryPath != "" {
		cfg.RegistryPath = overrides.RegistryPath
	}
	if overrides.WeightsPath != "" {
		cfg.WeightsPath = overrides.WeightsPath
	}
	if overrides.QuantConfigPath != "" {
		cfg.QuantConfigPath = overrides.QuantConfigPath
	}

	// Shared registry for the matcher and the enrichment join
	reg, err := loadRegistry(cfg.RegistryPath)
	if err != nil {
		panic(err)
	}

	m := matcher.NewWithOptions(reg, matcher.Options{FuzzyThreshold: cfg.FuzzyThreshold})

	weights, err := loadWeights(deps, cfg.WeightsPath)
	if err != nil {
		panic(err)
	}
	if err := weights.Validate(); err != nil {
		panic(err)
	}

	hs, err := loadHeuristics(deps, cfg.QuantConfigPath)
	if err != nil {
		panic(err)
	}

	runner := service.New(
		ports,
		reg,
		m,
		hs,
		scoring.NewWeightedAdditive(weights),
		deps.Log,
		service.Config{Workers: cfg.Workers},
	)

	mod := &Module{deps: deps}
	mod.ports = Ports{Runner: runner}
	return mod
}

func loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		return registry.Load()
	}
	return registry.LoadFile(path)
}

func loadWeights(deps modkit.Deps, path string) (scoring.Weights, error) {
	if path == "" {
		return scoring.WeightsFromEnv(deps.Cfg), nil
	}
	return scoring.WeightsFromFile(path)
}

func loadHeuristics(deps modkit.Deps, quantPath string) ([]heuristic.Heuristic, error) {
	qc := heuristic.QuantizationConfigFromEnv(deps.Cfg)
	if quantPath != "" {
		var err error
		qc, err = heuristic.QuantizationConfigFromFile(quantPath)
		if err != nil {
			return nil, err
		}
	}
	return []heuristic.Heuristic{heuristic.NewQuantization(qc)}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "pipeline" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
