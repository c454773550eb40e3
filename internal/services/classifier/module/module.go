// Package module implements the classifier module
package module

import (
	"gpulens/internal/modkit"
	"gpulens/internal/services/classifier/domain"
	"gpulens/internal/services/classifier/service"
)

// Ports exposed by the classifier module
type Ports struct {
	Probe domain.ProbePort
}

// Module implements modkit module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new classifier module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	modkit.Build(append([]modkit.Option{
		modkit.WithName("classifier"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	if overrides.BaseURL != "" {
		cfg.BaseURL = overrides.BaseURL
	}
	if overrides.TimeoutMS != 0 {
		cfg.TimeoutMS = overrides.TimeoutMS
	}
	if overrides.Retries != 0 {
		cfg.Retries = overrides.Retries
	}

	m := &Module{deps: deps}
	if cfg.BaseURL != "" {
		m.ports = Ports{
			Probe: service.New(service.Config{
				BaseURL:   cfg.BaseURL,
				TimeoutMS: cfg.TimeoutMS,
				Retries:   cfg.Retries,
			}, deps.Log),
		}
	}
	// with no base URL the Probe port stays nil and the pipeline runs without it
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "classifier" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
