package heuristic

import (
	"os"

	"gpulens/internal/platform/config"
	perr "gpulens/internal/platform/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	listdom "gpulens/internal/services/listings/domain"
)

// Tag names emitted by the quantization heuristic
const (
	// TagQuantizationCapable is the boolean gate (vram/tdp/mig all pass)
	TagQuantizationCapable = "quantization_capable"
	// TagQuantizationScore is the continuous 0-1 headroom score
	TagQuantizationScore = "quantization_score"
)

// QuantizationConfig holds the thresholds for low-bit inference fitness.
// Zero values are replaced with defaults; load it from env, YAML, or build it
// directly in tests
type QuantizationConfig struct {
	// MinVRAMGB gates the boolean tag (default 24)
	MinVRAMGB int `yaml:"min_vram_gb" validate:"gte=0"`
	// MaxTDPWatts gates the boolean tag (default 300)
	MaxTDPWatts int `yaml:"max_tdp_watts" validate:"gte=0"`
	// MinMIG gates the boolean tag; 0 means unsupported (default 1)
	MinMIG int `yaml:"min_mig" validate:"gte=0,lte=7"`

	// TargetModelGB is the VRAM a target quantized model needs (default 35,
	// roughly a 70B model at 4-bit)
	TargetModelGB int `yaml:"target_model_gb" validate:"gte=0"`
	// OverheadGB is the fixed OS/runtime reservation (default 2)
	OverheadGB int `yaml:"overhead_gb" validate:"gte=0"`
	// SaturationGB is the spare-VRAM span that maps to score 1.0 (default 24)
	SaturationGB int `yaml:"saturation_gb" validate:"gt=0"`
}

func (c QuantizationConfig) withDefaults() QuantizationConfig {
	if c.MinVRAMGB == 0 {
		c.MinVRAMGB = 24
	}
	if c.MaxTDPWatts == 0 {
		c.MaxTDPWatts = 300
	}
	if c.MinMIG == 0 {
		c.MinMIG = 1
	}
	if c.TargetModelGB == 0 {
		c.TargetModelGB = 35
	}
	if c.OverheadGB == 0 {
		c.OverheadGB = 2
	}
	if c.SaturationGB == 0 {
		c.SaturationGB = 24
	}
	return c
}

// QuantizationConfigFromEnv reads CORE_HEUR_QUANT_* with defaults
func QuantizationConfigFromEnv(cfg config.Conf) QuantizationConfig {
	qc := cfg.Prefix("CORE_HEUR_QUANT_")
	return QuantizationConfig{
		MinVRAMGB:     qc.MayInt("MIN_VRAM_GB", 24),
		MaxTDPWatts:   qc.MayInt("MAX_TDP_WATTS", 300),
		MinMIG:        qc.MayInt("MIN_MIG", 1),
		TargetModelGB: qc.MayInt("TARGET_MODEL_GB", 35),
		OverheadGB:    qc.MayInt("OVERHEAD_GB", 2),
		SaturationGB:  qc.MayInt("SATURATION_GB", 24),
	}
}

// QuantizationConfigFromFile loads thresholds from a YAML file
func QuantizationConfigFromFile(path string) (QuantizationConfig, error) {
	var c QuantizationConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return c, perr.Wrapf(err, perr.ErrorCodeIO, "quantization config: read %s", path)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, perr.Wrap(err, perr.ErrorCodeParse, "quantization config: parse yaml")
	}
	c = c.withDefaults()
	if err := validator.New().Struct(c); err != nil {
		return c, perr.Wrap(err, perr.ErrorCodeConfig, "quantization config: invalid")
	}
	return c, nil
}

// Quantization flags cards fit for low-bit large-model inference
type Quantization struct {
	cfg QuantizationConfig
}

// NewQuantization constructs the heuristic; zero config fields get defaults
func NewQuantization(cfg QuantizationConfig) *Quantization {
	return &Quantization{cfg: cfg.withDefaults()}
}

// Name satisfies Heuristic
func (q *Quantization) Name() string { return "quantization" }

// Evaluate emits the boolean capability tag and the continuous headroom score.
// Missing spec fields fail the gate and zero the score; they never error
func (q *Quantization) Evaluate(l listdom.EnrichedListing) []listdom.Tag {
	capable := l.Spec.VRAMGB != nil && *l.Spec.VRAMGB >= q.cfg.MinVRAMGB &&
		l.Spec.TDPWatts != nil && *l.Spec.TDPWatts <= q.cfg.MaxTDPWatts &&
		l.Spec.MIGSupport != nil && *l.Spec.MIGSupport >= q.cfg.MinMIG

	return []listdom.Tag{
		{Name: TagQuantizationCapable, Value: capable},
		{Name: TagQuantizationScore, Value: q.Score(l)},
	}
}

// Score returns the continuous 0-1 headroom score, independent of the
// boolean gate: 0 below the requirement, then spare VRAM over the
// saturation span, clamped at 1.0
func (q *Quantization) Score(l listdom.EnrichedListing) float64 {
	if l.Spec.VRAMGB == nil {
		return 0
	}
	required := q.cfg.TargetModelGB + q.cfg.OverheadGB
	spare := *l.Spec.VRAMGB - required
	if spare < 0 {
		return 0
	}
	s := float64(spare) / float64(q.cfg.SaturationGB)
	if s > 1 {
		s = 1
	}
	return s
}
