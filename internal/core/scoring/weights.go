package scoring

import (
	"os"

	"gpulens/internal/platform/config"
	perr "gpulens/internal/platform/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Weights is the externally configured scoring weight set plus the
// normalization maxima. Weights conventionally sum to 1.0 but are not
// required to
type Weights struct {
	VRAM   float64 `yaml:"w_vram"   validate:"gte=0"`
	MIG    float64 `yaml:"w_mig"    validate:"gte=0"`
	NVLink float64 `yaml:"w_nvlink" validate:"gte=0"`
	TDP    float64 `yaml:"w_tdp"    validate:"gte=0"`
	Price  float64 `yaml:"w_price"  validate:"gte=0"`

	MaxVRAMGB   float64 `yaml:"max_vram_gb"   validate:"gt=0"`
	MaxMIG      float64 `yaml:"max_mig"       validate:"gt=0"`
	MaxTDPWatts float64 `yaml:"max_tdp_watts" validate:"gt=0"`
	MaxPrice    float64 `yaml:"max_price"     validate:"gt=0"`
}

// DefaultWeights returns the stock weight set
func DefaultWeights() Weights {
	return Weights{
		VRAM:   0.30,
		MIG:    0.20,
		NVLink: 0.10,
		TDP:    0.20,
		Price:  0.20,

		MaxVRAMGB:   96,
		MaxMIG:      7,
		MaxTDPWatts: 600,
		MaxPrice:    5000,
	}
}

// WeightsFromEnv reads CORE_SCORE_* overrides on top of the defaults
func WeightsFromEnv(cfg config.Conf) Weights {
	sc := cfg.Prefix("CORE_SCORE_")
	d := DefaultWeights()
	return Weights{
		VRAM:   sc.MayFloat64("W_VRAM", d.VRAM),
		MIG:    sc.MayFloat64("W_MIG", d.MIG),
		NVLink: sc.MayFloat64("W_NVLINK", d.NVLink),
		TDP:    sc.MayFloat64("W_TDP", d.TDP),
		Price:  sc.MayFloat64("W_PRICE", d.Price),

		MaxVRAMGB:   sc.MayFloat64("MAX_VRAM_GB", d.MaxVRAMGB),
		MaxMIG:      sc.MayFloat64("MAX_MIG", d.MaxMIG),
		MaxTDPWatts: sc.MayFloat64("MAX_TDP_WATTS", d.MaxTDPWatts),
		MaxPrice:    sc.MayFloat64("MAX_PRICE", d.MaxPrice),
	}
}

// WeightsFromFile loads a weight set from a YAML file. Unset maxima fall
// back to defaults; a malformed file is a fatal configuration error
func WeightsFromFile(path string) (Weights, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, perr.Wrapf(err, perr.ErrorCodeIO, "weights: read %s", path)
	}
	w := DefaultWeights()
	if err := yaml.Unmarshal(b, &w); err != nil {
		return Weights{}, perr.Wrap(err, perr.ErrorCodeParse, "weights: parse yaml")
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Validate checks the weight set; errors are configuration errors
func (w Weights) Validate() error {
	if err := validator.New().Struct(w); err != nil {
		return perr.Wrap(err, perr.ErrorCodeConfig, "weights: invalid")
	}
	return nil
}
