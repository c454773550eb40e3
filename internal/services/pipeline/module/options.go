package module

import "gpulens/internal/platform/config"

// Options holds configuration settings for the pipeline module
type Options struct {
	Workers         int
	FuzzyThreshold  float64
	RegistryPath    string
	WeightsPath     string
	QuantConfigPath string
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	pf := cfg.Prefix("CORE_PIPELINE_")
	return Options{
		Workers:         pf.MayInt("WORKERS", 4),
		FuzzyThreshold:  pf.MayFloat64("FUZZY_THRESHOLD", 0),
		RegistryPath:    pf.MayString("REGISTRY_PATH", ""),
		WeightsPath:     pf.MayString("WEIGHTS_PATH", ""),
		QuantConfigPath: pf.MayString("QUANT_CONFIG_PATH", ""),
	}
}
