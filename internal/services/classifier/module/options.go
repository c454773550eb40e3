package module

import "gpulens/internal/platform/config"

// Options holds configuration settings for the classifier module
type Options struct {
	BaseURL   string
	TimeoutMS int
	Retries   int
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CORE_CLASSIFIER_")
	return Options{
		BaseURL:   cf.MayString("URL", ""),
		TimeoutMS: cf.MayInt("TIMEOUT_MS", 2000),
		Retries:   cf.MayInt("RETRIES", 1),
	}
}
