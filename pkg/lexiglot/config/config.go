// Package config loads engine configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/internalerr"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
)

// Engine is the on-disk engine configuration.
type Engine struct {
	// AgeMaxRating is the content ceiling: everyone, teen_13, teen_16, or
	// mature_18 (default, unrestricted).
	AgeMaxRating string `yaml:"age_max_rating"`

	// AgeFilterMode is skip (default) or annotate.
	AgeFilterMode string `yaml:"age_filter_mode"`

	// LowConfidenceThreshold is passed through to the translation
	// consumer; the engine does not interpret it.
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`

	// LexiconPath points at a YAML lexicon file.
	LexiconPath string `yaml:"lexicon_path"`
}

// Default returns the unrestricted default configuration.
func Default() Engine {
	return Engine{
		AgeMaxRating:           lexicon.Mature18.String(),
		AgeFilterMode:          lexicon.FilterSkip.String(),
		LowConfidenceThreshold: 0.4,
	}
}

// Load reads a YAML config file, filling absent fields with defaults.
func Load(path string) (Engine, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if cfg.AgeMaxRating == "" {
		cfg.AgeMaxRating = lexicon.Mature18.String()
	}
	if cfg.AgeFilterMode == "" {
		cfg.AgeFilterMode = lexicon.FilterSkip.String()
	}

	if _, _, err := cfg.AgePolicy(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// AgePolicy resolves the string fields into their typed forms.
func (e Engine) AgePolicy() (lexicon.AgeRating, lexicon.FilterMode, error) {
	ceiling, err := lexicon.ParseAgeRating(e.AgeMaxRating)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	mode, err := lexicon.ParseFilterMode(e.AgeFilterMode)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return ceiling, mode, nil
}
