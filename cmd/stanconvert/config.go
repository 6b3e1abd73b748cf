package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scigolib/mcmc"
)

// conversionConfig mirrors the optional inputs of mcmc.Converter. All
// fields may be omitted; an empty config converts posterior draws and
// sampler diagnostics only.
type conversionConfig struct {
	PosteriorPredictive []string            `yaml:"posterior_predictive"`
	PriorPredictive     []string            `yaml:"prior_predictive"`
	ObservedData        []string            `yaml:"observed_data"`
	LogLikelihood       string              `yaml:"log_likelihood"`
	Dims                map[string][]string `yaml:"dims"`
	Coords              map[string][]string `yaml:"coords"`
}

func loadConfig(path string) (*conversionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg conversionConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func loadFit(path string) (*mcmc.MemoryFit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fit mcmc.MemoryFit
	if err := json.Unmarshal(raw, &fit); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fit, nil
}
