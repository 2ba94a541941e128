// Package config loads and validates stepbinder.yaml.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/stepbinder/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Features FeaturesConfig `yaml:"features"`
	Bindings BindingsConfig `yaml:"bindings"`
	Skeleton SkeletonConfig `yaml:"skeleton"`
	Trace    TraceConfig    `yaml:"trace"`
	Logging  LoggingConfig  `yaml:"logging"`
	DryRun   bool           `yaml:"dry_run"`
}

// FeaturesConfig selects the documents that hold Gherkin.
type FeaturesConfig struct {
	Directories []string `yaml:"directories"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	Recursive   *bool    `yaml:"recursive"` // pointer to distinguish unset from false
	FenceTags   []string `yaml:"fence_tags"`
}

// BindingsConfig selects the Go sources scanned for step definitions.
type BindingsConfig struct {
	Directories []string `yaml:"directories"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	Recursive   *bool    `yaml:"recursive"`
}

type SkeletonConfig struct {
	Language          string `yaml:"language"`
	TemplateDirectory string `yaml:"template_directory"`
}

type TraceConfig struct {
	Color             bool   `yaml:"color"`
	Listener          string `yaml:"listener"` // console or log
	MinTracedDuration string `yaml:"min_traced_duration"`
	ShowSkeletons     bool   `yaml:"show_skeletons"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// IsRecursive reports whether feature directories are walked recursively.
func (c FeaturesConfig) IsRecursive() bool {
	return c.Recursive == nil || *c.Recursive
}

// IsRecursive reports whether binding directories are walked recursively.
func (c BindingsConfig) IsRecursive() bool {
	return c.Recursive == nil || *c.Recursive
}

// MinDuration returns the parsed min_traced_duration, zero when unset.
func (c TraceConfig) MinDuration() time.Duration {
	if c.MinTracedDuration == "" {
		return 0
	}
	d, err := time.ParseDuration(c.MinTracedDuration)
	if err != nil {
		return 0
	}
	return d
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("config", path, 0, "failed to read config file",
			"create one with the defaults or pass --config", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}
