package config

import "github.com/fjglira/stepbinder/internal/domain"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := true
	bindingsRecursive := true
	return &Config{
		Features: FeaturesConfig{
			Directories: []string{"features"},
			Include:     []string{"*.feature", "*.md", "*.adoc"},
			Exclude:     []string{"vendor/**", "node_modules/**"},
			Recursive:   &recursive,
			FenceTags:   []string{"gherkin", "feature", "cucumber"},
		},
		Bindings: BindingsConfig{
			Directories: []string{"."},
			Include:     []string{"*_steps.go", "steps/**/*.go"},
			Exclude:     []string{"vendor/**", "*_test.go"},
			Recursive:   &bindingsRecursive,
		},
		Skeleton: SkeletonConfig{
			Language: string(domain.LanguageGo),
		},
		Trace: TraceConfig{
			Color:             true,
			Listener:          "console",
			MinTracedDuration: "500ms",
			ShowSkeletons:     true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DryRun: false,
	}
}
