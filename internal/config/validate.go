package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fjglira/stepbinder/internal/domain"
)

var knownLanguages = map[string]bool{
	string(domain.LanguageGo):     true,
	string(domain.LanguageCSharp): true,
	string(domain.LanguageJava):   true,
}

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Features validation
	if len(cfg.Features.Directories) == 0 {
		errs = append(errs, "features.directories must not be empty")
	}
	if len(cfg.Features.Include) == 0 {
		errs = append(errs, "features.include must not be empty")
	}
	if len(cfg.Features.FenceTags) == 0 {
		errs = append(errs, "features.fence_tags must not be empty")
	}

	// Bindings validation
	if len(cfg.Bindings.Directories) > 0 && len(cfg.Bindings.Include) == 0 {
		errs = append(errs, "bindings.include must not be empty when bindings.directories is set")
	}

	// Skeleton validation; template overrides may add languages
	if cfg.Skeleton.Language == "" {
		errs = append(errs, "skeleton.language must not be empty")
	} else if !knownLanguages[cfg.Skeleton.Language] && cfg.Skeleton.TemplateDirectory == "" {
		errs = append(errs, fmt.Sprintf("skeleton.language must be one of: go, csharp, java (got %q)", cfg.Skeleton.Language))
	}

	// Trace validation
	switch cfg.Trace.Listener {
	case "", "console", "log":
	default:
		errs = append(errs, fmt.Sprintf("trace.listener must be one of: console, log (got %q)", cfg.Trace.Listener))
	}
	if cfg.Trace.MinTracedDuration != "" {
		if d, err := time.ParseDuration(cfg.Trace.MinTracedDuration); err != nil {
			errs = append(errs, fmt.Sprintf("trace.min_traced_duration is not a valid duration: %v", err))
		} else if d < 0 {
			errs = append(errs, "trace.min_traced_duration must not be negative")
		}
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		e := domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
		e.Kind = domain.KindConfiguration
		return e
	}

	return nil
}
