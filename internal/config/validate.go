package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/doctree/internal/doctree"
	"github.com/mvp-joe/doctree/internal/logging"
)

var (
	// ErrInvalidSearchDepth indicates a non-positive search depth
	ErrInvalidSearchDepth = errors.New("invalid search depth")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidLogSettings indicates an unknown log level or format
	ErrInvalidLogSettings = errors.New("invalid log settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Extraction.SearchDepth < 1 {
		errs = append(errs, fmt.Errorf("%w: search_depth must be at least 1, got %d", ErrInvalidSearchDepth, cfg.Extraction.SearchDepth))
	}

	if cfg.Extraction.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidWorkers, cfg.Extraction.Workers))
	}

	if _, err := doctree.ParseFormat(cfg.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	// Capacity only matters when the cache is on.
	if cfg.Cache.Enabled && cfg.Cache.Capacity < 1 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive when enabled, got %d", ErrInvalidCacheSettings, cfg.Cache.Capacity))
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLogSettings, err))
	}
	if _, err := logging.ParseFormat(cfg.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLogSettings, err))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every input stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	verbs := make([]string, len(errs))
	args := make([]any, len(errs))
	for i, err := range errs {
		verbs[i] = "%w"
		args[i] = err
	}

	return fmt.Errorf("validation failed:\n  - "+strings.Join(verbs, "\n  - "), args...)
}
