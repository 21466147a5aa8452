package config

import (
	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/mvp-joe/doctree/internal/doctree"
)

// Config represents the complete doctree configuration.
// It can be loaded from .doctree/config.yml with environment variable overrides.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ExtractionConfig controls how briefs are pulled out of files.
type ExtractionConfig struct {
	SearchDepth int `yaml:"search_depth" mapstructure:"search_depth"` // leading lines scanned per file
	Workers     int `yaml:"workers" mapstructure:"workers"`           // concurrent extractions
}

// PathsConfig defines which files to scan and which to ignore.
type PathsConfig struct {
	Include          []string `yaml:"include" mapstructure:"include"`                     // glob patterns for candidate files
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"`                       // glob patterns to ignore
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // drop files git ignores
}

// OutputConfig selects how the tree is rendered.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "markdown", "json" or "yaml"
	File   string `yaml:"file" mapstructure:"file"`     // empty means stdout
}

// CacheConfig configures the in-memory brief cache used by long-running modes.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity int  `yaml:"capacity" mapstructure:"capacity"` // max cached files
}

// LogConfig configures diagnostics output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn" or "error"
	Format string `yaml:"format" mapstructure:"format"` // "text", "json" or "logfmt"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			SearchDepth: brief.DefaultSearchDepth,
			Workers:     8,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				"dist/**",
				"build/**",
				"target/**",
				"**/__pycache__/**",
				"**/*.pyc",
				"**/*.test",
			},
			RespectGitignore: true,
		},
		Output: OutputConfig{
			Format: string(doctree.FormatMarkdown),
			File:   "",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 10000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// BuildOptions converts the configuration into tree builder options rooted at rootDir.
func (c *Config) BuildOptions(rootDir string) doctree.Options {
	return doctree.Options{
		RootDir:          rootDir,
		SearchDepth:      c.Extraction.SearchDepth,
		Workers:          c.Extraction.Workers,
		Include:          c.Paths.Include,
		Ignore:           c.Paths.Ignore,
		RespectGitignore: c.Paths.RespectGitignore,
	}
}
