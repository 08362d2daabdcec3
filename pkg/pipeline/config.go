package pipeline

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/cleaner"
	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/reporters"
	"github.com/coolbeans/lexcite/pkg/resolve"
)

// Config is the YAML pipeline configuration:
//
//	cleaners: [html, unicode, inline_whitespace]
//	lookahead: 20
//	pattern_dir: patterns/
//	reporters_file: reporters.yaml
//	extraction:
//	  case_name_window: 150
//	  parenthetical_window: 200
//	resolution:
//	  scope: paragraph
//	  party_match_threshold: 0.8
//	adjust:
//	  unique_boost: 0.1
type Config struct {
	// Cleaners names cleaning steps from the registry, in order.
	// Empty keeps the default sequence.
	Cleaners []string `yaml:"cleaners"`

	// Lookahead bounds the position diff resync window.
	Lookahead int `yaml:"lookahead"`

	// PatternDir holds YAML pattern overlay files loaded on top of the
	// built-in set.
	PatternDir string `yaml:"pattern_dir"`

	// ReportersFile points at a reporter dataset. Empty uses the
	// embedded one.
	ReportersFile string `yaml:"reporters_file"`

	Extraction citation.Options       `yaml:"extraction"`
	Resolution *resolve.Options       `yaml:"resolution"`
	Adjust     reporters.AdjustConfig `yaml:"adjust"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// Options materializes runtime options from the configuration.
// Unknown cleaner names, unloadable pattern files, and unreadable
// reporter datasets are errors.
func (c *Config) Options(logger *zap.Logger) (Options, error) {
	opts := Options{
		Lookahead:  c.Lookahead,
		Extraction: c.Extraction,
		Resolution: c.Resolution,
		Adjust:     c.Adjust,
		Logger:     logger,
	}

	if len(c.Cleaners) > 0 {
		steps, err := cleaner.Steps(c.Cleaners...)
		if err != nil {
			return Options{}, err
		}
		opts.Cleaners = steps
	}

	if c.PatternDir != "" {
		lib := pattern.Default()
		lib.SetLogger(logger)
		if err := lib.LoadDirectory(c.PatternDir); err != nil {
			return Options{}, err
		}
		opts.Patterns = lib
	}

	if c.ReportersFile != "" {
		db, err := reporters.LoadFile(c.ReportersFile)
		if err != nil {
			return Options{}, err
		}
		opts.Reporters = db
	} else {
		db, err := reporters.Default()
		if err != nil {
			return Options{}, err
		}
		opts.Reporters = db
	}

	return opts, nil
}
