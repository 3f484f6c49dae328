package config

import (
	"fmt"

	"github.com/ivlev/storyboard/internal/continuity"
	"github.com/ivlev/storyboard/internal/music"
	"github.com/ivlev/storyboard/internal/parser"
	"github.com/ivlev/storyboard/internal/timing"
)

type Config struct {
	InputPath      string
	OutputDir      string
	Format         string
	Pacing         string
	TotalDuration  float64
	MatchTarget    bool
	MusicPath      string
	EstimatesPath  string
	Granularity    string
	SnapStrength   float64
	Provider       string
	ProvidersPath  string
	Tolerance      float64 // overrides the provider's tolerance when > 0
	MaxReferences  int     // overrides the provider's cap when > 0
	ReferencePaths []string
	SmartRefs      bool // pick per-batch references by keyword match
	Detector       string
	MinDuration    float64
	Workers        int
	Dispatch       bool
	Verbose        bool
}

// Default returns the CLI defaults.
func Default() *Config {
	return &Config{
		OutputDir:    "output",
		Format:       string(parser.FormatAuto),
		Pacing:       string(timing.PacingMedium),
		Granularity:  string(music.GranularityBeat),
		SnapStrength: 0.5,
		Provider:     DefaultProvider,
		Detector:     "keyword",
		MinDuration:  timing.DefaultMinDuration,
	}
}

// Validate checks ranges and enumerated names.
func (c *Config) Validate() error {
	if _, err := parser.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := timing.ParsePacing(c.Pacing); err != nil {
		return err
	}
	if _, err := music.ParseGranularity(c.Granularity); err != nil {
		return err
	}
	if _, err := continuity.NewBreakDetector(c.Detector); err != nil {
		return err
	}
	if c.SnapStrength < 0 || c.SnapStrength > 1 {
		return fmt.Errorf("snap strength must be in [0, 1], got %v", c.SnapStrength)
	}
	if c.TotalDuration < 0 {
		return fmt.Errorf("duration must be >= 0, got %v", c.TotalDuration)
	}
	if c.MatchTarget && c.TotalDuration == 0 {
		return fmt.Errorf("match-target needs a duration")
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be > 0, got %v", c.Tolerance)
	}
	if c.MaxReferences < 0 {
		return fmt.Errorf("max references must be >= 1, got %d", c.MaxReferences)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MinDuration <= 0 {
		return fmt.Errorf("min duration must be > 0, got %v", c.MinDuration)
	}
	return nil
}
