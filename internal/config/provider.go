package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/storyboard/internal/batcher"
	"github.com/ivlev/storyboard/internal/continuity"
)

const DefaultProvider = "veo"

var ErrUnknownProvider = errors.New("unknown provider")

// ProviderSpec is a provider's clip-length declaration: either a discrete set
// of allowed lengths or a single fixed length.
type ProviderSpec struct {
	Name             string    `yaml:"name"`
	AllowedDurations []float64 `yaml:"allowed_durations,omitempty"`
	FixedDuration    float64   `yaml:"fixed_duration,omitempty"`
	TargetSec        float64   `yaml:"target_sec,omitempty"`
	Tolerance        float64   `yaml:"tolerance,omitempty"`
	MaxReferences    int       `yaml:"max_references,omitempty"`
}

// IsFixed reports whether the provider accepts exactly one clip length.
func (p ProviderSpec) IsFixed() bool {
	return p.FixedDuration > 0
}

// Target is the batching target: target_sec, else the fixed length, else
// the largest allowed length.
func (p ProviderSpec) Target() float64 {
	if p.TargetSec > 0 {
		return p.TargetSec
	}
	if p.IsFixed() {
		return p.FixedDuration
	}
	max := 0.0
	for _, d := range p.AllowedDurations {
		if d > max {
			max = d
		}
	}
	return max
}

// WithDefaults fills tolerance and reference cap.
func (p ProviderSpec) WithDefaults() ProviderSpec {
	if p.Tolerance <= 0 {
		p.Tolerance = batcher.DefaultTolerance
	}
	if p.MaxReferences <= 0 {
		p.MaxReferences = continuity.DefaultMaxReferences
	}
	return p
}

func (p ProviderSpec) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("provider name is empty")
	}
	if p.IsFixed() && len(p.AllowedDurations) > 0 {
		return fmt.Errorf("provider %s: declare either allowed_durations or fixed_duration, not both", p.Name)
	}
	if !p.IsFixed() && len(p.AllowedDurations) == 0 {
		return fmt.Errorf("provider %s: no clip lengths declared", p.Name)
	}
	for _, d := range p.AllowedDurations {
		if d <= 0 {
			return fmt.Errorf("provider %s: clip length must be > 0, got %v", p.Name, d)
		}
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("provider %s: tolerance must be > 0", p.Name)
	}
	return nil
}

// Providers is the provider duration-constraint table.
type Providers struct {
	Providers []ProviderSpec `yaml:"providers"`
}

// DefaultProviders is the built-in table; a providers file overrides entries by name.
// Fixed providers keep tolerance at 1.0: every batch must match the clip length.
func DefaultProviders() *Providers {
	return &Providers{Providers: []ProviderSpec{
		{Name: "veo", AllowedDurations: []float64{4, 6, 8}, Tolerance: 1.3, MaxReferences: 3},
		{Name: "kling", AllowedDurations: []float64{5, 10}, Tolerance: 1.3, MaxReferences: 3},
		{Name: "runway", AllowedDurations: []float64{5, 10}, Tolerance: 1.2, MaxReferences: 3},
		{Name: "fixed8", FixedDuration: 8, Tolerance: 1.0, MaxReferences: 3},
	}}
}

// LoadProviders reads a YAML table and merges it over the built-in one;
// entries with the same name replace the built-in entry.
func LoadProviders(path string) (*Providers, error) {
	table := DefaultProviders()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers: %w", err)
	}
	var file Providers
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse providers %s: %w", path, err)
	}
	for _, p := range file.Providers {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		table.upsert(p)
	}
	return table, nil
}

func (t *Providers) upsert(p ProviderSpec) {
	for i, existing := range t.Providers {
		if strings.EqualFold(existing.Name, p.Name) {
			t.Providers[i] = p
			return
		}
	}
	t.Providers = append(t.Providers, p)
}

// Lookup finds a provider by name, case-insensitive, with defaults applied.
func (t *Providers) Lookup(name string) (ProviderSpec, error) {
	for _, p := range t.Providers {
		if strings.EqualFold(p.Name, name) {
			return p.WithDefaults(), nil
		}
	}
	return ProviderSpec{}, fmt.Errorf("%w: %s (known: %s)", ErrUnknownProvider, name, strings.Join(t.Names(), ", "))
}

// Names lists provider names in sorted order.
func (t *Providers) Names() []string {
	names := make([]string, 0, len(t.Providers))
	for _, p := range t.Providers {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
