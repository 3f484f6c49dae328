package timing

import (
	"fmt"
	"strings"
)

// Pacing selects a fixed per-scene duration range.
type Pacing string

const (
	PacingFast   Pacing = "fast"
	PacingMedium Pacing = "medium"
	PacingSlow   Pacing = "slow"
)

// Range is a per-scene duration window in seconds.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

func (r Range) Clamp(d float64) float64 {
	if d < r.Min {
		return r.Min
	}
	if d > r.Max {
		return r.Max
	}
	return d
}

var presets = map[Pacing]Range{
	PacingFast:   {Min: 2, Max: 4},
	PacingMedium: {Min: 4, Max: 6},
	PacingSlow:   {Min: 6, Max: 8},
}

// ParsePacing maps a preset name to a Pacing; empty means medium.
func ParsePacing(s string) (Pacing, error) {
	p := Pacing(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PacingMedium, nil
	}
	if _, ok := presets[p]; !ok {
		return "", fmt.Errorf("unknown pacing preset: %q", s)
	}
	return p, nil
}

// RangeFor returns the duration window of a preset, medium for unknown values.
func RangeFor(p Pacing) Range {
	if r, ok := presets[p]; ok {
		return r
	}
	return presets[PacingMedium]
}
