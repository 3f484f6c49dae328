package music

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ivlev/storyboard/internal/scene"
)

// Granularity selects which musical lines boundaries snap to.
type Granularity string

const (
	GranularityBeat    Granularity = "beat"
	GranularityMeasure Granularity = "measure"
	GranularitySection Granularity = "section"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GranularityBeat, nil
	case GranularityBeat, GranularityMeasure, GranularitySection:
		return g, nil
	default:
		return "", fmt.Errorf("unknown alignment granularity: %q", s)
	}
}

// Grid is an ordered list of musical time positions in seconds.
type Grid []float64

// BuildGrid derives grid lines at the requested granularity. Missing beats are
// derived from tempo, missing measures from beats and the time signature.
func BuildGrid(m *scene.MusicTiming, g Granularity) Grid {
	if m == nil {
		return nil
	}
	var lines []float64
	switch g {
	case GranularitySection:
		for _, s := range m.Sections {
			lines = append(lines, s.StartSec)
		}
		if n := len(m.Sections); n > 0 {
			lines = append(lines, m.Sections[n-1].EndSec)
		}
	case GranularityMeasure:
		lines = append(lines, m.Measures...)
		if len(lines) == 0 {
			beats := beatLines(m)
			per := m.BeatsPerMeasure()
			for i := 0; i < len(beats); i += per {
				lines = append(lines, beats[i])
			}
		}
	default:
		lines = beatLines(m)
	}
	return normalize(lines)
}

func beatLines(m *scene.MusicTiming) []float64 {
	if len(m.Beats) > 0 {
		return append([]float64(nil), m.Beats...)
	}
	if m.TempoBPM <= 0 || m.TotalDurationSec <= 0 {
		return nil
	}
	step := 60.0 / m.TempoBPM
	n := int(m.TotalDurationSec/step) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, float64(i)*step)
	}
	return out
}

func normalize(lines []float64) Grid {
	sort.Float64s(lines)
	out := lines[:0]
	for i, v := range lines {
		if i > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	return Grid(out)
}

// Nearest returns the grid line closest to t; ties go to the later line.
func (g Grid) Nearest(t float64) (float64, bool) {
	if len(g) == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(g, t)
	switch {
	case i == 0:
		return g[0], true
	case i == len(g):
		return g[len(g)-1], true
	}
	before, after := g[i-1], g[i]
	if t-before < after-t {
		return before, true
	}
	return after, true
}

// MeanSpacing is the average distance between consecutive lines.
func (g Grid) MeanSpacing() float64 {
	if len(g) < 2 {
		return 0
	}
	return (g[len(g)-1] - g[0]) / float64(len(g)-1)
}
