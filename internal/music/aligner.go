package music

import (
	"fmt"
	"math"

	"github.com/ivlev/storyboard/internal/scene"
)

const epsilon = 1e-6

// Aligner nudges scene boundaries toward musical grid lines.
type Aligner struct {
	Granularity Granularity
	// Strength in [0, 1]: 0 leaves boundaries alone, 1 snaps hard.
	Strength float64
	// MaxDistance bounds how far a grid line may be from a boundary; 0 means
	// two mean grid spacings, or half the mean scene length for a one-line grid.
	MaxDistance float64
}

// NewAligner returns an aligner with the default beat granularity.
func NewAligner(g Granularity, strength float64) *Aligner {
	return &Aligner{Granularity: g, Strength: strength}
}

func (a *Aligner) validate() error {
	if a.Strength < 0 || a.Strength > 1 || math.IsNaN(a.Strength) {
		return fmt.Errorf("snap strength must be in [0, 1], got %v", a.Strength)
	}
	if _, err := ParseGranularity(string(a.Granularity)); err != nil {
		return err
	}
	return nil
}

// Align moves every interior boundary toward its nearest grid line by
// Strength. The first start and last end only change when they already sit
// on the musical timeline's start or end. Problems are reported as warnings.
func (a *Aligner) Align(in []scene.Scene, m *scene.MusicTiming) ([]scene.Scene, scene.Warnings, error) {
	var warnings scene.Warnings
	if err := a.validate(); err != nil {
		return nil, nil, err
	}
	scenes := scene.Clone(in)
	if len(scenes) == 0 || m == nil {
		return scenes, warnings, nil
	}

	grid := BuildGrid(m, a.Granularity)
	if len(grid) == 0 {
		warnings.Addf("no %s grid in music timing, boundaries unchanged", a.Granularity)
		return scenes, warnings, nil
	}

	maxDist := a.MaxDistance
	if maxDist <= 0 {
		maxDist = 2 * grid.MeanSpacing()
	}
	if maxDist <= 0 {
		// single line: no spacing, stay within half a scene
		maxDist = scene.TotalDuration(scenes) / float64(len(scenes)) / 2
	}
	timelineEnd := m.TotalDurationSec
	if last := grid[len(grid)-1]; last > timelineEnd {
		timelineEnd = last
	}

	// boundaries[i] is the start of scene i; boundaries[n] is the last end.
	n := len(scenes)
	orig := make([]float64, n+1)
	for i, s := range scenes {
		orig[i] = s.StartSec
	}
	orig[n] = scenes[n-1].EndSec
	moved := append([]float64(nil), orig...)

	if math.Abs(orig[0]-grid[0]) < epsilon {
		moved[0] = grid[0]
	}
	if math.Abs(orig[n]-m.TotalDurationSec) < epsilon {
		moved[n] = m.TotalDurationSec
	}

	for i := 1; i < n; i++ {
		b := orig[i]
		if b > timelineEnd+epsilon {
			warnings.Addf("boundary %d at %.2fs is past the music end (%.2fs), unchanged", i, b, timelineEnd)
			continue
		}
		g, ok := grid.Nearest(b)
		if !ok || (maxDist > 0 && math.Abs(g-b) > maxDist) {
			warnings.Addf("boundary %d at %.2fs has no %s line nearby, unchanged", i, b, a.Granularity)
			continue
		}
		nb := lerp(b, g, a.Strength)
		if math.Abs(nb-b) < epsilon {
			continue
		}
		if nb <= moved[i-1]+epsilon || nb >= orig[i+1]-epsilon {
			warnings.Addf("boundary %d: snapping to %.2fs would collapse a scene, unchanged", i, g)
			continue
		}
		moved[i] = nb
	}

	for i := range scenes {
		scenes[i].StartSec = moved[i]
		scenes[i].EndSec = moved[i+1]
	}
	scene.Retime(scenes)
	return scenes, warnings, nil
}

// Distribute spreads the music length left after explicit scenes evenly over
// the pending scenes, then lays the timeline out from zero.
func Distribute(in []scene.Scene, pending []int, m *scene.MusicTiming, minDur float64) ([]scene.Scene, scene.Warnings) {
	var warnings scene.Warnings
	scenes := scene.Clone(in)
	if len(pending) > 0 && m != nil {
		isPending := make(map[int]bool, len(pending))
		for _, i := range pending {
			isPending[i] = true
		}
		fixed := 0.0
		for i, s := range scenes {
			if !isPending[i] {
				fixed += s.DurationSec
			}
		}
		share := (m.TotalDurationSec - fixed) / float64(len(pending))
		if share < minDur {
			warnings.Addf("music length %.2fs leaves %.2fs per scene, clamped to %.2fs", m.TotalDurationSec, share, minDur)
			share = minDur
		}
		for _, i := range pending {
			scenes[i].DurationSec = share
		}
	}
	scene.Layout(scenes, 0)
	return scenes, warnings
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
