package timing

import (
	"math"

	"github.com/ivlev/storyboard/internal/scene"
)

// DefaultMinDuration is the floor applied when scaling shrinks a scene.
const DefaultMinDuration = 0.5

// Source records which rule produced a scene's duration.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceMusic    Source = "music"
	SourceEstimate Source = "estimate"
	SourcePacing   Source = "pacing"
)

type Options struct {
	// Music, when present and valid, leaves non-explicit scenes pending for the aligner.
	Music *scene.MusicTiming
	// Estimates is an externally produced duration per scene, used only when
	// its length matches the scene count.
	Estimates []float64
	Pacing    Pacing
	// TargetDuration is the requested total length; 0 means unset.
	TargetDuration float64
	MatchTarget    bool
	MinDuration    float64
}

type Result struct {
	Scenes []scene.Scene
	// Sources has one entry per scene.
	Sources []Source
	// Pending lists indices whose duration is left for music distribution.
	Pending  []int
	Scale    float64
	Warnings scene.Warnings
}

// HasPending reports whether the music aligner must distribute durations.
func (r *Result) HasPending() bool {
	return len(r.Pending) > 0
}

// Estimate assigns a duration to every scene without an explicit marker.
// The input slice is not modified.
func Estimate(in []scene.Scene, opts Options) Result {
	scenes := scene.Clone(in)
	res := Result{
		Scenes:  scenes,
		Sources: make([]Source, len(scenes)),
		Scale:   1.0,
	}
	if len(scenes) == 0 {
		return res
	}

	minDur := opts.MinDuration
	if minDur <= 0 {
		minDur = DefaultMinDuration
	}

	music := opts.Music
	if music != nil {
		if err := music.Validate(); err != nil {
			res.Warnings.Addf("music timing unusable (%v), falling back to pacing", err)
			music = nil
		}
	}

	estimates := opts.Estimates
	if len(estimates) > 0 && len(estimates) != len(scenes) {
		res.Warnings.Addf("got %d duration estimates for %d scenes, ignoring estimates", len(estimates), len(scenes))
		estimates = nil
	}

	var pacingIdx []int
	explicitSum := 0.0
	for i := range scenes {
		switch {
		case scenes[i].Explicit:
			res.Sources[i] = SourceExplicit
			explicitSum += scenes[i].DurationSec
		case music != nil:
			res.Sources[i] = SourceMusic
			scenes[i].DurationSec = 0
			res.Pending = append(res.Pending, i)
		case estimates != nil && estimates[i] > 0 && !math.IsInf(estimates[i], 0):
			res.Sources[i] = SourceEstimate
			scenes[i].DurationSec = estimates[i]
		default:
			if estimates != nil {
				res.Warnings.Addf("scene %d: invalid duration estimate %.3f, using pacing", i, estimates[i])
			}
			res.Sources[i] = SourcePacing
			pacingIdx = append(pacingIdx, i)
		}
	}

	if len(pacingIdx) > 0 {
		r := RangeFor(opts.Pacing)
		d := r.Mid()
		if opts.TargetDuration > 0 {
			assigned := explicitSum
			for i := range scenes {
				if res.Sources[i] == SourceEstimate {
					assigned += scenes[i].DurationSec
				}
			}
			remaining := opts.TargetDuration - assigned
			if remaining > 0 {
				d = r.Clamp(remaining / float64(len(pacingIdx)))
			} else {
				d = r.Min
			}
		}
		for _, i := range pacingIdx {
			scenes[i].DurationSec = d
		}
	}

	if opts.MatchTarget && music == nil && opts.TargetDuration > 0 {
		matchTarget(&res, opts.TargetDuration, explicitSum, minDur)
	}

	if music == nil {
		scene.Layout(scenes, 0)
	}
	return res
}

// matchTarget scales every non-explicit duration by one multiplier so the
// total equals target. Explicit durations are never touched.
func matchTarget(res *Result, target, explicitSum, minDur float64) {
	scalable := 0.0
	for i, s := range res.Scenes {
		if res.Sources[i] != SourceExplicit {
			scalable += s.DurationSec
		}
	}
	if scalable == 0 {
		if explicitSum != target {
			res.Warnings.Addf("cannot match target %.2fs: all durations are explicit (%.2fs)", target, explicitSum)
		}
		return
	}

	scale := (target - explicitSum) / scalable
	res.Scale = scale

	clamped := 0
	for i := range res.Scenes {
		if res.Sources[i] == SourceExplicit {
			continue
		}
		d := res.Scenes[i].DurationSec * scale
		if d < minDur {
			d = minDur
			clamped++
		}
		res.Scenes[i].DurationSec = d
	}
	if clamped > 0 {
		res.Warnings.Addf("%d scene(s) clamped to %.2fs while matching target %.2fs", clamped, minDur, target)
	}
}
