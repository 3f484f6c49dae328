package batcher

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/storyboard/internal/scene"
)

// DefaultTolerance lets a batch grow to 130% of its target before a break is forced.
const DefaultTolerance = 1.3

var ErrInvalidTarget = errors.New("batch target must be > 0")

type Options struct {
	TargetSec float64
	// Tolerance is the ratio of TargetSec a batch may reach; 0 means DefaultTolerance.
	Tolerance float64
}

// Ceiling is the hard limit target × tolerance.
func (o Options) Ceiling() float64 {
	tol := o.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return o.TargetSec * tol
}

func (o Options) validate() error {
	if o.TargetSec <= 0 || math.IsNaN(o.TargetSec) || math.IsInf(o.TargetSec, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidTarget, o.TargetSec)
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return fmt.Errorf("batch tolerance must be > 0, got %v", o.Tolerance)
	}
	return nil
}

// Batch merges consecutive scenes into batches approaching TargetSec.
//
// Single greedy pass: the accumulating batch is finalized before a scene
// that would push it past the ceiling or that carries a different section.
// A scene longer than the ceiling on its own becomes a one-scene batch.
// No look-ahead balancing is attempted.
func Batch(scenes []scene.Scene, opts Options) ([]scene.Scene, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ceiling := opts.Ceiling()

	var (
		out     []scene.Scene
		start   int
		running float64
	)
	for i := range scenes {
		if i > start {
			breakSection := scenes[i].Section != scenes[start].Section
			breakCeiling := running+scenes[i].DurationSec > ceiling
			if breakSection || breakCeiling {
				out = append(out, finalize(scenes[start:i], len(out)))
				start, running = i, 0
			}
		}
		running += scenes[i].DurationSec
	}
	if start < len(scenes) {
		out = append(out, finalize(scenes[start:], len(out)))
	}
	return out, nil
}

// finalize merges a contiguous run into one batch scene.
func finalize(run []scene.Scene, order int) scene.Scene {
	first := run[0]
	b := scene.Scene{
		Order:               order,
		StartSec:            first.StartSec,
		Section:             first.Section,
		ReferenceImages:     append([]scene.ReferenceImage(nil), first.ReferenceImages...),
		UseGlobalReferences: first.UseGlobalReferences,
		Metadata: &scene.BatchMetadata{
			MergedCount:      len(run),
			OriginalSceneIDs: make([]int, 0, len(run)),
		},
	}

	texts := make([]string, 0, len(run))
	for _, s := range run {
		texts = append(texts, s.SourceText)
		b.DurationSec += s.DurationSec
		b.LyricTimings = append(b.LyricTimings, s.Timings()...)
		if s.Metadata != nil {
			b.Metadata.OriginalSceneIDs = append(b.Metadata.OriginalSceneIDs, s.Metadata.OriginalSceneIDs...)
		} else {
			b.Metadata.OriginalSceneIDs = append(b.Metadata.OriginalSceneIDs, s.Order)
		}
	}
	b.SourceText = strings.Join(texts, "\n")
	b.EndSec = run[len(run)-1].EndSec
	if b.EndSec < b.StartSec {
		b.EndSec = b.StartSec + b.DurationSec
	}
	return b
}
