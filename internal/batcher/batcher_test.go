package batcher

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ivlev/storyboard/internal/scene"
)

func timed(sections []scene.Section, durations []float64) []scene.Scene {
	out := make([]scene.Scene, len(durations))
	for i, d := range durations {
		out[i] = scene.Scene{
			Order:       i,
			SourceText:  fmt.Sprintf("line %d", i),
			DurationSec: d,
		}
		if sections != nil {
			out[i].Section = sections[i]
		}
	}
	scene.Layout(out, 0)
	return out
}

func repeat(d float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestBatch_TwelveEvenScenes(t *testing.T) {
	batches, err := Batch(timed(nil, repeat(3, 12)), Options{TargetSec: 8, Tolerance: 1.3})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(batches) != 4 {
		t.Fatalf("expected 4 batches, got %d", len(batches))
	}
	for i, b := range batches {
		if b.DurationSec != 9 {
			t.Errorf("batch %d: expected 9s, got %.2f", i, b.DurationSec)
		}
		if b.Metadata == nil || b.Metadata.MergedCount != 3 {
			t.Errorf("batch %d: expected 3 merged scenes, got %+v", i, b.Metadata)
		}
		if b.Order != i {
			t.Errorf("batch %d: order %d", i, b.Order)
		}
	}
	if batches[1].SourceText != "line 3\nline 4\nline 5" {
		t.Errorf("unexpected merged text: %q", batches[1].SourceText)
	}
}

func TestBatch_SectionChangeForcesBreak(t *testing.T) {
	sections := []scene.Section{
		scene.SectionVerse, scene.SectionVerse, scene.SectionVerse,
		scene.SectionChorus, scene.SectionChorus, scene.SectionChorus,
	}
	batches, err := Batch(timed(sections, repeat(3, 6)), Options{TargetSec: 8, Tolerance: 1.3})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].Section != scene.SectionVerse || batches[1].Section != scene.SectionChorus {
		t.Errorf("unexpected sections: %s, %s", batches[0].Section, batches[1].Section)
	}
	for i, b := range batches {
		if b.DurationSec != 9 {
			t.Errorf("batch %d: expected 9s, got %.2f", i, b.DurationSec)
		}
	}
}

func TestBatch_OversizedSceneStandsAlone(t *testing.T) {
	batches, err := Batch(timed(nil, []float64{2, 15, 2, 2}), Options{TargetSec: 8})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if batches[1].DurationSec != 15 || batches[1].Metadata.MergedCount != 1 {
		t.Errorf("oversized scene should be alone: %+v", batches[1])
	}
}

func TestBatch_LyricTimingsPartitionBatch(t *testing.T) {
	batches, err := Batch(timed(nil, []float64{1.5, 2.5, 3}), Options{TargetSec: 10})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	b := batches[0]
	if len(b.LyricTimings) != 3 {
		t.Fatalf("expected 3 lyric timings, got %d", len(b.LyricTimings))
	}
	if b.LyricTimings[0].StartSec != b.StartSec {
		t.Errorf("first timing must start at batch start")
	}
	for i := 1; i < len(b.LyricTimings); i++ {
		if b.LyricTimings[i].StartSec != b.LyricTimings[i-1].EndSec {
			t.Errorf("gap or overlap between timings %d and %d", i-1, i)
		}
	}
	if b.LyricTimings[2].EndSec != b.EndSec {
		t.Errorf("last timing must end at batch end")
	}
	if b.LyricTimings[1].Text != "line 1" || b.LyricTimings[1].StartSec != 1.5 {
		t.Errorf("unexpected timing: %+v", b.LyricTimings[1])
	}
}

func TestBatch_InvalidTarget(t *testing.T) {
	_, err := Batch(timed(nil, []float64{1}), Options{TargetSec: 0})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestBatch_Empty(t *testing.T) {
	batches, err := Batch(nil, Options{TargetSec: 8})
	if err != nil || len(batches) != 0 {
		t.Fatalf("expected no batches, got %d (%v)", len(batches), err)
	}
}

// Properties over a spread of deterministic inputs.
func TestBatch_Properties(t *testing.T) {
	sectionCycle := []scene.Section{
		scene.SectionNone, scene.SectionVerse, scene.SectionVerse, scene.SectionChorus,
		scene.SectionChorus, scene.SectionChorus, scene.SectionBridge, scene.SectionNone,
	}

	for seed := 1; seed <= 25; seed++ {
		n := 5 + seed*3
		durations := make([]float64, n)
		sections := make([]scene.Section, n)
		for i := range durations {
			durations[i] = float64((i*seed)%9+1) * 0.75
			sections[i] = sectionCycle[(i/(seed%4+1))%len(sectionCycle)]
		}
		in := timed(sections, durations)
		opts := Options{TargetSec: float64(seed%5 + 4), Tolerance: 1.3}

		batches, err := Batch(in, opts)
		if err != nil {
			t.Fatalf("seed %d: Batch failed: %v", seed, err)
		}

		// conservation
		if math.Abs(scene.TotalDuration(batches)-scene.TotalDuration(in)) > 1e-9 {
			t.Errorf("seed %d: duration not conserved", seed)
		}

		// order preservation
		next := 0
		for _, b := range batches {
			for _, id := range b.Metadata.OriginalSceneIDs {
				if id != next {
					t.Fatalf("seed %d: expected scene %d, got %d", seed, next, id)
				}
				next++
			}
		}
		if next != n {
			t.Errorf("seed %d: %d of %d scenes covered", seed, next, n)
		}

		for bi, b := range batches {
			// section purity
			for _, id := range b.Metadata.OriginalSceneIDs {
				if in[id].Section != b.Section {
					t.Errorf("seed %d: batch %d mixes %s and %s", seed, bi, b.Section, in[id].Section)
				}
			}
			// tolerance bound
			if b.Metadata.MergedCount > 1 && b.DurationSec > opts.Ceiling()+1e-9 {
				t.Errorf("seed %d: batch %d lasts %.2f over ceiling %.2f", seed, bi, b.DurationSec, opts.Ceiling())
			}
			// contiguity
			if bi > 0 && b.StartSec != batches[bi-1].EndSec {
				t.Errorf("seed %d: batch %d not contiguous", seed, bi)
			}
		}
	}
}
