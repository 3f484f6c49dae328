package generation

import (
	"math"

	"github.com/google/uuid"

	"github.com/ivlev/storyboard/internal/continuity"
	"github.com/ivlev/storyboard/internal/scene"
)

// Request is one provider call: a snapped batch plus everything the provider
// needs to keep it consistent with its neighbours.
type Request struct {
	ID               string                 `json:"id"`
	ProjectID        string                 `json:"project_id"`
	BatchOrder       int                    `json:"batch_order"`
	ClipDurationSec  float64                `json:"clip_duration_sec"`
	StartSec         float64                `json:"start_sec"`
	EndSec           float64                `json:"end_sec"`
	Text             string                 `json:"text"`
	Section          string                 `json:"section"`
	LyricTimings     []scene.LyricTiming    `json:"lyric_timings"`
	OriginalSceneIDs []int                  `json:"original_scene_ids,omitempty"`
	Chain            bool                   `json:"chain"`
	ChainReason      string                 `json:"chain_reason"`
	PreviousOrder    *int                   `json:"previous_order,omitempty"`
	SeedFrame        string                 `json:"seed_frame,omitempty"`
	References       []scene.ReferenceImage `json:"references"`
}

// BuildRequests turns snapped batches into requests in batch order. The
// first batch never chains; every later one is judged against its predecessor.
func BuildRequests(projectID string, batches []scene.Scene, policy *continuity.Policy, global *scene.ReferenceSet) ([]Request, []continuity.Decision) {
	requests := make([]Request, 0, len(batches))
	decisions := make([]continuity.Decision, 0, len(batches))

	for i, b := range batches {
		d := continuity.Decision{Reason: "first batch"}
		if i > 0 {
			d = policy.ShouldChain(batches[i-1], b)
		}
		decisions = append(decisions, d)

		req := Request{
			ID:              uuid.NewString(),
			ProjectID:       projectID,
			BatchOrder:      b.Order,
			ClipDurationSec: b.ClipDurationSec,
			StartSec:        b.StartSec,
			EndSec:          b.EndSec,
			Text:            b.SourceText,
			Section:         b.Section.String(),
			LyricTimings:    roundTimings(b.Timings()),
			Chain:           d.Chain,
			ChainReason:     d.Reason,
			References:      policy.EffectiveReferences(b, global),
		}
		if req.ClipDurationSec == 0 {
			req.ClipDurationSec = b.DurationSec
		}
		if b.Metadata != nil {
			req.OriginalSceneIDs = append([]int(nil), b.Metadata.OriginalSceneIDs...)
		}
		if d.Chain {
			prev := batches[i-1].Order
			req.PreviousOrder = &prev
		}
		requests = append(requests, req)
	}
	return requests, decisions
}

func roundTimings(in []scene.LyricTiming) []scene.LyricTiming {
	out := make([]scene.LyricTiming, len(in))
	for i, lt := range in {
		out[i] = scene.LyricTiming{
			Text:        lt.Text,
			StartSec:    round1(lt.StartSec),
			EndSec:      round1(lt.EndSec),
			DurationSec: round1(lt.DurationSec),
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
