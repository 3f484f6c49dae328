package snap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ivlev/storyboard/internal/scene"
)

var (
	ErrEmptySet      = errors.New("allowed duration set is empty")
	ErrFixedDuration = errors.New("batch does not match the fixed clip duration")
)

// Tolerance used when comparing durations against a fixed length.
const Tolerance = 1e-3

// ConstraintError reports a batch that violates a fixed-duration provider.
type ConstraintError struct {
	BatchOrder int
	Duration   float64
	Required   float64
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("batch %d lasts %.2fs, provider requires exactly %.2fs", e.BatchOrder, e.Duration, e.Required)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrFixedDuration
}

// Nearest returns the member of allowed closest to d. Ties break toward the
// larger value.
func Nearest(d float64, allowed []float64) (float64, error) {
	if len(allowed) == 0 {
		return 0, ErrEmptySet
	}
	best := allowed[0]
	bestDist := math.Abs(d - best)
	for _, v := range allowed[1:] {
		dist := math.Abs(d - v)
		if dist < bestDist || (dist == bestDist && v > best) {
			best, bestDist = v, dist
		}
	}
	return best, nil
}

// ValidateFixed fails when d is not the required fixed duration. It never corrects d.
func ValidateFixed(d, required float64) error {
	if math.Abs(d-required) > Tolerance {
		return &ConstraintError{BatchOrder: -1, Duration: d, Required: required}
	}
	return nil
}

// Snapper applies one provider's duration constraint to batches.
type Snapper struct {
	Allowed []float64
	// Fixed, when > 0, switches to fixed-value validation.
	Fixed float64
	// WarnDelta flags snaps that change a duration by more than this many seconds.
	WarnDelta float64
}

// New returns a snapper for a discrete set or, when fixed > 0, a fixed length.
func New(allowed []float64, fixed float64) (*Snapper, error) {
	if fixed <= 0 && len(allowed) == 0 {
		return nil, ErrEmptySet
	}
	set := append([]float64(nil), allowed...)
	sort.Float64s(set)
	return &Snapper{Allowed: set, Fixed: fixed, WarnDelta: 1.0}, nil
}

// Apply sets ClipDurationSec on every batch. Start and end times are left
// untouched. In fixed mode the first violating batch is returned as a
// *ConstraintError and no batch is modified.
func (s *Snapper) Apply(batches []scene.Scene) (scene.Warnings, error) {
	var warnings scene.Warnings
	if s.Fixed > 0 {
		for _, b := range batches {
			if err := ValidateFixed(b.DurationSec, s.Fixed); err != nil {
				var ce *ConstraintError
				if errors.As(err, &ce) {
					ce.BatchOrder = b.Order
				}
				return nil, err
			}
		}
		for i := range batches {
			batches[i].ClipDurationSec = s.Fixed
		}
		return warnings, nil
	}

	for i := range batches {
		d, err := Nearest(batches[i].DurationSec, s.Allowed)
		if err != nil {
			return nil, err
		}
		if s.WarnDelta > 0 && math.Abs(d-batches[i].DurationSec) > s.WarnDelta {
			warnings.Addf("batch %d: %.2fs snapped to %.0fs clip", batches[i].Order, batches[i].DurationSec, d)
		}
		batches[i].ClipDurationSec = d
	}
	return warnings, nil
}
