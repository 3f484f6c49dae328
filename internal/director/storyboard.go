package director

import (
	"time"

	"github.com/ivlev/storyboard/internal/continuity"
	"github.com/ivlev/storyboard/internal/scene"
)

const StoryboardVersion = "1"

// Storyboard is the persisted result of one build: the timed scenes, the
// provider-ready batches and the project references.
type Storyboard struct {
	Version          string                `yaml:"version"`
	ProjectID        string                `yaml:"project_id"`
	CreatedAt        time.Time             `yaml:"created_at"`
	Source           string                `yaml:"source,omitempty"`
	Provider         string                `yaml:"provider"`
	TotalDurationSec float64               `yaml:"total_duration_sec"`
	References       *scene.ReferenceSet   `yaml:"references,omitempty"`
	Scenes           []scene.Scene         `yaml:"scenes"`
	Batches          []scene.Scene         `yaml:"batches"`
	Chain            []continuity.Decision `yaml:"chain,omitempty"`
	Warnings         []string              `yaml:"warnings,omitempty"`
}

// Batch returns the batch with the given order.
func (sb *Storyboard) Batch(order int) (*scene.Scene, bool) {
	for i := range sb.Batches {
		if sb.Batches[i].Order == order {
			return &sb.Batches[i], true
		}
	}
	return nil, false
}

// ApplyCompletions records generated media on the matching batches and
// returns the orders that had no batch.
func (sb *Storyboard) ApplyCompletions(events map[int]continuity.SceneCompleted) []int {
	var unknown []int
	for order, ev := range events {
		b, ok := sb.Batch(order)
		if !ok {
			unknown = append(unknown, order)
			continue
		}
		b.ApprovedMedia = ev.ApprovedMedia
		b.LastFrame = ev.LastFrame
	}
	return unknown
}
