package continuity

import (
	"fmt"

	"github.com/ivlev/storyboard/internal/scene"
)

// DefaultMaxReferences is the usual provider cap on references per generation call.
const DefaultMaxReferences = 3

// Decision is the outcome of a should-chain check.
type Decision struct {
	Chain  bool   `json:"chain"`
	Reason string `json:"reason"`
}

// Policy decides frame chaining between adjacent scenes and resolves the
// reference set used for a scene. It holds configuration only.
type Policy struct {
	Detector      BreakDetector
	MaxReferences int
}

// NewPolicy returns a policy with the keyword detector and the default cap.
func NewPolicy() *Policy {
	return &Policy{
		Detector:      NewKeywordDetector(),
		MaxReferences: DefaultMaxReferences,
	}
}

func (p *Policy) maxRefs() int {
	if p.MaxReferences <= 0 {
		return DefaultMaxReferences
	}
	return p.MaxReferences
}

// ShouldChain reports whether current should be seeded with previous's last frame.
func (p *Policy) ShouldChain(previous, current scene.Scene) Decision {
	if current.Order != previous.Order+1 {
		return Decision{Reason: fmt.Sprintf("scenes %d and %d are not adjacent", previous.Order, current.Order)}
	}
	if p.Detector != nil {
		if cue, ok := p.Detector.DetectBreak(current.SourceText); ok {
			return Decision{Reason: fmt.Sprintf("scene %d contains break cue %q", current.Order, cue)}
		}
	}
	if previous.Section != current.Section {
		return Decision{Reason: fmt.Sprintf("section changes from %s to %s", previous.Section, current.Section)}
	}
	return Decision{Chain: true, Reason: fmt.Sprintf("scene %d continues scene %d in %s", current.Order, previous.Order, current.Section)}
}

// EffectiveReferences returns the scene's own references when it has any and
// does not opt into the global set, otherwise the global set. The result is
// truncated to the cap in original order.
func (p *Policy) EffectiveReferences(s scene.Scene, global *scene.ReferenceSet) []scene.ReferenceImage {
	var refs []scene.ReferenceImage
	if len(s.ReferenceImages) > 0 && !s.UseGlobalReferences {
		refs = s.ReferenceImages
	} else {
		refs = global.List()
	}
	if max := p.maxRefs(); len(refs) > max {
		refs = refs[:max]
	}
	return append([]scene.ReferenceImage(nil), refs...)
}
