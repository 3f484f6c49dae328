package scene

import "strings"

// Section is a structural tag of the source text (verse, chorus, ...).
// The zero value means "no section".
type Section string

const (
	SectionNone         Section = ""
	SectionIntro        Section = "intro"
	SectionVerse        Section = "verse"
	SectionPreChorus    Section = "pre-chorus"
	SectionChorus       Section = "chorus"
	SectionBridge       Section = "bridge"
	SectionOutro        Section = "outro"
	SectionHook         Section = "hook"
	SectionInstrumental Section = "instrumental"
	SectionInterlude    Section = "interlude"
)

var knownSections = map[string]Section{
	"intro":        SectionIntro,
	"verse":        SectionVerse,
	"pre-chorus":   SectionPreChorus,
	"prechorus":    SectionPreChorus,
	"pre chorus":   SectionPreChorus,
	"chorus":       SectionChorus,
	"refrain":      SectionChorus,
	"bridge":       SectionBridge,
	"outro":        SectionOutro,
	"hook":         SectionHook,
	"instrumental": SectionInstrumental,
	"interlude":    SectionInterlude,
	"none":         SectionNone,
}

// ParseSection maps a free-form label ("Verse", "PRE-CHORUS") to a Section.
func ParseSection(label string) (Section, bool) {
	s, ok := knownSections[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// IsNone reports whether the section carries no label.
func (s Section) IsNone() bool {
	return s == SectionNone
}

func (s Section) String() string {
	if s == SectionNone {
		return "none"
	}
	return string(s)
}

// LyricTiming is the timing of one source line inside a scene.
type LyricTiming struct {
	Text        string  `yaml:"text" json:"text"`
	StartSec    float64 `yaml:"start_sec" json:"start_sec"`
	EndSec      float64 `yaml:"end_sec" json:"end_sec"`
	DurationSec float64 `yaml:"duration_sec" json:"duration_sec"`
}

// BatchMetadata is set only on scenes produced by the batcher.
type BatchMetadata struct {
	MergedCount      int   `yaml:"merged_count" json:"merged_count"`
	OriginalSceneIDs []int `yaml:"original_scene_ids" json:"original_scene_ids"`
}

// Scene is an ordered, timed unit of source text.
type Scene struct {
	Order       int     `yaml:"order" json:"order"`
	SourceText  string  `yaml:"source_text" json:"source_text"`
	StartSec    float64 `yaml:"start_sec" json:"start_sec"`
	EndSec      float64 `yaml:"end_sec" json:"end_sec"`
	DurationSec float64 `yaml:"duration_sec" json:"duration_sec"`
	Section     Section `yaml:"section,omitempty" json:"section,omitempty"`

	// Explicit is true when the duration came from an inline marker.
	// Explicit durations are never rescaled.
	Explicit bool `yaml:"explicit,omitempty" json:"explicit,omitempty"`

	// ClipDurationSec is the provider clip length after snapping; zero until snapped.
	ClipDurationSec float64 `yaml:"clip_duration_sec,omitempty" json:"clip_duration_sec,omitempty"`

	LyricTimings []LyricTiming  `yaml:"lyric_timings,omitempty" json:"lyric_timings,omitempty"`
	Metadata     *BatchMetadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`

	// Written by the external generation stage only.
	ApprovedMedia string `yaml:"approved_media,omitempty" json:"approved_media,omitempty"`
	LastFrame     string `yaml:"last_frame,omitempty" json:"last_frame,omitempty"`

	ReferenceImages     []ReferenceImage `yaml:"reference_images,omitempty" json:"reference_images,omitempty"`
	UseGlobalReferences bool             `yaml:"use_global_references" json:"use_global_references"`
}

// Lines returns the source text split into its original lines.
func (s Scene) Lines() []string {
	return strings.Split(s.SourceText, "\n")
}

// Timings returns the scene's lyric timings, or a single entry covering the
// whole scene when none were recorded.
func (s Scene) Timings() []LyricTiming {
	if len(s.LyricTimings) > 0 {
		return s.LyricTimings
	}
	return []LyricTiming{{
		Text:        s.SourceText,
		StartSec:    s.StartSec,
		EndSec:      s.EndSec,
		DurationSec: s.EndSec - s.StartSec,
	}}
}

// TotalDuration sums DurationSec over scenes.
func TotalDuration(scenes []Scene) float64 {
	total := 0.0
	for _, s := range scenes {
		total += s.DurationSec
	}
	return total
}

// Layout assigns contiguous start/end times from offset using each scene's
// DurationSec, and drops stale per-line timings.
func Layout(scenes []Scene, offset float64) {
	cursor := offset
	for i := range scenes {
		scenes[i].StartSec = cursor
		cursor += scenes[i].DurationSec
		scenes[i].EndSec = cursor
		scenes[i].LyricTimings = nil
	}
}

// Retime recomputes DurationSec from start/end after boundaries were moved.
func Retime(scenes []Scene) {
	for i := range scenes {
		d := scenes[i].EndSec - scenes[i].StartSec
		if d < 0 {
			d = 0
		}
		scenes[i].DurationSec = d
		scenes[i].LyricTimings = nil
	}
}

// Clone returns a deep copy of the scene list.
func Clone(scenes []Scene) []Scene {
	out := make([]Scene, len(scenes))
	for i, s := range scenes {
		out[i] = s
		if s.LyricTimings != nil {
			out[i].LyricTimings = append([]LyricTiming(nil), s.LyricTimings...)
		}
		if s.ReferenceImages != nil {
			out[i].ReferenceImages = append([]ReferenceImage(nil), s.ReferenceImages...)
		}
		if s.Metadata != nil {
			md := *s.Metadata
			md.OriginalSceneIDs = append([]int(nil), s.Metadata.OriginalSceneIDs...)
			out[i].Metadata = &md
		}
	}
	return out
}
