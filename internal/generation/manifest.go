package generation

import (
	"encoding/json"
	"os"

	"github.com/ivlev/storyboard/internal/scene"
)

// Manifest is handed to the renderer: batches in playback order with the
// media the generation stage approved for them.
type Manifest struct {
	ProjectID        string         `json:"project_id"`
	Provider         string         `json:"provider"`
	TotalDurationSec float64        `json:"total_duration_sec"`
	Clips            []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	Order           int                 `json:"order"`
	RequestID       string              `json:"request_id,omitempty"`
	StartSec        float64             `json:"start_sec"`
	EndSec          float64             `json:"end_sec"`
	ClipDurationSec float64             `json:"clip_duration_sec"`
	Section         string              `json:"section"`
	Text            string              `json:"text"`
	File            string              `json:"file,omitempty"`
	LastFrame       string              `json:"last_frame,omitempty"`
	Chained         bool                `json:"chained"`
	Lyrics          []scene.LyricTiming `json:"lyrics,omitempty"`
}

// NewManifest pairs batches with their requests by batch order. Requests may
// be nil when nothing was generated yet.
func NewManifest(projectID, provider string, batches []scene.Scene, requests []Request) Manifest {
	byOrder := make(map[int]Request, len(requests))
	for _, r := range requests {
		byOrder[r.BatchOrder] = r
	}

	m := Manifest{
		ProjectID:        projectID,
		Provider:         provider,
		TotalDurationSec: scene.TotalDuration(batches),
		Clips:            make([]ManifestClip, 0, len(batches)),
	}
	for _, b := range batches {
		clip := ManifestClip{
			Order:           b.Order,
			StartSec:        b.StartSec,
			EndSec:          b.EndSec,
			ClipDurationSec: b.ClipDurationSec,
			Section:         b.Section.String(),
			Text:            b.SourceText,
			File:            b.ApprovedMedia,
			LastFrame:       b.LastFrame,
		}
		if r, ok := byOrder[b.Order]; ok {
			clip.RequestID = r.ID
			clip.Chained = r.Chain
			clip.Lyrics = r.LyricTimings
		}
		m.Clips = append(m.Clips, clip)
	}
	return m
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
