package scene

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MusicSection is a labelled span of the musical timeline.
type MusicSection struct {
	Label    string  `yaml:"label" json:"label"`
	StartSec float64 `yaml:"start_sec" json:"start_sec"`
	EndSec   float64 `yaml:"end_sec" json:"end_sec"`
}

// MusicTiming is produced by an external music-file parser and consumed read-only.
type MusicTiming struct {
	TempoBPM         float64        `yaml:"tempo_bpm" json:"tempo_bpm"`
	TimeSignature    string         `yaml:"time_signature" json:"time_signature"`
	Beats            []float64      `yaml:"beats" json:"beats"`
	Measures         []float64      `yaml:"measures" json:"measures"`
	Sections         []MusicSection `yaml:"sections" json:"sections"`
	TotalDurationSec float64        `yaml:"total_duration_sec" json:"total_duration_sec"`
}

// BeatsPerMeasure returns the numerator of the time signature, 4 if unparsable.
func (m *MusicTiming) BeatsPerMeasure() int {
	num, _, ok := strings.Cut(m.TimeSignature, "/")
	if !ok {
		return 4
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return 4
	}
	return n
}

// Validate reports data that makes the timing unusable for alignment.
func (m *MusicTiming) Validate() error {
	if m == nil {
		return errors.New("music timing is missing")
	}
	if m.TotalDurationSec <= 0 {
		return fmt.Errorf("music total duration must be > 0, got %.3f", m.TotalDurationSec)
	}
	if m.TempoBPM < 0 {
		return fmt.Errorf("music tempo must be >= 0, got %.3f", m.TempoBPM)
	}
	if m.TempoBPM == 0 && len(m.Beats) == 0 && len(m.Measures) == 0 && len(m.Sections) == 0 {
		return errors.New("music timing has no tempo, beats, measures or sections")
	}
	if !sort.Float64sAreSorted(m.Beats) {
		return errors.New("music beats are not ordered")
	}
	if !sort.Float64sAreSorted(m.Measures) {
		return errors.New("music measures are not ordered")
	}
	for i, s := range m.Sections {
		if s.EndSec < s.StartSec {
			return fmt.Errorf("music section %d ends before it starts", i)
		}
		if i > 0 && s.StartSec < m.Sections[i-1].StartSec {
			return fmt.Errorf("music section %d is out of order", i)
		}
	}
	return nil
}
