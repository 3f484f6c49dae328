package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/storyboard/internal/scene"
)

// ReadMusicTiming loads a music analysis document (YAML, or JSON since it is
// a YAML subset). It does not validate; the estimator does.
func ReadMusicTiming(path string) (*scene.MusicTiming, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read music timing: %w", err)
	}
	var m scene.MusicTiming
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse music timing %s: %w", path, err)
	}
	return &m, nil
}

type estimatesFile struct {
	Durations []float64 `yaml:"durations"`
}

// ReadEstimates loads per-scene duration estimates produced by an external
// estimator, as a `durations:` list.
func ReadEstimates(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read estimates: %w", err)
	}
	var f estimatesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse estimates %s: %w", path, err)
	}
	return f.Durations, nil
}
