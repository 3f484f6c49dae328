package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GenerateStoryboardPath creates a timestamped storyboard filename in dir
func GenerateStoryboardPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("storyboard_%s.yaml", now.Format("2006-01-02_15-04-05")))
}

// FindLatestStoryboard finds the most recent storyboard file in dir
func FindLatestStoryboard(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read storyboard directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var boards []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "storyboard") || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		boards = append(boards, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(boards) == 0 {
		return "", fmt.Errorf("no storyboard files found in %s", dir)
	}

	// Newest first
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].mod.After(boards[j].mod)
	})

	return boards[0].path, nil
}
