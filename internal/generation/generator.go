package generation

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ivlev/storyboard/internal/continuity"
)

// Generator produces the clip for one request. Implementations are called
// concurrently and must not touch shared scene state.
type Generator interface {
	Generate(ctx context.Context, req Request) (continuity.SceneCompleted, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (continuity.SceneCompleted, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (continuity.SceneCompleted, error) {
	return f(ctx, req)
}

// DryRunGenerator names the files a real provider would return without
// calling anything.
type DryRunGenerator struct {
	OutDir string
}

func (g DryRunGenerator) Generate(ctx context.Context, req Request) (continuity.SceneCompleted, error) {
	if err := ctx.Err(); err != nil {
		return continuity.SceneCompleted{}, err
	}
	return continuity.SceneCompleted{
		Order:         req.BatchOrder,
		ApprovedMedia: filepath.Join(g.OutDir, "clips", fmt.Sprintf("clip_%03d.mp4", req.BatchOrder)),
		LastFrame:     filepath.Join(g.OutDir, "frames", fmt.Sprintf("frame_%03d.png", req.BatchOrder)),
	}, nil
}
