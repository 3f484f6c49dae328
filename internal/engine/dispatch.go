package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/storyboard/internal/continuity"
	"github.com/ivlev/storyboard/internal/generation"
	"github.com/ivlev/storyboard/internal/system"
)

// Dispatch sends requests to gen on a bounded worker pool. Unchained requests
// run in parallel; a chained request is submitted only after its predecessor
// completed, seeded with that clip's last frame. The calling goroutine is the
// only reader of completion events. The first generator error cancels the rest.
func (p *StoryboardProject) Dispatch(ctx context.Context, gen generation.Generator, requests []generation.Request) (map[int]continuity.SceneCompleted, error) {
	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers()
	}
	p.Logger.Info("dispatching requests", slog.Int("requests", len(requests)), slog.Int("workers", workers))

	handoff := continuity.NewHandoff(len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var awaitErr error
	for i := range requests {
		req := &requests[i]
		if req.Chain && req.PreviousOrder != nil {
			prev, err := handoff.Await(gctx, *req.PreviousOrder)
			if err != nil {
				awaitErr = err
				break
			}
			req.SeedFrame = prev.LastFrame
		}

		r := *req
		g.Go(func() error {
			ev, err := gen.Generate(gctx, r)
			if err != nil {
				return fmt.Errorf("batch %d: %w", r.BatchOrder, err)
			}
			ev.Order = r.BatchOrder
			handoff.Publish(ev)
			return nil
		})
	}

	// Ждем завершения всех воркеров
	if err := g.Wait(); err != nil {
		p.Logger.Error("dispatch failed", slog.String("error", err.Error()))
		return nil, err
	}
	if awaitErr != nil {
		return nil, awaitErr
	}

	events := handoff.Drain()
	for i := range requests {
		ev := events[requests[i].BatchOrder]
		p.Logger.Debug("clip ready",
			slog.Int("batch", ev.Order),
			slog.String("media", ev.ApprovedMedia),
			slog.Bool("chained", requests[i].Chain))
	}
	return events, nil
}
