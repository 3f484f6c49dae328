package continuity

import (
	"context"
	"fmt"
)

// SceneCompleted is published by the generation stage once a batch's clip exists.
type SceneCompleted struct {
	Order         int
	ApprovedMedia string
	LastFrame     string
}

// Handoff carries completion events from generation workers to the single
// coordinating goroutine. Workers call Publish; only the coordinator calls
// Await and Drain. Receiving an event happens-after the worker's write of it.
type Handoff struct {
	events chan SceneCompleted
	seen   map[int]SceneCompleted
}

// NewHandoff sizes the buffer so publishers never block; capacity should be
// the number of requests in flight for one dispatch.
func NewHandoff(capacity int) *Handoff {
	if capacity < 1 {
		capacity = 1
	}
	return &Handoff{
		events: make(chan SceneCompleted, capacity),
		seen:   make(map[int]SceneCompleted),
	}
}

// Publish is safe to call from any goroutine.
func (h *Handoff) Publish(ev SceneCompleted) {
	h.events <- ev
}

// Await blocks until the event for order arrives or ctx is done.
func (h *Handoff) Await(ctx context.Context, order int) (SceneCompleted, error) {
	if ev, ok := h.seen[order]; ok {
		return ev, nil
	}
	for {
		select {
		case ev := <-h.events:
			h.seen[ev.Order] = ev
			if ev.Order == order {
				return ev, nil
			}
		case <-ctx.Done():
			return SceneCompleted{}, fmt.Errorf("waiting for scene %d: %w", order, ctx.Err())
		}
	}
}

// Drain collects every event received so far, including buffered ones.
// Call it after all publishers have returned.
func (h *Handoff) Drain() map[int]SceneCompleted {
	for {
		select {
		case ev := <-h.events:
			h.seen[ev.Order] = ev
		default:
			out := make(map[int]SceneCompleted, len(h.seen))
			for k, v := range h.seen {
				out[k] = v
			}
			return out
		}
	}
}
