// Package exec carries the bounded-parallelism parameter spec §9's redesign
// notes call for: an explicit Executor threaded from search.Advisor down
// into the enumerator and planner, replacing a process-wide concurrency flag
// (spec §5's "parallel per-statement enumeration" and "perfectly parallel
// across (query, index) pairs" stay caller-controlled instead of hardcoded).
package exec

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Executor bounds the fan-out width of one errgroup-based parallel stage.
// A nil *Executor, or one with a non-positive Limit, leaves the group
// unbounded (errgroup's own default).
type Executor struct {
	Limit int
}

// Group returns a new errgroup.Group bound to ctx, with Limit applied if
// this Executor sets one.
func (e *Executor) Group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if e != nil && e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	return g, gctx
}
