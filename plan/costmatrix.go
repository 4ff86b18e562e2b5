package plan

import (
	"context"

	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/stmt"
)

// Matrix is the per-statement planning result the ILP problem builder
// consumes (spec §4.6): for each query, every plan found keyed by its
// terminal index's Key(); for each write, the single mutation Plan.
type Matrix struct {
	QueryPlans    map[string]map[uint64]*Plan
	MutationPlans map[string]*Plan
}

// BuildMatrix computes every statement's plans against candidates.
// Per-query planning is embarrassingly parallel (spec §5 "filling in the
// cost matrix... is perfectly parallel across (query, index) pairs"); the
// result assembly is a single serial pass over the completed work.
func BuildMatrix(ctx context.Context, pl *Planner, w *stmt.Workload, candidates []*index.Index) (*Matrix, error) {
	type queryResult struct {
		id    string
		plans map[uint64]*Plan
	}
	type mutationResult struct {
		id   string
		plan *Plan
	}

	queryResults := make([]*queryResult, 0, len(w.Statements))
	mutationResults := make([]*mutationResult, 0, len(w.Statements))

	g, gctx := pl.Executor.Group(ctx)
	for _, s := range w.Statements {
		s := s
		if s.Kind() == stmt.QueryKind {
			qr := &queryResult{id: s.ID()}
			queryResults = append(queryResults, qr)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				plans, err := pl.PlanQuery(s, candidates)
				if err != nil {
					return err
				}
				qr.plans = plans
				return nil
			})
			continue
		}

		mr := &mutationResult{id: s.ID()}
		mutationResults = append(mutationResults, mr)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var touched []*index.Index
			for _, idx := range candidates {
				if s.ModifiesIndex(pl.Schema, idx) {
					touched = append(touched, idx)
				}
			}
			p, err := pl.PlanMutation(s, touched, candidates)
			if err != nil {
				return err
			}
			mr.plan = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Matrix{
		QueryPlans:    make(map[string]map[uint64]*Plan, len(queryResults)),
		MutationPlans: make(map[string]*Plan, len(mutationResults)),
	}
	for _, qr := range queryResults {
		m.QueryPlans[qr.id] = qr.plans
	}
	for _, mr := range mutationResults {
		m.MutationPlans[mr.id] = mr.plan
	}
	return m, nil
}
