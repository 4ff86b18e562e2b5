package plan

import (
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/internal/errs"
	"github.com/dolthub/nose-advisor/stmt"
)

// PlanMutation builds the plan for an Update, Insert or Delete statement:
// one branch per index the statement touches (stmt.ModifiesIndex), each
// carrying whatever support-query sub-plan is needed to locate the rows
// being mutated before the write lands (spec §4.5 "For an Update/Insert/
// Delete statement, the planner locates every index the statement
// modifies... and, for each, generates a support-query plan").
//
// Each write step's Cost is cost.Model.UpdateCost for its index; the ILP
// objective (spec §4.6, u_i) sums these step costs per selected index. The
// support-query plans are carried for Explain output and TotalCost; their
// costs are not part of the ILP objective.
func (pl *Planner) PlanMutation(s *stmt.Statement, touched []*index.Index, candidates []*index.Index) (*Plan, error) {
	if len(touched) == 0 {
		return &Plan{Statement: s}, nil
	}

	p := &Plan{Statement: s}
	for _, idx := range touched {
		needsSupport, step := mutationStep(s, idx)
		if needsSupport {
			support, err := pl.supportPlan(s, idx, candidates)
			if err != nil {
				return nil, errs.ErrNoPlanFor.Wrap(err, s.ID())
			}
			p.Supports = append(p.Supports, support)
		}
		step.Cost = pl.Model.UpdateCost(idx, s)
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

// mutationStep decides which step an index needs for s and whether it must
// be preceded by a support query: a write that only touches order/extra
// fields overwrites the index entry in place (no read needed); a write
// that moves the row to a different partition, or a delete, must first
// read the row to know the entry it is replacing or removing.
func mutationStep(s *stmt.Statement, idx *index.Index) (needsSupport bool, step Step) {
	switch s.Kind() {
	case stmt.DeleteKind:
		return true, Step{Kind: StepDelete, Index: idx}
	case stmt.InsertKind:
		return false, Step{Kind: StepInsert, Index: idx}
	case stmt.UpdateKind:
		if movesPartition(s, idx) {
			return true, Step{Kind: StepDelete, Index: idx}
		}
		return false, Step{Kind: StepInsert, Index: idx}
	default:
		return false, Step{Kind: StepInsert, Index: idx}
	}
}

func movesPartition(s *stmt.Statement, idx *index.Index) bool {
	for _, f := range s.SetFields() {
		if idx.HasField(f) {
			for _, hf := range idx.HashFields() {
				if hf == f {
					return true
				}
			}
		}
	}
	return false
}

// supportPlan builds a read plan over the same path as s, selecting
// exactly the fields idx needs, and returns its cheapest terminal plan.
// Update statements that move a row's partition reuse this to read the
// row's old index entry before issuing the delete; Delete statements reuse
// it to locate the entry being removed.
func (pl *Planner) supportPlan(s *stmt.Statement, idx *index.Index, candidates []*index.Index) (*Plan, error) {
	b := stmt.NewQuery(pl.Schema, s.ID()+"/support/"+idx.Path().String(), s.Path())
	for _, c := range s.EqFields() {
		b.Eq(c.Field, c.Value)
	}
	b.Select(idx.AllFields()...)
	support, err := b.Build()
	if err != nil {
		return nil, err
	}

	plans, err := pl.PlanQuery(support, candidates)
	if err != nil {
		return nil, err
	}

	var best *Plan
	for _, p := range plans {
		if best == nil || p.TotalCost() < best.TotalCost() {
			best = p
		}
	}
	return best, nil
}
