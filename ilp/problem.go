// Package ilp builds and solves the 0/1 integer linear program of spec
// §4.6 (component C6) over a candidate index set and its cost matrix.
package ilp

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/internal/errs"
	"github.com/dolthub/nose-advisor/plan"
	"github.com/dolthub/nose-advisor/solve"
	"github.com/dolthub/nose-advisor/stmt"
)

// Objective selects which of spec §4.6's three expressions pins Z.
type Objective int

const (
	ObjectiveCost Objective = iota
	ObjectiveSpace
	ObjectiveIndexes
)

// Problem is one fully-specified instance of the ILP of spec §4.6: a
// candidate index set, the per-statement plan/cost matrix it was built
// from, and the active objective.
type Problem struct {
	Candidates []*index.Index
	Workload   *stmt.Workload
	Matrix     *plan.Matrix

	Objective   Objective
	Mix         string // "" uses Workload.DefaultMix
	SpaceBudget *int64 // nil disables the Space constraint
}

// Solution is the ILP's result: which indexes were selected, and, for each
// query, which of its valid terminal indexes its winning plan uses.
type Solution struct {
	Selected    map[uint64]*index.Index
	QueryChoice map[string]uint64 // statement id -> winning terminal index key
	Cost        float64           // Z* under the primary objective
	Size        int64
	IndexCount  int
}

type built struct {
	model solve.Model
	xVars map[uint64]solve.Var
	yVars map[string]map[uint64]solve.Var
	zVar  solve.Var
}

// Solve runs the two-stage refinement of spec §4.6: solve the primary
// objective, then (unless the primary objective was already Indexes) pin
// Z to its optimum and re-solve minimizing the index count. If the second
// stage is infeasible — which should not happen since the first-stage
// solution itself satisfies the pinned constraint, but a solver's own
// numerical slack can still reject it — the first-stage solution is kept
// and a warning logged (spec §7 Open Question: ties resolved without
// violating full workload coverage). The solve itself does not observe ctx
// once started (spec §5 "the solve is cancellation-ignorant"); ctx is only
// checked before each stage begins.
func (p *Problem) Solve(ctx context.Context, solver solve.Solver) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b1 := p.build(solver, nil, false)
	status, err := b1.model.Optimize()
	if err != nil {
		return nil, err
	}
	if status == solve.Infeasible {
		iis := b1.model.ComputeIIS()
		logrus.WithField("iis", iis).Error("ilp: primary objective infeasible")
		return nil, errs.ErrSolverInfeasible.New("no assignment satisfies IndexPresence/CompletePlan/Space")
	}

	zStar := b1.model.Value(b1.zVar)
	sol1 := p.extract(b1, zStar)

	if p.Objective == ObjectiveIndexes {
		return sol1, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b2 := p.build(solver, &zStar, true)
	status2, err := b2.model.Optimize()
	if err != nil {
		return nil, err
	}
	if status2 == solve.Infeasible {
		logrus.Warn("ilp: second-stage index-count refinement infeasible, keeping first-stage solution")
		return sol1, nil
	}

	return p.extract(b2, zStar), nil
}

// build constructs one solve.Model. zVar is always pinned, via an equality
// constraint, to the primary objective's expression (p.Objective); pinZ
// additionally fixes that value to a known optimum (the second stage of
// the two-stage refinement). minimizeIndexes switches which expression
// SetObjective actually minimizes: the primary Z itself, or a separate
// "number of selected indexes" sum used only in the second stage.
func (p *Problem) build(solver solve.Solver, pinZ *float64, minimizeIndexes bool) *built {
	model := solver.NewModel()

	xVars := make(map[uint64]solve.Var, len(p.Candidates))
	for _, idx := range p.Candidates {
		xVars[idx.Key()] = model.AddBinaryVar(indexVarName(idx))
	}

	yVars := make(map[string]map[uint64]solve.Var)
	for _, s := range p.Workload.Statements {
		if s.Kind() != stmt.QueryKind {
			continue
		}
		plans, ok := p.Matrix.QueryPlans[s.ID()]
		if !ok || len(plans) == 0 {
			continue
		}
		qVars := make(map[uint64]solve.Var, len(plans))
		for key := range plans {
			qVars[key] = model.AddBinaryVar(s.ID() + "/y")
		}
		yVars[s.ID()] = qVars

		// IndexPresence: y_{q,i} <= x_i
		for key, yv := range qVars {
			xv, ok := xVars[key]
			if !ok {
				continue
			}
			model.AddConstraint([]solve.Term{{Coef: 1, Var: yv}, {Coef: -1, Var: xv}}, solve.LE, 0)
		}

		// CompletePlan: sum_i y_{q,i} >= 1
		var terms []solve.Term
		for _, yv := range qVars {
			terms = append(terms, solve.Term{Coef: 1, Var: yv})
		}
		model.AddConstraint(terms, solve.GE, 1)
	}

	if p.SpaceBudget != nil {
		var terms []solve.Term
		for _, idx := range p.Candidates {
			terms = append(terms, solve.Term{Coef: float64(idx.Size()), Var: xVars[idx.Key()]})
		}
		model.AddConstraint(terms, solve.LE, float64(*p.SpaceBudget))
	}

	zVar := model.AddContinuousVar(0, math.MaxFloat64, "Z")
	model.AddConstraint(p.objectiveExpr(p.Objective, xVars, yVars, zVar), solve.EQ, 0)
	if pinZ != nil {
		model.AddConstraint([]solve.Term{{Coef: 1, Var: zVar}}, solve.EQ, *pinZ)
	}

	if minimizeIndexes {
		var indexSum []solve.Term
		for _, xv := range xVars {
			indexSum = append(indexSum, solve.Term{Coef: 1, Var: xv})
		}
		model.SetObjective(indexSum, solve.Minimize)
	} else {
		model.SetObjective([]solve.Term{{Coef: 1, Var: zVar}}, solve.Minimize)
	}

	return &built{model: model, xVars: xVars, yVars: yVars, zVar: zVar}
}

// objectiveExpr returns "Z - <expression> = 0" as the AddConstraint terms:
// the Z term comes first with coefficient +1 and every term of the
// expression follows with its coefficient negated, so the caller adds the
// whole thing as a single equality with right-hand side 0.
func (p *Problem) objectiveExpr(objective Objective, xVars map[uint64]solve.Var, yVars map[string]map[uint64]solve.Var, zVar solve.Var) []solve.Term {
	terms := []solve.Term{{Coef: 1, Var: zVar}}

	switch objective {
	case ObjectiveSpace:
		for _, idx := range p.Candidates {
			terms = append(terms, solve.Term{Coef: -float64(idx.Size()), Var: xVars[idx.Key()]})
		}
	case ObjectiveIndexes:
		for _, xv := range xVars {
			terms = append(terms, solve.Term{Coef: -1, Var: xv})
		}
	default: // ObjectiveCost
		for _, s := range p.Workload.Statements {
			if s.Kind() != stmt.QueryKind {
				continue
			}
			qVars, ok := yVars[s.ID()]
			if !ok {
				continue
			}
			freq := p.Workload.Frequency(p.Mix, s.ID())
			plans := p.Matrix.QueryPlans[s.ID()]
			for key, yv := range qVars {
				cost := plans[key].TotalCost()
				terms = append(terms, solve.Term{Coef: -freq * cost, Var: yv})
			}
		}
		for _, s := range p.Workload.Statements {
			if s.Kind() == stmt.QueryKind {
				continue
			}
			mp, ok := p.Matrix.MutationPlans[s.ID()]
			if !ok {
				continue
			}
			// Weighted by the statement's own frequency, matching the query
			// term above and spec §8 scenario 4's freq(update)·cost framing.
			freq := p.Workload.Frequency(p.Mix, s.ID())
			for _, step := range mp.Steps {
				if step.Index == nil {
					continue
				}
				xv, ok := xVars[step.Index.Key()]
				if !ok {
					continue
				}
				terms = append(terms, solve.Term{Coef: -freq * step.Cost, Var: xv})
			}
		}
	}
	return terms
}

func (p *Problem) extract(b *built, zStar float64) *Solution {
	sol := &Solution{
		Selected:    make(map[uint64]*index.Index),
		QueryChoice: make(map[string]uint64),
		Cost:        zStar,
	}
	for _, idx := range p.Candidates {
		if b.model.Value(b.xVars[idx.Key()]) > 0.5 {
			sol.Selected[idx.Key()] = idx
			sol.Size += idx.Size()
		}
	}
	sol.IndexCount = len(sol.Selected)

	for qid, qVars := range b.yVars {
		for key, yv := range qVars {
			if b.model.Value(yv) > 0.5 {
				sol.QueryChoice[qid] = key
				break
			}
		}
	}
	return sol
}

func indexVarName(idx *index.Index) string {
	return idx.Path().String()
}
