// Package search implements the Search driver of spec §4.7 (component C7):
// the glue that runs enumerate -> cost -> ilp in sequence and assembles a
// Result.
package search

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/nose-advisor/cost"
	"github.com/dolthub/nose-advisor/enumerate"
	"github.com/dolthub/nose-advisor/exec"
	"github.com/dolthub/nose-advisor/ilp"
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/internal/errs"
	"github.com/dolthub/nose-advisor/plan"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/solve"
	"github.com/dolthub/nose-advisor/stmt"
)

// Objective re-exports ilp.Objective so callers need only import search.
type Objective = ilp.Objective

const (
	ObjectiveCost    = ilp.ObjectiveCost
	ObjectiveSpace   = ilp.ObjectiveSpace
	ObjectiveIndexes = ilp.ObjectiveIndexes
)

// Options configures one Advisor.Run invocation.
type Options struct {
	Objective Objective
	Mix       string // "" uses the workload's DefaultMix

	SpaceBudget *int64

	CostModel  string // "" defaults to "uniform"
	CostConfig cost.Config

	Solver       string // "" defaults to "branch_and_bound"
	SolverConfig solve.Config

	EnumerateCache enumerate.Cache // optional persistent memo, e.g. a *enumerate.BoltCache

	// Concurrency bounds the fan-out width of the enumerate and plan stages
	// (spec §9 redesign notes: an explicit Executor parameter replacing a
	// process-wide concurrency flag). Zero means unbounded.
	Concurrency int
}

// Advisor is the top-level entry point, holding the plugin registries new
// cost models and solvers register into.
type Advisor struct {
	CostModels *cost.Registry
	Solvers    *solve.Registry
}

// NewAdvisor returns an Advisor pre-seeded with the reference "uniform"
// cost model and "branch_and_bound" solver.
func NewAdvisor() *Advisor {
	return &Advisor{CostModels: cost.NewRegistry(), Solvers: solve.NewRegistry()}
}

// Run executes the full sequence of spec §4.7: build I* (C4), build the
// per-query cost matrix (C5), construct and solve the Problem (C6), and
// assemble a Result. Each stage is wrapped in its own opentracing span.
func (a *Advisor) Run(ctx context.Context, sch *schema.Schema, w *stmt.Workload, opts Options) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "search.Advisor.Run")
	defer span.Finish()

	start := time.Now()
	outcome := "ok"
	defer func() {
		runDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if err := sch.Validate(); err != nil {
		outcome = "error"
		return nil, err
	}

	candidates, err := a.enumerate(ctx, sch, w, opts)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	enumerationSize.Observe(float64(len(candidates)))

	matrix, err := a.buildMatrix(ctx, sch, w, candidates, opts)
	if err != nil {
		outcome = "error"
		return nil, err
	}

	solution, err := a.solve(ctx, w, candidates, matrix, opts)
	if err != nil {
		outcome = "error"
		return nil, err
	}

	return assemble(solution, matrix, len(candidates))
}

func (a *Advisor) enumerate(ctx context.Context, sch *schema.Schema, w *stmt.Workload, opts Options) ([]*index.Index, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "search.enumerate")
	defer span.Finish()

	e := enumerate.New(sch)
	e.Cache = opts.EnumerateCache
	e.Executor = &exec.Executor{Limit: opts.Concurrency}
	return e.Candidates(ctx, w)
}

func (a *Advisor) buildMatrix(ctx context.Context, sch *schema.Schema, w *stmt.Workload, candidates []*index.Index, opts Options) (*plan.Matrix, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "search.plan")
	defer span.Finish()

	modelName := opts.CostModel
	if modelName == "" {
		modelName = "uniform"
	}
	cfg := cost.Config{}
	for k, v := range opts.CostConfig {
		cfg[k] = v
	}
	cfg["schema"] = sch
	model, err := a.CostModels.Build(modelName, cfg)
	if err != nil {
		return nil, err
	}

	pl := plan.NewPlanner(sch, model)
	pl.Executor = &exec.Executor{Limit: opts.Concurrency}
	return plan.BuildMatrix(ctx, pl, w, candidates)
}

func (a *Advisor) solve(ctx context.Context, w *stmt.Workload, candidates []*index.Index, matrix *plan.Matrix, opts Options) (*ilp.Solution, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "search.solve")
	defer span.Finish()

	solverName := opts.Solver
	if solverName == "" {
		solverName = "branch_and_bound"
	}
	solver, err := a.Solvers.Build(solverName, opts.SolverConfig)
	if err != nil {
		return nil, err
	}

	problem := &ilp.Problem{
		Candidates:  candidates,
		Workload:    w,
		Matrix:      matrix,
		Objective:   opts.Objective,
		Mix:         opts.Mix,
		SpaceBudget: opts.SpaceBudget,
	}
	solution, err := problem.Solve(ctx, solver)
	if err != nil {
		status := "error"
		if errs.ErrSolverInfeasible.Is(err) {
			status = "infeasible"
		}
		solveStatus.WithLabelValues(status).Inc()
		logrus.WithError(err).Error("search: solve failed")
		return nil, err
	}
	solveStatus.WithLabelValues("optimal").Inc()
	return solution, nil
}
