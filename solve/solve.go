// Package solve defines the 0/1-ILP solver plugin boundary of spec §6 and
// ships a stdlib-only reference implementation (BranchAndBound) adequate
// for the candidate-set sizes component C4 produces. No third-party MIP
// solver exists anywhere in the retrieved corpus (see DESIGN.md); a real
// deployment registers an external solver under a different Registry name.
package solve

import "github.com/dolthub/nose-advisor/internal/errs"

// VarKind tags a decision variable as binary or continuous.
type VarKind int

const (
	Binary VarKind = iota
	Continuous
)

// Var is an opaque handle returned by AddBinaryVar/AddContinuousVar and
// passed back into constraints, objectives and Value.
type Var int

// Rel is a constraint's relational operator.
type Rel int

const (
	LE Rel = iota
	GE
	EQ
)

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Status is the outcome of Optimize.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
)

// Term is one coefficient*variable addend of a linear expression.
type Term struct {
	Coef float64
	Var  Var
}

// Model is a solver instance mid-construction; Solver.NewModel returns one.
type Model interface {
	AddBinaryVar(name string) Var
	AddContinuousVar(lo, hi float64, name string) Var
	AddConstraint(expr []Term, rel Rel, rhs float64) int
	SetObjective(expr []Term, sense Sense)
	Optimize() (Status, error)
	Value(v Var) float64
	// ComputeIIS returns an Irreducible Infeasible Subset of constraints
	// after Optimize returns Infeasible, each constraint identified by the
	// index returned from AddConstraint.
	ComputeIIS() []int
	// Write serializes the model to path (e.g. LP format) for offline
	// inspection; solvers that cannot export return errs.ErrSolverUnavailable.
	Write(path string) error
}

// Solver constructs fresh Models. Implementations are not required to be
// safe for concurrent use across Models; spec §5 dedicates the solve stage
// exclusively to one goroutine.
type Solver interface {
	NewModel() Model
}

// Constructor builds a Solver from a Config.
type Config map[string]any
type Constructor func(Config) (Solver, error)

// Registry maps a solver plugin name to its Constructor, per spec §6
// "Solver plugin" and the explicit-registry Design Note (spec §9).
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns a Registry pre-seeded with the "branch_and_bound"
// reference solver.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	r.Register("branch_and_bound", func(Config) (Solver, error) { return NewBranchAndBound(), nil })
	return r
}

// Register adds a named constructor, replacing any earlier one under the
// same name.
func (r *Registry) Register(name string, ctor Constructor) { r.ctors[name] = ctor }

// Build constructs the named plugin, or fails fast with
// errs.ErrUnknownPlugin — spec §6 "unknown names fail fast", applied here to
// the solver plugin exactly as it is to the cost-model plugin.
func (r *Registry) Build(name string, cfg Config) (Solver, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, errs.ErrUnknownPlugin.New("solve", name)
	}
	return ctor(cfg)
}
