package solve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/solve"
)

func TestBranchAndBoundSolvesSmallKnapsack(t *testing.T) {
	req := require.New(t)
	s := solve.NewBranchAndBound()
	m := s.NewModel()

	// Three items, values 5/4/3, weights 3/2/2, capacity 4: optimal is
	// items {1,2} (weight 4, value 7), beating item {0} alone (weight 3,
	// value 5); {0,1} and {0,2} both exceed the capacity.
	x0 := m.AddBinaryVar("x0")
	x1 := m.AddBinaryVar("x1")
	x2 := m.AddBinaryVar("x2")

	m.AddConstraint([]solve.Term{{Coef: 3, Var: x0}, {Coef: 2, Var: x1}, {Coef: 2, Var: x2}}, solve.LE, 4)
	// Maximize value by minimizing its negation.
	m.SetObjective([]solve.Term{{Coef: -5, Var: x0}, {Coef: -4, Var: x1}, {Coef: -3, Var: x2}}, solve.Minimize)

	status, err := m.Optimize()
	req.NoError(err)
	require.Equal(t, solve.Optimal, status)

	require.InDelta(t, 0.0, m.Value(x0), 1e-9)
	require.InDelta(t, 1.0, m.Value(x1), 1e-9)
	require.InDelta(t, 1.0, m.Value(x2), 1e-9)
}

func TestBranchAndBoundReportsInfeasible(t *testing.T) {
	req := require.New(t)
	s := solve.NewBranchAndBound()
	m := s.NewModel()

	x0 := m.AddBinaryVar("x0")
	m.AddConstraint([]solve.Term{{Coef: 1, Var: x0}}, solve.GE, 2)
	m.SetObjective([]solve.Term{{Coef: 1, Var: x0}}, solve.Minimize)

	status, err := m.Optimize()
	req.NoError(err)
	require.Equal(t, solve.Infeasible, status)
	require.NotEmpty(t, m.ComputeIIS())
}

func TestBranchAndBoundDerivesContinuousFromEquality(t *testing.T) {
	req := require.New(t)
	s := solve.NewBranchAndBound()
	m := s.NewModel()

	x := m.AddBinaryVar("x")
	z := m.AddContinuousVar(0, 100, "z")

	// z == 3*x + 1, x in {0,1}; minimizing z should pick x=0, z=1.
	m.AddConstraint([]solve.Term{{Coef: 3, Var: x}, {Coef: -1, Var: z}}, solve.EQ, -1)
	m.SetObjective([]solve.Term{{Coef: 1, Var: z}}, solve.Minimize)

	status, err := m.Optimize()
	req.NoError(err)
	require.Equal(t, solve.Optimal, status)
	require.InDelta(t, 0.0, m.Value(x), 1e-9)
	require.InDelta(t, 1.0, m.Value(z), 1e-9)
}

func TestRegistryBuildsBranchAndBound(t *testing.T) {
	r := solve.NewRegistry()
	solver, err := r.Build("branch_and_bound", solve.Config{})
	require.NoError(t, err)
	require.NotNil(t, solver.NewModel())
}

func TestRegistryUnknownSolverFailsFast(t *testing.T) {
	r := solve.NewRegistry()
	_, err := r.Build("gurobi", solve.Config{})
	require.Error(t, err)
}
