package solve

import "github.com/dolthub/nose-advisor/internal/errs"

// bbModel is one model instance: depth-first search over the binary
// variables with a running-sum lower-bound prune, each continuous variable
// solved directly from whichever constraint pins it once the binaries
// ahead of it are fixed. It assumes every objective coefficient is
// non-negative, which holds for all three objective expressions spec §4.6
// defines (Cost, Space, Indexes are all sums of non-negative terms).
type bbModel struct {
	vars        []varDef
	constraints []constraint
	objective   []Term
	sense       Sense

	values map[Var]float64
	iis    []int
}

type varDef struct {
	kind   VarKind
	lo, hi float64
	name   string
}

type constraint struct {
	expr []Term
	rel  Rel
	rhs  float64
	name string
}

// NewBranchAndBound returns the stdlib-only reference Solver (see
// solve.Registry's "branch_and_bound" entry).
func NewBranchAndBound() Solver { return &BranchAndBound{} }

// BranchAndBound is the Solver that vends fresh bbModel instances.
type BranchAndBound struct{}

func (BranchAndBound) NewModel() Model { return &bbModel{} }

func (m *bbModel) AddBinaryVar(name string) Var {
	m.vars = append(m.vars, varDef{kind: Binary, lo: 0, hi: 1, name: name})
	return Var(len(m.vars) - 1)
}

func (m *bbModel) AddContinuousVar(lo, hi float64, name string) Var {
	m.vars = append(m.vars, varDef{kind: Continuous, lo: lo, hi: hi, name: name})
	return Var(len(m.vars) - 1)
}

func (m *bbModel) AddConstraint(expr []Term, rel Rel, rhs float64) int {
	m.constraints = append(m.constraints, constraint{expr: append([]Term(nil), expr...), rel: rel, rhs: rhs})
	return len(m.constraints) - 1
}

func (m *bbModel) SetObjective(expr []Term, sense Sense) {
	m.objective = append([]Term(nil), expr...)
	m.sense = sense
}

func (m *bbModel) Value(v Var) float64 { return m.values[v] }

func (m *bbModel) Write(path string) error {
	return errs.ErrSolverUnavailable.New("branch_and_bound", "model export is not implemented")
}

// ComputeIIS returns the index of every constraint in the model, as a
// coarse stand-in for a real IIS computation: the
// branch-and-bound search only determines infeasibility globally, it does
// not isolate a minimal conflicting subset.
func (m *bbModel) ComputeIIS() []int { return m.iis }

func (m *bbModel) binaryIndices() []int {
	var idx []int
	for i, v := range m.vars {
		if v.kind == Binary {
			idx = append(idx, i)
		}
	}
	return idx
}

func (m *bbModel) Optimize() (Status, error) {
	binaries := m.binaryIndices()
	assign := make(map[Var]float64, len(m.vars))

	var best map[Var]float64
	bestObj := 0.0
	haveBest := false

	objCoef := make(map[Var]float64, len(m.objective))
	for _, t := range m.objective {
		objCoef[t.Var] += t.Coef
	}

	var partialBound func(fixed int) float64
	partialBound = func(fixed int) float64 {
		var sum float64
		for i := 0; i < fixed; i++ {
			v := Var(binaries[i])
			sum += objCoef[v] * assign[v]
		}
		return sum
	}

	var rec func(pos int)
	rec = func(pos int) {
		if haveBest && m.sense == Minimize && partialBound(pos) >= bestObj {
			return
		}
		if pos == len(binaries) {
			full, ok := m.deriveContinuous(assign)
			if !ok {
				return
			}
			if !m.satisfiesAll(full) {
				return
			}
			obj := m.evaluate(m.objective, full)
			if !haveBest || better(m.sense, obj, bestObj) {
				haveBest = true
				bestObj = obj
				best = make(map[Var]float64, len(full))
				for k, v := range full {
					best[k] = v
				}
			}
			return
		}
		v := Var(binaries[pos])
		for _, val := range [2]float64{0, 1} {
			assign[v] = val
			rec(pos + 1)
		}
		delete(assign, v)
	}
	rec(0)

	if !haveBest {
		m.iis = m.allConstraintIndices()
		return Infeasible, nil
	}
	m.values = best
	return Optimal, nil
}

func better(sense Sense, candidate, incumbent float64) bool {
	if sense == Minimize {
		return candidate < incumbent
	}
	return candidate > incumbent
}

func (m *bbModel) allConstraintIndices() []int {
	idx := make([]int, len(m.constraints))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// deriveContinuous fills in every continuous variable's value from whatever
// equality constraint pins it, given assign's binary values. Returns
// ok=false if some continuous variable is never pinned by an equality
// constraint the already-known variables fully determine.
func (m *bbModel) deriveContinuous(assign map[Var]float64) (map[Var]float64, bool) {
	full := make(map[Var]float64, len(m.vars))
	for v, val := range assign {
		full[v] = val
	}
	for i, vd := range m.vars {
		if vd.kind != Continuous {
			continue
		}
		v := Var(i)
		solved := false
		for _, c := range m.constraints {
			if c.rel != EQ {
				continue
			}
			coef, only := soleUnknownCoef(c.expr, v, full)
			if !only || coef == 0 {
				continue
			}
			var known float64
			for _, t := range c.expr {
				if t.Var == v {
					continue
				}
				known += t.Coef * full[t.Var]
			}
			full[v] = (c.rhs - known) / coef
			solved = true
			break
		}
		if !solved {
			return nil, false
		}
	}
	return full, true
}

// soleUnknownCoef reports v's coefficient in expr, and whether v is the
// only variable in expr absent from known.
func soleUnknownCoef(expr []Term, v Var, known map[Var]float64) (float64, bool) {
	var coef float64
	found := false
	for _, t := range expr {
		if t.Var == v {
			coef += t.Coef
			found = true
			continue
		}
		if _, ok := known[t.Var]; !ok {
			return 0, false
		}
	}
	return coef, found
}

func (m *bbModel) satisfiesAll(full map[Var]float64) bool {
	const eps = 1e-6
	for _, c := range m.constraints {
		lhs := m.evaluate(c.expr, full)
		switch c.rel {
		case LE:
			if lhs > c.rhs+eps {
				return false
			}
		case GE:
			if lhs < c.rhs-eps {
				return false
			}
		case EQ:
			if lhs < c.rhs-eps || lhs > c.rhs+eps {
				return false
			}
		}
	}
	return true
}

func (m *bbModel) evaluate(expr []Term, full map[Var]float64) float64 {
	var sum float64
	for _, t := range expr {
		sum += t.Coef * full[t.Var]
	}
	return sum
}
