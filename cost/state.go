package cost

import "github.com/dolthub/nose-advisor/schema"

// State threads the information a cost function needs about everything
// that happened earlier in the plan: which equality and range conditions
// have already been resolved by an earlier step, and the running row
// cardinality, per spec §4.5.
type State struct {
	EqResolved    map[schema.FieldID]struct{}
	RangeResolved bool
	Cardinality   int64
}

// NewState returns an empty State with a cardinality of 1 (a single
// starting partition before any lookup has run).
func NewState() State {
	return State{EqResolved: make(map[schema.FieldID]struct{}), Cardinality: 1}
}

// WithEq returns a copy of st with f marked resolved.
func (st State) WithEq(f schema.FieldID) State {
	next := st.clone()
	next.EqResolved[f] = struct{}{}
	return next
}

// WithRange returns a copy of st with the range condition marked resolved.
func (st State) WithRange() State {
	next := st.clone()
	next.RangeResolved = true
	return next
}

// WithCardinality returns a copy of st with a new running cardinality.
func (st State) WithCardinality(c int64) State {
	next := st.clone()
	next.Cardinality = c
	return next
}

func (st State) clone() State {
	eq := make(map[schema.FieldID]struct{}, len(st.EqResolved))
	for f := range st.EqResolved {
		eq[f] = struct{}{}
	}
	return State{EqResolved: eq, RangeResolved: st.RangeResolved, Cardinality: st.Cardinality}
}
