package plan

import (
	"math"

	"github.com/dolthub/nose-advisor/cost"
	"github.com/dolthub/nose-advisor/exec"
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/internal/errs"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// Planner enumerates and costs every plan valid over a candidate set for a
// given statement (spec §4.5, component C5's planning half).
type Planner struct {
	Schema   *schema.Schema
	Model    cost.Model
	Executor *exec.Executor
}

// NewPlanner returns a Planner using model against sch.
func NewPlanner(sch *schema.Schema, model cost.Model) *Planner {
	return &Planner{Schema: sch, Model: model}
}

// edge is one candidate index usable as a lookup step covering statement
// path positions [start, end).
type edge struct {
	idx        *index.Index
	start, end int
}

// hashSatisfied reports whether every hash field of idx is either the
// reaching key of the entity idx's segment starts at (available "for
// free" via the identity value or the join that landed on this entity) or
// one of the statement's equality-condition fields.
func hashSatisfied(idx *index.Index, reachingKey schema.FieldID, eq map[schema.FieldID]struct{}) bool {
	for _, hf := range idx.HashFields() {
		if hf == reachingKey {
			continue
		}
		if _, ok := eq[hf]; !ok {
			return false
		}
	}
	return true
}

// PlanQuery enumerates every valid plan for q over candidates and returns
// the best plan found for each distinct terminal index, keyed by
// index.Key(). Returns errs.ErrNoPlanFor if no valid plan exists at all
// (spec §4.5 "a query for which no valid plan exists ... is fatal").
func (pl *Planner) PlanQuery(q *stmt.Statement, candidates []*index.Index) (map[uint64]*Plan, error) {
	path := q.Path()
	n := path.Len()
	reaching := path.ReachingKeys()

	eq := make(map[schema.FieldID]struct{})
	for _, c := range q.EqFields() {
		eq[c.Field] = struct{}{}
	}

	byEnd := make(map[int][]edge)
	for _, idx := range candidates {
		ilen := idx.Path().Len()
		for start := 0; start+ilen <= n; start++ {
			if !idx.Path().Equal(path.Sub(start, start+ilen)) {
				continue
			}
			if !hashSatisfied(idx, reaching[start], eq) {
				continue
			}
			end := start + ilen
			byEnd[end] = append(byEnd[end], edge{idx: idx, start: start, end: end})
		}
	}

	if len(byEnd[n]) == 0 {
		return nil, errs.ErrNoPlanFor.New(q.ID())
	}

	const inf = math.MaxFloat64
	prefixCost := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		prefixCost[i] = inf
	}
	states := make([]cost.State, n+1)
	states[0] = cost.NewState()
	chosen := make([]*edge, n+1)

	for k := 1; k <= n; k++ {
		for _, e := range byEnd[k] {
			e := e
			if prefixCost[e.start] == inf {
				continue
			}
			st := states[e.start]
			lookupCost := pl.Model.IndexLookupCost(cost.IndexLookupStep{Index: e.idx, StartPos: e.start, EndPos: e.end}, st)
			total := prefixCost[e.start] + lookupCost
			if total < prefixCost[k] {
				prefixCost[k] = total
				chosen[k] = &e
				states[k] = resolvedState(pl.Schema, st, e.idx)
			}
		}
	}

	out := make(map[uint64]*Plan)
	for _, e := range byEnd[n] {
		e := e
		if prefixCost[e.start] == inf {
			continue
		}
		if !coversProjection(q, e.idx) {
			continue
		}

		preState := states[e.start]
		lookupCost := pl.Model.IndexLookupCost(cost.IndexLookupStep{Index: e.idx, StartPos: e.start, EndPos: e.end}, preState)
		postState := resolvedState(pl.Schema, preState, e.idx)

		tail, tailCost, ok := buildTail(pl.Model, q, e.idx, postState)
		if !ok {
			continue
		}

		steps := reconstructPrefix(chosen, prefixCost, e.start)
		steps = append(steps, Step{
			Kind: StepIndexLookup, Index: e.idx, StartPos: e.start, EndPos: e.end, Cost: lookupCost,
		})
		steps = append(steps, tail...)

		total := prefixCost[e.start] + lookupCost + tailCost
		candidate := &Plan{Statement: q, Steps: steps, Terminal: e.idx}

		if existing, dup := out[e.idx.Key()]; dup {
			if !less(total, candidate, existing) {
				continue
			}
		}
		out[e.idx.Key()] = candidate
	}

	if len(out) == 0 {
		return nil, errs.ErrNoPlanFor.New(q.ID())
	}
	return out, nil
}

// less implements spec §4.5's tie-break: lower cost wins; ties broken by
// plan length, then lexicographically by terminal index key.
func less(totalA float64, a, b *Plan) bool {
	totalB := b.TotalCost()
	const eps = 1e-9
	if totalA < totalB-eps {
		return true
	}
	if totalA > totalB+eps {
		return false
	}
	if a.Length() != b.Length() {
		return a.Length() < b.Length()
	}
	return a.Terminal.Key() < b.Terminal.Key()
}

func resolvedState(sch *schema.Schema, st cost.State, idx *index.Index) cost.State {
	next := st
	for _, hf := range idx.HashFields() {
		next = next.WithEq(hf)
	}
	next = next.WithCardinality(idx.EntriesPerPartition(sch))
	return next
}

func reconstructPrefix(chosen []*edge, prefixCost []float64, upTo int) []Step {
	var rev []Step
	pos := upTo
	for pos > 0 {
		e := chosen[pos]
		rev = append(rev, Step{
			Kind: StepIndexLookup, Index: e.idx, StartPos: e.start, EndPos: e.end,
			Cost: prefixCost[e.end] - prefixCost[e.start],
		})
		pos = e.start
	}
	steps := make([]Step, len(rev))
	for i, s := range rev {
		steps[len(rev)-1-i] = s
	}
	return steps
}

func coversProjection(q *stmt.Statement, idx *index.Index) bool {
	for _, f := range q.SelectFields() {
		if !idx.HasField(f) {
			return false
		}
	}
	return true
}

// buildTail appends the Filter/Sort/Limit steps needed after idx's lookup
// to fully answer q, per spec §4.5's plan-validity rules (iii) and (iv) and
// its edge cases (empty projection, no conditions, limit without order,
// range-only conditions). Returns ok=false if idx cannot serve some
// condition or projection field q needs.
func buildTail(model cost.Model, q *stmt.Statement, idx *index.Index, st cost.State) ([]Step, float64, bool) {
	var steps []Step
	var total float64

	var filterFields []schema.FieldID
	hasRangeFilter := false

	for _, c := range q.EqFields() {
		if _, resolved := st.EqResolved[c.Field]; resolved {
			continue
		}
		if !idx.HasField(c.Field) {
			return nil, 0, false
		}
		filterFields = append(filterFields, c.Field)
	}

	if rc, ok := q.RangeField(); ok {
		order := idx.OrderFields()
		sargable := len(order) > 0 && order[len(order)-1] == rc.Field
		if !sargable {
			if !idx.HasField(rc.Field) {
				return nil, 0, false
			}
			hasRangeFilter = true
		} else {
			st = st.WithRange()
		}
	}

	if len(filterFields) > 0 || hasRangeFilter {
		fc := model.FilterCost(cost.FilterStep{Fields: filterFields, HasRange: hasRangeFilter}, st)
		steps = append(steps, Step{Kind: StepFilter, Fields: filterFields, HasRange: hasRangeFilter, Cost: fc})
		total += fc
	}

	if desired := q.OrderFields(); len(desired) > 0 {
		if !orderSatisfied(desired, idx, q) {
			fields := make([]schema.FieldID, len(desired))
			for i, o := range desired {
				fields[i] = o.Field
			}
			sc := model.SortCost(cost.SortStep{Fields: fields}, st)
			steps = append(steps, Step{Kind: StepSort, Fields: fields, Cost: sc})
			total += sc
		}
	}

	if n, ok := q.Limit(); ok {
		lc := model.LimitCost(cost.LimitStep{N: n}, st)
		steps = append(steps, Step{Kind: StepLimit, Limit: n, Cost: lc})
		total += lc
	}

	return steps, total, true
}

// orderSatisfied reports whether idx's order fields already deliver q's
// requested ordering without an explicit Sort step: after dropping idx's
// order fields that are pinned to a constant by one of q's equality
// conditions (ordering among equal values is moot), the remainder must
// start with exactly q's desired order fields, in order.
func orderSatisfied(desired []stmt.OrderField, idx *index.Index, q *stmt.Statement) bool {
	eq := make(map[schema.FieldID]struct{})
	for _, c := range q.EqFields() {
		eq[c.Field] = struct{}{}
	}
	var effective []schema.FieldID
	for _, f := range idx.OrderFields() {
		if _, pinned := eq[f]; pinned {
			continue
		}
		effective = append(effective, f)
	}
	if len(effective) < len(desired) {
		return false
	}
	for i, o := range desired {
		if effective[i] != o.Field {
			return false
		}
	}
	return true
}
