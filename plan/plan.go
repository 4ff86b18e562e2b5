// Package plan implements the Plan Enumerator of spec §4.5 (the planning
// half of component C5): for every statement, every valid plan over a
// candidate index set, each step costed by a cost.Model.
package plan

import (
	"github.com/dolthub/nose-advisor/cost"
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// StepKind tags which of the four step variants a Step is.
type StepKind int

const (
	// StepIndexLookup fetches rows from one materialized index.
	StepIndexLookup StepKind = iota
	// StepFilter applies a client-side predicate over already-fetched rows.
	StepFilter
	// StepSort explicitly orders already-fetched rows.
	StepSort
	// StepLimit truncates the row set.
	StepLimit
	// StepInsert writes a new entry into one materialized index.
	StepInsert
	// StepDelete removes an entry from one materialized index.
	StepDelete
)

// Step is one stage of a Plan. Only the fields relevant to Kind are
// populated.
type Step struct {
	Kind StepKind

	Index            *index.Index // StepIndexLookup
	StartPos, EndPos int          // StepIndexLookup: statement-path positions covered

	Fields   []schema.FieldID // StepFilter, StepSort
	HasRange bool             // StepFilter

	Limit int // StepLimit

	Cost float64
}

// Plan is an ordered sequence of steps that together answer one statement.
// Update/Insert/Delete plans additionally carry Supports: the support-query
// sub-plans that fetch rows needed to propagate the mutation to each
// affected index (spec §3 "Plan").
type Plan struct {
	Statement *stmt.Statement
	Steps     []Step
	Supports  []*Plan

	// Terminal is the index the plan's final IndexLookup step used; it is
	// the unique index a CompletePlan constraint's y_{q,i} variable
	// refers to (spec §4.6).
	Terminal *index.Index
}

// TotalCost sums every step's cost plus every support plan's TotalCost.
func (p *Plan) TotalCost() float64 {
	var total float64
	for _, s := range p.Steps {
		total += s.Cost
	}
	for _, sp := range p.Supports {
		total += sp.TotalCost()
	}
	return total
}

// Length is the number of top-level steps; used as the planner's first
// tie-break (spec §4.5 "Ties are broken by plan length").
func (p *Plan) Length() int { return len(p.Steps) }
