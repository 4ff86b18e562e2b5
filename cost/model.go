// Package cost defines the pluggable cost-model contract of spec §4.5/§6
// (component C5's cost half): five scalar cost functions plus the State they
// thread through a plan, and a name->constructor registry so an unknown
// cost-model name fails fast rather than resolving dynamically (spec §9
// Design Notes).
package cost

import (
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// IndexLookupStep describes a single IndexLookup plan step for costing.
type IndexLookupStep struct {
	Index *index.Index
	// StartPos/EndPos are the statement-path positions this lookup
	// covers; EndPos-StartPos rows are joined per lookup.
	StartPos, EndPos int
}

// FilterStep describes a Filter plan step for costing.
type FilterStep struct {
	Fields   []schema.FieldID
	HasRange bool
}

// SortStep describes a Sort plan step for costing.
type SortStep struct {
	Fields []schema.FieldID
}

// LimitStep describes a Limit plan step for costing.
type LimitStep struct {
	N int
}

// Model is the pluggable cost-model contract of spec §6.
type Model interface {
	// IndexLookupCost costs one IndexLookup step given the accumulated
	// State up to (not including) that step.
	IndexLookupCost(step IndexLookupStep, st State) float64
	// FilterCost costs a client-side Filter step over st.Cardinality
	// rows.
	FilterCost(step FilterStep, st State) float64
	// SortCost costs an explicit Sort step over st.Cardinality rows.
	SortCost(step SortStep, st State) float64
	// LimitCost costs a Limit step.
	LimitCost(step LimitStep, st State) float64
	// UpdateCost costs propagating statement s's mutation to idx,
	// independent of any single query plan.
	UpdateCost(idx *index.Index, s *stmt.Statement) float64
}
