package cost

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// UniformModel is the reference cost.Model: constant per-operation costs,
// configurable via Config, good enough to make the module runnable without
// an external cost-model plugin registered.
type UniformModel struct {
	sch *schema.Schema

	seekCost       float64
	perRowCost     float64
	sortPerRowCost float64
	limitCost      float64
	updatePerField float64
}

func floatOrDefault(v any, def float64) float64 {
	if v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// NewUniformModel builds a UniformModel. cfg["schema"] must hold the
// *schema.Schema the model will be asked to cost against; the remaining
// keys ("seek_cost", "per_row_cost", "sort_per_row_cost", "limit_cost",
// "update_per_field_cost") are optional and coerced with spf13/cast.
func NewUniformModel(cfg Config) (Model, error) {
	sch, ok := cfg["schema"].(*schema.Schema)
	if !ok || sch == nil {
		return nil, fmt.Errorf("cost: uniform model requires cfg[\"schema\"] to be a *schema.Schema")
	}
	return &UniformModel{
		sch:            sch,
		seekCost:       floatOrDefault(cfg["seek_cost"], 1.0),
		perRowCost:     floatOrDefault(cfg["per_row_cost"], 0.01),
		sortPerRowCost: floatOrDefault(cfg["sort_per_row_cost"], 0.02),
		limitCost:      floatOrDefault(cfg["limit_cost"], 0.0),
		updatePerField: floatOrDefault(cfg["update_per_field_cost"], 0.5),
	}, nil
}

func (m *UniformModel) IndexLookupCost(step IndexLookupStep, st State) float64 {
	rows := step.Index.EntriesPerPartition(m.sch)
	return m.seekCost + float64(rows)*m.perRowCost
}

func (m *UniformModel) FilterCost(step FilterStep, st State) float64 {
	return float64(st.Cardinality) * m.perRowCost * float64(len(step.Fields)+1)
}

func (m *UniformModel) SortCost(step SortStep, st State) float64 {
	n := float64(st.Cardinality)
	if n < 1 {
		n = 1
	}
	return n * m.sortPerRowCost * (math.Log2(n) + 1)
}

func (m *UniformModel) LimitCost(step LimitStep, st State) float64 {
	return m.limitCost
}

func (m *UniformModel) UpdateCost(idx *index.Index, s *stmt.Statement) float64 {
	return float64(len(idx.AllFields())) * m.updatePerField
}
