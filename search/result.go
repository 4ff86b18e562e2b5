package search

import (
	"encoding/json"

	satori "github.com/satori/go.uuid"
	"gopkg.in/yaml.v2"

	"github.com/dolthub/nose-advisor/ilp"
	"github.com/dolthub/nose-advisor/plan"
	"github.com/dolthub/nose-advisor/schema"
)

// IndexSummary is the serializable shape of one selected index (spec §6
// "Result file").
type IndexSummary struct {
	Key   uint64           `json:"key" yaml:"key"`
	Path  string           `json:"path" yaml:"path"`
	Hash  []schema.FieldID `json:"hash" yaml:"hash"`
	Order []schema.FieldID `json:"order" yaml:"order"`
	Extra []schema.FieldID `json:"extra" yaml:"extra"`
	Size  int64            `json:"size" yaml:"size"`
}

// StatementPlan is the serializable shape of one statement's winning plan.
type StatementPlan struct {
	StatementID      string  `json:"statement_id" yaml:"statement_id"`
	TerminalIndexKey uint64  `json:"terminal_index_key,omitempty" yaml:"terminal_index_key,omitempty"`
	Cost             float64 `json:"cost" yaml:"cost"`
	Explain          string  `json:"explain" yaml:"explain"`
}

// Result is the advisor's output (spec §4.7, §6 "Result file"): the chosen
// indexes, each statement's plan, and summary totals. ID is a supplemented
// feature giving the result a stable identifier an external persistence
// layer can key on.
type Result struct {
	ID              string          `json:"id" yaml:"id"`
	Indexes         []IndexSummary  `json:"indexes" yaml:"indexes"`
	Plans           []StatementPlan `json:"plans" yaml:"plans"`
	TotalCost       float64         `json:"total_cost" yaml:"total_cost"`
	TotalSize       int64           `json:"total_size" yaml:"total_size"`
	EnumerationSize int             `json:"enumeration_size" yaml:"enumeration_size"`
}

// JSON marshals the result, spec §6 "Result file... round-trippable".
func (r *Result) JSON() ([]byte, error) { return json.MarshalIndent(r, "", "  ") }

// ParseResultJSON is JSON's inverse.
func ParseResultJSON(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// YAML marshals the result in the "YAML or equivalent" form spec §6 also
// allows for the workload file.
func (r *Result) YAML() ([]byte, error) { return yaml.Marshal(r) }

// ParseResultYAML is YAML's inverse.
func ParseResultYAML(data []byte) (*Result, error) {
	var r Result
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func assemble(sol *ilp.Solution, matrix *plan.Matrix, enumerationSize int) (*Result, error) {
	id, err := satori.NewV4()
	if err != nil {
		return nil, err
	}

	r := &Result{
		ID:              id.String(),
		TotalCost:       sol.Cost,
		TotalSize:       sol.Size,
		EnumerationSize: enumerationSize,
	}

	for _, idx := range sol.Selected {
		r.Indexes = append(r.Indexes, IndexSummary{
			Key:   idx.Key(),
			Path:  idx.Path().String(),
			Hash:  idx.HashFields(),
			Order: idx.OrderFields(),
			Extra: idx.ExtraFields(),
			Size:  idx.Size(),
		})
	}

	for qid, key := range sol.QueryChoice {
		p := matrix.QueryPlans[qid][key]
		r.Plans = append(r.Plans, StatementPlan{
			StatementID:      qid,
			TerminalIndexKey: key,
			Cost:             p.TotalCost(),
			Explain:          p.Explain(),
		})
	}
	for qid, p := range matrix.MutationPlans {
		if p == nil || len(p.Steps) == 0 {
			continue
		}
		r.Plans = append(r.Plans, StatementPlan{
			StatementID: qid,
			Cost:        p.TotalCost(),
			Explain:     p.Explain(),
		})
	}

	return r, nil
}
