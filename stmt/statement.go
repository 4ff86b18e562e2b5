// Package stmt implements the parsed statement model of spec §3/§4.2
// (component C2). Statement text parsing itself is external (spec §4.2);
// this package only provides the validated, immutable in-memory model and
// its builder.
package stmt

import (
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/schema"
)

// Kind tags which of the four statement variants a Statement is.
type Kind int

const (
	// QueryKind is a read.
	QueryKind Kind = iota
	// UpdateKind mutates a subset of an entity's fields.
	UpdateKind
	// InsertKind creates a new row.
	InsertKind
	// DeleteKind removes a row.
	DeleteKind
)

// Statement is one parsed, immutable workload statement.
type Statement struct {
	id      string
	kind    Kind
	path    *schema.KeyPath
	eq      []EqCondition
	rng     *RangeCondition
	order   []OrderField
	limit   *int
	project []schema.FieldID // select list (QueryKind only)
	setCols []schema.FieldID // mutated columns (UpdateKind only)
}

// ID is the statement's identifier within its workload, used as a mix key.
func (s *Statement) ID() string { return s.id }

// Kind returns which of the four variants this statement is.
func (s *Statement) Kind() Kind { return s.kind }

// Path returns the KeyPath this statement traverses.
func (s *Statement) Path() *schema.KeyPath { return s.path }

// EqFields returns the statement's equality-condition fields and values, in
// declaration order.
func (s *Statement) EqFields() []EqCondition { return append([]EqCondition(nil), s.eq...) }

// RangeField returns the statement's single range condition, if any.
func (s *Statement) RangeField() (RangeCondition, bool) {
	if s.rng == nil {
		return RangeCondition{}, false
	}
	return *s.rng, true
}

// OrderFields returns the requested ordering, empty if none was requested.
func (s *Statement) OrderFields() []OrderField { return append([]OrderField(nil), s.order...) }

// Limit returns the requested row limit and whether one was set.
func (s *Statement) Limit() (int, bool) {
	if s.limit == nil {
		return 0, false
	}
	return *s.limit, true
}

// SelectFields returns the projection list of a QueryKind statement.
func (s *Statement) SelectFields() []schema.FieldID { return append([]schema.FieldID(nil), s.project...) }

// SetFields returns the mutated columns of an UpdateKind statement.
func (s *Statement) SetFields() []schema.FieldID { return append([]schema.FieldID(nil), s.setCols...) }

// AllFields returns the set of fields referenced in any role: equality
// conditions, the range condition, ordering, projection and (for writes)
// mutated columns.
func (s *Statement) AllFields() []schema.FieldID {
	seen := make(map[schema.FieldID]struct{})
	add := func(f schema.FieldID) { seen[f] = struct{}{} }
	for _, c := range s.eq {
		add(c.Field)
	}
	if s.rng != nil {
		add(s.rng.Field)
	}
	for _, o := range s.order {
		add(o.Field)
	}
	for _, f := range s.project {
		add(f)
	}
	for _, f := range s.setCols {
		add(f)
	}
	out := make([]schema.FieldID, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	return out
}

// mutatedFields returns the fields this statement writes, used by
// ModifiesIndex. QueryKind never mutates anything. InsertKind and
// DeleteKind affect every field of the path's last entity, since the whole
// row is created or destroyed. UpdateKind affects only its Set columns.
func (s *Statement) mutatedFields(sch *schema.Schema) []schema.FieldID {
	switch s.kind {
	case UpdateKind:
		return s.setCols
	case InsertKind, DeleteKind:
		return sch.Entity(s.path.Last()).Fields()
	default:
		return nil
	}
}

// ModifiesIndex reports whether this statement mutates any field that
// appears in idx, or moves a row across idx's partitions (which is simply
// the case of a mutated hash field, already covered by idx's field
// membership), per spec §4.2.
func (s *Statement) ModifiesIndex(sch *schema.Schema, idx *index.Index) bool {
	for _, f := range s.mutatedFields(sch) {
		if idx.HasField(f) {
			return true
		}
	}
	return false
}
