package stmt

import (
	"fmt"

	"github.com/dolthub/nose-advisor/schema"
)

// ErrFieldNotOnPath is returned when a builder method references a field
// whose parent entity does not lie on the statement's path.
type ErrFieldNotOnPath struct {
	Field schema.FieldID
}

func (e ErrFieldNotOnPath) Error() string {
	return fmt.Sprintf("stmt: field %d does not lie on the statement's path", e.Field)
}

// ErrMultipleRanges is returned when Range is called a second time: spec §3
// allows at most one range-condition field per statement.
var ErrMultipleRanges = fmt.Errorf("stmt: a statement may have at most one range condition")

// Builder constructs a Statement, validating each clause against the
// statement's path as it is added.
type Builder struct {
	sch  *schema.Schema
	stmt *Statement
	err  error
}

// NewQuery starts building a QueryKind statement over path.
func NewQuery(sch *schema.Schema, id string, path *schema.KeyPath) *Builder {
	return &Builder{sch: sch, stmt: &Statement{id: id, kind: QueryKind, path: path}}
}

// NewUpdate starts building an UpdateKind statement over path.
func NewUpdate(sch *schema.Schema, id string, path *schema.KeyPath) *Builder {
	return &Builder{sch: sch, stmt: &Statement{id: id, kind: UpdateKind, path: path}}
}

// NewInsert starts building an InsertKind statement over path.
func NewInsert(sch *schema.Schema, id string, path *schema.KeyPath) *Builder {
	return &Builder{sch: sch, stmt: &Statement{id: id, kind: InsertKind, path: path}}
}

// NewDelete starts building a DeleteKind statement over path.
func NewDelete(sch *schema.Schema, id string, path *schema.KeyPath) *Builder {
	return &Builder{sch: sch, stmt: &Statement{id: id, kind: DeleteKind, path: path}}
}

func (b *Builder) checkOnPath(f schema.FieldID) bool {
	if b.err != nil {
		return false
	}
	if _, ok := b.stmt.path.FindFieldParent(f); !ok {
		b.err = ErrFieldNotOnPath{Field: f}
		return false
	}
	return true
}

// Eq adds an equality condition.
func (b *Builder) Eq(field schema.FieldID, value any) *Builder {
	if b.checkOnPath(field) {
		b.stmt.eq = append(b.stmt.eq, EqCondition{Field: field, Value: value})
	}
	return b
}

// Range adds the statement's (sole) range condition. hasLo/hasHi select
// which bounds are present; at least one must be true.
func (b *Builder) Range(field schema.FieldID, lo any, loInclusive, hasLo bool, hi any, hiInclusive, hasHi bool) *Builder {
	if b.err != nil {
		return b
	}
	if b.stmt.rng != nil {
		b.err = ErrMultipleRanges
		return b
	}
	if !hasLo && !hasHi {
		b.err = fmt.Errorf("stmt: range condition on field %d has neither a lower nor an upper bound", field)
		return b
	}
	if !b.checkOnPath(field) {
		return b
	}
	b.stmt.rng = &RangeCondition{
		Field: field, HasLo: hasLo, Lo: lo, LoInclusive: loInclusive,
		HasHi: hasHi, Hi: hi, HiInclusive: hiInclusive,
	}
	return b
}

// OrderBy appends an ordering column.
func (b *Builder) OrderBy(field schema.FieldID, desc bool) *Builder {
	if b.checkOnPath(field) {
		b.stmt.order = append(b.stmt.order, OrderField{Field: field, Desc: desc})
	}
	return b
}

// Limit sets the statement's row limit.
func (b *Builder) Limit(n int) *Builder {
	if b.err == nil {
		b.stmt.limit = &n
	}
	return b
}

// Select sets the projection list of a QueryKind statement.
func (b *Builder) Select(fields ...schema.FieldID) *Builder {
	for _, f := range fields {
		if !b.checkOnPath(f) {
			return b
		}
	}
	if b.err == nil {
		b.stmt.project = append(b.stmt.project, fields...)
	}
	return b
}

// Set marks fields as mutated by an UpdateKind statement.
func (b *Builder) Set(fields ...schema.FieldID) *Builder {
	for _, f := range fields {
		if !b.checkOnPath(f) {
			return b
		}
	}
	if b.err == nil {
		b.stmt.setCols = append(b.stmt.setCols, fields...)
	}
	return b
}

// Build finalizes the statement.
func (b *Builder) Build() (*Statement, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.stmt, nil
}
