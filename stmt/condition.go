package stmt

import (
	"github.com/spf13/cast"

	"github.com/dolthub/nose-advisor/schema"
)

// EqCondition pins one field to an equality value. Literal values are kept
// as `any` and surfaced through spf13/cast so callers never need their own
// type switch over the condition's stored representation.
type EqCondition struct {
	Field schema.FieldID
	Value any
}

// Int64 coerces the condition's value to an int64.
func (c EqCondition) Int64() (int64, error) { return cast.ToInt64E(c.Value) }

// Float64 coerces the condition's value to a float64.
func (c EqCondition) Float64() (float64, error) { return cast.ToFloat64E(c.Value) }

// String coerces the condition's value to a string.
func (c EqCondition) String() (string, error) { return cast.ToStringE(c.Value) }

// RangeCondition bounds a single field with an optional lower and/or upper
// cut. At least one of HasLo/HasHi is true; a range condition with neither
// set is not constructed by the builder.
type RangeCondition struct {
	Field        schema.FieldID
	HasLo        bool
	Lo           any
	LoInclusive  bool
	HasHi        bool
	Hi           any
	HiInclusive  bool
}

// OrderField is one column of a statement's requested ordering.
type OrderField struct {
	Field schema.FieldID
	Desc  bool
}
