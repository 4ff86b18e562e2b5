package schema

import (
	"fmt"
	"strings"

	"github.com/dolthub/nose-advisor/internal/errs"
)

// KeyPath is a non-empty, ordered sequence of keyed fields starting at an
// identity field, where each subsequent element is a foreign key traversable
// from the previous entity. KeyPaths are canonical (comparable by value,
// via Equal or String) and reversible (via Reverse).
type KeyPath struct {
	schema *Schema
	elems  []pathElem
}

type pathElem struct {
	entity      EntityID
	reachingKey FieldID
}

// NewKeyPath builds a KeyPath starting at an identity field and traversing
// the given foreign keys in order. Each fk must belong to the entity
// reached by the previous step and must be a ForeignKeyKind field;
// violating either fails with errs.ErrBrokenPath.
func NewKeyPath(s *Schema, identity FieldID, fks ...FieldID) (*KeyPath, error) {
	idField := s.Field(identity)
	if idField.Kind() != IdKey {
		return nil, errs.ErrBrokenPath.New(fmt.Sprintf("field %q is not an identity key", idField.Name()))
	}
	elems := []pathElem{{entity: idField.Entity(), reachingKey: identity}}

	cur := idField.Entity()
	for _, fk := range fks {
		f := s.Field(fk)
		if f.Entity() != cur {
			return nil, errs.ErrBrokenPath.New(fmt.Sprintf("field %q does not belong to entity %q", f.Name(), s.Entity(cur).Name()))
		}
		if f.Kind() != ForeignKeyKind {
			return nil, errs.ErrBrokenPath.New(fmt.Sprintf("field %q is not a foreign key", f.Name()))
		}
		cur = f.ForeignKey().Target
		elems = append(elems, pathElem{entity: cur, reachingKey: fk})
	}

	return &KeyPath{schema: s, elems: elems}, nil
}

// Len returns the number of positions on the path.
func (p *KeyPath) Len() int { return len(p.elems) }

// Entities returns the entity at each position of the path, in order.
func (p *KeyPath) Entities() []EntityID {
	out := make([]EntityID, len(p.elems))
	for i, e := range p.elems {
		out[i] = e.entity
	}
	return out
}

// ReachingKeys returns the keyed field used to reach each position: the
// identity field for position 0, the traversed foreign key thereafter.
func (p *KeyPath) ReachingKeys() []FieldID {
	out := make([]FieldID, len(p.elems))
	for i, e := range p.elems {
		out[i] = e.reachingKey
	}
	return out
}

// EntityAt returns the entity at a given position.
func (p *KeyPath) EntityAt(i int) EntityID { return p.elems[i].entity }

// Last returns the final entity on the path.
func (p *KeyPath) Last() EntityID { return p.elems[len(p.elems)-1].entity }

// FindFieldParent returns the path position whose entity owns field f, and
// whether any position does.
func (p *KeyPath) FindFieldParent(f FieldID) (int, bool) {
	owner := p.schema.Field(f).Entity()
	for i, e := range p.elems {
		if e.entity == owner {
			return i, true
		}
	}
	return 0, false
}

// Sub returns the contiguous sub-path covering positions [from, to).
func (p *KeyPath) Sub(from, to int) *KeyPath {
	elems := make([]pathElem, to-from)
	copy(elems, p.elems[from:to])
	return &KeyPath{schema: p.schema, elems: elems}
}

// ContiguousSubPaths returns every non-empty contiguous sub-path of p,
// including p itself, in the order C4's enumeration algorithm consumes them:
// longest-first is not required, so this returns them by increasing start
// position then increasing length.
func (p *KeyPath) ContiguousSubPaths() []*KeyPath {
	var out []*KeyPath
	n := len(p.elems)
	for from := 0; from < n; from++ {
		for to := from + 1; to <= n; to++ {
			out = append(out, p.Sub(from, to))
		}
	}
	return out
}

// Reverse returns the path traversed backward: it starts at the identity
// field of p's last entity and walks each original step's reverse foreign
// key, ending back at p's first entity. Fails if any traversed field's
// reverse was never resolved (schema.ResolveForeignKeys not called, or a
// dangling edge).
func (p *KeyPath) Reverse() (*KeyPath, error) {
	last := p.schema.Entity(p.Last())
	if last.Identity() == invalidFieldID {
		return nil, errs.ErrBrokenPath.New(fmt.Sprintf("entity %q has no identity field to reverse from", last.Name()))
	}
	elems := make([]pathElem, len(p.elems))
	elems[0] = pathElem{entity: last.ID(), reachingKey: last.Identity()}

	for i := len(p.elems) - 1; i >= 1; i-- {
		fwd := p.schema.Field(p.elems[i].reachingKey)
		if fwd.ForeignKey() == nil || fwd.ForeignKey().Reverse == invalidFieldID {
			return nil, errs.ErrBrokenPath.New(fmt.Sprintf("field %q has no resolved reverse", fwd.Name()))
		}
		elems[len(p.elems)-i] = pathElem{
			entity:      p.elems[i-1].entity,
			reachingKey: fwd.ForeignKey().Reverse,
		}
	}
	return &KeyPath{schema: p.schema, elems: elems}, nil
}

// String renders a canonical, comparable form of the path, suitable as a
// map key for memoization (spec §4.4's "memoize by (statement, sub-path)").
func (p *KeyPath) String() string {
	var b strings.Builder
	for i, e := range p.elems {
		if i > 0 {
			b.WriteByte('>')
		}
		fmt.Fprintf(&b, "%d:%d", e.entity, e.reachingKey)
	}
	return b.String()
}

// Equal reports whether two KeyPaths traverse the same sequence of entities
// via the same reaching keys.
func (p *KeyPath) Equal(other *KeyPath) bool {
	if other == nil || len(p.elems) != len(other.elems) {
		return false
	}
	for i := range p.elems {
		if p.elems[i] != other.elems[i] {
			return false
		}
	}
	return true
}
