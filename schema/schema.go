package schema

import (
	"fmt"

	"github.com/dolthub/nose-advisor/internal/errs"
)

// Schema is the arena owning every Entity and Field: a bidirectional
// foreign-key graph addressed entirely through integer handles, so that the
// cyclic field<->entity and foreign-key<->reverse references never need an
// owning pointer on both sides (spec §9 Design Notes).
type Schema struct {
	entities     []*Entity
	entityByName map[string]EntityID
	fields       []*Field

	// pendingReverse records, per ForeignKeyKind field, the name of the
	// field on the target entity that should become its mutual reverse.
	// Consumed and cleared by ResolveForeignKeys.
	pendingReverse map[FieldID]string
	resolved       bool
}

// New returns an empty Schema.
func New() *Schema {
	return &Schema{
		entityByName:   make(map[string]EntityID),
		pendingReverse: make(map[FieldID]string),
	}
}

// Entity returns the entity for a handle. Panics on an out-of-range handle,
// which can only happen by misusing a handle from a different Schema.
func (s *Schema) Entity(id EntityID) *Entity { return s.entities[id] }

// Field returns the field for a handle.
func (s *Schema) Field(id FieldID) *Field { return s.fields[id] }

// EntityByName looks up an entity by name.
func (s *Schema) EntityByName(name string) (EntityID, bool) {
	id, ok := s.entityByName[name]
	return id, ok
}

// Entities returns every entity in declaration order.
func (s *Schema) Entities() []*Entity {
	out := make([]*Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// AddEntity starts a new entity definition. The returned builder's methods
// each validate their own field kind at the point of the call; Build()
// finalizes the entity and registers it with the Schema.
func (s *Schema) AddEntity(name string, count int64) *EntityBuilder {
	return &EntityBuilder{
		schema: s,
		entity: &Entity{
			name:        name,
			count:       count,
			fieldByName: make(map[string]FieldID),
			identity:    invalidFieldID,
		},
	}
}

func (s *Schema) nextFieldID() FieldID { return FieldID(len(s.fields)) }

// ResolveForeignKeys performs the one-shot pass that sets every
// ForeignKey.Reverse handle, after every entity and field has been added.
// A foreign key and its declared reverse are rewritten atomically: either
// both ends receive their Reverse handle, or the pass returns an error and
// neither does.
func (s *Schema) ResolveForeignKeys() error {
	if s.resolved {
		return nil
	}

	type pair struct {
		fwd FieldID
		rev FieldID
	}
	var pairs []pair

	for fid, revName := range s.pendingReverse {
		f := s.fields[fid]
		if f.fk.Target < 0 || int(f.fk.Target) >= len(s.entities) {
			return errs.ErrUnknownEntity.New(fmt.Sprintf("#%d", f.fk.Target))
		}
		target := s.entities[f.fk.Target]
		revID, ok := target.FieldByName(revName)
		if !ok {
			return errs.ErrAsymmetricReverse.New(f.name, revName)
		}
		rev := s.fields[revID]
		if rev.kind != ForeignKeyKind {
			return errs.ErrAsymmetricReverse.New(f.name, revName)
		}
		if rev.fk.Target != f.entity {
			return errs.ErrAsymmetricReverse.New(f.name, revName)
		}
		pairs = append(pairs, pair{fwd: fid, rev: revID})
	}

	// Both ends succeeded validation; commit atomically.
	for _, p := range pairs {
		s.fields[p.fwd].fk.Reverse = p.rev
		s.fields[p.rev].fk.Reverse = p.fwd
	}
	s.pendingReverse = nil
	s.resolved = true
	return nil
}

// Validate runs structural checks beyond what EntityBuilder already
// enforces at construction time: every entity has an identity field, and
// every foreign key's reverse has been resolved.
func (s *Schema) Validate() error {
	if err := s.ResolveForeignKeys(); err != nil {
		return err
	}
	for _, e := range s.entities {
		if e.identity == invalidFieldID {
			return errs.ErrNoIdentityField.New(e.name)
		}
	}
	for _, f := range s.fields {
		if f.kind == ForeignKeyKind && f.fk.Reverse == invalidFieldID {
			return errs.ErrAsymmetricReverse.New(f.name, "<unresolved>")
		}
	}
	return nil
}
