package schema

import (
	"fmt"

	"github.com/dolthub/nose-advisor/internal/errs"
)

// EntityBuilder validates each field at the point it is added and finalizes
// the entity on Build(). It never reopens a single generic "add field"
// method keyed by a runtime type tag; each field kind gets its own method.
type EntityBuilder struct {
	schema *Schema
	entity *Entity
	err    error
}

func (b *EntityBuilder) add(name string, kind FieldKind, strLen int, fk *ForeignKey) *EntityBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.entity.fieldByName[name]; dup {
		b.err = errs.ErrDuplicateField.New(b.entity.name, name)
		return b
	}
	id := b.schema.nextFieldID()
	f := &Field{
		id:       id,
		name:     name,
		kind:     kind,
		strLen:   strLen,
		byteSize: defaultByteSize(kind, strLen),
		fk:       fk,
	}
	b.schema.fields = append(b.schema.fields, f)
	b.entity.fields = append(b.entity.fields, id)
	b.entity.fieldByName[name] = id
	if kind == IdKey {
		b.entity.identity = id
	}
	return b
}

// IntField adds an Int field.
func (b *EntityBuilder) IntField(name string) *EntityBuilder { return b.add(name, Int, 0, nil) }

// FloatField adds a Float field.
func (b *EntityBuilder) FloatField(name string) *EntityBuilder { return b.add(name, Float, 0, nil) }

// StringField adds a String(len) field.
func (b *EntityBuilder) StringField(name string, length int) *EntityBuilder {
	return b.add(name, StringKind, length, nil)
}

// DateField adds a Date field.
func (b *EntityBuilder) DateField(name string) *EntityBuilder { return b.add(name, Date, 0, nil) }

// HashField adds a Hash field.
func (b *EntityBuilder) HashField(name string) *EntityBuilder { return b.add(name, Hash, 0, nil) }

// IdentityField adds the entity's IdKey field. Only one is allowed: a
// second call with the same name fails the duplicate-name check at once,
// and a differently-named second identity makes Build() fail.
func (b *EntityBuilder) IdentityField(name string) *EntityBuilder {
	return b.add(name, IdKey, 0, nil)
}

// ForeignKeyField adds a ForeignKey field targeting another entity. reverse
// names the field on the target entity that mirrors this edge; the mutual
// Reverse handles are set later, in one shot, by Schema.ResolveForeignKeys
// once every entity exists.
func (b *EntityBuilder) ForeignKeyField(name string, target EntityID, arity Arity, reverse string) *EntityBuilder {
	b.add(name, ForeignKeyKind, 0, &ForeignKey{Target: target, Arity: arity, Reverse: invalidFieldID})
	if b.err == nil {
		id, _ := b.entity.fieldByName[name]
		b.schema.pendingReverse[id] = reverse
	}
	return b
}

// WithCardinality overrides the cardinality estimate of the field most
// recently added on this builder.
func (b *EntityBuilder) WithCardinality(card int64) *EntityBuilder {
	if b.err != nil || len(b.entity.fields) == 0 {
		return b
	}
	last := b.entity.fields[len(b.entity.fields)-1]
	b.schema.fields[last].cardinality = card
	return b
}

// WithByteSize overrides the byte-size estimate of the field most recently
// added on this builder.
func (b *EntityBuilder) WithByteSize(size int) *EntityBuilder {
	if b.err != nil || len(b.entity.fields) == 0 {
		return b
	}
	last := b.entity.fields[len(b.entity.fields)-1]
	b.schema.fields[last].byteSize = size
	return b
}

// Build finalizes the entity, registering it with the Schema and returning
// its handle.
func (b *EntityBuilder) Build() (EntityID, error) {
	if b.err != nil {
		return -1, b.err
	}
	identities := 0
	for _, fid := range b.entity.fields {
		if b.schema.fields[fid].kind == IdKey {
			identities++
		}
	}
	if identities > 1 {
		return -1, fmt.Errorf("schema: entity %q has more than one identity field", b.entity.name)
	}
	id := EntityID(len(b.schema.entities))
	b.entity.id = id
	for _, fid := range b.entity.fields {
		b.schema.fields[fid].entity = id
	}
	b.schema.entities = append(b.schema.entities, b.entity)
	b.schema.entityByName[b.entity.name] = id
	return id, nil
}
