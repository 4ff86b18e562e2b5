// Package index implements the materialized-index descriptor of spec §3/§4.3
// (component C3): a hash key, order key, extra fields, the KeyPath the index
// materializes, and a derived size and stable key.
package index

import (
	"sort"

	"github.com/mitchellh/hashstructure"

	"github.com/dolthub/nose-advisor/schema"
)

// Index is a composite descriptor for one candidate materialized structure.
// Immutable after construction; indexes are shared freely (spec §3
// "Lifecycle").
type Index struct {
	hash  []schema.FieldID
	order []schema.FieldID
	extra map[schema.FieldID]struct{}
	path  *schema.KeyPath

	size int64
	key  uint64
}

// hashKeyPayload is the canonical, sorted shape hashed into Index.key: two
// indexes with equal (hash, order, extra, path) tuples must hash equal
// regardless of the order extra fields were supplied in.
type hashKeyPayload struct {
	Hash  []schema.FieldID
	Order []schema.FieldID
	Extra []schema.FieldID
	Path  string
}

// New validates and constructs an Index over sch.
//
// Invariants enforced: hash is non-empty; hash, order and extra are
// pairwise disjoint; every field's parent entity lies on path; the last
// entity on path contributes its identity field to hash∪order.
func New(sch *schema.Schema, path *schema.KeyPath, hash, order, extra []schema.FieldID) (*Index, error) {
	if len(hash) == 0 {
		return nil, errNoHashFields
	}

	seen := make(map[schema.FieldID]string, len(hash)+len(order)+len(extra))
	for _, f := range hash {
		if prev, dup := seen[f]; dup {
			return nil, fieldOverlapError(f, prev, "hash")
		}
		seen[f] = "hash"
	}
	for _, f := range order {
		if prev, dup := seen[f]; dup {
			return nil, fieldOverlapError(f, prev, "order")
		}
		seen[f] = "order"
	}
	extraSet := make(map[schema.FieldID]struct{}, len(extra))
	for _, f := range extra {
		if prev, dup := seen[f]; dup {
			return nil, fieldOverlapError(f, prev, "extra")
		}
		seen[f] = "extra"
		extraSet[f] = struct{}{}
	}

	pathEntities := make(map[schema.EntityID]struct{})
	for _, e := range path.Entities() {
		pathEntities[e] = struct{}{}
	}
	for f := range seen {
		owner := sch.Field(f).Entity()
		if _, ok := pathEntities[owner]; !ok {
			return nil, fieldNotOnPathError(f)
		}
	}

	// The last entity on path must contribute an identifying field to
	// hash∪order, not merely any field: a non-identifying field (e.g. a
	// timestamp) leaves distinct rows of the last entity indistinguishable.
	lastEntity := sch.Entity(path.Last())
	coversLast := false
	for _, f := range hash {
		if f == lastEntity.Identity() {
			coversLast = true
			break
		}
	}
	if !coversLast {
		for _, f := range order {
			if f == lastEntity.Identity() {
				coversLast = true
				break
			}
		}
	}
	if !coversLast {
		return nil, errLastEntityUncovered
	}

	idx := &Index{
		hash:  append([]schema.FieldID(nil), hash...),
		order: append([]schema.FieldID(nil), order...),
		extra: extraSet,
		path:  path,
	}
	idx.size = computeSize(sch, idx)
	idx.key = computeKey(idx)
	return idx, nil
}

// SimpleIndex yields the trivial per-entity materialization: identity hash,
// no order, all scalar (non-foreign-key) fields as extra.
func SimpleIndex(sch *schema.Schema, e *schema.Entity) (*Index, error) {
	path, err := schema.NewKeyPath(sch, e.Identity())
	if err != nil {
		return nil, err
	}
	var extra []schema.FieldID
	for _, fid := range e.Fields() {
		if fid == e.Identity() {
			continue
		}
		f := sch.Field(fid)
		if f.Kind() == schema.ForeignKeyKind {
			continue
		}
		extra = append(extra, fid)
	}
	return New(sch, path, []schema.FieldID{e.Identity()}, nil, extra)
}

// HashFields returns the partition-key prefix, in order.
func (i *Index) HashFields() []schema.FieldID { return append([]schema.FieldID(nil), i.hash...) }

// OrderFields returns the intra-partition sort suffix, in order.
func (i *Index) OrderFields() []schema.FieldID { return append([]schema.FieldID(nil), i.order...) }

// ExtraFields returns the additional stored fields.
func (i *Index) ExtraFields() []schema.FieldID {
	out := make([]schema.FieldID, 0, len(i.extra))
	for f := range i.extra {
		out = append(out, f)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// AllFields returns hash ∪ order ∪ extra.
func (i *Index) AllFields() []schema.FieldID {
	out := make([]schema.FieldID, 0, len(i.hash)+len(i.order)+len(i.extra))
	out = append(out, i.hash...)
	out = append(out, i.order...)
	out = append(out, i.ExtraFields()...)
	return out
}

// HasField reports whether f is present in hash, order, or extra.
func (i *Index) HasField(f schema.FieldID) bool {
	for _, h := range i.hash {
		if h == f {
			return true
		}
	}
	for _, o := range i.order {
		if o == f {
			return true
		}
	}
	_, ok := i.extra[f]
	return ok
}

// Path returns the KeyPath this index materializes.
func (i *Index) Path() *schema.KeyPath { return i.path }

// Size returns (Σ field sizes) × Π(entity counts along the path), the
// storage estimate used by the Space constraint/objective. The entity
// counts are used as declared; no selectivity scaling is applied.
func (i *Index) Size() int64 { return i.size }

// Key is a stable identifier hashed from the (hash, order, extra, path)
// tuple: two indexes with equal tuples have equal keys, so candidate
// deduplication in C4 is a map keyed on Key.
func (i *Index) Key() uint64 { return i.key }

// EntriesPerPartition estimates the row count materialized per partition:
// the product of entity counts strictly after the hash prefix's deepest
// field, consumed by the cost model for per-partition scan/sort costing. A
// hash key reaching all the way to the path's last entity (e.g. a simple
// index) has exactly one row per partition.
func (i *Index) EntriesPerPartition(sch *schema.Schema) int64 {
	entities := i.path.Entities()
	hashDepth := 0
	for _, hf := range i.hash {
		if pos, ok := i.path.FindFieldParent(hf); ok && pos > hashDepth {
			hashDepth = pos
		}
	}
	if hashDepth+1 >= len(entities) {
		return 1
	}
	total := int64(1)
	for idx := hashDepth + 1; idx < len(entities); idx++ {
		total *= sch.Entity(entities[idx]).Count()
	}
	if total <= 0 {
		total = 1
	}
	return total
}

func computeSize(sch *schema.Schema, i *Index) int64 {
	var fieldBytes int64
	for _, f := range i.AllFields() {
		fieldBytes += int64(sch.Field(f).ByteSize())
	}
	if fieldBytes == 0 {
		fieldBytes = 1
	}

	multiplier := int64(1)
	for _, eid := range i.path.Entities() {
		multiplier *= sch.Entity(eid).Count()
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	return fieldBytes * multiplier
}

func computeKey(i *Index) uint64 {
	payload := hashKeyPayload{
		Hash:  i.hash,
		Order: i.order,
		Extra: i.ExtraFields(),
		Path:  i.path.String(),
	}
	h, err := hashstructure.Hash(payload, nil)
	if err != nil {
		// hashstructure only fails on unsupported types; our payload is
		// entirely slices of comparable integers and a string.
		panic(err)
	}
	return h
}
