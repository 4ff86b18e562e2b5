// Package enumerate implements the Index Enumerator of spec §4.4 (component
// C4): the exhaustive, memoized generation of the candidate index set I*
// from a workload.
package enumerate

import (
	"context"

	"github.com/dolthub/nose-advisor/exec"
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// Cache is the optional persistent backing store for the memo table,
// satisfied by BoltCache. A nil Cache means memoization is in-process only.
type Cache interface {
	Get(key uint64) ([]Descriptor, bool)
	Put(key uint64, descs []Descriptor)
}

// Descriptor is the serializable shape of a candidate index: just enough to
// reconstruct it against a known sub-path via index.New.
type Descriptor struct {
	Hash  []schema.FieldID
	Order []schema.FieldID
	Extra []schema.FieldID
}

// Enumerator produces I* for a workload, memoizing per (statement,
// sub-path) as spec §4.4 requires.
type Enumerator struct {
	Schema   *schema.Schema
	Cache    Cache
	Executor *exec.Executor

	memo *memoTable
}

// New returns an Enumerator over sch. An optional persistent cache may be
// attached via the Cache field afterward.
func New(sch *schema.Schema) *Enumerator {
	return &Enumerator{Schema: sch, memo: newMemoTable()}
}

// Candidates builds I* for the whole workload: per-statement enumeration
// runs concurrently (spec §5 "parallel per-statement enumeration with final
// dedup is permitted"), then every statement's candidates are merged and
// deduplicated by Index.Key in a single serial pass.
func (e *Enumerator) Candidates(ctx context.Context, w *stmt.Workload) ([]*index.Index, error) {
	results := make([][]*index.Index, len(w.Statements))

	g, gctx := e.Executor.Group(ctx)
	for i, s := range w.Statements {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cands, err := e.forStatement(s)
			if err != nil {
				return err
			}
			results[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{})
	var out []*index.Index
	for _, cands := range results {
		for _, idx := range cands {
			if _, dup := seen[idx.Key()]; dup {
				continue
			}
			seen[idx.Key()] = struct{}{}
			out = append(out, idx)
		}
	}
	return out, nil
}

// forStatement enumerates every candidate implied by one statement: all
// hash/order/extra partitions of every contiguous sub-path of its KeyPath,
// plus the simple index of every entity the path touches.
func (e *Enumerator) forStatement(s *stmt.Statement) ([]*index.Index, error) {
	seen := make(map[uint64]struct{})
	var out []*index.Index
	add := func(idx *index.Index) {
		if idx == nil {
			return
		}
		if _, dup := seen[idx.Key()]; dup {
			return
		}
		seen[idx.Key()] = struct{}{}
		out = append(out, idx)
	}

	for _, sub := range s.Path().ContiguousSubPaths() {
		cands, err := e.forSubPath(s, sub)
		if err != nil {
			return nil, err
		}
		for _, idx := range cands {
			add(idx)
		}
	}

	for _, eid := range s.Path().Entities() {
		simple, err := index.SimpleIndex(e.Schema, e.Schema.Entity(eid))
		if err != nil {
			return nil, err
		}
		add(simple)
	}

	return out, nil
}

// forSubPath implements spec §4.4 step 2 for one contiguous sub-path: every
// non-empty subset of q's equality-condition fields that includes at least
// one field from q's first entity becomes a hash candidate; the rest of
// q's equality fields plus its order-by fields restricted to q, then the
// range field, then the identity field of q's last entity (when not already
// in hash or order) become the order candidate; everything else of
// s.AllFields restricted to q becomes extra.
func (e *Enumerator) forSubPath(s *stmt.Statement, q *schema.KeyPath) ([]*index.Index, error) {
	key := memoKey(s.ID(), q.String())
	if cached, ok := e.memo.get(key); ok {
		return cached, nil
	}
	if e.Cache != nil {
		if descs, ok := e.Cache.Get(key); ok {
			out, err := e.materialize(q, descs)
			if err == nil {
				e.memo.put(key, out)
				return out, nil
			}
			// Fall through and recompute on a stale/incompatible cache entry.
		}
	}

	onPath := func(f schema.FieldID) bool {
		_, ok := q.FindFieldParent(f)
		return ok
	}
	firstEntity := q.EntityAt(0)
	onFirst := func(f schema.FieldID) bool {
		pos, ok := q.FindFieldParent(f)
		return ok && q.EntityAt(pos) == firstEntity
	}

	var eqOnQ []schema.FieldID
	for _, c := range s.EqFields() {
		if onPath(c.Field) {
			eqOnQ = append(eqOnQ, c.Field)
		}
	}
	if len(eqOnQ) == 0 {
		e.memo.put(key, nil)
		return nil, nil
	}

	var orderByOnQ []schema.FieldID
	for _, o := range s.OrderFields() {
		if onPath(o.Field) {
			orderByOnQ = append(orderByOnQ, o.Field)
		}
	}

	var rangeField schema.FieldID
	hasRange := false
	if rc, ok := s.RangeField(); ok && onPath(rc.Field) {
		rangeField, hasRange = rc.Field, true
	}

	allOnQ := make(map[schema.FieldID]struct{})
	for _, f := range s.AllFields() {
		if onPath(f) {
			allOnQ[f] = struct{}{}
		}
	}

	n := len(eqOnQ)
	var out []*index.Index
	var descs []Descriptor
	// Enumerate every non-empty subset of eqOnQ as a hash candidate; a
	// subset with fewer than 32 eq fields is always finite, matching
	// spec §4.4's "exponential in a single statement's field count but
	// finite" bound.
	for mask := 1; mask < (1 << n); mask++ {
		hash := make([]schema.FieldID, 0, n)
		var fromFirst bool
		hashSet := make(map[schema.FieldID]struct{})
		for i := 0; i < n; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			f := eqOnQ[i]
			hash = append(hash, f)
			hashSet[f] = struct{}{}
			if onFirst(f) {
				fromFirst = true
			}
		}
		// Only the "at least one field from q's first entity" rule is
		// enforced: the remaining hash fields may come from interior
		// entities of q.
		if !fromFirst {
			continue
		}

		var order []schema.FieldID
		orderSet := make(map[schema.FieldID]struct{})
		for _, f := range eqOnQ {
			if _, inHash := hashSet[f]; inHash {
				continue
			}
			if _, dup := orderSet[f]; dup {
				continue
			}
			order = append(order, f)
			orderSet[f] = struct{}{}
		}
		for _, f := range orderByOnQ {
			if _, inHash := hashSet[f]; inHash {
				continue
			}
			if _, dup := orderSet[f]; dup {
				continue
			}
			order = append(order, f)
			orderSet[f] = struct{}{}
		}
		if hasRange {
			if _, inHash := hashSet[rangeField]; !inHash {
				if _, dup := orderSet[rangeField]; !dup {
					order = append(order, rangeField)
					orderSet[rangeField] = struct{}{}
				}
			}
		}

		// The last entity on q must contribute an identifying field to
		// hash∪order (spec §3 Index invariant; spec §8 scenario 2's
		// order=[Tweet.ts, Tweet.id]); append it to order when nothing
		// upstream already placed it there.
		lastIdentity := e.Schema.Entity(q.Last()).Identity()
		if _, inHash := hashSet[lastIdentity]; !inHash {
			if _, dup := orderSet[lastIdentity]; !dup {
				order = append(order, lastIdentity)
				orderSet[lastIdentity] = struct{}{}
			}
		}

		var extra []schema.FieldID
		for f := range allOnQ {
			if _, inHash := hashSet[f]; inHash {
				continue
			}
			if _, inOrder := orderSet[f]; inOrder {
				continue
			}
			extra = append(extra, f)
		}

		idx, err := index.New(e.Schema, q, hash, order, extra)
		if err != nil {
			// This subset doesn't satisfy index.New's invariants (e.g.
			// the last entity on q contributes nothing); skip it, it is
			// not a valid candidate.
			continue
		}
		out = append(out, idx)
		descs = append(descs, Descriptor{Hash: hash, Order: order, Extra: extra})
	}

	e.memo.put(key, out)
	if e.Cache != nil {
		e.Cache.Put(key, descs)
	}
	return out, nil
}

func (e *Enumerator) materialize(q *schema.KeyPath, descs []Descriptor) ([]*index.Index, error) {
	out := make([]*index.Index, 0, len(descs))
	for _, d := range descs {
		idx, err := index.New(e.Schema, q, d.Hash, d.Order, d.Extra)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
