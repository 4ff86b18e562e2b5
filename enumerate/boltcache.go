package enumerate

import (
	"bytes"
	"encoding/gob"

	"github.com/boltdb/bolt"
)

var memoBucket = []byte("nose_enumerate_memo")

// BoltCache persists the (statement, sub-path) memo table across advisor
// runs, so a workload that evolves incrementally does not pay to
// re-enumerate sub-paths it has already seen (a supplemented feature, see
// SPEC_FULL.md's enumerate module). Purely additive: Enumerator works
// correctly without one attached.
type BoltCache struct {
	db *bolt.DB
}

// OpenBoltCache opens (creating if absent) a bolt-backed memo cache at
// path.
func OpenBoltCache(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(memoBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltCache{db: db}, nil
}

// Close releases the underlying bolt database file.
func (c *BoltCache) Close() error { return c.db.Close() }

// Get implements Cache.
func (c *BoltCache) Get(key uint64) ([]Descriptor, bool) {
	var out []Descriptor
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(memoBucket)
		v := b.Get(keyBytes(key))
		if v == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(v))
		if err := dec.Decode(&out); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return out, found
}

// Put implements Cache.
func (c *BoltCache) Put(key uint64, descs []Descriptor) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(descs); err != nil {
		return
	}
	_ = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(memoBucket)
		return b.Put(keyBytes(key), buf.Bytes())
	})
}
