package enumerate

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash"

	"github.com/dolthub/nose-advisor/index"
)

// memoKey hashes a (statement, sub-path) pair into the key C4's
// memoization table is required to be keyed by (spec §4.4).
func memoKey(statementID, subPath string) uint64 {
	return xxhash.Sum64String(statementID + "\x00" + subPath)
}

func keyBytes(k uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, k)
	return b
}

// memoTable is the in-process memoization cache for per-(statement,
// sub-path) candidate generation, safe for concurrent use by the
// errgroup-parallel enumeration of spec §5.
type memoTable struct {
	mu    sync.Mutex
	cache map[uint64][]*index.Index
}

func newMemoTable() *memoTable {
	return &memoTable{cache: make(map[uint64][]*index.Index)}
}

func (m *memoTable) get(k uint64) ([]*index.Index, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.cache[k]
	return v, ok
}

func (m *memoTable) put(k uint64, v []*index.Index) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[k] = v
}
