// Package tt implements the search's shared transposition store: a
// lock-free, fixed-capacity, checksum-validated hash table shared by every
// SMP worker, plus the transposition-table policy layered on top of it.
package tt

import "github.com/cespare/xxhash/v2"

// PayloadSize is the width, in bytes, of a transposition-table value:
// depth (1) + eval (2) + move (2) + flags (1).
const PayloadSize = 6

type slot struct {
	key      uint64
	checksum uint64
	payload  [PayloadSize]byte
}

// SharedHashTable is a fixed array of (key, checksum, value) slots indexed
// by key modulo capacity. It is intentionally unsynchronized: concurrent
// Inserts to the same index may tear the slot, and Lookup relies on the
// checksum — a hash of the value bytes, not the key — to detect and reject
// a torn read rather than returning corrupt data. There is no locking and
// no depth-preferred replacement; the most recent Insert to an index wins.
type SharedHashTable struct {
	slots []slot
}

// NewSharedHashTable allocates a table with room for capacity slots.
func NewSharedHashTable(capacity int) *SharedHashTable {
	if capacity < 1 {
		capacity = 1
	}
	return &SharedHashTable{slots: make([]slot, capacity)}
}

// Capacity returns the number of slots.
func (t *SharedHashTable) Capacity() int { return len(t.slots) }

func (t *SharedHashTable) index(key uint64) int {
	return int(key % uint64(len(t.slots)))
}

// Insert stores payload at the slot for key, computing and storing the
// checksum over payload's bytes. Unsynchronized store.
func (t *SharedHashTable) Insert(key uint64, payload [PayloadSize]byte) {
	t.slots[t.index(key)] = slot{
		key:      key,
		checksum: xxhash.Sum64(payload[:]),
		payload:  payload,
	}
}

// Lookup returns the payload at key's slot if the key matches and the
// checksum recomputed over the payload bytes (read in the same snapshot —
// the slot is copied out whole before any field is inspected) matches the
// stored checksum. A key mismatch or checksum mismatch — including one
// caused by a torn concurrent write — is reported as a miss.
func (t *SharedHashTable) Lookup(key uint64) (payload [PayloadSize]byte, ok bool) {
	s := t.slots[t.index(key)]
	if s.key != key {
		return payload, false
	}
	if xxhash.Sum64(s.payload[:]) != s.checksum {
		return payload, false
	}
	return s.payload, true
}

// Clear resets every slot to its zero value.
func (t *SharedHashTable) Clear() {
	for i := range t.slots {
		t.slots[i] = slot{}
	}
}

// UsedPermille estimates table occupancy by sampling up to the first 1000
// slots, matching the UCI "hashfull" convention.
func (t *SharedHashTable) UsedPermille() int {
	sample := 1000
	if sample > len(t.slots) {
		sample = len(t.slots)
	}
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.slots[i].key != 0 || t.slots[i].checksum != 0 {
			used++
		}
	}
	return used * 1000 / sample
}
