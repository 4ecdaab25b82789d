package tt

import (
	"encoding/binary"

	"dysprosium/internal/board"
)

// NodeType is the bound a transposition-table entry stores, carried in the
// low 2 bits of the packed flags byte.
type NodeType uint8

const (
	// Exact is a PV node: the stored eval is the position's exact score.
	Exact NodeType = iota
	// Upper is an All node: the stored eval is an upper bound (search
	// failed low, every move was tried and none reached alpha).
	Upper
	// Lower is a Cut node: the stored eval is a lower bound (search
	// failed high on a beta cutoff).
	Lower
	// None marks a terminal position (checkmate/stalemate): never stored.
	None
)

// Entry is the transposition-table record for one position: search depth,
// the resolved score (caller converts to/from engine.Eval; kept as a raw
// int16 here so this package does not import the search package), the
// best/refutation move, and the bound type.
type Entry struct {
	Depth    uint8
	Eval     int16
	Move     board.Move
	NodeType NodeType
}

func (e Entry) bytes() [PayloadSize]byte {
	var b [PayloadSize]byte
	b[0] = e.Depth
	binary.LittleEndian.PutUint16(b[1:], uint16(e.Eval))
	binary.LittleEndian.PutUint16(b[3:], uint16(e.Move))
	b[5] = byte(e.NodeType)
	return b
}

func entryFromBytes(b [PayloadSize]byte) Entry {
	return Entry{
		Depth:    b[0],
		Eval:     int16(binary.LittleEndian.Uint16(b[1:])),
		Move:     board.Move(binary.LittleEndian.Uint16(b[3:])),
		NodeType: NodeType(b[5]),
	}
}

// Table is the transposition table: a SharedHashTable of Entry values,
// indexed by Zobrist hash.
type Table struct {
	shared *SharedHashTable
}

// entrySize mirrors the logical packed-record width used to size the table
// from a megabyte budget: u64 key + u64 checksum + u8 depth + i16 eval +
// u16 move + u8 flags = 21 bytes.
const entrySize = 8 + 8 + 1 + 2 + 2 + 1

// NewTable allocates a table sized to fit within sizeMB megabytes.
func NewTable(sizeMB int) *Table {
	capacity := sizeMB * 1024 * 1024 / entrySize
	return &Table{shared: NewSharedHashTable(capacity)}
}

// Capacity returns the number of slots.
func (t *Table) Capacity() int { return t.shared.Capacity() }

// UsedPermille reports occupancy, sampled, in parts per thousand.
func (t *Table) UsedPermille() int { return t.shared.UsedPermille() }

// Clear resets every slot.
func (t *Table) Clear() { t.shared.Clear() }

// Probe looks up hash and returns the stored Entry, if present and valid.
func (t *Table) Probe(hash uint64) (Entry, bool) {
	payload, ok := t.shared.Lookup(hash)
	if !ok {
		return Entry{}, false
	}
	return entryFromBytes(payload), true
}

// Store writes an entry for hash. There is no depth-preferred replacement
// policy: the most recent Store to a given index always wins.
func (t *Table) Store(hash uint64, depth uint8, eval int16, move board.Move, nodeType NodeType) {
	e := Entry{Depth: depth, Eval: eval, Move: move, NodeType: nodeType}
	t.shared.Insert(hash, e.bytes())
}

// Resize reallocates the table for a new megabyte budget, discarding all
// existing entries.
func (t *Table) Resize(sizeMB int) {
	t.shared = NewSharedHashTable(sizeMB * 1024 * 1024 / entrySize)
}
