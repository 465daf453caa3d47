package table

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/tinymove"
)

const (
	pageBits = 20
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

// entrySize is the in-memory size of one record, in bytes.
const entrySize = 4

// A Table maps every key in [0, Len()) to a TinyMove. The key space can run
// into the billions, so backing storage is split into pages that are only
// allocated the first time a key inside them is written. Reading a key in
// a missing page yields an invalid record.
//
// A Table is not safe for concurrent use.
type Table struct {
	numTuples uint64
	pages     [][]tinymove.TinyMove
	stored    uint64
}

// New creates an empty table for numTuples keys.
func New(numTuples uint64) *Table {
	numPages := (numTuples + pageSize - 1) >> pageBits
	t := &Table{
		numTuples: numTuples,
		pages:     make([][]tinymove.TinyMove, numPages),
	}
	totalMem := memory.TotalMemory()
	denseBytes := numTuples * entrySize
	evt := log.Debug()
	if totalMem > 0 && denseBytes > totalMem {
		evt = log.Warn()
	}
	evt.Uint64("num-tuples", numTuples).
		Uint64("num-pages", numPages).
		Uint64("dense-bytes", denseBytes).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("tuple-table-size")
	return t
}

// Len is the size of the key space.
func (t *Table) Len() uint64 {
	return t.numTuples
}

func (t *Table) checkKey(key uint64) {
	if key >= t.numTuples {
		panic("tuple key out of range")
	}
}

// Locate returns the record for key without allocating anything. ok is
// false if the key's page was never materialized.
func (t *Table) Locate(key uint64) (tm tinymove.TinyMove, ok bool) {
	t.checkKey(key)
	page := t.pages[key>>pageBits]
	if page == nil {
		return tinymove.InvalidRecord, false
	}
	return page[key&pageMask], true
}

// Get returns the record for key, or an invalid record.
func (t *Table) Get(key uint64) tinymove.TinyMove {
	tm, _ := t.Locate(key)
	return tm
}

// Entry returns a writable slot for key, allocating its page if needed.
// Pointers returned by Entry stay valid for the life of the table, but
// callers should prefer Store, which keeps records write-once.
func (t *Table) Entry(key uint64) *tinymove.TinyMove {
	t.checkKey(key)
	idx := key >> pageBits
	page := t.pages[idx]
	if page == nil {
		n := uint64(pageSize)
		if rem := t.numTuples - idx<<pageBits; rem < n {
			n = rem
		}
		page = make([]tinymove.TinyMove, n)
		for i := range page {
			page[i] = tinymove.InvalidRecord
		}
		t.pages[idx] = page
	}
	return &page[key&pageMask]
}

// Store writes tm into an empty slot. A slot that already holds a valid
// record is left as is and Store returns false.
func (t *Table) Store(key uint64, tm tinymove.TinyMove) bool {
	slot := t.Entry(key)
	if slot.Valid() {
		return false
	}
	*slot = tm
	if tm.Valid() {
		t.stored++
	}
	return true
}

// Count returns the number of valid records.
func (t *Table) Count() uint64 {
	return t.stored
}

// NumPages returns how many pages are materialized.
func (t *Table) NumPages() int {
	n := 0
	for _, p := range t.pages {
		if p != nil {
			n++
		}
	}
	return n
}

// ForEach calls fn for every valid record in key order until fn returns
// false.
func (t *Table) ForEach(fn func(key uint64, tm tinymove.TinyMove) bool) {
	for pi, page := range t.pages {
		if page == nil {
			continue
		}
		base := uint64(pi) << pageBits
		for i, tm := range page {
			if !tm.Valid() {
				continue
			}
			if !fn(base+uint64(i), tm) {
				return
			}
		}
	}
}

// Reset drops every page.
func (t *Table) Reset() {
	clear(t.pages)
	t.stored = 0
}
