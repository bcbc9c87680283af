package object

// Table is the open-addressed hash table spec.md §3 mandates for anything
// keyed by interned strings: instance property tables, struct and enum
// property tables, and (via a *String-only key) Quill's own Map<T> values. Entries use
// linear probing; the table grows (doubling capacity, starting at 8) once
// the load factor would exceed 0.75, and never shrinks.
//
// Keys are compared hash-first, then by pointer: because all String keys
// are produced by the shared intern table, pointer equality after an equal
// hash is sufficient and is exactly what spec.md §3 specifies ("keys are
// interned strings (hash compared first, then pointer)").
type Table struct {
	entries []tableEntry
	count   int // occupied slots, including tombstones
	live    int // occupied slots holding a real entry (excludes tombstones)
}

type tableEntry struct {
	key   *String // nil means empty, tombstone marked via key==tombstone
	value Value
}

// tombstone marks a deleted slot so probing can continue past it.
var tombstone = &String{}

const initialTableCap = 8

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

func (t *Table) Len() int { return t.live }

// Get returns the value for key and whether it was found.
func (t *Table) Get(key *String) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	e := t.find(key)
	if e.key == nil || e.key == tombstone {
		return Nil, false
	}
	return e.value, true
}

// Set inserts or updates key's value, growing the table first if required.
// It reports whether this inserted a new key (as opposed to overwriting).
func (t *Table) Set(key *String, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*0.75 {
		t.grow()
	}
	idx := t.probe(key)
	e := &t.entries[idx]
	isNew := e.key == nil || e.key == tombstone
	if e.key == nil {
		t.count++
	}
	if isNew {
		t.live++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key, leaving a tombstone behind so later probes still find
// entries that were inserted after a collision with key.
func (t *Table) Delete(key *String) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.probe(key)
	e := &t.entries[idx]
	if e.key == nil || e.key == tombstone {
		return false
	}
	e.key = tombstone
	e.value = Nil
	t.live--
	return true
}

// Keys returns the live keys in table (probe) order.
func (t *Table) Keys() []*String {
	keys := make([]*String, 0, t.live)
	for _, e := range t.entries {
		if e.key != nil && e.key != tombstone {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (t *Table) find(key *String) *tableEntry {
	idx := t.probe(key)
	return &t.entries[idx]
}

// probe finds the slot key belongs in, or the first empty/tombstone slot on
// the way if key isn't present; both Get and Set rely on this.
func (t *Table) probe(key *String) int {
	cap := len(t.entries)
	idx := int(key.Hash) % cap
	var firstTombstone = -1
	for {
		e := &t.entries[idx]
		switch {
		case e.key == nil:
			if firstTombstone != -1 {
				return firstTombstone
			}
			return idx
		case e.key == tombstone:
			if firstTombstone == -1 {
				firstTombstone = idx
			}
		case e.key.Hash == key.Hash && e.key == key:
			return idx
		}
		idx = (idx + 1) % cap
	}
}

func (t *Table) grow() {
	newCap := initialTableCap
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]tableEntry, newCap)
	t.count = 0
	t.live = 0
	for _, e := range old {
		if e.key != nil && e.key != tombstone {
			t.Set(e.key, e.value)
		}
	}
}
