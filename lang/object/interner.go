package object

// Interner is implemented by the heap's string table (lang/gc.Heap). Both
// the compiler (string/identifier literals) and the VM (runtime string
// concatenation) go through the same Interner so that byte-equal strings
// always share one *String, per spec.md §3's interning invariant.
type Interner interface {
	Intern(b []byte) *String
}

// Allocator is the VM's view of the heap (lang/gc.Heap): interning plus
// tracking every other heap object so the collector's sweep phase can walk
// them (spec.md §4.6's "all heap objects are linked in one allocation
// list"). Every Obj the VM creates either comes from Intern or is passed to
// Track, so nothing escapes the collector's reach.
type Allocator interface {
	Interner
	Track(o Obj)
}
