// Package gc implements Quill's heap: string interning, allocation tracking
// and the precise, non-moving, stop-the-world mark-and-sweep collector
// spec.md §4.6 describes. It has no dependency on lang/machine — the
// running VM is handed to Heap.Attach as a RootSource, so the import graph
// stays Heap -> object only, same direction as every other package.
package gc

import "github.com/quillang/quill/lang/object"

// initialNextGC is the allocation-count threshold for the first collection.
// spec.md §4.6 only specifies the growth rule (next_gc = allocated*2 after
// each collection); the starting value is ours to pick, chosen small enough
// that ordinary test programs exercise at least one real collection.
const initialNextGC = 1024

// RootSource is implemented by the running VM (lang/machine.VM satisfies it
// structurally) so the collector can enumerate every live stack slot and
// open upvalue without lang/gc importing lang/machine.
type RootSource interface {
	GCRoots() []object.Value
	OpenUpvalues() *object.Upvalue
}

// Heap is Quill's object.Allocator: every heap object a compiler or VM
// creates is registered here via Track, every string goes through Intern,
// and collection runs inline on the allocating call per spec.md §4.6's
// "allocation path increments an allocated counter; when it exceeds
// next_gc, a collection runs".
type Heap struct {
	Stress bool // force a collection on every Track/Intern call

	roots RootSource

	interned map[string]*object.String
	objects  object.Obj // head of the global allocation list, threaded via Header.Next

	allocated int // live tracked objects
	nextGC    int

	gray []object.Obj
}

// NewHeap returns an empty Heap with no attached VM; Attach must be called
// before any collection can see stack/upvalue roots (compilation alone
// never allocates enough to matter, since the compiler's own Function/
// Struct/Enum constants are never Tracked — see DESIGN.md).
func NewHeap() *Heap {
	return &Heap{
		interned: make(map[string]*object.String),
		nextGC:   initialNextGC,
	}
}

// Attach binds the Heap to the VM whose stack and open-upvalue list form
// the collector's live roots. Must be called once, before the VM runs.
func (h *Heap) Attach(src RootSource) { h.roots = src }

// SetInitialThreshold overrides the allocation count that triggers the
// first collection (internal/config.Config.GCInitialThreshold). Only has
// an effect before the first Track/Intern call that would otherwise
// trigger a collection.
func (h *Heap) SetInitialThreshold(n int) { h.nextGC = n }

// Intern returns the canonical *object.String for b's contents, creating
// and tracking one if this is the first time these bytes have been seen
// (spec.md §3's interning invariant: equal byte sequences share one
// pointer).
func (h *Heap) Intern(b []byte) *object.String {
	if s, ok := h.interned[string(b)]; ok {
		return s
	}
	s := object.NewString(b)
	h.interned[string(b)] = s
	h.link(s)
	return s
}

// Track registers o in the heap's allocation list and, once the allocation
// budget is exhausted (or Stress is set), runs a collection.
func (h *Heap) Track(o object.Obj) {
	h.link(o)
}

// link threads o into the global object list and triggers a collection if
// warranted; shared by Track and Intern so every allocation, interned
// string included, is subject to the same budget.
func (h *Heap) link(o object.Obj) {
	hdr := object.HeaderOf(o)
	hdr.Next = h.objects
	h.objects = o
	h.allocated++
	if h.Stress || h.allocated > h.nextGC {
		h.Collect()
	}
}
