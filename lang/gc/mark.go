package gc

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/quillang/quill/lang/object"
)

// Collect runs one full mark-and-sweep pass: mark every root (and, via the
// gray queue, everything reachable from them), sweep everything left
// unmarked, then reset the allocation budget (spec.md §4.6: "next_gc =
// allocated x 2").
func (h *Heap) Collect() {
	h.gray = h.gray[:0]

	if h.roots != nil {
		for _, v := range h.roots.GCRoots() {
			h.markValue(v)
		}
		for uv := h.roots.OpenUpvalues(); uv != nil; uv = uv.Next {
			h.mark(uv)
		}
	}
	// The intern table's keys are roots regardless of reachability from the
	// VM stack (spec.md §4.6): an interned string is never swept. Sorted so
	// that tracing order is deterministic across runs, independent of Go's
	// randomized map order.
	keys := maps.Keys(h.interned)
	slices.Sort(keys)
	for _, k := range keys {
		h.mark(h.interned[k])
	}

	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}

	h.sweep()
	h.nextGC = h.allocated * 2
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
}

// mark sets o's mark bit and, the first time it's seen this collection,
// adds it to the gray queue for blacken to trace later.
func (h *Heap) mark(o object.Obj) {
	if o == nil {
		return
	}
	hdr := object.HeaderOf(o)
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, o)
}

func (h *Heap) markValue(v object.Value) {
	if v.Kind == object.VObject {
		h.mark(v.Obj)
	}
}

// blacken visits one gray object's outgoing references, per spec.md §4.6's
// trace rule: "function's constants and name and upvalue objects; class's
// name and property table; upvalue's closed value; list's values and
// default; map's table and default".
func (h *Heap) blacken(o object.Obj) {
	switch x := o.(type) {
	case *object.String:
		// leaf: no outgoing references

	case *object.Function:
		if x.Name != nil {
			h.mark(x.Name)
		}
		for _, c := range x.Chunk.Constants {
			h.markValue(c)
		}

	case *object.Closure:
		if x.Fn != nil {
			h.mark(x.Fn)
		}
		for _, uv := range x.Upvalues {
			h.mark(uv)
		}

	case *object.Upvalue:
		if x.Location != nil {
			h.markValue(*x.Location)
		} else {
			h.markValue(x.Closed)
		}

	case *object.Struct:
		h.mark(x.Name)
		if x.Super != nil {
			h.mark(x.Super)
		}
		h.markTable(x.Props, x.Order)

	case *object.Instance:
		h.mark(x.Class)
		h.markTable(x.Fields, x.Fields.Keys())

	case *object.Enum:
		h.mark(x.Name)
		h.markTable(x.Props, x.Order)

	case *object.Native:
		h.mark(x.Name)

	case *object.List:
		for _, v := range x.Elems {
			h.markValue(v)
		}
		h.markValue(x.Default)

	case *object.Map:
		h.markTable(x.Table, x.Table.Keys())
		h.markValue(x.Default)
	}
}

// markTable marks every key and live value in t. keys is passed separately
// (rather than calling t.Keys() here) because callers already hold an
// Order slice giving deterministic insertion order, or the Fields/Table's
// own Keys() for instances and maps which have no separate Order.
func (h *Heap) markTable(t *object.Table, keys []*object.String) {
	for _, k := range keys {
		h.mark(k)
		if v, ok := t.Get(k); ok {
			h.markValue(v)
		}
	}
}
