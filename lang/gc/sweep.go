package gc

import "github.com/quillang/quill/lang/object"

// sweep walks the global object list, unlinking and discarding every object
// left unmarked by the trace phase, and clears the mark bit on survivors so
// the next collection starts clean (spec.md §4.6).
func (h *Heap) sweep() {
	var prev object.Obj
	cur := h.objects
	freed := 0

	for cur != nil {
		hdr := object.HeaderOf(cur)
		next := hdr.Next
		if hdr.Marked {
			hdr.Marked = false
			prev = cur
			cur = next
			continue
		}

		freed++
		if prev == nil {
			h.objects = next
		} else {
			object.HeaderOf(prev).Next = next
		}
		cur = next
	}

	h.allocated -= freed
}
