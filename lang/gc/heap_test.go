package gc

import (
	"testing"

	"github.com/quillang/quill/lang/object"
	"github.com/stretchr/testify/require"
)

// stubRoots is a minimal RootSource a test controls directly, standing in
// for a running VM.
type stubRoots struct {
	stack []object.Value
	open  *object.Upvalue
}

func (s *stubRoots) GCRoots() []object.Value     { return s.stack }
func (s *stubRoots) OpenUpvalues() *object.Upvalue { return s.open }

func TestInternDedups(t *testing.T) {
	h := NewHeap()
	a := h.Intern([]byte("hello"))
	b := h.Intern([]byte("hello"))
	require.Same(t, a, b)

	c := h.Intern([]byte("world"))
	require.NotSame(t, a, c)
}

func TestCollectSweepsUnreachable(t *testing.T) {
	h := NewHeap()
	roots := &stubRoots{}
	h.Attach(roots)

	kept := object.NewList(object.Nil)
	h.Track(kept)
	roots.stack = []object.Value{object.FromObj(kept)}

	garbage := object.NewList(object.Nil)
	h.Track(garbage)

	require.Equal(t, 2, h.allocated)
	h.Collect()
	require.Equal(t, 1, h.allocated)
}

func TestInternedStringsSurviveWithoutStackReference(t *testing.T) {
	h := NewHeap()
	roots := &stubRoots{}
	h.Attach(roots)

	s := h.Intern([]byte("kept forever"))
	h.Collect()

	again := h.Intern([]byte("kept forever"))
	require.Same(t, s, again)
}

func TestStressCollectsOnEveryAllocation(t *testing.T) {
	h := NewHeap()
	h.Stress = true
	roots := &stubRoots{}
	h.Attach(roots)

	// Root each list on the stack before Track, mirroring the VM's call
	// sites (lang/machine): under Stress every Track runs a collection
	// inline, so an object not yet reachable from a root at that point
	// would be swept the instant it's born.
	var live []object.Value
	for i := 0; i < 10; i++ {
		l := object.NewList(object.Nil)
		live = append(live, object.FromObj(l))
		roots.stack = live
		h.Track(l)
	}
	require.Equal(t, 10, h.allocated)
}

func TestTraceReachesNestedReferences(t *testing.T) {
	h := NewHeap()
	roots := &stubRoots{}
	h.Attach(roots)

	shape := &object.Struct{Name: h.Intern([]byte("Shape")), Props: object.NewTable()}
	h.Track(shape)
	sidesName := h.Intern([]byte("sides"))
	shape.Props.Set(sidesName, object.Int(0))
	shape.Order = append(shape.Order, sidesName)

	inst := object.NewInstance(shape)
	h.Track(inst)
	roots.stack = []object.Value{object.FromObj(inst)}

	before := h.allocated
	h.Collect()

	// shape is reachable only via inst.Class, never placed on the stack
	// itself; if blacken didn't trace Instance.Class it would have been
	// swept, and this count would drop.
	require.Equal(t, before, h.allocated)
	v, ok := inst.Get(sidesName)
	require.True(t, ok)
	require.Equal(t, object.Int(0), v)
}
