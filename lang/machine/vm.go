// Package machine implements Quill's stack-based virtual machine: a value
// stack, a frame stack, closures and upvalues, and the opcode dispatch loop
// that executes an *object.Function compiled by lang/compiler (spec.md
// §4.5). The dispatch loop itself follows mna-nenuphar/lang/machine's
// run-in-a-tight-switch shape (one file, one big switch, frame held in a
// local variable re-fetched on every call/return), but the operand
// encoding, value model and call convention are specific to Quill: fixed
// little-endian 1-/2-byte operands instead of the teacher's varint scheme,
// and object.Value's tagged union instead of an interface-typed Value.
package machine

import (
	"fmt"
	"unsafe"

	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/object"
)

// VM owns the value stack, the frame stack, the open-upvalue list and a
// handle to the heap allocator used for every runtime allocation (spec.md
// §4.5's "A VM owns: a value stack..., a frames array, ..., a pointer to
// the open-upvalue list"). The intern table itself lives behind Alloc
// (lang/gc.Heap implements object.Allocator); the VM never interns a string
// except through it.
type VM struct {
	Alloc object.Allocator
	Trace bool // --trace: disassemble each instruction before executing it

	stack [StackMax]object.Value
	sp    int

	frames     [FramesMax]CallFrame
	frameCount int

	openUpvalues *object.Upvalue
}

// New creates a VM bound to alloc for all heap allocation.
func New(alloc object.Allocator) *VM {
	return &VM{Alloc: alloc}
}

// RuntimeError is a fatal VM error: spec.md §7's "stack overflow, division
// by zero, bad indexing, native-function failure", reported with the
// source line of the instruction that raised it.
type RuntimeError struct {
	Line int32
	Msg  string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("[line %d] %s", e.Line, e.Msg) }

func (vm *VM) runtimeErrf(line int32, format string, args ...any) error {
	return &RuntimeError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Run wraps fn in a closure and bootstraps the outermost frame directly
// (rather than through callValue/callClosure, which enforce a real CALL's
// arity): the closure occupies slot 0 as usual, and each of natives (built
// by internal/natives and bound by lang/compiler.Compile as top-level
// locals 1..len(natives), in the same order) is pushed into the matching
// slot before the dispatch loop starts. This is Quill's only form of
// "global" — spec.md §4.4 has no GET_GLOBAL/SET_GLOBAL opcode, so natives
// must already be sitting in the right local slots when user code runs.
func (vm *VM) Run(fn *object.Function, natives ...object.Value) (object.Value, error) {
	// cl must be a reachable root (on the stack) before Track, since Track
	// can trigger an inline collection (Heap.link) that would otherwise
	// sweep cl the instant it's born.
	cl := &object.Closure{Fn: fn}
	if err := vm.push(object.FromObj(cl)); err != nil {
		return object.Nil, err
	}
	vm.Alloc.Track(cl)
	for _, n := range natives {
		if err := vm.push(n); err != nil {
			return object.Nil, err
		}
	}
	vm.frames[0] = CallFrame{closure: cl, base: 0}
	vm.frameCount = 1
	return vm.run()
}

func (vm *VM) push(v object.Value) error {
	if vm.sp >= StackMax {
		return vm.runtimeErrf(0, "stack overflow")
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(dist int) object.Value { return vm.stack[vm.sp-1-dist] }

func readU16(code []byte, at int) uint16 {
	return uint16(code[at]) | uint16(code[at+1])<<8
}

// callClosure pushes a new frame over the arity already-pushed argument
// slots, per spec.md §4.5's "stack_offset = stack_top - arity - 1".
func (vm *VM) callClosure(cl *object.Closure, arity int) error {
	if vm.frameCount >= FramesMax {
		return vm.runtimeErrf(0, "stack overflow: too many nested calls")
	}
	if arity != cl.Fn.Arity {
		return vm.runtimeErrf(0, "expected %d arguments, got %d", cl.Fn.Arity, arity)
	}
	vm.frames[vm.frameCount] = CallFrame{closure: cl, base: vm.sp - arity - 1}
	vm.frameCount++
	return nil
}

// callValue dispatches CALL's callee, which is either a Quill closure or a
// native function (spec.md §6's extern bindings); anything else is not
// callable.
func (vm *VM) callValue(callee object.Value, arity int, line int32) error {
	if callee.Kind != object.VObject {
		return vm.runtimeErrf(line, "value of type %s is not callable", callee.TypeName())
	}
	switch o := callee.Obj.(type) {
	case *object.Closure:
		return vm.callClosure(o, arity)
	case *object.Native:
		if o.Arity >= 0 && arity != o.Arity {
			return vm.runtimeErrf(line, "native %s: expected %d arguments, got %d", o.Name, o.Arity, arity)
		}
		args := make([]object.Value, arity)
		copy(args, vm.stack[vm.sp-arity:vm.sp])
		result, err := o.Fn(args)
		if err != nil {
			return vm.runtimeErrf(line, "%s", err)
		}
		vm.sp -= arity + 1
		return vm.push(result)
	default:
		return vm.runtimeErrf(line, "value of type %s is not callable", callee.TypeName())
	}
}

// slotOf recovers the absolute stack index an open upvalue points at, by
// pointer arithmetic against the VM's fixed (never-reallocated) stack
// array; this only ever runs on still-open upvalues (Location != nil).
func (vm *VM) slotOf(uv *object.Upvalue) int {
	off := uintptr(unsafe.Pointer(uv.Location)) - uintptr(unsafe.Pointer(&vm.stack[0]))
	return int(off / unsafe.Sizeof(vm.stack[0]))
}

// captureUpvalue finds or creates the open upvalue pointing at stack slot
// absIdx, keeping the open list sorted by descending stack index (spec.md
// §4.5: "kept sorted in an open-upvalue list for fast closure on scope
// exit").
func (vm *VM) captureUpvalue(absIdx int) *object.Upvalue {
	var prev *object.Upvalue
	uv := vm.openUpvalues
	for uv != nil && vm.slotOf(uv) > absIdx {
		prev = uv
		uv = uv.Next
	}
	if uv != nil && vm.slotOf(uv) == absIdx {
		return uv
	}
	created := &object.Upvalue{Location: &vm.stack[absIdx], Next: uv}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	// Link into the open-upvalue list before Track: link can trigger an
	// inline collection (Heap.link), and OpenUpvalues is a GC root, so
	// created must already be reachable from it when that happens.
	vm.Alloc.Track(created)
	return created
}

// closeUpvalues closes every open upvalue pointing at slot absIdx or above,
// copying the stack value into the cell before the frame's slots are
// discarded (spec.md §4.5: "closes any open upvalues whose location ≥
// stack_offset").
func (vm *VM) closeUpvalues(absIdx int) {
	for vm.openUpvalues != nil && vm.slotOf(vm.openUpvalues) >= absIdx {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.Next
	}
}

// GCRoots and OpenUpvalues satisfy lang/gc.RootSource: the collector reaches
// every live VM value through these two calls alone, without lang/gc
// importing lang/machine (spec.md §4.6 roots: "every value on the VM
// stack...", "every open upvalue in the open list"). A frame's own closure
// is not listed separately because it always sits on the stack in slot 0,
// at frame.base.
func (vm *VM) GCRoots() []object.Value { return vm.stack[:vm.sp] }
func (vm *VM) OpenUpvalues() *object.Upvalue { return vm.openUpvalues }

func truthy(v object.Value) bool {
	switch v.Kind {
	case object.VNil:
		return false
	case object.VBool:
		return v.B
	default:
		return true
	}
}
