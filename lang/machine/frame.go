package machine

import "github.com/quillang/quill/lang/object"

// StackMax and FramesMax are spec.md §4.5/§7's bounded VM stack and call
// depth ("more than 256 active frames or stack slots" is a stack-overflow
// runtime error).
const (
	StackMax  = 256
	FramesMax = 256
)

// CallFrame is one active call: the closure being executed, its bytecode
// cursor, and the stack index of its slot 0 (spec.md §4.5: "stack_offset =
// stack_top - arity - 1"; local slot 0 is the callee itself).
type CallFrame struct {
	closure *object.Closure
	ip      int
	base    int
}
