package compiler

import "fmt"

// Opcode is a single VM instruction kind. The set and operand shapes below
// are spec.md §4.4's "Opcode set (design-level)"; operand widths are fixed
// little-endian 1- or 2-byte fields (informatter-nilan/compiler/code.go's
// OpCodeDefinition{Name, OperandWidths} pattern, adapted from nilan's
// big-endian encoding to the little-endian widths spec.md §6 requires).
type Opcode uint8

const ( //nolint:revive
	NOP Opcode = iota

	CONSTANT // CONSTANT idx16        -> value

	TRUE  // TRUE  -> true
	FALSE // FALSE -> false
	NIL   // NIL   -> nil

	ADD      // a b -> a+b
	SUBTRACT // a b -> a-b
	MULTIPLY // a b -> a*b
	DIVIDE   // a b -> a/b
	MOD      // a b -> a%b
	NEGATE   // a -> -a

	LESS    // a b -> bool
	GREATER // a b -> bool
	EQUAL   // a b -> bool
	NOT     // a -> bool

	GET_LOCAL   // slot8   -> value
	SET_LOCAL   // slot8, value -> value (not popped; see compiler.go's compileExpr doc)
	GET_UPVALUE // i8      -> value
	SET_UPVALUE // i8, value -> value (not popped)
	CLOSE_UPVALUE

	GET_PROP // name_idx16, obj -> value
	SET_PROP // name_idx16, obj, value -> value (not popped)
	ADD_PROP // name_idx16, class, value -> -
	GET_SIZE // obj -> int
	SET_SIZE // obj, int -> -
	GET_KEYS // obj -> list
	GET_VALUES

	GET_ELEMENT // coll, idx -> value
	SET_ELEMENT // coll, idx, value -> value (not popped)
	IN_LIST     // elem, list -> bool

	JUMP          // off16
	JUMP_IF_FALSE // off16, cond -> cond
	JUMP_IF_TRUE  // off16, cond -> cond
	JUMP_BACK     // off16

	CALL   // arity8, callee, args... -> result
	RETURN // value -> (popped by caller)

	FUN // const16, uv_count8, (is_local8, index8)*uv_count -> closure
	CLASS
	INSTANCE
	LIST // const16 (element default) -> empty list
	MAP  // const16 (value default)   -> empty map

	// CAST is not one of spec.md §4.4's listed opcodes (that list is itself
	// marked "design-level"), but `expr as type` (ast.Cast) has to compile to
	// something: CAST's const16 operand indexes a constant holding the
	// target ValueKind (as an Int), and the VM converts the popped value at
	// runtime (Int<->Float<->Byte<->String, best-effort).
	CAST // const16, value -> converted value

	POP

	opcodeMax
)

var opcodeNames = [...]string{
	NOP:           "nop",
	CONSTANT:      "constant",
	TRUE:          "true",
	FALSE:         "false",
	NIL:           "nil",
	ADD:           "add",
	SUBTRACT:      "subtract",
	MULTIPLY:      "multiply",
	DIVIDE:        "divide",
	MOD:           "mod",
	NEGATE:        "negate",
	LESS:          "less",
	GREATER:       "greater",
	EQUAL:         "equal",
	NOT:           "not",
	GET_LOCAL:     "get_local",
	SET_LOCAL:     "set_local",
	GET_UPVALUE:   "get_upvalue",
	SET_UPVALUE:   "set_upvalue",
	CLOSE_UPVALUE: "close_upvalue",
	GET_PROP:      "get_prop",
	SET_PROP:      "set_prop",
	ADD_PROP:      "add_prop",
	GET_SIZE:      "get_size",
	SET_SIZE:      "set_size",
	GET_KEYS:      "get_keys",
	GET_VALUES:    "get_values",
	GET_ELEMENT:   "get_element",
	SET_ELEMENT:   "set_element",
	IN_LIST:       "in_list",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	JUMP_IF_TRUE:  "jump_if_true",
	JUMP_BACK:     "jump_back",
	CALL:          "call",
	RETURN:        "return",
	FUN:           "fun",
	CLASS:         "class",
	INSTANCE:      "instance",
	LIST:          "list",
	MAP:           "map",
	CAST:          "cast",
	POP:           "pop",
}

func (op Opcode) String() string {
	if op < opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// operandWidths gives the fixed byte width of each operand for opcodes with
// a uniform operand shape. FUN has a variable-length tail (uv_count8 pairs)
// and is handled specially by the emitter/disassembler instead of through
// this table.
var operandWidths = map[Opcode][]int{
	CONSTANT:      {2},
	GET_LOCAL:     {1},
	SET_LOCAL:     {1},
	GET_UPVALUE:   {1},
	SET_UPVALUE:   {1},
	GET_PROP:      {2},
	SET_PROP:      {2},
	ADD_PROP:      {2},
	JUMP:          {2},
	JUMP_IF_FALSE: {2},
	JUMP_IF_TRUE:  {2},
	JUMP_BACK:     {2},
	CALL:          {1},
	CLASS:         {2},
	LIST:          {2},
	MAP:           {2},
	CAST:          {2},
}

// isJump reports whether op carries a 16-bit code-offset operand patched by
// the compiler's emit_jump/patch_jump helpers.
func isJump(op Opcode) bool {
	switch op {
	case JUMP, JUMP_IF_FALSE, JUMP_IF_TRUE, JUMP_BACK:
		return true
	default:
		return false
	}
}
