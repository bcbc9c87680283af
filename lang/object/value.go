package object

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the cases of Value, the tagged union every Quill
// runtime slot holds (spec.md §3: "Value (tagged union)").
type ValueKind uint8

const (
	VNil ValueKind = iota
	VInt
	VFloat
	VBool
	VByte
	VObject
)

// Value is the tagged union manipulated by the compiler's constant pool and
// the VM's stack and locals. It is a plain struct rather than an interface
// so that non-object values (Int, Float, Bool, Byte, Nil) never allocate,
// per spec.md §9's instruction to replace interface-heavy tagged unions
// with native sum types.
type Value struct {
	Kind ValueKind

	I   int32
	F   float64
	B   bool
	Byt byte
	Obj Obj
}

var Nil = Value{Kind: VNil}

func Int(i int32) Value     { return Value{Kind: VInt, I: i} }
func Float(f float64) Value { return Value{Kind: VFloat, F: f} }
func Bool(b bool) Value     { return Value{Kind: VBool, B: b} }
func Byte(b byte) Value     { return Value{Kind: VByte, Byt: b} }
func FromObj(o Obj) Value   { return Value{Kind: VObject, Obj: o} }

// IsNil reports whether v holds the Nil case.
func (v Value) IsNil() bool { return v.Kind == VNil }

// TypeName returns the short runtime type name used in the VM's runtime
// error messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case VNil:
		return "nil"
	case VInt:
		return "int"
	case VFloat:
		return "float"
	case VBool:
		return "bool"
	case VByte:
		return "byte"
	case VObject:
		return v.Obj.Kind().String()
	default:
		return "unknown"
	}
}

// String renders v using the deterministic conversions spec.md §9 mandates
// for the `string()`/`print()` natives: decimal for Int, 6-digit fixed for
// Float, "nil"/"true"/"false" for the rest, and each object's own String().
func (v Value) String() string {
	switch v.Kind {
	case VNil:
		return "nil"
	case VInt:
		return strconv.FormatInt(int64(v.I), 10)
	case VFloat:
		return strconv.FormatFloat(v.F, 'f', 6, 64)
	case VBool:
		if v.B {
			return "true"
		}
		return "false"
	case VByte:
		return strconv.FormatInt(int64(v.Byt), 10)
	case VObject:
		return v.Obj.String()
	default:
		return fmt.Sprintf("<invalid value kind %d>", v.Kind)
	}
}

// Equal implements the identity/value equality the VM's EQUAL opcode and the
// `in` operator rely on: objects compare by pointer (strings are interned,
// so byte-equal strings are also pointer-equal), everything else by value.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VNil:
		return true
	case VInt:
		return a.I == b.I
	case VFloat:
		return a.F == b.F
	case VBool:
		return a.B == b.B
	case VByte:
		return a.Byt == b.Byt
	case VObject:
		return a.Obj == b.Obj
	default:
		return false
	}
}
