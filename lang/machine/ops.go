package machine

import (
	"bytes"
	"strconv"

	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/object"
)

// arith implements spec.md §4.5's arithmetic semantics: Int+Int->Int,
// Float+Float->Float, String+String->concatenation (a freshly interned
// string) for ADD only; the other four operators are numeric-only. Integer
// division truncates toward zero and MOD is the C '%' on Int, both of which
// Go's own / and % already give for int32 operands.
func (vm *VM) arith(op compiler.Opcode, line int32) error {
	b := vm.pop()
	a := vm.pop()

	if op == compiler.ADD && a.Kind == object.VObject && b.Kind == object.VObject {
		as, aok := a.Obj.(*object.String)
		bs, bok := b.Obj.(*object.String)
		if aok && bok {
			s := vm.Alloc.Intern(append(append([]byte(nil), as.Chars...), bs.Chars...))
			return vm.push(object.FromObj(s))
		}
	}

	if a.Kind != b.Kind || (a.Kind != object.VInt && a.Kind != object.VFloat) {
		return vm.runtimeErrf(line, "arithmetic requires matching Int or Float operands, got %s and %s", a.TypeName(), b.TypeName())
	}

	if a.Kind == object.VInt {
		if (op == compiler.DIVIDE || op == compiler.MOD) && b.I == 0 {
			return vm.runtimeErrf(line, "division by zero")
		}
		switch op {
		case compiler.ADD:
			return vm.push(object.Int(a.I + b.I))
		case compiler.SUBTRACT:
			return vm.push(object.Int(a.I - b.I))
		case compiler.MULTIPLY:
			return vm.push(object.Int(a.I * b.I))
		case compiler.DIVIDE:
			return vm.push(object.Int(a.I / b.I))
		case compiler.MOD:
			return vm.push(object.Int(a.I % b.I))
		}
	}

	switch op {
	case compiler.ADD:
		return vm.push(object.Float(a.F + b.F))
	case compiler.SUBTRACT:
		return vm.push(object.Float(a.F - b.F))
	case compiler.MULTIPLY:
		return vm.push(object.Float(a.F * b.F))
	case compiler.DIVIDE:
		if b.F == 0 {
			return vm.runtimeErrf(line, "division by zero")
		}
		return vm.push(object.Float(a.F / b.F))
	}
	return vm.runtimeErrf(line, "internal error: unreachable arithmetic opcode %s", op)
}

// compare implements LESS/GREATER for Int, Float and String (byte-
// lexicographic, per spec.md §4.5).
func (vm *VM) compare(op compiler.Opcode, line int32) error {
	b := vm.pop()
	a := vm.pop()

	var cmp int
	switch {
	case a.Kind == object.VInt && b.Kind == object.VInt:
		cmp = int(a.I) - int(b.I)
	case a.Kind == object.VFloat && b.Kind == object.VFloat:
		switch {
		case a.F < b.F:
			cmp = -1
		case a.F > b.F:
			cmp = 1
		}
	case a.Kind == object.VObject && b.Kind == object.VObject:
		as, aok := a.Obj.(*object.String)
		bs, bok := b.Obj.(*object.String)
		if !aok || !bok {
			return vm.runtimeErrf(line, "cannot compare %s and %s", a.TypeName(), b.TypeName())
		}
		cmp = bytes.Compare(as.Chars, bs.Chars)
	default:
		return vm.runtimeErrf(line, "cannot compare %s and %s", a.TypeName(), b.TypeName())
	}

	if op == compiler.LESS {
		return vm.push(object.Bool(cmp < 0))
	}
	return vm.push(object.Bool(cmp > 0))
}

// getProp reads a struct instance or enum member property (spec.md §4.5:
// "property read falls through to the class table if absent").
func (vm *VM) getProp(obj object.Value, name *object.String, line int32) (object.Value, error) {
	if obj.Kind != object.VObject {
		return object.Nil, vm.runtimeErrf(line, "%s has no property %q", obj.TypeName(), name)
	}
	switch o := obj.Obj.(type) {
	case *object.Instance:
		if v, ok := o.Get(name); ok {
			return v, nil
		}
	case *object.Enum:
		if v, ok := o.Props.Get(name); ok {
			return v, nil
		}
	}
	return object.Nil, vm.runtimeErrf(line, "%s has no property %q", obj.TypeName(), name)
}

// setProp writes an instance's own property table (spec.md §4.5: "Property
// assignment uses the instance's own table").
func (vm *VM) setProp(obj object.Value, name *object.String, val object.Value, line int32) error {
	inst, ok := obj.Obj.(*object.Instance)
	if !ok {
		return vm.runtimeErrf(line, "cannot set property %q on %s", name, obj.TypeName())
	}
	inst.Fields.Set(name, val)
	return nil
}

// getElement implements GET_ELEMENT for String (single-byte substring, a
// freshly interned string), List and Map (missing Map keys fall back to
// the map's declared value default).
func (vm *VM) getElement(coll, idx object.Value, line int32) (object.Value, error) {
	switch o := coll.Obj.(type) {
	case *object.String:
		i := int(idx.I)
		if i < 0 || i >= len(o.Chars) {
			return object.Nil, vm.runtimeErrf(line, "string index %d out of range", i)
		}
		return object.FromObj(vm.Alloc.Intern(o.Chars[i : i+1])), nil
	case *object.List:
		i := int(idx.I)
		v, ok := o.Get(i)
		if !ok {
			return object.Nil, vm.runtimeErrf(line, "list index %d out of range", i)
		}
		return v, nil
	case *object.Map:
		key := idx.Obj.(*object.String)
		if v, ok := o.Table.Get(key); ok {
			return v, nil
		}
		return o.Default, nil
	default:
		return object.Nil, vm.runtimeErrf(line, "cannot index %s", coll.TypeName())
	}
}

// setElement implements SET_ELEMENT for List and Map.
func (vm *VM) setElement(coll, idx, val object.Value, line int32) error {
	switch o := coll.Obj.(type) {
	case *object.List:
		i := int(idx.I)
		if !o.Set(i, val) {
			return vm.runtimeErrf(line, "list index %d out of range", i)
		}
		return nil
	case *object.Map:
		key := idx.Obj.(*object.String)
		o.Table.Set(key, val)
		return nil
	default:
		return vm.runtimeErrf(line, "cannot index-assign %s", coll.TypeName())
	}
}

// inheritProps fills sv's own property table with its superclass's
// already-populated defaults before this struct's own ADD_PROP instructions
// run (see lang/compiler/compiler.go's compileDeclStruct doc comment and
// DESIGN.md): idempotent, so re-executing a struct declaration's bytecode
// (e.g. one nested in a function called more than once) never duplicates
// inherited entries.
func (vm *VM) inheritProps(sv *object.Struct) {
	if sv.Props == nil {
		sv.Props = object.NewTable()
	}
	if sv.Super == nil {
		return
	}
	for _, name := range sv.Super.Order {
		if _, ok := sv.Props.Get(name); ok {
			continue
		}
		v, _ := sv.Super.Props.Get(name)
		sv.Props.Set(name, v)
		sv.Order = append(sv.Order, name)
	}
}

// cast implements CAST's runtime conversions: best-effort Int<->Float<->
// Byte<->String, per opcode.go's CAST doc comment.
func (vm *VM) cast(v object.Value, kind object.ValueKind, line int32) (object.Value, error) {
	switch kind {
	case object.VInt:
		switch v.Kind {
		case object.VInt:
			return v, nil
		case object.VFloat:
			return object.Int(int32(v.F)), nil
		case object.VByte:
			return object.Int(int32(v.Byt)), nil
		case object.VObject:
			if s, ok := v.Obj.(*object.String); ok {
				n, err := strconv.ParseInt(s.String(), 10, 32)
				if err != nil {
					return object.Nil, vm.runtimeErrf(line, "cannot cast %q to Int", s.String())
				}
				return object.Int(int32(n)), nil
			}
		}
	case object.VFloat:
		switch v.Kind {
		case object.VFloat:
			return v, nil
		case object.VInt:
			return object.Float(float64(v.I)), nil
		case object.VByte:
			return object.Float(float64(v.Byt)), nil
		case object.VObject:
			if s, ok := v.Obj.(*object.String); ok {
				f, err := strconv.ParseFloat(s.String(), 64)
				if err != nil {
					return object.Nil, vm.runtimeErrf(line, "cannot cast %q to Float", s.String())
				}
				return object.Float(f), nil
			}
		}
	case object.VByte:
		switch v.Kind {
		case object.VByte:
			return v, nil
		case object.VInt:
			return object.Byte(byte(v.I)), nil
		case object.VFloat:
			return object.Byte(byte(v.F)), nil
		case object.VObject:
			if s, ok := v.Obj.(*object.String); ok && len(s.Chars) == 1 {
				return object.Byte(s.Chars[0]), nil
			}
		}
	case object.VObject:
		return object.FromObj(vm.Alloc.Intern([]byte(v.String()))), nil
	}
	return object.Nil, vm.runtimeErrf(line, "cannot cast %s to target type", v.TypeName())
}

// execFun implements OP_FUN's upvalue capture: for each declared upvalue,
// either find-or-create an open upvalue over the enclosing frame's local
// slot (is_local) or inherit the pointer from the enclosing closure
// (spec.md §4.5).
func (vm *VM) execFun(frame *CallFrame, code []byte) error {
	constIdx := readU16(code, frame.ip)
	frame.ip += 2
	uvCount := int(code[frame.ip])
	frame.ip++

	fn := frame.closure.Fn.Chunk.Constants[constIdx].Obj.(*object.Function)
	upvalues := make([]*object.Upvalue, uvCount)
	for i := 0; i < uvCount; i++ {
		isLocal := code[frame.ip] != 0
		idx := int(code[frame.ip+1])
		frame.ip += 2
		if isLocal {
			upvalues[i] = vm.captureUpvalue(frame.base + idx)
		} else {
			upvalues[i] = frame.closure.Upvalues[idx]
		}
	}

	cl := &object.Closure{Fn: fn, Upvalues: upvalues}
	if err := vm.push(object.FromObj(cl)); err != nil {
		return err
	}
	vm.Alloc.Track(cl)
	return nil
}
