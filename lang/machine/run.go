package machine

import (
	"fmt"
	"os"

	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/object"
)

// run is the dispatch loop: one byte read, one switch, repeat, until the
// outermost frame returns (spec.md §4.5: "Classic tight loop reading one
// byte and switching; immediate operand widths are known per opcode").
// frame is re-fetched from vm.frames at the top of every iteration rather
// than held across calls/returns, since CALL/RETURN push and pop frames.
func (vm *VM) run() (object.Value, error) {
	for {
		frame := &vm.frames[vm.frameCount-1]
		code := frame.closure.Fn.Chunk.Code
		line := frame.closure.Fn.Chunk.Lines[frame.ip]
		op := compiler.Opcode(code[frame.ip])
		frame.ip++

		if vm.Trace {
			fmt.Fprintf(os.Stderr, "%04d %-14s\n", frame.ip-1, op)
		}

		var err error
		switch op {
		case compiler.NOP:

		case compiler.CONSTANT:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			err = vm.push(frame.closure.Fn.Chunk.Constants[idx])

		case compiler.TRUE:
			err = vm.push(object.Bool(true))
		case compiler.FALSE:
			err = vm.push(object.Bool(false))
		case compiler.NIL:
			err = vm.push(object.Nil)

		case compiler.ADD, compiler.SUBTRACT, compiler.MULTIPLY, compiler.DIVIDE, compiler.MOD:
			err = vm.arith(op, line)
		case compiler.NEGATE:
			v := vm.pop()
			switch v.Kind {
			case object.VInt:
				err = vm.push(object.Int(-v.I))
			case object.VFloat:
				err = vm.push(object.Float(-v.F))
			default:
				err = vm.runtimeErrf(line, "cannot negate %s", v.TypeName())
			}

		case compiler.LESS, compiler.GREATER:
			err = vm.compare(op, line)
		case compiler.EQUAL:
			b := vm.pop()
			a := vm.pop()
			err = vm.push(object.Bool(object.Equal(a, b)))
		case compiler.NOT:
			err = vm.push(object.Bool(!truthy(vm.pop())))

		case compiler.GET_LOCAL:
			slot := code[frame.ip]
			frame.ip++
			err = vm.push(vm.stack[frame.base+int(slot)])
		case compiler.SET_LOCAL:
			slot := code[frame.ip]
			frame.ip++
			vm.stack[frame.base+int(slot)] = vm.peek(0)
		case compiler.GET_UPVALUE:
			idx := code[frame.ip]
			frame.ip++
			err = vm.push(frame.closure.Upvalues[idx].Get())
		case compiler.SET_UPVALUE:
			idx := code[frame.ip]
			frame.ip++
			frame.closure.Upvalues[idx].Set(vm.peek(0))
		case compiler.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case compiler.GET_PROP:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			name := frame.closure.Fn.Chunk.Constants[idx].Obj.(*object.String)
			var v object.Value
			if v, err = vm.getProp(vm.pop(), name, line); err == nil {
				err = vm.push(v)
			}
		case compiler.SET_PROP:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			name := frame.closure.Fn.Chunk.Constants[idx].Obj.(*object.String)
			val := vm.pop()
			obj := vm.pop()
			if err = vm.setProp(obj, name, val, line); err == nil {
				err = vm.push(val)
			}
		case compiler.ADD_PROP:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			name := frame.closure.Fn.Chunk.Constants[idx].Obj.(*object.String)
			val := vm.pop()
			sv := vm.peek(0).Obj.(*object.Struct)
			if _, existed := sv.Props.Get(name); !existed {
				sv.Order = append(sv.Order, name)
			}
			sv.Props.Set(name, val)

		case compiler.GET_SIZE:
			v := vm.pop()
			switch o := v.Obj.(type) {
			case *object.String:
				err = vm.push(object.Int(int32(len(o.Chars))))
			case *object.List:
				err = vm.push(object.Int(int32(o.Len())))
			default:
				err = vm.runtimeErrf(line, "%s has no size", v.TypeName())
			}
		case compiler.SET_SIZE:
			n := vm.pop()
			obj := vm.pop()
			l, ok := obj.Obj.(*object.List)
			if !ok {
				err = vm.runtimeErrf(line, "%s has no resizable size", obj.TypeName())
				break
			}
			l.SetSize(int(n.I))
			err = vm.push(n)
		case compiler.GET_KEYS:
			m := vm.pop().Obj.(*object.Map)
			keys := m.Keys(object.Nil)
			if err = vm.push(object.FromObj(keys)); err == nil {
				vm.Alloc.Track(keys)
			}
		case compiler.GET_VALUES:
			m := vm.pop().Obj.(*object.Map)
			values := m.Values()
			if err = vm.push(object.FromObj(values)); err == nil {
				vm.Alloc.Track(values)
			}

		case compiler.GET_ELEMENT:
			idx := vm.pop()
			coll := vm.pop()
			var v object.Value
			if v, err = vm.getElement(coll, idx, line); err == nil {
				err = vm.push(v)
			}
		case compiler.SET_ELEMENT:
			val := vm.pop()
			idx := vm.pop()
			coll := vm.pop()
			if err = vm.setElement(coll, idx, val, line); err == nil {
				err = vm.push(val)
			}
		case compiler.IN_LIST:
			list := vm.pop()
			elem := vm.pop()
			found := false
			if l, ok := list.Obj.(*object.List); ok {
				for _, e := range l.Elems {
					if object.Equal(e, elem) {
						found = true
						break
					}
				}
			}
			err = vm.push(object.Bool(found))

		case compiler.JUMP:
			off := readU16(code, frame.ip)
			frame.ip = frame.ip + 2 + int(off)
		case compiler.JUMP_IF_FALSE:
			off := readU16(code, frame.ip)
			frame.ip += 2
			if !truthy(vm.peek(0)) {
				frame.ip += int(off)
			}
		case compiler.JUMP_IF_TRUE:
			off := readU16(code, frame.ip)
			frame.ip += 2
			if truthy(vm.peek(0)) {
				frame.ip += int(off)
			}
		case compiler.JUMP_BACK:
			off := readU16(code, frame.ip)
			frame.ip = frame.ip + 2 - int(off)

		case compiler.CALL:
			arity := int(code[frame.ip])
			frame.ip++
			err = vm.callValue(vm.peek(arity), arity, line)

		case compiler.RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frameCount--
			vm.sp = frame.base
			if vm.frameCount == 0 {
				return result, nil
			}
			err = vm.push(result)

		case compiler.FUN:
			err = vm.execFun(frame, code)

		case compiler.CLASS:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			sv := frame.closure.Fn.Chunk.Constants[idx].Obj.(*object.Struct)
			vm.inheritProps(sv)
			err = vm.push(object.FromObj(sv))

		case compiler.INSTANCE:
			sv := vm.pop().Obj.(*object.Struct)
			inst := object.NewInstance(sv)
			// Root inst (push) before Track: Track can trigger an inline
			// collection (Heap.link), which would sweep inst the instant
			// it's born if it weren't already reachable from the stack.
			if err = vm.push(object.FromObj(inst)); err == nil {
				vm.Alloc.Track(inst)
			}

		case compiler.LIST:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			l := object.NewList(frame.closure.Fn.Chunk.Constants[idx])
			if err = vm.push(object.FromObj(l)); err == nil {
				vm.Alloc.Track(l)
			}
		case compiler.MAP:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			m := object.NewMap(frame.closure.Fn.Chunk.Constants[idx])
			if err = vm.push(object.FromObj(m)); err == nil {
				vm.Alloc.Track(m)
			}

		case compiler.CAST:
			idx := readU16(code, frame.ip)
			frame.ip += 2
			kind := object.ValueKind(frame.closure.Fn.Chunk.Constants[idx].I)
			var cast object.Value
			if cast, err = vm.cast(vm.pop(), kind, line); err == nil {
				err = vm.push(cast)
			}

		case compiler.POP:
			vm.pop()

		default:
			err = vm.runtimeErrf(line, "internal error: unimplemented opcode %s", op)
		}

		if err != nil {
			return object.Nil, err
		}
	}
}
