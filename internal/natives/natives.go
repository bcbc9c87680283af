// Package natives builds Quill's native function table (spec.md §6): the
// fixed set of extern bindings every program gets for free, without any
// import or module system. Quill's compiler has no GET_GLOBAL/SET_GLOBAL
// opcode (spec.md §4.4), so natives are wired in as ordinary top-level
// locals — see lang/compiler.Compile's natives parameter and
// lang/machine.VM.Run's natives parameter, which this package's two
// accessors (Bindings, Values) feed in lockstep.
package natives

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/object"
	"github.com/quillang/quill/lang/types"
)

// entry pairs one native's compile-time binding with its runtime value, kept
// together so Bindings and Values can never drift out of order relative to
// each other — both are derived from the same Set.order slice.
type entry struct {
	binding compiler.NativeBinding
	value   object.Value
}

// Set is the bound native function table for one program run: clock() is
// relative to the Set's own construction time, and print/input read and
// write the given stdio rather than os.Stdout/os.Stdin directly, so a
// caller (internal/maincmd, or a test) can redirect both.
type Set struct {
	order []entry
}

// New builds the full native table (spec.md §6) bound to out/in for print
// and input, and alloc for every native that must allocate a heap object
// (open's File, read_bytes' List<Byte>). started is clock()'s epoch.
func New(alloc object.Allocator, out io.Writer, in io.Reader) *Set {
	s := &Set{}
	started := time.Now()
	reader := bufio.NewReader(in)
	rng := rand.New(rand.NewSource(started.UnixNano()))

	s.add("clock", types.NewFun(nil, []*types.Type{types.Float}), 0,
		func(args []object.Value) (object.Value, error) {
			return object.Float(time.Since(started).Seconds()), nil
		})

	printType := types.WithOpt(&types.Type{Kind: types.KString},
		types.WithOpt(&types.Type{Kind: types.KInt},
			types.WithOpt(&types.Type{Kind: types.KByte},
				types.WithOpt(&types.Type{Kind: types.KFloat},
					types.WithOpt(&types.Type{Kind: types.KNil},
						&types.Type{Kind: types.KEnum})))))
	s.add("print", types.NewFun([]*types.Type{printType}, []*types.Type{types.Nil}), 1,
		func(args []object.Value) (object.Value, error) {
			text := args[0].String()
			if args[0].Kind == object.VObject {
				if str, ok := args[0].Obj.(*object.String); ok {
					text = expandEscapes(str.String())
				}
			}
			fmt.Fprintln(out, text)
			return object.Nil, nil
		})

	s.add("input", types.NewFun(nil, []*types.Type{types.String}), 0,
		func(args []object.Value) (object.Value, error) {
			line, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return object.Nil, err
			}
			line = strings.TrimRight(line, "\r\n")
			return object.FromObj(alloc.Intern([]byte(line))), nil
		})

	s.add("open", types.NewFun([]*types.Type{types.String}, []*types.Type{types.File}), 1,
		func(args []object.Value) (object.Value, error) {
			name := args[0].Obj.(*object.String)
			f, err := object.OpenFile(name, name.String())
			if err != nil {
				return object.Nil, err
			}
			alloc.Track(f)
			return object.FromObj(f), nil
		})

	s.add("read_line", types.NewFun([]*types.Type{types.File}, []*types.Type{types.String}), 1,
		func(args []object.Value) (object.Value, error) {
			f := args[0].Obj.(*object.File)
			return object.FromObj(alloc.Intern([]byte(f.ReadLine()))), nil
		})

	s.add("read_all", types.NewFun([]*types.Type{types.File}, []*types.Type{types.String}), 1,
		func(args []object.Value) (object.Value, error) {
			f := args[0].Obj.(*object.File)
			all, ok := f.ReadAll()
			if !ok {
				return object.Nil, nil
			}
			return object.FromObj(alloc.Intern([]byte(all))), nil
		})

	s.add("read_bytes", types.NewFun([]*types.Type{types.File}, []*types.Type{types.NewList(types.Byte)}), 1,
		func(args []object.Value) (object.Value, error) {
			f := args[0].Obj.(*object.File)
			bs := f.ReadBytes()
			l := object.NewList(object.Byte(0))
			for _, b := range bs {
				l.Append(object.Byte(b))
			}
			alloc.Track(l)
			return object.FromObj(l), nil
		})

	s.add("append", types.NewFun([]*types.Type{types.File, types.String}, []*types.Type{types.Nil}), 2,
		func(args []object.Value) (object.Value, error) {
			f := args[0].Obj.(*object.File)
			return object.Nil, f.Append(args[1].Obj.(*object.String).String())
		})

	s.add("eof", types.NewFun([]*types.Type{types.File}, []*types.Type{types.Bool}), 1,
		func(args []object.Value) (object.Value, error) {
			return object.Bool(args[0].Obj.(*object.File).EOF()), nil
		})

	s.add("rewind", types.NewFun([]*types.Type{types.File}, []*types.Type{types.Nil}), 1,
		func(args []object.Value) (object.Value, error) {
			return object.Nil, args[0].Obj.(*object.File).Rewind()
		})

	s.add("clear", types.NewFun([]*types.Type{types.File}, []*types.Type{types.Nil}), 1,
		func(args []object.Value) (object.Value, error) {
			return object.Nil, args[0].Obj.(*object.File).Clear()
		})

	s.add("close", types.NewFun([]*types.Type{types.File}, []*types.Type{types.Nil}), 1,
		func(args []object.Value) (object.Value, error) {
			return object.Nil, args[0].Obj.(*object.File).Close()
		})

	s.add("is_digit", types.NewFun([]*types.Type{types.String}, []*types.Type{types.Bool}), 1,
		func(args []object.Value) (object.Value, error) {
			chars := args[0].Obj.(*object.String).Chars
			return object.Bool(len(chars) > 0 && isAllASCII(chars, isDigitByte)), nil
		})

	s.add("is_alpha", types.NewFun([]*types.Type{types.String}, []*types.Type{types.Bool}), 1,
		func(args []object.Value) (object.Value, error) {
			chars := args[0].Obj.(*object.String).Chars
			return object.Bool(len(chars) > 0 && isAllASCII(chars, isAlphaByte)), nil
		})

	s.add("random_uniform", types.NewFun([]*types.Type{types.Float, types.Float}, []*types.Type{types.Float}), 2,
		func(args []object.Value) (object.Value, error) {
			lo, hi := args[0].F, args[1].F
			return object.Float(lo + rng.Float64()*(hi-lo)), nil
		})

	expType := types.WithOpt(&types.Type{Kind: types.KFloat},
		types.WithOpt(&types.Type{Kind: types.KInt}, &types.Type{Kind: types.KByte}))
	s.add("exp", types.NewFun([]*types.Type{expType}, []*types.Type{types.Float}), 1,
		func(args []object.Value) (object.Value, error) {
			var x float64
			switch args[0].Kind {
			case object.VInt:
				x = float64(args[0].I)
			case object.VByte:
				x = float64(args[0].Byt)
			default:
				x = args[0].F
			}
			return object.Float(math.Exp(x)), nil
		})

	return s
}

// add registers one native, wrapping fn in an *object.Native and recording
// its compile-time signature alongside it so Bindings/Values stay paired.
func (s *Set) add(name string, fnType *types.Type, arity int, fn func([]object.Value) (object.Value, error)) {
	nameStr := object.NewString([]byte(name))
	native := &object.Native{Name: nameStr, Arity: arity, Fn: fn}
	s.order = append(s.order, entry{
		binding: compiler.NativeBinding{Name: name, Type: fnType},
		value:   object.FromObj(native),
	})
}

// Bindings returns the compile-time signature of every native, in
// registration order, for lang/compiler.Compile's natives parameter.
func (s *Set) Bindings() []compiler.NativeBinding {
	bs := make([]compiler.NativeBinding, len(s.order))
	for i, e := range s.order {
		bs[i] = e.binding
	}
	return bs
}

// Values returns the runtime *object.Native value of every native, in the
// same order Bindings uses, for lang/machine.VM.Run's natives parameter.
func (s *Set) Values() []object.Value {
	vs := make([]object.Value, len(s.order))
	for i, e := range s.order {
		vs[i] = e.value
	}
	return vs
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isAlphaByte(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

func isAllASCII(chars []byte, pred func(byte) bool) bool {
	for _, c := range chars {
		if !pred(c) {
			return false
		}
	}
	return true
}

// expandEscapes implements print's "\a \b \f \n \r \t \v \\ \' \" \?" escape
// expansion (spec.md §6) over a String argument's raw bytes; the scanner
// deliberately leaves string literals unexpanded (lang/scanner/scanner.go),
// so this is the one place in the pipeline that interprets them.
func expandEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '?':
			b.WriteByte('?')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
