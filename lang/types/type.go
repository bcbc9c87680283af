// Package types implements Quill's static type model: the tagged-variant
// Type used by the compiler's embedded checker to type nodes, parameters,
// fields and return values, and to compare them for compatibility.
package types

import "github.com/quillang/quill/lang/object"

// Kind discriminates the Type variants (spec.md §3/§4.3).
type Kind uint8

const (
	KInt Kind = iota
	KFloat
	KBool
	KByte
	KString
	KNil
	KFile
	KInfer      // declared-but-not-yet-inferred, used by `:=`
	KDecl       // wraps a custom type being declared (forward reference)
	KArray      // ordered sequence of Type, used for Fun params/returns
	KFun        // { Params, Returns Array }
	KStruct     // { Name, Super, Props }
	KEnum       // { Name, Props }
	KIdentifier // unresolved reference, resolved against enclosing scopes
	KList       // { Element }
	KMap        // { Value }
)

// Type is a tagged variant, not an interface: every Type carries every
// field its Kind might need, mirroring object.Value's design (spec.md §9:
// prefer closed sum types over interface-based polymorphism).
type Type struct {
	Kind Kind

	// Opt chains this type with an alternative: "this or Opt or Opt.Opt or
	// …". Used for native-function polymorphic parameters such as print's
	// String|Int|Byte|Float|Nil|Enum (spec.md §3).
	Opt *Type

	Name *object.String // Struct, Enum, Identifier

	Super *Type            // Struct; nil if no superclass
	Props map[string]*Type // Struct (name -> field Type), Enum (name -> Int, represented as KInt)
	Order []string         // declaration order of Props, for stable iteration

	Element *Type // List
	Value   *Type // Map

	Params  []*Type // Fun
	Returns []*Type // Fun

	Decl *Type // Decl: the type being declared, filled in once known
}

var (
	Int    = &Type{Kind: KInt}
	Float  = &Type{Kind: KFloat}
	Bool   = &Type{Kind: KBool}
	Byte   = &Type{Kind: KByte}
	String = &Type{Kind: KString}
	Nil    = &Type{Kind: KNil}
	File   = &Type{Kind: KFile}
)

// NewInfer returns a fresh Infer placeholder for a `:=` declaration; it is
// not shared since the compiler overwrites one specific instance once the
// initializer's type is known.
func NewInfer() *Type { return &Type{Kind: KInfer} }

func NewIdentifier(name *object.String) *Type {
	return &Type{Kind: KIdentifier, Name: name}
}

func NewList(element *Type) *Type { return &Type{Kind: KList, Element: element} }
func NewMap(value *Type) *Type    { return &Type{Kind: KMap, Value: value} }

func NewFun(params, returns []*Type) *Type {
	return &Type{Kind: KFun, Params: params, Returns: returns}
}

func NewStruct(name *object.String, super *Type) *Type {
	return &Type{Kind: KStruct, Name: name, Super: super, Props: map[string]*Type{}}
}

func NewEnum(name *object.String) *Type {
	return &Type{Kind: KEnum, Name: name, Props: map[string]*Type{}}
}

// WithOpt chains an alternative type onto t, used to build the option
// chains native-function signatures rely on (e.g. print's parameter type).
func WithOpt(t *Type, opt *Type) *Type {
	t.Opt = opt
	return t
}

// discriminators walks t's option chain collecting every Kind seen.
func discriminators(t *Type) []Kind {
	var ks []Kind
	for c := t; c != nil; c = c.Opt {
		ks = append(ks, c.Kind)
	}
	return ks
}

func hasKind(ks []Kind, k Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

// SameType implements spec.md §4.3's same_type: Nil is compatible with
// anything (bottom type for optional positions); otherwise differing
// discriminators are reconciled via both sides' option chains; otherwise
// structural equality per variant.
func SameType(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == KNil || b.Kind == KNil {
		return true
	}
	if a.Kind != b.Kind {
		bs := discriminators(b)
		for c := a; c != nil; c = c.Opt {
			if hasKind(bs, c.Kind) {
				return true
			}
		}
		as := discriminators(a)
		return hasKind(as, b.Kind)
	}
	switch a.Kind {
	case KList:
		return SameType(a.Element, b.Element)
	case KMap:
		return SameType(a.Value, b.Value)
	case KFun:
		return sameTypeArray(a.Params, b.Params) && sameTypeArray(a.Returns, b.Returns)
	case KEnum:
		// A nil Name is the wildcard "any Enum" used by native-function
		// signatures such as print's String|Int|Byte|Float|Nil|Enum option
		// chain (spec.md §6) — there is no way to name a specific enum
		// there, since the native is declared before any user enum exists.
		if a.Name == nil || b.Name == nil {
			return true
		}
		return a.Name.Equal(b.Name)
	case KStruct, KIdentifier:
		return a.Name != nil && b.Name != nil && a.Name.Equal(b.Name)
	default:
		return true
	}
}

func sameTypeArray(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameType(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsSubstruct implements spec.md §4.3's is_substruct: walk sub's Super
// chain comparing names.
func IsSubstruct(sub, super *Type) bool {
	if sub == nil || super == nil || sub.Kind != KStruct || super.Kind != KStruct {
		return false
	}
	for c := sub; c != nil; c = c.Super {
		if c.Name.Equal(super.Name) {
			return true
		}
	}
	return false
}

// String renders a Type for error messages, following the teacher's
// value-printing style of delegating to a recursive switch rather than a
// String() method per struct (lang/types/*.go in the retrieval pack).
func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	switch t.Kind {
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KBool:
		return "bool"
	case KByte:
		return "byte"
	case KString:
		return "string"
	case KNil:
		return "nil"
	case KFile:
		return "file"
	case KInfer:
		return "<infer>"
	case KDecl:
		return "<decl>"
	case KArray:
		return "<array>"
	case KIdentifier:
		return t.Name.String()
	case KList:
		return "List<" + t.Element.String() + ">"
	case KMap:
		return "Map<" + t.Value.String() + ">"
	case KFun:
		s := "fun("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		s += ")"
		if len(t.Returns) > 0 {
			s += " ->"
			for _, r := range t.Returns {
				s += " " + r.String()
			}
		}
		return s
	case KStruct:
		return t.Name.String()
	case KEnum:
		return t.Name.String()
	default:
		return "<type>"
	}
}
