package object

// Struct is a class template: a name, an optional superclass and the
// default-value initializers for each declared property, compiled into the
// class's own constant context (spec.md §3: "ObjStruct", Glossary: "Struct —
// nominal record type with single inheritance; fields have default-value
// initializers compiled into the class template").
type Struct struct {
	Header
	Name  *String
	Super *Struct // nil if no superclass
	Props *Table  // property name -> default Value, including inherited ones
	Order []*String
}

func (s *Struct) Kind() Kind     { return KStruct }
func (s *Struct) String() string { return "<struct " + s.Name.String() + ">" }

// IsSubclassOf walks the Super chain, per spec.md §4.3's is_substruct.
func (s *Struct) IsSubclassOf(other *Struct) bool {
	for c := s; c != nil; c = c.Super {
		if c == other {
			return true
		}
	}
	return false
}

// Instance is a runtime record whose shape was defined by a Struct
// template; OP_INSTANCE clones the template's property table into a fresh
// one (spec.md §4.5: "INSTANCE pops the struct template from stack, clones
// its property table initialized to the class defaults").
type Instance struct {
	Header
	Class  *Struct
	Fields *Table
}

func (i *Instance) Kind() Kind     { return KInstance }
func (i *Instance) String() string { return "<" + i.Class.Name.String() + " instance>" }

// NewInstance clones class's default property table.
func NewInstance(class *Struct) *Instance {
	fields := NewTable()
	for _, name := range class.Order {
		v, _ := class.Props.Get(name)
		fields.Set(name, v)
	}
	return &Instance{Class: class, Fields: fields}
}

// Get reads a property, falling through to the class's defaults if name is
// absent from the instance's own table; NewInstance copies every default the
// class holds at construction, so only names missing then fall through (spec.md §4.5:
// "property read falls through to the class table if absent").
func (i *Instance) Get(name *String) (Value, bool) {
	if v, ok := i.Fields.Get(name); ok {
		return v, true
	}
	return i.Class.Props.Get(name)
}

// Enum is a set of named integer constants (spec.md §3: "Enum { name,
// props: Table<name -> Int> }").
type Enum struct {
	Header
	Name  *String
	Props *Table // property name -> Int Value
	Order []*String
}

func (e *Enum) Kind() Kind     { return KEnum }
func (e *Enum) String() string { return "<enum " + e.Name.String() + ">" }
