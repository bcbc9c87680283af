package object

// List is Quill's List<T>: an ordered, growable sequence with a known
// element-type default used when growing (spec.md §9's resolution of the
// List.size=N open question: "truncation to N; new slots default to the
// List's default value on grow").
type List struct {
	Header
	Elems   []Value
	Default Value
}

func NewList(elemDefault Value) *List { return &List{Default: elemDefault} }

func (l *List) Kind() Kind { return KList }
func (l *List) String() string {
	s := "["
	for i, e := range l.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

func (l *List) Len() int { return len(l.Elems) }

func (l *List) Get(i int) (Value, bool) {
	if i < 0 || i >= len(l.Elems) {
		return Nil, false
	}
	return l.Elems[i], true
}

func (l *List) Set(i int, v Value) bool {
	if i < 0 || i >= len(l.Elems) {
		return false
	}
	l.Elems[i] = v
	return true
}

func (l *List) Append(v Value) { l.Elems = append(l.Elems, v) }

// SetSize implements OP_SET_SIZE: truncates when n is smaller, and on grow
// fills new slots with the list's Default value.
func (l *List) SetSize(n int) {
	if n <= len(l.Elems) {
		l.Elems = l.Elems[:n]
		return
	}
	for len(l.Elems) < n {
		l.Elems = append(l.Elems, l.Default)
	}
}

// Map is Quill's Map<T>: string keys, a single declared value type, backed
// by the shared open-addressed Table (spec.md §3: "Map { value: Type }").
type Map struct {
	Header
	Table   *Table
	Default Value
}

func NewMap(valueDefault Value) *Map { return &Map{Table: NewTable(), Default: valueDefault} }

func (m *Map) Kind() Kind { return KMap }
func (m *Map) String() string {
	s := "{"
	for i, k := range m.Table.Keys() {
		if i > 0 {
			s += ", "
		}
		v, _ := m.Table.Get(k)
		s += k.String() + ": " + v.String()
	}
	return s + "}"
}

// Keys returns the map's keys as a List<String>, backing the `keys`
// pseudo-property (spec.md §4.4).
func (m *Map) Keys(keyDefault Value) *List {
	l := NewList(keyDefault)
	for _, k := range m.Table.Keys() {
		l.Append(FromObj(k))
	}
	return l
}

// Values returns the map's values as a List<V>, backing the `values`
// pseudo-property.
func (m *Map) Values() *List {
	l := NewList(m.Default)
	for _, k := range m.Table.Keys() {
		v, _ := m.Table.Get(k)
		l.Append(v)
	}
	return l
}
