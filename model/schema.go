package model

// BasicType is an integer value type bounded by [Min, Max].
type BasicType struct {
	Name string
	Min  int64
	Max  int64
}

// Contains reports whether v is a legal value.
func (b *BasicType) Contains(v int64) bool {
	return v >= b.Min && v <= b.Max
}

// Enum is a closed set of string tags.
type Enum struct {
	Name   string
	Values []string
}

// Has reports whether v is one of the enum's values.
func (e *Enum) Has(v string) bool {
	for _, s := range e.Values {
		if s == v {
			return true
		}
	}
	return false
}

// PropertySpec declares one property of an object structure.
type PropertySpec struct {
	Name     string
	TypeName string
	Visible  bool
}

// ObjectStructure is the declared property list of one map object type.
type ObjectStructure struct {
	Name       string
	Properties []PropertySpec
}

// Schema holds every type definition properties are typed against.
type Schema struct {
	BasicTypes         []*BasicType
	Enums              []*Enum
	Structures         []*ObjectStructure
	CollisionStructure []PropertySpec

	basicByName     map[string]*BasicType
	enumByName      map[string]*Enum
	structureByName map[string]*ObjectStructure
}

func (s *Schema) index() {
	s.basicByName = make(map[string]*BasicType, len(s.BasicTypes))
	for _, b := range s.BasicTypes {
		s.basicByName[b.Name] = b
	}
	s.enumByName = make(map[string]*Enum, len(s.Enums))
	for _, e := range s.Enums {
		s.enumByName[e.Name] = e
	}
	s.structureByName = make(map[string]*ObjectStructure, len(s.Structures))
	for _, st := range s.Structures {
		s.structureByName[st.Name] = st
	}
}

// TypeRef is the result of resolving a property type name. At most one of
// Basic and Enum is set.
type TypeRef struct {
	Basic *BasicType
	Enum  *Enum
}

// Found reports whether the name resolved.
func (t TypeRef) Found() bool { return t.Basic != nil || t.Enum != nil }

// Kind maps the resolution onto a PropertyKind.
func (t TypeRef) Kind() PropertyKind {
	switch {
	case t.Basic != nil:
		return PropertyBasic
	case t.Enum != nil:
		return PropertyEnum
	default:
		return PropertyUnresolved
	}
}

// FindType resolves a property type name, case-sensitively. A miss is a
// normal result, not an error.
func (s *Schema) FindType(name string) TypeRef {
	if s == nil {
		return TypeRef{}
	}
	if b, ok := s.basicByName[name]; ok {
		return TypeRef{Basic: b}
	}
	if e, ok := s.enumByName[name]; ok {
		return TypeRef{Enum: e}
	}
	return TypeRef{}
}

// FindType resolves a property type name against the document's schema.
func (d *Document) FindType(name string) TypeRef {
	return d.schema.FindType(name)
}

// Structure looks up an object structure by name.
func (s *Schema) Structure(name string) (*ObjectStructure, bool) {
	if s == nil {
		return nil, false
	}
	st, ok := s.structureByName[name]
	return st, ok
}

func (s *Schema) defaults(specs []PropertySpec) []Property {
	out := make([]Property, 0, len(specs))
	for _, spec := range specs {
		p := Property{Name: spec.Name, TypeName: spec.TypeName, Visible: spec.Visible}
		ref := s.FindType(spec.TypeName)
		p.Kind = ref.Kind()
		switch p.Kind {
		case PropertyBasic:
			p.Basic = clamp64(0, ref.Basic.Min, ref.Basic.Max)
		case PropertyEnum:
			if len(ref.Enum.Values) > 0 {
				p.Enum = ref.Enum.Values[0]
			}
		default:
			p.Raw = []byte("null")
		}
		out = append(out, p)
	}
	return out
}

func clamp64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
