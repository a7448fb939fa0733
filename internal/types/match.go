package types

// TypesMatch structurally compares a candidate method receiver/param type
// against a call-site type, treating Any as a wildcard on either side.
// Used both by inherent-method lookup and by the trait resolver's impl
// search, so the two agree on what "the same type" means.
func TypesMatch(a, b Type) bool {
	if _, ok := a.(*kindAny); ok {
		return true
	}
	if _, ok := b.(*kindAny); ok {
		return true
	}
	switch x := a.(type) {
	case *kindPrimitive:
		y, ok := b.(*kindPrimitive)
		return ok && x.Name == y.Name
	case *kindVar:
		y, ok := b.(*kindVar)
		return ok && x.ID == y.ID
	case *kindArray:
		y, ok := b.(*kindArray)
		return ok && TypesMatch(x.Elem, y.Elem)
	case *kindSet:
		y, ok := b.(*kindSet)
		return ok && TypesMatch(x.Elem, y.Elem)
	case *kindOptional:
		y, ok := b.(*kindOptional)
		return ok && TypesMatch(x.Inner, y.Inner)
	case *kindResult:
		y, ok := b.(*kindResult)
		return ok && TypesMatch(x.Inner, y.Inner)
	case *kindFuture:
		y, ok := b.(*kindFuture)
		return ok && TypesMatch(x.Inner, y.Inner)
	case *kindChannel:
		y, ok := b.(*kindChannel)
		return ok && TypesMatch(x.Inner, y.Inner)
	case *kindTuple:
		y, ok := b.(*kindTuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !TypesMatch(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *kindMapT:
		y, ok := b.(*kindMapT)
		return ok && TypesMatch(x.Key, y.Key) && TypesMatch(x.Value, y.Value)
	case *kindFunc:
		y, ok := b.(*kindFunc)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !TypesMatch(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return TypesMatch(x.Return, y.Return)
	case *kindStruct:
		y, ok := b.(*kindStruct)
		if !ok || x.Name != y.Name || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !TypesMatch(x.Fields[i].Type, y.Fields[i].Type) {
				return false
			}
		}
		return true
	case *kindNamed:
		y, ok := b.(*kindNamed)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !TypesMatch(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MethodTable stores inherent methods declared directly on a type, keyed by
// the type's rendered name then method name. Trait methods live in the
// traits package's ImplRegistry and are consulted only after this table
// misses, per the two-phase inherent-then-trait lookup order.
type MethodTable struct {
	byType map[string]map[string]*TypeScheme
}

func NewMethodTable() *MethodTable {
	return &MethodTable{byType: make(map[string]map[string]*TypeScheme)}
}

func (m *MethodTable) Register(targetType Type, method string, sc *TypeScheme) {
	key := targetType.String()
	if m.byType[key] == nil {
		m.byType[key] = make(map[string]*TypeScheme)
	}
	m.byType[key][method] = sc
}

// Lookup finds an inherent method declared on exactly targetType.
func (m *MethodTable) Lookup(targetType Type, method string) (*TypeScheme, bool) {
	methods, ok := m.byType[targetType.String()]
	if !ok {
		return nil, false
	}
	sc, ok := methods[method]
	return sc, ok
}
