package entity

// Value is one (name, value) pair.
type Value struct {
	Name  string
	Value any
}

// Values is an ordered field list. Order is the order the pairs were declared,
// never map iteration order.
type Values []Value

// V builds Values from alternating name/value arguments.
// It panics on an odd count or a non-string name, like a malformed literal would.
func V(pairs ...any) Values {
	if len(pairs)%2 != 0 {
		panic("entity.V: odd number of arguments")
	}
	vs := make(Values, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("entity.V: name must be a string")
		}
		vs = append(vs, Value{Name: name, Value: pairs[i+1]})
	}
	return vs
}

func (vs Values) Get(name string) (any, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of name in place or appends it.
func (vs Values) Set(name string, value any) Values {
	for i := range vs {
		if vs[i].Name == name {
			vs[i].Value = value
			return vs
		}
	}
	return append(vs, Value{Name: name, Value: value})
}

// WithoutNil drops pairs whose value is nil.
func (vs Values) WithoutNil() Values {
	out := make(Values, 0, len(vs))
	for _, v := range vs {
		if v.Value != nil {
			out = append(out, v)
		}
	}
	return out
}

// Pick keeps only the named pairs; an empty list keeps everything.
func (vs Values) Pick(names ...string) Values {
	if len(names) == 0 {
		return vs
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := make(Values, 0, len(names))
	for _, v := range vs {
		if keep[v.Name] {
			out = append(out, v)
		}
	}
	return out
}

// Names lists the pair names in order.
func (vs Values) Names() []string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return names
}
