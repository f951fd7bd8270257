package symbols

// Substitution maps type parameters to type arguments.
type Substitution map[*TypeParam]Type

// Substitute replaces the type parameters of t according to sub.
func Substitute(t Type, sub Substitution) Type {
	if len(sub) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case *TypeParam:
		if r, ok := sub[t]; ok && r != nil {
			return r
		}
		return t
	case *ArrayType:
		elem := Substitute(t.Elem, sub)
		if elem == t.Elem {
			return t
		}
		return &ArrayType{Elem: elem}
	case *PointerType:
		elem := Substitute(t.Elem, sub)
		if elem == t.Elem {
			return t
		}
		return &PointerType{Elem: elem}
	case *NamedType:
		if len(t.TypeArgs) == 0 {
			return t
		}
		args := make([]Type, len(t.TypeArgs))
		changed := false
		for i, a := range t.TypeArgs {
			args[i] = Substitute(a, sub)
			changed = changed || args[i] != a
		}
		if !changed {
			return t
		}
		return Instantiate(t.OriginalDefinition(), args)
	}
	return t
}

// Instantiate constructs the generic type def with args.
func Instantiate(def *NamedType, args []Type) *NamedType {
	sub := make(Substitution, len(args))
	for i, p := range def.TypeParams {
		if i < len(args) {
			sub[p] = args[i]
		}
	}
	c := *def
	c.TypeArgs = args
	c.Definition = def
	c.ElementType = Substitute(def.ElementType, sub)
	return &c
}

// Mentions reports whether t refers to any of params.
func Mentions(t Type, params []*TypeParam) bool {
	switch t := t.(type) {
	case *TypeParam:
		for _, p := range params {
			if p == t {
				return true
			}
		}
	case *ArrayType:
		return Mentions(t.Elem, params)
	case *PointerType:
		return Mentions(t.Elem, params)
	case *NamedType:
		for _, a := range t.TypeArgs {
			if Mentions(a, params) {
				return true
			}
		}
	}
	return false
}
