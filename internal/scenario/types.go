package scenario

import (
	"fmt"
	"strings"

	"martianoff/callbind/internal/registry"
	"martianoff/callbind/internal/symbols"
)

// typeScope resolves type expressions against a registry and the type
// parameters in scope.
type typeScope struct {
	reg    *registry.Registry
	params map[string]*symbols.TypeParam
}

func (s typeScope) with(tps []*symbols.TypeParam) typeScope {
	params := make(map[string]*symbols.TypeParam, len(s.params)+len(tps))
	for k, v := range s.params {
		params[k] = v
	}
	for _, tp := range tps {
		params[tp.Name] = tp
	}
	return typeScope{reg: s.reg, params: params}
}

// resolve parses a type expression. It understands predeclared names, type
// parameters, declared types and delegates, generic instantiations such as
// List<int>, arrays (T[]), pointers (T*), function pointers written
// delegate*<int, void> or delegate* unmanaged<int, void>, and "?" for the
// error type. An empty expression is void.
func (s typeScope) resolve(expr string) (symbols.Type, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return symbols.Void, nil
	case expr == "?":
		return symbols.Unknown, nil
	case strings.HasSuffix(expr, "[]"):
		elem, err := s.resolve(strings.TrimSuffix(expr, "[]"))
		if err != nil {
			return nil, err
		}
		return &symbols.ArrayType{Elem: elem}, nil
	case strings.HasPrefix(expr, "delegate*"):
		return s.functionPointer(expr)
	case strings.HasSuffix(expr, "*"):
		elem, err := s.resolve(strings.TrimSuffix(expr, "*"))
		if err != nil {
			return nil, err
		}
		return &symbols.PointerType{Elem: elem}, nil
	}
	if tp, ok := s.params[expr]; ok {
		return tp, nil
	}
	if t := symbols.Predeclared(expr); t != nil {
		return t, nil
	}
	name, args, generic, err := splitGeneric(expr)
	if err != nil {
		return nil, err
	}
	if generic {
		if d, ok := s.reg.Delegate(name + "<" + strings.Join(args, ", ") + ">"); ok {
			return d, nil
		}
		def, ok := s.reg.Type(name)
		if !ok {
			return nil, fmt.Errorf("unknown generic type '%s'", name)
		}
		if len(def.TypeParams) != len(args) {
			return nil, fmt.Errorf("type '%s' takes %d type arguments, got %d", name, len(def.TypeParams), len(args))
		}
		targs := make([]symbols.Type, len(args))
		for i, a := range args {
			if targs[i], err = s.resolve(a); err != nil {
				return nil, err
			}
		}
		return symbols.Instantiate(def, targs), nil
	}
	if d, ok := s.reg.Delegate(name); ok {
		return d, nil
	}
	if t, ok := s.reg.Type(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type '%s'", expr)
}

func (s typeScope) named(expr string) (*symbols.NamedType, error) {
	t, err := s.resolve(expr)
	if err != nil {
		return nil, err
	}
	nt, ok := t.(*symbols.NamedType)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a class, struct or interface", expr)
	}
	return nt, nil
}

func (s typeScope) functionPointer(expr string) (symbols.Type, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(expr, "delegate*"))
	unmanaged := false
	if strings.HasPrefix(rest, "unmanaged") {
		unmanaged = true
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "unmanaged"))
	}
	if !strings.HasPrefix(rest, "<") || !strings.HasSuffix(rest, ">") {
		return nil, fmt.Errorf("malformed function pointer type '%s'", expr)
	}
	parts, err := splitTop(rest[1 : len(rest)-1])
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("function pointer type '%s' has no return type", expr)
	}
	sig := &symbols.Method{Name: "Invoke"}
	for i, p := range parts[:len(parts)-1] {
		ref, typ := splitRef(p)
		pt, err := s.resolve(typ)
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, &symbols.Parameter{Name: fmt.Sprintf("arg%d", i+1), Type: pt, RefKind: ref})
	}
	if sig.Return, err = s.resolve(parts[len(parts)-1]); err != nil {
		return nil, err
	}
	return &symbols.FunctionPointerType{Sig: sig, Unmanaged: unmanaged}, nil
}

// splitRef strips a leading ref, out or in modifier.
func splitRef(expr string) (symbols.RefKind, string) {
	expr = strings.TrimSpace(expr)
	for _, k := range []symbols.RefKind{symbols.RefRef, symbols.RefOut, symbols.RefIn} {
		if prefix := k.String() + " "; strings.HasPrefix(expr, prefix) {
			return k, strings.TrimSpace(strings.TrimPrefix(expr, prefix))
		}
	}
	return symbols.RefNone, expr
}

// splitGeneric splits "Name<A, B>" into its name and arguments.
func splitGeneric(expr string) (string, []string, bool, error) {
	open := strings.IndexByte(expr, '<')
	if open < 0 {
		return expr, nil, false, nil
	}
	if !strings.HasSuffix(expr, ">") {
		return "", nil, false, fmt.Errorf("malformed generic type '%s'", expr)
	}
	args, err := splitTop(expr[open+1 : len(expr)-1])
	if err != nil {
		return "", nil, false, err
	}
	if len(args) == 0 {
		return "", nil, false, fmt.Errorf("generic type '%s' has no type arguments", expr)
	}
	return strings.TrimSpace(expr[:open]), args, true, nil
}

// splitTop splits a comma-separated list, ignoring commas nested in <>.
func splitTop(list string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i, r := range list {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced '>' in '%s'", list)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '<' in '%s'", list)
	}
	if last := strings.TrimSpace(list[start:]); last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	return parts, nil
}
