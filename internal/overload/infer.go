package overload

import (
	"fmt"

	"martianoff/callbind/internal/symbols"
)

// inferer infers method type arguments by unifying parameter types with
// argument types.
type inferer struct {
	params []*symbols.TypeParam
	sub    symbols.Substitution
}

func newInferer(params []*symbols.TypeParam) *inferer {
	return &inferer{params: params, sub: make(symbols.Substitution)}
}

func (inf *inferer) owns(v *symbols.TypeParam) bool {
	for _, p := range inf.params {
		if p == v {
			return true
		}
	}
	return false
}

func (inf *inferer) unify(param, arg symbols.Type) error {
	if arg == nil || !symbols.Mentions(param, inf.params) {
		return nil
	}
	switch p := param.(type) {
	case *symbols.TypeParam:
		if inf.owns(p) {
			return inf.bind(p, arg)
		}
	case *symbols.ArrayType:
		if a, ok := arg.(*symbols.ArrayType); ok {
			return inf.unify(p.Elem, a.Elem)
		}
	case *symbols.PointerType:
		if a, ok := arg.(*symbols.PointerType); ok {
			return inf.unify(p.Elem, a.Elem)
		}
	case *symbols.NamedType:
		for a, ok := arg.(*symbols.NamedType); ok && a != nil; a = a.Base {
			if a.OriginalDefinition() != p.OriginalDefinition() || len(a.TypeArgs) != len(p.TypeArgs) {
				continue
			}
			for i := range p.TypeArgs {
				if err := inf.unify(p.TypeArgs[i], a.TypeArgs[i]); err != nil {
					return err
				}
			}
			return nil
		}
	}
	if symbols.IsError(arg) || symbols.IsDynamic(arg) {
		return nil
	}
	return fmt.Errorf("cannot unify %s and %s", param, arg)
}

func (inf *inferer) bind(v *symbols.TypeParam, t symbols.Type) error {
	if prev, ok := inf.sub[v]; ok {
		if symbols.Identical(prev, t) {
			return nil
		}
		return fmt.Errorf("conflicting inferences for %s: %s and %s", v, prev, t)
	}
	if symbols.Mentions(t, []*symbols.TypeParam{v}) {
		return fmt.Errorf("occurs check failed: %s in %s", v, t)
	}
	inf.sub[v] = t
	return nil
}

// result returns the inferred type arguments in declaration order.
func (inf *inferer) result() ([]symbols.Type, error) {
	args := make([]symbols.Type, len(inf.params))
	for i, p := range inf.params {
		t, ok := inf.sub[p]
		if !ok {
			return nil, fmt.Errorf("cannot infer %s", p)
		}
		args[i] = t
	}
	return args, nil
}
