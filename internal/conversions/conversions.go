// Package conversions is the reference implicit-conversion classifier used by
// the binder and the reference overload resolver.
package conversions

import (
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// Classifier classifies implicit conversions. It holds no state and is safe
// for concurrent use.
type Classifier struct{}

// New returns a classifier.
func New() *Classifier { return &Classifier{} }

// numeric widening: source kind -> targets
var widening = map[symbols.TypeKind][]symbols.TypeKind{
	symbols.KindInt:  {symbols.KindLong, symbols.KindDouble, symbols.KindDecimal},
	symbols.KindLong: {symbols.KindDouble, symbols.KindDecimal},
}

// Classify classifies the implicit conversion of expression e to dst.
func (c *Classifier) Classify(e bound.Expr, dst symbols.Type) symbols.Conversion {
	if dst == nil {
		return symbols.Conversion{}
	}
	switch e := e.(type) {
	case *bound.Literal:
		if e.Value.IsNull() {
			if acceptsNull(dst) {
				return symbols.Conversion{Kind: symbols.NullLiteral}
			}
			return symbols.Conversion{}
		}
	case *bound.PendingVar:
		// An out variable takes the type of its parameter.
		return symbols.Conversion{Kind: symbols.Identity}
	case *bound.Lambda:
		if d, ok := dst.(*symbols.DelegateType); ok {
			if lambdaFits(e, d) {
				return symbols.Conversion{Kind: symbols.AnonymousFunction}
			}
			return symbols.Conversion{}
		}
		if e.Natural != nil {
			return c.ClassifyType(e.Natural, dst)
		}
		return symbols.Conversion{}
	case *bound.MethodGroup:
		if d, ok := dst.(*symbols.DelegateType); ok {
			if m := c.groupTarget(e, d); m != nil {
				return symbols.Conversion{Kind: symbols.MethodGroupConversion, Method: m}
			}
		}
		return symbols.Conversion{}
	case *bound.TargetTyped:
		if e.Natural != nil {
			if conv := c.ClassifyType(e.Natural, dst); conv.Exists() {
				return conv
			}
		}
		for _, arm := range e.Arms {
			if !c.Classify(arm, dst).Exists() {
				return symbols.Conversion{}
			}
		}
		return symbols.Conversion{Kind: symbols.TargetTyped}
	}
	src := e.Type()
	if src == nil {
		return symbols.Conversion{}
	}
	return c.ClassifyType(src, dst)
}

// ClassifyType classifies the implicit conversion from src to dst.
func (c *Classifier) ClassifyType(src, dst symbols.Type) symbols.Conversion {
	if src == nil || dst == nil {
		return symbols.Conversion{}
	}
	if symbols.IsError(src) || symbols.IsError(dst) || symbols.Identical(src, dst) {
		return symbols.Conversion{Kind: symbols.Identity}
	}
	if src.Kind() == symbols.KindPointer || dst.Kind() == symbols.KindPointer {
		return symbols.Conversion{}
	}
	if symbols.IsDynamic(src) {
		if symbols.IsObject(dst) {
			return symbols.Conversion{Kind: symbols.Identity}
		}
		return symbols.Conversion{Kind: symbols.ImplicitDynamic}
	}
	if symbols.IsDynamic(dst) || symbols.IsObject(dst) {
		if symbols.IsObject(src) {
			return symbols.Conversion{Kind: symbols.Identity}
		}
		return toTop(src)
	}
	for _, k := range widening[src.Kind()] {
		if dst.Kind() == k {
			return symbols.Conversion{Kind: symbols.ImplicitNumeric}
		}
	}
	if conv := reference(src, dst); conv.Exists() {
		return conv
	}
	if m := userDefined(src, dst); m != nil {
		return symbols.Conversion{Kind: symbols.UserDefined, Method: m}
	}
	return symbols.Conversion{}
}

// toTop classifies a conversion to object or dynamic.
func toTop(src symbols.Type) symbols.Conversion {
	switch {
	case src.Kind() == symbols.KindArgList || src.Kind() == symbols.KindVoid || src.Kind() == symbols.KindFunctionPointer:
		return symbols.Conversion{}
	case src.IsReferenceType():
		return symbols.Conversion{Kind: symbols.ImplicitReference}
	}
	// Value types and unconstrained type parameters box. Restricted types
	// classify as boxing too; the binder rejects those after binding.
	return symbols.Conversion{Kind: symbols.Boxing}
}

func reference(src, dst symbols.Type) symbols.Conversion {
	switch s := src.(type) {
	case *symbols.NamedType:
		d, ok := dst.(*symbols.NamedType)
		if !ok {
			return symbols.Conversion{}
		}
		if s.DerivesFrom(d) || (d.TypeKind == symbols.KindInterface && s.Implements(d)) {
			if s.IsValueType() {
				return symbols.Conversion{Kind: symbols.Boxing}
			}
			return symbols.Conversion{Kind: symbols.ImplicitReference}
		}
	case *symbols.ArrayType:
		d, ok := dst.(*symbols.ArrayType)
		if ok && s.Elem.IsReferenceType() && d.Elem.IsReferenceType() {
			if reference(s.Elem, d.Elem).Kind == symbols.ImplicitReference || symbols.IsObject(d.Elem) {
				return symbols.Conversion{Kind: symbols.ImplicitReference}
			}
		}
	case *symbols.TypeParam:
		for _, ct := range s.Constraints {
			if symbols.Identical(ct, dst) {
				if s.RefConstraint {
					return symbols.Conversion{Kind: symbols.ImplicitReference}
				}
				return symbols.Conversion{Kind: symbols.Boxing}
			}
		}
	}
	return symbols.Conversion{}
}

func userDefined(src, dst symbols.Type) *symbols.Method {
	for _, t := range []symbols.Type{src, dst} {
		n, ok := t.(*symbols.NamedType)
		if !ok {
			continue
		}
		for _, op := range n.Implicit {
			if len(op.Params) == 1 && symbols.Identical(op.Params[0].Type, src) && symbols.Identical(op.Return, dst) {
				return op
			}
		}
	}
	return nil
}

func acceptsNull(dst symbols.Type) bool {
	switch dst.Kind() {
	case symbols.KindError, symbols.KindPointer, symbols.KindFunctionPointer:
		return true
	case symbols.KindTypeParameter:
		return dst.IsReferenceType()
	}
	return dst.IsReferenceType()
}

func lambdaFits(l *bound.Lambda, d *symbols.DelegateType) bool {
	if d.Invoke == nil || len(d.Invoke.Params) != len(l.Params) {
		return false
	}
	for i, t := range l.ParamTypes {
		if t != nil && !symbols.Identical(t, d.Invoke.Params[i].Type) {
			return false
		}
	}
	return true
}

// groupTarget picks the method of g whose signature matches the delegate's invoke method.
func (c *Classifier) groupTarget(g *bound.MethodGroup, d *symbols.DelegateType) *symbols.Method {
	if d.Invoke == nil {
		return nil
	}
	inv := d.Invoke
	for _, m := range g.Methods {
		if m.IsUnconstructed() || len(m.Params) != len(inv.Params) {
			continue
		}
		ok := true
		for i, p := range m.Params {
			q := inv.Params[i]
			if p.RefKind != q.RefKind {
				ok = false
				break
			}
			conv := c.ClassifyType(q.Type, p.Type)
			if !conv.IsIdentity() && conv.Kind != symbols.ImplicitReference {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if conv := c.ClassifyType(m.Return, inv.Return); conv.IsIdentity() || conv.Kind == symbols.ImplicitReference {
			return m
		}
	}
	return nil
}
