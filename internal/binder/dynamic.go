package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// bindDynamic builds a call dispatched at run time. applicable are the
// statically known candidates, recorded for tooling only.
func (c *callContext) bindDynamic(callee bound.Expr, args *arglist.List, applicable []*symbols.Method) *bound.DynamicInvocation {
	errors := args.HasErrors
	if g, ok := callee.(*bound.MethodGroup); ok {
		var bad bool
		callee, bad = c.checkDynamicReceiver(g)
		errors = errors || bad
	}

	queryReported := false
	out := make([]bound.Expr, args.Len())
	for i, a := range args.Args() {
		if pv, ok := a.(*bound.PendingVar); ok {
			out[i] = &bound.Local{Node: pv.Node, Name: pendingName(pv), Typ: symbols.Dynamic}
			continue
		}
		out[i] = a
		code, fmtArgs := dynamicArgumentError(a, args.RefKind(i))
		if code == "" {
			continue
		}
		errors = true
		if c.scope.InQuery && code != binderr.ErrDynamicInArgument {
			if !queryReported {
				c.report(binderr.ErrDynamicQuery, a.Loc())
				queryReported = true
			}
			continue
		}
		c.report(code, a.Loc(), fmtArgs...)
	}

	return &bound.DynamicInvocation{
		Node:       c.node(),
		Callee:     callee,
		Args:       out,
		Names:      copyNames(args.Names()),
		RefKinds:   copyRefKinds(args.RefKinds()),
		Applicable: applicable,
		Errors:     errors,
	}
}

// checkDynamicReceiver rejects receivers the runtime binder cannot use. An
// implicit this in an initializer is replaced by the containing type.
func (c *callContext) checkDynamicReceiver(g *bound.MethodGroup) (bound.Expr, bool) {
	th, ok := g.Receiver.(*bound.This)
	if !ok {
		return g, false
	}
	switch {
	case th.Base:
		c.report(binderr.ErrDynamicOnBase, th.At, g.Name)
		return g, true
	case c.scope.ThisUnusable && th.Implicit && c.scope.ContainingType != nil:
		rewritten := *g
		rewritten.Receiver = &bound.TypeExpr{Node: th.Node, Typ: c.scope.ContainingType, Implicit: true}
		return &rewritten, false
	case c.scope.ThisUnusable:
		c.report(binderr.ErrDynamicThisUnusable, th.At, g.Name)
		return g, true
	}
	return g, false
}

// dynamicArgumentError returns the diagnostic for an argument that has no
// run-time type the dynamic binder can act on.
func dynamicArgumentError(a bound.Expr, rk symbols.RefKind) (binderr.Code, []interface{}) {
	if rk == symbols.RefIn {
		return binderr.ErrDynamicInArgument, nil
	}
	switch a := a.(type) {
	case *bound.Lambda:
		return binderr.ErrDynamicLambdaArgument, nil
	case *bound.MethodGroup:
		return binderr.ErrDynamicMethodGroupArgument, nil
	case *bound.ArgListOperator:
		return binderr.ErrDynamicArgListArgument, nil
	default:
		if t := a.Type(); t != nil && symbols.ContainsPointer(t) {
			return binderr.ErrDynamicPointerArgument, []interface{}{t}
		}
	}
	return "", nil
}
