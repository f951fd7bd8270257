package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/overload"
	"martianoff/callbind/internal/symbols"
)

func (c *callContext) bindFunctionPointerCall(callee bound.Expr, ptr *symbols.FunctionPointerType, args *arglist.List) bound.Expr {
	req := &overload.Request{
		Candidates: []*symbols.Method{ptr.Sig},
		Args:       args,
		Options:    c.options(args),
	}
	v := c.resolver.Resolve(req)
	if !v.Succeeded() {
		diagnosed := c.reportResolutionFailure(ptr.String(), req, v, false)
		in := newRecovery(ptr.String(), args, symbols.OverloadResolutionFailure)
		in.candidates = []*symbols.Method{ptr.Sig}
		in.diagnosed = diagnosed
		return &bound.FunctionPointerCall{
			Node:     c.node(),
			Callee:   callee,
			Sig:      ptr.Sig,
			Args:     c.recoverArguments(in),
			RefKinds: copyRefKinds(args.RefKinds()),
			Kind:     symbols.OverloadResolutionFailure,
			Errors:   true,
		}
	}

	call := &bound.FunctionPointerCall{
		Node:     c.node(),
		Callee:   callee,
		Sig:      ptr.Sig,
		Args:     c.coerceArguments(v.BestResult(), args),
		RefKinds: copyRefKinds(args.RefKinds()),
		Kind:     symbols.Viable,
		Errors:   args.HasErrors,
	}
	if !c.scope.Unsafe {
		c.report(binderr.ErrUnsafeNeeded, callee.Loc())
		call.Errors = true
	}
	return call
}
