package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/overload"
	"martianoff/callbind/internal/symbols"
)

// bindDelegateCall resolves an invocation of a delegate value against its
// invoke signature.
func (c *callContext) bindDelegateCall(callee bound.Expr, d *symbols.DelegateType, args *arglist.List) bound.Expr {
	if d.Invoke == nil || d.UseSiteError != "" {
		msg := d.UseSiteError
		if msg == "" {
			msg = "the delegate has no invoke method"
		}
		c.report(binderr.ErrUnsupportedDelegate, callee.Loc(), d.Name, msg)
		return &bound.BadExpr{
			Node:     c.node(),
			Kind:     symbols.NotInvocable,
			Children: append([]bound.Expr{callee}, args.Args()...),
		}
	}

	req := &overload.Request{
		Candidates: []*symbols.Method{d.Invoke},
		Receiver:   callee,
		Args:       args,
		Options:    c.options(args),
	}
	v := c.resolver.Resolve(req)
	if v.HasApplicable() && args.HasDynamic() {
		bad := false
		for _, p := range d.Invoke.Params {
			if symbols.ContainsPointer(p.Type) || symbols.IsRestricted(p.Type) {
				c.report(binderr.ErrDynamicDelegateShape, callee.Loc(), d.Name, p.Type)
				bad = true
			}
		}
		dyn := c.bindDynamic(callee, args, []*symbols.Method{d.Invoke})
		dyn.Errors = dyn.Errors || bad
		return dyn
	}
	if v.Succeeded() {
		return c.buildCall(&buildInput{
			receiver:       callee,
			result:         v.BestResult(),
			args:           args,
			delegateInvoke: true,
		})
	}

	diagnosed := c.reportResolutionFailure(d.Name, req, v, false)
	in := newRecovery(d.Invoke.Name, args, symbols.OverloadResolutionFailure)
	in.receiver = callee
	in.candidates = v.Members()
	in.delegate = true
	in.diagnosed = diagnosed
	return c.recoverCall(in)
}
