package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/overload"
	"martianoff/callbind/internal/symbols"
)

// options returns the resolution options for a call with args.
func (c *callContext) options(args *arglist.List) overload.Options {
	opts := overload.DefaultOptions()
	opts.DisallowExpandedNonArrayParams = c.cfg.DisallowExpandedNonArrayParams
	opts.DynamicResolution = args.HasDynamic()
	return opts
}

// bindMethodGroup resolves a call on a method group. Ordinary methods are
// tried first; extension methods only when no ordinary method applies.
func (c *callContext) bindMethodGroup(g *bound.MethodGroup, args *arglist.List) (bound.Expr, bool) {
	if len(g.Methods) == 0 && len(g.Extensions) == 0 && len(g.Properties) > 0 {
		p := g.Properties[0]
		c.log.Debug("redirecting call to member access", "member", p.String())
		access := &bound.PropertyAccess{Node: g.Node, Receiver: receiverValue(g.Receiver), Property: p}
		return c.bindTarget(access, args)
	}

	var req *overload.Request
	var v *overload.Verdict
	if len(g.Methods) > 0 {
		req = &overload.Request{
			Candidates: g.Methods,
			Receiver:   g.Receiver,
			TypeArgs:   g.TypeArgs,
			Args:       args,
			Options:    c.options(args),
		}
		v = c.resolver.Resolve(req)
		if v.HasApplicable() {
			return c.interpret(g, req, v, false), true
		}
	}

	if recv := extensionReceiver(g); recv != nil && len(g.Extensions) > 0 {
		extArgs := c.arena.clone(args)
		extArgs.Insert(0, recv, "", symbols.RefNone)
		cands := make([]*symbols.Method, len(g.Extensions))
		for i, m := range g.Extensions {
			cands[i] = m.ReceiverForm()
		}
		extReq := &overload.Request{
			Candidates:  cands,
			Receiver:    g.Receiver,
			TypeArgs:    g.TypeArgs,
			Args:        extArgs,
			IsExtension: true,
			Options:     c.options(extArgs),
		}
		ev := c.resolver.Resolve(extReq)
		if ev.HasApplicable() || v == nil {
			c.log.Debug("resolved through extension methods", "name", g.Name, "candidates", len(cands))
			return c.interpret(g, extReq, ev, true), true
		}
	}

	if v != nil {
		return c.interpret(g, req, v, false), true
	}
	c.report(binderr.ErrNoSuchMember, g.At, g.Name)
	in := newRecovery(g.Name, args, symbols.Empty)
	in.receiver = g.Receiver
	return c.recoverCall(in), true
}

// interpret turns a verdict into a node. The group's lookup kind describes
// the ordinary members only and does not apply to an extension verdict.
func (c *callContext) interpret(g *bound.MethodGroup, req *overload.Request, v *overload.Verdict, ext bool) bound.Expr {
	if !ext && g.Kind != symbols.Viable && g.Kind != symbols.Empty {
		return c.bindNonViableGroup(g, req, v, ext)
	}
	if v.Succeeded() {
		r := v.BestResult()
		if req.Args.HasDynamic() {
			return c.finalValidation(g, req, v, ext)
		}
		c.log.Debug("resolved call", "method", r.Member.String(), "form", r.Form.String())
		return c.buildCall(&buildInput{
			receiver:  g.Receiver,
			result:    r,
			args:      req.Args,
			extension: ext,
		})
	}
	if v.HasApplicable() && req.Args.HasDynamic() {
		return c.finalValidation(g, req, v, ext)
	}

	diagnosed := c.reportResolutionFailure(g.Name, req, v, ext)
	kind := symbols.OverloadResolutionFailure
	if len(v.Ambiguous) > 0 {
		kind = symbols.Ambiguous
	}
	in := newRecovery(g.Name, req.Args, kind)
	in.receiver = g.Receiver
	in.candidates = v.Members()
	in.extension = ext
	in.diagnosed = diagnosed
	return c.recoverCall(in)
}

// bindNonViableGroup handles a lookup that found members the call cannot
// use, such as inaccessible ones. Arguments are still coerced against the
// most plausible candidate before the bad call is produced.
func (c *callContext) bindNonViableGroup(g *bound.MethodGroup, req *overload.Request, v *overload.Verdict, ext bool) bound.Expr {
	var r *overload.MemberResult
	switch {
	case v.Succeeded():
		r = v.BestResult()
	case v.HasApplicable():
		r = v.Applicable()[0]
	default:
		r = v.ClosestFailure()
	}
	if r == nil {
		panic("binder: verdict without candidates")
	}
	if g.Kind == symbols.Ambiguous && len(req.Candidates) > 1 {
		c.report(binderr.ErrAmbiguousCall, g.At, req.Candidates[0], req.Candidates[1])
	} else {
		c.report(binderr.ErrInaccessible, g.At, r.Member)
	}

	children := []bound.Expr{}
	if g.Receiver != nil && !ext {
		children = append(children, g.Receiver)
	}
	var typ symbols.Type
	if r.Applicable() {
		children = append(children, c.coerceArguments(r, req.Args)...)
		typ = r.Member.Return
	} else {
		in := newRecovery(g.Name, req.Args, g.Kind)
		in.candidates = v.Members()
		children = append(children, c.recoverArguments(in)...)
		typ = standInMethod(g.Name, in.candidates).Return
	}
	return &bound.BadExpr{
		Node:     c.node(),
		Kind:     g.Kind,
		Symbols:  v.Members(),
		Children: children,
		Typ:      typ,
	}
}

// reportResolutionFailure reports why no single candidate was chosen. It
// returns the argument positions that already have a diagnostic.
func (c *callContext) reportResolutionFailure(name string, req *overload.Request, v *overload.Verdict, ext bool) map[int]bool {
	if len(v.Ambiguous) == 2 {
		a, b := v.Results[v.Ambiguous[0]].Member, v.Results[v.Ambiguous[1]].Member
		c.report(binderr.ErrAmbiguousCall, c.syntax.At, a, b)
		return nil
	}
	r := v.ClosestFailure()
	if r == nil {
		c.report(binderr.ErrNoSuchMember, c.syntax.At, name)
		return nil
	}
	args := req.Args
	explicit := args.Len()
	argNo := func(i int) int { return i + 1 }
	if ext {
		explicit--
		argNo = func(i int) int { return i }
	}
	argLoc := func(i int) binderr.Loc {
		if i >= 0 && i < args.Len() {
			return args.Arg(i).Loc()
		}
		return c.syntax.At
	}

	switch r.Reason {
	case overload.WrongArity:
		c.report(binderr.ErrBadArgCount, c.syntax.At, name, explicit)
	case overload.BadTypeArgCount:
		c.report(binderr.ErrBadTypeArgCount, c.syntax.At, r.Original, len(r.Original.TypeParams))
	case overload.TypeInferenceFailed:
		c.report(binderr.ErrCantInferTypeArgs, c.syntax.At, r.Original)
	case overload.MissingRequired:
		c.report(binderr.ErrMissingArgument, c.syntax.At, r.Member.Params[r.BadParam].Name, r.Member)
	case overload.BadNamedArgument:
		c.report(binderr.ErrBadNamedArgument, argLoc(r.BadArg), name, args.Name(r.BadArg))
	case overload.DuplicateNamedArgument:
		c.report(binderr.ErrDuplicateNamedArgument, argLoc(r.BadArg), args.Name(r.BadArg))
	case overload.NamedArgumentPosition:
		c.report(binderr.ErrNamedArgumentPosition, argLoc(r.BadArg), args.Name(r.BadArg))
	case overload.BadRefKind:
		i := r.BadArg
		pk := r.ParamFor(i).RefKind
		if pk == symbols.RefNone {
			c.report(binderr.ErrBadArgument, argLoc(i), argNo(i), args.RefKind(i).String()+" "+describe(args.Arg(i)), r.TargetType(i))
		} else {
			c.report(binderr.ErrBadArgRef, argLoc(i), argNo(i), pk.String())
		}
	case overload.BadArgument:
		i := r.BadArg
		if ext && i == 0 {
			c.report(binderr.ErrNoSuchMember, c.syntax.At, name)
			return nil
		}
		c.report(binderr.ErrBadArgument, argLoc(i), argNo(i), describe(args.Arg(i)), r.TargetType(i))
		return map[int]bool{i: true}
	default:
		panic("binder: inapplicable candidate without a reason")
	}
	return nil
}

// extensionReceiver returns the value extension methods are invoked on, or
// nil when the group has no value receiver.
func extensionReceiver(g *bound.MethodGroup) bound.Expr {
	switch r := g.Receiver.(type) {
	case nil, *bound.TypeExpr:
		return nil
	case *bound.TypeOrValue:
		return r.Value
	case *bound.This:
		if r.Implicit {
			return nil
		}
	}
	return g.Receiver
}

// receiverValue resolves a type-or-value receiver to its value.
func receiverValue(e bound.Expr) bound.Expr {
	if tv, ok := e.(*bound.TypeOrValue); ok {
		return tv.Value
	}
	return e
}
