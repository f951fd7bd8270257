package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/overload"
	"martianoff/callbind/internal/registry"
	"martianoff/callbind/internal/symbols"
)

// finalValidation decides between a static commit and dynamic dispatch for a
// call with dynamic arguments and at least one applicable candidate.
func (c *callContext) finalValidation(g *bound.MethodGroup, req *overload.Request, v *overload.Verdict, ext bool) bound.Expr {
	var finals []*overload.MemberResult
	var firstFailure *binderr.Bag
	for _, r := range v.Applicable() {
		bag := &binderr.Bag{}
		c.validateCandidate(r, req, ext, bag)
		if !bag.HasErrors() {
			finals = append(finals, r)
		} else if firstFailure == nil {
			firstFailure = bag
		}
	}

	switch len(finals) {
	case 0:
		firstFailure.AddTo(c.sink)
		return &bound.BadExpr{
			Node:     c.node(),
			Kind:     symbols.NotViable,
			Symbols:  v.Members(),
			Children: groupChildren(g, req, ext),
			Typ:      standInMethod(g.Name, v.Members()).Return,
		}
	case 1:
		r := finals[0]
		code, fmtArgs := dynamicHazard(g.Name, r, req)
		if code == "" {
			c.log.Debug("committing statically despite dynamic arguments", "method", r.Member.String())
			return c.buildCall(&buildInput{
				receiver:  g.Receiver,
				result:    r,
				args:      req.Args,
				extension: ext,
			})
		}
		if r.Original.LocalFunction {
			c.report(code, c.syntax.At, fmtArgs...)
			c.warnConditional(g.Name, []*symbols.Method{r.Member})
			dyn := c.bindDynamic(g, req.Args, []*symbols.Method{r.Member})
			dyn.Errors = true
			return dyn
		}
	}
	return c.dispatchDynamically(g, req, finals, ext)
}

func (c *callContext) dispatchDynamically(g *bound.MethodGroup, req *overload.Request, finals []*overload.MemberResult, ext bool) bound.Expr {
	members := make([]*symbols.Method, len(finals))
	for i, r := range finals {
		members[i] = r.Member
	}
	if ext {
		c.report(binderr.ErrDynamicExtension, c.syntax.At, g.Name)
		return &bound.BadExpr{
			Node:     c.node(),
			Kind:     symbols.NotViable,
			Symbols:  members,
			Children: groupChildren(g, req, ext),
			Typ:      symbols.Dynamic,
		}
	}
	c.warnConditional(g.Name, members)
	c.log.Debug("dispatching dynamically", "name", g.Name, "candidates", len(members))
	return c.bindDynamic(g, req.Args, members)
}

// warnConditional reports a dynamic dispatch that may reach a conditional
// method, whose call would otherwise be removed.
func (c *callContext) warnConditional(name string, members []*symbols.Method) {
	for _, m := range members {
		if len(m.Conditional) > 0 {
			c.report(binderr.WarnDynamicConditional, c.syntax.At, name)
			return
		}
	}
}

// dynamicHazard reports why a single remaining candidate cannot be committed
// statically: its type arguments would have to be inferred from a dynamic
// argument, or a lone dynamic argument could bind either to the params
// parameter or to its element.
func dynamicHazard(name string, r *overload.MemberResult, req *overload.Request) (binderr.Code, []interface{}) {
	orig := r.Original
	if orig.IsUnconstructed() && len(req.TypeArgs) == 0 {
		for i, p := range r.ArgsToParams {
			if p == overload.VarargSlot || !symbols.IsDynamic(req.Args.Arg(i).Type()) {
				continue
			}
			if symbols.Mentions(orig.Params[p].Type, orig.TypeParams) {
				return binderr.ErrDynamicLocalFunctionTypeParameter, []interface{}{name}
			}
		}
	}
	if r.DynamicParamsAmbiguity {
		return binderr.ErrDynamicLocalFunctionParamsParameter, []interface{}{r.Member.ParamsParameter().Name, name}
	}
	return "", nil
}

// validateCandidate runs the accessibility, extension and constraint checks
// on an applicable candidate, reporting failures to sink.
func (c *callContext) validateCandidate(r *overload.MemberResult, req *overload.Request, ext bool, sink binderr.Sink) {
	m := r.Member
	if !registry.MethodAccessible(m, c.scope.ContainingType) {
		sink.Add(binderr.New(binderr.ErrInaccessible, c.syntax.At, m))
	}
	if ext {
		if m.ExtensionDisallowed {
			sink.Add(binderr.New(binderr.ErrDisallowedExtension, c.syntax.At, m.Name))
		}
		if this := m.Params[0]; this.RefKind == symbols.RefRef && !isValueTyped(req.Args.Arg(0)) {
			sink.Add(binderr.New(binderr.ErrExtensionRefReceiver, c.syntax.At, m.Name))
		}
	}
	if len(req.TypeArgs) > 0 {
		c.checkConstraints(m, sink)
	}
}

// checkConstraints reports type arguments of m that violate their type
// parameter's constraints. It returns false if any does.
func (c *callContext) checkConstraints(m *symbols.Method, sink binderr.Sink) bool {
	if len(m.TypeArgs) != len(m.TypeParams) {
		return true
	}
	sub := make(symbols.Substitution, len(m.TypeParams))
	for i, tp := range m.TypeParams {
		sub[tp] = m.TypeArgs[i]
	}
	ok := true
	for i, tp := range m.TypeParams {
		t := m.TypeArgs[i]
		if symbols.IsError(t) || symbols.IsDynamic(t) {
			continue
		}
		if !c.satisfies(t, tp, sub) {
			sink.Add(binderr.New(binderr.ErrConstraintViolated, c.syntax.At, t, tp.Name, m.OriginalDefinition()))
			ok = false
		}
	}
	return ok
}

func (c *callContext) satisfies(t symbols.Type, tp *symbols.TypeParam, sub symbols.Substitution) bool {
	if tp.ValueConstraint && !t.IsValueType() {
		return false
	}
	if tp.RefConstraint && !t.IsReferenceType() {
		return false
	}
	for _, ct := range tp.Constraints {
		switch c.conv.ClassifyType(t, symbols.Substitute(ct, sub)).Kind {
		case symbols.Identity, symbols.ImplicitReference, symbols.Boxing:
		default:
			return false
		}
	}
	return true
}

func isValueTyped(e bound.Expr) bool {
	t := e.Type()
	return t != nil && (t.IsValueType() || symbols.IsError(t))
}

// groupChildren returns the receiver and arguments of a failed group call.
func groupChildren(g *bound.MethodGroup, req *overload.Request, ext bool) []bound.Expr {
	var children []bound.Expr
	if g.Receiver != nil && !ext {
		children = append(children, g.Receiver)
	}
	return append(children, req.Args.Args()...)
}
