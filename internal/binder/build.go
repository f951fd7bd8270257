package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/overload"
	"martianoff/callbind/internal/registry"
	"martianoff/callbind/internal/symbols"
)

// buildInput is a committed candidate and the argument list it was resolved with.
type buildInput struct {
	receiver bound.Expr
	result   *overload.MemberResult
	// args holds the extension receiver first when extension is set.
	args           *arglist.List
	extension      bool
	delegateInvoke bool
}

// buildCall turns a committed candidate into the final call node.
func (c *callContext) buildCall(in *buildInput) *bound.Call {
	r := in.result
	method := r.Member
	args := c.arena.clone(in.args)
	argsToParams := append([]int(nil), r.ArgsToParams...)
	convs := append([]symbols.Conversion(nil), r.Conversions...)
	receiver := in.receiver
	errors := args.HasErrors

	// The extension receiver leaves the argument list. A member extension
	// becomes an ordinary instance call on it; a classic extension gets it
	// back as argument zero once the other arguments are placed.
	var extReceiver bound.Expr
	var extConv symbols.Conversion
	classic := false
	if in.extension {
		extReceiver, extConv = args.Arg(0), convs[0]
		args.RemoveAt(0)
		argsToParams, convs = argsToParams[1:], convs[1:]
		if src := method.Source; src != nil {
			if src.IsGeneric() {
				src = src.Construct(method.TypeArgs)
			}
			receiverType := method.Params[0].Type
			method = src
			for i, p := range argsToParams {
				if p != overload.VarargSlot {
					argsToParams[i] = p - 1
				}
			}
			receiver = c.coerce(extReceiver, receiverType, extConv)
		} else {
			classic = true
			receiver = nil
		}
	}

	if !in.delegateInvoke && !in.extension {
		var bad bool
		receiver, bad = c.reclassifyReceiver(receiver, method)
		errors = errors || bad
	}

	expanded := r.Form == overload.ExpandedForm
	coerced := make([]bound.Expr, args.Len())
	for i := range coerced {
		coerced[i] = c.coerce(args.Arg(i), paramTarget(method, argsToParams[i], expanded), convs[i])
	}

	firstParam := 0
	if classic {
		firstParam = 1
	}
	dc := &defaultsContext{
		method:       method,
		args:         coerced,
		names:        append([]string(nil), args.Names()...),
		refKinds:     append([]symbols.RefKind(nil), args.RefKinds()...),
		argsToParams: argsToParams,
		expanded:     expanded,
		firstParam:   firstParam,
		receiverArg:  extReceiver,
		scope:        c.scope,
		call:         c.syntax,
		sink:         c.sink,
		conv:         c.conv,
		pathMap:      c.cfg.PathMap,
		warnLegacy:   c.cfg.WarnLegacyDefaults,
	}
	synthesizeDefaults(dc)
	for _, p := range dc.cycles {
		c.report(binderr.ErrDefaultValueCycle, c.syntax.At, p.Name)
		errors = true
	}
	for _, i := range dc.defaults.Members() {
		errors = errors || dc.args[i].HasErrors()
	}

	if !c.validateCommitted(method, receiver) {
		errors = true
	}

	call := &bound.Call{
		Node:           c.node(),
		Receiver:       receiver,
		Method:         method,
		Expanded:       expanded,
		DelegateInvoke: in.delegateInvoke,
		Typ:            method.Return,
	}
	finalArgs, names, refKinds, a2p, defaults := dc.args, dc.names, dc.refKinds, dc.argsToParams, dc.defaults
	if classic {
		this := method.Params[0]
		finalArgs = append([]bound.Expr{c.coerce(extReceiver, this.Type, extConv)}, finalArgs...)
		if names != nil {
			names = append([]string{""}, names...)
		}
		if this.RefKind != symbols.RefNone && refKinds == nil {
			refKinds = make([]symbols.RefKind, len(dc.args))
		}
		if refKinds != nil {
			refKinds = append([]symbols.RefKind{this.RefKind}, refKinds...)
		}
		a2p = append([]int{0}, a2p...)
		defaults = defaults.Shift(1)
		call.InvokedAsExtension = true
	} else if method.Static && isImplicitReceiver(receiver) {
		call.Receiver = nil
	}
	call.Args = finalArgs
	call.Names = copyNames(names)
	call.RefKinds = copyRefKinds(refKinds)
	call.ArgsToParams = positionalMap(a2p)
	call.DefaultArgs = defaults

	if !c.checkLegality(method, in.extension) {
		errors = true
	}
	call.Errors = errors
	call.Kind = symbols.Viable
	if errors {
		call.Kind = symbols.NotViable
	}
	return call
}

// reclassifyReceiver resolves a type-or-value receiver now that the member is
// known, and checks that static and instance members get the right receiver.
func (c *callContext) reclassifyReceiver(receiver bound.Expr, m *symbols.Method) (bound.Expr, bool) {
	if tv, ok := receiver.(*bound.TypeOrValue); ok {
		if m.Static {
			receiver = tv.TypeRef
		} else {
			receiver = tv.Value
		}
	}
	if m.LocalFunction {
		return receiver, false
	}
	if m.Static {
		switch r := receiver.(type) {
		case nil, *bound.TypeExpr:
		case *bound.This:
			if !r.Implicit {
				c.report(binderr.ErrObjectProhibited, r.At, m)
				return receiver, true
			}
		default:
			c.report(binderr.ErrObjectProhibited, receiver.Loc(), m)
			return receiver, true
		}
		return receiver, false
	}
	switch r := receiver.(type) {
	case nil:
		if c.scope.Static {
			c.report(binderr.ErrObjectRequired, c.syntax.At, m)
			return receiver, true
		}
	case *bound.TypeExpr:
		c.report(binderr.ErrObjectRequired, r.At, m)
		return receiver, true
	case *bound.This:
		if r.Implicit && c.scope.Static {
			c.report(binderr.ErrObjectRequired, c.syntax.At, m)
			return receiver, true
		}
	}
	return receiver, false
}

// validateCommitted re-runs final validation on the committed member and
// warns about implicit copies of a readonly this.
func (c *callContext) validateCommitted(m *symbols.Method, receiver bound.Expr) bool {
	ok := true
	if !registry.MethodAccessible(m, c.scope.ContainingType) {
		c.report(binderr.ErrInaccessible, c.syntax.At, m)
		ok = false
	}
	if !c.checkConstraints(m, c.sink) {
		ok = false
	}
	if th, isThis := receiver.(*bound.This); isThis && th.Implicit && (th.ReadOnly || c.scope.ReadOnlyThis) &&
		!m.Static && !m.ReadOnly && th.Typ != nil && th.Typ.IsValueType() {
		c.report(binderr.WarnImplicitCopyInReadOnlyMember, c.syntax.At, m.Name)
	}
	return ok
}

// checkLegality runs the checks that never prevent the node from being built.
func (c *callContext) checkLegality(m *symbols.Method, ext bool) bool {
	ok := true
	if !c.scope.Unsafe && signatureHasPointer(m) {
		c.report(binderr.ErrUnsafeNeeded, c.syntax.At)
		ok = false
	}
	if o := m.OriginalDefinition().Obsolete; o != nil {
		if o.IsError {
			c.report(binderr.ErrObsolete, c.syntax.At, m.Name, o.Message)
			ok = false
		} else {
			c.report(binderr.WarnObsolete, c.syntax.At, m.Name, o.Message)
		}
	}
	if m.UnmanagedCallersOnly {
		c.report(binderr.ErrUnmanagedCallersOnly, c.syntax.At, m.Name)
		ok = false
	}
	if ext && m.ExtensionDisallowed {
		c.report(binderr.ErrDisallowedExtension, c.syntax.At, m.Name)
		ok = false
	}
	if m.Finalizer {
		c.report(binderr.ErrCallingFinalizer, c.syntax.At)
		ok = false
	}
	return ok
}

// coerceArguments converts every argument to the parameter it binds to in r.
func (c *callContext) coerceArguments(r *overload.MemberResult, args *arglist.List) []bound.Expr {
	out := make([]bound.Expr, args.Len())
	for i := range out {
		out[i] = c.coerce(args.Arg(i), r.TargetType(i), r.Conversions[i])
	}
	return out
}

// coerce applies conv to arg. Pending out variables take the target type and
// lambdas are bound to the target delegate.
func (c *callContext) coerce(arg bound.Expr, target symbols.Type, conv symbols.Conversion) bound.Expr {
	switch a := arg.(type) {
	case *bound.PendingVar:
		return &bound.Local{Node: a.Node, Name: pendingName(a), Typ: target}
	case *bound.Lambda:
		if d, ok := target.(*symbols.DelegateType); ok {
			return bindLambda(c.conv, a, d, c.sink)
		}
	}
	if conv.IsIdentity() || target == nil || target == symbols.ArgList {
		return arg
	}
	return &bound.Conversion{
		Node:    bound.Node{At: arg.Loc(), Src: arg.Text()},
		Operand: arg,
		Conv:    conv,
		Typ:     target,
	}
}

// paramTarget returns the type an argument bound to parameter p converts to.
func paramTarget(m *symbols.Method, p int, expanded bool) symbols.Type {
	if p == overload.VarargSlot {
		return symbols.ArgList
	}
	param := m.Params[p]
	if expanded && param.Params {
		elem, _ := symbols.ParamsElementType(param.Type)
		return elem
	}
	return param.Type
}

func signatureHasPointer(m *symbols.Method) bool {
	if symbols.ContainsPointer(m.Return) {
		return true
	}
	for _, p := range m.Params {
		if symbols.ContainsPointer(p.Type) {
			return true
		}
	}
	return false
}

func isImplicitReceiver(e bound.Expr) bool {
	switch r := e.(type) {
	case *bound.This:
		return r.Implicit
	case *bound.TypeExpr:
		return r.Implicit
	}
	return false
}

// positionalMap returns nil when every argument sits at its parameter's position.
func positionalMap(a2p []int) []int {
	for i, p := range a2p {
		if p != i {
			return a2p
		}
	}
	return nil
}
