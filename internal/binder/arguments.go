package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// analyzeArguments binds the raw arguments of a call into an argument list.
// Pending out variables and lambdas are left as they are; later stages give
// them a type once the target parameter is known.
func (c *callContext) analyzeArguments(syn []ArgumentSyntax) *arglist.List {
	args := c.arena.newList()
	lastNamed := ""
	for i := range syn {
		a := &syn[i]
		e := c.bindArgument(a, args)
		if a.Name != "" {
			lastNamed = a.Name
		} else if lastNamed != "" {
			c.report(binderr.ErrNamedArgumentOrder, a.At, lastNamed)
			args.HasErrors = true
		}
		args.Add(e, a.Name, a.RefKind)
	}
	return args
}

func (c *callContext) bindArgument(a *ArgumentSyntax, args *arglist.List) bound.Expr {
	switch {
	case a.Call != nil:
		return c.Binder.BindCall(c.scope, a.Call, c.sink)
	case a.ArgList != nil:
		op := c.bindArgListOperator(a.ArgList)
		if op.Errors {
			args.HasErrors = true
		}
		return op
	case a.Expr != nil:
		return a.Expr
	}
	panic("binder: argument has no expression")
}

// bindArgListOperator binds __arglist(...). Its by-value arguments that have no
// type or a value type are converted to object, the only form the runtime
// accepts in a variable argument list.
func (c *callContext) bindArgListOperator(syn *ArgListSyntax) *bound.ArgListOperator {
	op := &bound.ArgListOperator{Node: bound.Node{At: syn.At, Src: syn.Src}}
	for i := range syn.Args {
		a := &syn.Args[i]
		var e bound.Expr
		switch {
		case a.ArgList != nil:
			c.report(binderr.ErrIllegalArgList, a.ArgList.At)
			op.Errors = true
			e = &bound.BadExpr{Node: bound.Node{At: a.ArgList.At, Src: a.ArgList.Src}, Kind: symbols.NotViable}
		case a.Call != nil:
			e = c.Binder.BindCall(c.scope, a.Call, c.sink)
		case a.Expr != nil:
			e = a.Expr
		default:
			panic("binder: __arglist argument has no expression")
		}
		e = c.argListElement(e, a, op)
		op.Args = append(op.Args, e)
		if a.RefKind != symbols.RefNone && op.RefKinds == nil {
			op.RefKinds = make([]symbols.RefKind, i, len(syn.Args))
		}
		if op.RefKinds != nil {
			op.RefKinds = append(op.RefKinds, a.RefKind)
		}
	}
	return op
}

func (c *callContext) argListElement(e bound.Expr, a *ArgumentSyntax, op *bound.ArgListOperator) bound.Expr {
	if _, bad := e.(*bound.BadExpr); bad {
		return e
	}
	switch a.RefKind {
	case symbols.RefIn, symbols.RefOut:
		c.report(binderr.ErrRefKindInArgList, a.At, a.RefKind.String())
		op.Errors = true
		return e
	case symbols.RefRef:
		return e
	}
	if pv, ok := e.(*bound.PendingVar); ok {
		c.report(binderr.ErrCantInferOutVariable, pv.At, pv.Name)
		op.Errors = true
		return &bound.Local{Node: pv.Node, Name: pv.Name, Typ: symbols.Unknown}
	}
	t := e.Type()
	if t != nil && t.Kind() == symbols.KindVoid {
		c.report(binderr.ErrVoidInArgList, e.Loc())
		op.Errors = true
		return e
	}
	if t != nil && (!t.IsValueType() || symbols.IsRestricted(t)) {
		return e
	}
	conv := c.conv.Classify(e, symbols.Object)
	if !conv.Exists() {
		if _, lambda := e.(*bound.Lambda); lambda {
			c.report(binderr.ErrLambdaNeedsTarget, e.Loc())
		} else {
			c.report(binderr.ErrBadArgument, e.Loc(), len(op.Args)+1, describe(e), symbols.Object)
		}
		op.Errors = true
		return e
	}
	return &bound.Conversion{Node: bound.Node{At: e.Loc(), Src: e.Text()}, Operand: e, Conv: conv, Typ: symbols.Object}
}

// describe names the type of e for diagnostics.
func describe(e bound.Expr) string {
	switch e := e.(type) {
	case *bound.Literal:
		if e.Value.IsNull() {
			return "<null>"
		}
	case *bound.Lambda:
		return "lambda expression"
	case *bound.MethodGroup:
		return "method group"
	case *bound.PendingVar:
		return "var"
	}
	if t := e.Type(); t != nil {
		return t.String()
	}
	return "?"
}
