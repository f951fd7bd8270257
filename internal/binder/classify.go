package binder

import (
	"fmt"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// callTarget is the shape of a callee. The set of shapes is closed.
type callTarget interface {
	isCallTarget()
}

type dynamicTarget struct {
	callee bound.Expr
}

type methodGroupTarget struct {
	group *bound.MethodGroup
}

type delegateTarget struct {
	callee   bound.Expr
	delegate *symbols.DelegateType
}

type functionPointerTarget struct {
	callee bound.Expr
	ptr    *symbols.FunctionPointerType
}

type notInvocableTarget struct {
	callee    bound.Expr
	hasErrors bool
}

func (dynamicTarget) isCallTarget()         {}
func (methodGroupTarget) isCallTarget()     {}
func (delegateTarget) isCallTarget()        {}
func (functionPointerTarget) isCallTarget() {}
func (notInvocableTarget) isCallTarget()    {}

func classifyTarget(callee bound.Expr) callTarget {
	if g, ok := callee.(*bound.MethodGroup); ok {
		if g.Receiver != nil && symbols.IsDynamic(g.Receiver.Type()) {
			return dynamicTarget{callee: g}
		}
		return methodGroupTarget{group: g}
	}
	t := callee.Type()
	if symbols.IsDynamic(t) {
		return dynamicTarget{callee: callee}
	}
	switch t := t.(type) {
	case *symbols.DelegateType:
		return delegateTarget{callee: callee, delegate: t}
	case *symbols.FunctionPointerType:
		return functionPointerTarget{callee: callee, ptr: t}
	}
	hasErrors := callee.HasErrors()
	if t != nil && symbols.IsError(t) {
		hasErrors = true
	}
	return notInvocableTarget{callee: callee, hasErrors: hasErrors}
}

// bindTarget dispatches on the callee shape. The second result reports whether
// the restricted-type boxing check applies to the produced node.
func (c *callContext) bindTarget(callee bound.Expr, args *arglist.List) (bound.Expr, bool) {
	switch t := classifyTarget(callee).(type) {
	case dynamicTarget:
		c.log.Debug("binding dynamic call", "callee", callee.Text())
		return c.bindDynamic(t.callee, args, nil), true
	case methodGroupTarget:
		return c.bindMethodGroup(t.group, args)
	case delegateTarget:
		c.log.Debug("binding delegate call", "delegate", t.delegate.Name)
		return c.bindDelegateCall(t.callee, t.delegate, args), true
	case functionPointerTarget:
		c.log.Debug("binding function pointer call", "signature", t.ptr.String())
		return c.bindFunctionPointerCall(t.callee, t.ptr, args), true
	case notInvocableTarget:
		if t.hasErrors {
			return &bound.BadExpr{
				Node:     c.node(),
				Kind:     symbols.NotInvocable,
				Children: append([]bound.Expr{callee}, args.Args()...),
			}, false
		}
		c.report(binderr.ErrMethodNameExpected, callee.Loc())
		return c.recoverCall(newRecovery(callee.Text(), args, symbols.NotInvocable)), false
	default:
		panic(fmt.Sprintf("binder: unhandled call target %T", t))
	}
}
