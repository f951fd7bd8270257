package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// checkRestrictedBoxing reports receivers and arguments of a restricted type
// that the produced call would box.
func (c *callContext) checkRestrictedBoxing(e bound.Expr) {
	switch e := e.(type) {
	case *bound.Call:
		if recv := e.Receiver; recv != nil && !e.DelegateInvoke {
			t := recv.Type()
			if symbols.IsRestricted(t) && !e.Method.Static && e.Method.Container != nil && e.Method.Container.IsReferenceType() {
				c.report(binderr.ErrCallOnRestrictedType, recv.Loc(), e.Method.Name, t)
			}
		}
		c.checkBoxedArguments(e.Args)
	case *bound.FunctionPointerCall:
		c.checkBoxedArguments(e.Args)
	case *bound.DynamicInvocation:
		if g, ok := e.Callee.(*bound.MethodGroup); ok && g.Receiver != nil {
			c.checkDynamicOperand(g.Receiver)
		}
		for _, a := range e.Args {
			c.checkDynamicOperand(a)
		}
	}
}

func (c *callContext) checkBoxedArguments(args []bound.Expr) {
	for _, a := range args {
		switch a := a.(type) {
		case *bound.Conversion:
			if a.Conv.Kind == symbols.Boxing && symbols.IsRestricted(a.Operand.Type()) {
				c.report(binderr.ErrRestrictedTypeBoxing, a.At, a.Operand.Type(), a.Typ)
			}
		case *bound.ArrayCreation:
			c.checkBoxedArguments(a.Elems)
		case *bound.CollectionCreation:
			c.checkBoxedArguments(a.Elems)
		}
	}
}

// checkDynamicOperand reports a restricted value passed to the runtime
// binder, which receives every operand as object.
func (c *callContext) checkDynamicOperand(e bound.Expr) {
	if t := e.Type(); symbols.IsRestricted(t) {
		c.report(binderr.ErrRestrictedTypeBoxing, e.Loc(), t, symbols.Dynamic)
	}
}
