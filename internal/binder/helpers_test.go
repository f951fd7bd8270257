package binder

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

var (
	callLoc  = binderr.Loc{Path: "/src/app/a.cs", Line: 7, Col: 9}
	parenLoc = binderr.Loc{Path: "/src/app/a.cs", Line: 7, Col: 10}
)

func lit(v int64) *bound.Literal {
	return &bound.Literal{Node: bound.Node{Src: strconv.FormatInt(v, 10)}, Value: symbols.IntConstant(v)}
}

func strLit(s string) *bound.Literal {
	return &bound.Literal{Node: bound.Node{Src: strconv.Quote(s)}, Value: symbols.StringConstant(s)}
}

func boolLit(v bool) *bound.Literal {
	return &bound.Literal{Node: bound.Node{Src: strconv.FormatBool(v)}, Value: &symbols.Constant{Kind: symbols.ConstBool, Value: v}}
}

func local(name string, t symbols.Type) *bound.Local {
	return &bound.Local{Node: bound.Node{Src: name}, Name: name, Typ: t}
}

func param(name string, t symbols.Type) *symbols.Parameter {
	return &symbols.Parameter{Name: name, Type: t}
}

func withDefault(p *symbols.Parameter, c *symbols.Constant) *symbols.Parameter {
	p.Default = c
	return p
}

func staticMethod(name string, ret symbols.Type, ps ...*symbols.Parameter) *symbols.Method {
	return &symbols.Method{Name: name, Params: ps, Return: ret, Static: true}
}

func instanceMethod(name string, ret symbols.Type, ps ...*symbols.Parameter) *symbols.Method {
	return &symbols.Method{Name: name, Params: ps, Return: ret}
}

func group(name string, recv bound.Expr, ms ...*symbols.Method) *bound.MethodGroup {
	return &bound.MethodGroup{Node: bound.Node{Src: name}, Name: name, Receiver: recv, Methods: ms, Kind: symbols.Viable}
}

func pos(e bound.Expr) ArgumentSyntax { return ArgumentSyntax{Expr: e, At: e.Loc()} }

func named(name string, e bound.Expr) ArgumentSyntax {
	return ArgumentSyntax{Name: name, Expr: e, At: e.Loc()}
}

func byRef(rk symbols.RefKind, e bound.Expr) ArgumentSyntax {
	return ArgumentSyntax{RefKind: rk, Expr: e, At: e.Loc()}
}

func argList(args ...ArgumentSyntax) ArgumentSyntax {
	return ArgumentSyntax{ArgList: &ArgListSyntax{Args: args}}
}

func callOf(callee bound.Expr, args ...ArgumentSyntax) *CallSyntax {
	return &CallSyntax{Callee: callee, Args: args, At: callLoc, OpenParen: parenLoc, Src: callee.Text() + "(...)"}
}

func newScope() *Scope {
	return &Scope{Member: &Member{Name: "Run"}, FilePath: "/src/app/a.cs"}
}

func bindWith(b *Binder, s *Scope, call *CallSyntax) (bound.Expr, *binderr.Bag) {
	bag := &binderr.Bag{}
	return b.BindCall(s, call, bag), bag
}

func bind(call *CallSyntax) (bound.Expr, *binderr.Bag) {
	return bindWith(New(Config{}), newScope(), call)
}

func asCall(t *testing.T, e bound.Expr) *bound.Call {
	t.Helper()
	c, ok := e.(*bound.Call)
	require.True(t, ok, "got %T", e)
	return c
}

func asDynamic(t *testing.T, e bound.Expr) *bound.DynamicInvocation {
	t.Helper()
	d, ok := e.(*bound.DynamicInvocation)
	require.True(t, ok, "got %T", e)
	return d
}

func asBad(t *testing.T, e bound.Expr) *bound.BadExpr {
	t.Helper()
	b, ok := e.(*bound.BadExpr)
	require.True(t, ok, "got %T", e)
	return b
}

func delegateOf(name string, ret symbols.Type, ps ...*symbols.Parameter) *symbols.DelegateType {
	return &symbols.DelegateType{Name: name, Invoke: &symbols.Method{Name: "Invoke", Params: ps, Return: ret}}
}
