package binder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

func TestBindExactMatch(t *testing.T) {
	m := staticMethod("M", symbols.Void, param("a", symbols.Int), param("b", symbols.Int))
	e, bag := bind(callOf(group("M", nil, m), pos(lit(1)), pos(lit(2))))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	assert.Same(t, m, call.Method)
	assert.Len(t, call.Args, 2)
	assert.True(t, call.DefaultArgs.IsEmpty())
	assert.Nil(t, call.ArgsToParams)
	assert.Equal(t, symbols.Viable, call.Kind)
	assert.False(t, call.HasErrors())
	assert.Equal(t, "M(1, 2)", bound.Format(call))
}

func TestBindDefaultArgument(t *testing.T) {
	m := staticMethod("M", symbols.Void, withDefault(param("x", symbols.Int), symbols.IntConstant(5)))
	e, bag := bind(callOf(group("M", nil, m)))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	require.Len(t, call.Args, 1)
	assert.True(t, call.DefaultArgs.Has(0))
	assert.Equal(t, 1, call.DefaultArgs.Count())
	five, ok := call.Args[0].(*bound.Literal)
	require.True(t, ok, "got %T", call.Args[0])
	assert.Equal(t, int64(5), five.Value.Value)
	assert.Equal(t, "M(5)", bound.Format(call))
}

func TestBindDynamicReceiver(t *testing.T) {
	dyn := local("dyn", symbols.Dynamic)
	e, bag := bind(callOf(group("M", dyn), pos(lit(1))))

	require.Empty(t, bag.Codes())
	d := asDynamic(t, e)
	assert.Same(t, symbols.Dynamic, d.Type())
	assert.Empty(t, d.Applicable)
	assert.False(t, d.Errors)
	assert.Equal(t, "dynamic dyn.M(1)", bound.Format(d))
}

func TestBindArgList(t *testing.T) {
	m := &symbols.Method{Name: "M", Static: true, Vararg: true, Return: symbols.Void}
	x := strLit("x")
	e, bag := bind(callOf(group("M", nil, m), argList(pos(lit(1)), pos(x))))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	require.Len(t, call.Args, 1)
	op, ok := call.Args[0].(*bound.ArgListOperator)
	require.True(t, ok, "got %T", call.Args[0])
	require.Len(t, op.Args, 2)

	boxed, ok := op.Args[0].(*bound.Conversion)
	require.True(t, ok, "got %T", op.Args[0])
	assert.Same(t, symbols.Object, boxed.Typ)
	assert.Equal(t, symbols.Boxing, boxed.Conv.Kind)
	assert.Same(t, x, op.Args[1])

	assert.Equal(t, []int{-1}, call.ArgsToParams)
	assert.Equal(t, `M(__arglist((object)1, "x"))`, bound.Format(call))
}

func TestBindAmbiguous(t *testing.T) {
	tests := []struct {
		name    string
		second  symbols.Type
		wantTyp symbols.Type
	}{
		{name: "same return type", second: symbols.Int, wantTyp: symbols.Int},
		{name: "different return types", second: symbols.String, wantTyp: symbols.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m1 := staticMethod("M", symbols.Int, param("a", symbols.Int), param("b", symbols.Object))
			m2 := staticMethod("M", tt.second, param("a", symbols.Object), param("b", symbols.Int))
			e, bag := bind(callOf(group("M", nil, m1, m2), pos(lit(1)), pos(lit(1))))

			assert.Equal(t, []binderr.Code{binderr.ErrAmbiguousCall}, bag.Codes())
			call := asCall(t, e)
			assert.Equal(t, symbols.Ambiguous, call.Kind)
			assert.True(t, call.Errors)
			assert.Same(t, tt.wantTyp, call.Typ)
			assert.Equal(t, "M", call.Method.Name)
			assert.Equal(t, []*symbols.Method{m1, m2}, call.OriginalMethods)
			assert.Equal(t, "M(1, 1)", bound.Format(call))
		})
	}
}

func genericExtension() (*symbols.Method, *symbols.NamedType) {
	tp := &symbols.TypeParam{Name: "T"}
	ext := &symbols.Method{
		Name:       "Ext",
		Static:     true,
		Extension:  symbols.ClassicExtension,
		TypeParams: []*symbols.TypeParam{tp},
		Params:     []*symbols.Parameter{param("self", tp), param("y", symbols.Int)},
		Return:     symbols.Void,
	}
	return ext, &symbols.NamedType{Name: "Widget", TypeKind: symbols.KindClass}
}

func TestBindGenericExtension(t *testing.T) {
	ext, widget := genericExtension()
	w := local("w", widget)
	three := lit(3)
	g := group("Ext", w)
	g.Extensions = []*symbols.Method{ext}

	e, bag := bind(callOf(g, pos(three)))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	assert.Nil(t, call.Receiver)
	assert.True(t, call.InvokedAsExtension)
	assert.Same(t, w, call.ExtensionReceiver())
	assert.Equal(t, []bound.Expr{three}, call.ExplicitArguments())
	assert.Same(t, ext, call.Method.Definition)
	assert.Equal(t, []symbols.Type{widget}, call.Method.TypeArgs)
	assert.Nil(t, call.ArgsToParams)
	assert.Equal(t, "Ext(w, 3)", bound.Format(call))
}

func TestArityClosure(t *testing.T) {
	ints := &symbols.ArrayType{Elem: symbols.Int}
	rest := param("rest", ints)
	rest.Params = true
	ext, widget := genericExtension()

	tests := []struct {
		name string
		call func() *CallSyntax
		want string
	}{
		{
			name: "positional",
			call: func() *CallSyntax {
				m := staticMethod("M", symbols.Void, param("a", symbols.Int), param("b", symbols.Long))
				return callOf(group("M", nil, m), pos(lit(1)), pos(lit(2)))
			},
			want: "M(1, (long)2)",
		},
		{
			name: "defaults",
			call: func() *CallSyntax {
				m := staticMethod("M", symbols.Void, param("a", symbols.Int),
					withDefault(param("b", symbols.String), symbols.StringConstant("b")),
					withDefault(param("c", symbols.Int), symbols.IntConstant(0)))
				return callOf(group("M", nil, m), pos(lit(1)))
			},
			want: `M(1, "b", 0)`,
		},
		{
			name: "named out of order",
			call: func() *CallSyntax {
				m := staticMethod("M", symbols.Void, param("a", symbols.Int), param("b", symbols.Int))
				return callOf(group("M", nil, m), named("b", lit(2)), named("a", lit(1)))
			},
			want: "M(b: 2, a: 1)",
		},
		{
			name: "expanded params",
			call: func() *CallSyntax {
				m := staticMethod("M", symbols.Void, param("a", symbols.Int), rest)
				return callOf(group("M", nil, m), pos(lit(1)), pos(lit(2)), pos(lit(3)), pos(lit(4)))
			},
			want: "M(1, new int[] {2, 3, 4})",
		},
		{
			name: "classic extension",
			call: func() *CallSyntax {
				g := group("Ext", local("w", widget))
				g.Extensions = []*symbols.Method{ext}
				return callOf(g, pos(lit(3)))
			},
			want: "Ext(w, 3)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, bag := bind(tt.call())
			require.Empty(t, bag.Codes())
			call := asCall(t, e)
			assert.Len(t, call.Args, len(call.Method.Params))
			if call.ArgsToParams != nil {
				assert.Len(t, call.ArgsToParams, len(call.Args))
			}
			assert.Equal(t, tt.want, bound.Format(call))
		})
	}
}

func TestNamedArgumentsKeepTheirMapping(t *testing.T) {
	m := staticMethod("M", symbols.Void, param("a", symbols.Int), param("b", symbols.Int))
	e, bag := bind(callOf(group("M", nil, m), named("b", lit(2)), named("a", lit(1))))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	assert.Equal(t, []int{1, 0}, call.ArgsToParams)
	assert.Equal(t, []string{"b", "a"}, call.Names)
}

func TestBindIsDeterministic(t *testing.T) {
	m1 := staticMethod("M", symbols.Int, param("a", symbols.Int), param("b", symbols.Object))
	m2 := staticMethod("M", symbols.Int, param("a", symbols.Object), param("b", symbols.Int))
	line := withDefault(param("line", symbols.Int), symbols.IntConstant(0))
	line.Caller = symbols.CallerLineNumber
	m3 := staticMethod("N", symbols.Void, param("a", symbols.String), line)

	calls := map[string]func() *CallSyntax{
		"ambiguous": func() *CallSyntax {
			return callOf(group("M", nil, m1, m2), pos(lit(1)), pos(lit(1)))
		},
		"defaults": func() *CallSyntax {
			return callOf(group("N", nil, m3), pos(strLit("s")))
		},
		"dynamic": func() *CallSyntax {
			return callOf(group("M", nil, m1, m2), pos(local("d", symbols.Dynamic)), pos(lit(1)))
		},
	}
	b := New(Config{})
	for name, mk := range calls {
		t.Run(name, func(t *testing.T) {
			first, bag1 := bindWith(b, newScope(), mk())
			second, bag2 := bindWith(b, newScope(), mk())
			assert.Equal(t, bound.Format(first), bound.Format(second))
			assert.Empty(t, cmp.Diff(bag1.Codes(), bag2.Codes()))
			assert.Empty(t, cmp.Diff(bag1.Diagnostics(), bag2.Diagnostics()))
		})
	}
}

func TestExtensionReceiverIsExclusive(t *testing.T) {
	ext, widget := genericExtension()
	member := &symbols.Method{
		Name:      "Twice",
		Extension: symbols.MemberExtension,
		Receiver:  param("s", symbols.String),
		Params:    []*symbols.Parameter{param("n", symbols.Int)},
		Return:    symbols.Int,
	}
	instance := instanceMethod("Run", symbols.Void)

	tests := []struct {
		name     string
		group    *bound.MethodGroup
		args     []ArgumentSyntax
		wantExt  bool
		wantText string
	}{
		{
			name:     "classic extension",
			group:    &bound.MethodGroup{Name: "Ext", Receiver: local("w", widget), Extensions: []*symbols.Method{ext}},
			args:     []ArgumentSyntax{pos(lit(1))},
			wantExt:  true,
			wantText: "Ext(w, 1)",
		},
		{
			name:     "member extension",
			group:    &bound.MethodGroup{Name: "Twice", Receiver: local("s", symbols.String), Extensions: []*symbols.Method{member}},
			args:     []ArgumentSyntax{pos(lit(2))},
			wantText: "s.Twice(2)",
		},
		{
			name:     "instance method",
			group:    &bound.MethodGroup{Name: "Run", Receiver: local("w", widget), Methods: []*symbols.Method{instance}},
			wantText: "w.Run()",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, bag := bind(callOf(tt.group, tt.args...))
			require.Empty(t, bag.Codes())
			call := asCall(t, e)
			assert.Equal(t, tt.wantExt, call.InvokedAsExtension)
			assert.False(t, call.Receiver != nil && call.InvokedAsExtension)
			assert.Equal(t, tt.wantText, bound.Format(call))
		})
	}
}

func TestMemberExtensionBecomesInstanceCall(t *testing.T) {
	member := &symbols.Method{
		Name:      "Twice",
		Extension: symbols.MemberExtension,
		Receiver:  param("s", symbols.String),
		Params:    []*symbols.Parameter{param("n", symbols.Int)},
		Return:    symbols.Int,
	}
	s := local("s", symbols.String)
	g := group("Twice", s)
	g.Extensions = []*symbols.Method{member}

	e, bag := bind(callOf(g, pos(lit(2))))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	assert.Same(t, member, call.Method)
	assert.Same(t, s, call.Receiver)
	assert.False(t, call.InvokedAsExtension)
	assert.Nil(t, call.ArgsToParams)
	assert.Same(t, symbols.Int, call.Typ)
}

func TestOrdinaryMethodsHidesExtensions(t *testing.T) {
	ext, widget := genericExtension()
	own := instanceMethod("Ext", symbols.Int, param("y", symbols.Int))
	g := group("Ext", local("w", widget), own)
	g.Extensions = []*symbols.Method{ext}

	e, bag := bind(callOf(g, pos(lit(1))))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	assert.Same(t, own, call.Method)
	assert.False(t, call.InvokedAsExtension)
}

func TestDefaultsAreIdempotent(t *testing.T) {
	file := withDefault(param("file", symbols.String), symbols.StringConstant(""))
	file.Caller = symbols.CallerFilePath
	member := withDefault(param("member", symbols.String), symbols.StringConstant(""))
	member.Caller = symbols.CallerMemberName
	legacy := withDefault(param("d", symbols.Int), &symbols.Constant{Kind: symbols.ConstDecimal, Value: "1.5"})
	m := staticMethod("Log", symbols.Void, param("msg", symbols.String), file, member, legacy)

	b := New(Config{PathMap: map[string]string{"/src/": "/build/"}})
	var runs [][]bound.Expr
	for i := 0; i < 2; i++ {
		e, bag := bindWith(b, newScope(), callOf(group("Log", nil, m), pos(strLit("hi"))))
		require.Empty(t, bag.Codes())
		call := asCall(t, e)
		assert.Equal(t, []int{1, 2, 3}, call.DefaultArgs.Members())
		runs = append(runs, call.Args)
	}
	assert.Empty(t, cmp.Diff(runs[0], runs[1]))
	assert.Equal(t, `Log("hi", "/build/app/a.cs", "Run", default(int))`, bound.Format(&bound.Call{Method: m, Args: runs[0]}))
}

func TestBindCallReleasesArguments(t *testing.T) {
	m := staticMethod("M", symbols.Void, param("a", symbols.Int))
	call := callOf(group("M", nil, m), pos(lit(1)))
	b := New(Config{})
	for i := 0; i < 3; i++ {
		e, bag := bindWith(b, newScope(), call)
		require.Empty(t, bag.Codes())
		assert.Equal(t, "M(1)", bound.Format(e))
	}
}

func TestNestedCallArgument(t *testing.T) {
	n := staticMethod("N", symbols.Int)
	m := staticMethod("M", symbols.Void, param("a", symbols.Long))
	inner := callOf(group("N", nil, n))
	e, bag := bind(callOf(group("M", nil, m), ArgumentSyntax{Call: inner, At: callLoc}))

	require.Empty(t, bag.Codes())
	assert.Equal(t, "M((long)N())", bound.Format(e))
}
