package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

func outParam(name string, t symbols.Type) *symbols.Parameter {
	p := param(name, t)
	p.RefKind = symbols.RefOut
	return p
}

func outVar(name string) ArgumentSyntax {
	return byRef(symbols.RefOut, &bound.PendingVar{Node: bound.Node{Src: "out var " + name}, Name: name})
}

func TestResolutionFailures(t *testing.T) {
	tp := &symbols.TypeParam{Name: "T"}
	generic := &symbols.Method{Name: "G", Static: true, TypeParams: []*symbols.TypeParam{tp}, Params: []*symbols.Parameter{param("a", tp), param("b", tp)}, Return: tp}

	tests := []struct {
		name      string
		group     *bound.MethodGroup
		args      []ArgumentSyntax
		wantCodes []binderr.Code
		wantArgs  []interface{}
		wantTyp   symbols.Type
	}{
		{
			name:      "bad argument",
			group:     group("M", nil, staticMethod("M", symbols.Int, param("x", symbols.Int))),
			args:      []ArgumentSyntax{pos(strLit("s"))},
			wantCodes: []binderr.Code{binderr.ErrBadArgument},
			wantArgs:  []interface{}{1, "string", symbols.Int},
			wantTyp:   symbols.Int,
		},
		{
			name:      "wrong arity",
			group:     group("M", nil, staticMethod("M", symbols.Int, param("x", symbols.Int))),
			args:      []ArgumentSyntax{pos(lit(1)), pos(lit(2))},
			wantCodes: []binderr.Code{binderr.ErrBadArgCount},
			wantArgs:  []interface{}{"M", 2},
			wantTyp:   symbols.Int,
		},
		{
			name:      "missing argument",
			group:     group("M", nil, staticMethod("M", symbols.Int, param("x", symbols.Int))),
			wantCodes: []binderr.Code{binderr.ErrMissingArgument},
			wantTyp:   symbols.Int,
		},
		{
			name:      "unknown name",
			group:     group("M", nil, staticMethod("M", symbols.Int, param("x", symbols.Int))),
			args:      []ArgumentSyntax{named("y", lit(1))},
			wantCodes: []binderr.Code{binderr.ErrBadNamedArgument},
			wantArgs:  []interface{}{"M", "y"},
			wantTyp:   symbols.Int,
		},
		{
			name:      "name of a positional argument",
			group:     group("M", nil, staticMethod("M", symbols.Int, param("x", symbols.Int), param("y", symbols.Int))),
			args:      []ArgumentSyntax{pos(lit(1)), named("x", lit(2))},
			wantCodes: []binderr.Code{binderr.ErrNamedArgumentPosition},
			wantTyp:   symbols.Int,
		},
		{
			name:      "duplicate name",
			group:     group("M", nil, staticMethod("M", symbols.Int, param("x", symbols.Int), param("y", symbols.Int))),
			args:      []ArgumentSyntax{named("y", lit(1)), named("y", lit(2))},
			wantCodes: []binderr.Code{binderr.ErrDuplicateNamedArgument},
			wantTyp:   symbols.Int,
		},
		{
			name:      "missing ref",
			group:     group("M", nil, staticMethod("M", symbols.Void, outParam("x", symbols.Int))),
			args:      []ArgumentSyntax{pos(local("v", symbols.Int))},
			wantCodes: []binderr.Code{binderr.ErrBadArgRef},
			wantArgs:  []interface{}{1, "out"},
			wantTyp:   symbols.Void,
		},
		{
			name:      "unexpected ref",
			group:     group("M", nil, staticMethod("M", symbols.Void, param("x", symbols.Int))),
			args:      []ArgumentSyntax{byRef(symbols.RefRef, local("v", symbols.Int))},
			wantCodes: []binderr.Code{binderr.ErrBadArgument},
			wantArgs:  []interface{}{1, "ref int", symbols.Int},
			wantTyp:   symbols.Void,
		},
		{
			name:      "inference failure",
			group:     group("G", nil, generic),
			args:      []ArgumentSyntax{pos(lit(1)), pos(strLit("s"))},
			wantCodes: []binderr.Code{binderr.ErrCantInferTypeArgs},
			wantTyp:   symbols.Unknown,
		},
		{
			name: "type argument count",
			group: func() *bound.MethodGroup {
				g := group("G", nil, generic)
				g.TypeArgs = []symbols.Type{symbols.Int, symbols.Int}
				return g
			}(),
			args:      []ArgumentSyntax{pos(lit(1)), pos(lit(2))},
			wantCodes: []binderr.Code{binderr.ErrBadTypeArgCount},
			wantTyp:   symbols.Unknown,
		},
		{
			name:      "no candidates",
			group:     group("Missing", nil),
			args:      []ArgumentSyntax{pos(lit(1))},
			wantCodes: []binderr.Code{binderr.ErrNoSuchMember},
			wantTyp:   symbols.Unknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, bag := bind(callOf(tt.group, tt.args...))

			require.Equal(t, tt.wantCodes, bag.Codes())
			if tt.wantArgs != nil {
				assert.Equal(t, tt.wantArgs, bag.Diagnostics()[0].Args)
			}
			call := asCall(t, e)
			assert.True(t, call.Errors)
			assert.NotEqual(t, symbols.Viable, call.Kind)
			assert.Same(t, tt.wantTyp, call.Typ)
			assert.Len(t, call.Args, len(tt.args))
		})
	}
}

func TestFailedCallKind(t *testing.T) {
	e, _ := bind(callOf(group("Missing", nil), pos(lit(1))))
	assert.Equal(t, symbols.Empty, asCall(t, e).Kind)

	m := staticMethod("M", symbols.Int, param("x", symbols.Int))
	e, _ = bind(callOf(group("M", nil, m), pos(strLit("s"))))
	call := asCall(t, e)
	assert.Equal(t, symbols.OverloadResolutionFailure, call.Kind)
	assert.Same(t, m, call.Method)
	assert.Equal(t, []*symbols.Method{m}, call.OriginalMethods)
}

func TestOutVariableRecovery(t *testing.T) {
	mk := func(out symbols.Type) *symbols.Method {
		return staticMethod("Parse", symbols.Bool, param("s", symbols.String), outParam("r", out))
	}
	tests := []struct {
		name      string
		methods   []*symbols.Method
		wantCodes []binderr.Code
		wantTyp   symbols.Type
	}{
		{
			name:      "single candidate",
			methods:   []*symbols.Method{mk(symbols.Int)},
			wantCodes: []binderr.Code{binderr.ErrBadArgument},
			wantTyp:   symbols.Int,
		},
		{
			name:      "candidates agree",
			methods:   []*symbols.Method{mk(symbols.Int), mk(symbols.Int)},
			wantCodes: []binderr.Code{binderr.ErrBadArgument},
			wantTyp:   symbols.Int,
		},
		{
			name:      "candidates disagree",
			methods:   []*symbols.Method{mk(symbols.Int), mk(symbols.Long)},
			wantCodes: []binderr.Code{binderr.ErrBadArgument, binderr.ErrCantInferOutVariable},
			wantTyp:   symbols.Unknown,
		},
		{
			name: "only the first candidates are consulted",
			methods: func() []*symbols.Method {
				var ms []*symbols.Method
				for i := 0; i < maxParameterListsForErrorRecovery; i++ {
					ms = append(ms, mk(symbols.Int))
				}
				return append(ms, mk(symbols.String))
			}(),
			wantCodes: []binderr.Code{binderr.ErrBadArgument},
			wantTyp:   symbols.Int,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, bag := bind(callOf(group("Parse", nil, tt.methods...), pos(boolLit(true)), outVar("v")))

			assert.Equal(t, tt.wantCodes, bag.Codes())
			call := asCall(t, e)
			v, ok := call.Args[1].(*bound.Local)
			require.True(t, ok, "got %T", call.Args[1])
			assert.Equal(t, "v", v.Name)
			assert.Same(t, tt.wantTyp, v.Typ)
			assert.Equal(t, []symbols.RefKind{symbols.RefNone, symbols.RefOut}, call.RefKinds)
		})
	}
}

func TestOutVariableTakesParameterType(t *testing.T) {
	m := staticMethod("Parse", symbols.Bool, param("s", symbols.String), outParam("r", symbols.Int))
	e, bag := bind(callOf(group("Parse", nil, m), pos(strLit("1")), outVar("v")))

	require.Empty(t, bag.Codes())
	call := asCall(t, e)
	v, ok := call.Args[1].(*bound.Local)
	require.True(t, ok, "got %T", call.Args[1])
	assert.Same(t, symbols.Int, v.Typ)
	assert.Equal(t, `Parse("1", out v)`, bound.Format(call))
}

func TestLambdaRecovery(t *testing.T) {
	action := delegateOf("Action<int>", symbols.Void, param("arg1", symbols.Int))

	t.Run("bound against the candidate delegate", func(t *testing.T) {
		m := staticMethod("Each", symbols.Void, param("f", action), param("n", symbols.Int))
		e, bag := bind(callOf(group("Each", nil, m), pos(lambda("x")), pos(strLit("s"))))

		assert.Equal(t, []binderr.Code{binderr.ErrBadArgument}, bag.Codes())
		assert.Equal(t, 2, bag.Diagnostics()[0].Args[0])
		bl, ok := asCall(t, e).Args[0].(*bound.BoundLambda)
		require.True(t, ok)
		assert.Same(t, action, bl.Delegate)
	})
	t.Run("shape mismatch stays silent", func(t *testing.T) {
		m := staticMethod("Each", symbols.Void, param("f", action), param("n", symbols.Int))
		e, bag := bind(callOf(group("Each", nil, m), pos(lambda("x", "y")), pos(lit(1))))

		assert.Equal(t, []binderr.Code{binderr.ErrBadArgument}, bag.Codes())
		bl, ok := asCall(t, e).Args[0].(*bound.BoundLambda)
		require.True(t, ok)
		assert.True(t, bl.Errors)
	})
	t.Run("no delegate parameter", func(t *testing.T) {
		m := staticMethod("M", symbols.Void, param("n", symbols.Int), param("o", symbols.Int))
		e, bag := bind(callOf(group("M", nil, m), pos(strLit("s")), pos(lambda("x"))))

		assert.Equal(t, []binderr.Code{binderr.ErrBadArgument, binderr.ErrLambdaNeedsTarget}, bag.Codes())
		_, ok := asCall(t, e).Args[1].(*bound.Lambda)
		assert.True(t, ok)
	})
	t.Run("the diagnosed lambda is not reported twice", func(t *testing.T) {
		m := staticMethod("M", symbols.Void, param("n", symbols.Int))
		_, bag := bind(callOf(group("M", nil, m), pos(lambda("x"))))

		assert.Equal(t, []binderr.Code{binderr.ErrBadArgument}, bag.Codes())
		assert.Equal(t, "lambda expression", bag.Diagnostics()[0].Args[1])
	})
}

func TestDeferredArgumentErrors(t *testing.T) {
	typeless := &bound.TargetTyped{Form: "conditional", Arms: []bound.Expr{lit(1), strLit("s")}}
	m := staticMethod("M", symbols.Void, param("a", symbols.Int), param("b", symbols.Int))

	_, bag := bind(callOf(group("M", nil, m), pos(strLit("x")), pos(&bound.Tuple{Elems: []bound.Expr{typeless, lambda()}})))

	assert.Equal(t, []binderr.Code{binderr.ErrBadArgument, binderr.ErrNoNaturalType, binderr.ErrLambdaNeedsTarget}, bag.Codes())
	assert.Equal(t, []interface{}{"conditional"}, bag.Diagnostics()[1].Args)
}

func TestTargetTypedArgument(t *testing.T) {
	cond := &bound.TargetTyped{Node: bound.Node{Src: "c ? 1 : 2"}, Form: "conditional", Arms: []bound.Expr{lit(1), lit(2)}}
	m := staticMethod("M", symbols.Void, param("x", symbols.Long))

	e, bag := bind(callOf(group("M", nil, m), pos(cond)))

	require.Empty(t, bag.Codes())
	conv, ok := asCall(t, e).Args[0].(*bound.Conversion)
	require.True(t, ok)
	assert.Equal(t, symbols.TargetTyped, conv.Conv.Kind)
}

func TestExtensionFailures(t *testing.T) {
	widget := &symbols.NamedType{Name: "Widget", TypeKind: symbols.KindClass}
	gadget := &symbols.NamedType{Name: "Gadget", TypeKind: symbols.KindClass}

	t.Run("receiver does not convert", func(t *testing.T) {
		g := group("Ext", local("g", gadget))
		g.Extensions = extensionPair(widget)[:1]
		e, bag := bind(callOf(g, pos(lit(1))))

		assert.Equal(t, []binderr.Code{binderr.ErrNoSuchMember}, bag.Codes())
		call := asCall(t, e)
		assert.True(t, call.InvokedAsExtension)
		assert.Nil(t, call.Receiver)
		assert.Len(t, call.Args, 2)
	})
	t.Run("argument numbers exclude the receiver", func(t *testing.T) {
		g := group("Ext", local("w", widget))
		g.Extensions = extensionPair(widget)[:1]
		_, bag := bind(callOf(g, pos(boolLit(true))))

		require.Equal(t, []binderr.Code{binderr.ErrBadArgument}, bag.Codes())
		assert.Equal(t, 1, bag.Diagnostics()[0].Args[0])
	})
	t.Run("ordinary failure wins over extension failure", func(t *testing.T) {
		own := instanceMethod("Ext", symbols.Void, param("s", symbols.String))
		g := group("Ext", local("w", widget), own)
		g.Extensions = extensionPair(widget)[:1]
		e, bag := bind(callOf(g, pos(boolLit(true))))

		require.Equal(t, []binderr.Code{binderr.ErrBadArgument}, bag.Codes())
		assert.Equal(t, symbols.String, bag.Diagnostics()[0].Args[2])
		call := asCall(t, e)
		assert.False(t, call.InvokedAsExtension)
		assert.Same(t, own, call.Method)
	})
	t.Run("extension applies where the ordinary method does not", func(t *testing.T) {
		own := instanceMethod("Ext", symbols.Void, param("s", symbols.String))
		g := group("Ext", local("w", widget), own)
		g.Extensions = extensionPair(widget)[:1]
		e, bag := bind(callOf(g, pos(lit(1))))

		require.Empty(t, bag.Codes())
		assert.True(t, asCall(t, e).InvokedAsExtension)
	})
	t.Run("static receiver does not see extensions", func(t *testing.T) {
		g := group("Ext", &bound.TypeExpr{Typ: widget})
		g.Extensions = extensionPair(widget)[:1]
		_, bag := bind(callOf(g, pos(lit(1))))

		assert.Equal(t, []binderr.Code{binderr.ErrNoSuchMember}, bag.Codes())
	})
}

func TestStandInMethod(t *testing.T) {
	tp := &symbols.TypeParam{Name: "T"}
	generic := &symbols.Method{Name: "G", TypeParams: []*symbols.TypeParam{tp}, Params: []*symbols.Parameter{param("x", tp)}, Return: tp}
	a := staticMethod("M", symbols.Int)
	b := staticMethod("M", symbols.Int)
	c := staticMethod("M", symbols.String)

	tests := []struct {
		name  string
		cands []*symbols.Method
		same  *symbols.Method
		want  symbols.Type
	}{
		{name: "none", want: symbols.Unknown},
		{name: "single", cands: []*symbols.Method{a}, same: a, want: symbols.Int},
		{name: "single usable among generics", cands: []*symbols.Method{generic, a}, same: a, want: symbols.Int},
		{name: "common return", cands: []*symbols.Method{a, b}, want: symbols.Int},
		{name: "different returns", cands: []*symbols.Method{a, c}, want: symbols.Unknown},
		{name: "generic return", cands: []*symbols.Method{generic}, want: symbols.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := standInMethod("M", tt.cands)
			if tt.same != nil {
				assert.Same(t, tt.same, m)
			}
			assert.Same(t, tt.want, m.Return)
		})
	}
}
