package conversions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

func TestClassifyType(t *testing.T) {
	iface := &symbols.NamedType{Name: "IShape", TypeKind: symbols.KindInterface}
	shape := &symbols.NamedType{Name: "Shape", TypeKind: symbols.KindClass, Interfaces: []*symbols.NamedType{iface}}
	circle := &symbols.NamedType{Name: "Circle", TypeKind: symbols.KindClass, Base: shape}
	point := &symbols.NamedType{Name: "Point", TypeKind: symbols.KindStruct, Interfaces: []*symbols.NamedType{iface}}
	typedRef := &symbols.NamedType{Name: "TypedReference", TypeKind: symbols.KindStruct, Restricted: true}
	meters := &symbols.NamedType{Name: "Meters", TypeKind: symbols.KindStruct}
	op := &symbols.Method{Name: "op_Implicit", Static: true, Params: []*symbols.Parameter{{Name: "v", Type: symbols.Int}}, Return: meters}
	meters.Implicit = []*symbols.Method{op}

	tests := []struct {
		name     string
		src, dst symbols.Type
		want     symbols.ConversionKind
	}{
		{"identity", symbols.Int, symbols.Int, symbols.Identity},
		{"widening", symbols.Int, symbols.Long, symbols.ImplicitNumeric},
		{"no narrowing", symbols.Long, symbols.Int, symbols.NoConversion},
		{"boxing", symbols.Int, symbols.Object, symbols.Boxing},
		{"string to object", symbols.String, symbols.Object, symbols.ImplicitReference},
		{"to dynamic", symbols.String, symbols.Dynamic, symbols.ImplicitReference},
		{"from dynamic", symbols.Dynamic, symbols.Int, symbols.ImplicitDynamic},
		{"derived to base", circle, shape, symbols.ImplicitReference},
		{"class to interface", circle, iface, symbols.ImplicitReference},
		{"struct to interface", point, iface, symbols.Boxing},
		{"restricted still classifies as boxing", typedRef, symbols.Object, symbols.Boxing},
		{"array covariance", &symbols.ArrayType{Elem: circle}, &symbols.ArrayType{Elem: shape}, symbols.ImplicitReference},
		{"no value array covariance", &symbols.ArrayType{Elem: symbols.Int}, &symbols.ArrayType{Elem: symbols.Object}, symbols.NoConversion},
		{"user-defined", symbols.Int, meters, symbols.UserDefined},
		{"pointer", &symbols.PointerType{Elem: symbols.Int}, symbols.Object, symbols.NoConversion},
		{"error converts", symbols.Unknown, symbols.Int, symbols.Identity},
		{"arglist never boxes", symbols.ArgList, symbols.Object, symbols.NoConversion},
	}
	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyType(tt.src, tt.dst).Kind)
		})
	}
	assert.Same(t, op, c.ClassifyType(symbols.Int, meters).Method)
}

func TestClassifyExpr(t *testing.T) {
	action := &symbols.DelegateType{Name: "Action<int>", Invoke: &symbols.Method{Name: "Invoke", Params: []*symbols.Parameter{{Name: "x", Type: symbols.Int}}, Return: symbols.Void}}
	target := &symbols.Method{Name: "Print", Static: true, Params: []*symbols.Parameter{{Name: "v", Type: symbols.Int}}, Return: symbols.Void}
	other := &symbols.Method{Name: "Print", Static: true, Params: []*symbols.Parameter{{Name: "v", Type: symbols.String}}, Return: symbols.Void}
	null := &bound.Literal{Value: symbols.NullConstant}

	c := New()
	assert.Equal(t, symbols.NullLiteral, c.Classify(null, symbols.String).Kind)
	assert.False(t, c.Classify(null, symbols.Int).Exists())

	assert.Equal(t, symbols.AnonymousFunction, c.Classify(&bound.Lambda{Params: []string{"x"}}, action).Kind)
	assert.False(t, c.Classify(&bound.Lambda{Params: []string{"x", "y"}}, action).Exists())
	assert.False(t, c.Classify(&bound.Lambda{Params: []string{"x"}}, symbols.Object).Exists())

	conv := c.Classify(&bound.MethodGroup{Name: "Print", Methods: []*symbols.Method{other, target}}, action)
	assert.Equal(t, symbols.MethodGroupConversion, conv.Kind)
	assert.Same(t, target, conv.Method)

	assert.True(t, c.Classify(&bound.PendingVar{Name: "v"}, symbols.Long).IsIdentity())

	cond := &bound.TargetTyped{Form: "conditional", Arms: []bound.Expr{
		&bound.Literal{Value: symbols.IntConstant(1)},
		null,
	}}
	assert.False(t, c.Classify(cond, symbols.Int).Exists())
	assert.Equal(t, symbols.TargetTyped, c.Classify(cond, symbols.Object).Kind)
}
