package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/callbind/internal/symbols"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	assert.NotNil(t, r)
	assert.Empty(t, r.Types())
}

func TestRegisterType(t *testing.T) {
	r := NewRegistry()
	m := &symbols.Method{Name: "M", Return: symbols.Void}
	widget := &symbols.NamedType{Name: "Widget", TypeKind: symbols.KindClass, Methods: []*symbols.Method{m}}

	require.NoError(t, r.RegisterType(widget))
	assert.Same(t, widget, m.Container)

	got, ok := r.Type("Widget")
	assert.True(t, ok)
	assert.Same(t, widget, got)

	_, ok = r.Type("Unknown")
	assert.False(t, ok)

	err := r.RegisterType(&symbols.NamedType{Name: "Widget"})
	var dup *DuplicateError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "type 'Widget' is already declared; choose a different name", err.Error())
}

func TestRegisterExtension(t *testing.T) {
	r := NewRegistry()
	ext := &symbols.Method{
		Name:      "Ext",
		Static:    true,
		Extension: symbols.ClassicExtension,
		Params:    []*symbols.Parameter{{Name: "self", Type: symbols.String}, {Name: "y", Type: symbols.Int}},
		Return:    symbols.Void,
	}

	tests := []struct {
		name      string
		m         *symbols.Method
		wantError bool
	}{
		{name: "classic", m: ext},
		{name: "duplicate", m: ext, wantError: true},
		{name: "not an extension", m: &symbols.Method{Name: "Plain"}, wantError: true},
		{name: "classic without receiver", m: &symbols.Method{Name: "Bad", Extension: symbols.ClassicExtension}, wantError: true},
		{
			name: "member extension",
			m: &symbols.Method{
				Name:      "Ext",
				Extension: symbols.MemberExtension,
				Receiver:  &symbols.Parameter{Name: "s", Type: symbols.Int},
				Return:    symbols.Void,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.RegisterExtension(tt.m)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	ms, ps := r.Extensions("Ext")
	assert.Len(t, ms, 2)
	assert.Empty(t, ps)

	r.RegisterExtensionProperty(&symbols.Property{Name: "Length", Type: symbols.Int})
	_, ps = r.Extensions("Length")
	require.Len(t, ps, 1)
	assert.True(t, ps[0].Extension)
}

func TestLookup(t *testing.T) {
	baseM := &symbols.Method{Name: "M", Params: []*symbols.Parameter{{Name: "x", Type: symbols.Int}}, Return: symbols.Void}
	baseOther := &symbols.Method{Name: "M", Params: []*symbols.Parameter{{Name: "s", Type: symbols.String}}, Return: symbols.Void}
	secret := &symbols.Method{Name: "Secret", Access: symbols.Private, Return: symbols.Void}
	base := &symbols.NamedType{Name: "Base", TypeKind: symbols.KindClass, Methods: []*symbols.Method{baseM, baseOther, secret}}
	hiding := &symbols.Method{Name: "M", Params: []*symbols.Parameter{{Name: "x", Type: symbols.Int}}, Return: symbols.Void}
	guarded := &symbols.Method{Name: "Guarded", Access: symbols.Protected, Return: symbols.Void}
	derived := &symbols.NamedType{Name: "Derived", TypeKind: symbols.KindClass, Base: base, Methods: []*symbols.Method{hiding, guarded}}
	size := &symbols.Property{Name: "Size", Type: symbols.Int}
	derived.Props = []*symbols.Property{size}

	r := NewRegistry()
	require.NoError(t, r.RegisterType(base))
	require.NoError(t, r.RegisterType(derived))

	res := r.Lookup(derived, "M", nil)
	assert.Equal(t, symbols.Viable, res.Kind)
	assert.Equal(t, []*symbols.Method{hiding, baseOther}, res.Methods)

	res = r.Lookup(derived, "Secret", nil)
	assert.Equal(t, symbols.Inaccessible, res.Kind)
	assert.Equal(t, []*symbols.Method{secret}, res.Methods)

	res = r.Lookup(base, "Secret", base)
	assert.Equal(t, symbols.Viable, res.Kind)

	assert.Equal(t, symbols.Inaccessible, r.Lookup(derived, "Guarded", nil).Kind)
	assert.Equal(t, symbols.Viable, r.Lookup(derived, "Guarded", derived).Kind)

	res = r.Lookup(derived, "Size", nil)
	assert.Equal(t, symbols.Viable, res.Kind)
	assert.Empty(t, res.Methods)
	assert.Equal(t, []*symbols.Property{size}, res.Properties)

	assert.Equal(t, symbols.Empty, r.Lookup(derived, "Nope", nil).Kind)
	assert.Equal(t, symbols.Empty, r.Lookup(symbols.Int, "M", nil).Kind)
}

func TestMethodAccessible(t *testing.T) {
	owner := &symbols.NamedType{Name: "Owner", TypeKind: symbols.KindClass}
	other := &symbols.NamedType{Name: "Other", TypeKind: symbols.KindClass}
	m := &symbols.Method{Name: "P", Container: owner, Access: symbols.Private}
	assert.True(t, MethodAccessible(m, owner))
	assert.False(t, MethodAccessible(m, other))
	assert.False(t, MethodAccessible(m, nil))
	assert.True(t, MethodAccessible(&symbols.Method{Name: "Q", Container: owner}, nil))
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tr, ok := r.Type("TypedReference")
	require.True(t, ok)
	assert.True(t, symbols.IsRestricted(tr))

	res := r.Lookup(tr, "GetHashCode", nil)
	require.Len(t, res.Methods, 1)
	assert.Same(t, ValueType, res.Methods[0].Container)

	d, ok := r.Delegate("Action<int>")
	require.True(t, ok)
	assert.Len(t, d.Invoke.Params, 1)

	list, ok := r.Type("List")
	require.True(t, ok)
	elem, ok := symbols.ParamsElementType(symbols.Instantiate(list, []symbols.Type{symbols.Int}))
	require.True(t, ok)
	assert.Same(t, symbols.Int, elem)
}

func TestConcurrentLookup(t *testing.T) {
	r := DefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Lookup(TypedReference, "ToString", nil)
			r.Extensions("Ext")
			DefaultRegistry()
		}()
	}
	wg.Wait()
}
