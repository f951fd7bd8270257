package registry

import "martianoff/callbind/internal/symbols"

// Well-known runtime types. They are shared by every registry and never mutated.
var (
	// ValueType is the reference base of every struct. Calling one of its
	// methods on a struct boxes the receiver.
	ValueType = &symbols.NamedType{Name: "ValueType", Namespace: "System", TypeKind: symbols.KindClass}

	// TypedReference and RuntimeArgumentHandle are restricted: their values
	// must never be boxed.
	TypedReference        = &symbols.NamedType{Name: "TypedReference", Namespace: "System", TypeKind: symbols.KindStruct, Restricted: true, Base: ValueType}
	RuntimeArgumentHandle = &symbols.NamedType{Name: "RuntimeArgumentHandle", Namespace: "System", TypeKind: symbols.KindStruct, Restricted: true, Base: ValueType}

	// DispatchWrapper and UnknownWrapper wrap interop default arguments.
	DispatchWrapper = &symbols.NamedType{Name: "DispatchWrapper", Namespace: "System.Runtime.InteropServices", TypeKind: symbols.KindClass}
	UnknownWrapper  = &symbols.NamedType{Name: "UnknownWrapper", Namespace: "System.Runtime.InteropServices", TypeKind: symbols.KindClass}

	listT = &symbols.TypeParam{Name: "T"}

	// List is a collection type usable as a params collection.
	List = &symbols.NamedType{
		Name:        "List",
		Namespace:   "System.Collections.Generic",
		TypeKind:    symbols.KindClass,
		TypeParams:  []*symbols.TypeParam{listT},
		ElementType: listT,
	}
)

func init() {
	ValueType.Methods = []*symbols.Method{
		{Name: "GetHashCode", Container: ValueType, Return: symbols.Int},
		{Name: "ToString", Container: ValueType, Return: symbols.String},
	}
}

// wellKnownDelegates are the non-generic delegate shapes scenarios commonly need.
func wellKnownDelegates() []*symbols.DelegateType {
	invoke := func(ret symbols.Type, params ...symbols.Type) *symbols.Method {
		m := &symbols.Method{Name: "Invoke", Return: ret}
		for i, p := range params {
			m.Params = append(m.Params, &symbols.Parameter{Name: "arg" + string(rune('1'+i)), Type: p})
		}
		return m
	}
	return []*symbols.DelegateType{
		{Name: "Action", Invoke: invoke(symbols.Void)},
		{Name: "Action<int>", Invoke: invoke(symbols.Void, symbols.Int)},
		{Name: "Action<string>", Invoke: invoke(symbols.Void, symbols.String)},
		{Name: "Func<int>", Invoke: invoke(symbols.Int)},
		{Name: "Func<int, int>", Invoke: invoke(symbols.Int, symbols.Int)},
		{Name: "Func<string, int>", Invoke: invoke(symbols.Int, symbols.String)},
	}
}

// DefaultRegistry returns a registry preloaded with the well-known types and delegates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []*symbols.NamedType{ValueType, TypedReference, RuntimeArgumentHandle, DispatchWrapper, UnknownWrapper, List} {
		if err := r.RegisterType(t); err != nil {
			panic(err)
		}
	}
	for _, d := range wellKnownDelegates() {
		if err := r.RegisterDelegate(d); err != nil {
			panic(err)
		}
	}
	return r
}
