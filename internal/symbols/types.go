// Package symbols is the minimal symbol and type model consumed by the call binder.
//
// It is not a type system: it carries only the facts the binder needs to decide
// how a call site binds (member shapes, parameter attributes, type categories).
package symbols

import (
	"strings"
)

// TypeKind classifies a Type.
type TypeKind int

const (
	KindError TypeKind = iota
	KindVoid
	KindBool
	KindInt
	KindLong
	KindDouble
	KindDecimal
	KindDateTime
	KindString
	KindObject
	KindDynamic
	KindArgList
	KindClass
	KindStruct
	KindInterface
	KindArray
	KindPointer
	KindDelegate
	KindFunctionPointer
	KindTypeParameter
)

// Type represents a structured type.
type Type interface {
	String() string
	Kind() TypeKind
	IsReferenceType() bool
	IsValueType() bool
}

// BasicType is a predeclared type like int, string or object.
type BasicType struct {
	Name string
	K    TypeKind
}

func (t *BasicType) String() string { return t.Name }
func (t *BasicType) Kind() TypeKind { return t.K }
func (t *BasicType) IsReferenceType() bool {
	return t.K == KindString || t.K == KindObject || t.K == KindDynamic
}
func (t *BasicType) IsValueType() bool {
	switch t.K {
	case KindBool, KindInt, KindLong, KindDouble, KindDecimal, KindDateTime, KindArgList:
		return true
	}
	return false
}

// Predeclared types. They are compared by identity.
var (
	Void     = &BasicType{Name: "void", K: KindVoid}
	Bool     = &BasicType{Name: "bool", K: KindBool}
	Int      = &BasicType{Name: "int", K: KindInt}
	Long     = &BasicType{Name: "long", K: KindLong}
	Double   = &BasicType{Name: "double", K: KindDouble}
	Decimal  = &BasicType{Name: "decimal", K: KindDecimal}
	DateTime = &BasicType{Name: "DateTime", K: KindDateTime}
	String   = &BasicType{Name: "string", K: KindString}
	Object   = &BasicType{Name: "object", K: KindObject}
	Dynamic  = &BasicType{Name: "dynamic", K: KindDynamic}
	// ArgList is the type of an __arglist operator.
	ArgList = &BasicType{Name: "__arglist", K: KindArgList}
)

// Predeclared returns the predeclared type with the given name, or nil.
func Predeclared(name string) *BasicType {
	for _, t := range []*BasicType{Void, Bool, Int, Long, Double, Decimal, DateTime, String, Object, Dynamic} {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ErrorType stands in for a type that could not be determined.
type ErrorType struct {
	Name string
}

func (t *ErrorType) String() string {
	if t.Name == "" {
		return "?"
	}
	return t.Name
}
func (t *ErrorType) Kind() TypeKind        { return KindError }
func (t *ErrorType) IsReferenceType() bool { return false }
func (t *ErrorType) IsValueType() bool     { return false }

// Unknown is the shared anonymous error type.
var Unknown = &ErrorType{}

// NamedType is a declared class, struct or interface, possibly generic.
type NamedType struct {
	Name       string
	Namespace  string
	TypeKind   TypeKind // KindClass, KindStruct or KindInterface
	Base       *NamedType
	Interfaces []*NamedType
	TypeParams []*TypeParam
	TypeArgs   []Type
	Definition *NamedType
	// ElementType is set for collection types that can be built from a
	// collection literal, which makes them usable as params collections.
	ElementType Type
	// Restricted marks a value type that must never be boxed.
	Restricted bool
	Access     Accessibility
	// Implicit lists user-defined implicit conversion operators.
	Implicit []*Method
	Methods  []*Method
	Props    []*Property
}

func (t *NamedType) String() string {
	var sb strings.Builder
	if t.Namespace != "" {
		sb.WriteString(t.Namespace)
		sb.WriteByte('.')
	}
	sb.WriteString(t.Name)
	switch {
	case len(t.TypeArgs) > 0:
		writeTypeList(&sb, t.TypeArgs)
	case len(t.TypeParams) > 0:
		params := make([]Type, len(t.TypeParams))
		for i, p := range t.TypeParams {
			params[i] = p
		}
		writeTypeList(&sb, params)
	}
	return sb.String()
}
func (t *NamedType) Kind() TypeKind        { return t.TypeKind }
func (t *NamedType) IsReferenceType() bool { return t.TypeKind != KindStruct }
func (t *NamedType) IsValueType() bool     { return t.TypeKind == KindStruct }

// OriginalDefinition returns the generic definition of a constructed type, or t itself.
func (t *NamedType) OriginalDefinition() *NamedType {
	if t.Definition != nil {
		return t.Definition
	}
	return t
}

// DerivesFrom reports whether t is base or inherits from it through base classes.
func (t *NamedType) DerivesFrom(base *NamedType) bool {
	for c := t; c != nil; c = c.Base {
		if c.OriginalDefinition() == base.OriginalDefinition() {
			return true
		}
	}
	return false
}

// Implements reports whether t or one of its bases lists iface.
func (t *NamedType) Implements(iface *NamedType) bool {
	for c := t; c != nil; c = c.Base {
		for _, i := range c.Interfaces {
			if Identical(i, iface) || i.Implements(iface) {
				return true
			}
		}
	}
	return false
}

// ArrayType is a single-dimensional array.
type ArrayType struct {
	Elem Type
}

func (t *ArrayType) String() string        { return t.Elem.String() + "[]" }
func (t *ArrayType) Kind() TypeKind        { return KindArray }
func (t *ArrayType) IsReferenceType() bool { return true }
func (t *ArrayType) IsValueType() bool     { return false }

// PointerType is an unmanaged pointer.
type PointerType struct {
	Elem Type
}

func (t *PointerType) String() string        { return t.Elem.String() + "*" }
func (t *PointerType) Kind() TypeKind        { return KindPointer }
func (t *PointerType) IsReferenceType() bool { return false }
func (t *PointerType) IsValueType() bool     { return false }

// DelegateType is a named delegate with a single invoke signature.
type DelegateType struct {
	Name   string
	Invoke *Method
	// UseSiteError is non-empty when the invoke signature cannot be used.
	UseSiteError string
}

func (t *DelegateType) String() string        { return t.Name }
func (t *DelegateType) Kind() TypeKind        { return KindDelegate }
func (t *DelegateType) IsReferenceType() bool { return true }
func (t *DelegateType) IsValueType() bool     { return false }

// FunctionPointerType is a raw callable signature without a receiver.
type FunctionPointerType struct {
	Sig       *Method
	Unmanaged bool
}

func (t *FunctionPointerType) String() string {
	var sb strings.Builder
	sb.WriteString("delegate*")
	if t.Unmanaged {
		sb.WriteString(" unmanaged")
	}
	sb.WriteByte('<')
	for _, p := range t.Sig.Params {
		if p.RefKind != RefNone {
			sb.WriteString(p.RefKind.String())
			sb.WriteByte(' ')
		}
		sb.WriteString(p.Type.String())
		sb.WriteString(", ")
	}
	sb.WriteString(t.Sig.Return.String())
	sb.WriteByte('>')
	return sb.String()
}
func (t *FunctionPointerType) Kind() TypeKind        { return KindFunctionPointer }
func (t *FunctionPointerType) IsReferenceType() bool { return false }
func (t *FunctionPointerType) IsValueType() bool     { return false }

// TypeParam is a method or type type parameter.
type TypeParam struct {
	Name        string
	Constraints []Type
	// ValueConstraint and RefConstraint are the struct and class constraints.
	ValueConstraint bool
	RefConstraint   bool
}

func (t *TypeParam) String() string        { return t.Name }
func (t *TypeParam) Kind() TypeKind        { return KindTypeParameter }
func (t *TypeParam) IsReferenceType() bool { return t.RefConstraint }
func (t *TypeParam) IsValueType() bool     { return t.ValueConstraint }

func writeTypeList(sb *strings.Builder, ts []Type) {
	sb.WriteByte('<')
	for i, a := range ts {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a != nil {
			sb.WriteString(a.String())
		}
	}
	sb.WriteByte('>')
}

// Identical reports whether a and b denote the same type.
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && Identical(a.Elem, b.Elem)
	case *PointerType:
		b, ok := b.(*PointerType)
		return ok && Identical(a.Elem, b.Elem)
	case *NamedType:
		b, ok := b.(*NamedType)
		if !ok || a.OriginalDefinition() != b.OriginalDefinition() || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !Identical(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *FunctionPointerType:
		b, ok := b.(*FunctionPointerType)
		if !ok || a.Unmanaged != b.Unmanaged || len(a.Sig.Params) != len(b.Sig.Params) {
			return false
		}
		for i, p := range a.Sig.Params {
			q := b.Sig.Params[i]
			if p.RefKind != q.RefKind || !Identical(p.Type, q.Type) {
				return false
			}
		}
		return Identical(a.Sig.Return, b.Sig.Return)
	}
	return false
}

// IsDynamic reports whether t is the dynamic type.
func IsDynamic(t Type) bool { return t != nil && t.Kind() == KindDynamic }

// IsObject reports whether t is object.
func IsObject(t Type) bool { return t != nil && t.Kind() == KindObject }

// IsError reports whether t is missing or an error type.
func IsError(t Type) bool { return t == nil || t.Kind() == KindError }

// IsRestricted reports whether values of t must never be boxed.
func IsRestricted(t Type) bool {
	n, ok := t.(*NamedType)
	return ok && n.OriginalDefinition().Restricted
}

// ContainsPointer reports whether t is or contains an unmanaged pointer or function pointer.
func ContainsPointer(t Type) bool {
	switch t := t.(type) {
	case *PointerType, *FunctionPointerType:
		return true
	case *ArrayType:
		return ContainsPointer(t.Elem)
	}
	return false
}

// ParamsElementType returns the element type of a params parameter type:
// the element of an array, or the element of a collection type.
func ParamsElementType(t Type) (Type, bool) {
	switch t := t.(type) {
	case *ArrayType:
		return t.Elem, true
	case *NamedType:
		if t.ElementType != nil {
			return t.ElementType, true
		}
	}
	return nil, false
}
