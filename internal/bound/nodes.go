// Package bound defines the bound expression tree the call binder reads and produces.
//
// Inputs are expressions an expression binder has already produced (literals,
// locals, lambdas, method groups, pending out variables). Outputs are the
// resolved call shapes: Call, DynamicInvocation, FunctionPointerCall,
// ArgListOperator and BadExpr. Nodes are immutable once built.
package bound

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/symbols"
)

// Expr is a bound expression.
type Expr interface {
	// Type returns the natural type, or nil if the expression has none
	// (null literals, unbound lambdas, method groups, pending out variables).
	Type() symbols.Type
	Loc() binderr.Loc
	// Text returns the source text of the expression.
	Text() string
	HasErrors() bool
}

// Node carries the syntax facts shared by all expressions.
type Node struct {
	At  binderr.Loc
	Src string
}

func (n Node) Loc() binderr.Loc { return n.At }
func (n Node) Text() string     { return n.Src }

// Literal is a constant.
type Literal struct {
	Node
	Value *symbols.Constant
}

func (e *Literal) Type() symbols.Type { return e.Value.Type() }
func (e *Literal) HasErrors() bool    { return false }

// Local is a local variable or parameter reference.
type Local struct {
	Node
	Name      string
	Typ       symbols.Type
	Parameter bool
}

func (e *Local) Type() symbols.Type { return e.Typ }
func (e *Local) HasErrors() bool    { return symbols.IsError(e.Typ) }

// This is a this or base reference.
type This struct {
	Node
	Typ symbols.Type
	// Implicit marks a compiler-generated receiver for a simple-name call.
	Implicit bool
	Base     bool
	ReadOnly bool
}

func (e *This) Type() symbols.Type { return e.Typ }
func (e *This) HasErrors() bool    { return false }

// TypeExpr is a type used as the receiver of a static member access.
type TypeExpr struct {
	Node
	Typ      symbols.Type
	Implicit bool
}

func (e *TypeExpr) Type() symbols.Type { return e.Typ }
func (e *TypeExpr) HasErrors() bool    { return false }

// TypeOrValue is a receiver that names both a type and a value of that type.
// It is reclassified once the called member is known to be static or not.
type TypeOrValue struct {
	Node
	Value   Expr
	TypeRef *TypeExpr
}

func (e *TypeOrValue) Type() symbols.Type { return e.Value.Type() }
func (e *TypeOrValue) HasErrors() bool    { return false }

// Lambda is an unbound lambda expression.
type Lambda struct {
	Node
	Params []string
	// ParamTypes holds explicit parameter types; nil when all are implicit.
	ParamTypes []symbols.Type
	// Natural is the inferred delegate type, nil when none can be inferred.
	Natural *symbols.DelegateType
}

func (e *Lambda) Type() symbols.Type {
	if e.Natural == nil {
		return nil
	}
	return e.Natural
}
func (e *Lambda) HasErrors() bool { return false }

// BoundLambda is a lambda converted to a delegate type.
type BoundLambda struct {
	Node
	Lambda   *Lambda
	Delegate *symbols.DelegateType
	Errors   bool
}

func (e *BoundLambda) Type() symbols.Type { return e.Delegate }
func (e *BoundLambda) HasErrors() bool    { return e.Errors }

// MethodGroup is an unresolved reference to same-named members.
type MethodGroup struct {
	Node
	Name     string
	Receiver Expr
	Methods  []*symbols.Method
	// Extensions are the extension methods reachable by the same lookup.
	Extensions []*symbols.Method
	// Properties are non-method extension members reachable by the lookup.
	Properties []*symbols.Property
	TypeArgs   []symbols.Type
	Kind       symbols.ResultKind
}

func (e *MethodGroup) Type() symbols.Type { return nil }
func (e *MethodGroup) HasErrors() bool    { return false }

// ArgListOperator is a bound __arglist(...) argument.
type ArgListOperator struct {
	Node
	Args     []Expr
	RefKinds []symbols.RefKind
	Errors   bool
}

func (e *ArgListOperator) Type() symbols.Type { return symbols.ArgList }
func (e *ArgListOperator) HasErrors() bool    { return e.Errors }

// PendingVar is an out variable declaration or discard whose type is
// inferred from the parameter it is passed to.
type PendingVar struct {
	Node
	Name    string
	Discard bool
}

func (e *PendingVar) Type() symbols.Type { return nil }
func (e *PendingVar) HasErrors() bool    { return false }

// Tuple is a tuple literal.
type Tuple struct {
	Node
	Elems []Expr
}

func (e *Tuple) Type() symbols.Type { return nil }
func (e *Tuple) HasErrors() bool {
	for _, el := range e.Elems {
		if el.HasErrors() {
			return true
		}
	}
	return false
}

// TargetTyped is a conditional or switch expression whose type comes from its target.
type TargetTyped struct {
	Node
	// Form is "conditional" or "switch".
	Form    string
	Arms    []Expr
	Natural symbols.Type
}

func (e *TargetTyped) Type() symbols.Type { return e.Natural }
func (e *TargetTyped) HasErrors() bool    { return false }

// Conversion converts Operand to Typ.
type Conversion struct {
	Node
	Operand Expr
	Conv    symbols.Conversion
	Typ     symbols.Type
	Errors  bool
}

func (e *Conversion) Type() symbols.Type { return e.Typ }
func (e *Conversion) HasErrors() bool    { return e.Errors || e.Operand.HasErrors() }

// PropertyAccess reads a property.
type PropertyAccess struct {
	Node
	Receiver Expr
	Property *symbols.Property
}

func (e *PropertyAccess) Type() symbols.Type { return e.Property.Type }
func (e *PropertyAccess) HasErrors() bool    { return false }

// DefaultValue is the zero value of Typ.
type DefaultValue struct {
	Node
	Typ symbols.Type
}

func (e *DefaultValue) Type() symbols.Type { return e.Typ }
func (e *DefaultValue) HasErrors() bool    { return false }

// ObjectCreation constructs a Typ from Args.
type ObjectCreation struct {
	Node
	Typ  symbols.Type
	Args []Expr
}

func (e *ObjectCreation) Type() symbols.Type { return e.Typ }
func (e *ObjectCreation) HasErrors() bool    { return false }

// StaticField reads a well-known static field such as Type.Missing.
type StaticField struct {
	Node
	Container string
	Name      string
	Typ       symbols.Type
}

func (e *StaticField) Type() symbols.Type { return e.Typ }
func (e *StaticField) HasErrors() bool    { return false }

// ArrayCreation builds an array from Elems.
type ArrayCreation struct {
	Node
	Typ   *symbols.ArrayType
	Elems []Expr
}

func (e *ArrayCreation) Type() symbols.Type { return e.Typ }
func (e *ArrayCreation) HasErrors() bool    { return false }

// CollectionCreation builds a collection type from Elems the way a collection literal does.
type CollectionCreation struct {
	Node
	Typ   symbols.Type
	Elems []Expr
}

func (e *CollectionCreation) Type() symbols.Type { return e.Typ }
func (e *CollectionCreation) HasErrors() bool    { return false }

// Call is a resolved call.
//
// When InvokedAsExtension is set, Receiver is nil and Args[0] is the receiver,
// so Args, Names, RefKinds and ArgsToParams all count it. A call written
// w.Ext(3) has Args [w, 3]; ExplicitArguments returns [3].
type Call struct {
	Node
	Receiver           Expr
	Method             *symbols.Method
	Args               []Expr
	Names              []string
	RefKinds           []symbols.RefKind
	Expanded           bool
	InvokedAsExtension bool
	DelegateInvoke     bool
	// ArgsToParams maps argument positions to parameter positions.
	// It is nil when arguments are already positional.
	ArgsToParams []int
	// DefaultArgs marks argument slots holding synthesized defaults.
	DefaultArgs BitSet
	Kind        symbols.ResultKind
	// OriginalMethods are the candidates of a failed resolution.
	OriginalMethods []*symbols.Method
	Typ             symbols.Type
	Errors          bool
}

func (e *Call) Type() symbols.Type { return e.Typ }
func (e *Call) HasErrors() bool    { return e.Errors }

// ExplicitArguments returns the arguments without an extension receiver.
func (e *Call) ExplicitArguments() []Expr {
	if e.InvokedAsExtension && len(e.Args) > 0 {
		return e.Args[1:]
	}
	return e.Args
}

// ExtensionReceiver returns the receiver of an extension invocation, or nil.
func (e *Call) ExtensionReceiver() Expr {
	if e.InvokedAsExtension && len(e.Args) > 0 {
		return e.Args[0]
	}
	return nil
}

// DynamicInvocation is a call dispatched at run time.
type DynamicInvocation struct {
	Node
	Callee   Expr
	Args     []Expr
	Names    []string
	RefKinds []symbols.RefKind
	// Applicable are the candidates known at compile time, for tooling only.
	Applicable []*symbols.Method
	Errors     bool
}

func (e *DynamicInvocation) Type() symbols.Type { return symbols.Dynamic }
func (e *DynamicInvocation) HasErrors() bool    { return e.Errors }

// FunctionPointerCall invokes a function pointer.
type FunctionPointerCall struct {
	Node
	Callee   Expr
	Sig      *symbols.Method
	Args     []Expr
	RefKinds []symbols.RefKind
	Kind     symbols.ResultKind
	Errors   bool
}

func (e *FunctionPointerCall) Type() symbols.Type { return e.Sig.Return }
func (e *FunctionPointerCall) HasErrors() bool    { return e.Errors }

// BadExpr is an erroneous expression that still has a type.
type BadExpr struct {
	Node
	Kind     symbols.ResultKind
	Symbols  []*symbols.Method
	Children []Expr
	Typ      symbols.Type
}

func (e *BadExpr) Type() symbols.Type {
	if e.Typ == nil {
		return symbols.Unknown
	}
	return e.Typ
}
func (e *BadExpr) HasErrors() bool { return true }
