package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// CallSyntax is a call site: a bound callee and its raw arguments.
type CallSyntax struct {
	Callee bound.Expr
	Args   []ArgumentSyntax
	At     binderr.Loc
	// OpenParen is the position of the argument list's opening parenthesis.
	OpenParen binderr.Loc
	Src       string
}

// ArgumentSyntax is one raw argument. Exactly one of Expr, Call and ArgList is set.
type ArgumentSyntax struct {
	Name    string
	RefKind symbols.RefKind
	Expr    bound.Expr
	Call    *CallSyntax
	ArgList *ArgListSyntax
	At      binderr.Loc
}

// ArgListSyntax is an __arglist(...) argument.
type ArgListSyntax struct {
	Args []ArgumentSyntax
	At   binderr.Loc
	Src  string
}

// MemberKind is the kind of the member a call appears in.
type MemberKind int

const (
	MethodMember MemberKind = iota
	ConstructorMember
	PropertyMember
	FieldInitializer
	LambdaMember
	LocalFunctionMember
)

// Member is the member containing a call site.
type Member struct {
	Name string
	Kind MemberKind
	// Synthesized marks compiler-generated members such as property backing methods.
	Synthesized bool
	Outer       *Member
}

// UserDeclared returns the innermost member written by the user, looking
// through synthesized members, lambdas and local functions.
func (m *Member) UserDeclared() *Member {
	for m != nil && (m.Synthesized || m.Kind == LambdaMember || m.Kind == LocalFunctionMember) {
		m = m.Outer
	}
	return m
}

// Scope is the binding context of a call site.
type Scope struct {
	Member         *Member
	ContainingType *symbols.NamedType
	// Static is set inside static members, where there is no this.
	Static bool
	Unsafe bool
	// InQuery is set inside query clauses.
	InQuery bool
	// ThisUnusable is set in constructor and field initializers.
	ThisUnusable bool
	// InDefaultValue is set while binding a parameter default value.
	InDefaultValue bool
	// ReadOnlyThis is set inside readonly struct members.
	ReadOnlyThis bool
	FilePath     string
}
