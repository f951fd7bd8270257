package symbols

import (
	"fmt"
	"strings"
)

// RefKind is the passing mode of an argument or parameter.
type RefKind int

const (
	RefNone RefKind = iota
	RefRef
	RefOut
	RefIn
)

func (k RefKind) String() string {
	switch k {
	case RefRef:
		return "ref"
	case RefOut:
		return "out"
	case RefIn:
		return "in"
	}
	return ""
}

// Accessibility of a member.
type Accessibility int

const (
	Public Accessibility = iota
	Internal
	Protected
	Private
)

// ExtensionKind tells how a member extends its receiver type.
type ExtensionKind int

const (
	NotExtension ExtensionKind = iota
	// ClassicExtension is a static method whose first parameter is the receiver.
	ClassicExtension
	// MemberExtension is a member of an extension block; its receiver is
	// declared on the block and is not part of Params.
	MemberExtension
)

// CallerInfo is the caller-context attribute of an optional parameter.
type CallerInfo int

const (
	CallerNone CallerInfo = iota
	CallerLineNumber
	CallerFilePath
	CallerMemberName
	CallerArgumentExpression
)

func (c CallerInfo) String() string {
	switch c {
	case CallerLineNumber:
		return "CallerLineNumber"
	case CallerFilePath:
		return "CallerFilePath"
	case CallerMemberName:
		return "CallerMemberName"
	case CallerArgumentExpression:
		return "CallerArgumentExpression"
	}
	return ""
}

// InteropKind is the COM marshalling attribute of an optional object parameter.
type InteropKind int

const (
	InteropNone InteropKind = iota
	// InteropInterface is MarshalAs(Interface/IUnknown/IDispatch): the default is null.
	InteropInterface
	// InteropIDispatch is IDispatchConstant: the default is a wrapped null.
	InteropIDispatch
	// InteropIUnknown is IUnknownConstant: the default is a wrapped null.
	InteropIUnknown
)

// Parameter is a formal parameter.
type Parameter struct {
	Name    string
	Type    Type
	RefKind RefKind
	Params  bool
	// Default is the declared constant default, nil if there is none.
	Default *Constant
	// Optional marks a parameter that may be omitted without a declared default.
	Optional bool
	Caller   CallerInfo
	// CallerArgument names the parameter whose argument text is substituted
	// when Caller is CallerArgumentExpression.
	CallerArgument string
	Interop        InteropKind
}

// IsOptional reports whether an argument for p may be omitted.
func (p *Parameter) IsOptional() bool { return p.Default != nil || p.Optional }

func (p *Parameter) String() string {
	var sb strings.Builder
	if p.Params {
		sb.WriteString("params ")
	}
	if p.RefKind != RefNone {
		sb.WriteString(p.RefKind.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(p.Type.String())
	if p.Name != "" {
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
	}
	return sb.String()
}

// Obsolete describes an Obsolete attribute.
type Obsolete struct {
	Message string
	IsError bool
}

// Method is a method, local function, delegate invoke method or function pointer signature.
type Method struct {
	Name      string
	Container *NamedType
	Params    []*Parameter
	Return    Type

	TypeParams []*TypeParam
	TypeArgs   []Type
	Definition *Method

	Static    bool
	Extension ExtensionKind
	// Receiver is the extension block receiver of a MemberExtension.
	Receiver *Parameter
	// Source is the MemberExtension a receiver-first form was made from.
	Source *Method

	Access      Accessibility
	Vararg      bool
	Obsolete    *Obsolete
	Conditional []string

	LocalFunction        bool
	Finalizer            bool
	UnmanagedCallersOnly bool
	ExtensionDisallowed  bool
	ReadOnly             bool
	AttributeConstructor bool
	UseSiteError         string
}

// IsGeneric reports whether m declares type parameters.
func (m *Method) IsGeneric() bool { return len(m.TypeParams) > 0 }

// IsUnconstructed reports whether m is a generic definition without type arguments.
func (m *Method) IsUnconstructed() bool { return m.IsGeneric() && len(m.TypeArgs) == 0 }

// OriginalDefinition returns the definition a constructed or reduced method came from.
func (m *Method) OriginalDefinition() *Method {
	for m.Definition != nil {
		m = m.Definition
	}
	return m
}

// IsExtension reports whether m is invoked with its receiver as the first argument.
func (m *Method) IsExtension() bool { return m.Extension == ClassicExtension }

// ThisParameter returns the receiver parameter of a classic extension method.
func (m *Method) ThisParameter() *Parameter {
	if m.Extension != ClassicExtension || len(m.Params) == 0 {
		return nil
	}
	return m.Params[0]
}

// ParamsParameter returns the trailing params parameter, or nil.
func (m *Method) ParamsParameter() *Parameter {
	if n := len(m.Params); n > 0 && m.Params[n-1].Params {
		return m.Params[n-1]
	}
	return nil
}

// ParamIndex returns the index of the parameter named name, or -1.
func (m *Method) ParamIndex(name string) int {
	for i, p := range m.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// ReceiverForm returns a copy of a MemberExtension with its receiver prepended
// to Params so that it can be resolved like a classic extension method.
func (m *Method) ReceiverForm() *Method {
	if m.Extension != MemberExtension || m.Receiver == nil {
		return m
	}
	form := *m
	form.Params = append([]*Parameter{m.Receiver}, m.Params...)
	form.Source = m
	return &form
}

// Construct substitutes args for m's type parameters.
func (m *Method) Construct(args []Type) *Method {
	if len(args) != len(m.TypeParams) {
		panic(fmt.Sprintf("construct %s: got %d type arguments, want %d", m.Name, len(args), len(m.TypeParams)))
	}
	sub := make(Substitution, len(args))
	for i, p := range m.TypeParams {
		sub[p] = args[i]
	}
	c := *m
	c.TypeArgs = args
	c.Definition = m
	c.Params = make([]*Parameter, len(m.Params))
	for i, p := range m.Params {
		q := *p
		q.Type = Substitute(p.Type, sub)
		c.Params[i] = &q
	}
	if m.Receiver != nil {
		r := *m.Receiver
		r.Type = Substitute(r.Type, sub)
		c.Receiver = &r
	}
	c.Return = Substitute(m.Return, sub)
	return &c
}

func (m *Method) String() string {
	var sb strings.Builder
	if m.Container != nil {
		sb.WriteString(m.Container.String())
		sb.WriteByte('.')
	}
	sb.WriteString(m.Name)
	switch {
	case len(m.TypeArgs) > 0:
		writeTypeList(&sb, m.TypeArgs)
	case len(m.TypeParams) > 0:
		params := make([]Type, len(m.TypeParams))
		for i, p := range m.TypeParams {
			params[i] = p
		}
		writeTypeList(&sb, params)
	}
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i == 0 && m.Extension == ClassicExtension {
			sb.WriteString("this ")
		}
		sb.WriteString(p.String())
	}
	if m.Vararg {
		if len(m.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("__arglist")
	}
	sb.WriteByte(')')
	return sb.String()
}

// Property is a non-method member. Extension properties reachable through a
// method-group lookup redirect call binding to member access.
type Property struct {
	Name      string
	Container *NamedType
	Type      Type
	Static    bool
	Extension bool
	Access    Accessibility
}

func (p *Property) String() string {
	if p.Container != nil {
		return p.Container.String() + "." + p.Name
	}
	return p.Name
}

// ResultKind classifies how well a lookup or a bound node resolved.
type ResultKind int

const (
	Viable ResultKind = iota
	Empty
	NotInvocable
	Inaccessible
	Ambiguous
	OverloadResolutionFailure
	NotViable
)

func (k ResultKind) String() string {
	switch k {
	case Viable:
		return "Viable"
	case Empty:
		return "Empty"
	case NotInvocable:
		return "NotInvocable"
	case Inaccessible:
		return "Inaccessible"
	case Ambiguous:
		return "Ambiguous"
	case OverloadResolutionFailure:
		return "OverloadResolutionFailure"
	case NotViable:
		return "NotViable"
	}
	return fmt.Sprintf("ResultKind(%d)", int(k))
}
