package binderr

import (
	"fmt"
	"sort"
)

// Code identifies a diagnosable condition.
type Code string

const (
	ErrIllegalArgList     Code = "IllegalArgList"
	ErrNamedArgumentOrder Code = "NamedArgumentOrder"
	ErrVoidInArgList      Code = "VoidInArgList"
	ErrRefKindInArgList   Code = "RefKindInArgList"

	ErrMethodNameExpected  Code = "MethodNameExpected"
	ErrUnsupportedDelegate Code = "UnsupportedDelegate"

	ErrNoSuchMember           Code = "NoSuchMember"
	ErrBadArgCount            Code = "BadArgCount"
	ErrBadArgument            Code = "BadArgument"
	ErrBadArgRef              Code = "BadArgRef"
	ErrBadNamedArgument       Code = "BadNamedArgument"
	ErrDuplicateNamedArgument Code = "DuplicateNamedArgument"
	ErrNamedArgumentPosition  Code = "NamedArgumentPosition"
	ErrMissingArgument        Code = "MissingArgument"
	ErrCantInferTypeArgs      Code = "CantInferTypeArgs"
	ErrBadTypeArgCount        Code = "BadTypeArgCount"
	ErrCantInferOutVariable   Code = "CantInferOutVariable"
	ErrLambdaNeedsTarget      Code = "LambdaNeedsTarget"
	ErrNoNaturalType          Code = "NoNaturalType"

	ErrAmbiguousCall Code = "AmbiguousCall"

	ErrDynamicOnBase                       Code = "DynamicOnBase"
	ErrDynamicThisUnusable                 Code = "DynamicThisUnusable"
	ErrDynamicInArgument                   Code = "DynamicInArgument"
	ErrDynamicLambdaArgument               Code = "DynamicLambdaArgument"
	ErrDynamicMethodGroupArgument          Code = "DynamicMethodGroupArgument"
	ErrDynamicArgListArgument              Code = "DynamicArgListArgument"
	ErrDynamicPointerArgument              Code = "DynamicPointerArgument"
	ErrDynamicQuery                        Code = "DynamicQuery"
	ErrDynamicDelegateShape                Code = "DynamicDelegateShape"
	ErrDynamicExtension                    Code = "DynamicExtension"
	ErrDynamicLocalFunctionTypeParameter   Code = "DynamicLocalFunctionTypeParameter"
	ErrDynamicLocalFunctionParamsParameter Code = "DynamicLocalFunctionParamsParameter"
	WarnDynamicConditional                 Code = "DynamicConditional"

	ErrInaccessible                  Code = "Inaccessible"
	ErrConstraintViolated            Code = "ConstraintViolated"
	ErrObjectRequired                Code = "ObjectRequired"
	ErrObjectProhibited              Code = "ObjectProhibited"
	ErrExtensionRefReceiver          Code = "ExtensionRefReceiver"
	WarnImplicitCopyInReadOnlyMember Code = "ImplicitCopyInReadOnlyMember"

	ErrUnsafeNeeded             Code = "UnsafeNeeded"
	WarnObsolete                Code = "ObsoleteWarning"
	ErrObsolete                 Code = "Obsolete"
	ErrUnmanagedCallersOnly     Code = "UnmanagedCallersOnly"
	ErrDisallowedExtension      Code = "DisallowedExtension"
	ErrCallingFinalizer         Code = "CallingFinalizer"
	ErrRestrictedTypeBoxing     Code = "RestrictedTypeBoxing"
	ErrCallOnRestrictedType     Code = "CallOnRestrictedType"
	ErrBadAttributeParamDefault Code = "BadAttributeParamDefault"
	ErrDefaultConversion        Code = "DefaultConversion"
	ErrDefaultValueCycle        Code = "DefaultValueCycle"
	InfoLegacyDefault           Code = "LegacyDefault"
)

type codeInfo struct {
	category Category
	severity Severity
	format   string
}

var codes = map[Code]codeInfo{
	ErrIllegalArgList:     {StructuralError, Error, "__arglist is not valid in this context"},
	ErrNamedArgumentOrder: {StructuralError, Error, "named argument '%s' must appear after all positional arguments"},
	ErrVoidInArgList:      {StructuralError, Error, "__arglist cannot have an argument of void type"},
	ErrRefKindInArgList:   {StructuralError, Error, "__arglist cannot have an argument passed by '%s'"},

	ErrMethodNameExpected:  {NotInvocableError, Error, "method name expected"},
	ErrUnsupportedDelegate: {NotInvocableError, Error, "delegate '%s' is not supported: %s"},

	ErrNoSuchMember:           {UnresolvedMemberError, Error, "no accessible method named '%s'"},
	ErrBadArgCount:            {UnresolvedMemberError, Error, "no overload for method '%s' takes %d arguments"},
	ErrBadArgument:            {UnresolvedMemberError, Error, "argument %d: cannot convert from '%s' to '%s'"},
	ErrBadArgRef:              {UnresolvedMemberError, Error, "argument %d must be passed with the '%s' keyword"},
	ErrBadNamedArgument:       {UnresolvedMemberError, Error, "the best overload for '%s' does not have a parameter named '%s'"},
	ErrDuplicateNamedArgument: {UnresolvedMemberError, Error, "named argument '%s' cannot be specified multiple times"},
	ErrNamedArgumentPosition:  {UnresolvedMemberError, Error, "named argument '%s' specifies a parameter for which a positional argument has already been given"},
	ErrMissingArgument:        {UnresolvedMemberError, Error, "there is no argument given that corresponds to the required parameter '%s' of '%s'"},
	ErrCantInferTypeArgs:      {UnresolvedMemberError, Error, "the type arguments for method '%s' cannot be inferred from the usage"},
	ErrBadTypeArgCount:        {UnresolvedMemberError, Error, "method '%s' requires %d type arguments"},
	ErrCantInferOutVariable:   {UnresolvedMemberError, Error, "cannot infer the type of implicitly-typed out variable '%s'"},
	ErrLambdaNeedsTarget:      {UnresolvedMemberError, Error, "cannot infer a delegate type for the lambda expression"},
	ErrNoNaturalType:          {UnresolvedMemberError, Error, "no best type found for the %s expression"},

	ErrAmbiguousCall: {AmbiguousMemberError, Error, "the call is ambiguous between '%s' and '%s'"},

	ErrDynamicOnBase:                       {DynamicArgumentError, Error, "a dynamically dispatched call to method '%s' cannot be made through 'base'"},
	ErrDynamicThisUnusable:                 {DynamicArgumentError, Error, "'this' is not available for the dynamically dispatched call to '%s'"},
	ErrDynamicInArgument:                   {DynamicArgumentError, Error, "arguments passed with 'in' cannot be used in a dynamically dispatched call"},
	ErrDynamicLambdaArgument:               {DynamicArgumentError, Error, "cannot use a lambda expression as an argument to a dynamically dispatched operation without first casting it to a delegate"},
	ErrDynamicMethodGroupArgument:          {DynamicArgumentError, Error, "cannot use a method group as an argument to a dynamically dispatched operation"},
	ErrDynamicArgListArgument:              {DynamicArgumentError, Error, "cannot use __arglist as an argument to a dynamically dispatched operation"},
	ErrDynamicPointerArgument:              {DynamicArgumentError, Error, "cannot use an argument of type '%s' in a dynamically dispatched operation"},
	ErrDynamicQuery:                        {DynamicArgumentError, Error, "query expressions over a dynamic source cannot use lambdas, method groups or pointers"},
	ErrDynamicDelegateShape:                {DynamicArgumentError, Error, "delegate '%s' has a parameter of type '%s' that cannot be used in a dynamically dispatched invocation"},
	ErrDynamicExtension:                    {DynamicArgumentError, Error, "'%s' is an extension method and cannot be dynamically dispatched; call it without the extension method syntax"},
	ErrDynamicLocalFunctionTypeParameter:   {DynamicArgumentError, Error, "cannot pass a dynamic argument to generic local function '%s' with inferred type arguments"},
	ErrDynamicLocalFunctionParamsParameter: {DynamicArgumentError, Error, "cannot pass a dynamic argument to params parameter '%s' of local function '%s'"},
	WarnDynamicConditional:                 {DynamicArgumentError, Warning, "the call to '%s' may be skipped at run time because an applicable overload is conditional"},

	ErrInaccessible:                  {FinalValidationError, Error, "'%s' is inaccessible due to its protection level"},
	ErrConstraintViolated:            {FinalValidationError, Error, "the type '%s' cannot be used as type parameter '%s' in '%s'"},
	ErrObjectRequired:                {FinalValidationError, Error, "an object reference is required for the non-static method '%s'"},
	ErrObjectProhibited:              {FinalValidationError, Error, "member '%s' cannot be accessed with an instance reference; qualify it with a type name instead"},
	ErrExtensionRefReceiver:          {FinalValidationError, Error, "extension method '%s' takes its receiver by reference and requires a value-type receiver"},
	WarnImplicitCopyInReadOnlyMember: {FinalValidationError, Warning, "call to non-readonly member '%s' from a readonly member results in an implicit copy of 'this'"},

	ErrUnsafeNeeded:             {LegalityError, Error, "pointers and function pointers may only be used in an unsafe context"},
	WarnObsolete:                {LegalityError, Warning, "'%s' is obsolete: %s"},
	ErrObsolete:                 {LegalityError, Error, "'%s' is obsolete: %s"},
	ErrUnmanagedCallersOnly:     {LegalityError, Error, "'%s' is attributed with 'UnmanagedCallersOnly' and cannot be called directly"},
	ErrDisallowedExtension:      {LegalityError, Error, "extension method '%s' cannot be called here"},
	ErrCallingFinalizer:         {LegalityError, Error, "destructors and object.Finalize cannot be called directly"},
	ErrRestrictedTypeBoxing:     {LegalityError, Error, "cannot convert type '%s' to '%s' because values of restricted type cannot be boxed"},
	ErrCallOnRestrictedType:     {LegalityError, Error, "cannot call '%s' on a value of restricted type '%s'"},
	ErrBadAttributeParamDefault: {LegalityError, Error, "attribute constructor parameter '%s' has type '%s' and a non-null default value"},
	ErrDefaultConversion:        {LegalityError, Error, "cannot convert the default value of parameter '%s' to '%s'"},
	ErrDefaultValueCycle:        {LegalityError, Error, "the default value of parameter '%s' depends on itself"},
	InfoLegacyDefault:           {LegalityError, Info, "default value of parameter '%s' cannot be converted to '%s'; the zero value is used"},
}

// All returns every known code in name order.
func All() []Code {
	all := make([]Code, 0, len(codes))
	for c := range codes {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

func (c Code) info() codeInfo {
	info, ok := codes[c]
	if !ok {
		panic(fmt.Sprintf("unknown diagnostic code %q", string(c)))
	}
	return info
}

// Category returns the taxonomy bucket of the code.
func (c Code) Category() Category { return c.info().category }

// Severity returns the default severity of the code.
func (c Code) Severity() Severity { return c.info().severity }

func (c Code) template() string { return c.info().format }
