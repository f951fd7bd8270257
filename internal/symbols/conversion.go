package symbols

// ConversionKind classifies a conversion from a source to a target type.
type ConversionKind int

const (
	NoConversion ConversionKind = iota
	Identity
	ImplicitNumeric
	ImplicitReference
	Boxing
	NullLiteral
	// ImplicitDynamic is the implicit conversion from dynamic to any type.
	ImplicitDynamic
	AnonymousFunction
	MethodGroupConversion
	UserDefined
	// TargetTyped converts every arm of a conditional or switch expression.
	TargetTyped
)

func (k ConversionKind) String() string {
	switch k {
	case NoConversion:
		return "none"
	case Identity:
		return "identity"
	case ImplicitNumeric:
		return "numeric"
	case ImplicitReference:
		return "reference"
	case Boxing:
		return "boxing"
	case NullLiteral:
		return "null"
	case ImplicitDynamic:
		return "dynamic"
	case AnonymousFunction:
		return "lambda"
	case MethodGroupConversion:
		return "method group"
	case UserDefined:
		return "user-defined"
	case TargetTyped:
		return "target-typed"
	}
	return "?"
}

// Conversion is the result of classifying a conversion.
type Conversion struct {
	Kind ConversionKind
	// Method is the operator of a user-defined conversion or the
	// target method of a method group conversion.
	Method *Method
}

// Exists reports whether there is an implicit conversion.
func (c Conversion) Exists() bool { return c.Kind != NoConversion }

// IsIdentity reports whether the conversion changes nothing.
func (c Conversion) IsIdentity() bool { return c.Kind == Identity }
