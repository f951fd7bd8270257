package symbols

import (
	"fmt"
	"strconv"
)

// ConstKind is the kind of a compile-time constant.
type ConstKind int

const (
	ConstNull ConstKind = iota
	ConstBool
	ConstInt
	ConstLong
	ConstDouble
	ConstDecimal
	ConstDateTime
	ConstString
)

// Constant is a compile-time constant value.
// Decimal and date/time values are kept as their source text.
type Constant struct {
	Kind  ConstKind
	Value interface{}
}

// NullConstant is the null literal value.
var NullConstant = &Constant{Kind: ConstNull}

// IntConstant returns an int constant.
func IntConstant(v int64) *Constant { return &Constant{Kind: ConstInt, Value: v} }

// StringConstant returns a string constant.
func StringConstant(v string) *Constant { return &Constant{Kind: ConstString, Value: v} }

// Type returns the natural type of the constant, nil for null.
func (c *Constant) Type() Type {
	switch c.Kind {
	case ConstBool:
		return Bool
	case ConstInt:
		return Int
	case ConstLong:
		return Long
	case ConstDouble:
		return Double
	case ConstDecimal:
		return Decimal
	case ConstDateTime:
		return DateTime
	case ConstString:
		return String
	}
	return nil
}

// IsNull reports whether c is the null constant.
func (c *Constant) IsNull() bool { return c.Kind == ConstNull }

func (c *Constant) String() string {
	switch c.Kind {
	case ConstNull:
		return "null"
	case ConstString:
		return strconv.Quote(fmt.Sprint(c.Value))
	case ConstDecimal:
		return fmt.Sprintf("%vm", c.Value)
	case ConstDateTime:
		return fmt.Sprintf("#%v#", c.Value)
	}
	return fmt.Sprint(c.Value)
}

// ParseConstant converts a scalar of a scenario or test description into a
// constant of the given type. Strings for non-string types are parsed.
func ParseConstant(v interface{}, t Type) (*Constant, error) {
	if v == nil {
		return NullConstant, nil
	}
	kind := ConstString
	if t != nil {
		switch t.Kind() {
		case KindBool:
			kind = ConstBool
		case KindInt:
			kind = ConstInt
		case KindLong:
			kind = ConstLong
		case KindDouble:
			kind = ConstDouble
		case KindDecimal:
			kind = ConstDecimal
		case KindDateTime:
			kind = ConstDateTime
		}
	} else {
		switch v.(type) {
		case bool:
			kind = ConstBool
		case int, int64:
			kind = ConstInt
		case float64:
			kind = ConstDouble
		}
	}
	s := fmt.Sprint(v)
	switch kind {
	case ConstBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("bad bool constant %q: %w", s, err)
		}
		return &Constant{Kind: kind, Value: b}, nil
	case ConstInt, ConstLong:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer constant %q: %w", s, err)
		}
		return &Constant{Kind: kind, Value: n}, nil
	case ConstDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad double constant %q: %w", s, err)
		}
		return &Constant{Kind: kind, Value: f}, nil
	}
	return &Constant{Kind: kind, Value: s}, nil
}
