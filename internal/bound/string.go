package bound

import (
	"fmt"
	"strings"

	"martianoff/callbind/internal/symbols"
)

// Format renders e as compact source-like text. Synthesized nodes, which have
// no source text, are rendered from their structure.
func Format(e Expr) string {
	var sb strings.Builder
	write(&sb, e)
	return sb.String()
}

func write(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Literal:
		sb.WriteString(e.Value.String())
	case *Local:
		sb.WriteString(e.Name)
	case *This:
		if e.Base {
			sb.WriteString("base")
		} else {
			sb.WriteString("this")
		}
	case *TypeExpr:
		sb.WriteString(e.Typ.String())
	case *TypeOrValue:
		write(sb, e.Value)
	case *Lambda:
		fmt.Fprintf(sb, "(%s) => ...", strings.Join(e.Params, ", "))
	case *BoundLambda:
		write(sb, e.Lambda)
	case *MethodGroup:
		if e.Receiver != nil {
			write(sb, e.Receiver)
			sb.WriteByte('.')
		}
		sb.WriteString(e.Name)
	case *ArgListOperator:
		sb.WriteString("__arglist")
		writeArgs(sb, e.Args, nil, e.RefKinds)
	case *PendingVar:
		if e.Discard {
			sb.WriteString("_")
		} else {
			sb.WriteString("var ")
			sb.WriteString(e.Name)
		}
	case *Tuple:
		writeArgs(sb, e.Elems, nil, nil)
	case *TargetTyped:
		sb.WriteString(e.Form)
		writeArgs(sb, e.Arms, nil, nil)
	case *Conversion:
		if e.Conv.IsIdentity() {
			write(sb, e.Operand)
			return
		}
		fmt.Fprintf(sb, "(%s)", e.Typ)
		write(sb, e.Operand)
	case *PropertyAccess:
		if e.Receiver != nil {
			write(sb, e.Receiver)
			sb.WriteByte('.')
		}
		sb.WriteString(e.Property.Name)
	case *DefaultValue:
		fmt.Fprintf(sb, "default(%s)", e.Typ)
	case *ObjectCreation:
		fmt.Fprintf(sb, "new %s", e.Typ)
		writeArgs(sb, e.Args, nil, nil)
	case *StaticField:
		sb.WriteString(e.Container)
		sb.WriteByte('.')
		sb.WriteString(e.Name)
	case *ArrayCreation:
		fmt.Fprintf(sb, "new %s {", e.Typ)
		writeList(sb, e.Elems)
		sb.WriteByte('}')
	case *CollectionCreation:
		sb.WriteByte('[')
		writeList(sb, e.Elems)
		sb.WriteByte(']')
	case *Call:
		if e.Receiver != nil {
			write(sb, e.Receiver)
			sb.WriteByte('.')
		}
		if e.DelegateInvoke {
			sb.WriteString("Invoke")
		} else {
			sb.WriteString(e.Method.Name)
		}
		writeArgs(sb, e.Args, e.Names, e.RefKinds)
	case *DynamicInvocation:
		sb.WriteString("dynamic ")
		write(sb, e.Callee)
		writeArgs(sb, e.Args, e.Names, e.RefKinds)
	case *FunctionPointerCall:
		write(sb, e.Callee)
		writeArgs(sb, e.Args, nil, e.RefKinds)
	case *BadExpr:
		fmt.Fprintf(sb, "<bad %s>", e.Kind)
		writeArgs(sb, e.Children, nil, nil)
	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}

func writeArgs(sb *strings.Builder, args []Expr, names []string, refs []symbols.RefKind) {
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if names != nil && names[i] != "" {
			sb.WriteString(names[i])
			sb.WriteString(": ")
		}
		if refs != nil && refs[i] != symbols.RefNone {
			sb.WriteString(refs[i].String())
			sb.WriteByte(' ')
		}
		write(sb, a)
	}
	sb.WriteByte(')')
}

func writeList(sb *strings.Builder, elems []Expr) {
	for i, el := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		write(sb, el)
	}
}
