// Package binderr defines the diagnostics produced while binding call sites.
//
// Every diagnostic belongs to one Category of the binder's error taxonomy.
// Diagnostics are appended to a Sink supplied by the caller; the binder never
// reads them back.
package binderr

import (
	"fmt"
	"strings"
)

// Category defines the taxonomy bucket of a diagnostic.
type Category string

const (
	// StructuralError is a static contract violation rejected before resolution.
	StructuralError Category = "StructuralError"
	// NotInvocableError is a callee with no call semantics.
	NotInvocableError Category = "NotInvocableError"
	// UnresolvedMemberError is an empty or fully inapplicable candidate set.
	UnresolvedMemberError Category = "UnresolvedMemberError"
	// AmbiguousMemberError is a resolution tie.
	AmbiguousMemberError Category = "AmbiguousMemberError"
	// DynamicArgumentError is an argument the runtime binder cannot act on.
	DynamicArgumentError Category = "DynamicArgumentError"
	// FinalValidationError is an accessibility or constraint failure on a
	// statically applicable candidate.
	FinalValidationError Category = "FinalValidationError"
	// LegalityError covers obsolete members, unsafe contexts, finalizer calls,
	// disallowed extensions and restricted-type boxing.
	LegalityError Category = "LegalityError"
)

// Severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Loc is a source location. Lines and columns are 1-based; zero means unknown.
type Loc struct {
	Path string
	Line int
	Col  int
}

func (l Loc) String() string {
	switch {
	case l.Line == 0:
		return l.Path
	case l.Path == "":
		return fmt.Sprintf("line %d:%d", l.Line, l.Col)
	default:
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Col)
	}
}

// IsZero reports whether the location is unknown.
func (l Loc) IsZero() bool { return l == Loc{} }

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Loc      Loc
	Args     []interface{}
}

// New returns a diagnostic for code at loc with the code's default severity.
func New(code Code, loc Loc, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: code.Severity(), Loc: loc, Args: args}
}

// Category returns the taxonomy bucket of the diagnostic's code.
func (d Diagnostic) Category() Category { return d.Code.Category() }

// Message formats the code's template with the diagnostic's arguments.
func (d Diagnostic) Message() string {
	return fmt.Sprintf(d.Code.template(), d.Args...)
}

func (d Diagnostic) Error() string {
	if d.Loc.IsZero() {
		return fmt.Sprintf("[%s] %s", d.Category(), d.Message())
	}
	return fmt.Sprintf("[%s] %s %s", d.Category(), d.Loc, d.Message())
}

// MultiError collects multiple diagnostics into one error.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

// Category returns the category of the first collected diagnostic.
func (m *MultiError) Category() Category {
	if len(m.Errors) > 0 {
		if d, ok := m.Errors[0].(Diagnostic); ok {
			return d.Category()
		}
	}
	return "MultiError"
}
