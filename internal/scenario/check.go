package scenario

import (
	"fmt"
	"strings"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
)

// NodeKind is the name of a bound node's type, such as "Call".
func NodeKind(e bound.Expr) string {
	if e == nil {
		return "nil"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", e), "*bound.")
}

// Check compares a bound call and its diagnostic codes with the expectation
// and describes every mismatch. An empty result means the call passed.
func (x Expectation) Check(e bound.Expr, codes []binderr.Code) []string {
	var problems []string
	if x.Node != "" {
		if got := NodeKind(e); got != x.Node {
			problems = append(problems, fmt.Sprintf("node: got %s, want %s", got, x.Node))
		}
	}
	if x.Text != "" {
		if got := bound.Format(e); got != x.Text {
			problems = append(problems, fmt.Sprintf("text: got %q, want %q", got, x.Text))
		}
	}
	if x.Codes != nil {
		got := make([]string, len(codes))
		for i, c := range codes {
			got[i] = string(c)
		}
		if strings.Join(got, ",") != strings.Join(x.Codes, ",") {
			problems = append(problems, fmt.Sprintf("codes: got [%s], want [%s]",
				strings.Join(got, ", "), strings.Join(x.Codes, ", ")))
		}
	}
	return problems
}
