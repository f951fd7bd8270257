package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eaburns/pretty"
	"github.com/mattn/go-isatty"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/scenario"
	"martianoff/callbind/internal/symbols"
)

const (
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiReset  = "\x1b[0m"
)

func init() {
	pretty.Indent = "    "
}

// useColor decides whether output to w is colorized.
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid --color %q: want auto, always or never", mode)
}

type reporter struct {
	w     io.Writer
	color bool
	dump  bool
}

func (r *reporter) paint(ansi, s string) string {
	if !r.color {
		return s
	}
	return ansi + s + ansiReset
}

func (r *reporter) severity(s binderr.Severity) string {
	switch s {
	case binderr.Error:
		return r.paint(ansiRed, s.String())
	case binderr.Warning:
		return r.paint(ansiYellow, s.String())
	}
	return r.paint(ansiCyan, s.String())
}

// scenario prints the results of s and returns how many calls failed their
// expectations.
func (r *reporter) scenario(s *scenario.Scenario, results []result) int {
	fmt.Fprintf(r.w, "== %s\n", s.Name)
	failed := 0
	for _, res := range results {
		c := res.call
		fmt.Fprintf(r.w, "%s: %s\n", c.Syntax.At, c.Syntax.Src)
		fmt.Fprintf(r.w, "    %s %s\n", scenario.NodeKind(res.expr), bound.Format(res.expr))
		codes := make([]binderr.Code, len(res.diags))
		for i, d := range res.diags {
			codes[i] = d.Code
			fmt.Fprintf(r.w, "    %s %s: %s\n", r.severity(d.Severity), d.Code, d.Message())
		}
		if r.dump {
			dump := pretty.String(summarize(res.expr))
			fmt.Fprintf(r.w, "    %s\n", strings.ReplaceAll(dump, "\n", "\n    "))
		}
		if c.Expect.IsZero() {
			continue
		}
		problems := c.Expect.Check(res.expr, codes)
		if len(problems) == 0 {
			fmt.Fprintf(r.w, "    %s %s\n", r.paint(ansiGreen, "ok"), c.Name)
			continue
		}
		failed++
		fmt.Fprintf(r.w, "    %s %s\n", r.paint(ansiRed, "FAIL"), c.Name)
		for _, p := range problems {
			fmt.Fprintf(r.w, "        %s\n", p)
		}
	}
	return failed
}

// summary is the part of a bound expression printed by --dump. Bound nodes
// point into the symbol graph, which is cyclic, so only names are kept.
type summary struct {
	Node               string
	Type               string
	Method             string
	Args               []string
	Names              []string
	RefKinds           []string
	ArgsToParams       []int
	DefaultArgs        []int
	Expanded           bool
	InvokedAsExtension bool
	Kind               string
	Candidates         []string
}

func summarize(e bound.Expr) summary {
	s := summary{Node: scenario.NodeKind(e)}
	if e == nil {
		return s
	}
	if t := e.Type(); t != nil {
		s.Type = t.String()
	}
	switch e := e.(type) {
	case *bound.Call:
		s.Method = e.Method.String()
		s.Args = formatAll(e.Args)
		s.Names = e.Names
		s.RefKinds = refKinds(e.RefKinds)
		s.ArgsToParams = e.ArgsToParams
		s.DefaultArgs = e.DefaultArgs.Members()
		s.Expanded = e.Expanded
		s.InvokedAsExtension = e.InvokedAsExtension
		s.Kind = e.Kind.String()
		for _, m := range e.OriginalMethods {
			s.Candidates = append(s.Candidates, m.String())
		}
	case *bound.DynamicInvocation:
		s.Args = formatAll(e.Args)
		s.Names = e.Names
		s.RefKinds = refKinds(e.RefKinds)
		for _, m := range e.Applicable {
			s.Candidates = append(s.Candidates, m.String())
		}
	case *bound.FunctionPointerCall:
		s.Method = e.Sig.String()
		s.Args = formatAll(e.Args)
		s.RefKinds = refKinds(e.RefKinds)
		s.Kind = e.Kind.String()
	case *bound.BadExpr:
		s.Args = formatAll(e.Children)
		s.Kind = e.Kind.String()
		for _, m := range e.Symbols {
			s.Candidates = append(s.Candidates, m.String())
		}
	}
	return s
}

func formatAll(es []bound.Expr) []string {
	if len(es) == 0 {
		return nil
	}
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = bound.Format(e)
	}
	return out
}

func refKinds(ks []symbols.RefKind) []string {
	if ks == nil {
		return nil
	}
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}
	return out
}
