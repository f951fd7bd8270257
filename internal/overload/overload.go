// Package overload is the reference overload-resolution algorithm driven by the binder.
//
// It decides applicability in normal and expanded (params) form, infers method
// type arguments by unification, and picks the single best candidate. It
// never reports diagnostics; the binder turns a Verdict into them.
package overload

import (
	"fmt"

	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// Form is the shape in which a candidate was found applicable.
type Form int

const (
	NormalForm Form = iota
	ExpandedForm
)

func (f Form) String() string {
	if f == ExpandedForm {
		return "expanded"
	}
	return "normal"
}

// Reason tells why a candidate is not applicable.
type Reason int

const (
	NoReason Reason = iota
	WrongArity
	BadTypeArgCount
	TypeInferenceFailed
	MissingRequired
	BadNamedArgument
	DuplicateNamedArgument
	NamedArgumentPosition
	BadRefKind
	BadArgument
)

var reasonNames = [...]string{
	NoReason:               "applicable",
	WrongArity:             "wrong arity",
	BadTypeArgCount:        "wrong type argument count",
	TypeInferenceFailed:    "type inference failed",
	MissingRequired:        "missing required argument",
	BadNamedArgument:       "bad named argument",
	DuplicateNamedArgument: "duplicate named argument",
	NamedArgumentPosition:  "named argument given positionally",
	BadRefKind:             "bad ref kind",
	BadArgument:            "bad argument",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Options control resolution.
type Options struct {
	// AllowUnexpandedForm lets a params candidate be applicable in normal form.
	AllowUnexpandedForm bool
	// DisallowExpandedNonArrayParams rejects expanded form for params collections.
	DisallowExpandedNonArrayParams bool
	// DynamicResolution applies the rules for calls with dynamic arguments.
	DynamicResolution bool
}

// DefaultOptions returns the options of an ordinary call.
func DefaultOptions() Options { return Options{AllowUnexpandedForm: true} }

// Request is one overload-resolution problem.
type Request struct {
	Candidates []*symbols.Method
	Receiver   bound.Expr
	TypeArgs   []symbols.Type
	Args       *arglist.List
	// IsExtension marks candidates that take the receiver as argument zero.
	IsExtension bool
	Options     Options
}

// VarargSlot is the parameter index an __arglist argument maps to.
const VarargSlot = -1

// MemberResult is the outcome for one candidate.
type MemberResult struct {
	// Member is the candidate, constructed when type arguments were given or inferred.
	Member   *symbols.Method
	Original *symbols.Method
	Form     Form
	Reason   Reason
	// BadArg is the argument index behind Reason, -1 when not argument-specific.
	BadArg int
	// BadParam is the parameter index behind MissingRequired, -1 otherwise.
	BadParam     int
	ArgsToParams []int
	Conversions  []symbols.Conversion
	// Defaults counts the parameters filled by defaults.
	Defaults int
	// DynamicParamsAmbiguity is set when a single dynamic argument could bind
	// either as the params array or as its only element.
	DynamicParamsAmbiguity bool
	// Worse is set on an applicable candidate that lost to the best one.
	Worse bool
}

// Applicable reports whether the candidate accepts the arguments.
func (r *MemberResult) Applicable() bool { return r.Reason == NoReason }

// ParamFor returns the parameter argument i binds to, nil for the vararg slot.
func (r *MemberResult) ParamFor(i int) *symbols.Parameter {
	p := r.ArgsToParams[i]
	if p == VarargSlot {
		return nil
	}
	return r.Member.Params[p]
}

// TargetType returns the type argument i is converted to.
func (r *MemberResult) TargetType(i int) symbols.Type {
	p := r.ParamFor(i)
	if p == nil {
		return symbols.ArgList
	}
	if r.Form == ExpandedForm && p.Params {
		elem, _ := symbols.ParamsElementType(p.Type)
		return elem
	}
	return p.Type
}

// Verdict is the outcome of one resolution.
type Verdict struct {
	Results []MemberResult
	// Best is the index of the single best candidate, -1 when there is none.
	Best int
	// Ambiguous holds the indexes of the first two tied candidates when
	// several applicable candidates are equally good.
	Ambiguous []int
}

// Succeeded reports whether exactly one candidate is best.
func (v *Verdict) Succeeded() bool { return v.Best >= 0 }

// BestResult returns the winning candidate. It panics when there is none.
func (v *Verdict) BestResult() *MemberResult {
	if v.Best < 0 || v.Best >= len(v.Results) {
		panic(fmt.Sprintf("overload: best candidate %d of %d", v.Best, len(v.Results)))
	}
	return &v.Results[v.Best]
}

// Applicable returns the applicable candidates.
func (v *Verdict) Applicable() []*MemberResult {
	var rs []*MemberResult
	for i := range v.Results {
		if v.Results[i].Applicable() {
			rs = append(rs, &v.Results[i])
		}
	}
	return rs
}

// HasApplicable reports whether any candidate is applicable.
func (v *Verdict) HasApplicable() bool {
	for i := range v.Results {
		if v.Results[i].Applicable() {
			return true
		}
	}
	return false
}

// ClosestFailure returns the inapplicable candidate that got furthest, or nil.
// Reasons later in the Reason list are closer to applicable.
func (v *Verdict) ClosestFailure() *MemberResult {
	var best *MemberResult
	for i := range v.Results {
		r := &v.Results[i]
		if r.Applicable() {
			continue
		}
		if best == nil || r.Reason > best.Reason {
			best = r
		}
	}
	return best
}

// Members returns the candidates as reported for recovery: constructed when
// type arguments were inferred, the original otherwise.
func (v *Verdict) Members() []*symbols.Method {
	ms := make([]*symbols.Method, len(v.Results))
	for i, r := range v.Results {
		ms[i] = r.Member
	}
	return ms
}
