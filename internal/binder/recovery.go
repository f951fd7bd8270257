package binder

import (
	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// maxParameterListsForErrorRecovery caps how many candidate parameter lists
// are consulted when guessing argument types for a failed call.
const maxParameterListsForErrorRecovery = 10

// recoveryInput describes a call that could not be resolved.
type recoveryInput struct {
	name       string
	receiver   bound.Expr
	candidates []*symbols.Method
	args       *arglist.List
	kind       symbols.ResultKind
	// extension marks args whose first element is an extension receiver.
	extension bool
	delegate  bool
	// diagnosed holds argument positions that already have a diagnostic.
	diagnosed map[int]bool
}

func newRecovery(name string, args *arglist.List, kind symbols.ResultKind) *recoveryInput {
	return &recoveryInput{name: name, args: args, kind: kind}
}

// recoverCall builds the typed error node of a failed call.
func (c *callContext) recoverCall(in *recoveryInput) *bound.Call {
	stand := standInMethod(in.name, in.candidates)
	call := &bound.Call{
		Node:               c.node(),
		Receiver:           in.receiver,
		Method:             stand,
		Args:               c.recoverArguments(in),
		Names:              copyNames(in.args.Names()),
		RefKinds:           copyRefKinds(in.args.RefKinds()),
		InvokedAsExtension: in.extension,
		DelegateInvoke:     in.delegate,
		Kind:               in.kind,
		OriginalMethods:    in.candidates,
		Typ:                stand.Return,
		Errors:             true,
	}
	if in.extension {
		call.Receiver = nil
	}
	c.log.Debug("recovered failed call", "name", in.name, "kind", in.kind.String(), "candidates", len(in.candidates))
	return call
}

// standInMethod picks the member a failed call is reported against: the one
// usable candidate, or a synthesized method returning the candidates' common
// return type.
func standInMethod(name string, cands []*symbols.Method) *symbols.Method {
	var usable []*symbols.Method
	for _, m := range cands {
		if !m.IsUnconstructed() {
			usable = append(usable, m)
		}
	}
	if len(usable) == 1 {
		return usable[0]
	}
	var ret symbols.Type
	for _, m := range cands {
		r := m.Return
		if m.IsUnconstructed() && symbols.Mentions(r, m.TypeParams) {
			r = symbols.Unknown
		}
		if ret == nil {
			ret = r
		} else if !symbols.Identical(ret, r) {
			ret = symbols.Unknown
			break
		}
	}
	if ret == nil {
		ret = symbols.Unknown
	}
	return &symbols.Method{Name: name, Return: ret}
}

// recoveryContext is the state the argument recovery helpers share.
type recoveryContext struct {
	conv      ConversionClassifier
	sink      binderr.Sink
	params    [][]*symbols.Parameter
	args      *arglist.List
	diagnosed map[int]bool
}

func (c *callContext) recoverArguments(in *recoveryInput) []bound.Expr {
	rc := &recoveryContext{
		conv:      c.conv,
		sink:      c.sink,
		args:      in.args,
		diagnosed: in.diagnosed,
	}
	for i, m := range in.candidates {
		if i == maxParameterListsForErrorRecovery {
			break
		}
		rc.params = append(rc.params, m.Params)
	}
	out := make([]bound.Expr, in.args.Len())
	for i := range out {
		out[i] = recoverArgument(rc, i)
	}
	return out
}

func recoverArgument(rc *recoveryContext, i int) bound.Expr {
	arg := rc.args.Arg(i)
	switch a := arg.(type) {
	case *bound.Lambda:
		if d := delegateParam(rc, i); d != nil {
			return bindLambda(rc.conv, a, d, binderr.Discard)
		}
		if a.Natural == nil && !rc.diagnosed[i] {
			rc.sink.Add(binderr.New(binderr.ErrLambdaNeedsTarget, a.At))
		}
		return a
	case *bound.PendingVar:
		if t, ok := consensusType(rc, i); ok {
			return &bound.Local{Node: a.Node, Name: pendingName(a), Typ: t}
		}
		rc.sink.Add(binderr.New(binderr.ErrCantInferOutVariable, a.At, pendingName(a)))
		return &bound.Local{Node: a.Node, Name: pendingName(a), Typ: symbols.Unknown}
	}
	if !rc.diagnosed[i] {
		reportDeferred(rc.sink, arg)
	}
	return arg
}

// reportDeferred reports the errors of argument forms that only get a type
// from their target: typeless conditionals and tuples holding such forms.
func reportDeferred(sink binderr.Sink, e bound.Expr) {
	switch e := e.(type) {
	case *bound.TargetTyped:
		if e.Natural == nil {
			sink.Add(binderr.New(binderr.ErrNoNaturalType, e.At, e.Form))
		}
	case *bound.Lambda:
		if e.Natural == nil {
			sink.Add(binderr.New(binderr.ErrLambdaNeedsTarget, e.At))
		}
	case *bound.Tuple:
		for _, el := range e.Elems {
			reportDeferred(sink, el)
		}
	}
}

// consensusType returns the parameter type argument i binds to when every
// consulted candidate agrees on it.
func consensusType(rc *recoveryContext, i int) (symbols.Type, bool) {
	var t symbols.Type
	for _, ps := range rc.params {
		pt := recoveryParamType(rc, ps, i)
		if pt == nil {
			return nil, false
		}
		if t == nil {
			t = pt
		} else if !symbols.Identical(t, pt) {
			return nil, false
		}
	}
	return t, t != nil
}

// delegateParam returns the first delegate type among the candidate
// parameters argument i could bind to.
func delegateParam(rc *recoveryContext, i int) *symbols.DelegateType {
	for _, ps := range rc.params {
		if d, ok := recoveryParamType(rc, ps, i).(*symbols.DelegateType); ok {
			return d
		}
	}
	return nil
}

// recoveryParamType guesses the type of the parameter in ps that argument i
// would bind to, or returns nil.
func recoveryParamType(rc *recoveryContext, ps []*symbols.Parameter, i int) symbols.Type {
	var p *symbols.Parameter
	if name := rc.args.Name(i); name != "" {
		for _, q := range ps {
			if q.Name == name {
				p = q
				break
			}
		}
	} else if i < len(ps) {
		p = ps[i]
	} else if n := len(ps); n > 0 && ps[n-1].Params {
		p = ps[n-1]
	}
	if p == nil || hasTypeParam(p.Type) {
		return nil
	}
	if p.Params {
		elem, ok := symbols.ParamsElementType(p.Type)
		if ok && (rc.args.Len() > len(ps) || !rc.conv.Classify(rc.args.Arg(i), p.Type).Exists()) {
			return elem
		}
	}
	return p.Type
}

func hasTypeParam(t symbols.Type) bool {
	switch t := t.(type) {
	case *symbols.TypeParam:
		return true
	case *symbols.ArrayType:
		return hasTypeParam(t.Elem)
	case *symbols.PointerType:
		return hasTypeParam(t.Elem)
	case *symbols.NamedType:
		for _, a := range t.TypeArgs {
			if hasTypeParam(a) {
				return true
			}
		}
	}
	return false
}

// bindLambda converts a lambda to d. Shape mismatches are reported to sink.
func bindLambda(conv ConversionClassifier, l *bound.Lambda, d *symbols.DelegateType, sink binderr.Sink) *bound.BoundLambda {
	bl := &bound.BoundLambda{Node: l.Node, Lambda: l, Delegate: d}
	if conv.Classify(l, d).Kind != symbols.AnonymousFunction {
		sink.Add(binderr.New(binderr.ErrLambdaNeedsTarget, l.At))
		bl.Errors = true
	}
	return bl
}

func pendingName(v *bound.PendingVar) string {
	if v.Discard {
		return "_"
	}
	return v.Name
}

func copyNames(names []string) []string {
	for _, n := range names {
		if n != "" {
			return append([]string(nil), names...)
		}
	}
	return nil
}

func copyRefKinds(rks []symbols.RefKind) []symbols.RefKind {
	for _, rk := range rks {
		if rk != symbols.RefNone {
			return append([]symbols.RefKind(nil), rks...)
		}
	}
	return nil
}
