package overload

import (
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// Classifier classifies implicit conversions.
type Classifier interface {
	Classify(e bound.Expr, dst symbols.Type) symbols.Conversion
	ClassifyType(src, dst symbols.Type) symbols.Conversion
}

// Resolver is the reference overload resolver. It keeps no state between
// requests and is safe for concurrent use.
type Resolver struct {
	conv Classifier
}

// NewResolver returns a resolver using conv to classify argument conversions.
func NewResolver(conv Classifier) *Resolver {
	return &Resolver{conv: conv}
}

// Resolve decides applicability for every candidate and picks the best one.
func (r *Resolver) Resolve(req *Request) *Verdict {
	v := &Verdict{Best: -1, Results: make([]MemberResult, len(req.Candidates))}
	for i, m := range req.Candidates {
		v.Results[i] = r.candidate(req, m)
	}
	r.pickBest(req.Args, v)
	return v
}

func (r *Resolver) candidate(req *Request, m *symbols.Method) MemberResult {
	orig := m
	failed := MemberResult{Member: m, Original: orig, BadArg: -1, BadParam: -1}
	if len(req.TypeArgs) > 0 {
		if len(req.TypeArgs) != len(m.TypeParams) {
			failed.Reason = BadTypeArgCount
			return failed
		}
		m = m.Construct(req.TypeArgs)
		failed.Member = m
	}

	pp := m.ParamsParameter()
	tryNormal := pp == nil || req.Options.AllowUnexpandedForm
	tryExpanded := pp != nil
	if tryExpanded && req.Options.DisallowExpandedNonArrayParams {
		if _, isArray := pp.Type.(*symbols.ArrayType); !isArray {
			tryExpanded = false
		}
	}

	var normal MemberResult
	if tryNormal {
		normal = r.tryForm(req, orig, m, NormalForm)
		if normal.Applicable() {
			if req.Options.DynamicResolution && tryExpanded {
				normal.DynamicParamsAmbiguity = dynamicParamsAmbiguity(req.Args, &normal)
			}
			return normal
		}
	}
	if tryExpanded {
		expanded := r.tryForm(req, orig, m, ExpandedForm)
		if expanded.Applicable() || !tryNormal || expanded.Reason > normal.Reason {
			return expanded
		}
	}
	if tryNormal {
		return normal
	}
	failed.Reason = WrongArity
	return failed
}

// tryForm checks applicability of m, which is orig with any explicit type
// arguments substituted, in the given form.
func (r *Resolver) tryForm(req *Request, orig, m *symbols.Method, form Form) MemberResult {
	res := MemberResult{Member: m, Original: orig, Form: form, BadArg: -1, BadParam: -1}
	args := req.Args
	n := args.Len()
	nParams := len(m.Params)
	paramsIdx := -1
	if form == ExpandedForm {
		paramsIdx = nParams - 1
	}

	res.ArgsToParams = make([]int, n)
	filled := make([]bool, nParams)
	positional := make([]bool, nParams)
	for i := 0; i < n; i++ {
		name := args.Name(i)
		if name == "" {
			switch {
			case paramsIdx >= 0 && i >= paramsIdx:
				res.ArgsToParams[i] = paramsIdx
			case i < nParams:
				res.ArgsToParams[i] = i
				positional[i] = true
			case m.Vararg && i == nParams && isArgList(args.Arg(i)):
				res.ArgsToParams[i] = VarargSlot
				continue
			default:
				res.Reason = WrongArity
				return res
			}
			filled[res.ArgsToParams[i]] = true
			continue
		}
		p := m.ParamIndex(name)
		switch {
		case p < 0 || p == paramsIdx:
			res.Reason, res.BadArg = BadNamedArgument, i
			return res
		case positional[p]:
			res.Reason, res.BadArg = NamedArgumentPosition, i
			return res
		case filled[p]:
			res.Reason, res.BadArg = DuplicateNamedArgument, i
			return res
		}
		res.ArgsToParams[i] = p
		filled[p] = true
	}
	for j, p := range m.Params {
		if filled[j] || j == paramsIdx {
			continue
		}
		if !p.IsOptional() {
			res.Reason, res.BadParam = MissingRequired, j
			return res
		}
		res.Defaults++
	}

	if m.IsUnconstructed() {
		inferred, ok := r.infer(m, args, &res)
		if !ok {
			res.Reason = TypeInferenceFailed
			return res
		}
		res.Member = m.Construct(inferred)
	}

	res.Conversions = make([]symbols.Conversion, n)
	for i := 0; i < n; i++ {
		arg := args.Arg(i)
		p := res.ParamFor(i)
		if p == nil {
			res.Conversions[i] = symbols.Conversion{Kind: symbols.Identity}
			continue
		}
		rk := args.RefKind(i)
		pk := p.RefKind
		if form == ExpandedForm && p.Params {
			pk = symbols.RefNone
		}
		if req.IsExtension && i == 0 {
			// The receiver is passed the way the receiver parameter declares.
			rk = pk
		}
		if !refKindFits(rk, pk, arg) {
			res.Reason, res.BadArg = BadRefKind, i
			return res
		}
		target := res.TargetType(i)
		var conv symbols.Conversion
		if rk == symbols.RefRef || rk == symbols.RefOut {
			if _, pending := arg.(*bound.PendingVar); pending || symbols.Identical(arg.Type(), target) || symbols.IsError(arg.Type()) {
				conv = symbols.Conversion{Kind: symbols.Identity}
			}
		} else {
			conv = r.conv.Classify(arg, target)
		}
		if !conv.Exists() {
			res.Reason, res.BadArg = BadArgument, i
			return res
		}
		res.Conversions[i] = conv
	}
	return res
}

func (r *Resolver) infer(m *symbols.Method, args *arglist.List, res *MemberResult) ([]symbols.Type, bool) {
	inf := newInferer(m.TypeParams)
	for i := 0; i < args.Len(); i++ {
		p := res.ArgsToParams[i]
		if p == VarargSlot {
			continue
		}
		pt := m.Params[p].Type
		if res.Form == ExpandedForm && m.Params[p].Params {
			pt, _ = symbols.ParamsElementType(pt)
		}
		if err := inf.unify(pt, args.Arg(i).Type()); err != nil {
			return nil, false
		}
	}
	out, err := inf.result()
	return out, err == nil
}

// refKindFits reports whether an argument passed with rk may bind to a parameter declared pk.
func refKindFits(rk, pk symbols.RefKind, arg bound.Expr) bool {
	if _, pending := arg.(*bound.PendingVar); pending {
		return pk == symbols.RefOut
	}
	if pk == symbols.RefIn {
		return rk == symbols.RefNone || rk == symbols.RefIn
	}
	return rk == pk
}

func isArgList(e bound.Expr) bool {
	_, ok := e.(*bound.ArgListOperator)
	return ok
}

// dynamicParamsAmbiguity reports whether the only argument bound to the
// params parameter in normal form is dynamic.
func dynamicParamsAmbiguity(args *arglist.List, res *MemberResult) bool {
	paramsIdx := len(res.Member.Params) - 1
	count, dynamic := 0, false
	for i, p := range res.ArgsToParams {
		if p == paramsIdx {
			count++
			dynamic = symbols.IsDynamic(args.Arg(i).Type())
		}
	}
	return count == 1 && dynamic
}
