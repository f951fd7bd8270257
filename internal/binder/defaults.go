package binder

import (
	"sort"
	"strings"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/registry"
	"martianoff/callbind/internal/symbols"
)

// defaultsContext is the state shared by the default-argument helpers. args,
// names, refKinds and argsToParams are parallel; names and refKinds may be nil.
type defaultsContext struct {
	method       *symbols.Method
	args         []bound.Expr
	names        []string
	refKinds     []symbols.RefKind
	argsToParams []int
	expanded     bool
	// firstParam is the first parameter that can be filled; a classic
	// extension receiver is placed by the caller.
	firstParam  int
	receiverArg bound.Expr

	scope      *Scope
	call       *CallSyntax
	sink       binderr.Sink
	conv       ConversionClassifier
	pathMap    map[string]string
	warnLegacy bool

	// defaults marks the synthesized slots of args.
	defaults bound.BitSet
	// cycles are the parameters whose default could not be bound because
	// the call is itself inside a default value.
	cycles []*symbols.Parameter
}

// synthesizeDefaults appends a value for every parameter without an
// argument and, in expanded form, packs the params arguments into one
// collection argument.
func synthesizeDefaults(dc *defaultsContext) {
	m := dc.method
	filled := make([]bool, len(m.Params))
	for i := 0; i < dc.firstParam && i < len(filled); i++ {
		filled[i] = true
	}
	for _, p := range dc.argsToParams {
		if p >= 0 {
			filled[p] = true
		}
	}
	paramsIdx := -1
	if dc.expanded {
		paramsIdx = len(m.Params) - 1
		filled[paramsIdx] = true
	}

	for j, p := range m.Params {
		if filled[j] {
			continue
		}
		dc.appendArg(defaultArgument(dc, p), j)
		dc.defaults.Set(len(dc.args) - 1)
	}
	if paramsIdx >= 0 {
		packParams(dc, paramsIdx)
	}
}

func (dc *defaultsContext) appendArg(e bound.Expr, param int) {
	dc.args = append(dc.args, e)
	dc.argsToParams = append(dc.argsToParams, param)
	if dc.names != nil {
		dc.names = append(dc.names, "")
	}
	if dc.refKinds != nil {
		dc.refKinds = append(dc.refKinds, symbols.RefNone)
	}
}

// packParams replaces the arguments bound to the params parameter with a
// single array or collection creation placed last.
func packParams(dc *defaultsContext, paramsIdx int) {
	var elems []bound.Expr
	keep := 0
	for i, e := range dc.args {
		if dc.argsToParams[i] == paramsIdx {
			elems = append(elems, e)
			continue
		}
		dc.args[keep] = e
		dc.argsToParams[keep] = dc.argsToParams[i]
		if dc.names != nil {
			dc.names[keep] = dc.names[i]
		}
		if dc.refKinds != nil {
			dc.refKinds[keep] = dc.refKinds[i]
		}
		if dc.defaults.Has(i) && keep != i {
			dc.defaults = moveBit(dc.defaults, i, keep)
		}
		keep++
	}
	dc.args = dc.args[:keep]
	dc.argsToParams = dc.argsToParams[:keep]
	if dc.names != nil {
		dc.names = dc.names[:keep]
	}
	if dc.refKinds != nil {
		dc.refKinds = dc.refKinds[:keep]
	}

	p := dc.method.Params[paramsIdx]
	node := bound.Node{At: dc.call.At}
	if len(elems) > 0 {
		node.At = elems[0].Loc()
	}
	var coll bound.Expr
	if at, ok := p.Type.(*symbols.ArrayType); ok {
		coll = &bound.ArrayCreation{Node: node, Typ: at, Elems: elems}
	} else {
		coll = &bound.CollectionCreation{Node: node, Typ: p.Type, Elems: elems}
	}
	dc.appendArg(coll, paramsIdx)
	if len(elems) == 0 {
		dc.defaults.Set(len(dc.args) - 1)
	}
}

func moveBit(b bound.BitSet, from, to int) bound.BitSet {
	var out bound.BitSet
	for _, m := range b.Members() {
		if m == from {
			m = to
		}
		out.Set(m)
	}
	return out
}

// defaultArgument synthesizes the value of an omitted parameter.
func defaultArgument(dc *defaultsContext, p *symbols.Parameter) bound.Expr {
	node := bound.Node{At: dc.call.At}
	if dc.scope.InDefaultValue {
		dc.cycles = append(dc.cycles, p)
		return &bound.BadExpr{Node: node, Kind: symbols.NotViable, Typ: p.Type}
	}
	if p.Default != nil && p.Caller != symbols.CallerNone {
		if e := callerInfo(dc, p); e != nil {
			return e
		}
	}
	if p.Default != nil {
		return declaredDefault(dc, p)
	}
	if p.Optional && (symbols.IsObject(p.Type) || symbols.IsDynamic(p.Type)) {
		return interopDefault(dc, p)
	}
	return &bound.DefaultValue{Node: node, Typ: p.Type}
}

// callerInfo substitutes call-site information. It returns nil when the
// information is unavailable or does not convert to the parameter type, in
// which case the declared default is used.
func callerInfo(dc *defaultsContext, p *symbols.Parameter) bound.Expr {
	var value *symbols.Constant
	switch p.Caller {
	case symbols.CallerLineNumber:
		line := dc.call.OpenParen.Line
		if line == 0 {
			line = dc.call.At.Line
		}
		value = symbols.IntConstant(int64(line))
	case symbols.CallerFilePath:
		path := dc.scope.FilePath
		if path == "" {
			path = dc.call.At.Path
		}
		value = symbols.StringConstant(mapPath(path, dc.pathMap))
	case symbols.CallerMemberName:
		m := dc.scope.Member.UserDeclared()
		if m == nil {
			return nil
		}
		value = symbols.StringConstant(m.Name)
	case symbols.CallerArgumentExpression:
		arg := argumentFor(dc, p.CallerArgument)
		if arg == nil || arg.Text() == "" {
			return nil
		}
		value = symbols.StringConstant(arg.Text())
	}
	if value == nil {
		return nil
	}
	e, ok := constantArgument(dc, value, p)
	if !ok {
		return nil
	}
	return e
}

// argumentFor returns the explicit argument bound to the parameter named name.
func argumentFor(dc *defaultsContext, name string) bound.Expr {
	idx := dc.method.ParamIndex(name)
	if idx < 0 {
		return nil
	}
	if idx < dc.firstParam {
		return dc.receiverArg
	}
	for i, p := range dc.argsToParams {
		if p == idx && !dc.defaults.Has(i) {
			if conv, ok := dc.args[i].(*bound.Conversion); ok {
				return conv.Operand
			}
			return dc.args[i]
		}
	}
	return nil
}

// mapPath rewrites the longest matching prefix of path.
func mapPath(path string, pathMap map[string]string) string {
	prefixes := make([]string, 0, len(pathMap))
	for from := range pathMap {
		prefixes = append(prefixes, from)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	for _, from := range prefixes {
		if from != "" && strings.HasPrefix(path, from) {
			return pathMap[from] + path[len(from):]
		}
	}
	return path
}

// declaredDefault converts the declared default of p to its type.
func declaredDefault(dc *defaultsContext, p *symbols.Parameter) bound.Expr {
	node := bound.Node{At: dc.call.At}
	d := p.Default
	if dc.method.AttributeConstructor && p.Type.IsReferenceType() && p.Type.Kind() != symbols.KindString && !d.IsNull() {
		dc.sink.Add(binderr.New(binderr.ErrBadAttributeParamDefault, dc.call.At, p.Name, p.Type))
		return &bound.BadExpr{Node: node, Kind: symbols.NotViable, Typ: p.Type}
	}
	if e, ok := constantArgument(dc, d, p); ok {
		return e
	}
	if d.Kind == symbols.ConstDecimal || d.Kind == symbols.ConstDateTime {
		if dc.warnLegacy {
			dc.sink.Add(binderr.New(binderr.InfoLegacyDefault, dc.call.At, p.Name, p.Type))
		}
		return &bound.DefaultValue{Node: node, Typ: p.Type}
	}
	dc.sink.Add(binderr.New(binderr.ErrDefaultConversion, dc.call.At, p.Name, p.Type))
	return &bound.BadExpr{Node: node, Kind: symbols.NotViable, Typ: p.Type}
}

// interopDefault returns the sentinel passed for an omitted optional object
// parameter without a declared default.
func interopDefault(dc *defaultsContext, p *symbols.Parameter) bound.Expr {
	node := bound.Node{At: dc.call.At}
	null := &bound.Literal{Node: node, Value: symbols.NullConstant}
	var e bound.Expr
	switch p.Interop {
	case symbols.InteropInterface:
		e = null
	case symbols.InteropIDispatch:
		e = &bound.ObjectCreation{Node: node, Typ: registry.DispatchWrapper, Args: []bound.Expr{null}}
	case symbols.InteropIUnknown:
		e = &bound.ObjectCreation{Node: node, Typ: registry.UnknownWrapper, Args: []bound.Expr{null}}
	default:
		e = &bound.StaticField{Node: node, Container: "Type", Name: "Missing", Typ: symbols.Object}
	}
	return convertDefault(dc, e, p.Type)
}

// constantArgument builds a literal for value converted to p's type. It
// reports false when no conversion exists.
func constantArgument(dc *defaultsContext, value *symbols.Constant, p *symbols.Parameter) (bound.Expr, bool) {
	lit := &bound.Literal{Node: bound.Node{At: dc.call.At}, Value: value}
	if !dc.conv.Classify(lit, p.Type).Exists() {
		return nil, false
	}
	return convertDefault(dc, lit, p.Type), true
}

func convertDefault(dc *defaultsContext, e bound.Expr, t symbols.Type) bound.Expr {
	conv := dc.conv.Classify(e, t)
	if conv.IsIdentity() || !conv.Exists() {
		return e
	}
	return &bound.Conversion{Node: bound.Node{At: dc.call.At}, Operand: e, Conv: conv, Typ: t}
}
