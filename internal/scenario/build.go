package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/binder"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/registry"
	"martianoff/callbind/internal/symbols"
)

type builder struct {
	f      *File
	reg    *registry.Registry
	path   string
	types  typeScope
	locals map[string]symbols.Type
	params map[string]bool
}

func newBuilder(f *File) *builder {
	reg := registry.DefaultRegistry()
	path := f.Path
	if path == "" {
		path = f.Name
	}
	return &builder{
		f:      f,
		reg:    reg,
		path:   path,
		types:  typeScope{reg: reg},
		locals: make(map[string]symbols.Type),
		params: make(map[string]bool),
	}
}

// declare registers every type, delegate and extension. Types and delegates
// are registered as empty shells first so declarations may refer to each
// other in any order.
func (b *builder) declare() error {
	named := make([]*symbols.NamedType, len(b.f.Types))
	for i := range b.f.Types {
		d := &b.f.Types[i]
		kind, err := typeKind(d.Kind)
		if err != nil {
			return fmt.Errorf("type '%s': %w", d.Name, err)
		}
		access, err := accessibility(d.Access)
		if err != nil {
			return fmt.Errorf("type '%s': %w", d.Name, err)
		}
		t := &symbols.NamedType{
			Name:       d.Name,
			Namespace:  d.Namespace,
			TypeKind:   kind,
			TypeParams: newTypeParams(d.TypeParams),
			Restricted: d.Restricted,
			Access:     access,
		}
		if err := b.reg.RegisterType(t); err != nil {
			return err
		}
		named[i] = t
	}
	delegates := make([]*symbols.DelegateType, len(b.f.Delegates))
	for i, d := range b.f.Delegates {
		dt := &symbols.DelegateType{Name: d.Name, UseSiteError: d.UseSiteError}
		if err := b.reg.RegisterDelegate(dt); err != nil {
			return err
		}
		delegates[i] = dt
	}

	for i, t := range named {
		if err := b.fillType(t, &b.f.Types[i]); err != nil {
			return fmt.Errorf("type '%s': %w", t.Name, err)
		}
	}
	for i, dt := range delegates {
		d := &b.f.Delegates[i]
		invoke := &symbols.Method{Name: "Invoke"}
		for j := range d.Params {
			p, err := b.param(b.types, &d.Params[j])
			if err != nil {
				return fmt.Errorf("delegate '%s': %w", d.Name, err)
			}
			invoke.Params = append(invoke.Params, p)
		}
		ret, err := b.types.resolve(d.Returns)
		if err != nil {
			return fmt.Errorf("delegate '%s': %w", d.Name, err)
		}
		invoke.Return = ret
		dt.Invoke = invoke
	}

	for i := range b.f.Extensions {
		if err := b.extension(&b.f.Extensions[i]); err != nil {
			return fmt.Errorf("extension '%s': %w", b.f.Extensions[i].Name, err)
		}
	}
	for _, d := range b.f.ExtensionProperties {
		p, err := b.property(b.types, d)
		if err != nil {
			return fmt.Errorf("extension property '%s': %w", d.Name, err)
		}
		b.reg.RegisterExtensionProperty(p)
	}

	for _, d := range b.f.Locals {
		if d.Name == "" {
			return fmt.Errorf("local without a name")
		}
		t, err := b.types.resolve(d.Type)
		if err != nil {
			return fmt.Errorf("local '%s': %w", d.Name, err)
		}
		b.locals[d.Name] = t
		b.params[d.Name] = d.Parameter
	}
	return nil
}

func (b *builder) fillType(t *symbols.NamedType, d *TypeDecl) error {
	ts := b.types.with(t.TypeParams)
	if err := constrain(ts, t.TypeParams, d.TypeParams); err != nil {
		return err
	}
	switch {
	case d.Base != "":
		base, err := ts.named(d.Base)
		if err != nil {
			return err
		}
		t.Base = base
	case t.TypeKind == symbols.KindStruct:
		t.Base = registry.ValueType
	}
	for _, name := range d.Interfaces {
		iface, err := ts.named(name)
		if err != nil {
			return err
		}
		t.Interfaces = append(t.Interfaces, iface)
	}
	if d.Element != "" {
		elem, err := ts.resolve(d.Element)
		if err != nil {
			return err
		}
		t.ElementType = elem
	}
	for i := range d.Methods {
		m, err := b.method(ts, &d.Methods[i])
		if err != nil {
			return fmt.Errorf("method '%s': %w", d.Methods[i].Name, err)
		}
		m.Container = t
		t.Methods = append(t.Methods, m)
	}
	for _, pd := range d.Properties {
		p, err := b.property(ts, pd)
		if err != nil {
			return fmt.Errorf("property '%s': %w", pd.Name, err)
		}
		p.Container = t
		t.Props = append(t.Props, p)
	}
	return nil
}

func (b *builder) extension(d *MethodDecl) error {
	m, err := b.method(b.types, d)
	if err != nil {
		return err
	}
	if d.Receiver != nil {
		m.Extension = symbols.MemberExtension
	} else {
		m.Extension = symbols.ClassicExtension
		m.Static = true
	}
	if d.Container != "" {
		c, err := b.types.named(d.Container)
		if err != nil {
			return err
		}
		m.Container = c
	}
	return b.reg.RegisterExtension(m)
}

func (b *builder) method(ts typeScope, d *MethodDecl) (*symbols.Method, error) {
	access, err := accessibility(d.Access)
	if err != nil {
		return nil, err
	}
	m := &symbols.Method{
		Name:                 d.Name,
		TypeParams:           newTypeParams(d.TypeParams),
		Static:               d.Static,
		Access:               access,
		Vararg:               d.Vararg,
		Conditional:          d.Conditional,
		LocalFunction:        d.LocalFunction,
		Finalizer:            d.Finalizer,
		UnmanagedCallersOnly: d.UnmanagedCallersOnly,
		ExtensionDisallowed:  d.ExtensionDisallowed,
		ReadOnly:             d.ReadOnly,
		AttributeConstructor: d.AttributeConstructor,
		UseSiteError:         d.UseSiteError,
	}
	if d.Obsolete != nil {
		m.Obsolete = &symbols.Obsolete{Message: d.Obsolete.Message, IsError: d.Obsolete.Error}
	}
	ts = ts.with(m.TypeParams)
	if err := constrain(ts, m.TypeParams, d.TypeParams); err != nil {
		return nil, err
	}
	if d.Receiver != nil {
		if m.Receiver, err = b.param(ts, d.Receiver); err != nil {
			return nil, err
		}
	}
	for i := range d.Params {
		p, err := b.param(ts, &d.Params[i])
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, p)
	}
	if m.Return, err = ts.resolve(d.Returns); err != nil {
		return nil, err
	}
	return m, nil
}

func (b *builder) param(ts typeScope, d *ParamDecl) (*symbols.Parameter, error) {
	if d.Type == "" {
		return nil, fmt.Errorf("parameter '%s' has no type", d.Name)
	}
	t, err := ts.resolve(d.Type)
	if err != nil {
		return nil, err
	}
	ref, err := refKind(d.Ref)
	if err != nil {
		return nil, err
	}
	caller, err := callerInfo(d.Caller)
	if err != nil {
		return nil, err
	}
	interop, err := interopKind(d.Interop)
	if err != nil {
		return nil, err
	}
	p := &symbols.Parameter{
		Name:           d.Name,
		Type:           t,
		RefKind:        ref,
		Params:         d.Params,
		Optional:       d.Optional,
		Caller:         caller,
		CallerArgument: d.CallerArgument,
		Interop:        interop,
	}
	if d.Default.Kind != 0 {
		ct := t
		if d.DefaultType != "" {
			if ct, err = ts.resolve(d.DefaultType); err != nil {
				return nil, err
			}
		}
		if p.Default, err = constant(&d.Default, ct); err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", d.Name, err)
		}
	}
	return p, nil
}

func (b *builder) property(ts typeScope, d PropertyDecl) (*symbols.Property, error) {
	t, err := ts.resolve(d.Type)
	if err != nil {
		return nil, err
	}
	access, err := accessibility(d.Access)
	if err != nil {
		return nil, err
	}
	return &symbols.Property{Name: d.Name, Type: t, Static: d.Static, Access: access}, nil
}

func newTypeParams(ds []TypeParamDecl) []*symbols.TypeParam {
	if len(ds) == 0 {
		return nil
	}
	tps := make([]*symbols.TypeParam, len(ds))
	for i, d := range ds {
		tps[i] = &symbols.TypeParam{Name: d.Name, ValueConstraint: d.Struct, RefConstraint: d.Class}
	}
	return tps
}

// constrain resolves type parameter constraints once every parameter of the
// declaration is in scope.
func constrain(ts typeScope, tps []*symbols.TypeParam, ds []TypeParamDecl) error {
	for i, d := range ds {
		for _, c := range d.Constraints {
			t, err := ts.resolve(c)
			if err != nil {
				return fmt.Errorf("constraint of '%s': %w", d.Name, err)
			}
			tps[i].Constraints = append(tps[i].Constraints, t)
		}
	}
	return nil
}

// constant parses a YAML scalar as a constant of type t. Types without a
// constant form of their own take the kind of the scalar.
func constant(n *yaml.Node, t symbols.Type) (*symbols.Constant, error) {
	var v interface{}
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	if t != nil {
		switch t.Kind() {
		case symbols.KindBool, symbols.KindInt, symbols.KindLong, symbols.KindDouble,
			symbols.KindDecimal, symbols.KindDateTime, symbols.KindString:
		default:
			t = nil
		}
	}
	return symbols.ParseConstant(v, t)
}

func (b *builder) calls() ([]*Call, error) {
	calls := make([]*Call, 0, len(b.f.Calls))
	for i := range b.f.Calls {
		d := &b.f.Calls[i]
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("call %d", i+1)
		}
		scope, err := b.scope(&d.Scope)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		at := binderr.Loc{Path: b.path, Line: d.Line, Col: d.Col}
		if at.Line == 0 {
			at.Line = i + 1
		}
		if at.Col == 0 {
			at.Col = 1
		}
		syntax, err := b.call(d, scope, at)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		calls = append(calls, &Call{Name: name, Scope: scope, Syntax: syntax, Expect: d.Expect})
	}
	return calls, nil
}

func (b *builder) scope(d *ScopeDecl) (*binder.Scope, error) {
	s := &binder.Scope{
		Static:         d.Static,
		Unsafe:         d.Unsafe,
		InQuery:        d.Query,
		ThisUnusable:   d.ThisUnusable,
		InDefaultValue: d.InDefaultValue,
		ReadOnlyThis:   d.ReadOnlyThis,
		FilePath:       b.path,
	}
	if d.Type != "" {
		t, err := b.types.named(d.Type)
		if err != nil {
			return nil, err
		}
		s.ContainingType = t
	}
	kind, err := memberKind(d.Kind)
	if err != nil {
		return nil, err
	}
	if d.Member != "" || d.Kind != "" {
		s.Member = &binder.Member{Name: d.Member, Kind: kind}
	}
	if d.Lambda {
		s.Member = &binder.Member{Kind: binder.LambdaMember, Outer: s.Member}
	}
	return s, nil
}

// typesIn returns the type scope of code inside scope.
func (b *builder) typesIn(scope *binder.Scope) typeScope {
	if scope.ContainingType == nil {
		return b.types
	}
	return b.types.with(scope.ContainingType.TypeParams)
}

func (b *builder) call(d *CallDecl, scope *binder.Scope, at binderr.Loc) (*binder.CallSyntax, error) {
	callee, err := b.callee(d, scope, at)
	if err != nil {
		return nil, err
	}
	open := binderr.Loc{Path: at.Path, Line: at.Line, Col: at.Col + len(callee.Text())}
	col := open.Col + 1
	args := make([]binder.ArgumentSyntax, 0, len(d.Args))
	srcs := make([]string, 0, len(d.Args))
	for i := range d.Args {
		a, src, err := b.argument(&d.Args[i], scope, binderr.Loc{Path: at.Path, Line: at.Line, Col: col})
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args = append(args, a)
		srcs = append(srcs, src)
		col += len(src) + 2
	}
	return &binder.CallSyntax{
		Callee:    callee,
		Args:      args,
		At:        at,
		OpenParen: open,
		Src:       callee.Text() + "(" + strings.Join(srcs, ", ") + ")",
	}, nil
}

func (b *builder) callee(d *CallDecl, scope *binder.Scope, at binderr.Loc) (bound.Expr, error) {
	switch {
	case d.Callee != "" && d.Method != "":
		return nil, fmt.Errorf("call has both a callee and a method")
	case d.Callee != "":
		l, ok := b.local(d.Callee, at)
		if !ok {
			return nil, fmt.Errorf("unknown local '%s'", d.Callee)
		}
		return l, nil
	case d.Method == "":
		return nil, fmt.Errorf("call has no callee or method")
	}
	recv, err := b.receiver(d.Receiver, scope, at)
	if err != nil {
		return nil, err
	}
	var targs []symbols.Type
	for _, a := range d.TypeArgs {
		t, err := b.typesIn(scope).resolve(a)
		if err != nil {
			return nil, err
		}
		targs = append(targs, t)
	}
	g := b.group(d.Method, recv, scope, at)
	if len(targs) > 0 {
		g.TypeArgs = targs
		g.Src += "<" + strings.Join(d.TypeArgs, ", ") + ">"
	}
	return g, nil
}

func (b *builder) local(name string, at binderr.Loc) (*bound.Local, bool) {
	t, ok := b.locals[name]
	if !ok {
		return nil, false
	}
	return &bound.Local{Node: bound.Node{At: at, Src: name}, Name: name, Typ: t, Parameter: b.params[name]}, true
}

// receiver builds the receiver of a member access. An empty name is the
// implicit this of a simple-name call, also in static code where the binder
// rejects it for instance members. A local whose name is also the
// name of its type is ambiguous between the two until the member is known.
func (b *builder) receiver(name string, scope *binder.Scope, at binderr.Loc) (bound.Expr, error) {
	ct := scope.ContainingType
	node := bound.Node{At: at, Src: name}
	switch name {
	case "":
		if ct == nil {
			return nil, nil
		}
		return &bound.This{Node: bound.Node{At: at}, Typ: ct, Implicit: true, ReadOnly: scope.ReadOnlyThis}, nil
	case "this":
		if ct == nil {
			return nil, fmt.Errorf("'this' outside a type")
		}
		return &bound.This{Node: node, Typ: ct, ReadOnly: scope.ReadOnlyThis}, nil
	case "base":
		if ct == nil || ct.Base == nil {
			return nil, fmt.Errorf("'base' without a base type")
		}
		return &bound.This{Node: node, Typ: ct.Base, Base: true}, nil
	}
	if l, ok := b.local(name, at); ok {
		if nt, ok := l.Typ.(*symbols.NamedType); ok && nt.Name == name {
			return &bound.TypeOrValue{Node: node, Value: l, TypeRef: &bound.TypeExpr{Node: node, Typ: nt}}, nil
		}
		return l, nil
	}
	t, err := b.typesIn(scope).resolve(name)
	if err != nil {
		return nil, fmt.Errorf("unknown receiver '%s'", name)
	}
	return &bound.TypeExpr{Node: node, Typ: t}, nil
}

// group looks name up on the receiver's type and collects the extension
// members of the same name. A dynamic receiver gets an empty group; its
// members are found at run time.
func (b *builder) group(name string, recv bound.Expr, scope *binder.Scope, at binderr.Loc) *bound.MethodGroup {
	g := &bound.MethodGroup{Node: bound.Node{At: at, Src: name}, Name: name, Receiver: recv, Kind: symbols.Viable}
	if recv == nil {
		exts, props := b.reg.Extensions(name)
		g.Extensions, g.Properties = exts, props
		return g
	}
	if src := recv.Text(); src != "" {
		g.Src = src + "." + name
	}
	if symbols.IsDynamic(recv.Type()) {
		return g
	}
	res := b.reg.Lookup(recv.Type(), name, scope.ContainingType)
	g.Methods = res.Methods
	g.Properties = res.Properties
	if res.Kind == symbols.Inaccessible {
		g.Kind = symbols.Inaccessible
	}
	exts, props := b.reg.Extensions(name)
	g.Extensions = exts
	g.Properties = append(g.Properties, props...)
	return g
}

func (b *builder) argument(d *ArgDecl, scope *binder.Scope, at binderr.Loc) (binder.ArgumentSyntax, string, error) {
	ref, err := refKind(d.Ref)
	if err != nil {
		return binder.ArgumentSyntax{}, "", err
	}
	a := binder.ArgumentSyntax{Name: d.Name, RefKind: ref, At: at}
	var src string
	switch {
	case d.Call != nil:
		c, err := b.call(d.Call, scope, at)
		if err != nil {
			return a, "", err
		}
		a.Call, src = c, c.Src
	case d.ArgList != nil:
		al := &binder.ArgListSyntax{At: at}
		var srcs []string
		col := at.Col + len("__arglist(")
		for i := range *d.ArgList {
			sub, s, err := b.argument(&(*d.ArgList)[i], scope, binderr.Loc{Path: at.Path, Line: at.Line, Col: col})
			if err != nil {
				return a, "", err
			}
			al.Args = append(al.Args, sub)
			srcs = append(srcs, s)
			col += len(s) + 2
		}
		al.Src = "__arglist(" + strings.Join(srcs, ", ") + ")"
		a.ArgList, src = al, al.Src
	default:
		e, err := b.expr(d, scope, at)
		if err != nil {
			return a, "", err
		}
		a.Expr, src = e, e.Text()
	}
	if ref != symbols.RefNone {
		src = ref.String() + " " + src
	}
	if d.Name != "" {
		src = d.Name + ": " + src
	}
	return a, src, nil
}

func (b *builder) expr(d *ArgDecl, scope *binder.Scope, at binderr.Loc) (bound.Expr, error) {
	forms := 0
	for _, set := range []bool{
		d.Value.Kind != 0, d.Local != "", d.Var != "", d.IsLambda, d.Group != "",
		d.This, d.Conditional != nil, d.Tuple != nil,
	} {
		if set {
			forms++
		}
	}
	if forms != 1 {
		return nil, fmt.Errorf("argument needs exactly one expression, has %d", forms)
	}

	node := bound.Node{At: at}
	switch {
	case d.Value.Kind != 0:
		return b.literal(&d.Value, d.Type, scope, at)
	case d.Local != "":
		l, ok := b.local(d.Local, at)
		if !ok {
			return nil, fmt.Errorf("unknown local '%s'", d.Local)
		}
		return l, nil
	case d.Var != "":
		if d.Var == "_" {
			node.Src = "_"
			return &bound.PendingVar{Node: node, Discard: true}, nil
		}
		node.Src = "var " + d.Var
		return &bound.PendingVar{Node: node, Name: d.Var}, nil
	case d.IsLambda:
		node.Src = "(" + strings.Join(d.Lambda, ", ") + ") => ..."
		l := &bound.Lambda{Node: node, Params: d.Lambda}
		if d.Type != "" {
			t, err := b.typesIn(scope).resolve(d.Type)
			if err != nil {
				return nil, err
			}
			dt, ok := t.(*symbols.DelegateType)
			if !ok {
				return nil, fmt.Errorf("lambda type '%s' is not a delegate", d.Type)
			}
			l.Natural = dt
		}
		return l, nil
	case d.Group != "":
		recv, err := b.receiver("", scope, at)
		if err != nil {
			return nil, err
		}
		return b.group(d.Group, recv, scope, at), nil
	case d.This:
		if scope.ContainingType == nil {
			return nil, fmt.Errorf("'this' outside a type")
		}
		node.Src = "this"
		return &bound.This{Node: node, Typ: scope.ContainingType, ReadOnly: scope.ReadOnlyThis}, nil
	case d.Conditional != nil:
		arms, srcs, err := b.exprs(d.Conditional, scope, at)
		if err != nil {
			return nil, err
		}
		node.Src = "c ? " + strings.Join(srcs, " : ")
		tt := &bound.TargetTyped{Node: node, Form: "conditional", Arms: arms}
		if d.Type != "" {
			if tt.Natural, err = b.typesIn(scope).resolve(d.Type); err != nil {
				return nil, err
			}
		}
		return tt, nil
	}
	elems, srcs, err := b.exprs(d.Tuple, scope, at)
	if err != nil {
		return nil, err
	}
	node.Src = "(" + strings.Join(srcs, ", ") + ")"
	return &bound.Tuple{Node: node, Elems: elems}, nil
}

func (b *builder) exprs(ds []ArgDecl, scope *binder.Scope, at binderr.Loc) ([]bound.Expr, []string, error) {
	es := make([]bound.Expr, 0, len(ds))
	srcs := make([]string, 0, len(ds))
	for i := range ds {
		e, err := b.expr(&ds[i], scope, at)
		if err != nil {
			return nil, nil, err
		}
		es = append(es, e)
		srcs = append(srcs, e.Text())
	}
	return es, srcs, nil
}

func (b *builder) literal(n *yaml.Node, typ string, scope *binder.Scope, at binderr.Loc) (bound.Expr, error) {
	var t symbols.Type
	if typ != "" {
		var err error
		if t, err = b.typesIn(scope).resolve(typ); err != nil {
			return nil, err
		}
	}
	c, err := constant(n, t)
	if err != nil {
		return nil, err
	}
	src := n.Value
	switch {
	case c.IsNull():
		src = "null"
	case c.Kind == symbols.ConstString:
		src = strconv.Quote(n.Value)
	}
	return &bound.Literal{Node: bound.Node{At: at, Src: src}, Value: c}, nil
}

func typeKind(s string) (symbols.TypeKind, error) {
	switch s {
	case "", "class":
		return symbols.KindClass, nil
	case "struct":
		return symbols.KindStruct, nil
	case "interface":
		return symbols.KindInterface, nil
	}
	return 0, fmt.Errorf("unknown type kind '%s'", s)
}

func accessibility(s string) (symbols.Accessibility, error) {
	switch s {
	case "", "public":
		return symbols.Public, nil
	case "internal":
		return symbols.Internal, nil
	case "protected":
		return symbols.Protected, nil
	case "private":
		return symbols.Private, nil
	}
	return 0, fmt.Errorf("unknown accessibility '%s'", s)
}

func refKind(s string) (symbols.RefKind, error) {
	switch s {
	case "":
		return symbols.RefNone, nil
	case "ref":
		return symbols.RefRef, nil
	case "out":
		return symbols.RefOut, nil
	case "in":
		return symbols.RefIn, nil
	}
	return 0, fmt.Errorf("unknown ref kind '%s'", s)
}

func callerInfo(s string) (symbols.CallerInfo, error) {
	switch s {
	case "":
		return symbols.CallerNone, nil
	case "line":
		return symbols.CallerLineNumber, nil
	case "file":
		return symbols.CallerFilePath, nil
	case "member":
		return symbols.CallerMemberName, nil
	case "argument":
		return symbols.CallerArgumentExpression, nil
	}
	return 0, fmt.Errorf("unknown caller info '%s'", s)
}

func interopKind(s string) (symbols.InteropKind, error) {
	switch s {
	case "":
		return symbols.InteropNone, nil
	case "interface":
		return symbols.InteropInterface, nil
	case "idispatch":
		return symbols.InteropIDispatch, nil
	case "iunknown":
		return symbols.InteropIUnknown, nil
	}
	return 0, fmt.Errorf("unknown interop kind '%s'", s)
}

func memberKind(s string) (binder.MemberKind, error) {
	switch s {
	case "", "method":
		return binder.MethodMember, nil
	case "constructor":
		return binder.ConstructorMember, nil
	case "property":
		return binder.PropertyMember, nil
	case "field":
		return binder.FieldInitializer, nil
	case "local":
		return binder.LocalFunctionMember, nil
	}
	return 0, fmt.Errorf("unknown member kind '%s'", s)
}
