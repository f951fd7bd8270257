// Package scenario reads call-binding scenarios from YAML files.
//
// A scenario declares types, delegates, extension methods and locals, then
// lists call sites to bind against them. Loading a scenario produces a
// populated registry and ready-to-bind call syntax.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"martianoff/callbind/internal/binder"
	"martianoff/callbind/internal/registry"
)

// File is the YAML form of a scenario.
type File struct {
	Name string `yaml:"name"`
	// Path is the source path reported for every call site.
	Path       string            `yaml:"path"`
	PathMap    map[string]string `yaml:"pathmap"`
	Types      []TypeDecl        `yaml:"types"`
	Delegates  []DelegateDecl    `yaml:"delegates"`
	Extensions []MethodDecl      `yaml:"extensions"`
	// ExtensionProperties are non-method extension members.
	ExtensionProperties []PropertyDecl `yaml:"extensionProperties"`
	Locals              []LocalDecl    `yaml:"locals"`
	Calls               []CallDecl     `yaml:"calls"`
}

// TypeDecl declares a class, struct or interface.
type TypeDecl struct {
	Name       string          `yaml:"name"`
	Namespace  string          `yaml:"namespace"`
	Kind       string          `yaml:"kind"`
	Base       string          `yaml:"base"`
	Interfaces []string        `yaml:"interfaces"`
	TypeParams []TypeParamDecl `yaml:"typeParams"`
	// Element makes the type a collection usable for params.
	Element    string         `yaml:"element"`
	Restricted bool           `yaml:"restricted"`
	Access     string         `yaml:"access"`
	Methods    []MethodDecl   `yaml:"methods"`
	Properties []PropertyDecl `yaml:"properties"`
}

// TypeParamDecl is a type parameter. It may be written as a bare name.
type TypeParamDecl struct {
	Name        string   `yaml:"name"`
	Struct      bool     `yaml:"struct"`
	Class       bool     `yaml:"class"`
	Constraints []string `yaml:"constraints"`
}

func (d *TypeParamDecl) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		d.Name = n.Value
		return nil
	}
	type plain TypeParamDecl
	return n.Decode((*plain)(d))
}

// MethodDecl declares a method. In the extensions list a method is a classic
// extension whose first parameter is the receiver, unless Receiver is set.
type MethodDecl struct {
	Name       string          `yaml:"name"`
	Static     bool            `yaml:"static"`
	Access     string          `yaml:"access"`
	TypeParams []TypeParamDecl `yaml:"typeParams"`
	Params     []ParamDecl     `yaml:"params"`
	Returns    string          `yaml:"returns"`
	Vararg     bool            `yaml:"vararg"`
	Obsolete   *ObsoleteDecl   `yaml:"obsolete"`
	// Conditional lists the symbols of a Conditional attribute.
	Conditional []string `yaml:"conditional"`

	LocalFunction        bool   `yaml:"localFunction"`
	Finalizer            bool   `yaml:"finalizer"`
	UnmanagedCallersOnly bool   `yaml:"unmanagedCallersOnly"`
	ExtensionDisallowed  bool   `yaml:"extensionDisallowed"`
	ReadOnly             bool   `yaml:"readonly"`
	AttributeConstructor bool   `yaml:"attributeConstructor"`
	UseSiteError         string `yaml:"useSiteError"`

	// Receiver declares the receiver of a member extension.
	Receiver *ParamDecl `yaml:"receiver"`
	// Container names the static type an extension is declared in.
	Container string `yaml:"container"`
}

// ObsoleteDecl is an Obsolete attribute.
type ObsoleteDecl struct {
	Message string `yaml:"message"`
	Error   bool   `yaml:"error"`
}

// ParamDecl declares a parameter.
type ParamDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	// Ref is "ref", "out" or "in".
	Ref    string `yaml:"ref"`
	Params bool   `yaml:"params"`
	// Default is the declared default. A null default is distinct from none.
	Default yaml.Node `yaml:"default"`
	// DefaultType overrides the type the default constant is parsed as.
	DefaultType string `yaml:"defaultType"`
	Optional    bool   `yaml:"optional"`
	// Caller is "line", "file", "member" or "argument".
	Caller         string `yaml:"caller"`
	CallerArgument string `yaml:"callerArgument"`
	// Interop is "interface", "idispatch" or "iunknown".
	Interop string `yaml:"interop"`
}

// PropertyDecl declares a property.
type PropertyDecl struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
	Access string `yaml:"access"`
}

// DelegateDecl declares a delegate type.
type DelegateDecl struct {
	Name         string      `yaml:"name"`
	Params       []ParamDecl `yaml:"params"`
	Returns      string      `yaml:"returns"`
	UseSiteError string      `yaml:"useSiteError"`
}

// LocalDecl declares a local variable or parameter visible to every call.
type LocalDecl struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Parameter bool   `yaml:"parameter"`
}

// CallDecl is one call site.
type CallDecl struct {
	Name  string    `yaml:"name"`
	Line  int       `yaml:"line"`
	Col   int       `yaml:"col"`
	Scope ScopeDecl `yaml:"scope"`
	// Receiver is "this", "base", a local or a type name. Empty means a
	// simple-name call.
	Receiver string   `yaml:"receiver"`
	Method   string   `yaml:"method"`
	TypeArgs []string `yaml:"typeArgs"`
	// Callee names a local that is invoked directly.
	Callee string      `yaml:"callee"`
	Args   []ArgDecl   `yaml:"args"`
	Expect Expectation `yaml:"expect"`
}

// ScopeDecl describes where a call appears.
type ScopeDecl struct {
	Type   string `yaml:"type"`
	Member string `yaml:"member"`
	// Kind is "method", "constructor", "property" or "field".
	Kind           string `yaml:"kind"`
	Lambda         bool   `yaml:"lambda"`
	Static         bool   `yaml:"static"`
	Unsafe         bool   `yaml:"unsafe"`
	Query          bool   `yaml:"query"`
	ThisUnusable   bool   `yaml:"thisUnusable"`
	InDefaultValue bool   `yaml:"inDefaultValue"`
	ReadOnlyThis   bool   `yaml:"readonlyThis"`
}

// ArgDecl is one argument. A bare scalar other than null is a literal;
// otherwise exactly one of the expression fields is set.
type ArgDecl struct {
	Name string `yaml:"name"`
	Ref  string `yaml:"ref"`

	Value yaml.Node `yaml:"value"`
	// Type is the literal's type, or the natural type of a conditional.
	Type        string     `yaml:"type"`
	Local       string     `yaml:"local"`
	Var         string     `yaml:"var"`
	Lambda      []string   `yaml:"lambda"`
	IsLambda    bool       `yaml:"-"`
	Group       string     `yaml:"group"`
	This        bool       `yaml:"this"`
	ArgList     *[]ArgDecl `yaml:"arglist"`
	Call        *CallDecl  `yaml:"call"`
	Conditional []ArgDecl  `yaml:"conditional"`
	Tuple       []ArgDecl  `yaml:"tuple"`
}

func (d *ArgDecl) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		d.Value = *n
		return nil
	}
	type plain ArgDecl
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "lambda" {
			d.IsLambda = true
		}
	}
	return nil
}

// Expectation is what binding a call is expected to produce.
type Expectation struct {
	// Text is the expected rendering of the bound expression.
	Text string `yaml:"text"`
	// Node is the expected bound node kind, such as "Call" or "BadExpr".
	Node  string   `yaml:"node"`
	Codes []string `yaml:"codes"`
}

// IsZero reports whether nothing is expected.
func (e Expectation) IsZero() bool {
	return e.Text == "" && e.Node == "" && e.Codes == nil
}

// Scenario is a loaded scenario.
type Scenario struct {
	Name     string
	Path     string
	PathMap  map[string]string
	Registry *registry.Registry
	Calls    []*Call
}

// Call is a call site ready to bind.
type Call struct {
	Name   string
	Scope  *binder.Scope
	Syntax *binder.CallSyntax
	Expect Expectation
}

// Load reads and builds the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scenario from YAML. Unknown fields are rejected.
func Parse(name string, data []byte) (*Scenario, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if f.Name == "" {
		f.Name = name
	}
	return Build(&f)
}

// Build turns a decoded scenario into a registry and call sites.
func Build(f *File) (*Scenario, error) {
	b := newBuilder(f)
	if err := b.declare(); err != nil {
		return nil, err
	}
	calls, err := b.calls()
	if err != nil {
		return nil, err
	}
	return &Scenario{
		Name:     f.Name,
		Path:     b.path,
		PathMap:  f.PathMap,
		Registry: b.reg,
		Calls:    calls,
	}, nil
}
