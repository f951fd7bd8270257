// Package registry is the symbol table the binder consults to build candidate
// sets: declared types with their members, delegate types, and the extension
// methods and properties in scope.
//
// Registration happens before binding starts. During binding the registry is
// only read, so many call sites may be bound against it at once.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"martianoff/callbind/internal/symbols"
)

// Registry manages known types and extension members.
//
// Thread-safe: all methods can be called concurrently.
type Registry struct {
	mu sync.RWMutex

	// types maps a type's simple name to its declaration
	types map[string]*symbols.NamedType

	// delegates maps a delegate type name to its declaration
	delegates map[string]*symbols.DelegateType

	// extensions maps a member name to the extension methods with that name,
	// in registration order
	extensions map[string][]*symbols.Method

	// extensionProps maps a member name to the extension properties with that name
	extensionProps map[string][]*symbols.Property
}

// NewRegistry creates an empty registry.
// Use DefaultRegistry for one preloaded with the well-known runtime types.
func NewRegistry() *Registry {
	return &Registry{
		types:          make(map[string]*symbols.NamedType),
		delegates:      make(map[string]*symbols.DelegateType),
		extensions:     make(map[string][]*symbols.Method),
		extensionProps: make(map[string][]*symbols.Property),
	}
}

// RegisterType adds a type declaration and sets the container of members
// that have none.
func (r *Registry) RegisterType(t *symbols.NamedType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFree(t.Name, "type"); err != nil {
		return err
	}
	for _, m := range t.Methods {
		if m.Container == nil {
			m.Container = t
		}
	}
	for _, p := range t.Props {
		if p.Container == nil {
			p.Container = t
		}
	}
	r.types[t.Name] = t
	return nil
}

// RegisterDelegate adds a delegate type.
func (r *Registry) RegisterDelegate(d *symbols.DelegateType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFree(d.Name, "delegate"); err != nil {
		return err
	}
	r.delegates[d.Name] = d
	return nil
}

// RegisterExtension adds an extension method. Classic extensions must have a
// receiver parameter; member extensions must declare their receiver.
func (r *Registry) RegisterExtension(m *symbols.Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch m.Extension {
	case symbols.ClassicExtension:
		if len(m.Params) == 0 {
			return fmt.Errorf("extension method '%s' has no receiver parameter", m.Name)
		}
	case symbols.MemberExtension:
		if m.Receiver == nil {
			return fmt.Errorf("extension member '%s' has no receiver", m.Name)
		}
	default:
		return fmt.Errorf("'%s' is not an extension method", m.Name)
	}
	sig := m.String()
	for _, other := range r.extensions[m.Name] {
		if other.String() == sig {
			return &DuplicateError{Name: sig, Kind: "extension method"}
		}
	}
	r.extensions[m.Name] = append(r.extensions[m.Name], m)
	return nil
}

// RegisterExtensionProperty adds an extension property.
func (r *Registry) RegisterExtensionProperty(p *symbols.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Extension = true
	r.extensionProps[p.Name] = append(r.extensionProps[p.Name], p)
}

func (r *Registry) checkFree(name, kind string) error {
	if _, ok := r.types[name]; ok {
		return &DuplicateError{Name: name, Kind: kind}
	}
	if _, ok := r.delegates[name]; ok {
		return &DuplicateError{Name: name, Kind: kind}
	}
	return nil
}

// Type returns the type declared with the given name.
func (r *Registry) Type(name string) (*symbols.NamedType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Delegate returns the delegate type declared with the given name.
func (r *Registry) Delegate(name string) (*symbols.DelegateType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.delegates[name]
	return d, ok
}

// Types returns all registered types sorted by name.
func (r *Registry) Types() []*symbols.NamedType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*symbols.NamedType, 0, len(r.types))
	for _, t := range r.types {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Result is the outcome of a member lookup.
type Result struct {
	Methods    []*symbols.Method
	Properties []*symbols.Property
	// Kind is Viable, Empty or Inaccessible.
	Kind symbols.ResultKind
}

// Lookup finds the methods named name on recv and its base types, as seen
// from code inside from (nil for code outside any type). A method hides a
// base method with the same signature. When every match is inaccessible the
// result keeps them with kind Inaccessible so that errors can name them.
func (r *Registry) Lookup(recv symbols.Type, name string, from *symbols.NamedType) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := recv.(*symbols.NamedType)
	if !ok {
		return Result{Kind: symbols.Empty}
	}
	var found, inaccessible []*symbols.Method
	var props []*symbols.Property
	seen := make(map[string]bool)
	for c := t; c != nil; c = c.Base {
		for _, m := range c.Methods {
			if m.Name != name {
				continue
			}
			sig := signature(m)
			if seen[sig] {
				continue
			}
			seen[sig] = true
			if Accessible(m.Access, c, from) {
				found = append(found, m)
			} else {
				inaccessible = append(inaccessible, m)
			}
		}
		for _, p := range c.Props {
			if p.Name == name && Accessible(p.Access, c, from) {
				props = append(props, p)
			}
		}
	}
	switch {
	case len(found) > 0:
		return Result{Methods: found, Properties: props, Kind: symbols.Viable}
	case len(inaccessible) > 0:
		return Result{Methods: inaccessible, Properties: props, Kind: symbols.Inaccessible}
	case len(props) > 0:
		return Result{Properties: props, Kind: symbols.Viable}
	}
	return Result{Kind: symbols.Empty}
}

// Extensions returns the extension methods and extension properties named name.
func (r *Registry) Extensions(name string) ([]*symbols.Method, []*symbols.Property) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ms := append([]*symbols.Method(nil), r.extensions[name]...)
	ps := append([]*symbols.Property(nil), r.extensionProps[name]...)
	return ms, ps
}

// Accessible reports whether a member with the given accessibility declared
// in container can be used from code inside from.
func Accessible(access symbols.Accessibility, container, from *symbols.NamedType) bool {
	switch access {
	case symbols.Private:
		return from != nil && container != nil && from.OriginalDefinition() == container.OriginalDefinition()
	case symbols.Protected:
		return from != nil && container != nil && from.DerivesFrom(container)
	}
	return true
}

// MethodAccessible reports whether m can be called from code inside from.
func MethodAccessible(m *symbols.Method, from *symbols.NamedType) bool {
	return Accessible(m.Access, m.Container, from)
}

func signature(m *symbols.Method) string {
	s := fmt.Sprintf("%d`", len(m.TypeParams))
	for _, p := range m.Params {
		s += p.RefKind.String() + p.Type.String() + ","
	}
	return s
}

// DuplicateError is returned when a name is registered twice.
type DuplicateError struct {
	Name string // The duplicated name or signature
	Kind string // "type", "delegate" or "extension method"
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s '%s' is already declared; choose a different name", e.Kind, e.Name)
}
