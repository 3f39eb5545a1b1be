// Package typereg maps Go types to reflection metadata that can be looked up
// by name at runtime. Scripts only ever see types through a Handle.
package typereg

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	// ErrAlreadyRegistered is returned when the same Go type is registered twice.
	ErrAlreadyRegistered = errors.New("typereg: type already registered")
	// ErrDefaultType is returned when a WithDefault constructor builds a
	// different type than the one being registered.
	ErrDefaultType = errors.New("typereg: default constructor type mismatch")
)

// Trait is a capability flag attached to a registration.
type Trait uint8

const (
	TraitComponent Trait = 1 << iota
	TraitResource
	TraitDefault
)

// Registration is the immutable metadata recorded for one type.
type Registration struct {
	shortName  string
	typePath   string
	typ        reflect.Type
	traits     Trait
	newDefault func() any // returns *T
	builds     reflect.Type
}

func newRegistration(t reflect.Type) *Registration {
	return &Registration{
		shortName: t.Name(),
		typePath:  TypePath(t),
		typ:       t,
	}
}

// TypePath returns the fully qualified name of t, e.g.
// "github.com/l1jgo/scriptworld/internal/component.Transform".
func TypePath(t reflect.Type) string {
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Option configures a registration.
type Option func(*Registration)

// AsComponent marks the type as attachable to entities.
func AsComponent() Option {
	return func(r *Registration) { r.traits |= TraitComponent }
}

// AsResource marks the type as a world-global singleton.
func AsResource() Option {
	return func(r *Registration) { r.traits |= TraitResource }
}

// ZeroDefault makes the type default-constructible as its zero value.
func ZeroDefault() Option {
	return func(r *Registration) {
		r.traits |= TraitDefault
		r.newDefault = func() any { return reflect.New(r.typ).Interface() }
		r.builds = r.typ
	}
}

// WithDefault makes the type default-constructible through fn.
func WithDefault[T any](fn func() T) Option {
	return func(r *Registration) {
		r.traits |= TraitDefault
		r.newDefault = func() any {
			v := fn()
			return &v
		}
		r.builds = reflect.TypeFor[T]()
	}
}

// Registry is safe for concurrent use. It is normally filled once at startup
// and then only read.
type Registry struct {
	mu        sync.RWMutex
	byType    map[reflect.Type]*Registration
	byShort   map[string]*Registration
	byPath    map[string]*Registration
	ambiguous map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byType:    make(map[reflect.Type]*Registration, 32),
		byShort:   make(map[string]*Registration, 32),
		byPath:    make(map[string]*Registration, 32),
		ambiguous: make(map[string]struct{}),
	}
}

// Register records T with the given capabilities.
func Register[T any](r *Registry, opts ...Option) (Handle, error) {
	return r.register(reflect.TypeFor[T](), opts...)
}

// MustRegister is Register that panics on error. Intended for init-time tables.
func MustRegister[T any](r *Registry, opts ...Option) Handle {
	h, err := Register[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

func (r *Registry) register(t reflect.Type, opts ...Option) (Handle, error) {
	reg := newRegistration(t)
	for _, opt := range opts {
		opt(reg)
	}
	if reg.builds != nil && reg.builds != t {
		return Handle{}, fmt.Errorf("%s: constructor builds %s: %w", reg.typePath, reg.builds, ErrDefaultType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byType[t]; ok {
		return Handle{}, fmt.Errorf("%s: %w", reg.typePath, ErrAlreadyRegistered)
	}
	r.byType[t] = reg
	r.byPath[reg.typePath] = reg

	if _, dup := r.ambiguous[reg.shortName]; !dup {
		if _, taken := r.byShort[reg.shortName]; taken {
			delete(r.byShort, reg.shortName)
			r.ambiguous[reg.shortName] = struct{}{}
		} else {
			r.byShort[reg.shortName] = reg
		}
	}
	return Handle{reg: reg}, nil
}

// ByShortName finds a type by its unqualified name. Names shared by more than
// one registered type never match.
func (r *Registry) ByShortName(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byShort[name]
	return Handle{reg: reg}, ok
}

// ByTypePath finds a type by its fully qualified path.
func (r *Registry) ByTypePath(path string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byPath[path]
	return Handle{reg: reg}, ok
}

// Resolve tries the short name first and then the full path. A miss is not
// an error.
func (r *Registry) Resolve(name string) (Handle, bool) {
	if h, ok := r.ByShortName(name); ok {
		return h, true
	}
	return r.ByTypePath(name)
}

// ForType returns the handle registered for t.
func (r *Registry) ForType(t reflect.Type) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byType[t]
	return Handle{reg: reg}, ok
}

// Describe returns the registered handle for t, or an unregistered handle
// carrying only its names. Used for nested values that still need a type.
func (r *Registry) Describe(t reflect.Type) Handle {
	if h, ok := r.ForType(t); ok {
		return h
	}
	return Handle{reg: newRegistration(t)}
}

// Clone returns a registry sharing the same registrations. Handles obtained
// from either compare equal.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for k, v := range r.byType {
		c.byType[k] = v
	}
	for k, v := range r.byShort {
		c.byShort[k] = v
	}
	for k, v := range r.byPath {
		c.byPath[k] = v
	}
	for k := range r.ambiguous {
		c.ambiguous[k] = struct{}{}
	}
	return c
}

// Handles lists every registered type sorted by type path.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	out := make([]Handle, 0, len(r.byType))
	for _, reg := range r.byType {
		out = append(out, Handle{reg: reg})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].TypePath() < out[j].TypePath() })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType)
}
