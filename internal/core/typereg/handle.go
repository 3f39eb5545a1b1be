package typereg

import "reflect"

// Handle is an opaque, copyable reference to a type's registration. The zero
// Handle refers to no type.
type Handle struct {
	reg *Registration
}

func (h Handle) IsZero() bool { return h.reg == nil }

func (h Handle) ShortName() string {
	if h.reg == nil {
		return ""
	}
	return h.reg.shortName
}

func (h Handle) TypePath() string {
	if h.reg == nil {
		return ""
	}
	return h.reg.typePath
}

func (h Handle) Type() reflect.Type {
	if h.reg == nil {
		return nil
	}
	return h.reg.typ
}

func (h Handle) Has(t Trait) bool {
	return h.reg != nil && h.reg.traits&t == t
}

func (h Handle) IsComponent() bool { return h.Has(TraitComponent) }
func (h Handle) IsResource() bool  { return h.Has(TraitResource) }
func (h Handle) CanDefault() bool  { return h.Has(TraitDefault) }

// New returns a pointer to a default-constructed value, or false when the
// type has no default.
func (h Handle) New() (any, bool) {
	if !h.CanDefault() || h.reg.newDefault == nil {
		return nil, false
	}
	return h.reg.newDefault(), true
}

// Equal compares by underlying Go type, not by name.
func (h Handle) Equal(o Handle) bool {
	return h.Type() == o.Type()
}

func (h Handle) String() string {
	if h.reg == nil {
		return "<nil type>"
	}
	return h.reg.typePath
}
