package model

// Instance represents an instance of a symbolic class — what a constructor
// call (`Widget()`) or a `self` parameter evaluates to (§3 "Instance"). It
// carries no member table of its own; attribute lookups on an Instance walk
// its Class's MRO (package mro) rather than duplicating storage here.
type Instance struct {
	base
	Class *Class
}

// NewInstance wraps cls as an instance value. name is typically the class's
// own name, used for diagnostics/printing.
func NewInstance(cls *Class) *Instance {
	name := ""
	if cls != nil {
		name = cls.Name()
	}
	return &Instance{base: base{name: name}, Class: cls}
}

func (i *Instance) Kind() Kind { return KindInstance }
