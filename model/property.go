package model

import "sync"

// Property wraps a function decorated with @property (or @abstractproperty):
// the getter overload plus an IsReadOnly flag that starts true and can only
// ever flip to false, when a matching `@<name>.setter` is walked later
// (invariant 4: "a property's read-only flag only ever transitions true to
// false, never back").
type Property struct {
	base
	DeclaringClass *Class
	Getter         *Function

	mu         sync.Mutex
	isReadOnly bool
}

// NewProperty creates a read-only property around its getter function.
func NewProperty(name string, declaringClass *Class, getter *Function) *Property {
	return &Property{
		base:           base{name: name},
		DeclaringClass: declaringClass,
		Getter:         getter,
		isReadOnly:     true,
	}
}

func (p *Property) Kind() Kind { return KindProperty }

func (p *Property) FullyQualifiedName() string {
	if p.DeclaringClass != nil {
		return p.DeclaringClass.FullyQualifiedName() + "." + p.name
	}
	return p.name
}

// IsReadOnly reports the current state of the one-way flag.
func (p *Property) IsReadOnly() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isReadOnly
}

// MarkWritable flips the flag to false. A call after it is already false is a
// no-op; there is no way back to true (invariant 4).
func (p *Property) MarkWritable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isReadOnly = false
}
