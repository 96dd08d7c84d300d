package model

// Constant is a plain name binding whose only interesting property is its
// type (or type set) — a module-level or class-level assignment whose RHS
// the scope evaluator resolved to something other than a function, class or
// module (§3 "Constant").
type Constant struct {
	base
	Types []Member // evaluated type(s) of the RHS; empty means Unknown
	Loc   Location
}

// NewConstant creates a constant with its evaluated type set already known.
func NewConstant(name string, loc Location, types []Member) *Constant {
	return &Constant{base: base{name: name}, Types: types, Loc: loc}
}

func (c *Constant) Kind() Kind            { return KindConstant }
func (c *Constant) Locations() []Location { return []Location{c.Loc} }
