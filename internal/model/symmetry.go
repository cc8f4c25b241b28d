package model

import "sort"

// Axis is the orientation of a symmetry group's mirror line.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// Opposite returns the other axis orientation, used by convertSymmetryType.
func (a Axis) Opposite() Axis {
	if a == Vertical {
		return Horizontal
	}
	return Vertical
}

// Pair is one symmetry pair: two module names that must mirror each other.
type Pair struct {
	A, B string
}

// Group is a symmetry group: an axis plus a set of pairs and self-symmetric
// modules. Exactly one module of each pair is the representative (the
// lexicographically larger name); self-symmetric modules represent
// themselves.
type Group struct {
	Name string
	Axis Axis

	Pairs  []Pair
	Selves []string

	// axis2 holds the doubled, locked axis position for the
	// dimension the axis constrains (X for Vertical, Y for Horizontal).
	// Valid only once Locked is true.
	axis2  int
	locked bool
}

// Representative returns the representative name of a pair: the
// lexicographically larger of the two names.
func (p Pair) Representative() string {
	if p.A > p.B {
		return p.A
	}
	return p.B
}

// Partner returns the non-representative name of a pair.
func (p Pair) Partner() string {
	if p.A > p.B {
		return p.B
	}
	return p.A
}

// Representatives returns the names of every representative module in the
// group (one per pair, plus every self-symmetric module), in sorted name
// order with pairs' representatives and selves together.
func (g *Group) Representatives() []string {
	reps := make([]string, 0, len(g.Pairs)+len(g.Selves))
	for _, p := range g.Pairs {
		reps = append(reps, p.Representative())
	}
	reps = append(reps, append([]string(nil), g.Selves...)...)
	sort.Strings(reps)
	return reps
}

// IsSelf reports whether name is a self-symmetric module of this group.
func (g *Group) IsSelf(name string) bool {
	for _, s := range g.Selves {
		if s == name {
			return true
		}
	}
	return false
}

// PairOf returns the pair containing name and true, or the zero Pair and
// false if name is not part of any pair in this group.
func (g *Group) PairOf(name string) (Pair, bool) {
	for _, p := range g.Pairs {
		if p.A == name || p.B == name {
			return p, true
		}
	}
	return Pair{}, false
}

// IsRepresentative reports whether name is the representative of its pair,
// or is a self-symmetric module (self-symmetric modules represent
// themselves).
func (g *Group) IsRepresentative(name string) bool {
	if g.IsSelf(name) {
		return true
	}
	p, ok := g.PairOf(name)
	return ok && p.Representative() == name
}

// Lock fixes the axis position (doubled) for this group. The ASF-B*-tree
// locks it at its first pack, moves it when shifting the island into
// non-negative coordinates, and locks it again at the first pack after
// FlipAxis unlocks it.
func (g *Group) Lock(axis2 int) {
	g.axis2 = axis2
	g.locked = true
}

// Unlock resets the lock state; used by FlipAxis, after which the owning
// ASF-B*-tree locks the axis again at its next pack.
func (g *Group) Unlock() { g.locked = false }

// Locked reports whether the axis has been locked.
func (g *Group) Locked() bool { return g.locked }

// Axis2 returns the locked, doubled axis position. Callers must check
// Locked() first; it is a programming error to read this before the first
// pack.
func (g *Group) Axis2() int { return g.axis2 }

// FlipAxis changes the axis orientation, used by ConvertSymmetryType. The
// caller is responsible for re-locking with a freshly computed axis
// position and for rebuilding the owning ASF-B*-tree.
func (g *Group) FlipAxis() {
	g.Axis = g.Axis.Opposite()
	g.Unlock()
}

// AllModuleNames returns every module name belonging to this group
// (representatives and partners, and self-symmetric modules), in stable
// order: for each pair, representative then partner; then selves.
func (g *Group) AllModuleNames() []string {
	names := make([]string, 0, 2*len(g.Pairs)+len(g.Selves))
	for _, p := range g.Pairs {
		names = append(names, p.Representative(), p.Partner())
	}
	names = append(names, g.Selves...)
	return names
}
