// pkg/bounds/bounds.go - Axis-aligned extents with an explicit empty marker
package bounds

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Box is an axis-aligned bounding box. Unlike orb.Bound, whose zero value is
// a degenerate box at the origin, the zero Box is empty and contains nothing.
type Box struct {
	bound orb.Bound
	set   bool
}

// Empty returns the empty box, the identity element of Union.
func Empty() Box {
	return Box{}
}

// FromBound wraps an orb.Bound. Min and Max are normalized so Min <= Max.
func FromBound(b orb.Bound) Box {
	return New(b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}

// New builds a box from two opposite corners given in any order.
func New(x1, y1, x2, y2 float64) Box {
	return Box{
		bound: orb.Bound{
			Min: orb.Point{min(x1, x2), min(y1, y2)},
			Max: orb.Point{max(x1, x2), max(y1, y2)},
		},
		set: true,
	}
}

// FromPoints returns the envelope of the given points.
func FromPoints(points ...orb.Point) Box {
	b := Empty()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box covers nothing.
func (b Box) IsEmpty() bool {
	return !b.set
}

// Bound returns the underlying orb.Bound and false if the box is empty.
func (b Box) Bound() (orb.Bound, bool) {
	return b.bound, b.set
}

// Min returns the lower-left corner; the zero point for an empty box.
func (b Box) Min() orb.Point {
	return b.bound.Min
}

// Max returns the upper-right corner; the zero point for an empty box.
func (b Box) Max() orb.Point {
	return b.bound.Max
}

// Width of the box; zero when empty.
func (b Box) Width() float64 {
	if !b.set {
		return 0
	}
	return b.bound.Max[0] - b.bound.Min[0]
}

// Height of the box; zero when empty.
func (b Box) Height() float64 {
	if !b.set {
		return 0
	}
	return b.bound.Max[1] - b.bound.Min[1]
}

// Center of the box; the zero point when empty.
func (b Box) Center() orb.Point {
	if !b.set {
		return orb.Point{}
	}
	return b.bound.Center()
}

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p orb.Point) Box {
	if !b.set {
		return Box{bound: orb.Bound{Min: p, Max: p}, set: true}
	}
	return Box{bound: b.bound.Extend(p), set: true}
}

// Union returns the smallest box containing both boxes. It is associative
// and commutative, and Union with Empty is the identity.
func (b Box) Union(other Box) Box {
	switch {
	case !b.set:
		return other
	case !other.set:
		return b
	}
	return Box{bound: b.bound.Union(other.bound), set: true}
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p orb.Point) bool {
	return b.set && b.bound.Contains(p)
}

// Intersects reports whether the two boxes overlap.
func (b Box) Intersects(other Box) bool {
	return b.set && other.set && b.bound.Intersects(other.bound)
}

// Equal reports whether both boxes are empty or have identical corners.
func (b Box) Equal(other Box) bool {
	if b.set != other.set {
		return false
	}
	return !b.set || b.bound.Equal(other.bound)
}

// Polygon returns the box as a closed ring polygon, nil when empty.
func (b Box) Polygon() orb.Polygon {
	if !b.set {
		return nil
	}
	return b.bound.ToPolygon()
}

func (b Box) String() string {
	if !b.set {
		return "EMPTY"
	}
	return fmt.Sprintf("[%g, %g, %g, %g]", b.bound.Min[0], b.bound.Min[1], b.bound.Max[0], b.bound.Max[1])
}

// UnionAll folds Union over boxes.
func UnionAll(boxes ...Box) Box {
	out := Empty()
	for _, b := range boxes {
		out = out.Union(b)
	}
	return out
}
