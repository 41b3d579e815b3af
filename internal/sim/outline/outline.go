// Package outline lays out the cavern's skeleton: rectangular baseplates
// and the paths that connect them.
package outline

import (
	"fmt"
	"math"

	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
)

type Kind int

const (
	Ambiguous Kind = iota
	Excluded
	Special
	Hall
)

func (k Kind) String() string {
	switch k {
	case Ambiguous:
		return "ambiguous"
	case Excluded:
		return "excluded"
	case Special:
		return "special"
	case Hall:
		return "hall"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type PathKind int

const (
	PathAmbiguous PathKind = iota
	PathExcluded
	Spanning
	Auxiliary
)

func (k PathKind) String() string {
	switch k {
	case PathAmbiguous:
		return "ambiguous"
	case PathExcluded:
		return "excluded"
	case Spanning:
		return "spanning"
	case Auxiliary:
		return "auxiliary"
	}
	return fmt.Sprintf("pathkind(%d)", int(k))
}

// Bubble is a real-valued rectangle that exists only during partition.
type Bubble struct {
	ID   int
	X, Y float64 // center
	W, H float64
}

func (b Bubble) left() float64   { return b.X - b.W/2 }
func (b Bubble) right() float64  { return b.X + b.W/2 }
func (b Bubble) top() float64    { return b.Y - b.H/2 }
func (b Bubble) bottom() float64 { return b.Y + b.H/2 }

type Baseplate struct {
	ID   int
	Rect geom.Rect
	Kind Kind
}

// Center is the real-valued midpoint of the plate.
func (b Baseplate) Center() geom.Vec {
	x, y := b.Rect.Center()
	return geom.Vec{X: x, Y: y}
}

// Path lists baseplate ids from one endpoint to the other.
type Path struct {
	ID     int
	Plates []int
	Kind   PathKind
}

func (p Path) Origin() int      { return p.Plates[0] }
func (p Path) Destination() int { return p.Plates[len(p.Plates)-1] }

// Outlines is the arena every outline stage mutates. Ids index the slices.
type Outlines struct {
	Plates []Baseplate
	Paths  []Path
}

func (o *Outlines) distance(p Path) float64 {
	a, b := o.Plates[p.Origin()].Center(), o.Plates[p.Destination()].Center()
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Bounds is the union of every plate.
func (o *Outlines) Bounds() geom.Rect {
	var r geom.Rect
	for _, p := range o.Plates {
		r = r.Union(p.Rect)
	}
	return r
}
