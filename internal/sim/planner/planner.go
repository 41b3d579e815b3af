// Package planner turns each region of the outline into terrain. A Stem is
// the bare graph node conquest works with; a Somatic is what it
// differentiates into and knows how to lay tiles.
package planner

import (
	"fmt"
	"log"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/pearl"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

type Kind int

const (
	Cave Kind = iota
	Hall
)

func (k Kind) String() string {
	if k == Hall {
		return "hall"
	}
	return "cave"
}

// Opposite swaps cave and hall.
func (k Kind) Opposite() Kind {
	if k == Hall {
		return Cave
	}
	return Hall
}

type Fluid int

const (
	NoFluid Fluid = iota
	Water
	Lava
)

func (f Fluid) String() string {
	switch f {
	case Water:
		return "water"
	case Lava:
		return "lava"
	}
	return "none"
}

// Tile is the fluid's tile; NoFluid has none.
func (f Fluid) Tile() (tile.Tile, bool) {
	switch f {
	case Water:
		return tile.Water, true
	case Lava:
		return tile.Lava, true
	}
	return tile.SolidRock, false
}

// Stem is a planner before differentiation.
type Stem struct {
	ID     int
	Kind   Kind
	Plates []outline.Baseplate

	Fluid      Fluid
	HasErosion bool

	Hops             int
	CrystalRichness  float64
	MonsterSpawnRate float64
}

func (s *Stem) Base() *Stem { return s }

func (s *Stem) String() string {
	return fmt.Sprintf("%s#%d", s.Kind, s.ID)
}

// PlateIDs lists the baseplate ids in order.
func (s *Stem) PlateIDs() []int {
	out := make([]int, len(s.Plates))
	for i, p := range s.Plates {
		out[i] = p.ID
	}
	return out
}

// Area sums the plate areas.
func (s *Stem) Area() int {
	a := 0
	for _, p := range s.Plates {
		a += p.Rect.Area()
	}
	return a
}

// Planner is either a *Stem or a Somatic.
type Planner interface {
	Base() *Stem
}

// Context is what every somatic stage needs. One per cavern.
type Context struct {
	Box    *dice.Box
	Params tuning.Params
	Log    *log.Logger

	Warnings []*fault.PlacementWarning
}

func (c *Context) Rng(kind dice.Kind, id int) *dice.Rng { return c.Box.Rng(kind, id) }

// Warn records and logs a non-fatal placement shortfall.
func (c *Context) Warn(w *fault.PlacementWarning) {
	c.Warnings = append(c.Warnings, w)
	if c.Log != nil {
		c.Log.Printf("seed 0x%08X: %v", c.Box.Seed(), w)
	}
}

// Somatic is a differentiated planner.
type Somatic interface {
	Planner
	Name() string

	Oyster() pearl.Oyster
	PearlRadius() int
	Baroqueness() float64
	Nucleus() []geom.Point
	Pearl() *pearl.Pearl

	ExpectedCrystals() int

	// Rough grows the pearl and lays its layers into the diorama.
	Rough(ctx *Context, d *diorama.Diorama) error
	// Fine places resources, entities and hazards.
	Fine(ctx *Context, d *diorama.Diorama) error
	Objectives() []diorama.Objective
	// Script returns a fragment, possibly empty, with x@N/y@N macros.
	Script(d *diorama.Diorama) string
	// States lists the lore states this planner contributes.
	States() []string

	setPearl(p *pearl.Pearl)
}

// somatic carries what every variant shares.
type somatic struct {
	*Stem
	pearl       *pearl.Pearl
	expected    int
	baroqueness float64
}

func newSomatic(ctx *Context, s *Stem) somatic {
	b := ctx.Params.CaveBaroqueness
	if s.Kind == Hall {
		b = ctx.Params.HallBaroqueness
	}
	return somatic{Stem: s, baroqueness: b}
}

func (s *somatic) Pearl() *pearl.Pearl             { return s.pearl }
func (s *somatic) setPearl(p *pearl.Pearl)         { s.pearl = p }
func (s *somatic) ExpectedCrystals() int           { return s.expected }
func (s *somatic) Baroqueness() float64            { return s.baroqueness }
func (s *somatic) Objectives() []diorama.Objective { return nil }
func (s *somatic) Script(*diorama.Diorama) string  { return "" }
func (s *somatic) States() []string                { return nil }

func (s *somatic) PearlRadius() int {
	if s.Kind == Hall {
		return 1
	}
	short := 0
	for i, p := range s.Plates {
		m := min(p.Rect.Width(), p.Rect.Height())
		if i == 0 || m < short {
			short = m
		}
	}
	return 2 + short/6
}

// Nucleus defaults to the plate centerline for halls and to the plate
// disks, joined by their centerline, for caves.
func (s *somatic) Nucleus() []geom.Point {
	if s.Kind == Hall {
		return s.centerline()
	}
	var out []geom.Point
	for _, p := range s.Plates {
		out = append(out, plateDisk(p.Rect)...)
	}
	return append(out, s.centerline()...)
}

func (s *somatic) centerline() []geom.Point {
	var out []geom.Point
	for i := 1; i < len(s.Plates); i++ {
		out = append(out, geom.PlotOrthogonal(s.Plates[i-1].Rect.CenterPoint(), s.Plates[i].Rect.CenterPoint())...)
	}
	if len(out) == 0 && len(s.Plates) > 0 {
		out = append(out, s.Plates[0].Rect.CenterPoint())
	}
	return out
}

// Center is the first plate's center tile.
func (s *somatic) Center() geom.Point { return s.Plates[0].Rect.CenterPoint() }

// plateDisk is the disk of radius min(w,h)/2 about the plate center,
// clipped to the plate.
func plateDisk(r geom.Rect) []geom.Point {
	cx, cy := r.Center()
	rad := float64(min(r.Width(), r.Height())) / 2
	var out []geom.Point
	r.Each(func(p geom.Point) {
		dx, dy := float64(p.X)+0.5-cx, float64(p.Y)+0.5-cy
		if dx*dx+dy*dy <= rad*rad {
			out = append(out, p)
		}
	})
	if len(out) == 0 {
		out = append(out, r.CenterPoint())
	}
	return out
}

// GrowPearl builds s's pearl out to its radius plus three layers.
func GrowPearl(ctx *Context, s Somatic) error {
	rng := ctx.Rng(dice.Pearl, s.Base().ID)
	p, err := pearl.Grow(s.Nucleus(), s.PearlRadius()+4, s.PearlRadius(), s.Baroqueness(), rng)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	s.setPearl(p)
	return nil
}

// LayTiles applies the fitted oyster to every pearl tile within the
// radius.
func LayTiles(d *diorama.Diorama, s Somatic) {
	layers := s.Oyster().Fit(s.PearlRadius() + 1)
	for _, t := range s.Pearl().Tiles() {
		if t.Layer >= len(layers) {
			continue
		}
		if to, ok := layers[t.Layer].Apply(d.Tile(t.Pos)); ok {
			d.SetTile(t.Pos, to)
		}
	}
}

// roughDefault grows and lays the pearl.
func roughDefault(ctx *Context, d *diorama.Diorama, s Somatic) error {
	if err := GrowPearl(ctx, s); err != nil {
		return err
	}
	LayTiles(d, s)
	return nil
}

var (
	_ Somatic = (*EmptyCave)(nil)
	_ Somatic = (*FloodedCave)(nil)
	_ Somatic = (*TreasureCave)(nil)
	_ Somatic = (*LostMinersCave)(nil)
	_ Somatic = (*EstablishedHQCave)(nil)
	_ Somatic = (*SimpleSpawnCave)(nil)
	_ Somatic = (*EmptyHall)(nil)
	_ Somatic = (*ThinHall)(nil)
)
