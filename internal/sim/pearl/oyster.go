package pearl

import (
	"math"

	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// Sources are the tiles a Layer knows how to replace. Anything else (seams,
// buildings, rubble) is left alone by the rough pass.
var Sources = [7]tile.Tile{
	tile.Floor, tile.Dirt, tile.LooseRock, tile.HardRock, tile.SolidRock, tile.Water, tile.Lava,
}

func sourceIndex(t tile.Tile) int {
	for i, s := range Sources {
		if s == t {
			return i
		}
	}
	return -1
}

type replacement struct {
	to  tile.Tile
	set bool
}

// Layer maps each source tile to an optional replacement.
type Layer struct {
	Name    string
	replace [len(Sources)]replacement
}

// NewLayer builds a layer from source→replacement pairs.
func NewLayer(name string, pairs map[tile.Tile]tile.Tile) Layer {
	l := Layer{Name: name}
	for from, to := range pairs {
		if i := sourceIndex(from); i >= 0 {
			l.replace[i] = replacement{to: to, set: true}
		}
	}
	return l
}

// Apply reports the replacement for t, if any.
func (l Layer) Apply(t tile.Tile) (tile.Tile, bool) {
	i := sourceIndex(t)
	if i < 0 || !l.replace[i].set {
		return t, false
	}
	return l.replace[i].to, true
}

var (
	LayerFloor = NewLayer("floor", map[tile.Tile]tile.Tile{
		tile.Floor:     tile.Floor,
		tile.Dirt:      tile.Floor,
		tile.LooseRock: tile.Floor,
		tile.HardRock:  tile.Floor,
		tile.SolidRock: tile.Floor,
	})
	LayerAtMostDirt = NewLayer("at most dirt", map[tile.Tile]tile.Tile{
		tile.LooseRock: tile.Dirt,
		tile.HardRock:  tile.Dirt,
		tile.SolidRock: tile.Dirt,
	})
	LayerAtMostLoose = NewLayer("at most loose", map[tile.Tile]tile.Tile{
		tile.HardRock:  tile.LooseRock,
		tile.SolidRock: tile.LooseRock,
	})
	LayerAtMostHard = NewLayer("at most hard", map[tile.Tile]tile.Tile{
		tile.SolidRock: tile.HardRock,
	})
	LayerWater = NewLayer("water", map[tile.Tile]tile.Tile{
		tile.Floor:     tile.Water,
		tile.Dirt:      tile.Water,
		tile.LooseRock: tile.Water,
		tile.HardRock:  tile.Water,
		tile.SolidRock: tile.Water,
	})
	LayerLava = NewLayer("lava", map[tile.Tile]tile.Tile{
		tile.Floor:     tile.Lava,
		tile.Dirt:      tile.Lava,
		tile.LooseRock: tile.Lava,
		tile.HardRock:  tile.Lava,
		tile.SolidRock: tile.Lava,
	})
)

// Fluid returns the layer that floods with f.
func Fluid(f tile.Tile) Layer {
	if f == tile.Lava {
		return LayerLava
	}
	return LayerWater
}

// Stratum is one oyster entry.
type Stratum struct {
	Layer  Layer
	Width  float64
	Shrink float64
	Grow   float64
}

// Oyster is a template of layers from the nucleus outward.
type Oyster struct {
	Name   string
	Strata []Stratum
}

// Width is the natural total width.
func (o Oyster) Width() float64 {
	var w float64
	for _, s := range o.Strata {
		w += s.Width
	}
	return w
}

// Fit returns one Layer per pearl layer for a pearl that should cover
// target layers. Strata shrink or grow in proportion to their weights;
// cumulative widths are rounded and strata that round to nothing vanish.
func (o Oyster) Fit(target int) []Layer {
	w := o.Width()
	r := float64(target)
	widths := make([]float64, len(o.Strata))
	var shrinkSum, growSum float64
	for i, s := range o.Strata {
		widths[i] = s.Width
		shrinkSum += s.Width * s.Shrink
		growSum += s.Grow
	}
	switch {
	case r < w && shrinkSum > 0:
		sf := (w - r) / shrinkSum
		for i, s := range o.Strata {
			widths[i] = s.Width * math.Max(0, 1-s.Shrink*sf)
		}
	case r > w && growSum > 0:
		gf := (r - w) / growSum
		for i, s := range o.Strata {
			widths[i] = s.Width + s.Grow*gf
		}
	}
	var out []Layer
	var cum float64
	prev := 0
	for i, s := range o.Strata {
		cum += widths[i]
		end := int(math.Round(cum))
		for n := prev; n < end; n++ {
			out = append(out, s.Layer)
		}
		if end > prev {
			prev = end
		}
	}
	return out
}
