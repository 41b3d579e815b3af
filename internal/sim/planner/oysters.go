package planner

import (
	"github.com/charredUtensil/hognose-sub000/internal/sim/pearl"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

func stratum(l pearl.Layer, width, shrink, grow float64) pearl.Stratum {
	return pearl.Stratum{Layer: l, Width: width, Shrink: shrink, Grow: grow}
}

var (
	caveOyster = pearl.Oyster{Name: "cave", Strata: []pearl.Stratum{
		stratum(pearl.LayerFloor, 2, 0, 1),
		stratum(pearl.LayerAtMostDirt, 0.5, 1, 0),
		stratum(pearl.LayerAtMostLoose, 1, 0.5, 0.5),
		stratum(pearl.LayerAtMostHard, 1, 0, 0),
	}}
	spawnOyster = pearl.Oyster{Name: "spawn", Strata: []pearl.Stratum{
		stratum(pearl.LayerFloor, 2, 0, 1),
		stratum(pearl.LayerAtMostDirt, 1, 0.5, 0.5),
		stratum(pearl.LayerAtMostLoose, 1, 0, 0),
	}}
	hqOyster = pearl.Oyster{Name: "hq", Strata: []pearl.Stratum{
		stratum(pearl.LayerFloor, 3, 0, 1),
		stratum(pearl.LayerAtMostLoose, 1, 0, 0),
		stratum(pearl.LayerAtMostHard, 1, 1, 0),
	}}
	treasureOyster = pearl.Oyster{Name: "treasure", Strata: []pearl.Stratum{
		stratum(pearl.LayerFloor, 1, 0, 1),
		stratum(pearl.LayerAtMostLoose, 1, 0.5, 0),
		stratum(pearl.LayerAtMostHard, 2, 1, 0.5),
	}}
	hallOyster = pearl.Oyster{Name: "hall", Strata: []pearl.Stratum{
		stratum(pearl.LayerFloor, 1, 0, 1),
		stratum(pearl.LayerAtMostHard, 1, 0, 0),
	}}
	thinHallOyster = pearl.Oyster{Name: "thin hall", Strata: []pearl.Stratum{
		stratum(pearl.LayerFloor, 1, 0, 0.5),
		stratum(pearl.LayerAtMostLoose, 1, 1, 0.5),
	}}
)

// Flooded cave shapes.
type FloodShape int

const (
	Lake FloodShape = iota
	Island
	Peninsula
)

func (s FloodShape) String() string {
	switch s {
	case Island:
		return "island"
	case Peninsula:
		return "peninsula"
	}
	return "lake"
}

func floodedOyster(shape FloodShape, fluid tile.Tile) pearl.Oyster {
	f := pearl.Fluid(fluid)
	name := shape.String()
	if fluid == tile.Lava {
		name = "lava " + name
	}
	switch shape {
	case Island:
		return pearl.Oyster{Name: name, Strata: []pearl.Stratum{
			stratum(pearl.LayerFloor, 1, 0, 0.5),
			stratum(f, 2, 0.5, 1),
			stratum(pearl.LayerFloor, 1, 1, 0),
			stratum(pearl.LayerAtMostHard, 1, 0, 0),
		}}
	case Peninsula:
		return pearl.Oyster{Name: name, Strata: []pearl.Stratum{
			stratum(f, 2, 0, 1),
			stratum(pearl.LayerFloor, 1, 0.5, 0.5),
			stratum(pearl.LayerAtMostLoose, 1, 0, 0),
		}}
	}
	return pearl.Oyster{Name: name, Strata: []pearl.Stratum{
		stratum(f, 2, 0, 1),
		stratum(pearl.LayerFloor, 0.5, 1, 0),
		stratum(pearl.LayerAtMostLoose, 1, 0, 0.5),
		stratum(pearl.LayerAtMostHard, 1, 0, 0),
	}}
}

func fluidHallOyster(fluid tile.Tile) pearl.Oyster {
	return pearl.Oyster{Name: "flooded hall", Strata: []pearl.Stratum{
		stratum(pearl.Fluid(fluid), 1, 0, 1),
		stratum(pearl.LayerAtMostHard, 1, 0, 0),
	}}
}
