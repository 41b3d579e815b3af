// Package diorama holds the world a cavern is built into. Every stage after
// conquest writes here; nothing else holds tiles.
package diorama

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

type Landslide struct {
	Period float64 // seconds
}

type Erosion struct {
	Cooldown     float64
	InitialDelay float64
}

var DefaultErosion = Erosion{Cooldown: 30, InitialDelay: 10}

type Diorama struct {
	Seed  uint32
	Biome string

	tiles    map[geom.Point]tile.Tile
	Crystals map[geom.Point]int
	Ore      map[geom.Point]int

	Landslides map[geom.Point]Landslide
	Erosions   map[geom.Point]Erosion

	discovered mapset.Set[geom.Point]
	openCaves  []geom.Point
	openSet    mapset.Set[geom.Point]

	Buildings  []Building
	Miners     []Miner
	Creatures  []Creature
	Objectives []Objective
	Script     []string

	LevelName       string
	Briefing        string
	BriefingSuccess string
	BriefingFailure string

	Camera    geom.Point
	CameraSet bool

	// SpiderRate, SpiderMin and SpiderMax drive ambient small spiders.
	SpiderRate int
	SpiderMin  int
	SpiderMax  int

	// Bounds is only meaningful after Fence.
	Bounds geom.Rect
}

func New(seed uint32) *Diorama {
	return &Diorama{
		Seed:       seed,
		tiles:      map[geom.Point]tile.Tile{},
		Crystals:   map[geom.Point]int{},
		Ore:        map[geom.Point]int{},
		Landslides: map[geom.Point]Landslide{},
		Erosions:   map[geom.Point]Erosion{},
		discovered: mapset.New[geom.Point](),
		openSet:    mapset.New[geom.Point](),
	}
}

// Tile returns the tile at p; unwritten cells are solid rock.
func (d *Diorama) Tile(p geom.Point) tile.Tile {
	if t, ok := d.tiles[p]; ok {
		return t
	}
	return tile.SolidRock
}

func (d *Diorama) Written(p geom.Point) bool {
	_, ok := d.tiles[p]
	return ok
}

func (d *Diorama) SetTile(p geom.Point, t tile.Tile) {
	d.tiles[p] = t
}

// CopyTiles returns a snapshot of every written cell.
func (d *Diorama) CopyTiles() map[geom.Point]tile.Tile {
	out := make(map[geom.Point]tile.Tile, len(d.tiles))
	for p, t := range d.tiles {
		out[p] = t
	}
	return out
}

// TileCount is the number of written cells.
func (d *Diorama) TileCount() int { return len(d.tiles) }

// Points lists written cells in row-major order.
func (d *Diorama) Points() []geom.Point {
	out := make([]geom.Point, 0, len(d.tiles))
	for p := range d.tiles {
		out = append(out, p)
	}
	SortPoints(out)
	return out
}

// SortPoints orders points row by row.
func SortPoints(pts []geom.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Y != pts[j].Y {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})
}

// TileBounds is the tight rectangle around every written cell.
func (d *Diorama) TileBounds() geom.Rect {
	var r geom.Rect
	first := true
	for p := range d.tiles {
		cell := geom.Rect{Left: p.X, Top: p.Y, Right: p.X + 1, Bottom: p.Y + 1}
		if first {
			r, first = cell, false
			continue
		}
		r = r.Union(cell)
	}
	return r
}

func (d *Diorama) AddCrystals(p geom.Point, n int) { d.Crystals[p] += n }
func (d *Diorama) AddOre(p geom.Point, n int)      { d.Ore[p] += n }

// CrystalTotal counts loose crystals plus one per crystal seam.
func (d *Diorama) CrystalTotal() int {
	total := 0
	for _, n := range d.Crystals {
		total += n
	}
	for _, t := range d.tiles {
		if t == tile.CrystalSeam {
			total++
		}
	}
	return total
}

func (d *Diorama) OreTotal() int {
	total := 0
	for _, n := range d.Ore {
		total += n
	}
	for _, t := range d.tiles {
		if t == tile.OreSeam {
			total++
		}
	}
	return total
}

// AddOpenCave flags p as a starting point for discovery. Repeats are
// ignored.
func (d *Diorama) AddOpenCave(p geom.Point) {
	if d.openSet.Has(p) {
		return
	}
	d.openSet.Put(p)
	d.openCaves = append(d.openCaves, p)
}

func (d *Diorama) OpenCaves() []geom.Point { return d.openCaves }

func (d *Diorama) Discovered(p geom.Point) bool { return d.discovered.Has(p) }

func (d *Diorama) DiscoveredCount() int { return d.discovered.Size() }

// SetCamera points the opening camera at p unless something already has.
func (d *Diorama) SetCamera(p geom.Point) {
	if d.CameraSet {
		return
	}
	d.Camera, d.CameraSet = p, true
}

// NextMinerID is the id the next placed miner should carry.
func (d *Diorama) NextMinerID() int { return len(d.Miners) }

func (d *Diorama) NextCreatureID() int { return len(d.Creatures) }
