package planner

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/pearl"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

var hqTemplate = []diorama.BuildingType{
	diorama.ToolStore,
	diorama.TeleportPad,
	diorama.PowerStation,
	diorama.SupportStation,
	diorama.UpgradeStation,
	diorama.GeologicalCenter,
	diorama.MiningLaser,
	diorama.MiningLaser,
	diorama.MiningLaser,
}

// centroid is the mean position of the pearl's nucleus.
func centroid(p *pearl.Pearl) (float64, float64) {
	layer := p.Layer(0)
	if len(layer) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, t := range layer {
		sx += float64(t.Pos.X) + 0.5
		sy += float64(t.Pos.Y) + 0.5
	}
	return sx / float64(len(layer)), sy / float64(len(layer))
}

// facings orders the four directions by how directly they point from pos
// toward (cx, cy). Ties keep clockwise-from-north order.
func facings(pos geom.Point, cx, cy float64) []geom.Dir {
	out := append([]geom.Dir(nil), geom.Orthogonal[:]...)
	vx, vy := cx-(float64(pos.X)+0.5), cy-(float64(pos.Y)+0.5)
	sort.SliceStable(out, func(i, j int) bool {
		return float64(out[i].X)*vx+float64(out[i].Y)*vy > float64(out[j].X)*vx+float64(out[j].Y)*vy
	})
	return out
}

// markEssential flags the recorded building at b's position so losing it
// fails the level.
func markEssential(d *diorama.Diorama, b *diorama.Building) {
	b.Essential = true
	for i := range d.Buildings {
		if d.Buildings[i].Pos == b.Pos {
			d.Buildings[i].Essential = true
		}
	}
}

// placeBuildings puts each queued building on the first free floor pair,
// scanning the pearl from the nucleus outward. It returns what it placed.
func placeBuildings(d *diorama.Diorama, p *pearl.Pearl, maxLayer int, queue []diorama.BuildingType) []diorama.Building {
	cx, cy := centroid(p)
	used := mapset.New[geom.Point]()
	free := func(q geom.Point) bool {
		return !used.Has(q) && d.Tile(q) == tile.Floor && p.Has(q)
	}
	var placed []diorama.Building
	for _, bt := range queue {
		found := false
		for _, t := range p.Tiles() {
			if t.Layer > maxLayer {
				break
			}
			if !free(t.Pos) {
				continue
			}
			for _, f := range facings(t.Pos, cx, cy) {
				if !free(t.Pos.Add(f)) {
					continue
				}
				b := diorama.Building{Type: bt, Pos: t.Pos, Facing: f}
				d.Place(b)
				used.Put(b.Pos)
				used.Put(b.PowerPathTile())
				placed = append(placed, b)
				found = true
				break
			}
			if found {
				break
			}
		}
	}
	return placed
}
