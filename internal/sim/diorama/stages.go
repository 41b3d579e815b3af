package diorama

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

func (d *Diorama) wallNeighbours(p geom.Point) (int, geom.Dir) {
	n := 0
	var first geom.Dir
	for _, dir := range geom.Orthogonal {
		if d.Tile(p.Add(dir)).IsWall() {
			if n == 0 {
				first = dir
			}
			n++
		}
	}
	return n, first
}

// Patch reinforces walls that would collapse on load. A wall with at most
// one wall neighbour becomes the corner of a 2×2 wall block: the cell
// clockwise of its neighbour and the diagonal closing the square turn to
// dirt. With no neighbour the block grows north and east. One row-major
// pass over the written area is enough since it only ever adds walls.
func (d *Diorama) Patch() int {
	area := d.TileBounds().Grow(1)
	patched := 0
	area.Each(func(p geom.Point) {
		if !d.Tile(p).IsWall() {
			return
		}
		n, dir := d.wallNeighbours(p)
		if n >= 2 {
			return
		}
		if n == 0 {
			dir = geom.North
			d.reinforce(p.Add(dir))
		}
		cw := geom.RotCW(dir)
		d.reinforce(p.Add(cw))
		d.reinforce(p.Add(dir).Add(cw))
		patched++
	})
	return patched
}

func (d *Diorama) reinforce(p geom.Point) {
	if d.Tile(p).IsWall() {
		return
	}
	d.SetTile(p, tile.Dirt)
	delete(d.Erosions, p)
}

// Discover floods from every open cave through the eight-neighbourhood of
// non-wall tiles.
func (d *Diorama) Discover() {
	var queue []geom.Point
	for _, p := range d.openCaves {
		if d.Tile(p).IsWall() || d.discovered.Has(p) {
			continue
		}
		d.discovered.Put(p)
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, dir := range geom.Around {
			n := p.Add(dir)
			if d.discovered.Has(n) || !d.Written(n) || d.Tile(n).IsWall() {
				continue
			}
			d.discovered.Put(n)
			queue = append(queue, n)
		}
	}
}

// DiscoveredSet exposes the discovered cells for tests and drawing.
func (d *Diorama) DiscoveredSet() mapset.Set[geom.Point] { return d.discovered }

// Fence sets Bounds to a square holding every written tile with a margin
// of at least one. The short axis grows on both sides, the extra cell
// going to the far side.
func (d *Diorama) Fence() geom.Rect {
	r := d.TileBounds().Grow(1)
	if diff := r.Width() - r.Height(); diff > 0 {
		r.Top -= diff / 2
		r.Bottom += diff - diff/2
	} else if diff < 0 {
		diff = -diff
		r.Left -= diff / 2
		r.Right += diff - diff/2
	}
	d.Bounds = r
	return r
}

// Offset moves a diorama point into file coordinates.
func (d *Diorama) Offset(p geom.Point) geom.Point {
	return geom.Point{X: p.X - d.Bounds.Left, Y: p.Y - d.Bounds.Top}
}
