// Package pearl grows a planner's footprint outward from a nucleus in
// concentric layers.
package pearl

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
)

type Tile struct {
	Pos   geom.Point
	Layer int
	Seq   int // overall growth order

	ring int // order within its layer
}

// Pearl is not safe for concurrent mutation.
type Pearl struct {
	tiles  []Tile
	index  map[geom.Point]int
	layers [][]int
}

func New() *Pearl {
	return &Pearl{index: map[geom.Point]int{}}
}

func (p *Pearl) mark(pos geom.Point, layer int) {
	for len(p.layers) <= layer {
		p.layers = append(p.layers, nil)
	}
	i := len(p.tiles)
	p.tiles = append(p.tiles, Tile{Pos: pos, Layer: layer, Seq: i, ring: len(p.layers[layer])})
	p.index[pos] = i
	p.layers[layer] = append(p.layers[layer], i)
}

func (p *Pearl) At(pos geom.Point) (Tile, bool) {
	i, ok := p.index[pos]
	if !ok {
		return Tile{}, false
	}
	return p.tiles[i], true
}

func (p *Pearl) Has(pos geom.Point) bool {
	_, ok := p.index[pos]
	return ok
}

// Tiles returns every tile in growth order. The slice is shared.
func (p *Pearl) Tiles() []Tile { return p.tiles }

func (p *Pearl) Layers() int { return len(p.layers) }

// Layer returns layer n in growth order.
func (p *Pearl) Layer(n int) []Tile {
	if n < 0 || n >= len(p.layers) {
		return nil
	}
	out := make([]Tile, len(p.layers[n]))
	for i, idx := range p.layers[n] {
		out[i] = p.tiles[idx]
	}
	return out
}

type cursor struct {
	pos geom.Point
	dir geom.Dir // tangent
}

type move func(c cursor) cursor

// Moves in trial order: right turn, right drift, straight, left drift,
// left turn.
var moves = [5]move{
	func(c cursor) cursor { d := geom.RotCW(c.dir); return cursor{c.pos.Add(d), d} },
	func(c cursor) cursor { return cursor{c.pos.Add(c.dir).Add(geom.RotCW(c.dir)), c.dir} },
	func(c cursor) cursor { return cursor{c.pos.Add(c.dir), c.dir} },
	func(c cursor) cursor { return cursor{c.pos.Add(c.dir).Add(geom.RotCCW(c.dir)), c.dir} },
	func(c cursor) cursor { d := geom.RotCCW(c.dir); return cursor{c.pos.Add(d), d} },
}

// Grow builds layers 0..layers-1. The nucleus is layer 0 in the given
// order; duplicates are ignored. Beyond layer 1 a cursor is dropped when
// it would wrap onto tiles this layer laid at least four steps ago. Beyond
// radius it is also dropped with chance baroqueness. Dropped cells are
// picked up by a later layer. Growth stops early at a layer that lays
// nothing.
func Grow(nucleus []geom.Point, layers, radius int, baroqueness float64, rng *dice.Rng) (*Pearl, error) {
	p := New()
	for _, pos := range nucleus {
		if !p.Has(pos) {
			p.mark(pos, 0)
		}
	}
	if len(p.tiles) == 0 {
		return p, nil
	}
	budget := 64 * (len(nucleus) + 16) * (layers + 1) * (layers + 1)
	steps := 0
	for layer := 1; layer < layers; layer++ {
		if len(p.layers) < layer {
			break
		}
		prev := p.layers[layer-1]
		touches := func(pos geom.Point) bool {
			for _, d := range geom.Orthogonal {
				if i, ok := p.index[pos.Add(d)]; ok && p.tiles[i].Layer == layer-1 {
					return true
				}
			}
			return false
		}
		var queue []cursor
		queued := mapset.New[geom.Point]()
		for _, idx := range prev {
			t := p.tiles[idx]
			for _, d := range geom.Orthogonal {
				n := t.Pos.Add(d)
				if p.Has(n) || queued.Has(n) {
					continue
				}
				queued.Put(n)
				queue = append(queue, cursor{pos: n, dir: geom.RotCW(d)})
			}
		}
		filled := 0
		for len(queue) > 0 {
			steps++
			if steps > budget {
				return nil, fault.NotHalting("pearl", budget)
			}
			c := queue[0]
			queue = queue[1:]
			if p.Has(c.pos) {
				continue
			}
			if layer > 1 && p.enclosed(c.pos, layer, filled) {
				continue
			}
			if layer > radius && rng.Chance(baroqueness) {
				continue
			}
			p.mark(c.pos, layer)
			filled++
			next := make([]cursor, 0, len(moves))
			for _, m := range moves {
				n := m(c)
				if p.Has(n.pos) || !touches(n.pos) {
					continue
				}
				next = append(next, n)
			}
			queue = append(next, queue...)
		}
	}
	return p, nil
}

// enclosed reports a same-layer orthogonal neighbour laid at least four
// tiles before the current fill count.
func (p *Pearl) enclosed(pos geom.Point, layer, filled int) bool {
	for _, d := range geom.Orthogonal {
		i, ok := p.index[pos.Add(d)]
		if !ok || p.tiles[i].Layer != layer {
			continue
		}
		if p.tiles[i].ring <= filled-4 {
			return true
		}
	}
	return false
}
