// Package conquest turns outline paths and plates into planners: it
// negotiates stems, floods them with fluids and erosion, then walks out
// from spawn differentiating every stem through a bid auction.
package conquest

import (
	"errors"
	"math"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/planner"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

var ErrNoCaves = errors.New("no caves to spawn in")

// Flood stream ids.
const (
	floodWater = iota
	floodLava
	floodErosion
)

// Mergeable reports whether two plates share a side along more than half
// of the shorter plate's side.
func Mergeable(a, b geom.Rect) bool {
	if a.Right == b.Left || b.Right == a.Left {
		overlap := min(a.Bottom, b.Bottom) - max(a.Top, b.Top)
		return float64(overlap) > float64(min(a.Height(), b.Height()))/2
	}
	if a.Bottom == b.Top || b.Bottom == a.Top {
		overlap := min(a.Right, b.Right) - max(a.Left, b.Left)
		return float64(overlap) > float64(min(a.Width(), b.Width()))/2
	}
	return false
}

// Negotiate builds stems: a hall per live path, except two-plate paths
// whose plates merge into one big cave; then a cave per remaining special
// plate; then the big caves.
func Negotiate(o *outline.Outlines) []*planner.Stem {
	var stems []*planner.Stem
	add := func(kind planner.Kind, ids []int) {
		plates := make([]outline.Baseplate, len(ids))
		for i, id := range ids {
			plates[i] = o.Plates[id]
		}
		stems = append(stems, &planner.Stem{ID: len(stems), Kind: kind, Plates: plates})
	}
	reserved := mapset.New[int]()
	var big [][]int
	for _, p := range o.Live() {
		if len(p.Plates) == 2 {
			a, b := p.Origin(), p.Destination()
			if !reserved.Has(a) && !reserved.Has(b) && Mergeable(o.Plates[a].Rect, o.Plates[b].Rect) {
				reserved.Put(a)
				reserved.Put(b)
				big = append(big, []int{a, b})
				continue
			}
		}
		add(planner.Hall, p.Plates)
	}
	for _, id := range o.Specials() {
		if !reserved.Has(id) {
			add(planner.Cave, []int{id})
		}
	}
	for _, ids := range big {
		add(planner.Cave, ids)
	}
	return stems
}

// Graph indexes which planners share plates.
type Graph struct {
	Planners []planner.Planner
	byPlate  map[int][]int
}

func NewGraph(stems []*planner.Stem) *Graph {
	g := &Graph{Planners: make([]planner.Planner, len(stems)), byPlate: map[int][]int{}}
	for i, s := range stems {
		g.Planners[i] = s
		for _, id := range s.PlateIDs() {
			g.byPlate[id] = append(g.byPlate[id], i)
		}
	}
	return g
}

// Intersecting lists, in id order, the other planners sharing a plate
// with planner i.
func (g *Graph) Intersecting(i int) []int {
	seen := mapset.New[int]()
	var out []int
	for _, id := range g.Planners[i].Base().PlateIDs() {
		for _, j := range g.byPlate[id] {
			if j == i || seen.Has(j) {
				continue
			}
			seen.Put(j)
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

func (g *Graph) stem(i int) *planner.Stem { return g.Planners[i].Base() }

// Flood spreads water then lava through the graph, then erosion out from
// the lava.
func (g *Graph) Flood(box *dice.Box, p tuning.Params) {
	g.floodFluid(box.Rng(dice.Flood, floodWater), planner.Water, p.WaterCoverage, p.WaterSpread)
	g.floodFluid(box.Rng(dice.Flood, floodLava), planner.Lava, p.LavaCoverage, p.LavaSpread)
	g.erode(box.Rng(dice.Flood, floodErosion), p.CaveErodeChance, p.HallErodeChance)
}

func (g *Graph) floodFluid(rng *dice.Rng, fluid planner.Fluid, coverage tuning.Range, spread float64) {
	count := int(math.Floor(rng.Beta(1.4, 1.4, coverage.Min, coverage.Max) * float64(len(g.Planners))))
	var stack []int
	stacked := mapset.New[int]()
	for assigned := 0; assigned < count; {
		var cur int
		if len(stack) > 0 {
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		} else {
			var dry []int
			for i := range g.Planners {
				if s := g.stem(i); s.Kind == planner.Cave && s.Fluid == planner.NoFluid {
					dry = append(dry, i)
				}
			}
			if len(dry) == 0 {
				return
			}
			cur = dice.Choice(rng, dry)
		}
		s := g.stem(cur)
		if s.Fluid != planner.NoFluid {
			continue
		}
		s.Fluid = fluid
		assigned++
		for _, j := range g.Intersecting(cur) {
			n := g.stem(j)
			if n.Kind == s.Kind || n.Fluid != planner.NoFluid || stacked.Has(j) {
				continue
			}
			if rng.Chance(spread) {
				stack = append(stack, j)
				stacked.Put(j)
			}
		}
	}
}

func (g *Graph) erode(rng *dice.Rng, caveChance, hallChance float64) {
	var queue []int
	queued := mapset.New[int]()
	for i := range g.Planners {
		if g.stem(i).Fluid == planner.Lava {
			queue = append(queue, i)
			queued.Put(i)
		}
	}
	for len(queue) > 0 {
		k := rng.UniformInt(0, len(queue))
		cur := queue[k]
		queue = append(queue[:k], queue[k+1:]...)
		s := g.stem(cur)
		chance := caveChance
		if s.Kind == planner.Hall {
			chance = hallChance
		}
		if !rng.Chance(chance) {
			continue
		}
		s.HasErosion = true
		for _, j := range g.Intersecting(cur) {
			n := g.stem(j)
			if n.Kind == s.Kind || n.Fluid == planner.Water || n.HasErosion || queued.Has(j) {
				continue
			}
			queue = append(queue, j)
			queued.Put(j)
		}
	}
}

// Spawn is the lowest id cave.
func (g *Graph) Spawn() (int, error) {
	for i := range g.Planners {
		if g.stem(i).Kind == planner.Cave {
			return i, nil
		}
	}
	return 0, ErrNoCaves
}

// Differentiate replaces every stem with a somatic planner, breadth first
// from spawn. Stems the walk never reaches are handled afterwards in id
// order.
func (g *Graph) Differentiate(ctx *planner.Context) ([]planner.Somatic, error) {
	spawn, err := g.Spawn()
	if err != nil {
		return nil, err
	}
	total := len(g.Planners)
	a := &auction{graph: g}
	queue := []int{spawn}
	queued := mapset.New[int]()
	queued.Put(spawn)
	done := 0
	visit := func(cur int) {
		s := g.stem(cur)
		s.CrystalRichness = ctx.Params.CrystalRichness.At(s.Hops, done, total)
		s.MonsterSpawnRate = ctx.Params.MonsterSpawnRate.At(s.Hops, done, total)
		g.Planners[cur] = a.run(ctx, cur)
		done++
		for _, j := range g.Intersecting(cur) {
			n, isStem := g.Planners[j].(*planner.Stem)
			if !isStem || n.Kind != s.Kind.Opposite() || queued.Has(j) {
				continue
			}
			n.Hops = s.Hops + 1
			queue = append(queue, j)
			queued.Put(j)
		}
	}
	for {
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			visit(cur)
		}
		next := -1
		for i, p := range g.Planners {
			if _, isStem := p.(*planner.Stem); isStem {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}
		queue = append(queue, next)
		queued.Put(next)
	}
	out := make([]planner.Somatic, total)
	for i, p := range g.Planners {
		out[i] = p.(planner.Somatic)
	}
	return out, nil
}
