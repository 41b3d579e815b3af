package outline

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/prim_kruskal"
	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
)

// Discriminate marks the n largest plates special. Equal areas keep id
// order.
func (o *Outlines) Discriminate(n int) {
	order := make([]int, len(o.Plates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return o.Plates[order[a]].Rect.Area() > o.Plates[order[b]].Rect.Area()
	})
	for i := 0; i < n && i < len(order); i++ {
		o.Plates[order[i]].Kind = Special
	}
}

// Specials lists the special plate ids in ascending order.
func (o *Outlines) Specials() []int {
	var out []int
	for _, p := range o.Plates {
		if p.Kind == Special {
			out = append(out, p.ID)
		}
	}
	return out
}

// Triangulate connects special plate centers with one ambiguous path per
// Delaunay edge.
func (o *Outlines) Triangulate() error {
	specials := o.Specials()
	pts := make([]geom.Vec, len(specials))
	for i, id := range specials {
		pts[i] = o.Plates[id].Center()
	}
	edges, err := geom.Delaunay(pts)
	if err != nil {
		return err
	}
	o.Paths = o.Paths[:0]
	for _, e := range edges {
		o.Paths = append(o.Paths, Path{
			ID:     len(o.Paths),
			Plates: []int{specials[e[0]], specials[e[1]]},
			Kind:   PathAmbiguous,
		})
	}
	return nil
}

// Span marks a minimum spanning tree of the triangulation as spanning.
// Edges are weighted by their rank in center-distance order, so equal
// lengths resolve by path id and the tree is unique.
func (o *Outlines) Span() error {
	if len(o.Paths) == 0 {
		return nil
	}
	order := make([]int, len(o.Paths))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return o.distance(o.Paths[order[a]]) < o.distance(o.Paths[order[b]])
	})

	g := core.NewGraph(core.WithWeighted())
	added := mapset.New[int]()
	vertex := func(plate int) (string, error) {
		id := strconv.Itoa(plate)
		if added.Has(plate) {
			return id, nil
		}
		added.Put(plate)
		return id, g.AddVertex(id)
	}
	byEdge := make(map[string]int, len(o.Paths))
	for rank, i := range order {
		p := o.Paths[i]
		from, err := vertex(p.Origin())
		if err != nil {
			return fmt.Errorf("span: %w", err)
		}
		to, err := vertex(p.Destination())
		if err != nil {
			return fmt.Errorf("span: %w", err)
		}
		eid, err := g.AddEdge(from, to, int64(rank))
		if err != nil {
			return fmt.Errorf("span: path %d: %w", p.ID, err)
		}
		byEdge[eid] = i
	}

	tree, _, err := prim_kruskal.Kruskal(g)
	if err != nil {
		return fmt.Errorf("span: %w", err)
	}
	for _, e := range tree {
		if i, ok := byEdge[e.ID]; ok {
			o.Paths[i].Kind = Spanning
		}
	}
	return nil
}

// Bore routes every path of the given kinds through the plates its ray
// crosses. Crossed plates join the path in encounter order and become
// halls; special plates are never inserted.
func (o *Outlines) Bore(kinds ...PathKind) {
	index := map[geom.Point]int{}
	for _, p := range o.Plates {
		id := p.ID
		p.Rect.Each(func(pt geom.Point) { index[pt] = id })
	}
	want := mapset.New[PathKind]()
	for _, k := range kinds {
		want.Put(k)
	}
	for i := range o.Paths {
		if want.Has(o.Paths[i].Kind) {
			o.bore(&o.Paths[i], index)
		}
	}
}

func (o *Outlines) bore(p *Path, index map[geom.Point]int) {
	origin, dest := p.Origin(), p.Destination()
	route := []int{origin}
	onRoute := mapset.New[int]()
	onRoute.Put(origin)
	onRoute.Put(dest)
	target := o.Plates[dest].Rect.CenterPoint()
	cur := origin
	for {
		added := -1
		for _, pt := range geom.Plot(o.Plates[cur].Rect.CenterPoint(), target) {
			id, ok := index[pt]
			if !ok || onRoute.Has(id) {
				continue
			}
			if o.Plates[id].Kind == Special {
				continue
			}
			added = id
			break
		}
		if added < 0 {
			break
		}
		route = append(route, added)
		onRoute.Put(added)
		o.Plates[added].Kind = Hall
		cur = added
	}
	p.Plates = append(route, dest)
}

// Weave promotes each ambiguous path to auxiliary with the given chance,
// drawing from that path's weave stream; the rest are excluded.
func (o *Outlines) Weave(box *dice.Box, chance float64) {
	for i := range o.Paths {
		p := &o.Paths[i]
		if p.Kind != PathAmbiguous {
			continue
		}
		if box.Rng(dice.Weave, p.ID).Chance(chance) {
			p.Kind = Auxiliary
		} else {
			p.Kind = PathExcluded
		}
	}
}

// Cull excludes every plate and path still ambiguous.
func (o *Outlines) Cull() {
	for i := range o.Plates {
		if o.Plates[i].Kind == Ambiguous {
			o.Plates[i].Kind = Excluded
		}
	}
	for i := range o.Paths {
		if o.Paths[i].Kind == PathAmbiguous {
			o.Paths[i].Kind = PathExcluded
		}
	}
}

// Live lists the spanning paths followed by the auxiliary ones.
func (o *Outlines) Live() []Path {
	var out []Path
	for _, k := range []PathKind{Spanning, Auxiliary} {
		for _, p := range o.Paths {
			if p.Kind == k {
				out = append(out, p)
			}
		}
	}
	return out
}
