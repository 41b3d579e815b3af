package geom

import (
	"math"
	"sort"

	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

type Vec struct {
	X, Y float64
}

func (a Vec) sub(b Vec) Vec { return Vec{X: a.X - b.X, Y: a.Y - b.Y} }

func cross(u, v Vec) float64 { return u.X*v.Y - u.Y*v.X }
func dot(u, v Vec) float64   { return u.X*v.X + u.Y*v.Y }

// Delaunay triangulates pts by divide and conquer and returns each
// undirected edge once as an index pair (i < j), sorted. Duplicate points
// keep only their first index.
func Delaunay(pts []Vec) ([][2]int, error) {
	order := make([]int, 0, len(pts))
	for i := range pts {
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := pts[order[a]], pts[order[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})
	uniq := order[:0]
	for _, i := range order {
		if len(uniq) > 0 && pts[uniq[len(uniq)-1]] == pts[i] {
			continue
		}
		uniq = append(uniq, i)
	}

	d := &triangulation{
		pts:    pts,
		adj:    make([]map[int]bool, len(pts)),
		budget: 64*len(pts)*len(pts) + 64,
	}
	for i := range d.adj {
		d.adj[i] = map[int]bool{}
	}
	if err := d.build(uniq); err != nil {
		return nil, err
	}

	var edges [][2]int
	for i := range d.adj {
		ns := make([]int, 0, len(d.adj[i]))
		for j := range d.adj[i] {
			if j > i {
				ns = append(ns, j)
			}
		}
		sort.Ints(ns)
		for _, j := range ns {
			edges = append(edges, [2]int{i, j})
		}
	}
	return edges, nil
}

type triangulation struct {
	pts    []Vec
	adj    []map[int]bool
	steps  int
	budget int
}

func (d *triangulation) tick() error {
	d.steps++
	if d.steps > d.budget {
		return fault.NotHalting("delaunay", d.budget)
	}
	return nil
}

func (d *triangulation) connect(a, b int) {
	d.adj[a][b] = true
	d.adj[b][a] = true
}

func (d *triangulation) disconnect(a, b int) {
	delete(d.adj[a], b)
	delete(d.adj[b], a)
}

func (d *triangulation) orient(a, b, c int) float64 {
	return cross(d.pts[b].sub(d.pts[a]), d.pts[c].sub(d.pts[a]))
}

// inside reports whether q lies strictly inside the circle through a, b, c.
func (d *triangulation) inside(a, b, c, q int) bool {
	pa, pb, pc, pq := d.pts[a], d.pts[b], d.pts[c], d.pts[q]
	ax, ay := pa.X-pq.X, pa.Y-pq.Y
	bx, by := pb.X-pq.X, pb.Y-pq.Y
	cx, cy := pc.X-pq.X, pc.Y-pq.Y
	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	o := d.orient(a, b, c)
	if o == 0 {
		return false
	}
	if o < 0 {
		det = -det
	}
	return det > 1e-9
}

func (d *triangulation) build(idx []int) error {
	switch n := len(idx); {
	case n < 2:
		return nil
	case n == 2:
		d.connect(idx[0], idx[1])
		return nil
	case n == 3:
		a, b, c := idx[0], idx[1], idx[2]
		d.connect(a, b)
		d.connect(b, c)
		if d.orient(a, b, c) != 0 {
			d.connect(a, c)
		}
		return nil
	}
	mid := len(idx) / 2
	left, right := idx[:mid], idx[mid:]
	if err := d.build(left); err != nil {
		return err
	}
	if err := d.build(right); err != nil {
		return err
	}
	return d.merge(left, right)
}

// between reports whether p sits strictly inside segment a-b, assuming
// the three are collinear.
func (d *triangulation) between(a, b, p int) bool {
	pa, pb, pp := d.pts[a], d.pts[b], d.pts[p]
	return dot(pp.sub(pa), pb.sub(pa)) > 0 && dot(pp.sub(pb), pa.sub(pb)) > 0
}

// lowerTangent finds l in left and r in right such that no point lies on
// the negative side of l→r.
func (d *triangulation) lowerTangent(left, right []int) (int, int, error) {
	l, r := left[len(left)-1], right[0]
	for changed := true; changed; {
		changed = false
		for _, p := range left {
			if p == l {
				continue
			}
			if o := d.orient(l, r, p); o < 0 || (o == 0 && d.between(l, r, p)) {
				l = p
				changed = true
			}
		}
		for _, p := range right {
			if p == r {
				continue
			}
			if o := d.orient(l, r, p); o < 0 || (o == 0 && d.between(l, r, p)) {
				r = p
				changed = true
			}
		}
		if err := d.tick(); err != nil {
			return 0, 0, err
		}
	}
	return l, r, nil
}

// candidates lists the neighbours of pivot above the base edge l→r,
// ordered by how far the edge pivot→other must rotate to reach them.
func (d *triangulation) candidates(pivot, other, l, r int, clockwise bool) []int {
	u := d.pts[other].sub(d.pts[pivot])
	type cand struct {
		id    int
		angle float64
	}
	var cs []cand
	for c := range d.adj[pivot] {
		if c == other || d.orient(l, r, c) <= 0 {
			continue
		}
		v := d.pts[c].sub(d.pts[pivot])
		cr := cross(u, v)
		if clockwise {
			cr = -cr
		}
		cs = append(cs, cand{id: c, angle: math.Atan2(cr, dot(u, v))})
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].angle != cs[j].angle {
			return cs[i].angle < cs[j].angle
		}
		return cs[i].id < cs[j].id
	})
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.id
	}
	return out
}

func (d *triangulation) merge(left, right []int) error {
	l, r, err := d.lowerTangent(left, right)
	if err != nil {
		return err
	}
	for {
		if err := d.tick(); err != nil {
			return err
		}
		d.connect(l, r)

		lc := d.candidates(l, r, l, r, false)
		for len(lc) >= 2 && d.inside(l, r, lc[0], lc[1]) {
			d.disconnect(l, lc[0])
			lc = lc[1:]
		}
		rc := d.candidates(r, l, l, r, true)
		for len(rc) >= 2 && d.inside(l, r, rc[0], rc[1]) {
			d.disconnect(r, rc[0])
			rc = rc[1:]
		}

		lValid, rValid := len(lc) > 0, len(rc) > 0
		switch {
		case !lValid && !rValid:
			return nil
		case !lValid || (rValid && d.inside(lc[0], l, r, rc[0])):
			r = rc[0]
		default:
			l = lc[0]
		}
	}
}
