// Package geom has the integer grid primitives shared by every stage.
package geom

import "math"

type Point struct {
	X, Y int
}

func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dir is a unit step on the grid, including diagonals.
type Dir = Point

var (
	North = Dir{0, -1}
	East  = Dir{1, 0}
	South = Dir{0, 1}
	West  = Dir{-1, 0}
)

// Orthogonal lists the four neighbours clockwise from north.
var Orthogonal = [4]Dir{North, East, South, West}

// Around lists all eight neighbours clockwise from north.
var Around = [8]Dir{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// RotCW turns a direction a quarter clockwise (y grows downward).
func RotCW(d Dir) Dir { return Dir{-d.Y, d.X} }

// RotCCW turns a direction a quarter counterclockwise.
func RotCCW(d Dir) Dir { return Dir{d.Y, -d.X} }

// Rot45CW turns an eight-way direction an eighth clockwise.
func Rot45CW(d Dir) Dir {
	for i, a := range Around {
		if a == d {
			return Around[(i+1)%8]
		}
	}
	return d
}

// Rot45CCW turns an eight-way direction an eighth counterclockwise.
func Rot45CCW(d Dir) Dir {
	for i, a := range Around {
		if a == d {
			return Around[(i+7)%8]
		}
	}
	return d
}

// Rect is half-open: it covers Left <= x < Right, Top <= y < Bottom.
type Rect struct {
	Left, Top, Right, Bottom int
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }
func (r Rect) Area() int   { return r.Width() * r.Height() }

func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Center is the real-valued midpoint.
func (r Rect) Center() (float64, float64) {
	return float64(r.Left+r.Right) / 2, float64(r.Top+r.Bottom) / 2
}

// CenterPoint is the tile holding the midpoint.
func (r Rect) CenterPoint() Point {
	x, y := r.Center()
	return Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// Overlaps reports interior overlap; touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Grow expands every edge by n.
func (r Rect) Grow(n int) Rect {
	return Rect{Left: r.Left - n, Top: r.Top - n, Right: r.Right + n, Bottom: r.Bottom + n}
}

// Union is the smallest rect holding both; an empty receiver is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Each visits every cell row by row.
func (r Rect) Each(fn func(p Point)) {
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			fn(Point{X: x, Y: y})
		}
	}
}

// Plot rasterizes the segment a-b with Bresenham's algorithm, both ends
// included.
func Plot(a, b Point) []Point {
	dx := AbsInt(b.X - a.X)
	dy := -AbsInt(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	out := make([]Point, 0, max(dx, -dy)+1)
	err := dx + dy
	x, y := a.X, a.Y
	for {
		out = append(out, Point{X: x, Y: y})
		if x == b.X && y == b.Y {
			return out
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// PlotOrthogonal rasterizes a-b so that consecutive points share an edge.
func PlotOrthogonal(a, b Point) []Point {
	pts := Plot(a, b)
	out := make([]Point, 0, len(pts)*2)
	for i, p := range pts {
		if i > 0 {
			prev := pts[i-1]
			if prev.X != p.X && prev.Y != p.Y {
				out = append(out, Point{X: p.X, Y: prev.Y})
			}
		}
		out = append(out, p)
	}
	return out
}

// Floor converts real coordinates to the tile that holds them.
func Floor(x, y float64) Point {
	return Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
