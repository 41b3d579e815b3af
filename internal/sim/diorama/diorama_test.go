package diorama

import (
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// room carves a w×h floor rectangle with a one-tile dirt rim.
func room(d *Diorama, r geom.Rect) {
	r.Grow(1).Each(func(p geom.Point) { d.SetTile(p, tile.Dirt) })
	r.Each(func(p geom.Point) { d.SetTile(p, tile.Floor) })
}

func TestPatchLeavesNoLonelyWalls(t *testing.T) {
	d := New(0)
	room(d, geom.Rect{Left: 0, Top: 0, Right: 9, Bottom: 9})
	d.SetTile(geom.Pt(4, 4), tile.LooseRock) // isolated pillar
	d.SetTile(geom.Pt(2, 2), tile.HardRock)  // pillar with one neighbour
	d.SetTile(geom.Pt(2, 3), tile.HardRock)
	if d.Patch() == 0 {
		t.Fatalf("expected patches")
	}
	area := d.TileBounds().Grow(1)
	area.Each(func(p geom.Point) {
		if !d.Tile(p).IsWall() {
			return
		}
		if n, _ := d.wallNeighbours(p); n < 2 {
			t.Fatalf("wall at %v has %d wall neighbours", p, n)
		}
	})
	if d.Tile(geom.Pt(4, 3)) != tile.Dirt || d.Tile(geom.Pt(5, 3)) != tile.Dirt || d.Tile(geom.Pt(5, 4)) != tile.Dirt {
		t.Fatalf("isolated pillar should grow north and east")
	}
}

func TestDiscoverStopsAtWalls(t *testing.T) {
	d := New(0)
	room(d, geom.Rect{Left: 0, Top: 0, Right: 4, Bottom: 4})
	room(d, geom.Rect{Left: 6, Top: 0, Right: 9, Bottom: 4})
	d.AddOpenCave(geom.Pt(1, 1))
	d.AddOpenCave(geom.Pt(1, 1))
	if len(d.OpenCaves()) != 1 {
		t.Fatalf("duplicate open cave kept")
	}
	d.Discover()
	if d.DiscoveredCount() != 16 {
		t.Fatalf("discovered %d tiles, want 16", d.DiscoveredCount())
	}
	if d.Discovered(geom.Pt(7, 1)) {
		t.Fatalf("second room should stay hidden")
	}
	// Closed under the 8-neighbourhood.
	d.DiscoveredSet().Each(func(p geom.Point) {
		for _, dir := range geom.Around {
			n := p.Add(dir)
			if d.Written(n) && !d.Tile(n).IsWall() && !d.Discovered(n) {
				t.Fatalf("%v is open and adjacent to discovered %v", n, p)
			}
		}
	})
}

func TestFenceIsSquareWithMargin(t *testing.T) {
	d := New(0)
	room(d, geom.Rect{Left: -3, Top: 2, Right: 7, Bottom: 5})
	b := d.Fence()
	if b.Width() != b.Height() {
		t.Fatalf("bounds not square: %v", b)
	}
	tb := d.TileBounds()
	if tb.Left-b.Left < 1 || tb.Top-b.Top < 1 || b.Right-tb.Right < 1 || b.Bottom-tb.Bottom < 1 {
		t.Fatalf("no margin: tiles %v bounds %v", tb, b)
	}
	if o := d.Offset(geom.Pt(b.Left, b.Top)); o != (geom.Point{}) {
		t.Fatalf("offset of corner: %v", o)
	}
}

func TestObjectiveKeys(t *testing.T) {
	cases := []struct {
		o    Objective
		want string
	}{
		{FindMiner{MinerID: 3}, "findminer:3"},
		{Resource{Crystals: 25}, "resources: 25,0,0"},
		{Variable{Condition: "FoundHQ>0", Description: "Find the HQ"}, "variable:FoundHQ>0/Find the HQ"},
	}
	for _, c := range cases {
		if c.o.Key() != c.want {
			t.Fatalf("%#v: got %q want %q", c.o, c.o.Key(), c.want)
		}
	}
}

func TestPlaceWritesFootprint(t *testing.T) {
	d := New(0)
	d.Place(Building{Type: ToolStore, Pos: geom.Pt(2, 2), Facing: geom.South})
	if d.Tile(geom.Pt(2, 2)) != tile.Foundation || d.Tile(geom.Pt(2, 3)) != tile.PowerPath {
		t.Fatalf("footprint not written")
	}
	if Yaw(geom.South) != 180 {
		t.Fatalf("yaw: %v", Yaw(geom.South))
	}
}
