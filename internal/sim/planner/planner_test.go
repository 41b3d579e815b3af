package planner

import (
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

func testContext(seed uint32) *Context {
	p := tuning.Defaults().Realize(dice.NewBox(seed).Rng(dice.Init, 0))
	p.HasMonsters = true
	return &Context{Box: dice.NewBox(seed), Params: p}
}

func caveStem(id int, r geom.Rect) *Stem {
	return &Stem{
		ID:               id,
		Kind:             Cave,
		Plates:           []outline.Baseplate{{ID: id, Rect: r, Kind: outline.Special}},
		CrystalRichness:  1,
		MonsterSpawnRate: 1,
	}
}

func lay(t *testing.T, ctx *Context, d *diorama.Diorama, s Somatic) {
	t.Helper()
	if err := s.Rough(ctx, d); err != nil {
		t.Fatalf("%s rough: %v", s.Name(), err)
	}
	d.Patch()
	if err := s.Fine(ctx, d); err != nil {
		t.Fatalf("%s fine: %v", s.Name(), err)
	}
}

func TestEmptyCaveLaysFloorInsideWalls(t *testing.T) {
	ctx := testContext(1)
	d := diorama.New(1)
	c := NewEmptyCave(ctx, caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 10, Bottom: 8}))
	lay(t, ctx, d, c)
	if d.Tile(geom.Pt(5, 4)) != tile.Floor {
		t.Fatalf("center is %v", d.Tile(geom.Pt(5, 4)))
	}
	for _, p := range d.Points() {
		if !d.Tile(p).Valid() {
			t.Fatalf("invalid tile at %v", p)
		}
	}
	if c.ExpectedCrystals() < 0 {
		t.Fatalf("negative expectation")
	}
}

func TestSpawnHQPlacesToolStoreFirst(t *testing.T) {
	ctx := testContext(2)
	d := diorama.New(2)
	c := NewEstablishedHQCave(ctx, caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 14, Bottom: 12}), true, false)
	lay(t, ctx, d, c)
	if len(d.Buildings) == 0 || d.Buildings[0].Type != diorama.ToolStore {
		t.Fatalf("buildings: %+v", d.Buildings)
	}
	if !d.CameraSet || d.Camera != d.Buildings[0].Pos {
		t.Fatalf("camera not on the tool store")
	}
	if len(d.OpenCaves()) != 1 {
		t.Fatalf("spawn should open its cave")
	}
	for _, b := range d.Buildings {
		if d.Tile(b.Pos) != tile.Foundation || d.Tile(b.PowerPathTile()) != tile.PowerPath {
			t.Fatalf("footprint of %s not laid", b.Type.Name)
		}
	}
	if len(c.Objectives()) != 0 {
		t.Fatalf("spawn HQ has no objectives")
	}
}

func TestSpawnToolStoreIsEssential(t *testing.T) {
	ctx := testContext(2)
	hq := diorama.New(2)
	lay(t, ctx, hq, NewEstablishedHQCave(ctx, caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 14, Bottom: 12}), true, false))
	simple := diorama.New(2)
	lay(t, ctx, simple, NewSimpleSpawnCave(ctx, caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 12, Bottom: 12})))
	for name, d := range map[string]*diorama.Diorama{"hq": hq, "simple": simple} {
		essential := 0
		for _, b := range d.Buildings {
			if b.Essential {
				essential++
				if b.Type != diorama.ToolStore {
					t.Fatalf("%s: essential %s", name, b.Type.Name)
				}
			}
		}
		if essential != 1 {
			t.Fatalf("%s: %d essential buildings in %+v", name, essential, d.Buildings)
		}
	}
}

func TestLostHQHasObjectiveAndScript(t *testing.T) {
	ctx := testContext(3)
	d := diorama.New(3)
	c := NewEstablishedHQCave(ctx, caveStem(4, geom.Rect{Left: 0, Top: 0, Right: 14, Bottom: 12}), false, true)
	lay(t, ctx, d, c)
	if len(c.Objectives()) != 1 {
		t.Fatalf("objectives: %v", c.Objectives())
	}
	if s := c.Script(d); s == "" {
		t.Fatalf("lost HQ needs a script")
	}
}

func TestLostMinersEmitsOneObjectivePerMiner(t *testing.T) {
	ctx := testContext(4)
	d := diorama.New(4)
	c := NewLostMinersCave(ctx, caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 8, Bottom: 8}))
	lay(t, ctx, d, c)
	if n := len(d.Miners); n < 1 || n > 5 {
		t.Fatalf("miner count %d", n)
	}
	if len(c.Objectives()) != len(d.Miners) {
		t.Fatalf("objectives %d for %d miners", len(c.Objectives()), len(d.Miners))
	}
	if len(d.Creatures) != 0 {
		t.Fatalf("lost miner caves have no monsters")
	}
}

func TestThinHallPromotesSeams(t *testing.T) {
	ctx := testContext(5)
	d := diorama.New(5)
	stem := &Stem{
		ID:   1,
		Kind: Hall,
		Plates: []outline.Baseplate{
			{ID: 0, Rect: geom.Rect{Left: 0, Top: 0, Right: 4, Bottom: 4}},
			{ID: 1, Rect: geom.Rect{Left: 20, Top: 0, Right: 24, Bottom: 4}},
		},
		CrystalRichness: 3,
	}
	h := NewThinHall(ctx, stem, true)
	lay(t, ctx, d, h)
	for p, n := range d.Crystals {
		if n >= seamThreshold && d.Tile(p).IsWall() && d.Tile(p) != tile.CrystalSeam {
			t.Fatalf("wall %v holds %d crystals without becoming a seam", p, n)
		}
	}
}

func TestFloodedLavaCaveAvoidsIceMonsters(t *testing.T) {
	ctx := testContext(6)
	ctx.Params.Biome = "ice"
	d := diorama.New(6)
	stem := caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 12, Bottom: 12})
	stem.Fluid = Lava
	c := NewFloodedCave(ctx, stem, Lake)
	lay(t, ctx, d, c)
	if len(d.Creatures) != 0 {
		t.Fatalf("ice monsters placed in a lava cave")
	}
	lava := 0
	for _, p := range d.Points() {
		if d.Tile(p) == tile.Lava {
			lava++
		}
	}
	if lava == 0 {
		t.Fatalf("lake has no lava")
	}
}

func TestLandslidePeriodRespectsMinimum(t *testing.T) {
	ctx := testContext(7)
	ctx.Params.CaveLandslideChance = 1
	ctx.Params.LandslideFrequency = 1000
	d := diorama.New(7)
	c := NewEmptyCave(ctx, caveStem(0, geom.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}))
	lay(t, ctx, d, c)
	if len(d.Landslides) == 0 {
		t.Fatalf("expected landslides")
	}
	for p, ls := range d.Landslides {
		if ls.Period < ctx.Params.MinLandslidePeriod {
			t.Fatalf("landslide at %v has period %v", p, ls.Period)
		}
		if !d.Tile(p).IsWall() {
			t.Fatalf("landslide on open tile %v", p)
		}
	}
}
