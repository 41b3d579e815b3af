package conquest

import (
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/planner"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

func rect(l, t, r, b int) geom.Rect { return geom.Rect{Left: l, Top: t, Right: r, Bottom: b} }

func TestMergeable(t *testing.T) {
	cases := []struct {
		a, b geom.Rect
		want bool
	}{
		{rect(0, 0, 4, 4), rect(4, 0, 8, 4), true},
		{rect(0, 0, 4, 4), rect(4, 3, 8, 7), false},
		{rect(0, 0, 4, 4), rect(1, 4, 5, 9), true},
		{rect(0, 0, 4, 4), rect(5, 0, 9, 4), false},
	}
	for _, c := range cases {
		if got := Mergeable(c.a, c.b); got != c.want {
			t.Fatalf("Mergeable(%v, %v) = %v", c.a, c.b, got)
		}
	}
}

func TestNegotiateOrdersHallsCavesThenBigCaves(t *testing.T) {
	o := &outline.Outlines{
		Plates: []outline.Baseplate{
			{ID: 0, Rect: rect(0, 0, 4, 4), Kind: outline.Special},
			{ID: 1, Rect: rect(4, 0, 8, 4), Kind: outline.Special},
			{ID: 2, Rect: rect(8, 0, 10, 4), Kind: outline.Hall},
			{ID: 3, Rect: rect(10, 0, 14, 4), Kind: outline.Special},
		},
		Paths: []outline.Path{
			{ID: 0, Plates: []int{0, 1}, Kind: outline.Spanning},
			{ID: 1, Plates: []int{1, 2, 3}, Kind: outline.Spanning},
		},
	}
	stems := Negotiate(o)
	if len(stems) != 3 {
		t.Fatalf("stems: %v", stems)
	}
	if stems[0].Kind != planner.Hall || len(stems[0].Plates) != 3 {
		t.Fatalf("first stem %v", stems[0])
	}
	if stems[1].Kind != planner.Cave || stems[1].PlateIDs()[0] != 3 {
		t.Fatalf("second stem %v", stems[1])
	}
	if stems[2].Kind != planner.Cave || len(stems[2].Plates) != 2 {
		t.Fatalf("big cave %v", stems[2])
	}
	for i, s := range stems {
		if s.ID != i {
			t.Fatalf("stem %d has id %d", i, s.ID)
		}
	}
	g := NewGraph(stems)
	if got := g.Intersecting(0); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("hall intersects %v", got)
	}
}

func pipeline(t *testing.T, seed uint32) (*Graph, *planner.Context) {
	t.Helper()
	box := dice.NewBox(seed)
	cfg := tuning.Defaults()
	o, err := outline.Partition(box, outline.PartitionOptions{
		BubbleCount:   cfg.BubbleCount,
		SpawnRadius:   cfg.BubbleSpawnRadius,
		MaxArea:       cfg.BubbleMaxArea,
		MaxIterations: cfg.PartitionMaxIterations,
	})
	if err != nil {
		t.Fatalf("seed %d: %v", seed, err)
	}
	p := cfg.Realize(box.Rng(dice.Init, 0))
	o.Discriminate(p.SpecialBaseplateCount)
	if err := o.Triangulate(); err != nil {
		t.Fatalf("seed %d: %v", seed, err)
	}
	if err := o.Span(); err != nil {
		t.Fatalf("seed %d: %v", seed, err)
	}
	o.Bore(outline.Spanning)
	o.Weave(box, p.WeaveChance)
	o.Bore(outline.Auxiliary)
	o.Cull()
	g := NewGraph(Negotiate(o))
	g.Flood(box, p)
	return g, &planner.Context{Box: box, Params: p}
}

func TestFloodOnlyErodesFromLava(t *testing.T) {
	for seed := uint32(0); seed < 6; seed++ {
		g, _ := pipeline(t, seed)
		lava := false
		for i := range g.Planners {
			s := g.stem(i)
			if s.Fluid == planner.Lava {
				lava = true
			}
			if s.HasErosion && s.Fluid == planner.Water {
				t.Fatalf("seed %d: water stem %d erodes", seed, i)
			}
		}
		if !lava {
			for i := range g.Planners {
				if g.stem(i).HasErosion {
					t.Fatalf("seed %d: erosion without lava", seed)
				}
			}
		}
	}
}

func TestDifferentiateReplacesEveryStem(t *testing.T) {
	for seed := uint32(0); seed < 6; seed++ {
		g, ctx := pipeline(t, seed)
		spawn, err := g.Spawn()
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		somatics, err := g.Differentiate(ctx)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		lostHQs := 0
		for i, s := range somatics {
			if s.Base().ID != i {
				t.Fatalf("seed %d: planner %d has id %d", seed, i, s.Base().ID)
			}
			if hq, ok := s.(*planner.EstablishedHQCave); ok && !hq.IsSpawn() {
				lostHQs++
				if hq.Base().Hops < minLostHQHops {
					t.Fatalf("seed %d: lost HQ only %d hops out", seed, hq.Base().Hops)
				}
			}
		}
		if lostHQs > 1 {
			t.Fatalf("seed %d: %d lost HQs", seed, lostHQs)
		}
		switch somatics[spawn].(type) {
		case *planner.SimpleSpawnCave, *planner.EstablishedHQCave:
		default:
			t.Fatalf("seed %d: spawn became %s", seed, somatics[spawn].Name())
		}
		if somatics[spawn].Base().Hops != 0 {
			t.Fatalf("seed %d: spawn hops %d", seed, somatics[spawn].Base().Hops)
		}
	}
}

func TestDifferentiateIsDeterministic(t *testing.T) {
	names := func() []string {
		g, ctx := pipeline(t, 42)
		somatics, err := g.Differentiate(ctx)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]string, len(somatics))
		for i, s := range somatics {
			out[i] = s.Name()
		}
		return out
	}
	a, b := names(), names()
	if len(a) != len(b) {
		t.Fatalf("lengths differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("planner %d: %s vs %s", i, a[i], b[i])
		}
	}
}
