package conquest

import (
	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/planner"
)

type factory func() planner.Somatic

type bid = dice.Bid[factory]

// lost HQs need some distance from spawn to be worth finding.
const minLostHQHops = 3

const maxLostMinerCaves = 2

// auction tracks what has been built so far so bidders can cap variants
// that only make sense once or twice per cavern. A cavern has at most one
// HQ, found at spawn or lost further out.
type auction struct {
	graph      *Graph
	lostMiners int
	lostHQs    int
	spawnHQ    bool
}

// run differentiates planner i. Spawn bidders apply when nothing around i
// has been differentiated yet.
func (a *auction) run(ctx *planner.Context, i int) planner.Somatic {
	stem := a.graph.stem(i)
	var bids []bid
	switch {
	case a.isFirst(i):
		bids = spawnBids(ctx, stem)
	case stem.Kind == planner.Cave:
		bids = a.caveBids(ctx, stem)
	default:
		bids = hallBids(ctx, stem)
	}
	f, ok := dice.WeightedChoice(ctx.Rng(dice.Differentiate, stem.ID), bids)
	if !ok {
		if stem.Kind == planner.Hall {
			return planner.NewEmptyHall(ctx, stem)
		}
		return planner.NewEmptyCave(ctx, stem)
	}
	s := f()
	switch v := s.(type) {
	case *planner.LostMinersCave:
		a.lostMiners++
	case *planner.EstablishedHQCave:
		if v.IsSpawn() {
			a.spawnHQ = true
		} else {
			a.lostHQs++
		}
	}
	return s
}

func (a *auction) isFirst(i int) bool {
	if a.graph.stem(i).Kind != planner.Cave {
		return false
	}
	for j, p := range a.graph.Planners {
		if j == i {
			continue
		}
		if _, isStem := p.(*planner.Stem); !isStem {
			return false
		}
	}
	return true
}

func spawnBids(ctx *planner.Context, stem *planner.Stem) []bid {
	return []bid{
		{Weight: 1, Item: func() planner.Somatic { return planner.NewSimpleSpawnCave(ctx, stem) }},
		{Weight: 1, Item: func() planner.Somatic { return planner.NewEstablishedHQCave(ctx, stem, true, false) }},
		{Weight: 0.5, Item: func() planner.Somatic { return planner.NewEstablishedHQCave(ctx, stem, true, true) }},
	}
}

func (a *auction) caveBids(ctx *planner.Context, stem *planner.Stem) []bid {
	if stem.Fluid != planner.NoFluid {
		flooded := func(shape planner.FloodShape) factory {
			return func() planner.Somatic { return planner.NewFloodedCave(ctx, stem, shape) }
		}
		return []bid{
			{Weight: 1, Item: flooded(planner.Lake)},
			{Weight: 0.5, Item: flooded(planner.Island)},
			{Weight: 0.5, Item: flooded(planner.Peninsula)},
		}
	}
	bids := []bid{
		{Weight: 1, Item: func() planner.Somatic { return planner.NewEmptyCave(ctx, stem) }},
		{Weight: 0.4 * stem.CrystalRichness, Item: func() planner.Somatic { return planner.NewTreasureCave(ctx, stem) }},
	}
	if a.lostMiners < maxLostMinerCaves {
		w := 1.0
		if a.lostMiners > 0 {
			w = 0.25
		}
		bids = append(bids, bid{Weight: w, Item: func() planner.Somatic { return planner.NewLostMinersCave(ctx, stem) }})
	}
	if !a.spawnHQ && a.lostHQs == 0 && stem.Hops >= minLostHQHops {
		bids = append(bids,
			bid{Weight: 0.25, Item: func() planner.Somatic { return planner.NewEstablishedHQCave(ctx, stem, false, false) }},
			bid{Weight: 0.25, Item: func() planner.Somatic { return planner.NewEstablishedHQCave(ctx, stem, false, true) }},
		)
	}
	return bids
}

func hallBids(ctx *planner.Context, stem *planner.Stem) []bid {
	if stem.Fluid != planner.NoFluid {
		return []bid{{Weight: 1, Item: func() planner.Somatic { return planner.NewEmptyHall(ctx, stem) }}}
	}
	return []bid{
		{Weight: 1, Item: func() planner.Somatic { return planner.NewEmptyHall(ctx, stem) }},
		{Weight: 0.5, Item: func() planner.Somatic { return planner.NewThinHall(ctx, stem, false) }},
		{Weight: 0.5 * stem.CrystalRichness, Item: func() planner.Somatic { return planner.NewThinHall(ctx, stem, true) }},
	}
}
