package planner

import (
	"math"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/pearl"
)

// EmptyHall is a plain tunnel, flooded if its stem carries a fluid.
type EmptyHall struct {
	somatic
}

func NewEmptyHall(ctx *Context, stem *Stem) *EmptyHall {
	return &EmptyHall{somatic: newSomatic(ctx, stem)}
}

func (h *EmptyHall) Name() string {
	if h.Fluid != NoFluid {
		return "EmptyHall/" + h.Fluid.String()
	}
	return "EmptyHall"
}

func (h *EmptyHall) Oyster() pearl.Oyster {
	if t, ok := h.Fluid.Tile(); ok {
		return fluidHallOyster(t)
	}
	return hallOyster
}

func (h *EmptyHall) PearlRadius() int { return 2 }

func (h *EmptyHall) Rough(ctx *Context, d *diorama.Diorama) error { return roughDefault(ctx, d, h) }

func (h *EmptyHall) Fine(ctx *Context, d *diorama.Diorama) error {
	placeOre(ctx, d, h)
	placeMonsters(ctx, d, h)
	fineHazards(ctx, d, h, 1)
	return nil
}

// ThinHall is a one-tile tunnel, optionally lined with crystals.
type ThinHall struct {
	somatic
	crystals bool
}

func NewThinHall(ctx *Context, stem *Stem, crystals bool) *ThinHall {
	h := &ThinHall{somatic: newSomatic(ctx, stem), crystals: crystals}
	if crystals {
		rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
		length := float64(len(h.centerline()))
		h.expected = max(1, int(math.Floor(stem.CrystalRichness*length*rng.UniformFloat(0.2, 0.5))))
	}
	return h
}

func (h *ThinHall) Name() string {
	if h.crystals {
		return "ThinHall/crystals"
	}
	return "ThinHall"
}

func (h *ThinHall) Oyster() pearl.Oyster { return thinHallOyster }

func (h *ThinHall) Rough(ctx *Context, d *diorama.Diorama) error { return roughDefault(ctx, d, h) }

// Fine packs the expected crystals into the tunnel walls, where three in one
// wall make a seam.
func (h *ThinHall) Fine(ctx *Context, d *diorama.Diorama) error {
	if h.crystals {
		wl := firstWallLayer(d, h.Pearl())
		placeWallCrystals(ctx, d, h, h.expected, wl, wl)
	}
	placeOre(ctx, d, h)
	fineHazards(ctx, d, h, 1)
	return nil
}
