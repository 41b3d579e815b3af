package planner

import (
	"fmt"
	"math"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/pearl"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// EmptyCave has nothing special beyond its resources.
type EmptyCave struct {
	somatic
	seamFill int
}

func NewEmptyCave(ctx *Context, stem *Stem) *EmptyCave {
	c := &EmptyCave{somatic: newSomatic(ctx, stem)}
	rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
	c.expected = min(0, int(math.Floor(rng.Normal(15, 5))))
	c.seamFill = int(stem.CrystalRichness * 10)
	return c
}

func (c *EmptyCave) Name() string         { return "EmptyCave" }
func (c *EmptyCave) Oyster() pearl.Oyster { return caveOyster }

func (c *EmptyCave) ExpectedCrystals() int { return max(0, c.expected+c.seamFill) }

func (c *EmptyCave) Rough(ctx *Context, d *diorama.Diorama) error { return roughDefault(ctx, d, c) }

func (c *EmptyCave) Fine(ctx *Context, d *diorama.Diorama) error {
	placeCrystals(ctx, d, c, c.expected)
	wl := firstWallLayer(d, c.Pearl())
	placeWallCrystals(ctx, d, c, c.seamFill, wl, wl)
	placeOre(ctx, d, c)
	placeRechargeSeam(ctx, d, c)
	placeMonsters(ctx, d, c)
	fineHazards(ctx, d, c, 1)
	return nil
}

// FloodedCave is mostly fluid.
type FloodedCave struct {
	somatic
	shape FloodShape
	fluid tile.Tile
}

func NewFloodedCave(ctx *Context, stem *Stem, shape FloodShape) *FloodedCave {
	c := &FloodedCave{somatic: newSomatic(ctx, stem), shape: shape}
	c.fluid, _ = stem.Fluid.Tile()
	rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
	c.expected = max(0, int(stem.CrystalRichness*rng.UniformFloat(2, 5)))
	return c
}

func (c *FloodedCave) Name() string         { return "FloodedCave/" + c.shape.String() }
func (c *FloodedCave) Oyster() pearl.Oyster { return floodedOyster(c.shape, c.fluid) }

// Rough lays the oyster, then floods lake centerlines or lays a land
// bridge out of a peninsula.
func (c *FloodedCave) Rough(ctx *Context, d *diorama.Diorama) error {
	if err := roughDefault(ctx, d, c); err != nil {
		return err
	}
	switch c.shape {
	case Lake:
		for _, p := range c.centerline() {
			if !d.Tile(p).IsWall() {
				d.SetTile(p, c.fluid)
			}
		}
	case Peninsula:
		var shore geom.Point
		found := false
		for _, t := range c.Pearl().Tiles() {
			if t.Layer > 0 && d.Tile(t.Pos) == tile.Floor {
				shore, found = t.Pos, true
				break
			}
		}
		if found {
			for _, p := range geom.PlotOrthogonal(c.Center(), shore) {
				if d.Tile(p).IsFluid() {
					d.SetTile(p, tile.Floor)
				}
			}
		}
	}
	return nil
}

func (c *FloodedCave) Fine(ctx *Context, d *diorama.Diorama) error {
	placeCrystals(ctx, d, c, c.expected)
	placeOre(ctx, d, c)
	placeMonsters(ctx, d, c)
	fineHazards(ctx, d, c, 1)
	return nil
}

// TreasureCave hoards crystals around one plate center.
type TreasureCave struct {
	somatic
}

func NewTreasureCave(ctx *Context, stem *Stem) *TreasureCave {
	c := &TreasureCave{somatic: newSomatic(ctx, stem)}
	rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
	base := stem.CrystalRichness * float64(stem.Area())
	c.expected = max(0, int(math.Floor(base*rng.Normal(0.4, 0.1))))
	return c
}

func (c *TreasureCave) Name() string         { return "TreasureCave" }
func (c *TreasureCave) Oyster() pearl.Oyster { return treasureOyster }
func (c *TreasureCave) States() []string     { return []string{"treasure"} }

func (c *TreasureCave) Rough(ctx *Context, d *diorama.Diorama) error { return roughDefault(ctx, d, c) }

func (c *TreasureCave) Fine(ctx *Context, d *diorama.Diorama) error {
	rng := ctx.Rng(dice.PlaceCrystals, c.ID)
	plate := dice.Choice(rng, c.Plates)
	cx, cy := plate.Rect.Center()
	hoard := plate.Rect.CenterPoint()
	for i := 0; i < c.expected; i++ {
		x, y := rng.PointInCircle(2, cx, cy)
		p := geom.Floor(x, y)
		switch t := d.Tile(p); {
		case t.PassableByMiner():
		case t == tile.Dirt || t == tile.LooseRock || t == tile.HardRock:
		default:
			p = hoard
		}
		d.AddCrystals(p, 1)
		promote(d, d.Crystals, p, tile.CrystalSeam)
	}
	placeOre(ctx, d, c)
	placeMonsters(ctx, d, c)
	fineHazards(ctx, d, c, 1)
	return nil
}

// LostMinersCave hides miners the player has to find.
type LostMinersCave struct {
	somatic
	minerIDs []int
}

func NewLostMinersCave(ctx *Context, stem *Stem) *LostMinersCave {
	c := &LostMinersCave{somatic: newSomatic(ctx, stem)}
	rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
	c.expected = max(0, int(stem.CrystalRichness*rng.UniformFloat(2, 6)))
	return c
}

func (c *LostMinersCave) Name() string         { return "LostMinersCave" }
func (c *LostMinersCave) Oyster() pearl.Oyster { return caveOyster }

func (c *LostMinersCave) Rough(ctx *Context, d *diorama.Diorama) error {
	return roughDefault(ctx, d, c)
}

// Fine drops one to five miners around the nucleus center tile.
func (c *LostMinersCave) Fine(ctx *Context, d *diorama.Diorama) error {
	rng := ctx.Rng(dice.PlaceEntities, c.ID)
	n := int(math.Floor(rng.Beta(1, 2, 1, 5)))
	center := c.Center()
	if !d.Tile(center).PassableByMiner() {
		floors := floorTiles(d, c.Pearl(), 0)
		if len(floors) == 0 {
			ctx.Warn(&fault.PlacementWarning{Planner: c.ID, What: "lost miners", Wanted: n})
			return nil
		}
		center = floors[0]
	}
	for i := 0; i < n; i++ {
		m := diorama.Miner{
			ID:      d.NextMinerID(),
			X:       float64(center.X) + rng.UniformFloat(0.2, 0.8),
			Y:       float64(center.Y) + rng.UniformFloat(0.2, 0.8),
			Yaw:     float64(rng.UniformInt(0, 4) * 90),
			Loadout: []diorama.Loadout{diorama.LoadoutDrill, diorama.LoadoutShovel},
			Level:   1,
		}
		d.Miners = append(d.Miners, m)
		c.minerIDs = append(c.minerIDs, m.ID)
	}
	placeCrystals(ctx, d, c, c.expected)
	placeOre(ctx, d, c)
	fineHazards(ctx, d, c, 1)
	return nil
}

func (c *LostMinersCave) MinerCount() int { return len(c.minerIDs) }

func (c *LostMinersCave) Objectives() []diorama.Objective {
	out := make([]diorama.Objective, len(c.minerIDs))
	for i, id := range c.minerIDs {
		out[i] = diorama.FindMiner{MinerID: id}
	}
	return out
}

func (c *LostMinersCave) States() []string { return []string{"lost_miners"} }

// EstablishedHQCave is a base with buildings, either where the player
// starts or somewhere to be found. A ruin has lost part of it.
type EstablishedHQCave struct {
	somatic
	spawn bool
	ruin  bool
	hq    []diorama.Building
}

func NewEstablishedHQCave(ctx *Context, stem *Stem, spawn, ruin bool) *EstablishedHQCave {
	c := &EstablishedHQCave{somatic: newSomatic(ctx, stem), spawn: spawn, ruin: ruin}
	rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
	c.expected = max(0, int(stem.CrystalRichness*rng.UniformFloat(3, 6)))
	return c
}

func (c *EstablishedHQCave) Name() string {
	switch {
	case c.spawn && c.ruin:
		return "EstablishedHQCave/spawn ruin"
	case c.spawn:
		return "EstablishedHQCave/spawn"
	case c.ruin:
		return "EstablishedHQCave/lost ruin"
	}
	return "EstablishedHQCave/lost"
}

func (c *EstablishedHQCave) Oyster() pearl.Oyster { return hqOyster }
func (c *EstablishedHQCave) PearlRadius() int     { return max(3, c.somatic.PearlRadius()) }
func (c *EstablishedHQCave) IsSpawn() bool        { return c.spawn }
func (c *EstablishedHQCave) IsRuin() bool         { return c.ruin }

func (c *EstablishedHQCave) Rough(ctx *Context, d *diorama.Diorama) error {
	return roughDefault(ctx, d, c)
}

func (c *EstablishedHQCave) Fine(ctx *Context, d *diorama.Diorama) error {
	placed := placeBuildings(d, c.Pearl(), c.PearlRadius(), hqTemplate)
	if len(placed) < len(hqTemplate) {
		ctx.Warn(&fault.PlacementWarning{Planner: c.ID, What: "buildings", Placed: len(placed), Wanted: len(hqTemplate)})
	}
	if c.ruin {
		placed = c.ruinate(ctx, d, placed)
	}
	c.hq = placed
	if c.spawn {
		if len(placed) > 0 {
			if placed[0].Type == diorama.ToolStore {
				markEssential(d, &placed[0])
			}
			d.SetCamera(placed[0].Pos)
			d.AddOpenCave(placed[0].Pos)
		} else {
			d.SetCamera(c.Center())
			d.AddOpenCave(c.Center())
		}
	}
	placeCrystals(ctx, d, c, c.expected)
	placeOre(ctx, d, c)
	placeRechargeSeam(ctx, d, c)
	if !c.spawn {
		placeMonsters(ctx, d, c)
	}
	mult := 1.0
	if c.ruin {
		mult = 3
	}
	fineHazards(ctx, d, c, mult)
	return nil
}

// ruinate turns each foundation and each power path to rubble with a 55%
// chance. Buildings that lose their foundation are gone, except the spawn
// tool store.
func (c *EstablishedHQCave) ruinate(ctx *Context, d *diorama.Diorama, placed []diorama.Building) []diorama.Building {
	rng := ctx.Rng(dice.PlaceEntities, c.ID)
	rubble := func() tile.Tile { return tile.Rubble1 + tile.Tile(rng.UniformInt(0, 4)) }
	var kept []diorama.Building
	for i, b := range placed {
		if rng.Chance(0.55) {
			d.SetTile(b.PowerPathTile(), rubble())
		}
		if (!c.spawn || i > 0) && rng.Chance(0.55) {
			d.SetTile(b.Pos, rubble())
			continue
		}
		kept = append(kept, b)
	}
	survivors := map[geom.Point]bool{}
	for _, b := range kept {
		survivors[b.Pos] = true
	}
	all := d.Buildings[:0]
	for _, b := range d.Buildings {
		if !c.owns(placed, b) || survivors[b.Pos] {
			all = append(all, b)
		}
	}
	d.Buildings = all
	return kept
}

func (c *EstablishedHQCave) owns(placed []diorama.Building, b diorama.Building) bool {
	for _, p := range placed {
		if p.Pos == b.Pos {
			return true
		}
	}
	return false
}

func (c *EstablishedHQCave) Objectives() []diorama.Objective {
	if c.spawn {
		return nil
	}
	return []diorama.Objective{diorama.Variable{Condition: "FoundHQ>0", Description: "Find the lost Rock Raider HQ"}}
}

// Script pans to the lost base when it comes into view.
func (c *EstablishedHQCave) Script(d *diorama.Diorama) string {
	if c.spawn {
		return ""
	}
	p := c.Center()
	if len(c.hq) > 0 {
		p = c.hq[0].Pos
	}
	return fmt.Sprintf("int FoundHQ=0\nwhen(discovertile[y@%d,x@%d])[pan:y@%d,x@%d;FoundHQ=1]", p.Y, p.X, p.Y, p.X)
}

func (c *EstablishedHQCave) States() []string {
	switch {
	case c.spawn && c.ruin:
		return []string{"spawn_is_ruin"}
	case c.spawn:
		return []string{"spawn_is_hq"}
	}
	return []string{"find_hq"}
}

// SimpleSpawnCave is a plain starting cave with a tool store.
type SimpleSpawnCave struct {
	somatic
}

func NewSimpleSpawnCave(ctx *Context, stem *Stem) *SimpleSpawnCave {
	c := &SimpleSpawnCave{somatic: newSomatic(ctx, stem)}
	rng := ctx.Rng(dice.ExpectedCrystals, stem.ID)
	c.expected = max(3, int(math.Floor(rng.Normal(6, 1))))
	return c
}

func (c *SimpleSpawnCave) Name() string         { return "SimpleSpawnCave" }
func (c *SimpleSpawnCave) Oyster() pearl.Oyster { return spawnOyster }

func (c *SimpleSpawnCave) Rough(ctx *Context, d *diorama.Diorama) error {
	return roughDefault(ctx, d, c)
}

func (c *SimpleSpawnCave) Fine(ctx *Context, d *diorama.Diorama) error {
	placed := placeBuildings(d, c.Pearl(), c.PearlRadius(), []diorama.BuildingType{diorama.ToolStore})
	anchor := c.Center()
	if len(placed) == 0 {
		ctx.Warn(&fault.PlacementWarning{Planner: c.ID, What: "tool store", Wanted: 1})
	} else {
		markEssential(d, &placed[0])
		anchor = placed[0].Pos
	}
	d.SetCamera(anchor)
	d.AddOpenCave(anchor)
	placeCrystals(ctx, d, c, c.expected)
	placeOre(ctx, d, c)
	placeRechargeSeam(ctx, d, c)
	fineHazards(ctx, d, c, 1)
	return nil
}
