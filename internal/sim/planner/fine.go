package planner

import (
	"math"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/pearl"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// seamThreshold is how many crystals (or ore) a wall holds before it turns
// into a seam.
const seamThreshold = 3

// floorTiles lists the pearl's tiles up to maxLayer that are passable in
// d, in growth order.
func floorTiles(d *diorama.Diorama, p *pearl.Pearl, maxLayer int) []geom.Point {
	var out []geom.Point
	for _, t := range p.Tiles() {
		if t.Layer <= maxLayer && d.Tile(t.Pos).PassableByMiner() {
			out = append(out, t.Pos)
		}
	}
	return out
}

// wallTiles lists the pearl's drillable rock walls in layers lo..hi, in
// growth order.
func wallTiles(d *diorama.Diorama, p *pearl.Pearl, lo, hi int) []geom.Point {
	var out []geom.Point
	for _, t := range p.Tiles() {
		if t.Layer < lo || t.Layer > hi {
			continue
		}
		switch d.Tile(t.Pos) {
		case tile.Dirt, tile.LooseRock, tile.HardRock:
			out = append(out, t.Pos)
		}
	}
	return out
}

// firstWallLayer is the innermost layer holding any wall.
func firstWallLayer(d *diorama.Diorama, p *pearl.Pearl) int {
	for l := 0; l < p.Layers(); l++ {
		for _, t := range p.Layer(l) {
			if d.Tile(t.Pos).IsWall() {
				return l
			}
		}
	}
	return p.Layers() - 1
}

// promote turns a rock wall holding at least seamThreshold of a resource
// into the given seam, keeping the excess loose.
func promote(d *diorama.Diorama, counts map[geom.Point]int, p geom.Point, seam tile.Tile) {
	if counts[p] < seamThreshold {
		return
	}
	switch d.Tile(p) {
	case tile.Dirt, tile.LooseRock, tile.HardRock, tile.SolidRock:
	default:
		return
	}
	d.SetTile(p, seam)
	counts[p] -= seamThreshold
	if counts[p] == 0 {
		delete(counts, p)
	}
}

// scatter drops n units one at a time onto uniformly chosen candidates,
// promoting walls to seams as they fill.
func scatter(rng *dice.Rng, d *diorama.Diorama, candidates []geom.Point, n int, counts map[geom.Point]int, seam tile.Tile) int {
	if len(candidates) == 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		p := dice.Choice(rng, candidates)
		counts[p]++
		promote(d, counts, p, seam)
	}
	return n
}

// placeCrystals puts n crystals on the floors and walls of s's pearl.
func placeCrystals(ctx *Context, d *diorama.Diorama, s Somatic, n int) {
	if n <= 0 {
		return
	}
	rng := ctx.Rng(dice.PlaceCrystals, s.Base().ID)
	p := s.Pearl()
	cand := floorTiles(d, p, s.PearlRadius())
	wl := firstWallLayer(d, p)
	cand = append(cand, wallTiles(d, p, wl, wl+1)...)
	if scatter(rng, d, cand, n, d.Crystals, tile.CrystalSeam) < n {
		ctx.Warn(&fault.PlacementWarning{Planner: s.Base().ID, What: "crystals", Placed: 0, Wanted: n})
	}
}

// placeWallCrystals puts n crystals only into the walls of the given
// layer band.
func placeWallCrystals(ctx *Context, d *diorama.Diorama, s Somatic, n, lo, hi int) {
	if n <= 0 {
		return
	}
	rng := ctx.Rng(dice.PlaceCrystals, s.Base().ID)
	scatter(rng, d, wallTiles(d, s.Pearl(), lo, hi), n, d.Crystals, tile.CrystalSeam)
}

// placeOre scatters ore into the walls around the pearl.
func placeOre(ctx *Context, d *diorama.Diorama, s Somatic) {
	n := int(ctx.Params.OreRichness * math.Sqrt(float64(s.Base().Area())))
	if n <= 0 {
		return
	}
	rng := ctx.Rng(dice.PlaceOre, s.Base().ID)
	wl := firstWallLayer(d, s.Pearl())
	scatter(rng, d, wallTiles(d, s.Pearl(), wl, wl+2), n, d.Ore, tile.OreSeam)
}

// placeRechargeSeam turns one wall in the first wall layer into a recharge
// seam with the configured chance.
func placeRechargeSeam(ctx *Context, d *diorama.Diorama, s Somatic) {
	rng := ctx.Rng(dice.PlaceRechargeSeam, s.Base().ID)
	if !rng.Chance(ctx.Params.RechargeSeamChance) {
		return
	}
	wl := firstWallLayer(d, s.Pearl())
	walls := wallTiles(d, s.Pearl(), wl, wl)
	if len(walls) == 0 {
		return
	}
	d.SetTile(dice.Choice(rng, walls), tile.RechargeSeam)
}

// placeLandslides schedules landslides on a random share of the pearl's
// rock walls, with a shared period scaled by how many there are.
func placeLandslides(ctx *Context, d *diorama.Diorama, s Somatic, chance, freq float64) {
	rng := ctx.Rng(dice.PlaceLandslides, s.Base().ID)
	if !rng.Chance(chance) || freq <= 0 {
		return
	}
	coverage := rng.UniformFloat(0.2, 0.8)
	var picked []geom.Point
	for _, t := range s.Pearl().Tiles() {
		switch d.Tile(t.Pos) {
		case tile.Dirt, tile.LooseRock, tile.HardRock:
		default:
			continue
		}
		if _, scheduled := d.Landslides[t.Pos]; scheduled {
			continue
		}
		if rng.Chance(coverage) {
			picked = append(picked, t.Pos)
		}
	}
	if len(picked) == 0 {
		return
	}
	period := math.Max(float64(len(picked))*60/freq, ctx.Params.MinLandslidePeriod)
	for _, p := range picked {
		d.Landslides[p] = diorama.Landslide{Period: period}
	}
}

// fineErosion marks every passable pearl tile as eroding.
func fineErosion(d *diorama.Diorama, s Somatic) {
	if !s.Base().HasErosion {
		return
	}
	for _, t := range s.Pearl().Tiles() {
		if d.Tile(t.Pos).PassableByMiner() {
			d.Erosions[t.Pos] = diorama.DefaultErosion
		}
	}
}

// placeMonsters puts sleeping monsters on the pearl's floor. Monsters that
// clash with the planner's fluid are never placed.
func placeMonsters(ctx *Context, d *diorama.Diorama, s Somatic) {
	if !ctx.Params.HasMonsters || s.Base().MonsterSpawnRate <= 0 {
		return
	}
	kind := diorama.MonsterFor(ctx.Params.Biome)
	switch {
	case kind == diorama.IceMonster && s.Base().Fluid == Lava:
		return
	case kind == diorama.LavaMonster && s.Base().Fluid == Water:
		return
	}
	floors := floorTiles(d, s.Pearl(), s.PearlRadius())
	if len(floors) == 0 {
		return
	}
	rng := ctx.Rng(dice.PlaceEntities, s.Base().ID)
	n := int(s.Base().MonsterSpawnRate * math.Sqrt(float64(len(floors))) / 2)
	for i := 0; i < n; i++ {
		p := dice.Choice(rng, floors)
		d.Creatures = append(d.Creatures, diorama.Creature{
			ID:    d.NextCreatureID(),
			Type:  kind,
			X:     float64(p.X) + rng.UniformFloat(0.2, 0.8),
			Y:     float64(p.Y) + rng.UniformFloat(0.2, 0.8),
			Yaw:   float64(rng.UniformInt(0, 4) * 90),
			Sleep: true,
		})
	}
}

// fineHazards runs the landslide and erosion passes shared by every
// variant. Landslide frequency is multiplied by mult.
func fineHazards(ctx *Context, d *diorama.Diorama, s Somatic, mult float64) {
	chance := ctx.Params.CaveLandslideChance
	if s.Base().Kind == Hall {
		chance = ctx.Params.HallLandslideChance
	}
	placeLandslides(ctx, d, s, chance, ctx.Params.LandslideFrequency*mult)
	fineErosion(d, s)
}
