// Package dice is the determinism kernel. A Box hands out one independent
// random stream per (kind, id) pair so that every entity of every stage
// consumes randomness that no other entity can disturb.
package dice

import (
	"math"
	"math/rand/v2"
)

// Kind names a stage-level stream family. The order is part of the replay
// contract: append new kinds, never insert.
type Kind int

const (
	Bubble Kind = iota
	Weave
	Differentiate
	Pearl
	PlaceCrystals
	Flood
	Init
	Lore
	ExpectedCrystals
	PlaceRechargeSeam
	PlaceLandslides
	PlaceOre
	PlaceEntities

	numKinds
)

var kindNames = [numKinds]string{
	"bubble",
	"weave",
	"conquest.differentiate",
	"rough.pearl",
	"fine.place_crystals",
	"flood",
	"init",
	"lore",
	"conquest.expected_crystals",
	"fine.place_recharge_seam",
	"fine.place_landslides",
	"fine.place_ore",
	"fine.place_entities",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// MaxSeed bounds every stream seed.
const MaxSeed = 1 << 31

const idStride = 1999

type streamKey struct {
	kind Kind
	id   int
}

// Box is not safe for concurrent use; each cavern owns its own.
type Box struct {
	seed    uint32
	base    [numKinds]uint64
	streams map[streamKey]*Rng
}

func NewBox(seed uint32) *Box {
	master := rand.New(rand.NewPCG(uint64(seed), 0x68_6f_67_6e_6f_73_65))
	b := &Box{seed: seed, streams: map[streamKey]*Rng{}}
	for i := range b.base {
		b.base[i] = master.Uint64N(MaxSeed)
	}
	return b
}

func (b *Box) Seed() uint32 { return b.seed }

// Rng returns the stream for (kind, id), creating it on first use.
func (b *Box) Rng(kind Kind, id int) *Rng {
	k := streamKey{kind: kind, id: id}
	if r, ok := b.streams[k]; ok {
		return r
	}
	s := StreamSeed(b.base[kind], id)
	r := &Rng{r: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
	b.streams[k] = r
	return r
}

// StreamSeed is (base + id·1999) mod 2³¹.
func StreamSeed(base uint64, id int) uint64 {
	v := (int64(base) + int64(id)*idStride) % MaxSeed
	if v < 0 {
		v += MaxSeed
	}
	return uint64(v)
}

type Rng struct {
	r *rand.Rand
}

// Float is uniform in [0,1).
func (g *Rng) Float() float64 { return g.r.Float64() }

// UniformFloat is uniform in [a,b).
func (g *Rng) UniformFloat(a, b float64) float64 { return a + (b-a)*g.r.Float64() }

// UniformInt is uniform in [a,b). It returns a when the range is empty.
func (g *Rng) UniformInt(a, b int) int {
	if b <= a {
		return a
	}
	return a + g.r.IntN(b-a)
}

func (g *Rng) Normal(mean, stddev float64) float64 {
	return mean + stddev*g.r.NormFloat64()
}

func (g *Rng) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.r.Float64() < p
}

// Beta draws from a beta(a,b) distribution scaled into [min,max].
func (g *Rng) Beta(a, b, min, max float64) float64 {
	x := g.gamma(a)
	y := g.gamma(b)
	v := 0.0
	if x+y > 0 {
		v = x / (x + y)
	}
	return min + v*(max-min)
}

// Pareto draws mode·(1-U)^(-1/shape).
func (g *Rng) Pareto(shape, mode float64) float64 {
	u := 1 - g.r.Float64()
	return mode * math.Pow(u, -1/shape)
}

// PointInCircle is uniform over the disk of radius r around (ox, oy).
func (g *Rng) PointInCircle(r, ox, oy float64) (float64, float64) {
	rad := r * math.Sqrt(g.r.Float64())
	theta := 2 * math.Pi * g.r.Float64()
	return ox + rad*math.Cos(theta), oy + rad*math.Sin(theta)
}

// gamma uses Marsaglia-Tsang, boosting shapes below one.
func (g *Rng) gamma(shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := g.r.Float64()
		return g.gamma(shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := g.r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := g.r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Bid pairs a weight with the item it buys in a WeightedChoice.
type Bid[T any] struct {
	Weight float64
	Item   T
}

// Choice picks uniformly. It panics on an empty slice.
func Choice[T any](g *Rng, items []T) T {
	return items[g.r.IntN(len(items))]
}

// WeightedChoice filters out non-positive bids, draws u = U(0,1)·Σbid and
// returns the first item whose cumulative sum exceeds u. ok is false when
// no bid is positive.
func WeightedChoice[T any](g *Rng, bids []Bid[T]) (item T, ok bool) {
	var total float64
	live := make([]Bid[T], 0, len(bids))
	for _, b := range bids {
		if b.Weight > 0 {
			live = append(live, b)
			total += b.Weight
		}
	}
	if len(live) == 0 {
		return item, false
	}
	u := g.r.Float64() * total
	var acc float64
	for _, b := range live {
		acc += b.Weight
		if acc > u {
			return b.Item, true
		}
	}
	return live[len(live)-1].Item, true
}

// Shuffle permutes items in place.
func Shuffle[T any](g *Rng, items []T) {
	g.r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
