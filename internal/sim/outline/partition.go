package outline

import (
	"math"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
)

const settleEpsilon = 0.01

type PartitionOptions struct {
	BubbleCount   int
	SpawnRadius   float64
	MaxArea       float64
	MaxIterations int
}

// SpawnBubbles draws every bubble from its own bubble stream.
func SpawnBubbles(box *dice.Box, opt PartitionOptions) []Bubble {
	out := make([]Bubble, 0, opt.BubbleCount)
	for id := 0; id < opt.BubbleCount; id++ {
		rng := box.Rng(dice.Bubble, id)
		x, y := rng.PointInCircle(opt.SpawnRadius, 0, 0)
		area := rng.Beta(0.2, 1.4, 4, opt.MaxArea)
		aspect := rng.Beta(1.4, 1.4, -0.3, 0.3)
		w := math.Sqrt(area) * math.Pow(10, aspect)
		out = append(out, Bubble{ID: id, X: x, Y: y, W: w, H: area / w})
	}
	return out
}

// Settle nudges overlapping bubbles apart until no bubble moves more than
// settleEpsilon in a step.
func Settle(bubbles []Bubble, maxIterations int) error {
	pushes := make([]geom.Vec, len(bubbles))
	for iter := 0; iter < maxIterations; iter++ {
		for i := range pushes {
			pushes[i] = geom.Vec{}
		}
		for i := range bubbles {
			a := bubbles[i]
			for j := i + 1; j < len(bubbles); j++ {
				b := bubbles[j]
				ox := math.Min(a.right(), b.right()) - math.Max(a.left(), b.left())
				oy := math.Min(a.bottom(), b.bottom()) - math.Max(a.top(), b.top())
				if ox <= 0 || oy <= 0 {
					continue
				}
				if ox <= oy {
					s := 1.0
					if b.X < a.X {
						s = -1
					}
					pushes[i].X -= s * ox / 2
					pushes[j].X += s * ox / 2
				} else {
					s := 1.0
					if b.Y < a.Y {
						s = -1
					}
					pushes[i].Y -= s * oy / 2
					pushes[j].Y += s * oy / 2
				}
			}
		}
		moved := 0.0
		for i, p := range pushes {
			n := math.Hypot(p.X, p.Y)
			if n == 0 {
				continue
			}
			// At most a unit step per iteration.
			if n > 1 {
				p.X, p.Y, n = p.X/n, p.Y/n, 1
			}
			bubbles[i].X += p.X
			bubbles[i].Y += p.Y
			moved = math.Max(moved, n)
		}
		if moved < settleEpsilon {
			return nil
		}
	}
	return fault.NotHalting("partition", maxIterations)
}

// Partition spawns, settles and snaps bubbles into ambiguous baseplates.
// Plates that are degenerate after snapping, or that would overlap a plate
// kept before them, are dropped; survivors are renumbered in order.
func Partition(box *dice.Box, opt PartitionOptions) (*Outlines, error) {
	bubbles := SpawnBubbles(box, opt)
	if err := Settle(bubbles, opt.MaxIterations); err != nil {
		return nil, err
	}
	o := &Outlines{}
	for _, b := range bubbles {
		r := geom.Rect{
			Left:   snap(b.left()),
			Top:    snap(b.top()),
			Right:  snap(b.right()),
			Bottom: snap(b.bottom()),
		}
		if r.Width() < 1 || r.Height() < 1 {
			continue
		}
		clash := false
		for _, kept := range o.Plates {
			if kept.Rect.Overlaps(r) {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		o.Plates = append(o.Plates, Baseplate{ID: len(o.Plates), Rect: r, Kind: Ambiguous})
	}
	return o, nil
}

func snap(v float64) int { return int(math.Floor(v + 0.5)) }
