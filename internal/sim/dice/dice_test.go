package dice

import (
	"math"
	"testing"
)

func TestStreamsAreStablePerKindAndID(t *testing.T) {
	a := NewBox(0x19991118)
	b := NewBox(0x19991118)

	// Touch other streams on b first; a's draws must not notice.
	for i := 0; i < 10; i++ {
		b.Rng(Flood, i).Float()
		b.Rng(Bubble, 99).Float()
	}
	for id := 0; id < 5; id++ {
		for i := 0; i < 20; i++ {
			x := a.Rng(Pearl, id).Float()
			y := b.Rng(Pearl, id).Float()
			if x != y {
				t.Fatalf("stream (pearl,%d) draw %d diverged: %v vs %v", id, i, x, y)
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := NewBox(1).Rng(Init, 0).Float()
	b := NewBox(2).Rng(Init, 0).Float()
	if a == b {
		t.Fatalf("expected different draws for different seeds")
	}
}

func TestStreamSeedWrapsIntoRange(t *testing.T) {
	got := StreamSeed(MaxSeed-1, 1)
	if got != 1998 {
		t.Fatalf("StreamSeed wrap: got %d want 1998", got)
	}
	if s := StreamSeed(5, 0); s != 5 {
		t.Fatalf("StreamSeed(5,0)=%d", s)
	}
}

func TestBetaStaysInRange(t *testing.T) {
	g := NewBox(7).Rng(Bubble, 0)
	for i := 0; i < 2000; i++ {
		v := g.Beta(0.2, 1.4, 4, 64)
		if v < 4 || v > 64 || math.IsNaN(v) {
			t.Fatalf("beta out of range: %v", v)
		}
	}
}

func TestUniformIntHalfOpen(t *testing.T) {
	g := NewBox(3).Rng(Init, 1)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := g.UniformInt(2, 5)
		if v < 2 || v >= 5 {
			t.Fatalf("UniformInt out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all of 2,3,4; got %v", seen)
	}
	if g.UniformInt(4, 4) != 4 {
		t.Fatalf("empty range should return lower bound")
	}
}

func TestWeightedChoiceSkipsZeroBids(t *testing.T) {
	g := NewBox(11).Rng(Differentiate, 3)
	bids := []Bid[string]{
		{Weight: 0, Item: "never"},
		{Weight: 1, Item: "a"},
		{Weight: 3, Item: "b"},
		{Weight: -2, Item: "negative"},
	}
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		item, ok := WeightedChoice(g, bids)
		if !ok {
			t.Fatalf("expected a choice")
		}
		counts[item]++
	}
	if counts["never"] != 0 || counts["negative"] != 0 {
		t.Fatalf("non-positive bids were chosen: %v", counts)
	}
	if counts["b"] < 2*counts["a"] {
		t.Fatalf("weights not respected: %v", counts)
	}
	if _, ok := WeightedChoice(g, []Bid[int]{{Weight: 0, Item: 1}}); ok {
		t.Fatalf("expected no choice when every bid is zero")
	}
}

func TestPointInCircle(t *testing.T) {
	g := NewBox(5).Rng(Bubble, 1)
	for i := 0; i < 1000; i++ {
		x, y := g.PointInCircle(3, 10, -4)
		if (x-10)*(x-10)+(y+4)*(y+4) > 9.0001 {
			t.Fatalf("point outside circle: %v,%v", x, y)
		}
	}
}

func TestKindNames(t *testing.T) {
	if Bubble.String() != "bubble" || PlaceLandslides.String() != "fine.place_landslides" {
		t.Fatalf("kind order changed")
	}
}
