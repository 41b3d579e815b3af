package lore

import (
	"errors"
	"strings"
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

// product calls fn with one pick from every group.
func product(groups [][]string, fn func([]string)) {
	picks := make([]string, 0, len(groups))
	var rec func(int)
	rec = func(i int) {
		if i == len(groups) {
			var states []string
			for _, p := range picks {
				if p != "" {
					states = append(states, p)
				}
			}
			fn(states)
			return
		}
		for _, s := range groups[i] {
			picks = append(picks, s)
			rec(i + 1)
			picks = picks[:len(picks)-1]
		}
	}
	rec(0)
}

func TestBriefingCoversEveryStateCombination(t *testing.T) {
	b, s, f, err := Compiled()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	n := 0
	product(Groups, func(states []string) {
		n++
		for _, g := range []*Graph{b, s, f} {
			if !g.Covers(states...) {
				t.Fatalf("%s does not cover %v", g.name, states)
			}
		}
	})
	if n != 3*4*2*3*2*4*3*2 {
		t.Fatalf("enumerated %d combinations", n)
	}
}

func TestGeneratePremises(t *testing.T) {
	states := []string{
		"console", "flooded_water", "lost_miners_one", "spawn_has_erosion",
		"has_monsters", "spawn_is_ruin", "treasure_one",
	}
	vars := map[string]string{"monster": "Ice Monsters", "miners": "one", "crystals": "25"}
	for seed := uint32(0); seed < 20; seed++ {
		text, err := Write(dice.NewBox(seed).Rng(dice.Lore, 0), states, vars)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		brief := text.Briefing
		for _, want := range []string{"miner", "Ice Monsters", "rosion"} {
			if !strings.Contains(brief, want) {
				t.Fatalf("seed %d: briefing %q lacks %q", seed, brief, want)
			}
		}
		if strings.Contains(brief, "{") {
			t.Fatalf("seed %d: unexpanded placeholder in %q", seed, brief)
		}
		if text.Success == "" || text.Failure == "" {
			t.Fatalf("seed %d: empty success or failure", seed)
		}
	}
}

func TestGenerateCapitalizesAndSpaces(t *testing.T) {
	g := NewGraph("test")
	g.Start().Then(g.Phrase("hello there.")).Then(g.Phrase("general")).Then(g.Phrase(", hi.")).Then(g.End())
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}
	got, err := g.Generate(dice.NewBox(1).Rng(dice.Lore, 0), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello there. General, hi." {
		t.Fatalf("got %q", got)
	}
}

func TestGenerateHonorsConditions(t *testing.T) {
	g := NewGraph("test")
	g.Start().Then(
		g.Phrase("plain."),
		g.Cond("a").Then(g.Phrase("with a.")),
	).Then(g.End())
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}
	for seed := uint32(0); seed < 10; seed++ {
		rng := dice.NewBox(seed).Rng(dice.Lore, 0)
		if got, _ := g.Generate(rng, []string{"a"}, nil); got != "With a." {
			t.Fatalf("with a: %q", got)
		}
		if got, _ := g.Generate(rng, []string{"unknown"}, nil); got != "Plain." {
			t.Fatalf("without a: %q", got)
		}
	}
}

func TestGenerateDeadEnd(t *testing.T) {
	g := NewGraph("test")
	g.Start().Then(g.Phrase("only.")).Then(g.End())
	g.Cond("unreachable")
	if err := g.Compile(); err != nil {
		t.Fatal(err)
	}
	_, err := g.Generate(dice.NewBox(1).Rng(dice.Lore, 0), []string{"unreachable"}, nil)
	if !errors.Is(err, fault.ErrNoContinuation) {
		t.Fatalf("want no continuation, got %v", err)
	}
}

func TestCompileRejectsCycles(t *testing.T) {
	g := NewGraph("test")
	a := g.Phrase("a")
	b := g.Phrase("b")
	g.Start().Then(a).Then(b).Then(a)
	b.Then(g.End())
	if err := g.Compile(); err == nil {
		t.Fatalf("cycle compiled")
	}
}
