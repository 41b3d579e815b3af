package lore

import (
	"fmt"
	"sync"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
)

// State groups: a cavern holds at most one state from each group. The
// empty string is "none of these".
var (
	MoodStates      = []string{"", "commend", "console"}
	BaseStates      = []string{"", "spawn_is_hq", "spawn_is_ruin", "find_hq"}
	ErosionStates   = []string{"", "spawn_has_erosion"}
	FloodStates     = []string{"", "flooded_water", "flooded_lava"}
	MonsterStates   = []string{"", "has_monsters"}
	LostMinerStates = []string{"", "lost_miners_one", "lost_miners_together", "lost_miners_apart"}
	TreasureStates  = []string{"", "treasure_one", "treasure_many"}
	CrystalStates   = []string{"", "collect_crystals"}
)

// Groups lists every state group in briefing order.
var Groups = [][]string{
	MoodStates, BaseStates, ErosionStates, FloodStates,
	MonsterStates, LostMinerStates, TreasureStates, CrystalStates,
}

// section chains one alternative per entry of group; "" maps to plain text.
func section(g *Graph, group []string, text map[string][]string) Builder {
	var alts []Builder
	for _, s := range group {
		if s == "" {
			alts = append(alts, g.Phrase(text[""]...))
			continue
		}
		alts = append(alts, g.Cond(s).Then(g.Phrase(text[s]...)))
	}
	return Any(alts[0], alts[1:]...)
}

func chain(g *Graph, parts ...Builder) {
	b := g.Start()
	for _, p := range parts {
		b = b.Then(p)
	}
	b.Then(g.End())
}

func buildBriefing() *Graph {
	g := NewGraph("briefing")
	chain(g,
		section(g, MoodStates, map[string][]string{
			"":        {"greetings, Cadet.", "attention, Cadet.", "listen up, Cadet."},
			"commend": {"excellent work on that last mission, Cadet.", "your last mission was a credit to the team, Cadet."},
			"console": {"don't let that last mission get you down, Cadet.", "chin up, Cadet. Every Rock Raider has a bad day."},
		}),
		section(g, BaseStates, map[string][]string{
			"":              {"we've found a cavern rich in Energy Crystals and need you to set up a base.", "our scanners found a promising cavern deep underground."},
			"spawn_is_hq":   {"our Rock Raider HQ is already up and running in this cavern.", "you'll be working out of an established base."},
			"spawn_is_ruin": {"your team will start in the ruins of an old base that was wrecked by a cave-in.", "what's left of our old base was battered by rockfalls, so expect to rebuild."},
			"find_hq":       {"we had a base here, but lost contact with it after a seismic event. Find it!", "somewhere in this cavern is a base we lost track of. Locate it."},
		}),
		section(g, ErosionStates, map[string][]string{
			"":                  {""},
			"spawn_has_erosion": {"be careful: erosion is eating away at the ground near your base.", "lava erosion is creeping toward your starting position."},
		}),
		section(g, FloodStates, map[string][]string{
			"":              {""},
			"flooded_water": {"much of this cavern is underwater, so you may want to build Docks.", "the lower caves have flooded."},
			"flooded_lava":  {"lava flows freely in parts of this cavern.", "watch your step, there's molten lava nearby."},
		}),
		section(g, MonsterStates, map[string][]string{
			"":             {""},
			"has_monsters": {"our scanners are picking up {monster} in the area.", "keep an eye out for {monster}."},
		}),
		section(g, LostMinerStates, map[string][]string{
			"":                     {""},
			"lost_miners_one":      {"one of our miners went missing during the survey. Find them!", "a lost miner is stranded somewhere out there."},
			"lost_miners_together": {"a group of {miners} miners was cut off by a cave-in. Bring them home.", "{miners} of our miners are trapped together in a cave nearby."},
			"lost_miners_apart":    {"{miners} miners were scattered across the cavern when the ground shifted. Find every one of them.", "we've lost track of {miners} miners in different parts of the cavern."},
		}),
		section(g, TreasureStates, map[string][]string{
			"":              {""},
			"treasure_one":  {"there's a large cache of Energy Crystals hidden somewhere nearby.", "rumor has it one cave is packed with crystals."},
			"treasure_many": {"several caches of Energy Crystals are tucked away around the cavern.", "we're reading crystal hoards in more than one cave."},
		}),
		section(g, CrystalStates, map[string][]string{
			"":                 {"good luck!", "we're counting on you."},
			"collect_crystals": {"collect {crystals} Energy Crystals to complete the mission.", "your goal is to bring back {crystals} Energy Crystals."},
		}),
	)
	return g
}

func buildSuccess() *Graph {
	g := NewGraph("success")
	chain(g,
		g.Phrase("well done, Cadet!", "mission accomplished!", "outstanding work!"),
		section(g, []string{"", "find_hq"}, map[string][]string{
			"":        {""},
			"find_hq": {"the lost base is back online."},
		}),
		section(g, LostMinerStates, map[string][]string{
			"":                     {""},
			"lost_miners_one":      {"the missing miner is safe."},
			"lost_miners_together": {"all {miners} miners made it back together."},
			"lost_miners_apart":    {"every one of the scattered miners is accounted for."},
		}),
		section(g, CrystalStates, map[string][]string{
			"":                 {""},
			"collect_crystals": {"those {crystals} Energy Crystals will keep us running for a while."},
		}),
	)
	return g
}

func buildFailure() *Graph {
	g := NewGraph("failure")
	chain(g,
		section(g, []string{"", "find_hq"}, map[string][]string{
			"":        {""},
			"find_hq": {"we never found the lost base."},
		}),
		section(g, LostMinerStates, map[string][]string{
			"":                     {""},
			"lost_miners_one":      {"we couldn't reach the missing miner in time."},
			"lost_miners_together": {"the trapped miners are still out there."},
			"lost_miners_apart":    {"too many miners are still missing."},
		}),
		g.Phrase("we'll have to pull out and try again.", "mission failed. Return to base.", "this cavern got the better of us."),
	)
	return g
}

var (
	compileOnce sync.Once
	compiled    struct {
		briefing, success, failure *Graph
		err                        error
	}
)

// Compiled returns the shared compiled graphs.
func Compiled() (briefing, success, failure *Graph, err error) {
	compileOnce.Do(func() {
		c := &compiled
		c.briefing, c.success, c.failure = buildBriefing(), buildSuccess(), buildFailure()
		for _, g := range []*Graph{c.briefing, c.success, c.failure} {
			if c.err = g.Compile(); c.err != nil {
				return
			}
		}
	})
	return compiled.briefing, compiled.success, compiled.failure, compiled.err
}

// Text is a cavern's narrative.
type Text struct {
	Briefing string
	Success  string
	Failure  string
}

// Write generates all three texts from one lore stream.
func Write(rng *dice.Rng, states []string, vars map[string]string) (Text, error) {
	b, s, f, err := Compiled()
	if err != nil {
		return Text{}, err
	}
	var t Text
	if t.Briefing, err = b.Generate(rng, states, vars); err != nil {
		return Text{}, fmt.Errorf("briefing: %w", err)
	}
	if t.Success, err = s.Generate(rng, states, vars); err != nil {
		return Text{}, fmt.Errorf("success: %w", err)
	}
	if t.Failure, err = f.Generate(rng, states, vars); err != nil {
		return Text{}, fmt.Errorf("failure: %w", err)
	}
	return t, nil
}
