package cavern

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/lore"
	"github.com/charredUtensil/hognose-sub000/internal/sim/planner"
)

// Lore stream ids.
const (
	loreText = iota
	loreMood
)

// CrystalGoal is floor(total·ratio) rounded down to a multiple of five.
func CrystalGoal(total int, ratio float64) int {
	return int(math.Floor(float64(total)*ratio)) / 5 * 5
}

func (c *Cavern) adjure() error {
	d := c.Diorama
	seen := map[string]bool{}
	for _, p := range c.Planners {
		for _, o := range p.Objectives() {
			if seen[o.Key()] {
				continue
			}
			seen[o.Key()] = true
			d.Objectives = append(d.Objectives, o)
		}
	}
	if len(d.Objectives) == 0 {
		c.goal = CrystalGoal(d.CrystalTotal(), c.Params.CrystalGoalRatio)
		d.Objectives = append(d.Objectives, diorama.Resource{Crystals: c.goal})
	}
	return nil
}

// LevelName is HN-, the biome letter, then the seed's eight hex digits
// split three and five.
func LevelName(seed uint32, biome string) string {
	hex := fmt.Sprintf("%08X", seed)
	return fmt.Sprintf("HN-%s%s-%s", BiomeLetter(biome), hex[:3], hex[3:])
}

func BiomeLetter(biome string) string {
	switch biome {
	case "ice":
		return "E"
	case "lava":
		return "A"
	}
	return "K"
}

var numberWords = []string{"no", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}

func numberWord(n int) string {
	if n >= 0 && n < len(numberWords) {
		return numberWords[n]
	}
	return strconv.Itoa(n)
}

// loreStates sums up the cavern for the phrase graphs; vars fills their
// placeholders.
func (c *Cavern) loreStates() (states []string, vars map[string]string) {
	d := c.Diorama
	add := func(s ...string) { states = append(states, s...) }

	mood := c.box.Rng(dice.Lore, loreMood)
	switch {
	case mood.Chance(0.2):
		add("commend")
	case mood.Chance(0.2):
		add("console")
	}

	treasures, lostMinerCaves, lostMiners := 0, 0, 0
	fluids := map[planner.Fluid]int{}
	for _, p := range c.Planners {
		fluids[p.Base().Fluid]++
		for _, s := range p.States() {
			switch s {
			case "treasure":
				treasures++
			case "lost_miners":
				lostMinerCaves++
				if lm, ok := p.(*planner.LostMinersCave); ok {
					lostMiners += lm.MinerCount()
				}
			default:
				add(s)
			}
		}
	}
	if spawn := c.spawn(); spawn != nil && spawn.Base().HasErosion {
		add("spawn_has_erosion")
	}
	switch {
	case fluids[planner.Water] == 0 && fluids[planner.Lava] == 0:
	case fluids[planner.Water] >= fluids[planner.Lava]:
		add("flooded_water")
	default:
		add("flooded_lava")
	}
	for _, cr := range d.Creatures {
		if cr.Type.Monster {
			add("has_monsters")
			break
		}
	}
	switch {
	case lostMinerCaves > 1:
		add("lost_miners_apart")
	case lostMinerCaves == 1 && lostMiners > 1:
		add("lost_miners_together")
	case lostMinerCaves == 1:
		add("lost_miners_one")
	}
	switch {
	case treasures > 1:
		add("treasure_many")
	case treasures == 1:
		add("treasure_one")
	}
	if c.goal > 0 {
		add("collect_crystals")
	}

	vars = map[string]string{
		"monster":  diorama.MonsterFor(c.Params.Biome).Name + "s",
		"miners":   numberWord(lostMiners),
		"crystals": strconv.Itoa(c.goal),
	}
	return states, vars
}

// spawn is the planner that set the camera.
func (c *Cavern) spawn() planner.Somatic {
	for _, p := range c.Planners {
		switch v := p.(type) {
		case *planner.SimpleSpawnCave:
			return v
		case *planner.EstablishedHQCave:
			if v.IsSpawn() {
				return v
			}
		}
	}
	return nil
}

func (c *Cavern) enscribe() error {
	d := c.Diorama
	d.LevelName = LevelName(c.Seed, c.Params.Biome)
	states, vars := c.loreStates()
	c.States = states
	text, err := lore.Write(c.box.Rng(dice.Lore, loreText), states, vars)
	if err != nil {
		return err
	}
	d.Briefing, d.BriefingSuccess, d.BriefingFailure = text.Briefing, text.Success, text.Failure
	return nil
}

// script gives every planner fragment a delimiting comment block.
func (c *Cavern) script() error {
	for _, p := range c.Planners {
		frag := strings.TrimSpace(p.Script(c.Diorama))
		if frag == "" {
			continue
		}
		c.Diorama.Script = append(c.Diorama.Script,
			fmt.Sprintf("# ----------\n# P%d: %s\n# ----------\n%s", p.Base().ID, p.Name(), frag))
	}
	return nil
}
