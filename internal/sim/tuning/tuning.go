package tuning

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

// Range is an inclusive [min,max] interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Curve scales a value with distance from spawn and with conquest progress:
// base + hops·(hops_to_spawn/total) + completion·(done/total).
type Curve struct {
	Base       float64 `yaml:"base" json:"base"`
	Hops       float64 `yaml:"hops" json:"hops"`
	Completion float64 `yaml:"completion" json:"completion"`
}

func (c Curve) At(hops, done, total int) float64 {
	if total <= 0 {
		return c.Base
	}
	return c.Base + c.Hops*float64(hops)/float64(total) + c.Completion*float64(done)/float64(total)
}

// BiomeTuning holds the knobs that change with the cavern's biome.
type BiomeTuning struct {
	WaterCoverage   Range   `yaml:"water_coverage" json:"water_coverage"`
	LavaCoverage    Range   `yaml:"lava_coverage" json:"lava_coverage"`
	WaterSpread     float64 `yaml:"water_spread" json:"water_spread"`
	LavaSpread      float64 `yaml:"lava_spread" json:"lava_spread"`
	CaveErodeChance float64 `yaml:"cave_erode_chance" json:"cave_erode_chance"`
	HallErodeChance float64 `yaml:"hall_erode_chance" json:"hall_erode_chance"`
}

type Config struct {
	// Biome forces rock, ice or lava; empty picks one per seed.
	Biome         string  `yaml:"biome" json:"biome"`
	MonsterChance float64 `yaml:"monster_chance" json:"monster_chance"`

	BubbleCount            int     `yaml:"bubble_count" json:"bubble_count"`
	BubbleSpawnRadius      float64 `yaml:"bubble_spawn_radius" json:"bubble_spawn_radius"`
	BubbleMaxArea          float64 `yaml:"bubble_max_area" json:"bubble_max_area"`
	PartitionMaxIterations int     `yaml:"partition_max_iterations" json:"partition_max_iterations"`

	SpecialBaseplates Range   `yaml:"special_baseplates" json:"special_baseplates"`
	WeaveChance       float64 `yaml:"weave_chance" json:"weave_chance"`

	CrystalRichness  Curve `yaml:"crystal_richness" json:"crystal_richness"`
	MonsterSpawnRate Curve `yaml:"monster_spawn_rate" json:"monster_spawn_rate"`

	CaveBaroqueness float64 `yaml:"cave_baroqueness" json:"cave_baroqueness"`
	HallBaroqueness float64 `yaml:"hall_baroqueness" json:"hall_baroqueness"`

	OreRichness        float64 `yaml:"ore_richness" json:"ore_richness"`
	RechargeSeamChance float64 `yaml:"recharge_seam_chance" json:"recharge_seam_chance"`

	CaveLandslideChance float64 `yaml:"cave_landslide_chance" json:"cave_landslide_chance"`
	HallLandslideChance float64 `yaml:"hall_landslide_chance" json:"hall_landslide_chance"`
	LandslideFrequency  float64 `yaml:"landslide_frequency" json:"landslide_frequency"`
	MinLandslidePeriod  float64 `yaml:"min_landslide_period" json:"min_landslide_period"`

	CrystalGoalRatio float64 `yaml:"crystal_goal_ratio" json:"crystal_goal_ratio"`

	Biomes map[string]BiomeTuning `yaml:"biomes" json:"biomes"`
}

// Biomes in the order a seed picks from.
var Biomes = []string{"rock", "ice", "lava"}

func Defaults() Config {
	return Config{
		MonsterChance: 0.75,

		BubbleCount:            80,
		BubbleSpawnRadius:      10,
		BubbleMaxArea:          64,
		PartitionMaxIterations: 1000,

		SpecialBaseplates: Range{Min: 8, Max: 14},
		WeaveChance:       0.16,

		CrystalRichness:  Curve{Base: 0.5, Hops: 1.0, Completion: 0.5},
		MonsterSpawnRate: Curve{Base: 0.3, Hops: 0.5, Completion: 0.6},

		CaveBaroqueness: 0.12,
		HallBaroqueness: 0.05,

		OreRichness:        0.6,
		RechargeSeamChance: 0.07,

		CaveLandslideChance: 0.4,
		HallLandslideChance: 0.2,
		LandslideFrequency:  1.0,
		MinLandslidePeriod:  15,

		CrystalGoalRatio: 0.2,

		Biomes: map[string]BiomeTuning{
			"rock": {
				WaterCoverage:   Range{Min: 0, Max: 0.2},
				LavaCoverage:    Range{Min: 0, Max: 0.1},
				WaterSpread:     0.1,
				LavaSpread:      0.1,
				CaveErodeChance: 0.3,
				HallErodeChance: 0.5,
			},
			"ice": {
				WaterCoverage:   Range{Min: 0.1, Max: 0.4},
				LavaCoverage:    Range{Min: 0, Max: 0.05},
				WaterSpread:     0.3,
				LavaSpread:      0.05,
				CaveErodeChance: 0.2,
				HallErodeChance: 0.3,
			},
			"lava": {
				WaterCoverage:   Range{Min: 0, Max: 0.05},
				LavaCoverage:    Range{Min: 0.1, Max: 0.35},
				WaterSpread:     0.05,
				LavaSpread:      0.3,
				CaveErodeChance: 0.5,
				HallErodeChance: 0.7,
			},
		},
	}
}

// Load reads a YAML tuning file on top of Defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	return Parse(raw)
}

// Parse decodes a YAML document on top of Defaults, checking it against
// the embedded schema first.
func Parse(raw []byte) (Config, error) {
	t := Defaults()
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return t, fault.Config("tuning.yaml: %v", err)
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return t, fault.Config("tuning.yaml: %v", err)
		}
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fault.Config("tuning.yaml: %v", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.Biome != "" {
		t.Biome, _ = CanonicalBiome(t.Biome)
	}
	return t, nil
}

func (c Config) Validate() error {
	if c.Biome != "" {
		if _, err := CanonicalBiome(c.Biome); err != nil {
			return err
		}
	}
	for _, b := range Biomes {
		if _, ok := c.Biomes[b]; !ok {
			return fault.Config("missing tuning for biome %q", b)
		}
	}
	names := make([]string, 0, len(c.Biomes))
	for name := range c.Biomes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := CanonicalBiome(name); err != nil {
			return err
		}
		bt := c.Biomes[name]
		for label, r := range map[string]Range{"water_coverage": bt.WaterCoverage, "lava_coverage": bt.LavaCoverage} {
			if r.Min < 0 || r.Max > 1 || r.Min > r.Max {
				return fault.Config("biome %s: %s must satisfy 0 <= min <= max <= 1", name, label)
			}
		}
	}
	switch {
	case c.BubbleCount < 2:
		return fault.Config("bubble_count must be at least 2")
	case c.BubbleSpawnRadius <= 0:
		return fault.Config("bubble_spawn_radius must be positive")
	case c.BubbleMaxArea < 4:
		return fault.Config("bubble_max_area must be at least 4")
	case c.PartitionMaxIterations < 1:
		return fault.Config("partition_max_iterations must be positive")
	case c.SpecialBaseplates.Min < 2 || c.SpecialBaseplates.Min > c.SpecialBaseplates.Max:
		return fault.Config("special_baseplates must satisfy 2 <= min <= max")
	case c.CrystalGoalRatio <= 0 || c.CrystalGoalRatio > 1:
		return fault.Config("crystal_goal_ratio must be in (0,1]")
	case c.MinLandslidePeriod <= 0:
		return fault.Config("min_landslide_period must be positive")
	}
	return nil
}

// Params is a Config realized for one seed.
type Params struct {
	Config
	BiomeTuning

	Biome                 string
	HasMonsters           bool
	SpecialBaseplateCount int
}

// RandomSource is the slice of a dice stream Realize needs.
type RandomSource interface {
	Float() float64
	UniformInt(a, b int) int
	Chance(p float64) bool
}

// Realize picks the per-seed values. Draw order is fixed: biome, monsters,
// special baseplate count.
func (c Config) Realize(rng RandomSource) Params {
	pick := Biomes[rng.UniformInt(0, len(Biomes))]
	biome, err := CanonicalBiome(c.Biome)
	if err != nil {
		biome = pick
	}
	hasMonsters := rng.Chance(c.MonsterChance)
	specials := rng.UniformInt(int(c.SpecialBaseplates.Min), int(c.SpecialBaseplates.Max)+1)
	return Params{
		Config:                c,
		BiomeTuning:           c.Biomes[biome],
		Biome:                 biome,
		HasMonsters:           hasMonsters,
		SpecialBaseplateCount: specials,
	}
}

// Digest is a canonical JSON rendering, stored alongside indexed caverns.
func (c Config) Digest() string {
	b, _ := json.Marshal(c)
	return string(b)
}
