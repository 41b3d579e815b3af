package diorama

import (
	"fmt"

	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

type BuildingType struct {
	Name     string
	ExportID string
	// Level 0 buildings come without upgrades.
	MaxLevel int
}

var (
	ToolStore        = BuildingType{"Tool Store", "BuildingToolStore_C", 2}
	TeleportPad      = BuildingType{"Teleport Pad", "BuildingTeleportPad_C", 2}
	PowerStation     = BuildingType{"Power Station", "BuildingPowerStation_C", 2}
	SupportStation   = BuildingType{"Support Station", "BuildingSupportStation_C", 2}
	UpgradeStation   = BuildingType{"Upgrade Station", "BuildingUpgradeStation_C", 2}
	GeologicalCenter = BuildingType{"Geological Center", "BuildingGeologicalCenter_C", 4}
	MiningLaser      = BuildingType{"Mining Laser", "BuildingMiningLaser_C", 0}
)

// Building stands on a foundation tile and faces its power path.
type Building struct {
	Type      BuildingType
	Pos       geom.Point
	Facing    geom.Dir
	Level     int
	Essential bool
}

// PowerPathTile is the tile the building faces.
func (b Building) PowerPathTile() geom.Point { return b.Pos.Add(b.Facing) }

// Yaw returns the building rotation in degrees; north-facing is 0.
func Yaw(facing geom.Dir) float64 {
	switch facing {
	case geom.East:
		return 90
	case geom.South:
		return 180
	case geom.West:
		return 270
	}
	return 0
}

// Place writes the building's foundation and power path tiles and records
// it.
func (d *Diorama) Place(b Building) {
	d.SetTile(b.Pos, tile.Foundation)
	d.SetTile(b.PowerPathTile(), tile.PowerPath)
	d.Buildings = append(d.Buildings, b)
}

type Loadout string

const (
	LoadoutDrill  Loadout = "Drill"
	LoadoutShovel Loadout = "Shovel"
)

// Miner positions are real-valued tile coordinates.
type Miner struct {
	ID        int
	X, Y      float64
	Yaw       float64
	Loadout   []Loadout
	Level     int
	Essential bool
}

// Tile is the cell the miner stands in.
func (m Miner) Tile() geom.Point { return geom.Floor(m.X, m.Y) }

type CreatureType struct {
	Name     string
	ExportID string
	// Monster creatures only appear when the cavern has monsters enabled.
	Monster bool
}

var (
	RockMonster = CreatureType{"Rock Monster", "CreatureRockMonster_C", true}
	IceMonster  = CreatureType{"Ice Monster", "CreatureIceMonster_C", true}
	LavaMonster = CreatureType{"Lava Monster", "CreatureLavaMonster_C", true}
)

// MonsterFor picks the monster native to a biome.
func MonsterFor(biome string) CreatureType {
	switch biome {
	case "ice":
		return IceMonster
	case "lava":
		return LavaMonster
	}
	return RockMonster
}

type Creature struct {
	ID    int
	Type  CreatureType
	X, Y  float64
	Yaw   float64
	Sleep bool
}

func (c Creature) Tile() geom.Point { return geom.Floor(c.X, c.Y) }

// Objective is one of FindMiner, Resource or Variable.
type Objective interface {
	// Key identifies duplicates and is the serialized form.
	Key() string
}

type FindMiner struct {
	MinerID int
}

func (o FindMiner) Key() string { return fmt.Sprintf("findminer:%d", o.MinerID) }

type Resource struct {
	Crystals, Ore, Studs int
}

func (o Resource) Key() string {
	return fmt.Sprintf("resources: %d,%d,%d", o.Crystals, o.Ore, o.Studs)
}

// Variable completes when a script condition holds.
type Variable struct {
	Condition   string
	Description string
}

func (o Variable) Key() string { return fmt.Sprintf("variable:%s/%s", o.Condition, o.Description) }
