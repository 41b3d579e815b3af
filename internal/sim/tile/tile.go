// Package tile enumerates the terrain a cavern is built from.
package tile

import "fmt"

type Tile uint8

const (
	// SolidRock is the zero value: every tile nobody wrote is solid rock.
	SolidRock Tile = iota
	Floor
	Rubble1
	Rubble2
	Rubble3
	Rubble4
	Lava
	Water
	Foundation
	PowerPath
	Dirt
	LooseRock
	HardRock
	CrystalSeam
	OreSeam
	RechargeSeam

	numTiles
)

type attrs struct {
	name     string
	code     int
	wall     bool
	passable bool
	color    string
}

var table = [numTiles]attrs{
	SolidRock:    {"solid rock", 38, true, false, "#2a2d30"},
	Floor:        {"floor", 1, false, true, "#5b4b3f"},
	Rubble1:      {"rubble 1", 2, false, true, "#6e5a48"},
	Rubble2:      {"rubble 2", 3, false, true, "#7a6550"},
	Rubble3:      {"rubble 3", 4, false, true, "#857059"},
	Rubble4:      {"rubble 4", 5, false, true, "#917b62"},
	Lava:         {"lava", 6, false, false, "#ff5a1f"},
	Water:        {"water", 11, false, false, "#1f6fff"},
	Foundation:   {"foundation", 14, false, true, "#8f8f8f"},
	PowerPath:    {"power path", 24, false, true, "#c6ff3d"},
	Dirt:         {"dirt", 26, true, false, "#a66a38"},
	LooseRock:    {"loose rock", 30, true, false, "#8a5a2e"},
	HardRock:     {"hard rock", 34, true, false, "#6b4526"},
	CrystalSeam:  {"crystal seam", 42, true, false, "#b4ff00"},
	OreSeam:      {"ore seam", 46, true, false, "#c07a3c"},
	RechargeSeam: {"recharge seam", 50, true, false, "#fff200"},
}

// All lists every variant in declaration order.
func All() []Tile {
	out := make([]Tile, 0, numTiles)
	for t := Tile(0); t < numTiles; t++ {
		out = append(out, t)
	}
	return out
}

func (t Tile) Valid() bool { return t < numTiles }

func (t Tile) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
	return table[t].name
}

// Code is the integer the level file uses.
func (t Tile) Code() int { return table[t].code }

func (t Tile) IsWall() bool { return table[t].wall }

func (t Tile) PassableByMiner() bool { return table[t].passable }

// Color is a #rrggbb display color.
func (t Tile) Color() string { return table[t].color }

// IsFluid reports water or lava.
func (t Tile) IsFluid() bool { return t == Water || t == Lava }


// FromCode maps a level file integer back to its tile. Undiscovered
// non-walls carry +100 and are accepted too.
func FromCode(code int) (Tile, bool) {
	if code > 100 {
		code -= 100
	}
	for t := Tile(0); t < numTiles; t++ {
		if table[t].code == code {
			return t, true
		}
	}
	return 0, false
}
