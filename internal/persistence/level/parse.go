package level

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// Sections splits a level file into its named bodies.
func Sections(data []byte) (map[string]string, error) {
	out := map[string]string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var (
		name string
		body strings.Builder
		open bool
	)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case !open && strings.HasSuffix(line, "{"):
			name, open = strings.TrimSuffix(line, "{"), true
			body.Reset()
		case open && line == "}":
			if _, dup := out[name]; dup {
				return nil, fmt.Errorf("level: duplicate section %q", name)
			}
			out[name] = body.String()
			open = false
		case open:
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("level: section %q not closed", name)
	}
	return out, nil
}

// ParseInfo reads the info section's key:value lines.
func ParseInfo(data []byte) (map[string]string, error) {
	secs, err := Sections(data)
	if err != nil {
		return nil, err
	}
	body, ok := secs["info"]
	if !ok {
		return nil, fmt.Errorf("level: no info section")
	}
	out := map[string]string{}
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("level: bad info line %q", line)
		}
		out[k] = v
	}
	return out, nil
}

// Grid is the parsed tiles section. Hidden marks cells the player has not
// discovered.
type Grid struct {
	Tiles  [][]tile.Tile
	Hidden [][]bool
}

// ParseTiles reads the tiles section back into tiles.
func ParseTiles(data []byte) (Grid, error) {
	secs, err := Sections(data)
	if err != nil {
		return Grid{}, err
	}
	body, ok := secs["tiles"]
	if !ok {
		return Grid{}, fmt.Errorf("level: no tiles section")
	}
	var g Grid
	for y, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		cells := strings.Split(strings.TrimSuffix(line, ","), ",")
		row := make([]tile.Tile, len(cells))
		hidden := make([]bool, len(cells))
		for x, c := range cells {
			code, err := strconv.Atoi(c)
			if err != nil {
				return Grid{}, fmt.Errorf("level: tile %d,%d: %w", y, x, err)
			}
			t, ok := tile.FromCode(code)
			if !ok {
				return Grid{}, fmt.Errorf("level: tile %d,%d: unknown code %d", y, x, code)
			}
			row[x], hidden[x] = t, code > undiscoveredOffset
		}
		if len(g.Tiles) > 0 && len(row) != len(g.Tiles[0]) {
			return Grid{}, fmt.Errorf("level: row %d has %d cells, want %d", y, len(row), len(g.Tiles[0]))
		}
		g.Tiles = append(g.Tiles, row)
		g.Hidden = append(g.Hidden, hidden)
	}
	return g, nil
}
