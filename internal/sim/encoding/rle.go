// Package encoding packs tile grids into short strings for the cavern index.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// EncodeRLE encodes tiles as base64 of uvarint (tile, run) pairs.
func EncodeRLE(tiles []tile.Tile) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(tiles); {
		t := tiles[i]
		run := 1
		for j := i + 1; j < len(tiles) && tiles[j] == t; j++ {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(t))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeRLE(b64 string) ([]tile.Tile, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []tile.Tile
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		t := tile.Tile(v)
		if v > 0xFF || !t.Valid() {
			return nil, fmt.Errorf("unknown tile %d", v)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, t)
		}
	}
	return out, nil
}

// EncodeGrid encodes the fenced bounds of d row by row.
func EncodeGrid(d *diorama.Diorama) string {
	b := d.Bounds
	tiles := make([]tile.Tile, 0, b.Width()*b.Height())
	for y := b.Top; y < b.Bottom; y++ {
		for x := b.Left; x < b.Right; x++ {
			tiles = append(tiles, d.Tile(geom.Pt(x, y)))
		}
	}
	return EncodeRLE(tiles)
}

// DecodeGrid is the inverse of EncodeGrid for a grid width cells wide.
func DecodeGrid(b64 string, width int) ([][]tile.Tile, error) {
	flat, err := DecodeRLE(b64)
	if err != nil {
		return nil, err
	}
	if width <= 0 || len(flat)%width != 0 {
		return nil, fmt.Errorf("%d tiles do not fill rows of %d", len(flat), width)
	}
	rows := make([][]tile.Tile, 0, len(flat)/width)
	for i := 0; i < len(flat); i += width {
		rows = append(rows, flat[i:i+width])
	}
	return rows, nil
}
