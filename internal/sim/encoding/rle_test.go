package encoding

import (
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

func TestRLE_RoundTrip(t *testing.T) {
	in := []tile.Tile{tile.Floor, tile.Floor, tile.Floor, tile.Water, tile.Water, tile.Lava}
	for i := 0; i < 50; i++ {
		in = append(in, tile.SolidRock)
	}
	in = append(in, tile.CrystalSeam, tile.Dirt, tile.Dirt, tile.Dirt)

	out, err := DecodeRLE(EncodeRLE(in))
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %v want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeRLERejectsUnknownTiles(t *testing.T) {
	if _, err := DecodeRLE("/wEB"); err == nil {
		t.Fatalf("expected an error for tile 255")
	}
}

func TestGridRoundTrip(t *testing.T) {
	d := diorama.New(1)
	d.SetTile(geom.Pt(1, 1), tile.Floor)
	d.SetTile(geom.Pt(2, 1), tile.Water)
	d.Bounds = geom.Rect{Left: 0, Top: 0, Right: 4, Bottom: 3}

	rows, err := DecodeGrid(EncodeGrid(d), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[1][1] != tile.Floor || rows[1][2] != tile.Water || rows[0][0] != tile.SolidRock {
		t.Fatalf("grid %v", rows)
	}
	if _, err := DecodeGrid(EncodeGrid(d), 5); err == nil {
		t.Fatalf("expected a width mismatch error")
	}
}
