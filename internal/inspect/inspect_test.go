package inspect

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

func TestRenderTiles(t *testing.T) {
	f := &cavern.Frame{Tiles: map[geom.Point]tile.Tile{
		geom.Pt(3, 4): tile.Floor,
		geom.Pt(4, 4): tile.Water,
		geom.Pt(3, 5): tile.CrystalSeam,
	}}
	got := Render(f)
	for _, want := range []string{".", "~", "*"} {
		if !strings.Contains(got, want) {
			t.Fatalf("render missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "\n"); n != 2 {
		t.Fatalf("rows=%d\n%s", n, got)
	}
}

func TestRenderOutlines(t *testing.T) {
	f := &cavern.Frame{
		Plates: []outline.Baseplate{
			{ID: 0, Rect: geom.Rect{Left: 0, Top: 0, Right: 3, Bottom: 3}, Kind: outline.Special},
			{ID: 1, Rect: geom.Rect{Left: 6, Top: 0, Right: 9, Bottom: 3}, Kind: outline.Hall},
		},
		Paths: []outline.Path{{ID: 0, Plates: []int{0, 1}, Kind: outline.Spanning}},
	}
	got := Render(f)
	if !strings.Contains(got, "S") || !strings.Contains(got, "h") || !strings.Contains(got, "o") {
		t.Fatalf("render:\n%s", got)
	}
}

func TestDrawerReportsEveryStage(t *testing.T) {
	var buf bytes.Buffer
	d := NewDrawer(&buf, Final)
	if !d.WantsFrames() {
		t.Fatalf("Final should want frames")
	}
	if _, err := cavern.Generate(0xdeadbeef, cavern.Options{Config: tuning.Defaults(), Sinks: []cavern.Sink{d}, Frames: true}); err != nil {
		t.Fatal(err)
	}
	d.Stage(cavern.Event{Seed: 12, Stage: cavern.CrashStage, Err: errors.New("kaboom")})
	d.Close()

	out := buf.String()
	if !strings.Contains(out, "0xDEADBEEF") || !strings.Contains(out, "fence") {
		t.Fatalf("missing progress lines:\n%s", out)
	}
	if !strings.Contains(out, "kaboom") {
		t.Fatalf("missing crash line")
	}
}

func TestQuietDrawerPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	d := NewDrawer(&buf, Quiet)
	d.Stage(cavern.Event{Seed: 1, Stage: "init"})
	d.Close()
	if buf.Len() != 0 {
		t.Fatalf("quiet drawer wrote %q", buf.String())
	}
}
