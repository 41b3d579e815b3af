package level

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

var testHeader = Header{Version: "0.10.3", Creator: "hognose"}

func mvp() *diorama.Diorama {
	d := diorama.New(0x12345678)
	d.Biome = "rock"
	d.SetTile(geom.Pt(11, 21), tile.Floor)
	d.SetTile(geom.Pt(14, 21), tile.Floor)
	d.SetTile(geom.Pt(15, 21), tile.Floor)
	d.Place(diorama.Building{Type: diorama.ToolStore, Pos: geom.Pt(12, 21), Facing: geom.East, Essential: true})
	d.AddCrystals(geom.Pt(14, 21), 3)
	d.SetCamera(geom.Pt(12, 21))
	d.AddOpenCave(geom.Pt(12, 21))
	d.Discover()
	d.Objectives = []diorama.Objective{diorama.Resource{Crystals: 3}}
	d.Briefing, d.BriefingSuccess, d.BriefingFailure = "Hello.", "Yay.", "Oops."
	d.Script = []string{"when(discovertile[y@21,x@12])[msg:Hi]"}
	d.Bounds = geom.Rect{Left: 10, Top: 20, Right: 17, Bottom: 23}
	return d
}

const mvpWant = `comments{
Generated by hognose 0.10.3
Seed: 0x12345678
}
info{
rowcount:3
colcount:7
camerapos:Translation: X=750.000 Y=450.000 Z=0.000 Rotation: P=45.000000 Y=180.000000 R=0.000000 Scale X=1.000 Y=1.000 Z=1.000
biome:rock
creator:hognose
spiderrate:0
spidermin:0
spidermax:0
version:0.10.3
opencaves:1,2/
}
tiles{
38,38,38,38,38,38,38,
38,1,14,24,1,1,38,
38,38,38,38,38,38,38,
}
height{
0,0,0,0,0,0,0,0,
0,0,0,0,0,0,0,0,
0,0,0,0,0,0,0,0,
0,0,0,0,0,0,0,0,
}
resources{
crystals:
0,0,0,0,0,0,0,
0,0,0,0,3,0,0,
0,0,0,0,0,0,0,
ore:
0,0,0,0,0,0,0,
0,0,0,0,0,0,0,
0,0,0,0,0,0,0,
}
objectives{
resources: 3,0,0
}
buildings{
BuildingToolStore_C
Translation: X=750.000 Y=450.000 Z=0.000 Rotation: P=0.000000 Y=90.000000 R=0.000000 Scale X=1.000 Y=1.000 Z=1.000
Level=1/Essential=true
}
landslidefrequency{
}
lavaspread{
}
miners{
}
creatures{
}
briefing{
Hello.
}
briefingsuccess{
Yay.
}
briefingfailure{
Oops.
}
script{
when(discovertile[1,2])[msg:Hi]
}
`

func TestMarshalMVP(t *testing.T) {
	got, err := Marshal(mvp(), testHeader)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != mvpWant {
		t.Fatalf("got:\n%s\nwant:\n%s", got, mvpWant)
	}
}

func TestHiddenTilesAreOffset(t *testing.T) {
	d := mvp()
	d.SetTile(geom.Pt(16, 22), tile.Water)
	out, err := Marshal(d, testHeader)
	if err != nil {
		t.Fatal(err)
	}
	g, err := ParseTiles(out)
	if err != nil {
		t.Fatal(err)
	}
	if g.Tiles[2][6] != tile.Water || !g.Hidden[2][6] {
		t.Fatalf("water cell parsed as %v hidden=%v", g.Tiles[2][6], g.Hidden[2][6])
	}
	if g.Hidden[1][1] {
		t.Fatalf("discovered floor parsed as hidden")
	}
}

func TestGeneratedLevelRoundTrips(t *testing.T) {
	c, err := cavern.Generate(0xdeadbeef, cavern.Options{Config: tuning.Defaults()})
	if err != nil {
		t.Fatal(err)
	}
	d := c.Diorama
	dir := t.TempDir()
	path := filepath.Join(dir, d.LevelName+".dat.zst")
	if err := WriteFile(path, d, Header{Version: cavern.Version, Creator: "hognose"}); err != nil {
		t.Fatal(err)
	}
	data, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	info, err := ParseInfo(data)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^\d+\.\d+\.\d+$`).MatchString(info["version"]) {
		t.Fatalf("version %q", info["version"])
	}
	g, err := ParseTiles(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Tiles) != d.Bounds.Height() || len(g.Tiles[0]) != d.Bounds.Width() {
		t.Fatalf("grid %dx%d, bounds %v", len(g.Tiles[0]), len(g.Tiles), d.Bounds)
	}
	for y, row := range g.Tiles {
		for x, got := range row {
			p := geom.Pt(x+d.Bounds.Left, y+d.Bounds.Top)
			if want := d.Tile(p); got != want {
				t.Fatalf("%v: parsed %v, want %v", p, got, want)
			}
		}
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	gen := func() []byte {
		c, err := cavern.Generate(7, cavern.Options{Config: tuning.Defaults()})
		if err != nil {
			t.Fatal(err)
		}
		out, err := Marshal(c.Diorama, testHeader)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	if a, b := gen(), gen(); string(a) != string(b) {
		t.Fatalf("two runs differ")
	}
}

func TestResolveMacros(t *testing.T) {
	got := ResolveMacros("pan:y@5,x@-2", geom.Rect{Left: -4, Top: 3})
	if got != "pan:2,2" {
		t.Fatalf("got %q", got)
	}
}
