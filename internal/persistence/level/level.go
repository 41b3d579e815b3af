// Package level writes and reads the game's text level format.
package level

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
)

// Scale is world units per tile.
const Scale = 300

// undiscoveredOffset marks open tiles the player has not seen yet.
const undiscoveredOffset = 100

// Header is what the comments and info sections need beyond the diorama.
type Header struct {
	Version string
	Creator string
}

var macro = regexp.MustCompile(`([xy])@(-?\d+)`)

type writer struct {
	w   *bufio.Writer
	d   *diorama.Diorama
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) section(name string, body func()) {
	w.printf("%s{\n", name)
	body()
	w.printf("}\n")
}

// Encode writes d in section order. d must be fenced.
func Encode(out io.Writer, d *diorama.Diorama, h Header) error {
	w := &writer{w: bufio.NewWriter(out), d: d}
	b := d.Bounds
	w.section("comments", func() {
		w.printf("Generated by hognose %s\n", h.Version)
		w.printf("Seed: 0x%08X\n", d.Seed)
	})
	w.section("info", func() {
		w.printf("rowcount:%d\n", b.Height())
		w.printf("colcount:%d\n", b.Width())
		if d.CameraSet {
			c := d.Offset(d.Camera)
			w.printf("camerapos:%s\n", transform(float64(c.X)+0.5, float64(c.Y)+0.5, 180, 45))
		}
		w.printf("biome:%s\n", d.Biome)
		w.printf("creator:%s\n", h.Creator)
		w.printf("spiderrate:%d\n", d.SpiderRate)
		w.printf("spidermin:%d\n", d.SpiderMin)
		w.printf("spidermax:%d\n", d.SpiderMax)
		w.printf("version:%s\n", h.Version)
		w.printf("opencaves:%s\n", coords(d, d.OpenCaves()))
	})
	w.section("tiles", func() {
		w.grid(func(p geom.Point) int {
			t := d.Tile(p)
			if !t.IsWall() && !d.Discovered(p) {
				return t.Code() + undiscoveredOffset
			}
			return t.Code()
		})
	})
	w.section("height", func() {
		row := strings.Repeat("0,", b.Width()+1)
		for y := 0; y <= b.Height(); y++ {
			w.printf("%s\n", row)
		}
	})
	w.section("resources", func() {
		w.printf("crystals:\n")
		w.grid(func(p geom.Point) int { return d.Crystals[p] })
		w.printf("ore:\n")
		w.grid(func(p geom.Point) int { return d.Ore[p] })
	})
	w.section("objectives", func() {
		for _, o := range d.Objectives {
			w.printf("%s\n", o.Key())
		}
	})
	w.section("buildings", func() {
		for _, bd := range d.Buildings {
			p := d.Offset(bd.Pos)
			w.printf("%s\n", bd.Type.ExportID)
			w.printf("%s\n", transform(float64(p.X)+0.5, float64(p.Y)+0.5, diorama.Yaw(bd.Facing), 0))
			attrs := fmt.Sprintf("Level=%d", bd.Level+1)
			if bd.Essential {
				attrs += "/Essential=true"
			}
			w.printf("%s\n", attrs)
		}
	})
	w.section("landslidefrequency", func() { w.landslides() })
	w.section("lavaspread", func() { w.erosions() })
	w.section("miners", func() {
		for _, m := range d.Miners {
			x, y := m.X-float64(b.Left), m.Y-float64(b.Top)
			var kit strings.Builder
			for _, l := range m.Loadout {
				kit.WriteString(string(l) + "/")
			}
			for i := 1; i < m.Level; i++ {
				kit.WriteString("Level/")
			}
			line := fmt.Sprintf("ID=%d,%s,%s", m.ID, transform(x, y, m.Yaw, 0), kit.String())
			if m.Essential {
				line += ",Essential=true"
			}
			w.printf("%s\n", line)
		}
	})
	w.section("creatures", func() {
		for _, c := range d.Creatures {
			x, y := c.X-float64(b.Left), c.Y-float64(b.Top)
			w.printf("%s\n", c.Type.ExportID)
			w.printf("%s\n", transform(x, y, c.Yaw, 0))
			id := fmt.Sprintf("ID=%d", c.ID)
			if c.Sleep {
				id += ",Sleep=true"
			}
			w.printf("%s\n", id)
		}
	})
	w.section("briefing", func() { w.text(d.Briefing) })
	w.section("briefingsuccess", func() { w.text(d.BriefingSuccess) })
	w.section("briefingfailure", func() { w.text(d.BriefingFailure) })
	w.section("script", func() {
		for _, frag := range d.Script {
			w.printf("%s\n", ResolveMacros(frag, b))
		}
	})
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// Marshal is Encode into memory.
func Marshal(d *diorama.Diorama, h Header) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *writer) grid(value func(geom.Point) int) {
	b := w.d.Bounds
	var row strings.Builder
	for y := b.Top; y < b.Bottom; y++ {
		row.Reset()
		for x := b.Left; x < b.Right; x++ {
			row.WriteString(strconv.Itoa(value(geom.Pt(x, y))))
			row.WriteByte(',')
		}
		w.printf("%s\n", row.String())
	}
}

func (w *writer) text(s string) {
	if s != "" {
		w.printf("%s\n", s)
	}
}

func (w *writer) landslides() {
	byPeriod := map[float64][]geom.Point{}
	for p, ls := range w.d.Landslides {
		byPeriod[ls.Period] = append(byPeriod[ls.Period], p)
	}
	periods := make([]float64, 0, len(byPeriod))
	for k := range byPeriod {
		periods = append(periods, k)
	}
	sort.Float64s(periods)
	for _, k := range periods {
		w.printf("%s:%s\n", num(k), coords(w.d, byPeriod[k]))
	}
}

func (w *writer) erosions() {
	byKind := map[diorama.Erosion][]geom.Point{}
	for p, e := range w.d.Erosions {
		byKind[e] = append(byKind[e], p)
	}
	kinds := make([]diorama.Erosion, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i].Cooldown != kinds[j].Cooldown {
			return kinds[i].Cooldown < kinds[j].Cooldown
		}
		return kinds[i].InitialDelay < kinds[j].InitialDelay
	})
	for _, k := range kinds {
		w.printf("%s/%s:%s\n", num(k.Cooldown), num(k.InitialDelay), coords(w.d, byKind[k]))
	}
}

// coords lists points row by row as y,x/ in file coordinates.
func coords(d *diorama.Diorama, pts []geom.Point) string {
	sorted := append([]geom.Point(nil), pts...)
	diorama.SortPoints(sorted)
	var sb strings.Builder
	for _, p := range sorted {
		o := d.Offset(p)
		fmt.Fprintf(&sb, "%d,%d/", o.Y, o.X)
	}
	return sb.String()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// transform renders an entity placement; x and y are in tiles.
func transform(x, y, yaw, pitch float64) string {
	return fmt.Sprintf("Translation: X=%.3f Y=%.3f Z=%.3f Rotation: P=%.6f Y=%.6f R=%.6f Scale X=%.3f Y=%.3f Z=%.3f",
		x*Scale, y*Scale, 0.0, pitch, yaw, 0.0, 1.0, 1.0, 1.0)
}

// ResolveMacros rewrites x@N and y@N into file coordinates.
func ResolveMacros(s string, bounds geom.Rect) string {
	return macro.ReplaceAllStringFunc(s, func(m string) string {
		sub := macro.FindStringSubmatch(m)
		n, _ := strconv.Atoi(sub[2])
		if sub[1] == "x" {
			return strconv.Itoa(n - bounds.Left)
		}
		return strconv.Itoa(n - bounds.Top)
	})
}

// WriteFile writes d to path, zstd-compressed when path ends in .zst.
func WriteFile(path string, d *diorama.Diorama, h Header) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		if err := Encode(f, d, h); err != nil {
			return err
		}
		return f.Close()
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := Encode(enc, d, h); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile returns the level text at path, decompressing .zst files.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !strings.HasSuffix(path, ".zst") {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
