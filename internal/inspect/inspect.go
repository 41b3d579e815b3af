// Package inspect draws generation progress to a terminal. It runs on its
// own goroutine and never slows the generators down: when it falls behind,
// intermediate frames are skipped.
package inspect

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
)

// Verbosity levels, one per -d flag.
const (
	Quiet = iota
	Progress
	Final
	Every
)

var (
	seedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	plateStyles = map[outline.Kind]lipgloss.Style{
		outline.Ambiguous: lipgloss.NewStyle().Foreground(lipgloss.Color("#5F5F87")),
		outline.Excluded:  lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),
		outline.Special:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
		outline.Hall:      lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE")),
	}
	pathStyles = map[outline.PathKind]lipgloss.Style{
		outline.Spanning:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		outline.Auxiliary: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

var tileGlyphs = map[tile.Tile]rune{
	tile.SolidRock:    ' ',
	tile.Floor:        '.',
	tile.Rubble1:      ',',
	tile.Rubble2:      ',',
	tile.Rubble3:      ';',
	tile.Rubble4:      ';',
	tile.Lava:         '^',
	tile.Water:        '~',
	tile.Foundation:   '=',
	tile.PowerPath:    '+',
	tile.Dirt:         '%',
	tile.LooseRock:    '#',
	tile.HardRock:     '@',
	tile.CrystalSeam:  '*',
	tile.OreSeam:      'o',
	tile.RechargeSeam: '!',
}

var plateGlyphs = map[outline.Kind]rune{
	outline.Ambiguous: '.',
	outline.Excluded:  ' ',
	outline.Special:   'S',
	outline.Hall:      'h',
}

// Drawer is a cavern.Sink that renders on a dedicated goroutine.
type Drawer struct {
	out   io.Writer
	level int
	last  string

	ch      chan cavern.Event
	wg      sync.WaitGroup
	once    sync.Once
	skipped atomic.Int64
}

func NewDrawer(out io.Writer, level int) *Drawer {
	names := cavern.StageNames()
	d := &Drawer{
		out:   out,
		level: level,
		last:  names[len(names)-1],
		ch:    make(chan cavern.Event, 64),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for ev := range d.ch {
			d.draw(ev)
		}
	}()
	return d
}

// WantsFrames reports whether generators should attach frames to events.
func (d *Drawer) WantsFrames() bool { return d.level >= Final }

func (d *Drawer) Stage(ev cavern.Event) {
	if d.level <= Quiet {
		return
	}
	if ev.Stage == cavern.CrashStage || ev.Stage == d.last {
		d.ch <- ev
		return
	}
	select {
	case d.ch <- ev:
	default:
		d.skipped.Add(1)
	}
}

// Close drains pending events and stops the drawing goroutine.
func (d *Drawer) Close() {
	d.once.Do(func() {
		close(d.ch)
		d.wg.Wait()
		if n := d.skipped.Load(); n > 0 {
			fmt.Fprintln(d.out, helpStyle.Render(fmt.Sprintf("(%d events skipped)", n)))
		}
	})
}

func (d *Drawer) draw(ev cavern.Event) {
	seed := seedStyle.Render(fmt.Sprintf("0x%08X", ev.Seed))
	if ev.Err != nil {
		fmt.Fprintf(d.out, "%s %s\n", seed, errStyle.Render(ev.Err.Error()))
	} else {
		fmt.Fprintf(d.out, "%s %s %s\n", seed, stageStyle.Render(fmt.Sprintf("%2d %-13s", ev.Index, ev.Stage)), ev.Elapsed)
	}
	if ev.Frame == nil {
		return
	}
	if d.level >= Every || ev.Stage == d.last || ev.Stage == cavern.CrashStage {
		fmt.Fprint(d.out, Render(ev.Frame))
	}
}

// Render draws a frame: tiles once there are any, otherwise the outline
// plates with paths between their centers.
func Render(f *cavern.Frame) string {
	if len(f.Tiles) > 0 {
		return renderTiles(f.Tiles)
	}
	return renderOutlines(f.Plates, f.Paths)
}

type canvas struct {
	bounds geom.Rect
	cells  [][]string
}

func newCanvas(bounds geom.Rect) *canvas {
	c := &canvas{bounds: bounds, cells: make([][]string, bounds.Height())}
	for y := range c.cells {
		row := make([]string, bounds.Width())
		for x := range row {
			row[x] = " "
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(p geom.Point, s string) {
	if c.bounds.Contains(p) {
		c.cells[p.Y-c.bounds.Top][p.X-c.bounds.Left] = s
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for _, row := range c.cells {
		sb.WriteString(strings.Join(row, ""))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func renderTiles(tiles map[geom.Point]tile.Tile) string {
	var bounds geom.Rect
	for p := range tiles {
		bounds = bounds.Union(geom.Rect{Left: p.X, Top: p.Y, Right: p.X + 1, Bottom: p.Y + 1})
	}
	c := newCanvas(bounds)
	styles := map[tile.Tile]lipgloss.Style{}
	for p, t := range tiles {
		st, ok := styles[t]
		if !ok {
			st = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color()))
			styles[t] = st
		}
		c.set(p, st.Render(string(tileGlyphs[t])))
	}
	return c.String()
}

func renderOutlines(plates []outline.Baseplate, paths []outline.Path) string {
	if len(plates) == 0 {
		return ""
	}
	bounds := plates[0].Rect
	for _, p := range plates[1:] {
		bounds = bounds.Union(p.Rect)
	}
	c := newCanvas(bounds)
	for _, p := range plates {
		st := plateStyles[p.Kind]
		glyph := st.Render(string(plateGlyphs[p.Kind]))
		p.Rect.Each(func(q geom.Point) { c.set(q, glyph) })
	}
	for _, path := range paths {
		st, ok := pathStyles[path.Kind]
		if !ok {
			continue
		}
		glyph := st.Render("o")
		for i := 1; i < len(path.Plates); i++ {
			a := plates[path.Plates[i-1]].Rect.CenterPoint()
			b := plates[path.Plates[i]].Rect.CenterPoint()
			for _, q := range geom.Plot(a, b) {
				c.set(q, glyph)
			}
		}
	}
	return c.String()
}
