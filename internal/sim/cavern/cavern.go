// Package cavern runs the generation pipeline for one seed. Every stage
// either completes or turns into a GenerationFailure for that seed alone.
package cavern

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/charredUtensil/hognose-sub000/internal/sim/conquest"
	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/diorama"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/outline"
	"github.com/charredUtensil/hognose-sub000/internal/sim/planner"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tile"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

// Version is written into every level header.
const Version = "0.10.3"

// CrashStage names the event sent when a stage fails.
const CrashStage = "crash"

// Frame is a copy of what a stage produced, safe to hand to another
// goroutine.
type Frame struct {
	Plates []outline.Baseplate
	Paths  []outline.Path
	Tiles  map[geom.Point]tile.Tile
}

// Event reports one finished stage.
type Event struct {
	Seed    uint32
	Stage   string
	Index   int
	Elapsed time.Duration
	Err     error
	Stack   string
	// Frame is only set when Options.Frames is on.
	Frame *Frame
}

type Sink interface {
	Stage(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Stage(ev Event) { f(ev) }

type Options struct {
	Config tuning.Config
	Log    *log.Logger
	Sinks  []Sink
	// Frames attaches a snapshot to every event.
	Frames bool
}

// Cavern is everything built for one seed. It is owned by one goroutine.
type Cavern struct {
	Seed     uint32
	Params   tuning.Params
	Outlines *outline.Outlines
	Planners []planner.Somatic
	Diorama  *diorama.Diorama
	Warnings []*fault.PlacementWarning

	// States are the lore states the cavern ended up with.
	States []string

	opt   Options
	box   *dice.Box
	ctx   *planner.Context
	graph *conquest.Graph
	goal  int
}

type stage struct {
	name string
	run  func(c *Cavern) error
}

// Stages in pipeline order.
var stages = []stage{
	{"init", (*Cavern).realize},
	{"partition", (*Cavern).partition},
	{"discriminate", (*Cavern).discriminate},
	{"triangulate", (*Cavern).triangulate},
	{"span", (*Cavern).span},
	{"bore", (*Cavern).bore},
	{"weave", (*Cavern).weave},
	{"cull", (*Cavern).cull},
	{"negotiate", (*Cavern).negotiate},
	{"flood", (*Cavern).flood},
	{"differentiate", (*Cavern).differentiate},
	{"rough", (*Cavern).rough},
	{"patch", (*Cavern).patch},
	{"fine", (*Cavern).fine},
	{"discover", (*Cavern).discover},
	{"adjure", (*Cavern).adjure},
	{"enscribe", (*Cavern).enscribe},
	{"script", (*Cavern).script},
	{"fence", (*Cavern).fence},
}

// StageNames lists the pipeline in order.
func StageNames() []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.name
	}
	return out
}

// Generate builds the cavern for seed. Any failure comes back as a
// *fault.GenerationFailure.
func Generate(seed uint32, opt Options) (*Cavern, error) {
	c := &Cavern{Seed: seed, opt: opt, box: dice.NewBox(seed)}
	for i, s := range stages {
		start := time.Now()
		err := c.runStage(s)
		ev := Event{Seed: seed, Stage: s.name, Index: i, Elapsed: time.Since(start)}
		if err != nil {
			var gf *fault.GenerationFailure
			errors.As(err, &gf)
			ev.Stage, ev.Err, ev.Stack = CrashStage, gf, gf.Stack
			c.emit(ev)
			if opt.Log != nil {
				opt.Log.Printf("seed 0x%08X: %v", seed, gf)
			}
			return nil, gf
		}
		if opt.Frames {
			ev.Frame = c.frame()
		}
		c.emit(ev)
	}
	return c, nil
}

func (c *Cavern) runStage(s stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &fault.GenerationFailure{
				Seed:  c.Seed,
				Stage: s.name,
				Err:   fmt.Errorf("panic: %v", r),
				Stack: string(debug.Stack()),
			}
		}
	}()
	if err := s.run(c); err != nil {
		return &fault.GenerationFailure{Seed: c.Seed, Stage: s.name, Err: err, Stack: string(debug.Stack())}
	}
	return nil
}

func (c *Cavern) emit(ev Event) {
	for _, s := range c.opt.Sinks {
		s.Stage(ev)
	}
}

func (c *Cavern) frame() *Frame {
	f := &Frame{}
	if c.Outlines != nil {
		f.Plates = append([]outline.Baseplate(nil), c.Outlines.Plates...)
		for _, p := range c.Outlines.Paths {
			p.Plates = append([]int(nil), p.Plates...)
			f.Paths = append(f.Paths, p)
		}
	}
	if c.Diorama != nil {
		f.Tiles = c.Diorama.CopyTiles()
	}
	return f
}

func (c *Cavern) realize() error {
	if err := c.opt.Config.Validate(); err != nil {
		return err
	}
	c.Params = c.opt.Config.Realize(c.box.Rng(dice.Init, 0))
	c.ctx = &planner.Context{Box: c.box, Params: c.Params, Log: c.opt.Log}
	return nil
}

func (c *Cavern) partition() error {
	o, err := outline.Partition(c.box, outline.PartitionOptions{
		BubbleCount:   c.Params.BubbleCount,
		SpawnRadius:   c.Params.BubbleSpawnRadius,
		MaxArea:       c.Params.BubbleMaxArea,
		MaxIterations: c.Params.PartitionMaxIterations,
	})
	if err != nil {
		return err
	}
	c.Outlines = o
	return nil
}

func (c *Cavern) discriminate() error {
	c.Outlines.Discriminate(c.Params.SpecialBaseplateCount)
	return nil
}

func (c *Cavern) triangulate() error { return c.Outlines.Triangulate() }

func (c *Cavern) span() error { return c.Outlines.Span() }

func (c *Cavern) bore() error {
	c.Outlines.Bore(outline.Spanning)
	return nil
}

func (c *Cavern) weave() error {
	c.Outlines.Weave(c.box, c.Params.WeaveChance)
	c.Outlines.Bore(outline.Auxiliary)
	return nil
}

func (c *Cavern) cull() error {
	c.Outlines.Cull()
	return nil
}

func (c *Cavern) negotiate() error {
	stems := conquest.Negotiate(c.Outlines)
	if len(stems) == 0 {
		return conquest.ErrNoCaves
	}
	c.graph = conquest.NewGraph(stems)
	return nil
}

func (c *Cavern) flood() error {
	c.graph.Flood(c.box, c.Params)
	return nil
}

func (c *Cavern) differentiate() error {
	planners, err := c.graph.Differentiate(c.ctx)
	if err != nil {
		return err
	}
	c.Planners = planners
	return nil
}

func (c *Cavern) rough() error {
	c.Diorama = diorama.New(c.Seed)
	c.Diorama.Biome = c.Params.Biome
	for _, p := range c.Planners {
		if err := p.Rough(c.ctx, c.Diorama); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cavern) patch() error {
	c.Diorama.Patch()
	return nil
}

// Ambient spider settings; spiders are not monsters and appear in every
// biome.
const (
	spiderRate = 10
	spiderMin  = 1
	spiderMax  = 2
)

func (c *Cavern) fine() error {
	for _, p := range c.Planners {
		if err := p.Fine(c.ctx, c.Diorama); err != nil {
			return err
		}
	}
	c.Diorama.SpiderRate, c.Diorama.SpiderMin, c.Diorama.SpiderMax = spiderRate, spiderMin, spiderMax
	c.Warnings = c.ctx.Warnings
	return nil
}

func (c *Cavern) discover() error {
	c.Diorama.Discover()
	return nil
}

func (c *Cavern) fence() error {
	c.Diorama.Fence()
	return nil
}
