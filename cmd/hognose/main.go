package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charredUtensil/hognose-sub000/internal/inspect"
	"github.com/charredUtensil/hognose-sub000/internal/persistence/indexdb"
	"github.com/charredUtensil/hognose-sub000/internal/persistence/journal"
	"github.com/charredUtensil/hognose-sub000/internal/persistence/level"
	"github.com/charredUtensil/hognose-sub000/internal/seedname"
	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

const maxCount = 9999

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// drawLevel counts repeated -d flags.
type drawLevel int

func (d *drawLevel) String() string   { return strconv.Itoa(int(*d)) }
func (d *drawLevel) IsBoolFlag() bool { return true }

func (d *drawLevel) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*d++
	}
	return nil
}

type options struct {
	briefing   bool
	count      int
	draw       drawLevel
	out        string
	seed       string
	version    bool
	tuningPath string
	biome      string
	jobs       int
	indexPath  string
	journalDir string
	compress   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("hognose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.briefing, "b", false, "print the briefing to stdout after generating")
	fs.BoolVar(&o.briefing, "briefing", false, "same as -b")
	fs.IntVar(&o.count, "c", 1, "number of caverns to generate (1..9999)")
	fs.IntVar(&o.count, "count", 1, "same as -c")
	fs.Var(&o.draw, "d", "draw progress to stderr; repeat for more detail")
	fs.Var(&o.draw, "draw", "same as -d")
	fs.StringVar(&o.out, "o", "", "write level file(s) to FILE, DIR or - for stdout")
	fs.StringVar(&o.out, "out", "", "same as -o")
	fs.StringVar(&o.seed, "s", "", "seed: hex, a level name like HN-A199-91118, or any phrase")
	fs.StringVar(&o.seed, "seed", "", "same as -s")
	fs.BoolVar(&o.version, "v", false, "print the version and exit")
	fs.BoolVar(&o.version, "version", false, "same as -v")
	fs.StringVar(&o.tuningPath, "tuning", "", "path to a tuning.yaml merged over the defaults")
	fs.StringVar(&o.biome, "biome", "", "force a biome (rock, ice, lava)")
	fs.IntVar(&o.jobs, "j", runtime.NumCPU(), "caverns generated in parallel")
	fs.StringVar(&o.indexPath, "index", "", "record every cavern in this SQLite database")
	fs.StringVar(&o.journalDir, "journal", "", "write stage timings as jsonl.zst under this directory")
	fs.BoolVar(&o.compress, "z", false, "zstd-compress level files (.dat.zst)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return o, err
		}
		return o, fault.Config("%v", err)
	}
	if fs.NArg() > 0 {
		return o, fault.Config("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

func (o options) validate() error {
	if o.count < 1 || o.count > maxCount {
		return fault.Config("count %d out of range 1..%d", o.count, maxCount)
	}
	if o.out == "-" && o.briefing {
		return fault.Config("-o - cannot be combined with -b")
	}
	if o.count > 1 && o.out == "-" {
		return fault.Config("-o - writes a single cavern; use a directory for -c %d", o.count)
	}
	if o.count > 1 && o.out != "" {
		if st, err := os.Stat(o.out); err == nil && !st.IsDir() {
			return fault.Config("-c %d needs a directory, %s is a file", o.count, o.out)
		}
	}
	if o.jobs < 1 {
		return fault.Config("-j must be positive")
	}
	return nil
}

// target resolves where one cavern goes: "" for nowhere, "-" for stdout,
// otherwise a file path.
func (o options) target(levelName string) string {
	if o.out == "" || o.out == "-" {
		return o.out
	}
	name := levelName + ".dat"
	if o.compress {
		name += ".zst"
	}
	if o.count > 1 || strings.HasSuffix(o.out, string(os.PathSeparator)) {
		return filepath.Join(o.out, name)
	}
	if st, err := os.Stat(o.out); err == nil && st.IsDir() {
		return filepath.Join(o.out, name)
	}
	return o.out
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "[hognose] ", log.LstdFlags|log.Lmicroseconds)

	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		logger.Printf("%v", err)
		return 2
	}
	if o.version {
		fmt.Fprintf(stdout, "hognose %s\n", cavern.Version)
		return 0
	}
	if err := o.validate(); err != nil {
		logger.Printf("%v", err)
		return 2
	}

	cfg, err := tuning.Load(o.tuningPath)
	if err != nil {
		logger.Printf("load tuning: %v", err)
		return 2
	}
	if o.biome != "" {
		b, err := tuning.CanonicalBiome(o.biome)
		if err != nil {
			logger.Printf("%v", err)
			return 2
		}
		cfg.Biome = b
	}
	if err := cfg.Validate(); err != nil {
		logger.Printf("tuning: %v", err)
		return 2
	}

	first, err := seedname.Parse(o.seed, time.Now())
	if err != nil {
		logger.Printf("%v", err)
		return 2
	}
	if o.count > 1 && o.out != "" {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			logger.Printf("create %s: %v", o.out, err)
			return 1
		}
	}

	var sinks []cavern.Sink
	drawer := inspect.NewDrawer(stderr, int(o.draw))
	defer drawer.Close()
	sinks = append(sinks, drawer)

	var idx *indexdb.SQLiteIndex
	if o.indexPath != "" {
		idx, err = indexdb.OpenSQLite(o.indexPath)
		if err != nil {
			logger.Printf("open index: %v", err)
			return 1
		}
		defer idx.Close()
		sinks = append(sinks, idx)
	}
	digest, err := idx.UpsertTuning(cfg)
	if err != nil {
		logger.Printf("index tuning: %v", err)
		return 1
	}

	if o.journalDir != "" {
		j := journal.NewStageJournal(o.journalDir, func(err error) {
			logger.Printf("journal: %v", err)
		})
		defer j.Close()
		sinks = append(sinks, j)
	}

	opt := cavern.Options{
		Config: cfg,
		Log:    logger,
		Sinks:  sinks,
		Frames: drawer.WantsFrames(),
	}
	header := level.Header{Version: cavern.Version, Creator: "hognose"}

	var (
		failed atomic.Int64
		outMu  sync.Mutex
		g      errgroup.Group
	)
	g.SetLimit(o.jobs)
	for i := 0; i < o.count; i++ {
		seed := first + uint32(i)
		g.Go(func() error {
			c, err := cavern.Generate(seed, opt)
			if err != nil {
				// Generate has already logged the failure.
				failed.Add(1)
				idx.RecordFailure(seed, err, digest)
				return nil
			}
			path := o.target(c.Diorama.LevelName)
			switch path {
			case "":
			case "-":
				outMu.Lock()
				err = level.Encode(stdout, c.Diorama, header)
				outMu.Unlock()
			default:
				err = level.WriteFile(path, c.Diorama, header)
			}
			if err != nil {
				logger.Printf("seed 0x%08X: write %s: %v", seed, path, err)
				failed.Add(1)
				idx.RecordFailure(seed, err, digest)
				return nil
			}
			idx.RecordCavern(path, c, digest)
			if o.briefing {
				outMu.Lock()
				fmt.Fprintf(stdout, "%s\n%s\n\n", c.Diorama.LevelName, c.Diorama.Briefing)
				outMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		logger.Printf("%d of %d caverns failed", n, o.count)
		return 1
	}
	return 0
}
