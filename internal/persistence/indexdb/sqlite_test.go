package indexdb

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
	"github.com/charredUtensil/hognose-sub000/internal/sim/encoding"
	"github.com/charredUtensil/hognose-sub000/internal/sim/geom"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

func TestSQLiteIndex_RecordsCavernAndStages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	cfg := tuning.Defaults()
	digest, err := idx.UpsertTuning(cfg)
	if err != nil {
		t.Fatalf("UpsertTuning: %v", err)
	}
	c, err := cavern.Generate(0xdeadbeef, cavern.Options{Config: cfg, Sinks: []cavern.Sink{idx}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	idx.RecordCavern("/out/x.dat", c, digest)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		name, status, rle, dg string
		width, crystals       int
	)
	row := db.QueryRow(`SELECT level_name,status,tiles_rle,tuning_digest,width,crystals FROM caverns WHERE seed=?`, int64(0xdeadbeef))
	if err := row.Scan(&name, &status, &rle, &dg, &width, &crystals); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	d := c.Diorama
	if name != d.LevelName || status != "ok" || dg != digest || crystals != d.CrystalTotal() {
		t.Fatalf("row mismatch: name=%q status=%q digest=%q crystals=%d", name, status, dg, crystals)
	}
	grid, err := encoding.DecodeGrid(rle, width)
	if err != nil {
		t.Fatalf("DecodeGrid: %v", err)
	}
	if got := grid[1][1]; got != d.Tile(geom.Pt(d.Bounds.Left+1, d.Bounds.Top+1)) {
		t.Fatalf("tile 1,1 = %v", got)
	}

	var stages int
	if err := db.QueryRow(`SELECT COUNT(*) FROM stages WHERE seed=?`, int64(0xdeadbeef)).Scan(&stages); err != nil {
		t.Fatalf("count stages: %v", err)
	}
	if stages != len(cavern.StageNames()) {
		t.Fatalf("stages=%d want %d", stages, len(cavern.StageNames()))
	}
	var tunings int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tunings WHERE digest=?`, digest).Scan(&tunings); err != nil || tunings != 1 {
		t.Fatalf("tunings=%d err=%v", tunings, err)
	}
}

func TestSQLiteIndex_RecordsFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	cfg := tuning.Defaults()
	cfg.PartitionMaxIterations = 1
	_, genErr := cavern.Generate(3, cavern.Options{Config: cfg, Sinks: []cavern.Sink{idx}})
	if genErr == nil {
		t.Fatalf("expected failure")
	}
	idx.RecordFailure(3, genErr, "d")
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var status, stage string
	if err := db.QueryRow(`SELECT status,failed_stage FROM caverns WHERE seed=3`).Scan(&status, &stage); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if status != "failed" || stage != "partition" {
		t.Fatalf("status=%q stage=%q", status, stage)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqStage}

	s.Stage(cavern.Event{Seed: 1, Stage: "init"})
	s.RecordFailure(1, errors.New("boom"), "")

	st := s.Stats()
	if st.DropStageTotal != 1 || st.DropCavernTotal != 1 {
		t.Fatalf("drops: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}
