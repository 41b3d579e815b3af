// Package indexdb keeps a queryable SQLite record of generated caverns.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
	"github.com/charredUtensil/hognose-sub000/internal/sim/encoding"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
	"github.com/charredUtensil/hognose-sub000/internal/sim/tuning"
)

const schemaVersion = "1"

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropCavern atomic.Uint64
	dropStage  atomic.Uint64
}

type reqKind int

const (
	reqCavern reqKind = iota + 1
	reqStage
)

type req struct {
	kind reqKind

	cavern cavernRow
	stage  stageRow
}

type cavernRow struct {
	Seed        uint32
	LevelName   string
	Biome       string
	Status      string
	FailedStage string
	Error       string
	Path        string
	Width       int
	Height      int
	TilesRLE    string
	Crystals    int
	Ore         int
	Buildings   int
	Miners      int
	Creatures   int
	Briefing    string
	TuningHash  string
	RecordedAt  string
}

type stageRow struct {
	Seed      uint32
	Index     int
	Stage     string
	ElapsedUS int64
	Error     string
}

// Stats reports how much the writer has shed.
type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropCavernTotal uint64
	DropStageTotal  uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Every seed emits one event per stage, so batches of -c 9999 are bursty.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tunings (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS caverns (
			seed INTEGER PRIMARY KEY,
			level_name TEXT NOT NULL,
			biome TEXT NOT NULL,
			status TEXT NOT NULL,
			failed_stage TEXT,
			error TEXT,
			path TEXT,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			tiles_rle TEXT NOT NULL,
			crystals INTEGER NOT NULL,
			ore INTEGER NOT NULL,
			buildings INTEGER NOT NULL,
			miners INTEGER NOT NULL,
			creatures INTEGER NOT NULL,
			briefing TEXT NOT NULL,
			tuning_digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_caverns_status ON caverns(status, failed_stage);`,
		`CREATE TABLE IF NOT EXISTS stages (
			seed INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			stage TEXT NOT NULL,
			elapsed_us INTEGER NOT NULL,
			error TEXT,
			PRIMARY KEY (seed, idx)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropCavernTotal: s.dropCavern.Load(),
		DropStageTotal:  s.dropStage.Load(),
	}
}

// UpsertTuning stores cfg and returns the digest caverns refer to.
func (s *SQLiteIndex) UpsertTuning(cfg tuning.Config) (string, error) {
	raw := cfg.Digest()
	sum := sha256.Sum256([]byte(raw))
	digest := hex.EncodeToString(sum[:])
	if s == nil {
		return digest, nil
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version',?)`, schemaVersion); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('generator_version',?)`, cavern.Version); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO tunings(digest,json,updated_at) VALUES(?,?,?)`, digest, raw, now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return digest, nil
}

// Stage implements cavern.Sink.
func (s *SQLiteIndex) Stage(ev cavern.Event) {
	if s == nil || s.closed.Load() {
		return
	}
	r := stageRow{
		Seed:      ev.Seed,
		Index:     ev.Index,
		Stage:     ev.Stage,
		ElapsedUS: ev.Elapsed.Microseconds(),
	}
	if ev.Err != nil {
		r.Error = ev.Err.Error()
	}
	select {
	case s.ch <- req{kind: reqStage, stage: r}:
	default:
		// Level files are the source of truth; the index may lag.
		s.dropStage.Add(1)
	}
}

// RecordCavern indexes a finished cavern written to path.
func (s *SQLiteIndex) RecordCavern(path string, c *cavern.Cavern, tuningDigest string) {
	if s == nil || s.closed.Load() || c == nil || c.Diorama == nil {
		return
	}
	d := c.Diorama
	r := cavernRow{
		Seed:       c.Seed,
		LevelName:  d.LevelName,
		Biome:      d.Biome,
		Status:     "ok",
		Path:       path,
		Width:      d.Bounds.Width(),
		Height:     d.Bounds.Height(),
		TilesRLE:   encoding.EncodeGrid(d),
		Crystals:   d.CrystalTotal(),
		Ore:        d.OreTotal(),
		Buildings:  len(d.Buildings),
		Miners:     len(d.Miners),
		Creatures:  len(d.Creatures),
		Briefing:   d.Briefing,
		TuningHash: tuningDigest,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	s.send(r)
}

// RecordFailure indexes a seed that did not produce a cavern.
func (s *SQLiteIndex) RecordFailure(seed uint32, err error, tuningDigest string) {
	if s == nil || s.closed.Load() || err == nil {
		return
	}
	r := cavernRow{
		Seed:       seed,
		Status:     "failed",
		Error:      err.Error(),
		TuningHash: tuningDigest,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	var gf *fault.GenerationFailure
	if errors.As(err, &gf) {
		r.FailedStage = gf.Stage
	}
	s.send(r)
}

func (s *SQLiteIndex) send(r cavernRow) {
	select {
	case s.ch <- req{kind: reqCavern, cavern: r}:
	default:
		s.dropCavern.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertCavern, _ := s.db.Prepare(`INSERT OR REPLACE INTO caverns(seed,level_name,biome,status,failed_stage,error,path,width,height,tiles_rle,crystals,ore,buildings,miners,creatures,briefing,tuning_digest,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertStage, _ := s.db.Prepare(`INSERT OR REPLACE INTO stages(seed,idx,stage,elapsed_us,error) VALUES(?,?,?,?,?)`)
	defer func() {
		if insertCavern != nil {
			_ = insertCavern.Close()
		}
		if insertStage != nil {
			_ = insertStage.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqCavern:
			c := r.cavern
			if insertCavern == nil {
				continue
			}
			if _, err := tx.Stmt(insertCavern).Exec(
				int64(c.Seed),
				c.LevelName,
				c.Biome,
				c.Status,
				nullable(c.FailedStage),
				nullable(c.Error),
				nullable(c.Path),
				c.Width,
				c.Height,
				c.TilesRLE,
				c.Crystals,
				c.Ore,
				c.Buildings,
				c.Miners,
				c.Creatures,
				c.Briefing,
				c.TuningHash,
				c.RecordedAt,
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqStage:
			st := r.stage
			if insertStage == nil {
				continue
			}
			if _, err := tx.Stmt(insertStage).Exec(
				int64(st.Seed),
				st.Index,
				st.Stage,
				st.ElapsedUS,
				nullable(st.Error),
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
