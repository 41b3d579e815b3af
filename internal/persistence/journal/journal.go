// Package journal records stage events as zstd-compressed JSON lines.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
)

// Writer appends JSON lines to an hourly file under baseDir. It is safe for
// concurrent use.
type Writer struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix, now: time.Now}
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc, w.w = f, enc, bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// Entry is one journal line.
type Entry struct {
	Seed      string  `json:"seed"`
	Stage     string  `json:"stage"`
	Index     int     `json:"index"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
	Stack     string  `json:"stack,omitempty"`
}

// StageJournal is a cavern.Sink. Write errors are logged once per journal
// and otherwise dropped; the level files are what matters.
type StageJournal struct {
	w      *Writer
	onErr  func(error)
	failed sync.Once
}

func NewStageJournal(dir string, onErr func(error)) *StageJournal {
	return &StageJournal{w: NewWriter(dir, "stages"), onErr: onErr}
}

func (j *StageJournal) Stage(ev cavern.Event) {
	e := Entry{
		Seed:      fmt.Sprintf("0x%08X", ev.Seed),
		Stage:     ev.Stage,
		Index:     ev.Index,
		ElapsedMS: float64(ev.Elapsed.Microseconds()) / 1000,
		Stack:     ev.Stack,
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}
	if err := j.w.Write(e); err != nil && j.onErr != nil {
		j.failed.Do(func() { j.onErr(err) })
	}
}

func (j *StageJournal) Close() error { return j.w.Close() }
