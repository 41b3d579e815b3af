package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/charredUtensil/hognose-sub000/internal/sim/cavern"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	var out []Entry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	return out
}

func TestStageJournalWritesEvents(t *testing.T) {
	dir := t.TempDir()
	j := NewStageJournal(dir, nil)
	fixed := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	j.w.now = func() time.Time { return fixed }

	j.Stage(cavern.Event{Seed: 0xbeef, Stage: "partition", Index: 1, Elapsed: 1500 * time.Microsecond})
	j.Stage(cavern.Event{Seed: 0xbeef, Stage: cavern.CrashStage, Index: 2, Err: errors.New("boom"), Stack: "trace"})
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	got := readEntries(t, filepath.Join(dir, "stages-2024-05-01-13.jsonl.zst"))
	if len(got) != 2 {
		t.Fatalf("entries: %+v", got)
	}
	if got[0].Seed != "0x0000BEEF" || got[0].Stage != "partition" || got[0].ElapsedMS != 1.5 {
		t.Fatalf("first entry %+v", got[0])
	}
	if got[1].Error != "boom" || got[1].Stack != "trace" {
		t.Fatalf("crash entry %+v", got[1])
	}
}

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "x")
	hour := time.Date(2024, 5, 1, 13, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return hour }
	if err := w.Write(map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	hour = hour.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"a": 2}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"x-2024-05-01-13.jsonl.zst", "x-2024-05-01-14.jsonl.zst"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
