package seedname

import (
	"errors"
	"testing"
	"time"

	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

func TestParse(t *testing.T) {
	now := time.Unix(0, 0)
	cases := []struct {
		in   string
		want uint32
	}{
		{"0", 0},
		{"deadbeef", 0xdeadbeef},
		{"0x1F", 0x1f},
		{"HN-A199-91118", 0x19991118},
		{"HNK19991118", 0x19991118},
		{"199-91118.dat", 0x19991118},
		{"hn-e000-00000", 0},
	}
	for _, c := range cases {
		got, err := Parse(c.in, now)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) = 0x%08X, want 0x%08X", c.in, got, c.want)
		}
	}
}

func TestParseHashesLongStrings(t *testing.T) {
	a, err := Parse("hello world", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Parse("hello world", time.Time{})
	if a != b || a >= 1<<31 {
		t.Fatalf("hash seed %d/%d", a, b)
	}
}

func TestParseRejectsShortJunk(t *testing.T) {
	if _, err := Parse("zzz", time.Time{}); !errors.Is(err, fault.ErrConfig) {
		t.Fatalf("want config error, got %v", err)
	}
}

func TestParseEmptyUsesClock(t *testing.T) {
	got, err := Parse("", time.UnixMilli(1234))
	if err != nil || got != 1234 {
		t.Fatalf("got %d, %v", got, err)
	}
}
