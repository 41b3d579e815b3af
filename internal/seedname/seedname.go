// Package seedname turns what a user types after -s into a seed.
package seedname

import (
	"crypto/md5"
	"encoding/binary"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

var (
	hexSeed   = regexp.MustCompile(`^(?i)(?:0x)?([0-9a-f]{1,8})$`)
	levelName = regexp.MustCompile(`^(?i)(?:HN-?[KEA])?([0-9a-f]{3})-?([0-9a-f]{5})(?:\.dat)?$`)
)

// minHashed is the shortest free-form string hashed into a seed.
const minHashed = 4

// Parse accepts a hex seed, a level name such as HN-A199-91118, or any
// string of at least four characters, which is hashed. An empty string
// seeds from now.
func Parse(s string, now time.Time) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint32(now.UnixMilli()) & 0x7FFFFFFF, nil
	}
	if m := hexSeed.FindStringSubmatch(s); m != nil {
		return parseHex(m[1])
	}
	if m := levelName.FindStringSubmatch(s); m != nil {
		return parseHex(m[1] + m[2])
	}
	if len(s) >= minHashed {
		sum := md5.Sum([]byte(s))
		return binary.BigEndian.Uint32(sum[:4]) & 0x7FFFFFFF, nil
	}
	return 0, fault.Config("seed %q is not hex, a level name, or at least %d characters", s, minHashed)
}

func parseHex(h string) (uint32, error) {
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fault.Config("seed %q: %v", h, err)
	}
	return uint32(v), nil
}
