package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

//go:embed config.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("config.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// validateSchema checks a decoded YAML document. yaml.v3 yields ints and
// map[string]any, so the value is normalized through JSON first.
func validateSchema(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.Validate(v)
}

// CanonicalBiome lowercases name and checks it against Biomes, suggesting
// the closest match on a miss.
func CanonicalBiome(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, b := range Biomes {
		if b == n {
			return b, nil
		}
	}
	if s := Suggest(n, Biomes); s != "" {
		return "", fault.Config("unknown biome %q (did you mean %q?)", name, s)
	}
	return "", fault.Config("unknown biome %q (want one of %s)", name, strings.Join(Biomes, ", "))
}

// Suggest returns the closest candidate within edit distance 2, or "".
func Suggest(s string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
