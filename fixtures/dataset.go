// Package fixtures loads table-driven test data for the zinc and filter
// packages: YAML-encoded entity/tag datasets and filter scenarios (spec.md
// §8's end-to-end dataset and scenario table), and an optional loader that
// sources the same shape of dataset from a SQLite file. It mirrors the
// teacher's own fixture loader (testutil.ReadTests: filepath.Glob + a YAML
// decoder) generalized from sqldef's DDL test-case shape to Haystack's
// entity/tag shape.
package fixtures

import (
	"fmt"
	"os"

	"github.com/glennpierce/go-haystack/filter"
	"github.com/glennpierce/go-haystack/util"
	"github.com/glennpierce/go-haystack/zinc"
	"github.com/goccy/go-yaml"
)

// entityFixture is the on-disk shape of one RefTag: a ref id and a map of
// tag name to a loosely-typed YAML value. A nil value is a marker tag; a
// string beginning with "@" is a Ref value; any other string is an
// EscapedString; a YAML bool or number maps to Bool/Number directly.
type entityFixture struct {
	Ref  string                 `yaml:"ref"`
	Tags map[string]interface{} `yaml:"tags"`
}

// LoadRefTagsFile reads a YAML-encoded entity/tag dataset from path.
func LoadRefTagsFile(path string) (filter.RefTags, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: reading %q: %w", path, err)
	}
	return ParseRefTagsYAML(data)
}

// ParseRefTagsYAML decodes a YAML-encoded entity/tag dataset (spec.md
// §3.3's RefTags), preserving file order so scenarios that depend on
// dataset ordering behave deterministically.
func ParseRefTagsYAML(data []byte) (filter.RefTags, error) {
	var raw []entityFixture
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("fixtures: decoding dataset: %w", err)
	}

	out := make(filter.RefTags, 0, len(raw))
	for _, e := range raw {
		tags, err := tagsFromFixture(e.Tags)
		if err != nil {
			return nil, fmt.Errorf("fixtures: entity %q: %w", e.Ref, err)
		}
		out = append(out, filter.RefTag{Ref: zinc.NewRef(e.Ref), Tags: tags})
	}
	return out, nil
}

// tagsFromFixture converts a YAML tag map into ordered zinc.Tags. Go map
// iteration order is not stable, so util.CanonicalMapIter walks the map
// in sorted key order; this only affects the order Tags.ToZinc would
// render them in, never which entities a filter matches.
func tagsFromFixture(raw map[string]interface{}) (zinc.Tags, error) {
	tags := make(zinc.Tags, 0, len(raw))
	for name, v := range util.CanonicalMapIter(raw) {
		if v == nil {
			tags = append(tags, zinc.NewMarkerTag(zinc.NewID(name)))
			continue
		}
		tok, err := tokenFromFixtureValue(v)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		tags = append(tags, zinc.NewTag(zinc.NewID(name), zinc.NewTokenVal(tok)))
	}
	return tags, nil
}

func tokenFromFixtureValue(v interface{}) (zinc.Token, error) {
	switch val := v.(type) {
	case string:
		if len(val) > 0 && val[0] == '@' {
			return zinc.NewRef(val[1:]), nil
		}
		return zinc.NewEscapedString(val), nil
	case bool:
		return zinc.NewBool(val), nil
	case int:
		return zinc.NewNumberFromFloat(float64(val), ""), nil
	case int64:
		return zinc.NewNumberFromFloat(float64(val), ""), nil
	case float64:
		return zinc.NewNumberFromFloat(val, ""), nil
	case uint64:
		return zinc.NewNumberFromFloat(float64(val), ""), nil
	default:
		return zinc.Token{}, fmt.Errorf("unsupported fixture value %#v", v)
	}
}

// Scenario is one filter-expression test case: a filter string and the
// reference ids it is expected to select (spec.md §8's end-to-end
// scenario table). The order of Expected is not significant: the test
// runners compare it as a set against the evaluator's result.
type Scenario struct {
	Name     string   `yaml:"name"`
	Filter   string   `yaml:"filter"`
	Expected []string `yaml:"expected"`
}

// LoadScenariosFile reads a YAML-encoded list of filter scenarios from
// path.
func LoadScenariosFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: reading %q: %w", path, err)
	}
	var scenarios []Scenario
	if err := yaml.UnmarshalWithOptions(data, &scenarios, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("fixtures: decoding scenarios: %w", err)
	}
	return scenarios, nil
}
