// Package regions maps region codes to the sample cities whose current
// weather is checked for severe conditions. The table is read once at
// startup and never changes afterwards.
package regions

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultTable []byte

// Table is an immutable region code → ordered city list mapping.
type Table struct {
	cities map[string][]string
}

type file struct {
	Regions map[string][]string `yaml:"regions"`
}

// Default returns the table shipped with the binary.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads a table from path, or the embedded default when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML region table. Every problem in the
// document is reported, not just the first.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}

	var result *multierror.Error
	if len(f.Regions) == 0 {
		result = multierror.Append(result, fmt.Errorf("no regions defined"))
	}

	t := &Table{cities: make(map[string][]string, len(f.Regions))}
	for code, cities := range f.Regions {
		key := normalize(code)
		if key == "" {
			result = multierror.Append(result, fmt.Errorf("empty region code"))
			continue
		}
		if _, dup := t.cities[key]; dup {
			result = multierror.Append(result, fmt.Errorf("region %s defined more than once", key))
			continue
		}
		if len(cities) == 0 {
			result = multierror.Append(result, fmt.Errorf("region %s has no cities", key))
			continue
		}

		list := make([]string, 0, len(cities))
		for i, city := range cities {
			city = strings.TrimSpace(city)
			if city == "" {
				result = multierror.Append(result, fmt.Errorf("region %s: city %d is empty", key, i))
				continue
			}
			list = append(list, city)
		}
		t.cities[key] = list
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid regions: %w", err)
	}
	return t, nil
}

// Cities returns the cities for code, matched case-insensitively, in the
// configured order. The returned slice is a copy.
func (t *Table) Cities(code string) ([]string, bool) {
	cities, ok := t.cities[normalize(code)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), cities...), true
}

// Codes returns the configured region codes, sorted.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.cities))
	for code := range t.cities {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MaxCities returns the length of the longest city list.
func (t *Table) MaxCities() int {
	n := 0
	for _, cities := range t.cities {
		n = max(n, len(cities))
	}
	return n
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
