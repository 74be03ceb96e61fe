// Package scenario loads and validates campaign scenario inputs.
//
// A scenario is a directory holding scenario.json (the structured input
// record) plus the raw metric fixtures the diagnostic tools read
// (ads_keywords.json, competitor.json, ...). The engine treats the scenario
// as opaque beyond the fields declared here; tools read their own fixtures
// through Fixture.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Goal is the optimization goal the campaign owner declared.
type Goal string

const (
	GoalIncreaseImpressions Goal = "increase_impressions"
	GoalReduceACOS          Goal = "reduce_acos"
	GoalImproveConversion   Goal = "improve_conversion"
)

// ErrScenarioLoad marks malformed or missing scenario input. It is the only
// fatal error class of a run and surfaces before the loop starts.
var ErrScenarioLoad = errors.New("scenario load failed")

// Scenario is the validated input record for one run.
type Scenario struct {
	ASIN         string `json:"asin"`
	Goal         Goal   `json:"goal"`
	LookbackDays int    `json:"lookback_days"`
	Notes        string `json:"notes,omitempty"`
	Name         string `json:"scenario_name,omitempty"`

	// Dir is the scenario directory; fixtures are resolved against it.
	Dir string `json:"-"`
}

const inputFile = "scenario.json"

// inputSchema validates the raw scenario.json document before decoding.
const inputSchema = `{
  "type": "object",
  "required": ["asin", "goal", "lookback_days"],
  "properties": {
    "asin": {"type": "string", "minLength": 1},
    "goal": {"enum": ["increase_impressions", "reduce_acos", "improve_conversion"]},
    "lookback_days": {"type": "integer", "minimum": 1, "maximum": 365},
    "notes": {"type": "string"},
    "scenario_name": {"type": "string"}
  },
  "additionalProperties": false
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("scenario.schema.json", strings.NewReader(inputSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("scenario.schema.json")
	})
	return schema, schemaErr
}

// Load reads and validates the scenario rooted at dir.
func Load(dir string) (*Scenario, error) {
	path := filepath.Join(dir, inputFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrScenarioLoad, path, err)
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrScenarioLoad, path, err)
	}
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile scenario schema: %w", err)
	}
	if err := s.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScenarioLoad, path, err)
	}

	var sc Scenario
	if err := json.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrScenarioLoad, path, err)
	}
	sc.Dir = dir
	if sc.Name == "" {
		sc.Name = filepath.Base(dir)
	}
	return &sc, nil
}

// Fixture decodes the named JSON fixture from the scenario directory into v.
// Tools call this for their raw metric files.
func (s *Scenario) Fixture(name string, v any) error {
	path := filepath.Join(s.Dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	return nil
}

// Discover returns scenario directories under root whose scenario.json
// matches pattern (doublestar syntax, e.g. "**"). Results are sorted.
func Discover(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "**"
	}
	glob := pattern + "/" + inputFile
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, glob)
	if err != nil {
		return nil, fmt.Errorf("glob %q under %s: %w", glob, root, err)
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		dirs = append(dirs, filepath.Join(root, filepath.Dir(m)))
	}
	sort.Strings(dirs)
	return dirs, nil
}
