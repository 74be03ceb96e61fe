package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Valid(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "valid"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.ASIN == "" {
		t.Fatalf("asin empty")
	}
	if sc.Goal != GoalReduceACOS {
		t.Fatalf("goal = %q, want reduce_acos", sc.Goal)
	}
	if sc.LookbackDays < 1 {
		t.Fatalf("lookback = %d", sc.LookbackDays)
	}
	if sc.Dir != filepath.Join("testdata", "valid") {
		t.Fatalf("dir = %q", sc.Dir)
	}
	if sc.Name == "" {
		t.Fatalf("name not defaulted from directory")
	}
}

func TestLoad_UnknownGoalRejected(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad-goal"))
	if err == nil {
		t.Fatalf("expected schema rejection")
	}
	if !errors.Is(err, ErrScenarioLoad) {
		t.Fatalf("error %v is not ErrScenarioLoad", err)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrScenarioLoad) {
		t.Fatalf("error %v is not ErrScenarioLoad", err)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scenario.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, ErrScenarioLoad) {
		t.Fatalf("error %v is not ErrScenarioLoad", err)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	doc := `{"asin": "B0X", "goal": "reduce_acos", "lookback_days": 30, "surprise": true}`
	if err := os.WriteFile(filepath.Join(dir, "scenario.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, ErrScenarioLoad) {
		t.Fatalf("error %v is not ErrScenarioLoad", err)
	}
}

func TestLoad_RejectsOutOfRangeLookback(t *testing.T) {
	dir := t.TempDir()
	doc := `{"asin": "B0X", "goal": "reduce_acos", "lookback_days": 0}`
	if err := os.WriteFile(filepath.Join(dir, "scenario.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, ErrScenarioLoad) {
		t.Fatalf("error %v is not ErrScenarioLoad", err)
	}
}

func TestFixture_DecodesFromScenarioDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "thing.json"), []byte(`{"n": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	sc := &Scenario{Dir: dir}
	var out struct {
		N int `json:"n"`
	}
	if err := sc.Fixture("thing.json", &out); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if out.N != 3 {
		t.Fatalf("n = %d", out.N)
	}
	if err := sc.Fixture("absent.json", &out); err == nil {
		t.Fatalf("expected error for absent fixture")
	}
}

func TestDiscover_FindsScenarioDirs(t *testing.T) {
	dirs, err := Discover("testdata", "**")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	// bad-goal still has a scenario.json; discovery is purely structural.
	want := []string{
		filepath.Join("testdata", "bad-goal"),
		filepath.Join("testdata", "valid"),
	}
	if len(dirs) != len(want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("dirs = %v, want %v", dirs, want)
		}
	}
}

func TestDiscover_PatternNarrows(t *testing.T) {
	dirs, err := Discover("testdata", "valid")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != filepath.Join("testdata", "valid") {
		t.Fatalf("dirs = %v", dirs)
	}
}
