package diagnose

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avetrov/adscope/internal/rules"
	"github.com/avetrov/adscope/internal/scenario"
)

// Defaults for the engine's tunables. All are overridable through Options or
// an options file; none are hardwired into the decision logic.
const (
	DefaultAlpha               = 0.2
	DefaultConfidenceThreshold = 0.42
	DefaultMaxSteps            = 5
	DefaultMinSteps            = 3
	DefaultBasePrior           = 0.30
	DefaultPrimedPrior         = 0.35
	DefaultToolTimeout         = 30 * time.Second
	DefaultMode                = "keyword"
)

// Options tunes one run of the engine.
type Options struct {
	// RunID is a globally unique identifier. If empty, one is generated (ULID).
	RunID string

	// Alpha is the smoothing weight blending new evidence into prior belief.
	Alpha float64

	// ConfidenceThreshold stops the run once any belief reaches it.
	ConfidenceThreshold float64

	// MaxSteps is the tool-invocation budget; MinSteps forces exploration
	// before a confidence stop is allowed.
	MaxSteps int
	MinSteps int

	// BasePrior is the initial belief of every hypothesis; hypotheses primed
	// for the scenario's goal start at PrimedPrior instead.
	BasePrior   float64
	PrimedPrior float64

	// Primed maps each optimization goal to the hypotheses it primes.
	// Nil means the built-in mapping.
	Primed map[scenario.Goal][]rules.HypothesisID

	// ToolTimeout bounds each diagnostic tool invocation.
	ToolTimeout time.Duration

	// Mode is passed through to tools ("keyword" or "campaign").
	Mode string
}

func defaultPrimed() map[scenario.Goal][]rules.HypothesisID {
	return map[scenario.Goal][]rules.HypothesisID{
		scenario.GoalIncreaseImpressions: {rules.HypBidTooLow, rules.HypKeywordsNarrow},
		scenario.GoalReduceACOS:          {rules.HypBroadWaste},
		scenario.GoalImproveConversion:   {rules.HypListingQuality},
	}
}

func (o *Options) applyDefaults() error {
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0,1), got %v", o.Alpha)
	}
	if o.ConfidenceThreshold == 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.ConfidenceThreshold <= 0 || o.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0,1], got %v", o.ConfidenceThreshold)
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.MaxSteps < 1 {
		return fmt.Errorf("max steps must be >= 1, got %d", o.MaxSteps)
	}
	if o.MinSteps == 0 {
		o.MinSteps = DefaultMinSteps
	}
	if o.MinSteps < 1 {
		return fmt.Errorf("min steps must be >= 1, got %d", o.MinSteps)
	}
	if o.BasePrior == 0 {
		o.BasePrior = DefaultBasePrior
	}
	if o.PrimedPrior == 0 {
		o.PrimedPrior = DefaultPrimedPrior
	}
	if o.BasePrior < 0 || o.BasePrior > 1 || o.PrimedPrior < 0 || o.PrimedPrior > 1 {
		return fmt.Errorf("priors must be in [0,1]")
	}
	if o.Primed == nil {
		o.Primed = defaultPrimed()
	}
	if o.ToolTimeout == 0 {
		o.ToolTimeout = DefaultToolTimeout
	}
	if o.ToolTimeout < 0 {
		return fmt.Errorf("tool timeout must be positive")
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	return nil
}

// optionsFile is the YAML form of Options.
type optionsFile struct {
	Alpha               *float64                                 `yaml:"alpha,omitempty"`
	ConfidenceThreshold *float64                                 `yaml:"confidence_threshold,omitempty"`
	MaxSteps            *int                                     `yaml:"max_steps,omitempty"`
	MinSteps            *int                                     `yaml:"min_steps,omitempty"`
	BasePrior           *float64                                 `yaml:"base_prior,omitempty"`
	PrimedPrior         *float64                                 `yaml:"primed_prior,omitempty"`
	Primed              map[scenario.Goal][]rules.HypothesisID   `yaml:"primed,omitempty"`
	ToolTimeoutMS       *int                                     `yaml:"tool_timeout_ms,omitempty"`
	Mode                string                                   `yaml:"mode,omitempty"`
}

// LoadOptionsFile reads a YAML options file. Absent fields keep their
// defaults; present fields override, including explicit zeros being invalid
// exactly as they are when set programmatically.
func LoadOptionsFile(path string) (Options, error) {
	var o Options
	b, err := os.ReadFile(path)
	if err != nil {
		return o, err
	}
	var f optionsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return o, fmt.Errorf("decode options %s: %w", path, err)
	}
	if f.Alpha != nil {
		o.Alpha = *f.Alpha
	}
	if f.ConfidenceThreshold != nil {
		o.ConfidenceThreshold = *f.ConfidenceThreshold
	}
	if f.MaxSteps != nil {
		o.MaxSteps = *f.MaxSteps
	}
	if f.MinSteps != nil {
		o.MinSteps = *f.MinSteps
	}
	if f.BasePrior != nil {
		o.BasePrior = *f.BasePrior
	}
	if f.PrimedPrior != nil {
		o.PrimedPrior = *f.PrimedPrior
	}
	if f.Primed != nil {
		o.Primed = f.Primed
	}
	if f.ToolTimeoutMS != nil {
		o.ToolTimeout = time.Duration(*f.ToolTimeoutMS) * time.Millisecond
	}
	if f.Mode != "" {
		o.Mode = f.Mode
	}
	return o, nil
}
