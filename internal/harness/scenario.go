package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/sequence"
)

// Scenario describes one recorded game session and what a remote
// participant must see after replaying it.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Roster is the starting position shared by both participants.
	Roster game.Roster `yaml:"roster"`

	// Batches are committed in order by the recording participant.
	Batches []BatchSpec `yaml:"batches"`

	// Delivery is the order the service returns batches in: "ascending"
	// (the default) or "reversed".
	Delivery string `yaml:"delivery,omitempty"`

	// Scale and Overhead configure the replay scheduler. Zero Scale and a
	// nil Overhead keep the scheduler defaults.
	Scale    int64  `yaml:"scale,omitempty"`
	Overhead *int64 `yaml:"overhead,omitempty"`

	// Assertions validate the remote participant's trace and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// BatchSpec is the steps recorded between two commits.
type BatchSpec struct {
	Steps []Step `yaml:"steps"`

	// FailSubmits makes the first N submissions of this batch fail. Each
	// retry must resend the identical document.
	FailSubmits int `yaml:"fail_submits,omitempty"`
}

// Step is one player action. Type is an element type tag, or StepUndo to
// take back the previous step of the batch.
//
// Unit state fields are changes applied on top of the unit's current state;
// omitted fields keep their value.
type Step struct {
	Type string `yaml:"type"`
	Unit string `yaml:"unit,omitempty"`

	Col      *int   `yaml:"col,omitempty"`
	Row      *int   `yaml:"row,omitempty"`
	Stacking string `yaml:"stacking,omitempty"`
	HexAngle *int   `yaml:"hexAngle,omitempty"`
	Angle    *int   `yaml:"angle,omitempty"`
	Order    string `yaml:"order,omitempty"`
	Dice     []int  `yaml:"dice,omitempty"`

	Steps      *int   `yaml:"steps,omitempty"`
	Cohesion   string `yaml:"cohesion,omitempty"`
	Tiredness  string `yaml:"tiredness,omitempty"`
	Ammunition string `yaml:"ammunition,omitempty"`
	Charging   string `yaml:"charging,omitempty"`
	Engaging   *bool  `yaml:"engaging,omitempty"`
	OrderGiven *bool  `yaml:"orderGiven,omitempty"`
	Played     *bool  `yaml:"played,omitempty"`
}

// StepUndo takes back the previous step.
const StepUndo = "undo"

// Delivery orders.
const (
	DeliveryAscending = "ascending"
	DeliveryReversed  = "reversed"
)

// Assertion validates the replay trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_unit": unit fields after replay (subset match on Expect)
	// - "final_turn": turn counter after replay
	// - "final_count": sequence count after replay
	// - "trace_order": element types activate in the given order
	// - "trace_count": number of events of Kind (and element Element, if set)
	Type string `yaml:"type"`

	Unit   string         `yaml:"unit,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`

	Turn  int   `yaml:"turn,omitempty"`
	Count int64 `yaml:"count,omitempty"`

	Elements []string `yaml:"elements,omitempty"`
	Element  string   `yaml:"element,omitempty"`
	Kind     string   `yaml:"kind,omitempty"`
}

// Assertion types.
const (
	AssertFinalUnit  = "final_unit"
	AssertFinalTurn  = "final_turn"
	AssertFinalCount = "final_count"
	AssertTraceOrder = "trace_order"
	AssertTraceCount = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Roster.Game == "" {
		return fmt.Errorf("roster.game is required")
	}
	if len(s.Batches) == 0 {
		return fmt.Errorf("batches list is required and must be non-empty")
	}
	switch s.Delivery {
	case "", DeliveryAscending, DeliveryReversed:
	default:
		return fmt.Errorf("unknown delivery %q", s.Delivery)
	}
	if s.Scale < 0 {
		return fmt.Errorf("scale must be non-negative")
	}
	if s.Overhead != nil && *s.Overhead < 0 {
		return fmt.Errorf("overhead must be non-negative")
	}

	known := sequence.DefaultRegistry()
	for i, b := range s.Batches {
		if b.FailSubmits < 0 {
			return fmt.Errorf("batches[%d]: fail_submits must be non-negative", i)
		}
		for j, step := range b.Steps {
			if err := validateStep(step, known); err != nil {
				return fmt.Errorf("batches[%d].steps[%d]: %w", i, j, err)
			}
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step, reg *sequence.Registry) error {
	if step.Type == StepUndo {
		return nil
	}
	if _, err := reg.New(step.Type); err != nil {
		return fmt.Errorf("unknown step type %q", step.Type)
	}
	if step.Type != sequence.TypeNextTurn && step.Unit == "" {
		return fmt.Errorf("%s: unit is required", step.Type)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalUnit:
		if a.Unit == "" {
			return fmt.Errorf("assertions[%d]: unit is required for final_unit", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_unit", index)
		}
	case AssertFinalTurn, AssertFinalCount:
	case AssertTraceOrder:
		if len(a.Elements) == 0 {
			return fmt.Errorf("assertions[%d]: elements list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
