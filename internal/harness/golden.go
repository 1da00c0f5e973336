package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hexwar/internal/ir"
)

// TraceSnapshot captures what a scenario produced: the stored batches, the
// remote replay trace and the final counters.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Batches      []BatchRecord `json:"batches"`
	Trace        []TraceEvent  `json:"trace"`
	Count        int64         `json:"count"`
	Turn         int           `json:"turn"`
	Ticks        int64         `json:"ticks"`
}

// NewTraceSnapshot builds the snapshot of result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		Batches:      result.Batches,
		Trace:        result.Trace,
		Count:        result.Count,
		Turn:         result.Turn,
		Ticks:        result.Ticks,
	}
}

// toCanonicalMap converts the snapshot to plain maps for canonical JSON
// serialization. ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	batches := make([]any, len(s.Batches))
	for i, b := range s.Batches {
		batches[i] = map[string]any{
			"count":    b.Count,
			"hash":     b.Hash,
			"elements": b.Elements,
		}
	}

	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = map[string]any{
			"tick":  event.Tick,
			"kind":  event.Kind,
			"label": event.Label,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"batches":       batches,
		"trace":         trace,
		"count":         s.Count,
		"turn":          s.Turn,
		"ticks":         s.Ticks,
	}
}

// Marshal returns the snapshot as canonical JSON.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against the golden
// file for scenarioName without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
