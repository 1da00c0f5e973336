package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/hexwar/internal/game"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %6d %-9s %s\n", event.Tick, event.Kind, event.Label)
		}
	}
	return buf.String()
}

// UnitFields returns the observable state of u keyed by its wire field
// names, plus col, row, angle and order.
func UnitFields(u *game.Unit) map[string]any {
	st := u.State()
	return map[string]any{
		"col":        u.Hex().Col,
		"row":        u.Hex().Row,
		"stacking":   u.Stacking().Code(),
		"angle":      u.Angle(),
		"order":      u.Order().Code(),
		"steps":      st.Steps,
		"cohesion":   st.Cohesion.Code(),
		"tiredness":  st.Tiredness.Code(),
		"ammunition": st.Munitions.Code(),
		"charging":   st.Charging.Code(),
		"engaging":   st.Engaging,
		"orderGiven": st.OrderGiven,
		"played":     st.Played,
	}
}

// elementType extracts the type tag from an animation label.
func elementType(label string) string {
	if i := strings.IndexByte(label, '{'); i >= 0 {
		return label[:i]
	}
	return label
}

// assertFinalUnit checks the named unit's fields (subset match).
func assertFinalUnit(g *game.Game, assertion Assertion) error {
	u, ok := g.Unit(assertion.Unit)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalUnit,
			Expected: fmt.Sprintf("unit %s", assertion.Unit),
			Actual:   "no such unit",
		}
	}

	actual := UnitFields(u)
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var mismatches []string
	for _, k := range keys {
		got, exists := actual[k]
		if !exists {
			mismatches = append(mismatches, fmt.Sprintf("%s: unknown field", k))
			continue
		}
		if want := assertion.Expect[k]; !reflect.DeepEqual(got, want) {
			mismatches = append(mismatches, fmt.Sprintf("%s=%v (want %v)", k, got, want))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalUnit,
		Expected: fmt.Sprintf("unit %s with %v", assertion.Unit, assertion.Expect),
		Actual:   strings.Join(mismatches, ", "),
	}
}

// assertTraceOrder checks that the listed element types activate in order.
// Other activations may come in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Elements) {
			break
		}
		if event.Kind == "activated" && elementType(event.Label) == assertion.Elements[next] {
			next++
		}
	}
	if next == len(assertion.Elements) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("elements activated in order: %v", assertion.Elements),
		Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(assertion.Elements), assertion.Elements[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks the number of events of a kind, optionally for
// one element type only.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := int64(0)
	for _, event := range trace {
		if event.Kind != assertion.Kind {
			continue
		}
		if assertion.Element != "" && elementType(event.Label) != assertion.Element {
			continue
		}
		count++
	}
	if count == assertion.Count {
		return nil
	}

	what := assertion.Kind
	if assertion.Element != "" {
		what = assertion.Element + " " + what
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s event(s)", assertion.Count, what),
		Actual:   fmt.Sprintf("%d", count),
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result and the
// remote participant's game.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, remote *game.Game) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalUnit:
			err = assertFinalUnit(remote, assertion)
		case AssertFinalTurn:
			if result.Turn != assertion.Turn {
				err = &AssertionError{
					Type:     AssertFinalTurn,
					Expected: fmt.Sprintf("turn %d", assertion.Turn),
					Actual:   fmt.Sprintf("turn %d", result.Turn),
				}
			}
		case AssertFinalCount:
			if result.Count != assertion.Count {
				err = &AssertionError{
					Type:     AssertFinalCount,
					Expected: fmt.Sprintf("count %d", assertion.Count),
					Actual:   fmt.Sprintf("count %d", result.Count),
				}
			}
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
