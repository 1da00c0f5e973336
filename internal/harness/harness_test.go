package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/game"
)

func intp(n int) *int       { return &n }
func int64p(n int64) *int64 { return &n }
func boolp(b bool) *bool    { return &b }

func skirmishRoster() game.Roster {
	return game.Roster{
		Game: "skirmish",
		Map:  game.RosterMap{Cols: 6, Rows: 6},
		Units: []game.RosterUnit{
			{Name: "Dragoons", Steps: 3, Col: 0, Row: 0},
			{Name: "Line", Steps: 5, Col: 3, Row: 3, Angle: 120},
		},
	}
}

func TestRun_SingleMove(t *testing.T) {
	scenario := &Scenario{
		Name:        "single_move",
		Description: "One move in one batch",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{Steps: []Step{{Type: "move", Unit: "Dragoons", Col: intp(1), Row: intp(0)}}},
		},
		Assertions: []Assertion{
			{Type: AssertFinalUnit, Unit: "Dragoons", Expect: map[string]any{"col": 1, "row": 0}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	// move: 500/10 = 50 ticks
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "activated", result.Trace[0].Kind)
	assert.Equal(t, int64(0), result.Trace[0].Tick)
	assert.Contains(t, result.Trace[0].Label, "move{unit=Dragoons ")
	assert.Contains(t, result.Trace[0].Label, "hex=(1,0) stacking=T}")
	assert.Equal(t, "finished", result.Trace[1].Kind)
	assert.Equal(t, int64(50), result.Trace[1].Tick)
	assert.Equal(t, int64(50), result.Ticks)
	assert.Equal(t, int64(1), result.Count)
	assert.Equal(t, 1, result.Submits)

	require.Len(t, result.Batches, 1)
	assert.Equal(t, int64(1), result.Batches[0].Count)
	assert.Equal(t, 1, result.Batches[0].Elements)
	assert.Len(t, result.Batches[0].Hash, 64)
}

func TestRun_ChainedElementsPlayBackToBack(t *testing.T) {
	scenario := &Scenario{
		Name:        "chained",
		Description: "Two units acting in one batch",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{Steps: []Step{
				{Type: "rotate", Unit: "Line", Angle: intp(180)},
				{Type: "state", Unit: "Dragoons", Played: boolp(true)},
				{Type: "reorient", Unit: "Dragoons", Angle: intp(60)},
			}},
		},
		Assertions: []Assertion{{Type: AssertFinalCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	// rotate 0..30, state 32..32, reorient 34..44
	var got []int64
	var kinds []string
	for _, ev := range result.Trace {
		got = append(got, ev.Tick)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []int64{0, 30, 32, 32, 34, 44}, got)
	assert.Equal(t, []string{"activated", "finished", "activated", "finished", "activated", "finished"}, kinds)
	assert.Equal(t, int64(44), result.Ticks)
}

func TestRun_ScaleAndOverhead(t *testing.T) {
	scenario := &Scenario{
		Name:        "scaled",
		Description: "Custom scheduler settings",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{Steps: []Step{
				{Type: "move", Unit: "Dragoons", Col: intp(1), Row: intp(1)},
				{Type: "move", Unit: "Dragoons", Col: intp(2), Row: intp(1)},
			}},
		},
		Scale:      100,
		Overhead:   int64p(0),
		Assertions: []Assertion{{Type: AssertFinalCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 4)
	assert.Equal(t, int64(5), result.Trace[1].Tick)
	assert.Equal(t, "finished", result.Trace[1].Kind)
	assert.Equal(t, int64(5), result.Trace[2].Tick)
	assert.Equal(t, "activated", result.Trace[2].Kind)
	assert.Equal(t, int64(10), result.Ticks)
}

func TestRun_NextTurnClearsPlayed(t *testing.T) {
	scenario := &Scenario{
		Name:        "next_turn",
		Description: "Played flags reset at the end of the turn",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{Steps: []Step{{Type: "state", Unit: "Line", Played: boolp(true)}}},
			{Steps: []Step{{Type: "next-turn"}}},
		},
		Assertions: []Assertion{
			{Type: AssertFinalUnit, Unit: "Line", Expect: map[string]any{"played": false}},
			{Type: AssertFinalTurn, Turn: 1},
			{Type: AssertFinalCount, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Turn)
}

func TestRun_FailedSubmissionsAreRetried(t *testing.T) {
	scenario := &Scenario{
		Name:        "retry",
		Description: "Two failed submissions before the batch is stored",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{
				FailSubmits: 2,
				Steps:       []Step{{Type: "give-order", Unit: "Line", Order: "D"}},
			},
			{Steps: []Step{{Type: "rotate", Unit: "Line", Angle: intp(0)}}},
		},
		Assertions: []Assertion{
			{Type: AssertFinalUnit, Unit: "Line", Expect: map[string]any{"order": "D", "angle": 0}},
			{Type: AssertFinalCount, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 4, result.Submits)

	// The retried batch keeps its count; nothing is skipped.
	require.Len(t, result.Batches, 2)
	assert.Equal(t, int64(1), result.Batches[0].Count)
	assert.Equal(t, int64(2), result.Batches[1].Count)
}

func TestRun_ReversedDeliveryMatchesAscending(t *testing.T) {
	build := func(delivery string) *Scenario {
		return &Scenario{
			Name:        "delivery_" + delivery,
			Description: "Delivery order does not change the replay",
			Roster:      skirmishRoster(),
			Batches: []BatchSpec{
				{Steps: []Step{{Type: "move", Unit: "Dragoons", Col: intp(1), Row: intp(0)}}},
				{Steps: []Step{{Type: "move", Unit: "Dragoons", Col: intp(2), Row: intp(0)}}},
				{Steps: []Step{{Type: "move", Unit: "Dragoons", Col: intp(3), Row: intp(0)}}},
			},
			Delivery:   delivery,
			Assertions: []Assertion{{Type: AssertFinalUnit, Unit: "Dragoons", Expect: map[string]any{"col": 3}}},
		}
	}

	asc, err := Run(build(DeliveryAscending))
	require.NoError(t, err)
	rev, err := Run(build(DeliveryReversed))
	require.NoError(t, err)

	assert.True(t, asc.Pass, "errors: %v", asc.Errors)
	assert.True(t, rev.Pass, "errors: %v", rev.Errors)
	assert.Equal(t, asc.Trace, rev.Trace)
	assert.Equal(t, asc.Batches, rev.Batches)
}

func TestRun_UndoDropsStep(t *testing.T) {
	scenario := &Scenario{
		Name:        "undo",
		Description: "An undone step is not recorded",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{Steps: []Step{
				{Type: "move", Unit: "Dragoons", Col: intp(5), Row: intp(5)},
				{Type: StepUndo},
				{Type: "rotate", Unit: "Dragoons", Angle: intp(240)},
			}},
		},
		Assertions: []Assertion{
			{Type: AssertFinalUnit, Unit: "Dragoons", Expect: map[string]any{"col": 0, "row": 0, "angle": 240}},
			{Type: AssertTraceCount, Kind: "activated", Element: "move", Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Batches, 1)
	assert.Equal(t, 1, result.Batches[0].Elements)
}

func TestRun_UndoWithNothingToUndo(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_undo",
		Description: "Undo at the start of a batch",
		Roster:      skirmishRoster(),
		Batches:     []BatchSpec{{Steps: []Step{{Type: StepUndo}}}},
		Assertions:  []Assertion{{Type: AssertFinalCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to undo")
}

func TestRun_UnknownUnit(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_unit",
		Description: "A step naming a unit that is not on the roster",
		Roster:      skirmishRoster(),
		Batches:     []BatchSpec{{Steps: []Step{{Type: "state", Unit: "Ghosts"}}}},
		Assertions:  []Assertion{{Type: AssertFinalCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown unit "Ghosts"`)
}

func TestRun_DiceRequired(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_dice",
		Description: "Combat without dice",
		Roster:      skirmishRoster(),
		Batches:     []BatchSpec{{Steps: []Step{{Type: "combat", Unit: "Line"}}}},
		Assertions:  []Assertion{{Type: AssertFinalCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dice are required")
}

func TestRun_MoveOffMapFailsReplay(t *testing.T) {
	scenario := &Scenario{
		Name:        "off_map",
		Description: "A hex outside the map cannot be resolved on load",
		Roster:      skirmishRoster(),
		Batches: []BatchSpec{
			{Steps: []Step{{Type: "move", Unit: "Dragoons", Col: intp(9), Row: intp(9)}}},
		},
		Assertions: []Assertion{{Type: AssertFinalCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to replay batches")
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Assertion that does not hold",
		Roster:      skirmishRoster(),
		Batches:     []BatchSpec{{Steps: []Step{{Type: "next-turn"}}}},
		Assertions:  []Assertion{{Type: AssertFinalTurn, Turn: 3}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "final_turn")
	assert.Contains(t, result.Errors[0], "turn 1")
}

func TestRun_ScenarioFiles(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestConverge(t *testing.T) {
	roster := skirmishRoster()
	local, err := roster.Build()
	require.NoError(t, err)
	remote, err := roster.Build()
	require.NoError(t, err)

	assert.Empty(t, Converge(local, remote))

	u, _ := local.Unit("Line")
	u.SetAngle(300)
	local.NextTurn()

	diffs := Converge(local, remote)
	assert.Equal(t, []string{
		"turn diverged: local 1, remote 0",
		"unit Line diverged on angle: local 300, remote 120",
	}, diffs)
}

func TestConverge_MissingUnit(t *testing.T) {
	roster := skirmishRoster()
	local, err := roster.Build()
	require.NoError(t, err)

	roster.Units = roster.Units[:1]
	remote, err := roster.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"unit Line missing on remote"}, Converge(local, remote))
}
