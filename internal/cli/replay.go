package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/sequence"
	"github.com/roach88/hexwar/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Game     string
	Roster   string
	From     int64
	Scale    int64
	Overhead int64
}

// UnitReport is one unit's state after a replay.
type UnitReport struct {
	Name       string `json:"name"`
	Col        int    `json:"col"`
	Row        int    `json:"row"`
	Stacking   string `json:"stacking"`
	Angle      int    `json:"angle"`
	Order      string `json:"order"`
	Steps      int    `json:"steps"`
	Cohesion   string `json:"cohesion"`
	Tiredness  string `json:"tiredness"`
	Ammunition string `json:"ammunition"`
	Charging   string `json:"charging"`
	Engaging   bool   `json:"engaging"`
	OrderGiven bool   `json:"orderGiven"`
	Played     bool   `json:"played"`
}

// EventReport is one scheduler event, reported with --verbose.
type EventReport struct {
	Tick  int64  `json:"tick"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// ReplayResult holds the outcome of a replay.
type ReplayResult struct {
	Game     string        `json:"game"`
	From     int64         `json:"from"`
	Batches  int           `json:"batches"`
	Count    int64         `json:"count"`
	Turn     int           `json:"turn"`
	Ticks    int64         `json:"ticks"`
	Complete bool          `json:"complete"`
	Units    []UnitReport  `json:"units"`
	Events   []EventReport `json:"events,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored batches onto a roster",
		Long: `Load the stored batches of a game, replay them through the animation
scheduler onto the starting position described by a YAML roster, and print
the final unit states.

With --from N the roster is taken to be the position after batch N-1 and
only batches from N onward are replayed.

Exit codes:
  0 - Replay completed
  1 - Replay did not finish within the tick budget
  2 - Command error (database not found, roster invalid, batch unresolvable)

Examples:
  hexwar replay --db ./hexwar.db --roster ./ligny.yaml
  hexwar replay --db ./hexwar.db --roster ./ligny.yaml --from 12 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(commandContext(cmd), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $HEXWAR_DB)")
	cmd.Flags().StringVar(&opts.Roster, "roster", "", "path to YAML roster (required)")
	_ = cmd.MarkFlagRequired("roster")
	cmd.Flags().StringVar(&opts.Game, "game", "", "expected game name (defaults to the roster's)")
	cmd.Flags().Int64Var(&opts.From, "from", 1, "first batch count to replay")
	cmd.Flags().Int64Var(&opts.Scale, "scale", 0, "delay-to-tick divisor (default $HEXWAR_TICK_SCALE)")
	cmd.Flags().Int64Var(&opts.Overhead, "overhead", -1, "ticks between elements (default $HEXWAR_TICK_OVERHEAD)")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if opts.From < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--from must be at least 1, got %d", opts.From))
	}

	g, err := game.LoadRoster(opts.Roster)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load roster", err)
	}
	if opts.Game != "" && opts.Game != g.Name() {
		return NewExitError(ExitCommandError, fmt.Sprintf("roster is for game %q, not %q", g.Name(), opts.Game))
	}

	st, err := store.Open(orDefault(opts.Database, cfg.DB))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	overhead := cfg.TickOverhead
	if opts.Overhead >= 0 {
		overhead = opts.Overhead
	}

	result := ReplayResult{Game: g.Name(), From: opts.From}
	schedOpts := []anim.Option{
		anim.WithScale(orDefault(opts.Scale, cfg.TickScale)),
		anim.WithOverhead(overhead),
	}
	if opts.Verbose {
		schedOpts = append(schedOpts, anim.WithObserver(func(ev anim.Event) {
			result.Events = append(result.Events, EventReport{Tick: ev.Tick, Kind: ev.Kind.String(), Label: ev.Label})
		}))
	}
	sched := anim.NewScheduler(schedOpts...)

	seq := sequence.New(g, sequence.WithCount(opts.From-1))
	adapter := persist.NewAdapter(st, sequence.DefaultRegistry())
	n, err := adapter.Load(ctx, seq)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load batches", err)
	}

	end := seq.Replay(sched, sched.Now(), func() { result.Complete = true })
	sched.Drain(end - sched.Now() + 1)

	result.Batches = n
	result.Count = seq.Count()
	result.Turn = g.Turn()
	result.Ticks = sched.Now()
	result.Units = unitReports(g)

	if err := newFormatter(cmd, opts.RootOptions).Result(result, func(w io.Writer) {
		writeReplayText(w, result)
	}); err != nil {
		return err
	}
	if !result.Complete {
		return NewExitError(ExitFailure, fmt.Sprintf("replay did not finish by tick %d", result.Ticks))
	}
	return nil
}

func unitReports(g *game.Game) []UnitReport {
	units := g.Units()
	reports := make([]UnitReport, 0, len(units))
	for _, u := range units {
		st := u.State()
		reports = append(reports, UnitReport{
			Name:       u.Name(),
			Col:        u.Hex().Col,
			Row:        u.Hex().Row,
			Stacking:   u.Stacking().Code(),
			Angle:      u.Angle(),
			Order:      u.Order().String(),
			Steps:      st.Steps,
			Cohesion:   st.Cohesion.Code(),
			Tiredness:  st.Tiredness.Code(),
			Ammunition: st.Munitions.Code(),
			Charging:   st.Charging.Code(),
			Engaging:   st.Engaging,
			OrderGiven: st.OrderGiven,
			Played:     st.Played,
		})
	}
	return reports
}

func writeReplayText(w io.Writer, r ReplayResult) {
	fmt.Fprintf(w, "Game: %s\n", r.Game)
	fmt.Fprintf(w, "Batches replayed: %d (from %d, now at count %d)\n", r.Batches, r.From, r.Count)
	fmt.Fprintf(w, "Turn: %d\n", r.Turn)
	fmt.Fprintf(w, "Ticks: %d\n", r.Ticks)

	if len(r.Events) > 0 {
		fmt.Fprintln(w, "\nEvents:")
		for _, ev := range r.Events {
			fmt.Fprintf(w, "  %6d  %-9s  %s\n", ev.Tick, ev.Kind, ev.Label)
		}
	}

	fmt.Fprintln(w, "\nUnits:")
	if len(r.Units) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, u := range r.Units {
		fmt.Fprintf(w, "  %-20s (%d,%d) %s angle=%d order=%s steps=%d cohesion=%s tiredness=%s ammunition=%s charging=%s engaging=%t orderGiven=%t played=%t\n",
			u.Name, u.Col, u.Row, u.Stacking, u.Angle, u.Order, u.Steps,
			u.Cohesion, u.Tiredness, u.Ammunition, u.Charging,
			u.Engaging, u.OrderGiven, u.Played)
	}
}
