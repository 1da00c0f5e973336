package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/ir"
	"github.com/roach88/hexwar/internal/sequence"
	"github.com/roach88/hexwar/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Game     string
	Roster   string
}

// TraceBatch is one stored batch with its elements described.
type TraceBatch struct {
	store.BatchInfo
	Items []string `json:"items"`
}

// TraceResult holds the trace output for one game.
type TraceResult struct {
	Game    string       `json:"game"`
	Batches []TraceBatch `json:"batches"`
}

// GameSummary is one entry of the game listing printed without --game.
type GameSummary struct {
	Game      string `json:"game"`
	LastCount int64  `json:"last_count"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the stored batches of a game",
		Long: `Print every stored batch of a game in count order, with one line per
element.

Elements are shown as raw fields. With --roster they are decoded against
the roster's units and shown with their fragments. Without --game the
command lists the stored games.

Examples:
  hexwar trace --db ./hexwar.db
  hexwar trace --db ./hexwar.db --game ligny
  hexwar trace --db ./hexwar.db --game ligny --roster ./ligny.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(commandContext(cmd), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $HEXWAR_DB)")
	cmd.Flags().StringVar(&opts.Game, "game", "", "game to trace")
	cmd.Flags().StringVar(&opts.Roster, "roster", "", "YAML roster to decode elements against")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	st, err := store.Open(orDefault(opts.Database, cfg.DB))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	out := newFormatter(cmd, opts.RootOptions)
	if opts.Game == "" {
		games, err := listGames(ctx, st)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list games", err)
		}
		return out.Result(games, func(w io.Writer) { writeGamesText(w, games) })
	}

	var lk game.Lookup
	if opts.Roster != "" {
		g, err := game.LoadRoster(opts.Roster)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load roster", err)
		}
		lk = g.Lookup()
	}

	result, err := traceGame(ctx, st, opts.Game, lk)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to trace game %s", opts.Game), err)
	}
	return out.Result(result, func(w io.Writer) { writeTraceText(w, result) })
}

func listGames(ctx context.Context, st *store.Store) ([]GameSummary, error) {
	names, err := st.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	games := make([]GameSummary, 0, len(names))
	for _, name := range names {
		last, err := st.LastCount(ctx, name)
		if err != nil {
			return nil, err
		}
		games = append(games, GameSummary{Game: name, LastCount: last})
	}
	return games, nil
}

// traceGame describes every stored batch of the game. With a nil lk the
// elements are described from their raw fields.
func traceGame(ctx context.Context, st *store.Store, gameName string, lk game.Lookup) (TraceResult, error) {
	infos, err := st.BatchInfos(ctx, gameName)
	if err != nil {
		return TraceResult{}, err
	}
	batches, err := st.Batches(ctx, gameName, 1)
	if err != nil {
		return TraceResult{}, err
	}
	if len(infos) != len(batches) {
		return TraceResult{}, fmt.Errorf("batch listing changed while tracing")
	}

	reg := sequence.DefaultRegistry()
	result := TraceResult{Game: gameName, Batches: make([]TraceBatch, 0, len(infos))}
	for i, info := range infos {
		b := batches[i]
		items := make([]string, 0, len(b.Elements))
		for j, obj := range b.Elements {
			if lk == nil {
				items = append(items, describeRaw(obj))
				continue
			}
			e, err := reg.Decode(obj, lk)
			if err != nil {
				return TraceResult{}, fmt.Errorf("batch %d element %d: %w", b.Count, j, err)
			}
			items = append(items, sequence.Describe(e))
		}
		result.Batches = append(result.Batches, TraceBatch{BatchInfo: info, Items: items})
	}
	return result, nil
}

// describeRaw renders an encoded element as type{key=value ...}.
func describeRaw(obj ir.IRObject) string {
	kind, _ := obj.Str("type")

	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('{')
	first := true
	for _, key := range obj.SortedKeys() {
		if key == "type" {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%s=%v", key, ir.ToGo(obj[key]))
	}
	b.WriteByte('}')
	return b.String()
}

func writeGamesText(w io.Writer, games []GameSummary) {
	if len(games) == 0 {
		fmt.Fprintln(w, "No games found in database.")
		return
	}
	fmt.Fprintln(w, "Games:")
	for _, g := range games {
		fmt.Fprintf(w, "  %-30s last count %d\n", g.Game, g.LastCount)
	}
}

func writeTraceText(w io.Writer, r TraceResult) {
	if len(r.Batches) == 0 {
		fmt.Fprintf(w, "No batches found for game: %s\n", r.Game)
		return
	}

	fmt.Fprintf(w, "Game: %s\n", r.Game)
	fmt.Fprintf(w, "Batches: %d\n", len(r.Batches))
	for _, b := range r.Batches {
		fmt.Fprintf(w, "\n[%d] v%d  %d element(s)  hash=%s  submission=%s\n",
			b.Count, b.Version, b.Elements, shortHash(b.Hash), b.SubmissionID)
		for i, item := range b.Items {
			fmt.Fprintf(w, "  %3d  %s\n", i, item)
		}
	}
}

func shortHash(h string) string {
	const n = 12
	if len(h) <= n {
		return h
	}
	return h[:n]
}
