package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/httpapi"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/remote"
	"github.com/roach88/hexwar/internal/sequence"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Server string
	Game   string
	Roster string
	Poll   time.Duration
	Codec  string
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Follow a game on the persistence service",
		Long: `Follow a game as a remote participant: poll the persistence service for
new batches and replay them onto the roster's starting position.

A new poll is issued only after the previous replay has finished. The
command prints one line per replayed window and stops on SIGINT or
SIGTERM.

Examples:
  hexwar sync --server http://127.0.0.1:8080 --roster ./ligny.yaml
  hexwar sync --roster ./ligny.yaml --poll 500ms --codec msgpack`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSync(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Server, "server", "", "persistence service URL (default $HEXWAR_SERVER_URL)")
	cmd.Flags().StringVar(&opts.Roster, "roster", "", "path to YAML roster (required)")
	_ = cmd.MarkFlagRequired("roster")
	cmd.Flags().StringVar(&opts.Game, "game", "", "expected game name (defaults to the roster's)")
	cmd.Flags().DurationVar(&opts.Poll, "poll", 0, "poll interval (default $HEXWAR_POLL_INTERVAL)")
	cmd.Flags().StringVar(&opts.Codec, "codec", "", "wire codec, json or msgpack (default $HEXWAR_CODEC)")

	return cmd
}

func runSync(ctx context.Context, opts *SyncOptions, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	codec, err := persist.CodecByName(orDefault(opts.Codec, cfg.Codec))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid codec", err)
	}

	g, err := game.LoadRoster(opts.Roster)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load roster", err)
	}
	if opts.Game != "" && opts.Game != g.Name() {
		return NewExitError(ExitCommandError, fmt.Sprintf("roster is for game %q, not %q", g.Name(), opts.Game))
	}

	participant, err := uuid.NewV7()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate participant id", err)
	}

	server := orDefault(opts.Server, cfg.ServerURL)
	client := httpapi.NewClient(server, httpapi.WithCodec(codec))
	adapter := persist.NewAdapter(client, sequence.DefaultRegistry())
	seq := sequence.New(g)

	w := cmd.OutOrStdout()
	poller := remote.New(adapter, seq,
		remote.WithInterval(orDefault(opts.Poll, cfg.PollInterval)),
		remote.WithFrameInterval(cfg.FrameInterval),
		remote.WithScheduler(anim.NewScheduler(
			anim.WithScale(cfg.TickScale),
			anim.WithOverhead(cfg.TickOverhead),
		)),
		remote.WithOnReplayed(func(count int64) {
			fmt.Fprintf(w, "%s count %d turn %d\n", g.Name(), count, g.Turn())
		}),
	)

	slog.Info("following game",
		"game", g.Name(),
		"server", server,
		"codec", codec.ContentType(),
		"participant", participant.String(),
	)

	err = poller.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "sync failed", err)
	}
	return nil
}
