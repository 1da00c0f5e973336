package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/hexwar/internal/httpapi"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the batch persistence service",
		Long: `Run the HTTP persistence service backed by a SQLite database.

Endpoints:
  PUT /games/{game}/batches/{count}   create or update a batch
  GET /games/{game}/batches?from=N    list batches with count >= N

Documents are validated against the batch schema before they are stored.
The service stops on SIGINT or SIGTERM.

Examples:
  hexwar serve --db ./hexwar.db --addr 127.0.0.1:8080
  HEXWAR_DB=/var/lib/hexwar.db hexwar serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $HEXWAR_DB)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $HEXWAR_ADDR)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	st, err := store.Open(orDefault(opts.Database, cfg.DB))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	validator, err := persist.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile batch schema", err)
	}

	srv := httpapi.NewServer(st, validator)
	if err := srv.ListenAndServe(ctx, orDefault(opts.Addr, cfg.Addr)); err != nil {
		return WrapExitError(ExitCommandError, "persistence service failed", err)
	}
	return nil
}
