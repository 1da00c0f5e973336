package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/hexwar/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hexwar CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hexwar",
		Short: "hexwar - turn-based wargame sequence engine",
		Long: `Record, persist and replay the move sequences of a hex-map wargame.

Every state change a player makes is recorded as a sequence element and
committed in numbered batches. Batches are stored by the persistence
service and replayed by remote participants as a timed animation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))

	return cmd
}

// Config returns the environment configuration, loading it on first use.
func (o *RootOptions) Config() (config.Config, error) {
	if o.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
		}
		o.cfg = &cfg
	}
	return *o.cfg, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// orDefault returns flag when it was set, otherwise fallback.
func orDefault[T comparable](flag, fallback T) T {
	var zero T
	if flag != zero {
		return flag
	}
	return fallback
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
