package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/sequence"
)

// Validation error codes reported per file.
const (
	CodeReadError       = "READ_ERROR"
	CodeInvalidBatch    = "INVALID_BATCH"
	CodeVersionMismatch = "VERSION_MISMATCH"
	CodeWrongGame       = "WRONG_GAME"
	CodeDecodeError     = "DECODE_ERROR"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Roster string
}

// FileResult is the validation outcome of one batch document.
type FileResult struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Game     string `json:"game,omitempty"`
	Count    int64  `json:"count,omitempty"`
	Elements int    `json:"elements"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ValidationResult holds the results for every file.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate batch documents",
		Long: `Validate batch documents against the batch schema and the element
registry.

Files ending in .msgpack or .mpk are read as MessagePack, everything else
as JSON. Every element's type must be registered. With --roster each
element is fully decoded and its unit and hex references must resolve
against the roster. Decoding stops at the first bad element of a file.

Exit codes:
  0 - All documents valid
  1 - At least one document invalid
  2 - Command error (roster unreadable)

Examples:
  hexwar validate batch-1.json batch-2.json
  hexwar validate --roster ./ligny.yaml batches/*.msgpack`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Roster, "roster", "", "YAML roster to resolve element references against")

	return cmd
}

func runValidate(opts *ValidateOptions, files []string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	validator, err := persist.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile batch schema", err)
	}

	var g *game.Game
	if opts.Roster != "" {
		if g, err = game.LoadRoster(opts.Roster); err != nil {
			return WrapExitError(ExitCommandError, "failed to load roster", err)
		}
	}

	reg := sequence.DefaultRegistry()
	result := ValidationResult{Valid: true, Files: make([]FileResult, 0, len(files))}
	for _, path := range files {
		fr := validateFile(path, validator, reg, g)
		out.VerboseLog("%s: valid=%t", path, fr.Valid)
		if !fr.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}

	if err := out.Result(result, func(w io.Writer) { writeValidateText(w, result) }); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// validateFile checks one document. g may be nil, in which case element
// references are not resolved.
func validateFile(path string, v *persist.Validator, reg *sequence.Registry, g *game.Game) FileResult {
	fr := FileResult{File: path}
	fail := func(code string, err error) FileResult {
		fr.Code = code
		fr.Message = err.Error()
		return fr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(CodeReadError, err)
	}

	codec := codecForFile(path)
	b, err := codec.Unmarshal(data)
	if err != nil {
		return fail(CodeInvalidBatch, err)
	}
	fr.Game = b.Game
	fr.Count = b.Count
	fr.Elements = len(b.Elements)

	// Unknown tags are reported by name before the schema rejects them.
	for i, obj := range b.Elements {
		kind, _ := obj.Str("type")
		if _, err := reg.New(kind); err != nil {
			return fail(decodeCode(err), fmt.Errorf("element %d: %w", i, err))
		}
	}

	if codec.ContentType() == persist.ContentTypeJSON {
		err = v.Validate(data)
	} else {
		err = v.ValidateBatch(b)
	}
	if err != nil {
		return fail(CodeInvalidBatch, err)
	}

	if err := b.CheckVersion(); err != nil {
		return fail(CodeVersionMismatch, err)
	}

	if g != nil {
		if b.Game != g.Name() {
			return fail(CodeWrongGame, fmt.Errorf("batch is for game %q, roster is %q", b.Game, g.Name()))
		}
		if _, err := reg.DecodeAll(b.Elements, g.Lookup()); err != nil {
			return fail(decodeCode(err), err)
		}
	}

	fr.Valid = true
	return fr
}

func codecForFile(path string) persist.Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return persist.MsgpackCodec{}
	default:
		return persist.JSONCodec{}
	}
}

func decodeCode(err error) string {
	var de *sequence.DecodeError
	if errors.As(err, &de) {
		return string(de.Code)
	}
	return CodeDecodeError
}

func writeValidateText(w io.Writer, r ValidationResult) {
	valid := 0
	for _, f := range r.Files {
		if f.Valid {
			valid++
			fmt.Fprintf(w, "ok    %s (game %s, count %d, %d element(s))\n", f.File, f.Game, f.Count, f.Elements)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s [%s] %s\n", f.File, f.Code, f.Message)
	}
	fmt.Fprintf(w, "%d of %d document(s) valid\n", valid, len(r.Files))
}
