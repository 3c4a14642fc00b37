package cli

import (
	"github.com/spf13/cobra"

	"github.com/White-Wind-LLC/exposed-filters/filter"
)

// RoundtripOptions holds flags for the roundtrip command.
type RoundtripOptions struct {
	*RootOptions
	MaxDepth int
	Strict   bool
}

// NewRoundtripCommand creates the roundtrip command.
func NewRoundtripCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoundtripOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Decode a request and re-encode its canonical wire form",
		Long: `Roundtrip decodes a wire-JSON filter request and re-encodes the
normalized tree, printing the canonical wire form a well-behaved producer
would have sent. The re-encoded body decodes to the same tree.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundtrip(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", DefaultMaxDepth, "maximum node nesting (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject bodies carrying both filters and children at one level")

	return cmd
}

func runRoundtrip(opts *RoundtripOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger(cmd)

	decodeOpts := &DecodeOptions{RootOptions: opts.RootOptions, MaxDepth: opts.MaxDepth, Strict: opts.Strict}
	req, err := decodeInput(decodeOpts, path, cmd)
	if err != nil {
		return err
	}
	log.Debug().Bool("empty", req.IsEmpty()).Msg("request decoded")

	var encoded []byte
	if req.IsEmpty() {
		encoded = []byte("{}")
	} else {
		encoded, err = filter.EncodeIndent(req.Root)
		if err != nil {
			return WrapExitError(ExitCommandError, "encoding filter request", err)
		}
	}

	formatter.Raw(encoded)
	return nil
}
