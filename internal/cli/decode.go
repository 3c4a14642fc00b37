package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/White-Wind-LLC/exposed-filters/filter"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	MaxDepth int
	Strict   bool
}

// DefaultMaxDepth bounds node nesting for CLI decoding. The library default
// is unlimited; the CLI always deals with untrusted input, so it caps.
const DefaultMaxDepth = 64

// DecodeResult is the JSON output shape of the decode command.
type DecodeResult struct {
	RequestID string `json:"request_id"`
	Empty     bool   `json:"empty"`
	TreeID    string `json:"tree_id,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a wire-JSON filter request into its canonical tree",
		Long: `Decode parses a wire-JSON filter request body, normalizes it, and
prints the canonical tree form together with its content-addressed id.
Use "-" to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", DefaultMaxDepth, "maximum node nesting (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject bodies carrying both filters and children at one level")

	return cmd
}

func runDecode(opts *DecodeOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger(cmd)
	requestID := uuid.NewString()
	log.Debug().Str("request_id", requestID).Str("input", path).Msg("decoding filter request")

	req, err := decodeInput(opts, path, cmd)
	if err != nil {
		return err
	}

	result := DecodeResult{RequestID: requestID, Empty: req.IsEmpty()}
	if !req.IsEmpty() {
		canonical, err := filter.MarshalCanonical(req.Root)
		if err != nil {
			return WrapExitError(ExitCommandError, "canonical form", err)
		}
		treeID, err := filter.TreeID(req.Root)
		if err != nil {
			return WrapExitError(ExitCommandError, "tree id", err)
		}
		result.Canonical = string(canonical)
		result.TreeID = treeID
	}

	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	if result.Empty {
		formatter.Text("request %s: empty filter (matches everything)", requestID)
		return nil
	}
	formatter.Text("request %s", requestID)
	formatter.Text("tree id: %s", result.TreeID)
	formatter.Raw([]byte(result.Canonical))
	return nil
}

// decodeInput reads and decodes a request body with the command's decoder
// settings, mapping failures onto CLI exit codes.
func decodeInput(opts *DecodeOptions, path string, cmd *cobra.Command) (*filter.FilterRequest, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	decoder := filter.Decoder{MaxDepth: opts.MaxDepth, Strict: opts.Strict}
	req, err := decoder.Decode(data)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "decoding filter request", err)
	}
	return req, nil
}
