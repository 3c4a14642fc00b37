package cli

import (
	"github.com/spf13/cobra"

	"github.com/White-Wind-LLC/exposed-filters/filter"
)

// ExcludeOptions holds flags for the exclude command.
type ExcludeOptions struct {
	*RootOptions
	Fields   []string
	MaxDepth int
	Strict   bool
}

// ExcludeResult summarizes a field-exclusion pass.
type ExcludeResult struct {
	Fields   []string `json:"fields"`
	Empty    bool     `json:"empty"`
	TreeID   string   `json:"tree_id,omitempty"`
	Filtered string   `json:"filtered,omitempty"`
}

// NewExcludeCommand creates the exclude command.
func NewExcludeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExcludeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exclude <file>",
		Short: "Strip references to excluded fields from a request",
		Long: `Exclude decodes a wire-JSON filter request, removes every part of the
tree constrained by the named fields, and prints the surviving request in
wire form. The result never matches fewer rows than the original.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExclude(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Fields, "field", nil, "field to exclude (repeatable)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", DefaultMaxDepth, "maximum node nesting (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject bodies carrying both filters and children at one level")

	return cmd
}

func runExclude(opts *ExcludeOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger(cmd)

	decodeOpts := &DecodeOptions{RootOptions: opts.RootOptions, MaxDepth: opts.MaxDepth, Strict: opts.Strict}
	req, err := decodeInput(decodeOpts, path, cmd)
	if err != nil {
		return err
	}

	filtered := filter.ExcludeRequest(req, filter.NewFieldSet(opts.Fields...))
	log.Debug().
		Strs("fields", opts.Fields).
		Bool("empty", filtered.IsEmpty()).
		Msg("exclusion applied")

	result := ExcludeResult{Fields: opts.Fields, Empty: filtered.IsEmpty()}
	encoded := []byte("{}")
	if !filtered.IsEmpty() {
		treeID, err := filter.TreeID(filtered.Root)
		if err != nil {
			return WrapExitError(ExitCommandError, "hashing filtered tree", err)
		}
		result.TreeID = treeID

		encoded, err = filter.EncodeIndent(filtered.Root)
		if err != nil {
			return WrapExitError(ExitCommandError, "encoding filtered request", err)
		}
	}
	result.Filtered = string(encoded)

	if opts.Format == "json" {
		return formatter.JSON(result)
	}

	if result.Empty {
		formatter.Text("filter empty after exclusion (matches everything)")
		return nil
	}
	formatter.Text("tree id: %s", result.TreeID)
	formatter.Raw(encoded)
	return nil
}
