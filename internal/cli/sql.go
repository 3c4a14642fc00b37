package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/White-Wind-LLC/exposed-filters/filtersql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Columns  []string
	MaxDepth int
	Strict   bool
}

// SQLResult carries a compiled WHERE fragment and its parameters.
type SQLResult struct {
	Where  string `json:"where"`
	Params []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <file>",
		Short: "Compile a request into a parameterized SQL WHERE fragment",
		Long: `Sql decodes a wire-JSON filter request and compiles it into a
parameterized WHERE fragment with positional placeholders. Use --column to
map request fields onto column expressions; without mappings every field is
quoted as an identifier.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Columns, "column", nil, "field=column mapping (repeatable)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", DefaultMaxDepth, "maximum node nesting (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject bodies carrying both filters and children at one level")

	return cmd
}

func runSQL(opts *SQLOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger(cmd)

	columns, err := parseColumnMappings(opts.Columns)
	if err != nil {
		return WrapExitError(ExitCommandError, "parsing column mappings", err)
	}

	decodeOpts := &DecodeOptions{RootOptions: opts.RootOptions, MaxDepth: opts.MaxDepth, Strict: opts.Strict}
	req, err := decodeInput(decodeOpts, path, cmd)
	if err != nil {
		return err
	}

	where, params, err := filtersql.NewCompiler(columns).CompileRequest(req)
	if err != nil {
		return WrapExitError(ExitFailure, "compiling filter request", err)
	}
	log.Debug().Str("where", where).Int("params", len(params)).Msg("request compiled")

	if opts.Format == "json" {
		result := SQLResult{Where: where, Params: params}
		if result.Params == nil {
			result.Params = []any{}
		}
		return formatter.JSON(result)
	}

	formatter.Text("where: %s", where)
	for i, p := range params {
		formatter.Text("param %d: %v", i+1, p)
	}
	return nil
}

// parseColumnMappings turns repeated field=column flags into a lookup map.
func parseColumnMappings(mappings []string) (map[string]string, error) {
	if len(mappings) == 0 {
		return nil, nil
	}
	columns := make(map[string]string, len(mappings))
	for _, m := range mappings {
		field, column, ok := strings.Cut(m, "=")
		if !ok || field == "" || column == "" {
			return nil, fmt.Errorf("invalid column mapping %q, want field=column", m)
		}
		columns[field] = column
	}
	return columns, nil
}
