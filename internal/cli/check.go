package cli

import (
	"github.com/spf13/cobra"

	"github.com/White-Wind-LLC/exposed-filters/filter"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Strict bool
}

// CheckResult is the JSON output shape of the check command.
type CheckResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a request body against the wire grammar",
		Long: `Check validates a wire-JSON filter request against the CUE wire
grammar without decoding it. The grammar is strict: unknown keys and
unknown operator names, which decoding would silently tolerate, are
reported as violations here.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "also reject bodies carrying both filters and children at one level")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger(cmd)

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	checkErr := filter.ValidateWire(data)
	if checkErr == nil && opts.Strict {
		// The exclusivity policy is a decode pre-check, not part of the
		// grammar, so it is exercised through a strict decoder.
		_, checkErr = filter.Decoder{Strict: true}.Decode(data)
	}

	if checkErr != nil {
		log.Debug().Err(checkErr).Msg("wire grammar check failed")
		if opts.Format == "json" {
			if err := formatter.JSON(CheckResult{Valid: false, Error: checkErr.Error()}); err != nil {
				return err
			}
		} else {
			formatter.Text("invalid: %v", checkErr)
		}
		return WrapExitError(ExitFailure, "wire grammar check failed", checkErr)
	}

	if opts.Format == "json" {
		return formatter.JSON(CheckResult{Valid: true})
	}
	formatter.Text("valid")
	return nil
}
