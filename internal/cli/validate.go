package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/validation"
)

// report is the --json output of validate.
type report struct {
	Values map[string]any    `json:"values"`
	Result validation.Result `json:"result"`
}

func newValidateCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <schema> <values>",
		Short: "Validate a JSON or YAML values file against a schema",
		Long: `Validate values against a schema. Fields hidden by their conditional
are cleared and skipped. The command exits with status 1 when the values are
invalid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			values, err := readValues(args[1])
			if err != nil {
				return err
			}
			result, err := validateVisible(a, doc.Fields, values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report{Values: values, Result: result}); err != nil {
					return err
				}
			} else {
				printResult(out, doc.DisplayTitle(), result)
			}
			if !result.Valid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print values and result as JSON")
	return cmd
}

// validateVisible clears hidden fields in values, nested ones included, then
// validates them.
func validateVisible(a *app, defs schema.Fields, values map[string]any) (validation.Result, error) {
	engine := a.engine()
	engine.ClearHidden(defs, values)
	return engine.Validate(defs, values)
}

func printResult(out io.Writer, title string, result validation.Result) {
	if result.Valid {
		color.New(color.FgGreen, color.Bold).Fprint(out, "✓ ")
		fmt.Fprintf(out, "%s: valid\n", title)
		return
	}
	errorColor := color.New(color.FgRed, color.Bold)
	fieldColor := color.New(color.FgYellow)
	errorColor.Fprint(out, "✗ ")
	fmt.Fprintf(out, "%s: %d error(s)\n", title, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprint(out, "  ")
		fieldColor.Fprint(out, e.Field)
		fmt.Fprintf(out, ": %s (%s)\n", e.Message, e.Code)
	}
}
