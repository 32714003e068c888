package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/prompt"
)

func newFillCommand(a *app) *cobra.Command {
	var (
		dataFile string
		outFile  string
	)
	cmd := &cobra.Command{
		Use:   "fill <schema>",
		Short: "Fill a form interactively in the terminal",
		Long: `Ask for every visible field of a schema in order, revealing
conditional fields as answers change, and print the collected values as
JSON. Repeaters and flexible fields ask for rows until you are done.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := a.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			initial, err := readValues(dataFile)
			if err != nil {
				return err
			}

			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver(cmd.ErrOrStderr())
			}
			filler := prompt.New(
				prompt.WithDriver(driver),
				prompt.WithEngine(a.engine()),
				prompt.WithLogger(a.logger),
			)
			values, result, err := filler.Run(ctx, doc.Fields, initial)
			if errors.Is(err, prompt.ErrAborted) {
				a.logger.Info("fill aborted", zap.String("schema", doc.Name))
				return err
			}
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, outFile)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			err = enc.Encode(values)
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if !result.Valid {
				printResult(cmd.ErrOrStderr(), doc.DisplayTitle(), result)
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML file with initial values")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
