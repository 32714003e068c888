package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/MarJC5/slabs/pkg/openapi"
)

func newImportOpenAPICommand(a *app) *cobra.Command {
	var (
		operationID  string
		list         bool
		format       string
		outFile      string
		externalRefs bool
		validate     bool
	)
	cmd := &cobra.Command{
		Use:   "import-openapi <document>",
		Short: "Convert an OpenAPI request body into a schema",
		Long: `Read an OpenAPI 3 document from a file or http(s) URL and convert the
request body of one operation into a slabs schema document.`,
		Example: `  slabs import-openapi api.yaml --list
  slabs import-openapi api.yaml --operation createArticle --format yaml -o schemas/article.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}
			ctx := cmd.Context()
			data, err := readBytes(ctx, args[0])
			if err != nil {
				return err
			}
			importer := openapi.New(
				openapi.WithExternalRefs(externalRefs),
				openapi.WithValidation(validate),
				openapi.WithLogger(a.logger),
			)

			if list || operationID == "" {
				ops, err := importer.Operations(ctx, data)
				if err != nil {
					return err
				}
				printOperations(cmd, ops)
				if !list {
					return errors.New("--operation is required; pick one of the operations above")
				}
				return nil
			}

			doc, err := importer.Import(ctx, data, operationID)
			if err != nil {
				return err
			}
			var encoded []byte
			if format == "yaml" {
				encoded, err = yaml.Marshal(doc)
			} else {
				encoded, err = json.MarshalIndent(doc, "", "  ")
				encoded = append(encoded, '\n')
			}
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}

			w, closeOut, err := output(cmd, outFile)
			if err != nil {
				return err
			}
			_, err = w.Write(encoded)
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.logger.Debug("schema imported",
				zap.String("operation", operationID),
				zap.Int("fields", doc.Fields.Len()),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", "", "operation ID to import")
	cmd.Flags().BoolVar(&list, "list", false, "list operations and exit")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json or yaml)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&externalRefs, "external-refs", false, "resolve $ref pointers to other documents")
	cmd.Flags().BoolVar(&validate, "validate", true, "validate the OpenAPI document before importing")
	return cmd
}

func printOperations(cmd *cobra.Command, ops []openapi.Operation) {
	out := cmd.OutOrStdout()
	idColor := color.New(color.FgCyan, color.Bold)
	for _, op := range ops {
		idColor.Fprint(out, op.ID)
		fmt.Fprintf(out, "\t%s %s", op.Method, op.Path)
		if !op.HasBody {
			fmt.Fprint(out, "\t(no body)")
		}
		if op.Summary != "" {
			fmt.Fprintf(out, "\t%s", op.Summary)
		}
		fmt.Fprintln(out)
	}
}
