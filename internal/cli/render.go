package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/form"
	"github.com/MarJC5/slabs/pkg/page"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		dataFile   string
		fullPage   bool
		stylesheet string
		formID     string
		outFile    string
	)
	cmd := &cobra.Command{
		Use:   "render <schema>",
		Short: "Render a schema to HTML",
		Long: `Render a schema file (or http(s) URL) to HTML, optionally pre-filled
with values from a JSON or YAML file. With --page the form is wrapped in a
complete themed document.`,
		Example: `  slabs render schemas/contact.yaml
  slabs render schemas/contact.yaml --data values.json --page -o contact.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := a.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			values, err := readValues(dataFile)
			if err != nil {
				return err
			}

			opts := []form.RenderOption{}
			if formID != "" {
				opts = append(opts, form.WithFormID(formID))
			}
			var pages *page.Renderer
			if fullPage {
				if pages, err = a.pageRenderer(stylesheet); err != nil {
					return err
				}
				cfg, err := pages.Theme()
				if err != nil {
					return err
				}
				if cfg != nil {
					opts = append(opts, form.WithThemeTokens(cfg.Tokens))
				}
			}

			root, err := a.engine().Render(doc.Fields, values, opts...)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, outFile)
			if err != nil {
				return err
			}
			if pages != nil {
				err = pages.Render(w, page.Data{Title: doc.DisplayTitle(), Description: doc.Description, Form: root})
			} else {
				err = root.WriteHTML(w)
				if err == nil {
					_, err = fmt.Fprintln(w)
				}
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.logger.Debug("form rendered", zap.String("schema", doc.Name), zap.String("output", outFile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML file with initial values")
	cmd.Flags().BoolVar(&fullPage, "page", false, "wrap the form in a complete HTML page")
	cmd.Flags().StringVar(&stylesheet, "stylesheet", "", "stylesheet URL linked from the page")
	cmd.Flags().StringVar(&formID, "id", "", "id attribute of the form container")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().String("container-class", "", "extra class of the form container")
	cmd.Flags().String("theme", "", "theme name for --page")
	cmd.Flags().String("variant", "", "theme variant for --page")
	return cmd
}
