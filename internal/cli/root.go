// Package cli implements the slabs command line: render, validate and fill
// forms from schema files, import schemas from OpenAPI documents and serve a
// preview site.
package cli

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/internal/config"
	"github.com/MarJC5/slabs/internal/logging"
	"github.com/MarJC5/slabs/pkg/prompt"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// errInvalid reports data that failed validation. The messages are already
// printed, so Execute only sets the exit status.
var errInvalid = errors.New("validation failed")

// flagKeys binds command flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":       "log.level",
	"schema-dir":      "schema_dir",
	"addr":            "server.addr",
	"container-class": "container_class",
	"theme":           "theme.name",
	"variant":         "theme.variant",
}

type app struct {
	configFile string
	cfg        config.Config
	logger     *zap.Logger
	driver     prompt.Driver
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "slabs",
		Short: "Render, validate and fill schema-driven forms",
		Long: `slabs turns declarative field schemas (JSON, YAML or CUE) into forms.

It renders them to HTML, validates submitted values while honouring
conditional visibility, fills them interactively in the terminal and serves
a live preview.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./slabs.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRenderCommand(a),
		newValidateCommand(a),
		newFillCommand(a),
		newImportOpenAPICommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	v := config.New(a.configFile)
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "slabs version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command and prints a colored error on failure.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
