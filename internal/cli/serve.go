package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/page"
	"github.com/MarJC5/slabs/pkg/schema/loader"
	"github.com/MarJC5/slabs/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve form previews and the validation API",
		Long: `Load every schema of the schema directory and serve an HTML preview
per form plus JSON endpoints to validate values and resolve visibility.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler, err := a.newServer(ctx)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("serving forms",
					zap.String("addr", srv.Addr),
					zap.String("schema_dir", a.cfg.SchemaDir),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("schema-dir", "", "directory of schema files (default ./schemas)")
	cmd.Flags().String("container-class", "", "extra class of every form container")
	cmd.Flags().String("theme", "", "theme name")
	cmd.Flags().String("variant", "", "theme variant")
	return cmd
}

// newServer loads the schema directory and builds the HTTP handler.
func (a *app) newServer(ctx context.Context) (*server.Server, error) {
	l := loader.New(loader.WithFS(os.DirFS(a.cfg.SchemaDir)), loader.WithLogger(a.logger))
	docs, err := l.LoadDir(ctx, ".")
	if err != nil {
		return nil, fmt.Errorf("load schemas from %s: %w", a.cfg.SchemaDir, err)
	}
	engine := a.engine()
	for _, doc := range docs {
		if err := engine.Check(doc.Fields); err != nil {
			return nil, fmt.Errorf("schema %s: %w", doc.Location(), err)
		}
	}
	a.logger.Debug("schemas loaded", zap.Int("count", len(docs)))

	pages, err := a.pageRenderer(server.AssetsPrefix + page.StylesheetName)
	if err != nil {
		return nil, err
	}
	return server.New(loader.NewCatalog(docs),
		server.WithEngine(engine),
		server.WithPageRenderer(pages),
		server.WithLogger(a.logger),
	)
}
