package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/server"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored layouts over HTTP",
		Long: `Serve exposes the configured store as a JSON API:

  GET    /healthz
  GET    /layouts
  GET    /layouts/{name}
  PUT    /layouts/{name}
  DELETE /layouts/{name}
  GET    /layouts/{name}/validate
  GET    /layouts/{name}/tree.svg
  GET    /layouts/{name}/tree.dot
  GET    /layouts/{name}/tree.png
  POST   /layouts/{name}/apply

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(st, runner, server.Options{
				Logger:       c.Logger,
				Validation:   c.validationOptions(),
				HistoryLimit: c.Config.HistoryLimit,
			})
			c.Logger.Info("serving layouts", "backend", st.Backend(), "addr", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
