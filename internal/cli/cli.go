// internal/cli/cli.go
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/bartek5186/supplier2woo/internal/app"
	"github.com/spf13/cobra"
)

// CLI - komendy supplier2woo (cobra)
type CLI struct {
	version string
	dir     string // --dir, pusty = katalog użytkownika
	console bool   // --console, logi także na stdout
}

func New(version string) *CLI {
	return &CLI{version: version}
}

// Execute uruchamia CLI z podanymi argumentami
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     app.Name,
		Short:   "Synchronizacja feedu YML dostawcy z WooCommerce",
		Version: c.version,
		Long: `supplier2woo pobiera feed dostawcy, porównuje go z katalogiem WooCommerce
i wysyła paczki create/update na /products/batch.

Bez podkomendy startuje prosta konsola (start | stop | reload | status | once | last | tasks | paths | quit).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()
			return repl(cmd.Context(), a, c.version, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.SetVersionTemplate(app.Name + " {{.Version}}\n")

	root.PersistentFlags().StringVar(&c.dir, "dir", "", "katalog danych (config.json, app.log, baza)")
	root.PersistentFlags().BoolVar(&c.console, "console", true, "logi także na konsolę")

	root.AddCommand(
		c.onceCommand(),
		c.planCommand(),
		c.lastCommand(),
		c.tasksCommand(),
		c.cacheCommand(),
	)
	return root
}

func (c *CLI) open() (*app.App, error) {
	return app.Open(c.dir, c.console)
}

func (c *CLI) onceCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "once",
		Short:   "Jeden cykl synchronizacji",
		Example: "  supplier2woo once --dry-run",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun && !a.Cfg.DryRun {
				cfg := *a.Cfg
				cfg.DryRun = true
				a.Syncer.UpdateConfig(&cfg)
			}
			rep, err := a.Syncer.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "zapisz paczki w bazie, nie wysyłaj do Woo")
	return cmd
}

func (c *CLI) planCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Pokaż paczkę create/update bez zapisu i wysyłki",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Syncer.Plan(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (c *CLI) lastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Ostatni przebieg synchronizacji",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.DB.LastRun()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), run)
		},
	}
}

func (c *CLI) tasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tasks [run_id]",
		Short:   "Niewysłane paczki przebiegu (domyślnie ostatniego)",
		Example: "  supplier2woo tasks\n  supplier2woo tasks 12",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()
			return printTasks(cmd.OutOrStdout(), a, args)
		},
	}
}

func (c *CLI) cacheCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Migawka produktów sklepu z ostatniego cyklu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			products, err := a.DB.CachedProducts()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), products)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
