// Command evidencactl administers an evidenca database directly, without
// going through the HTTP server.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/evidenca/internal/config"
	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

type app struct {
	configPath string
	dbPath     string
	asOf       string

	cfg      config.Config
	database *sql.DB
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:                "evidencactl",
		Short:              "Administer the library and enrollment records",
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (default: evidenca.yaml if present)")
	root.PersistentFlags().StringVarP(&a.dbPath, "db", "d", "", "SQLite database path (overrides the config file)")
	root.PersistentFlags().StringVar(&a.asOf, "today", "", "treat this date (YYYY-MM-DD) as today")

	root.AddCommand(
		a.newInitCommand(),
		a.newSeedCommand(),
		a.newCheckoutCommand(),
		a.newReturnCommand(),
		a.newOverdueCommand(),
		a.newAvailabilityCommand(),
		a.newHistoryCommand(),
		a.newEnrollCommand(),
		a.newGradeCommand(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return fmt.Errorf("ensuring schema: %w", err)
	}
	db.MaxTxAttempts = cfg.BusyRetries

	a.database = database
	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	if a.database == nil {
		return nil
	}
	err := a.database.Close()
	a.database = nil
	return err
}

func (a *app) today() (model.Date, error) {
	if a.asOf == "" {
		return model.Today(), nil
	}
	d, err := model.ParseDate(a.asOf)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid --today: %w", err)
	}
	return d, nil
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
