package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaulttec/vault131/internal/infrastructure/sqlite"
	"github.com/vaulttec/vault131/internal/vault/application"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the saved session",
	Long: `Erase the persisted session so the next visitor starts at the boot screen.
This is the same as pressing RESET SESSION in the terminal.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	if !cfg.Storage.Persist {
		return errors.New("storage.persist is off; there is no saved session")
	}

	db, err := sqlite.NewDB(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer func() { _ = db.Close() }()

	application.NewSnapshotStore(db.SnapshotRepository(), cfg.Storage.Key).Clear()
	fmt.Fprintln(cmd.OutOrStdout(), application.StatusReset)
	return nil
}
