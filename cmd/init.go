package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaulttec/vault131/internal/config"
)

var (
	initPath  string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented config file with every default value. The file goes to
the per-user config directory unless --path is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "", "where to write the file (default "+config.DefaultConfigPath()+")")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := initPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	path = config.ExpandHome(path)

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
