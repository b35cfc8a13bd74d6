package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/config"
)

var (
	dbPath       string
	databaseURL  string
	templatePath string

	// cfg is filled from .env and the environment before any command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wintracker",
	Short: "Track wins and losses against your opponents",
	Long: `Keep a running tally of wins and losses per opponent and render a shareable
report image ranking who you beat most and who beats you most.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to SQLite database (env WINTRACKER_DB)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "hosted database DSN; overrides --db (env DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "report template PNG; empty uses the built-in one (env WINTRACKER_TEMPLATE)")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadConfig reads the environment; explicit flags win over it.
func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") {
		dbPath = cfg.DBPath
	}
	if !flags.Changed("database-url") {
		databaseURL = cfg.DatabaseURL
	}
	if !flags.Changed("template") {
		templatePath = cfg.TemplatePath
	}
	return nil
}
