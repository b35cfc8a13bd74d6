package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/report"
	"github.com/pable/wintracker/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the local tracker database",
	Long: `Run a read or write query against the local SQLite file and print the rows.

Tables:
  users(id, name, created_at)
  matches(id, user_id, opponent_name, wins, losses, created_at, updated_at)

Timestamps are RFC 3339 text in UTC.

Examples:
  wintracker sql "SELECT name FROM users ORDER BY lower(name)"
  wintracker sql "SELECT opponent_name, wins, losses FROM matches WHERE user_id = 1"
  wintracker sql "SELECT u.name, SUM(m.wins) AS wins, SUM(m.losses) AS losses
                  FROM users u JOIN matches m ON m.user_id = u.id GROUP BY u.id"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	if databaseURL != "" {
		return fmt.Errorf("sql only works against the local SQLite database; unset --database-url")
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	report.PrintRows(os.Stdout, cols, rows)
	return nil
}
