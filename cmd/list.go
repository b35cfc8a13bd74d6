package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func runUserList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.ListUsers()
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Fprintln(os.Stdout, "No users yet. Run 'wintracker user create <first> <last>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%6s  %-32s  %s\n", "ID", "NAME", "CREATED")
	fmt.Fprintf(os.Stdout, "%6s  %-32s  %s\n", "──────", "────────────────────────────────", "──────────")
	for _, u := range users {
		fmt.Fprintf(os.Stdout, "%6d  %-32s  %s\n", u.ID, u.Name, u.CreatedAt.Local().Format("2006-01-02"))
	}
	return nil
}
