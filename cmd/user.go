package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/report"
	"github.com/pable/wintracker/internal/validation"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create and inspect users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <first> <last> [...]",
	Short: "Register a user (full name, at least two words)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserCreate,
}

var userShowCmd = &cobra.Command{
	Use:   "show <name...>",
	Short: "Show a user's matches and leaderboards",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserShow,
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userListCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	name := validation.SanitizeName(strings.Join(args, " "))
	if err := validation.ValidateName(name); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	exists, err := st.UserExists(name)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		return fmt.Errorf("a user named %q already exists", name)
	}
	u, err := st.CreateUser(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Created user %d: %s\n", u.ID, u.Name)
	return nil
}

func runUserShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := resolveUser(st, strings.Join(args, " "))
	if err != nil {
		return err
	}
	matches, err := st.ListMatches(u.ID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	fmt.Fprintf(os.Stdout, "\nUser %d: %s  |  Since: %s  |  Matches: %d\n\n",
		u.ID, u.Name, u.CreatedAt.Local().Format("2006-01-02"), len(matches))
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches yet. Add one with 'wintracker match add --user ...'.")
		return nil
	}
	report.PrintMatches(os.Stdout, matches)

	data, err := report.Build(matches, u.Name)
	if err != nil {
		fmt.Fprintf(os.Stdout, "\n%v\n", err)
		return nil
	}
	report.PrintLeaderboards(os.Stdout, data)
	return nil
}
