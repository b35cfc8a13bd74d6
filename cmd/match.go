package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/report"
)

var (
	matchUser   string
	matchWins   int
	matchLosses int
	matchStep   int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Record and edit matches against opponents",
}

var matchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's matches",
	Args:  cobra.NoArgs,
	RunE:  runMatchList,
}

var matchAddCmd = &cobra.Command{
	Use:   "add <opponent...>",
	Short: "Add an opponent row for a user",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatchAdd,
}

var matchSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Set the wins and/or losses of a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchSet,
}

var matchWinCmd = &cobra.Command{
	Use:   "win <id>",
	Short: "Add a win to a match (use --by -1 to undo)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatchBump(args[0], matchStep, 0)
	},
}

var matchLossCmd = &cobra.Command{
	Use:   "loss <id>",
	Short: "Add a loss to a match (use --by -1 to undo)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatchBump(args[0], 0, matchStep)
	},
}

var matchRenameCmd = &cobra.Command{
	Use:   "rename <id> <opponent...>",
	Short: "Rename the opponent of a match",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runMatchRename,
}

var matchRmCmd = &cobra.Command{
	Use:   "rm <id> [<id>...]",
	Short: "Delete one or more matches",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatchRm,
}

func init() {
	for _, c := range []*cobra.Command{matchListCmd, matchAddCmd} {
		c.Flags().StringVarP(&matchUser, "user", "u", "", "user name")
		_ = c.MarkFlagRequired("user")
	}
	for _, c := range []*cobra.Command{matchSetCmd, matchWinCmd, matchLossCmd, matchRenameCmd, matchRmCmd} {
		c.Flags().StringVarP(&matchUser, "user", "u", "", "only touch matches owned by this user")
	}
	matchAddCmd.Flags().IntVar(&matchWins, "wins", 0, "initial wins")
	matchAddCmd.Flags().IntVar(&matchLosses, "losses", 0, "initial losses")
	matchSetCmd.Flags().IntVar(&matchWins, "wins", 0, "wins (unchanged when omitted)")
	matchSetCmd.Flags().IntVar(&matchLosses, "losses", 0, "losses (unchanged when omitted)")
	matchWinCmd.Flags().IntVar(&matchStep, "by", 1, "amount to add")
	matchLossCmd.Flags().IntVar(&matchStep, "by", 1, "amount to add")

	matchCmd.AddCommand(matchListCmd, matchAddCmd, matchSetCmd, matchWinCmd, matchLossCmd, matchRenameCmd, matchRmCmd)
}

// scopeUser resolves --user when it was given; nil means any owner.
func scopeUser(st store) (*model.User, error) {
	if matchUser == "" {
		return nil, nil
	}
	return resolveUser(st, matchUser)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid match id %q", s)
	}
	return id, nil
}

func printMatch(verb string, m *model.Match) {
	fmt.Fprintf(os.Stdout, "%s match %d: %s  W %d  L %d\n", verb, m.ID, m.OpponentName, m.Wins, m.Losses)
}

func runMatchList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := resolveUser(st, matchUser)
	if err != nil {
		return err
	}
	matches, err := st.ListMatches(u.ID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintf(os.Stdout, "No matches for %s yet.\n", u.Name)
		return nil
	}
	report.PrintMatches(os.Stdout, matches)
	return nil
}

func runMatchAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := resolveUser(st, matchUser)
	if err != nil {
		return err
	}
	m, err := addMatch(st, u, strings.Join(args, " "), matchWins, matchLosses)
	if err != nil {
		return err
	}
	printMatch("Added", m)
	return nil
}

func runMatchSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var wins, losses *int
	if cmd.Flags().Changed("wins") {
		wins = &matchWins
	}
	if cmd.Flags().Changed("losses") {
		losses = &matchLosses
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := scopeUser(st)
	if err != nil {
		return err
	}
	m, err := setMatch(st, u, id, wins, losses)
	if err != nil {
		return err
	}
	printMatch("Updated", m)
	return nil
}

func runMatchBump(arg string, dWins, dLosses int) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := scopeUser(st)
	if err != nil {
		return err
	}
	m, err := bumpMatch(st, u, id, dWins, dLosses)
	if err != nil {
		return err
	}
	printMatch("Updated", m)
	return nil
}

func runMatchRename(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := scopeUser(st)
	if err != nil {
		return err
	}
	m, err := renameMatch(st, u, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	printMatch("Renamed", m)
	return nil
}

func runMatchRm(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := scopeUser(st)
	if err != nil {
		return err
	}
	n, err := removeMatches(st, u, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Deleted %d match(es).\n", n)
	return nil
}
