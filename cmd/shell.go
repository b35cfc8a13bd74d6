package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cOK       = color.New(color.FgGreen)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellUser string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session for one user",
	Long:  "Open a persistent session against the database as one user. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	shellCmd.Flags().StringVarP(&shellUser, "user", "u", "", "user name")
	_ = shellCmd.MarkFlagRequired("user")
}

type shellSession struct {
	st   store
	user *model.User
}

func runShell(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := resolveUser(st, shellUser)
	if err != nil {
		return err
	}
	s := &shellSession{st: st, user: u}

	cGreeting.Printf("wintracker shell: %s\n", u.Name)
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("wintracker")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list", "ls":
			s.list()
		case "add":
			s.add(args)
		case "win", "loss", "unwin", "unloss":
			s.bump(cmd, args)
		case "set":
			s.set(args)
		case "rename":
			s.rename(args)
		case "rm":
			s.remove(args)
		case "report":
			s.report()
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return scanner.Err()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list your matches"},
		{"add <opponent...>", "add an opponent row"},
		{"win <id> / loss <id>", "add a win or a loss"},
		{"unwin <id> / unloss <id>", "take one back"},
		{"set <id> <wins> <losses>", "set both counters"},
		{"rename <id> <opponent...>", "rename an opponent"},
		{"rm <id> [<id>...]", "delete matches"},
		{"report", "print the leaderboards"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-28s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellErr(err error) {
	cError.Fprintf(os.Stderr, "error: %v\n", err)
}

func (s *shellSession) list() {
	matches, err := s.st.ListMatches(s.user.ID)
	if err != nil {
		shellErr(err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches yet. Try 'add <opponent>'.")
		return
	}
	report.PrintMatches(os.Stdout, matches)
}

func (s *shellSession) add(args []string) {
	if len(args) == 0 {
		cError.Fprintln(os.Stderr, "usage: add <opponent...>")
		return
	}
	m, err := addMatch(s.st, s.user, strings.Join(args, " "), 0, 0)
	if err != nil {
		shellErr(err)
		return
	}
	cOK.Printf("added %d: %s\n", m.ID, m.OpponentName)
}

func (s *shellSession) bump(cmd string, args []string) {
	if len(args) != 1 {
		cError.Fprintf(os.Stderr, "usage: %s <id>\n", cmd)
		return
	}
	id, err := parseID(args[0])
	if err != nil {
		shellErr(err)
		return
	}
	var dw, dl int
	switch cmd {
	case "win":
		dw = 1
	case "loss":
		dl = 1
	case "unwin":
		dw = -1
	case "unloss":
		dl = -1
	}
	m, err := bumpMatch(s.st, s.user, id, dw, dl)
	if err != nil {
		shellErr(err)
		return
	}
	cOK.Printf("%s  W %d  L %d\n", m.OpponentName, m.Wins, m.Losses)
}

func (s *shellSession) set(args []string) {
	if len(args) != 3 {
		cError.Fprintln(os.Stderr, "usage: set <id> <wins> <losses>")
		return
	}
	id, err := parseID(args[0])
	if err != nil {
		shellErr(err)
		return
	}
	wins, err1 := strconv.Atoi(args[1])
	losses, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || wins < 0 || losses < 0 {
		cError.Fprintln(os.Stderr, "wins and losses must be non-negative integers")
		return
	}
	m, err := setMatch(s.st, s.user, id, &wins, &losses)
	if err != nil {
		shellErr(err)
		return
	}
	cOK.Printf("%s  W %d  L %d\n", m.OpponentName, m.Wins, m.Losses)
}

func (s *shellSession) rename(args []string) {
	if len(args) < 2 {
		cError.Fprintln(os.Stderr, "usage: rename <id> <opponent...>")
		return
	}
	id, err := parseID(args[0])
	if err != nil {
		shellErr(err)
		return
	}
	m, err := renameMatch(s.st, s.user, id, strings.Join(args[1:], " "))
	if err != nil {
		shellErr(err)
		return
	}
	cOK.Printf("renamed %d: %s\n", m.ID, m.OpponentName)
}

func (s *shellSession) remove(args []string) {
	if len(args) == 0 {
		cError.Fprintln(os.Stderr, "usage: rm <id> [<id>...]")
		return
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			shellErr(err)
			return
		}
		ids = append(ids, id)
	}
	n, err := removeMatches(s.st, s.user, ids)
	if err != nil {
		shellErr(err)
		return
	}
	cOK.Printf("deleted %d match(es)\n", n)
}

func (s *shellSession) report() {
	matches, err := s.st.ListMatches(s.user.ID)
	if err != nil {
		shellErr(err)
		return
	}
	data, err := report.Build(matches, s.user.Name)
	if err != nil {
		cWarn.Println(err)
		return
	}
	report.PrintLeaderboards(os.Stdout, data)
}
