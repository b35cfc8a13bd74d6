// Package report produces report artifacts and the terminal tables that
// mirror them.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/render"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintLeaderboards prints both rankings. A column without enough data is
// replaced by a one-line notice, as on the image.
func PrintLeaderboards(w io.Writer, data model.ReportData) {
	fmt.Fprintf(w, "\n%s's Report\n", data.UserName)

	fmt.Fprintf(w, "\nMost wins against\n")
	if data.HasEnoughDataForWins {
		printRanking(w, data.WinRankings, "WINS", func(s model.OpponentStats) (int, float64) {
			return s.Wins, s.WinRatio
		})
	} else {
		fmt.Fprintln(w, "  (not enough data)")
	}

	fmt.Fprintf(w, "\nMost losses against\n")
	if data.HasEnoughDataForLosses {
		printRanking(w, data.LossRankings, "LOSSES", func(s model.OpponentStats) (int, float64) {
			return s.Losses, s.LossRatio
		})
	} else {
		fmt.Fprintln(w, "  (not enough data)")
	}
}

func printRanking(w io.Writer, rankings []model.OpponentStats, label string, pick func(model.OpponentStats) (int, float64)) {
	table := newTable(w)
	table.Header("#", "OPPONENT", label, "MATCHES", "RATIO")
	for i, s := range rankings {
		n, r := pick(s)
		table.Append(
			strconv.Itoa(i+1),
			s.Name,
			strconv.Itoa(n),
			strconv.Itoa(s.TotalMatches),
			render.FormatPercent(r),
		)
	}
	table.Render()
}

// PrintMatches lists a user's raw match rows.
func PrintMatches(w io.Writer, matches []model.Match) {
	table := newTable(w)
	table.Header("ID", "OPPONENT", "W", "L", "UPDATED")
	for _, m := range matches {
		table.Append(
			strconv.FormatInt(m.ID, 10),
			m.OpponentName,
			strconv.Itoa(m.Wins),
			strconv.Itoa(m.Losses),
			m.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// PrintRows prints the result of an ad-hoc query followed by its row count.
func PrintRows(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}
