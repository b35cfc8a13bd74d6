// Package aggregator reduces raw match tallies into per-opponent statistics
// and the two ranked leaderboards a report is built from.
package aggregator

import (
	"sort"

	"github.com/pable/wintracker/internal/model"
)

const (
	// MinMatches is the number of games an opponent needs before its ratios
	// are considered meaningful enough to rank.
	MinMatches = 3
	// MaxRankings caps each leaderboard.
	MaxRankings = 10
	// MinRankedRows is the number of ranked opponents a column needs to be
	// drawn; the template has exactly three row slots per column.
	MinRankedRows = 3
)

// Aggregate groups matches by exact opponent name, sums wins and losses per
// group and drops opponents with fewer than MinMatches games.
// The output order is unspecified.
func Aggregate(matches []model.Match) []model.OpponentStats {
	index := make(map[string]int)
	var groups []model.OpponentStats
	for _, m := range matches {
		i, ok := index[m.OpponentName]
		if !ok {
			i = len(groups)
			index[m.OpponentName] = i
			groups = append(groups, model.OpponentStats{Name: m.OpponentName})
		}
		groups[i].Wins += m.Wins
		groups[i].Losses += m.Losses
	}

	out := make([]model.OpponentStats, 0, len(groups))
	for _, g := range groups {
		g.TotalMatches = g.Wins + g.Losses
		if g.TotalMatches < MinMatches {
			continue
		}
		g.WinRatio = ratio(g.Wins, g.TotalMatches)
		g.LossRatio = ratio(g.Losses, g.TotalMatches)
		out = append(out, g)
	}
	return out
}

// BuildReport aggregates matches and ranks the result twice: by win ratio and
// by loss ratio. Empty input yields empty rankings with both flags false.
func BuildReport(matches []model.Match, userName string) model.ReportData {
	stats := Aggregate(matches)

	winRankings := rank(stats,
		func(s model.OpponentStats) float64 { return s.WinRatio },
		func(s model.OpponentStats) int { return s.Wins })
	lossRankings := rank(stats,
		func(s model.OpponentStats) float64 { return s.LossRatio },
		func(s model.OpponentStats) int { return s.Losses })

	return model.ReportData{
		UserName:               userName,
		WinRankings:            winRankings,
		LossRankings:           lossRankings,
		HasEnoughDataForWins:   len(winRankings) >= MinRankedRows,
		HasEnoughDataForLosses: len(lossRankings) >= MinRankedRows,
	}
}

// rank sorts a copy of stats by ratio desc, then raw count desc, then name
// asc, and keeps the first MaxRankings entries.
func rank(stats []model.OpponentStats, ratioOf func(model.OpponentStats) float64, countOf func(model.OpponentStats) int) []model.OpponentStats {
	sorted := append([]model.OpponentStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := ratioOf(sorted[i]), ratioOf(sorted[j])
		if ri != rj {
			return ri > rj
		}
		ci, cj := countOf(sorted[i]), countOf(sorted[j])
		if ci != cj {
			return ci > cj
		}
		return sorted[i].Name < sorted[j].Name
	})
	if len(sorted) > MaxRankings {
		sorted = sorted[:MaxRankings]
	}
	return sorted
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
