// Package render draws report data onto the fixed-layout template image and
// encodes the result as PNG.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"

	"github.com/pable/wintracker/internal/aggregator"
	"github.com/pable/wintracker/internal/model"
)

// Column selects a leaderboard column of the template.
type Column int

const (
	WinColumn Column = iota
	LossColumn
)

func (c Column) String() string {
	if c == LossColumn {
		return "loss"
	}
	return "win"
}

// maxNameLen is the longest opponent name drawn unabbreviated.
const maxNameLen = 14

// dateLayout is day/month/year, the en-GB short date.
const dateLayout = "02/01/2006"

// Render draws data onto a copy of template and returns PNG bytes. The
// header date comes from now; everything else is a function of data.
func Render(template image.Image, data model.ReportData, now time.Time) ([]byte, error) {
	surface, err := NewSurface(template)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	Compose(surface, data, now)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, surface.Image(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Compose draws the header and every column that has enough data onto c
// using DefaultLayout.
func Compose(c Canvas, data model.ReportData, now time.Time) {
	layout := DefaultLayout
	drawHeader(c, layout, data.UserName, now)

	if data.HasEnoughDataForWins && len(data.WinRankings) >= aggregator.MinRankedRows {
		drawRankingList(c, layout, data.WinRankings, WinColumn)
	}
	if data.HasEnoughDataForLosses && len(data.LossRankings) >= aggregator.MinRankedRows {
		drawRankingList(c, layout, data.LossRankings, LossColumn)
	}
}

func drawHeader(c Canvas, layout Layout, userName string, now time.Time) {
	c.DrawText(userName+"'s Report", layout.HeaderX, layout.TitleY, layout.TitleFontSize, layout.HeaderColor, AlignLeft)
	c.DrawText("Generated on "+now.Format(dateLayout), layout.HeaderX, layout.DateY, layout.DateFontSize, layout.HeaderColor, AlignLeft)
}

// drawRankingList draws the top three entries of rankings into column. Any
// further entries are not drawn; the template has three row slots.
func drawRankingList(c Canvas, layout Layout, rankings []model.OpponentStats, column Column) {
	x := layout.WinColumnX
	colors := layout.Win
	if column == LossColumn {
		x = layout.LossColumnX
		colors = layout.Loss
	}

	for i, opponent := range rankings {
		if i == len(layout.RowY) {
			break
		}
		y := layout.RowY[i]

		ratio, stats := opponent.WinRatio, fmt.Sprintf("%d/%d wins", opponent.Wins, opponent.TotalMatches)
		if column == LossColumn {
			ratio, stats = opponent.LossRatio, fmt.Sprintf("%d/%d losses", opponent.Losses, opponent.TotalMatches)
		}

		lead := AbbreviateName(opponent.Name) + " " + FormatPercent(ratio) + " "
		c.DrawText(lead, x, y, layout.NameFontSize, colors.Name[i], AlignLeft)

		width := c.MeasureText(lead, layout.NameFontSize)
		c.DrawText(stats, x+width, y, layout.StatsFontSize, colors.Stats[i], AlignLeft)
	}
}

// AbbreviateName shortens names longer than 14 characters by keeping the
// first word and reducing every following word to its initial:
// "Maria Clara Santos Oliveira" becomes "Maria C. S. O.". Single-word names
// are returned unchanged.
func AbbreviateName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameLen {
		return name
	}
	words := strings.Split(name, " ")
	if len(words) == 1 {
		return name
	}

	parts := make([]string, 0, len(words))
	parts = append(parts, words[0])
	for _, w := range words[1:] {
		parts = append(parts, initial(w)+".")
	}
	return strings.Join(parts, " ")
}

func initial(word string) string {
	for _, r := range word {
		return string(r)
	}
	return ""
}

// FormatPercent renders a ratio as a parenthesised percentage with one
// decimal, e.g. "(66.7%)".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("(%.1f%%)", ratio*100)
}

// DataURI wraps PNG bytes as an embeddable data URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
