// Package report renders text reports about the cards on a board.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"

	"github.com/tasklist/tasklist/internal/trello"
)

const chartHeight = 10

// Bar is one labelled value in a bar chart.
type Bar struct {
	Label string
	Value int
}

// CardsPerList counts cards per board list, in board list order. Cards
// whose list is not in lists are ignored.
func CardsPerList(lists []trello.List, cards []trello.Card) []Bar {
	index := make(map[string]int, len(lists))
	bars := make([]Bar, 0, len(lists))
	for _, l := range lists {
		if _, ok := index[l.ID]; ok {
			continue
		}
		index[l.ID] = len(bars)
		bars = append(bars, Bar{Label: l.Name})
	}
	for _, c := range cards {
		if i, ok := index[c.IDList]; ok {
			bars[i].Value++
		}
	}
	return bars
}

// BarChart draws one row per bar:
//
//	   Label | ████████ 8
//
// Labels are right-aligned and the largest value spans width minus the label
// column and ten columns of padding.
func BarChart(bars []Bar, title string, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- %s ---\n", title)
	if len(bars) == 0 {
		b.WriteString("(no data)\n")
		return b.String()
	}

	maxLabel, maxVal := 0, 0
	for _, bar := range bars {
		if n := utf8.RuneCountInString(bar.Label); n > maxLabel {
			maxLabel = n
		}
		if bar.Value > maxVal {
			maxVal = bar.Value
		}
	}

	chartWidth := width - maxLabel - 10
	scale := 0.0
	if maxVal > 0 && chartWidth > 0 {
		scale = float64(chartWidth) / float64(maxVal)
	}

	for _, bar := range bars {
		n := int(float64(bar.Value) * scale)
		fmt.Fprintf(&b, "%*s | %s %d\n", maxLabel, bar.Label, strings.Repeat("█", n), bar.Value)
	}
	return b.String()
}

// ActivityChart plots cards created and cards moved into doneList per day,
// over the full range of days that saw any activity.
func ActivityChart(actions []trello.Action, doneList string) string {
	created := make(map[time.Time]int)
	completed := make(map[time.Time]int)
	seen := make(map[time.Time]bool)

	for _, a := range actions {
		ts, err := time.Parse(time.RFC3339, a.Date)
		if err != nil {
			continue
		}
		day := ts.UTC().Truncate(24 * time.Hour)
		switch a.Type {
		case "createCard":
			created[day]++
			seen[day] = true
		case "updateCard":
			if a.Data.ListAfter != nil && strings.EqualFold(a.Data.ListAfter.Name, doneList) {
				completed[day]++
				seen[day] = true
			}
		}
	}

	if len(seen) == 0 {
		return "No activity to report."
	}
	if len(seen) < 2 {
		return "Not enough data to generate an activity chart."
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var createdSeries, completedSeries []float64
	for d := days[0]; !d.After(days[len(days)-1]); d = d.AddDate(0, 0, 1) {
		createdSeries = append(createdSeries, float64(created[d]))
		completedSeries = append(completedSeries, float64(completed[d]))
	}

	var b strings.Builder
	b.WriteString("\n--- Task Activity Over Time ---\n")
	b.WriteString("\n--- Tasks Created ---\n")
	b.WriteString(asciigraph.Plot(createdSeries, asciigraph.Height(chartHeight)))
	b.WriteString("\n\n--- Tasks Completed ---\n")
	b.WriteString(asciigraph.Plot(completedSeries, asciigraph.Height(chartHeight)))
	return b.String()
}
