package main

import (
	"github.com/spf13/cobra"

	"github.com/tasklist/tasklist/internal/report"
	"github.com/tasklist/tasklist/internal/ui"
)

// Report names, in the order --all runs them.
const (
	reportLists     = "lists"
	reportKeywords  = "keywords"
	reportSentiment = "sentiment"
	reportActivity  = "activity"
)

var allReports = []string{reportLists, reportKeywords, reportSentiment, reportActivity}

func newReportsCmd(a *app) *cobra.Command {
	var (
		all      bool
		doneList string
	)
	run := func(cmd *cobra.Command, names ...string) error {
		if all {
			names = allReports
		}
		for _, name := range names {
			a.runReport(cmd, name, doneList)
		}
		return nil
	}

	cmd := &cobra.Command{
		Use:     "reports",
		GroupID: groupReports,
		Short:   "Generate reports from your Trello board",
		Long:    "Generate reports from the cards on your Trello board. Without a sub-command every report runs.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, allReports...)
		},
	}
	cmd.PersistentFlags().BoolVar(&all, "all", false, "Run all reports")
	cmd.PersistentFlags().StringVar(&doneList, "done-list", "Done", "Name of the list completed cards are moved to")

	subs := []struct{ name, short string }{
		{reportActivity, "Chart tasks created and completed over time"},
		{reportKeywords, "Show the top 10 keywords from your cards"},
		{reportLists, "Bar chart of cards per list"},
		{reportSentiment, "Weekly sentiment of your cards"},
	}
	for _, s := range subs {
		name := s.name
		cmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, name)
			},
		})
	}
	return cmd
}

func (a *app) runReport(cmd *cobra.Command, name, doneList string) {
	ctx := cmd.Context()
	switch name {
	case reportLists:
		bars := report.CardsPerList(a.client.BoardLists(ctx), a.client.BoardCards(ctx))
		a.printf("%s", report.BarChart(bars, "Cards per List", ui.TerminalWidth(a.stdout)))
	case reportKeywords:
		a.printf("%s", report.KeywordList(report.TopKeywords(a.client.BoardCards(ctx), report.KeywordCount)))
	case reportSentiment:
		a.printf("%s", report.SentimentList(report.SentimentByWeek(a.client.BoardCards(ctx))))
	case reportActivity:
		a.printf("%s\n", report.ActivityChart(a.client.BoardActions(ctx), doneList))
	}
}
