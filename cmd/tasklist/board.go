package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasklist/tasklist/internal/trello"
	"github.com/tasklist/tasklist/internal/ui"
)

// resolveList returns the list named name (case-insensitive), or the
// configured default list when name is empty.
func (a *app) resolveList(cmd *cobra.Command, name string) (trello.List, error) {
	if name == "" {
		return trello.List{ID: a.client.DefaultListID()}, nil
	}
	l, ok := a.client.FindList(cmd.Context(), name)
	if !ok {
		return l, fmt.Errorf("list '%s' not found", name)
	}
	return l, nil
}

func (a *app) printCards(cards []trello.Card) {
	for i, c := range cards {
		a.printf("%d. %s\n", i+1, c.Name)
	}
}

func newShowCmd(a *app) *cobra.Command {
	var (
		listName string
		all      bool
		lists    bool
	)
	cmd := &cobra.Command{
		Use:     "show",
		GroupID: groupBoard,
		Short:   "Show cards on the Trello board",
		Long: `Show the cards of the default list, of a named list (--list-name) or of
every list on the board (--all). --lists prints the board's lists with their
ids, which is handy when filling in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case lists || all:
				boardLists := a.client.BoardLists(ctx)
				if len(boardLists) == 0 {
					a.warnf("No lists found on your Trello board.")
					return nil
				}
				if lists {
					a.printf("Trello Lists:\n")
					for _, l := range boardLists {
						a.printf("  - Name: %-25s ID: %s\n", l.Name, l.ID)
					}
					return nil
				}
				for _, l := range boardLists {
					a.printf("\n%s\n", ui.RenderAccent(fmt.Sprintf("--- List: %s ---", l.Name)))
					cards := a.client.ListCards(ctx, l.ID)
					if len(cards) == 0 {
						a.printf("No tasks found in this list.\n")
						continue
					}
					a.printCards(cards)
				}
				return nil

			case listName != "":
				l, err := a.resolveList(cmd, listName)
				if err != nil {
					return err
				}
				cards := a.client.ListCards(ctx, l.ID)
				if len(cards) == 0 {
					a.warnf("No tasks found in list '%s'.", listName)
					return nil
				}
				a.printf("Tasks on Trello list '%s':\n", listName)
				a.printCards(cards)
				return nil

			default:
				cards := a.client.ListCards(ctx, "")
				if len(cards) == 0 {
					a.warnf("No tasks found on your default Trello list.")
					return nil
				}
				a.printf("Tasks on default Trello list:\n")
				a.printCards(cards)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&listName, "list-name", "", "Name of the list to show")
	cmd.Flags().BoolVar(&all, "all", false, "Show cards from every list on the board")
	cmd.Flags().BoolVar(&lists, "lists", false, "Show the board's lists with their ids")
	cmd.MarkFlagsMutuallyExclusive("list-name", "all", "lists")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	var listName string
	cmd := &cobra.Command{
		Use:     "done <task-number>",
		GroupID: groupBoard,
		Short:   "Mark a card as done (archives it)",
		Long: `Archive the n-th card of the default list, or of --list-name. Numbers are
the ones printed by 'tasklist show'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseTaskNumber(args[0])
			if err != nil {
				return err
			}
			l, err := a.resolveList(cmd, listName)
			if err != nil {
				return err
			}

			cards := a.client.ListCards(cmd.Context(), l.ID)
			if len(cards) == 0 {
				if listName != "" {
					a.warnf("No tasks found in list '%s'.", listName)
				} else {
					a.warnf("No tasks found on your default Trello list.")
				}
				return nil
			}
			card, ok := pick(a, cards, n)
			if !ok {
				return nil
			}

			if !a.client.ArchiveCard(cmd.Context(), card.ID) {
				return a.fail("Failed to mark task '%s' as done.", card.Name)
			}
			a.printf("%s Task '%s' marked as done.\n", ui.RenderPass("✓"), card.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&listName, "list-name", "", "Name of the list the card is in")
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "upload",
		GroupID: groupBoard,
		Short:   "Upload the pending tasks to Trello",
		Long: `Upload the pending tasks in the order they were added. The upload stops at
the first task Trello does not accept; that task and the ones after it stay
pending and are retried by the next upload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pending, err := a.store.LoadAll(ctx)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				a.warnf("No tasks to upload.")
				return nil
			}

			a.printf("Found %d tasks to upload.\n", len(pending))
			for i, t := range pending {
				a.printf("Uploading task %d of %d: '%s'...\n", i+1, len(pending), t.Description)
			}

			result, err := a.syncer.Upload(ctx)
			if err != nil {
				return err
			}
			if result.Complete() {
				a.printf("%s All tasks uploaded successfully.\n", ui.RenderPass("✓"))
				return nil
			}
			a.warnf("%s Upload stopped at '%s': %d uploaded, %d still pending.",
				ui.RenderWarn("⚠"), result.Failed.Description, result.Uploaded, result.Remaining())
			return nil
		},
	}
}
