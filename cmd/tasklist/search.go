package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var local, remote bool
	cmd := &cobra.Command{
		Use:     "search <query>...",
		GroupID: groupSearch,
		Short:   "Search pending tasks and Trello cards",
		Long: `Search pending tasks (case-insensitive substring match) and the cards on
the configured board. Both are searched unless --local or --remote is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			searchLocal := local || !remote
			searchRemote := remote || !local

			if searchLocal {
				a.printf("--- Searching Pending Tasks ---\n")
				tasks, err := a.store.Search(ctx, query)
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					a.printf("No matching pending tasks found.\n")
				}
				for i, t := range tasks {
					a.printf("%d. %s\n", i+1, t.Description)
				}
			}

			if searchRemote {
				a.printf("\n--- Searching Trello Tasks ---\n")
				results := a.client.SearchCards(ctx, query)
				if len(results) == 0 {
					a.printf("No matching Trello cards found.\n")
				}
				for _, r := range results {
					pos := "?"
					if r.Position > 0 {
						pos = strconv.Itoa(r.Position)
					}
					a.printf("Board: %s | List: %s | #%s - %s\n", r.BoardName, r.ListName, pos, r.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Search pending tasks only")
	cmd.Flags().BoolVar(&remote, "remote", false, "Search Trello cards only")
	return cmd
}
