package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasklist/tasklist/internal/schema"
	"github.com/tasklist/tasklist/internal/store"
	"github.com/tasklist/tasklist/internal/ui"
)

func newListCmd(a *app) *cobra.Command {
	var (
		verbose  bool
		opts     store.ListOptions
		priority int
	)
	cmd := &cobra.Command{
		Use:     "list",
		GroupID: groupPending,
		Short:   "List pending tasks",
		Long: `List the pending (not yet uploaded) top-level tasks. Tasks marked [+] have
sub-tasks; see them with 'tasklist sub list <n>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("priority") {
				if err := schema.ValidatePriority(priority); err != nil {
					return err
				}
				opts.Priority = priority
			}
			switch opts.SortBy {
			case "", store.SortByPriority, store.SortByDueDate:
			default:
				return fmt.Errorf("invalid --sort-by %q: use %s or %s", opts.SortBy, store.SortByPriority, store.SortByDueDate)
			}

			ctx := cmd.Context()
			tasks, err := a.store.ListTopLevel(ctx, opts)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				a.warnf("No pending tasks match your criteria.")
				return nil
			}

			a.printf("Pending tasks:\n")
			for i, t := range tasks {
				hasSubs, err := a.store.HasChildren(ctx, t.ID)
				if err != nil {
					return err
				}
				prefix := "    "
				if hasSubs {
					prefix = "[+] "
				}
				if verbose {
					a.printf("%d. %s%s\n", i+1, prefix, t.Description)
					a.printf("   Due Date: %s\n", orNA(t.DueDate))
					a.printf("   Priority: %s\n", ui.RenderPriority(t.Priority, fmt.Sprint(t.Priority)))
					a.printf("   Category: %s\n", t.Category)
				} else {
					a.printf("%d. %s%s %s\n", i+1, prefix, ui.RenderPriority(t.Priority, fmt.Sprintf("[P%d]", t.Priority)), t.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show due date, priority and category")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Only tasks in this category")
	cmd.Flags().IntVar(&priority, "priority", 0, "Only tasks with this priority (1-3)")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "Sort by priority or due_date")
	return cmd
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// pendingTask resolves a task number against the unfiltered top-level
// listing.
func (a *app) pendingTask(cmd *cobra.Command, arg string) (*schema.Task, bool, error) {
	n, err := parseTaskNumber(arg)
	if err != nil {
		return nil, false, err
	}
	tasks, err := a.store.ListTopLevel(cmd.Context(), store.ListOptions{})
	if err != nil {
		return nil, false, err
	}
	t, ok := pick(a, tasks, n)
	return t, ok, nil
}

func newEditCmd(a *app) *cobra.Command {
	var (
		description, dueDate, category string
		priority                       int
	)
	cmd := &cobra.Command{
		Use:     "edit <task-number>",
		GroupID: groupPending,
		Short:   "Edit a pending task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit schema.Edit
			flags := cmd.Flags()
			if flags.Changed("description") {
				edit.Description = &description
			}
			if flags.Changed("due-date") {
				due, err := schema.ParseDueDate(dueDate, a.now())
				if err != nil {
					return err
				}
				edit.DueDate = &due
			}
			if flags.Changed("priority") {
				edit.Priority = &priority
			}
			if flags.Changed("category") {
				edit.Category = &category
			}
			if edit.Empty() {
				return a.fail("Please provide at least one field to edit.\nUsage: tasklist edit <task-number> [--description ...] [--due-date ...] [--priority ...] [--category ...]")
			}
			if err := edit.Validate(); err != nil {
				return err
			}

			t, ok, err := a.pendingTask(cmd, args[0])
			if err != nil || !ok {
				return err
			}

			updated, err := a.store.Edit(cmd.Context(), t.ID, edit)
			if err != nil {
				return a.fail("Failed to edit task %s: %v", args[0], err)
			}
			if !updated {
				return a.fail("Failed to edit task %s.", args[0])
			}
			a.printf("%s Successfully edited task %s.\n", ui.RenderPass("✓"), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "New due date (empty clears it)")
	cmd.Flags().IntVar(&priority, "priority", 0, "New priority (1-3)")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	return cmd
}

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "view <task-number>",
		GroupID: groupPending,
		Short:   "Show a pending task in detail",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok, err := a.pendingTask(cmd, args[0])
			if err != nil || !ok {
				return err
			}
			a.printf("Details for task %s:\n", args[0])
			a.printf("  Description: %s\n", t.Description)
			a.printf("  Due Date:    %s\n", orNA(t.DueDate))
			a.printf("  Priority:    %d\n", t.Priority)
			a.printf("  Category:    %s\n", t.Category)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove <task-number>",
		GroupID: groupPending,
		Short:   "Remove a pending task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok, err := a.pendingTask(cmd, args[0])
			if err != nil || !ok {
				return err
			}

			if !yes {
				confirmed, err := a.prompt().Confirm(fmt.Sprintf("Are you sure you want to remove '%s'?", t.Description))
				if err != nil {
					return err
				}
				if !confirmed {
					a.warnf("Removal cancelled.")
					return nil
				}
			}

			removed, err := a.store.Delete(cmd.Context(), t.Description)
			if err != nil || !removed {
				return a.fail("Failed to remove pending task: '%s'", t.Description)
			}
			a.printf("Removed pending task: '%s'\n", t.Description)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newSubListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <parent-number>",
		Short: "List the sub-tasks of a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, ok, err := a.pendingTask(cmd, args[0])
			if err != nil || !ok {
				return err
			}
			subs, err := a.store.ListChildren(cmd.Context(), parent.ID)
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				a.warnf("No sub-tasks found for '%s'.", parent.Description)
				return nil
			}
			a.printf("Sub-tasks for '%s':\n", parent.Description)
			for i, s := range subs {
				a.printf("  %d. %s\n", i+1, s.Description)
			}
			return nil
		},
	}
}
