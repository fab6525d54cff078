package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasklist/tasklist/internal/importer"
	"github.com/tasklist/tasklist/internal/schema"
	"github.com/tasklist/tasklist/internal/store"
	"github.com/tasklist/tasklist/internal/sync"
	"github.com/tasklist/tasklist/internal/ui"
)

// taskFlags are the optional task fields shared by add and sub add.
type taskFlags struct {
	dueDate  string
	priority int
	category string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dueDate, "due-date", "", `Due date (YYYY-MM-DD or a phrase such as "next friday")`)
	cmd.Flags().IntVar(&f.priority, "priority", 0, "Priority (1=low, 2=medium, 3=high)")
	cmd.Flags().StringVar(&f.category, "category", "", "Category of the task")
}

// task builds a validated task from the words of the description, applying
// the configured defaults to fields that were not given.
func (f *taskFlags) task(a *app, cmd *cobra.Command, words []string) (schema.Task, error) {
	t := schema.Task{
		Description: strings.Join(words, " "),
		Priority:    a.cfg.Defaults.Priority,
		Category:    a.cfg.Defaults.Category,
	}
	if cmd.Flags().Changed("priority") {
		if err := schema.ValidatePriority(f.priority); err != nil {
			return t, err
		}
		t.Priority = f.priority
	}
	if cmd.Flags().Changed("category") {
		t.Category = f.category
	}
	due, err := schema.ParseDueDate(f.dueDate, a.now())
	if err != nil {
		return t, err
	}
	t.DueDate = due
	return t, nil
}

func newAddCmd(a *app) *cobra.Command {
	var (
		flags    taskFlags
		listName string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:     "add <task>...",
		GroupID: groupCreate,
		Short:   "Add a new task",
		Long: `Add a new task. The task becomes a card on the board when Trello is
reachable and is saved to the local queue otherwise.

If tasks are already queued you are asked whether to upload them first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := flags.task(a, cmd, args)
			if err != nil {
				return err
			}

			var listID string
			if listName != "" {
				l, ok := a.client.FindList(ctx, listName)
				if !ok {
					return fmt.Errorf("list '%s' not found", listName)
				}
				listID = l.ID
			}

			flush := false
			pending, err := a.store.LoadAll(ctx)
			if err != nil {
				return err
			}
			if len(pending) > 0 {
				a.printf("Pending tasks exist:\n")
				for i, p := range pending {
					a.printf("%d. %s\n", i+1, p.Description)
				}
				flush = yes
				if !flush {
					if flush, err = a.prompt().Confirm("Pending tasks exist. Upload them now?"); err != nil {
						return err
					}
				}
			}

			outcome, err := a.syncer.AddTask(ctx, sync.AddRequest{Task: task, FlushFirst: flush, ListID: listID})
			if errors.Is(err, sync.ErrEmptyDescription) {
				return a.fail("Task description cannot be empty.")
			}
			if err != nil {
				return err
			}
			a.reportOutcome(outcome, task.Description)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&listName, "list-name", "", "Name of the Trello list to add the task to")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Upload pending tasks first without asking")
	return cmd
}

func (a *app) reportOutcome(outcome sync.Outcome, description string) {
	switch outcome {
	case sync.OutcomeCreated:
		a.printf("%s Task '%s' added to Trello.\n", ui.RenderPass("✓"), description)
	case sync.OutcomeQueued:
		a.printf("%s Task '%s' saved locally. Run 'tasklist upload' when online.\n", ui.RenderWarn("⚠"), description)
	}
}

func newSubCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sub",
		GroupID: groupCreate,
		Short:   "Manage sub-tasks of pending tasks",
	}
	cmd.AddCommand(newSubAddCmd(a), newSubListCmd(a))
	return cmd
}

func newSubAddCmd(a *app) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "add <parent-number> <task>...",
		Short: "Add a sub-task to a pending task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := parseTaskNumber(args[0])
			if err != nil {
				return err
			}
			task, err := flags.task(a, cmd, args[1:])
			if err != nil {
				return err
			}

			parents, err := a.store.ListTopLevel(ctx, store.ListOptions{})
			if err != nil {
				return err
			}
			parent, ok := pick(a, parents, n)
			if !ok {
				return nil
			}

			parentID := parent.ID
			task.ParentID = &parentID
			outcome, err := a.syncer.AddTask(ctx, sync.AddRequest{Task: task})
			if errors.Is(err, sync.ErrEmptyDescription) {
				return a.fail("Task description cannot be empty.")
			}
			if err != nil {
				return err
			}
			a.reportOutcome(outcome, task.Description)
			a.printf("Added sub-task to '%s'.\n", parent.Description)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "import <file>",
		GroupID: groupCreate,
		Short:   "Import tasks from a file",
		Long: `Import tasks from a file. Every task goes through the same path as 'add'.

Formats, by extension:
  .jsonl        one JSON object per line
  .yaml, .yml   a list of objects
  other         plain text, one task description per line

Objects use the keys description, due_date, priority and category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tasks, err := importer.ReadFile(args[0], importer.Defaults{
				Priority: a.cfg.Defaults.Priority,
				Category: a.cfg.Defaults.Category,
			})
			if err != nil {
				return err
			}

			a.printf("Found %d tasks to import from %s.\n", len(tasks), args[0])
			created, queued := 0, 0
			for _, t := range tasks {
				a.printf("Importing task: '%s'...\n", t.Description)
				outcome, err := a.syncer.AddTask(ctx, sync.AddRequest{Task: t})
				if err != nil {
					return err
				}
				switch outcome {
				case sync.OutcomeCreated:
					created++
				case sync.OutcomeQueued:
					queued++
				}
			}
			a.printf("%s Imported %d tasks from %s (%d on Trello, %d queued locally).\n",
				ui.RenderPass("✓"), created+queued, args[0], created, queued)
			return nil
		},
	}
}
