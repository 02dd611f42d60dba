package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"kairo/src/store"
	"kairo/src/tasks"
)

func openStore(cmd *cobra.Command, opts *cliOptions) (*env, *store.Store, error) {
	e, err := setup(cmd, opts)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(e.cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data store: %w", err)
	}
	return e, st, nil
}

func newTasksCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "Manage saved tasks"}

	var priority string
	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task; due dates and tags are taken from the text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			t, err := tasks.NewManager(st).Create(cmd.Context(), tasks.NewTask{
				Text:     strings.Join(args, " "),
				App:      "kairo-cli",
				Priority: store.Priority(priority),
			})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(t)
			}
			fmt.Fprintln(e.out, t.ID)
			return nil
		},
	}
	add.Flags().StringVar(&priority, "priority", "", "low|normal|high")

	var (
		status string
		today  bool
		search string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			m := tasks.NewManager(st)
			var out []store.Task
			switch {
			case search != "":
				out, err = m.Search(cmd.Context(), search)
			case today:
				out, err = m.Today(cmd.Context())
			case status != "":
				out, err = m.ByStatus(cmd.Context(), store.Status(status))
			default:
				out, err = m.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(out)
			}
			printTasks(e, out)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending|completed")
	list.Flags().BoolVar(&today, "today", false, "Only tasks due today")
	list.Flags().StringVar(&search, "search", "", "Filter by text or tag")

	done := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			t, err := tasks.NewManager(st).Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(t)
			}
			fmt.Fprintf(e.out, "completed %s\n", t.ID)
			return nil
		},
	}

	var (
		editText     string
		editPriority string
		editTags     []string
		reopen       bool
	)
	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's text, priority or tags, or reopen it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p store.TaskPatch
			if cmd.Flags().Changed("text") {
				p.Text = &editText
			}
			if cmd.Flags().Changed("priority") {
				pr := store.Priority(editPriority)
				switch pr {
				case store.PriorityLow, store.PriorityNormal, store.PriorityHigh:
				default:
					return fmt.Errorf("unknown priority %q", editPriority)
				}
				p.Priority = &pr
			}
			if cmd.Flags().Changed("tags") {
				p.Tags = append([]string{}, editTags...)
			}
			if reopen {
				pending := store.StatusPending
				p.Status = &pending
			}
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			t, err := tasks.NewManager(st).Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(t)
			}
			fmt.Fprintf(e.out, "updated %s\n", t.ID)
			return nil
		},
	}
	edit.Flags().StringVar(&editText, "text", "", "New task text")
	edit.Flags().StringVar(&editPriority, "priority", "", "low, normal or high")
	edit.Flags().StringSliceVar(&editTags, "tags", nil, "Replace tags (comma separated)")
	edit.Flags().BoolVar(&reopen, "reopen", false, "Mark the task pending again")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			if err := tasks.NewManager(st).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "deleted %s\n", args[0])
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			s, err := tasks.NewManager(st).Stats(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(s)
			}
			fmt.Fprintf(e.out, "total=%d pending=%d completed=%d overdue=%d today=%d\n",
				s.Total, s.Pending, s.Completed, s.Overdue, s.Today)
			return nil
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Drop old completed tasks and notes beyond the retention limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			res, err := st.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(res)
			}
			fmt.Fprintf(e.out, "removed %d tasks, %d notes\n", res.TasksRemoved, res.NotesRemoved)
			return nil
		},
	}

	cmd.AddCommand(add, list, done, edit, del, stats, cleanup)
	return cmd
}

func printTasks(e *env, list []store.Task) {
	tw := tabwriter.NewWriter(e.out, 0, 2, 2, ' ', 0)
	for _, t := range list {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, due, strings.Join(t.Tags, ","), oneLine(t.Text))
	}
	_ = tw.Flush()
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:60]) + "..."
	}
	return s
}

func newNotesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "notes", Short: "Manage saved notes"}

	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			n, err := st.AddNote(cmd.Context(), store.Note{
				Text:   text,
				Source: store.Source{App: "kairo-cli", Timestamp: time.Now()},
				Tags:   tasks.ExtractTags(text),
			})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(n)
			}
			fmt.Fprintln(e.out, n.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			notes, err := st.GetNotes(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(notes)
			}
			tw := tabwriter.NewWriter(e.out, 0, 2, 2, ' ', 0)
			for _, n := range notes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.CreatedAt.Local().Format("2006-01-02 15:04"), oneLine(n.Text))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newExportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print all tasks, notes and settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			x, err := st.Export(cmd.Context())
			if err != nil {
				return err
			}
			return e.printJSON(x)
		},
	}
}

func newInfoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the data directory and what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			info, err := st.Info(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return e.printJSON(info)
			}
			fmt.Fprintf(e.out, "%s: %d tasks, %d notes, %d bytes\n", info.DataPath, info.TaskCount, info.NoteCount, info.TotalSize)
			return nil
		},
	}
}
