package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/validation"
)

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "Manage your notes",
	}

	cmd.AddCommand(newNotesListCmd())
	cmd.AddCommand(newNotesCreateCmd())
	cmd.AddCommand(newNotesUpdateCmd())
	cmd.AddCommand(newNotesDeleteCmd())
	return cmd
}

func newNotesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			notes, err := runOperation(cmd, "notes.list", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) ([]api.Note, error) {
					return a.client.Notes().List(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			f := newFormatter(cmd)
			if f.JSON() {
				return f.Output(notes)
			}
			if len(notes) == 0 {
				f.Empty("No notes")
				return nil
			}
			f.StartTable("ID", "UPDATED", "TEXT")
			for _, n := range notes {
				updated := n.UpdatedAt
				if updated == "" {
					updated = n.CreatedAt
				}
				f.Row(strconv.Itoa(n.ID), updated, truncate(n.Text, 60))
			}
			return f.EndTable()
		}),
	}
}

type noteInput struct {
	ID   int
	Text string
}

func validateNoteInput(in noteInput) error {
	return validation.ValidateNote(in.Text)
}

func newNotesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create <text>",
		Aliases: []string{"add"},
		Short:   "Create a note",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in := noteInput{Text: strings.TrimSpace(strings.Join(args, " "))}
			note, err := runOperation(cmd, "notes.create", in, validateNoteInput,
				func(ctx context.Context, in noteInput) (*api.Note, error) {
					return a.client.Notes().Create(ctx, in.Text)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, note)
			}
			return printDone(cmd, "Created note "+strconv.Itoa(note.ID), nil)
		}),
	}
}

func newNotesUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <id> <text>",
		Aliases: []string{"edit"},
		Short:   "Replace the text of a note",
		Args:    cobra.MinimumNArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "note ID")
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in := noteInput{ID: id, Text: strings.TrimSpace(strings.Join(args[1:], " "))}
			note, err := runOperation(cmd, "notes.update", in, validateNoteInput,
				func(ctx context.Context, in noteInput) (*api.Note, error) {
					return a.client.Notes().Update(ctx, in.ID, in.Text)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, note)
			}
			return printDone(cmd, "Updated note "+strconv.Itoa(id), nil)
		}),
	}
}

func newNotesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "note ID")
			if err != nil {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:        "Delete note " + strconv.Itoa(id) + "? [y/N] ",
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !ok {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = runOperation(cmd, "notes.delete", id, nil,
				func(ctx context.Context, id int) (struct{}, error) {
					return struct{}{}, a.client.Notes().Delete(ctx, id)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			return printDone(cmd, "Deleted note "+strconv.Itoa(id), map[string]any{"id": id})
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
