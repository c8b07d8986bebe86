package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/validation"
)

func newTicketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"support"},
		Short:   "Contact support",
	}

	cmd.AddCommand(newTicketsListCmd())
	cmd.AddCommand(newTicketsCreateCmd())
	return cmd
}

func newTicketsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your support tickets",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tickets, err := runOperation(cmd, "tickets.list", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) ([]api.Ticket, error) {
					return a.client.Tickets().List(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			f := newFormatter(cmd)
			if f.JSON() {
				return f.Output(tickets)
			}
			if len(tickets) == 0 {
				f.Empty("No tickets")
				return nil
			}
			f.StartTable("ID", "STATUS", "CREATED", "SUBJECT")
			for _, t := range tickets {
				f.Row(strconv.Itoa(t.ID), t.Status, t.CreatedAt, truncate(t.Subject, 50))
			}
			return f.EndTable()
		}),
	}
}

type ticketInput struct {
	Subject     string
	Description string
}

func newTicketsCreateCmd() *cobra.Command {
	var in ticketInput

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Open a support ticket",
		Example: `  arabah tickets create --subject "Wrong price" --description "Shop 4 lists milk at 0.00"`,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in.Subject = strings.TrimSpace(in.Subject)
			in.Description = strings.TrimSpace(in.Description)
			if in.Description == "" && canPrompt(cmd) {
				desc, err := promptLine(cmd, "Describe the problem: ")
				if err != nil {
					return fmt.Errorf("reading description: %w", err)
				}
				in.Description = desc
			}

			ticket, err := runOperation(cmd, "tickets.create", in,
				func(in ticketInput) error { return validation.ValidateTicket(in.Subject, in.Description) },
				func(ctx context.Context, in ticketInput) (*api.Ticket, error) {
					return a.client.Tickets().Create(ctx, in.Subject, in.Description)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, ticket)
			}
			return printDone(cmd, fmt.Sprintf("Opened ticket %d", ticket.ID), nil)
		}),
	}

	cmd.Flags().StringVar(&in.Subject, "subject", "", "Short summary")
	cmd.Flags().StringVar(&in.Description, "description", "", "What happened")
	return cmd
}
