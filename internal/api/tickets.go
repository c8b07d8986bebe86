package api

import (
	"context"
	"net/http"
)

// List returns the user's support tickets.
func (s TicketsService) List(ctx context.Context) ([]Ticket, error) {
	return sendBody[[]Ticket](ctx, s.Client, Call{
		Endpoint: EndpointTickets,
		Method:   http.MethodGet,
	})
}

// Create opens a support ticket.
func (s TicketsService) Create(ctx context.Context, subject, description string) (*Ticket, error) {
	result, err := sendBody[Ticket](ctx, s.Client, Call{
		Endpoint: EndpointCreateTicket,
		Method:   http.MethodPost,
		Params:   NewParams("subject", subject, "description", description),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
