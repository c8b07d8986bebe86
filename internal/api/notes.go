package api

import (
	"context"
	"net/http"
	"strconv"
)

// List returns all notes of the signed-in user.
func (s NotesService) List(ctx context.Context) ([]Note, error) {
	return sendBody[[]Note](ctx, s.Client, Call{
		Endpoint: EndpointNotes,
		Method:   http.MethodGet,
	})
}

// Create adds a note.
func (s NotesService) Create(ctx context.Context, text string) (*Note, error) {
	result, err := sendBody[Note](ctx, s.Client, Call{
		Endpoint: EndpointCreateNote,
		Method:   http.MethodPost,
		Params:   NewParams("text", text),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Update replaces the text of a note.
func (s NotesService) Update(ctx context.Context, id int, text string) (*Note, error) {
	result, err := sendBody[Note](ctx, s.Client, Call{
		Endpoint:   EndpointUpdateNote,
		Method:     http.MethodPut,
		Params:     NewParams("text", text),
		PathSuffix: strconv.Itoa(id),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a note.
func (s NotesService) Delete(ctx context.Context, id int) error {
	return s.Do(ctx, Call{
		Endpoint:   EndpointDeleteNote,
		Method:     http.MethodDelete,
		PathSuffix: strconv.Itoa(id),
	}, nil)
}
