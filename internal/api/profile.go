package api

import (
	"context"
	"net/http"
)

// Get gets the signed-in user's profile.
func (s ProfileService) Get(ctx context.Context) (*Profile, error) {
	result, err := sendBody[Profile](ctx, s.Client, Call{
		Endpoint: EndpointGetProfile,
		Method:   http.MethodGet,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ProfileUpdate holds the editable profile fields. Empty fields are not sent.
type ProfileUpdate struct {
	Name   string
	Email  string
	Avatar *Attachment
}

// Update edits the profile. The endpoint is multipart so an avatar image can
// travel with the text fields.
func (s ProfileService) Update(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	params := Params{}
	if update.Name != "" {
		params.Set("name", update.Name)
	}
	if update.Email != "" {
		params.Set("email", update.Email)
	}
	if update.Avatar != nil {
		params.Set("image", *update.Avatar)
	}

	result, err := sendBody[Profile](ctx, s.Client, Call{
		Endpoint: EndpointUpdateProfile,
		Method:   http.MethodPost,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
