package api

import (
	"context"
	"net/http"
)

// RatingInput is a new product review. Images are optional.
type RatingInput struct {
	ProductID int
	Rating    float64
	Review    string
	Images    []Attachment
}

// Add posts a rating. All images are sent under the same "images[]" field.
func (s RatingsService) Add(ctx context.Context, input RatingInput) (*Rating, error) {
	params := NewParams(
		"product_id", input.ProductID,
		"rating", input.Rating,
		"review", input.Review,
	)
	if len(input.Images) > 0 {
		params.Set("images[]", input.Images)
	}

	result, err := sendBody[Rating](ctx, s.Client, Call{
		Endpoint: EndpointAddRating,
		Method:   http.MethodPost,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
