package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/validation"
)

func newRatingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ratings",
		Aliases: []string{"rating", "review"},
		Short:   "Rate products",
	}
	cmd.AddCommand(newRatingsAddCmd())
	return cmd
}

func validateRatingInput(in api.RatingInput) error {
	if in.ProductID <= 0 {
		return api.ValidationError("product ID is required")
	}
	return validation.ValidateRating(int(in.Rating), in.Review, len(in.Images))
}

func newRatingsAddCmd() *cobra.Command {
	var (
		stars  int
		review string
		images []string
	)

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Rate a product, optionally with a review and photos",
		Example: `  arabah ratings add 42 --rating 5 --review "Fresh and cheap"
  arabah ratings add 42 --rating 3 --image shelf.jpg --image receipt.png`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product ID")
			if err != nil {
				return err
			}
			if len(images) > validation.MaxRatingImages {
				return api.ValidationError(fmt.Sprintf("at most %d images can be attached (got %d)", validation.MaxRatingImages, len(images)))
			}

			in := api.RatingInput{ProductID: productID, Rating: float64(stars), Review: strings.TrimSpace(review)}
			for _, path := range images {
				attachment, err := readAttachment(path)
				if err != nil {
					return err
				}
				in.Images = append(in.Images, attachment)
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}

			rating, err := runOperation(cmd, "ratings.add", in, validateRatingInput,
				func(ctx context.Context, in api.RatingInput) (*api.Rating, error) {
					return a.client.Ratings().Add(ctx, in)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, rating)
			}
			return printDone(cmd, fmt.Sprintf("Rated product %d with %d stars", productID, stars), nil)
		}),
	}

	cmd.Flags().IntVar(&stars, "rating", 0, "Stars from 1 to 5")
	cmd.Flags().StringVar(&review, "review", "", "Review text")
	cmd.Flags().StringArrayVar(&images, "image", nil, "Photo to attach (repeatable)")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}
