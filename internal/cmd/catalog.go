package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/resolve"
	"github.com/arabah/arabah-cli/internal/validation"
)

var sortOptions = []string{"price", "rating", "newest"}

type searchInput struct {
	Query   string
	Filters api.SearchFilters
}

func validateSearchInput(in searchInput) error {
	if err := validation.MaxLength("search", in.Query, 200); err != nil {
		return err
	}
	if err := validation.ValidatePriceRange(in.Filters.MinPrice, in.Filters.MaxPrice); err != nil {
		return err
	}
	if in.Filters.SortBy != "" && !slices.Contains(sortOptions, in.Filters.SortBy) {
		return fmt.Errorf("--sort must be one of %s", strings.Join(sortOptions, ", "))
	}
	return nil
}

func newSearchCmd() *cobra.Command {
	var (
		category     string
		minPrice     float64
		maxPrice     float64
		sortBy       string
		saveFilters  bool
		clearFilters bool
		ignoreSaved  bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search products and compare shop prices",
		Long: `Searches the catalog. Filters saved with --save-filters apply to later searches
until cleared with --clear-filters or the session ends.`,
		Example: `  arabah search milk
  arabah search rice --category grains --max-price 40 --sort price --save-filters
  arabah search --category 3 --jq '.items[].name'`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var filters api.SearchFilters
			switch {
			case clearFilters:
				if err := a.session.SaveFilters(ctx, api.SearchFilters{}); err != nil {
					return fmt.Errorf("clearing saved filters: %w", err)
				}
			case !ignoreSaved:
				if saved, ok := a.session.Filters(ctx); ok {
					filters = saved
				}
			}

			if flagOrAliasChanged(cmd, "category") {
				id, err := resolveCategory(cmd, a, category)
				if err != nil {
					return err
				}
				filters.CategoryID = id
			}
			if flagOrAliasChanged(cmd, "min-price") {
				filters.MinPrice = minPrice
			}
			if flagOrAliasChanged(cmd, "max-price") {
				filters.MaxPrice = maxPrice
			}
			if flagOrAliasChanged(cmd, "sort") {
				filters.SortBy = strings.ToLower(strings.TrimSpace(sortBy))
			}

			in := searchInput{Query: strings.TrimSpace(strings.Join(args, " ")), Filters: filters}
			products, err := runOperation(cmd, "catalog.search", in, validateSearchInput,
				func(ctx context.Context, in searchInput) ([]api.Product, error) {
					return a.client.Catalog().Search(ctx, in.Query, in.Filters)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			if saveFilters {
				if err := a.session.SaveFilters(ctx, filters); err != nil {
					return fmt.Errorf("saving filters: %w", err)
				}
			}
			return renderProducts(cmd, products)
		}),
	}

	cmd.Flags().StringVar(&category, "category", "", "Category name or ID")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Lowest price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Highest price")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort order: price|rating|newest")
	cmd.Flags().BoolVar(&saveFilters, "save-filters", false, "Remember these filters for later searches")
	cmd.Flags().BoolVar(&clearFilters, "clear-filters", false, "Forget saved filters")
	cmd.Flags().BoolVar(&ignoreSaved, "no-saved-filters", false, "Ignore saved filters for this search")
	flagAlias(cmd.Flags(), "category", "cat")
	cmd.MarkFlagsMutuallyExclusive("save-filters", "clear-filters")
	return cmd
}

// resolveCategory maps a --category value to an ID, fetching the category
// list for names.
func resolveCategory(cmd *cobra.Command, a *app, value string) (int, error) {
	if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && id > 0 {
		return id, nil
	}
	categories, err := runOperation(cmd, "catalog.categories", struct{}{}, nil,
		func(ctx context.Context, _ struct{}) ([]api.Category, error) {
			return a.client.Catalog().Categories(ctx)
		})
	if err != nil {
		return 0, err
	}
	id, err := resolve.Category(value, categories)
	if err != nil {
		return 0, api.ValidationError(err.Error())
	}
	return id, nil
}

func renderProducts(cmd *cobra.Command, products []api.Product) error {
	f := newFormatter(cmd)
	if f.JSON() {
		return f.Output(products)
	}
	if len(products) == 0 {
		f.Empty("No products found")
		return nil
	}
	f.StartTable("ID", "NAME", "BRAND", "BEST PRICE", "SHOP", "RATING")
	for _, p := range products {
		price, shop := "-", "-"
		if best, ok := p.LowestPrice(); ok {
			price, shop = formatPrice(best.Price), best.ShopName
		}
		f.Row(strconv.Itoa(p.ID), truncate(p.Name, 40), p.Brand, price, shop, strconv.FormatFloat(p.AverageRating, 'f', 1, 64))
	}
	return f.EndTable()
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List product categories",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := runOperation(cmd, "catalog.categories", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) ([]api.Category, error) {
					return a.client.Catalog().Categories(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			f := newFormatter(cmd)
			if f.JSON() {
				return f.Output(categories)
			}
			if len(categories) == 0 {
				f.Empty("No categories")
				return nil
			}
			f.StartTable("ID", "NAME")
			for _, c := range categories {
				f.Row(strconv.Itoa(c.ID), c.Name)
			}
			return f.EndTable()
		}),
	}
}

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Inspect products",
	}
	cmd.AddCommand(newProductGetCmd())
	return cmd
}

func newProductGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id|name>",
		Aliases: []string{"show"},
		Short:   "Show a product with every shop's price",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := resolveProduct(cmd, a, strings.Join(args, " "))
			if err != nil || skipOutput(cmd) {
				return err
			}

			product, err := runOperation(cmd, "catalog.product", id, nil,
				func(ctx context.Context, id int) (*api.Product, error) {
					return a.client.Catalog().Product(ctx, id)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			return renderProduct(cmd, product)
		}),
	}
}

// resolveProduct accepts an ID or searches by name and picks the best match.
func resolveProduct(cmd *cobra.Command, a *app, value string) (int, error) {
	value = strings.TrimSpace(value)
	if id, err := strconv.Atoi(strings.TrimPrefix(value, "#")); err == nil {
		return parseID(strconv.Itoa(id), "product ID")
	}
	in := searchInput{Query: value}
	products, err := runOperation(cmd, "catalog.search", in, validateSearchInput,
		func(ctx context.Context, in searchInput) ([]api.Product, error) {
			return a.client.Catalog().Search(ctx, in.Query, in.Filters)
		})
	if err != nil || skipOutput(cmd) {
		return 0, err
	}
	id, err := resolve.Product(value, products)
	if err != nil {
		return 0, api.ValidationError(err.Error())
	}
	return id, nil
}

func renderProduct(cmd *cobra.Command, p *api.Product) error {
	if isJSON(cmd) {
		return printJSON(cmd, p)
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s (#%d)\n", p.Name, p.ID)
	if p.Brand != "" {
		_, _ = fmt.Fprintf(out, "Brand:  %s\n", p.Brand)
	}
	_, _ = fmt.Fprintf(out, "Rating: %.1f (%d reviews)\n\n", p.AverageRating, p.RatingCount)

	f := newFormatter(cmd)
	if len(p.Prices) == 0 {
		f.Empty("No shop prices listed")
		return nil
	}
	prices := slices.Clone(p.Prices)
	slices.SortStableFunc(prices, func(a, b api.ShopPrice) int {
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		default:
			return 0
		}
	})
	f.StartTable("SHOP", "PRICE")
	for _, price := range prices {
		f.Row(price.ShopName, formatPrice(price.Price))
	}
	return f.EndTable()
}
