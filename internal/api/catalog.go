package api

import (
	"context"
	"net/http"
	"strconv"
)

// Categories lists the catalog categories.
func (s CatalogService) Categories(ctx context.Context) ([]Category, error) {
	return sendBody[[]Category](ctx, s.Client, Call{
		Endpoint: EndpointCategories,
		Method:   http.MethodGet,
	})
}

// Search finds products matching query, narrowed by filters.
func (s CatalogService) Search(ctx context.Context, query string, filters SearchFilters) ([]Product, error) {
	params := NewParams("search", query)
	if filters.CategoryID > 0 {
		params.Set("category_id", filters.CategoryID)
	}
	if filters.MinPrice > 0 {
		params.Set("min_price", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		params.Set("max_price", filters.MaxPrice)
	}
	if filters.SortBy != "" {
		params.Set("sort_by", filters.SortBy)
	}

	return sendBody[[]Product](ctx, s.Client, Call{
		Endpoint: EndpointSearch,
		Method:   http.MethodGet,
		Params:   params,
	})
}

// Product gets one product with its shop prices.
func (s CatalogService) Product(ctx context.Context, id int) (*Product, error) {
	result, err := sendBody[Product](ctx, s.Client, Call{
		Endpoint:   EndpointProduct,
		Method:     http.MethodGet,
		PathSuffix: strconv.Itoa(id),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AppVersion reports the client versions the server supports.
func (s CatalogService) AppVersion(ctx context.Context) (*AppVersion, error) {
	result, err := sendBody[AppVersion](ctx, s.Client, Call{
		Endpoint: EndpointAppVersion,
		Method:   http.MethodGet,
		Params:   NewParams("platform", "cli"),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
