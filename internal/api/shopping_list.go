package api

import (
	"context"
	"net/http"
	"strconv"
)

// List returns the shopping list with per-shop totals.
func (s ShoppingListService) List(ctx context.Context) (*ShoppingList, error) {
	result, err := sendBody[ShoppingList](ctx, s.Client, Call{
		Endpoint: EndpointShoppingList,
		Method:   http.MethodGet,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Add puts a product on the shopping list.
func (s ShoppingListService) Add(ctx context.Context, productID int) (*ShoppingItem, error) {
	result, err := sendBody[ShoppingItem](ctx, s.Client, Call{
		Endpoint: EndpointShoppingListAdd,
		Method:   http.MethodPost,
		Params:   NewParams("product_id", productID),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Remove deletes one entry from the shopping list.
func (s ShoppingListService) Remove(ctx context.Context, id int) error {
	return s.Do(ctx, Call{
		Endpoint:   EndpointShoppingListDel,
		Method:     http.MethodDelete,
		PathSuffix: strconv.Itoa(id),
	}, nil)
}

// Clear empties the shopping list.
func (s ShoppingListService) Clear(ctx context.Context) error {
	return s.Do(ctx, Call{Endpoint: EndpointShoppingListClear, Method: http.MethodDelete}, nil)
}
