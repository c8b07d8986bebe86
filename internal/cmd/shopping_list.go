package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/iocontext"
)

func newShoppingListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shopping-list",
		Aliases: []string{"list", "sl"},
		Short:   "Manage your shopping list",
	}

	cmd.AddCommand(newShoppingListShowCmd())
	cmd.AddCommand(newShoppingListAddCmd())
	cmd.AddCommand(newShoppingListRemoveCmd())
	cmd.AddCommand(newShoppingListClearCmd())
	return cmd
}

func newShoppingListShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"ls"},
		Short:   "Show the list and what it costs in each shop",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := runOperation(cmd, "shopping_list.list", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) (*api.ShoppingList, error) {
					return a.client.ShoppingList().List(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			f := newFormatter(cmd)
			if f.JSON() {
				return f.Output(list)
			}
			if len(list.Items) == 0 {
				f.Empty("Your shopping list is empty")
				return nil
			}
			f.StartTable("ID", "PRODUCT", "BEST PRICE", "SHOP")
			for _, item := range list.Items {
				price, shop := "-", "-"
				if best, ok := item.Product.LowestPrice(); ok {
					price, shop = formatPrice(best.Price), best.ShopName
				}
				f.Row(strconv.Itoa(item.ID), truncate(item.Product.Name, 40), price, shop)
			}
			if err := f.EndTable(); err != nil {
				return err
			}

			if len(list.ShopTotals) > 0 {
				f.Line("")
				f.StartTable("SHOP", "TOTAL")
				for _, total := range list.ShopTotals {
					f.Row(total.ShopName, formatPrice(total.Price))
				}
				return f.EndTable()
			}
			return nil
		}),
	}
}

func newShoppingListAddCmd() *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:   "add <product-id>...",
		Short: "Add products to the list",
		Example: `  arabah shopping-list add 42
  arabah shopping-list add 42 43 57`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "product ID")
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(ids) == 1 {
				item, err := runOperation(cmd, "shopping_list.add", ids[0], nil,
					func(ctx context.Context, id int) (*api.ShoppingItem, error) {
						return a.client.ShoppingList().Add(ctx, id)
					})
				if err != nil || skipOutput(cmd) {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, item)
				}
				return printDone(cmd, fmt.Sprintf("Added product %d", ids[0]), nil)
			}

			var progress = iocontext.GetIO(cmd.Context()).ErrOut
			if isJSON(cmd) || flags.Quiet {
				progress = nil
			}
			results := runBulkOperation(cmd.Context(), ids, concurrency, progress,
				func(ctx context.Context, id int) (*api.ShoppingItem, error) {
					return a.client.ShoppingList().Add(ctx, id)
				})
			if skipOutput(cmd) {
				return nil
			}
			return reportBulk(cmd, "Added", results)
		}),
	}

	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Parallel requests when adding several products")
	return cmd
}

// reportBulk prints the bulk summary and fails when any item failed.
func reportBulk(cmd *cobra.Command, verb string, results []BulkResult) error {
	success, failure := countResults(results)
	if isJSON(cmd) {
		if err := printJSON(cmd, map[string]any{"succeeded": success, "failed": failure, "results": results}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d products\n", verb, success, len(results))
		for _, r := range results {
			if !r.Success {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %d: %s\n", r.ID, r.Error)
			}
		}
	}
	if failure > 0 {
		return fmt.Errorf("%d of %d products failed: %v", failure, len(results), failedIDs(results))
	}
	return nil
}

func newShoppingListRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an entry from the list",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item ID")
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = runOperation(cmd, "shopping_list.remove", id, nil,
				func(ctx context.Context, id int) (struct{}, error) {
					return struct{}{}, a.client.ShoppingList().Remove(ctx, id)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			return printDone(cmd, fmt.Sprintf("Removed item %d", id), map[string]any{"id": id})
		}),
	}
}

func newShoppingListClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the shopping list",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:        "Remove every item from your shopping list? [y/N] ",
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

			_, err = runOperation(cmd, "shopping_list.clear", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) (struct{}, error) {
					return struct{}{}, a.client.ShoppingList().Clear(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			return printDone(cmd, "Shopping list cleared", nil)
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
