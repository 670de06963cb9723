package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fake-store/go-client/pkg/models"
)

func (a *app) printCart(state models.CartState) error {
	return a.emit(state, func(w io.Writer) {
		if len(state.Items) == 0 {
			fmt.Fprintln(w, "cart is empty")
			return
		}
		fmt.Fprintln(w, "ID\tQTY\tPRICE\tTOTAL\tTITLE")
		for _, item := range state.Items {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", item.ID, item.Quantity, item.Price, item.LineTotal, item.Title)
		}
		fmt.Fprintf(w, "\t%d\t\t%s\t\n", state.TotalQuantity, state.TotalAmount)
		if state.SyncError != "" {
			fmt.Fprintf(w, "sync error: %s\n", state.SyncError)
		}
	})
}

// loadCart makes the service's cart the local starting point.
func (a *app) loadCart(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	_, err := a.rt.Cart.FetchRemote(ctx)
	return err
}

// cartEdit loads the cart, applies edit and schedules the push that
// teardown flushes.
func (a *app) cartEdit(edit func(ctx context.Context) (models.CartState, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := a.loadCart(cmd.Context()); err != nil {
			return err
		}
		state, err := edit(cmd.Context())
		if err != nil {
			return err
		}
		a.rt.Sync.Schedule()
		return a.printCart(state)
	}
}

func cartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the cart",
	}

	var productID string
	idArg := func(c *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(1)(c, args); err != nil {
			return err
		}
		productID = args[0]
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.loadCart(cmd.Context()); err != nil {
					return err
				}
				return a.printCart(a.rt.Cart.Snapshot())
			},
		},
		&cobra.Command{
			Use:   "pull",
			Short: "Replace the local cart with the service's cart",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				state, err := a.rt.Cart.FetchRemote(cmd.Context())
				if err != nil {
					return err
				}
				return a.printCart(state)
			},
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add one unit of a product",
			Args:  idArg,
			RunE: a.cartEdit(func(ctx context.Context) (models.CartState, error) {
				p, err := a.rt.Catalog.Product(ctx, productID)
				if err != nil {
					return models.CartState{}, err
				}
				return a.rt.Cart.AddItem(p)
			}),
		},
		&cobra.Command{
			Use:   "inc <product-id>",
			Short: "Increase a line's quantity by one",
			Args:  idArg,
			RunE: a.cartEdit(func(context.Context) (models.CartState, error) {
				return a.rt.Cart.IncreaseQuantity(productID), nil
			}),
		},
		&cobra.Command{
			Use:   "dec <product-id>",
			Short: "Decrease a line's quantity by one, removing it at zero",
			Args:  idArg,
			RunE: a.cartEdit(func(context.Context) (models.CartState, error) {
				return a.rt.Cart.DecreaseQuantity(productID), nil
			}),
		},
		&cobra.Command{
			Use:   "rm <product-id>",
			Short: "Remove a line",
			Args:  idArg,
			RunE: a.cartEdit(func(context.Context) (models.CartState, error) {
				return a.rt.Cart.RemoveItem(productID), nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			RunE: a.cartEdit(func(context.Context) (models.CartState, error) {
				return a.rt.Cart.Clear(), nil
			}),
		},
	)
	return cmd
}

func checkoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadCart(cmd.Context()); err != nil {
				return err
			}
			total := a.rt.Cart.Snapshot().TotalAmount
			orderID, err := a.rt.Cart.Checkout(cmd.Context())
			if orderID == "" {
				return err
			}
			result := struct {
				OrderID string       `json:"order_id"`
				Total   models.Money `json:"total_cents"`
				Warning string       `json:"warning,omitempty"`
			}{OrderID: orderID, Total: total}
			if err != nil {
				result.Warning = err.Error()
			}
			return a.emit(result, func(w io.Writer) {
				fmt.Fprintf(w, "order %s placed, total %s\n", orderID, total)
				if result.Warning != "" {
					fmt.Fprintf(w, "warning: %s\n", result.Warning)
				}
			})
		},
	}
}
