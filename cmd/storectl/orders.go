package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fake-store/go-client/pkg/models"
)

func printOrders(w io.Writer, title string, orders []models.Order) {
	if len(orders) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", title)
	for _, o := range orders {
		quantity := 0
		for _, line := range o.Items {
			quantity += line.Quantity
		}
		fmt.Fprintf(w, "  %s\t%d items\t%s\n", o.ID, quantity, o.TotalPrice)
	}
}

func ordersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders and move them forward",
	}

	transition := func(use, short string, apply func(*cobra.Command, string) (models.Order, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <order-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if _, err := a.rt.Orders.FetchAll(cmd.Context()); err != nil {
					return err
				}
				order, err := apply(cmd, args[0])
				if err != nil {
					return err
				}
				return a.emit(order, func(w io.Writer) {
					fmt.Fprintf(w, "order %s is %s\n", order.ID, order.Status())
				})
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List orders grouped by status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				collection, err := a.rt.Orders.FetchAll(cmd.Context())
				if err != nil {
					return err
				}
				groups := a.rt.Orders.Grouped()
				return a.emit(collection, func(w io.Writer) {
					fmt.Fprintf(w, "new orders: %d\n", collection.NewCount)
					printOrders(w, "New", groups.New)
					printOrders(w, "Paid", groups.Paid)
					printOrders(w, "Delivered", groups.Delivered)
				})
			},
		},
		transition("pay", "Pay for a new order", func(cmd *cobra.Command, id string) (models.Order, error) {
			return a.rt.Orders.Pay(cmd.Context(), id)
		}),
		transition("receive", "Mark an order delivered", func(cmd *cobra.Command, id string) (models.Order, error) {
			return a.rt.Orders.MarkDelivered(cmd.Context(), id)
		}),
	)
	return cmd
}
