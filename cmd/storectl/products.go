package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fake-store/go-client/pkg/models"
)

func productsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "categories",
			Short: "List product categories",
			RunE: func(cmd *cobra.Command, _ []string) error {
				categories, err := a.rt.Catalog.Categories(cmd.Context())
				if err != nil {
					return err
				}
				return a.emit(categories, func(w io.Writer) {
					for _, c := range categories {
						fmt.Fprintln(w, c)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "list <category>",
			Short: "List products in a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				products, err := a.rt.Catalog.Products(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.emit(products, func(w io.Writer) {
					fmt.Fprintln(w, "ID\tPRICE\tTITLE")
					for _, p := range products {
						fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Price, p.Title)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.rt.Catalog.Product(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.emit(p, func(w io.Writer) { printProduct(w, p) })
			},
		},
	)
	return cmd
}

func printProduct(w io.Writer, p models.Product) {
	fmt.Fprintf(w, "id\t%s\n", p.ID)
	fmt.Fprintf(w, "title\t%s\n", p.Title)
	fmt.Fprintf(w, "price\t%s\n", p.Price)
	fmt.Fprintf(w, "category\t%s\n", p.Category)
	if p.Description != "" {
		fmt.Fprintf(w, "description\t%s\n", p.Description)
	}
}
