package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nikolayk812/gomarket-cart/internal/cart"
	"github.com/nikolayk812/gomarket-cart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithStore(cmd, opts, func(ctx context.Context) error {
				store, err := cart.FromContext(ctx)
				if err != nil {
					return err
				}
				return printCart(cmd.OutOrStdout(), store.Products())
			})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		product domain.Product
		price   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one unit of a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("price[%s] is not valid: %w", price, err)
			}
			product.Price = parsed

			return runWithStore(cmd, opts, func(ctx context.Context) error {
				store, err := cart.FromContext(ctx)
				if err != nil {
					return err
				}
				if err := store.AddToCart(product); err != nil {
					return fmt.Errorf("store.AddToCart: %w", err)
				}
				return printCart(cmd.OutOrStdout(), store.Products())
			})
		},
	}

	cmd.Flags().StringVar(&product.ID, "id", "", "product id")
	cmd.Flags().StringVar(&product.Title, "title", "", "product title")
	cmd.Flags().StringVar(&product.ImageURL, "image-url", "", "product image url")
	cmd.Flags().StringVar(&price, "price", "0", "unit price")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newIncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inc <id>",
		Short: "Increase the quantity of a cart item by one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd, opts, func(ctx context.Context) error {
				store, err := cart.FromContext(ctx)
				if err != nil {
					return err
				}
				if err := store.Increment(args[0]); err != nil {
					return fmt.Errorf("store.Increment: %w", err)
				}
				return printCart(cmd.OutOrStdout(), store.Products())
			})
		},
	}
}

func newDecCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dec <id>",
		Short: "Decrease the quantity of a cart item by one, removing it at zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd, opts, func(ctx context.Context) error {
				store, err := cart.FromContext(ctx)
				if err != nil {
					return err
				}
				if err := store.Decrement(args[0]); err != nil {
					return fmt.Errorf("store.Decrement: %w", err)
				}
				return printCart(cmd.OutOrStdout(), store.Products())
			})
		},
	}
}

func printCart(w io.Writer, items []domain.CartItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Title,
			item.Price.StringFixed(2),
			strconv.Itoa(item.Quantity),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "PRICE", "QTY").
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.String())
	return err
}
