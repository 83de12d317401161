package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/storefront"
)

type cartLineView struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Cost      decimal.Decimal `json:"cost"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type cartView struct {
	Items   []cartLineView     `json:"items"`
	Summary storefront.Summary `json:"summary"`
}

func (c *commander) cartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, func(_ context.Context, app *storefront.App, out *Output) error {
				return printCart(app, out)
			})
		},
	}

	mutation := func(use, short string, apply func(*storefront.App, context.Context, string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <product-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, true, func(ctx context.Context, app *storefront.App, out *Output) error {
					if err := apply(app, ctx, args[0]); err != nil {
						return err
					}
					return printCart(app, out)
				})
			},
		}
	}

	cmd.AddCommand(
		mutation("add", "Add a product to the cart", (*storefront.App).AddToCart),
		mutation("inc", "Add one more unit of a cart line", (*storefront.App).Increment),
		mutation("dec", "Remove one unit of a cart line", (*storefront.App).Decrement),
		mutation("rm", "Remove a cart line", (*storefront.App).Remove),
		c.cartSetCommand(),
	)
	return cmd
}

func (c *commander) cartSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <qty>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Err: fmt.Errorf("invalid quantity %q", args[1])}
			}
			return c.run(cmd, true, func(ctx context.Context, app *storefront.App, out *Output) error {
				if err := app.SetQuantity(ctx, args[0], qty); err != nil {
					return err
				}
				return printCart(app, out)
			})
		},
	}
}

func printCart(app *storefront.App, out *Output) error {
	items := app.Items()
	view := cartView{Items: make([]cartLineView, 0, len(items)), Summary: app.Summary()}
	for _, item := range items {
		view.Items = append(view.Items, cartLineView{
			ProductID: item.ProductID(),
			Name:      item.Product.Name,
			Qty:       item.Qty(),
			Cost:      item.Product.Cost,
			LineTotal: item.LineTotal(),
		})
	}
	return out.Success(view, func(w io.Writer) {
		if len(view.Items) == 0 {
			fmt.Fprintln(w, "Cart is empty. Add items to the cart to checkout")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tQTY\tCOST\tTOTAL")
		for _, line := range view.Items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", line.ProductID, line.Name, line.Qty, line.Cost.StringFixed(2), line.LineTotal.StringFixed(2))
		}
		_ = tw.Flush()
		s := view.Summary
		fmt.Fprintf(w, "\nProducts: %d\nSubtotal: %s\nShipping: %s\nTotal:    %s\nBalance:  %s\n",
			s.Products, s.Subtotal.StringFixed(2), s.Shipping.StringFixed(2), s.Total.StringFixed(2), s.Balance.StringFixed(2))
	})
}
