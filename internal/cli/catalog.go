package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/types"
)

type searchView struct {
	Query    string          `json:"query"`
	Found    bool            `json:"found"`
	Products []types.Product `json:"products"`
}

func (c *commander) productsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, func(_ context.Context, app *storefront.App, out *Output) error {
				products := app.Products()
				return out.Success(products, func(w io.Writer) {
					writeProducts(w, products)
				})
			})
		},
	}
}

func (c *commander) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Search products by name or category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return c.run(cmd, false, func(ctx context.Context, app *storefront.App, out *Output) error {
				res, err := app.Search(ctx, query)
				if err != nil {
					return err
				}
				view := searchView{Query: res.Query, Found: res.Found, Products: res.Products}
				if view.Products == nil {
					view.Products = []types.Product{}
				}
				return out.Success(view, func(w io.Writer) {
					if !res.Found {
						fmt.Fprintln(w, "No products found")
						return
					}
					writeProducts(w, res.Products)
				})
			})
		},
	}
}

func writeProducts(w io.Writer, products []types.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCOST\tRATING")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\n", p.ID, p.Name, p.Category, p.Cost.StringFixed(2), p.Rating)
	}
	_ = tw.Flush()
}
