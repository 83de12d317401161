package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/storefront"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type checkoutView struct {
	Success bool            `json:"success"`
	Charged decimal.Decimal `json:"charged"`
	Balance decimal.Decimal `json:"balance"`
	Next    string          `json:"next,omitempty"`
}

func (c *commander) checkoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, func(ctx context.Context, app *storefront.App, out *Output) error {
				outcome, err := app.Checkout(ctx)
				if err != nil {
					return err
				}
				if !outcome.Success {
					return pkgerrors.New(pkgerrors.CodeRejected, "The order was not placed")
				}
				view := checkoutView{
					Success: true,
					Charged: outcome.Charged,
					Balance: outcome.NewBalance,
					Next:    outcome.Next.String(),
				}
				return out.Success(view, func(w io.Writer) {
					fmt.Fprintf(w, "Charged %s, remaining balance %s\n", view.Charged.StringFixed(2), view.Balance.StringFixed(2))
				})
			})
		},
	}
}
