package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/types"
)

type addressView struct {
	ID       string `json:"_id"`
	Address  string `json:"address"`
	Selected bool   `json:"selected"`
}

func (c *commander) addressCommand() *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		return c.run(cmd, true, func(_ context.Context, app *storefront.App, out *Output) error {
			return printAddresses(app, app.Addresses(), out)
		})
	}

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage saved shipping addresses",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List saved addresses",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "add <address>",
			Short: "Save a new address",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text := strings.Join(args, " ")
				return c.run(cmd, true, func(ctx context.Context, app *storefront.App, out *Output) error {
					list, err := app.AddAddress(ctx, text)
					if err != nil {
						return err
					}
					return printAddresses(app, list, out)
				})
			},
		},
		&cobra.Command{
			Use:   "rm <address-id>",
			Short: "Delete a saved address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, true, func(ctx context.Context, app *storefront.App, out *Output) error {
					list, err := app.DeleteAddress(ctx, args[0])
					if err != nil {
						return err
					}
					return printAddresses(app, list, out)
				})
			},
		},
		&cobra.Command{
			Use:   "select <address-id>",
			Short: "Choose the address to ship the next order to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, true, func(ctx context.Context, app *storefront.App, out *Output) error {
					if err := app.SelectAddress(ctx, args[0]); err != nil {
						return err
					}
					return printAddresses(app, app.Addresses(), out)
				})
			},
		},
	)
	return cmd
}

func printAddresses(app *storefront.App, list []types.Address, out *Output) error {
	selected := app.SelectedAddress()
	views := make([]addressView, 0, len(list))
	for _, a := range list {
		views = append(views, addressView{ID: a.ID, Address: a.Text, Selected: a.ID == selected})
	}
	return out.Success(views, func(w io.Writer) {
		if len(views) == 0 {
			fmt.Fprintln(w, "No addresses found for this account. Please add one to proceed")
			return
		}
		for _, v := range views {
			mark := " "
			if v.Selected {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s  %s\n", mark, v.ID, v.Address)
		}
	})
}
