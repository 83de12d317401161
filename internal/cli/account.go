package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/storefront"
)

type whoamiView struct {
	Authenticated     bool            `json:"authenticated"`
	Username          string          `json:"username,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	SelectedAddressID string          `json:"selectedAddressId,omitempty"`
}

func (c *commander) loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(ctx context.Context, app *storefront.App, out *Output) error {
				sess, err := app.Login(ctx, args[0], password)
				if err != nil {
					return err
				}
				view := whoamiView{Authenticated: true, Username: sess.Username, Balance: sess.Balance}
				return out.Success(view, nil)
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func (c *commander) registerCommand() *cobra.Command {
	var password, confirm string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirm == "" {
				confirm = password
			}
			return c.run(cmd, false, func(ctx context.Context, app *storefront.App, out *Output) error {
				if err := app.Register(ctx, args[0], password, confirm); err != nil {
					return err
				}
				return out.Success(map[string]string{"username": args[0]}, nil)
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation (defaults to --password)")
	return cmd
}

func (c *commander) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(ctx context.Context, app *storefront.App, out *Output) error {
				if err := app.Logout(ctx); err != nil {
					return err
				}
				return out.Success(map[string]bool{"authenticated": false}, func(w io.Writer) {
					fmt.Fprintln(w, "Logged out")
				})
			})
		},
	}
}

func (c *commander) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(_ context.Context, app *storefront.App, out *Output) error {
				sess := app.Session()
				view := whoamiView{
					Authenticated:     sess.Authenticated(time.Now()),
					Username:          sess.Username,
					Balance:           sess.Balance,
					SelectedAddressID: sess.SelectedAddressID,
				}
				return out.Success(view, func(w io.Writer) {
					if !view.Authenticated {
						fmt.Fprintln(w, "Not logged in")
						return
					}
					fmt.Fprintf(w, "%s (balance %s)\n", view.Username, view.Balance.StringFixed(2))
				})
			})
		},
	}
}
