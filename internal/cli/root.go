// Package cli is the storefront command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/notify"
	"github.com/angelmondragon/storefront/internal/storefront"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ValidFormats = []string{FormatText, FormatJSON}

// RootOptions holds the global flags.
type RootOptions struct {
	Verbose bool
	Format  string
	Profile string
}

// Runtime is one opened storefront plus whatever must be released after the
// command finishes.
type Runtime struct {
	App   *storefront.App
	Close func() error
}

// RuntimeFactory opens the storefront for a single command invocation.
type RuntimeFactory func(ctx context.Context, opts *RootOptions, notifier notify.Notifier) (*Runtime, error)

// NewRootCommand builds the storefront command tree.
func NewRootCommand(factory RuntimeFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the catalog, manage the cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return &ExitError{
					Code: ExitCommandError,
					Err:  fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats),
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "session profile to use")

	c := &commander{opts: opts, factory: factory}
	cmd.AddCommand(
		c.productsCommand(),
		c.searchCommand(),
		c.cartCommand(),
		c.addressCommand(),
		c.checkoutCommand(),
		c.loginCommand(),
		c.registerCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
	)
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

type commander struct {
	opts    *RootOptions
	factory RuntimeFactory
}

// action is the body of a command once the storefront is open.
type action func(ctx context.Context, app *storefront.App, out *Output) error

// run opens the storefront, optionally loads the shopper's view and hands
// over to fn. Errors are printed before being returned.
func (c *commander) run(cmd *cobra.Command, load bool, fn action) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	seen := &notify.Recorder{}
	out := &Output{
		Format:    c.opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   c.opts.Verbose,
		Seen:      seen,
	}
	notifier := notify.Multi{seen}
	if c.opts.Format == FormatText {
		notifier = append(notifier, notify.NewWriterNotifier(cmd.OutOrStdout()))
	}

	rt, err := c.factory(ctx, c.opts, notifier)
	if err != nil {
		return out.Error(&ExitError{Code: ExitCommandError, Err: err})
	}
	defer func() {
		if rt.Close == nil {
			return
		}
		if closeErr := rt.Close(); closeErr != nil {
			out.Debugf("close: %v", closeErr)
		}
	}()

	if load {
		out.Debugf("loading storefront state")
		if err := rt.App.Load(ctx); err != nil {
			return out.Error(err)
		}
	}
	if err := fn(ctx, rt.App, out); err != nil {
		return out.Error(err)
	}
	return nil
}
