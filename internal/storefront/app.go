// Package storefront ties the catalog, cart, address book, checkout and
// account flows to one shopper session and reports every outcome through a
// notifier.
package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/account"
	"github.com/angelmondragon/storefront/internal/address"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/notify"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/session"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const msgCheckoutLogin = "You must be logged in to access checkout page"

// Backend is the full storefront API surface.
type Backend interface {
	catalog.Backend
	cart.Backend
	address.Backend
	checkout.Backend
	Login(ctx context.Context, username, password string) (types.LoginResponse, error)
	Register(ctx context.Context, username, password string) (types.RegisterResponse, error)
}

type Params struct {
	Backend  Backend
	Holder   *session.Holder
	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.ClientMetrics
	Debounce time.Duration
}

// App owns the view state of one shopper: the visible catalog, the
// reconciled cart and the address book.
type App struct {
	holder   *session.Holder
	notifier notify.Notifier
	logg     *logger.Logger
	debounce time.Duration

	catalog  *catalog.Service
	mutator  *cart.Mutator
	book     *address.Book
	executor *checkout.Executor
	account  account.Service

	mu    sync.Mutex
	all   []types.Product
	items []cart.Item
}

func New(params Params) (*App, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if params.Holder == nil {
		return nil, fmt.Errorf("session holder is required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{Logger: params.Logger}
	}
	acct, err := account.NewService(account.ServiceParams{
		Backend: params.Backend,
		Holder:  params.Holder,
		Logger:  params.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &App{
		holder:   params.Holder,
		notifier: notifier,
		logg:     params.Logger,
		debounce: params.Debounce,
		catalog:  catalog.NewService(params.Backend, nil, params.Logger),
		mutator:  cart.NewMutator(params.Backend, params.Logger, params.Metrics),
		book:     address.NewBook(params.Backend, params.Logger),
		executor: checkout.NewExecutor(params.Backend, params.Logger, params.Metrics),
		account:  acct,
		items:    []cart.Item{},
	}, nil
}

func (a *App) Session() session.Session {
	return a.holder.Current()
}

// Products returns the catalog currently on display.
func (a *App) Products() []types.Product {
	return a.catalog.Cache().Snapshot()
}

func (a *App) Items() []cart.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]cart.Item(nil), a.items...)
}

func (a *App) Addresses() []types.Address {
	return a.book.Addresses()
}

func (a *App) SelectedAddress() string {
	return a.book.Selected()
}

// Load fetches the catalog and, for a signed-in shopper, the cart and the
// saved addresses. The fetches run concurrently; the cart is reconciled once
// all of them have returned.
func (a *App) Load(ctx context.Context) error {
	sess := a.holder.Current()
	signedIn := a.holder.Authenticated()

	var (
		products []types.Product
		entries  []types.CartEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = a.catalog.Refresh(gctx)
		return a.tag(notify.OpProducts, err)
	})
	if signedIn {
		g.Go(func() error {
			var err error
			entries, err = a.mutator.Entries(gctx, sess)
			return a.tag(notify.OpCart, err)
		})
		g.Go(func() error {
			_, err := a.book.Load(gctx, sess)
			return a.tag(notify.OpAddresses, err)
		})
	}
	if err := g.Wait(); err != nil {
		return a.report(ctx, err)
	}

	a.book.Select(sess.SelectedAddressID)
	items, err := cart.Reconcile(entries, products)
	if err != nil {
		return a.fail(ctx, notify.OpCart, err)
	}
	a.mu.Lock()
	a.all = products
	a.items = items
	a.mu.Unlock()
	return nil
}

// Search shows the products matching text. A search with no matches is not
// an error; the result reports Found false.
func (a *App) Search(ctx context.Context, text string) (catalog.SearchResult, error) {
	res, err := a.catalog.Search(ctx, text)
	if err != nil {
		return catalog.SearchResult{}, a.fail(ctx, notify.OpSearch, err)
	}
	return res, nil
}

// NewSearchDebouncer returns a debouncer whose latest result replaces the
// displayed catalog before deliver sees it.
func (a *App) NewSearchDebouncer(ctx context.Context, deliver func(catalog.SearchResult, error)) *catalog.Debouncer {
	return catalog.NewDebouncer(ctx, a.debounce, a.catalog.Find, func(res catalog.SearchResult, err error) {
		if err != nil {
			err = a.fail(ctx, notify.OpSearch, err)
		} else {
			res = a.catalog.Apply(res)
		}
		if deliver != nil {
			deliver(res, err)
		}
	})
}

// AddToCart adds one unit of productID. A product already in the cart is
// refused.
func (a *App) AddToCart(ctx context.Context, productID string) error {
	return a.mutate(ctx, func(items []cart.Item) (cart.Intent, error) {
		return cart.Add(productID), nil
	})
}

func (a *App) Increment(ctx context.Context, productID string) error {
	return a.mutate(ctx, func(items []cart.Item) (cart.Intent, error) {
		item, err := lineFor(items, productID)
		return cart.Increment(item), err
	})
}

// Decrement removes one unit; the line disappears at zero.
func (a *App) Decrement(ctx context.Context, productID string) error {
	return a.mutate(ctx, func(items []cart.Item) (cart.Intent, error) {
		item, err := lineFor(items, productID)
		return cart.Decrement(item), err
	})
}

func (a *App) Remove(ctx context.Context, productID string) error {
	return a.mutate(ctx, func(items []cart.Item) (cart.Intent, error) {
		item, err := lineFor(items, productID)
		return cart.Remove(item), err
	})
}

// SetQuantity sets an absolute quantity from the cart view.
func (a *App) SetQuantity(ctx context.Context, productID string, qty int) error {
	return a.mutate(ctx, func([]cart.Item) (cart.Intent, error) {
		return cart.Intent{ProductID: productID, Qty: qty, Mode: enums.QuantityModeFree}, nil
	})
}

func (a *App) mutate(ctx context.Context, build func([]cart.Item) (cart.Intent, error)) error {
	current := a.Items()
	intent, err := build(current)
	if err != nil {
		return a.fail(ctx, notify.OpCart, err)
	}
	items, err := a.mutator.Apply(ctx, a.holder.Current(), intent, a.catalogFor(), current)
	if err != nil {
		return a.fail(ctx, notify.OpCart, err)
	}
	a.mu.Lock()
	a.items = items
	a.mu.Unlock()
	return nil
}

// catalogFor is the product list cart lines are joined against. It is the
// full catalog from the last Load, not the search-filtered view.
func (a *App) catalogFor() []types.Product {
	a.mu.Lock()
	all := a.all
	a.mu.Unlock()
	if len(all) > 0 {
		return all
	}
	return a.catalog.Cache().Snapshot()
}

func lineFor(items []cart.Item, productID string) (cart.Item, error) {
	item, ok := cart.Find(items, productID)
	if !ok {
		return cart.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not in the cart", productID))
	}
	return item, nil
}

func (a *App) AddAddress(ctx context.Context, text string) ([]types.Address, error) {
	list, err := a.book.Add(ctx, a.holder.Current(), text)
	if err != nil {
		return nil, a.fail(ctx, notify.OpAddAddress, err)
	}
	return list, nil
}

// DeleteAddress removes id. Deleting the selected address also clears the
// stored selection.
func (a *App) DeleteAddress(ctx context.Context, id string) ([]types.Address, error) {
	list, err := a.book.Remove(ctx, a.holder.Current(), id)
	if err != nil {
		return nil, a.fail(ctx, notify.OpDeleteAddress, err)
	}
	if err := a.persistSelection(ctx, a.book.Selected()); err != nil {
		return list, a.fail(ctx, notify.OpDeleteAddress, err)
	}
	return list, nil
}

// SelectAddress records id as the shipping address. The id is checked at
// checkout, not here.
func (a *App) SelectAddress(ctx context.Context, id string) error {
	a.book.Select(id)
	if err := a.persistSelection(ctx, id); err != nil {
		return a.fail(ctx, notify.OpAddresses, err)
	}
	return nil
}

func (a *App) persistSelection(ctx context.Context, id string) error {
	if a.holder.Current().SelectedAddressID == id {
		return nil
	}
	_, err := a.holder.Update(ctx, func(s *session.Session) error {
		s.SelectedAddressID = id
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not save address selection")
	}
	return nil
}

// Checkout places the order for the current cart. Without a session it
// points the caller to the login screen.
func (a *App) Checkout(ctx context.Context) (checkout.Outcome, error) {
	if !a.holder.Authenticated() {
		a.notifier.Notify(ctx, notify.Info(msgCheckoutLogin))
		return checkout.Outcome{Next: enums.DestinationLogin},
			pkgerrors.Reject(enums.RejectionReasonUnauthenticated, msgCheckoutLogin)
	}
	total, ok := cart.TotalValue(a.Items())
	if !ok {
		total = decimal.Zero
	}
	cctx := a.book.Context()

	out, err := a.executor.Execute(ctx, a.holder, total, cctx)
	if err != nil {
		return out, a.fail(ctx, notify.OpCheckout, err)
	}
	if !out.Success {
		return out, nil
	}
	a.mu.Lock()
	a.items = []cart.Item{}
	a.mu.Unlock()
	a.notifier.Notify(ctx, notify.Success(checkout.MsgOrderPlaced))
	return out, nil
}

// Summary is the order summary shown next to the cart.
type Summary struct {
	Products int             `json:"products"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
}

func (a *App) Summary() Summary {
	items := a.Items()
	subtotal, ok := cart.TotalValue(items)
	if !ok {
		subtotal = decimal.Zero
	}
	return Summary{
		Products: cart.Quantity(items),
		Subtotal: subtotal,
		Shipping: decimal.Zero,
		Total:    subtotal,
		Balance:  a.holder.Current().Balance,
	}
}

func (a *App) Login(ctx context.Context, username, password string) (session.Session, error) {
	sess, err := a.account.Login(ctx, username, password)
	if err != nil {
		return session.Session{}, a.fail(ctx, notify.OpLogin, err)
	}
	a.notifier.Notify(ctx, notify.Success(account.MsgLoggedIn))
	return sess, nil
}

func (a *App) Register(ctx context.Context, username, password, confirm string) error {
	if err := a.account.Register(ctx, username, password, confirm); err != nil {
		return a.fail(ctx, notify.OpRegister, err)
	}
	a.notifier.Notify(ctx, notify.Success(account.MsgRegistered))
	return nil
}

// Logout clears the stored session and the signed-in view state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.account.Logout(ctx); err != nil {
		return err
	}
	a.book.Reset()
	a.mu.Lock()
	a.items = []cart.Item{}
	a.mu.Unlock()
	return nil
}
