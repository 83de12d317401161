// Package address keeps the shopper's saved shipping addresses and the
// current selection.
package address

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/session"
	"github.com/angelmondragon/storefront/pkg/types"
)

type Backend interface {
	ListAddresses(ctx context.Context, token string) ([]types.Address, error)
	AddAddress(ctx context.Context, token, text string) ([]types.Address, error)
	DeleteAddress(ctx context.Context, token, id string) ([]types.Address, error)
}

// Book mirrors the server's address list. Every successful write replaces the
// local list with the one the server returned.
type Book struct {
	backend Backend
	logg    *logger.Logger
	now     func() time.Time

	mu        sync.Mutex
	addresses []types.Address
	selected  string
}

func NewBook(backend Backend, logg *logger.Logger) *Book {
	return &Book{backend: backend, logg: logg, now: time.Now, addresses: []types.Address{}}
}

// Load fetches the saved addresses.
func (b *Book) Load(ctx context.Context, sess session.Session) ([]types.Address, error) {
	if err := b.requireLogin(sess); err != nil {
		return nil, err
	}
	list, err := b.backend.ListAddresses(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	return b.replace(list), nil
}

// Add saves text as a new address. Blank text is refused locally.
func (b *Book) Add(ctx context.Context, sess session.Session, text string) ([]types.Address, error) {
	if err := b.requireLogin(sess); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address text is required")
	}
	list, err := b.backend.AddAddress(ctx, sess.Token, text)
	if err != nil {
		return nil, err
	}
	if b.logg != nil {
		b.logg.Debug(b.logg.WithField(ctx, "addresses", len(list)), "address added")
	}
	return b.replace(list), nil
}

// Remove deletes id. Removing the selected address clears the selection.
func (b *Book) Remove(ctx context.Context, sess session.Session, id string) ([]types.Address, error) {
	if err := b.requireLogin(sess); err != nil {
		return nil, err
	}
	list, err := b.backend.DeleteAddress(ctx, sess.Token, id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	if b.selected == id {
		b.selected = ""
	}
	b.mu.Unlock()
	return b.replace(list), nil
}

// Select marks id as the shipping address. The id is not checked against the
// list; a stale selection is caught at checkout.
func (b *Book) Select(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = id
}

func (b *Book) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Addresses returns a copy of the current list.
func (b *Book) Addresses() []types.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clone(b.addresses)
}

// Context builds the checkout view of the book.
func (b *Book) Context() checkout.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return checkout.Context{
		Addresses:         clone(b.addresses),
		SelectedAddressID: b.selected,
	}
}

// Reset forgets the address list and the selection, as after a logout.
func (b *Book) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = []types.Address{}
	b.selected = ""
}

func (b *Book) replace(list []types.Address) []types.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = clone(list)
	return clone(list)
}

func clone(list []types.Address) []types.Address {
	out := make([]types.Address, len(list))
	copy(out, list)
	return out
}

func (b *Book) requireLogin(sess session.Session) error {
	if !sess.Authenticated(b.now()) {
		return pkgerrors.Reject(enums.RejectionReasonUnauthenticated, "You must be logged in to access checkout page")
	}
	return nil
}
