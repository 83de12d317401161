// Package session holds the shopper's auth token, username, wallet balance and
// address selection, and persists them between runs.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/auth"
	"github.com/shopspring/decimal"
)

type Session struct {
	Token             string          `json:"token" yaml:"token"`
	Username          string          `json:"username" yaml:"username"`
	Balance           decimal.Decimal `json:"balance" yaml:"balance"`
	SelectedAddressID string          `json:"selected_address_id,omitempty" yaml:"selected_address_id,omitempty"`
}

// Authenticated reports whether the session carries a token not locally
// known to be expired at now.
func (s Session) Authenticated(now time.Time) bool {
	if strings.TrimSpace(s.Token) == "" {
		return false
	}
	info, err := auth.InspectToken(s.Token)
	if err != nil {
		return false
	}
	return !info.Expired(now)
}

// IsZero reports whether nothing is stored in the session.
func (s Session) IsZero() bool {
	return s.Token == "" && s.Username == "" && s.Balance.IsZero() && s.SelectedAddressID == ""
}

// Store persists a single session. Load returns the zero Session when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
