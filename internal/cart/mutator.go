package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/session"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Backend is the part of the storefront API the cart writes to.
type Backend interface {
	GetCart(ctx context.Context, token string) ([]types.CartEntry, error)
	SetCartItem(ctx context.Context, token, productID string, qty int) ([]types.CartEntry, error)
}

// SetQuantityRequest carries the target quantity together with the catalog
// and current items the change is decided and reconciled against.
type SetQuantityRequest struct {
	ProductID string
	Qty       int
	Catalog   []types.Product
	Current   []Item
	Mode      enums.QuantityMode
}

// Mutator sends quantity changes and rebuilds the cart from the server's
// answer. The previous item slice is never modified.
type Mutator struct {
	backend Backend
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
	now     func() time.Time
}

func NewMutator(backend Backend, logg *logger.Logger, m *metrics.ClientMetrics) *Mutator {
	return &Mutator{backend: backend, logg: logg, metrics: m, now: time.Now}
}

// Fetch loads the server cart and reconciles it with catalog.
func (m *Mutator) Fetch(ctx context.Context, sess session.Session, catalog []types.Product) ([]Item, error) {
	entries, err := m.Entries(ctx, sess)
	if err != nil {
		return nil, err
	}
	return Reconcile(entries, catalog)
}

// Entries loads the raw server cart.
func (m *Mutator) Entries(ctx context.Context, sess session.Session) ([]types.CartEntry, error) {
	if !sess.Authenticated(m.now()) {
		return nil, pkgerrors.Reject(enums.RejectionReasonUnauthenticated, "login required")
	}
	return m.backend.GetCart(ctx, sess.Token)
}

// Apply plans and sends intent.
func (m *Mutator) Apply(ctx context.Context, sess session.Session, intent Intent, catalog []types.Product, current []Item) ([]Item, error) {
	return m.SetQuantity(ctx, sess, SetQuantityRequest{
		ProductID: intent.ProductID,
		Qty:       intent.Qty,
		Catalog:   catalog,
		Current:   current,
		Mode:      intent.Mode,
	})
}

// SetQuantity sets the absolute quantity of a product. Rejections decided
// locally never reach the network.
func (m *Mutator) SetQuantity(ctx context.Context, sess session.Session, req SetQuantityRequest) ([]Item, error) {
	mode := req.Mode
	if !mode.IsValid() {
		mode = enums.QuantityModeFree
	}
	decision := Plan(
		State{Authenticated: sess.Authenticated(m.now()), Items: req.Current},
		Intent{ProductID: req.ProductID, Qty: req.Qty, Mode: mode},
	)
	if decision.Rejected() {
		m.metrics.IncCartMutation(mode.String(), string(decision.Err.Reason()))
		return nil, decision.Err
	}

	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"product_id": decision.ProductID,
			"qty":        decision.Qty,
			"mode":       mode.String(),
		})
	}

	entries, err := m.backend.SetCartItem(ctx, sess.Token, decision.ProductID, decision.Qty)
	if err != nil {
		classified := classify(err)
		m.metrics.IncCartMutation(mode.String(), string(classified.Reason()))
		if m.logg != nil {
			m.logg.Warn(m.logg.WithField(ctx, "reason", classified.Reason()), "cart mutation failed")
		}
		return nil, classified
	}

	items, err := Reconcile(entries, req.Catalog)
	if err != nil {
		m.metrics.IncCartMutation(mode.String(), string(pkgerrors.CodeDataIntegrity))
		return nil, err
	}
	m.metrics.IncCartMutation(mode.String(), "ok")
	return items, nil
}

// Reconcile normalizes server entries and joins them with catalog.
func Reconcile(entries []types.CartEntry, catalog []types.Product) ([]Item, error) {
	normalized, err := Normalize(entries)
	if err != nil {
		return nil, err
	}
	return Merge(normalized, catalog)
}

// classify attaches the rejection reason matching a backend failure while
// keeping its code and message.
func classify(err error) *pkgerrors.Error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error()).
			WithReason(enums.RejectionReasonServerError)
	}
	var reason enums.RejectionReason
	switch typed.Code() {
	case pkgerrors.CodeUnauthorized:
		reason = enums.RejectionReasonUnauthenticated
	case pkgerrors.CodeNotFound:
		reason = enums.RejectionReasonProductNotFound
	case pkgerrors.CodeTransport:
		reason = enums.RejectionReasonNetworkUnavailable
	case pkgerrors.CodeDataIntegrity:
		return typed
	default:
		reason = enums.RejectionReasonServerError
	}
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).
		WithDetails(typed.Details()).
		WithReason(reason)
}
