package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/session"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Backend places orders.
type Backend interface {
	Checkout(ctx context.Context, token, addressID string) (types.CheckoutResponse, error)
}

// Outcome reports a checkout attempt that reached the backend. Next is only
// set when the order was placed and the debit persisted.
type Outcome struct {
	Success    bool
	Charged    decimal.Decimal
	NewBalance decimal.Decimal
	Next       enums.Destination
}

type Executor struct {
	backend Backend
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
	now     func() time.Time
}

func NewExecutor(backend Backend, logg *logger.Logger, m *metrics.ClientMetrics) *Executor {
	return &Executor{backend: backend, logg: logg, metrics: m, now: time.Now}
}

// Execute validates and places the order, then debits the wallet held by
// holder. The debit is persisted before it becomes visible; when persisting
// fails the live session keeps its old balance and no destination is set.
func (e *Executor) Execute(ctx context.Context, holder *session.Holder, cartTotal decimal.Decimal, cctx Context) (Outcome, error) {
	sess := holder.Current()
	if !sess.Authenticated(e.now()) {
		e.metrics.IncCheckout(string(enums.RejectionReasonUnauthenticated))
		return Outcome{}, pkgerrors.Reject(enums.RejectionReasonUnauthenticated, "You must be logged in to access checkout page")
	}
	// the session is the only source of the wallet balance
	if err := Validate(cartTotal, sess.Balance, cctx); err != nil {
		e.metrics.IncCheckout(string(pkgerrors.ReasonOf(err)))
		return Outcome{}, err
	}

	if e.logg != nil {
		ctx = e.logg.WithFields(ctx, map[string]any{
			"address_id": cctx.SelectedAddressID,
			"total":      cartTotal.String(),
		})
	}

	resp, err := e.backend.Checkout(ctx, sess.Token, cctx.SelectedAddressID)
	if err != nil {
		e.metrics.IncCheckout(string(pkgerrors.CodeOf(err)))
		if e.logg != nil {
			e.logg.Warn(e.logg.WithField(ctx, "code", pkgerrors.CodeOf(err)), "checkout failed")
		}
		return Outcome{}, err
	}
	if !resp.Success {
		e.metrics.IncCheckout("declined")
		return Outcome{Success: false}, nil
	}

	next, err := holder.Update(ctx, func(s *session.Session) error {
		s.Balance = s.Balance.Sub(cartTotal)
		return nil
	})
	if err != nil {
		e.metrics.IncCheckout("persist_failed")
		if e.logg != nil {
			e.logg.Error(ctx, "order placed but wallet debit not persisted", err)
		}
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not save the updated wallet balance")
	}

	e.metrics.IncCheckout("ok")
	if e.logg != nil {
		e.logg.Info(e.logg.WithField(ctx, "balance", next.Balance.String()), "order placed")
	}
	return Outcome{
		Success:    true,
		Charged:    cartTotal,
		NewBalance: next.Balance,
		Next:       enums.DestinationThanks,
	}, nil
}
