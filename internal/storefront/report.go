package storefront

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront/internal/notify"
)

type opError struct {
	op  notify.Operation
	err error
}

func (e *opError) Error() string { return e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

// tag remembers which operation an error inside a fan-out came from.
func (a *App) tag(op notify.Operation, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

func (a *App) report(ctx context.Context, err error) error {
	var tagged *opError
	if errors.As(err, &tagged) {
		return a.fail(ctx, tagged.op, tagged.err)
	}
	return a.fail(ctx, "", err)
}

// fail notifies the shopper about err and returns it unchanged.
func (a *App) fail(ctx context.Context, op notify.Operation, err error) error {
	n := notify.FromError(op, err)
	a.notifier.Notify(ctx, n)
	if a.logg != nil {
		a.logg.Debug(a.logg.WithFields(ctx, map[string]any{
			"op":    string(op),
			"error": err.Error(),
		}), "operation failed")
	}
	return err
}
