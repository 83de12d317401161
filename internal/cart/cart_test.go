package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/session"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []types.Product {
	return []types.Product{
		{ID: "p1", Name: "Duffle", Cost: decimal.NewFromInt(100)},
		{ID: "p2", Name: "Sneakers", Cost: decimal.NewFromInt(50)},
	}
}

func loggedIn() session.Session {
	return session.Session{Token: "tok", Username: "crio-user", Balance: decimal.NewFromInt(200)}
}

func TestMergeEmptyIsNotAnError(t *testing.T) {
	items, err := Merge(nil, catalog())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = Merge([]types.CartEntry{}, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMergePreservesLengthAndOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var products []types.Product
	for i := 0; i < 20; i++ {
		products = append(products, types.Product{ID: fmt.Sprintf("p%d", i), Cost: decimal.NewFromInt(int64(i))})
	}
	for round := 0; round < 50; round++ {
		perm := rng.Perm(len(products))
		n := rng.Intn(len(products))
		entries := make([]types.CartEntry, 0, n)
		for _, idx := range perm[:n] {
			entries = append(entries, types.CartEntry{ProductID: products[idx].ID, Qty: rng.Intn(5) + 1})
		}
		items, err := Merge(entries, products)
		require.NoError(t, err)
		require.Len(t, items, len(entries))
		for i := range entries {
			assert.Equal(t, entries[i].ProductID, items[i].ProductID())
			assert.Equal(t, entries[i].ProductID, items[i].Product.ID)
		}
	}
}

func TestMergeMissingProductIsDataIntegrity(t *testing.T) {
	_, err := Merge([]types.CartEntry{{ProductID: "p1", Qty: 1}, {ProductID: "ghost", Qty: 1}}, catalog())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDataIntegrity, pkgerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestTotalValue(t *testing.T) {
	_, ok := TotalValue(nil)
	assert.False(t, ok, "empty cart has no total")

	items, err := Merge([]types.CartEntry{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 3}}, catalog())
	require.NoError(t, err)
	total, ok := TotalValue(items)
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.NewFromInt(350)), "got %s", total)

	zero, ok := TotalValue([]Item{{Entry: types.CartEntry{ProductID: "p1", Qty: 0}, Product: catalog()[0]}})
	assert.True(t, ok)
	assert.True(t, zero.IsZero())
}

func TestTotalValueIsLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 50; round++ {
		var items []Item
		want := decimal.Zero
		for i := 0; i < rng.Intn(8)+1; i++ {
			cost := decimal.New(int64(rng.Intn(100000)), -2)
			qty := rng.Intn(6)
			items = append(items, Item{Entry: types.CartEntry{ProductID: fmt.Sprint(i), Qty: qty}, Product: types.Product{Cost: cost}})
			want = want.Add(cost.Mul(decimal.NewFromInt(int64(qty))))
		}
		got, ok := TotalValue(items)
		require.True(t, ok)
		assert.True(t, got.Equal(want), "got %s want %s", got, want)
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]types.CartEntry{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 0}, {ProductID: "p3", Qty: -1}})
	require.NoError(t, err)
	assert.Equal(t, []types.CartEntry{{ProductID: "p1", Qty: 2}}, out)

	_, err = Normalize([]types.CartEntry{{ProductID: "p1", Qty: 2}, {ProductID: "p1", Qty: 1}})
	assert.Equal(t, pkgerrors.CodeDataIntegrity, pkgerrors.CodeOf(err))
}

func TestPlan(t *testing.T) {
	items, err := Merge([]types.CartEntry{{ProductID: "p1", Qty: 2}}, catalog())
	require.NoError(t, err)

	d := Plan(State{Authenticated: false, Items: items}, Add("p2"))
	require.True(t, d.Rejected())
	assert.Equal(t, enums.RejectionReasonUnauthenticated, d.Err.Reason())

	d = Plan(State{Authenticated: true, Items: items}, Add("p1"))
	require.True(t, d.Rejected())
	assert.Equal(t, enums.RejectionReasonDuplicate, d.Err.Reason())
	assert.Equal(t, "Item already in cart. Use the cart sidebar to update quantity or remove item.", d.Err.Message())

	d = Plan(State{Authenticated: true, Items: items}, Increment(items[0]))
	require.False(t, d.Rejected())
	assert.Equal(t, 3, d.Qty)

	d = Plan(State{Authenticated: true, Items: items}, Remove(items[0]))
	assert.Equal(t, 0, d.Qty)

	d = Plan(State{Authenticated: true}, Intent{ProductID: "p1", Qty: -4, Mode: enums.QuantityModeFree})
	assert.Equal(t, 0, d.Qty, "negative targets are sent as removal")

	d = Plan(State{Authenticated: true, Items: items}, Add("p2"))
	require.False(t, d.Rejected())
	assert.Equal(t, 1, d.Qty)
}

type fakeCartBackend struct {
	entries []types.CartEntry
	err     error
	calls   int
	lastQty int
}

func (f *fakeCartBackend) GetCart(context.Context, string) ([]types.CartEntry, error) {
	return f.entries, f.err
}

func (f *fakeCartBackend) SetCartItem(_ context.Context, token, productID string, qty int) ([]types.CartEntry, error) {
	f.calls++
	f.lastQty = qty
	if f.err != nil {
		return nil, f.err
	}
	next := make([]types.CartEntry, 0, len(f.entries)+1)
	found := false
	for _, e := range f.entries {
		if e.ProductID == productID {
			found = true
			if qty <= 0 {
				continue
			}
			e.Qty = qty
		}
		next = append(next, e)
	}
	if !found && qty > 0 {
		next = append(next, types.CartEntry{ProductID: productID, Qty: qty})
	}
	f.entries = next
	return next, nil
}

func TestSetQuantityStrictDuplicateSkipsNetwork(t *testing.T) {
	backend := &fakeCartBackend{entries: []types.CartEntry{{ProductID: "p1", Qty: 1}}}
	m := NewMutator(backend, nil, nil)
	current, err := Merge(backend.entries, catalog())
	require.NoError(t, err)

	_, err = m.SetQuantity(context.Background(), loggedIn(), SetQuantityRequest{
		ProductID: "p1", Qty: 1, Catalog: catalog(), Current: current, Mode: enums.QuantityModeStrict,
	})
	assert.Equal(t, enums.RejectionReasonDuplicate, pkgerrors.ReasonOf(err))
	assert.Equal(t, 0, backend.calls)
}

func TestSetQuantityUnauthenticatedSkipsNetwork(t *testing.T) {
	backend := &fakeCartBackend{}
	m := NewMutator(backend, nil, nil)
	_, err := m.Apply(context.Background(), session.Session{}, Add("p1"), catalog(), nil)
	assert.Equal(t, enums.RejectionReasonUnauthenticated, pkgerrors.ReasonOf(err))
	assert.Equal(t, "Login to add an item to the Cart", pkgerrors.As(err).Message())
	assert.Equal(t, 0, backend.calls)
}

func TestSetQuantityReconcilesServerAnswer(t *testing.T) {
	backend := &fakeCartBackend{entries: []types.CartEntry{{ProductID: "p1", Qty: 2}}}
	m := NewMutator(backend, nil, nil)
	current, err := Merge(backend.entries, catalog())
	require.NoError(t, err)
	before := append([]Item(nil), current...)

	items, err := m.Apply(context.Background(), loggedIn(), Increment(current[0]), catalog(), current)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty())
	assert.Equal(t, before, current, "previous items must not be mutated")

	items, err = m.Apply(context.Background(), loggedIn(), Add("p2"), catalog(), items)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[1].ProductID())
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	backend := &fakeCartBackend{entries: []types.CartEntry{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 1}}}
	m := NewMutator(backend, nil, nil)
	current, err := Merge(backend.entries, catalog())
	require.NoError(t, err)

	for _, qty := range []int{0, -3} {
		items, err := m.SetQuantity(context.Background(), loggedIn(), SetQuantityRequest{
			ProductID: "p1", Qty: qty, Catalog: catalog(), Current: current, Mode: enums.QuantityModeFree,
		})
		require.NoError(t, err)
		_, present := Find(items, "p1")
		assert.False(t, present)
		assert.Equal(t, 0, backend.lastQty)
	}
}

func TestSetQuantityDropsEchoedZeroLines(t *testing.T) {
	backend := &echoBackend{entries: []types.CartEntry{{ProductID: "p1", Qty: 0}, {ProductID: "p2", Qty: 1}}}
	m := NewMutator(backend, nil, nil)
	items, err := m.SetQuantity(context.Background(), loggedIn(), SetQuantityRequest{
		ProductID: "p1", Qty: 0, Catalog: catalog(), Mode: enums.QuantityModeFree,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID())
}

func TestSetQuantityFailureTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		reason enums.RejectionReason
		sev    enums.Severity
	}{
		{pkgerrors.New(pkgerrors.CodeNotFound, "Product doesn't exist"), enums.RejectionReasonProductNotFound, enums.SeverityError},
		{pkgerrors.New(pkgerrors.CodeTransport, "dial tcp"), enums.RejectionReasonNetworkUnavailable, enums.SeverityError},
		{pkgerrors.New(pkgerrors.CodeServer, "db down"), enums.RejectionReasonServerError, enums.SeverityError},
		{pkgerrors.New(pkgerrors.CodeRejected, "bad qty"), enums.RejectionReasonServerError, enums.SeverityError},
		{pkgerrors.New(pkgerrors.CodeUnauthorized, "expired"), enums.RejectionReasonUnauthenticated, enums.SeverityWarning},
		{errors.New("untyped"), enums.RejectionReasonServerError, enums.SeverityError},
	}
	for _, tc := range cases {
		m := NewMutator(&fakeCartBackend{err: tc.err}, nil, nil)
		_, err := m.Apply(context.Background(), loggedIn(), Add("p1"), catalog(), nil)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, tc.reason, typed.Reason(), "for %v", tc.err)
		assert.Equal(t, tc.sev, pkgerrors.MetadataFor(typed.Code()).Severity, "for %v", tc.err)
	}
}

func TestFetchReconciles(t *testing.T) {
	backend := &fakeCartBackend{entries: []types.CartEntry{{ProductID: "p2", Qty: 4}}}
	items, err := NewMutator(backend, nil, nil).Fetch(context.Background(), loggedIn(), catalog())
	require.NoError(t, err)
	total, ok := TotalValue(items)
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.NewFromInt(200)))

	_, err = NewMutator(backend, nil, nil).Fetch(context.Background(), session.Session{}, catalog())
	assert.Equal(t, enums.RejectionReasonUnauthenticated, pkgerrors.ReasonOf(err))
}

type echoBackend struct {
	entries []types.CartEntry
}

func (e *echoBackend) GetCart(context.Context, string) ([]types.CartEntry, error) {
	return e.entries, nil
}

func (e *echoBackend) SetCartItem(context.Context, string, string, int) ([]types.CartEntry, error) {
	return e.entries, nil
}
