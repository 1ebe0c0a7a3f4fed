package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/toomburg/models"
	"github.com/ray-remotestate/toomburg/services/servicetest"
	"github.com/ray-remotestate/toomburg/sessions"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseItem(t *testing.T) {
	item, err := ParseItem("Burger,5.005")
	require.NoError(t, err)
	assert.Equal(t, "Burger", item.Name)
	assert.True(t, item.Price.Equal(dec("5.005")))

	item, err = ParseItem("Fries, 2 ")
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(dec("2")))

	for _, raw := range []string{"Burger", "Burger,", "Burger,abc", "Mac,Cheese,4.00", ""} {
		_, err := ParseItem(raw)
		assert.ErrorIs(t, err, ErrMalformedItem, raw)
	}
}

func TestParseItem_RejectsHugeExponents(t *testing.T) {
	for _, raw := range []string{
		"Burger,1e8000000",
		"Burger,1e2000000000",
		"Burger,1e-8000000",
		"Burger,1.5e10",
		"Burger,0.000000001",
		"Burger," + strings.Repeat("9", 40),
	} {
		_, err := ParseItem(raw)
		assert.ErrorIs(t, err, ErrMalformedItem, raw)
	}

	for _, raw := range []string{"Burger,1e8", "Burger,0.00000001", "Burger,12345678.99"} {
		_, err := ParseItem(raw)
		assert.NoError(t, err, raw)
	}
}

func TestSelectItems_HugePriceKeepsPending(t *testing.T) {
	c, _ := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1)}

	_, err := c.SelectItems(sess, []string{"Burger,1e8000000", "Fries,2.00"})
	assert.ErrorIs(t, err, ErrMalformedItem)
	assert.Nil(t, sess.Pending)
}

func TestTotal(t *testing.T) {
	items := []models.LineItem{
		{Name: "Burger", Price: dec("5.005")},
		{Name: "Fries", Price: dec("2.00")},
	}

	assert.Equal(t, "7.01", Total(items, false).StringFixed(2))
	// 0.9 * 7.005 = 6.3045
	assert.Equal(t, "6.30", Total(items, true).StringFixed(2))
	assert.Equal(t, "0.13", Total([]models.LineItem{{Name: "Tea", Price: dec("0.125")}}, false).StringFixed(2))
	assert.True(t, Total(nil, true).IsZero())
}

func TestNormalizeCard(t *testing.T) {
	valid := []string{"4111111111111111", "4111 1111 1111 1111", "  4111111111111111  "}
	for _, c := range valid {
		got, err := NormalizeCard(c)
		require.NoError(t, err, c)
		assert.Equal(t, "4111111111111111", got)
	}

	invalid := []string{"4111 1111 1111 111", "41111111111111111", "4111-1111-1111-1111", "411111111111111a", "", "４１１１１１１１１１１１１１１１"}
	for _, c := range invalid {
		_, err := NormalizeCard(c)
		assert.ErrorIs(t, err, ErrInvalidCard, c)
	}
}

func newCheckout() (*Checkout, *servicetest.MemoryRepository) {
	repo := servicetest.NewMemoryRepository()
	return NewCheckout(NewLedger(repo)), repo
}

func TestSelectItems(t *testing.T) {
	c, _ := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1)}

	pending, err := c.SelectItems(sess, []string{"Burger,12.50", "Fries,7.50"})
	require.NoError(t, err)
	assert.Equal(t, "20.00", pending.Total.StringFixed(2))
	assert.Same(t, pending, sess.Pending)
	assert.Equal(t, StatePendingPayment, StateOf(sess))
}

func TestSelectItems_DiscountReadOnce(t *testing.T) {
	c, _ := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1), Discount: true}

	pending, err := c.SelectItems(sess, []string{"Burger,5.005", "Fries,2.00"})
	require.NoError(t, err)
	assert.Equal(t, "6.30", pending.Total.StringFixed(2))

	sess.Discount = false
	assert.Equal(t, "6.30", sess.Pending.Total.StringFixed(2))
}

func TestSelectItems_Overwrites(t *testing.T) {
	c, _ := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1)}

	_, err := c.SelectItems(sess, []string{"Burger,5"})
	require.NoError(t, err)
	_, err = c.SelectItems(sess, []string{"Shake,3.25"})
	require.NoError(t, err)

	require.Len(t, sess.Pending.Items, 1)
	assert.Equal(t, "Shake", sess.Pending.Items[0].Name)
	assert.Equal(t, "3.25", sess.Pending.Total.StringFixed(2))
}

func TestSelectItems_Failures(t *testing.T) {
	tests := []struct {
		name string
		who  sessions.Identity
		raw  []string
		want error
	}{
		{"empty", sessions.CustomerIdentity(1), nil, ErrNoItemsSelected},
		{"empty slice", sessions.CustomerIdentity(1), []string{}, ErrNoItemsSelected},
		{"malformed", sessions.CustomerIdentity(1), []string{"Burger,5", "Fries"}, ErrMalformedItem},
		{"anonymous", sessions.Identity{}, []string{"Burger,5"}, ErrUnauthorized},
		{"admin", sessions.AdminIdentity(), []string{"Burger,5"}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCheckout()
			sess := &sessions.Session{Identity: tt.who}

			_, err := c.SelectItems(sess, tt.raw)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, sess.Pending)
			assert.Equal(t, StateBrowsing, StateOf(sess))
		})
	}
}

func TestCommitPayment_NoPendingOrder(t *testing.T) {
	c, repo := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1)}

	_, err := c.CommitPayment(context.Background(), sess, "4111111111111111")
	assert.ErrorIs(t, err, ErrNoPendingOrder)
	assert.Empty(t, repo.OrdersFor(1))
}

func TestCommitPayment_InvalidCardKeepsPending(t *testing.T) {
	c, repo := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1)}
	_, err := c.SelectItems(sess, []string{"Burger,5"})
	require.NoError(t, err)

	_, err = c.CommitPayment(context.Background(), sess, "4111 1111 1111 111")
	assert.ErrorIs(t, err, ErrInvalidCard)
	assert.NotNil(t, sess.Pending)
	assert.False(t, sess.Discount)
	assert.Empty(t, repo.OrdersFor(1))

	// retry succeeds
	_, err = c.CommitPayment(context.Background(), sess, "4111111111111111")
	require.NoError(t, err)
	assert.Len(t, repo.OrdersFor(1), 1)
}

func TestCommitPayment_StorageErrorKeepsPending(t *testing.T) {
	c, repo := newCheckout()
	sess := &sessions.Session{Identity: sessions.CustomerIdentity(1)}
	_, err := c.SelectItems(sess, []string{"Burger,5"})
	require.NoError(t, err)

	repo.Err = errors.New("db down")
	_, err = c.CommitPayment(context.Background(), sess, "4111111111111111")
	assert.EqualError(t, err, "db down")
	assert.NotNil(t, sess.Pending)
	assert.False(t, sess.Discount)
}

func TestCheckout_EndToEnd(t *testing.T) {
	repo := servicetest.NewMemoryRepository()
	ledger := NewLedger(repo)
	directory := NewUserDirectory(repo, NewCredentialVerifier(repo, AdministrativeIdentity{}))
	checkout := NewCheckout(ledger)
	verifier := NewCredentialVerifier(repo, newTestAdmin(t))
	ctx := context.Background()

	userID, err := directory.Register(ctx, registration("U@Example.com"))
	require.NoError(t, err)

	v, err := verifier.Verify(ctx, "u@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, OutcomeUser, v.Outcome)
	sess, err := NewLoginSession(ctx, ledger, v)
	require.NoError(t, err)
	assert.False(t, sess.Discount)

	pending, err := checkout.SelectItems(sess, []string{"Burger,12.50", "Fries,7.50"})
	require.NoError(t, err)
	assert.Equal(t, "20.00", pending.Total.StringFixed(2))

	ids, err := checkout.CommitPayment(ctx, sess, "4111111111111111")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	orders := repo.OrdersFor(userID)
	require.Len(t, orders, 2)
	assert.Equal(t, "Burger", orders[0].Item)
	assert.Equal(t, "Fries", orders[1].Item)
	assert.True(t, sess.Discount)
	assert.Nil(t, sess.Pending)
	assert.Equal(t, StateBrowsing, StateOf(sess))

	// the next login re-derives the discount from history
	next, err := NewLoginSession(ctx, ledger, v)
	require.NoError(t, err)
	assert.True(t, next.Discount)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "browsing", StateBrowsing.String())
	assert.Equal(t, "items_selected", StateItemsSelected.String())
	assert.Equal(t, "pending_payment", StatePendingPayment.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, StateBrowsing, StateOf(nil))
}
