package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/toomburg/models"
	"github.com/ray-remotestate/toomburg/sessions"
)

type State int

// StateItemsSelected and StateCommitted are transient: SelectItems and
// CommitPayment pass through them within one call, so StateOf only ever
// observes StateBrowsing or StatePendingPayment.
const (
	StateBrowsing State = iota
	StateItemsSelected
	StatePendingPayment
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateItemsSelected:
		return "items_selected"
	case StatePendingPayment:
		return "pending_payment"
	case StateCommitted:
		return "committed"
	default:
		return "browsing"
	}
}

// StateOf reports where the session's cart is. Committed carts return to browsing.
func StateOf(sess *sessions.Session) State {
	if sess != nil && sess.Pending != nil {
		return StatePendingPayment
	}
	return StateBrowsing
}

const (
	cardDigits = 16

	// price bounds keep Total's rescaling to cents cheap
	maxPriceLen   = 32
	maxPriceScale = 8
)

var discountFactor = decimal.RequireFromString("0.9")

// ParseItem reads a "name,price" entry.
func ParseItem(raw string) (models.LineItem, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return models.LineItem{}, ErrMalformedItem
	}
	text := strings.TrimSpace(parts[1])
	if len(text) > maxPriceLen {
		return models.LineItem{}, ErrMalformedItem
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return models.LineItem{}, ErrMalformedItem
	}
	if exp := price.Exponent(); exp < -maxPriceScale || exp > maxPriceScale {
		return models.LineItem{}, ErrMalformedItem
	}
	return models.LineItem{Name: parts[0], Price: price}, nil
}

// Total sums the prices, takes 10% off when discounted and rounds half away from zero to cents.
func Total(items []models.LineItem, discount bool) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	if discount {
		total = total.Mul(discountFactor)
	}
	return total.Round(2)
}

// NormalizeCard strips spaces and requires exactly 16 ASCII digits.
func NormalizeCard(card string) (string, error) {
	card = strings.ReplaceAll(strings.TrimSpace(card), " ", "")
	if len(card) != cardDigits {
		return "", ErrInvalidCard
	}
	for _, c := range card {
		if c < '0' || c > '9' {
			return "", ErrInvalidCard
		}
	}
	return card, nil
}

// Checkout moves a session's cart from selection through payment.
// Callers persist the session after each successful call.
type Checkout struct {
	ledger *Ledger
}

func NewCheckout(ledger *Ledger) *Checkout {
	return &Checkout{ledger: ledger}
}

// SelectItems stages a pending order, replacing any earlier one. The discount
// flag is read once, here.
func (c *Checkout) SelectItems(sess *sessions.Session, raw []string) (*models.PendingOrder, error) {
	if !sess.Identity.IsCustomer() {
		return nil, ErrUnauthorized
	}
	if len(raw) == 0 {
		return nil, ErrNoItemsSelected
	}

	items := make([]models.LineItem, 0, len(raw))
	for _, r := range raw {
		item, err := ParseItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	pending := &models.PendingOrder{
		Items: items,
		Total: Total(items, sess.Discount),
	}
	sess.Pending = pending
	return pending, nil
}

// CommitPayment records one order per staged item and grants the discount.
// An invalid card leaves the pending order in place for a retry.
func (c *Checkout) CommitPayment(ctx context.Context, sess *sessions.Session, card string) ([]int64, error) {
	if sess.Pending == nil {
		return nil, ErrNoPendingOrder
	}
	if !sess.Identity.IsCustomer() {
		return nil, ErrUnauthorized
	}
	if _, err := NormalizeCard(card); err != nil {
		return nil, err
	}

	// TODO: persist the unit price once the menu has a source of truth; only names are stored today.
	ids, err := c.ledger.AddOrders(ctx, sess.Identity.UserID, sess.Pending.ItemNames())
	if err != nil {
		return nil, err
	}

	sess.Discount = true
	sess.Pending = nil
	return ids, nil
}
